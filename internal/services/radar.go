package services

import (
	"context"
	"sort"
	"strings"
	"time"
	"toplists/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	DefaultRadarWindowMonths = 3
	TrendingRadarLimit       = 10
)

// RadarInput 加入雷达的条目
type RadarInput struct {
	ItemTitle       string     `json:"itemTitle"`
	ItemDescription string     `json:"itemDescription"`
	ItemImage       string     `json:"itemImage"`
	Category        string     `json:"category"`
	ListID          *uuid.UUID `json:"listId"`
	ListTitle       string     `json:"listTitle"`
	Notes           string     `json:"notes"`
}

// TrendingRadarItem 近期被最多次加入雷达的条目
type TrendingRadarItem struct {
	Title    string `json:"title"`
	Category string `json:"category"`
	Count    int    `json:"count"`
	Image    string `json:"image"`
}

type radarGroup struct {
	item   TrendingRadarItem
	latest time.Time
}

// AggregateTrendingRadar 统计 since 之后的雷达记录，按 (标题, 分类) 分组计数。
// 同一用户重复加入会重复计数。次数相同时最近加入的在前，再按标题排序
func AggregateTrendingRadar(entries []models.RadarEntry, since time.Time) []TrendingRadarItem {
	type key struct{ title, category string }
	groups := make(map[key]*radarGroup)
	for _, e := range entries {
		if e.CreatedAt.Before(since) {
			continue
		}
		k := key{e.ItemTitle, e.Category}
		g, ok := groups[k]
		if !ok {
			g = &radarGroup{item: TrendingRadarItem{Title: e.ItemTitle, Category: e.Category}}
			groups[k] = g
		}
		g.item.Count++
		if e.CreatedAt.After(g.latest) {
			g.latest = e.CreatedAt
			if e.ItemImage != "" {
				g.item.Image = e.ItemImage
			}
		}
		if g.item.Image == "" {
			g.item.Image = e.ItemImage
		}
	}

	list := make([]*radarGroup, 0, len(groups))
	for _, g := range groups {
		list = append(list, g)
	}
	sort.Slice(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.item.Count != b.item.Count {
			return a.item.Count > b.item.Count
		}
		if !a.latest.Equal(b.latest) {
			return a.latest.After(b.latest)
		}
		if a.item.Title != b.item.Title {
			return a.item.Title < b.item.Title
		}
		return a.item.Category < b.item.Category
	})
	if len(list) > TrendingRadarLimit {
		list = list[:TrendingRadarLimit]
	}

	out := make([]TrendingRadarItem, len(list))
	for i, g := range list {
		out[i] = g.item
	}
	return out
}

// RadarService 用户的雷达（稍后关注清单）
type RadarService struct {
	db     *gorm.DB
	logger *zap.Logger
	now    func() time.Time
}

func NewRadarService(db *gorm.DB, logger *zap.Logger) *RadarService {
	return &RadarService{db: db, logger: logger, now: time.Now}
}

// List 我的雷达，最新加入的在前
func (s *RadarService) List(ctx context.Context, userID uuid.UUID) ([]models.RadarEntry, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthorized
	}
	entries := []models.RadarEntry{}
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&entries).Error
	return entries, err
}

// Add 加入雷达。不做去重，客户端先用 Check 判断是否已加入
func (s *RadarService) Add(ctx context.Context, userID uuid.UUID, in RadarInput) (*models.RadarEntry, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthorized
	}
	title := strings.TrimSpace(in.ItemTitle)
	category := strings.TrimSpace(in.Category)
	if title == "" || category == "" {
		return nil, invalidf("itemTitle and category are required")
	}

	entry := &models.RadarEntry{
		UserID:          userID,
		ItemTitle:       title,
		ItemDescription: strings.TrimSpace(in.ItemDescription),
		ItemImage:       strings.TrimSpace(in.ItemImage),
		Category:        category,
		ListID:          in.ListID,
		ListTitle:       strings.TrimSpace(in.ListTitle),
		Notes:           strings.TrimSpace(in.Notes),
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

// UpdateNotes 修改备注
func (s *RadarService) UpdateNotes(ctx context.Context, userID, entryID uuid.UUID, notes string) error {
	if userID == uuid.Nil {
		return ErrUnauthorized
	}
	res := s.db.WithContext(ctx).Model(&models.RadarEntry{}).
		Where("id = ? AND user_id = ?", entryID, userID).
		Update("notes", strings.TrimSpace(notes))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Remove 从雷达移除
func (s *RadarService) Remove(ctx context.Context, userID, entryID uuid.UUID) error {
	if userID == uuid.Nil {
		return ErrUnauthorized
	}
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", entryID, userID).Delete(&models.RadarEntry{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Check 条目是否已在我的雷达中，存在时返回该记录
func (s *RadarService) Check(ctx context.Context, userID uuid.UUID, title, category string) (*models.RadarEntry, error) {
	if userID == uuid.Nil {
		return nil, nil
	}
	var entries []models.RadarEntry
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND item_title = ? AND category = ?", userID, strings.TrimSpace(title), strings.TrimSpace(category)).
		Order("created_at ASC").
		Limit(1).
		Find(&entries).Error
	if err != nil || len(entries) == 0 {
		return nil, err
	}
	return &entries[0], nil
}

// Trending 最近 windowMonths 个月内被加入最多的条目
func (s *RadarService) Trending(ctx context.Context, windowMonths int) ([]TrendingRadarItem, error) {
	if windowMonths <= 0 {
		windowMonths = DefaultRadarWindowMonths
	}
	since := s.now().AddDate(0, -windowMonths, 0)

	var entries []models.RadarEntry
	err := s.db.WithContext(ctx).
		Select("item_title", "category", "item_image", "created_at").
		Where("created_at >= ?", since).
		Order("created_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return AggregateTrendingRadar(entries, since), nil
}
