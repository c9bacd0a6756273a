package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"
	"toplists/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	DefaultTrendingLimit = 20
	DefaultTopListsLimit = 5
	searchLimit          = 10
)

// FeedService 组装各类榜单信息流，所有结果都经过可见性过滤
type FeedService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewFeedService(db *gorm.DB, logger *zap.Logger) *FeedService {
	return &FeedService{db: db, logger: logger}
}

// SearchResult 搜索结果
type SearchResult struct {
	Lists []ListView    `json:"lists"`
	Users []UserSummary `json:"users"`
}

func (s *FeedService) lists(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Preload("User").
		Preload("Category").
		Preload("Subcategory").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") })
}

func (s *FeedService) viewer(ctx context.Context, viewerID uuid.UUID) (Viewer, error) {
	return LoadViewer(ctx, s.db, viewerID)
}

// finish 统计计数并转换为接口结构
func (s *FeedService) finish(ctx context.Context, lists []models.List) ([]ListView, error) {
	if err := fillCounts(ctx, s.db, lists); err != nil {
		return nil, err
	}
	return newListViews(lists), nil
}

func sortNewestFirst(lists []models.List) {
	sort.SliceStable(lists, func(i, j int) bool { return lists[i].CreatedAt.After(lists[j].CreatedAt) })
}

// ListAll 查看者可见的全部榜单，最新的在前
func (s *FeedService) ListAll(ctx context.Context, viewerID uuid.UUID) ([]ListView, error) {
	viewer, err := s.viewer(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	var lists []models.List
	if err := s.lists(ctx).Order("created_at DESC").Find(&lists).Error; err != nil {
		return nil, err
	}
	lists = FilterVisible(lists, viewer)
	sortNewestFirst(lists)
	return s.finish(ctx, lists)
}

// ListOwned 我创建的榜单
func (s *FeedService) ListOwned(ctx context.Context, ownerID uuid.UUID) ([]ListView, error) {
	if ownerID == uuid.Nil {
		return nil, ErrUnauthorized
	}
	var lists []models.List
	if err := s.lists(ctx).Where("user_id = ?", ownerID).Order("created_at DESC").Find(&lists).Error; err != nil {
		return nil, err
	}
	sortNewestFirst(lists)
	return s.finish(ctx, lists)
}

// ListFromFollowed 我已被接受关注的用户创建的榜单
func (s *FeedService) ListFromFollowed(ctx context.Context, viewerID uuid.UUID) ([]ListView, error) {
	if viewerID == uuid.Nil {
		return nil, ErrUnauthorized
	}
	viewer, err := s.viewer(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	if len(viewer.following) == 0 {
		return []ListView{}, nil
	}
	owners := make([]uuid.UUID, 0, len(viewer.following))
	for id := range viewer.following {
		owners = append(owners, id)
	}

	var lists []models.List
	if err := s.lists(ctx).Where("user_id IN ?", owners).Order("created_at DESC").Find(&lists).Error; err != nil {
		return nil, err
	}
	lists = FilterVisible(lists, viewer)
	sortNewestFirst(lists)
	return s.finish(ctx, lists)
}

// ListFavorites 我收藏且仍可见的榜单，按收藏时间倒序
func (s *FeedService) ListFavorites(ctx context.Context, viewerID uuid.UUID) ([]ListView, error) {
	if viewerID == uuid.Nil {
		return nil, ErrUnauthorized
	}
	var favs []models.Favorite
	err := s.db.WithContext(ctx).
		Where("user_id = ?", viewerID).
		Order("created_at DESC").
		Find(&favs).Error
	if err != nil {
		return nil, err
	}
	if len(favs) == 0 {
		return []ListView{}, nil
	}

	ids := make([]uuid.UUID, len(favs))
	for i := range favs {
		ids[i] = favs[i].ListID
	}
	var found []models.List
	if err := s.lists(ctx).Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.List, len(found))
	for _, l := range found {
		byID[l.ID] = l
	}

	lists := make([]models.List, 0, len(favs))
	for _, f := range favs {
		if l, ok := byID[f.ListID]; ok {
			lists = append(lists, l)
		}
	}
	// 收藏后对方转为私密或取消关注的榜单不再返回
	viewer, err := LoadViewer(ctx, s.db, viewerID)
	if err != nil {
		return nil, err
	}
	return s.finish(ctx, FilterVisible(lists, viewer))
}

// ListTrending 公开用户的榜单按点赞数排序，点赞相同时新的在前
func (s *FeedService) ListTrending(ctx context.Context, limit int) ([]ListView, error) {
	if limit <= 0 {
		limit = DefaultTrendingLimit
	}
	publicOwners := s.db.Model(&models.User{}).Select("id").Where("is_public IS NULL OR is_public = ?", true)

	var lists []models.List
	if err := s.lists(ctx).Where("user_id IN (?)", publicOwners).Find(&lists).Error; err != nil {
		return nil, err
	}
	lists = FilterVisible(lists, Anonymous())
	if err := fillCounts(ctx, s.db, lists); err != nil {
		return nil, err
	}
	sortTrending(lists)
	if len(lists) > limit {
		lists = lists[:limit]
	}
	return newListViews(lists), nil
}

func sortTrending(lists []models.List) {
	sort.SliceStable(lists, func(i, j int) bool {
		if lists[i].LikeCount != lists[j].LikeCount {
			return lists[i].LikeCount > lists[j].LikeCount
		}
		return lists[i].CreatedAt.After(lists[j].CreatedAt)
	})
}

// UserTopLists 某用户点赞最多的几个榜单，受可见性约束
func (s *FeedService) UserTopLists(ctx context.Context, ownerID, viewerID uuid.UUID, limit int) ([]ListView, error) {
	if limit <= 0 {
		limit = DefaultTopListsLimit
	}
	viewer, err := s.viewer(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	var lists []models.List
	if err := s.lists(ctx).Where("user_id = ?", ownerID).Find(&lists).Error; err != nil {
		return nil, err
	}
	lists = FilterVisible(lists, viewer)
	if err := fillCounts(ctx, s.db, lists); err != nil {
		return nil, err
	}
	sortTrending(lists)
	if len(lists) > limit {
		lists = lists[:limit]
	}
	return newListViews(lists), nil
}

// Detail 单个榜单详情，不可见时按不存在处理
func (s *FeedService) Detail(ctx context.Context, listID, viewerID uuid.UUID) (*ListView, error) {
	viewer, err := s.viewer(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	var list models.List
	if err := s.lists(ctx).First(&list, "id = ?", listID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !IsListVisible(&list.User, viewer) {
		return nil, ErrNotFound
	}
	lists := []models.List{list}
	if err := fillCounts(ctx, s.db, lists); err != nil {
		return nil, err
	}
	view := newListView(&lists[0], time.Now())
	return &view, nil
}

// Search 按标题、描述、条目名搜索榜单，按用户名搜索用户
func (s *FeedService) Search(ctx context.Context, query string, viewerID uuid.UUID) (*SearchResult, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return &SearchResult{Lists: []ListView{}, Users: []UserSummary{}}, nil
	}
	viewer, err := s.viewer(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	like := "%" + q + "%"

	matchingItems := s.db.Model(&models.Item{}).Select("list_id").Where("LOWER(name) LIKE ?", like)
	var lists []models.List
	err = s.lists(ctx).
		Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR id IN (?)", like, like, matchingItems).
		Order("created_at DESC").
		Limit(searchLimit).
		Find(&lists).Error
	if err != nil {
		return nil, err
	}
	lists = FilterVisible(lists, viewer)
	views, err := s.finish(ctx, lists)
	if err != nil {
		return nil, err
	}

	var users []models.User
	if err := s.db.WithContext(ctx).Where("LOWER(username) LIKE ?", like).Order("username ASC").Limit(searchLimit).Find(&users).Error; err != nil {
		return nil, err
	}
	return &SearchResult{Lists: views, Users: toSummaries(users)}, nil
}
