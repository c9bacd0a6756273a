package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"toplists/internal/criteria"
	"toplists/internal/models"
	"toplists/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	MinListItems = 3
	MaxRating    = 10.0
)

// ItemInput 创建或编辑榜单时提交的条目
type ItemInput struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Image       string             `json:"image"`
	Rating      *float64           `json:"rating"`
	Ratings     map[string]float64 `json:"ratings"`
}

// ListInput 创建或编辑榜单的请求体
type ListInput struct {
	Category    string      `json:"category"`
	Subcategory string      `json:"subcategory"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Items       []ItemInput `json:"items"`
}

// ListService 榜单写操作；写入后失效排行缓存
type ListService struct {
	db     *gorm.DB
	cache  utils.Cache
	logger *zap.Logger
}

func NewListService(db *gorm.DB, cache utils.Cache, logger *zap.Logger) *ListService {
	return &ListService{db: db, cache: cache, logger: logger}
}

// CategoryView 分类及其子分类和评分维度
type CategoryView struct {
	Name          string               `json:"name"`
	Subcategories []string             `json:"subcategories"`
	Criteria      []criteria.Criterion `json:"criteria"`
}

// Categories 返回全部分类
func (s *ListService) Categories(ctx context.Context) ([]CategoryView, error) {
	var cats []models.Category
	err := s.db.WithContext(ctx).
		Preload("Subcategories", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		Order("name ASC").
		Find(&cats).Error
	if err != nil {
		return nil, err
	}
	out := make([]CategoryView, 0, len(cats))
	for _, c := range cats {
		v := CategoryView{Name: c.Name, Subcategories: []string{}, Criteria: []criteria.Criterion{}}
		for _, sub := range c.Subcategories {
			v.Subcategories = append(v.Subcategories, sub.Name)
		}
		if set, ok := criteria.Lookup(c.Name); ok {
			v.Criteria = set.Criteria
		}
		out = append(out, v)
	}
	return out, nil
}

// resolveCategory 把分类名解析为记录；未知分类归入 General（category_id 为空）
func resolveCategory(tx *gorm.DB, name, subName string) (*uint, *uint, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == models.DefaultCategoryName {
		return nil, nil, nil
	}
	var cat models.Category
	if err := tx.Where("name = ?", name).First(&cat).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	subName = strings.TrimSpace(subName)
	if subName == "" {
		return &cat.ID, nil, nil
	}
	var sub models.Subcategory
	if err := tx.Where("category_id = ? AND name = ?", cat.ID, subName).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, invalidf("unknown subcategory %q for %s", subName, name)
		}
		return nil, nil, err
	}
	return &cat.ID, &sub.ID, nil
}

// buildItems 校验并生成条目。空名条目被丢弃，剩余条目按提交顺序获得 1 起始的名次
func buildItems(category string, inputs []ItemInput) ([]models.Item, error) {
	set, hasCriteria := criteria.Lookup(category)

	items := make([]models.Item, 0, len(inputs))
	for _, in := range inputs {
		name := strings.TrimSpace(in.Name)
		if name == "" {
			continue
		}
		item := models.Item{
			Position:    len(items) + 1,
			Name:        name,
			Description: strings.TrimSpace(in.Description),
			ImageURL:    strings.TrimSpace(in.Image),
		}

		if len(in.Ratings) > 0 {
			if !hasCriteria {
				return nil, invalidf("category %s has no rating criteria", category)
			}
			if err := set.Validate(in.Ratings); err != nil {
				return nil, invalidf("%s: %v", name, err)
			}
			item.Ratings = datatypes.NewJSONType(in.Ratings)
			item.Rating = criteria.Average(in.Ratings)
		}
		if in.Rating != nil {
			if *in.Rating < 0 || *in.Rating > MaxRating {
				return nil, invalidf("%s: rating must be between 0 and %v", name, MaxRating)
			}
			item.Rating = *in.Rating
		}
		items = append(items, item)
	}

	if len(items) < MinListItems {
		return nil, ErrTooFewItems
	}
	return items, nil
}

func categoryLabel(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.DefaultCategoryName
	}
	return name
}

// Create 创建榜单
func (s *ListService) Create(ctx context.Context, ownerID uuid.UUID, in ListInput) (uuid.UUID, error) {
	if ownerID == uuid.Nil {
		return uuid.Nil, ErrUnauthorized
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return uuid.Nil, ErrTitleRequired
	}
	items, err := buildItems(categoryLabel(in.Category), in.Items)
	if err != nil {
		return uuid.Nil, err
	}

	list := models.List{
		UserID:      ownerID,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Items:       items,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		catID, subID, err := resolveCategory(tx, in.Category, in.Subcategory)
		if err != nil {
			return err
		}
		list.CategoryID, list.SubcategoryID = catID, subID
		return tx.Create(&list).Error
	})
	if err != nil {
		return uuid.Nil, err
	}

	s.invalidate(ctx)
	s.logger.Info("list created", zap.String("list", list.ID.String()), zap.String("owner", ownerID.String()))
	return list.ID, nil
}

// ownedList 榜单不存在或不属于该用户都返回 ErrNotFound
func ownedList(tx *gorm.DB, listID, ownerID uuid.UUID) (*models.List, error) {
	var list models.List
	if err := tx.Where("id = ? AND user_id = ?", listID, ownerID).First(&list).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &list, nil
}

// Update 整体替换榜单内容和条目
func (s *ListService) Update(ctx context.Context, ownerID, listID uuid.UUID, in ListInput) error {
	if ownerID == uuid.Nil {
		return ErrUnauthorized
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return ErrTitleRequired
	}
	items, err := buildItems(categoryLabel(in.Category), in.Items)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		list, err := ownedList(tx, listID, ownerID)
		if err != nil {
			return err
		}
		catID, subID, err := resolveCategory(tx, in.Category, in.Subcategory)
		if err != nil {
			return err
		}
		err = tx.Model(list).Select("Title", "Description", "CategoryID", "SubcategoryID", "UpdatedAt").
			Updates(models.List{
				Title:         title,
				Description:   strings.TrimSpace(in.Description),
				CategoryID:    catID,
				SubcategoryID: subID,
				UpdatedAt:     time.Now(),
			}).Error
		if err != nil {
			return err
		}
		if err := tx.Where("list_id = ?", list.ID).Delete(&models.Item{}).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].ListID = list.ID
		}
		return tx.Create(&items).Error
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx)
	return nil
}

// Delete 删除榜单及其条目、点赞、收藏和评论
func (s *ListService) Delete(ctx context.Context, ownerID, listID uuid.UUID) error {
	if ownerID == uuid.Nil {
		return ErrUnauthorized
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		list, err := ownedList(tx, listID, ownerID)
		if err != nil {
			return err
		}
		for _, child := range []any{&models.Item{}, &models.Like{}, &models.Favorite{}, &models.Comment{}} {
			if err := tx.Where("list_id = ?", list.ID).Delete(child).Error; err != nil {
				return err
			}
		}
		return tx.Delete(list).Error
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx)
	s.logger.Info("list deleted", zap.String("list", listID.String()))
	return nil
}

func (s *ListService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Bump(ctx, rankingGenerationKey)
		s.cache.DeletePrefix(ctx, rankingCachePrefix)
	}
}
