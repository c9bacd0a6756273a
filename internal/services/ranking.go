package services

import (
	"context"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
	"toplists/internal/models"
	"toplists/internal/utils"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"gorm.io/gorm"
)

const (
	TopItemsPerCategory = 10
	TopCategoriesLimit  = 5

	rankingCachePrefix = "ranking:"
	// 不能以 rankingCachePrefix 开头，否则 DeletePrefix 会把计数器一起删掉
	rankingGenerationKey = "ranking-generation"
)

// RatedItem 参与排行的一条评分记录
type RatedItem struct {
	Category    string
	Name        string
	Image       string
	Description string
	Rating      float64
}

// RankedItem 排行结果
type RankedItem struct {
	Rank          int     `json:"rank"`
	Name          string  `json:"name"`
	AverageRating float64 `json:"averageRating"`
	Appearances   int     `json:"appearances"`
	Image         string  `json:"image"`
	Description   string  `json:"description"`
}

// CategoryCount 分类（或子分类）下的榜单数
type CategoryCount struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory,omitempty"`
	ListsCount  int    `json:"listsCount"`
}

// ListCategory 一个榜单的分类信息
type ListCategory struct {
	Category    string
	Subcategory string
}

// normalizeName 条目分组键：去空白并做大小写折叠。Caser 有状态，不能跨 goroutine 共享
func normalizeName(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

type itemGroup struct {
	key         string
	name        string
	image       string
	description string
	sum         float64
	count       int
}

// AggregateTopItems 按分类汇总条目平均分。只统计评分大于 0 的条目，
// 名称忽略大小写和首尾空白后相同视为同一条目，展示名取首次出现的写法。
// categoryFilter 非空时只返回该分类。
func AggregateTopItems(items []RatedItem, categoryFilter string) map[string][]RankedItem {
	groups := make(map[string]map[string]*itemGroup)
	for _, it := range items {
		if it.Rating <= 0 {
			continue
		}
		category := it.Category
		if category == "" {
			category = models.DefaultCategoryName
		}
		if categoryFilter != "" && category != categoryFilter {
			continue
		}
		key := normalizeName(it.Name)
		if key == "" {
			continue
		}

		byName, ok := groups[category]
		if !ok {
			byName = make(map[string]*itemGroup)
			groups[category] = byName
		}
		g, ok := byName[key]
		if !ok {
			g = &itemGroup{key: key, name: strings.TrimSpace(it.Name)}
			byName[key] = g
		}
		g.sum += it.Rating
		g.count++
		if g.image == "" {
			g.image = it.Image
		}
		if g.description == "" {
			g.description = it.Description
		}
	}

	out := make(map[string][]RankedItem, len(groups))
	for category, byName := range groups {
		list := make([]*itemGroup, 0, len(byName))
		for _, g := range byName {
			list = append(list, g)
		}
		sort.Slice(list, func(i, j int) bool {
			ai, aj := list[i].sum/float64(list[i].count), list[j].sum/float64(list[j].count)
			if ai != aj {
				return ai > aj
			}
			if list[i].count != list[j].count {
				return list[i].count > list[j].count
			}
			return list[i].key < list[j].key
		})
		if len(list) > TopItemsPerCategory {
			list = list[:TopItemsPerCategory]
		}

		ranked := make([]RankedItem, len(list))
		for i, g := range list {
			ranked[i] = RankedItem{
				Rank:          i + 1,
				Name:          g.name,
				AverageRating: math.Round(g.sum/float64(g.count)*10) / 10,
				Appearances:   g.count,
				Image:         g.image,
				Description:   g.description,
			}
		}
		out[category] = ranked
	}
	return out
}

// AggregateTopCategories 统计各分类的榜单数。有子分类的榜单计入 "分类-子分类"，
// 展示名为子分类名；返回前 5 个，数量相同时按名称排序
func AggregateTopCategories(lists []ListCategory) []CategoryCount {
	counts := make(map[string]*CategoryCount)
	var order []string
	for _, l := range lists {
		category := l.Category
		if category == "" {
			category = models.DefaultCategoryName
		}
		key, name := category, category
		if l.Subcategory != "" {
			key = category + "-" + l.Subcategory
			name = l.Subcategory
		}
		c, ok := counts[key]
		if !ok {
			c = &CategoryCount{Name: name, Category: category, Subcategory: l.Subcategory}
			counts[key] = c
			order = append(order, key)
		}
		c.ListsCount++
	}

	out := make([]CategoryCount, 0, len(counts))
	for _, key := range order {
		out = append(out, *counts[key])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ListsCount != out[j].ListsCount {
			return out[i].ListsCount > out[j].ListsCount
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > TopCategoriesLimit {
		out = out[:TopCategoriesLimit]
	}
	return out
}

// RankingService 读取数据并计算排行，结果短期缓存，榜单写入时失效
type RankingService struct {
	db     *gorm.DB
	cache  utils.Cache
	ttl    time.Duration
	logger *zap.Logger
}

func NewRankingService(db *gorm.DB, cache utils.Cache, ttl time.Duration, logger *zap.Logger) *RankingService {
	return &RankingService{db: db, cache: cache, ttl: ttl, logger: logger}
}

// cacheKey 把当前代数放进键里。榜单写入会先增加代数，
// 写入前读库、写入后才 Set 的旧结果落在旧代数的键上，之后不会再被读到
func (s *RankingService) cacheKey(ctx context.Context, name string) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	gen, ok := s.cache.Generation(ctx, rankingGenerationKey)
	if !ok {
		return "", false
	}
	return rankingCachePrefix + strconv.FormatInt(gen, 10) + ":" + name, true
}

type ratedRow struct {
	Name         string
	ImageURL     string
	Description  string
	Rating       float64
	CategoryName *string
}

// TopItems 各分类评分最高的条目
func (s *RankingService) TopItems(ctx context.Context, categoryFilter string) (map[string][]RankedItem, error) {
	key, cacheable := s.cacheKey(ctx, "items:"+categoryFilter)
	var cached map[string][]RankedItem
	if cacheable && s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	var rows []ratedRow
	err := s.db.WithContext(ctx).Table("items").
		Select("items.name, items.image_url, items.description, items.rating, categories.name AS category_name").
		Joins("JOIN lists ON lists.id = items.list_id").
		Joins("LEFT JOIN categories ON categories.id = lists.category_id").
		Where("items.rating > ?", 0).
		Order("lists.created_at ASC, items.position ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	items := make([]RatedItem, len(rows))
	for i, r := range rows {
		items[i] = RatedItem{
			Name:        r.Name,
			Image:       r.ImageURL,
			Description: r.Description,
			Rating:      r.Rating,
		}
		if r.CategoryName != nil {
			items[i].Category = *r.CategoryName
		}
	}
	result := AggregateTopItems(items, categoryFilter)

	if cacheable {
		s.cache.Set(ctx, key, result, s.ttl)
	}
	s.logger.Debug("top items computed", zap.Int("items", len(items)), zap.Int("categories", len(result)))
	return result, nil
}

type categoryRow struct {
	CategoryName    *string
	SubcategoryName *string
}

// TopCategories 榜单最多的分类
func (s *RankingService) TopCategories(ctx context.Context) ([]CategoryCount, error) {
	key, cacheable := s.cacheKey(ctx, "categories")
	var cached []CategoryCount
	if cacheable && s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	var rows []categoryRow
	err := s.db.WithContext(ctx).Table("lists").
		Select("categories.name AS category_name, subcategories.name AS subcategory_name").
		Joins("LEFT JOIN categories ON categories.id = lists.category_id").
		Joins("LEFT JOIN subcategories ON subcategories.id = lists.subcategory_id").
		Order("lists.created_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	lists := make([]ListCategory, len(rows))
	for i, r := range rows {
		if r.CategoryName != nil {
			lists[i].Category = *r.CategoryName
		}
		if r.SubcategoryName != nil {
			lists[i].Subcategory = *r.SubcategoryName
		}
	}
	result := AggregateTopCategories(lists)

	if cacheable {
		s.cache.Set(ctx, key, result, s.ttl)
	}
	return result, nil
}
