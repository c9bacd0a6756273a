package services

import (
	"sort"
	"time"
	"toplists/internal/models"
	"toplists/internal/utils"

	"github.com/google/uuid"
)

// AuthorView 榜单作者信息
type AuthorView struct {
	UserID   uuid.UUID `json:"userId"`
	Username string    `json:"username"`
	Avatar   string    `json:"avatar"`
}

// ItemView 榜单条目，Rank 为 1 起始的连续名次
type ItemView struct {
	Rank        int                `json:"rank"`
	Name        string             `json:"name"`
	Rating      float64            `json:"rating"`
	Ratings     map[string]float64 `json:"ratings,omitempty"`
	Image       string             `json:"image"`
	Description string             `json:"description"`
}

// ListView 接口返回的榜单结构
type ListView struct {
	ID              uuid.UUID  `json:"id"`
	Category        string     `json:"category"`
	Subcategory     string     `json:"subcategory,omitempty"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	DescriptionHTML string     `json:"descriptionHtml,omitempty"`
	Author          AuthorView `json:"author"`
	Items           []ItemView `json:"items"`
	CoverImage      string     `json:"coverImage"`
	Likes           int        `json:"likes"`
	Comments        int        `json:"comments"`
	Timestamp       string     `json:"timestamp"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// UserSummary 用户列表中的简要信息
type UserSummary struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Avatar   string    `json:"avatar"`
	IsPublic bool      `json:"isPublic"`
}

func newUserSummary(u *models.User) UserSummary {
	return UserSummary{
		ID:       u.ID,
		Username: u.Username,
		Avatar:   utils.AvatarOr(u.AvatarURL, u.ID.String()),
		IsPublic: u.Public(),
	}
}

func newListView(l *models.List, now time.Time) ListView {
	items := make([]models.Item, len(l.Items))
	copy(items, l.Items)
	sort.SliceStable(items, func(i, j int) bool { return items[i].Position < items[j].Position })

	v := ListView{
		ID:              l.ID,
		Category:        l.CategoryName(),
		Subcategory:     l.SubcategoryName(),
		Title:           l.Title,
		Description:     l.Description,
		DescriptionHTML: utils.RenderMarkdown(l.Description),
		Author: AuthorView{
			UserID:   l.User.ID,
			Username: l.User.Username,
			Avatar:   utils.AvatarOr(l.User.AvatarURL, l.User.ID.String()),
		},
		Items:     make([]ItemView, 0, len(items)),
		Likes:     l.LikeCount,
		Comments:  l.CommentCount,
		Timestamp: utils.TimeAgo(l.CreatedAt, now),
		CreatedAt: l.CreatedAt,
	}
	for i, it := range items {
		v.Items = append(v.Items, ItemView{
			Rank:        i + 1,
			Name:        it.Name,
			Rating:      it.Rating,
			Ratings:     it.Ratings.Data(),
			Image:       it.ImageURL,
			Description: it.Description,
		})
		if v.CoverImage == "" && it.ImageURL != "" {
			v.CoverImage = it.ImageURL
		}
	}
	return v
}

func newListViews(lists []models.List) []ListView {
	now := time.Now()
	out := make([]ListView, 0, len(lists))
	for i := range lists {
		out = append(out, newListView(&lists[i], now))
	}
	return out
}
