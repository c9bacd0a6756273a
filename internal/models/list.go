package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// List 用户创建的 Top 榜单
type List struct {
	ID            uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID    `gorm:"type:uuid;not null;index" json:"user_id"`
	User          User         `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	CategoryID    *uint        `gorm:"index" json:"category_id"`
	Category      *Category    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"category"`
	SubcategoryID *uint        `gorm:"index" json:"subcategory_id"`
	Subcategory   *Subcategory `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"subcategory"`
	Title         string       `gorm:"not null" json:"title"`
	Description   string       `gorm:"type:text" json:"description"`
	Items         []Item       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
	CreatedAt     time.Time    `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`

	// 非数据库字段，查询时实时统计
	LikeCount    int `gorm:"-" json:"likes"`
	CommentCount int `gorm:"-" json:"comments"`
}

func (l *List) BeforeCreate(tx *gorm.DB) error {
	assignID(&l.ID)
	return nil
}

// CategoryName returns the category name, "General" when none was resolved.
func (l *List) CategoryName() string {
	if l.Category != nil && l.Category.Name != "" {
		return l.Category.Name
	}
	return DefaultCategoryName
}

// SubcategoryName returns "" when the list has no subcategory.
func (l *List) SubcategoryName() string {
	if l.Subcategory != nil {
		return l.Subcategory.Name
	}
	return ""
}

// Item 榜单条目，Position 为 1 起始的连续名次
type Item struct {
	ID          uuid.UUID                              `gorm:"type:uuid;primaryKey" json:"id"`
	ListID      uuid.UUID                              `gorm:"type:uuid;not null;index" json:"list_id"`
	Position    int                                    `gorm:"not null" json:"rank"`
	Name        string                                 `gorm:"not null" json:"name"`
	Description string                                 `gorm:"type:text" json:"description"`
	ImageURL    string                                 `json:"image"`
	Rating      float64                                `gorm:"default:0;index" json:"rating"`
	Ratings     datatypes.JSONType[map[string]float64] `json:"ratings"`
}

func (i *Item) BeforeCreate(tx *gorm.DB) error {
	assignID(&i.ID)
	return nil
}
