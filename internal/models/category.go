package models

import (
	"time"
)

const DefaultCategoryName = "General"

type Category struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	Name          string        `gorm:"not null;unique" json:"category_name"`
	Subcategories []Subcategory `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"subcategories"`
	CreatedAt     time.Time     `json:"created_at"`
}

type Subcategory struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	CategoryID uint   `gorm:"not null;uniqueIndex:idx_category_subcategory" json:"category_id"`
	Name       string `gorm:"not null;uniqueIndex:idx_category_subcategory" json:"subcategory_name"`
}
