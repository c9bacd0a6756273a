package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RadarEntry 用户想稍后关注的条目。ListID/ListTitle 只记录来源，不构成从属关系
type RadarEntry struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID  `gorm:"type:uuid;not null;index:idx_radar_lookup" json:"userId"`
	ItemTitle       string     `gorm:"not null;index:idx_radar_lookup" json:"itemTitle"`
	ItemDescription string     `gorm:"type:text" json:"itemDescription"`
	ItemImage       string     `json:"itemImage"`
	Category        string     `gorm:"not null;index:idx_radar_lookup" json:"category"`
	ListID          *uuid.UUID `gorm:"type:uuid" json:"listId"`
	ListTitle       string     `json:"listTitle"`
	Notes           string     `gorm:"type:text" json:"notes"`
	CreatedAt       time.Time  `gorm:"index" json:"addedAt"`
}

func (r *RadarEntry) BeforeCreate(tx *gorm.DB) error {
	assignID(&r.ID)
	return nil
}
