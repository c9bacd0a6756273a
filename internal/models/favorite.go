package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Favorite 收藏模型 - 用户收藏榜单
type Favorite struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_favorite_user_list" json:"user_id"`
	ListID    uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_favorite_user_list" json:"list_id"`
	List      List      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"list"`
	CreatedAt time.Time `json:"created_at"`
}

func (f *Favorite) BeforeCreate(tx *gorm.DB) error {
	assignID(&f.ID)
	return nil
}
