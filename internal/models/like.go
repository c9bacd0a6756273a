package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Like 点赞，每个 (user, list) 最多一条
type Like struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_like_user_list" json:"user_id"`
	ListID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_like_user_list;index" json:"list_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (l *Like) BeforeCreate(tx *gorm.DB) error {
	assignID(&l.ID)
	return nil
}
