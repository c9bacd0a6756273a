package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FollowStatus string

const (
	FollowStatusPending  FollowStatus = "pending"
	FollowStatusAccepted FollowStatus = "accepted"
)

// Follow 有向关注关系 (follower -> followed)。每个有序对最多一条，拒绝/取消/取关时直接删除
type Follow struct {
	ID         uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	FollowerID uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_follow_pair" json:"follower_id"`
	Follower   User         `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"follower"`
	FollowedID uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_follow_pair;index" json:"followed_id"`
	Followed   User         `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"followed"`
	Status     FollowStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

func (f *Follow) BeforeCreate(tx *gorm.DB) error {
	assignID(&f.ID)
	return nil
}
