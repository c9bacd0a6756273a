package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User 用户资料。ID 与身份提供方签发的 subject 一致，首次携带令牌访问时创建
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;not null" json:"username"`
	Email     string    `gorm:"index" json:"email"`
	AvatarURL string    `json:"avatar_url"`
	IsPublic  *bool     `gorm:"default:true" json:"is_public"` // nil 视为公开
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	// No DeletedAt for hard delete
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	assignID(&u.ID)
	return nil
}

// Public reports whether the profile is public. An unset flag counts as public.
func (u *User) Public() bool {
	return u.IsPublic == nil || *u.IsPublic
}
