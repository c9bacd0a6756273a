package services

import (
	"context"
	"toplists/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Viewer 发起请求的用户及其已被接受的关注集合。ID 为 uuid.Nil 表示匿名访问
type Viewer struct {
	ID        uuid.UUID
	following map[uuid.UUID]bool
}

// Anonymous 未登录的查看者
func Anonymous() Viewer {
	return Viewer{}
}

// NewViewer builds a viewer from an explicit accepted-following set.
func NewViewer(id uuid.UUID, accepted ...uuid.UUID) Viewer {
	v := Viewer{ID: id, following: make(map[uuid.UUID]bool, len(accepted))}
	for _, a := range accepted {
		v.following[a] = true
	}
	return v
}

func (v Viewer) Authenticated() bool {
	return v.ID != uuid.Nil
}

// Follows reports whether the viewer has an accepted follow on owner.
func (v Viewer) Follows(owner uuid.UUID) bool {
	return v.following[owner]
}

// IsListVisible 公开用户的榜单所有人可见；私密用户的榜单仅本人和已接受的关注者可见
func IsListVisible(owner *models.User, viewer Viewer) bool {
	if owner == nil || owner.ID == uuid.Nil {
		return false
	}
	if owner.Public() {
		return true
	}
	if !viewer.Authenticated() {
		return false
	}
	return owner.ID == viewer.ID || viewer.Follows(owner.ID)
}

// FilterVisible 过滤掉查看者无权查看的榜单，保持原有顺序
func FilterVisible(lists []models.List, viewer Viewer) []models.List {
	out := lists[:0:0]
	for i := range lists {
		if IsListVisible(&lists[i].User, viewer) {
			out = append(out, lists[i])
		}
	}
	return out
}

// LoadViewer 读取查看者当前已被接受的关注集合，每次请求重新读取
func LoadViewer(ctx context.Context, db *gorm.DB, id uuid.UUID) (Viewer, error) {
	if id == uuid.Nil {
		return Anonymous(), nil
	}
	var followed []uuid.UUID
	err := db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND status = ?", id, models.FollowStatusAccepted).
		Pluck("followed_id", &followed).Error
	if err != nil {
		return Viewer{}, err
	}
	return NewViewer(id, followed...), nil
}
