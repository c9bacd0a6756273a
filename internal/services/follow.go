package services

import (
	"context"
	"errors"
	"time"
	"toplists/internal/models"
	"toplists/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FollowService 管理关注关系：申请、接受、拒绝、取消、取关
type FollowService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewFollowService(db *gorm.DB, logger *zap.Logger) *FollowService {
	return &FollowService{db: db, logger: logger}
}

// ToggleResult 切换关注后的状态。新建的关系总是 pending，因此 Following 恒为 false
type ToggleResult struct {
	Following bool                 `json:"following"`
	Status    *models.FollowStatus `json:"status"`
}

// FollowStatusView 查看者与目标用户的关系
type FollowStatusView struct {
	IsFollowing bool                 `json:"isFollowing"`
	IsPending   bool                 `json:"isPending"`
	Status      *models.FollowStatus `json:"status"`
}

// FollowRequest 关注申请
type FollowRequest struct {
	RequestID uuid.UUID   `json:"requestId"`
	User      UserSummary `json:"user"`
	CreatedAt time.Time   `json:"createdAt"`
	Timestamp string      `json:"timestamp"`
}

// UserStats 用户主页统计，只统计已接受的关注
type UserStats struct {
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
	Lists     int64 `json:"lists"`
}

// Toggle 有关系则删除（取消申请或取关），无关系则创建 pending 申请
func (s *FollowService) Toggle(ctx context.Context, requesterID, targetID uuid.UUID) (*ToggleResult, error) {
	if requesterID == uuid.Nil {
		return nil, ErrUnauthorized
	}
	if requesterID == targetID {
		return nil, ErrSelfFollow
	}

	result := &ToggleResult{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var target models.User
		if err := tx.Select("id").First(&target, "id = ?", targetID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var edge models.Follow
		err := tx.Where("follower_id = ? AND followed_id = ?", requesterID, targetID).First(&edge).Error
		if err == nil {
			return tx.Delete(&edge).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		edge = models.Follow{
			FollowerID: requesterID,
			FollowedID: targetID,
			Status:     models.FollowStatusPending,
		}
		if err := tx.Create(&edge).Error; err != nil {
			return err
		}
		status := models.FollowStatusPending
		result.Status = &status
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("follow toggled",
		zap.String("follower", requesterID.String()),
		zap.String("followed", targetID.String()),
		zap.Bool("pending", result.Status != nil),
	)
	return result, nil
}

// findPending 只有被关注者本人能处理仍处于 pending 的申请
func (s *FollowService) findPending(tx *gorm.DB, requestID, userID uuid.UUID) (*models.Follow, error) {
	var edge models.Follow
	err := tx.Where("id = ? AND followed_id = ? AND status = ?", requestID, userID, models.FollowStatusPending).
		First(&edge).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &edge, nil
}

// Accept 接受关注申请
func (s *FollowService) Accept(ctx context.Context, requestID, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return ErrUnauthorized
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		edge, err := s.findPending(tx, requestID, userID)
		if err != nil {
			return err
		}
		return tx.Model(edge).Update("status", models.FollowStatusAccepted).Error
	})
}

// Reject 拒绝关注申请，直接删除记录，对方之后可以重新申请
func (s *FollowService) Reject(ctx context.Context, requestID, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return ErrUnauthorized
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		edge, err := s.findPending(tx, requestID, userID)
		if err != nil {
			return err
		}
		return tx.Delete(edge).Error
	})
}

// Status 查看者对目标用户的关注状态，匿名或无关系时返回中性结果
func (s *FollowService) Status(ctx context.Context, viewerID, targetID uuid.UUID) (*FollowStatusView, error) {
	view := &FollowStatusView{}
	if viewerID == uuid.Nil {
		return view, nil
	}
	var edge models.Follow
	err := s.db.WithContext(ctx).Where("follower_id = ? AND followed_id = ?", viewerID, targetID).First(&edge).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return view, nil
	}
	if err != nil {
		return nil, err
	}
	status := edge.Status
	view.Status = &status
	view.IsFollowing = status == models.FollowStatusAccepted
	view.IsPending = status == models.FollowStatusPending
	return view, nil
}

// Pending 别人发给我的待处理申请，最新的在前
func (s *FollowService) Pending(ctx context.Context, userID uuid.UUID) ([]FollowRequest, error) {
	var edges []models.Follow
	err := s.db.WithContext(ctx).Preload("Follower").
		Where("followed_id = ? AND status = ?", userID, models.FollowStatusPending).
		Order("created_at DESC").
		Find(&edges).Error
	if err != nil {
		return nil, err
	}
	now := time.Now()
	out := make([]FollowRequest, 0, len(edges))
	for i := range edges {
		out = append(out, FollowRequest{
			RequestID: edges[i].ID,
			User:      newUserSummary(&edges[i].Follower),
			CreatedAt: edges[i].CreatedAt,
			Timestamp: utils.TimeAgo(edges[i].CreatedAt, now),
		})
	}
	return out, nil
}

// Outgoing 我发出的仍在等待的申请
func (s *FollowService) Outgoing(ctx context.Context, userID uuid.UUID) ([]FollowRequest, error) {
	var edges []models.Follow
	err := s.db.WithContext(ctx).Preload("Followed").
		Where("follower_id = ? AND status = ?", userID, models.FollowStatusPending).
		Order("created_at DESC").
		Find(&edges).Error
	if err != nil {
		return nil, err
	}
	now := time.Now()
	out := make([]FollowRequest, 0, len(edges))
	for i := range edges {
		out = append(out, FollowRequest{
			RequestID: edges[i].ID,
			User:      newUserSummary(&edges[i].Followed),
			CreatedAt: edges[i].CreatedAt,
			Timestamp: utils.TimeAgo(edges[i].CreatedAt, now),
		})
	}
	return out, nil
}

// PendingCount 待处理申请数量
func (s *FollowService) PendingCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("followed_id = ? AND status = ?", userID, models.FollowStatusPending).
		Count(&count).Error
	return count, err
}

// Followers 已接受的关注者
func (s *FollowService) Followers(ctx context.Context, userID uuid.UUID) ([]UserSummary, error) {
	var users []models.User
	err := s.db.WithContext(ctx).
		Joins("JOIN follows ON follows.follower_id = users.id").
		Where("follows.followed_id = ? AND follows.status = ?", userID, models.FollowStatusAccepted).
		Order("follows.created_at DESC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return toSummaries(users), nil
}

// Following 我已被接受关注的用户
func (s *FollowService) Following(ctx context.Context, userID uuid.UUID) ([]UserSummary, error) {
	var users []models.User
	err := s.db.WithContext(ctx).
		Joins("JOIN follows ON follows.followed_id = users.id").
		Where("follows.follower_id = ? AND follows.status = ?", userID, models.FollowStatusAccepted).
		Order("follows.created_at DESC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return toSummaries(users), nil
}

// Stats 关注数、粉丝数与榜单数
func (s *FollowService) Stats(ctx context.Context, userID uuid.UUID) (*UserStats, error) {
	stats := &UserStats{}
	db := s.db.WithContext(ctx)
	if err := db.Model(&models.Follow{}).
		Where("followed_id = ? AND status = ?", userID, models.FollowStatusAccepted).
		Count(&stats.Followers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Follow{}).
		Where("follower_id = ? AND status = ?", userID, models.FollowStatusAccepted).
		Count(&stats.Following).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.List{}).Where("user_id = ?", userID).Count(&stats.Lists).Error; err != nil {
		return nil, err
	}
	return stats, nil
}

func toSummaries(users []models.User) []UserSummary {
	out := make([]UserSummary, 0, len(users))
	for i := range users {
		out = append(out, newUserSummary(&users[i]))
	}
	return out
}
