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

// EngagementService 点赞、收藏与评论
type EngagementService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewEngagementService(db *gorm.DB, logger *zap.Logger) *EngagementService {
	return &EngagementService{db: db, logger: logger}
}

// LikeStatus 点赞数及查看者是否已点赞
type LikeStatus struct {
	Count   int64 `json:"likesCount"`
	IsLiked bool  `json:"isLiked"`
}

// CommentView 评论
type CommentView struct {
	ID        uuid.UUID   `json:"id"`
	ListID    uuid.UUID   `json:"listId"`
	Author    UserSummary `json:"author"`
	Content   string      `json:"content"`
	Timestamp string      `json:"timestamp"`
	CreatedAt time.Time   `json:"createdAt"`
}

// requireVisibleList 榜单不存在或查看者无权查看时都返回 ErrNotFound
func requireVisibleList(ctx context.Context, tx *gorm.DB, listID, viewerID uuid.UUID) error {
	var list models.List
	if err := tx.WithContext(ctx).Preload("User").First(&list, "id = ?", listID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	viewer, err := LoadViewer(ctx, tx, viewerID)
	if err != nil {
		return err
	}
	if !IsListVisible(&list.User, viewer) {
		return ErrNotFound
	}
	return nil
}

// ToggleLike 已点赞则取消，否则点赞
func (s *EngagementService) ToggleLike(ctx context.Context, userID, listID uuid.UUID) (*LikeStatus, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthorized
	}
	status := &LikeStatus{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireVisibleList(ctx, tx, listID, userID); err != nil {
			return err
		}
		var like models.Like
		err := tx.Where("user_id = ? AND list_id = ?", userID, listID).First(&like).Error
		switch {
		case err == nil:
			if err := tx.Delete(&like).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(&models.Like{UserID: userID, ListID: listID}).Error; err != nil {
				return err
			}
			status.IsLiked = true
		default:
			return err
		}
		return tx.Model(&models.Like{}).Where("list_id = ?", listID).Count(&status.Count).Error
	})
	if err != nil {
		return nil, err
	}
	return status, nil
}

// LikeStatus 榜单点赞数，viewerID 为空时 IsLiked 为 false
func (s *EngagementService) LikeStatus(ctx context.Context, listID, viewerID uuid.UUID) (*LikeStatus, error) {
	db := s.db.WithContext(ctx)
	if err := requireVisibleList(ctx, db, listID, viewerID); err != nil {
		return nil, err
	}
	status := &LikeStatus{}
	if err := db.Model(&models.Like{}).Where("list_id = ?", listID).Count(&status.Count).Error; err != nil {
		return nil, err
	}
	if viewerID == uuid.Nil {
		return status, nil
	}
	var mine int64
	if err := db.Model(&models.Like{}).Where("list_id = ? AND user_id = ?", listID, viewerID).Count(&mine).Error; err != nil {
		return nil, err
	}
	status.IsLiked = mine > 0
	return status, nil
}

// ToggleFavorite 收藏或取消收藏，返回操作后的状态
func (s *EngagementService) ToggleFavorite(ctx context.Context, userID, listID uuid.UUID) (bool, error) {
	if userID == uuid.Nil {
		return false, ErrUnauthorized
	}
	favorited := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireVisibleList(ctx, tx, listID, userID); err != nil {
			return err
		}
		var fav models.Favorite
		err := tx.Where("user_id = ? AND list_id = ?", userID, listID).First(&fav).Error
		if err == nil {
			return tx.Delete(&fav).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		favorited = true
		return tx.Create(&models.Favorite{UserID: userID, ListID: listID}).Error
	})
	return favorited, err
}

// IsFavorited 查看者是否收藏了该榜单
func (s *EngagementService) IsFavorited(ctx context.Context, listID, viewerID uuid.UUID) (bool, error) {
	if viewerID == uuid.Nil {
		return false, nil
	}
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Favorite{}).
		Where("list_id = ? AND user_id = ?", listID, viewerID).
		Count(&count).Error
	return count > 0, err
}

// Comments 榜单评论，最新的在前
func (s *EngagementService) Comments(ctx context.Context, listID, viewerID uuid.UUID) ([]CommentView, error) {
	db := s.db.WithContext(ctx)
	if err := requireVisibleList(ctx, db, listID, viewerID); err != nil {
		return nil, err
	}
	var comments []models.Comment
	err := db.Preload("User").
		Where("list_id = ?", listID).
		Order("created_at DESC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	now := time.Now()
	out := make([]CommentView, 0, len(comments))
	for i := range comments {
		out = append(out, newCommentView(&comments[i], now))
	}
	return out, nil
}

func newCommentView(c *models.Comment, now time.Time) CommentView {
	return CommentView{
		ID:        c.ID,
		ListID:    c.ListID,
		Author:    newUserSummary(&c.User),
		Content:   c.Content,
		Timestamp: utils.TimeAgo(c.CreatedAt, now),
		CreatedAt: c.CreatedAt,
	}
}

// AddComment 发表评论，内容会去掉全部 HTML 标签
func (s *EngagementService) AddComment(ctx context.Context, userID, listID uuid.UUID, content string) (*CommentView, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthorized
	}
	content = utils.SanitizeText(content)
	if content == "" {
		return nil, ErrEmptyComment
	}

	comment := models.Comment{ListID: listID, UserID: userID, Content: content}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireVisibleList(ctx, tx, listID, userID); err != nil {
			return err
		}
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}
		return tx.First(&comment.User, "id = ?", userID).Error
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("comment added", zap.String("list", listID.String()), zap.String("user", userID.String()))
	view := newCommentView(&comment, time.Now())
	return &view, nil
}

// DeleteComment 只能删除自己的评论
func (s *EngagementService) DeleteComment(ctx context.Context, userID, commentID uuid.UUID) error {
	if userID == uuid.Nil {
		return ErrUnauthorized
	}
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", commentID, userID).Delete(&models.Comment{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
