package handlers

import (
	"net/http"
	"toplists/internal/middleware"
	"toplists/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type EngagementHandler struct {
	engagement *services.EngagementService
	metrics    *middleware.Metrics
	logger     *zap.Logger
}

func NewEngagementHandler(engagement *services.EngagementService, metrics *middleware.Metrics, logger *zap.Logger) *EngagementHandler {
	return &EngagementHandler{engagement: engagement, metrics: metrics, logger: logger}
}

// ToggleLike 点赞/取消点赞
func (h *EngagementHandler) ToggleLike(c *gin.Context) {
	listID, ok := uuidParam(c, "listId")
	if !ok {
		return
	}
	st, err := h.engagement.ToggleLike(c.Request.Context(), middleware.CurrentUserID(c), listID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.metrics.List("liked")
	c.JSON(http.StatusOK, gin.H{"liked": st.IsLiked, "likesCount": st.Count})
}

// Likes 点赞数及当前用户是否已点赞
func (h *EngagementHandler) Likes(c *gin.Context) {
	listID, ok := uuidParam(c, "listId")
	if !ok {
		return
	}
	st, err := h.engagement.LikeStatus(c.Request.Context(), listID, middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"likesCount": st.Count, "isLiked": st.IsLiked})
}

// ToggleFavorite 收藏/取消收藏
func (h *EngagementHandler) ToggleFavorite(c *gin.Context) {
	listID, ok := uuidParam(c, "listId")
	if !ok {
		return
	}
	on, err := h.engagement.ToggleFavorite(c.Request.Context(), middleware.CurrentUserID(c), listID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if on {
		h.metrics.List("favorited")
	}
	c.JSON(http.StatusOK, gin.H{"favorited": on})
}

// IsFavorited 匿名用户返回 false
func (h *EngagementHandler) IsFavorited(c *gin.Context) {
	listID, ok := uuidParam(c, "listId")
	if !ok {
		return
	}
	fav, err := h.engagement.IsFavorited(c.Request.Context(), listID, middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"isFavorited": fav})
}

// Comments 评论列表，榜单不可见时返回 404
func (h *EngagementHandler) Comments(c *gin.Context) {
	listID, ok := uuidParam(c, "listId")
	if !ok {
		return
	}
	comments, err := h.engagement.Comments(c.Request.Context(), listID, middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

type commentRequest struct {
	Content string `json:"content"`
}

func (h *EngagementHandler) AddComment(c *gin.Context) {
	listID, ok := uuidParam(c, "listId")
	if !ok {
		return
	}
	var req commentRequest
	if !bindJSON(c, &req) {
		return
	}
	comment, err := h.engagement.AddComment(c.Request.Context(), middleware.CurrentUserID(c), listID, req.Content)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.metrics.List("commented")
	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}

func (h *EngagementHandler) DeleteComment(c *gin.Context) {
	commentID, ok := uuidParam(c, "commentId")
	if !ok {
		return
	}
	if err := h.engagement.DeleteComment(c.Request.Context(), middleware.CurrentUserID(c), commentID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
