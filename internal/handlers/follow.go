package handlers

import (
	"net/http"
	"toplists/internal/middleware"
	"toplists/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type FollowHandler struct {
	follows *services.FollowService
	metrics *middleware.Metrics
	logger  *zap.Logger
}

func NewFollowHandler(follows *services.FollowService, metrics *middleware.Metrics, logger *zap.Logger) *FollowHandler {
	return &FollowHandler{follows: follows, metrics: metrics, logger: logger}
}

// Toggle 关注/取消关注/撤回申请
func (h *FollowHandler) Toggle(c *gin.Context) {
	targetID, ok := uuidParam(c, "userId")
	if !ok {
		return
	}
	res, err := h.follows.Toggle(c.Request.Context(), middleware.CurrentUserID(c), targetID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if res.Status != nil {
		h.metrics.Follow("requested")
	} else {
		h.metrics.Follow("removed")
	}
	c.JSON(http.StatusOK, res)
}

// Accept 接受关注申请
func (h *FollowHandler) Accept(c *gin.Context) {
	requestID, ok := uuidParam(c, "requestId")
	if !ok {
		return
	}
	if err := h.follows.Accept(c.Request.Context(), requestID, middleware.CurrentUserID(c)); err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.metrics.Follow("accepted")
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Reject 拒绝关注申请
func (h *FollowHandler) Reject(c *gin.Context) {
	requestID, ok := uuidParam(c, "requestId")
	if !ok {
		return
	}
	if err := h.follows.Reject(c.Request.Context(), requestID, middleware.CurrentUserID(c)); err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.metrics.Follow("rejected")
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Status 当前用户与目标用户的关注状态，匿名返回中性结果
func (h *FollowHandler) Status(c *gin.Context) {
	targetID, ok := uuidParam(c, "userId")
	if !ok {
		return
	}
	status, err := h.follows.Status(c.Request.Context(), middleware.CurrentUserID(c), targetID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *FollowHandler) Pending(c *gin.Context) {
	reqs, err := h.follows.Pending(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": reqs})
}

func (h *FollowHandler) Outgoing(c *gin.Context) {
	reqs, err := h.follows.Outgoing(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": reqs})
}

func (h *FollowHandler) Count(c *gin.Context) {
	n, err := h.follows.PendingCount(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

// Followers 已接受的关注者
func (h *FollowHandler) Followers(c *gin.Context) {
	userID, ok := uuidParam(c, "userId")
	if !ok {
		return
	}
	users, err := h.follows.Followers(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// Following 正在关注的用户
func (h *FollowHandler) Following(c *gin.Context) {
	userID, ok := uuidParam(c, "userId")
	if !ok {
		return
	}
	users, err := h.follows.Following(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *FollowHandler) Stats(c *gin.Context) {
	userID, ok := uuidParam(c, "userId")
	if !ok {
		return
	}
	stats, err := h.follows.Stats(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
