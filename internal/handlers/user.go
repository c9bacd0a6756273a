package handlers

import (
	"net/http"
	"toplists/internal/middleware"
	"toplists/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserHandler struct {
	users  *services.UserService
	logger *zap.Logger
}

func NewUserHandler(users *services.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// Me 当前用户资料
func (h *UserHandler) Me(c *gin.Context) {
	p, err := h.users.Me(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": p})
}

// UpdateProfile 修改用户名、头像
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var in services.ProfileInput
	if !bindJSON(c, &in) {
		return
	}
	p, err := h.users.UpdateProfile(c.Request.Context(), middleware.CurrentUserID(c), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": p})
}

type settingsRequest struct {
	IsPublic *bool `json:"is_public"`
}

// UpdateSettings 隐私设置
func (h *UserHandler) UpdateSettings(c *gin.Context) {
	var req settingsRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.IsPublic == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "is_public is required"})
		return
	}
	if err := h.users.SetPublic(c.Request.Context(), middleware.CurrentUserID(c), *req.IsPublic); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "is_public": *req.IsPublic})
}

// Profile 他人主页
func (h *UserHandler) Profile(c *gin.Context) {
	userID, ok := uuidParam(c, "userId")
	if !ok {
		return
	}
	p, err := h.users.PublicProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": p})
}

// Suggested 推荐关注
func (h *UserHandler) Suggested(c *gin.Context) {
	users, err := h.users.Suggested(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}
