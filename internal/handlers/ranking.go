package handlers

import (
	"net/http"
	"toplists/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RankingHandler struct {
	ranking *services.RankingService
	logger  *zap.Logger
}

func NewRankingHandler(ranking *services.RankingService, logger *zap.Logger) *RankingHandler {
	return &RankingHandler{ranking: ranking, logger: logger}
}

// TopItems 各分类评分最高的条目，可用 category 过滤
func (h *RankingHandler) TopItems(c *gin.Context) {
	items, err := h.ranking.TopItems(c.Request.Context(), c.Query("category"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"topItems": items})
}

// TopCategories 榜单数最多的分类
func (h *RankingHandler) TopCategories(c *gin.Context) {
	cats, err := h.ranking.TopCategories(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"topCategories": cats})
}
