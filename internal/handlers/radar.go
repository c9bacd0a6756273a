package handlers

import (
	"net/http"
	"toplists/internal/middleware"
	"toplists/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RadarHandler struct {
	radar  *services.RadarService
	logger *zap.Logger
}

func NewRadarHandler(radar *services.RadarService, logger *zap.Logger) *RadarHandler {
	return &RadarHandler{radar: radar, logger: logger}
}

func (h *RadarHandler) List(c *gin.Context) {
	entries, err := h.radar.List(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"radarItems": entries})
}

func (h *RadarHandler) Add(c *gin.Context) {
	var in services.RadarInput
	if !bindJSON(c, &in) {
		return
	}
	entry, err := h.radar.Add(c.Request.Context(), middleware.CurrentUserID(c), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"radarItem": entry})
}

type notesRequest struct {
	Notes string `json:"notes"`
}

func (h *RadarHandler) UpdateNotes(c *gin.Context) {
	entryID, ok := uuidParam(c, "itemId")
	if !ok {
		return
	}
	var req notesRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.radar.UpdateNotes(c.Request.Context(), middleware.CurrentUserID(c), entryID, req.Notes); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *RadarHandler) Remove(c *gin.Context) {
	entryID, ok := uuidParam(c, "itemId")
	if !ok {
		return
	}
	if err := h.radar.Remove(c.Request.Context(), middleware.CurrentUserID(c), entryID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Check 条目是否已在雷达中
func (h *RadarHandler) Check(c *gin.Context) {
	entry, err := h.radar.Check(c.Request.Context(), middleware.CurrentUserID(c), c.Query("itemTitle"), c.Query("category"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if entry == nil {
		c.JSON(http.StatusOK, gin.H{"inRadar": false, "radarItemId": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"inRadar": true, "radarItemId": entry.ID})
}

// Trending 近三个月最常被加入雷达的条目
func (h *RadarHandler) Trending(c *gin.Context) {
	items, err := h.radar.Trending(c.Request.Context(), services.DefaultRadarWindowMonths)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trendingItems": items})
}
