package handlers

import (
	"net/http"
	"toplists/internal/middleware"
	"toplists/internal/services"
	"toplists/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxTrendingLimit = 100

type ListHandler struct {
	feed    *services.FeedService
	lists   *services.ListService
	metrics *middleware.Metrics
	logger  *zap.Logger
}

func NewListHandler(feed *services.FeedService, lists *services.ListService, metrics *middleware.Metrics, logger *zap.Logger) *ListHandler {
	return &ListHandler{feed: feed, lists: lists, metrics: metrics, logger: logger}
}

func (h *ListHandler) respondLists(c *gin.Context, views []services.ListView, err error) {
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if views == nil {
		views = []services.ListView{}
	}
	c.JSON(http.StatusOK, gin.H{"lists": views})
}

// All 全部可见榜单，匿名可访问
func (h *ListHandler) All(c *gin.Context) {
	views, err := h.feed.ListAll(c.Request.Context(), middleware.CurrentUserID(c))
	h.respondLists(c, views, err)
}

// Mine 我的榜单
func (h *ListHandler) Mine(c *gin.Context) {
	views, err := h.feed.ListOwned(c.Request.Context(), middleware.CurrentUserID(c))
	h.respondLists(c, views, err)
}

// Following 关注的人的榜单
func (h *ListHandler) Following(c *gin.Context) {
	views, err := h.feed.ListFromFollowed(c.Request.Context(), middleware.CurrentUserID(c))
	h.respondLists(c, views, err)
}

// Favorites 我收藏的榜单
func (h *ListHandler) Favorites(c *gin.Context) {
	views, err := h.feed.ListFavorites(c.Request.Context(), middleware.CurrentUserID(c))
	h.respondLists(c, views, err)
}

// Trending 热门榜单
func (h *ListHandler) Trending(c *gin.Context) {
	limit := utils.ParseLimit(c.Query("limit"), services.DefaultTrendingLimit, maxTrendingLimit)
	views, err := h.feed.ListTrending(c.Request.Context(), limit)
	h.respondLists(c, views, err)
}

// UserTopLists 某用户最受欢迎的榜单
func (h *ListHandler) UserTopLists(c *gin.Context) {
	ownerID, ok := uuidParam(c, "userId")
	if !ok {
		return
	}
	limit := utils.ParseLimit(c.Query("limit"), services.DefaultTopListsLimit, maxTrendingLimit)
	views, err := h.feed.UserTopLists(c.Request.Context(), ownerID, middleware.CurrentUserID(c), limit)
	h.respondLists(c, views, err)
}

// Detail 榜单详情
func (h *ListHandler) Detail(c *gin.Context) {
	listID, ok := uuidParam(c, "listId")
	if !ok {
		return
	}
	view, err := h.feed.Detail(c.Request.Context(), listID, middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": view})
}

// Search 搜索榜单和用户
func (h *ListHandler) Search(c *gin.Context) {
	res, err := h.feed.Search(c.Request.Context(), c.Query("q"), middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Categories 分类、子分类与评分维度
func (h *ListHandler) Categories(c *gin.Context) {
	cats, err := h.lists.Categories(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": cats})
}

// Create 创建榜单
func (h *ListHandler) Create(c *gin.Context) {
	var in services.ListInput
	if !bindJSON(c, &in) {
		return
	}
	id, err := h.lists.Create(c.Request.Context(), middleware.CurrentUserID(c), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.metrics.List("created")
	c.JSON(http.StatusCreated, gin.H{"success": true, "listId": id})
}

// Update 编辑榜单
func (h *ListHandler) Update(c *gin.Context) {
	listID, ok := uuidParam(c, "listId")
	if !ok {
		return
	}
	var in services.ListInput
	if !bindJSON(c, &in) {
		return
	}
	if err := h.lists.Update(c.Request.Context(), middleware.CurrentUserID(c), listID, in); err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.metrics.List("updated")
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Delete 删除榜单
func (h *ListHandler) Delete(c *gin.Context) {
	listID, ok := uuidParam(c, "listId")
	if !ok {
		return
	}
	if err := h.lists.Delete(c.Request.Context(), middleware.CurrentUserID(c), listID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.metrics.List("deleted")
	c.JSON(http.StatusOK, gin.H{"success": true})
}
