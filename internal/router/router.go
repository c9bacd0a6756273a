package router

import (
	"net/http"
	"time"
	"toplists/internal/handlers"
	"toplists/internal/middleware"
	"toplists/internal/services"
	"toplists/internal/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App 路由需要的依赖
type App struct {
	DB           *gorm.DB
	Logger       *zap.Logger
	Cache        utils.Cache
	CacheTTL     time.Duration
	Metrics      *middleware.Metrics
	WriteLimiter *middleware.WriteLimiter
	JWTSecret    string
	ClientOrigin string
}

// New 创建 gin 引擎并注册中间件和路由
func New(app App) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(app.Logger))
	if app.Metrics != nil {
		r.Use(app.Metrics.Middleware())
	}

	corsCfg := cors.DefaultConfig()
	if app.ClientOrigin == "" || app.ClientOrigin == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = []string{app.ClientOrigin}
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	r.Use(cors.New(corsCfg))

	RegisterRoutes(r, app)
	return r
}

func RegisterRoutes(r *gin.Engine, app App) {
	// Services
	followService := services.NewFollowService(app.DB, app.Logger)
	userService := services.NewUserService(app.DB, followService, app.Logger)
	feedService := services.NewFeedService(app.DB, app.Logger)
	listService := services.NewListService(app.DB, app.Cache, app.Logger)
	engagementService := services.NewEngagementService(app.DB, app.Logger)
	rankingService := services.NewRankingService(app.DB, app.Cache, app.CacheTTL, app.Logger)
	radarService := services.NewRadarService(app.DB, app.Logger)

	// Handlers
	listHandler := handlers.NewListHandler(feedService, listService, app.Metrics, app.Logger)
	followHandler := handlers.NewFollowHandler(followService, app.Metrics, app.Logger)
	engagementHandler := handlers.NewEngagementHandler(engagementService, app.Metrics, app.Logger)
	rankingHandler := handlers.NewRankingHandler(rankingService, app.Logger)
	radarHandler := handlers.NewRadarHandler(radarService, app.Logger)
	userHandler := handlers.NewUserHandler(userService, app.Logger)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	if app.Metrics != nil {
		r.GET("/metrics", gin.WrapH(app.Metrics.Handler()))
	}

	r.Use(middleware.LoadUser(app.JWTSecret, userService, app.Logger))

	// 公共路由 (Public Routes)，登录后结果会考虑当前用户
	r.GET("/lists", listHandler.All)                       // 全部可见榜单
	r.GET("/lists/trending", listHandler.Trending)         // 热门榜单
	r.GET("/lists/:listId/detail", listHandler.Detail)     // 榜单详情
	r.GET("/lists/:listId/likes", engagementHandler.Likes) // 点赞数
	r.GET("/lists/:listId/is-favorited", engagementHandler.IsFavorited)
	r.GET("/lists/:listId/comments", engagementHandler.Comments) // 评论列表
	r.GET("/top-items", rankingHandler.TopItems)                 // 条目排行
	r.GET("/top-categories", rankingHandler.TopCategories)       // 分类排行
	r.GET("/categories", listHandler.Categories)                 // 分类配置
	r.GET("/search", listHandler.Search)                         // 搜索
	r.GET("/users/suggested", userHandler.Suggested)             // 推荐关注
	r.GET("/users/:userId/profile", userHandler.Profile)         // 用户主页
	r.GET("/users/:userId/stats", followHandler.Stats)
	r.GET("/users/:userId/followers", followHandler.Followers)
	r.GET("/users/:userId/following", followHandler.Following)
	r.GET("/users/:userId/top-lists", listHandler.UserTopLists)
	r.GET("/users/:userId/follow-status", followHandler.Status)

	// 受保护路由 (Protected Routes)
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired(), app.WriteLimiter.Middleware())
	{
		authorized.GET("/lists/mine", listHandler.Mine)           // 我的榜单
		authorized.GET("/lists/following", listHandler.Following) // 关注的人的榜单
		authorized.GET("/lists/favorites", listHandler.Favorites) // 我的收藏
		authorized.POST("/lists", listHandler.Create)
		authorized.PUT("/lists/:listId", listHandler.Update)
		authorized.DELETE("/lists/:listId", listHandler.Delete)

		authorized.POST("/lists/:listId/like", engagementHandler.ToggleLike)
		authorized.POST("/lists/:listId/favorite", engagementHandler.ToggleFavorite)
		authorized.POST("/lists/:listId/comments", engagementHandler.AddComment)
		authorized.DELETE("/comments/:commentId", engagementHandler.DeleteComment)

		authorized.POST("/follow/:userId", followHandler.Toggle)                    // 关注/取消关注
		authorized.POST("/follow-requests/:requestId/accept", followHandler.Accept) // 接受申请
		authorized.POST("/follow-requests/:requestId/reject", followHandler.Reject) // 拒绝申请
		authorized.GET("/follow-requests/pending", followHandler.Pending)           // 收到的申请
		authorized.GET("/follow-requests/outgoing", followHandler.Outgoing)         // 发出的申请
		authorized.GET("/follow-requests/count", followHandler.Count)

		authorized.GET("/profile", userHandler.Me)
		authorized.PUT("/profile", userHandler.UpdateProfile)
		authorized.PUT("/profile/settings", userHandler.UpdateSettings)

		authorized.GET("/radar", radarHandler.List)
		authorized.POST("/radar", radarHandler.Add)
		authorized.GET("/radar/check", radarHandler.Check)
		authorized.GET("/radar/trending", radarHandler.Trending)
		authorized.PUT("/radar/:itemId", radarHandler.UpdateNotes)
		authorized.DELETE("/radar/:itemId", radarHandler.Remove)
	}
}
