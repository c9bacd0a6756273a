package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

// WriteLimiter 按用户（未登录按 IP）限制写请求频率
type WriteLimiter struct {
	mu       sync.Mutex
	limiters *lru.Cache[string, *rate.Limiter]
	limit    rate.Limit
	burst    int
}

// NewWriteLimiter perSecond <= 0 时不限流
func NewWriteLimiter(perSecond float64, burst int) *WriteLimiter {
	l, _ := lru.New[string, *rate.Limiter](10000)
	if burst < 1 {
		burst = 1
	}
	return &WriteLimiter{limiters: l, limit: rate.Limit(perSecond), burst: burst}
}

func (w *WriteLimiter) get(key string) *rate.Limiter {
	w.mu.Lock()
	defer w.mu.Unlock()

	if limiter, ok := w.limiters.Get(key); ok {
		return limiter
	}
	limiter := rate.NewLimiter(w.limit, w.burst)
	w.limiters.Add(key, limiter)
	return limiter
}

// Middleware 只对非 GET 请求生效
func (w *WriteLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if w == nil || w.limit <= 0 || c.Request.Method == http.MethodGet {
			c.Next()
			return
		}
		key := c.ClientIP()
		if u := CurrentUser(c); u != nil {
			key = u.ID.String()
		}
		if !w.get(key).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			return
		}
		c.Next()
	}
}
