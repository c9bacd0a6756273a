package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	Requests     *prometheus.CounterVec
	FollowEvents *prometheus.CounterVec
	ListEvents   *prometheus.CounterVec
	gatherer     prometheus.Gatherer
}

// NewMetrics 创建并注册计数器。传入独立的 Registry 便于测试
func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "toplists_http_requests_total",
				Help: "Total number of HTTP requests by route and status",
			},
			[]string{"method", "path", "status"},
		),
		FollowEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "toplists_follow_events_total",
				Help: "Follow state transitions (requested, cancelled, accepted, rejected)",
			},
			[]string{"event"},
		),
		ListEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "toplists_list_events_total",
				Help: "List writes and engagement (created, updated, deleted, liked, favorited, commented)",
			},
			[]string{"event"},
		),
		gatherer: reg,
	}

	reg.MustRegister(m.Requests)
	reg.MustRegister(m.FollowEvents)
	reg.MustRegister(m.ListEvents)

	return m
}

// Middleware 按路由模板统计请求数
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.Requests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

// Handler 暴露 /metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) Follow(event string) {
	if m != nil {
		m.FollowEvents.WithLabelValues(event).Inc()
	}
}

func (m *Metrics) List(event string) {
	if m != nil {
		m.ListEvents.WithLabelValues(event).Inc()
	}
}
