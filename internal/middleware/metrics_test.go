package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics(prometheus.NewRegistry())
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/lists/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	for i := 0; i < 2; i++ {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/lists/abc", nil))
	}
	if got := testutil.ToFloat64(m.Requests.WithLabelValues("GET", "/lists/:id", "200")); got != 2 {
		t.Errorf("Expected 2 requests counted by route template, got %v", got)
	}

	m.Follow("requested")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(w.Body.String(), `toplists_follow_events_total{event="requested"} 1`) {
		t.Errorf("Expected follow counter in exposition, got:\n%s", w.Body.String())
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.Follow("requested")
	m.List("created")
}
