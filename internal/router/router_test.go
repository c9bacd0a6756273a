package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"toplists/internal/db"
	"toplists/internal/middleware"
	"toplists/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const secret = "router-test-secret"

type testClient struct {
	t *testing.T
	r *gin.Engine
}

type testUser struct {
	id    uuid.UUID
	token string
}

func setup(t *testing.T) *testClient {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dsn := fmt.Sprintf("file:router_%s?mode=memory&cache=shared", uuid.NewString()[:8])
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Discard})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := db.SeedCategories(gdb, zap.NewNop()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	cache, _ := utils.NewLocalCache(64)

	r := New(App{
		DB:        gdb,
		Logger:    zap.NewNop(),
		Cache:     cache,
		CacheTTL:  time.Minute,
		Metrics:   middleware.NewMetrics(prometheus.NewRegistry()),
		JWTSecret: secret,
	})
	return &testClient{t: t, r: r}
}

func (tc *testClient) user(username string) testUser {
	tc.t.Helper()
	id := uuid.New()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      id.String(),
		"username": username,
		"exp":      time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))
	if err != nil {
		tc.t.Fatalf("sign: %v", err)
	}
	u := testUser{id: id, token: token}
	// 首次请求时创建用户
	tc.do(http.MethodGet, "/profile", &u, nil, http.StatusOK)
	return u
}

func (tc *testClient) do(method, path string, as *testUser, body any, wantStatus int) map[string]any {
	tc.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			tc.t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if as != nil {
		req.Header.Set("Authorization", "Bearer "+as.token)
	}
	w := httptest.NewRecorder()
	tc.r.ServeHTTP(w, req)
	if w.Code != wantStatus {
		tc.t.Fatalf("%s %s: expected %d, got %d: %s", method, path, wantStatus, w.Code, w.Body.String())
	}
	out := map[string]any{}
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			tc.t.Fatalf("decode %s: %v", w.Body.String(), err)
		}
	}
	return out
}

func listTitles(t *testing.T, resp map[string]any) []string {
	t.Helper()
	raw, ok := resp["lists"].([]any)
	if !ok {
		t.Fatalf("Expected lists array, got %v", resp)
	}
	out := make([]string, len(raw))
	for i, l := range raw {
		out[i] = l.(map[string]any)["title"].(string)
	}
	return out
}

func newList(title, category string, names ...string) map[string]any {
	items := make([]map[string]any, len(names))
	for i, n := range names {
		items[i] = map[string]any{"name": n, "rating": float64(10 - i)}
	}
	return map[string]any{"title": title, "category": category, "items": items}
}

func TestUnauthorizedRequests(t *testing.T) {
	tc := setup(t)
	for _, path := range []string{"/lists/mine", "/lists/following", "/lists/favorites", "/radar/trending"} {
		resp := tc.do(http.MethodGet, path, nil, nil, http.StatusUnauthorized)
		if resp["error"] == nil {
			t.Errorf("%s: expected error body, got %v", path, resp)
		}
	}
	tc.do(http.MethodPost, "/follow/"+uuid.NewString(), nil, nil, http.StatusUnauthorized)
}

func TestFollowFlowControlsVisibility(t *testing.T) {
	tc := setup(t)
	alice := tc.user("alice")
	bob := tc.user("bob")

	tc.do(http.MethodPut, "/profile/settings", &bob, map[string]any{"is_public": false}, http.StatusOK)
	created := tc.do(http.MethodPost, "/lists", &bob, newList("Secretas", "Libros", "a", "b", "c"), http.StatusCreated)
	secretID := created["listId"].(string)

	if got := listTitles(t, tc.do(http.MethodGet, "/lists", &alice, nil, http.StatusOK)); len(got) != 0 {
		t.Fatalf("Expected private list hidden, got %v", got)
	}
	tc.do(http.MethodPost, "/lists/"+secretID+"/favorite", &alice, nil, http.StatusNotFound)
	tc.do(http.MethodPost, "/lists/"+secretID+"/like", &alice, nil, http.StatusNotFound)
	tc.do(http.MethodGet, "/lists/"+secretID+"/comments", nil, nil, http.StatusNotFound)

	resp := tc.do(http.MethodPost, "/follow/"+bob.id.String(), &alice, nil, http.StatusOK)
	if resp["following"] != false || resp["status"] != "pending" {
		t.Fatalf("Expected pending follow, got %v", resp)
	}
	tc.do(http.MethodPost, "/follow/"+alice.id.String(), &alice, nil, http.StatusBadRequest)

	pending := tc.do(http.MethodGet, "/follow-requests/pending", &bob, nil, http.StatusOK)
	reqs := pending["requests"].([]any)
	if len(reqs) != 1 {
		t.Fatalf("Expected one pending request, got %v", pending)
	}
	requestID := reqs[0].(map[string]any)["requestId"].(string)

	// 申请人不能替对方接受
	tc.do(http.MethodPost, "/follow-requests/"+requestID+"/accept", &alice, nil, http.StatusNotFound)
	resp = tc.do(http.MethodPost, "/follow-requests/"+requestID+"/accept", &bob, nil, http.StatusOK)
	if resp["success"] != true {
		t.Fatalf("Expected success, got %v", resp)
	}

	if got := listTitles(t, tc.do(http.MethodGet, "/lists", &alice, nil, http.StatusOK)); len(got) != 1 || got[0] != "Secretas" {
		t.Errorf("Expected follower to see private list, got %v", got)
	}
	tc.do(http.MethodPost, "/lists/"+secretID+"/favorite", &alice, nil, http.StatusOK)
	if got := listTitles(t, tc.do(http.MethodGet, "/lists/favorites", &alice, nil, http.StatusOK)); len(got) != 1 {
		t.Errorf("Expected follower to favorite the private list, got %v", got)
	}
	if got := listTitles(t, tc.do(http.MethodGet, "/lists/following", &alice, nil, http.StatusOK)); len(got) != 1 {
		t.Errorf("Expected following feed to contain bob's list, got %v", got)
	}
	if got := listTitles(t, tc.do(http.MethodGet, "/lists", nil, nil, http.StatusOK)); len(got) != 0 {
		t.Errorf("Expected anonymous to see nothing, got %v", got)
	}
	if got := listTitles(t, tc.do(http.MethodGet, "/lists/trending", &alice, nil, http.StatusOK)); len(got) != 0 {
		t.Errorf("Expected trending to exclude private owners, got %v", got)
	}

	status := tc.do(http.MethodGet, "/users/"+bob.id.String()+"/follow-status", &alice, nil, http.StatusOK)
	if status["isFollowing"] != true {
		t.Errorf("Expected isFollowing, got %v", status)
	}
	status = tc.do(http.MethodGet, "/users/"+bob.id.String()+"/follow-status", nil, nil, http.StatusOK)
	if status["isFollowing"] != false || status["status"] != nil {
		t.Errorf("Expected neutral status for anonymous, got %v", status)
	}
}

func TestListValidationAndRankings(t *testing.T) {
	tc := setup(t)
	alice := tc.user("alice")
	bob := tc.user("bob")

	resp := tc.do(http.MethodPost, "/lists", &alice, newList("Corta", "Libros", "a", "b"), http.StatusBadRequest)
	if !strings.Contains(resp["error"].(string), "at least 3") {
		t.Errorf("Expected invariant message, got %v", resp)
	}

	tc.do(http.MethodPost, "/lists", &alice, map[string]any{
		"title": "Ciencia ficción", "category": "Libros",
		"items": []map[string]any{{"name": "Dune", "rating": 8}, {"name": "Solaris", "rating": 7}, {"name": "Ubik"}},
	}, http.StatusCreated)

	top := tc.do(http.MethodGet, "/top-items?category=Libros", nil, nil, http.StatusOK)
	libros := top["topItems"].(map[string]any)["Libros"].([]any)
	if len(libros) != 2 {
		t.Fatalf("Expected 2 rated items, got %v", libros)
	}

	tc.do(http.MethodPost, "/lists", &bob, map[string]any{
		"title": "Otra", "category": "Libros",
		"items": []map[string]any{{"name": "dune", "rating": 6}, {"name": "x"}, {"name": "y"}},
	}, http.StatusCreated)

	top = tc.do(http.MethodGet, "/top-items?category=Libros", nil, nil, http.StatusOK)
	first := top["topItems"].(map[string]any)["Libros"].([]any)[0].(map[string]any)
	if first["name"] != "Dune" || first["averageRating"] != 7.0 || first["appearances"] != 2.0 {
		t.Errorf("Expected merged Dune entry, got %v", first)
	}

	cats := tc.do(http.MethodGet, "/top-categories", nil, nil, http.StatusOK)["topCategories"].([]any)
	if len(cats) != 1 || cats[0].(map[string]any)["listsCount"] != 2.0 {
		t.Errorf("Unexpected top categories %v", cats)
	}
}

func TestEngagementAndRadar(t *testing.T) {
	tc := setup(t)
	alice := tc.user("alice")
	bob := tc.user("bob")

	created := tc.do(http.MethodPost, "/lists", &alice, newList("Pelis", "Películas", "Alien", "Heat", "Dune"), http.StatusCreated)
	listID := created["listId"].(string)

	like := tc.do(http.MethodPost, "/lists/"+listID+"/like", &bob, nil, http.StatusOK)
	if like["liked"] != true || like["likesCount"] != 1.0 {
		t.Errorf("Unexpected like response %v", like)
	}
	likes := tc.do(http.MethodGet, "/lists/"+listID+"/likes", nil, nil, http.StatusOK)
	if likes["isLiked"] != false || likes["likesCount"] != 1.0 {
		t.Errorf("Unexpected anonymous likes response %v", likes)
	}

	tc.do(http.MethodPost, "/lists/"+listID+"/favorite", &bob, nil, http.StatusOK)
	if got := listTitles(t, tc.do(http.MethodGet, "/lists/favorites", &bob, nil, http.StatusOK)); len(got) != 1 {
		t.Errorf("Expected one favorite, got %v", got)
	}

	tc.do(http.MethodPost, "/lists/"+listID+"/comments", &bob, map[string]any{"content": "   "}, http.StatusBadRequest)
	comment := tc.do(http.MethodPost, "/lists/"+listID+"/comments", &bob, map[string]any{"content": "Buenísima"}, http.StatusCreated)
	commentID := comment["comment"].(map[string]any)["id"].(string)
	tc.do(http.MethodDelete, "/comments/"+commentID, &alice, nil, http.StatusNotFound)
	tc.do(http.MethodDelete, "/comments/"+commentID, &bob, nil, http.StatusOK)

	detail := tc.do(http.MethodGet, "/lists/"+listID+"/detail", nil, nil, http.StatusOK)["list"].(map[string]any)
	if detail["likes"] != 1.0 || detail["timestamp"] != "Justo ahora" {
		t.Errorf("Unexpected detail %v", detail)
	}
	tc.do(http.MethodGet, "/lists/"+uuid.NewString()+"/detail", nil, nil, http.StatusNotFound)

	for _, u := range []*testUser{&alice, &bob} {
		tc.do(http.MethodPost, "/radar", u, map[string]any{"itemTitle": "Alien", "category": "Películas", "listId": listID}, http.StatusCreated)
	}
	check := tc.do(http.MethodGet, "/radar/check?itemTitle=Alien&category=Pel%C3%ADculas", &bob, nil, http.StatusOK)
	if check["inRadar"] != true {
		t.Errorf("Expected item in radar, got %v", check)
	}
	trending := tc.do(http.MethodGet, "/radar/trending", &bob, nil, http.StatusOK)["trendingItems"].([]any)
	if len(trending) != 1 || trending[0].(map[string]any)["count"] != 2.0 {
		t.Errorf("Unexpected radar trending %v", trending)
	}
	tc.do(http.MethodDelete, "/radar/"+uuid.NewString(), &bob, nil, http.StatusNotFound)

	tc.do(http.MethodDelete, "/lists/"+listID, &bob, nil, http.StatusNotFound)
	tc.do(http.MethodDelete, "/lists/"+listID, &alice, nil, http.StatusOK)
}

func TestMetricsEndpoint(t *testing.T) {
	tc := setup(t)
	tc.do(http.MethodGet, "/health", nil, nil, http.StatusOK)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	tc.r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "toplists_http_requests_total") {
		t.Errorf("Expected request counter in metrics output, got %d", w.Code)
	}
}
