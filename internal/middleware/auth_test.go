package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	"toplists/internal/models"
	"toplists/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

type fakeUsers struct {
	calls int
}

func (f *fakeUsers) Ensure(_ context.Context, id services.Identity) (*models.User, error) {
	f.calls++
	return &models.User{ID: id.ID, Username: id.Username}, nil
}

func sign(t *testing.T, method jwt.SigningMethod, secret string, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func newAuthRouter(users UserProvisioner) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(LoadUser(testSecret, users, zap.NewNop()))
	r.GET("/open", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": CurrentUserID(c).String()})
	})
	r.GET("/closed", AuthRequired(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": CurrentUserID(c).String()})
	})
	return r
}

func TestParseToken(t *testing.T) {
	id := uuid.New()
	token := sign(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{
		"sub":           id.String(),
		"email":         "a@b.c",
		"user_metadata": map[string]any{"username": "ana"},
		"exp":           time.Now().Add(time.Hour).Unix(),
	})
	identity, err := ParseToken(token, []byte(testSecret))
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if identity.ID != id || identity.Email != "a@b.c" || identity.Username != "ana" {
		t.Errorf("Unexpected identity %+v", identity)
	}

	if _, err := ParseToken(token, []byte("other")); err == nil {
		t.Error("Expected signature mismatch to fail")
	}
	expired := sign(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{
		"sub": id.String(),
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	if _, err := ParseToken(expired, []byte(testSecret)); err == nil {
		t.Error("Expected expired token to fail")
	}
	wrongAlg := sign(t, jwt.SigningMethodHS512, testSecret, jwt.MapClaims{"sub": id.String()})
	if _, err := ParseToken(wrongAlg, []byte(testSecret)); err == nil {
		t.Error("Expected non-HS256 token to fail")
	}
	badSub := sign(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"sub": "not-a-uuid"})
	if _, err := ParseToken(badSub, []byte(testSecret)); err == nil {
		t.Error("Expected non-uuid subject to fail")
	}
}

func TestAuthRequired(t *testing.T) {
	users := &fakeUsers{}
	r := newAuthRouter(users)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/closed", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without token, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("Expected invalid token to be treated as anonymous, got %d", w.Code)
	}

	id := uuid.New()
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/closed", nil)
	req.Header.Set("Authorization", "Bearer "+sign(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"sub": id.String()}))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 with valid token, got %d", w.Code)
	}
	if users.calls != 1 {
		t.Errorf("Expected user to be provisioned once, got %d", users.calls)
	}
}
