package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"toplists/internal/models"
	"toplists/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const CheckUserKey = "user"

// UserProvisioner 根据令牌身份加载或创建用户
type UserProvisioner interface {
	Ensure(ctx context.Context, id services.Identity) (*models.User, error)
}

// ParseToken 校验 HS256 签名，返回令牌中的身份信息
func ParseToken(tokenString string, secret []byte) (services.Identity, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return services.Identity{}, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return services.Identity{}, errors.New("invalid token claims")
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return services.Identity{}, err
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return services.Identity{}, err
	}

	identity := services.Identity{ID: id}
	identity.Email, _ = claims["email"].(string)
	identity.Username, _ = claims["username"].(string)
	identity.Avatar, _ = claims["avatar"].(string)
	if meta, ok := claims["user_metadata"].(map[string]any); ok {
		if identity.Username == "" {
			identity.Username, _ = meta["username"].(string)
		}
		if identity.Avatar == "" {
			identity.Avatar, _ = meta["avatar_url"].(string)
		}
	}
	return identity, nil
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// LoadUser 解析 Bearer 令牌并把用户放入上下文。令牌缺失或无效时按匿名处理
func LoadUser(secret string, users UserProvisioner, logger *zap.Logger) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.Next()
			return
		}

		identity, err := ParseToken(token, key)
		if err != nil {
			logger.Debug("ignoring invalid token", zap.Error(err))
			c.Next()
			return
		}

		user, err := users.Ensure(c.Request.Context(), identity)
		if err != nil {
			logger.Error("failed to load user", zap.String("user", identity.ID.String()), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
			return
		}
		c.Set(CheckUserKey, user)
		c.Next()
	}
}

// AuthRequired ensures a user is logged in
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

// CurrentUser 当前登录用户，未登录返回 nil
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(CheckUserKey); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}

// CurrentUserID 当前登录用户 ID，未登录返回 uuid.Nil
func CurrentUserID(c *gin.Context) uuid.UUID {
	if u := CurrentUser(c); u != nil {
		return u.ID
	}
	return uuid.Nil
}
