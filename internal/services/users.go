package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"toplists/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const suggestedUsersLimit = 5

var usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.-]{3,30}$`)

// Identity 身份令牌中携带的用户信息
type Identity struct {
	ID       uuid.UUID
	Email    string
	Username string
	Avatar   string
}

// ProfileInput 修改资料
type ProfileInput struct {
	Username *string `json:"username"`
	Avatar   *string `json:"avatar"`
}

// Profile 用户主页
type Profile struct {
	UserSummary
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	Stats     UserStats `json:"stats"`
}

// UserService 用户资料与隐私设置
type UserService struct {
	db      *gorm.DB
	follows *FollowService
	logger  *zap.Logger
}

func NewUserService(db *gorm.DB, follows *FollowService, logger *zap.Logger) *UserService {
	return &UserService{db: db, follows: follows, logger: logger}
}

// Ensure 按令牌身份查找用户，首次访问时创建资料
func (s *UserService) Ensure(ctx context.Context, id Identity) (*models.User, error) {
	if id.ID == uuid.Nil {
		return nil, ErrUnauthorized
	}
	db := s.db.WithContext(ctx)
	var user models.User
	err := db.First(&user, "id = ?", id.ID).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	base := strings.TrimSpace(id.Username)
	if base == "" && id.Email != "" {
		base = strings.SplitN(id.Email, "@", 2)[0]
	}
	if base == "" {
		base = "user"
	}
	username, err := s.availableUsername(db, base, id.ID)
	if err != nil {
		return nil, err
	}

	user = models.User{ID: id.ID, Username: username, Email: id.Email, AvatarURL: id.Avatar}
	if err := db.Create(&user).Error; err != nil {
		// 并发首次请求时另一方已创建
		if again := db.First(&user, "id = ?", id.ID).Error; again == nil {
			return &user, nil
		}
		return nil, err
	}
	s.logger.Info("user provisioned", zap.String("user", user.ID.String()), zap.String("username", user.Username))
	return &user, nil
}

func (s *UserService) availableUsername(db *gorm.DB, base string, id uuid.UUID) (string, error) {
	candidate := base
	for i := 0; i < 5; i++ {
		var count int64
		if err := db.Model(&models.User{}).Where("username = ?", candidate).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s_%s", base, id.String()[:4+i])
	}
	return fmt.Sprintf("%s_%s", base, id.String()), nil
}

func (s *UserService) find(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserService) profile(ctx context.Context, user *models.User) (*Profile, error) {
	stats, err := s.follows.Stats(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &Profile{
		UserSummary: newUserSummary(user),
		CreatedAt:   user.CreatedAt,
		Stats:       *stats,
	}, nil
}

// Me 当前用户资料，包含邮箱
func (s *UserService) Me(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthorized
	}
	user, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	p, err := s.profile(ctx, user)
	if err != nil {
		return nil, err
	}
	p.Email = user.Email
	return p, nil
}

// PublicProfile 他人主页。私密用户的基本资料仍可见，榜单由可见性规则控制
func (s *UserService) PublicProfile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	user, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.profile(ctx, user)
}

// UpdateProfile 修改用户名或头像
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, in ProfileInput) (*Profile, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthorized
	}
	updates := map[string]any{}
	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if !usernamePattern.MatchString(username) {
			return nil, invalidf("username must be 3-30 letters, digits, '_', '.' or '-'")
		}
		var count int64
		err := s.db.WithContext(ctx).Model(&models.User{}).
			Where("username = ? AND id <> ?", username, userID).
			Count(&count).Error
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrUsernameTaken
		}
		updates["username"] = username
	}
	if in.Avatar != nil {
		updates["avatar_url"] = strings.TrimSpace(*in.Avatar)
	}
	if len(updates) > 0 {
		res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, ErrNotFound
		}
	}
	return s.Me(ctx, userID)
}

// SetPublic 修改隐私设置，立即影响可见性判断
func (s *UserService) SetPublic(ctx context.Context, userID uuid.UUID, public bool) error {
	if userID == uuid.Nil {
		return ErrUnauthorized
	}
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("is_public", public)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Suggested 推荐关注：排除自己和已有关系（含待处理）的用户，按榜单数排序
func (s *UserService) Suggested(ctx context.Context, viewerID uuid.UUID) ([]UserSummary, error) {
	db := s.db.WithContext(ctx)
	q := db.Model(&models.User{}).
		Select("users.*, (SELECT COUNT(*) FROM lists WHERE lists.user_id = users.id) AS list_count").
		Order("list_count DESC, users.username ASC").
		Limit(suggestedUsersLimit)
	if viewerID != uuid.Nil {
		related := s.db.Model(&models.Follow{}).Select("followed_id").Where("follower_id = ?", viewerID)
		q = q.Where("users.id <> ? AND users.id NOT IN (?)", viewerID, related)
	}
	var users []models.User
	if err := q.Find(&users).Error; err != nil {
		return nil, err
	}
	return toSummaries(users), nil
}
