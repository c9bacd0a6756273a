package services

import (
	"fmt"
	"strings"
	"testing"
	"time"
	"toplists/internal/db"
	"toplists/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", name, uuid.NewString()[:8])
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Discard})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := db.SeedCategories(gdb, zap.NewNop()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return gdb
}

func createUser(t *testing.T, gdb *gorm.DB, username string, public bool) *models.User {
	t.Helper()
	u := &models.User{Username: username, IsPublic: &public}
	if err := gdb.Create(u).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

func createList(t *testing.T, gdb *gorm.DB, owner *models.User, title string, createdAt time.Time, items ...models.Item) *models.List {
	t.Helper()
	if len(items) == 0 {
		items = []models.Item{{Name: "uno"}, {Name: "dos"}, {Name: "tres"}}
	}
	for i := range items {
		items[i].Position = i + 1
	}
	l := &models.List{UserID: owner.ID, Title: title, Items: items, CreatedAt: createdAt}
	if err := gdb.Create(l).Error; err != nil {
		t.Fatalf("create list %s: %v", title, err)
	}
	return l
}

func createFollow(t *testing.T, gdb *gorm.DB, follower, followed *models.User, status models.FollowStatus) *models.Follow {
	t.Helper()
	f := &models.Follow{FollowerID: follower.ID, FollowedID: followed.ID, Status: status}
	if err := gdb.Create(f).Error; err != nil {
		t.Fatalf("create follow: %v", err)
	}
	return f
}

func addLikes(t *testing.T, gdb *gorm.DB, list *models.List, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		liker := createUser(t, gdb, fmt.Sprintf("liker_%s_%d", list.ID.String()[:6], i), true)
		if err := gdb.Create(&models.Like{UserID: liker.ID, ListID: list.ID}).Error; err != nil {
			t.Fatalf("create like: %v", err)
		}
	}
}

func titles(views []ListView) []string {
	out := make([]string, len(views))
	for i, v := range views {
		out[i] = v.Title
	}
	return out
}
