package db

import (
	"testing"
	"toplists/internal/config"
	"toplists/internal/models"

	"go.uber.org/zap"
)

func TestSeedCategoriesIsIdempotent(t *testing.T) {
	gdb, err := Open(&config.Config{DBDriver: "sqlite", SQLitePath: "file:seedtest?mode=memory&cache=shared"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	logger := zap.NewNop()
	if err := SeedCategories(gdb, logger); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	var first int64
	gdb.Model(&models.Category{}).Count(&first)
	if first == 0 {
		t.Fatal("Expected categories after seeding")
	}

	if err := SeedCategories(gdb, logger); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	var second int64
	gdb.Model(&models.Category{}).Count(&second)
	if first != second {
		t.Errorf("Seeding twice changed category count: %d -> %d", first, second)
	}

	var terror models.Subcategory
	err = gdb.Joins("JOIN categories ON categories.id = subcategories.category_id").
		Where("categories.name = ? AND subcategories.name = ?", "Películas", "Terror").
		First(&terror).Error
	if err != nil {
		t.Errorf("Expected Películas/Terror subcategory: %v", err)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open(&config.Config{DBDriver: "oracle"}); err == nil {
		t.Error("Expected error for unknown driver")
	}
}
