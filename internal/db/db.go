package db

import (
	"fmt"
	"toplists/internal/config"
	"toplists/internal/criteria"
	"toplists/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open 按配置连接数据库，支持 postgres 与 sqlite
func Open(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)}

	switch cfg.DBDriver {
	case "postgres", "":
		return gorm.Open(postgres.Open(cfg.DatabaseURL), gormCfg)
	case "sqlite":
		return gorm.Open(sqlite.Open(cfg.SQLitePath), gormCfg)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Subcategory{},
		&models.List{},
		&models.Item{},
		&models.Follow{},
		&models.Like{},
		&models.Favorite{},
		&models.Comment{},
		&models.RadarEntry{},
	)
}

// 预设子分类
var seedSubcategories = map[string][]string{
	"Películas": {"Terror", "Comedia", "Acción", "Drama", "Ciencia ficción", "Animación"},
	"Series":    {"Drama", "Comedia", "Thriller", "Anime"},
	"Música":    {"Rock", "Pop", "Hip hop", "Electrónica", "Clásica"},
	"Libros":    {"Novela", "Fantasía", "Ensayo", "Cómic"},
	"Comida":    {"Restaurantes", "Recetas", "Postres"},
	"Viajes":    {"Playas", "Ciudades", "Montaña"},
	"Deportes":  {"Fútbol", "Baloncesto", "Tenis"},
}

// SeedCategories 初始化分类和子分类，已存在则跳过
func SeedCategories(db *gorm.DB, logger *zap.Logger) error {
	var count int64
	if err := db.Model(&models.Category{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logger.Info("Categories already seeded, skipping")
		return nil
	}

	names := append(criteria.Names(), models.DefaultCategoryName)
	for _, name := range names {
		cat := models.Category{Name: name}
		for _, sub := range seedSubcategories[name] {
			cat.Subcategories = append(cat.Subcategories, models.Subcategory{Name: sub})
		}
		if err := db.Create(&cat).Error; err != nil {
			logger.Error("Failed to create category", zap.String("name", name), zap.Error(err))
			return err
		}
	}
	logger.Info("Initial categories created", zap.Int("count", len(names)))
	return nil
}
