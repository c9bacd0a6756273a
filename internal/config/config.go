package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 应用配置，来源于环境变量（可由 .env 提供）
type Config struct {
	Port           string
	DBDriver       string
	DatabaseURL    string
	SQLitePath     string
	JWTSecret      string
	ClientOrigin   string
	RedisURL       string
	CacheTTL       time.Duration
	LogLevel       string
	SeedCategories bool
	WriteRate      float64
	WriteBurst     int
}

// Load reads .env (if present) and the process environment.
// The returned bool reports whether a .env file was found.
func Load() (*Config, bool) {
	envLoaded := godotenv.Load() == nil

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PORT", "8080")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=toplists port=5432 sslmode=disable TimeZone=UTC")
	v.SetDefault("SQLITE_PATH", "toplists.db")
	v.SetDefault("JWT_SECRET", "secret_key_change_me")
	v.SetDefault("CLIENT_ORIGIN", "*")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("CACHE_TTL", "1m")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SEED_CATEGORIES", true)
	v.SetDefault("WRITE_RATE", 5.0)
	v.SetDefault("WRITE_BURST", 10)

	return &Config{
		Port:           v.GetString("PORT"),
		DBDriver:       v.GetString("DB_DRIVER"),
		DatabaseURL:    v.GetString("DATABASE_URL"),
		SQLitePath:     v.GetString("SQLITE_PATH"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		ClientOrigin:   v.GetString("CLIENT_ORIGIN"),
		RedisURL:       v.GetString("REDIS_URL"),
		CacheTTL:       v.GetDuration("CACHE_TTL"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		SeedCategories: v.GetBool("SEED_CATEGORIES"),
		WriteRate:      v.GetFloat64("WRITE_RATE"),
		WriteBurst:     v.GetInt("WRITE_BURST"),
	}, envLoaded
}
