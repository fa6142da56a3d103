package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Storage selects and addresses the key-value backend.
type Storage struct {
	Driver      string
	DataDir     string
	DatabaseURL string
	RedisURL    string
	KeyPrefix   string
}

type Config struct {
	Port             string
	Storage          Storage
	SessionSecret    string
	SiteURL          string
	RenderMarkdown   bool
	TemplatesDir     string
	LogLevel         string
	LogFile          string
	RateLimitRPS     float64
	RateLimitBurst   int
	SessionCacheSize int
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading config from environment")
	}
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("PORT", "8080")
	v.SetDefault("STORAGE_DRIVER", DriverFile)
	v.SetDefault("DATA_DIR", "./data")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	v.SetDefault("STORAGE_KEY_PREFIX", "quill:")
	v.SetDefault("SESSION_SECRET", "secret_key_change_me")
	v.SetDefault("SITE_URL", "http://localhost:8080")
	v.SetDefault("RENDER_MARKDOWN", false)
	v.SetDefault("TEMPLATES_DIR", "./web/templates")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("RATE_LIMIT_RPS", 5.0)
	v.SetDefault("RATE_LIMIT_BURST", 10)
	v.SetDefault("SESSION_CACHE_SIZE", 500)
	v.AutomaticEnv()
	return v
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port: v.GetString("PORT"),
		Storage: Storage{
			Driver:      strings.ToLower(strings.TrimSpace(v.GetString("STORAGE_DRIVER"))),
			DataDir:     v.GetString("DATA_DIR"),
			DatabaseURL: v.GetString("DATABASE_URL"),
			RedisURL:    v.GetString("REDIS_URL"),
			KeyPrefix:   v.GetString("STORAGE_KEY_PREFIX"),
		},
		SessionSecret:    v.GetString("SESSION_SECRET"),
		SiteURL:          strings.TrimSpace(v.GetString("SITE_URL")),
		RenderMarkdown:   v.GetBool("RENDER_MARKDOWN"),
		TemplatesDir:     v.GetString("TEMPLATES_DIR"),
		LogLevel:         v.GetString("LOG_LEVEL"),
		LogFile:          v.GetString("LOG_FILE"),
		RateLimitRPS:     v.GetFloat64("RATE_LIMIT_RPS"),
		RateLimitBurst:   v.GetInt("RATE_LIMIT_BURST"),
		SessionCacheSize: v.GetInt("SESSION_CACHE_SIZE"),
	}

	switch cfg.Storage.Driver {
	case DriverMemory, DriverFile, DriverRedis:
	case DriverSQLite:
		if cfg.Storage.DatabaseURL == "" {
			cfg.Storage.DatabaseURL = "quill.db"
		}
	case DriverPostgres:
		if cfg.Storage.DatabaseURL == "" {
			// Fallback for local dev if not set
			cfg.Storage.DatabaseURL = "host=localhost user=postgres password=postgres dbname=quill port=5432 sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("config: unknown storage driver %q", cfg.Storage.Driver)
	}
	if cfg.SiteURL == "" {
		return nil, fmt.Errorf("config: SITE_URL must not be empty")
	}
	if cfg.SessionCacheSize <= 0 {
		cfg.SessionCacheSize = 500
	}
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = 1
	}
	return cfg, nil
}
