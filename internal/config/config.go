package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Site     SiteConfig
	Source   SourceConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	View     ViewConfig
	Server   ServerConfig
	Logging  LoggingConfig
}

type SiteConfig struct {
	// URL is the absolute site URL of the host portal; its origin anchors
	// server-relative asset paths.
	URL string
	// Token is forwarded as a bearer token on source reads. Access control
	// itself is delegated entirely to the upstream source.
	Token string
}

type SourceConfig struct {
	// Kind selects the record source backend: "rest" or "postgres".
	Kind string
	// PrimaryListID is the authoritative profile collection.
	PrimaryListID string
	// ImageListID optionally names the image library used to backfill
	// missing photos by approximate name match.
	ImageListID string
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

type RedisConfig struct {
	// Host empty disables the shared cache entirely.
	Host     string
	Port     int
	Password string
	DB       int
}

type ViewConfig struct {
	ItemsPerPage int
	AccentColor  string
	Title        string
	Subtitle     string
}

type ServerConfig struct {
	Addr string
}

type LoggingConfig struct {
	Level string
	File  string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Site: SiteConfig{
			URL:   getEnv("SITE_URL", ""),
			Token: getEnv("SITE_TOKEN", ""),
		},
		Source: SourceConfig{
			Kind:          getEnv("SOURCE_KIND", "rest"),
			PrimaryListID: getEnv("PRIMARY_LIST_ID", ""),
			ImageListID:   getEnv("IMAGE_LIST_ID", ""),
		},
		Postgres: PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "directory"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			Database: getEnv("POSTGRES_DB", "directory"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", ""),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		View: ViewConfig{
			ItemsPerPage: getEnvInt("ITEMS_PER_PAGE", 36),
			AccentColor:  getEnv("ACCENT_COLOR", "#114461"),
			Title:        getEnv("PAGE_TITLE", ""),
			Subtitle:     getEnv("PAGE_SUBTITLE", ""),
		},
		Server: ServerConfig{
			Addr: getEnv("HTTP_ADDR", ":8080"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Source.Kind {
	case "rest":
		if c.Site.URL == "" {
			return fmt.Errorf("SITE_URL is required for the rest source")
		}
	case "postgres":
		if c.Postgres.Host == "" {
			return fmt.Errorf("POSTGRES_HOST is required for the postgres source")
		}
	default:
		return fmt.Errorf("SOURCE_KIND must be rest or postgres, got %q", c.Source.Kind)
	}
	if c.Source.PrimaryListID == "" {
		return fmt.Errorf("PRIMARY_LIST_ID is required")
	}
	if c.View.ItemsPerPage < 0 {
		return fmt.Errorf("ITEMS_PER_PAGE must not be negative")
	}
	return nil
}

// CacheEnabled reports whether the optional shared cache is configured.
func (c *Config) CacheEnabled() bool {
	return c.Redis.Host != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
