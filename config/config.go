package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the process settings read from the environment (.env is
// loaded by main before FromEnv is called).
type Config struct {
	DatabaseURL      string
	Port             string
	GameServiceToken string
	AllowedOrigins   []string
	LogLevel         string
	LevelsFile       string

	// Optional: mirror usernames from the profile sync service.
	SyncServiceURL string

	// Optional: achievement/question catalog published to R2.
	R2AccountID         string
	R2AccessKeyID       string
	R2AccessKeySecret   string
	R2Bucket            string
	CatalogObjectKey    string
	CatalogSyncInterval time.Duration
}

// FromEnv reads Config from environment variables, applying defaults.
func FromEnv() (*Config, error) {
	cfg := &Config{
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		Port:              getEnv("PORT", "5200"),
		GameServiceToken:  os.Getenv("GAME_SERVICE_TOKEN"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LevelsFile:        os.Getenv("LEVELS_FILE"),
		SyncServiceURL:    os.Getenv("SYNC_SERVICE_URL"),
		R2AccountID:       os.Getenv("CLOUDFLARE_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2AccessKeySecret: os.Getenv("R2_ACCESS_KEY_SECRET"),
		R2Bucket:          os.Getenv("R2_BUCKET_NAME"),
		CatalogObjectKey:  getEnv("CATALOG_OBJECT_KEY", "catalog/maze-quiz.yaml"),
	}

	origins := getEnv("ALLOWED_ORIGINS", "http://localhost:3000")
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o == "*" {
			// CORS runs with credentials, which browsers never allow for a wildcard.
			return nil, errors.New("ALLOWED_ORIGINS must list explicit origins, \"*\" is not allowed with credentials")
		}
		if o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}

	interval, err := time.ParseDuration(getEnv("CATALOG_SYNC_INTERVAL", "15m"))
	if err != nil {
		return nil, errors.New("CATALOG_SYNC_INTERVAL must be a Go duration (e.g. 15m)")
	}
	cfg.CatalogSyncInterval = interval

	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return nil, errors.New("PORT must be numeric")
	}
	return cfg, nil
}

// Validate checks the settings the HTTP server cannot run without.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL environment variable not set")
	}
	if c.GameServiceToken == "" {
		return errors.New("GAME_SERVICE_TOKEN environment variable not set")
	}
	return nil
}

// R2Enabled reports whether remote catalog sync is configured.
func (c *Config) R2Enabled() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2AccessKeySecret != "" && c.R2Bucket != ""
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
