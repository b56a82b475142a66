package app

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"60s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"45s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	RedisAddr         string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	RedisPassword     string        `envconfig:"REDIS_PASSWORD"`
	RedisDB           int           `envconfig:"REDIS_DB" default:"0"`
	DashboardCacheTTL time.Duration `envconfig:"DASHBOARD_CACHE_TTL" default:"5m"`
	SessionCacheTTL   time.Duration `envconfig:"SESSION_CACHE_TTL" default:"5m"`

	GotenbergURL     string        `envconfig:"GOTENBERG_URL" default:"http://127.0.0.1:3000"`
	PDFRenderTimeout time.Duration `envconfig:"PDF_RENDER_TIMEOUT" default:"30s"`
	LogoFetchTimeout time.Duration `envconfig:"LOGO_FETCH_TIMEOUT" default:"2s"`

	ShareBaseURL       string   `envconfig:"SHARE_BASE_URL" default:"http://localhost:3000"`
	CORSOrigins        []string `envconfig:"CORS_ORIGINS" default:"http://localhost:3000"`
	RateLimitPerMinute int      `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120"`
}

// LoadConfig reads .env files when present, then the environment.
// Variables already set in the environment win over the files.
func LoadConfig() (*Config, error) {
	for _, file := range []string{".env.local", ".env"} {
		if _, err := os.Stat(file); err == nil {
			if err := godotenv.Load(file); err != nil {
				return nil, err
			}
		}
	}
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return nil, errors.New("database url must be provided")
	}
	if strings.TrimSpace(cfg.ShareBaseURL) == "" {
		return nil, errors.New("share base url must be provided")
	}
	if cfg.RateLimitPerMinute <= 0 {
		return nil, errors.New("rate limit must be positive")
	}
	return &cfg, nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
