package app

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	StorageMemory = "memory"
	StorageFile   = "file"
	StorageRedis  = "redis"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":3000"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"60s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"45s"`

	LogFormat   string `envconfig:"LOG_FORMAT" default:"pretty"`
	ServiceName string `envconfig:"SERVICE_NAME" default:"Proposal PDF Generator"`

	GotenbergURL string `envconfig:"GOTENBERG_URL" default:"http://127.0.0.1:3001" validate:"required,url"`
	// RenderURL points proposalctl and other clients at a running proposald.
	RenderURL string `envconfig:"RENDER_URL" default:"http://127.0.0.1:3000" validate:"omitempty,url"`

	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0" validate:"gte=0"`
	StorageDriver string        `envconfig:"STORAGE_DRIVER" default:"file" validate:"oneof=memory file redis"`
	StorageDir    string        `envconfig:"STORAGE_DIR" default:"./data" validate:"required_if=StorageDriver file"`
	StorageTTL    time.Duration `envconfig:"STORAGE_TTL" default:"0s" validate:"gte=0"`

	SyncEndpoint      string        `envconfig:"SYNC_ENDPOINT" validate:"omitempty,url"`
	SyncTimeout       time.Duration `envconfig:"SYNC_TIMEOUT" default:"20s"`
	WorkerConcurrency int           `envconfig:"WORKER_CONCURRENCY" default:"5" validate:"gte=1"`

	RateLimitPerMinute int    `envconfig:"RATE_LIMIT_PER_MINUTE" default:"60" validate:"gte=1"`
	MaxBodyBytes       int64  `envconfig:"MAX_BODY_BYTES" default:"10485760" validate:"gte=1024"`
	MetricsAddr        string `envconfig:"METRICS_ADDR" default:":9091"`
}

var configValidator = validator.New()

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints not expressible as defaults.
func (c *Config) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config %s: failed %q", fe.Field(), fe.Tag())
		}
		return err
	}
	return nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
