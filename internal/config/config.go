package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

type Config struct {
	Env       string `mapstructure:"SSP_ENV"`
	LogLevel  string `mapstructure:"SSP_LOG_LEVEL"`
	HTTPAddr  string `mapstructure:"SSP_HTTP_ADDR"`
	PublicURL string `mapstructure:"SSP_PUBLIC_ORIGIN"`

	Cache     CacheConfig     `mapstructure:",squash"`
	Calendar  CalendarConfig  `mapstructure:",squash"`
	Seed      SeedConfig      `mapstructure:",squash"`
	Tasks     TaskConfig      `mapstructure:",squash"`
	Analytics AnalyticsConfig `mapstructure:",squash"`
	Storage   StorageConfig   `mapstructure:",squash"`
	Security  SecurityConfig  `mapstructure:",squash"`
}

type CacheConfig struct {
	RedisAddr string `mapstructure:"SSP_REDIS_ADDR"` // empty runs fully in memory
}

type CalendarConfig struct {
	Timezone string `mapstructure:"SSP_TIMEZONE"`

	// Resolved from Timezone by Load
	Location *time.Location `mapstructure:"-"`
}

type SeedConfig struct {
	Fixtures bool  `mapstructure:"SSP_SEED_FIXTURES"` // load demo posts, approvals and assets at startup
	Random   int64 `mapstructure:"SSP_SEED_RANDOM"`   // RNG seed for demo posts; 0 seeds from the clock
}

type TaskConfig struct {
	GeneratorDelay time.Duration `mapstructure:"SSP_GENERATOR_DELAY"`
	UploadDelay    time.Duration `mapstructure:"SSP_UPLOAD_DELAY"`
	Retention      time.Duration `mapstructure:"SSP_TASK_RETENTION"`
}

type AnalyticsConfig struct {
	TTL time.Duration `mapstructure:"SSP_ANALYTICS_TTL"`
}

type StorageConfig struct {
	Endpoint  string `mapstructure:"SSP_S3_ENDPOINT"`
	Region    string `mapstructure:"SSP_S3_REGION"`
	AccessKey string `mapstructure:"SSP_S3_ACCESS_KEY"`
	SecretKey string `mapstructure:"SSP_S3_SECRET_KEY"`
	Bucket    string `mapstructure:"SSP_S3_BUCKET"`
	PublicURL string `mapstructure:"SSP_S3_PUBLIC_URL"`
}

// Enabled reports whether uploads should go to object storage
func (s StorageConfig) Enabled() bool {
	return s.Bucket != ""
}

type SecurityConfig struct {
	RateLimitRPM       int      `mapstructure:"SSP_RATE_LIMIT_RPM"`
	CORSAllowedOrigins []string `mapstructure:"SSP_CORS_ALLOWED_ORIGINS"`
}

func loadDotEnvFiles() {
	candidates := []string{
		".env",
		filepath.Join("..", ".env"),
		filepath.Join("..", "..", ".env"),
	}

	seen := make(map[string]struct{})
	for _, path := range candidates {
		abs := path
		if resolved, err := filepath.Abs(path); err == nil {
			abs = resolved
		}
		if _, ok := seen[abs]; ok {
			continue
		}
		seen[abs] = struct{}{}

		if _, err := os.Stat(path); err == nil {
			_ = gotenv.Load(path) // env vars already set take precedence
		}
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SSP_ENV", "dev")
	v.SetDefault("SSP_LOG_LEVEL", "")
	v.SetDefault("SSP_HTTP_ADDR", ":8080")
	v.SetDefault("SSP_PUBLIC_ORIGIN", "http://localhost:5173")
	v.SetDefault("SSP_REDIS_ADDR", "")
	v.SetDefault("SSP_TIMEZONE", "Local")
	v.SetDefault("SSP_SEED_FIXTURES", true)
	v.SetDefault("SSP_SEED_RANDOM", 0)
	v.SetDefault("SSP_GENERATOR_DELAY", "2s")
	v.SetDefault("SSP_UPLOAD_DELAY", "1500ms")
	v.SetDefault("SSP_TASK_RETENTION", "10m")
	v.SetDefault("SSP_ANALYTICS_TTL", "30s")
	v.SetDefault("SSP_S3_ENDPOINT", "")
	v.SetDefault("SSP_S3_REGION", "us-east-1")
	v.SetDefault("SSP_S3_ACCESS_KEY", "")
	v.SetDefault("SSP_S3_SECRET_KEY", "")
	v.SetDefault("SSP_S3_BUCKET", "")
	v.SetDefault("SSP_S3_PUBLIC_URL", "")
	v.SetDefault("SSP_RATE_LIMIT_RPM", 120)
	v.SetDefault("SSP_CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")
}

// Load reads configuration from .env files and the environment
func Load() (*Config, error) {
	loadDotEnvFiles()

	v := viper.New()
	v.SetConfigType("env")
	v.AutomaticEnv()
	setDefaults(v)

	// Handle array parsing for comma-separated values
	if origins := v.GetString("SSP_CORS_ALLOWED_ORIGINS"); origins != "" {
		v.Set("SSP_CORS_ALLOWED_ORIGINS", splitList(origins))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) validate() error {
	switch c.Env {
	case "dev", "test", "prod":
	default:
		return fmt.Errorf("invalid SSP_ENV %q (must be dev, test, or prod)", c.Env)
	}

	if c.HTTPAddr == "" {
		return fmt.Errorf("SSP_HTTP_ADDR is required")
	}

	loc, err := time.LoadLocation(c.Calendar.Timezone)
	if err != nil {
		return fmt.Errorf("invalid SSP_TIMEZONE %q: %w", c.Calendar.Timezone, err)
	}
	c.Calendar.Location = loc

	if c.Tasks.GeneratorDelay < 0 || c.Tasks.UploadDelay < 0 {
		return fmt.Errorf("task delays must not be negative")
	}
	if c.Tasks.Retention <= 0 {
		return fmt.Errorf("SSP_TASK_RETENTION must be positive")
	}
	if c.Analytics.TTL < 0 {
		return fmt.Errorf("SSP_ANALYTICS_TTL must not be negative")
	}
	if c.Security.RateLimitRPM < 0 {
		return fmt.Errorf("SSP_RATE_LIMIT_RPM must not be negative")
	}

	if c.Storage.Enabled() {
		if c.Storage.AccessKey == "" || c.Storage.SecretKey == "" {
			return fmt.Errorf("SSP_S3_ACCESS_KEY and SSP_S3_SECRET_KEY are required when SSP_S3_BUCKET is set")
		}
		if c.Storage.Region == "" {
			return fmt.Errorf("SSP_S3_REGION is required when SSP_S3_BUCKET is set")
		}
	}
	return nil
}

func (c *Config) IsDev() bool {
	return c.Env == "dev"
}

func (c *Config) IsProd() bool {
	return c.Env == "prod"
}
