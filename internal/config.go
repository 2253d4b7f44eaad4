package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env     string        `mapstructure:"env"`
	API     APIConfig     `mapstructure:"api"`
	Session SessionConfig `mapstructure:"session"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type APIConfig struct {
	BaseURL   string        `mapstructure:"base_url" validate:"required,url"`
	ProjectID string        `mapstructure:"project_id" validate:"required"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type SessionConfig struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=memory file sqlite redis"`
	Path   string `mapstructure:"path"`
	Secret string `mapstructure:"secret"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

const (
	SessionDriverMemory = "memory"
	SessionDriverFile   = "file"
	SessionDriverSQLite = "sqlite"
	SessionDriverRedis  = "redis"
)

// ----------------- DEFAULTS -----------------

func DefaultConfig() Config {
	return Config{
		Env: "development",
		API: APIConfig{},
		Session: SessionConfig{
			Driver: SessionDriverFile,
			Path:   ".supla/session",
		},
		Redis: RedisConfig{
			Addr:   "127.0.0.1:6379",
			Prefix: "supla:session",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfigFromEnv builds the configuration purely from SUPLA_* variables.
func LoadConfigFromEnv() *Config {
	def := DefaultConfig()
	return &Config{
		Env: getEnv("SUPLA_ENV", "production"),
		API: APIConfig{
			BaseURL:   getEnv("SUPLA_API_BASE_URL", ""),
			ProjectID: getEnv("SUPLA_API_PROJECT_ID", ""),
			Timeout:   getEnvAsDuration("SUPLA_API_TIMEOUT", 0),
		},
		Session: SessionConfig{
			Driver: getEnv("SUPLA_SESSION_DRIVER", def.Session.Driver),
			Path:   getEnv("SUPLA_SESSION_PATH", def.Session.Path),
			Secret: getEnv("SUPLA_SESSION_SECRET", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("SUPLA_REDIS_ADDR", def.Redis.Addr),
			Password: getEnv("SUPLA_REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("SUPLA_REDIS_DB", 0),
			Prefix:   getEnv("SUPLA_REDIS_PREFIX", def.Redis.Prefix),
		},
		Logging: LoggingConfig{
			Level:  getEnv("SUPLA_LOGGING_LEVEL", "info"),
			Format: getEnv("SUPLA_LOGGING_FORMAT", "json"),
		},
	}
}

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultVal
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.API.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("api config: %v", err))
	}

	if err := c.Session.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("session config: %v", err))
	}

	if c.Session.Driver == SessionDriverRedis {
		if err := c.Redis.Validate(); err != nil {
			errs = append(errs, fmt.Sprintf("redis config: %v", err))
		}
	}

	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("logging config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *APIConfig) Validate() error {
	if c.BaseURL == "" {
		return errors.New("base_url is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base_url %s: %w", c.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base_url must be http or https, got %q", u.Scheme)
	}
	if c.ProjectID == "" {
		return errors.New("project_id is required")
	}
	if c.Timeout < 0 {
		return errors.New("timeout cannot be negative")
	}
	return nil
}

// NormalizedBaseURL returns the base URL with exactly one trailing slash.
func (c *APIConfig) NormalizedBaseURL() string {
	return strings.TrimRight(c.BaseURL, "/") + "/"
}

func (c *SessionConfig) Validate() error {
	switch c.Driver {
	case SessionDriverMemory:
		return nil
	case SessionDriverFile:
		if c.Path == "" {
			return errors.New("path is required for the file driver")
		}
		if len(c.Secret) < 32 {
			return errors.New("secret must be at least 32 characters for the file driver")
		}
		return nil
	case SessionDriverSQLite:
		if c.Path == "" {
			return errors.New("path is required for the sqlite driver")
		}
		return nil
	case SessionDriverRedis:
		return nil
	default:
		return fmt.Errorf("unknown driver %q", c.Driver)
	}
}

func (c *RedisConfig) Validate() error {
	if c.Addr == "" {
		return errors.New("addr is required")
	}
	if c.DB < 0 {
		return errors.New("db cannot be negative")
	}
	return nil
}

func (c *LoggingConfig) Validate() error {
	switch c.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid level %q", c.Level)
	}
	switch c.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid format %q", c.Format)
	}
	return nil
}
