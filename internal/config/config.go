// Package config loads application settings from the environment.
//
// Variables are read with the KLMWIKI_ prefix. The first underscore after the
// prefix separates the section from the key, so KLMWIKI_DATABASE_MAX_OPEN_CONNS
// maps to database.max_open_conns. A .env file in the working directory is
// loaded first when present.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "KLMWIKI_"

var defaultCORSOrigins = []string{"http://localhost:5173", "https://klm-wiki.ru"}

// Config holds all application configuration
type Config struct {
	Env         string            `koanf:"env" validate:"required,oneof=development production test"`
	Server      ServerConfig      `koanf:"server"`
	Database    DatabaseConfig    `koanf:"database"`
	Redis       RedisConfig       `koanf:"redis"`
	Cache       CacheConfig       `koanf:"cache"`
	RateLimit   RateLimitConfig   `koanf:"ratelimit"`
	Uploads     UploadConfig      `koanf:"uploads"`
	Maintenance MaintenanceConfig `koanf:"maintenance"`
	Log         LogConfig         `koanf:"log"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port               string        `koanf:"port" validate:"required"`
	ReadTimeout        time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout       time.Duration `koanf:"write_timeout" validate:"gt=0"`
	IdleTimeout        time.Duration `koanf:"idle_timeout" validate:"gt=0"`
	ShutdownTimeout    time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	RequestTimeout     time.Duration `koanf:"request_timeout" validate:"gt=0"`
	CORSAllowedOrigins []string      `koanf:"cors_allowed_origins"`
	Compression        bool          `koanf:"compression"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver         string        `koanf:"driver" validate:"required,oneof=postgres pgx mysql"`
	Host           string        `koanf:"host" validate:"required"`
	Port           int           `koanf:"port" validate:"required,min=1,max=65535"`
	User           string        `koanf:"user" validate:"required"`
	Password       string        `koanf:"password"`
	Name           string        `koanf:"name" validate:"required"`
	SSLMode        string        `koanf:"ssl_mode"`
	MaxOpenConns   int           `koanf:"max_open_conns" validate:"min=1"`
	MaxIdleConns   int           `koanf:"max_idle_conns" validate:"min=0"`
	MaxLifetime    time.Duration `koanf:"max_lifetime"`
	MigrationsPath string        `koanf:"migrations_path" validate:"required"`
	AutoMigrate    bool          `koanf:"auto_migrate"`
}

// RedisConfig holds Redis connection settings. An empty address disables Redis.
type RedisConfig struct {
	Address  string `koanf:"address"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db" validate:"min=0"`
}

// CacheConfig selects the response cache backend
type CacheConfig struct {
	Backend    string `koanf:"backend" validate:"oneof=redis sqlite none"`
	SQLitePath string `koanf:"sqlite_path"`
	Prefix     string `koanf:"prefix"`
}

// RateLimitConfig holds the per-client request ceiling
type RateLimitConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Requests int           `koanf:"requests" validate:"min=1"`
	Window   time.Duration `koanf:"window" validate:"gt=0"`
}

// UploadConfig holds comment attachment settings
type UploadConfig struct {
	Dir         string `koanf:"dir" validate:"required"`
	MaxFiles    int    `koanf:"max_files" validate:"min=1"`
	MaxFileSize int64  `koanf:"max_file_size" validate:"min=1"` // in bytes
}

// MaintenanceConfig holds scheduled job settings
type MaintenanceConfig struct {
	Enabled            bool   `koanf:"enabled"`
	ApprovalsSchedule  string `koanf:"approvals_schedule" validate:"required"`
	CachePurgeSchedule string `koanf:"cache_purge_schedule" validate:"required"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json pretty"`
}

// Default returns the configuration used when no variables are set
func Default() *Config {
	return &Config{
		Env: "production",
		Server: ServerConfig{
			Port:            "5000",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  15 * time.Second,
			Compression:     true,
		},
		Database: DatabaseConfig{
			Driver:         "postgres",
			Host:           "localhost",
			Port:           5432,
			User:           "postgres",
			Password:       "postgres",
			Name:           "klm_wiki",
			SSLMode:        "disable",
			MaxOpenConns:   20,
			MaxIdleConns:   5,
			MaxLifetime:    5 * time.Minute,
			MigrationsPath: "./migrations",
			AutoMigrate:    true,
		},
		Cache: CacheConfig{
			Backend:    "redis",
			SQLitePath: "./data/cache.db",
			Prefix:     "klmwiki:",
		},
		RateLimit: RateLimitConfig{
			Enabled:  true,
			Requests: 300,
			Window:   time.Minute,
		},
		Uploads: UploadConfig{
			Dir:         "./uploads",
			MaxFiles:    5,
			MaxFileSize: 5 << 20,
		},
		Maintenance: MaintenanceConfig{
			Enabled:            true,
			ApprovalsSchedule:  "0 3 1 * *",
			CachePurgeSchedule: "@hourly",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads configuration from environment variables on top of Default
func Load() (*Config, error) {
	k := koanf.New(".")

	err := k.Load(env.Provider(envPrefix, ".", envKey), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	// slices decode onto existing elements, so the default is applied afterwards
	if len(cfg.Server.CORSAllowedOrigins) == 0 {
		cfg.Server.CORSAllowedOrigins = defaultCORSOrigins
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Cache.Backend == "redis" && c.Redis.Address == "" {
		return fmt.Errorf("KLMWIKI_REDIS_ADDRESS is required when the redis cache backend is selected")
	}
	if c.Cache.Backend == "sqlite" && c.Cache.SQLitePath == "" {
		return fmt.Errorf("KLMWIKI_CACHE_SQLITE_PATH is required when the sqlite cache backend is selected")
	}
	return nil
}

// IsDevelopment reports whether the service runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// envKey maps KLMWIKI_SERVER_READ_TIMEOUT to server.read_timeout
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	return strings.Replace(key, "_", ".", 1)
}
