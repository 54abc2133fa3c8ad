package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment variable read by Load
const EnvPrefix = "KWOATLE_"

// Supported database drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds all application configuration
type Config struct {
	Environment           string          `koanf:"environment"`
	Telegram              TelegramConfig  `koanf:"telegram"`
	Database              DatabaseConfig  `koanf:"database"`
	Log                   LogConfig       `koanf:"log"`
	Metrics               MetricsConfig   `koanf:"metrics"`
	Reconcile             ReconcileConfig `koanf:"reconcile"`
	AllowedChatIDs        []int64         `koanf:"allowed_chat_ids"`
	AutoLeaveUnauthorized bool            `koanf:"auto_leave_unauthorized"`
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	Token string `koanf:"token"`
}

// DatabaseConfig selects the store engine and its connection settings
type DatabaseConfig struct {
	Driver   string `koanf:"driver"` // sqlite or postgres
	Path     string `koanf:"path"`   // sqlite file
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	Database string `koanf:"database"`
	SSLMode  string `koanf:"sslmode"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level      string `koanf:"level"`  // debug, info, warn, error
	Format     string `koanf:"format"` // text or json
	File       string `koanf:"file"`   // empty logs to stderr
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
}

// MetricsConfig holds the prometheus listener configuration
type MetricsConfig struct {
	Addr string `koanf:"addr"` // empty disables the listener
}

// ReconcileConfig holds the periodic reconciliation configuration
type ReconcileConfig struct {
	Interval time.Duration `koanf:"interval"` // e.g., "1h"; 0 runs once at startup
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host,
		c.Port,
		c.User,
		c.Password,
		c.Database,
		c.SSLMode,
	)
}

// Validate checks the settings the selected driver needs
func (c *DatabaseConfig) Validate() error {
	switch c.Driver {
	case DriverSQLite:
		if c.Path == "" {
			return errors.New("database.path is required for sqlite")
		}
	case DriverPostgres:
		if c.Host == "" || c.Database == "" {
			return errors.New("database.host and database.database are required for postgres")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", c.Driver)
	}
	return nil
}

// Load loads configuration from .env, the environment's config file and environment variables
func Load(environment string) (*Config, error) {
	// .env is optional and never overrides variables already set
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env: %w", err)
	}

	k := koanf.New(".")
	// Load defaults first (lowest priority)
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("error loading defaults: %w", err)
	}

	// Load from config file based on environment
	configFile := fmt.Sprintf("config/%s.yaml", environment)
	if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		// Config file is optional, log but don't fail
		fmt.Fprintf(os.Stderr, "Warning: could not load config file %s: %v\n", configFile, err)
	}

	// Environment variables override config file values
	prefix := strings.ToLower(EnvPrefix)
	if err := k.Load(env.ProviderWithValue(EnvPrefix, "__", func(key string, value string) (string, interface{}) {
		finalKey := strings.TrimPrefix(strings.ToLower(key), prefix)

		// Slice keys take comma separated values
		switch k.Get(finalKey).(type) {
		case []interface{}, []string, []int64:
			parts := strings.Split(value, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			return finalKey, parts
		}

		return finalKey, value
	}), nil); err != nil {
		return nil, fmt.Errorf("error loading environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	cfg.Environment = environment

	return &cfg, nil
}

// defaultConfig returns the default configuration values
func defaultConfig() Config {
	return Config{
		Database: DatabaseConfig{
			Driver:  DriverSQLite,
			Path:    "kwoatle.db",
			Port:    5432,
			SSLMode: "disable",
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Reconcile: ReconcileConfig{
			Interval: time.Hour,
		},
	}
}
