package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// DatabaseConfig selects and locates the persistence backend.
type DatabaseConfig struct {
	// Driver is either "sqlite" or "postgres".
	Driver string `mapstructure:"driver" yaml:"driver"`

	// Path is the SQLite database file.
	Path string `mapstructure:"path" yaml:"path"`

	// PostgresURL is the connection string used when Driver is "postgres".
	PostgresURL string `mapstructure:"postgres_url" yaml:"postgres_url"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Address string `mapstructure:"address" yaml:"address"`
}

// RedisConfig holds settings for change-event publishing.
// Events are disabled when Addr is empty.
type RedisConfig struct {
	Addr     string `mapstructure:"addr" yaml:"addr"`
	Password string `mapstructure:"password" yaml:"password"`
	DB       int    `mapstructure:"db" yaml:"db"`
	Channel  string `mapstructure:"channel" yaml:"channel"`
}

// Enabled reports whether a Redis address is configured.
func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	PageSize int `mapstructure:"page_size" yaml:"page_size"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Redis    RedisConfig    `mapstructure:"redis" yaml:"redis"`
	Display  DisplayConfig  `mapstructure:"display" yaml:"display"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
}

// EnvPrefix is prepended to environment variable overrides,
// e.g. PDFPRINTS_DATABASE_DRIVER.
const EnvPrefix = "PDFPRINTS"

// DataDir returns the directory holding the default database and log file,
// located at ~/.local/share/pdfprints.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", "pdfprints")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/pdfprints/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "pdfprints", "config.yaml")
}

// NewViper returns a viper instance with every default registered and
// environment overrides enabled. Callers may bind flags before LoadConfig.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", filepath.Join(DataDir(), "pdfprints.db"))
	v.SetDefault("database.postgres_url", "")
	v.SetDefault("server.address", ":8080")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.channel", "pdfprints:events")
	v.SetDefault("display.page_size", 50)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// LoadConfig reads configuration from the given YAML file path using v.
// A missing file is not an error: defaults and environment overrides apply.
func LoadConfig(v *viper.Viper, path string) (*AppConfig, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			var pathErr *os.PathError
			if !errors.As(err, &notFound) && !errors.As(err, &pathErr) {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the application cannot start with.
func (c *AppConfig) Validate() error {
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return errors.New("database.path must be set for the sqlite driver")
		}
	case "postgres":
		if c.Database.PostgresURL == "" {
			return errors.New("database.postgres_url must be set for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown database.driver %q", c.Database.Driver)
	}
	if c.Display.PageSize <= 0 {
		return fmt.Errorf("display.page_size must be > 0, got %d", c.Display.PageSize)
	}
	return nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("database.driver", cfg.Database.Driver)
	v.Set("database.path", cfg.Database.Path)
	v.Set("database.postgres_url", cfg.Database.PostgresURL)
	v.Set("server.address", cfg.Server.Address)
	v.Set("redis.addr", cfg.Redis.Addr)
	v.Set("redis.password", cfg.Redis.Password)
	v.Set("redis.db", cfg.Redis.DB)
	v.Set("redis.channel", cfg.Redis.Channel)
	v.Set("display.page_size", cfg.Display.PageSize)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.file", cfg.Log.File)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
