package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server   Server   `mapstructure:"server"`
	Database Database `mapstructure:"database"`
	Source   Source   `mapstructure:"source"`
	Sync     Sync     `mapstructure:"sync"`
	Logger   Logger   `mapstructure:"logger"`
}

// Server holds the configuration for the web server.
type Server struct {
	Port int `mapstructure:"port"`
}

// Database holds the configuration for the catalog store.
type Database struct {
	DSN string `mapstructure:"dsn"`
}

// Source selects and configures the trader feed adapter.
type Source struct {
	Provider       string  `mapstructure:"provider"` // "static" or "bitget"
	BaseURL        string  `mapstructure:"base_url"`
	ApiKey         string  `mapstructure:"apiKey"`
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// Sync holds the trigger secret and the per-step timeouts for a sync run.
type Sync struct {
	Secret              string `mapstructure:"secret"`
	FetchTimeoutSeconds int    `mapstructure:"fetch_timeout_seconds"`
	StoreTimeoutSeconds int    `mapstructure:"store_timeout_seconds"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")

	// Allow environment variables to override config file
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("source.provider", "static")
	viper.SetDefault("source.base_url", "https://api.bitget.com")
	viper.SetDefault("source.rate_limit", 10) // requests per second
	viper.SetDefault("source.rate_limit_burst", 5)
	viper.SetDefault("sync.fetch_timeout_seconds", 30)
	viper.SetDefault("sync.store_timeout_seconds", 15)
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	err = config.Validate()
	return
}

// Validate fails fast on configuration the process cannot run without.
// The secret and the DSN are externally supplied credentials, so an empty
// value means a broken deployment, not a usable default.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Sync.Secret) == "" {
		return errors.New("sync.secret is required (trigger authorization shared secret)")
	}
	if strings.TrimSpace(c.Database.DSN) == "" {
		return errors.New("database.dsn is required")
	}
	switch c.Source.Provider {
	case "static", "bitget":
	default:
		return fmt.Errorf("source.provider %q is not supported (want \"static\" or \"bitget\")", c.Source.Provider)
	}
	return nil
}
