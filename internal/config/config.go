package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	applog "expensetracker/internal/log"
)

// Keys double as environment variable names once upper-cased by viper.
const (
	KeyPort               = "port"
	KeySQLiteDBPath       = "sqlite_db_path"
	KeyAMQPURL            = "amqp_url"
	KeyAMQPExchange       = "amqp_exchange"
	KeyAMQPQueue          = "amqp_queue"
	KeyStrictCategories   = "strict_categories"
	KeyRateLimitPerMinute = "rate_limit_per_minute"
	KeyLogLevel           = "log_level"
	KeyLogFormat          = "log_format"
	KeyShutdownTimeout    = "shutdown_timeout"
	KeyCategoryCacheTTL   = "category_cache_ttl"
)

type Config struct {
	// HTTP Server
	Port               string
	RateLimitPerMinute int
	ShutdownTimeout    time.Duration

	// Database
	SQLiteDBPath     string
	StrictCategories bool
	CategoryCacheTTL time.Duration

	// AMQP; an empty URL disables events.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Logging
	LogLevel  string
	LogFormat string
}

// SetDefaults registers defaults and environment lookup on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyPort, "8080")
	v.SetDefault(KeySQLiteDBPath, "./data/expenses.db")
	v.SetDefault(KeyAMQPURL, "")
	v.SetDefault(KeyAMQPExchange, "expensetracker")
	v.SetDefault(KeyAMQPQueue, "transaction_events")
	v.SetDefault(KeyStrictCategories, false)
	v.SetDefault(KeyRateLimitPerMinute, 60)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, applog.FormatText)
	v.SetDefault(KeyShutdownTimeout, 30*time.Second)
	v.SetDefault(KeyCategoryCacheTTL, 5*time.Minute)
	v.AutomaticEnv()
}

// Load reads the process environment through a fresh viper instance.
func Load() *Config {
	v := viper.New()
	SetDefaults(v)
	return FromViper(v)
}

// FromViper builds a Config from an already prepared viper instance, so
// command-line flags bound to it take precedence over the environment.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Port:               v.GetString(KeyPort),
		RateLimitPerMinute: v.GetInt(KeyRateLimitPerMinute),
		ShutdownTimeout:    v.GetDuration(KeyShutdownTimeout),
		SQLiteDBPath:       v.GetString(KeySQLiteDBPath),
		StrictCategories:   v.GetBool(KeyStrictCategories),
		CategoryCacheTTL:   v.GetDuration(KeyCategoryCacheTTL),
		AMQPURL:            v.GetString(KeyAMQPURL),
		AMQPExchange:       v.GetString(KeyAMQPExchange),
		AMQPQueue:          v.GetString(KeyAMQPQueue),
		LogLevel:           v.GetString(KeyLogLevel),
		LogFormat:          v.GetString(KeyLogFormat),
	}
}

// AMQPEnabled reports whether transaction events should be published.
func (c *Config) AMQPEnabled() bool {
	return c.AMQPURL != ""
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
			}
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitPerMinute))
	}

	if c.ShutdownTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid shutdown timeout %v: must be at least 1 second", c.ShutdownTimeout))
	}

	if c.CategoryCacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid category cache TTL %v: must not be negative", c.CategoryCacheTTL))
	}

	if _, err := applog.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, err.Error())
	}
	if _, err := applog.ParseFormat(c.LogFormat); err != nil {
		errors = append(errors, err.Error())
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}
