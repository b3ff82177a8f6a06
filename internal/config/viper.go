// Package config provides Viper-based hierarchical configuration management
package config

import (
	"fmt"
	"strings"
	"time"

	"fjacquet/payout-report/internal/dateutils"
	"fjacquet/payout-report/internal/validation"
	"fjacquet/payout-report/internal/ytd"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by the configuration.
const EnvPrefix = "PAYOUT"

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	CSV struct {
		Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
	} `mapstructure:"csv" yaml:"csv"`

	Window struct {
		Start string `mapstructure:"start" yaml:"start"`
		End   string `mapstructure:"end" yaml:"end"`
	} `mapstructure:"window" yaml:"window"`

	Database struct {
		Driver          string        `mapstructure:"driver" yaml:"driver"`
		DSN             string        `mapstructure:"dsn" yaml:"-"` // Never serialize credentials
		MaxOpenConns    int           `mapstructure:"max_open_conns" yaml:"max_open_conns"`
		MaxIdleConns    int           `mapstructure:"max_idle_conns" yaml:"max_idle_conns"`
		ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" yaml:"conn_max_lifetime"`
		Debug           bool          `mapstructure:"debug" yaml:"debug"`
	} `mapstructure:"database" yaml:"database"`

	Party struct {
		BaseURL           string        `mapstructure:"base_url" yaml:"base_url"`
		Timeout           time.Duration `mapstructure:"timeout" yaml:"timeout"`
		RequestsPerSecond float64       `mapstructure:"requests_per_second" yaml:"requests_per_second"`
		BreakerFailures   uint32        `mapstructure:"breaker_failures" yaml:"breaker_failures"`
		CacheTTL          time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl"`
	} `mapstructure:"party" yaml:"party"`

	Redis struct {
		Addr     string `mapstructure:"addr" yaml:"addr"`
		DB       int    `mapstructure:"db" yaml:"db"`
		Password string `mapstructure:"password" yaml:"-"`
	} `mapstructure:"redis" yaml:"redis"`

	Runner struct {
		Workers int `mapstructure:"workers" yaml:"workers"`
	} `mapstructure:"runner" yaml:"runner"`

	Server struct {
		Addr         string        `mapstructure:"addr" yaml:"addr"`
		ReadTimeout  time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
		WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	} `mapstructure:"server" yaml:"server"`

	Codes struct {
		Directory string `mapstructure:"directory" yaml:"directory"`
	} `mapstructure:"codes" yaml:"codes"`
}

// InitializeConfig loads configuration from the default locations.
func InitializeConfig() (*Config, error) {
	return Load("")
}

// Load initializes Viper configuration with hierarchical loading. A non-empty
// configFile replaces the search path.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.payout-report")
		v.AddConfigPath(".payout-report")
		v.AddConfigPath(".")
	}

	// 3. Environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file (optional unless named explicitly)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configFile != "" {
			return nil, fmt.Errorf("error reading config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	// 5. The window is also read from the job scheduler's variable names
	if err := v.BindEnv("window.start", EnvPrefix+"_WINDOW_START", EnvPrefix+"_TRANSACTION_START_DATE"); err != nil {
		return nil, fmt.Errorf("failed to bind window start: %w", err)
	}
	if err := v.BindEnv("window.end", EnvPrefix+"_WINDOW_END", EnvPrefix+"_TRANSACTION_END_DATE"); err != nil {
		return nil, fmt.Errorf("failed to bind window end: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 6. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	// CSV defaults
	v.SetDefault("csv.delimiter", ",")

	// Window defaults to the current year to date
	v.SetDefault("window.start", "")
	v.SetDefault("window.end", "")

	// Database defaults
	v.SetDefault("database.driver", DriverPostgres)
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.debug", false)

	// Party service defaults
	v.SetDefault("party.base_url", "")
	v.SetDefault("party.timeout", "10s")
	v.SetDefault("party.requests_per_second", 20.0)
	v.SetDefault("party.breaker_failures", 5)
	v.SetDefault("party.cache_ttl", "15m")

	// Redis defaults (empty address keeps the cache in memory)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.password", "")

	// Runner defaults (0 follows database.max_open_conns)
	v.SetDefault("runner.workers", 0)

	// Server defaults
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "5m")

	// Codes defaults (empty uses the embedded tables)
	v.SetDefault("codes.directory", "")
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	// Validate log level
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	// Validate log format
	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	// Validate CSV delimiter
	if len(config.CSV.Delimiter) != 1 {
		return fmt.Errorf("CSV delimiter must be a single character, got: %s", config.CSV.Delimiter)
	}

	// Validate window
	if _, err := config.ReportWindow(time.Now()); err != nil {
		return err
	}

	// Validate database driver
	switch config.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported database driver: %s (must be '%s' or '%s')",
			config.Database.Driver, DriverPostgres, DriverSQLite)
	}
	if config.Database.MaxOpenConns < 1 {
		return fmt.Errorf("database.max_open_conns must be at least 1, got: %d", config.Database.MaxOpenConns)
	}

	// Validate runner
	if config.Runner.Workers < 0 || config.Runner.Workers > 256 {
		return fmt.Errorf("runner.workers must be between 0 and 256, got: %d", config.Runner.Workers)
	}

	// Validate code table directory
	if config.Codes.Directory != "" {
		if err := validation.IsValidDirectory(config.Codes.Directory); err != nil {
			return fmt.Errorf("invalid codes.directory: %w", err)
		}
	}

	// Validate party throttling
	if config.Party.RequestsPerSecond < 0 {
		return fmt.Errorf("party.requests_per_second must not be negative, got: %f", config.Party.RequestsPerSecond)
	}

	return nil
}

// ReportWindow resolves the configured report window. An unset start is the first
// day of now's year and an unset end is now.
func (c *Config) ReportWindow(now time.Time) (ytd.Window, error) {
	w := ytd.Window{
		Start: time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location()),
		End:   now,
	}
	if c.Window.Start != "" {
		t, err := dateutils.ParseDateTime(c.Window.Start)
		if err != nil {
			return ytd.Window{}, fmt.Errorf("invalid window.start: %w", err)
		}
		w.Start = t
	}
	if c.Window.End != "" {
		t, err := dateutils.ParseDateTime(c.Window.End)
		if err != nil {
			return ytd.Window{}, fmt.Errorf("invalid window.end: %w", err)
		}
		w.End = t
	}
	if w.End.Before(w.Start) {
		return ytd.Window{}, fmt.Errorf("window.end %s is before window.start %s",
			w.End.Format(dateutils.DateTimeLayoutISO), w.Start.Format(dateutils.DateTimeLayoutISO))
	}
	return w, nil
}

// Workers returns the runner pool size, defaulting to the database pool size.
func (c *Config) Workers() int {
	if c.Runner.Workers > 0 {
		return c.Runner.Workers
	}
	return c.Database.MaxOpenConns
}

// DelimiterRune returns the CSV delimiter as a rune.
func (c *Config) DelimiterRune() rune {
	if c.CSV.Delimiter == "" {
		return ','
	}
	return []rune(c.CSV.Delimiter)[0]
}

// ConfigureLoggingFromConfig configures logging based on the Config struct
func ConfigureLoggingFromConfig(config *Config) *logrus.Logger {
	logger := logrus.New()

	// Parse and set log level
	logLevel, err := logrus.ParseLevel(strings.ToLower(config.Log.Level))
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info'", config.Log.Level)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Configure log format
	if strings.ToLower(config.Log.Format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}
