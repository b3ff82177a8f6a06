package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"fjacquet/payout-report/internal/logging"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test in an empty directory with an empty HOME and no
// PAYOUT_* variables set.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	for _, key := range []string{
		"PAYOUT_LOG_LEVEL", "PAYOUT_LOG_FORMAT", "PAYOUT_CSV_DELIMITER",
		"PAYOUT_WINDOW_START", "PAYOUT_WINDOW_END",
		"PAYOUT_TRANSACTION_START_DATE", "PAYOUT_TRANSACTION_END_DATE",
		"PAYOUT_DATABASE_DRIVER", "PAYOUT_DATABASE_DSN", "PAYOUT_DATABASE_MAX_OPEN_CONNS",
		"PAYOUT_PARTY_BASE_URL", "PAYOUT_REDIS_ADDR", "PAYOUT_RUNNER_WORKERS",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	originalDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		require.NoError(t, os.Chdir(originalDir))
	})
	return dir
}

func validConfig() *Config {
	c := &Config{}
	c.Log.Level = "info"
	c.Log.Format = "text"
	c.CSV.Delimiter = ","
	c.Database.Driver = DriverPostgres
	c.Database.MaxOpenConns = 10
	return c
}

func TestInitializeConfig_Defaults(t *testing.T) {
	isolate(t)

	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "info", config.Log.Level)
	assert.Equal(t, "text", config.Log.Format)
	assert.Equal(t, ",", config.CSV.Delimiter)
	assert.Empty(t, config.Window.Start)
	assert.Empty(t, config.Window.End)
	assert.Equal(t, DriverPostgres, config.Database.Driver)
	assert.Equal(t, 10, config.Database.MaxOpenConns)
	assert.Equal(t, 5, config.Database.MaxIdleConns)
	assert.Equal(t, 30*time.Minute, config.Database.ConnMaxLifetime)
	assert.Equal(t, 10*time.Second, config.Party.Timeout)
	assert.Equal(t, 20.0, config.Party.RequestsPerSecond)
	assert.Equal(t, uint32(5), config.Party.BreakerFailures)
	assert.Equal(t, 15*time.Minute, config.Party.CacheTTL)
	assert.Empty(t, config.Redis.Addr)
	assert.Equal(t, 0, config.Runner.Workers)
	assert.Equal(t, 10, config.Workers())
	assert.Equal(t, ":8080", config.Server.Addr)
	assert.Equal(t, 5*time.Minute, config.Server.WriteTimeout)
	assert.Empty(t, config.Codes.Directory)
}

func TestInitializeConfig_EnvironmentVariables(t *testing.T) {
	isolate(t)

	testEnvVars := map[string]string{
		"PAYOUT_LOG_LEVEL":              "debug",
		"PAYOUT_LOG_FORMAT":             "json",
		"PAYOUT_CSV_DELIMITER":          ";",
		"PAYOUT_DATABASE_DRIVER":        "sqlite",
		"PAYOUT_DATABASE_DSN":           "file:payout.db",
		"PAYOUT_PARTY_BASE_URL":         "http://party.local",
		"PAYOUT_REDIS_ADDR":             "localhost:6379",
		"PAYOUT_RUNNER_WORKERS":         "4",
		"PAYOUT_TRANSACTION_START_DATE": "2024-01-01T00:00:00",
		"PAYOUT_TRANSACTION_END_DATE":   "2024-06-30T23:59:59",
	}
	for key, value := range testEnvVars {
		t.Setenv(key, value)
	}

	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "debug", config.Log.Level)
	assert.Equal(t, "json", config.Log.Format)
	assert.Equal(t, ';', config.DelimiterRune())
	assert.Equal(t, DriverSQLite, config.Database.Driver)
	assert.Equal(t, "file:payout.db", config.Database.DSN)
	assert.Equal(t, "http://party.local", config.Party.BaseURL)
	assert.Equal(t, "localhost:6379", config.Redis.Addr)
	assert.Equal(t, 4, config.Workers())
	assert.Equal(t, "2024-01-01T00:00:00", config.Window.Start)
	assert.Equal(t, "2024-06-30T23:59:59", config.Window.End)
}

func TestInitializeConfig_WindowEnvPrecedence(t *testing.T) {
	isolate(t)
	t.Setenv("PAYOUT_WINDOW_START", "2023-01-01")
	t.Setenv("PAYOUT_TRANSACTION_START_DATE", "2024-01-01")

	config, err := InitializeConfig()
	require.NoError(t, err)
	assert.Equal(t, "2023-01-01", config.Window.Start)
}

func TestInitializeConfig_ConfigFile(t *testing.T) {
	dir := isolate(t)

	configContent := `
log:
  level: "warn"
  format: "json"
csv:
  delimiter: "|"
window:
  start: "2024-01-01T00:00:00"
  end: "2024-12-31T23:59:59"
database:
  driver: "sqlite"
  max_open_conns: 3
party:
  timeout: "2s"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(configContent), 0600))

	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "warn", config.Log.Level)
	assert.Equal(t, "json", config.Log.Format)
	assert.Equal(t, "|", config.CSV.Delimiter)
	assert.Equal(t, DriverSQLite, config.Database.Driver)
	assert.Equal(t, 3, config.Workers())
	assert.Equal(t, 2*time.Second, config.Party.Timeout)

	w, err := config.ReportWindow(time.Now())
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC), w.End)
}

func TestLoad_ExplicitFile(t *testing.T) {
	dir := isolate(t)

	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: error\n"), 0600))

	config, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "error", config.Log.Level)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestInitializeConfig_HierarchicalPrecedence(t *testing.T) {
	dir := isolate(t)

	configContent := `
log:
  level: "warn"
csv:
  delimiter: "|"
runner:
  workers: 2
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(configContent), 0600))

	t.Setenv("PAYOUT_LOG_LEVEL", "error")
	t.Setenv("PAYOUT_RUNNER_WORKERS", "8")

	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "error", config.Log.Level) // env var wins
	assert.Equal(t, "|", config.CSV.Delimiter) // config file value
	assert.Equal(t, 8, config.Runner.Workers)  // env var wins
}

func TestValidateConfig_InvalidValues(t *testing.T) {
	tests := []struct {
		name         string
		modifyConfig func(*Config)
		expectError  string
	}{
		{
			name:         "invalid log level",
			modifyConfig: func(c *Config) { c.Log.Level = "invalid" },
			expectError:  "invalid log level",
		},
		{
			name:         "invalid log format",
			modifyConfig: func(c *Config) { c.Log.Format = "invalid" },
			expectError:  "invalid log format",
		},
		{
			name:         "invalid CSV delimiter",
			modifyConfig: func(c *Config) { c.CSV.Delimiter = "abc" },
			expectError:  "CSV delimiter must be a single character",
		},
		{
			name:         "unparseable window start",
			modifyConfig: func(c *Config) { c.Window.Start = "last monday" },
			expectError:  "invalid window.start",
		},
		{
			name: "inverted window",
			modifyConfig: func(c *Config) {
				c.Window.Start = "2024-06-01"
				c.Window.End = "2024-01-01"
			},
			expectError: "is before window.start",
		},
		{
			name:         "unsupported driver",
			modifyConfig: func(c *Config) { c.Database.Driver = "mysql" },
			expectError:  "unsupported database driver",
		},
		{
			name:         "empty pool",
			modifyConfig: func(c *Config) { c.Database.MaxOpenConns = 0 },
			expectError:  "database.max_open_conns must be at least 1",
		},
		{
			name:         "too many workers",
			modifyConfig: func(c *Config) { c.Runner.Workers = 1000 },
			expectError:  "runner.workers must be between 0 and 256",
		},
		{
			name:         "missing codes directory",
			modifyConfig: func(c *Config) { c.Codes.Directory = "/nonexistent/codes" },
			expectError:  "invalid codes.directory",
		},
		{
			name:         "negative party rate",
			modifyConfig: func(c *Config) { c.Party.RequestsPerSecond = -1 },
			expectError:  "party.requests_per_second must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := validConfig()
			require.NoError(t, validateConfig(config))

			tt.modifyConfig(config)
			err := validateConfig(config)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectError)
		})
	}
}

func TestReportWindow_DefaultsToYearToDate(t *testing.T) {
	now := time.Date(2024, 8, 15, 10, 0, 0, 0, time.UTC)

	w, err := validConfig().ReportWindow(now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, now, w.End)

	c := validConfig()
	c.Window.End = "2024-03-31T23:59:59"
	w, err = c.ReportWindow(now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC), w.End)
}

func TestConfigureLoggingFromConfig(t *testing.T) {
	tests := []struct {
		name          string
		level         string
		format        string
		expectedLevel logrus.Level
		json          bool
	}{
		{name: "text format info level", level: "info", format: "text", expectedLevel: logrus.InfoLevel},
		{name: "json format debug level", level: "debug", format: "json", expectedLevel: logrus.DebugLevel, json: true},
		{name: "invalid level falls back to info", level: "loud", format: "text", expectedLevel: logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := validConfig()
			config.Log.Level = tt.level
			config.Log.Format = tt.format

			logger := ConfigureLoggingFromConfig(config)
			assert.Equal(t, tt.expectedLevel, logger.GetLevel())
			_, isJSON := logger.Formatter.(*logrus.JSONFormatter)
			assert.Equal(t, tt.json, isJSON)
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := isolate(t)
	mock := logging.NewMockLogger()

	assert.Empty(t, loadEnvFile(mock))

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PAYOUT_REDIS_ADDR=cache:6379\n"), 0600))
	t.Cleanup(func() { _ = os.Unsetenv("PAYOUT_REDIS_ADDR") })

	assert.Equal(t, ".env", loadEnvFile(mock))
	assert.Equal(t, "cache:6379", os.Getenv("PAYOUT_REDIS_ADDR"))
}

func TestNewLogger(t *testing.T) {
	assert.NotNil(t, NewLogger(validConfig()))
}
