package config

import (
	"os"
	"path/filepath"
	"sync"

	"fjacquet/payout-report/internal/logging"

	"github.com/joho/godotenv"
)

var envOnce sync.Once

// LoadEnv loads environment variables from a .env file in the working
// directory or its parent, once per process. Variables already set win.
func LoadEnv(logger logging.Logger) {
	envOnce.Do(func() {
		loadEnvFile(logger)
	})
}

func loadEnvFile(logger logging.Logger) string {
	envFile := ".env"
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		envFile = filepath.Join("..", ".env")
		if _, err := os.Stat(envFile); os.IsNotExist(err) {
			logger.Debug("No .env file found, using environment variables")
			return ""
		}
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.WithError(err).Warn("Error loading .env file")
		return ""
	}
	logger.Debug("Loaded environment variables", logging.F("file", envFile))
	return envFile
}

// NewLogger builds the application logger from the log section.
func NewLogger(cfg *Config) logging.Logger {
	return logging.NewLogrusAdapterFromLogger(ConfigureLoggingFromConfig(cfg))
}
