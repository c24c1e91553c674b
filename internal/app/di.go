package app

import (
	"log/slog"
	"os"

	"cn-data/internal/slogx"
)

// App holds the dependencies built by Wire for the CLI.
type App struct {
	Config *Config
	Logger *slog.Logger
}

// ProvideConfig loads config for Wire. The optional YAML file is named by
// CN_DATA_CONFIG.
func ProvideConfig() (*Config, error) {
	return LoadConfig(os.Getenv("CN_DATA_CONFIG"))
}

// ProvideLogger creates the process logger from config (for Wire).
func ProvideLogger(cfg *Config) *slog.Logger {
	return slogx.NewDefault(cfg.LogLevel)
}
