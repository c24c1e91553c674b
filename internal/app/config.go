package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration. Values come from defaults, then an
// optional YAML file, then environment overrides, and are validated before use.
type Config struct {
	DataDir      string `yaml:"data_dir" validate:"required"`
	StoreFile    string `yaml:"store_file" validate:"required"`
	LogLevel     string `yaml:"log_level" validate:"oneof=debug info warn error"`
	MaxRecords   int    `yaml:"max_records" validate:"min=0"`
	FetchWorkers int    `yaml:"fetch_workers" validate:"min=1,max=64"`
}

func defaultConfig() *Config {
	return &Config{
		DataDir:      "data",
		StoreFile:    "stock.parquet",
		LogLevel:     "info",
		MaxRecords:   200,
		FetchWorkers: 4,
	}
}

// LoadConfig builds the configuration. path names a YAML file and may be
// empty, in which case only defaults and environment variables apply.
func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.DataDir = getEnv("DATA_DIR", cfg.DataDir)
	cfg.StoreFile = getEnv("STORE_FILE", cfg.StoreFile)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.MaxRecords = getEnvInt("MAX_RECORDS", cfg.MaxRecords)
	cfg.FetchWorkers = getEnvInt("FETCH_WORKERS", cfg.FetchWorkers)

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// StorePath returns the store file location under the data directory.
func (c *Config) StorePath() string {
	return filepath.Join(c.DataDir, c.StoreFile)
}
