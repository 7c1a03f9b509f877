package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/carsuggester/vehiclesearch/api"
	"github.com/carsuggester/vehiclesearch/catalog"
	"github.com/carsuggester/vehiclesearch/core/rank"
)

// Config represents the complete vehiclesearch configuration
type Config struct {
	// Server configuration
	Server ServerConfig `yaml:"server" json:"server"`

	// Catalog configuration
	Catalog catalog.Config `yaml:"catalog" json:"catalog"`

	// History configuration
	History HistoryConfig `yaml:"history" json:"history"`

	// Redis configuration for trending suggestions
	Redis RedisConfig `yaml:"redis" json:"redis"`

	// Search behavior configuration
	Search SearchConfig `yaml:"search" json:"search"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Host            string        `yaml:"host" json:"host"`
	Port            int           `yaml:"port" json:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" json:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// ToServerConfig converts to the API server configuration
func (s ServerConfig) ToServerConfig() api.ServerConfig {
	return api.ServerConfig{
		Host:            s.Host,
		Port:            s.Port,
		ReadTimeout:     s.ReadTimeout,
		WriteTimeout:    s.WriteTimeout,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: s.ShutdownTimeout,
	}
}

// HistoryConfig contains search history configuration
type HistoryConfig struct {
	// Backend type: "memory" or "bolt"
	Type string `yaml:"type" json:"type"`

	// Path to the history database, for the bolt backend
	Path string `yaml:"path" json:"path"`
}

// RedisConfig contains trending-store configuration
type RedisConfig struct {
	// Enabled selects redis-backed trending; when false a static
	// fallback list is used
	Enabled  bool   `yaml:"enabled" json:"enabled"`
	Addr     string `yaml:"addr" json:"addr"`
	Password string `yaml:"password" json:"password"`
	DB       int    `yaml:"db" json:"db"`
}

// SearchConfig contains relevance tuning configuration
type SearchConfig struct {
	// ReferencePath points to the brands/categories reference file.
	// Empty means built-in defaults.
	ReferencePath string `yaml:"reference_path" json:"reference_path"`

	// Weights overrides the default scoring weights when set
	Weights *rank.ScoringWeights `yaml:"weights,omitempty" json:"weights,omitempty"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
	Output string `yaml:"output" json:"output"`
}

// LoadConfig loads configuration with the following precedence:
// 1. Environment variables
// 2. Configuration file (~/.vehiclesearch.yml or specified path)
// 3. Default values
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if configPath == "" {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			configPath = filepath.Join(homeDir, ".vehiclesearch.yml")
		}
	}

	if configPath != "" {
		if err := loadConfigFromFile(configPath, config); err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
			}
		}
	}

	loadConfigFromEnv(config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// loadConfigFromFile loads configuration from a YAML file
func loadConfigFromFile(path string, config *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, config)
}

// loadConfigFromEnv loads configuration from environment variables
func loadConfigFromEnv(config *Config) {
	if host := os.Getenv("VEHICLESEARCH_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("VEHICLESEARCH_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if backend := os.Getenv("VEHICLESEARCH_CATALOG_BACKEND"); backend != "" {
		config.Catalog.Type = catalog.StoreType(backend)
	}
	if path := os.Getenv("VEHICLESEARCH_CATALOG_PATH"); path != "" {
		config.Catalog.Path = path
	}
	if addr := os.Getenv("VEHICLESEARCH_ELASTIC_ADDR"); addr != "" {
		config.Catalog.Elastic.Addresses = []string{addr}
	}

	if addr := os.Getenv("VEHICLESEARCH_REDIS_ADDR"); addr != "" {
		config.Redis.Enabled = true
		config.Redis.Addr = addr
	}
	if password := os.Getenv("VEHICLESEARCH_REDIS_PASSWORD"); password != "" {
		config.Redis.Password = password
	}

	if refPath := os.Getenv("VEHICLESEARCH_REFERENCE_PATH"); refPath != "" {
		config.Search.ReferencePath = refPath
	}

	if level := os.Getenv("VEHICLESEARCH_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Catalog: catalog.Config{
			Type: catalog.StoreMemory,
			Path: "data/vehicles.db",
		},
		History: HistoryConfig{
			Type: "memory",
			Path: "data/history.db",
		},
		Redis: RedisConfig{
			Enabled: false,
			Addr:    "localhost:6379",
		},
		Search: SearchConfig{},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port number: %d", c.Server.Port)
	}

	if err := catalog.ValidateConfig(c.Catalog); err != nil {
		return err
	}

	switch c.History.Type {
	case "memory":
	case "bolt":
		if c.History.Path == "" {
			return fmt.Errorf("path is required for bolt history")
		}
	default:
		return fmt.Errorf("unsupported history type: %s", c.History.Type)
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("redis address is required when redis is enabled")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	return nil
}
