package catalog

import (
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
)

// StoreType represents the type of catalog backend
type StoreType string

const (
	StoreMemory  StoreType = "memory"
	StoreBolt    StoreType = "bolt"
	StoreBadger  StoreType = "badger"
	StoreElastic StoreType = "elastic"
)

// Config holds configuration for catalog backends
type Config struct {
	// Type of catalog backend
	Type StoreType `json:"type" yaml:"type"`

	// Path to database directory/file, for file-backed stores
	Path string `json:"path" yaml:"path"`

	// Elastic holds Elasticsearch connection settings
	Elastic ElasticConfig `json:"elastic,omitempty" yaml:"elastic,omitempty"`
}

// ElasticConfig holds Elasticsearch-specific configuration
type ElasticConfig struct {
	Addresses []string `json:"addresses" yaml:"addresses"`
	Index     string   `json:"index" yaml:"index"`
	Username  string   `json:"username,omitempty" yaml:"username,omitempty"`
	Password  string   `json:"password,omitempty" yaml:"password,omitempty"`
}

// ValidateConfig checks a catalog configuration for completeness
func ValidateConfig(config Config) error {
	switch config.Type {
	case StoreMemory:
		return nil
	case StoreBolt, StoreBadger:
		if config.Path == "" {
			return fmt.Errorf("path is required for %s catalog", config.Type)
		}
		return nil
	case StoreElastic:
		if len(config.Elastic.Addresses) == 0 {
			return fmt.Errorf("at least one elasticsearch address is required")
		}
		return nil
	default:
		return fmt.Errorf("unsupported catalog type: %s", config.Type)
	}
}

// NewStore creates a catalog store based on configuration
func NewStore(config Config) (Store, error) {
	if err := ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid catalog configuration: %w", err)
	}

	switch config.Type {
	case StoreMemory:
		return NewMemoryStore(), nil

	case StoreBolt:
		return NewBoltStore(config.Path)

	case StoreBadger:
		return NewBadgerStore(config.Path)

	case StoreElastic:
		client, err := elasticsearch.NewClient(elasticsearch.Config{
			Addresses: config.Elastic.Addresses,
			Username:  config.Elastic.Username,
			Password:  config.Elastic.Password,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
		}
		return NewElasticStore(client, config.Elastic.Index), nil

	default:
		return nil, fmt.Errorf("unsupported catalog type: %s", config.Type)
	}
}
