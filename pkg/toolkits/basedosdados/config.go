package basedosdados

import (
	"fmt"
	"time"

	"github.com/basedosdados/mcp-basedosdados/pkg/aggregate"
	"github.com/basedosdados/mcp-basedosdados/pkg/catalog"
	"github.com/basedosdados/mcp-basedosdados/pkg/rank"
)

const (
	// defaultSearchLimit is used when a search call omits its limit.
	defaultSearchLimit = 10

	// maxSearchLimit caps how many candidates one search may request.
	maxSearchLimit = 50
)

// Config holds the toolkit configuration.
type Config struct {
	// Endpoint is the upstream GraphQL API URL. Required.
	Endpoint string `yaml:"endpoint"`

	// Timeout bounds each upstream request.
	Timeout time.Duration `yaml:"timeout"`

	// CatalogName is the warehouse catalog prefix for table references.
	CatalogName string `yaml:"catalog_name"`

	// MaxConcurrency bounds in-flight column fetches during aggregation.
	MaxConcurrency int `yaml:"max_concurrency"`

	// MaxCountedTables bounds how many tables of a dataset get their
	// column counts fetched during an overview.
	MaxCountedTables int `yaml:"max_counted_tables"`

	// DefaultLimit is the search result count when the caller omits one.
	DefaultLimit int `yaml:"default_limit"`

	// MaxLimit caps the search result count a caller may request.
	MaxLimit int `yaml:"max_limit"`

	// Weights overrides individual ranking weights. Zero-valued fields
	// keep their defaults.
	Weights rank.Weights `yaml:"weights"`
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint is required")
	}
	if c.DefaultLimit < 0 {
		return fmt.Errorf("default_limit must not be negative")
	}
	if c.MaxLimit < 0 {
		return fmt.Errorf("max_limit must not be negative")
	}
	if c.DefaultLimit > 0 && c.MaxLimit > 0 && c.DefaultLimit > c.MaxLimit {
		return fmt.Errorf("default_limit %d exceeds max_limit %d", c.DefaultLimit, c.MaxLimit)
	}
	return nil
}

// withDefaults returns a copy with zero-valued fields filled in.
func (c Config) withDefaults() Config {
	if c.DefaultLimit == 0 {
		c.DefaultLimit = defaultSearchLimit
	}
	if c.MaxLimit == 0 {
		c.MaxLimit = maxSearchLimit
	}
	return c
}

// catalogConfig derives the metadata client configuration.
func (c Config) catalogConfig() catalog.Config {
	return catalog.Config{
		Endpoint: c.Endpoint,
		Timeout:  c.Timeout,
	}
}

// aggregateConfig derives the aggregator configuration.
func (c Config) aggregateConfig() aggregate.Config {
	return aggregate.Config{
		MaxConcurrency:   c.MaxConcurrency,
		MaxCountedTables: c.MaxCountedTables,
	}
}
