// Package platform holds process-level configuration: the server identity,
// transport selection, and the catalog toolkit settings. Configuration is
// loaded once at startup and never mutated afterwards.
package platform

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/basedosdados/mcp-basedosdados/pkg/toolkits/basedosdados"
)

// DefaultEndpoint is the production Base dos Dados GraphQL API.
const DefaultEndpoint = "https://backend.basedosdados.org/graphql"

// Config holds the complete server configuration.
type Config struct {
	Server  ServerConfig        `yaml:"server"`
	Catalog basedosdados.Config `yaml:"catalog"`
}

// ServerConfig configures the MCP server identity and transport.
type ServerConfig struct {
	Name      string `yaml:"name"`
	Version   string `yaml:"version"`
	Transport string `yaml:"transport"` // "stdio", "http"
	Address   string `yaml:"address"`
}

// LoadConfig reads and parses a YAML configuration file, expanding
// ${ENV_VAR} references before unmarshaling.
func LoadConfig(path string) (*Config, error) {
	// #nosec G304 -- path is from CLI args, controlled by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	data = []byte(expandEnvVars(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// expandEnvVars expands ${VAR} patterns in the string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		return os.Getenv(varName)
	})
}

// applyDefaults applies default values to the config.
func applyDefaults(cfg *Config) {
	if cfg.Server.Name == "" {
		cfg.Server.Name = "mcp-basedosdados"
	}
	if cfg.Server.Version == "" {
		cfg.Server.Version = "dev"
	}
	if cfg.Server.Transport == "" {
		cfg.Server.Transport = "stdio"
	}
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Catalog.Endpoint == "" {
		cfg.Catalog.Endpoint = DefaultEndpoint
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Server.Transport {
	case "stdio", "http":
	default:
		return fmt.Errorf("server.transport must be \"stdio\" or \"http\", got %q", c.Server.Transport)
	}
	if err := c.Catalog.Validate(); err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	return nil
}
