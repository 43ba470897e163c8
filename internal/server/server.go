// Package server provides a factory for creating the MCP server.
package server

import (
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/basedosdados/mcp-basedosdados/pkg/platform"
	"github.com/basedosdados/mcp-basedosdados/pkg/toolkits/basedosdados"
)

// Version is set at build time.
var Version = "dev"

// New creates an MCP server wired to the catalog toolkit. The returned
// toolkit must be closed when the server shuts down.
func New(cfg *platform.Config) (*mcp.Server, *basedosdados.Toolkit, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("validating config: %w", err)
	}

	version := cfg.Server.Version
	if version == "" || version == "dev" {
		version = Version
	}

	toolkit, err := basedosdados.New(cfg.Server.Name, cfg.Catalog)
	if err != nil {
		return nil, nil, fmt.Errorf("creating catalog toolkit: %w", err)
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    cfg.Server.Name,
		Version: version,
	}, nil)
	toolkit.RegisterTools(mcpServer)

	return mcpServer, toolkit, nil
}

// NewWithConfig loads the configuration file at path and builds the server.
func NewWithConfig(path string) (*mcp.Server, *basedosdados.Toolkit, *platform.Config, error) {
	cfg, err := platform.LoadConfig(path)
	if err != nil {
		return nil, nil, nil, err
	}
	mcpServer, toolkit, err := New(cfg)
	return mcpServer, toolkit, cfg, err
}

// NewWithDefaults builds the server against the production catalog endpoint.
func NewWithDefaults() (*mcp.Server, *basedosdados.Toolkit, *platform.Config, error) {
	cfg := platform.DefaultConfig()
	mcpServer, toolkit, err := New(cfg)
	return mcpServer, toolkit, cfg, err
}
