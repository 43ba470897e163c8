// Package main provides the entry point for the mcp-basedosdados server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	mcpserver "github.com/basedosdados/mcp-basedosdados/internal/server"
	"github.com/basedosdados/mcp-basedosdados/pkg/platform"
	"github.com/basedosdados/mcp-basedosdados/pkg/toolkits/basedosdados"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type serverOptions struct {
	configPath  string
	transport   string
	address     string
	showVersion bool

	// flagsSet records which flags were passed explicitly; explicit flags
	// win over config file values.
	flagsSet map[string]bool
}

func parseFlags() serverOptions {
	opts := serverOptions{}
	flag.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.transport, "transport", "stdio", "Transport type: stdio, http")
	flag.StringVar(&opts.address, "address", ":8080", "Server address for the http transport")
	flag.BoolVar(&opts.showVersion, "version", false, "Show version and exit")
	flag.Parse()

	opts.flagsSet = map[string]bool{}
	flag.Visit(func(f *flag.Flag) { opts.flagsSet[f.Name] = true })
	return opts
}

func setupSignalHandler() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()
	return ctx
}

func run() error {
	opts := parseFlags()

	if opts.showVersion {
		fmt.Printf("mcp-basedosdados version %s\n", mcpserver.Version)
		return nil
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	ctx := setupSignalHandler()

	mcpServer, toolkit, cfg, err := createServer(opts)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer func() { _ = toolkit.Close() }()

	applyConfigOverrides(cfg, &opts)

	slog.Info("starting server",
		"name", cfg.Server.Name,
		"transport", opts.transport,
		"endpoint", cfg.Catalog.Endpoint)

	return startServer(ctx, mcpServer, opts)
}

func createServer(opts serverOptions) (*mcp.Server, *basedosdados.Toolkit, *platform.Config, error) {
	if opts.configPath != "" {
		return mcpserver.NewWithConfig(opts.configPath)
	}
	return mcpserver.NewWithDefaults()
}

// applyConfigOverrides fills options from the config file where the operator
// did not pass the flag.
func applyConfigOverrides(cfg *platform.Config, opts *serverOptions) {
	if !opts.flagsSet["transport"] && cfg.Server.Transport != "" {
		opts.transport = cfg.Server.Transport
	}
	if !opts.flagsSet["address"] && cfg.Server.Address != "" {
		opts.address = cfg.Server.Address
	}
}

func startServer(ctx context.Context, mcpServer *mcp.Server, opts serverOptions) error {
	switch opts.transport {
	case "stdio":
		return mcpServer.Run(ctx, &mcp.StdioTransport{})
	case "http":
		return serveHTTP(ctx, mcpServer, opts.address)
	default:
		return fmt.Errorf("unknown transport: %s", opts.transport)
	}
}

func serveHTTP(ctx context.Context, mcpServer *mcp.Server, address string) error {
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return mcpServer }, nil)
	httpServer := &http.Server{
		Addr:              address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}
