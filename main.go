package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/observekit/datadog-mcp/internal/config"
	"github.com/observekit/datadog-mcp/internal/ddclient"
	mcpserver "github.com/observekit/datadog-mcp/internal/server"
)

func main() {
	// Command line flags
	transport := flag.String("transport", "stdio", "Transport type: stdio, http")
	addr := flag.String("addr", ":8080", "HTTP server address (for http transport)")
	endpoint := flag.String("endpoint", "/mcp", "HTTP endpoint path (for http transport)")
	stateless := flag.Bool("stateless", false, "Run HTTP server in stateless mode")
	certFile := flag.String("tls-cert", "", "TLS certificate file (enables HTTPS)")
	keyFile := flag.String("tls-key", "", "TLS key file (enables HTTPS)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		os.Exit(1)
	}

	clients := ddclient.New(cfg)

	// Create the MCP server
	s := mcpserver.New(clients, log, cfg.SlowToolThreshold)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	switch *transport {
	case "stdio":
		go func() {
			<-sigChan
			os.Exit(0)
		}()

		if err := server.ServeStdio(s); err != nil {
			fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
			os.Exit(1)
		}

	case "http":
		// Build HTTP server options
		opts := []server.StreamableHTTPOption{
			server.WithEndpointPath(*endpoint),
			server.WithHeartbeatInterval(30 * time.Second),
		}

		if *stateless {
			opts = append(opts, server.WithStateLess(true))
		}

		if *certFile != "" && *keyFile != "" {
			opts = append(opts, server.WithTLSCert(*certFile, *keyFile))
		}

		// Create the HTTP server
		httpServer := server.NewStreamableHTTPServer(s, opts...)

		// Handle graceful shutdown
		go func() {
			<-sigChan
			fmt.Fprintln(os.Stderr, "Shutting down...")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			httpServer.Shutdown(ctx)
			os.Exit(0)
		}()

		proto := "http"
		if *certFile != "" {
			proto = "https"
		}
		log.Infof("Starting MCP server on %s://%s%s", proto, *addr, *endpoint)

		if err := httpServer.Start(*addr); err != nil {
			fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
			os.Exit(1)
		}

	default:
		fmt.Fprintf(os.Stderr, "Unknown transport: %s (use 'stdio' or 'http')\n", *transport)
		os.Exit(1)
	}
}

// newLogger writes JSON lines to stderr, or to the configured file so the
// stdio transport's stdout stays clean.
func newLogger(cfg *config.Config) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stderr)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	log.SetLevel(level)

	if cfg.LogPath != "" {
		f, err := os.OpenFile(cfg.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		log.SetOutput(f)
	}

	return log, nil
}
