// Package config loads the server configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the process needs at startup. Loaded once; never
// mutated afterwards.
type Config struct {
	APIKey string
	AppKey string
	Site   string

	LogLevel string
	LogPath  string

	SlowToolThreshold time.Duration
}

const defaultSite = "datadoghq.com"

// regionSites maps the short region names to Datadog sites. DD_SITE wins when
// both are set.
var regionSites = map[string]string{
	"us":  "datadoghq.com",
	"eu":  "datadoghq.eu",
	"us3": "us3.datadoghq.com",
	"us5": "us5.datadoghq.com",
	"ap1": "ap1.datadoghq.com",
	"gov": "ddog-gov.com",
}

// Load reads configuration from the environment, honoring a .env file when
// present. Missing required keys abort startup.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		APIKey:            firstEnv("DD_API_KEY", "DATADOG_API_KEY"),
		AppKey:            firstEnv("DD_APP_KEY", "DATADOG_APP_KEY"),
		Site:              os.Getenv("DD_SITE"),
		LogLevel:          envOr("DD_MCP_LOG_LEVEL", "info"),
		LogPath:           os.Getenv("DD_MCP_LOG_PATH"),
		SlowToolThreshold: 2 * time.Second,
	}

	if cfg.APIKey == "" || cfg.AppKey == "" {
		return nil, fmt.Errorf("DD_API_KEY and DD_APP_KEY environment variables must be set")
	}

	if cfg.Site == "" {
		if region := os.Getenv("DD_REGION"); region != "" {
			site, ok := regionSites[region]
			if !ok {
				return nil, fmt.Errorf("unknown DD_REGION %q", region)
			}
			cfg.Site = site
		} else {
			cfg.Site = defaultSite
		}
	}

	if raw := os.Getenv("DD_MCP_SLOW_TOOL_MS"); raw != "" {
		ms, err := strconv.Atoi(raw)
		if err != nil || ms <= 0 {
			return nil, fmt.Errorf("DD_MCP_SLOW_TOOL_MS must be a positive integer, got %q", raw)
		}
		cfg.SlowToolThreshold = time.Duration(ms) * time.Millisecond
	}

	return cfg, nil
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
