// Package config loads runtime configuration for the stickyhabits CLI:
// built-in defaults, then an optional JSON file (-c/-config or
// STICKYHABITS_CONFIG), then command-line flags.
package config

import "time"

// Config holds runtime settings for the CLI.
type Config struct {
	ServerEndpointAddr  string
	OnlineCheckInterval time.Duration
	// DownloadDir receives evidence files fetched with the fetch command.
	DownloadDir string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.OnlineCheckInterval = 3 * time.Second
	c.DownloadDir = "evidence"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
