package config

import "time"

// Config holds runtime settings for the tracker CLI.
//
// Fields:
//   - ServerBaseURL: base URL of the backend REST API.
//   - DatabaseDSN: path or DSN of the local SQLite cache file.
//   - RequestTimeout: per-request HTTP timeout.
//   - SyncPacing: delay between requests of a batch push.
//   - DevMode: enables the development commands (simulated date,
//     offline switch, cache erase).
type Config struct {
	ServerBaseURL  string
	DatabaseDSN    string
	RequestTimeout time.Duration
	SyncPacing     time.Duration
	DevMode        bool
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:5000"
	c.DatabaseDSN = "imctrack.db"
	c.RequestTimeout = 12 * time.Second
	c.SyncPacing = 100 * time.Millisecond
	c.DevMode = false
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if a file was named), environment variables and command-line
// flags. Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
