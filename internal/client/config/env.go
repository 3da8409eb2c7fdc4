package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// envConfig mirrors Config for the environment stage. Pointer fields
// distinguish "unset" from a deliberate zero.
type envConfig struct {
	ServerBaseURL  *string        `env:"IMCTRACK_SERVER_URL"`
	DatabaseDSN    *string        `env:"IMCTRACK_DB"`
	RequestTimeout *time.Duration `env:"IMCTRACK_REQUEST_TIMEOUT"`
	SyncPacing     *time.Duration `env:"IMCTRACK_SYNC_PACING"`
	DevMode        *bool          `env:"IMCTRACK_DEV"`
}

// parseEnv overlays cfg with values from IMCTRACK_* environment variables.
// Durations use Go syntax ("12s"). Unset variables leave cfg untouched.
func parseEnv(cfg *Config) {
	var ec envConfig
	if err := env.Parse(&ec); err != nil {
		panic(err)
	}

	if ec.ServerBaseURL != nil {
		cfg.ServerBaseURL = *ec.ServerBaseURL
	}
	if ec.DatabaseDSN != nil {
		cfg.DatabaseDSN = *ec.DatabaseDSN
	}
	if ec.RequestTimeout != nil {
		cfg.RequestTimeout = *ec.RequestTimeout
	}
	if ec.SyncPacing != nil {
		cfg.SyncPacing = *ec.SyncPacing
	}
	if ec.DevMode != nil {
		cfg.DevMode = *ec.DevMode
	}
}
