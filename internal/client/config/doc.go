// Package config loads runtime configuration for the tracker CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. IMCTRACK_* environment variables (see parseEnv).
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the backend REST API
//	-d string   local database file
//	-t int      request timeout (seconds)
//	-dev        enable development commands
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be
// either strings like "12s" or integer nanoseconds:
//
//	{
//	  "server_base_url": "http://127.0.0.1:5000",
//	  "database_dsn": "imctrack.db",
//	  "request_timeout": "12s",
//	  "sync_pacing": "100ms",
//	  "dev_mode": false
//	}
package config
