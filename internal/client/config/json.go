package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/imctrack/imctrack/internal/flagx"
	"github.com/imctrack/imctrack/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "3s"
// or as integer nanoseconds. After parsing, values are copied into the
// runtime Config.
type JsonConfig struct {
	ServerBaseURL  string         `json:"server_base_url"`
	DatabaseDSN    string         `json:"database_dsn"`
	RequestTimeout timex.Duration `json:"request_timeout"`
	SyncPacing     timex.Duration `json:"sync_pacing"`
	DevMode        bool           `json:"dev_mode"`
}

// parseJson overlays cfg with values loaded from a JSON file named via the
// -c or -config flags. When no file is named the function returns without
// touching cfg. Read and unmarshal errors panic; the process is still
// starting up and has nothing to clean up.
//
// Zero values in the file leave the corresponding cfg field alone, so a
// partial file only overrides what it names.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerBaseURL != "" {
		cfg.ServerBaseURL = jc.ServerBaseURL
	}
	if jc.DatabaseDSN != "" {
		cfg.DatabaseDSN = jc.DatabaseDSN
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = time.Duration(jc.RequestTimeout.Duration)
	}
	if jc.SyncPacing.Duration != 0 {
		cfg.SyncPacing = time.Duration(jc.SyncPacing.Duration)
	}
	if jc.DevMode {
		cfg.DevMode = true
	}
}
