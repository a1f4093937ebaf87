package config

import (
	"encoding/json"
	"os"

	"github.com/agahlya1812/memoboost/internal/flagx"
	"github.com/agahlya1812/memoboost/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations
// accept strings like "5m" or integer nanoseconds. Absent fields leave the
// current value alone.
type JsonConfig struct {
	ServerURL        *string         `json:"server_url"`
	RequestTimeout   *timex.Duration `json:"request_timeout"`
	RevisionDuration *timex.Duration `json:"revision_duration"`
	CachePath        *string         `json:"cache_path"`
}

// parseJson overlays cfg with the JSON file named by -c/-config. It panics
// on read or unmarshal errors.
func parseJson(cfg *Config, args []string) {
	path := flagx.ConfigPath(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerURL != nil {
		cfg.ServerURL = *jc.ServerURL
	}
	if jc.CachePath != nil {
		cfg.CachePath = *jc.CachePath
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.RevisionDuration != nil {
		cfg.RevisionDuration = jc.RevisionDuration.Duration
	}
}
