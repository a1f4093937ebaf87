package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv loads envFile when present and copies MEMOBOOST_CLIENT_* variables
// into cfg. Variables already set in the process win over the file.
func parseEnv(cfg *Config, envFile string) {
	if envFile != "" {
		_ = godotenv.Load(envFile)
	}

	if v, ok := lookup("MEMOBOOST_CLIENT_SERVER_URL"); ok {
		cfg.ServerURL = v
	}
	if v, ok := lookup("MEMOBOOST_CLIENT_CACHE_PATH"); ok {
		cfg.CachePath = v
	}

	dur := map[string]*time.Duration{
		"MEMOBOOST_CLIENT_REQUEST_TIMEOUT":   &cfg.RequestTimeout,
		"MEMOBOOST_CLIENT_REVISION_DURATION": &cfg.RevisionDuration,
	}
	for key, dst := range dur {
		if v, ok := lookup(key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				panic(err)
			}
			*dst = d
		}
	}
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}
