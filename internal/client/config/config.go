package config

import "time"

// Config holds runtime settings for the MemoBoost CLI.
type Config struct {
	ServerURL        string
	RequestTimeout   time.Duration
	RevisionDuration time.Duration
	CachePath        string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:4000"
	c.RequestTimeout = 10 * time.Second
	c.RevisionDuration = 5 * time.Minute
	c.CachePath = "memoboost-cache.db"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the environment, a JSON file (if present) and command-line flags. Later
// sources take precedence over earlier ones.
func LoadConfig(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg, ".env")
	parseJson(cfg, args)
	parseFlags(cfg, args)
	return cfg
}
