package config

import (
	"flag"
	"time"

	"github.com/agahlya1812/memoboost/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string      base URL of the API server
//	-t int         request timeout in seconds
//	-r int         revision length in seconds
//	-cache string  path of the local SQLite cache
//
// Unknown flags are filtered out with flagx.FilterArgs first. A parse error
// panics.
func parseFlags(cfg *Config, args []string) {
	filtered := flagx.FilterArgs(args, []string{"-a", "-t", "-r", "-cache"})

	fs := flag.NewFlagSet("client", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "API server URL")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	revision := fs.Int("r", int(cfg.RevisionDuration.Seconds()), "revision duration (in seconds)")
	fs.StringVar(&cfg.CachePath, "cache", cfg.CachePath, "local cache path")

	if err := fs.Parse(filtered); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			cfg.RequestTimeout = time.Duration(*timeout) * time.Second
		case "r":
			cfg.RevisionDuration = time.Duration(*revision) * time.Second
		}
	})
}
