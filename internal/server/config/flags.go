package config

import (
	"flag"
	"time"

	"github.com/agahlya1812/memoboost/internal/flagx"
)

var serverFlags = []string{
	"-a", "-g", "-storage", "-d", "-f", "-m", "-s", "-t", "-legacy-salt",
	"-o", "-l", "-u", "-p", "-b", "-r", "-e",
}

// parseFlags populates Config from command-line flags.
//
//	-a string        HTTP bind address (":4000")
//	-g string        gRPC health bind address (":50051")
//	-storage string  postgres | orm | memory | file
//	-d string        database DSN
//	-f string        JSON store path for the file backend
//	-m string        legacy JSON store to import on first start
//	-s string        JWT HMAC secret key
//	-t int           access token validity, minutes
//	-legacy-salt     salt of imported sha256 password hashes
//	-o list          comma-separated CORS origins
//	-l string        log level
//	-u/-p/-b/-r/-e   S3 user, password, bucket, region, endpoint
//
// Unknown flags are filtered out first, so the -c/-config flag and flags of
// other components do not collide. A parse error panics.
func parseFlags(config *Config, args []string) {
	filtered := flagx.FilterArgs(args, serverFlags)

	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "HTTP address and port")
	fs.StringVar(&config.HealthAddrGRPC, "g", config.HealthAddrGRPC, "gRPC health address and port")
	fs.StringVar(&config.Storage, "storage", config.Storage, "storage backend")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.StorePath, "f", config.StorePath, "JSON store path")
	fs.StringVar(&config.MigrateFrom, "m", config.MigrateFrom, "legacy JSON store to import")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	tokenMinutes := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	fs.StringVar(&config.LegacySalt, "legacy-salt", config.LegacySalt, "legacy password salt")

	origins := flagx.StringList(config.AllowedOrigins)
	fs.Var(&origins, "o", "allowed CORS origins")

	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "r", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(filtered); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.AccessTokenValidityDuration = time.Duration(*tokenMinutes) * time.Minute
		case "o":
			config.AllowedOrigins = []string(origins)
		}
	})
}
