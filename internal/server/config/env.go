package config

import (
	"os"
	"strings"
	"time"

	"github.com/agahlya1812/memoboost/internal/flagx"
	"github.com/joho/godotenv"
)

// parseEnv loads envFile (when present, without overriding variables that are
// already set) and copies recognised variables into config.
//
// Besides MEMOBOOST_* keys, the variables of the original deployment are
// honoured: PORT, DATABASE_URL and MEMOBOOST_SALT.
func parseEnv(config *Config, envFile string) {
	if envFile != "" {
		_ = godotenv.Load(envFile)
	}

	if v, ok := lookup("PORT"); ok {
		config.HTTPAddr = ":" + v
	}
	if v, ok := lookup("DATABASE_URL"); ok {
		config.DatabaseDSN = v
		config.Storage = StoragePostgres
	}
	if v, ok := lookup("MEMOBOOST_SALT"); ok {
		config.LegacySalt = v
	}

	str := map[string]*string{
		"MEMOBOOST_HTTP_ADDR":        &config.HTTPAddr,
		"MEMOBOOST_HEALTH_ADDR_GRPC": &config.HealthAddrGRPC,
		"MEMOBOOST_STORAGE":          &config.Storage,
		"MEMOBOOST_DATABASE_DSN":     &config.DatabaseDSN,
		"MEMOBOOST_STORE_PATH":       &config.StorePath,
		"MEMOBOOST_MIGRATE_FROM":     &config.MigrateFrom,
		"MEMOBOOST_SECRET_KEY":       &config.SecretKey,
		"MEMOBOOST_LOG_LEVEL":        &config.LogLevel,
		"MEMOBOOST_S3_ROOT_USER":     &config.S3RootUser,
		"MEMOBOOST_S3_ROOT_PASSWORD": &config.S3RootPassword,
		"MEMOBOOST_S3_BUCKET":        &config.S3Bucket,
		"MEMOBOOST_S3_REGION":        &config.S3Region,
		"MEMOBOOST_S3_BASE_ENDPOINT": &config.S3BaseEndpoint,
	}
	for key, dst := range str {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}

	dur := map[string]*time.Duration{
		"MEMOBOOST_ACCESS_TOKEN_VALIDITY": &config.AccessTokenValidityDuration,
		"MEMOBOOST_SHUTDOWN_TIMEOUT":      &config.ShutdownTimeout,
		"MEMOBOOST_HEALTH_CHECK_INTERVAL": &config.HealthCheckInterval,
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

	if v, ok := lookup("MEMOBOOST_ALLOWED_ORIGINS"); ok {
		config.AllowedOrigins = flagx.SplitList(v)
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
