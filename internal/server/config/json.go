package config

import (
	"encoding/json"
	"os"

	"github.com/agahlya1812/memoboost/internal/flagx"
	"github.com/agahlya1812/memoboost/internal/timex"
)

// JsonConfig is the on-disk shape of the server config file. Only fields
// present in the file override the current values.
type JsonConfig struct {
	HTTPAddr                    *string         `json:"http_addr"`
	HealthAddrGRPC              *string         `json:"health_addr_grpc"`
	Storage                     *string         `json:"storage"`
	DatabaseDSN                 *string         `json:"database_dsn"`
	StorePath                   *string         `json:"store_path"`
	MigrateFrom                 *string         `json:"migrate_from"`
	SecretKey                   *string         `json:"secret_key"`
	AccessTokenValidityDuration *timex.Duration `json:"access_token_validity_duration"`
	LegacySalt                  *string         `json:"legacy_salt"`
	AllowedOrigins              []string        `json:"allowed_origins"`
	LogLevel                    *string         `json:"log_level"`
	ShutdownTimeout             *timex.Duration `json:"shutdown_timeout"`
	HealthCheckInterval         *timex.Duration `json:"health_check_interval"`
	S3RootUser                  *string         `json:"s3_root_user"`
	S3RootPassword              *string         `json:"s3_root_password"`
	S3Bucket                    *string         `json:"s3_bucket"`
	S3Region                    *string         `json:"s3_region"`
	S3BaseEndpoint              *string         `json:"s3_base_endpoint"`
}

// parseJson overlays the JSON file named by -c/-config onto config.
// It panics when the file cannot be read or decoded.
func parseJson(config *Config, args []string) {
	path := flagx.ConfigPath(args)
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.HealthAddrGRPC, c.HealthAddrGRPC)
	setString(&config.Storage, c.Storage)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.StorePath, c.StorePath)
	setString(&config.MigrateFrom, c.MigrateFrom)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.LegacySalt, c.LegacySalt)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)

	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.ShutdownTimeout != nil {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
	if c.HealthCheckInterval != nil {
		config.HealthCheckInterval = c.HealthCheckInterval.Duration
	}
	if c.AllowedOrigins != nil {
		config.AllowedOrigins = c.AllowedOrigins
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
