// Package config loads runtime configuration for the MemoBoost CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment: MEMOBOOST_CLIENT_SERVER_URL, MEMOBOOST_CLIENT_REQUEST_TIMEOUT,
//     MEMOBOOST_CLIENT_REVISION_DURATION, MEMOBOOST_CLIENT_CACHE_PATH, also read
//     from a .env file in the working directory.
//  3. Optional JSON file selected via -c or -config.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string      base URL of the API server
//	-t int         request timeout (seconds)
//	-r int         revision duration (seconds)
//	-cache string  local cache path
//
// # JSON schema
//
//	{
//	  "server_url": "http://127.0.0.1:4000",
//	  "request_timeout": "10s",
//	  "revision_duration": "5m",
//	  "cache_path": "memoboost-cache.db"
//	}
package config
