// Package config loads runtime configuration for the citywatch CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-m string   backend: local or remote
//	-k string   local engine: sqlite or bolt
//	-f string   local database file
//	-d string   PostgreSQL DSN for the remote backend
//	-b string   S3 bucket for incident images
//	-g string   S3 region
//	-e string   S3 endpoint; empty disables image uploads
//	-u string   S3 access key
//	-p string   S3 secret key
//	-a string   address for the /metrics endpoint; empty disables it
//	-l string   log level: debug, info, warn, error
//	-t int      request timeout (seconds)
//
// # JSON schema
//
// Only non-empty JSON values override defaults. The request timeout uses
// timex.Duration, so it can be a string like "10s" or integer nanoseconds:
//
//	{
//	  "backend": "remote",
//	  "database_dsn": "postgres://...",
//	  "request_timeout": "5s"
//	}
package config
