package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/citywatch/internal/flagx"
)

var knownFlags = []string{"-m", "-k", "-f", "-d", "-b", "-g", "-e", "-u", "-p", "-a", "-l", "-t"}

// parseFlags populates Config fields from command-line flags. Flags owned
// by other stages (such as -c) are filtered out first.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, knownFlags)

	fs := flag.NewFlagSet("citywatch", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.Backend, "m", cfg.Backend, "backend: local or remote")
	fs.StringVar(&cfg.LocalEngine, "k", cfg.LocalEngine, "local engine: sqlite or bolt")
	fs.StringVar(&cfg.LocalPath, "f", cfg.LocalPath, "local database file")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "PostgreSQL DSN")
	fs.StringVar(&cfg.S3Bucket, "b", cfg.S3Bucket, "S3 bucket")
	fs.StringVar(&cfg.S3Region, "g", cfg.S3Region, "S3 region")
	fs.StringVar(&cfg.S3BaseEndpoint, "e", cfg.S3BaseEndpoint, "S3 endpoint")
	fs.StringVar(&cfg.S3AccessKey, "u", cfg.S3AccessKey, "S3 access key")
	fs.StringVar(&cfg.S3SecretKey, "p", cfg.S3SecretKey, "S3 secret key")
	fs.StringVar(&cfg.MetricsAddr, "a", cfg.MetricsAddr, "metrics listen address")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	// Only an explicit -t replaces the timeout so sub-second JSON values survive.
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			cfg.RequestTimeout = time.Duration(*timeout) * time.Second
		}
	})
	return nil
}
