package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/citywatch/internal/flagx"
	"github.com/dmitrijs2005/citywatch/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
type JsonConfig struct {
	Backend        string         `json:"backend"`
	LocalEngine    string         `json:"local_engine"`
	LocalPath      string         `json:"local_path"`
	DatabaseDSN    string         `json:"database_dsn"`
	S3Bucket       string         `json:"s3_bucket"`
	S3Region       string         `json:"s3_region"`
	S3BaseEndpoint string         `json:"s3_base_endpoint"`
	S3AccessKey    string         `json:"s3_access_key"`
	S3SecretKey    string         `json:"s3_secret_key"`
	MetricsAddr    string         `json:"metrics_addr"`
	LogLevel       string         `json:"log_level"`
	RequestTimeout timex.Duration `json:"request_timeout"`
}

// parseJson overlays cfg with the non-empty values of the file named by
// -c/-config. Without that flag it does nothing.
func parseJson(cfg *Config, args []string) error {
	jsonConfigFile := flagx.ConfigFileFlag(args)
	if jsonConfigFile == "" {
		return nil
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", jsonConfigFile, err)
	}

	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.Backend, jc.Backend)
	set(&cfg.LocalEngine, jc.LocalEngine)
	set(&cfg.LocalPath, jc.LocalPath)
	set(&cfg.DatabaseDSN, jc.DatabaseDSN)
	set(&cfg.S3Bucket, jc.S3Bucket)
	set(&cfg.S3Region, jc.S3Region)
	set(&cfg.S3BaseEndpoint, jc.S3BaseEndpoint)
	set(&cfg.S3AccessKey, jc.S3AccessKey)
	set(&cfg.S3SecretKey, jc.S3SecretKey)
	set(&cfg.MetricsAddr, jc.MetricsAddr)
	set(&cfg.LogLevel, jc.LogLevel)
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	return nil
}
