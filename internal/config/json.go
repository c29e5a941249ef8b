package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/akalniens/keepsync/internal/flagx"
	"github.com/akalniens/keepsync/internal/timex"
)

// JsonConfig is the JSON-shaped counterpart of Config. Interval fields use
// timex.Duration so both string values such as "5m" and integer nanoseconds
// parse. After unmarshalling, its fields are copied into the runtime Config.
type JsonConfig struct {
	LocalDSN        string         `json:"local_dsn"`
	RemoteDSN       string         `json:"remote_dsn"`
	SecretKey       string         `json:"secret_key"`
	S3AccessKey     string         `json:"s3_access_key"`
	S3SecretKey     string         `json:"s3_secret_key"`
	S3Bucket        string         `json:"s3_bucket"`
	S3Region        string         `json:"s3_region"`
	S3BaseEndpoint  string         `json:"s3_base_endpoint"`
	PullInterval    timex.Duration `json:"pull_interval"`
	MetadataTimeout timex.Duration `json:"metadata_timeout"`
	BlobTimeout     timex.Duration `json:"blob_timeout"`
}

// parseJson loads configuration values from the JSON file named by the
// -c/-config flags into the provided Config. No flag means no file is
// loaded. An unreadable or invalid file panics; the process cannot run with
// half-applied configuration.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.LocalDSN = c.LocalDSN
	config.RemoteDSN = c.RemoteDSN
	config.SecretKey = c.SecretKey
	config.S3AccessKey = c.S3AccessKey
	config.S3SecretKey = c.S3SecretKey
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
	config.PullInterval = time.Duration(c.PullInterval.Duration)
	config.MetadataTimeout = time.Duration(c.MetadataTimeout.Duration)
	config.BlobTimeout = time.Duration(c.BlobTimeout.Duration)
}
