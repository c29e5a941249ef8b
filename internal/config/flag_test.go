package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_parseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Run("overrides from flags", func(t *testing.T) {
		os.Args = []string{"testbin",
			"-l", "flag.db",
			"-d", "postgres://flag/keepsync",
			"-s", "flag_secret",
			"-u", "flag_ak",
			"-p", "flag_sk",
			"-b", "flag_bucket",
			"-g", "flag_region",
			"-e", "http://flag:9000/",
			"-i", "120",
		}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseFlags(cfg)

		assert.Equal(t, "flag.db", cfg.LocalDSN)
		assert.Equal(t, "postgres://flag/keepsync", cfg.RemoteDSN)
		assert.Equal(t, "flag_secret", cfg.SecretKey)
		assert.Equal(t, "flag_ak", cfg.S3AccessKey)
		assert.Equal(t, "flag_sk", cfg.S3SecretKey)
		assert.Equal(t, "flag_bucket", cfg.S3Bucket)
		assert.Equal(t, "flag_region", cfg.S3Region)
		assert.Equal(t, "http://flag:9000/", cfg.S3BaseEndpoint)
		assert.Equal(t, 2*time.Minute, cfg.PullInterval)
	})

	t.Run("no flags keeps defaults", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseFlags(cfg)

		assert.Equal(t, "keepsync.db", cfg.LocalDSN)
		assert.Equal(t, 5*time.Minute, cfg.PullInterval)
	})

	t.Run("unrelated flags are ignored", func(t *testing.T) {
		os.Args = []string{"testbin", "-unknown", "value", "-l", "kept.db"}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseFlags(cfg)

		assert.Equal(t, "kept.db", cfg.LocalDSN)
	})
}
