package config

import (
	"flag"
	"os"
	"time"

	"github.com/akalniens/keepsync/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-l string   local SQLite database path
//	-d string   PostgreSQL DSN of the remote document store
//	-s string   identity token HMAC secret key
//	-u string   S3 access key
//	-p string   S3 secret key
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-i int      pull interval, seconds
//
// os.Args is first filtered to only the flags recognized here using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-l", "-d", "-s", "-u", "-p", "-b", "-g", "-e", "-i"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.LocalDSN, "l", config.LocalDSN, "local database path")
	fs.StringVar(&config.RemoteDSN, "d", config.RemoteDSN, "remote database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.S3AccessKey, "u", config.S3AccessKey, "S3 access key")
	fs.StringVar(&config.S3SecretKey, "p", config.S3SecretKey, "S3 secret key")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	pullInterval := fs.Int("i", int(config.PullInterval.Seconds()), "pull_interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.PullInterval = time.Duration(*pullInterval) * time.Second
}
