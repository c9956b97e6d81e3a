package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/tinnitrack/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-a string     address and port of the backend server
//	-t duration   per-request timeout
//	-s string     storage backend (sqlite|redis)
//	-db string    SQLite database file
//	-redis string Redis URL
//	-cb string    loopback callback listen address
//	-i int        verification poll interval (in seconds)
//	-l string     log level
//
// Only these flags are taken from os.Args, using flagx.FilterArgs, so other
// components may define their own.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t", "-s", "-db", "-redis", "-cb", "-i", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "per-request timeout")
	fs.StringVar(&cfg.StorageBackend, "s", cfg.StorageBackend, "storage backend (sqlite|redis)")
	fs.StringVar(&cfg.SQLitePath, "db", cfg.SQLitePath, "SQLite database file")
	fs.StringVar(&cfg.RedisURL, "redis", cfg.RedisURL, "Redis URL")
	fs.StringVar(&cfg.CallbackAddr, "cb", cfg.CallbackAddr, "auth callback listen address")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug|info|warn|error)")
	pollInterval := fs.Int("i", int(cfg.VerificationPollInterval.Seconds()), "verification poll interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.VerificationPollInterval = time.Duration(*pollInterval) * time.Second
}
