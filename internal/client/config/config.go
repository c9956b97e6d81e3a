package config

import (
	"fmt"
	"time"
)

const (
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"
)

// Config holds runtime settings for the TinniTrack CLI.
//
// Fields:
//   - ServerEndpointAddr: host:port of the backend gRPC endpoint.
//   - RequestTimeout: deadline applied to every RPC.
//   - StorageBackend: where local state lives, "sqlite" or "redis".
//   - SQLitePath / RedisURL: location of the chosen backend.
//   - CallbackAddr: listen address of the loopback server receiving auth
//     redirects.
//   - PasswordResetRedirect / EmailConfirmRedirect: links embedded in auth
//     emails. When empty they point at the loopback server.
//   - VerificationPollInterval: how often the CLI re-checks the session
//     while an email verification is pending; zero disables polling.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	ServerEndpointAddr    string
	RequestTimeout        time.Duration
	StorageBackend        string
	SQLitePath            string
	RedisURL              string
	CallbackAddr          string
	PasswordResetRedirect string
	EmailConfirmRedirect  string

	VerificationPollInterval time.Duration

	LogLevel string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.RequestTimeout = 12 * time.Second
	c.StorageBackend = StorageSQLite
	c.SQLitePath = "tinnitrack.db"
	c.RedisURL = "redis://127.0.0.1:6379/0"
	c.CallbackAddr = "127.0.0.1:54321"
	c.VerificationPollInterval = 30 * time.Second
	c.LogLevel = "info"
}

func (c *Config) resolveRedirects() {
	if c.PasswordResetRedirect == "" {
		c.PasswordResetRedirect = "http://" + c.CallbackAddr + "/auth/reset"
	}
	if c.EmailConfirmRedirect == "" {
		c.EmailConfirmRedirect = "http://" + c.CallbackAddr + "/auth/confirm"
	}
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case StorageSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("sqlite storage needs a database path")
		}
	case StorageRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("redis storage needs a redis url")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	}
	if c.ServerEndpointAddr == "" {
		return fmt.Errorf("server endpoint address is empty")
	}
	return nil
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the environment, JSON (if present) and command-line flags. Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	cfg.resolveRedirects()
	return cfg
}
