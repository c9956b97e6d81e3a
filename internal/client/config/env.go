package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "TINNITRACK_"

// parseEnv overlays Config with TINNITRACK_* environment variables. A .env
// file in the working directory is loaded first if present; variables that
// are already set win over it.
//
// Recognized variables:
//
//	TINNITRACK_SERVER_ADDR            server endpoint
//	TINNITRACK_REQUEST_TIMEOUT        e.g. "10s"
//	TINNITRACK_STORAGE                sqlite | redis
//	TINNITRACK_SQLITE_PATH            database file
//	TINNITRACK_REDIS_URL              redis://host:port/db
//	TINNITRACK_CALLBACK_ADDR          loopback listen address
//	TINNITRACK_PASSWORD_RESET_URL     password reset redirect
//	TINNITRACK_EMAIL_CONFIRM_URL      email confirmation redirect
//	TINNITRACK_VERIFY_POLL_INTERVAL   e.g. "30s"
//	TINNITRACK_LOG_LEVEL              debug | info | warn | error
//
// Panics on a malformed duration.
func parseEnv(cfg *Config) {
	_ = godotenv.Load()

	setFromEnv(&cfg.ServerEndpointAddr, "SERVER_ADDR")
	setFromEnv(&cfg.StorageBackend, "STORAGE")
	setFromEnv(&cfg.SQLitePath, "SQLITE_PATH")
	setFromEnv(&cfg.RedisURL, "REDIS_URL")
	setFromEnv(&cfg.CallbackAddr, "CALLBACK_ADDR")
	setFromEnv(&cfg.PasswordResetRedirect, "PASSWORD_RESET_URL")
	setFromEnv(&cfg.EmailConfirmRedirect, "EMAIL_CONFIRM_URL")
	setFromEnv(&cfg.LogLevel, "LOG_LEVEL")

	durationFromEnv(&cfg.RequestTimeout, "REQUEST_TIMEOUT")
	durationFromEnv(&cfg.VerificationPollInterval, "VERIFY_POLL_INTERVAL")
}

func durationFromEnv(dst *time.Duration, key string) {
	v, ok := os.LookupEnv(envPrefix + key)
	if !ok || v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(err)
	}
	*dst = d
}

func setFromEnv(dst *string, key string) {
	if v, ok := os.LookupEnv(envPrefix + key); ok && v != "" {
		*dst = v
	}
}
