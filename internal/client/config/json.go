package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/tinnitrack/internal/flagx"
	"github.com/dmitrijs2005/tinnitrack/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify timeouts either as
// strings like "10s" or as integer nanoseconds.
type JsonConfig struct {
	ServerEndpointAddr    string         `json:"server_endpoint_addr"`
	RequestTimeout        timex.Duration `json:"request_timeout"`
	StorageBackend        string         `json:"storage_backend"`
	SQLitePath            string         `json:"sqlite_path"`
	RedisURL              string         `json:"redis_url"`
	CallbackAddr          string         `json:"callback_addr"`
	PasswordResetRedirect string         `json:"password_reset_redirect"`
	EmailConfirmRedirect  string         `json:"email_confirm_redirect"`
	LogLevel              string         `json:"log_level"`

	VerificationPollInterval timex.Duration `json:"verification_poll_interval"`
}

// parseJson overlays Config with values from the JSON file named by -c or
// -config. Fields absent from the file keep their current values. Panics on
// read or unmarshal errors.
func parseJson(cfg *Config) {
	path := flagx.ConfigFileFlag(os.Args[1:])
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	overlay(&cfg.ServerEndpointAddr, jc.ServerEndpointAddr)
	overlay(&cfg.StorageBackend, jc.StorageBackend)
	overlay(&cfg.SQLitePath, jc.SQLitePath)
	overlay(&cfg.RedisURL, jc.RedisURL)
	overlay(&cfg.CallbackAddr, jc.CallbackAddr)
	overlay(&cfg.PasswordResetRedirect, jc.PasswordResetRedirect)
	overlay(&cfg.EmailConfirmRedirect, jc.EmailConfirmRedirect)
	overlay(&cfg.LogLevel, jc.LogLevel)
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.VerificationPollInterval.Duration > 0 {
		cfg.VerificationPollInterval = jc.VerificationPollInterval.Duration
	}
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
