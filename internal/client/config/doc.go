// Package config loads runtime configuration for the TinniTrack CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment variables prefixed TINNITRACK_, after loading an optional
//     .env file (see parseEnv).
//  3. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// # JSON schema
//
// The JSON loader uses timex.Duration for timeouts, so values can be either
// strings like "10s" or integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "request_timeout": "10s",
//	  "storage_backend": "redis",
//	  "redis_url": "redis://127.0.0.1:6379/0",
//	  "callback_addr": "127.0.0.1:54321"
//	}
//
// Redirect URLs left empty in every source point at the callback server,
// e.g. http://127.0.0.1:54321/auth/reset.
package config
