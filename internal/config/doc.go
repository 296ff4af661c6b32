// Package config loads runtime configuration for the WorkPlan CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON or TOML file (see parseFile) selected via flags: -c or -config.
//  3. WORKPLAN_* environment variables (see parseEnv). A .env file in the
//     working directory is loaded first; variables already set win over it.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-d string          storage driver: sqlite, postgres or redis
//	-dsn string        SQLite file / PostgreSQL DSN
//	-redis string      Redis address (host:port)
//	-prefix string     namespace prefix for stored keys
//	-scheme string     credential scheme: plain, argon2id or bcrypt
//	-session duration  session length without remember-me
//	-log-level string  debug, info, warn or error
//	-log-format string text or json
//
// # JSON schema
//
// Durations may be strings like "30m" or integer nanoseconds:
//
//	{
//	  "storage_driver": "sqlite",
//	  "storage_dsn": "workplan.db",
//	  "session_duration": "30m",
//	  "remember_me_duration": "168h",
//	  "credential_scheme": "plain"
//	}
//
// The same keys are accepted in a file with the .toml extension:
//
//	storage_driver = "postgres"
//	storage_dsn = "postgres://workplan@localhost/workplan"
//	session_duration = "45m"
//
// # Environment
//
// Each setting has a variable named after its JSON key, upper-cased and
// prefixed with WORKPLAN_, e.g. WORKPLAN_STORAGE_DSN or
// WORKPLAN_SESSION_DURATION=45m.
package config
