package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/workplan/internal/flagx"
)

var knownFlags = []string{"-d", "-dsn", "-redis", "-prefix", "-scheme", "-session", "-log-level", "-log-format"}

// parseFlags populates selected Config fields from command-line flags.
//
// Only the flags listed in knownFlags are considered (see flagx.FilterArgs),
// so -c/-config and anything meant for other components pass through.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("workplan", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.StorageDriver, "d", cfg.StorageDriver, "storage driver: sqlite, postgres or redis")
	fs.StringVar(&cfg.StorageDSN, "dsn", cfg.StorageDSN, "SQLite file or PostgreSQL DSN")
	fs.StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "Redis address")
	fs.StringVar(&cfg.KeyPrefix, "prefix", cfg.KeyPrefix, "namespace prefix for stored keys")
	fs.StringVar(&cfg.CredentialScheme, "scheme", cfg.CredentialScheme, "credential scheme: plain, argon2id or bcrypt")
	fs.DurationVar(&cfg.SessionDuration, "session", cfg.SessionDuration, "session length without remember-me")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: text or json")

	return fs.Parse(flagx.FilterArgs(args, knownFlags))
}
