package config

import (
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/workplan/internal/common"
	"github.com/dmitrijs2005/workplan/internal/models"
)

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Credential scheme names accepted in CredentialScheme.
var credentialSchemes = map[string]struct{}{
	"plain":    {},
	"argon2id": {},
	"bcrypt":   {},
}

// Config holds runtime settings for the WorkPlan CLI.
//
// Durations are time.Duration values; the JSON loader accepts "30m" style
// strings for them.
type Config struct {
	StorageDriver string
	StorageDSN    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	KeyPrefix     string

	SessionDuration    time.Duration
	RememberMeDuration time.Duration
	WarningThreshold   time.Duration
	TickInterval       time.Duration
	ActivityThrottle   time.Duration

	CredentialScheme string

	LogLevel  string
	LogFormat string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.StorageDriver = DriverSQLite
	c.StorageDSN = "workplan.db"
	c.RedisAddr = "127.0.0.1:6379"
	c.RedisPassword = ""
	c.RedisDB = 0
	c.KeyPrefix = ""
	c.SessionDuration = common.SessionDuration
	c.RememberMeDuration = common.RememberMeDuration
	c.WarningThreshold = common.WarningThreshold
	c.TickInterval = common.TickInterval
	c.ActivityThrottle = common.ActivityThrottle
	c.CredentialScheme = "plain"
	c.LogLevel = "info"
	c.LogFormat = "text"
}

// Policy returns the session lengths as a models.SessionPolicy.
func (c *Config) Policy() models.SessionPolicy {
	return models.SessionPolicy{Session: c.SessionDuration, RememberMe: c.RememberMeDuration}
}

// Validate rejects configurations the session manager cannot honour.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case DriverSQLite, DriverPostgres, DriverRedis:
	default:
		return fmt.Errorf("%w: unknown storage driver %q", common.ErrorValidation, c.StorageDriver)
	}
	if _, ok := credentialSchemes[c.CredentialScheme]; !ok {
		return fmt.Errorf("%w: unknown credential scheme %q", common.ErrorValidation, c.CredentialScheme)
	}
	if c.SessionDuration <= 0 || c.RememberMeDuration <= 0 {
		return fmt.Errorf("%w: session durations must be positive", common.ErrorValidation)
	}
	if c.WarningThreshold <= 0 || c.WarningThreshold >= c.SessionDuration {
		return fmt.Errorf("%w: warning threshold must be positive and shorter than the session", common.ErrorValidation)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("%w: tick interval must be positive", common.ErrorValidation)
	}
	if c.ActivityThrottle <= 0 {
		return fmt.Errorf("%w: activity throttle must be positive", common.ErrorValidation)
	}
	return nil
}

// LoadConfig builds a Config from os.Args: defaults, then the JSON or TOML
// file named by -c/-config, then WORKPLAN_* environment variables (after
// loading an optional .env file), then flags. Later sources take precedence.
func LoadConfig() (*Config, error) {
	return load(os.Args[1:])
}

func load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseFile(cfg, args); err != nil {
		return nil, err
	}
	if err := loadDotEnv(dotEnvFile); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
