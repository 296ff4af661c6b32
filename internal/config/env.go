package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/dmitrijs2005/workplan/internal/common"
)

const envPrefix = "WORKPLAN_"

// dotEnvFile is loaded from the working directory when present.
var dotEnvFile = ".env"

// loadDotEnv copies the variables of path into the process environment.
// Variables that are already set keep their values. A missing file is not an
// error.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("%w: %s: %v", common.ErrorValidation, path, err)
}

// parseEnv applies WORKPLAN_* variables found through lookup.
func parseEnv(cfg *Config, lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"STORAGE_DRIVER":    &cfg.StorageDriver,
		"STORAGE_DSN":       &cfg.StorageDSN,
		"REDIS_ADDR":        &cfg.RedisAddr,
		"REDIS_PASSWORD":    &cfg.RedisPassword,
		"KEY_PREFIX":        &cfg.KeyPrefix,
		"CREDENTIAL_SCHEME": &cfg.CredentialScheme,
		"LOG_LEVEL":         &cfg.LogLevel,
		"LOG_FORMAT":        &cfg.LogFormat,
	}
	for name, dst := range strs {
		if v, ok := lookup(envPrefix + name); ok {
			*dst = v
		}
	}

	durs := map[string]*time.Duration{
		"SESSION_DURATION":     &cfg.SessionDuration,
		"REMEMBER_ME_DURATION": &cfg.RememberMeDuration,
		"WARNING_THRESHOLD":    &cfg.WarningThreshold,
		"TICK_INTERVAL":        &cfg.TickInterval,
		"ACTIVITY_THROTTLE":    &cfg.ActivityThrottle,
	}
	for name, dst := range durs {
		v, ok := lookup(envPrefix + name)
		if !ok {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s%s: %v", common.ErrorValidation, envPrefix, name, err)
		}
		*dst = d
	}

	if v, ok := lookup(envPrefix + "REDIS_DB"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %sREDIS_DB: %v", common.ErrorValidation, envPrefix, err)
		}
		cfg.RedisDB = n
	}
	return nil
}
