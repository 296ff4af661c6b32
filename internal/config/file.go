package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/dmitrijs2005/workplan/internal/flagx"
	"github.com/dmitrijs2005/workplan/internal/timex"
)

// FileConfig is a DTO used exclusively for decoding the config file. Pointer
// fields distinguish "absent" from zero so that a partial file only
// overrides what it mentions.
type FileConfig struct {
	StorageDriver      *string         `json:"storage_driver" toml:"storage_driver"`
	StorageDSN         *string         `json:"storage_dsn" toml:"storage_dsn"`
	RedisAddr          *string         `json:"redis_addr" toml:"redis_addr"`
	RedisPassword      *string         `json:"redis_password" toml:"redis_password"`
	RedisDB            *int            `json:"redis_db" toml:"redis_db"`
	KeyPrefix          *string         `json:"key_prefix" toml:"key_prefix"`
	SessionDuration    *timex.Duration `json:"session_duration" toml:"session_duration"`
	RememberMeDuration *timex.Duration `json:"remember_me_duration" toml:"remember_me_duration"`
	WarningThreshold   *timex.Duration `json:"warning_threshold" toml:"warning_threshold"`
	TickInterval       *timex.Duration `json:"tick_interval" toml:"tick_interval"`
	ActivityThrottle   *timex.Duration `json:"activity_throttle" toml:"activity_throttle"`
	CredentialScheme   *string         `json:"credential_scheme" toml:"credential_scheme"`
	LogLevel           *string         `json:"log_level" toml:"log_level"`
	LogFormat          *string         `json:"log_format" toml:"log_format"`
}

// parseFile overlays cfg with values from the file named by -c/-config.
// Files ending in .toml are decoded as TOML, anything else as JSON.
// Without either flag it does nothing.
func parseFile(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc FileConfig
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, &jc)
	} else {
		err = json.Unmarshal(data, &jc)
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&cfg.StorageDriver, jc.StorageDriver)
	setString(&cfg.StorageDSN, jc.StorageDSN)
	setString(&cfg.RedisAddr, jc.RedisAddr)
	setString(&cfg.RedisPassword, jc.RedisPassword)
	if jc.RedisDB != nil {
		cfg.RedisDB = *jc.RedisDB
	}
	setString(&cfg.KeyPrefix, jc.KeyPrefix)
	setDuration(&cfg.SessionDuration, jc.SessionDuration)
	setDuration(&cfg.RememberMeDuration, jc.RememberMeDuration)
	setDuration(&cfg.WarningThreshold, jc.WarningThreshold)
	setDuration(&cfg.TickInterval, jc.TickInterval)
	setDuration(&cfg.ActivityThrottle, jc.ActivityThrottle)
	setString(&cfg.CredentialScheme, jc.CredentialScheme)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogFormat, jc.LogFormat)

	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}
