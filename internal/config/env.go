package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	EnvPassphrase = "SCREENSHOT_PASSWORD"
	EnvContainer  = "SCREENSHOT_CONTAINER"
	EnvLegacy     = "SCREENSHOT_LEGACY"
	EnvInterval   = "SCREENSHOT_INTERVAL"
	EnvLogLevel   = "SCREENSHOT_LOG_LEVEL"
	EnvStrict     = "SCREENSHOT_STRICT_FINGERPRINT"
)

// FromEnv overrides cfg with the SCREENSHOT_* environment variables that
// are set. It is the only place the process environment is read.
func FromEnv(cfg *File) error {
	if v := os.Getenv(EnvPassphrase); v != "" {
		cfg.Vault.Passphrase = v
	}
	if v := os.Getenv(EnvContainer); v != "" {
		cfg.Vault.Container = v
	}
	if v := os.Getenv(EnvLegacy); v != "" {
		cfg.Vault.Legacy = v
	}
	if v := os.Getenv(EnvInterval); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvInterval, v, err)
		}
		cfg.Agent.Interval = d
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv(EnvStrict); v != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvStrict, v, err)
		}
		cfg.Vault.StrictFingerprint = b
	}
	return nil
}
