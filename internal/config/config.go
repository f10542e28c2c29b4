// Package config loads environment configuration for knobslice.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultListenAddr   = "0.0.0.0:8787"
	defaultDataDir      = "./data"
	defaultKnobsFile    = "knobs.yaml"
	defaultLogLevel     = "info"
	defaultPasswordMode = true
	defaultInputEnabled = true
)

// Config holds runtime configuration values.
type Config struct {
	ListenAddr   string
	UIPassword   string
	PasswordMode bool
	DataDir      string
	KnobsPath    string
	LogLevel     string
	InputEnabled bool
}

// Load reads configuration from ./data/.env and environment variables.
func Load() (Config, error) {
	cfg := Config{
		ListenAddr:   defaultListenAddr,
		DataDir:      defaultDataDir,
		KnobsPath:    filepath.Join(defaultDataDir, defaultKnobsFile),
		LogLevel:     defaultLogLevel,
		PasswordMode: defaultPasswordMode,
		InputEnabled: defaultInputEnabled,
	}

	if err := loadEnvFile(filepath.Join(cfg.DataDir, ".env")); err != nil {
		return Config{}, err
	}

	cfg.ListenAddr = envString("LISTEN_ADDR", cfg.ListenAddr)
	cfg.DataDir = envString("DATA_DIR", cfg.DataDir)
	cfg.KnobsPath = envString("KNOBS_PATH", filepath.Join(cfg.DataDir, defaultKnobsFile))
	cfg.UIPassword = strings.TrimSpace(os.Getenv("UI_PASSWORD"))
	cfg.PasswordMode = envBool("PASSWORD_MODE", cfg.PasswordMode)
	cfg.InputEnabled = envBool("INPUT_ENABLED", cfg.InputEnabled)

	level, err := normalizeLogLevel(envString("LOG_LEVEL", cfg.LogLevel))
	if err != nil {
		return Config{}, err
	}
	cfg.LogLevel = level

	if cfg.PasswordMode && cfg.UIPassword == "" {
		return Config{}, errors.New("UI_PASSWORD is required when PASSWORD_MODE is enabled")
	}

	return cfg, nil
}

// normalizeLogLevel accepts error, warn(ing), info or debug in any case.
func normalizeLogLevel(value string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "error":
		return "error", nil
	case "warn", "warning":
		return "warn", nil
	case "info":
		return "info", nil
	case "debug":
		return "debug", nil
	default:
		return "", fmt.Errorf("LOG_LEVEL must be one of error, warn, info, debug (got %q)", value)
	}
}

// envString returns an env override when present, otherwise a default.
func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// envBool returns a bool env override when present, otherwise a default.
func envBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	switch strings.ToLower(raw) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

// loadEnvFile loads KEY=VALUE pairs from a .env file.
func loadEnvFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	for _, line := range strings.Split(string(data), "\n") {
		key, value, ok := parseEnvLine(line)
		if !ok {
			continue
		}
		if _, exists := os.LookupEnv(key); !exists {
			if err := os.Setenv(key, value); err != nil {
				return err
			}
		}
	}

	return nil
}

// parseEnvLine parses a single .env line into key/value.
func parseEnvLine(line string) (string, string, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}
	line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
	key, value, found := strings.Cut(line, "=")
	if !found {
		return "", "", false
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", "", false
	}
	value = strings.Trim(strings.TrimSpace(value), `"'`)
	return key, value, true
}
