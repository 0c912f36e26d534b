// Package config loads runtime settings from an optional YAML file with
// FFLY_* environment overrides layered on top.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	PageSize       int    `yaml:"page_size"`
	SearchPageSize int    `yaml:"search_page_size"`
	DebounceMillis int    `yaml:"debounce_millis"`
	HTTPTimeoutSec int    `yaml:"http_timeout_seconds"`
	DBPath         string `yaml:"db_path"`
	LogPath        string `yaml:"log_path"`
}

func Default() Config {
	return Config{
		PageSize:       50,
		SearchPageSize: 100,
		DebounceMillis: 300,
		HTTPTimeoutSec: 30,
		DBPath:         defaultDBPath(),
		LogPath:        defaultLogPath(),
	}
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "ffly.db"
	}
	return filepath.Join(home, ".ffly", "ffly.db")
}

func defaultLogPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "ffly.log"
	}
	return filepath.Join(home, ".local", "state", "ffly", "ffly.log")
}

// Load reads the config file at path when one exists, then applies the
// environment overrides. A missing file is not an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("config: read %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	return FromEnv(cfg), nil
}

// FromEnv overlays FFLY_* environment variables onto base. Unset or
// unparsable variables leave the base value alone.
func FromEnv(base Config) Config {
	cfg := base
	if v, ok := getEnvInt("FFLY_PAGE_SIZE"); ok && v > 0 {
		cfg.PageSize = v
	}
	if v, ok := getEnvInt("FFLY_SEARCH_PAGE_SIZE"); ok && v > 0 {
		cfg.SearchPageSize = v
	}
	if v, ok := getEnvInt("FFLY_DEBOUNCE_MILLIS"); ok && v > 0 {
		cfg.DebounceMillis = v
	}
	if v, ok := getEnvInt("FFLY_HTTP_TIMEOUT_SECONDS"); ok && v > 0 {
		cfg.HTTPTimeoutSec = v
	}
	if v := strings.TrimSpace(os.Getenv("FFLY_DB_PATH")); v != "" {
		cfg.DBPath = v
	}
	if v := strings.TrimSpace(os.Getenv("FFLY_LOG_PATH")); v != "" {
		cfg.LogPath = v
	}
	return cfg
}

func getEnvInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
