package cliconfig

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads <workspace>/.env into the process environment when the
// file exists. Variables that are already set win.
func LoadDotEnv(workspace string) error {
	path := filepath.Join(workspace, ".env")
	if !FileExists(path) {
		return nil
	}
	return godotenv.Load(path)
}

// ApplyEnvConfig applies configuration from environment variables (WOW_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("updater", os.Getenv("WOW_UPDATER_PATH"), &cfg.UpdaterPath)
	s.setString("log-level", os.Getenv("WOW_LOG_LEVEL"), &cfg.LogLevel)
	s.setString("metrics-addr", os.Getenv("WOW_METRICS_ADDR"), &cfg.MetricsAddr)

	if err := s.setDuration("poll", os.Getenv("WOW_POLL_INTERVAL"), &cfg.PollInterval); err != nil {
		return err
	}
	if err := s.setDuration("timeout", os.Getenv("WOW_HTTP_TIMEOUT"), &cfg.HTTPTimeout); err != nil {
		return err
	}

	if err := s.setIntFromString("max-image-bytes", os.Getenv("WOW_MAX_IMAGE_BYTES"), &cfg.MaxImageBytes); err != nil {
		return err
	}
	if err := s.setIntFromString("history-keep", os.Getenv("WOW_HISTORY_KEEP"), &cfg.HistoryKeep); err != nil {
		return err
	}

	s.setBoolFromString("watch-state", os.Getenv("WOW_WATCH_STATE"), &cfg.WatchState)

	return nil
}
