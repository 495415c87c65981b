package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// SettingsFileName is the optional TOML settings file inside the workspace.
const SettingsFileName = "wow.toml"

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	PollInterval  string `toml:"poll_interval"`
	HTTPTimeout   string `toml:"http_timeout"`
	MaxImageBytes int    `toml:"max_image_bytes"`
	UpdaterPath   string `toml:"updater_path"`
	LogLevel      string `toml:"log_level"`
	HistoryKeep   int    `toml:"history_keep"`
	MetricsAddr   string `toml:"metrics_addr"`
	WatchState    *bool  `toml:"watch_state"`
}

// LoadFileConfig reads and parses a TOML settings file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// SettingsPath returns the settings file path for a workspace.
func SettingsPath(workspace string) string {
	return filepath.Join(workspace, SettingsFileName)
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("updater", fc.UpdaterPath, &cfg.UpdaterPath)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setString("metrics-addr", fc.MetricsAddr, &cfg.MetricsAddr)

	if err := s.setDuration("poll", fc.PollInterval, &cfg.PollInterval); err != nil {
		return err
	}
	if err := s.setDuration("timeout", fc.HTTPTimeout, &cfg.HTTPTimeout); err != nil {
		return err
	}

	s.setInt("max-image-bytes", fc.MaxImageBytes, &cfg.MaxImageBytes)
	s.setInt("history-keep", fc.HistoryKeep, &cfg.HistoryKeep)

	s.setBool("watch-state", fc.WatchState, &cfg.WatchState)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
