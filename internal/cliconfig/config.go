package cliconfig

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds the runtime settings of a wow install. The persisted workspace
// state (source, interval, timestamps) lives in wow.conf, not here.
type Config struct {
	Workspace string

	PollInterval  time.Duration
	HTTPTimeout   time.Duration
	MaxImageBytes int
	UpdaterPath   string
	LogLevel      string
	HistoryKeep   int
	MetricsAddr   string
	WatchState    bool
}

// DefaultConfig returns a Config with default values. Workspace-relative
// paths are derived in Validate.
func DefaultConfig() Config {
	return Config{
		PollInterval:  10 * time.Second,
		HTTPTimeout:   60 * time.Second,
		MaxImageBytes: 64 << 20,
		LogLevel:      "info",
		HistoryKeep:   200,
		WatchState:    true,
	}
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	if c.Workspace == "" {
		return fmt.Errorf("workspace is required")
	}
	if c.UpdaterPath == "" {
		c.UpdaterPath = filepath.Join(c.Workspace, "updater")
	} else if !filepath.IsAbs(c.UpdaterPath) {
		c.UpdaterPath = filepath.Join(c.Workspace, c.UpdaterPath)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be positive")
	}
	if c.MaxImageBytes <= 0 {
		return fmt.Errorf("max image bytes must be positive")
	}
	if c.HistoryKeep <= 0 {
		return fmt.Errorf("history keep must be positive")
	}
	return nil
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setBoolFromString accepts "true" and "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
