package cliconfig

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bft-labs/wow/internal/domain"
)

func TestLoadFileConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, SettingsFileName)
	content := `
poll_interval = "3s"
http_timeout = "15s"
max_image_bytes = 2048
updater_path = "apply.sh"
log_level = "warn"
history_keep = 50
metrics_addr = ":9200"
watch_state = false
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	fc, err := LoadFileConfig(path)
	if err != nil {
		t.Fatalf("LoadFileConfig: %v", err)
	}
	if fc.PollInterval != "3s" || fc.MaxImageBytes != 2048 || fc.UpdaterPath != "apply.sh" {
		t.Errorf("unexpected file config: %+v", fc)
	}
	if fc.WatchState == nil || *fc.WatchState {
		t.Errorf("WatchState = %v, want false", fc.WatchState)
	}
}

func TestLoadFileConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), SettingsFileName)
	if err := os.WriteFile(path, []byte("poll_interval = [\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFileConfig(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestApplyFileConfig(t *testing.T) {
	off := false
	fc := FileConfig{
		PollInterval: "1m",
		HTTPTimeout:  "30s",
		LogLevel:     "error",
		HistoryKeep:  5,
		WatchState:   &off,
	}

	cfg := DefaultConfig()
	if err := ApplyFileConfig(&cfg, fc, map[string]bool{"poll": true}); err != nil {
		t.Fatalf("ApplyFileConfig: %v", err)
	}
	if cfg.PollInterval != 10*time.Second {
		t.Errorf("PollInterval = %v, flag should win", cfg.PollInterval)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("HTTPTimeout = %v, want 30s", cfg.HTTPTimeout)
	}
	if cfg.LogLevel != "error" || cfg.HistoryKeep != 5 || cfg.WatchState {
		t.Errorf("unexpected config: %+v", cfg)
	}

	if err := ApplyFileConfig(&cfg, FileConfig{HTTPTimeout: "nope"}, nil); err == nil {
		t.Error("expected error for bad duration")
	}
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(SettingsPath(dir), []byte("log_level = \"warn\"\nhistory_keep = 11\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("WOW_HISTORY_KEEP", "22")
	t.Setenv("WOW_LOG_LEVEL", "")

	cfg := DefaultConfig()
	cfg.PollInterval = time.Second
	if err := Load(&cfg, dir, map[string]bool{"poll": true}); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Workspace != dir {
		t.Errorf("Workspace = %q, want %q", cfg.Workspace, dir)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn from file", cfg.LogLevel)
	}
	if cfg.HistoryKeep != 22 {
		t.Errorf("HistoryKeep = %d, env should beat file", cfg.HistoryKeep)
	}
	if cfg.PollInterval != time.Second {
		t.Errorf("PollInterval = %v, flag should win", cfg.PollInterval)
	}
	if cfg.UpdaterPath != filepath.Join(dir, "updater") {
		t.Errorf("UpdaterPath = %q", cfg.UpdaterPath)
	}
}

func TestResolveWorkspace(t *testing.T) {
	dir := t.TempDir()
	got, err := ResolveWorkspace(dir)
	if err != nil || got != dir {
		t.Fatalf("ResolveWorkspace(%q) = %q, %v", dir, got, err)
	}

	t.Setenv("WOW_WORKSPACE", dir)
	got, err = ResolveWorkspace("")
	if err != nil || got != dir {
		t.Fatalf("ResolveWorkspace from env = %q, %v", got, err)
	}
}

func TestExecutableDir(t *testing.T) {
	dir := t.TempDir()
	exe := filepath.Join(dir, "wow")
	if err := os.WriteFile(exe, nil, 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := executableDir(func() (string, error) { return exe, nil })
	if err != nil {
		t.Fatalf("executableDir: %v", err)
	}
	want, _ := filepath.EvalSymlinks(dir)
	if got != want {
		t.Errorf("executableDir = %q, want %q", got, want)
	}

	_, err = executableDir(func() (string, error) { return "", errors.New("no exe") })
	if !errors.Is(err, domain.ErrWorkspace) {
		t.Errorf("err = %v, want ErrWorkspace", err)
	}
}
