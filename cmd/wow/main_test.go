package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bft-labs/wow/internal/domain"
	"github.com/bft-labs/wow/pkg/state"
)

func run(t *testing.T, ws string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := execute(append([]string{"--workspace", ws, "--log-level", "error"}, args...), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func loadState(t *testing.T, ws string) domain.State {
	t.Helper()
	st, err := state.NewFileRepository(ws).Load(context.Background())
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	return st
}

func TestFreqAndFrom(t *testing.T) {
	ws := t.TempDir()

	if code, out, errOut := run(t, ws, "freq", "2.5"); code != exitOK {
		t.Fatalf("freq exit = %d, stderr = %s", code, errOut)
	} else if !strings.Contains(out, "every 2.5 hours") {
		t.Errorf("freq output = %q", out)
	}
	if got := loadState(t, ws).Interval; got != 9000*time.Second {
		t.Errorf("Interval = %v, want 9000s", got)
	}

	if code, _, _ := run(t, ws, "from", "2"); code != exitOK {
		t.Fatalf("from exit = %d", code)
	}
	if got := loadState(t, ws).Source; got != domain.SourceDaily {
		t.Errorf("Source = %d, want 2", got)
	}
}

func TestInvalidArguments(t *testing.T) {
	tests := [][]string{
		{"freq", "0"},
		{"freq", "-1"},
		{"freq", "soon"},
		{"freq"},
		{"from", "3"},
		{"from", "bing"},
	}

	for _, args := range tests {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			ws := t.TempDir()
			code, _, errOut := run(t, ws, args...)
			if code != exitUsage {
				t.Errorf("exit = %d, want %d (stderr %q)", code, exitUsage, errOut)
			}
			if !strings.Contains(errOut, "Usage:") {
				t.Errorf("stderr lacks usage: %q", errOut)
			}
		})
	}
}

func TestStopWithoutDaemon(t *testing.T) {
	code, _, errOut := run(t, t.TempDir(), "stop")
	if code != exitFailure || !strings.Contains(errOut, "not running") {
		t.Errorf("exit = %d, stderr = %q", code, errOut)
	}
}

func TestRunRefusesWhenRunning(t *testing.T) {
	ws := t.TempDir()
	st := domain.DefaultState()
	st.Running = true
	if err := state.NewFileRepository(ws).Save(context.Background(), st); err != nil {
		t.Fatal(err)
	}

	code, _, errOut := run(t, ws, "run")
	if code != exitFailure || !strings.Contains(errOut, "already running") {
		t.Errorf("exit = %d, stderr = %q", code, errOut)
	}
}

func TestStatusResetsCorruptState(t *testing.T) {
	ws := t.TempDir()
	if err := os.WriteFile(filepath.Join(ws, state.FileName), []byte("nope"), 0o644); err != nil {
		t.Fatal(err)
	}

	code, out, _ := run(t, ws, "status")
	if code != exitOK {
		t.Fatalf("exit = %d", code)
	}
	if !strings.Contains(out, "every 12 hours") || !strings.Contains(out, "last update: never") {
		t.Errorf("status output = %q", out)
	}
	if !loadState(t, ws).Equal(domain.DefaultState()) {
		t.Error("state not reset to defaults")
	}
}

func TestHelpShowsConfig(t *testing.T) {
	code, out, _ := run(t, t.TempDir(), "help")
	if code != exitOK {
		t.Fatalf("exit = %d", code)
	}
	for _, want := range []string{"freq", "current config", "bing random image"} {
		if !strings.Contains(out, want) {
			t.Errorf("help output missing %q", want)
		}
	}
}

func TestBye(t *testing.T) {
	ws := t.TempDir()
	for _, name := range []string{"1700000000.jpg", "updater"} {
		if err := os.WriteFile(filepath.Join(ws, name), nil, 0o755); err != nil {
			t.Fatal(err)
		}
	}

	code, _, errOut := run(t, ws, "bye")
	if code != exitOK {
		t.Fatalf("exit = %d, stderr = %q", code, errOut)
	}
	if _, err := os.Stat(filepath.Join(ws, "1700000000.jpg")); !os.IsNotExist(err) {
		t.Error("image not removed")
	}
	if _, err := os.Stat(filepath.Join(ws, state.FileName)); !os.IsNotExist(err) {
		t.Error("state file not removed")
	}
	if _, err := os.Stat(filepath.Join(ws, "updater")); err != nil {
		t.Error("helper removed")
	}
}

func TestBadSettingsFile(t *testing.T) {
	ws := t.TempDir()
	if err := os.WriteFile(filepath.Join(ws, "wow.toml"), []byte("poll_interval = \"later\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if code, _, _ := run(t, ws, "status"); code != exitUsage {
		t.Errorf("exit = %d, want %d", code, exitUsage)
	}
}

func TestDaemonArgs(t *testing.T) {
	e := &env{}
	root := newRootCmd(e)
	cmd, _, err := root.Find([]string{"run"})
	if err != nil {
		t.Fatal(err)
	}
	if err := cmd.ParseFlags([]string{"--poll=5s", "--workspace=/x"}); err != nil {
		t.Fatal(err)
	}

	got := strings.Join(daemonArgs(cmd, "/ws"), " ")
	if got != "run --foreground --workspace=/ws --poll=5s" {
		t.Errorf("daemonArgs = %q", got)
	}
}
