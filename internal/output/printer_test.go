package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/bft-labs/wow/internal/domain"
	"github.com/bft-labs/wow/internal/history"
)

func TestFormatHours(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{12, "12"},
		{2.5, "2.5"},
		{0.25, "0.25"},
		{1.0 / 3600, "0.0003"},
	}
	for _, tt := range tests {
		if got := FormatHours(tt.in); got != tt.want {
			t.Errorf("FormatHours(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPrinter_Status(t *testing.T) {
	var buf bytes.Buffer
	st := domain.DefaultState()
	st.Source = domain.SourceDaily
	st.Running = true

	NewPrinter(&buf).Status(st, "/opt/wow")

	out := buf.String()
	for _, want := range []string{
		"workspace: /opt/wow",
		"bing every-day image (2)",
		"every 12 hours",
		"last update: never",
		"running: true",
		"current image: (none)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("status output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("non-terminal output contains escape codes")
	}
}

func TestPrinter_History(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.History(nil)
	if !strings.Contains(buf.String(), "no updates recorded") {
		t.Errorf("empty history output = %q", buf.String())
	}

	buf.Reset()
	p.History([]history.Entry{
		{StartedAt: time.Now(), Outcome: "fetch_failed", Error: "wow: fetch image error"},
		{StartedAt: time.Now(), Outcome: "success", ImagePath: "/opt/wow/1.jpg", Duration: 1500 * time.Millisecond},
	})
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if !strings.Contains(lines[0], "fetch_failed") || !strings.Contains(lines[0], "fetch image error") {
		t.Errorf("line 0 = %q", lines[0])
	}
	if !strings.Contains(lines[1], "1.5s") || !strings.Contains(lines[1], "/opt/wow/1.jpg") {
		t.Errorf("line 1 = %q", lines[1])
	}
}

func TestPrinter_Tip(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).Tip(time.Unix(7, 0))
	if !strings.Contains(buf.String(), "thanks for using wow!") {
		t.Errorf("tip output = %q", buf.String())
	}
}
