package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

// newTestStore creates an in-memory store for testing.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndRecent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		e := Entry{
			StartedAt: base.Add(time.Duration(i) * time.Hour),
			Session:   "session-a",
			Source:    1,
			SourceURL: "https://bing.img.run/rand_uhd.php",
			ImageURL:  "https://example.test/a.jpg",
			ImagePath: filepath.Join("/ws", "a.jpg"),
			Bytes:     1024 * (i + 1),
			Outcome:   "success",
			Duration:  1500 * time.Millisecond,
		}
		if err := s.Record(ctx, e); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}
	if err := s.Record(ctx, Entry{
		StartedAt: base.Add(5 * time.Hour),
		Source:    2,
		SourceURL: "https://bing.img.run/uhd.php",
		Outcome:   "fetch_failed",
		Error:     "server returned 503",
	}); err != nil {
		t.Fatal(err)
	}

	got, err := s.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Recent(2) returned %d entries", len(got))
	}
	if got[0].Outcome != "fetch_failed" || got[0].Error != "server returned 503" {
		t.Errorf("newest entry = %+v", got[0])
	}
	if got[0].ImagePath != "" || got[0].Session != "" {
		t.Errorf("NULL-able columns not empty: %+v", got[0])
	}
	if got[1].Bytes != 3072 || got[1].Duration != 1500*time.Millisecond {
		t.Errorf("second entry = %+v", got[1])
	}
	if !got[1].StartedAt.Equal(base.Add(2 * time.Hour)) {
		t.Errorf("StartedAt = %v", got[1].StartedAt)
	}
}

func TestRecent_ZeroLimit(t *testing.T) {
	s := newTestStore(t)
	got, err := s.Recent(context.Background(), 0)
	if err != nil || got != nil {
		t.Errorf("Recent(0) = %v, %v", got, err)
	}
}

func TestPrune(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		if err := s.Record(ctx, Entry{StartedAt: time.Now(), SourceURL: "u", Outcome: "success", Bytes: i}); err != nil {
			t.Fatal(err)
		}
	}

	n, err := s.Prune(ctx, 4)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if n != 6 {
		t.Errorf("Prune() removed %d, want 6", n)
	}

	left, err := s.Recent(ctx, 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(left) != 4 {
		t.Fatalf("%d entries left, want 4", len(left))
	}
	if left[0].Bytes != 9 || left[3].Bytes != 6 {
		t.Errorf("kept wrong entries: first=%d last=%d", left[0].Bytes, left[3].Bytes)
	}
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Record(context.Background(), Entry{StartedAt: time.Now(), SourceURL: "u", Outcome: "success"}); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	got, err := s2.Recent(context.Background(), 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Errorf("reopened store has %d entries, want 1", len(got))
	}
}
