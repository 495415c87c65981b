package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bft-labs/wow/internal/domain"
	"github.com/bft-labs/wow/pkg/log"
)

// jpegBytes is the smallest payload http.DetectContentType reports as image/jpeg.
var jpegBytes = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}

func newTestClient(maxBytes int64) *Client {
	return NewClient(&http.Client{Timeout: 5 * time.Second}, log.NewNoopLogger(), maxBytes)
}

func TestResolve_FollowsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/rand_uhd.php", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/hop", http.StatusFound)
	})
	mux.HandleFunc("/hop", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/2026/10/17/OHR.Example_UHD.jpg", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/2026/10/17/OHR.Example_UHD.jpg", func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("User-Agent"), "wow/") {
			t.Errorf("User-Agent = %q", r.Header.Get("User-Agent"))
		}
		w.Write(jpegBytes)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	got, err := newTestClient(0).Resolve(context.Background(), ts.URL+"/rand_uhd.php")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	want := ts.URL + "/2026/10/17/OHR.Example_UHD.jpg"
	if got != want {
		t.Errorf("Resolve() = %s, want %s", got, want)
	}
}

func TestResolve_NoRedirectReturnsSource(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(jpegBytes)
	}))
	defer ts.Close()

	got, err := newTestClient(0).Resolve(context.Background(), ts.URL+"/img")
	if err != nil {
		t.Fatal(err)
	}
	if got != ts.URL+"/img" {
		t.Errorf("Resolve() = %s", got)
	}
}

func TestDownload(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		maxBytes   int64
		wantErr    bool
		wantStatus int
	}{
		{
			name:    "image body",
			handler: func(w http.ResponseWriter, r *http.Request) { w.Write(jpegBytes) },
		},
		{
			name:       "server error",
			handler:    func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) },
			wantErr:    true,
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "not found",
			handler:    func(w http.ResponseWriter, r *http.Request) { http.NotFound(w, r) },
			wantErr:    true,
			wantStatus: http.StatusNotFound,
		},
		{
			name: "html instead of image",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("<html><body>rate limited</body></html>"))
			},
			wantErr: true,
		},
		{
			name:    "empty body",
			handler: func(w http.ResponseWriter, r *http.Request) {},
			wantErr: true,
		},
		{
			name:     "oversized body",
			handler:  func(w http.ResponseWriter, r *http.Request) { w.Write(append(jpegBytes, make([]byte, 64)...)) },
			maxBytes: 16,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(tt.handler)
			defer ts.Close()

			data, err := newTestClient(tt.maxBytes).Download(context.Background(), ts.URL)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrFetch) {
					t.Fatalf("Download() error = %v, want ErrFetch", err)
				}
				var fe *Error
				if !errors.As(err, &fe) {
					t.Fatalf("Download() error %T is not *fetch.Error", err)
				}
				if fe.StatusCode != tt.wantStatus {
					t.Errorf("StatusCode = %d, want %d", fe.StatusCode, tt.wantStatus)
				}
				return
			}
			if err != nil {
				t.Fatalf("Download() unexpected error: %v", err)
			}
			if string(data) != string(jpegBytes) {
				t.Errorf("Download() = %v, want %v", data, jpegBytes)
			}
		})
	}
}

func TestDownload_NetworkError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := ts.URL
	ts.Close()

	_, err := newTestClient(0).Download(context.Background(), url)
	if !errors.Is(err, domain.ErrFetch) {
		t.Fatalf("Download() error = %v, want ErrFetch", err)
	}
	var fe *Error
	if errors.As(err, &fe) && fe.Err == nil {
		t.Error("expected underlying cause to be kept")
	}
}

func TestDownload_ContextCanceled(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer ts.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := newTestClient(0).Download(ctx, ts.URL)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Download() error = %v, want context.Canceled in chain", err)
	}
	if !errors.Is(err, domain.ErrFetch) {
		t.Errorf("Download() error = %v, want ErrFetch", err)
	}
}
