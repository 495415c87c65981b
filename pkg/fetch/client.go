package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"strings"

	"github.com/bft-labs/wow/pkg/log"
)

// DefaultMaxBytes caps a single image download.
const DefaultMaxBytes = 64 << 20

// Client resolves source endpoints and downloads images.
type Client struct {
	client    HTTPClient
	logger    log.Logger
	maxBytes  int64
	userAgent string
}

// NewClient creates a fetch client. maxBytes <= 0 selects DefaultMaxBytes.
// The *http.Client passed in follows redirects by default, which Resolve relies on.
func NewClient(client HTTPClient, logger log.Logger, maxBytes int64) *Client {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Client{
		client:    client,
		logger:    logger,
		maxBytes:  maxBytes,
		userAgent: "wow/" + runtime.GOOS + "-" + runtime.GOARCH,
	}
}

// Resolve issues a GET against sourceURL, follows redirects and returns the
// terminal URL. The response body is discarded.
func (c *Client) Resolve(ctx context.Context, sourceURL string) (string, error) {
	resp, err := c.get(ctx, "resolve", sourceURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))

	final := sourceURL
	if resp.Request != nil && resp.Request.URL != nil {
		final = resp.Request.URL.String()
	}
	c.logger.Debug("resolved source", log.String("source", sourceURL), log.String("url", final))
	return final, nil
}

// Download fetches url and returns the full body. Bodies larger than the
// client's cap or whose sniffed content type is not an image are rejected.
func (c *Client) Download(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.get(ctx, "download", url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, &Error{Op: "download", URL: url, Err: fmt.Errorf("read body: %w", err)}
	}
	if int64(len(data)) > c.maxBytes {
		return nil, &Error{Op: "download", URL: url, Err: fmt.Errorf("image exceeds %d bytes", c.maxBytes)}
	}
	if len(data) == 0 {
		return nil, &Error{Op: "download", URL: url, Err: errors.New("empty body")}
	}
	if ct := http.DetectContentType(data); !strings.HasPrefix(ct, "image/") {
		return nil, &Error{Op: "download", URL: url, Err: fmt.Errorf("unexpected content type %s", ct)}
	}

	c.logger.Debug("downloaded image", log.String("url", url), log.Int("bytes", len(data)))
	return data, nil
}

func (c *Client) get(ctx context.Context, op, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &Error{Op: op, URL: url, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &Error{Op: op, URL: url, Err: fmt.Errorf("send request: %w", err)}
	}
	if resp.StatusCode/100 != 2 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		resp.Body.Close()
		return nil, &Error{Op: op, URL: url, StatusCode: resp.StatusCode}
	}
	return resp, nil
}
