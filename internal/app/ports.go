package app

import (
	"context"

	"github.com/bft-labs/wow/internal/history"
)

// Fetcher resolves a source endpoint and downloads the image behind it.
// *fetch.Client implements it.
type Fetcher interface {
	Resolve(ctx context.Context, sourceURL string) (string, error)
	Download(ctx context.Context, url string) ([]byte, error)
}

// Applier sets the desktop background from an image file.
type Applier interface {
	Apply(ctx context.Context, imagePath string) error
}

// HistoryRecorder persists update attempts. *history.Store implements it.
type HistoryRecorder interface {
	Record(ctx context.Context, e history.Entry) error
}

// Pruner trims the update history. *history.Store implements it.
type Pruner interface {
	Prune(ctx context.Context, keep int) (int64, error)
}
