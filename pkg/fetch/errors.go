package fetch

import (
	"fmt"

	"github.com/bft-labs/wow/internal/domain"
)

// Error describes a failed resolve or download.
type Error struct {
	Op         string // "resolve" or "download"
	URL        string
	StatusCode int // zero when no response was received
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: server returned %d", e.Op, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is makes every fetch failure match domain.ErrFetch.
func (e *Error) Is(target error) bool { return target == domain.ErrFetch }
