package state

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bft-labs/wow/internal/domain"
)

// FileName is the state file name inside the workspace.
const FileName = "wow.conf"

// FileRepository implements Repository using the binary wow.conf file.
type FileRepository struct {
	dir string
}

// NewFileRepository creates a FileRepository rooted at the workspace dir.
func NewFileRepository(dir string) *FileRepository {
	return &FileRepository{dir: dir}
}

// Load reads and decodes wow.conf.
func (r *FileRepository) Load(ctx context.Context) (domain.State, error) {
	data, err := os.ReadFile(r.Path())
	if err != nil {
		return domain.State{}, fmt.Errorf("%w: %v", domain.ErrConfigIO, err)
	}
	st, err := Decode(data)
	if err != nil {
		return domain.State{}, fmt.Errorf("%w: decode %s: %v", domain.ErrConfigIO, r.Path(), err)
	}
	return st, nil
}

// Save encodes st and replaces wow.conf atomically (temp file, then rename).
func (r *FileRepository) Save(ctx context.Context, st domain.State) error {
	data, err := Encode(st)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", domain.ErrConfigFlush, err)
	}

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrConfigFlush, err)
	}

	path := r.Path()
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrConfigFlush, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: %v", domain.ErrConfigFlush, err)
	}
	return nil
}

// Path returns the full path to the state file.
func (r *FileRepository) Path() string {
	return filepath.Join(r.dir, FileName)
}
