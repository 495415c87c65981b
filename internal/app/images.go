package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/bft-labs/wow/internal/domain"
	"github.com/bft-labs/wow/pkg/log"
)

const (
	imageExt   = ".jpg"
	partSuffix = ".part"

	// maxNameSuffix bounds the -N search for a free image name.
	maxNameSuffix = 1000
)

// imageNamePattern matches files written by writeImage.
var imageNamePattern = regexp.MustCompile(`^\d+(-\d+)?\.jpg$`)

// writeImage stores data as <dir>/<unix>.jpg, adding a -N suffix when that
// name is taken. Bytes land in a .part file first and are renamed into place
// after fsync, so a partial image never carries a final name. The returned
// path is absolute.
func writeImage(dir string, now time.Time, data []byte) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrFileIO, err)
	}
	base := strconv.FormatInt(now.Unix(), 10)

	tmp, err := os.CreateTemp(dir, base+"-*"+imageExt+partSuffix)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrFileIO, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("%w: write %s: %v", domain.ErrFileIO, tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("%w: sync %s: %v", domain.ErrFileIO, tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("%w: close %s: %v", domain.ErrFileIO, tmpName, err)
	}

	final, err := freeImageName(dir, base)
	if err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("%w: %v", domain.ErrFileIO, err)
	}
	if err := os.Rename(tmpName, final); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("%w: rename %s: %v", domain.ErrFileIO, final, err)
	}
	return final, nil
}

func freeImageName(dir, base string) (string, error) {
	for i := 0; i < maxNameSuffix; i++ {
		name := base + imageExt
		if i > 0 {
			name = base + "-" + strconv.Itoa(i) + imageExt
		}
		p := filepath.Join(dir, name)
		_, err := os.Lstat(p)
		if errors.Is(err, fs.ErrNotExist) {
			return p, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("no free image name for %s", base)
}

// removeImage deletes a superseded image. Failures are logged and swallowed.
func removeImage(path string, logger log.Logger) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("failed to remove previous image", log.String("path", path), log.Err(err))
	}
}

// SweepPartials removes .part files in dir last modified more than minAge
// ago. Younger files may belong to a write still in progress.
func SweepPartials(dir string, minAge time.Duration, logger log.Logger) int {
	matches, err := filepath.Glob(filepath.Join(dir, "*"+partSuffix))
	if err != nil {
		logger.Error("partial sweep: glob failed", log.Err(err))
		return 0
	}
	cutoff := time.Now().Add(-minAge)
	removed := 0
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(m); err != nil {
			logger.Warn("partial sweep: remove failed", log.String("path", m), log.Err(err))
			continue
		}
		removed++
	}
	if removed > 0 {
		logger.Info("removed partial downloads", log.Int("count", removed))
	}
	return removed
}

// imageFiles lists the wallpaper files written into dir.
func imageFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.Type().IsRegular() && imageNamePattern.MatchString(e.Name()) {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	return out, nil
}
