package cache

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ClearDir removes the directory and everything in it, then recreates it
// empty so the location stays usable.
func ClearDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return errors.New("empty dir")
	}
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}

// Purge removes pages saved more than maxAge before now and returns how many
// were dropped. Unreadable or malformed entries are dropped as well, along
// with stray temporary files.
func Purge(dir string, maxAge time.Duration, now time.Time) (int, error) {
	if maxAge <= 0 {
		return 0, nil
	}
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, de := range entries {
		name := de.Name()
		path := filepath.Join(dir, name)
		switch {
		case de.IsDir():
			continue
		case strings.HasSuffix(name, ".tmp"):
			_ = os.Remove(path)
			continue
		case !strings.HasSuffix(name, ".meta.json"):
			continue
		}
		e, err := readEntry(path)
		if err == nil && now.Sub(e.SavedAt) <= maxAge {
			continue
		}
		removed++
		_ = os.Remove(path)
		_ = os.Remove(strings.TrimSuffix(path, ".meta.json") + ".body")
	}
	return removed, nil
}
