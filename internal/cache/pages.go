// Package cache keeps fetched pages on disk so a repeated run can revalidate
// them with conditional requests instead of downloading the body again.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

var (
	// ErrMiss is returned when no entry exists for a URL.
	ErrMiss = errors.New("cache miss")
	// ErrCorrupt is returned when the stored body does not match its entry.
	ErrCorrupt = errors.New("cache entry corrupt")
)

// Entry is the metadata stored beside a page body.
type Entry struct {
	URL string `json:"url"`
	// FinalURL is where redirects ended, used as the document location.
	FinalURL     string    `json:"final_url,omitempty"`
	ContentType  string    `json:"content_type"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	Size         int       `json:"size"`
	SavedAt      time.Time `json:"saved_at"`
}

// Page is a cached body together with its entry.
type Page struct {
	Entry
	Body []byte
}

// PageCache stores pages as <key>.body and <key>.meta.json where key is
// sha256(url). Pages can hold personal data typed by the user, so
// StrictPerms restricts the directory to 0700 and files to 0600.
type PageCache struct {
	Dir         string
	StrictPerms bool
	Now         func() time.Time
}

func (c *PageCache) dirMode() os.FileMode {
	if c.StrictPerms {
		return 0o700
	}
	return 0o755
}

func (c *PageCache) fileMode() os.FileMode {
	if c.StrictPerms {
		return 0o600
	}
	return 0o644
}

func (c *PageCache) now() time.Time {
	if c.Now != nil {
		return c.Now().UTC()
	}
	return time.Now().UTC()
}

func (c *PageCache) ensureDir() error {
	if c == nil || c.Dir == "" {
		return errors.New("cache dir not configured")
	}
	if err := os.MkdirAll(c.Dir, c.dirMode()); err != nil {
		return err
	}
	if c.StrictPerms {
		return os.Chmod(c.Dir, c.dirMode())
	}
	return nil
}

// Key names the files of the entry for url.
func Key(url string) string {
	h := sha256.Sum256([]byte(url))
	return hex.EncodeToString(h[:])
}

func (c *PageCache) metaPath(key string) string { return filepath.Join(c.Dir, key+".meta.json") }
func (c *PageCache) bodyPath(key string) string { return filepath.Join(c.Dir, key+".body") }

// Validators returns the entry for url without reading its body.
func (c *PageCache) Validators(_ context.Context, url string) (Entry, error) {
	if err := c.ensureDir(); err != nil {
		return Entry{}, err
	}
	return readEntry(c.metaPath(Key(url)))
}

func readEntry(path string) (Entry, error) {
	var e Entry
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return e, ErrMiss
	}
	if err != nil {
		return e, err
	}
	if err := json.Unmarshal(b, &e); err != nil {
		return e, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return e, nil
}

// Load returns the page stored for url.
func (c *PageCache) Load(ctx context.Context, url string) (*Page, error) {
	e, err := c.Validators(ctx, url)
	if err != nil {
		return nil, err
	}
	body, err := os.ReadFile(c.bodyPath(Key(url)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: body missing", ErrCorrupt)
	}
	if err != nil {
		return nil, err
	}
	if len(body) != e.Size {
		return nil, fmt.Errorf("%w: size %d, want %d", ErrCorrupt, len(body), e.Size)
	}
	return &Page{Entry: e, Body: body}, nil
}

// Store writes the page. The body lands first and the entry last, so a
// reader never sees an entry whose body is still being written.
func (c *PageCache) Store(_ context.Context, p Page) error {
	if err := c.ensureDir(); err != nil {
		return err
	}
	key := Key(p.URL)
	if err := c.writeAtomic(c.bodyPath(key), p.Body); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	e := p.Entry
	e.Size = len(p.Body)
	e.SavedAt = c.now()
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}
	if err := c.writeAtomic(c.metaPath(key), b); err != nil {
		return fmt.Errorf("write entry: %w", err)
	}
	return nil
}

func (c *PageCache) writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, c.fileMode()); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
