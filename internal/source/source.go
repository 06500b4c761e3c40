// Package source obtains the document an extraction runs against: a local
// HTML file, a page fetched over HTTP, or a live browser page.
package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/fieldtext/internal/browser"
	"github.com/hyperifyio/fieldtext/internal/dom"
	"github.com/hyperifyio/fieldtext/internal/fetch"
	"github.com/hyperifyio/fieldtext/internal/htmldoc"
)

// File reads an HTML file from disk, or standard input when Path is "-".
type File struct {
	Path  string
	Stdin io.Reader
}

func (f File) Active(_ context.Context) (dom.Document, error) {
	if f.Path == "-" {
		in := f.Stdin
		if in == nil {
			in = os.Stdin
		}
		return document(htmldoc.Parse(in, "stdin"))
	}
	fh, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Path, err)
	}
	defer fh.Close()
	loc := f.Path
	if abs, err := filepath.Abs(f.Path); err == nil {
		loc = "file://" + filepath.ToSlash(abs)
	}
	return document(htmldoc.Parse(fh, loc))
}

// HTTP fetches a page and parses its serialized markup. The document
// location is the URL reached after redirects.
type HTTP struct {
	URL    string
	Client *fetch.Client
}

func (h HTTP) Active(ctx context.Context) (dom.Document, error) {
	c := h.Client
	if c == nil {
		c = &fetch.Client{MaxAttempts: 2}
	}
	page, err := c.Get(ctx, h.URL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", h.URL, err)
	}
	log.Debug().Str("url", page.URL).Int("bytes", len(page.Body)).Str("content_type", page.ContentType).Bool("cached", page.Cached).Msg("fetched document")
	return document(htmldoc.ParseWithContentType(page.Body, page.ContentType, page.URL))
}

// Browser opens the page in a browser and reads its live state. The browser
// is closed once the snapshot is taken.
type Browser struct {
	URL     string
	Options browser.Options
}

func (b Browser) Active(ctx context.Context) (dom.Document, error) {
	s, err := browser.Open(ctx, b.URL, b.Options)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return s.Active(ctx)
}

// document keeps a typed nil out of the interface on failure.
func document(d *htmldoc.Document, err error) (dom.Document, error) {
	if err != nil {
		return nil, err
	}
	return d, nil
}

// IsURL reports whether target names a network location rather than a file.
func IsURL(target string) bool {
	t := strings.ToLower(strings.TrimSpace(target))
	return strings.HasPrefix(t, "http://") || strings.HasPrefix(t, "https://")
}
