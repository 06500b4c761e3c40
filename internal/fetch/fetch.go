// Package fetch retrieves HTML documents over HTTP with bounded retries,
// content decoding and optional conditional revalidation against a cache.
package fetch

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/fieldtext/internal/cache"
)

var (
	// ErrUnsupportedContent is returned when the response is not an HTML document.
	ErrUnsupportedContent = errors.New("unsupported content type")
	// ErrScheme is returned for URLs that are not http or https.
	ErrScheme = errors.New("unsupported URL scheme")
)

// maxBodyBytes caps how much of a document is read.
const maxBodyBytes = 32 << 20

// Page is a fetched document.
type Page struct {
	// URL is the location after redirects.
	URL         string
	ContentType string
	Body        []byte
	// Cached is set when the body came from the cache after a 304.
	Cached bool
}

// StatusError reports a non-2xx reply.
type StatusError struct{ Code int }

func (e *StatusError) Error() string {
	if e.Code >= 500 {
		return fmt.Sprintf("server error: %d", e.Code)
	}
	return fmt.Sprintf("unexpected status: %d", e.Code)
}

// Client fetches single documents.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	// MaxAttempts includes the initial attempt. Minimum 1.
	MaxAttempts int
	// Backoff is the delay before the second attempt; it grows linearly.
	Backoff time.Duration
	// PerRequestTimeout bounds each attempt.
	PerRequestTimeout time.Duration
	// Cache, when set, supplies validators and receives every fresh body.
	Cache *cache.PageCache
	// RedirectMaxHops caps redirect following. Zero means 5.
	RedirectMaxHops int
}

// Get fetches rawURL, retrying transient failures.
func (c *Client) Get(ctx context.Context, rawURL string) (*Page, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	if !isHTTPScheme(u) {
		return nil, fmt.Errorf("%w: %q", ErrScheme, u.Scheme)
	}
	var validators cache.Entry
	if c.Cache != nil {
		if e, err := c.Cache.Validators(ctx, rawURL); err == nil {
			validators = e
		} else if !errors.Is(err, cache.ErrMiss) {
			log.Debug().Err(err).Str("url", rawURL).Msg("cache entry ignored")
		}
	}
	attempts := c.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	for i := 1; ; i++ {
		page, err := c.attempt(ctx, rawURL, validators)
		if err == nil {
			return page, nil
		}
		if !isTransient(err) || i >= attempts {
			return nil, err
		}
		log.Debug().Err(err).Int("attempt", i).Str("url", rawURL).Msg("retrying fetch")
		if err := sleep(ctx, time.Duration(i)*c.backoff()); err != nil {
			return nil, err
		}
	}
}

func (c *Client) backoff() time.Duration {
	if c.Backoff > 0 {
		return c.Backoff
	}
	return 200 * time.Millisecond
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (c *Client) attempt(ctx context.Context, rawURL string, v cache.Entry) (*Page, error) {
	if c.PerRequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.PerRequestTimeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9")
	// Setting Accept-Encoding ourselves disables transparent gzip in net/http,
	// so decoding happens in decodeBody.
	req.Header.Set("Accept-Encoding", "br, gzip")
	if v.ETag != "" {
		req.Header.Set("If-None-Match", v.ETag)
	}
	if v.LastModified != "" {
		req.Header.Set("If-Modified-Since", v.LastModified)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified && c.Cache != nil {
		cached, err := c.Cache.Load(ctx, rawURL)
		if err == nil {
			log.Debug().Str("url", rawURL).Msg("document served from cache")
			return &Page{URL: firstNonEmpty(cached.FinalURL, rawURL), ContentType: cached.ContentType, Body: cached.Body, Cached: true}, nil
		}
		return nil, fmt.Errorf("revalidated entry unusable: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode}
	}
	ct := resp.Header.Get("Content-Type")
	if !isHTMLContentType(ct) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedContent, ct)
	}
	body, err := decodeBody(resp)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	page := &Page{URL: resp.Request.URL.String(), ContentType: ct, Body: body}
	if c.Cache != nil {
		entry := cache.Entry{
			URL:          rawURL,
			FinalURL:     page.URL,
			ContentType:  ct,
			ETag:         resp.Header.Get("ETag"),
			LastModified: resp.Header.Get("Last-Modified"),
		}
		if err := c.Cache.Store(ctx, cache.Page{Entry: entry, Body: body}); err != nil {
			log.Warn().Err(err).Msg("cache store failed")
		}
	}
	return page, nil
}

func (c *Client) httpClient() *http.Client {
	base := http.Client{}
	if c.HTTPClient != nil {
		// Copy so the redirect policy does not leak into the caller's client.
		base = *c.HTTPClient
	}
	base.CheckRedirect = c.checkRedirect
	return &base
}

func (c *Client) checkRedirect(req *http.Request, via []*http.Request) error {
	max := c.RedirectMaxHops
	if max <= 0 {
		max = 5
	}
	if len(via) >= max {
		return errors.New("too many redirects")
	}
	if !isHTTPScheme(req.URL) {
		return fmt.Errorf("redirect: %w: %q", ErrScheme, req.URL.Scheme)
	}
	return nil
}

// decodeBody undoes the content encoding negotiated in attempt.
func decodeBody(resp *http.Response) ([]byte, error) {
	var r io.Reader = resp.Body
	switch enc := strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))); enc {
	case "br":
		r = brotli.NewReader(resp.Body)
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		r = gz
	case "", "identity":
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", enc)
	}
	return io.ReadAll(io.LimitReader(r, maxBodyBytes))
}

// isTransient reports failures worth another attempt: 5xx replies and
// attempts that ran out of time.
func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var se *StatusError
	return errors.As(err, &se) && se.Code >= 500
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

func isHTMLContentType(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	return strings.HasPrefix(ct, "text/html") || strings.HasPrefix(ct, "application/xhtml+xml")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
