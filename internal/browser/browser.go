// Package browser reads the active document from a live Chromium page driven
// through go-rod. A page is captured as an immutable dom.Tree in a single
// evaluation so that extraction sees one consistent state.
package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog/log"
)

// ErrProtectedPage is returned for pages extraction must not run on.
var ErrProtectedPage = errors.New("cannot run on this page")

// Options configures how the browser is started or reached.
type Options struct {
	// Bin is the browser executable; empty uses the launcher lookup.
	Bin string
	// ControlURL connects to an already running browser instead of launching.
	ControlURL string
	Headless   bool
	// ProfileDir is a Chrome/Chromium profile directory for authenticated sessions.
	ProfileDir string
	Width      int
	Height     int
	// Timeout bounds navigation and load. Zero means 30s.
	Timeout time.Duration
}

// Session owns a browser and the page the document lives in.
type Session struct {
	browser *rod.Browser
	page    *rod.Page
	owned   bool
}

var protectedPrefixes = []string{
	"chrome://",
	"chrome-extension://",
	"edge://",
	"about:",
	"devtools://",
	"view-source:",
	"https://chrome.google.com/webstore",
	"https://chromewebstore.google.com",
}

// IsProtected reports whether url belongs to a page the browser does not let
// scripts read.
func IsProtected(url string) bool {
	u := strings.ToLower(strings.TrimSpace(url))
	for _, p := range protectedPrefixes {
		if strings.HasPrefix(u, p) {
			return true
		}
	}
	return false
}

// Open starts or connects to a browser and navigates to url.
func Open(ctx context.Context, url string, opts Options) (*Session, error) {
	if IsProtected(url) {
		return nil, ErrProtectedPage
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}

	controlURL := opts.ControlURL
	owned := false
	if controlURL == "" {
		bin := opts.Bin
		if bin == "" {
			bin, _ = launcher.LookPath()
		}
		l := launcher.New().Headless(opts.Headless)
		if bin != "" {
			l = l.Bin(bin)
		}
		if opts.ProfileDir != "" {
			l = l.UserDataDir(opts.ProfileDir)
		}
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("launch browser: %w", err)
		}
		controlURL = u
		owned = true
	}

	b := rod.New().ControlURL(controlURL).Context(ctx)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("connect to browser: %w", err)
	}
	s := &Session{browser: b, owned: owned}

	page, err := b.Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("open page: %w", err)
	}
	s.page = page
	if opts.Width > 0 && opts.Height > 0 {
		if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
			Width:             opts.Width,
			Height:            opts.Height,
			DeviceScaleFactor: 1,
		}); err != nil {
			log.Debug().Err(err).Msg("set viewport")
		}
	}
	if err := page.Timeout(opts.Timeout).WaitLoad(); err != nil {
		s.Close()
		return nil, fmt.Errorf("wait load: %w", err)
	}
	// Don't hang on persistent connections (WebSockets, polling).
	page.Timeout(5*time.Second).WaitRequestIdle(500*time.Millisecond, nil, nil, nil)()
	log.Debug().Str("url", url).Msg("page loaded")
	return s, nil
}

// Close releases the page, and the browser when this session launched it.
func (s *Session) Close() {
	if s == nil {
		return
	}
	if s.page != nil {
		_ = s.page.Close()
	}
	if s.browser != nil && s.owned {
		_ = s.browser.Close()
	}
}
