package app

import "time"

// Config holds runtime configuration for the application.
type Config struct {
	// Target is a file path, "-" for standard input, or an http(s) URL.
	Target string

	// Browser
	Browser           bool
	BrowserBin        string
	BrowserControlURL string
	Headless          bool
	ProfileDir        string
	Width             int
	Height            int
	Timeout           time.Duration

	// Output
	OutputDir string
	Format    string
	Prompt    bool
	Overwrite bool
	Manifest  bool
	Stdout    bool
	JSON      bool

	// Fetching
	UserAgent        string
	CacheDir         string
	CacheMaxAge      time.Duration
	CacheClear       bool
	CacheStrictPerms bool

	// Behavior
	Verbose bool
	LogFile string
}

// Flag defaults shared by the CLI and ApplyFileConfig, which only lets the
// file override a field still holding its default.
const (
	OutputDirDefault = "."
	FormatDefault    = "txt"
	CacheDirDefault  = ".fieldtext-cache"
	UserAgentDefault = "fieldtext/1.0 (+https://github.com/hyperifyio/fieldtext)"
	WidthDefault     = 1280
	HeightDefault    = 800
	TimeoutDefault   = 30 * time.Second
)
