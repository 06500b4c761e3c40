// Package app wires a document source, the extraction engine and the export
// sink into the trigger surface used by the CLI.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/fieldtext/internal/browser"
	"github.com/hyperifyio/fieldtext/internal/cache"
	"github.com/hyperifyio/fieldtext/internal/export"
	"github.com/hyperifyio/fieldtext/internal/extract"
	"github.com/hyperifyio/fieldtext/internal/fetch"
	"github.com/hyperifyio/fieldtext/internal/source"
)

type App struct {
	cfg       Config
	extractor *extract.Extractor
	sink      export.Sink
	pages     *cache.PageCache

	in     io.Reader
	out    io.Writer
	status io.Writer
	now    func() time.Time
}

// Option customizes an App.
type Option func(*App)

// WithStreams replaces standard input, standard output and the status stream.
func WithStreams(in io.Reader, out, status io.Writer) Option {
	return func(a *App) {
		a.in, a.out, a.status = in, out, status
	}
}

// WithSource replaces the document source derived from the config.
func WithSource(src extract.Source) Option {
	return func(a *App) { a.extractor.Source = src }
}

// WithSink replaces the export sink derived from the config.
func WithSink(s export.Sink) Option {
	return func(a *App) { a.sink = s }
}

// WithClock fixes the clock used for report and file timestamps.
func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

func New(ctx context.Context, cfg Config, opts ...Option) (*App, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	a := &App{
		cfg:       cfg,
		extractor: &extract.Extractor{},
		in:        os.Stdin,
		out:       os.Stdout,
		status:    os.Stderr,
		now:       time.Now,
	}
	if cfg.CacheDir != "" && source.IsURL(cfg.Target) && !cfg.Browser {
		if cfg.CacheClear {
			if err := cache.ClearDir(cfg.CacheDir); err != nil {
				log.Warn().Err(err).Str("dir", cfg.CacheDir).Msg("cache clear failed")
			}
		}
		if cfg.CacheMaxAge > 0 {
			// Purge errors must not fail startup
			if n, err := cache.Purge(cfg.CacheDir, cfg.CacheMaxAge, time.Now()); err != nil {
				log.Warn().Err(err).Msg("cache purge failed")
			} else if n > 0 {
				log.Debug().Int("removed", n).Msg("purged stale cache entries")
			}
		}
		a.pages = &cache.PageCache{Dir: cfg.CacheDir, StrictPerms: cfg.CacheStrictPerms}
	}
	for _, o := range opts {
		o(a)
	}
	a.extractor.Options.Now = func() time.Time { return a.now() }
	if a.extractor.Source == nil {
		a.extractor.Source = a.sourceFor(cfg)
	}
	if a.sink == nil {
		a.sink = a.sinkFor(cfg)
	}
	log.Debug().Str("target", cfg.Target).Bool("browser", cfg.Browser).Msg("app ready")
	return a, nil
}

// sourceFor picks how the active document is obtained: a live browser when
// requested, HTTP for URLs and the file system otherwise.
func (a *App) sourceFor(cfg Config) extract.Source {
	target := strings.TrimSpace(cfg.Target)
	if cfg.Browser {
		url := target
		if !source.IsURL(url) && !strings.Contains(url, "://") {
			if abs, err := filepath.Abs(url); err == nil {
				url = "file://" + filepath.ToSlash(abs)
			}
		}
		return source.Browser{URL: url, Options: browser.Options{
			Bin:        cfg.BrowserBin,
			ControlURL: cfg.BrowserControlURL,
			Headless:   cfg.Headless,
			ProfileDir: cfg.ProfileDir,
			Width:      cfg.Width,
			Height:     cfg.Height,
			Timeout:    cfg.Timeout,
		}}
	}
	if source.IsURL(target) {
		return source.HTTP{URL: target, Client: &fetch.Client{
			HTTPClient:        newHTTPClient(cfg.Timeout),
			UserAgent:         cfg.UserAgent,
			MaxAttempts:       2,
			PerRequestTimeout: cfg.Timeout,
			Cache:             a.pages,
		}}
	}
	return source.File{Path: target, Stdin: a.in}
}

func (a *App) sinkFor(cfg Config) export.Sink {
	if cfg.Stdout {
		return export.WriterSink{W: a.out}
	}
	format, _ := export.ParseFormat(cfg.Format)
	s := &export.FileSink{
		Dir:       cfg.OutputDir,
		Format:    format,
		Overwrite: cfg.Overwrite,
		Manifest:  cfg.Manifest,
		Now:       func() time.Time { return a.now() },
	}
	if cfg.Prompt {
		s.Prompter = &export.LinePrompter{In: a.in, Out: a.status}
	}
	return s
}

// Run performs one extraction and hands the result on: a payload goes to
// the sink, empty outcomes become status messages. Degenerate documents and
// cancelled saves are not errors.
func (a *App) Run(ctx context.Context) error {
	res, err := a.extractor.Extract(ctx)
	if err != nil {
		a.notify(ErrorMessage(err))
		return err
	}
	if a.cfg.JSON {
		if err := a.writeJSON(res); err != nil {
			return fmt.Errorf("write json: %w", err)
		}
		return nil
	}
	switch r := res.(type) {
	case extract.Success:
		return a.save(ctx, r)
	case extract.EmptyFields, extract.NoFields:
		a.notify(StatusMessage(r))
		return nil
	default:
		return fmt.Errorf("unexpected result %T", res)
	}
}

func (a *App) save(ctx context.Context, r extract.Success) error {
	if !a.cfg.Stdout {
		a.notify(MsgSaving)
	}
	if fileSink, ok := a.sink.(*export.FileSink); ok {
		fileSink.Records = len(r.Report.Records)
	}
	ref := export.DocumentRef{Location: r.Report.Location, Title: r.Report.Title}
	path, err := a.sink.Save(ctx, r.Text, ref)
	switch {
	case err == nil:
		if !a.cfg.Stdout {
			a.notify("Saved " + path)
		}
		return nil
	case export.IsCancelled(err):
		log.Debug().Msg("save cancelled by user")
		return nil
	default:
		log.Error().Err(err).Msg("save failed")
		a.notify(ErrorMessage(err))
		return err
	}
}

// jsonReport is the --json rendering of a result.
type jsonReport struct {
	Status      extract.Status   `json:"status"`
	Location    string           `json:"location,omitempty"`
	Title       string           `json:"title,omitempty"`
	GeneratedAt *time.Time       `json:"generated_at,omitempty"`
	Relevant    int              `json:"relevant"`
	Records     []extract.Record `json:"records"`
}

func (a *App) writeJSON(res extract.Result) error {
	out := jsonReport{Status: res.Status(), Records: []extract.Record{}}
	switch r := res.(type) {
	case extract.Success:
		at := r.Report.GeneratedAt
		out.Location = r.Report.Location
		out.Title = r.Report.Title
		out.GeneratedAt = &at
		out.Relevant = r.Report.Relevant
		out.Records = r.Report.Records
	case extract.EmptyFields:
		out.Relevant = r.Relevant
	}
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func (a *App) notify(msg string) {
	if msg == "" || a.status == nil {
		return
	}
	fmt.Fprintln(a.status, msg)
}
