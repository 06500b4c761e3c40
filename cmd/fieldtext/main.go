package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hyperifyio/fieldtext/internal/app"
)

func main() {
	os.Exit(execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// execute runs the CLI and returns the process exit code: 0 for every
// extraction outcome and for a cancelled save, 1 when a collaborator failed.
func execute(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(&cli{stdin: stdin, stdout: stdout, stderr: stderr})
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		var ue usageError
		if errors.As(err, &ue) {
			fmt.Fprintln(stderr, "Error:", err)
		}
		return 1
	}
	return 0
}

// usageError marks failures that happen before an extraction starts and are
// therefore not reported by the app itself.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

type cli struct {
	flags      app.Config
	configPath string
	envFiles   []string

	stdin          io.Reader
	stdout, stderr io.Writer
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "fieldtext [file|-|url]",
		Short: "Save the text typed into a page's input fields",
		Long: `fieldtext collects the values of the visible, enabled text inputs, text areas
and editable regions of a page, labels each one and saves them as one text file.

Examples:
  fieldtext form.html
  fieldtext --stdout https://example.com/contact
  fieldtext --browser --browser.headless=false https://example.com/contact`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, args, false)
		},
	}
	pf := root.PersistentFlags()
	pf.StringVarP(&c.flags.OutputDir, "output", "o", app.OutputDirDefault, "Directory for saved extractions")
	pf.StringVar(&c.flags.Format, "format", app.FormatDefault, "Artifact format: txt or pdf")
	pf.BoolVar(&c.flags.Prompt, "prompt", false, "Ask where to save before writing (Enter accepts, 'cancel' aborts)")
	pf.BoolVar(&c.flags.Overwrite, "overwrite", false, "Replace an existing file instead of picking a free name")
	pf.BoolVar(&c.flags.Manifest, "manifest", false, "Write a <file>.manifest.json sidecar")
	pf.BoolVar(&c.flags.Stdout, "stdout", false, "Print the extracted text instead of saving it")
	pf.BoolVar(&c.flags.JSON, "json", false, "Print the result and records as JSON")
	pf.BoolVar(&c.flags.Browser, "browser", false, "Read the live page in a Chromium browser")
	pf.StringVar(&c.flags.BrowserBin, "browser.bin", "", "Browser executable (default: auto-detect)")
	pf.StringVar(&c.flags.BrowserControlURL, "browser.url", "", "DevTools URL of an already running browser")
	pf.BoolVar(&c.flags.Headless, "browser.headless", true, "Run the launched browser headless")
	pf.StringVar(&c.flags.ProfileDir, "browser.profile", "", "Chrome/Chromium profile directory for authenticated sessions (close browser first)")
	pf.IntVar(&c.flags.Width, "browser.width", app.WidthDefault, "Viewport width")
	pf.IntVar(&c.flags.Height, "browser.height", app.HeightDefault, "Viewport height")
	pf.DurationVar(&c.flags.Timeout, "timeout", app.TimeoutDefault, "Page load and fetch timeout")
	pf.StringVar(&c.flags.UserAgent, "user-agent", app.UserAgentDefault, "User-Agent for HTTP fetches")
	pf.StringVar(&c.flags.CacheDir, "cache.dir", app.CacheDirDefault, "Cache directory for fetched pages")
	pf.DurationVar(&c.flags.CacheMaxAge, "cache.maxAge", 0, "Max age for cache entries before purge (e.g. 24h); 0 disables")
	pf.BoolVar(&c.flags.CacheClear, "cache.clear", false, "Clear cache directory before run")
	pf.BoolVar(&c.flags.CacheStrictPerms, "cache.strictPerms", false, "Restrict cache permissions (0700 dirs, 0600 files)")
	pf.BoolVarP(&c.flags.Verbose, "verbose", "v", false, "Verbose logging")
	pf.StringVar(&c.flags.LogFile, "log.file", "", "Also write JSON logs to this rotated file")
	pf.StringVar(&c.configPath, "config", "", "YAML or JSON config file")
	pf.StringSliceVar(&c.envFiles, "env", nil, "Extra dotenv files, later ones win")

	root.AddCommand(&cobra.Command{
		Use:   "watch <file>",
		Short: "Extract again every time a local file is saved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, args, true)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), app.VersionString())
		},
	})
	return root
}

func (c *cli) run(cmd *cobra.Command, args []string, watch bool) error {
	cfg, err := c.resolveConfig(cmd, args)
	if err != nil {
		return usageError{err}
	}
	if err := app.ValidateConfig(cfg); err != nil {
		return usageError{err}
	}
	_, closer := app.SetupLogging(app.LogOptions{Verbose: cfg.Verbose, File: cfg.LogFile, Console: c.stderr})
	defer closer.Close()
	log.Debug().Str("version", app.Version).Str("target", cfg.Target).Msg("starting")

	ctx := cmd.Context()
	a, err := app.New(ctx, cfg, app.WithStreams(c.stdin, c.stdout, c.stderr))
	if err != nil {
		return usageError{fmt.Errorf("init app: %w", err)}
	}

	if watch {
		return a.Watch(ctx)
	}
	if err := a.Run(ctx); err != nil {
		log.Debug().Err(err).Msg("run failed")
		return err
	}
	return nil
}

// resolveConfig layers the configuration: defaults, then the config file,
// then FIELDTEXT_* variables (including dotenv files), then flags the user
// set explicitly.
func (c *cli) resolveConfig(cmd *cobra.Command, args []string) (app.Config, error) {
	app.LoadDotEnv()
	if err := app.LoadEnvFiles(c.envFiles...); err != nil {
		return app.Config{}, fmt.Errorf("load env: %w", err)
	}
	cfg := defaultConfig()
	if c.configPath != "" {
		fc, err := app.LoadConfigFile(c.configPath)
		if err != nil {
			return app.Config{}, fmt.Errorf("load config: %w", err)
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	app.ApplyEnvOverrides(&cfg)
	overlayFlags(cmd, &cfg, c.flags)
	if len(args) > 0 {
		cfg.Target = args[0]
	}
	return cfg, nil
}

func defaultConfig() app.Config {
	return app.Config{
		OutputDir: app.OutputDirDefault,
		Format:    app.FormatDefault,
		Headless:  true,
		Width:     app.WidthDefault,
		Height:    app.HeightDefault,
		Timeout:   app.TimeoutDefault,
		UserAgent: app.UserAgentDefault,
		CacheDir:  app.CacheDirDefault,
	}
}

// flagFields copies one explicitly set flag onto the resolved config.
var flagFields = map[string]func(dst *app.Config, src app.Config){
	"output":            func(d *app.Config, s app.Config) { d.OutputDir = s.OutputDir },
	"format":            func(d *app.Config, s app.Config) { d.Format = s.Format },
	"prompt":            func(d *app.Config, s app.Config) { d.Prompt = s.Prompt },
	"overwrite":         func(d *app.Config, s app.Config) { d.Overwrite = s.Overwrite },
	"manifest":          func(d *app.Config, s app.Config) { d.Manifest = s.Manifest },
	"stdout":            func(d *app.Config, s app.Config) { d.Stdout = s.Stdout },
	"json":              func(d *app.Config, s app.Config) { d.JSON = s.JSON },
	"browser":           func(d *app.Config, s app.Config) { d.Browser = s.Browser },
	"browser.bin":       func(d *app.Config, s app.Config) { d.BrowserBin = s.BrowserBin },
	"browser.url":       func(d *app.Config, s app.Config) { d.BrowserControlURL = s.BrowserControlURL },
	"browser.headless":  func(d *app.Config, s app.Config) { d.Headless = s.Headless },
	"browser.profile":   func(d *app.Config, s app.Config) { d.ProfileDir = s.ProfileDir },
	"browser.width":     func(d *app.Config, s app.Config) { d.Width = s.Width },
	"browser.height":    func(d *app.Config, s app.Config) { d.Height = s.Height },
	"timeout":           func(d *app.Config, s app.Config) { d.Timeout = s.Timeout },
	"user-agent":        func(d *app.Config, s app.Config) { d.UserAgent = s.UserAgent },
	"cache.dir":         func(d *app.Config, s app.Config) { d.CacheDir = s.CacheDir },
	"cache.maxAge":      func(d *app.Config, s app.Config) { d.CacheMaxAge = s.CacheMaxAge },
	"cache.clear":       func(d *app.Config, s app.Config) { d.CacheClear = s.CacheClear },
	"cache.strictPerms": func(d *app.Config, s app.Config) { d.CacheStrictPerms = s.CacheStrictPerms },
	"verbose":           func(d *app.Config, s app.Config) { d.Verbose = s.Verbose },
	"log.file":          func(d *app.Config, s app.Config) { d.LogFile = s.LogFile },
}

func overlayFlags(cmd *cobra.Command, dst *app.Config, src app.Config) {
	for name, set := range flagFields {
		if cmd.Flags().Changed(name) {
			set(dst, src)
		}
	}
}
