package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hyperifyio/fieldtext/internal/export"
	yaml "gopkg.in/yaml.v3"
)

// FileConfig represents the single-file configuration schema.
type FileConfig struct {
	Target string `yaml:"target" json:"target"`

	Browser struct {
		Enable     bool          `yaml:"enable" json:"enable"`
		Bin        string        `yaml:"bin" json:"bin"`
		ControlURL string        `yaml:"controlURL" json:"controlURL"`
		Headless   *bool         `yaml:"headless" json:"headless"`
		Profile    string        `yaml:"profile" json:"profile"`
		Width      int           `yaml:"width" json:"width"`
		Height     int           `yaml:"height" json:"height"`
		Timeout    time.Duration `yaml:"timeout" json:"timeout"`
	} `yaml:"browser" json:"browser"`

	Output struct {
		Dir       string `yaml:"dir" json:"dir"`
		Format    string `yaml:"format" json:"format"`
		Prompt    bool   `yaml:"prompt" json:"prompt"`
		Overwrite bool   `yaml:"overwrite" json:"overwrite"`
		Manifest  bool   `yaml:"manifest" json:"manifest"`
	} `yaml:"output" json:"output"`

	UserAgent string `yaml:"userAgent" json:"userAgent"`

	Cache struct {
		Dir         string        `yaml:"dir" json:"dir"`
		MaxAge      time.Duration `yaml:"maxAge" json:"maxAge"`
		Clear       bool          `yaml:"clear" json:"clear"`
		StrictPerms bool          `yaml:"strictPerms" json:"strictPerms"`
	} `yaml:"cache" json:"cache"`

	Log struct {
		File string `yaml:"file" json:"file"`
	} `yaml:"log" json:"log"`

	Verbose bool `yaml:"verbose" json:"verbose"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		// Try YAML then JSON
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays values from FileConfig into cfg for any fields that
// are currently unset or still at their flag default.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	if cfg.Target == "" && fc.Target != "" {
		cfg.Target = fc.Target
	}

	if !cfg.Browser && fc.Browser.Enable {
		cfg.Browser = true
	}
	if cfg.BrowserBin == "" && fc.Browser.Bin != "" {
		cfg.BrowserBin = fc.Browser.Bin
	}
	if cfg.BrowserControlURL == "" && fc.Browser.ControlURL != "" {
		cfg.BrowserControlURL = fc.Browser.ControlURL
	}
	if fc.Browser.Headless != nil {
		cfg.Headless = *fc.Browser.Headless
	}
	if cfg.ProfileDir == "" && fc.Browser.Profile != "" {
		cfg.ProfileDir = fc.Browser.Profile
	}
	if (cfg.Width == 0 || cfg.Width == WidthDefault) && fc.Browser.Width > 0 {
		cfg.Width = fc.Browser.Width
	}
	if (cfg.Height == 0 || cfg.Height == HeightDefault) && fc.Browser.Height > 0 {
		cfg.Height = fc.Browser.Height
	}
	if (cfg.Timeout == 0 || cfg.Timeout == TimeoutDefault) && fc.Browser.Timeout > 0 {
		cfg.Timeout = fc.Browser.Timeout
	}

	if (cfg.OutputDir == "" || cfg.OutputDir == OutputDirDefault) && fc.Output.Dir != "" {
		cfg.OutputDir = fc.Output.Dir
	}
	if (cfg.Format == "" || cfg.Format == FormatDefault) && fc.Output.Format != "" {
		cfg.Format = fc.Output.Format
	}
	if !cfg.Prompt && fc.Output.Prompt {
		cfg.Prompt = true
	}
	if !cfg.Overwrite && fc.Output.Overwrite {
		cfg.Overwrite = true
	}
	if !cfg.Manifest && fc.Output.Manifest {
		cfg.Manifest = true
	}

	if (cfg.UserAgent == "" || cfg.UserAgent == UserAgentDefault) && fc.UserAgent != "" {
		cfg.UserAgent = fc.UserAgent
	}
	if (cfg.CacheDir == "" || cfg.CacheDir == CacheDirDefault) && fc.Cache.Dir != "" {
		cfg.CacheDir = fc.Cache.Dir
	}
	if cfg.CacheMaxAge == 0 && fc.Cache.MaxAge > 0 {
		cfg.CacheMaxAge = fc.Cache.MaxAge
	}
	if !cfg.CacheClear && fc.Cache.Clear {
		cfg.CacheClear = true
	}
	if !cfg.CacheStrictPerms && fc.Cache.StrictPerms {
		cfg.CacheStrictPerms = true
	}

	if cfg.LogFile == "" && fc.Log.File != "" {
		cfg.LogFile = fc.Log.File
	}
	if !cfg.Verbose && fc.Verbose {
		cfg.Verbose = true
	}
}

// ErrPromptWithStdin rejects --prompt when the document itself is read from
// standard input, which leaves nothing to answer the prompt.
var ErrPromptWithStdin = errors.New("config: --prompt cannot be used when the target is read from stdin (-)")

// ValidateConfig performs minimal schema validation for required settings.
func ValidateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.Target) == "" {
		return errors.New("config: target is required (file, - or URL)")
	}
	if _, err := export.ParseFormat(cfg.Format); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if strings.TrimSpace(cfg.Target) == "-" && cfg.Prompt && !cfg.Stdout && !cfg.JSON {
		return ErrPromptWithStdin
	}
	if cfg.Stdout && cfg.JSON {
		return errors.New("config: --stdout and --json are mutually exclusive")
	}
	if cfg.Width < 0 || cfg.Height < 0 || cfg.Timeout < 0 || cfg.CacheMaxAge < 0 {
		return errors.New("config: negative values are not allowed")
	}
	return nil
}
