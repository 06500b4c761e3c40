package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// envPrefix namespaces every environment variable the application reads.
const envPrefix = "FIELDTEXT_"

func getenv(key string) string {
	return strings.TrimSpace(os.Getenv(envPrefix + key))
}

// ApplyEnvOverrides overrides cfg fields with FIELDTEXT_* environment
// variables when they are set. Callers apply it after the config file and
// before explicitly set flags.
func ApplyEnvOverrides(cfg *Config) {
	if cfg == nil {
		return
	}
	setString := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	setString(&cfg.Target, "TARGET")
	setString(&cfg.BrowserBin, "BROWSER_BIN")
	setString(&cfg.BrowserControlURL, "BROWSER_URL")
	setString(&cfg.ProfileDir, "BROWSER_PROFILE")
	setString(&cfg.OutputDir, "OUTPUT_DIR")
	setString(&cfg.Format, "FORMAT")
	setString(&cfg.UserAgent, "USER_AGENT")
	setString(&cfg.CacheDir, "CACHE_DIR")
	setString(&cfg.LogFile, "LOG_FILE")

	if d, ok := envDuration("CACHE_MAX_AGE"); ok {
		cfg.CacheMaxAge = d
	}
	if d, ok := envDuration("TIMEOUT"); ok {
		cfg.Timeout = d
	}
	if n, err := strconv.Atoi(getenv("WIDTH")); err == nil && n > 0 {
		cfg.Width = n
	}
	if n, err := strconv.Atoi(getenv("HEIGHT")); err == nil && n > 0 {
		cfg.Height = n
	}

	setBool := func(dst *bool, key string) {
		if v, ok := envBool(key); ok {
			*dst = v
		}
	}
	setBool(&cfg.Browser, "BROWSER")
	setBool(&cfg.Headless, "HEADLESS")
	setBool(&cfg.Manifest, "MANIFEST")
	setBool(&cfg.Verbose, "VERBOSE")
	setBool(&cfg.CacheClear, "CACHE_CLEAR")
	setBool(&cfg.CacheStrictPerms, "CACHE_STRICT_PERMS")
}

func envDuration(key string) (time.Duration, bool) {
	s := getenv(key)
	if s == "" {
		return 0, false
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, false
	}
	return d, true
}

// envBool reads truthy and falsey spellings; anything else counts as unset.
func envBool(key string) (bool, bool) {
	switch strings.ToLower(getenv(key)) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	}
	return false, false
}
