// Package config loads sprintline's configuration from the
// environment and an optional config file.
//
// Environment variables use the SPRINTLINE_ prefix (SPRINTLINE_API_URL,
// SPRINTLINE_SESSION, ...) and override the file. The file lives at
// $XDG_CONFIG_HOME/sprintline/config.yaml and is optional.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds everything the server needs to run.
type Config struct {
	// APIURL is the backend base URL (scheme://host[:port]).
	APIURL string
	// Session is the opaque backend credential forwarded on every
	// call. May be empty at startup; tools then fail per-invocation
	// with a missing-authentication error.
	Session string
	// Timeout bounds each backend request.
	Timeout time.Duration
	// Retries enables bounded retry of transport failures on reads.
	// 0 disables retries.
	Retries int
	// JournalPath overrides the operation journal location. Empty
	// selects the default under the home directory.
	JournalPath string
}

// Load reads configuration from env and the optional config file.
func Load() (*Config, error) {
	v := viper.New()
	v.SetDefault("timeout", "30s")
	v.SetDefault("retries", 0)

	v.SetEnvPrefix("SPRINTLINE")
	v.AutomaticEnv()

	if dir, err := os.UserConfigDir(); err == nil {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(dir, "sprintline"))
		// The file is optional; only a malformed file is an error.
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	return &Config{
		APIURL:      strings.TrimRight(strings.TrimSpace(v.GetString("api_url")), "/"),
		Session:     strings.TrimSpace(v.GetString("session")),
		Timeout:     v.GetDuration("timeout"),
		Retries:     v.GetInt("retries"),
		JournalPath: strings.TrimSpace(v.GetString("journal_path")),
	}, nil
}

// Validate ensures the config can serve. The session credential is
// deliberately not required here: its absence is surfaced per tool
// invocation as an authentication-context error.
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("api_url is required: set SPRINTLINE_API_URL to the backend base URL")
	}
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api_url %q is not a valid http(s) URL", c.APIURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.Retries < 0 || c.Retries > 10 {
		return fmt.Errorf("retries must be between 0 and 10, got %d", c.Retries)
	}
	return nil
}
