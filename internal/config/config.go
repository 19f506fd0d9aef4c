// Package config resolves the console's runtime configuration from a
// TOML profile file layered under NOLA_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// DefaultSecret keys the encrypted session store when no secret is
// configured. Release builds bake a deployment-specific value in with
// -ldflags "-X .../internal/config.DefaultSecret=...".
var DefaultSecret = "nola-console-dev-secret"

type Config struct {
	BaseURL     string // NOLA_BASE_URL (default "http://localhost:8080")
	StateDir    string // NOLA_STATE_DIR (default ~/.local/state/nola)
	StoreSecret string // NOLA_STORE_SECRET (default DefaultSecret)
	LoginRoute  string // NOLA_LOGIN_ROUTE (default "/console")
}

// fileConfig is the on-disk profile shape (~/.config/nola/config.toml).
type fileConfig struct {
	BaseURL     string `toml:"base_url"`
	StateDir    string `toml:"state_dir"`
	StoreSecret string `toml:"store_secret"`
	LoginRoute  string `toml:"login_route"`
}

// Load resolves configuration: built-in defaults, overridden by the
// profile file, overridden by environment variables. A missing profile
// file is fine; an unparsable one is an error.
func Load() (*Config, error) {
	c := &Config{
		BaseURL:     "http://localhost:8080",
		StoreSecret: DefaultSecret,
		LoginRoute:  "/console",
	}

	home, err := os.UserHomeDir()
	if err == nil {
		c.StateDir = filepath.Join(home, ".local", "state", "nola")
	}

	path := os.Getenv("NOLA_CONFIG")
	if path == "" && home != "" {
		path = filepath.Join(home, ".config", "nola", "config.toml")
	}
	if path != "" {
		var fc fileConfig
		if _, err := toml.DecodeFile(path, &fc); err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("loading %s: %w", path, err)
			}
		} else {
			applyFile(c, fc)
		}
	}

	c.BaseURL = envOrDefault("NOLA_BASE_URL", c.BaseURL)
	c.StateDir = envOrDefault("NOLA_STATE_DIR", c.StateDir)
	c.StoreSecret = envOrDefault("NOLA_STORE_SECRET", c.StoreSecret)
	c.LoginRoute = envOrDefault("NOLA_LOGIN_ROUTE", c.LoginRoute)

	if c.BaseURL == "" {
		return nil, fmt.Errorf("NOLA_BASE_URL is required")
	}
	if c.StateDir == "" {
		return nil, fmt.Errorf("NOLA_STATE_DIR is required (no home directory found)")
	}
	return c, nil
}

func applyFile(c *Config, fc fileConfig) {
	if fc.BaseURL != "" {
		c.BaseURL = fc.BaseURL
	}
	if fc.StateDir != "" {
		c.StateDir = fc.StateDir
	}
	if fc.StoreSecret != "" {
		c.StoreSecret = fc.StoreSecret
	}
	if fc.LoginRoute != "" {
		c.LoginRoute = fc.LoginRoute
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
