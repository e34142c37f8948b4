// Package config loads the phetch configuration snapshot. The core never
// mutates it; flags may override individual fields at startup.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pfr-dev/phetch/internal/gopher"
)

// FileName is the config file looked up inside Dir().
const FileName = "config.yml"

// Config is the startup configuration snapshot.
type Config struct {
	Start    string `yaml:"start"`     // page opened when no URL is given
	TLS      bool   `yaml:"tls"`       // default to encrypted transport
	Tor      bool   `yaml:"tor"`       // route through the local SOCKS proxy
	TorAddr  string `yaml:"tor_addr"`  // SOCKS proxy address
	NoVerify bool   `yaml:"no_verify"` // skip TLS certificate validation
	Wide     bool   `yaml:"wide"`      // disable line truncation
	Emoji    bool   `yaml:"emoji"`     // emoji item-type glyphs
	NoColor  bool   `yaml:"no_color"`  // plain output
	Timeout  int    `yaml:"timeout"`   // fetch timeout in seconds
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		TorAddr: gopher.DefaultTorAddr,
		Timeout: 10,
	}
}

// Dir returns the phetch config directory, creating nothing.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(base, "phetch"), nil
}

// Load reads the config file at path. A missing file is not an error; it
// yields the defaults. A file that exists but does not parse is an error,
// because silently ignoring a broken config misleads the user.
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Default(), fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.TorAddr == "" {
		cfg.TorAddr = gopher.DefaultTorAddr
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = Default().Timeout
	}
	return cfg, nil
}

// Mode maps the transport booleans onto a TransportMode.
func (c Config) Mode() gopher.TransportMode {
	switch {
	case c.Tor && c.TLS:
		return gopher.ModeTorTLS
	case c.Tor:
		return gopher.ModeTor
	case c.TLS:
		return gopher.ModeTLS
	default:
		return gopher.ModePlain
	}
}

// FetchTimeout returns the timeout as a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}
