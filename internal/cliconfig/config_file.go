package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	Host           string `toml:"host"`
	Port           int    `toml:"port"`
	Group          string `toml:"group"`
	ConnectTimeout string `toml:"connect_timeout"`
	BackoffBase    string `toml:"backoff_base"`
	BackoffMax     string `toml:"backoff_max"`
	Metrics        *bool  `toml:"metrics"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.fahlink/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".fahlink", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("host", fc.Host, &cfg.Host)
	s.setInt("port", fc.Port, &cfg.Port)
	s.setString("group", fc.Group, &cfg.Group)

	if err := s.setDuration("connect-timeout", fc.ConnectTimeout, &cfg.ConnectTimeout); err != nil {
		return err
	}
	if err := s.setDuration("backoff-base", fc.BackoffBase, &cfg.BackoffBase); err != nil {
		return err
	}
	if err := s.setDuration("backoff-max", fc.BackoffMax, &cfg.BackoffMax); err != nil {
		return err
	}

	s.setBool("metrics", fc.Metrics, &cfg.MetricsEnabled)

	return nil
}
