package cliconfig

import "os"

// Environment variable names recognized by fahlink.
const (
	EnvHost           = "FAHLINK_HOST"
	EnvPort           = "FAHLINK_PORT"
	EnvGroup          = "FAHLINK_GROUP"
	EnvConnectTimeout = "FAHLINK_CONNECT_TIMEOUT"
	EnvBackoffBase    = "FAHLINK_BACKOFF_BASE"
	EnvBackoffMax     = "FAHLINK_BACKOFF_MAX"
	EnvMetrics        = "FAHLINK_METRICS"
)

// ApplyEnvConfig applies FAHLINK_* environment variables to the Config.
// Env values override file config but are overridden by explicit flags.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("host", os.Getenv(EnvHost), &cfg.Host)
	if err := s.setIntFromString("port", os.Getenv(EnvPort), &cfg.Port); err != nil {
		return err
	}
	s.setString("group", os.Getenv(EnvGroup), &cfg.Group)

	if err := s.setDuration("connect-timeout", os.Getenv(EnvConnectTimeout), &cfg.ConnectTimeout); err != nil {
		return err
	}
	if err := s.setDuration("backoff-base", os.Getenv(EnvBackoffBase), &cfg.BackoffBase); err != nil {
		return err
	}
	if err := s.setDuration("backoff-max", os.Getenv(EnvBackoffMax), &cfg.BackoffMax); err != nil {
		return err
	}
	if err := s.setBoolFromString("metrics", os.Getenv(EnvMetrics), &cfg.MetricsEnabled); err != nil {
		return err
	}

	return nil
}
