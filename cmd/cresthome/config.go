package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the server's startup settings. Host and auth token are
// optional: when both are present the server authenticates once at startup,
// otherwise the client is expected to call crestron_authenticate.
type Config struct {
	// Host is the Crestron Home controller hostname or IP.
	Host string `yaml:"host"`
	// AuthToken is the Web API token from the Crestron Home app.
	AuthToken string `yaml:"auth_token"`
	// TimeoutSeconds bounds each controller call. Defaults to 30.
	TimeoutSeconds int `yaml:"timeout_seconds"`
	// InsecureSkipVerify disables TLS certificate verification. Controllers
	// ship self-signed certificates, so this defaults to true.
	InsecureSkipVerify *bool `yaml:"insecure_skip_verify"`
}

// loadConfig reads the YAML config at path. An empty path or a missing file
// yields the zero config; env vars are applied on top either way.
func loadConfig(path string) (Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// fall through to env
		case err != nil:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if v := os.Getenv("CRESTRON_HOST"); v != "" {
		cfg.Host = v
	}
	if v := os.Getenv("CRESTRON_AUTH_TOKEN"); v != "" {
		cfg.AuthToken = v
	}

	return cfg, nil
}

// applyOverrides applies command-line values on top of the file and env
// configuration. Nil means the flag was not given.
func (c *Config) applyOverrides(timeoutSeconds *int, insecure *bool) {
	if timeoutSeconds != nil {
		c.TimeoutSeconds = *timeoutSeconds
	}
	if insecure != nil {
		c.InsecureSkipVerify = insecure
	}
}

// Timeout returns the per-call timeout with the default applied.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}

	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SkipTLSVerify reports whether certificate verification is disabled.
func (c Config) SkipTLSVerify() bool {
	if c.InsecureSkipVerify == nil {
		return true
	}

	return *c.InsecureSkipVerify
}

// loadDotEnv loads environment variables from the given file. A missing file
// is not an error so the flag default works in environments without one.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load env file %s: %w", path, err)
	}

	return nil
}
