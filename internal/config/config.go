// Package config loads the clobd runtime configuration from environment
// variables, using viper the way the rest of the retrieval pack does
// (bind, set defaults, fail fast on anything required but absent).
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds every env-sourced setting named in SPEC_FULL.md §6.
type Config struct {
	HTTPHost string

	HTTPPort int

	UpstreamHost string

	UpstreamPort int

	NATSHost string

	NATSPort int
}

const envPrefix = "CLOB"

// Load reads CLOB_-prefixed environment variables and returns a Config.
// Host variables default to sensible local values; ports have no
// default and are required, consistent with §6: "missing required var
// is fatal."
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	v.SetDefault("http_host", "0.0.0.0")
	v.SetDefault("upstream_host", "0.0.0.0")
	v.SetDefault("nats_host", "0.0.0.0")

	required := []string{"http_port", "upstream_port", "nats_port"}
	for _, key := range required {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("config: binding CLOB_%s: %w", upper(key), err)
		}
		if v.GetString(key) == "" {
			return nil, fmt.Errorf("config: required env var CLOB_%s is not set", upper(key))
		}
	}

	cfg := &Config{
		HTTPHost:     v.GetString("http_host"),
		HTTPPort:     v.GetInt("http_port"),
		UpstreamHost: v.GetString("upstream_host"),
		UpstreamPort: v.GetInt("upstream_port"),
		NATSHost:     v.GetString("nats_host"),
		NATSPort:     v.GetInt("nats_port"),
	}
	return cfg, nil
}

func upper(s string) string {
	out := []byte(s)
	for i, c := range out {
		if c >= 'a' && c <= 'z' {
			out[i] = c - ('a' - 'A')
		}
	}
	return string(out)
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.HTTPHost, c.HTTPPort)
}

func (c *Config) UpstreamAddr() string {
	return fmt.Sprintf("%s:%d", c.UpstreamHost, c.UpstreamPort)
}

func (c *Config) NATSAddr() string {
	return fmt.Sprintf("nats://%s:%d", c.NATSHost, c.NATSPort)
}
