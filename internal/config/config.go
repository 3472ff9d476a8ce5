// Package config loads the visor.yaml file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/everydev1618/govisor/container"
)

// DefaultPath is where the CLI looks for its configuration.
const DefaultPath = "visor.yaml"

// ErrAddonNotFound is returned when a slug is not configured.
var ErrAddonNotFound = errors.New("add-on not configured")

// Config is the on-disk configuration.
//
//	docker_host: unix:///var/run/docker.sock
//	version_key: HASSIO_VERSION
//	stop_timeout: 10
//	log_level: info
//	journal: ~/.visor/journal.db
//	paths:
//	  config: /usr/share/hassio/homeassistant
//	  ssl: /usr/share/hassio/ssl
//	core:
//	  url: ws://homeassistant:8123/api/websocket
//	  token: ${SUPERVISOR_TOKEN}
//	addons:
//	  - slug: mosquitto
//	    image: homeassistant/amd64-addon-mosquitto:6.4.0
//	    ports:
//	      1883/tcp: 1883
type Config struct {
	DockerHost  string                  `yaml:"docker_host,omitempty"`
	VersionKey  string                  `yaml:"version_key,omitempty"`
	StopTimeout int                     `yaml:"stop_timeout,omitempty"`
	LogLevel    string                  `yaml:"log_level,omitempty"`
	Journal     string                  `yaml:"journal,omitempty"`
	Paths       container.Paths         `yaml:"paths"`
	Core        Core                    `yaml:"core,omitempty"`
	Addons      []container.AddonConfig `yaml:"addons"`
}

// Core is the front-end websocket the progress of jobs is sent to.
type Core struct {
	URL   string `yaml:"url,omitempty"`
	Token string `yaml:"token,omitempty"`
}

// Load reads and validates a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse parses configuration content, fills defaults and validates it.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.VersionKey == "" {
		c.VersionKey = container.DefaultVersionKey
	}
	if c.StopTimeout == 0 {
		c.StopTimeout = container.DefaultStopTimeout
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	c.Core.Token = os.ExpandEnv(c.Core.Token)
	c.Journal = expandHome(c.Journal)
}

// Validate checks the configuration for mistakes that would only show up
// once a container is started.
func (c *Config) Validate() error {
	if c.Paths.ConfigDir == "" || c.Paths.SSLDir == "" {
		return errors.New("paths.config and paths.ssl are required")
	}
	if c.StopTimeout < 0 {
		return fmt.Errorf("stop_timeout must not be negative, got %d", c.StopTimeout)
	}
	if _, err := c.Level(); err != nil {
		return err
	}

	seen := make(map[string]bool, len(c.Addons))
	for i := range c.Addons {
		a := &c.Addons[i]
		if seen[a.Slug] {
			return fmt.Errorf("add-on %q configured twice", a.Slug)
		}
		seen[a.Slug] = true

		if _, err := container.NewAddonSpec(a, c.Paths); err != nil {
			return fmt.Errorf("add-on %d (%s): %w", i, a.Slug, err)
		}
	}
	return nil
}

// Level returns the slog level named by log_level.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}

// Addon returns the configuration of the add-on with the given slug.
func (c *Config) Addon(slug string) (*container.AddonConfig, error) {
	for i := range c.Addons {
		if c.Addons[i].Slug == slug {
			return &c.Addons[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrAddonNotFound, slug)
}

// Spec returns the container spec for the add-on with the given slug.
func (c *Config) Spec(slug string) (container.Spec, error) {
	addon, err := c.Addon(slug)
	if err != nil {
		return container.Spec{}, err
	}
	return container.NewAddonSpec(addon, c.Paths)
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
