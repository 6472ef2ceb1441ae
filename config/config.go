// Package config loads the protocolgen configuration file.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aerissecure/protocols/archive"
	"github.com/aerissecure/protocols/logging"
	"github.com/aerissecure/protocols/protocol"
	"github.com/aerissecure/protocols/server"
	"github.com/aerissecure/protocols/watch"
)

// DefaultPath is the configuration file read when none is given.
const DefaultPath = "protocolgen.yaml"

// Config holds all protocolgen configuration.
type Config struct {
	Logging  logging.Config  `yaml:"logging"`
	Protocol protocol.Config `yaml:"protocol"`
	Server   server.Config   `yaml:"server"`
	Archive  archive.Config  `yaml:"archive"`
	Watch    watch.Config    `yaml:"watch"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Logging:  logging.DefaultConfig(),
		Protocol: protocol.DefaultConfig(),
		Server:   server.DefaultConfig(),
		Archive:  archive.DefaultConfig(),
		Watch:    watch.DefaultConfig(),
	}
}

// Load reads the YAML file at path over the defaults and applies environment
// overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("PROTOCOLGEN_TEMPLATES_DIR"); v != "" {
		c.Protocol.TemplatesDir = v
	}
	if v := os.Getenv("PROTOCOLGEN_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("PROTOCOLGEN_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v, ok := os.LookupEnv("PROTOCOLGEN_LOG_FILE"); ok {
		c.Logging.File = v
	}

	// Archive upload
	if v := os.Getenv("PROTOCOLGEN_ARCHIVE_DRIVER"); v != "" {
		c.Archive.Driver = archive.Driver(v)
	}
	if v := os.Getenv("PROTOCOLGEN_S3_BUCKET"); v != "" {
		c.Archive.S3.Bucket = v
	}
	if v := os.Getenv("PROTOCOLGEN_S3_REGION"); v != "" {
		c.Archive.S3.Region = v
	}
	if v := os.Getenv("PROTOCOLGEN_S3_ENDPOINT"); v != "" {
		c.Archive.S3.Endpoint = v
	}
	if v := os.Getenv("PROTOCOLGEN_S3_PATH_STYLE"); v != "" {
		c.Archive.S3.PathStyle = strings.EqualFold(v, "true")
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Protocol.Validate(); err != nil {
		return fmt.Errorf("protocol: %w", err)
	}
	if err := c.Archive.Validate(); err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	return nil
}
