// Package config loads the edsod tool configuration.
//
// The configuration is an optional YAML file providing defaults for command
// line flags. A missing file is not an error; flags given on the command line
// always win.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/canopen-tools/edsod/pkg/eds"
	"github.com/canopen-tools/edsod/pkg/log"
)

// EnvPath names the environment variable overriding the config file location.
const EnvPath = "EDSOD_CONFIG"

// maxNodeID is the highest CANopen node-ID.
const maxNodeID = 127

// Config holds tool defaults.
type Config struct {
	// NodeID resolves $NODEID values. 0 means not set.
	NodeID uint8 `yaml:"nodeId"`

	// Naming selects the compact sub-object naming strategy:
	// underscore, underscore-hex or space.
	Naming string `yaml:"naming"`

	// Format is the default output format of show: text, json or yaml.
	Format string `yaml:"format"`

	// LogLevel is the lowest diagnostic level printed by lint.
	LogLevel string `yaml:"logLevel"`

	// CacheDir is where compile stores snapshots.
	CacheDir string `yaml:"cacheDir"`

	// Diagnostics, when set, is a CBOR file every import appends its
	// diagnostics to.
	Diagnostics string `yaml:"diagnostics,omitempty"`
}

// LoadError describes a configuration that could not be loaded.
type LoadError struct {
	// File is the path to the file that failed to load.
	File string

	// Message describes the error.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

func (e *LoadError) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	if e.File == "" {
		return msg
	}
	return e.File + ": " + msg
}

func (e *LoadError) Unwrap() error { return e.Cause }

// Default returns the built-in configuration.
func Default() *Config {
	cacheDir := ".edsod-cache"
	if dir, err := os.UserCacheDir(); err == nil {
		cacheDir = filepath.Join(dir, "edsod")
	}
	return &Config{
		Naming:   "underscore-hex",
		Format:   "text",
		LogLevel: "warning",
		CacheDir: cacheDir,
	}
}

// DefaultPath returns the config file location: $EDSOD_CONFIG when set, else
// edsod/config.yaml in the user config directory.
func DefaultPath() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "edsod", "config.yaml")
}

// Parse parses a configuration from YAML bytes. Keys absent from data keep
// their default values.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, &LoadError{
			Message: "failed to parse YAML",
			Cause:   err,
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load loads a configuration file. An empty path or a missing file yields
// the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, &LoadError{
			File:    path,
			Message: "failed to read file",
			Cause:   err,
		}
	}

	cfg, err := Parse(data)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.File = path
		}
		return nil, err
	}
	return cfg, nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	if c.NodeID > maxNodeID {
		return &LoadError{Message: "nodeId " + strconv.Itoa(int(c.NodeID)) + " exceeds 127"}
	}
	if _, err := eds.ParseNaming(c.Naming); err != nil {
		return &LoadError{Message: "invalid naming", Cause: err}
	}
	switch c.Format {
	case "", "text", "json", "yaml":
	default:
		return &LoadError{Message: "invalid format " + strconv.Quote(c.Format)}
	}
	if c.LogLevel != "" {
		if _, err := log.ParseLevel(c.LogLevel); err != nil {
			return &LoadError{Message: "invalid logLevel", Cause: err}
		}
	}
	return nil
}

// Level returns the parsed log level, LevelWarning when unset.
func (c *Config) Level() log.Level {
	if l, err := log.ParseLevel(c.LogLevel); err == nil {
		return l
	}
	return log.LevelWarning
}

// Importer returns an importer configured with the node ID and naming
// strategy. nodeID overrides the configured node ID when non-zero.
func (c *Config) Importer(nodeID uint8, logger log.Logger) *eds.Importer {
	naming, err := eds.ParseNaming(c.Naming)
	if err != nil {
		naming = eds.NameUnderscoreHex
	}
	if nodeID == 0 {
		nodeID = c.NodeID
	}
	return &eds.Importer{
		NodeID: nodeID,
		Naming: naming,
		Logger: logger,
	}
}
