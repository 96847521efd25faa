package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-mdlive/internal/fileutil"
	"github.com/alnah/go-mdlive/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// AppDir is the directory name used under the user config directory.
const AppDir = "go-mdlive"

// Field length limits.
const (
	MaxHostLength  = 253  // RFC 1035
	MaxURLLength   = 2048 // Browser limit
	MaxPathLength  = 4096 // PATH_MAX
	MaxStyleLength = 64 << 10
	MaxNameLength  = 100
)

// Defaults applied by DefaultConfig.
const (
	DefaultInterval       = "2s"
	DefaultTimeout        = "10s"
	DefaultHost           = "localhost"
	DefaultPort           = "0"
	DefaultStyle          = "default"
	DefaultHighlightStyle = "github"
	DefaultStoreFile      = "settings.db"
	MinInterval           = 100 * time.Millisecond
)

// Config holds all configuration for a preview session.
type Config struct {
	Poll     PollConfig     `yaml:"poll"`
	Server   ServerConfig   `yaml:"server"`
	Render   RenderConfig   `yaml:"render"`
	Store    StoreConfig    `yaml:"store"`
	Assets   AssetsConfig   `yaml:"assets"`
	Settings SettingsConfig `yaml:"settings"`
}

// PollConfig defines the reload poller.
type PollConfig struct {
	Interval string `yaml:"interval"` // Go duration, at least 100ms (default: 2s)
	Timeout  string `yaml:"timeout"`  // Per-fetch timeout (default: 10s)
}

// ServerConfig defines the local preview server.
type ServerConfig struct {
	Host string `yaml:"host"` // default: localhost
	Port string `yaml:"port"` // "0" picks a free port
	Open bool   `yaml:"open"` // open the preview in the default browser
}

// RenderConfig defines what rendered pages look like.
type RenderConfig struct {
	Style          string `yaml:"style"`          // Style name, CSS file path or inline CSS
	HighlightStyle string `yaml:"highlightStyle"` // Chroma style name
	MathJax        *bool  `yaml:"mathjax"`        // nil = enabled
	MathJaxURL     string `yaml:"mathjaxURL"`     // empty = built-in CDN URL
	Sanitize       bool   `yaml:"sanitize"`
}

// StoreConfig defines where settings persist.
type StoreConfig struct {
	Path string `yaml:"path"` // SQLite file, "~" expanded (empty = user config dir)
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // Empty = use embedded assets
}

// SettingsConfig seeds the settings store. A key already present in the
// store is left alone.
type SettingsConfig struct {
	EnableRender      *bool `yaml:"enableRender"`      // seeds ENABLE_RENDER as a bool
	AllowTxtExtension *bool `yaml:"allowTxtExtension"` // seeds ALLOW_TXT_EXTENSION as the string "true" or "false"
}

// Validate checks value ranges and field lengths.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	if _, err := c.Poll.IntervalDuration(); err != nil {
		return err
	}
	if _, err := c.Poll.TimeoutDuration(); err != nil {
		return err
	}

	if err := validateFieldLength("server.host", c.Server.Host, MaxHostLength); err != nil {
		return err
	}
	if c.Server.Port != "" {
		port, err := strconv.Atoi(c.Server.Port)
		if err != nil || port < 0 || port > 65535 {
			return fmt.Errorf("%w: server.port: %q is not a port number", ErrInvalidValue, c.Server.Port)
		}
	}

	if err := validateFieldLength("render.style", c.Render.Style, MaxStyleLength); err != nil {
		return err
	}
	if err := validateFieldLength("render.highlightStyle", c.Render.HighlightStyle, MaxNameLength); err != nil {
		return err
	}
	if err := validateFieldLength("render.mathjaxURL", c.Render.MathJaxURL, MaxURLLength); err != nil {
		return err
	}
	if c.Render.MathJaxURL != "" &&
		!strings.HasPrefix(c.Render.MathJaxURL, "https://") && !strings.HasPrefix(c.Render.MathJaxURL, "http://") {
		return fmt.Errorf("%w: render.mathjaxURL: must be an http(s) URL", ErrInvalidValue)
	}

	if err := validateFieldLength("store.path", c.Store.Path, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("assets.basePath", c.Assets.BasePath, MaxPathLength); err != nil {
		return err
	}

	return nil
}

// IntervalDuration parses Interval, falling back to DefaultInterval.
func (p PollConfig) IntervalDuration() (time.Duration, error) {
	d, err := parseDuration("poll.interval", p.Interval, DefaultInterval)
	if err != nil {
		return 0, err
	}
	if d < MinInterval {
		return 0, fmt.Errorf("%w: poll.interval: %v is below %v", ErrInvalidValue, d, MinInterval)
	}
	return d, nil
}

// TimeoutDuration parses Timeout, falling back to DefaultTimeout.
func (p PollConfig) TimeoutDuration() (time.Duration, error) {
	d, err := parseDuration("poll.timeout", p.Timeout, DefaultTimeout)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: poll.timeout: must be positive", ErrInvalidValue)
	}
	return d, nil
}

func parseDuration(field, value, fallback string) (time.Duration, error) {
	if value == "" {
		value = fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidValue, field, err)
	}
	return d, nil
}

// MathJaxEnabled reports whether MathJax is injected; unset means enabled.
func (r RenderConfig) MathJaxEnabled() bool {
	return r.MathJax == nil || *r.MathJax
}

// StorePath returns the settings database path with "~" expanded,
// defaulting to settings.db under the user config directory.
func (c *Config) StorePath() (string, error) {
	if c.Store.Path != "" {
		return fileutil.ExpandHome(c.Store.Path)
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving config directory: %w", err)
	}
	return filepath.Join(dir, AppDir, DefaultStoreFile), nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns the configuration used without a config file.
func DefaultConfig() *Config {
	return &Config{
		Poll:   PollConfig{Interval: DefaultInterval, Timeout: DefaultTimeout},
		Server: ServerConfig{Host: DefaultHost, Port: DefaultPort},
		Render: RenderConfig{Style: DefaultStyle, HighlightStyle: DefaultHighlightStyle},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Fields absent from the file keep their DefaultConfig values.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SearchPaths lists the files tried for a config name, in order.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-mdlive/
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, AppDir, name+ext))
		}
	}
	return paths
}

// resolveConfigPath searches for a config file by name in standard locations.
func resolveConfigPath(name string) (string, error) {
	paths := SearchPaths(name)
	for _, p := range paths {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(paths, ", "))
}
