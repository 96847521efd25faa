package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alnah/go-mdlive/internal/config"
	"github.com/alnah/go-mdlive/internal/fileutil"
	"github.com/alnah/go-mdlive/internal/hints"
)

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string // MDLIVE_CONFIG: config file name or path
	Store      string // MDLIVE_STORE: settings database path
	Interval   string // MDLIVE_INTERVAL: poll interval (e.g. 500ms)
	Host       string // MDLIVE_HOST: preview server host
	Port       string // MDLIVE_PORT: preview server port
	Style      string // MDLIVE_STYLE: style name, CSS path or inline CSS
}

// knownEnvVars lists valid MDLIVE_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"MDLIVE_CONFIG":    true,
	"MDLIVE_STORE":     true,
	"MDLIVE_INTERVAL":  true,
	"MDLIVE_HOST":      true,
	"MDLIVE_PORT":      true,
	"MDLIVE_STYLE":     true,
	"MDLIVE_CONTAINER": true, // doctor override
}

// loadEnvConfig reads configuration from environment variables.
func loadEnvConfig() *envConfig {
	return &envConfig{
		ConfigPath: os.Getenv("MDLIVE_CONFIG"),
		Store:      os.Getenv("MDLIVE_STORE"),
		Interval:   os.Getenv("MDLIVE_INTERVAL"),
		Host:       os.Getenv("MDLIVE_HOST"),
		Port:       os.Getenv("MDLIVE_PORT"),
		Style:      os.Getenv("MDLIVE_STYLE"),
	}
}

// warnUnknownEnvVars prints warnings for unrecognized MDLIVE_* variables.
// Helps catch typos like MDLIVE_INTERVALL.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "MDLIVE_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig applies set environment variables over cfg.
// Precedence: CLI flags > env vars > config file > defaults
// (CLI flags are applied afterwards by the command).
// Values are checked by the config.Validate call that follows.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Store != "" {
		cfg.Store.Path = env.Store
	}
	if env.Interval != "" {
		cfg.Poll.Interval = env.Interval
	}
	if env.Host != "" {
		cfg.Server.Host = env.Host
	}
	if env.Port != "" {
		cfg.Server.Port = env.Port
	}
	if env.Style != "" {
		cfg.Render.Style = env.Style
	}
}

// resolveConfig loads the config named by --config or MDLIVE_CONFIG
// (defaults if neither), then applies the environment.
func resolveConfig(flagConfig string, stderr io.Writer) (*config.Config, error) {
	env := loadEnvConfig()
	warnUnknownEnvVars(stderr)

	name := flagConfig
	if name == "" {
		name = env.ConfigPath
	}

	cfg := config.DefaultConfig()
	if name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			return nil, withConfigHint(err, name)
		}
		cfg = loaded
	}

	applyEnvConfig(env, cfg)
	return cfg, nil
}

// withConfigHint appends search locations to a config-not-found error for
// config names.
func withConfigHint(err error, name string) error {
	if errors.Is(err, config.ErrConfigNotFound) && !fileutil.IsFilePath(name) {
		return fmt.Errorf("%w%s", err, hints.ForConfigNotFound(config.SearchPaths(name)))
	}
	return err
}
