package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return path
}

func boolPtr(b bool) *bool { return &b }

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() error: %v", err)
	}
	interval, _ := cfg.Poll.IntervalDuration()
	if interval != 2*time.Second {
		t.Errorf("interval = %v, want 2s", interval)
	}
	if cfg.Server.Host != "localhost" || cfg.Server.Port != "0" {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Render.Style != "default" || cfg.Render.HighlightStyle != "github" {
		t.Errorf("Render = %+v", cfg.Render)
	}
	if !cfg.Render.MathJaxEnabled() {
		t.Error("MathJax should be enabled by default")
	}
	if cfg.Settings.EnableRender != nil || cfg.Settings.AllowTxtExtension != nil {
		t.Error("settings seeds should be unset")
	}
}

func TestValidateFieldLength(t *testing.T) {
	tests := []struct {
		name      string
		fieldName string
		value     string
		maxLength int
		wantErr   bool
	}{
		{name: "empty value is valid", fieldName: "test", value: "", maxLength: 10},
		{name: "value at limit is valid", fieldName: "test", value: "1234567890", maxLength: 10},
		{name: "value over limit returns error", fieldName: "test.field", value: "12345678901", maxLength: 10, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateFieldLength(tt.fieldName, tt.value, tt.maxLength)
			if tt.wantErr {
				if !errors.Is(err, ErrFieldTooLong) {
					t.Errorf("error = %v, want ErrFieldTooLong", err)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "interval at minimum", mutate: func(c *Config) { c.Poll.Interval = "100ms" }},
		{name: "interval below minimum", mutate: func(c *Config) { c.Poll.Interval = "50ms" }, wantErr: ErrInvalidValue},
		{name: "interval not a duration", mutate: func(c *Config) { c.Poll.Interval = "2" }, wantErr: ErrInvalidValue},
		{name: "negative timeout", mutate: func(c *Config) { c.Poll.Timeout = "-1s" }, wantErr: ErrInvalidValue},
		{name: "empty port", mutate: func(c *Config) { c.Server.Port = "" }},
		{name: "port out of range", mutate: func(c *Config) { c.Server.Port = "70000" }, wantErr: ErrInvalidValue},
		{name: "port not numeric", mutate: func(c *Config) { c.Server.Port = "http" }, wantErr: ErrInvalidValue},
		{name: "host too long", mutate: func(c *Config) { c.Server.Host = strings.Repeat("h", MaxHostLength+1) }, wantErr: ErrFieldTooLong},
		{name: "mathjax url scheme", mutate: func(c *Config) { c.Render.MathJaxURL = "javascript:alert(1)" }, wantErr: ErrInvalidValue},
		{name: "mathjax url https", mutate: func(c *Config) { c.Render.MathJaxURL = "https://cdn.example/mj.js" }},
		{name: "highlight style too long", mutate: func(c *Config) { c.Render.HighlightStyle = strings.Repeat("x", MaxNameLength+1) }, wantErr: ErrFieldTooLong},
		{name: "store path too long", mutate: func(c *Config) { c.Store.Path = strings.Repeat("p", MaxPathLength+1) }, wantErr: ErrFieldTooLong},
		{name: "asset path too long", mutate: func(c *Config) { c.Assets.BasePath = strings.Repeat("p", MaxPathLength+1) }, wantErr: ErrFieldTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("empty name returns ErrEmptyConfigName", func(t *testing.T) {
		_, err := LoadConfig("")
		if !errors.Is(err, ErrEmptyConfigName) {
			t.Errorf("error = %v, want ErrEmptyConfigName", err)
		}
	})

	t.Run("valid file path loads config", func(t *testing.T) {
		path := writeConfig(t, `poll:
  interval: "500ms"
server:
  port: "8090"
  open: true
render:
  style: "dark"
  mathjax: false
  sanitize: true
store:
  path: "/tmp/mdlive/settings.db"
settings:
  enableRender: true
  allowTxtExtension: false
`)

		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if d, _ := cfg.Poll.IntervalDuration(); d != 500*time.Millisecond {
			t.Errorf("interval = %v, want 500ms", d)
		}
		if cfg.Server.Port != "8090" || !cfg.Server.Open {
			t.Errorf("Server = %+v", cfg.Server)
		}
		if cfg.Render.Style != "dark" || cfg.Render.MathJaxEnabled() || !cfg.Render.Sanitize {
			t.Errorf("Render = %+v", cfg.Render)
		}
		if cfg.Settings.EnableRender == nil || !*cfg.Settings.EnableRender {
			t.Error("Settings.EnableRender should be true")
		}
		if cfg.Settings.AllowTxtExtension == nil || *cfg.Settings.AllowTxtExtension {
			t.Error("Settings.AllowTxtExtension should be false")
		}
	})

	t.Run("absent fields keep defaults", func(t *testing.T) {
		path := writeConfig(t, "server:\n  open: true\n")

		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Server.Host != DefaultHost || cfg.Render.HighlightStyle != DefaultHighlightStyle {
			t.Errorf("defaults lost: %+v", cfg)
		}
	})

	t.Run("nonexistent file path returns ErrConfigNotFound", func(t *testing.T) {
		_, err := LoadConfig("/nonexistent/path/config.yaml")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("error = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("unknown name returns ErrConfigNotFound", func(t *testing.T) {
		_, err := LoadConfig("mdlive-config-that-does-not-exist")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("error = %v, want ErrConfigNotFound", err)
		}
		if err != nil && !strings.Contains(err.Error(), ".yml") {
			t.Errorf("error should list tried paths: %v", err)
		}
	})

	t.Run("invalid YAML returns ErrConfigParse", func(t *testing.T) {
		path := writeConfig(t, "render: [unclosed")
		if _, err := LoadConfig(path); !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("unknown field returns ErrConfigParse in strict mode", func(t *testing.T) {
		path := writeConfig(t, "render:\n  colour: red\n")
		if _, err := LoadConfig(path); !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("invalid value fails validation", func(t *testing.T) {
		path := writeConfig(t, "poll:\n  interval: \"10ms\"\n")
		if _, err := LoadConfig(path); !errors.Is(err, ErrInvalidValue) {
			t.Errorf("error = %v, want ErrInvalidValue", err)
		}
	})
}

func TestLoadConfig_ByNameInWorkingDir(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	if err := os.WriteFile(filepath.Join(dir, "work.yml"), []byte("server:\n  port: \"9000\"\n"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig("work")
	if err != nil {
		t.Fatalf("LoadConfig(work) error = %v", err)
	}
	if cfg.Server.Port != "9000" {
		t.Errorf("Server.Port = %q, want 9000", cfg.Server.Port)
	}
}

func TestSearchPaths(t *testing.T) {
	paths := SearchPaths("mdlive")
	if len(paths) < 2 || paths[0] != "mdlive.yaml" || paths[1] != "mdlive.yml" {
		t.Fatalf("SearchPaths() = %v", paths)
	}
	if len(paths) == 4 && !strings.Contains(paths[2], AppDir) {
		t.Errorf("user path %q should be under %s", paths[2], AppDir)
	}
}

func TestConfig_StorePath(t *testing.T) {
	t.Run("explicit path", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Store.Path = "/var/lib/mdlive.db"
		got, err := cfg.StorePath()
		if err != nil || got != "/var/lib/mdlive.db" {
			t.Errorf("StorePath() = %q, %v", got, err)
		}
	})

	t.Run("home expanded", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)

		cfg := DefaultConfig()
		cfg.Store.Path = "~/mdlive.db"
		got, err := cfg.StorePath()
		if err != nil || got != filepath.Join(home, "mdlive.db") {
			t.Errorf("StorePath() = %q, %v", got, err)
		}
	})

	t.Run("default under user config dir", func(t *testing.T) {
		cfgHome := t.TempDir()
		t.Setenv("XDG_CONFIG_HOME", cfgHome)
		t.Setenv("HOME", t.TempDir())

		got, err := DefaultConfig().StorePath()
		if err != nil {
			t.Fatalf("StorePath() error: %v", err)
		}
		if filepath.Base(got) != DefaultStoreFile || !strings.Contains(got, AppDir) {
			t.Errorf("StorePath() = %q", got)
		}
	})
}

func TestRenderConfig_MathJaxEnabled(t *testing.T) {
	tests := []struct {
		in   *bool
		want bool
	}{
		{in: nil, want: true},
		{in: boolPtr(true), want: true},
		{in: boolPtr(false), want: false},
	}
	for _, tt := range tests {
		if got := (RenderConfig{MathJax: tt.in}).MathJaxEnabled(); got != tt.want {
			t.Errorf("MathJaxEnabled(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
