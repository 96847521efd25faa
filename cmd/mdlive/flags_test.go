package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/alnah/go-mdlive/internal/config"
)

func TestParseServeFlags(t *testing.T) {
	t.Parallel()

	f, args, err := parseServeFlags([]string{
		"doc.md", "-i", "500ms", "--port", "9000", "--open",
		"--style", "dark", "--no-mathjax", "--sanitize", "-q",
	}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("parseServeFlags() error: %v", err)
	}
	if len(args) != 1 || args[0] != "doc.md" {
		t.Errorf("args = %v, want [doc.md]", args)
	}
	if f.poll.interval != "500ms" || f.server.port != "9000" || !f.server.open {
		t.Errorf("flags = %+v", f)
	}
	if !f.render.noMathJax || !f.render.sanitize || !f.common.quiet {
		t.Errorf("render/common flags = %+v %+v", f.render, f.common)
	}
	if !f.changed("interval") || f.changed("host") {
		t.Error("changed() should track explicit flags only")
	}
}

func TestParseServeFlags_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{name: "unknown flag", args: []string{"--nope"}, wantErr: ErrUsage},
		{name: "missing value", args: []string{"--interval"}, wantErr: ErrUsage},
		{name: "help", args: []string{"--help"}, wantErr: errHelpShown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, _, err := parseServeFlags(tt.args, &bytes.Buffer{})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseSettingsFlags(t *testing.T) {
	t.Parallel()

	f, args, err := parseSettingsFlags([]string{"set", "ALLOW_TXT_EXTENSION", "true", "--string", "--json"}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("parseSettingsFlags() error: %v", err)
	}
	if len(args) != 3 || !f.asString || !f.json {
		t.Errorf("args = %v, flags = %+v", args, f)
	}
}

func TestMergeServeFlags(t *testing.T) {
	t.Parallel()

	t.Run("explicit flags override", func(t *testing.T) {
		t.Parallel()

		f, _, err := parseServeFlags([]string{"--interval", "1s", "--host", "0.0.0.0", "--no-mathjax", "--store", ":memory:"}, &bytes.Buffer{})
		if err != nil {
			t.Fatal(err)
		}
		cfg := config.DefaultConfig()
		cfg.Server.Port = "7000"
		mergeServeFlags(f, cfg)

		if cfg.Poll.Interval != "1s" || cfg.Server.Host != "0.0.0.0" || cfg.Store.Path != ":memory:" {
			t.Errorf("cfg = %+v", cfg)
		}
		if cfg.Server.Port != "7000" {
			t.Errorf("unset --port overrode config: %q", cfg.Server.Port)
		}
		if cfg.Render.MathJaxEnabled() {
			t.Error("--no-mathjax should disable MathJax")
		}
	})

	t.Run("no flags keeps config", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		mergeServeFlags(&serveFlags{}, cfg)
		if cfg.Poll.Interval != config.DefaultInterval || !cfg.Render.MathJaxEnabled() {
			t.Errorf("cfg changed: %+v", cfg)
		}
	})
}
