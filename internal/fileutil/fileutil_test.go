package fileutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alnah/go-mdlive/internal/fileutil"
)

func TestFileExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
		want bool
	}{
		{name: "regular file", path: file, want: true},
		{name: "directory", path: dir, want: false},
		{name: "missing", path: filepath.Join(dir, "missing"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := fileutil.FileExists(tt.path); got != tt.want {
				t.Errorf("FileExists(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestIsFilePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  bool
	}{
		{"dark", false},
		{"my-style", false},
		{"./custom.css", true},
		{"/abs/style.css", true},
		{`C:\styles\a.css`, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := fileutil.IsFilePath(tt.input); got != tt.want {
				t.Errorf("IsFilePath(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsCSS(t *testing.T) {
	t.Parallel()

	if !fileutil.IsCSS("body { color: red; }") {
		t.Error("IsCSS(rule) = false, want true")
	}
	if fileutil.IsCSS("default") {
		t.Error("IsCSS(name) = true, want false")
	}
}

func TestExpandHome(t *testing.T) {
	t.Parallel()

	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}

	tests := []struct {
		input string
		want  string
	}{
		{"~/data/settings.db", filepath.Join(home, "data/settings.db")},
		{"~", home},
		{"/abs/path", "/abs/path"},
		{"rel/~/path", "rel/~/path"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			got, err := fileutil.ExpandHome(tt.input)
			if err != nil || got != tt.want {
				t.Errorf("ExpandHome(%q) = %q, %v; want %q", tt.input, got, err, tt.want)
			}
		})
	}
}

func TestIsWritableDir(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "store")
	if err := fileutil.IsWritableDir(dir); err != nil {
		t.Errorf("IsWritableDir(%q) error: %v", dir, err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("probe file left behind: %v", entries)
	}
}
