package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-rod/rod/lib/launcher"

	"github.com/alnah/go-mdlive/internal/fileutil"
	"github.com/alnah/go-mdlive/internal/settings"
)

// Finding levels, in increasing severity.
const (
	levelOK    = "ok"
	levelWarn  = "warn"
	levelError = "error"
)

// finding is one line of the doctor report.
type finding struct {
	Section string `json:"section"`
	Level   string `json:"level"`
	Message string `json:"message"`
}

// doctorReport is the doctor command output.
type doctorReport struct {
	Status   string    `json:"status"` // "ready", "warnings", "errors"
	Platform string    `json:"platform"`
	Chrome   string    `json:"chrome,omitempty"`
	Store    string    `json:"store,omitempty"`
	Findings []finding `json:"findings"`
}

func (r *doctorReport) add(section, level, format string, args ...any) {
	r.Findings = append(r.Findings, finding{Section: section, Level: level, Message: fmt.Sprintf(format, args...)})
}

// has reports whether any finding is at level.
func (r *doctorReport) has(level string) bool {
	for _, f := range r.Findings {
		if f.Level == level {
			return true
		}
	}
	return false
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = ready (including warnings), 1 = errors found.
func runDoctorCmd(args []string, env *Environment) int {
	jsonOutput := false
	for _, arg := range args {
		if arg == "--json" {
			jsonOutput = true
		}
	}

	r := diagnose(env)

	if jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(r)
	} else {
		printDoctorReport(env.Stdout, r)
	}

	if r.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// diagnose runs every check. Chrome only matters for serve --browser, so
// problems with it are warnings.
func diagnose(env *Environment) *doctorReport {
	r := &doctorReport{Platform: runtime.GOOS + "/" + runtime.GOARCH}

	checkChrome(r)
	checkSandbox(r)
	checkStore(r, env.Stderr)

	switch {
	case r.has(levelError):
		r.Status = "errors"
	case r.has(levelWarn):
		r.Status = "warnings"
	default:
		r.Status = "ready"
	}
	return r
}

func checkChrome(r *doctorReport) {
	const section = "Chrome/Chromium (serve --browser)"

	bin := os.Getenv("ROD_BROWSER_BIN")
	if bin == "" {
		var found bool
		if bin, found = launcher.LookPath(); !found {
			r.add(section, levelWarn, "not found; rod downloads one on first use, or set ROD_BROWSER_BIN")
			return
		}
	}
	if _, err := os.Stat(bin); err != nil {
		r.add(section, levelWarn, "not found at %s", bin)
		return
	}
	r.Chrome = bin
	r.add(section, levelOK, "found at %s", bin)

	out, err := exec.Command(bin, "--version").Output() // #nosec G204 -- path from launcher or ROD_BROWSER_BIN
	if err != nil {
		r.add(section, levelWarn, "could not get version: %v", err)
		return
	}
	r.add(section, levelOK, "version: %s", strings.TrimSpace(string(out)))
}

// checkSandbox warns when Chrome would start sandboxed where that fails.
func checkSandbox(r *doctorReport) {
	const section = "Environment"

	r.add(section, levelOK, "platform: %s", r.Platform)

	container, hint := isContainer()
	if container {
		r.add(section, levelOK, "container: detected (%s)", hint)
	}
	ci := isCI()
	if ci {
		r.add(section, levelOK, "CI: detected")
	}
	if (container || ci) && r.Chrome != "" && os.Getenv("ROD_NO_SANDBOX") != "1" {
		r.add(section, levelWarn, "set ROD_NO_SANDBOX=1 to run serve --browser here")
	}
}

// isContainer reports whether we run in a container, and which signal said so.
func isContainer() (bool, string) {
	switch {
	case os.Getenv("MDLIVE_CONTAINER") == "1":
		return true, "MDLIVE_CONTAINER=1"
	case fileutil.FileExists("/.dockerenv"):
		return true, "/.dockerenv"
	case os.Getenv("container") != "":
		return true, "container=" + os.Getenv("container")
	case os.Getenv("KUBERNETES_SERVICE_HOST") != "":
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

func isCI() bool {
	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		if os.Getenv(v) != "" {
			return true
		}
	}
	return false
}

// checkStore verifies the settings database directory accepts writes.
func checkStore(r *doctorReport, stderr io.Writer) {
	const section = "Settings store"

	cfg, err := resolveConfig("", stderr)
	if err != nil {
		r.add(section, levelError, "config: %v", err)
		return
	}
	path, err := cfg.StorePath()
	if err != nil {
		r.add(section, levelError, "%v", err)
		return
	}
	r.Store = path

	if path == settings.MemoryPath {
		r.add(section, levelOK, "in memory, settings are not kept")
		return
	}
	if err := fileutil.IsWritableDir(filepath.Dir(path)); err != nil {
		r.add(section, levelError, "%s is not writable: %v", filepath.Dir(path), err)
		return
	}
	r.add(section, levelOK, "%s: writable", path)
}

// printDoctorReport writes findings grouped by section.
func printDoctorReport(w io.Writer, r *doctorReport) {
	fmt.Fprintln(w, "mdlive doctor")

	section := ""
	for _, f := range r.Findings {
		if f.Section != section {
			section = f.Section
			fmt.Fprintln(w)
			fmt.Fprintln(w, section)
		}
		fmt.Fprintf(w, "  [%s] %s\n", strings.ToUpper(f.Level), f.Message)
	}
	fmt.Fprintln(w)

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to serve")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	default:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
