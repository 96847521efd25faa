package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdlive <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve      Render a document and reload it when it changes")
	fmt.Fprintln(w, "  settings   List, read or change stored settings")
	fmt.Fprintln(w, "  doctor     Check the browser and settings store")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'mdlive help <command>' for details on a specific command.")
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdlive serve <url-or-path> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render a document and re-render it whenever its content changes.")
	fmt.Fprintln(w, "Rendering only happens while the ENABLE_RENDER setting is true.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  url-or-path    http(s) or file URL, or a local file path")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Polling:")
	fmt.Fprintln(w, "  -i, --interval <d>        Poll interval (default: 2s, min: 100ms)")
	fmt.Fprintln(w, "      --timeout <d>         Per-fetch timeout (default: 10s)")
	fmt.Fprintln(w, "      --no-watch            Do not watch local files for changes")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Display:")
	fmt.Fprintln(w, "      --host <s>            Preview server host (default: localhost)")
	fmt.Fprintln(w, "  -p, --port <n>            Preview server port (default: any free port)")
	fmt.Fprintln(w, "      --open                Open the preview in the default browser")
	fmt.Fprintln(w, "      --browser             Render into a Chrome tab instead")
	fmt.Fprintln(w, "      --headless            With --browser, run Chrome without a window")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rendering:")
	fmt.Fprintln(w, "      --style <s>           Style name, CSS file path or inline CSS")
	fmt.Fprintln(w, "      --highlight-style <s> Code highlight style (default: github)")
	fmt.Fprintln(w, "      --asset-path <dir>    Custom styles/ and scripts/ directory")
	fmt.Fprintln(w, "      --mathjax-url <url>   MathJax bundle URL")
	fmt.Fprintln(w, "      --no-mathjax          Do not load MathJax")
	fmt.Fprintln(w, "      --sanitize            Filter rendered HTML through an allow-list")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Settings:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "      --store <path>        Settings database (:memory: for none)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug logs")
}

// printSettingsUsage prints usage for the settings command.
func printSettingsUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdlive settings <list|get|set> [key] [value] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Read or change stored settings.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Subcommands:")
	fmt.Fprintln(w, "  list               Print every setting")
	fmt.Fprintln(w, "  get <key>          Print one setting")
	fmt.Fprintln(w, "  set <key> <value>  Store a setting; true/false are stored as bools")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Keys:")
	fmt.Fprintln(w, "  ENABLE_RENDER          bool true turns rendering on")
	fmt.Fprintln(w, "  ALLOW_TXT_EXTENSION    string \"true\" allows .txt URLs (use --string)")
	fmt.Fprintln(w, "  LIVERELOADJS_DETECTED  bool true pauses reloads")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --string         Store the value as a string")
	fmt.Fprintln(w, "      --json           Print as JSON")
	fmt.Fprintln(w, "      --store <path>   Settings database path")
	fmt.Fprintln(w, "  -c, --config <name>  Config file name or path")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "serve":
		printServeUsage(env.Stdout)
	case "settings":
		printSettingsUsage(env.Stdout)
	case "doctor":
		fmt.Fprintln(env.Stdout, "Usage: mdlive doctor [--json]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Check Chrome availability and that the settings store is writable.")
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: mdlive version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: mdlive help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
