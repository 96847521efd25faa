package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/alnah/go-mdlive/internal/settings"
)

// settingView is one setting as printed by the settings command.
type settingView struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
	Type  string `json:"type"`
}

func newSettingView(key string, value any) settingView {
	typ := "string"
	if _, ok := value.(bool); ok {
		typ = "bool"
	}
	return settingView{Key: key, Value: value, Type: typ}
}

// runSettings lists, reads or writes settings in the store.
func runSettings(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseSettingsFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(positional) == 0 {
		printSettingsUsage(env.Stderr)
		return fmt.Errorf("%w: missing subcommand", ErrUsage)
	}

	cfg, err := resolveConfig(flags.common.config, env.Stderr)
	if err != nil {
		return err
	}
	if flags.store != "" {
		cfg.Store.Path = flags.store
	}

	sub, rest := positional[0], positional[1:]
	want := map[string]int{"list": 0, "get": 1, "set": 2}
	n, ok := want[sub]
	if !ok {
		printSettingsUsage(env.Stderr)
		return fmt.Errorf("%w: unknown subcommand %q", ErrUsage, sub)
	}
	if len(rest) != n {
		return fmt.Errorf("%w: settings %s takes %d argument(s)", ErrUsage, sub, n)
	}

	store, err := openStore(cfg, env)
	if err != nil {
		return err
	}
	defer store.Close()

	switch sub {
	case "list":
		entries, err := store.List(ctx)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrStore, err)
		}
		return printSettings(env.Stdout, entries, flags.json)

	case "get":
		v, ok, err := store.Get(ctx, rest[0])
		if err != nil {
			return fmt.Errorf("%w: %v", ErrStore, err)
		}
		if !ok {
			return fmt.Errorf("%w: %s", ErrSettingNotFound, rest[0])
		}
		return printSetting(env.Stdout, newSettingView(rest[0], v), flags.json)

	default: // set
		v := parseSettingValue(rest[1], flags.asString)
		if err := store.Set(ctx, rest[0], v); err != nil {
			return fmt.Errorf("%w: %v", ErrStore, err)
		}
		return printSetting(env.Stdout, newSettingView(rest[0], v), flags.json)
	}
}

// parseSettingValue reads "true" and "false" as bools unless asString.
func parseSettingValue(s string, asString bool) any {
	if asString {
		return s
	}
	switch s {
	case "true":
		return true
	case "false":
		return false
	default:
		return s
	}
}

func printSettings(w io.Writer, entries []settings.Entry, asJSON bool) error {
	views := make([]settingView, 0, len(entries))
	for _, e := range entries {
		views = append(views, newSettingView(e.Key, e.Value))
	}
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(views)
	}
	for _, v := range views {
		fmt.Fprintln(w, formatSetting(v))
	}
	return nil
}

func printSetting(w io.Writer, v settingView, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	fmt.Fprintln(w, formatSetting(v))
	return nil
}

// formatSetting quotes strings so that "true" and true read differently.
func formatSetting(v settingView) string {
	if v.Type == "string" {
		return fmt.Sprintf("%s = %q (string)", v.Key, v.Value)
	}
	return fmt.Sprintf("%s = %v (bool)", v.Key, v.Value)
}
