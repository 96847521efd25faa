package mdlive

import (
	"context"

	"cdr.dev/slog"

	"github.com/alnah/go-mdlive/internal/settings"
)

// Setting keys read by Page.
const (
	// KeyEnableRender turns rendering on when it holds the bool true.
	KeyEnableRender = "ENABLE_RENDER"
	// KeyAllowTxtExtension allows .txt URLs when it holds the string "true".
	KeyAllowTxtExtension = "ALLOW_TXT_EXTENSION"
	// KeyLiveReloadDetected pauses polling when it holds the bool true.
	KeyLiveReloadDetected = "LIVERELOADJS_DETECTED"
)

// SettingsStore is a key-value store of bool and string scalars.
// Implementations must keep bool true distinct from the string "true".
type SettingsStore interface {
	Get(ctx context.Context, key string) (any, bool, error)
	Set(ctx context.Context, key string, value any) error
}

// NewMemoryStore returns a process-local SettingsStore.
func NewMemoryStore() SettingsStore {
	return settings.NewMemory()
}

// Compile-time interface checks.
var (
	_ SettingsStore = (*settings.Memory)(nil)
	_ SettingsStore = (*settings.SQLite)(nil)
)

// setting reads key, logging store errors and reporting them as missing.
func (p *Page) setting(ctx context.Context, key string) (any, bool) {
	v, ok, err := p.store.Get(ctx, key)
	if err != nil {
		p.log.Warn(ctx, "reading setting failed", slog.F("key", key), slog.Error(err))
		return nil, false
	}
	return v, ok
}

// boolSetting is true only for a stored bool true.
func (p *Page) boolSetting(ctx context.Context, key string) bool {
	v, ok := p.setting(ctx, key)
	b, isBool := v.(bool)
	return ok && isBool && b
}

func (p *Page) renderEnabled(ctx context.Context) bool {
	return p.boolSetting(ctx, KeyEnableRender)
}

func (p *Page) liveReloadDetected(ctx context.Context) bool {
	return p.boolSetting(ctx, KeyLiveReloadDetected)
}

// txtAllowed is true only for the exact string "true"; a bool true does
// not count.
func (p *Page) txtAllowed(ctx context.Context) bool {
	v, ok := p.setting(ctx, KeyAllowTxtExtension)
	s, isString := v.(string)
	return ok && isString && s == "true"
}

func (p *Page) storedFingerprint(ctx context.Context) (string, bool) {
	v, ok := p.setting(ctx, FingerprintKey(p.url))
	s, isString := v.(string)
	return s, ok && isString && s != ""
}
