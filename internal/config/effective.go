package config

import (
	"fmt"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// BuildEffectiveConfig applies raw on top of DefaultConfig.
func BuildEffectiveConfig(raw RawConfig) *Config {
	cfg := DefaultConfig()

	set(&cfg.Display, raw.Display)
	set(&cfg.LogLevel, raw.LogLevel)
	set(&cfg.TitleBarHeight, raw.TitleBarHeight)
	set(&cfg.BorderWidth, raw.BorderWidth)
	set(&cfg.BorderColor, raw.BorderColor)
	set(&cfg.FrameColor, raw.FrameColor)
	set(&cfg.TitleColor, raw.TitleColor)
	set(&cfg.Wallpaper, raw.Wallpaper)
	set(&cfg.Desktops, raw.Desktops)
	set(&cfg.Hotkeys, raw.Hotkeys)

	if b := raw.Bindings; b != nil {
		set(&cfg.Bindings.Move, b.Move)
		set(&cfg.Bindings.Resize, b.Resize)
		set(&cfg.Bindings.Close, b.Close)
		set(&cfg.Bindings.Cycle, b.Cycle)
	}
	if m := raw.Menu; m != nil {
		set(&cfg.Menu.Enabled, m.Enabled)
		set(&cfg.Menu.Height, m.Height)
		set(&cfg.Menu.Label, m.Label)
		set(&cfg.Menu.PaletteBackend, m.PaletteBackend)
		set(&cfg.Menu.Items, m.Items)
	}
	if raw.IPC != nil {
		set(&cfg.IPC.Enabled, raw.IPC.Enabled)
	}
	return cfg
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
