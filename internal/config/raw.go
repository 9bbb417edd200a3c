package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		// Not present.
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawBindings struct {
	Move   *string `yaml:"move"`
	Resize *string `yaml:"resize"`
	Close  *string `yaml:"close"`
	Cycle  *string `yaml:"cycle"`
}

type RawMenuConfig struct {
	Enabled        *bool       `yaml:"enabled"`
	Height         *int        `yaml:"height"`
	Label          *string     `yaml:"label"`
	PaletteBackend *string     `yaml:"palette_backend"`
	Items          *[]MenuItem `yaml:"items"`
}

type RawIPCConfig struct {
	Enabled *bool `yaml:"enabled"`
}

// RawConfig is one YAML file as written. Nil fields were not set and leave
// the value underneath untouched when files are merged.
type RawConfig struct {
	Include IncludeList `yaml:"include"`

	Display        *string        `yaml:"display"`
	LogLevel       *string        `yaml:"log_level"`
	TitleBarHeight *int           `yaml:"title_bar_height"`
	BorderWidth    *int           `yaml:"border_width"`
	BorderColor    *string        `yaml:"border_color"`
	FrameColor     *string        `yaml:"frame_color"`
	TitleColor     *string        `yaml:"title_color"`
	Wallpaper      *string        `yaml:"wallpaper"`
	Bindings       *RawBindings   `yaml:"bindings"`
	Desktops       *int           `yaml:"desktops"`
	Hotkeys        *[]Hotkey      `yaml:"hotkeys"`
	Menu           *RawMenuConfig `yaml:"menu"`
	IPC            *RawIPCConfig  `yaml:"ipc"`
}

func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c
	out.Include = nil

	if overlay.Display != nil {
		out.Display = overlay.Display
	}
	if overlay.LogLevel != nil {
		out.LogLevel = overlay.LogLevel
	}
	if overlay.TitleBarHeight != nil {
		out.TitleBarHeight = overlay.TitleBarHeight
	}
	if overlay.BorderWidth != nil {
		out.BorderWidth = overlay.BorderWidth
	}
	if overlay.BorderColor != nil {
		out.BorderColor = overlay.BorderColor
	}
	if overlay.FrameColor != nil {
		out.FrameColor = overlay.FrameColor
	}
	if overlay.TitleColor != nil {
		out.TitleColor = overlay.TitleColor
	}
	if overlay.Wallpaper != nil {
		out.Wallpaper = overlay.Wallpaper
	}
	if overlay.Bindings != nil {
		merged := mergeRawBindings(derefOr(c.Bindings), *overlay.Bindings)
		out.Bindings = &merged
	}
	if overlay.Desktops != nil {
		out.Desktops = overlay.Desktops
	}
	// Lists replace rather than append.
	if overlay.Hotkeys != nil {
		out.Hotkeys = overlay.Hotkeys
	}
	if overlay.Menu != nil {
		merged := mergeRawMenu(derefOr(c.Menu), *overlay.Menu)
		out.Menu = &merged
	}
	if overlay.IPC != nil {
		merged := derefOr(c.IPC)
		if overlay.IPC.Enabled != nil {
			merged.Enabled = overlay.IPC.Enabled
		}
		out.IPC = &merged
	}
	return out
}

func derefOr[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

func mergeRawBindings(base RawBindings, overlay RawBindings) RawBindings {
	out := base
	if overlay.Move != nil {
		out.Move = overlay.Move
	}
	if overlay.Resize != nil {
		out.Resize = overlay.Resize
	}
	if overlay.Close != nil {
		out.Close = overlay.Close
	}
	if overlay.Cycle != nil {
		out.Cycle = overlay.Cycle
	}
	return out
}

func mergeRawMenu(base RawMenuConfig, overlay RawMenuConfig) RawMenuConfig {
	out := base
	if overlay.Enabled != nil {
		out.Enabled = overlay.Enabled
	}
	if overlay.Height != nil {
		out.Height = overlay.Height
	}
	if overlay.Label != nil {
		out.Label = overlay.Label
	}
	if overlay.PaletteBackend != nil {
		out.PaletteBackend = overlay.PaletteBackend
	}
	if overlay.Items != nil {
		out.Items = overlay.Items
	}
	return out
}
