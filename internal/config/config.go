package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Wallpaper modes.
const (
	WallpaperAuto = "auto" // First adopted window, or a desktop-typed one.
	WallpaperType = "type" // Only windows typed _NET_WM_WINDOW_TYPE_DESKTOP.
	WallpaperNone = "none"
)

// Hotkey actions.
const (
	ActionExec          = "exec"
	ActionDesktop       = "desktop"
	ActionMoveToDesktop = "move_to_desktop"
	ActionPalette       = "palette"
)

// Bindings are the per-client key and button sequences, in xgbutil syntax
// ("Mod1-F4", "Mod4-Shift-1").
type Bindings struct {
	Move   string `yaml:"move"`
	Resize string `yaml:"resize"`
	Close  string `yaml:"close"`
	Cycle  string `yaml:"cycle"`
}

// Hotkey is a root-window key binding.
type Hotkey struct {
	Key     string `yaml:"key"`
	Action  string `yaml:"action"`
	Command string `yaml:"command,omitempty"`
	Desktop int    `yaml:"desktop,omitempty"`
}

// MenuItem is one launcher entry offered from the menu bar.
type MenuItem struct {
	Label   string `yaml:"label"`
	Command string `yaml:"command"`
}

// MenuConfig configures the menu bar along the top of the screen.
type MenuConfig struct {
	Enabled bool   `yaml:"enabled"`
	Height  int    `yaml:"height"`
	Label   string `yaml:"label"`
	// PaletteBackend selects the launcher: auto, rofi or dmenu.
	PaletteBackend string     `yaml:"palette_backend"`
	Items          []MenuItem `yaml:"items"`
}

// IPCConfig configures the control socket used by the CLI and MCP server.
type IPCConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Config holds the effective configuration.
type Config struct {
	Display        string     `yaml:"display"`
	LogLevel       string     `yaml:"log_level"`
	TitleBarHeight int        `yaml:"title_bar_height"`
	BorderWidth    int        `yaml:"border_width"`
	BorderColor    string     `yaml:"border_color"`
	FrameColor     string     `yaml:"frame_color"`
	TitleColor     string     `yaml:"title_color"`
	Wallpaper      string     `yaml:"wallpaper"`
	Bindings       Bindings   `yaml:"bindings"`
	Desktops       int        `yaml:"desktops"`
	Hotkeys        []Hotkey   `yaml:"hotkeys"`
	Menu           MenuConfig `yaml:"menu"`
	IPC            IPCConfig  `yaml:"ipc"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:       "info",
		TitleBarHeight: 22,
		BorderWidth:    1,
		BorderColor:    "#cccccc",
		FrameColor:     "#e6e6e6",
		TitleColor:     "#3c3c3c",
		Wallpaper:      WallpaperAuto,
		Bindings: Bindings{
			Move:   "Mod1-1",
			Resize: "Mod1-3",
			Close:  "Mod1-F4",
			Cycle:  "Mod1-Tab",
		},
		Desktops: 4,
		Hotkeys: []Hotkey{
			{Key: "Mod4-Return", Action: ActionExec, Command: "xterm"},
			{Key: "Mod4-space", Action: ActionPalette},
			{Key: "Mod4-1", Action: ActionDesktop, Desktop: 0},
			{Key: "Mod4-2", Action: ActionDesktop, Desktop: 1},
			{Key: "Mod4-3", Action: ActionDesktop, Desktop: 2},
			{Key: "Mod4-4", Action: ActionDesktop, Desktop: 3},
			{Key: "Mod4-Shift-1", Action: ActionMoveToDesktop, Desktop: 0},
			{Key: "Mod4-Shift-2", Action: ActionMoveToDesktop, Desktop: 1},
			{Key: "Mod4-Shift-3", Action: ActionMoveToDesktop, Desktop: 2},
			{Key: "Mod4-Shift-4", Action: ActionMoveToDesktop, Desktop: 3},
		},
		Menu: MenuConfig{
			Enabled:        true,
			Height:         20,
			Label:          "macwm",
			PaletteBackend: "auto",
			Items: []MenuItem{
				{Label: "Terminal", Command: "xterm"},
			},
		},
		IPC: IPCConfig{Enabled: true},
	}
}

// SlogLevel maps log_level to a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseColor parses "#rrggbb" (or "rrggbb") into a 24-bit pixel value.
func ParseColor(s string) (uint32, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return 0, fmt.Errorf("color %q must be #rrggbb", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("color %q must be #rrggbb", s)
	}
	return uint32(v), nil
}

// MustColor is ParseColor for values that already passed Validate.
func MustColor(s string) uint32 {
	v, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Save writes the configuration to path, creating its directory.
//
// Note: this marshals the effective config and will not preserve comments or
// includes from the original YAML.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warn, error")}
	}
	if c.TitleBarHeight < 0 {
		return &ValidationError{Path: "title_bar_height", Err: fmt.Errorf("title_bar_height must be >= 0")}
	}
	if c.BorderWidth < 0 {
		return &ValidationError{Path: "border_width", Err: fmt.Errorf("border_width must be >= 0")}
	}
	for path, color := range map[string]string{
		"border_color": c.BorderColor,
		"frame_color":  c.FrameColor,
		"title_color":  c.TitleColor,
	} {
		if _, err := ParseColor(color); err != nil {
			return &ValidationError{Path: path, Err: err}
		}
	}
	switch c.Wallpaper {
	case WallpaperAuto, WallpaperType, WallpaperNone:
	default:
		return &ValidationError{Path: "wallpaper", Err: fmt.Errorf("wallpaper must be one of: auto, type, none")}
	}

	for path, spec := range map[string]string{
		"bindings.move":   c.Bindings.Move,
		"bindings.resize": c.Bindings.Resize,
		"bindings.close":  c.Bindings.Close,
		"bindings.cycle":  c.Bindings.Cycle,
	} {
		if strings.TrimSpace(spec) == "" {
			return &ValidationError{Path: path, Err: fmt.Errorf("binding must not be empty")}
		}
	}

	if c.Desktops < 1 {
		return &ValidationError{Path: "desktops", Err: fmt.Errorf("desktops must be >= 1")}
	}

	seen := make(map[string]int, len(c.Hotkeys))
	for i, hk := range c.Hotkeys {
		path := fmt.Sprintf("hotkeys[%d]", i)
		if strings.TrimSpace(hk.Key) == "" {
			return &ValidationError{Path: "hotkeys", Err: fmt.Errorf("%s: key is required", path)}
		}
		if prev, dup := seen[hk.Key]; dup {
			return &ValidationError{Path: "hotkeys", Err: fmt.Errorf("%s: key %q already bound by hotkeys[%d]", path, hk.Key, prev)}
		}
		seen[hk.Key] = i
		switch hk.Action {
		case ActionExec:
			if strings.TrimSpace(hk.Command) == "" {
				return &ValidationError{Path: "hotkeys", Err: fmt.Errorf("%s: exec requires a command", path)}
			}
		case ActionDesktop, ActionMoveToDesktop:
			if hk.Desktop < 0 || hk.Desktop >= c.Desktops {
				return &ValidationError{Path: "hotkeys", Err: fmt.Errorf("%s: desktop %d out of range 0-%d", path, hk.Desktop, c.Desktops-1)}
			}
		case ActionPalette:
		default:
			return &ValidationError{Path: "hotkeys", Err: fmt.Errorf("%s: action must be one of: exec, desktop, move_to_desktop, palette", path)}
		}
	}

	if c.Menu.Enabled && c.Menu.Height <= 0 {
		return &ValidationError{Path: "menu.height", Err: fmt.Errorf("menu.height must be > 0")}
	}
	switch c.Menu.PaletteBackend {
	case "auto", "rofi", "dmenu":
	default:
		return &ValidationError{Path: "menu.palette_backend", Err: fmt.Errorf("palette_backend must be one of: auto, rofi, dmenu")}
	}
	for i, item := range c.Menu.Items {
		if strings.TrimSpace(item.Label) == "" || strings.TrimSpace(item.Command) == "" {
			return &ValidationError{Path: "menu.items", Err: fmt.Errorf("menu.items[%d]: label and command are required", i)}
		}
	}

	return nil
}
