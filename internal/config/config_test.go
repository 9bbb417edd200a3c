package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.TitleBarHeight != 22 {
		t.Fatalf("expected 22px title bar, got %d", cfg.TitleBarHeight)
	}
	if cfg.Bindings.Close != "Mod1-F4" || cfg.Bindings.Cycle != "Mod1-Tab" {
		t.Fatalf("unexpected default bindings: %+v", cfg.Bindings)
	}
	if cfg.BorderWidth != 1 || MustColor(cfg.BorderColor) != 0xcccccc || MustColor(cfg.FrameColor) != 0xe6e6e6 {
		t.Fatalf("unexpected default frame: border %d %s, background %s", cfg.BorderWidth, cfg.BorderColor, cfg.FrameColor)
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Wallpaper != WallpaperAuto || len(res.Files) != 0 {
		t.Fatalf("expected defaults, got %+v files=%v", res.Config, res.Files)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "# empty\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Desktops != DefaultConfig().Desktops {
		t.Fatalf("expected default desktops, got %d", res.Config.Desktops)
	}
}

func TestLoadFromPath_OverridesKeepUnsetDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, strings.Join([]string{
		"display: \":1\"",
		"title_bar_height: 18",
		"bindings:",
		"  close: Mod4-q",
		"menu:",
		"  label: hello",
		"ipc:",
		"  enabled: false",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.Display != ":1" || cfg.TitleBarHeight != 18 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.Bindings.Close != "Mod4-q" || cfg.Bindings.Move != "Mod1-1" {
		t.Fatalf("bindings = %+v", cfg.Bindings)
	}
	if cfg.Menu.Label != "hello" || !cfg.Menu.Enabled || cfg.Menu.Height != 20 {
		t.Fatalf("menu = %+v", cfg.Menu)
	}
	if cfg.IPC.Enabled {
		t.Fatalf("expected ipc disabled")
	}
}

func TestLoadFromPath_HotkeysReplaceDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, strings.Join([]string{
		"hotkeys:",
		"  - key: Mod4-t",
		"    action: exec",
		"    command: alacritty",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(res.Config.Hotkeys) != 1 || res.Config.Hotkeys[0].Command != "alacritty" {
		t.Fatalf("hotkeys = %+v", res.Config.Hotkeys)
	}
}

func TestLoadFromPath_UnknownFieldRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "gap_size: 4\n")

	if _, err := LoadFromPath(path); err == nil {
		t.Fatal("expected unknown field to be rejected")
	}
}

func TestLoadFromPath_IncludesMergeInOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "conf.d", "10-look.yaml"), "border_width: 1\ntitle_bar_height: 30\n")
	writeFile(t, filepath.Join(dir, "conf.d", "20-more.yaml"), "border_width: 2\n")
	main := filepath.Join(dir, "config.yaml")
	writeFile(t, main, "include: conf.d\ntitle_bar_height: 24\n")

	res, err := LoadFromPath(main)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.BorderWidth != 2 {
		t.Fatalf("expected later include to win, got border_width %d", res.Config.BorderWidth)
	}
	if res.Config.TitleBarHeight != 24 {
		t.Fatalf("expected including file to win, got %d", res.Config.TitleBarHeight)
	}
	if len(res.Files) != 3 {
		t.Fatalf("expected 3 files, got %v", res.Files)
	}
}

func TestLoadFromPath_IncludeCycle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.yaml"), "include: b.yaml\n")
	writeFile(t, filepath.Join(dir, "b.yaml"), "include: a.yaml\n")

	_, err := LoadFromPath(filepath.Join(dir, "a.yaml"))
	if err == nil || !strings.Contains(err.Error(), "include cycle") {
		t.Fatalf("expected include cycle error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"negative title bar", func(c *Config) { c.TitleBarHeight = -1 }, "title_bar_height"},
		{"bad color", func(c *Config) { c.BorderColor = "red" }, "border_color"},
		{"wallpaper", func(c *Config) { c.Wallpaper = "first" }, "wallpaper"},
		{"empty binding", func(c *Config) { c.Bindings.Cycle = " " }, "bindings.cycle"},
		{"no desktops", func(c *Config) { c.Desktops = 0 }, "desktops"},
		{"desktop hotkey out of range", func(c *Config) {
			c.Hotkeys = []Hotkey{{Key: "Mod4-9", Action: ActionDesktop, Desktop: 9}}
		}, "hotkeys"},
		{"move hotkey out of range", func(c *Config) {
			c.Hotkeys = []Hotkey{{Key: "Mod4-Shift-9", Action: ActionMoveToDesktop, Desktop: 4}}
		}, "hotkeys"},
		{"exec without command", func(c *Config) {
			c.Hotkeys = []Hotkey{{Key: "Mod4-t", Action: ActionExec}}
		}, "hotkeys"},
		{"duplicate hotkey", func(c *Config) {
			c.Hotkeys = []Hotkey{{Key: "Mod4-p", Action: ActionPalette}, {Key: "Mod4-p", Action: ActionPalette}}
		}, "hotkeys"},
		{"menu height", func(c *Config) { c.Menu.Height = 0 }, "menu.height"},
		{"palette backend", func(c *Config) { c.Menu.PaletteBackend = "wofi" }, "menu.palette_backend"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Path != tt.path {
				t.Fatalf("path = %q, want %q (%v)", verr.Path, tt.path, err)
			}
		})
	}
}

func TestValidationErrorCarriesSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "display: \":0\"\nwallpaper: sometimes\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), ":2:") {
		t.Fatalf("expected line number in error, got %v", err)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    uint32
		wantErr bool
	}{
		{"#ff0000", 0xff0000, false},
		{"00ff00", 0x00ff00, false},
		{" #0000FF ", 0x0000ff, false},
		{"#fff", 0, true},
		{"#gggggg", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseColor(%q) = %#x, %v", tt.in, got, err)
		}
	}
}

func TestSlogLevel(t *testing.T) {
	cfg := DefaultConfig()
	for level, want := range map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	} {
		cfg.LogLevel = level
		if got := cfg.SlogLevel(); got != want {
			t.Errorf("SlogLevel(%q) = %v, want %v", level, got, want)
		}
	}
}

func TestExplain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "bindings:\n  close: Mod4-q\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	value, src, err := Explain(res, "bindings.close")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if value != "Mod4-q" || src.Kind != SourceFile || src.Line != 2 {
		t.Fatalf("got %v from %+v", value, src)
	}

	value, src, err = Explain(res, "hotkeys.0.key")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if value != "Mod4-Return" || src.Kind != SourceDefault {
		t.Fatalf("got %v from %+v", value, src)
	}

	if _, _, err := Explain(res, "bindings.nope"); err == nil {
		t.Fatal("expected unknown path error")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := DefaultConfig()
	cfg.Desktops = 2
	cfg.Hotkeys = cfg.Hotkeys[:4]
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load saved config: %v", err)
	}
	if res.Config.Desktops != 2 {
		t.Fatalf("desktops = %d", res.Config.Desktops)
	}
}

func TestLoadFromPath_IncludeGlob(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "themes", "dark.yaml"), "title_color: \"#101010\"\n")
	writeFile(t, filepath.Join(dir, "themes", "notes.txt"), "not yaml: [\n")
	main := filepath.Join(dir, "config.yaml")
	writeFile(t, main, "include:\n  - themes/*.yaml\n")

	res, err := LoadFromPath(main)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.TitleColor != "#101010" {
		t.Fatalf("title_color = %q", res.Config.TitleColor)
	}
	src := res.Sources["title_color"]
	if src.Kind != SourceFile || filepath.Base(src.File) != "dark.yaml" || src.Line != 1 {
		t.Fatalf("unexpected source %+v", src)
	}
}

func TestLoadFromPath_IncludeGlobNoMatch(t *testing.T) {
	main := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, main, "include: missing/*.yaml\n")

	_, err := LoadFromPath(main)
	if err == nil || !strings.Contains(err.Error(), "no files match") {
		t.Fatalf("expected no-match error, got %v", err)
	}
}
