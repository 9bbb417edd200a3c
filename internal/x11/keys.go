package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/mousebind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// SignificantMods are the modifiers compared when matching bindings.
// Lock, NumLock (Mod2) and ScrollLock never change what a binding means.
const SignificantMods = xproto.ModMaskShift | xproto.ModMaskControl |
	xproto.ModMask1 | xproto.ModMask4 | xproto.ModMask5

// KeyBinding is a parsed key sequence such as "Mod1-F4".
type KeyBinding struct {
	Spec  string
	Mods  uint16
	Codes []xproto.Keycode
}

// Matches reports whether a key event with state and keycode triggers b.
func (b KeyBinding) Matches(state uint16, code xproto.Keycode) bool {
	if state&SignificantMods != b.Mods&SignificantMods {
		return false
	}
	for _, c := range b.Codes {
		if c == code {
			return true
		}
	}
	return false
}

// ButtonBinding is a parsed button sequence such as "Mod1-1".
type ButtonBinding struct {
	Spec   string
	Mods   uint16
	Button xproto.Button
}

// Matches reports whether a button event with state and detail triggers b.
func (b ButtonBinding) Matches(state uint16, button xproto.Button) bool {
	return button == b.Button && state&SignificantMods == b.Mods&SignificantMods
}

// ParseKey parses a key sequence in xgbutil keybind syntax.
func (c *Connection) ParseKey(spec string) (KeyBinding, error) {
	mods, codes, err := keybind.ParseString(c.XUtil, spec)
	if err != nil {
		return KeyBinding{}, fmt.Errorf("parse key %q: %w", spec, err)
	}
	if len(codes) == 0 {
		return KeyBinding{}, fmt.Errorf("parse key %q: no keycode on this keyboard", spec)
	}
	return KeyBinding{Spec: spec, Mods: mods, Codes: codes}, nil
}

// ParseButton parses a button sequence in xgbutil mousebind syntax.
func (c *Connection) ParseButton(spec string) (ButtonBinding, error) {
	mods, button, err := mousebind.ParseString(c.XUtil, spec)
	if err != nil {
		return ButtonBinding{}, fmt.Errorf("parse button %q: %w", spec, err)
	}
	return ButtonBinding{Spec: spec, Mods: mods, Button: button}, nil
}

// GrabKey grabs b on win for every combination of ignored lock modifiers.
func (c *Connection) GrabKey(win xproto.Window, b KeyBinding) error {
	for _, code := range b.Codes {
		if err := keybind.GrabChecked(c.XUtil, win, b.Mods, code); err != nil {
			return fmt.Errorf("grab key %s on %d: %w", b.Spec, win, err)
		}
	}
	return nil
}

// UngrabKey releases a grab made by GrabKey.
func (c *Connection) UngrabKey(win xproto.Window, b KeyBinding) error {
	for _, code := range b.Codes {
		keybind.Ungrab(c.XUtil, win, b.Mods, code)
	}
	return nil
}

// GrabButton grabs b on win for every combination of ignored lock modifiers.
// Press, release and pointer motion are reported to us; while the grab is
// active, motion over one of our own windows is reported on that window.
func (c *Connection) GrabButton(win xproto.Window, b ButtonBinding) error {
	if err := mousebind.GrabChecked(c.XUtil, win, b.Mods, b.Button, false); err != nil {
		return fmt.Errorf("grab button %s on %d: %w", b.Spec, win, err)
	}
	return nil
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	unique := make(map[uint16]struct{})
	add := func(mask uint16) {
		unique[mask] = struct{}{}
	}

	add(0)
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		add(mask)
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}

	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
