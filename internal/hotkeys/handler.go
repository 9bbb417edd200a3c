// Package hotkeys grabs root-window key bindings and runs their actions.
package hotkeys

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"syscall"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/macwm/macwm/internal/config"
	"github.com/macwm/macwm/internal/x11"
)

// Grabber parses and grabs key sequences. *x11.Connection implements it.
type Grabber interface {
	ParseKey(spec string) (x11.KeyBinding, error)
	GrabKey(win xproto.Window, b x11.KeyBinding) error
	UngrabKey(win xproto.Window, b x11.KeyBinding) error
}

type hotkey struct {
	binding x11.KeyBinding
	run     func()
}

// Handler manages global keyboard shortcuts
type Handler struct {
	g    Grabber
	root xproto.Window
	log  *slog.Logger
	keys []hotkey
}

// New creates a handler that grabs on root.
func New(g Grabber, root xproto.Window, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{g: g, root: root, log: logger.With("component", "hotkeys")}
}

// Register grabs keySequence on the root window and runs callback whenever
// it is pressed.
func (h *Handler) Register(keySequence string, callback func()) error {
	b, err := h.g.ParseKey(keySequence)
	if err != nil {
		return err
	}
	if err := h.g.GrabKey(h.root, b); err != nil {
		return err
	}
	h.keys = append(h.keys, hotkey{binding: b, run: callback})
	return nil
}

// OnKeyPress runs the first hotkey matching ev and reports whether one did.
func (h *Handler) OnKeyPress(ev xproto.KeyPressEvent) bool {
	for _, k := range h.keys {
		if k.binding.Matches(ev.State, ev.Detail) {
			h.log.Debug("hotkey triggered", "key", k.binding.Spec)
			k.run()
			return true
		}
	}
	return false
}

// Refresh parses every hotkey again after a keyboard mapping change and
// moves its root grab to the new keycodes. A key that no longer parses keeps
// its old binding.
func (h *Handler) Refresh() {
	for i, k := range h.keys {
		b, err := h.g.ParseKey(k.binding.Spec)
		if err != nil {
			h.log.Warn("failed to refresh hotkey", "key", k.binding.Spec, "error", err)
			continue
		}
		if err := h.g.UngrabKey(h.root, k.binding); err != nil {
			h.log.Debug("failed to release hotkey", "key", k.binding.Spec, "error", err)
		}
		if err := h.g.GrabKey(h.root, b); err != nil {
			h.log.Warn("failed to grab hotkey", "key", b.Spec, "error", err)
		}
		h.keys[i].binding = b
	}
}

// Len returns the number of registered hotkeys.
func (h *Handler) Len() int { return len(h.keys) }

// Actions are the callbacks configured hotkeys dispatch to.
type Actions struct {
	Exec          func(command string)
	SwitchDesktop func(index int)
	MoveToDesktop func(index int)
	Palette       func()
}

// RegisterConfig registers every configured hotkey. A hotkey that fails to
// register is logged and skipped; the number registered is returned.
func (h *Handler) RegisterConfig(hotkeys []config.Hotkey, a Actions) int {
	registered := 0
	for _, hk := range hotkeys {
		fn, err := bind(hk, a)
		if err == nil {
			err = h.Register(hk.Key, fn)
		}
		if err != nil {
			h.log.Warn("failed to register hotkey", "key", hk.Key, "action", hk.Action, "error", err)
			continue
		}
		h.log.Info("hotkey registered", "key", hk.Key, "action", hk.Action)
		registered++
	}
	return registered
}

func bind(hk config.Hotkey, a Actions) (func(), error) {
	switch hk.Action {
	case config.ActionExec:
		if a.Exec == nil {
			return nil, fmt.Errorf("exec action not available")
		}
		command := hk.Command
		return func() { a.Exec(command) }, nil
	case config.ActionDesktop:
		if a.SwitchDesktop == nil {
			return nil, fmt.Errorf("desktop action not available")
		}
		index := hk.Desktop
		return func() { a.SwitchDesktop(index) }, nil
	case config.ActionMoveToDesktop:
		if a.MoveToDesktop == nil {
			return nil, fmt.Errorf("move_to_desktop action not available")
		}
		index := hk.Desktop
		return func() { a.MoveToDesktop(index) }, nil
	case config.ActionPalette:
		if a.Palette == nil {
			return nil, fmt.Errorf("palette action not available")
		}
		return a.Palette, nil
	default:
		return nil, fmt.Errorf("unknown action %q", hk.Action)
	}
}

// Spawn starts command through /bin/sh in its own session so it outlives
// the window manager, and reaps it in the background.
func Spawn(command string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	cmd := exec.Command("/bin/sh", "-c", command)
	cmd.Stderr = os.Stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to launch %q: %w", command, err)
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			logger.Debug("launched command exited", "command", command, "error", err)
		}
	}()
	return nil
}

// SpawnSelf runs this executable with args, the way the palette is opened
// from a hotkey or the menu bar.
func SpawnSelf(logger *slog.Logger, args ...string) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to find executable: %w", err)
	}
	cmd := exec.Command(exe, args...)
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to launch %s: %w", exe, err)
	}
	go cmd.Wait()
	return nil
}
