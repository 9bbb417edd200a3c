package main

import (
	"errors"
	"testing"

	"github.com/macwm/macwm/internal/config"
	"github.com/macwm/macwm/internal/ipc"
	"github.com/macwm/macwm/internal/wm"
)

type recordingController struct {
	focused, closed []uint32
	desktops        []int
}

func (r *recordingController) Focus(win uint32) error {
	r.focused = append(r.focused, win)
	return nil
}

func (r *recordingController) Close(win uint32) error {
	r.closed = append(r.closed, win)
	return nil
}

func (r *recordingController) SwitchDesktop(index int) error {
	r.desktops = append(r.desktops, index)
	return nil
}

func TestBuildRootMenu(t *testing.T) {
	status := &ipc.StatusData{Desktop: 1, Desktops: 3}
	windows := []wm.WindowInfo{
		{Client: 1, Title: "wallpaper", Wallpaper: true, Desktop: -1},
		{Client: 2, Title: "xterm", Desktop: 0, Focused: true},
		{Client: 3, Desktop: 2},
	}
	launchers := []config.MenuItem{{Label: "Terminal", Command: "xterm"}}

	root := buildRootMenu(status, windows, launchers)
	if len(root) != 4 {
		t.Fatalf("expected 4 top-level entries, got %d: %+v", len(root), root)
	}

	focus := root[0]
	if focus.Label != "Windows" || len(focus.Submenu) != 2 {
		t.Fatalf("unexpected windows menu: %+v", focus)
	}
	if got := focus.Submenu[0]; got.Label != "xterm  [1]" || got.Action != "focus:2" || !got.IsActive {
		t.Fatalf("unexpected first window entry: %+v", got)
	}
	if got := focus.Submenu[1]; got.Label != "0x3  [3]" || got.Action != "focus:3" {
		t.Fatalf("untitled window should show its id: %+v", got)
	}
	if got := root[1].Submenu[0].Action; got != "close:2" {
		t.Fatalf("close action = %q", got)
	}

	desktops := root[2].Submenu
	if len(desktops) != 3 || !desktops[1].IsActive || desktops[0].IsActive {
		t.Fatalf("unexpected desktops menu: %+v", desktops)
	}
	if got := root[3].Submenu[0].Action; got != "exec:xterm" {
		t.Fatalf("launch action = %q", got)
	}
}

func TestBuildRootMenu_SingleDesktopNoWindows(t *testing.T) {
	root := buildRootMenu(&ipc.StatusData{Desktops: 1}, nil, nil)
	if len(root) != 0 {
		t.Fatalf("expected empty menu, got %+v", root)
	}
}

func TestExecuteAction(t *testing.T) {
	ctl := &recordingController{}
	var launched []string
	launch := func(cmd string) error {
		launched = append(launched, cmd)
		return nil
	}

	for _, action := range []string{"focus:42", "close:7", "desktop:2", "exec:xterm -e top"} {
		if err := executeAction(action, ctl, launch); err != nil {
			t.Fatalf("%s: %v", action, err)
		}
	}
	if len(ctl.focused) != 1 || ctl.focused[0] != 42 {
		t.Fatalf("focused = %v", ctl.focused)
	}
	if len(ctl.closed) != 1 || ctl.closed[0] != 7 {
		t.Fatalf("closed = %v", ctl.closed)
	}
	if len(ctl.desktops) != 1 || ctl.desktops[0] != 2 {
		t.Fatalf("desktops = %v", ctl.desktops)
	}
	if len(launched) != 1 || launched[0] != "xterm -e top" {
		t.Fatalf("launched = %v", launched)
	}
}

func TestExecuteAction_Invalid(t *testing.T) {
	ctl := &recordingController{}
	launch := func(string) error { return errors.New("unexpected launch") }

	for _, action := range []string{"", "focus", "focus:", "focus:abc", "desktop:x", "raise:1"} {
		if err := executeAction(action, ctl, launch); err == nil {
			t.Errorf("%q: expected error", action)
		}
	}
}
