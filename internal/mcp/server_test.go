package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/macwm/macwm/internal/ipc"
	"github.com/macwm/macwm/internal/wm"
)

type fakeState struct {
	status  ipc.StatusData
	windows []wm.WindowInfo
	err     error
}

func (f *fakeState) GetStatus() (*ipc.StatusData, error) {
	if f.err != nil {
		return nil, f.err
	}
	st := f.status
	return &st, nil
}

func (f *fakeState) ListWindows() (*ipc.WindowsData, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &ipc.WindowsData{Windows: f.windows}, nil
}

type fakeControl struct {
	calls []string
}

func (f *fakeControl) Focus(win uint32) error {
	f.calls = append(f.calls, fmt.Sprintf("focus %d", win))
	return nil
}

func (f *fakeControl) Close(win uint32) error {
	f.calls = append(f.calls, fmt.Sprintf("close %d", win))
	return nil
}

func (f *fakeControl) SwitchDesktop(index int) error {
	f.calls = append(f.calls, fmt.Sprintf("desktop %d", index))
	return nil
}

func newTestServer() (*Server, *fakeState, *fakeControl) {
	state := &fakeState{
		status: ipc.StatusData{Display: ":0", Clients: 3, Focused: 20, Desktop: 0, Desktops: 2},
		windows: []wm.WindowInfo{
			{Client: 10, Frame: 110, Title: "background", Wallpaper: true},
			{Client: 20, Frame: 120, Title: "xterm", Focused: true},
			{Client: 30, Frame: 130, Title: "firefox", Desktop: 1},
		},
	}
	control := &fakeControl{}
	return NewServer(state, control, slog.New(slog.NewTextHandler(io.Discard, nil))), state, control
}

func TestListWindows(t *testing.T) {
	s, _, _ := newTestServer()
	ctx := context.Background()

	_, out, err := s.handleListWindows(ctx, nil, ListWindowsInput{})
	if err != nil {
		t.Fatalf("list_windows error: %v", err)
	}
	if len(out.Windows) != 3 || out.Focused != 20 {
		t.Fatalf("out = %+v", out)
	}

	desktop := 1
	_, out, err = s.handleListWindows(ctx, nil, ListWindowsInput{Desktop: &desktop})
	if err != nil {
		t.Fatalf("list_windows error: %v", err)
	}
	// The wallpaper shows on every desktop.
	if len(out.Windows) != 2 || out.Windows[0].Client != 10 || out.Windows[1].Client != 30 {
		t.Fatalf("filtered = %+v", out.Windows)
	}
}

func TestGetStatus(t *testing.T) {
	s, _, _ := newTestServer()
	_, out, err := s.handleGetStatus(context.Background(), nil, GetStatusInput{})
	if err != nil {
		t.Fatalf("get_status error: %v", err)
	}
	if out.Clients != 3 || out.Desktops != 2 || out.Display != ":0" {
		t.Fatalf("out = %+v", out)
	}
}

func TestFocusAndCloseWindow(t *testing.T) {
	s, _, control := newTestServer()
	ctx := context.Background()

	if _, out, err := s.handleFocusWindow(ctx, nil, WindowInput{Window: 30}); err != nil || out.Title != "firefox" {
		t.Fatalf("focus: %+v, %v", out, err)
	}
	if _, _, err := s.handleCloseWindow(ctx, nil, WindowInput{Window: 20}); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, _, err := s.handleCloseWindow(ctx, nil, WindowInput{Window: 10}); err == nil || !strings.Contains(err.Error(), "wallpaper") {
		t.Fatalf("closing wallpaper: %v", err)
	}
	if _, _, err := s.handleFocusWindow(ctx, nil, WindowInput{Window: 99}); err == nil || !strings.Contains(err.Error(), "not managed") {
		t.Fatalf("focus unknown: %v", err)
	}

	want := []string{"focus 30", "close 20"}
	if strings.Join(control.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("calls = %v, want %v", control.calls, want)
	}
}

func TestSwitchDesktop(t *testing.T) {
	s, _, control := newTestServer()
	ctx := context.Background()

	if _, out, err := s.handleSwitchDesktop(ctx, nil, SwitchDesktopInput{Desktop: 1}); err != nil || out.Desktop != 1 {
		t.Fatalf("switch: %+v, %v", out, err)
	}
	for _, bad := range []int{-1, 2} {
		if _, _, err := s.handleSwitchDesktop(ctx, nil, SwitchDesktopInput{Desktop: bad}); err == nil {
			t.Fatalf("desktop %d accepted", bad)
		}
	}
	if len(control.calls) != 1 || control.calls[0] != "desktop 1" {
		t.Fatalf("calls = %v", control.calls)
	}
}

func TestStateErrorsPropagate(t *testing.T) {
	s, state, _ := newTestServer()
	state.err = errors.New("failed to connect to window manager")

	if _, _, err := s.handleListWindows(context.Background(), nil, ListWindowsInput{}); err == nil {
		t.Fatal("expected error")
	}
	if _, _, err := s.handleFocusWindow(context.Background(), nil, WindowInput{Window: 20}); err == nil {
		t.Fatal("expected error")
	}
}
