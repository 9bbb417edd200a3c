package wm

import (
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/macwm/macwm/internal/geom"
	"github.com/macwm/macwm/internal/x11"
)

const fakeRoot xproto.Window = 1

type fakeWindow struct {
	parent           xproto.Window
	bounds           geom.Rect
	overrideRedirect bool
	mapped           bool
	desktopType      bool
	protocols        []string
	title            string
}

// fakeTransport is an in-memory display. It applies structural requests to
// its window tree and records every call in order.
type fakeTransport struct {
	windows  map[xproto.Window]*fakeWindow
	order    []xproto.Window
	nextID   xproto.Window
	queue    []xgb.Event
	calls    []string
	saveSet  map[xproto.Window]bool
	onError  x11.ErrorHandler
	running  bool
	probeErr error
	treeErr  error
	grabbed  bool

	moves   map[xproto.Window][]geom.Position
	resizes map[xproto.Window][]geom.Size
	focus   xproto.Window
	killed  []xproto.Window
	sent    []xproto.Window
	active  xproto.Window
	list    []xproto.Window
}

func newFakeTransport() *fakeTransport {
	f := &fakeTransport{
		windows: map[xproto.Window]*fakeWindow{
			fakeRoot: {bounds: geom.R(0, 0, 1920, 1080), mapped: true},
		},
		nextID:  1000,
		saveSet: make(map[xproto.Window]bool),
		moves:   make(map[xproto.Window][]geom.Position),
		resizes: make(map[xproto.Window][]geom.Size),
	}
	return f
}

// addClient creates a top-level client window as another X client would.
func (f *fakeTransport) addClient(id xproto.Window, bounds geom.Rect, mapped bool) *fakeWindow {
	w := &fakeWindow{parent: fakeRoot, bounds: bounds, mapped: mapped}
	f.windows[id] = w
	f.order = append(f.order, id)
	return w
}

func (f *fakeTransport) record(format string, args ...any) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeTransport) count(call string) int {
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeTransport) window(win xproto.Window) (*fakeWindow, error) {
	w, ok := f.windows[win]
	if !ok {
		return nil, xproto.WindowError{BadValue: uint32(win)}
	}
	return w, nil
}

func (f *fakeTransport) RootWindow() xproto.Window { return fakeRoot }

func (f *fakeTransport) ProbeForExistingManager() (bool, error) {
	return f.running, f.probeErr
}

func (f *fakeTransport) SetErrorHandler(h x11.ErrorHandler) { f.onError = h }

func (f *fakeTransport) NextEvent() (xgb.Event, error) {
	if len(f.queue) == 0 {
		return nil, x11.ErrConnectionClosed
	}
	ev := f.queue[0]
	f.queue = f.queue[1:]
	return ev, nil
}

func (f *fakeTransport) DrainMotion(win xproto.Window) (xproto.MotionNotifyEvent, bool) {
	var (
		last  xproto.MotionNotifyEvent
		found bool
	)
	kept := f.queue[:0]
	for _, ev := range f.queue {
		if m, ok := ev.(xproto.MotionNotifyEvent); ok && m.Event == win {
			last, found = m, true
			continue
		}
		kept = append(kept, ev)
	}
	f.queue = kept
	return last, found
}

func (f *fakeTransport) GrabServer() error {
	f.grabbed = true
	f.record("GrabServer")
	return nil
}

func (f *fakeTransport) UngrabServer() error {
	f.grabbed = false
	f.record("UngrabServer")
	return nil
}

func (f *fakeTransport) QueryTree(win xproto.Window) (x11.Tree, error) {
	if f.treeErr != nil {
		return x11.Tree{}, f.treeErr
	}
	t := x11.Tree{Root: fakeRoot}
	for _, id := range f.order {
		if w, ok := f.windows[id]; ok && w.parent == win {
			t.Children = append(t.Children, id)
		}
	}
	return t, nil
}

func (f *fakeTransport) WindowAttributes(win xproto.Window) (x11.WindowAttributes, error) {
	w, err := f.window(win)
	if err != nil {
		return x11.WindowAttributes{}, err
	}
	return x11.WindowAttributes{Rect: w.bounds, OverrideRedirect: w.overrideRedirect, Viewable: w.mapped}, nil
}

func (f *fakeTransport) Geometry(win xproto.Window) (geom.Rect, error) {
	w, err := f.window(win)
	if err != nil {
		return geom.Rect{}, err
	}
	return w.bounds, nil
}

func (f *fakeTransport) RootGeometry() geom.Rect { return f.windows[fakeRoot].bounds }

func (f *fakeTransport) CreateWindow(spec x11.WindowSpec) (xproto.Window, error) {
	f.nextID++
	id := f.nextID
	f.windows[id] = &fakeWindow{parent: spec.Parent, bounds: spec.Bounds}
	f.order = append(f.order, id)
	f.record("CreateWindow %d %s border=%d", id, spec.Bounds, spec.BorderWidth)
	return id, nil
}

func (f *fakeTransport) DestroyWindow(win xproto.Window) error {
	if _, err := f.window(win); err != nil {
		return err
	}
	for id, w := range f.windows {
		if w.parent == win {
			delete(f.windows, id)
		}
	}
	delete(f.windows, win)
	f.record("DestroyWindow %d", win)
	return nil
}

func (f *fakeTransport) MapWindow(win xproto.Window) error {
	w, err := f.window(win)
	if err != nil {
		return err
	}
	w.mapped = true
	f.record("MapWindow %d", win)
	return nil
}

func (f *fakeTransport) UnmapWindow(win xproto.Window) error {
	w, err := f.window(win)
	if err != nil {
		return err
	}
	w.mapped = false
	f.record("UnmapWindow %d", win)
	return nil
}

func (f *fakeTransport) ReparentWindow(win, parent xproto.Window, x, y int) error {
	w, err := f.window(win)
	if err != nil {
		return err
	}
	w.parent = parent
	w.bounds.Position = geom.Pos(x, y)
	f.record("ReparentWindow %d %d %d,%d", win, parent, x, y)
	return nil
}

func (f *fakeTransport) SelectInput(win xproto.Window, mask uint32) error { return nil }

func (f *fakeTransport) AddToSaveSet(win xproto.Window) error {
	f.saveSet[win] = true
	return nil
}

func (f *fakeTransport) RemoveFromSaveSet(win xproto.Window) error {
	delete(f.saveSet, win)
	return nil
}

func (f *fakeTransport) ConfigureWindow(win xproto.Window, ch x11.WindowChanges) error {
	w, err := f.window(win)
	if err != nil {
		return err
	}
	if ch.Mask&xproto.ConfigWindowX != 0 {
		w.bounds.X = ch.X
	}
	if ch.Mask&xproto.ConfigWindowY != 0 {
		w.bounds.Y = ch.Y
	}
	if ch.Mask&xproto.ConfigWindowWidth != 0 {
		w.bounds.Width = ch.Width
	}
	if ch.Mask&xproto.ConfigWindowHeight != 0 {
		w.bounds.Height = ch.Height
	}
	f.record("ConfigureWindow %d mask=%d", win, ch.Mask)
	return nil
}

func (f *fakeTransport) MoveWindow(win xproto.Window, p geom.Position) error {
	w, err := f.window(win)
	if err != nil {
		return err
	}
	w.bounds.Position = p
	f.moves[win] = append(f.moves[win], p)
	return nil
}

func (f *fakeTransport) ResizeWindow(win xproto.Window, s geom.Size) error {
	w, err := f.window(win)
	if err != nil {
		return err
	}
	w.bounds.Size = s
	f.resizes[win] = append(f.resizes[win], s)
	return nil
}

func (f *fakeTransport) MoveResizeWindow(win xproto.Window, r geom.Rect) error {
	w, err := f.window(win)
	if err != nil {
		return err
	}
	w.bounds = r
	return nil
}

func (f *fakeTransport) RaiseWindow(win xproto.Window) error {
	f.record("RaiseWindow %d", win)
	return nil
}

func (f *fakeTransport) SetInputFocus(win xproto.Window) error {
	f.focus = win
	return nil
}

func (f *fakeTransport) ParseKey(spec string) (x11.KeyBinding, error) {
	codes := map[string]xproto.Keycode{"Mod1-F4": 70, "Mod1-Tab": 23}
	code, ok := codes[spec]
	if !ok {
		return x11.KeyBinding{}, fmt.Errorf("parse key %q: unknown", spec)
	}
	return x11.KeyBinding{Spec: spec, Mods: xproto.ModMask1, Codes: []xproto.Keycode{code}}, nil
}

func (f *fakeTransport) ParseButton(spec string) (x11.ButtonBinding, error) {
	buttons := map[string]xproto.Button{"Mod1-1": 1, "Mod1-3": 3}
	b, ok := buttons[spec]
	if !ok {
		return x11.ButtonBinding{}, fmt.Errorf("parse button %q: unknown", spec)
	}
	return x11.ButtonBinding{Spec: spec, Mods: xproto.ModMask1, Button: b}, nil
}

func (f *fakeTransport) GrabKey(win xproto.Window, b x11.KeyBinding) error {
	f.record("GrabKey %d %s", win, b.Spec)
	return nil
}

func (f *fakeTransport) UngrabKey(win xproto.Window, b x11.KeyBinding) error {
	f.record("UngrabKey %d %s", win, b.Spec)
	return nil
}

func (f *fakeTransport) GrabButton(win xproto.Window, b x11.ButtonBinding) error {
	f.record("GrabButton %d %s", win, b.Spec)
	return nil
}

var fakeAtoms = map[string]xproto.Atom{
	"WM_PROTOCOLS":         300,
	"WM_DELETE_WINDOW":     301,
	"_NET_ACTIVE_WINDOW":   302,
	"_NET_CLOSE_WINDOW":    303,
	"_NET_CURRENT_DESKTOP": 304,
	"_NET_WM_NAME":         305,
	"_NET_WM_DESKTOP":      306,
}

func (f *fakeTransport) InternAtom(name string) (xproto.Atom, error) {
	atom, ok := fakeAtoms[name]
	if !ok {
		return 0, fmt.Errorf("intern %s: unknown atom", name)
	}
	return atom, nil
}

func (f *fakeTransport) WMProtocols(win xproto.Window) ([]string, error) {
	w, err := f.window(win)
	if err != nil {
		return nil, err
	}
	return w.protocols, nil
}

func (f *fakeTransport) SendProtocolMessage(win xproto.Window, wmProtocols, protocol xproto.Atom) error {
	f.sent = append(f.sent, win)
	f.record("SendProtocolMessage %d %d %d", win, wmProtocols, protocol)
	return nil
}

func (f *fakeTransport) KillClient(win xproto.Window) error {
	f.killed = append(f.killed, win)
	return nil
}

func (f *fakeTransport) WindowTitle(win xproto.Window) string {
	if w, ok := f.windows[win]; ok {
		return w.title
	}
	return ""
}

func (f *fakeTransport) IsDesktopWindow(win xproto.Window) bool {
	w, ok := f.windows[win]
	return ok && w.desktopType
}

func (f *fakeTransport) SetClientList(clients []xproto.Window) error {
	f.list = append([]xproto.Window(nil), clients...)
	return nil
}

func (f *fakeTransport) SetActiveWindow(win xproto.Window) error {
	f.active = win
	return nil
}

func (f *fakeTransport) SetDesktopCount(count int) error                     { return nil }
func (f *fakeTransport) SetCurrentDesktop(index int) error                   { return nil }
func (f *fakeTransport) SetWindowDesktop(win xproto.Window, index int) error { return nil }

var _ Transport = (*fakeTransport)(nil)

func newTestManager(t *testing.T, f *fakeTransport, opts Options) *Manager {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	m, err := New(f, opts)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return m
}

// checkBijection asserts that the client table and the fake display agree:
// every entry has a live frame holding its client, and frames are not shared.
func checkBijection(t *testing.T, m *Manager, f *fakeTransport) {
	t.Helper()
	seen := make(map[xproto.Window]xproto.Window)
	for _, client := range m.clients.Clients() {
		frame, _ := m.clients.Frame(client)
		if other, dup := seen[frame]; dup {
			t.Fatalf("frame %d shared by clients %d and %d", frame, other, client)
		}
		seen[frame] = client
		if _, ok := f.windows[frame]; !ok {
			t.Fatalf("frame %d of client %d does not exist", frame, client)
		}
		if c, ok := m.clients.ClientOfFrame(frame); !ok || c != client {
			t.Fatalf("reverse index of frame %d = %d, %v; want %d", frame, c, ok, client)
		}
		if w, ok := f.windows[client]; ok && w.parent != frame {
			t.Fatalf("client %d parent = %d, want frame %d", client, w.parent, frame)
		}
	}
}

func expectInvariantPanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected invariant panic")
		}
		if _, ok := r.(*InvariantError); !ok {
			t.Fatalf("panic value = %T (%v), want *InvariantError", r, r)
		}
	}()
	fn()
}
