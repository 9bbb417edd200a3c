package wm

import (
	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/macwm/macwm/internal/geom"
	"github.com/macwm/macwm/internal/x11"
)

// Transport is everything the window manager needs from the display
// connection. *x11.Connection implements it.
type Transport interface {
	RootWindow() xproto.Window
	ProbeForExistingManager() (bool, error)
	SetErrorHandler(x11.ErrorHandler)

	// NextEvent blocks for the next event.
	NextEvent() (xgb.Event, error)
	// DrainMotion removes queued motion events for win and returns the newest.
	DrainMotion(win xproto.Window) (xproto.MotionNotifyEvent, bool)

	GrabServer() error
	UngrabServer() error
	QueryTree(win xproto.Window) (x11.Tree, error)
	WindowAttributes(win xproto.Window) (x11.WindowAttributes, error)
	Geometry(win xproto.Window) (geom.Rect, error)
	RootGeometry() geom.Rect

	CreateWindow(spec x11.WindowSpec) (xproto.Window, error)
	DestroyWindow(win xproto.Window) error
	MapWindow(win xproto.Window) error
	UnmapWindow(win xproto.Window) error
	ReparentWindow(win, parent xproto.Window, x, y int) error
	SelectInput(win xproto.Window, mask uint32) error
	AddToSaveSet(win xproto.Window) error
	RemoveFromSaveSet(win xproto.Window) error
	ConfigureWindow(win xproto.Window, ch x11.WindowChanges) error
	MoveWindow(win xproto.Window, p geom.Position) error
	ResizeWindow(win xproto.Window, s geom.Size) error
	MoveResizeWindow(win xproto.Window, r geom.Rect) error
	RaiseWindow(win xproto.Window) error
	SetInputFocus(win xproto.Window) error

	ParseKey(spec string) (x11.KeyBinding, error)
	ParseButton(spec string) (x11.ButtonBinding, error)
	GrabKey(win xproto.Window, b x11.KeyBinding) error
	UngrabKey(win xproto.Window, b x11.KeyBinding) error
	GrabButton(win xproto.Window, b x11.ButtonBinding) error

	InternAtom(name string) (xproto.Atom, error)
	WMProtocols(win xproto.Window) ([]string, error)
	SendProtocolMessage(win xproto.Window, wmProtocols, protocol xproto.Atom) error
	KillClient(win xproto.Window) error
	WindowTitle(win xproto.Window) string
	IsDesktopWindow(win xproto.Window) bool

	SetClientList(clients []xproto.Window) error
	SetActiveWindow(win xproto.Window) error
	SetDesktopCount(count int) error
	SetCurrentDesktop(index int) error
	SetWindowDesktop(win xproto.Window, index int) error
}

var _ Transport = (*x11.Connection)(nil)

// Decoration draws a managed client's title bar and recognises its buttons.
type Decoration interface {
	Frame() xproto.Window
	Client() xproto.Window
	// Owns reports whether events on win belong to this decoration.
	Owns(win xproto.Window) bool
	Draw()
	SetTitle(title string)
	Resize(width int)
	OnButtonPress(ev xproto.ButtonPressEvent) DecorationAction
	OnButtonRelease(ev xproto.ButtonReleaseEvent)
	OnMotionNotify(ev xproto.MotionNotifyEvent)
	Destroy()
}

// DecorationAction is what a title bar click asks the manager to do.
type DecorationAction int

const (
	ActionNone DecorationAction = iota
	ActionMove
	ActionClose
	ActionMinimize
	ActionMaximize
)

func (a DecorationAction) String() string {
	switch a {
	case ActionMove:
		return "move"
	case ActionClose:
		return "close"
	case ActionMinimize:
		return "minimize"
	case ActionMaximize:
		return "maximize"
	default:
		return "none"
	}
}

// DecorationFactory builds the decoration for a freshly framed client. width
// is the client width; the title bar spans it.
type DecorationFactory func(client, frame xproto.Window, title string, width int) (Decoration, error)

// Menu is the launcher bar on the root window.
type Menu interface {
	Window() xproto.Window
	// Height is the strip at the top of the root the bar occupies.
	Height() int
	OnButtonPress(ev xproto.ButtonPressEvent)
	OnExpose(ev xproto.ExposeEvent)
}

// Desktops tracks which desktop every managed frame lives on.
type Desktops interface {
	// Add places a new frame on the current desktop. Sticky frames stay
	// mapped on every desktop.
	Add(client, frame xproto.Window, sticky bool)
	Remove(client xproto.Window)
	SwitchTo(index int)
	// MoveTo sends the client to desktop index, mapping or unmapping its
	// frame as needed.
	MoveTo(client xproto.Window, index int)
	Current() int
	DesktopOf(client xproto.Window) int
	// Hide unmaps the client's frame until Show is called.
	Hide(client xproto.Window)
	// Show switches to the client's desktop if needed and maps its frame.
	Show(client xproto.Window)
}

// Hotkeys handles root-window key bindings beyond the built-in close and
// cycle keys.
type Hotkeys interface {
	OnKeyPress(ev xproto.KeyPressEvent) bool
	// Refresh re-grabs the bindings after the keyboard mapping changed.
	Refresh()
}
