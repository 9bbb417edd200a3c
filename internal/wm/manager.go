package wm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/macwm/macwm/internal/geom"
	"github.com/macwm/macwm/internal/x11"
)

// WallpaperMode decides which client, if any, is treated as the desktop
// background.
type WallpaperMode string

const (
	// WallpaperAuto picks the first adopted pre-existing window, or any
	// window typed _NET_WM_WINDOW_TYPE_DESKTOP.
	WallpaperAuto WallpaperMode = "auto"
	// WallpaperType only honours _NET_WM_WINDOW_TYPE_DESKTOP.
	WallpaperType WallpaperMode = "type"
	WallpaperNone WallpaperMode = "none"
)

// FrameStyle controls how frames are drawn.
type FrameStyle struct {
	TitleBarHeight int
	BorderWidth    int
	BorderColor    uint32
	Background     uint32
}

// DefaultFrameStyle returns the built-in frame look.
func DefaultFrameStyle() FrameStyle {
	return FrameStyle{
		TitleBarHeight: 22,
		BorderWidth:    1,
		BorderColor:    0xcccccc,
		Background:     0xe6e6e6,
	}
}

// Bindings are the key and button sequences grabbed on every client.
type Bindings struct {
	Move   string
	Resize string
	Close  string
	Cycle  string
}

// DefaultBindings returns Alt+drag to move or resize, Alt+F4 and Alt+Tab.
func DefaultBindings() Bindings {
	return Bindings{
		Move:   "Mod1-1",
		Resize: "Mod1-3",
		Close:  "Mod1-F4",
		Cycle:  "Mod1-Tab",
	}
}

// Options configures a Manager. Zero values fall back to defaults.
type Options struct {
	Logger    *slog.Logger
	Style     FrameStyle
	Bindings  Bindings
	Wallpaper WallpaperMode

	// Decorations builds title bars. Nil leaves frames undecorated.
	Decorations DecorationFactory
	// Desktops owns frame visibility. Nil means a single desktop where
	// hidden frames are tracked by the manager itself.
	Desktops Desktops
}

type wellKnownAtoms struct {
	wmProtocols       xproto.Atom
	wmDeleteWindow    xproto.Atom
	netActiveWindow   xproto.Atom
	netCloseWindow    xproto.Atom
	netCurrentDesktop xproto.Atom
	netWmDesktop      xproto.Atom
	netWmName         xproto.Atom
}

type bindings struct {
	move, resize x11.ButtonBinding
	close, cycle x11.KeyBinding
}

// Manager is the window manager core. All methods except Snapshot must be
// called from the goroutine running Run.
type Manager struct {
	x    Transport
	root xproto.Window
	log  *slog.Logger

	style         FrameStyle
	wallpaperMode WallpaperMode
	atoms         wellKnownAtoms
	bindSpecs     Bindings
	binds         bindings

	clients     *ClientTable
	decorations map[xproto.Window]Decoration
	titles      map[xproto.Window]string
	restore     map[xproto.Window]geom.Rect
	hidden      map[xproto.Window]bool
	wallpaper   xproto.Window
	focused     xproto.Window
	drag        dragState
	adopting    bool

	newDecoration DecorationFactory
	desktops      Desktops
	menu          Menu
	hotkeys       Hotkeys

	dispatching bool
	snapshot    atomic.Pointer[Snapshot]
}

// New resolves the atoms and bindings the manager needs. It does not touch
// the root window; call Start for that.
func New(x Transport, opts Options) (*Manager, error) {
	m := &Manager{
		x:             x,
		root:          x.RootWindow(),
		log:           opts.Logger,
		style:         opts.Style,
		wallpaperMode: opts.Wallpaper,
		clients:       NewClientTable(),
		decorations:   make(map[xproto.Window]Decoration),
		titles:        make(map[xproto.Window]string),
		restore:       make(map[xproto.Window]geom.Rect),
		hidden:        make(map[xproto.Window]bool),
		newDecoration: opts.Decorations,
		desktops:      opts.Desktops,
	}
	if m.log == nil {
		m.log = slog.Default()
	}
	if m.style == (FrameStyle{}) {
		m.style = DefaultFrameStyle()
	}
	if m.wallpaperMode == "" {
		m.wallpaperMode = WallpaperAuto
	}

	if err := m.internAtoms(); err != nil {
		return nil, err
	}
	m.bindSpecs = withDefaults(opts.Bindings)
	if err := m.parseBindings(m.bindSpecs); err != nil {
		return nil, err
	}
	m.publish()
	return m, nil
}

func withDefaults(b Bindings) Bindings {
	d := DefaultBindings()
	if b.Move == "" {
		b.Move = d.Move
	}
	if b.Resize == "" {
		b.Resize = d.Resize
	}
	if b.Close == "" {
		b.Close = d.Close
	}
	if b.Cycle == "" {
		b.Cycle = d.Cycle
	}
	return b
}

func (m *Manager) internAtoms() error {
	names := []struct {
		name string
		dst  *xproto.Atom
	}{
		{"WM_PROTOCOLS", &m.atoms.wmProtocols},
		{"WM_DELETE_WINDOW", &m.atoms.wmDeleteWindow},
		{"_NET_ACTIVE_WINDOW", &m.atoms.netActiveWindow},
		{"_NET_CLOSE_WINDOW", &m.atoms.netCloseWindow},
		{"_NET_CURRENT_DESKTOP", &m.atoms.netCurrentDesktop},
		{"_NET_WM_DESKTOP", &m.atoms.netWmDesktop},
		{"_NET_WM_NAME", &m.atoms.netWmName},
	}
	for _, n := range names {
		atom, err := m.x.InternAtom(n.name)
		if err != nil {
			return fmt.Errorf("resolve atoms: %w", err)
		}
		*n.dst = atom
	}
	return nil
}

func (m *Manager) parseBindings(b Bindings) error {
	var err error
	if m.binds.move, err = m.x.ParseButton(b.Move); err != nil {
		return fmt.Errorf("move binding: %w", err)
	}
	if m.binds.resize, err = m.x.ParseButton(b.Resize); err != nil {
		return fmt.Errorf("resize binding: %w", err)
	}
	if m.binds.close, err = m.x.ParseKey(b.Close); err != nil {
		return fmt.Errorf("close binding: %w", err)
	}
	if m.binds.cycle, err = m.x.ParseKey(b.Cycle); err != nil {
		return fmt.Errorf("cycle binding: %w", err)
	}
	return nil
}

// SetMenu attaches the menu bar. Its window is never framed.
func (m *Manager) SetMenu(menu Menu) {
	m.menu = menu
}

// SetHotkeys attaches the root hotkey handler.
func (m *Manager) SetHotkeys(h Hotkeys) {
	m.hotkeys = h
}

// Clients exposes the client table for inspection.
func (m *Manager) Clients() *ClientTable {
	return m.clients
}

// Start takes over the display: it refuses to run next to another window
// manager, installs the error handler and frames the windows that are
// already mapped.
func (m *Manager) Start() error {
	running, err := m.x.ProbeForExistingManager()
	invariant(err == nil, "probing for another window manager: %v", err)
	if running {
		return ErrAnotherWM
	}
	m.x.SetErrorHandler(m.reportXError)

	if err := m.adopt(); err != nil {
		return err
	}
	m.log.Info("window manager started", "clients", m.clients.Len())
	return nil
}

// adopt frames the existing top-level windows while the server is grabbed,
// so no window can appear or vanish half-way through.
func (m *Manager) adopt() (err error) {
	if gerr := m.x.GrabServer(); gerr != nil {
		m.report("grab server", gerr)
	}
	defer func() {
		if uerr := m.x.UngrabServer(); uerr != nil {
			m.report("ungrab server", uerr)
		}
	}()

	tree, err := m.x.QueryTree(m.root)
	if err != nil {
		return fmt.Errorf("list top-level windows: %w", err)
	}
	invariant(tree.Root == m.root, "tree root %d differs from root %d", tree.Root, m.root)

	m.adopting = true
	defer func() { m.adopting = false }()
	for _, w := range tree.Children {
		if m.ownWindow(w) {
			continue
		}
		m.frame(w, true)
	}
	m.publish()
	return nil
}

func (m *Manager) ownWindow(w xproto.Window) bool {
	if m.menu != nil && w == m.menu.Window() {
		return true
	}
	_, isFrame := m.clients.ClientOfFrame(w)
	return isFrame
}

// Run dispatches events until the display connection goes away.
func (m *Manager) Run() error {
	for {
		ev, err := m.x.NextEvent()
		if err != nil {
			if errors.Is(err, x11.ErrConnectionClosed) {
				m.log.Info("display connection closed")
				return nil
			}
			return err
		}
		m.HandleEvent(ev)
	}
}

// HandleEvent dispatches a single event.
func (m *Manager) HandleEvent(ev xgb.Event) {
	invariant(!m.dispatching, "reentrant dispatch of %T", ev)
	m.dispatching = true
	defer func() { m.dispatching = false }()

	if m.log.Enabled(context.Background(), slog.LevelDebug) {
		m.log.Debug("received event", "event", ev.String())
	}

	switch e := ev.(type) {
	case xproto.MapRequestEvent:
		m.onMapRequest(e)
	case xproto.ConfigureRequestEvent:
		m.onConfigureRequest(e)
	case xproto.UnmapNotifyEvent:
		m.onUnmapNotify(e)
	case xproto.DestroyNotifyEvent:
		m.onDestroyNotify(e)
	case xproto.ButtonPressEvent:
		m.onButtonPress(e)
	case xproto.ButtonReleaseEvent:
		m.onButtonRelease(e)
	case xproto.MotionNotifyEvent:
		m.onMotionNotify(e)
		return
	case xproto.KeyPressEvent:
		m.onKeyPress(e)
	case xproto.ExposeEvent:
		m.onExpose(e)
	case xproto.ClientMessageEvent:
		m.onClientMessage(e)
	case xproto.PropertyNotifyEvent:
		m.onPropertyNotify(e)
	case xproto.MappingNotifyEvent:
		m.onMappingNotify(e)
		return
	case xproto.CreateNotifyEvent, xproto.ReparentNotifyEvent,
		xproto.ConfigureNotifyEvent, xproto.MapNotifyEvent,
		xproto.KeyReleaseEvent:
		return
	default:
		m.log.Debug("ignored event", "type", fmt.Sprintf("%T", ev))
		return
	}
	m.publish()
}
