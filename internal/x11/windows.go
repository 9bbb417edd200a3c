package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/macwm/macwm/internal/geom"
)

// WindowAttributes is the subset of a window's attributes and geometry the
// window manager cares about.
type WindowAttributes struct {
	geom.Rect
	BorderWidth      int
	OverrideRedirect bool
	Viewable         bool
}

// Tree is the result of a QueryTree request.
type Tree struct {
	Root     xproto.Window
	Parent   xproto.Window
	Children []xproto.Window
}

// WindowSpec describes a window to create.
type WindowSpec struct {
	Parent      xproto.Window
	Bounds      geom.Rect
	BorderWidth int
	BorderColor uint32
	Background  uint32
	EventMask   uint32
}

// WindowChanges mirrors a ConfigureWindow value list. Only the fields named
// in Mask (xproto.ConfigWindow*) are sent.
type WindowChanges struct {
	Mask        uint16
	X, Y        int
	Width       int
	Height      int
	BorderWidth int
	Sibling     xproto.Window
	StackMode   byte
}

// Values returns the ConfigureWindow value list for c.Mask, in protocol order.
func (c WindowChanges) Values() []uint32 {
	var vals []uint32
	if c.Mask&xproto.ConfigWindowX != 0 {
		vals = append(vals, uint32(int32(c.X)))
	}
	if c.Mask&xproto.ConfigWindowY != 0 {
		vals = append(vals, uint32(int32(c.Y)))
	}
	if c.Mask&xproto.ConfigWindowWidth != 0 {
		vals = append(vals, uint32(c.Width))
	}
	if c.Mask&xproto.ConfigWindowHeight != 0 {
		vals = append(vals, uint32(c.Height))
	}
	if c.Mask&xproto.ConfigWindowBorderWidth != 0 {
		vals = append(vals, uint32(c.BorderWidth))
	}
	if c.Mask&xproto.ConfigWindowSibling != 0 {
		vals = append(vals, uint32(c.Sibling))
	}
	if c.Mask&xproto.ConfigWindowStackMode != 0 {
		vals = append(vals, uint32(c.StackMode))
	}
	return vals
}

// QueryTree lists the children of win in stacking order, bottom first.
func (c *Connection) QueryTree(win xproto.Window) (Tree, error) {
	reply, err := xproto.QueryTree(c.Conn(), win).Reply()
	if err != nil {
		return Tree{}, fmt.Errorf("query tree of %d: %w", win, err)
	}
	return Tree{Root: reply.Root, Parent: reply.Parent, Children: reply.Children}, nil
}

// WindowAttributes reads the attributes and geometry of win.
func (c *Connection) WindowAttributes(win xproto.Window) (WindowAttributes, error) {
	attrCookie := xproto.GetWindowAttributes(c.Conn(), win)
	geomCookie := xproto.GetGeometry(c.Conn(), xproto.Drawable(win))

	attrs, err := attrCookie.Reply()
	if err != nil {
		return WindowAttributes{}, fmt.Errorf("get attributes of %d: %w", win, err)
	}
	g, err := geomCookie.Reply()
	if err != nil {
		return WindowAttributes{}, fmt.Errorf("get geometry of %d: %w", win, err)
	}

	return WindowAttributes{
		Rect:             geom.R(int(g.X), int(g.Y), int(g.Width), int(g.Height)),
		BorderWidth:      int(g.BorderWidth),
		OverrideRedirect: attrs.OverrideRedirect,
		Viewable:         attrs.MapState == xproto.MapStateViewable,
	}, nil
}

// Geometry returns the position and size of win relative to its parent.
func (c *Connection) Geometry(win xproto.Window) (geom.Rect, error) {
	g, err := xproto.GetGeometry(c.Conn(), xproto.Drawable(win)).Reply()
	if err != nil {
		return geom.Rect{}, fmt.Errorf("get geometry of %d: %w", win, err)
	}
	return geom.R(int(g.X), int(g.Y), int(g.Width), int(g.Height)), nil
}

// RootGeometry returns the size of the root window.
func (c *Connection) RootGeometry() geom.Rect {
	r := xwindow.RootGeometry(c.XUtil)
	return geom.R(r.X(), r.Y(), r.Width(), r.Height())
}

// CreateWindow creates an unmapped InputOutput window.
func (c *Connection) CreateWindow(spec WindowSpec) (xproto.Window, error) {
	wid, err := xproto.NewWindowId(c.Conn())
	if err != nil {
		return 0, fmt.Errorf("allocate window id: %w", err)
	}

	mask := uint32(xproto.CwBackPixel | xproto.CwBorderPixel)
	vals := []uint32{spec.Background, spec.BorderColor}
	if spec.EventMask != 0 {
		mask |= xproto.CwEventMask
		vals = append(vals, spec.EventMask)
	}

	b := spec.Bounds
	err = xproto.CreateWindowChecked(
		c.Conn(),
		xproto.WindowClassCopyFromParent,
		wid,
		spec.Parent,
		int16(b.X), int16(b.Y),
		uint16(max(b.Width, 1)), uint16(max(b.Height, 1)),
		uint16(spec.BorderWidth),
		xproto.WindowClassInputOutput,
		xproto.WindowClassCopyFromParent,
		mask,
		vals,
	).Check()
	if err != nil {
		return 0, fmt.Errorf("create window: %w", err)
	}
	return wid, nil
}

// DestroyWindow destroys win and all of its children.
func (c *Connection) DestroyWindow(win xproto.Window) error {
	return xproto.DestroyWindowChecked(c.Conn(), win).Check()
}

// MapWindow maps win.
func (c *Connection) MapWindow(win xproto.Window) error {
	return xproto.MapWindowChecked(c.Conn(), win).Check()
}

// UnmapWindow unmaps win.
func (c *Connection) UnmapWindow(win xproto.Window) error {
	return xproto.UnmapWindowChecked(c.Conn(), win).Check()
}

// ReparentWindow moves win under parent at (x, y).
func (c *Connection) ReparentWindow(win, parent xproto.Window, x, y int) error {
	return xproto.ReparentWindowChecked(c.Conn(), win, parent, int16(x), int16(y)).Check()
}

// SelectInput replaces the event mask our client holds on win.
func (c *Connection) SelectInput(win xproto.Window, mask uint32) error {
	return xproto.ChangeWindowAttributesChecked(c.Conn(), win, xproto.CwEventMask, []uint32{mask}).Check()
}

// AddToSaveSet keeps win alive (reparented to root) if this client dies.
func (c *Connection) AddToSaveSet(win xproto.Window) error {
	return xproto.ChangeSaveSetChecked(c.Conn(), xproto.SetModeInsert, win).Check()
}

// RemoveFromSaveSet undoes AddToSaveSet.
func (c *Connection) RemoveFromSaveSet(win xproto.Window) error {
	return xproto.ChangeSaveSetChecked(c.Conn(), xproto.SetModeDelete, win).Check()
}

// ConfigureWindow applies ch to win. Asynchronous: failures reach the error
// handler.
func (c *Connection) ConfigureWindow(win xproto.Window, ch WindowChanges) error {
	if ch.Mask == 0 {
		return nil
	}
	xproto.ConfigureWindow(c.Conn(), win, ch.Mask, ch.Values())
	return nil
}

// MoveWindow moves win. Asynchronous: failures reach the error handler.
func (c *Connection) MoveWindow(win xproto.Window, p geom.Position) error {
	return c.ConfigureWindow(win, WindowChanges{
		Mask: xproto.ConfigWindowX | xproto.ConfigWindowY,
		X:    p.X,
		Y:    p.Y,
	})
}

// ResizeWindow resizes win. Zero dimensions are sent as 1 since the
// protocol rejects empty windows. Asynchronous: failures reach the error
// handler.
func (c *Connection) ResizeWindow(win xproto.Window, s geom.Size) error {
	return c.ConfigureWindow(win, WindowChanges{
		Mask:   xproto.ConfigWindowWidth | xproto.ConfigWindowHeight,
		Width:  max(s.Width, 1),
		Height: max(s.Height, 1),
	})
}

// MoveResizeWindow sets position and size of win in one request.
func (c *Connection) MoveResizeWindow(win xproto.Window, r geom.Rect) error {
	return c.ConfigureWindow(win, WindowChanges{
		Mask:   xproto.ConfigWindowX | xproto.ConfigWindowY | xproto.ConfigWindowWidth | xproto.ConfigWindowHeight,
		X:      r.X,
		Y:      r.Y,
		Width:  max(r.Width, 1),
		Height: max(r.Height, 1),
	})
}

// RaiseWindow puts win on top of its siblings.
func (c *Connection) RaiseWindow(win xproto.Window) error {
	return c.ConfigureWindow(win, WindowChanges{
		Mask:      xproto.ConfigWindowStackMode,
		StackMode: xproto.StackModeAbove,
	})
}

// SetInputFocus gives keyboard focus to win, reverting to the pointer root.
func (c *Connection) SetInputFocus(win xproto.Window) error {
	return xproto.SetInputFocusChecked(c.Conn(), xproto.InputFocusPointerRoot, win, xproto.TimeCurrentTime).Check()
}

// KillClient forcibly closes the connection of the client owning win.
func (c *Connection) KillClient(win xproto.Window) error {
	return xproto.KillClientChecked(c.Conn(), uint32(win)).Check()
}

// InternAtom resolves (and caches) an atom by name.
func (c *Connection) InternAtom(name string) (xproto.Atom, error) {
	atom, err := xprop.Atm(c.XUtil, name)
	if err != nil {
		return 0, fmt.Errorf("intern %s: %w", name, err)
	}
	return atom, nil
}

// WMProtocols returns the ICCCM protocols win participates in.
func (c *Connection) WMProtocols(win xproto.Window) ([]string, error) {
	return icccm.WmProtocolsGet(c.XUtil, win)
}

// SendProtocolMessage sends a WM_PROTOCOLS client message carrying the
// protocol atom to win.
func (c *Connection) SendProtocolMessage(win xproto.Window, wmProtocols, protocol xproto.Atom) error {
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: win,
		Type:   wmProtocols,
		Data: xproto.ClientMessageDataUnionData32New([]uint32{
			uint32(protocol), uint32(xproto.TimeCurrentTime), 0, 0, 0,
		}),
	}
	return xproto.SendEventChecked(c.Conn(), false, win, xproto.EventMaskNoEvent, string(ev.Bytes())).Check()
}

// WindowTitle returns the best available title for win, or "" when it has none.
func (c *Connection) WindowTitle(win xproto.Window) string {
	if name, err := ewmh.WmNameGet(c.XUtil, win); err == nil && name != "" {
		return name
	}
	if name, err := icccm.WmNameGet(c.XUtil, win); err == nil {
		return name
	}
	return ""
}

// WindowTypes returns the _NET_WM_WINDOW_TYPE list of win.
func (c *Connection) WindowTypes(win xproto.Window) ([]string, error) {
	return ewmh.WmWindowTypeGet(c.XUtil, win)
}

// IsDesktopWindow reports whether win declares itself a desktop background.
func (c *Connection) IsDesktopWindow(win xproto.Window) bool {
	types, err := c.WindowTypes(win)
	if err != nil {
		return false
	}
	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_DESKTOP" {
			return true
		}
	}
	return false
}
