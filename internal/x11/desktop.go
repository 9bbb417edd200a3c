package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// SupportedHints are the EWMH hints macwm maintains or reacts to.
var SupportedHints = []string{
	"_NET_SUPPORTED",
	"_NET_SUPPORTING_WM_CHECK",
	"_NET_WM_NAME",
	"_NET_CLIENT_LIST",
	"_NET_ACTIVE_WINDOW",
	"_NET_CLOSE_WINDOW",
	"_NET_NUMBER_OF_DESKTOPS",
	"_NET_CURRENT_DESKTOP",
	"_NET_WM_DESKTOP",
	"_NET_WM_WINDOW_TYPE",
	"_NET_WM_WINDOW_TYPE_DESKTOP",
}

// AnnounceWM publishes _NET_SUPPORTED and the _NET_SUPPORTING_WM_CHECK
// window so pagers and tools can discover the running manager by name.
func (c *Connection) AnnounceWM(name string) (xproto.Window, error) {
	check, err := c.CreateWindow(WindowSpec{Parent: c.Root})
	if err != nil {
		return 0, fmt.Errorf("create supporting wm check window: %w", err)
	}
	if err := ewmh.SupportingWmCheckSet(c.XUtil, c.Root, check); err != nil {
		return check, fmt.Errorf("set _NET_SUPPORTING_WM_CHECK on root: %w", err)
	}
	if err := ewmh.SupportingWmCheckSet(c.XUtil, check, check); err != nil {
		return check, fmt.Errorf("set _NET_SUPPORTING_WM_CHECK on check window: %w", err)
	}
	if err := ewmh.WmNameSet(c.XUtil, check, name); err != nil {
		return check, fmt.Errorf("set _NET_WM_NAME: %w", err)
	}
	if err := ewmh.SupportedSet(c.XUtil, SupportedHints); err != nil {
		return check, fmt.Errorf("set _NET_SUPPORTED: %w", err)
	}
	return check, nil
}

// SetClientList publishes the managed client windows in mapping order.
func (c *Connection) SetClientList(clients []xproto.Window) error {
	return ewmh.ClientListSet(c.XUtil, clients)
}

// SetActiveWindow publishes the focused client.
func (c *Connection) SetActiveWindow(win xproto.Window) error {
	return ewmh.ActiveWindowSet(c.XUtil, win)
}

// SetDesktopCount publishes _NET_NUMBER_OF_DESKTOPS.
func (c *Connection) SetDesktopCount(count int) error {
	return ewmh.NumberOfDesktopsSet(c.XUtil, uint(count))
}

// SetCurrentDesktop publishes _NET_CURRENT_DESKTOP.
func (c *Connection) SetCurrentDesktop(index int) error {
	return ewmh.CurrentDesktopSet(c.XUtil, uint(index))
}

// SetWindowDesktop publishes _NET_WM_DESKTOP on a client window.
func (c *Connection) SetWindowDesktop(win xproto.Window, index int) error {
	return ewmh.WmDesktopSet(c.XUtil, win, uint(index))
}

// GetCurrentDesktop returns the current virtual desktop number (0-indexed).
// Uses _NET_CURRENT_DESKTOP atom. Returns 0 with an error if detection fails.
func (c *Connection) GetCurrentDesktop() (int, error) {
	desktop, err := ewmh.CurrentDesktopGet(c.XUtil)
	if err != nil {
		return 0, fmt.Errorf("failed to get current desktop: %w", err)
	}
	return int(desktop), nil
}

// GetDesktopCount returns the number of virtual desktops.
func (c *Connection) GetDesktopCount() (int, error) {
	count, err := ewmh.NumberOfDesktopsGet(c.XUtil)
	if err != nil {
		return 0, fmt.Errorf("failed to get desktop count: %w", err)
	}
	return int(count), nil
}

// sendRootMessage delivers an EWMH client message to the window manager by
// sending it to the root window with the substructure masks.
// We build the message manually because the xgbutil ewmh request helpers
// panic on this library version (uint vs int type assertion).
func (c *Connection) sendRootMessage(win xproto.Window, atomName string, data []uint32) error {
	atom, err := c.InternAtom(atomName)
	if err != nil {
		return err
	}
	for len(data) < 5 {
		data = append(data, 0)
	}

	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: win,
		Type:   atom,
		Data:   xproto.ClientMessageDataUnionData32New(data),
	}

	return xproto.SendEventChecked(
		c.Conn(),
		false,
		c.Root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes()),
	).Check()
}

const sourceIndication = 2 // pager/direct action

// RequestFocus asks the window manager to activate and raise a client.
func (c *Connection) RequestFocus(win xproto.Window) error {
	return c.sendRootMessage(win, "_NET_ACTIVE_WINDOW", []uint32{sourceIndication})
}

// RequestClose asks the window manager to close a client.
func (c *Connection) RequestClose(win xproto.Window) error {
	return c.sendRootMessage(win, "_NET_CLOSE_WINDOW", []uint32{uint32(xproto.TimeCurrentTime), sourceIndication})
}

// RequestDesktop asks the window manager to switch desktops.
func (c *Connection) RequestDesktop(index int) error {
	return c.sendRootMessage(c.Root, "_NET_CURRENT_DESKTOP", []uint32{uint32(index), uint32(xproto.TimeCurrentTime)})
}

// withConnection runs fn against a new temporary X11 connection.
func withConnection(display string, fn func(*Connection) error) error {
	conn, err := NewConnection(display)
	if err != nil {
		return fmt.Errorf("failed to connect to X11: %w", err)
	}
	defer conn.Close()

	return fn(conn)
}

// RequestFocusStandalone activates and raises a window using a new temporary
// X11 connection.
func RequestFocusStandalone(display string, win uint32) error {
	return withConnection(display, func(c *Connection) error {
		return c.RequestFocus(xproto.Window(win))
	})
}

// RequestCloseStandalone closes a window using a new temporary X11 connection.
func RequestCloseStandalone(display string, win uint32) error {
	return withConnection(display, func(c *Connection) error {
		return c.RequestClose(xproto.Window(win))
	})
}

// RequestDesktopStandalone switches desktops using a new temporary X11
// connection.
func RequestDesktopStandalone(display string, index int) error {
	return withConnection(display, func(c *Connection) error {
		return c.RequestDesktop(index)
	})
}

// DesktopStandalone reads _NET_CURRENT_DESKTOP and _NET_NUMBER_OF_DESKTOPS
// from the root window.
func DesktopStandalone(display string) (current, count int, err error) {
	err = withConnection(display, func(c *Connection) error {
		if current, err = c.GetCurrentDesktop(); err != nil {
			return err
		}
		count, err = c.GetDesktopCount()
		return err
	})
	return current, count, err
}
