package x11

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/mousebind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// ErrConnectionClosed is returned by NextEvent once the X connection is gone.
var ErrConnectionClosed = errors.New("x11: connection closed")

// ErrorHandler receives protocol errors that were not consumed by a checked
// request. It must not terminate the process.
type ErrorHandler func(xgb.Error)

// Connection manages the X11 connection and core X resources. It is the
// display transport used by the window manager: a blocking event source,
// synchronous requests, and an error callback.
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window

	display string
}

// NewConnection establishes a connection to the X11 server named by display
// (empty means $DISPLAY) and initializes the keyboard and mouse binding state.
func NewConnection(display string) (*Connection, error) {
	var (
		xu  *xgbutil.XUtil
		err error
	)
	if display == "" {
		xu, err = xgbutil.NewConn()
	} else {
		xu, err = xgbutil.NewConnDisplay(display)
	}
	if err != nil {
		return nil, err
	}

	// Initialize keybind module (required for key grabs and keysym lookups)
	keybind.Initialize(xu)
	mousebind.Initialize(xu)
	configureIgnoreMods(xu)

	c := &Connection{
		XUtil:   xu,
		Root:    xu.RootWin(),
		display: display,
	}
	c.SetErrorHandler(nil)
	return c, nil
}

// DisplayName returns the display string the connection was opened with.
func (c *Connection) DisplayName() string {
	if c.display == "" {
		return "$DISPLAY"
	}
	return c.display
}

// Conn returns the raw xgb connection.
func (c *Connection) Conn() *xgb.Conn {
	return c.XUtil.Conn()
}

// RootWindow returns the root window of the default screen.
func (c *Connection) RootWindow() xproto.Window {
	return c.Root
}

// SetErrorHandler installs the callback used for asynchronous protocol errors.
// A nil handler drops them.
func (c *Connection) SetErrorHandler(h ErrorHandler) {
	if h == nil {
		h = func(xgb.Error) {}
	}
	xevent.ErrorHandlerSet(c.XUtil, xgbutil.ErrorHandlerFun(h))
}

// NextEvent blocks until the next event is available. Protocol errors that
// arrive on the event stream are passed to the error handler and skipped.
// A keyboard MappingNotify refreshes the keybind tables before it is
// returned, so the caller can re-parse and re-grab its bindings.
func (c *Connection) NextEvent() (xgb.Event, error) {
	for {
		if xevent.Empty(c.XUtil) {
			// xevent.Read treats a closed connection as fatal; wait here
			// instead and hand the result to the queue.
			ev, xerr := c.Conn().WaitForEvent()
			if ev == nil && xerr == nil {
				return nil, ErrConnectionClosed
			}
			xevent.Enqueue(c.XUtil, ev, xerr)
		}

		ev, xerr := xevent.Dequeue(c.XUtil)
		if xerr != nil {
			xevent.ErrorHandlerGet(c.XUtil)(xerr)
			continue
		}
		if mn, ok := ev.(xproto.MappingNotifyEvent); ok {
			c.refreshKeyboard(mn)
		}
		return ev, nil
	}
}

// refreshKeyboard reloads the keyboard and modifier maps the way keybind's
// own MappingNotify callback does, then recomputes the lock modifiers to
// ignore. That callback only fires from xevent.Main, which we do not run.
func (c *Connection) refreshKeyboard(ev xproto.MappingNotifyEvent) {
	if ev.Request == xproto.MappingPointer {
		return
	}
	keyMap, modMap := keybind.MapsGet(c.XUtil)
	keybind.KeyMapSet(c.XUtil, keyMap)
	keybind.ModMapSet(c.XUtil, modMap)
	configureIgnoreMods(c.XUtil)
}

// DrainMotion removes every queued MotionNotify event reported for win and
// returns the newest one. Other queued events keep their order.
func (c *Connection) DrainMotion(win xproto.Window) (xproto.MotionNotifyEvent, bool) {
	xevent.Read(c.XUtil, false)

	var (
		last  xproto.MotionNotifyEvent
		found bool
	)
	queued := xevent.Peek(c.XUtil)
	for i := len(queued) - 1; i >= 0; i-- {
		m, ok := queued[i].Event.(xproto.MotionNotifyEvent)
		if !ok || m.Event != win {
			continue
		}
		if !found {
			last, found = m, true
		}
		xevent.DequeueAt(c.XUtil, i)
	}
	return last, found
}

// ProbeForExistingManager asks for substructure redirection on the root
// window and waits for the server's verdict. It reports true when another
// client already holds the redirect (BadAccess). Any other failure is
// returned as an error.
func (c *Connection) ProbeForExistingManager() (bool, error) {
	err := xproto.ChangeWindowAttributesChecked(
		c.Conn(),
		c.Root,
		xproto.CwEventMask,
		[]uint32{xproto.EventMaskSubstructureRedirect | xproto.EventMaskSubstructureNotify},
	).Check()
	if err == nil {
		return false, nil
	}
	if _, ok := err.(xproto.AccessError); ok {
		return true, nil
	}
	return false, fmt.Errorf("unexpected error selecting root events: %w", err)
}

// GrabServer freezes processing of other clients' requests.
func (c *Connection) GrabServer() error {
	return xproto.GrabServerChecked(c.Conn()).Check()
}

// UngrabServer releases GrabServer.
func (c *Connection) UngrabServer() error {
	return xproto.UngrabServerChecked(c.Conn()).Check()
}

// Close cleanly disconnects from the X11 server
func (c *Connection) Close() {
	c.XUtil.Conn().Close()
}
