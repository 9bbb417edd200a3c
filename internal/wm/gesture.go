package wm

import (
	"github.com/BurntSushi/xgb/xproto"

	"github.com/macwm/macwm/internal/geom"
)

type gestureMode int

const (
	gestureMove gestureMode = iota
	gestureResize
)

// dragState is captured when a button goes down on a client or its title
// bar. Motion is applied relative to it until the button is released.
type dragState struct {
	active    bool
	mode      gestureMode
	button    xproto.Button
	client    xproto.Window
	frame     xproto.Window
	pointer   geom.Position
	framePos  geom.Position
	frameSize geom.Size
}

func (m *Manager) beginGesture(client xproto.Window, ev xproto.ButtonPressEvent) {
	frame, ok := m.clients.Frame(client)
	invariant(ok, "gesture on unmanaged client %d", client)

	bounds, err := m.x.Geometry(frame)
	if err != nil {
		m.report("read frame geometry", err)
		return
	}

	mode := gestureMove
	if ev.Event == client && ev.Detail == m.binds.resize.Button {
		mode = gestureResize
	}
	m.drag = dragState{
		active:    true,
		mode:      mode,
		button:    ev.Detail,
		client:    client,
		frame:     frame,
		pointer:   geom.Pos(int(ev.RootX), int(ev.RootY)),
		framePos:  bounds.Position,
		frameSize: bounds.Size,
	}
	m.report("raise frame", m.x.RaiseWindow(frame))
}

func (m *Manager) endGesture() {
	m.drag.active = false
}

func (m *Manager) onMotionNotify(ev xproto.MotionNotifyEvent) {
	if latest, ok := m.x.DrainMotion(ev.Event); ok {
		ev = latest
	}
	if deco := m.decorationOf(ev.Event); deco != nil {
		deco.OnMotionNotify(ev)
	}
	if !m.drag.active {
		return
	}
	if m.gestureClient(ev.Event) != m.drag.client {
		return
	}
	if ev.State&buttonMask(m.drag.button) == 0 {
		// The release went to another client; the button is no longer held.
		m.endGesture()
		return
	}

	delta := geom.Pos(int(ev.RootX), int(ev.RootY)).Sub(m.drag.pointer)
	switch m.drag.mode {
	case gestureMove:
		m.report("move frame", m.x.MoveWindow(m.drag.frame, m.drag.framePos.Add(delta)))
	case gestureResize:
		size := m.drag.frameSize.Grow(delta)
		m.report("resize frame", m.x.ResizeWindow(m.drag.frame, size))
		m.report("resize client", m.x.ResizeWindow(m.drag.client, size))
		if deco, ok := m.decorations[m.drag.client]; ok {
			deco.Resize(size.Width)
		}
	}
}

// gestureClient maps the window a motion event was reported on to the
// managed client it belongs to, or 0.
func (m *Manager) gestureClient(win xproto.Window) xproto.Window {
	if m.clients.Has(win) {
		return win
	}
	if client, ok := m.clients.ClientOfFrame(win); ok {
		return client
	}
	if deco := m.decorationOf(win); deco != nil {
		return deco.Client()
	}
	return 0
}

func buttonMask(b xproto.Button) uint16 {
	if b < 1 || b > 5 {
		return 0
	}
	return xproto.KeyButMaskButton1 << (b - 1)
}
