package wm

import (
	"slices"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/macwm/macwm/internal/geom"
)

// closeClient asks client to close itself when it speaks WM_DELETE_WINDOW
// and kills its connection otherwise.
func (m *Manager) closeClient(client xproto.Window) {
	protocols, err := m.x.WMProtocols(client)
	if err == nil && slices.Contains(protocols, "WM_DELETE_WINDOW") {
		m.log.Info("gracefully deleting window", "client", client)
		m.report("send WM_DELETE_WINDOW",
			m.x.SendProtocolMessage(client, m.atoms.wmProtocols, m.atoms.wmDeleteWindow))
		return
	}
	m.log.Info("killing window", "client", client)
	m.report("kill client", m.x.KillClient(client))
}

// cycle activates the next non-wallpaper client after from in mapping order.
func (m *Manager) cycle(from xproto.Window) {
	client, frame, ok := m.clients.Next(from, func(client, frame xproto.Window) bool {
		return !m.isWallpaper(client) && !m.isWallpaper(frame)
	})
	if !ok {
		m.log.Debug("no window to cycle to")
		return
	}
	m.activate(client, frame)
}

func (m *Manager) isWallpaper(win xproto.Window) bool {
	if m.wallpaper == 0 {
		return false
	}
	if win == m.wallpaper {
		return true
	}
	frame, _ := m.clients.Frame(m.wallpaper)
	return win == frame
}

// activate shows, raises and focuses client. The wallpaper stays put.
func (m *Manager) activate(client, frame xproto.Window) {
	if m.isWallpaper(client) {
		m.log.Debug("not activating wallpaper", "client", client)
		return
	}
	m.show(client, frame)
	m.report("raise frame", m.x.RaiseWindow(frame))
	m.report("focus client", m.x.SetInputFocus(client))
	m.focused = client
	m.report("publish active window", m.x.SetActiveWindow(client))
	m.log.Debug("activated window", "client", client)
}

func (m *Manager) show(client, frame xproto.Window) {
	if m.desktops != nil {
		m.desktops.Show(client)
		return
	}
	if m.hidden[client] {
		delete(m.hidden, client)
		m.report("map frame", m.x.MapWindow(frame))
	}
}

// minimize hides the frame until the client is activated again.
func (m *Manager) minimize(client xproto.Window) {
	frame, ok := m.clients.Frame(client)
	if !ok {
		return
	}
	if m.desktops != nil {
		m.desktops.Hide(client)
	} else {
		m.hidden[client] = true
		m.report("unmap frame", m.x.UnmapWindow(frame))
	}
	if m.focused == client {
		m.focused = 0
		m.report("clear active window", m.x.SetActiveWindow(0))
	}
}

// toggleMaximize grows the frame to cover the root window below the menu
// bar, or puts it back where it was.
func (m *Manager) toggleMaximize(client xproto.Window) {
	frame, ok := m.clients.Frame(client)
	if !ok {
		return
	}

	var target geom.Rect
	if saved, ok := m.restore[client]; ok {
		target = saved
		delete(m.restore, client)
	} else {
		current, err := m.x.Geometry(frame)
		if err != nil {
			m.report("read frame geometry", err)
			return
		}
		m.restore[client] = current
		root := m.x.RootGeometry()
		border := 2 * m.style.BorderWidth
		top := 0
		if m.menu != nil {
			top = m.menu.Height()
		}
		target = geom.R(0, top, root.Width-border, root.Height-top-border)
	}

	clientSize := target.Size.Add(geom.Vector2D{Y: -m.style.TitleBarHeight}).Clamp()
	m.report("move frame", m.x.MoveResizeWindow(frame, target))
	m.report("resize client", m.x.ResizeWindow(client, clientSize))
	m.report("raise frame", m.x.RaiseWindow(frame))
	if deco, ok := m.decorations[client]; ok {
		deco.Resize(clientSize.Width)
	}
}

// sendToDesktop moves client to desktop index. A focused client that leaves
// the visible desktop loses focus.
func (m *Manager) sendToDesktop(client xproto.Window, index int) {
	if m.desktops == nil || !m.clients.Has(client) || m.isWallpaper(client) {
		return
	}
	m.desktops.MoveTo(client, index)
	m.log.Debug("moved window", "client", client, "desktop", m.desktops.DesktopOf(client))
	if m.focused == client && m.desktops.DesktopOf(client) != m.desktops.Current() {
		m.focused = 0
		m.report("clear active window", m.x.SetActiveWindow(0))
	}
}

// SendFocusedToDesktop moves the focused client to desktop index. It must be
// called from the event loop, as hotkey actions are.
func (m *Manager) SendFocusedToDesktop(index int) {
	if m.focused == 0 {
		m.log.Debug("no focused window to move", "desktop", index)
		return
	}
	m.sendToDesktop(m.focused, index)
}
