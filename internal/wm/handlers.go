package wm

import (
	"github.com/BurntSushi/xgb/xproto"

	"github.com/macwm/macwm/internal/x11"
)

func (m *Manager) onMapRequest(ev xproto.MapRequestEvent) {
	if m.clients.Has(ev.Window) {
		m.log.Debug("map request for managed window", "client", ev.Window)
	} else {
		m.frame(ev.Window, false)
	}
	m.report("map client", m.x.MapWindow(ev.Window))
}

// onConfigureRequest grants the request as asked. A managed client stays at
// the top of its frame below the title bar; the requested position moves the
// frame instead.
func (m *Manager) onConfigureRequest(ev xproto.ConfigureRequestEvent) {
	changes := x11.WindowChanges{
		Mask:        ev.ValueMask,
		X:           int(ev.X),
		Y:           int(ev.Y),
		Width:       int(ev.Width),
		Height:      int(ev.Height),
		BorderWidth: int(ev.BorderWidth),
		Sibling:     ev.Sibling,
		StackMode:   ev.StackMode,
	}

	frame, managed := m.clients.Frame(ev.Window)
	if managed {
		const geometry = xproto.ConfigWindowX | xproto.ConfigWindowY |
			xproto.ConfigWindowWidth | xproto.ConfigWindowHeight
		fc := changes
		fc.Mask &= geometry
		fc.Height += m.style.TitleBarHeight
		m.report("configure frame", m.x.ConfigureWindow(frame, fc))

		if changes.Mask&xproto.ConfigWindowWidth != 0 {
			if deco, ok := m.decorations[ev.Window]; ok {
				deco.Resize(changes.Width)
			}
		}
		changes.Mask &^= xproto.ConfigWindowX | xproto.ConfigWindowY |
			xproto.ConfigWindowSibling | xproto.ConfigWindowStackMode
	}
	m.report("configure client", m.x.ConfigureWindow(ev.Window, changes))
	m.log.Debug("configured window",
		"client", ev.Window,
		"mask", ev.ValueMask,
		"x", ev.X, "y", ev.Y,
		"width", ev.Width, "height", ev.Height,
		"managed", managed,
	)
}

func (m *Manager) onUnmapNotify(ev xproto.UnmapNotifyEvent) {
	if !m.clients.Has(ev.Window) {
		m.log.Debug("unmap of unmanaged window", "window", ev.Window)
		return
	}
	// Reparenting a mapped window during adoption unmaps it with the root
	// as the event window.
	if ev.Event == m.root {
		m.log.Debug("unmap of reparented window", "client", ev.Window)
		return
	}
	m.unframe(ev.Window)
}

func (m *Manager) onDestroyNotify(ev xproto.DestroyNotifyEvent) {
	if m.clients.Has(ev.Window) {
		m.discard(ev.Window)
	}
}

func (m *Manager) onButtonPress(ev xproto.ButtonPressEvent) {
	if m.clients.Has(ev.Event) {
		m.beginGesture(ev.Event, ev)
		return
	}
	if deco := m.decorationOf(ev.Event); deco != nil {
		m.onDecorationPress(deco, ev)
		return
	}
	if m.menu != nil && ev.Event == m.menu.Window() {
		m.menu.OnButtonPress(ev)
		return
	}
	if client, ok := m.clients.ClientOfFrame(ev.Event); ok {
		if !m.isWallpaper(client) {
			m.beginGesture(client, ev)
		}
		return
	}
	m.log.Debug("button press on unknown window", "window", ev.Event)
}

func (m *Manager) onDecorationPress(deco Decoration, ev xproto.ButtonPressEvent) {
	client := deco.Client()
	action := deco.OnButtonPress(ev)
	m.log.Debug("title bar press", "client", client, "action", action.String())

	switch action {
	case ActionClose:
		m.closeClient(client)
	case ActionMinimize:
		m.minimize(client)
	case ActionMaximize:
		m.toggleMaximize(client)
	case ActionMove:
		m.beginGesture(client, ev)
	}
}

func (m *Manager) onButtonRelease(ev xproto.ButtonReleaseEvent) {
	if deco := m.decorationOf(ev.Event); deco != nil {
		deco.OnButtonRelease(ev)
	}
	if m.drag.active && ev.Detail == m.drag.button {
		m.endGesture()
	}
}

func (m *Manager) onKeyPress(ev xproto.KeyPressEvent) {
	switch {
	case m.binds.close.Matches(ev.State, ev.Detail):
		if m.clients.Has(ev.Event) {
			m.closeClient(ev.Event)
		}
	case m.binds.cycle.Matches(ev.State, ev.Detail):
		m.cycle(ev.Event)
	case m.hotkeys != nil && m.hotkeys.OnKeyPress(ev):
	default:
		m.log.Debug("unbound key", "state", ev.State, "keycode", ev.Detail)
	}
}

func (m *Manager) onExpose(ev xproto.ExposeEvent) {
	if ev.Count != 0 {
		return
	}
	if deco := m.decorationOf(ev.Window); deco != nil {
		deco.Draw()
		return
	}
	if m.menu != nil && ev.Window == m.menu.Window() {
		m.menu.OnExpose(ev)
	}
}

func (m *Manager) onClientMessage(ev xproto.ClientMessageEvent) {
	data := ev.Data.Data32
	switch ev.Type {
	case m.atoms.netActiveWindow:
		if frame, ok := m.clients.Frame(ev.Window); ok {
			m.activate(ev.Window, frame)
		}
	case m.atoms.netCloseWindow:
		if m.clients.Has(ev.Window) && !m.isWallpaper(ev.Window) {
			m.closeClient(ev.Window)
		}
	case m.atoms.netCurrentDesktop:
		if m.desktops != nil && len(data) > 0 {
			m.desktops.SwitchTo(int(data[0]))
		}
	case m.atoms.netWmDesktop:
		if len(data) > 0 {
			m.sendToDesktop(ev.Window, int(data[0]))
		}
	default:
		m.log.Debug("ignored client message", "window", ev.Window, "type", ev.Type)
	}
}

func (m *Manager) onPropertyNotify(ev xproto.PropertyNotifyEvent) {
	if ev.Atom != xproto.AtomWmName && ev.Atom != m.atoms.netWmName {
		return
	}
	if !m.clients.Has(ev.Window) {
		return
	}
	title := m.x.WindowTitle(ev.Window)
	m.titles[ev.Window] = title
	if deco, ok := m.decorations[ev.Window]; ok {
		deco.SetTitle(title)
	}
}

// onMappingNotify re-grabs the client key bindings after the keyboard
// mapping changed, since the keycodes behind them may have moved.
func (m *Manager) onMappingNotify(ev xproto.MappingNotifyEvent) {
	if ev.Request == xproto.MappingPointer {
		return
	}
	old := m.binds
	if err := m.parseBindings(m.bindSpecs); err != nil {
		m.log.Warn("keeping key bindings after keyboard change", "error", err)
		m.binds = old
		return
	}
	for _, client := range m.clients.Clients() {
		m.report("ungrab cycle key", m.x.UngrabKey(client, old.cycle))
		m.report("grab cycle key", m.x.GrabKey(client, m.binds.cycle))
		if m.isWallpaper(client) {
			continue
		}
		m.report("ungrab close key", m.x.UngrabKey(client, old.close))
		m.report("grab close key", m.x.GrabKey(client, m.binds.close))
	}
	if m.hotkeys != nil {
		m.hotkeys.Refresh()
	}
	m.log.Info("keyboard mapping changed", "clients", m.clients.Len())
}

func (m *Manager) decorationOf(win xproto.Window) Decoration {
	for _, deco := range m.decorations {
		if deco.Owns(win) {
			return deco
		}
	}
	return nil
}
