package wm

import (
	"github.com/BurntSushi/xgb/xproto"

	"github.com/macwm/macwm/internal/geom"
	"github.com/macwm/macwm/internal/x11"
)

const frameEventMask = xproto.EventMaskSubstructureRedirect |
	xproto.EventMaskSubstructureNotify |
	xproto.EventMaskExposure |
	xproto.EventMaskButtonPress |
	xproto.EventMaskButtonRelease |
	xproto.EventMaskButtonMotion

// frame wraps client in a new frame window and starts managing it.
// Pre-existing windows are only adopted when viewable.
func (m *Manager) frame(client xproto.Window, preExisting bool) {
	invariant(!m.clients.Has(client), "client %d is already framed", client)

	attrs, err := m.x.WindowAttributes(client)
	if err != nil {
		m.report("read client attributes", err)
		return
	}
	if attrs.OverrideRedirect {
		m.log.Debug("not framing override-redirect window", "client", client)
		return
	}
	if preExisting && !attrs.Viewable {
		m.log.Debug("not framing unmapped window", "client", client)
		return
	}

	wallpaper := m.isWallpaperCandidate(client, preExisting)
	spec := x11.WindowSpec{
		Parent:      m.root,
		Bounds:      geom.Rect{Position: attrs.Position, Size: attrs.Size.Add(geom.Vector2D{Y: m.style.TitleBarHeight})},
		BorderWidth: m.style.BorderWidth,
		BorderColor: m.style.BorderColor,
		Background:  m.style.Background,
	}
	if wallpaper {
		spec.BorderWidth, spec.BorderColor = 0, 0
	}

	frame, err := m.x.CreateWindow(spec)
	if err != nil {
		m.report("create frame", err)
		return
	}
	m.report("select frame input", m.x.SelectInput(frame, frameEventMask))

	if err := m.x.AddToSaveSet(client); err != nil {
		m.report("add to save set", err)
		m.report("destroy orphan frame", m.x.DestroyWindow(frame))
		return
	}
	if err := m.x.ReparentWindow(client, frame, 0, m.style.TitleBarHeight); err != nil {
		m.report("reparent client", err)
		m.report("remove from save set", m.x.RemoveFromSaveSet(client))
		m.report("destroy orphan frame", m.x.DestroyWindow(frame))
		return
	}
	m.report("map frame", m.x.MapWindow(frame))
	m.report("select client input", m.x.SelectInput(client, xproto.EventMaskPropertyChange))

	if !wallpaper {
		m.report("grab move button", m.x.GrabButton(client, m.binds.move))
		m.report("grab resize button", m.x.GrabButton(client, m.binds.resize))
		m.report("grab close key", m.x.GrabKey(client, m.binds.close))
	}
	m.report("grab cycle key", m.x.GrabKey(client, m.binds.cycle))

	m.clients.insert(client, frame)
	title := m.x.WindowTitle(client)
	m.titles[client] = title
	if wallpaper {
		m.wallpaper = client
	} else if m.newDecoration != nil {
		deco, err := m.newDecoration(client, frame, title, attrs.Width)
		if err != nil {
			m.log.Warn("decoration failed", "client", client, "error", err)
		} else {
			m.decorations[client] = deco
		}
	}
	if m.desktops != nil {
		m.desktops.Add(client, frame, wallpaper)
	}
	m.publishClientList()

	m.log.Info("framed window",
		"client", client,
		"frame", frame,
		"geometry", spec.Bounds.String(),
		"pre_existing", preExisting,
		"wallpaper", wallpaper,
	)
}

func (m *Manager) isWallpaperCandidate(client xproto.Window, preExisting bool) bool {
	if m.wallpaper != 0 {
		return false
	}
	switch m.wallpaperMode {
	case WallpaperNone:
		return false
	case WallpaperAuto:
		if preExisting && m.adopting && m.clients.Len() == 0 {
			return true
		}
	}
	return m.x.IsDesktopWindow(client)
}

// unframe undoes frame: the client goes back to the root and the frame is
// destroyed.
func (m *Manager) unframe(client xproto.Window) {
	frame, ok := m.clients.Frame(client)
	invariant(ok, "unframe of unmanaged client %d", client)

	if deco, ok := m.decorations[client]; ok {
		deco.Destroy()
		delete(m.decorations, client)
	}
	m.report("unmap frame", m.x.UnmapWindow(frame))
	m.report("reparent client to root", m.x.ReparentWindow(client, m.root, 0, 0))
	m.report("remove from save set", m.x.RemoveFromSaveSet(client))
	m.report("destroy frame", m.x.DestroyWindow(frame))
	m.clients.remove(client)

	m.forget(client)
	m.log.Info("unframed window", "client", client, "frame", frame)
}

// discard drops a client that no longer exists. Only the frame is left to
// clean up.
func (m *Manager) discard(client xproto.Window) {
	if deco, ok := m.decorations[client]; ok {
		deco.Destroy()
		delete(m.decorations, client)
	}
	frame := m.clients.remove(client)
	m.report("destroy frame", m.x.DestroyWindow(frame))

	m.forget(client)
	m.log.Info("dropped destroyed window", "client", client, "frame", frame)
}

func (m *Manager) forget(client xproto.Window) {
	delete(m.titles, client)
	delete(m.restore, client)
	delete(m.hidden, client)
	if m.desktops != nil {
		m.desktops.Remove(client)
	}
	if m.wallpaper == client {
		m.wallpaper = 0
	}
	if m.drag.client == client {
		m.drag = dragState{}
	}
	if m.focused == client {
		m.focused = 0
		m.report("clear active window", m.x.SetActiveWindow(0))
	}
	m.publishClientList()
}

func (m *Manager) publishClientList() {
	m.report("publish client list", m.x.SetClientList(m.clients.Clients()))
}
