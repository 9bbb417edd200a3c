// Package desktop implements virtual desktops by mapping and unmapping
// frames, and keeps the EWMH desktop hints in step.
package desktop

import (
	"log/slog"

	"github.com/BurntSushi/xgb/xproto"
)

// Display is the part of the X connection desktops need.
// *x11.Connection implements it.
type Display interface {
	MapWindow(win xproto.Window) error
	UnmapWindow(win xproto.Window) error
	SetDesktopCount(count int) error
	SetCurrentDesktop(index int) error
	SetWindowDesktop(win xproto.Window, index int) error
}

type entry struct {
	frame   xproto.Window
	desktop int
	sticky  bool
	hidden  bool
}

// Manager assigns frames to desktops. Only frames on the current desktop,
// and sticky ones, are mapped. Like the window manager core it is driven
// from the event goroutine and is not safe for concurrent use.
type Manager struct {
	d       Display
	log     *slog.Logger
	count   int
	current int
	windows map[xproto.Window]*entry
}

// New creates a manager with count desktops (at least one). Nothing is sent
// to the display until Publish.
func New(d Display, count int, logger *slog.Logger) *Manager {
	if count < 1 {
		count = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		d:       d,
		log:     logger.With("component", "desktop"),
		count:   count,
		windows: make(map[xproto.Window]*entry),
	}
	return m
}

// Publish sets _NET_NUMBER_OF_DESKTOPS and _NET_CURRENT_DESKTOP on the root.
func (m *Manager) Publish() {
	m.report("publish desktop count", m.d.SetDesktopCount(m.count))
	m.report("publish current desktop", m.d.SetCurrentDesktop(m.current))
}

func (m *Manager) report(op string, err error) {
	if err != nil {
		m.log.Warn("desktop request failed", "op", op, "error", err)
	}
}

// Count returns the number of desktops.
func (m *Manager) Count() int { return m.count }

// Current returns the index of the visible desktop.
func (m *Manager) Current() int { return m.current }

// Add puts frame on the current desktop. The frame is already mapped.
func (m *Manager) Add(client, frame xproto.Window, sticky bool) {
	m.windows[client] = &entry{frame: frame, desktop: m.current, sticky: sticky}
	m.report("publish window desktop", m.d.SetWindowDesktop(client, m.current))
}

// Remove forgets client. Its frame is not touched.
func (m *Manager) Remove(client xproto.Window) {
	delete(m.windows, client)
}

// DesktopOf returns the desktop client lives on, or -1 when unknown.
func (m *Manager) DesktopOf(client xproto.Window) int {
	e, ok := m.windows[client]
	if !ok {
		return -1
	}
	return e.desktop
}

// Visible reports whether client's frame is currently mapped.
func (m *Manager) Visible(client xproto.Window) bool {
	e, ok := m.windows[client]
	if !ok || e.hidden {
		return false
	}
	return e.sticky || e.desktop == m.current
}

// SwitchTo makes desktop index current. Out of range indexes and the current
// desktop are ignored.
func (m *Manager) SwitchTo(index int) {
	if index < 0 || index >= m.count || index == m.current {
		m.log.Debug("desktop switch ignored", "index", index, "current", m.current)
		return
	}

	// Map the incoming desktop first so the root never flashes empty.
	for client, e := range m.windows {
		if !e.sticky && !e.hidden && e.desktop == index {
			m.report("map frame", m.d.MapWindow(e.frame))
			m.log.Debug("showing frame", "client", client, "desktop", index)
		}
	}
	for _, e := range m.windows {
		if !e.sticky && !e.hidden && e.desktop == m.current {
			m.report("unmap frame", m.d.UnmapWindow(e.frame))
		}
	}

	m.log.Info("switched desktop", "from", m.current, "to", index)
	m.current = index
	m.report("publish current desktop", m.d.SetCurrentDesktop(index))
}

// MoveTo sends client to desktop index, unmapping it if that desktop is not
// the visible one.
func (m *Manager) MoveTo(client xproto.Window, index int) {
	e, ok := m.windows[client]
	if !ok || index < 0 || index >= m.count || e.desktop == index {
		return
	}
	wasVisible := m.Visible(client)
	e.desktop = index
	if wasVisible && !m.Visible(client) {
		m.report("unmap frame", m.d.UnmapWindow(e.frame))
	} else if !wasVisible && m.Visible(client) {
		m.report("map frame", m.d.MapWindow(e.frame))
	}
	m.report("publish window desktop", m.d.SetWindowDesktop(client, index))
}

// Hide unmaps client's frame until Show is called.
func (m *Manager) Hide(client xproto.Window) {
	e, ok := m.windows[client]
	if !ok || e.hidden {
		return
	}
	visible := m.Visible(client)
	e.hidden = true
	if visible {
		m.report("unmap frame", m.d.UnmapWindow(e.frame))
	}
}

// Show brings client back: it switches to the client's desktop when needed
// and maps the frame if it was hidden.
func (m *Manager) Show(client xproto.Window) {
	e, ok := m.windows[client]
	if !ok {
		return
	}
	if !e.sticky && e.desktop != m.current {
		m.SwitchTo(e.desktop)
	}
	if e.hidden {
		e.hidden = false
		m.report("map frame", m.d.MapWindow(e.frame))
	}
}
