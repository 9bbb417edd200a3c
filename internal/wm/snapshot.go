package wm

// WindowInfo describes one managed client in a Snapshot.
type WindowInfo struct {
	Client    uint32 `json:"client" yaml:"client"`
	Frame     uint32 `json:"frame" yaml:"frame"`
	Title     string `json:"title" yaml:"title"`
	Desktop   int    `json:"desktop" yaml:"desktop"`
	Wallpaper bool   `json:"wallpaper,omitempty" yaml:"wallpaper,omitempty"`
	Focused   bool   `json:"focused,omitempty" yaml:"focused,omitempty"`
}

// Snapshot is an immutable copy of the manager state, safe to read from any
// goroutine.
type Snapshot struct {
	Windows []WindowInfo `json:"windows" yaml:"windows"`
	Focused uint32       `json:"focused" yaml:"focused"`
	Desktop int          `json:"desktop" yaml:"desktop"`
}

// Snapshot returns the state published after the last handled event.
func (m *Manager) Snapshot() *Snapshot {
	return m.snapshot.Load()
}

func (m *Manager) publish() {
	s := &Snapshot{
		Windows: make([]WindowInfo, 0, m.clients.Len()),
		Focused: uint32(m.focused),
	}
	if m.desktops != nil {
		s.Desktop = m.desktops.Current()
	}
	for pair := m.clients.byClient.Oldest(); pair != nil; pair = pair.Next() {
		client := pair.Key
		info := WindowInfo{
			Client:    uint32(client),
			Frame:     uint32(pair.Value),
			Title:     m.titles[client],
			Wallpaper: client == m.wallpaper,
			Focused:   client == m.focused,
		}
		if m.desktops != nil {
			info.Desktop = m.desktops.DesktopOf(client)
		}
		s.Windows = append(s.Windows, info)
	}
	m.snapshot.Store(s)
}
