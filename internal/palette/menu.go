package palette

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MenuItem is a node of a hierarchical palette menu. Items with a submenu
// open it when chosen; leaves return their Action.
type MenuItem struct {
	Label    string
	Action   string
	Icon     string
	IsActive bool
	Submenu  []MenuItem
}

// IsParent returns true if this item has a submenu.
func (m MenuItem) IsParent() bool {
	return len(m.Submenu) > 0
}

const (
	backAction    = "__back__"
	submenuPrefix = "__submenu__:"
)

// Menu walks a MenuItem tree with a Backend.
type Menu struct {
	backend Backend
	title   string
	root    []MenuItem
}

// NewMenu creates a menu titled title over items.
func NewMenu(backend Backend, title string, items []MenuItem) *Menu {
	return &Menu{backend: backend, title: title, root: items}
}

// Show runs the menu until a leaf is chosen and returns its action, or
// ErrCancelled when the user leaves the top level.
func (m *Menu) Show() (string, error) {
	return m.showLevel(m.root, []string{m.title})
}

func (m *Menu) showLevel(items []MenuItem, breadcrumb []string) (string, error) {
	if len(items) == 0 {
		return "", fmt.Errorf("menu: no items to show")
	}
	nested := len(breadcrumb) > 1

	for {
		rows := make([]Item, 0, len(items)+1)
		if nested {
			rows = append(rows, Item{Label: "← Back", Action: backAction, Icon: "go-previous"})
		}
		for i, item := range items {
			row := Item{Label: item.Label, Action: item.Action, Icon: item.Icon, IsActive: item.IsActive}
			if item.IsParent() {
				row.Label += " →"
				row.Action = submenuPrefix + strconv.Itoa(i)
				if row.Icon == "" {
					row.Icon = "folder"
				}
			}
			rows = append(rows, row)
		}

		chosen, err := m.backend.Show(breadcrumb[len(breadcrumb)-1], rows)
		if err != nil {
			return "", err
		}
		if chosen.Action == backAction {
			return "", ErrCancelled
		}

		idxStr, ok := strings.CutPrefix(chosen.Action, submenuPrefix)
		if !ok {
			return chosen.Action, nil
		}
		idx, err := strconv.Atoi(idxStr)
		if err != nil || idx < 0 || idx >= len(items) || !items[idx].IsParent() {
			continue
		}
		action, err := m.showLevel(items[idx].Submenu, append(breadcrumb, items[idx].Label))
		if errors.Is(err, ErrCancelled) {
			// Back from the submenu: show this level again.
			continue
		}
		return action, err
	}
}
