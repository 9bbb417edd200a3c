package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/macwm/macwm/internal/config"
	"github.com/macwm/macwm/internal/hotkeys"
	"github.com/macwm/macwm/internal/ipc"
	"github.com/macwm/macwm/internal/mcp"
	"github.com/macwm/macwm/internal/palette"
	"github.com/macwm/macwm/internal/runtimepath"
	"github.com/macwm/macwm/internal/wm"
)

func newPaletteCmd() *cobra.Command {
	var backendName string
	cmd := &cobra.Command{
		Use:   "palette",
		Short: "Open the command palette (rofi or dmenu)",
		Args:  withUsage(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := loadConfig()
			if err != nil {
				return err
			}
			cfg := res.Config
			logger := newLogger(os.Stderr, cfg.SlogLevel()).With("component", "palette")

			if backendName == "" {
				backendName = cfg.Menu.PaletteBackend
			}
			backend, err := palette.NewBackend(backendName)
			if err != nil {
				return err
			}

			display := displayName(cfg)
			socket, err := runtimepath.SocketPath(display)
			if err != nil {
				return err
			}
			client := ipc.NewClient(socket)
			status, err := client.GetStatus()
			if err != nil {
				return err
			}
			windows, err := client.ListWindows()
			if err != nil {
				return err
			}

			items := buildRootMenu(status, windows.Windows, cfg.Menu.Items)
			action, err := palette.NewMenu(backend, "macwm", items).Show()
			if errors.Is(err, palette.ErrCancelled) {
				return nil
			}
			if err != nil {
				return err
			}
			launch := func(command string) error { return hotkeys.Spawn(command, logger) }
			return executeAction(action, mcp.EWMHController{Display: display}, launch)
		},
	}
	cmd.Flags().StringVar(&backendName, "backend", "", "Launcher: auto, rofi or dmenu (default: menu.palette_backend)")
	return cmd
}

func buildRootMenu(status *ipc.StatusData, windows []wm.WindowInfo, launchers []config.MenuItem) []palette.MenuItem {
	var focus, closeItems []palette.MenuItem
	for _, w := range windows {
		if w.Wallpaper {
			continue
		}
		label := w.Title
		if label == "" {
			label = fmt.Sprintf("0x%x", w.Client)
		}
		if w.Desktop >= 0 {
			label = fmt.Sprintf("%s  [%d]", label, w.Desktop+1)
		}
		focus = append(focus, palette.MenuItem{
			Label:    label,
			Action:   fmt.Sprintf("focus:%d", w.Client),
			Icon:     "window",
			IsActive: w.Focused,
		})
		closeItems = append(closeItems, palette.MenuItem{
			Label:  label,
			Action: fmt.Sprintf("close:%d", w.Client),
			Icon:   "window-close",
		})
	}

	desktops := make([]palette.MenuItem, 0, status.Desktops)
	for i := 0; i < status.Desktops; i++ {
		desktops = append(desktops, palette.MenuItem{
			Label:    fmt.Sprintf("Desktop %d", i+1),
			Action:   fmt.Sprintf("desktop:%d", i),
			Icon:     "user-desktop",
			IsActive: i == status.Desktop,
		})
	}

	launch := make([]palette.MenuItem, 0, len(launchers))
	for _, it := range launchers {
		launch = append(launch, palette.MenuItem{
			Label:  it.Label,
			Action: "exec:" + it.Command,
			Icon:   "system-run",
		})
	}

	var root []palette.MenuItem
	if len(focus) > 0 {
		root = append(root,
			palette.MenuItem{Label: "Windows", Icon: "preferences-system-windows", Submenu: focus},
			palette.MenuItem{Label: "Close", Icon: "window-close", Submenu: closeItems},
		)
	}
	if len(desktops) > 1 {
		root = append(root, palette.MenuItem{Label: "Desktops", Icon: "user-desktop", Submenu: desktops})
	}
	if len(launch) > 0 {
		root = append(root, palette.MenuItem{Label: "Launch", Icon: "system-run", Submenu: launch})
	}
	return root
}

// executeAction runs a palette selection such as "focus:4194307",
// "desktop:1" or "exec:xterm".
func executeAction(action string, control mcp.Controller, launch func(string) error) error {
	kind, arg, ok := strings.Cut(action, ":")
	if !ok || arg == "" {
		return fmt.Errorf("unknown palette action %q", action)
	}
	slog.Debug("palette action", "action", kind, "arg", arg)

	switch kind {
	case "focus", "close":
		id, err := strconv.ParseUint(arg, 10, 32)
		if err != nil {
			return fmt.Errorf("bad window id in palette action %q", action)
		}
		if kind == "focus" {
			return control.Focus(uint32(id))
		}
		return control.Close(uint32(id))
	case "desktop":
		index, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("bad desktop in palette action %q", action)
		}
		return control.SwitchDesktop(index)
	case "exec":
		return launch(arg)
	default:
		return fmt.Errorf("unknown palette action %q", action)
	}
}
