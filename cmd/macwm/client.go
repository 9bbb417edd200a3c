package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/macwm/macwm/internal/ipc"
	"github.com/macwm/macwm/internal/runtimepath"
	"github.com/macwm/macwm/internal/wm"
	"github.com/macwm/macwm/internal/x11"
)

// ipcClient connects to the manager running on the selected display.
func ipcClient() (*ipc.Client, error) {
	display, err := controlDisplay()
	if err != nil {
		return nil, err
	}
	socket, err := runtimepath.SocketPath(display)
	if err != nil {
		return nil, err
	}
	return ipc.NewClient(socket), nil
}

func controlDisplay() (string, error) {
	res, err := loadConfig()
	if err != nil {
		return "", err
	}
	return displayName(res.Config), nil
}

func printStructured(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		out, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	default:
		return usagef("unknown format %q (want text, json or yaml)", format)
	}
}

func newStatusCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the running window manager's state",
		Args:  withUsage(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ipcClient()
			if err != nil {
				return err
			}
			status, err := client.GetStatus()
			if err != nil {
				return err
			}
			if format != "text" {
				return printStructured(cmd.OutOrStdout(), format, status)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "display:  %s\n", status.Display)
			fmt.Fprintf(out, "pid:      %d\n", status.PID)
			fmt.Fprintf(out, "uptime:   %ds\n", status.UptimeSeconds)
			fmt.Fprintf(out, "clients:  %d\n", status.Clients)
			fmt.Fprintf(out, "focused:  0x%x\n", status.Focused)
			fmt.Fprintf(out, "desktop:  %d/%d\n", status.Desktop+1, status.Desktops)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, json or yaml")
	return cmd
}

func newWindowsCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "windows",
		Short: "List managed windows",
		Args:  withUsage(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ipcClient()
			if err != nil {
				return err
			}
			windows, err := client.ListWindows()
			if err != nil {
				return err
			}
			if format != "text" {
				return printStructured(cmd.OutOrStdout(), format, windows)
			}
			return printWindowTable(cmd.OutOrStdout(), windows.Windows)
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, json or yaml")
	return cmd
}

func printWindowTable(w io.Writer, windows []wm.WindowInfo) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CLIENT\tFRAME\tDESKTOP\tFLAGS\tTITLE")
	for _, win := range windows {
		flagText := "-"
		switch {
		case win.Wallpaper:
			flagText = "wallpaper"
		case win.Focused:
			flagText = "focused"
		}
		desktop := strconv.Itoa(win.Desktop + 1)
		if win.Desktop < 0 || win.Wallpaper {
			desktop = "*"
		}
		fmt.Fprintf(tw, "0x%x\t0x%x\t%s\t%s\t%s\n", win.Client, win.Frame, desktop, flagText, win.Title)
	}
	return tw.Flush()
}

// parseWindowID accepts decimal or 0x-prefixed hex ids as printed by
// "macwm windows" and xwininfo.
func parseWindowID(s string) (uint32, error) {
	id, err := strconv.ParseUint(s, 0, 32)
	if err != nil || id == 0 {
		return 0, usagef("invalid window id %q", s)
	}
	return uint32(id), nil
}

func newFocusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "focus <window>",
		Short: "Raise and focus a managed window",
		Args:  withUsage(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			win, err := parseWindowID(args[0])
			if err != nil {
				return err
			}
			display, err := controlDisplay()
			if err != nil {
				return err
			}
			return x11.RequestFocusStandalone(display, win)
		},
	}
}

func newCloseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "close <window>",
		Short: "Ask a managed window to close",
		Args:  withUsage(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			win, err := parseWindowID(args[0])
			if err != nil {
				return err
			}
			display, err := controlDisplay()
			if err != nil {
				return err
			}
			return x11.RequestCloseStandalone(display, win)
		},
	}
}

func newDesktopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "desktop [n]",
		Short: "Switch to desktop n (1-based), or print the current desktop",
		Args:  withUsage(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			index := -1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 1 {
					return usagef("invalid desktop %q", args[0])
				}
				index = n - 1
			}
			display, err := controlDisplay()
			if err != nil {
				return err
			}
			if index >= 0 {
				return x11.RequestDesktopStandalone(display, index)
			}
			current, count, err := x11.DesktopStandalone(display)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d/%d\n", current+1, count)
			return nil
		},
	}
}
