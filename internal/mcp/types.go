package mcp

import "github.com/macwm/macwm/internal/wm"

// ListWindowsInput is the input for the list_windows tool.
type ListWindowsInput struct {
	Desktop *int `json:"desktop,omitempty" jsonschema:"Only list windows on this desktop (0-indexed)"`
}

// ListWindowsOutput is the output for the list_windows tool.
type ListWindowsOutput struct {
	Windows []wm.WindowInfo `json:"windows"`
	Focused uint32          `json:"focused"`
}

// GetStatusInput is the input for the get_status tool.
type GetStatusInput struct{}

// GetStatusOutput is the output for the get_status tool.
type GetStatusOutput struct {
	Display       string `json:"display"`
	Clients       int    `json:"clients"`
	Focused       uint32 `json:"focused"`
	Desktop       int    `json:"desktop"`
	Desktops      int    `json:"desktops"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// WindowInput names a managed client window.
type WindowInput struct {
	Window uint32 `json:"window" jsonschema:"required,Client window id as reported by list_windows"`
}

// WindowOutput echoes the window acted on.
type WindowOutput struct {
	Window uint32 `json:"window"`
	Title  string `json:"title"`
}

// SwitchDesktopInput is the input for the switch_desktop tool.
type SwitchDesktopInput struct {
	Desktop int `json:"desktop" jsonschema:"required,Desktop index (0-indexed)"`
}

// SwitchDesktopOutput is the output for the switch_desktop tool.
type SwitchDesktopOutput struct {
	Desktop int `json:"desktop"`
}
