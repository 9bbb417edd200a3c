package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/macwm/macwm/internal/wm"
)

func (s *Server) handleListWindows(_ context.Context, _ *mcpsdk.CallToolRequest, args ListWindowsInput) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	data, err := s.state.ListWindows()
	if err != nil {
		return nil, ListWindowsOutput{}, err
	}

	out := ListWindowsOutput{Windows: make([]wm.WindowInfo, 0, len(data.Windows))}
	for _, w := range data.Windows {
		if w.Focused {
			out.Focused = w.Client
		}
		if args.Desktop != nil && w.Desktop != *args.Desktop && !w.Wallpaper {
			continue
		}
		out.Windows = append(out.Windows, w)
	}
	return nil, out, nil
}

func (s *Server) handleGetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ GetStatusInput) (*mcpsdk.CallToolResult, GetStatusOutput, error) {
	st, err := s.state.GetStatus()
	if err != nil {
		return nil, GetStatusOutput{}, err
	}
	return nil, GetStatusOutput{
		Display:       st.Display,
		Clients:       st.Clients,
		Focused:       st.Focused,
		Desktop:       st.Desktop,
		Desktops:      st.Desktops,
		UptimeSeconds: st.UptimeSeconds,
	}, nil
}

// lookup returns the managed window with client id win.
func (s *Server) lookup(win uint32) (wm.WindowInfo, error) {
	data, err := s.state.ListWindows()
	if err != nil {
		return wm.WindowInfo{}, err
	}
	for _, w := range data.Windows {
		if w.Client == win {
			return w, nil
		}
	}
	return wm.WindowInfo{}, fmt.Errorf("window %d is not managed by macwm", win)
}

func (s *Server) handleFocusWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	w, err := s.lookup(args.Window)
	if err != nil {
		return nil, WindowOutput{}, err
	}
	if err := s.control.Focus(w.Client); err != nil {
		return nil, WindowOutput{}, fmt.Errorf("focus window %d: %w", w.Client, err)
	}
	s.log.Info("focus requested", "window", w.Client)
	return nil, WindowOutput{Window: w.Client, Title: w.Title}, nil
}

func (s *Server) handleCloseWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	w, err := s.lookup(args.Window)
	if err != nil {
		return nil, WindowOutput{}, err
	}
	if w.Wallpaper {
		return nil, WindowOutput{}, fmt.Errorf("window %d is the wallpaper and cannot be closed", w.Client)
	}
	if err := s.control.Close(w.Client); err != nil {
		return nil, WindowOutput{}, fmt.Errorf("close window %d: %w", w.Client, err)
	}
	s.log.Info("close requested", "window", w.Client)
	return nil, WindowOutput{Window: w.Client, Title: w.Title}, nil
}

func (s *Server) handleSwitchDesktop(_ context.Context, _ *mcpsdk.CallToolRequest, args SwitchDesktopInput) (*mcpsdk.CallToolResult, SwitchDesktopOutput, error) {
	st, err := s.state.GetStatus()
	if err != nil {
		return nil, SwitchDesktopOutput{}, err
	}
	if args.Desktop < 0 || args.Desktop >= st.Desktops {
		return nil, SwitchDesktopOutput{}, fmt.Errorf("desktop %d out of range 0-%d", args.Desktop, st.Desktops-1)
	}
	if err := s.control.SwitchDesktop(args.Desktop); err != nil {
		return nil, SwitchDesktopOutput{}, fmt.Errorf("switch desktop: %w", err)
	}
	return nil, SwitchDesktopOutput{Desktop: args.Desktop}, nil
}
