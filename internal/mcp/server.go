package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/macwm/macwm/internal/ipc"
	"github.com/macwm/macwm/internal/x11"
)

const (
	ServerName    = "macwm"
	ServerVersion = "0.1.0"
)

// StateReader reads the running window manager's state. *ipc.Client
// implements it.
type StateReader interface {
	GetStatus() (*ipc.StatusData, error)
	ListWindows() (*ipc.WindowsData, error)
}

// Controller asks the running window manager to act. Requests travel as EWMH
// client messages, the same way a pager would send them.
type Controller interface {
	Focus(win uint32) error
	Close(win uint32) error
	SwitchDesktop(index int) error
}

// EWMHController sends each request over a short-lived X connection.
type EWMHController struct {
	Display string
}

func (c EWMHController) Focus(win uint32) error {
	return x11.RequestFocusStandalone(c.Display, win)
}

func (c EWMHController) Close(win uint32) error {
	return x11.RequestCloseStandalone(c.Display, win)
}

func (c EWMHController) SwitchDesktop(index int) error {
	return x11.RequestDesktopStandalone(c.Display, index)
}

// Server is the MCP server exposing window management tools.
type Server struct {
	mcpServer *mcpsdk.Server
	state     StateReader
	control   Controller
	log       *slog.Logger
}

// NewServer creates the MCP server and registers its tools.
func NewServer(state StateReader, control Controller, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		state:   state,
		control: control,
		log:     logger.With("component", "mcp"),
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List the windows macwm manages, in the order they were mapped, with their client id, frame id, title, desktop and whether they are focused or the wallpaper.",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_status",
		Description: "Report the display, number of managed windows, focused window, current desktop and desktop count of the running window manager.",
	}, s.handleGetStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "focus_window",
		Description: "Raise and focus a managed window, switching to its desktop and restoring it if minimized.",
	}, s.handleFocusWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "close_window",
		Description: "Close a managed window. Windows that support WM_DELETE_WINDOW are asked to close; others are killed.",
	}, s.handleCloseWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "switch_desktop",
		Description: "Switch to another virtual desktop.",
	}, s.handleSwitchDesktop)
}
