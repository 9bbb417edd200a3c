package ipc

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync/atomic"
	"time"

	"github.com/macwm/macwm/internal/wm"
)

// StateSource publishes the window manager state. *wm.Manager implements it.
type StateSource interface {
	Snapshot() *wm.Snapshot
}

// ServerOptions configures a Server.
type ServerOptions struct {
	SocketPath string
	Display    string
	Desktops   int
	Logger     *slog.Logger
}

// Server answers status queries on a unix socket. It only reads published
// snapshots and never touches the display connection.
type Server struct {
	opts      ServerOptions
	state     StateSource
	log       *slog.Logger
	listener  net.Listener
	startTime time.Time
	closing   atomic.Bool
}

// NewServer creates a new IPC server
func NewServer(state StateSource, opts ServerOptions) *Server {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		opts:      opts,
		state:     state,
		log:       log.With("component", "ipc"),
		startTime: time.Now(),
	}
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	// Remove a stale socket left by a crashed run.
	if err := os.Remove(s.opts.SocketPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove stale socket: %w", err)
	}

	listener, err := net.Listen("unix", s.opts.SocketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.opts.SocketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.log.Info("IPC server listening", "socket", s.opts.SocketPath)
	go s.acceptLoop()
	return nil
}

// Stop closes the listener and removes the socket.
func (s *Server) Stop() {
	s.closing.Store(true)
	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.opts.SocketPath)
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.closing.Load() {
				return
			}
			s.log.Warn("accept failed", "error", err)
			if errors.Is(err, net.ErrClosed) {
				return
			}
			continue
		}
		go s.handleConnection(conn)
	}
}

// handleConnection reads one JSON request line and writes one response line.
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(5 * time.Second))

	data, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.log.Debug("read failed", "error", err)
		return
	}

	var resp *Response
	if req, err := ParseRequest(data); err != nil {
		resp = NewErrorResponse(fmt.Sprintf("Invalid request: %v", err))
	} else {
		resp = s.handleCommand(req)
	}

	respData, err := resp.Marshal()
	if err != nil {
		s.log.Warn("failed to marshal response", "error", err)
		return
	}
	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.log.Debug("failed to send response", "error", err)
	}
}

func (s *Server) handleCommand(req *Request) *Response {
	snap := s.state.Snapshot()
	if snap == nil {
		return NewErrorResponse("window manager not started")
	}

	var data any
	switch req.Command {
	case CommandGetStatus:
		data = StatusData{
			Display:       s.opts.Display,
			PID:           os.Getpid(),
			UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
			Clients:       len(snap.Windows),
			Focused:       snap.Focused,
			Desktop:       snap.Desktop,
			Desktops:      s.opts.Desktops,
		}
	case CommandListWindows:
		data = WindowsData{Windows: snap.Windows}
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}

	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}
