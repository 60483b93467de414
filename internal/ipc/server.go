package ipc

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/placekeeper/internal/runtimepath"
)

// ErrAlreadyRunning is returned by Start when another daemon answers on the
// socket.
var ErrAlreadyRunning = errors.New("another placekeeper daemon is already running")

// Service is what the daemon exposes over IPC.
type Service interface {
	Status() StatusData
	Save(name string) (*SaveData, error)
	Restore(name string, strict *bool) (*RestoreData, error)
	Reload() error
}

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	service      Service
	logger       *slog.Logger
	shuttingDown bool
	shutdownMu   sync.Mutex
	wg           sync.WaitGroup
}

// NewServer creates an IPC server on the socket path for display.
func NewServer(display string, service Service, logger *slog.Logger) (*Server, error) {
	socketPath, err := runtimepath.SocketPath(display)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}
	return NewServerAt(socketPath, service, logger), nil
}

// NewServerAt creates an IPC server on socketPath.
func NewServerAt(socketPath string, service Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		socketPath: socketPath,
		service:    service,
		logger:     logger,
	}
}

// SocketPath returns the socket the server listens on.
func (s *Server) SocketPath() string { return s.socketPath }

// Start begins listening for IPC connections and serving them.
func (s *Server) Start() error {
	if err := s.Listen(); err != nil {
		return err
	}
	s.Serve()
	return nil
}

// Listen claims the socket without accepting connections yet. A live socket
// means another daemon owns the session and ErrAlreadyRunning is returned; a
// stale socket file is replaced.
func (s *Server) Listen() error {
	if conn, err := net.DialTimeout("unix", s.socketPath, 500*time.Millisecond); err == nil {
		conn.Close()
		return ErrAlreadyRunning
	}
	os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}
	s.listener = listener
	return nil
}

// Serve starts accepting connections in the background. Listen must have
// succeeded.
func (s *Server) Serve() {
	s.logger.Info("IPC server listening", "socket", s.socketPath)
	s.wg.Add(1)
	go s.acceptLoop()
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			s.logger.Warn("IPC accept error", "error", err)
			if errors.Is(err, net.ErrClosed) {
				return
			}
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(30 * time.Second))

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("IPC read error", "error", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.writeResponse(conn, NewErrorResponse(fmt.Sprintf("invalid request: %v", err)))
		return
	}

	s.writeResponse(conn, s.handleCommand(req))
}

func (s *Server) writeResponse(conn net.Conn, resp *Response) {
	respData, err := resp.Marshal()
	if err != nil {
		s.logger.Error("failed to marshal response", "error", err)
		return
	}
	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.logger.Warn("failed to send response", "error", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) (resp *Response) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("IPC handler panic", "command", req.Command, "panic", r)
			resp = NewErrorResponse(fmt.Sprintf("internal error handling %s", req.Command))
		}
	}()

	s.logger.Debug("IPC request", "command", req.Command)

	switch req.Command {
	case CommandGetStatus:
		return okResponse(s.service.Status())
	case CommandReload:
		if err := s.service.Reload(); err != nil {
			return NewErrorResponse(fmt.Sprintf("failed to reload config: %v", err))
		}
		return okResponse(nil)
	case CommandSave:
		var payload SavePayload
		if err := decodePayload(req.Payload, &payload); err != nil {
			return NewErrorResponse(err.Error())
		}
		data, err := s.service.Save(payload.Name)
		if err != nil {
			return NewErrorResponse(fmt.Sprintf("failed to save: %v", err))
		}
		return okResponse(data)
	case CommandRestore:
		var payload RestorePayload
		if err := decodePayload(req.Payload, &payload); err != nil {
			return NewErrorResponse(err.Error())
		}
		data, err := s.service.Restore(payload.Name, payload.Strict)
		if err != nil {
			return NewErrorResponse(fmt.Sprintf("failed to restore: %v", err))
		}
		return okResponse(data)
	default:
		return NewErrorResponse(fmt.Sprintf("unknown command: %s", req.Command))
	}
}

func decodePayload(raw json.RawMessage, out any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	return nil
}

func okResponse(data any) *Response {
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
		s.wg.Wait()
	}
	os.Remove(s.socketPath)
}
