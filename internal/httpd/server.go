package httpd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/favsoft/epdsetup/internal/logging"
	"go.uber.org/zap"
)

// Config holds the server configuration
type Config struct {
	Host           string
	Port           int
	MaxRequestSize int
	SendBufferSize int
	ReadTimeout    time.Duration // per read; zero disables
	WriteTimeout   time.Duration // per write; zero disables
}

// DefaultConfig listens on port 80 on all interfaces.
func DefaultConfig() Config {
	return Config{
		Port:           80,
		MaxRequestSize: DefaultMaxRequestSize,
		SendBufferSize: DefaultSendBuffer,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   10 * time.Second,
	}
}

// ModeSwitch is the device-wide operating mode flag.
type ModeSwitch interface {
	Configuring() bool
	EnterDisplay()
}

// ErrorRecorder receives device error codes, typically the persistent store.
type ErrorRecorder interface {
	RecordError(logging.ErrorCode)
}

// Server serves the setup pages one connection at a time until the mode
// flag leaves configuring.
type Server struct {
	config   Config
	handler  Handler
	mode     ModeSwitch
	recorder ErrorRecorder

	listener  net.Listener
	closeOnce sync.Once
	wg        sync.WaitGroup

	mu     sync.Mutex
	active net.Conn
}

// New creates a new Server instance
func New(config Config, handler Handler, mode ModeSwitch) *Server {
	return &Server{config: config, handler: handler, mode: mode}
}

// SetErrorRecorder records bind and write failures as device error codes.
func (s *Server) SetErrorRecorder(r ErrorRecorder) {
	s.recorder = r
}

func (s *Server) recordError(code logging.ErrorCode) {
	if s.recorder != nil {
		s.recorder.RecordError(code)
	}
}

// Listen binds the server's TCP port.
func (s *Server) Listen() error {
	addr := net.JoinHostPort(s.config.Host, fmt.Sprint(s.config.Port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		logging.LogErrorCode(logging.TCPBindErr, zap.String("addr", addr), zap.Error(err))
		s.recordError(logging.TCPBindErr)
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener

	logging.Info("Setup webserver listening", zap.String("addr", listener.Addr().String()))
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Start listens, serves and blocks until the device leaves configuring
// mode, a shutdown signal arrives, or ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.Serve(ctx)
	}()

	select {
	case <-sigChan:
		logging.Info("Shutdown signal received, stopping server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	case err := <-errChan:
		return err
	}
}

// Serve accepts connections on the bound listener and handles each to
// completion before accepting the next.
func (s *Server) Serve(ctx context.Context) error {
	if s.listener == nil {
		return errors.New("httpd: Serve called before Listen")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-ctx.Done()
		s.closeListener()
	}()

	for s.mode.Configuring() {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			logging.Error("Failed to accept connection", zap.Error(err))
			continue
		}

		s.wg.Add(1)
		s.handleConnection(conn)
		s.wg.Done()
	}

	logging.Info("Configuring mode ended, webserver stopping")
	s.closeListener()
	return nil
}

// handleConnection runs one exchange over conn
func (s *Server) handleConnection(conn net.Conn) {
	remoteAddr := conn.RemoteAddr().String()

	s.mu.Lock()
	s.active = conn
	s.mu.Unlock()
	defer func() {
		_ = conn.Close()
		s.mu.Lock()
		s.active = nil
		s.mu.Unlock()
	}()

	logging.LogConnection(remoteAddr, "connection_accepted")

	transport := newConnTransport(conn, s.config.SendBufferSize, s.config.WriteTimeout)
	ex := NewExchange(transport, s.handler, remoteAddr, s.config.MaxRequestSize)
	ex.OnExitConfiguring = s.mode.EnterDisplay

	buf := make([]byte, 1024)
	for ex.State() == StateReceiving {
		if s.config.ReadTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
		}
		n, err := conn.Read(buf)
		if n > 0 {
			_ = ex.Receive(buf[:n], nil)
			s.drain(ex, transport)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = nil
			}
			_ = ex.Receive(nil, err)
		}
	}
	s.drain(ex, transport)

	var te *TransportError
	if errors.As(ex.Err(), &te) && te.Op == "write" {
		s.recordError(logging.TCPWriteErr)
	}
}

// drain reports written bytes back to the exchange until it stops sending.
func (s *Server) drain(ex *Exchange, t *connTransport) {
	for ex.State() == StateSending {
		n := t.takeSent()
		if n == 0 {
			return
		}
		_ = ex.Sent(n)
	}
}

func (s *Server) closeListener() {
	s.closeOnce.Do(func() {
		if s.listener != nil {
			if err := s.listener.Close(); err != nil {
				logging.Debug("Error closing listener", zap.Error(err))
			}
		}
	})
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")

	s.closeListener()

	s.mu.Lock()
	if s.active != nil {
		logging.Info("Closing active connection", zap.String("remote_addr", s.active.RemoteAddr().String()))
		_ = s.active.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logging.Info("All connections closed gracefully")
	case <-ctx.Done():
		logging.Warn("Shutdown timeout, forcing close")
	}

	logging.Sync()
	return nil
}

// ActiveConnection returns the remote address being served, or "".
func (s *Server) ActiveConnection() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return ""
	}
	return s.active.RemoteAddr().String()
}
