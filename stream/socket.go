// ABOUTME: Socket runs one websocket connection attempt and reports its lifecycle through callbacks.
// ABOUTME: Mirrors browser WebSocket semantics: open, message, error, then exactly one close.
package stream

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
)

// State is the socket's ready state.
type State int32

const (
	StateConnecting State = iota
	StateOpen
	StateClosing
	StateClosed
)

// String returns the lowercase name of the state.
func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// ErrNotOpen is returned by Send when the socket is not open.
var ErrNotOpen = errors.New("socket not open")

// Handler receives socket lifecycle callbacks. Callbacks run on the socket's
// reader goroutine; nil callbacks are skipped. OnClose is always the last call.
type Handler struct {
	OnOpen    func()
	OnMessage func(data []byte)
	OnError   func(err error)
	OnClose   func()
}

// Socket is a single connection attempt. It never reconnects; a closed socket
// stays closed.
type Socket struct {
	url     string
	handler Handler
	logger  *slog.Logger

	state  atomic.Int32
	mu     sync.Mutex
	conn   Conn
	cancel context.CancelFunc
}

// Open starts dialing url in the background and returns immediately in the
// connecting state.
func Open(ctx context.Context, dialer Dialer, url string, h Handler, logger *slog.Logger) *Socket {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	dialCtx, cancel := context.WithCancel(ctx)
	s := &Socket{
		url:     url,
		handler: h,
		logger:  logger.With(slog.String("endpoint", url)),
		cancel:  cancel,
	}
	s.state.Store(int32(StateConnecting))
	go s.run(dialCtx, dialer)
	return s
}

// URL returns the endpoint this socket dials.
func (s *Socket) URL() string { return s.url }

// State returns the current ready state.
func (s *Socket) State() State {
	return State(s.state.Load())
}

// Send writes one frame. It fails with ErrNotOpen unless the socket is open.
func (s *Socket) Send(data []byte) error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if s.State() != StateOpen || conn == nil {
		return ErrNotOpen
	}
	return conn.WriteFrame(data)
}

// Close starts a local close. The OnClose callback follows once the reader
// goroutine exits; no OnError is reported for a locally initiated close.
func (s *Socket) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.State() {
	case StateClosing, StateClosed:
		return nil
	}
	s.state.Store(int32(StateClosing))
	s.cancel()
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

func (s *Socket) run(ctx context.Context, dialer Dialer) {
	defer s.cancel()

	conn, err := dialer.Dial(ctx, s.url)

	s.mu.Lock()
	closing := s.State() == StateClosing
	switch {
	case err != nil:
		s.state.Store(int32(StateClosed))
		s.mu.Unlock()
		if !closing {
			s.logger.Warn("websocket dial failed", slog.String("error", err.Error()))
			s.emitError(err)
		}
		s.emitClose()
		return
	case closing:
		s.state.Store(int32(StateClosed))
		s.mu.Unlock()
		_ = conn.Close()
		s.emitClose()
		return
	}
	s.conn = conn
	s.state.Store(int32(StateOpen))
	s.mu.Unlock()

	s.logger.Debug("websocket open")
	if s.handler.OnOpen != nil {
		s.handler.OnOpen()
	}

	for {
		data, err := conn.ReadFrame()
		if err != nil {
			s.mu.Lock()
			local := s.State() == StateClosing
			s.state.Store(int32(StateClosed))
			s.mu.Unlock()

			if !local && !errors.Is(err, io.EOF) {
				s.logger.Warn("websocket read failed", slog.String("error", err.Error()))
				s.emitError(err)
			}
			if !local {
				_ = conn.Close()
			}
			s.emitClose()
			return
		}
		if s.handler.OnMessage != nil {
			s.handler.OnMessage(data)
		}
	}
}

func (s *Socket) emitError(err error) {
	if s.handler.OnError != nil {
		s.handler.OnError(err)
	}
}

func (s *Socket) emitClose() {
	s.logger.Debug("websocket closed")
	if s.handler.OnClose != nil {
		s.handler.OnClose()
	}
}
