// ABOUTME: Dashboard owns the campaign store, activity log, and websocket connection behind one event loop.
// ABOUTME: All mutation happens on the Run goroutine; sockets and timers post closures into it.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/2389-research/campaigndash/campaign"
	"github.com/2389-research/campaigndash/stream"
)

// Defaults for the backend connection.
const (
	DefaultEndpoint       = "ws://localhost:8000/ws_stream_campaign"
	DefaultReconnectDelay = 3 * time.Second
	DefaultSendRetryDelay = time.Second
)

// Activity log messages written by the connection manager.
const (
	MsgConnecting   = "Connecting..."
	MsgConnected    = "Connected to server. Ready to run."
	MsgDisconnected = "Disconnected. Trying to reconnect..."
	MsgSending      = "Sending prompt to Foundry..."
	MsgComplete     = "Campaign Complete!"
)

var (
	// ErrEmptyPrompt is returned when a send is attempted with no prompt text.
	ErrEmptyPrompt = errors.New("empty prompt")
	// ErrNotConnected is returned when the socket exists but is not open.
	ErrNotConnected = errors.New("not connected to server")
	// ErrClosed is returned after the dashboard has been torn down.
	ErrClosed = errors.New("dashboard closed")
)

// AlertMessage returns the user-facing alert text for a SendPrompt error.
func AlertMessage(err error) string {
	switch {
	case errors.Is(err, ErrEmptyPrompt):
		return "Please enter a prompt."
	case errors.Is(err, ErrNotConnected):
		return "Not connected to server. Please wait."
	case err == nil:
		return ""
	default:
		return err.Error()
	}
}

// Config controls the connection manager. Zero delays fall back to defaults.
type Config struct {
	Endpoint       string
	ReconnectDelay time.Duration
	SendRetryDelay time.Duration
}

func (c Config) withDefaults() Config {
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	if c.ReconnectDelay <= 0 {
		c.ReconnectDelay = DefaultReconnectDelay
	}
	if c.SendRetryDelay <= 0 {
		c.SendRetryDelay = DefaultSendRetryDelay
	}
	return c
}

// Option configures a Dashboard.
type Option func(*Dashboard)

// WithDialer replaces the websocket dialer.
func WithDialer(d stream.Dialer) Option {
	return func(db *Dashboard) { db.dialer = d }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) Option {
	return func(db *Dashboard) { db.logger = l }
}

// WithUpdateHandler registers a callback invoked on the event loop after
// every state change. It must not block.
func WithUpdateHandler(fn func(Update)) Option {
	return func(db *Dashboard) { db.onUpdate = fn }
}

// WithAlertHandler registers a callback for user-input errors raised by
// deferred sends, which have no caller to return to.
func WithAlertHandler(fn func(error)) Option {
	return func(db *Dashboard) { db.onAlert = fn }
}

// socketHandle tracks one socket. terminal is set when the close that follows
// must not schedule a reconnect.
type socketHandle struct {
	sock     *stream.Socket
	terminal bool
}

// Dashboard is the client-side state machine for one campaign session.
type Dashboard struct {
	cfg      Config
	dialer   stream.Dialer
	logger   *slog.Logger
	onUpdate func(Update)
	onAlert  func(error)

	inbox     chan func()
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
	started   atomic.Bool

	// Owned by the event loop.
	ctx       context.Context
	store     *campaign.Store
	log       *campaign.ActivityLog
	sock      *socketHandle
	conn      ConnState
	running   bool
	runID     string
	outcome   Outcome
	timers    map[*time.Timer]struct{}
	reconnect *time.Timer

	mu   sync.RWMutex
	last Update
}

// New builds a Dashboard. The activity log starts with the "Connecting..."
// placeholder, which is purged when the first socket opens.
func New(cfg Config, opts ...Option) *Dashboard {
	d := &Dashboard{
		cfg:     cfg.withDefaults(),
		dialer:  stream.WebsocketDialer{},
		inbox:   make(chan func(), 64),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		ctx:     context.Background(),
		store:   campaign.NewStore(),
		log:     campaign.NewActivityLog(),
		timers:  make(map[*time.Timer]struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.New(slog.DiscardHandler)
	}
	d.logger = d.logger.With(slog.String("scope", "dashboard"))
	d.log.Status(MsgConnecting)
	d.last = d.buildUpdate()
	return d
}

// Endpoint returns the configured backend URL.
func (d *Dashboard) Endpoint() string { return d.cfg.Endpoint }

// Run processes events until ctx is cancelled or Close is called, then tears
// down the socket and every pending timer. It may be called once.
func (d *Dashboard) Run(ctx context.Context) error {
	if !d.started.CompareAndSwap(false, true) {
		return errors.New("dashboard already running")
	}
	defer close(d.stopped)
	d.ctx = ctx
	defer d.teardown()

	for {
		select {
		case <-ctx.Done():
			d.shutdown()
			return ctx.Err()
		case <-d.done:
			return nil
		case fn := <-d.inbox:
			fn()
		}
	}
}

// Close stops the event loop and waits for teardown when Run is active.
func (d *Dashboard) Close() {
	d.shutdown()
	if d.started.Load() {
		<-d.stopped
	}
}

func (d *Dashboard) shutdown() {
	d.closeOnce.Do(func() { close(d.done) })
}

// post queues fn for the event loop. It reports false once the dashboard is
// torn down, which turns late timer and socket callbacks into no-ops.
func (d *Dashboard) post(fn func()) bool {
	select {
	case <-d.done:
		return false
	default:
	}
	select {
	case d.inbox <- fn:
		return true
	case <-d.done:
		return false
	}
}

func (d *Dashboard) teardown() {
	for t := range d.timers {
		t.Stop()
	}
	clear(d.timers)
	d.reconnect = nil
	if d.sock != nil {
		d.sock.terminal = true
		_ = d.sock.sock.Close()
	}
	d.logger.Debug("dashboard torn down")
}

// after schedules fn on the event loop once delay elapses. The timer is
// stopped on teardown.
func (d *Dashboard) after(delay time.Duration, fn func()) *time.Timer {
	var t *time.Timer
	t = time.AfterFunc(delay, func() {
		d.post(func() {
			delete(d.timers, t)
			fn()
		})
	})
	d.timers[t] = struct{}{}
	return t
}

func (d *Dashboard) stopTimer(t *time.Timer) {
	if t == nil {
		return
	}
	t.Stop()
	delete(d.timers, t)
}

// Connect opens a socket to the endpoint unless one is already connecting or
// open.
func (d *Dashboard) Connect() {
	d.post(d.connect)
}

func (d *Dashboard) connect() {
	if d.sock != nil {
		switch d.sock.sock.State() {
		case stream.StateConnecting, stream.StateOpen:
			return
		}
	}
	d.stopTimer(d.reconnect)
	d.reconnect = nil

	h := &socketHandle{}
	d.sock = h
	d.conn = ConnConnecting
	d.logger.Info("connecting", slog.String("endpoint", d.cfg.Endpoint))
	h.sock = stream.Open(d.ctx, d.dialer, d.cfg.Endpoint, stream.Handler{
		OnOpen:    func() { d.post(func() { d.handleOpen(h) }) },
		OnMessage: func(data []byte) { d.post(func() { d.handleFrame(h, data) }) },
		OnError:   func(err error) { d.post(func() { d.handleError(h, err) }) },
		OnClose:   func() { d.post(func() { d.handleClose(h) }) },
	}, d.logger)
	d.publish()
}

func (d *Dashboard) handleOpen(h *socketHandle) {
	if h != d.sock || h.terminal {
		return
	}
	d.conn = ConnOpen
	d.log.PurgePlaceholders(MsgConnecting)
	d.log.Status(MsgConnected)
	d.publish()
}

func (d *Dashboard) handleError(h *socketHandle, err error) {
	if h != d.sock || h.terminal {
		return
	}
	d.logger.Warn("socket error", slog.String("error", err.Error()))
	d.log.Error(couldNotConnect(d.cfg.Endpoint))
	d.publish()
}

func (d *Dashboard) handleClose(h *socketHandle) {
	if h != d.sock {
		return
	}
	d.conn = ConnClosed
	if h.terminal {
		d.logger.Debug("socket closed after completion; not reconnecting")
		d.publish()
		return
	}
	d.log.Status(MsgDisconnected)
	d.stopTimer(d.reconnect)
	var t *time.Timer
	t = d.after(d.cfg.ReconnectDelay, func() {
		if d.reconnect == t {
			d.reconnect = nil
		}
		if d.sock == nil || d.sock.sock.State() == stream.StateClosed {
			d.connect()
		}
	})
	d.reconnect = t
	d.publish()
}

// couldNotConnect names the server by scheme and host, as users start it.
func couldNotConnect(endpoint string) string {
	server := endpoint
	if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
		server = u.Scheme + "://" + u.Host
	}
	return fmt.Sprintf("Could not connect to %s. Is the server running?", server)
}
