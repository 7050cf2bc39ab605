// ABOUTME: Tests for the Dashboard event loop against a fake backend served by gorilla/websocket.
// ABOUTME: Covers connect, reconnect-on-close, send retry, done suppression, decode failures, and teardown.
package dashboard

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/2389-research/campaigndash/campaign"
	"github.com/2389-research/campaigndash/stream"
)

const (
	testReconnect = 50 * time.Millisecond
	testRetry     = 150 * time.Millisecond
)

// fakeBackend is a websocket server standing in for the generation backend.
type fakeBackend struct {
	srv      *httptest.Server
	mu       sync.Mutex
	conns    []*websocket.Conn
	connects atomic.Int32
	prompts  chan string
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	b := &fakeBackend{prompts: make(chan string, 16)}
	upgrader := websocket.Upgrader{}
	b.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		b.connects.Add(1)
		b.mu.Lock()
		b.conns = append(b.conns, c)
		b.mu.Unlock()
		for {
			_, data, err := c.ReadMessage()
			if err != nil {
				return
			}
			b.prompts <- string(data)
		}
	}))
	t.Cleanup(b.srv.Close)
	return b
}

func (b *fakeBackend) url() string {
	return "ws" + strings.TrimPrefix(b.srv.URL, "http")
}

func (b *fakeBackend) send(t *testing.T, frame string) {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.conns) == 0 {
		t.Fatal("no client connected")
	}
	if err := b.conns[len(b.conns)-1].WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
		t.Fatalf("server write: %v", err)
	}
}

func (b *fakeBackend) closeLatest(t *testing.T) {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()
	c := b.conns[len(b.conns)-1]
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	_ = c.Close()
}

func (b *fakeBackend) nextPrompt(t *testing.T) string {
	t.Helper()
	select {
	case p := <-b.prompts:
		return p
	case <-time.After(3 * time.Second):
		t.Fatal("backend never received a prompt")
		return ""
	}
}

func startDashboard(t *testing.T, endpoint string, opts ...Option) *Dashboard {
	t.Helper()
	cfg := Config{Endpoint: endpoint, ReconnectDelay: testReconnect, SendRetryDelay: testRetry}
	d := New(cfg, opts...)
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = d.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		d.Close()
	})
	return d
}

func eventually(t *testing.T, d *Dashboard, what string, cond func(Update) bool) Update {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for {
		u := d.Snapshot()
		if cond(u) {
			return u
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s; log: %v", what, logTexts(u.Log))
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func logTexts(entries []campaign.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Text()
	}
	return out
}

func countMessages(entries []campaign.Entry, msg string) int {
	n := 0
	for _, e := range entries {
		if e.Message == msg {
			n++
		}
	}
	return n
}

func isOpen(u Update) bool { return u.Conn == ConnOpen }

func TestNew_StartsWithConnectingPlaceholder(t *testing.T) {
	d := New(Config{})
	u := d.Snapshot()
	if len(u.Log) != 1 || u.Log[0].Message != MsgConnecting || u.Log[0].Severity != campaign.SeverityStatus {
		t.Fatalf("initial log = %v", logTexts(u.Log))
	}
	if d.Endpoint() != DefaultEndpoint {
		t.Errorf("Endpoint() = %q, want %q", d.Endpoint(), DefaultEndpoint)
	}
	if u.Conn != ConnIdle {
		t.Errorf("Conn = %v, want idle", u.Conn)
	}
}

func TestDashboard_OpenPurgesPlaceholder(t *testing.T) {
	b := newFakeBackend(t)
	d := startDashboard(t, b.url())
	d.Connect()

	u := eventually(t, d, "open", isOpen)
	if got := logTexts(u.Log); len(got) != 1 || got[0] != "STATUS: "+MsgConnected {
		t.Errorf("log = %v, want only the connected line", got)
	}
}

func TestDashboard_ConnectIsSingleSocket(t *testing.T) {
	b := newFakeBackend(t)
	d := startDashboard(t, b.url())
	d.Connect()
	d.Connect()
	eventually(t, d, "open", isOpen)
	d.Connect()
	time.Sleep(100 * time.Millisecond)

	if n := b.connects.Load(); n != 1 {
		t.Errorf("connects = %d, want 1", n)
	}
}

func TestDashboard_BakeryRunThenDoneSuppressesReconnect(t *testing.T) {
	b := newFakeBackend(t)
	d := startDashboard(t, b.url())
	d.Connect()
	eventually(t, d, "open", isOpen)

	if err := d.SendPrompt("launch a bakery"); err != nil {
		t.Fatalf("SendPrompt: %v", err)
	}
	if got := b.nextPrompt(t); got != `{"initial_prompt":"launch a bakery"}` {
		t.Errorf("backend got %s", got)
	}
	u := d.Snapshot()
	if !u.Running || u.RunID == "" {
		t.Errorf("Running = %v RunID = %q after send", u.Running, u.RunID)
	}

	b.send(t, `{"event":"step","node":"planner_agent","data":"{\"topic\":\"bakery launch\"}"}`)
	u = eventually(t, d, "planner slice", func(u Update) bool { return u.State.Planner != nil })

	p := u.State.Planner
	if p.Topic != "bakery launch" || p.Goal != nil || p.TargetAudience != nil || p.SourceDocsURL != nil || p.CampaignDate != nil {
		t.Errorf("planner slice = %+v", *p)
	}
	last := u.Log[len(u.Log)-1]
	if last.Label != "PLANNER_AGENT" || !strings.Contains(last.Message, "Planned topic: bakery launch") {
		t.Errorf("last entry = %q", last.Text())
	}
	if string(u.State.Live) != `{"topic":"bakery launch"}` {
		t.Errorf("live = %s", u.State.Live)
	}

	b.send(t, `{"event":"done"}`)
	u = eventually(t, d, "completion", func(u Update) bool { return u.Outcome == OutcomeCompleted })
	if u.Running {
		t.Error("Running = true after done")
	}

	time.Sleep(6 * testReconnect)
	u = d.Snapshot()
	if n := countMessages(u.Log, MsgDisconnected); n != 0 {
		t.Errorf("found %d disconnect entries after done, want 0", n)
	}
	if n := b.connects.Load(); n != 1 {
		t.Errorf("connects = %d after done, want 1 (no reconnect)", n)
	}
	if u.Log[len(u.Log)-1].Message != MsgComplete {
		t.Errorf("last entry = %q, want completion", u.Log[len(u.Log)-1].Text())
	}
}

func TestDashboard_ServerCloseReconnectsOnce(t *testing.T) {
	b := newFakeBackend(t)
	d := startDashboard(t, b.url())
	d.Connect()
	eventually(t, d, "open", isOpen)

	b.closeLatest(t)
	eventually(t, d, "disconnect entry", func(u Update) bool { return countMessages(u.Log, MsgDisconnected) == 1 })
	u := eventually(t, d, "reconnect", func(u Update) bool { return u.Conn == ConnOpen && countMessages(u.Log, MsgConnected) == 2 })

	if n := b.connects.Load(); n != 2 {
		t.Errorf("connects = %d, want 2", n)
	}
	for _, e := range u.Log {
		if e.Severity == campaign.SeverityError {
			t.Errorf("clean close produced an error entry: %q", e.Text())
		}
	}
}

func TestDashboard_UnparsableFrameLogsOneErrorAndStaysOpen(t *testing.T) {
	b := newFakeBackend(t)
	d := startDashboard(t, b.url())
	d.Connect()
	before := eventually(t, d, "open", isOpen)

	b.send(t, `this is not json`)
	u := eventually(t, d, "parse error", func(u Update) bool { return len(u.Log) == len(before.Log)+1 })

	last := u.Log[len(u.Log)-1]
	if last.Severity != campaign.SeverityError || !strings.HasPrefix(last.Message, "Failed to parse server message: ") {
		t.Errorf("last entry = %q (%v)", last.Text(), last.Severity)
	}

	b.send(t, `{"event":"step","node":"web_agent","data":"{not json"}`)
	u = eventually(t, d, "payload error", func(u Update) bool { return len(u.Log) == len(before.Log)+2 })
	if msg := u.Log[len(u.Log)-1].Message; !strings.HasPrefix(msg, "Failed to parse server JSON: ") {
		t.Errorf("payload error entry = %q", msg)
	}

	b.send(t, `{"event":"weird"}`)
	u = eventually(t, d, "unknown event", func(u Update) bool { return len(u.Log) == len(before.Log)+3 })
	if msg := u.Log[len(u.Log)-1].Message; msg != `Unknown event "weird" from server.` {
		t.Errorf("unknown event entry = %q", msg)
	}

	time.Sleep(2 * testReconnect)
	if u := d.Snapshot(); u.Conn != ConnOpen || b.connects.Load() != 1 {
		t.Errorf("Conn = %v connects = %d, want the original socket to stay open", u.Conn, b.connects.Load())
	}
}

func TestDashboard_BackendErrorKeepsConnection(t *testing.T) {
	b := newFakeBackend(t)
	d := startDashboard(t, b.url())
	d.Connect()
	eventually(t, d, "open", isOpen)
	if err := d.SendPrompt("go"); err != nil {
		t.Fatalf("SendPrompt: %v", err)
	}
	b.nextPrompt(t)

	b.send(t, `{"event":"error","data":"model overloaded"}`)
	u := eventually(t, d, "failure", func(u Update) bool { return u.Outcome == OutcomeFailed })

	if u.Running {
		t.Error("Running = true after error event")
	}
	last := u.Log[len(u.Log)-1]
	if last.Text() != "ERROR: model overloaded" {
		t.Errorf("last entry = %q", last.Text())
	}
	time.Sleep(2 * testReconnect)
	if d.Snapshot().Conn != ConnOpen {
		t.Error("error event closed the connection")
	}
}

func TestDashboard_SendWhileDisconnectedConnectsAndRetriesOnce(t *testing.T) {
	b := newFakeBackend(t)
	var alerts []error
	var mu sync.Mutex
	d := startDashboard(t, b.url(), WithAlertHandler(func(err error) {
		mu.Lock()
		alerts = append(alerts, err)
		mu.Unlock()
	}))

	if err := d.SendPrompt("deferred"); err != nil {
		t.Fatalf("SendPrompt() = %v, want nil for a deferred send", err)
	}
	if got := b.nextPrompt(t); got != `{"initial_prompt":"deferred"}` {
		t.Errorf("backend got %s", got)
	}
	time.Sleep(2 * testRetry)

	if n := b.connects.Load(); n != 1 {
		t.Errorf("connects = %d, want 1", n)
	}
	select {
	case extra := <-b.prompts:
		t.Errorf("unexpected second prompt %s", extra)
	default:
	}
	mu.Lock()
	defer mu.Unlock()
	if len(alerts) != 0 {
		t.Errorf("alerts = %v, want none", alerts)
	}
}

func TestDashboard_SendRetryDoesNotDeferAgain(t *testing.T) {
	var dials atomic.Int32
	dialer := dialerFunc(func(ctx context.Context, url string) (stream.Conn, error) {
		dials.Add(1)
		return nil, errors.New("connection refused")
	})
	alerts := make(chan error, 4)
	cfg := Config{Endpoint: "ws://localhost:1/ws", ReconnectDelay: time.Hour, SendRetryDelay: testRetry}
	d := New(cfg, WithDialer(dialer), WithAlertHandler(func(err error) { alerts <- err }))
	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		d.Close()
	}()
	go func() { _ = d.Run(ctx) }()

	if err := d.SendPrompt("hello"); err != nil {
		t.Fatalf("SendPrompt: %v", err)
	}
	select {
	case err := <-alerts:
		if !errors.Is(err, ErrNotConnected) {
			t.Errorf("alert = %v, want ErrNotConnected", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no alert after failed retry")
	}
	time.Sleep(2 * testRetry)

	if n := dials.Load(); n != 1 {
		t.Errorf("dials = %d, want exactly 1", n)
	}
	u := d.Snapshot()
	if n := countMessages(u.Log, "Could not connect to ws://localhost:1. Is the server running?"); n != 1 {
		t.Errorf("connect failure entries = %d, want 1; log %v", n, logTexts(u.Log))
	}
	if n := countMessages(u.Log, MsgDisconnected); n != 1 {
		t.Errorf("disconnect entries = %d, want 1", n)
	}
}

func TestDashboard_SendValidation(t *testing.T) {
	b := newFakeBackend(t)
	d := startDashboard(t, b.url())
	d.Connect()
	eventually(t, d, "open", isOpen)

	if err := d.SendPrompt(""); !errors.Is(err, ErrEmptyPrompt) {
		t.Errorf("SendPrompt(\"\") = %v, want ErrEmptyPrompt", err)
	}
	if d.Snapshot().Running {
		t.Error("empty prompt started a run")
	}
}

func TestDashboard_SendWhileConnectingIsRejected(t *testing.T) {
	release := make(chan struct{})
	dialer := dialerFunc(func(ctx context.Context, url string) (stream.Conn, error) {
		select {
		case <-release:
		case <-ctx.Done():
		}
		return nil, errors.New("gave up")
	})
	d := startDashboard(t, "ws://localhost:1/ws", WithDialer(dialer))
	defer close(release)
	d.Connect()
	eventually(t, d, "connecting", func(u Update) bool { return u.Conn == ConnConnecting })

	if err := d.SendPrompt("x"); !errors.Is(err, ErrNotConnected) {
		t.Errorf("SendPrompt() = %v, want ErrNotConnected", err)
	}
}

func TestDashboard_SendClearsLiveState(t *testing.T) {
	b := newFakeBackend(t)
	d := startDashboard(t, b.url())
	d.Connect()
	eventually(t, d, "open", isOpen)

	b.send(t, `{"event":"step","node":"design_agent","data":"{\"generated_assets\":{\"logo\":\"l.png\"}}"}`)
	eventually(t, d, "live state", func(u Update) bool { return u.State.HasLive() })

	if err := d.SendPrompt("again"); err != nil {
		t.Fatalf("SendPrompt: %v", err)
	}
	u := d.Snapshot()
	if u.State.HasLive() {
		t.Errorf("live state = %s after send, want cleared", u.State.Live)
	}
	if u.State.Design.GeneratedAssets == nil {
		t.Error("send cleared stage slices; only live state should reset")
	}
	sep := u.Log[len(u.Log)-1]
	if !sep.IsSeparator() || sep.Message != MsgSending {
		t.Errorf("last entry = %q, want separator", sep.Text())
	}
}

func TestDashboard_SendPromptAfterAutoStarts(t *testing.T) {
	b := newFakeBackend(t)
	d := startDashboard(t, b.url())
	d.Connect()
	d.SendPromptAfter("auto", 100*time.Millisecond)

	if got := b.nextPrompt(t); got != `{"initial_prompt":"auto"}` {
		t.Errorf("backend got %s", got)
	}
}

func TestDashboard_LogIsAppendOnlyInArrivalOrder(t *testing.T) {
	b := newFakeBackend(t)
	var mu sync.Mutex
	var lengths []int
	d := startDashboard(t, b.url(), WithUpdateHandler(func(u Update) {
		mu.Lock()
		lengths = append(lengths, len(u.Log))
		mu.Unlock()
	}))
	d.Connect()
	eventually(t, d, "open", isOpen)

	mu.Lock()
	lengths = nil
	mu.Unlock()

	nodes := []string{"planner_agent", "research_agent", "content_agent", "mystery_agent", "design_agent", "web_agent"}
	for _, n := range nodes {
		b.send(t, `{"event":"step","node":"`+n+`","data":"{}"}`)
	}
	u := eventually(t, d, "all steps", func(u Update) bool { return len(u.Log) == 1+len(nodes) })

	for i, n := range nodes {
		if got, want := u.Log[i+1].Label, strings.ToUpper(n); got != want {
			t.Errorf("entry %d label = %q, want %q", i+1, got, want)
		}
	}
	mu.Lock()
	defer mu.Unlock()
	for i := 1; i < len(lengths); i++ {
		if lengths[i] < lengths[i-1] {
			t.Fatalf("log shrank from %d to %d", lengths[i-1], lengths[i])
		}
	}
}

func TestDashboard_CloseCancelsPendingReconnect(t *testing.T) {
	b := newFakeBackend(t)
	cfg := Config{Endpoint: b.url(), ReconnectDelay: 200 * time.Millisecond, SendRetryDelay: testRetry}
	d := New(cfg)
	go func() { _ = d.Run(context.Background()) }()
	d.Connect()
	eventually(t, d, "open", isOpen)

	b.closeLatest(t)
	eventually(t, d, "disconnect", func(u Update) bool { return countMessages(u.Log, MsgDisconnected) == 1 })
	d.Close()
	time.Sleep(400 * time.Millisecond)

	if n := b.connects.Load(); n != 1 {
		t.Errorf("connects = %d after Close, want 1", n)
	}
	if err := d.SendPrompt("late"); !errors.Is(err, ErrClosed) {
		t.Errorf("SendPrompt after Close = %v, want ErrClosed", err)
	}
}

func TestDashboard_RunTwice(t *testing.T) {
	d := startDashboard(t, "ws://localhost:1/ws")
	deadline := time.Now().Add(time.Second)
	for !d.started.Load() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if err := d.Run(context.Background()); err == nil {
		t.Error("second Run() returned nil, want error")
	}
}

type dialerFunc func(ctx context.Context, url string) (stream.Conn, error)

func (f dialerFunc) Dial(ctx context.Context, url string) (stream.Conn, error) { return f(ctx, url) }

func TestAlertMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrEmptyPrompt, "Please enter a prompt."},
		{ErrNotConnected, "Not connected to server. Please wait."},
		{nil, ""},
		{errors.New("other"), "other"},
	}
	for _, tt := range tests {
		if got := AlertMessage(tt.err); got != tt.want {
			t.Errorf("AlertMessage(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestCouldNotConnect(t *testing.T) {
	got := couldNotConnect(DefaultEndpoint)
	want := "Could not connect to ws://localhost:8000. Is the server running?"
	if got != want {
		t.Errorf("couldNotConnect() = %q, want %q", got, want)
	}
}
