package app

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/fold-labs/fahlink/internal/domain"
	"github.com/fold-labs/fahlink/internal/ports"
)

// fakeConn is a scriptable connection: tests preload or push inbound
// frames and inspect recorded writes.
type fakeConn struct {
	in      chan []byte
	closeCh chan struct{}
	once    sync.Once

	mu       sync.Mutex
	writes   [][]byte
	attempts int
	writeErr error
}

func newFakeConn(frames ...string) *fakeConn {
	c := &fakeConn{in: make(chan []byte, 32), closeCh: make(chan struct{})}
	for _, f := range frames {
		c.in <- []byte(f)
	}
	return c
}

func (c *fakeConn) push(frame string) {
	c.in <- []byte(frame)
}

func (c *fakeConn) ReadMessage() ([]byte, error) {
	select {
	case <-c.closeCh:
		return nil, errors.New("use of closed connection")
	case msg, ok := <-c.in:
		if !ok {
			return nil, io.EOF
		}
		return msg, nil
	}
}

func (c *fakeConn) WriteMessage(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attempts++
	if c.writeErr != nil {
		return c.writeErr
	}
	c.writes = append(c.writes, data)
	return nil
}

func (c *fakeConn) failWrites(err error) {
	c.mu.Lock()
	c.writeErr = err
	c.mu.Unlock()
}

func (c *fakeConn) sent() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]byte, len(c.writes))
	copy(out, c.writes)
	return out
}

func (c *fakeConn) SetReadDeadline(t time.Time) error { return nil }

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closeCh) })
	return nil
}

// fakeDialer hands out a scripted sequence of connections or errors.
// Once the script is exhausted every dial fails.
type fakeDialer struct {
	mu      sync.Mutex
	results []dialResult
	dials   int
}

type dialResult struct {
	conn *fakeConn
	err  error
}

func (d *fakeDialer) expect(conns ...*fakeConn) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, c := range conns {
		d.results = append(d.results, dialResult{conn: c})
	}
}

func (d *fakeDialer) expectErr(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.results = append(d.results, dialResult{err: err})
}

func (d *fakeDialer) Dial(ctx context.Context, url string) (ports.Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dials++
	if len(d.results) == 0 {
		return nil, errors.New("unreachable")
	}
	r := d.results[0]
	d.results = d.results[1:]
	if r.err != nil {
		return nil, r.err
	}
	return r.conn, nil
}

func (d *fakeDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...ports.Field) {}
func (nopLogger) Info(string, ...ports.Field)  {}
func (nopLogger) Warn(string, ...ports.Field)  {}
func (nopLogger) Error(string, ...ports.Field) {}

// countMetrics records every metrics call for assertions.
type countMetrics struct {
	mu        sync.Mutex
	connState []bool
	frames    map[string]int
	dropped   int
	scheduled int
	commands  map[string]int
}

func newCountMetrics() *countMetrics {
	return &countMetrics{frames: map[string]int{}, commands: map[string]int{}}
}

func (m *countMetrics) ConnState(connected bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connState = append(m.connState, connected)
}

func (m *countMetrics) FrameReceived(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames[kind]++
}

func (m *countMetrics) PatchDropped() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dropped++
}

func (m *countMetrics) ReconnectScheduled() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scheduled++
}

func (m *countMetrics) CommandSent(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commands[outcome]++
}

func (m *countMetrics) frameCount(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frames[kind]
}

func (m *countMetrics) droppedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dropped
}

func (m *countMetrics) commandCount(outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.commands[outcome]
}

func (m *countMetrics) scheduledCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scheduled
}

// testConfig keeps backoff long enough that no reconnect fires unless a
// test asks for one.
func testConfig() Config {
	return Config{
		Host:           "127.0.0.1",
		Port:           7396,
		ConnectTimeout: time.Second,
		BackoffBase:    time.Hour,
		BackoffMax:     time.Hour,
	}
}

func newTestCoordinator(t *testing.T, cfg Config, dialer *fakeDialer) (*Coordinator, *countMetrics) {
	t.Helper()
	m := newCountMetrics()
	c := NewCoordinator(cfg, dialer, NewStore(), nopLogger{}, m)
	return c, m
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

const testSnapshot = `{"info":{"id":"m1","mach_name":"rig"},"groups":{"":{"config":{"paused":true}}}}`

func TestCoordinator_InitializePublishesSnapshot(t *testing.T) {
	dialer := &fakeDialer{}
	dialer.expect(newFakeConn(testSnapshot))

	c, _ := newTestCoordinator(t, testConfig(), dialer)
	defer c.Shutdown()

	if err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	if !c.Connected() {
		t.Error("should be connected after Initialize")
	}
	if got := domain.MachineID(c.Store().Current()); got != "m1" {
		t.Errorf("machine id = %q, want m1", got)
	}
	if got := c.Store().Machine().Name; got != "rig" {
		t.Errorf("machine name = %q, want rig", got)
	}
}

func TestCoordinator_InitializeUnreachableIsNotFatal(t *testing.T) {
	dialer := &fakeDialer{} // every dial fails

	c, m := newTestCoordinator(t, testConfig(), dialer)
	defer c.Shutdown()

	if err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize should not fail on an unreachable peer: %v", err)
	}
	if c.Connected() {
		t.Error("should not be connected")
	}
	if got := m.scheduledCount(); got != 1 {
		t.Errorf("reconnects scheduled = %d, want 1", got)
	}
}

func TestCoordinator_PingAsInitialPayload(t *testing.T) {
	dialer := &fakeDialer{}
	dialer.expect(newFakeConn("ping"))

	c, _ := newTestCoordinator(t, testConfig(), dialer)
	defer c.Shutdown()

	if err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if !c.Connected() {
		t.Error("a leading ping should still yield a connection")
	}
	if !c.Store().Current().IsUndefined() {
		t.Error("no snapshot yet, document should be Undefined")
	}
}

func TestCoordinator_InvalidInitialPayloadFailsConnect(t *testing.T) {
	dialer := &fakeDialer{}
	conn := newFakeConn("not json")
	dialer.expect(conn)

	c, _ := newTestCoordinator(t, testConfig(), dialer)
	defer c.Shutdown()

	err := c.connect(context.Background())
	if !errors.Is(err, domain.ErrConnectFailed) {
		t.Fatalf("connect = %v, want ErrConnectFailed", err)
	}
	if c.Connected() {
		t.Error("should not be connected")
	}

	select {
	case <-conn.closeCh:
	default:
		t.Error("bad connection should have been closed")
	}
}

func TestCoordinator_FramesUpdateDocumentInOrder(t *testing.T) {
	conn := newFakeConn(testSnapshot)
	dialer := &fakeDialer{}
	dialer.expect(conn)

	c, m := newTestCoordinator(t, testConfig(), dialer)
	defer c.Shutdown()

	docs := make(chan domain.Value, 16)
	c.Store().Subscribe(func(doc domain.Value) { docs <- doc })

	if err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	first := <-docs
	if !domain.Paused(first, domain.DefaultGroup) {
		t.Error("snapshot should start paused")
	}

	conn.push("ping")
	conn.push(`["groups","","config","paused",false]`)

	second := <-docs
	if domain.Paused(second, domain.DefaultGroup) {
		t.Error("patch should have unpaused the group")
	}
	if got := domain.GroupStatus(second, domain.DefaultGroup); got != domain.StatusFolding {
		t.Errorf("status = %v, want folding", got)
	}

	waitFor(t, "ping counted", func() bool { return m.frameCount("ping") == 1 })
}

func TestCoordinator_MalformedFramesDropped(t *testing.T) {
	conn := newFakeConn(testSnapshot)
	dialer := &fakeDialer{}
	dialer.expect(conn)

	c, m := newTestCoordinator(t, testConfig(), dialer)
	defer c.Shutdown()

	if err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	before := c.Store().Current()

	conn.push(`garbage{`)            // not JSON
	conn.push(`5`)                   // scalar frame
	conn.push(`["solo"]`)            // array too short
	conn.push(`["units",9,"ppd",1]`) // index into missing array
	conn.push(`["info","id","x",1]`) // scalar mid-path
	waitFor(t, "frames processed", func() bool {
		return m.frameCount("invalid") == 3 && m.droppedCount() == 2
	})

	if !c.Store().Current().Equal(before) {
		t.Error("dropped frames must not change the document")
	}
	if !c.Connected() {
		t.Error("dropped frames must not kill the connection")
	}
}

func TestCoordinator_PeerDisconnectTriggersReconnect(t *testing.T) {
	conn1 := newFakeConn(testSnapshot)
	conn2 := newFakeConn(testSnapshot)
	dialer := &fakeDialer{}
	dialer.expect(conn1, conn2)

	cfg := testConfig()
	cfg.BackoffBase = 5 * time.Millisecond
	cfg.BackoffMax = 20 * time.Millisecond

	c, _ := newTestCoordinator(t, cfg, dialer)
	defer c.Shutdown()

	if err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	close(conn1.in) // peer goes away

	waitFor(t, "reconnect", func() bool {
		return dialer.dialCount() == 2 && c.Connected()
	})
}

func TestCoordinator_ReconnectRetriesUntilSuccess(t *testing.T) {
	dialer := &fakeDialer{}
	dialer.expectErr(errors.New("refused"))
	dialer.expectErr(errors.New("refused"))
	dialer.expect(newFakeConn(testSnapshot))

	cfg := testConfig()
	cfg.BackoffBase = 5 * time.Millisecond
	cfg.BackoffMax = 20 * time.Millisecond

	c, m := newTestCoordinator(t, cfg, dialer)
	defer c.Shutdown()

	if err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	waitFor(t, "eventual connect", func() bool { return c.Connected() })

	if got := dialer.dialCount(); got != 3 {
		t.Errorf("dials = %d, want 3", got)
	}
	if got := m.scheduledCount(); got < 2 {
		t.Errorf("reconnects scheduled = %d, want >= 2", got)
	}
	// A successful connect resets the backoff.
	if got := c.back.Attempts(); got != 0 {
		t.Errorf("backoff attempts after connect = %d, want 0", got)
	}
}

func TestCoordinator_ShutdownStopsEverything(t *testing.T) {
	conn := newFakeConn(testSnapshot)
	dialer := &fakeDialer{}
	dialer.expect(conn)

	cfg := testConfig()
	cfg.BackoffBase = 5 * time.Millisecond

	c, _ := newTestCoordinator(t, cfg, dialer)

	if err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	if err := c.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	if c.Connected() {
		t.Error("should be disconnected after shutdown")
	}

	// No reconnect may fire after shutdown.
	time.Sleep(30 * time.Millisecond)
	if got := dialer.dialCount(); got != 1 {
		t.Errorf("dials after shutdown = %d, want 1", got)
	}
}

// parkedDialer blocks every Dial until release is closed.
type parkedDialer struct {
	release chan struct{}
	conn    *fakeConn

	mu      sync.Mutex
	started bool
}

func (d *parkedDialer) Dial(ctx context.Context, url string) (ports.Conn, error) {
	d.mu.Lock()
	d.started = true
	d.mu.Unlock()
	<-d.release
	return d.conn, nil
}

func (d *parkedDialer) dialing() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.started
}

func TestCoordinator_ShutdownDuringDialInstallsNothing(t *testing.T) {
	conn := newFakeConn(testSnapshot)
	dialer := &parkedDialer{release: make(chan struct{}), conn: conn}

	c := NewCoordinator(testConfig(), dialer, NewStore(), nopLogger{}, newCountMetrics())

	done := make(chan error, 1)
	go func() { done <- c.connect(context.Background()) }()
	waitFor(t, "dial in flight", dialer.dialing)

	if err := c.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	// The dial completes only after shutdown has already torn everything
	// down; the late connection must not be installed.
	close(dialer.release)

	if err := <-done; !errors.Is(err, domain.ErrConnectFailed) {
		t.Fatalf("connect = %v, want ErrConnectFailed", err)
	}
	if c.Connected() {
		t.Error("live connection after shutdown")
	}
	select {
	case <-conn.closeCh:
	default:
		t.Error("late connection left open after shutdown")
	}
}

func TestCoordinator_ShutdownWhileWaitingToReconnect(t *testing.T) {
	dialer := &fakeDialer{} // unreachable

	c, _ := newTestCoordinator(t, testConfig(), dialer)

	if err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	// The pending hour-long backoff wait must not block shutdown.
	done := make(chan error, 1)
	go func() { done <- c.Shutdown() }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Shutdown: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Shutdown blocked on a pending reconnect wait")
	}
}
