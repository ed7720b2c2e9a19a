package live

import (
	"context"
	"io"
	"sync"
	"sync/atomic"

	"github.com/voxhome/voxhome/pkg/core/audio"
)

// fakeClock is a manually advanced playback clock.
type fakeClock struct {
	mu sync.Mutex
	t  float64
}

func (c *fakeClock) Now() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) set(t float64) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

// fakeHandle completes when finished explicitly or stopped.
type fakeHandle struct {
	once    sync.Once
	done    chan struct{}
	stopped atomic.Bool
}

func newFakeHandle() *fakeHandle {
	return &fakeHandle{done: make(chan struct{})}
}

func (h *fakeHandle) Stop() {
	h.stopped.Store(true)
	h.once.Do(func() { close(h.done) })
}

func (h *fakeHandle) Done() <-chan struct{} { return h.done }

func (h *fakeHandle) finish() {
	h.once.Do(func() { close(h.done) })
}

type fakePlay struct {
	buf     *audio.Buffer
	startAt float64
	handle  *fakeHandle
}

// fakeOutput records every scheduled buffer and hands back controllable
// handles.
type fakeOutput struct {
	mu    sync.Mutex
	plays []fakePlay
	err   error
}

func (o *fakeOutput) Play(buf *audio.Buffer, startAt float64) (Handle, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return nil, o.err
	}
	h := newFakeHandle()
	o.plays = append(o.plays, fakePlay{buf: buf, startAt: startAt, handle: h})
	return h, nil
}

func (o *fakeOutput) play(i int) fakePlay {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.plays[i]
}

func (o *fakeOutput) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.plays)
}

// fakeConn is a scriptable upstream connection.
type fakeConn struct {
	mu        sync.Mutex
	frames    []Frame
	responses []ToolResult
	events    chan ServerEvent
	closeOnce sync.Once
	closed    atomic.Bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{events: make(chan ServerEvent, 16)}
}

func (c *fakeConn) SendRealtimeInput(frame Frame) error {
	c.mu.Lock()
	c.frames = append(c.frames, frame)
	c.mu.Unlock()
	return nil
}

func (c *fakeConn) SendToolResponse(result ToolResult) error {
	c.mu.Lock()
	c.responses = append(c.responses, result)
	c.mu.Unlock()
	return nil
}

func (c *fakeConn) Events() <-chan ServerEvent { return c.events }

func (c *fakeConn) Close() error {
	c.closed.Store(true)
	c.closeOnce.Do(func() { close(c.events) })
	return nil
}

func (c *fakeConn) emit(ev ServerEvent) { c.events <- ev }

func (c *fakeConn) toolResponses() []ToolResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ToolResult, len(c.responses))
	copy(out, c.responses)
	return out
}

func (c *fakeConn) sentFrames() []Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Frame, len(c.frames))
	copy(out, c.frames)
	return out
}

// fakeTransport hands out a scripted connection, optionally failing.
type fakeTransport struct {
	mu       sync.Mutex
	conn     *fakeConn
	err      error
	connects int
}

func (t *fakeTransport) Connect(_ context.Context, _ ConnectConfig) (Conn, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.connects++
	if t.err != nil {
		return nil, t.err
	}
	return t.conn, nil
}

func (t *fakeTransport) set(conn *fakeConn, err error) {
	t.mu.Lock()
	t.conn = conn
	t.err = err
	t.mu.Unlock()
}

func (t *fakeTransport) connectCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connects
}

// fakeSource feeds scripted sample slices to the capture pipeline and blocks
// once exhausted until closed.
type fakeSource struct {
	ch        chan []float32
	closed    chan struct{}
	closeOnce sync.Once
	pending   []float32
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		ch:     make(chan []float32, 16),
		closed: make(chan struct{}),
	}
}

func (s *fakeSource) feed(samples []float32) {
	s.ch <- samples
}

func (s *fakeSource) Read(dst []float32) (int, error) {
	for len(s.pending) == 0 {
		select {
		case samples := <-s.ch:
			s.pending = samples
		case <-s.closed:
			return 0, io.EOF
		}
	}
	n := copy(dst, s.pending)
	s.pending = s.pending[n:]
	return n, nil
}

func (s *fakeSource) Close() error {
	s.closeOnce.Do(func() { close(s.closed) })
	return nil
}

func (s *fakeSource) isClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}
