package live

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"caregiver-assistant/internal/voice/audio"
	"caregiver-assistant/internal/voice/codec"
)

// fakeConn emula la conexión del proveedor: Receive ignora ctx y sólo se
// desbloquea con un mensaje, con close(in) (EOF) o con Close.
type fakeConn struct {
	in      chan []Message
	closeCh chan struct{}

	mu          sync.Mutex
	audioSent   int
	responses   [][]FunctionResponse
	closed      bool
	sendToolErr error
}

func newFakeConn() *fakeConn {
	return &fakeConn{in: make(chan []Message, 16), closeCh: make(chan struct{})}
}

func (c *fakeConn) SendAudio(context.Context, []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.New("connection closed")
	}
	c.audioSent++
	return nil
}

func (c *fakeConn) SendToolResponses(_ context.Context, rs []FunctionResponse) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendToolErr != nil {
		return c.sendToolErr
	}
	c.responses = append(c.responses, rs)
	return nil
}

func (c *fakeConn) Receive(context.Context) ([]Message, error) {
	select {
	case msgs, ok := <-c.in:
		if !ok {
			return nil, io.EOF
		}
		return msgs, nil
	case <-c.closeCh:
		return nil, errors.New("use of closed network connection")
	}
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.closeCh)
	}
	return nil
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *fakeConn) allResponses() []FunctionResponse {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []FunctionResponse
	for _, batch := range c.responses {
		out = append(out, batch...)
	}
	return out
}

type fakeDialer struct {
	conn     *fakeConn
	readyErr error
	dialErr  error

	mu     sync.Mutex
	setups []Setup
}

func (d *fakeDialer) Ready() error { return d.readyErr }

func (d *fakeDialer) Dial(_ context.Context, s Setup) (Conn, error) {
	d.mu.Lock()
	d.setups = append(d.setups, s)
	d.mu.Unlock()
	if d.dialErr != nil {
		return nil, d.dialErr
	}
	return d.conn, nil
}

func (d *fakeDialer) dials() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.setups)
}

type idleCapture struct {
	once sync.Once
	done chan struct{}
}

func (c *idleCapture) Read(ctx context.Context) ([]float32, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.done:
		return nil, audio.ErrClosed
	}
}

func (c *idleCapture) Close() error {
	c.once.Do(func() { close(c.done) })
	return nil
}

type countingSource struct {
	stopped *int
	mu      *sync.Mutex
	end     func()
}

func (s countingSource) Stop() {
	s.mu.Lock()
	*s.stopped++
	s.mu.Unlock()
	s.end()
}

type stubPlayback struct {
	mu        sync.Mutex
	scheduled int
	stopped   int
	closed    bool
}

func (p *stubPlayback) SampleRate() int            { return codec.PlaybackSampleRate }
func (p *stubPlayback) CurrentTime() time.Duration { return 0 }

func (p *stubPlayback) Schedule(_ codec.Buffer, _ time.Duration, onEnded func()) (audio.Source, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scheduled++
	return countingSource{stopped: &p.stopped, mu: &p.mu, end: onEnded}, nil
}

func (p *stubPlayback) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func (p *stubPlayback) counts() (scheduled, stopped int, closed bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.scheduled, p.stopped, p.closed
}

type stubDevices struct {
	captureErr error
	capture    *idleCapture
	playback   *stubPlayback

	mu     sync.Mutex
	opened int
	// con hold, OpenCapture se queda esperando a ctx y avisa en holding
	hold    bool
	holding chan struct{}
}

func newStubDevices() *stubDevices {
	return &stubDevices{capture: &idleCapture{done: make(chan struct{})}, playback: &stubPlayback{}}
}

func (d *stubDevices) holdCapture() <-chan struct{} {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.hold = true
	d.holding = make(chan struct{})
	return d.holding
}

func (d *stubDevices) release() {
	d.mu.Lock()
	d.hold = false
	d.mu.Unlock()
}

func (d *stubDevices) OpenCapture(ctx context.Context, _ audio.CaptureSpec) (audio.CaptureStream, error) {
	d.mu.Lock()
	d.opened++
	hold, holding := d.hold, d.holding
	d.mu.Unlock()
	if hold {
		close(holding)
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if d.captureErr != nil {
		return nil, d.captureErr
	}
	return d.capture, nil
}

func (d *stubDevices) OpenPlayback(context.Context, int) (audio.PlaybackContext, error) {
	return d.playback, nil
}
