package audio

import (
	"context"
	"sync"
	"time"

	"caregiver-assistant/internal/voice/codec"
)

type fakeCapture struct {
	frames chan []float32
	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

func newFakeCapture() *fakeCapture {
	return &fakeCapture{frames: make(chan []float32, 16), done: make(chan struct{})}
}

func (c *fakeCapture) Read(ctx context.Context) ([]float32, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.done:
		return nil, ErrClosed
	case f := <-c.frames:
		return f, nil
	}
}

func (c *fakeCapture) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.done)
	}
	return nil
}

type scheduled struct {
	at      time.Duration
	dur     time.Duration
	stopped bool
}

type fakeSource struct {
	pb  *fakePlayback
	idx int
	end func()
}

func (s *fakeSource) Stop() {
	s.pb.mu.Lock()
	s.pb.items[s.idx].stopped = true
	s.pb.mu.Unlock()
	s.end()
}

type fakePlayback struct {
	mu       sync.Mutex
	now      time.Duration
	items    []scheduled
	closed   bool
	closeErr error
}

func (p *fakePlayback) SampleRate() int { return codec.PlaybackSampleRate }

func (p *fakePlayback) CurrentTime() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.now
}

func (p *fakePlayback) advance(d time.Duration) {
	p.mu.Lock()
	p.now += d
	p.mu.Unlock()
}

func (p *fakePlayback) Schedule(buf codec.Buffer, at time.Duration, onEnded func()) (Source, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.items = append(p.items, scheduled{at: at, dur: buf.Duration()})
	return &fakeSource{pb: p, idx: len(p.items) - 1, end: onEnded}, nil
}

func (p *fakePlayback) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return p.closeErr
}

func (p *fakePlayback) snapshot() []scheduled {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]scheduled, len(p.items))
	copy(out, p.items)
	return out
}

type fakeDevices struct {
	capture    *fakeCapture
	playback   *fakePlayback
	captureErr error
	playErr    error
}

func newFakeDevices() *fakeDevices {
	return &fakeDevices{capture: newFakeCapture(), playback: &fakePlayback{}}
}

func (d *fakeDevices) OpenCapture(context.Context, CaptureSpec) (CaptureStream, error) {
	if d.captureErr != nil {
		return nil, d.captureErr
	}
	return d.capture, nil
}

func (d *fakeDevices) OpenPlayback(context.Context, int) (PlaybackContext, error) {
	if d.playErr != nil {
		return nil, d.playErr
	}
	return d.playback, nil
}
