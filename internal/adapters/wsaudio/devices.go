package wsaudio

import (
	"context"
	"errors"
	"sync"
	"time"

	"caregiver-assistant/internal/voice/audio"
	"caregiver-assistant/internal/voice/codec"
)

var _ audio.Devices = (*Peer)(nil)

var ErrCaptureBusy = errors.New("wsaudio: capture already open")

// captureQueue es cuántos frames se bufferean antes de descartar los más
// viejos (el lector de la sesión está trabado o cerrando).
const captureQueue = 32

// OpenCapture le pide al navegador el micrófono y espera mic.ready o
// mic.denied.
func (p *Peer) OpenCapture(ctx context.Context, spec audio.CaptureSpec) (audio.CaptureStream, error) {
	if spec.SampleRate <= 0 {
		spec.SampleRate = codec.CaptureSampleRate
	}
	if spec.FrameSize <= 0 {
		spec.FrameSize = codec.FrameSize
	}

	reply := make(chan error, 1)
	c := newCaptureStream(p, spec.FrameSize)

	p.mu.Lock()
	if p.capture != nil || p.micReply != nil {
		p.mu.Unlock()
		return nil, ErrCaptureBusy
	}
	p.micReply = reply
	p.capture = c
	p.mu.Unlock()

	fail := func(err error) (audio.CaptureStream, error) {
		p.mu.Lock()
		if p.micReply == reply {
			p.micReply = nil
		}
		if p.capture == c {
			p.capture = nil
		}
		p.mu.Unlock()
		return nil, err
	}

	if err := p.Send(micOpen{Type: TypeMicOpen, SampleRate: spec.SampleRate, FrameSize: spec.FrameSize}); err != nil {
		return fail(err)
	}

	select {
	case err := <-reply:
		if err != nil {
			return fail(err)
		}
		return c, nil
	case <-ctx.Done():
		return fail(ctx.Err())
	}
}

type captureStream struct {
	peer      *Peer
	frameSize int

	mu      sync.Mutex
	pending []float32
	closed  bool

	frames chan []float32
	done   chan struct{}
	once   sync.Once
}

func newCaptureStream(p *Peer, frameSize int) *captureStream {
	return &captureStream{
		peer:      p,
		frameSize: frameSize,
		frames:    make(chan []float32, captureQueue),
		done:      make(chan struct{}),
	}
}

// push re-agrupa lo que mande el navegador en frames de frameSize.
func (c *captureStream) push(samples []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	c.pending = append(c.pending, samples...)
	for len(c.pending) >= c.frameSize {
		frame := make([]float32, c.frameSize)
		copy(frame, c.pending[:c.frameSize])
		c.pending = c.pending[c.frameSize:]

		select {
		case c.frames <- frame:
		default:
			// lleno: se pierde el más viejo
			select {
			case <-c.frames:
			default:
			}
			c.frames <- frame
		}
	}
}

func (c *captureStream) Read(ctx context.Context) ([]float32, error) {
	select {
	case f := <-c.frames:
		return f, nil
	default:
	}
	select {
	case f := <-c.frames:
		return f, nil
	case <-c.done:
		return nil, audio.ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *captureStream) Close() error {
	c.peer.mu.Lock()
	if c.peer.capture == c {
		c.peer.capture = nil
	}
	c.peer.mu.Unlock()

	if c.closeLocal() {
		if err := c.peer.Send(simple{Type: TypeMicClose}); err != nil && !errors.Is(err, ErrPeerClosed) {
			return err
		}
	}
	return nil
}

// closeLocal devuelve true la primera vez.
func (c *captureStream) closeLocal() bool {
	first := false
	c.once.Do(func() {
		first = true
		c.mu.Lock()
		c.closed = true
		c.pending = nil
		c.mu.Unlock()
		close(c.done)
	})
	return first
}

// OpenPlayback avisa al navegador que prepare un AudioContext a sampleRate.
// El reloj del contexto corre desde este momento; el cliente usa start_ms
// relativo a su propio speaker.open.
func (p *Peer) OpenPlayback(ctx context.Context, sampleRate int) (audio.PlaybackContext, error) {
	if sampleRate <= 0 {
		sampleRate = codec.PlaybackSampleRate
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := p.Send(speakerOpen{Type: TypeSpeakerOpen, SampleRate: sampleRate}); err != nil {
		return nil, err
	}
	return &playbackContext{
		peer:       p,
		sampleRate: sampleRate,
		now:        p.now,
		opened:     p.now(),
		sources:    make(map[uint64]*source),
	}, nil
}

type playbackContext struct {
	peer       *Peer
	sampleRate int
	now        func() time.Time
	opened     time.Time

	mu      sync.Mutex
	nextID  uint64
	sources map[uint64]*source
	closed  bool
}

func (pc *playbackContext) SampleRate() int { return pc.sampleRate }

func (pc *playbackContext) CurrentTime() time.Duration {
	return pc.now().Sub(pc.opened)
}

func (pc *playbackContext) Schedule(buf codec.Buffer, at time.Duration, onEnded func()) (audio.Source, error) {
	var samples []float32
	if len(buf.Data) > 0 {
		samples = buf.Data[0]
	}
	rate := buf.SampleRate
	if rate <= 0 {
		rate = pc.sampleRate
	}

	pc.mu.Lock()
	if pc.closed {
		pc.mu.Unlock()
		return nil, audio.ErrClosed
	}
	pc.nextID++
	src := &source{ctx: pc, id: pc.nextID, onEnded: onEnded}
	pc.sources[src.id] = src
	pc.mu.Unlock()

	err := pc.peer.Send(audioPlay{
		Type:       TypeAudioPlay,
		ID:         src.id,
		StartMS:    at.Milliseconds(),
		SampleRate: rate,
		Samples:    encodeSamples(samples),
	})
	if err != nil {
		pc.forget(src.id)
		return nil, err
	}

	wait := at + buf.Duration() - pc.CurrentTime()
	if wait < 0 {
		wait = 0
	}
	src.mu.Lock()
	src.timer = time.AfterFunc(wait, src.ended)
	src.mu.Unlock()
	return src, nil
}

func (pc *playbackContext) forget(id uint64) {
	pc.mu.Lock()
	delete(pc.sources, id)
	pc.mu.Unlock()
}

func (pc *playbackContext) Close() error {
	pc.mu.Lock()
	if pc.closed {
		pc.mu.Unlock()
		return nil
	}
	pc.closed = true
	pending := make([]*source, 0, len(pc.sources))
	for _, s := range pc.sources {
		pending = append(pending, s)
	}
	pc.mu.Unlock()

	for _, s := range pending {
		s.Stop()
	}
	return nil
}

type source struct {
	ctx     *playbackContext
	id      uint64
	onEnded func()
	once    sync.Once

	mu    sync.Mutex
	timer *time.Timer
}

func (s *source) ended() {
	s.once.Do(func() {
		s.ctx.forget(s.id)
		if s.onEnded != nil {
			s.onEnded()
		}
	})
}

// Stop corta el buffer en el navegador. Si ya terminó de sonar no hace nada.
func (s *source) Stop() {
	s.once.Do(func() {
		s.mu.Lock()
		if s.timer != nil {
			s.timer.Stop()
		}
		s.mu.Unlock()
		s.ctx.forget(s.id)
		_ = s.ctx.peer.Send(audioStop{Type: TypeAudioStop, IDs: []uint64{s.id}})
		if s.onEnded != nil {
			s.onEnded()
		}
	})
}
