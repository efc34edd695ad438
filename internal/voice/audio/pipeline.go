package audio

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"caregiver-assistant/internal/platform/logger"
	"caregiver-assistant/internal/voice/codec"
)

type Options struct {
	CaptureRate  int
	PlaybackRate int
	FrameSize    int
	Logger       logger.Logger
}

func (o Options) withDefaults() Options {
	if o.CaptureRate <= 0 {
		o.CaptureRate = codec.CaptureSampleRate
	}
	if o.PlaybackRate <= 0 {
		o.PlaybackRate = codec.PlaybackSampleRate
	}
	if o.FrameSize <= 0 {
		o.FrameSize = codec.FrameSize
	}
	o.Logger = logger.OrNop(o.Logger)
	return o
}

// Pipeline une un stream de captura con un contexto de reproducción.
//
// La reproducción usa un cursor: cada chunk reserva su inicio en
// max(cursor, reloj) al llegar, antes de decodificar. Así el orden de
// reproducción es el de llegada aunque las decodificaciones terminen
// en otro orden.
type Pipeline struct {
	opts     Options
	capture  CaptureStream
	playback PlaybackContext
	log      logger.Logger

	// reemplazable en tests
	decode func(pcm []byte, sampleRate, channels int) (codec.Buffer, error)

	mu      sync.Mutex
	cursor  time.Duration
	gen     uint64
	nextID  uint64
	sources map[uint64]Source
	closed  bool

	decodes   sync.WaitGroup
	closeOnce sync.Once
	closeErr  error
}

// Open adquiere captura y reproducción. Si algo falla libera lo ya adquirido.
// Los errores de permiso del micrófono llegan envueltos en ErrPermissionDenied
// o ErrNoDevice.
func Open(ctx context.Context, devices Devices, opts Options) (*Pipeline, error) {
	if devices == nil {
		return nil, ErrNoDevice
	}
	opts = opts.withDefaults()

	capture, err := devices.OpenCapture(ctx, CaptureSpec{SampleRate: opts.CaptureRate, FrameSize: opts.FrameSize})
	if err != nil {
		return nil, fmt.Errorf("open capture: %w", err)
	}

	playback, err := devices.OpenPlayback(ctx, opts.PlaybackRate)
	if err != nil {
		_ = capture.Close()
		return nil, fmt.Errorf("open playback: %w", err)
	}

	return &Pipeline{
		opts:     opts,
		capture:  capture,
		playback: playback,
		log:      opts.Logger,
		decode:   codec.DecodeFrame,
		sources:  make(map[uint64]Source),
	}, nil
}

// Run bombea frames del micrófono hacia send, en orden de captura, hasta que
// ctx se cancele, el stream se cierre o send falle.
func (p *Pipeline) Run(ctx context.Context, send func(ctx context.Context, pcm []byte) error) error {
	for {
		frame, err := p.capture.Read(ctx)
		if err != nil {
			if errors.Is(err, ErrClosed) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("capture: %w", err)
		}
		if len(frame) == 0 {
			continue
		}
		if err := send(ctx, codec.EncodeFrame(frame)); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("send audio: %w", err)
		}
	}
}

// Play reserva el hueco del chunk en el cursor y decodifica en background.
func (p *Pipeline) Play(pcm []byte) {
	if len(pcm) == 0 {
		return
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	start := max(p.cursor, p.playback.CurrentTime())
	p.cursor = start + codec.DurationOf(len(pcm), p.opts.PlaybackRate, 1)
	gen := p.gen
	p.decodes.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.decodes.Done()

		buf, err := p.decode(pcm, p.opts.PlaybackRate, 1)
		if err != nil {
			p.log.Warn("decode audio chunk failed", map[string]any{"err": err, "bytes": len(pcm)})
			return
		}
		p.schedule(gen, buf, start)
	}()
}

func (p *Pipeline) schedule(gen uint64, buf codec.Buffer, start time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	// Interrupt o Close llegaron mientras decodificábamos.
	if p.closed || gen != p.gen {
		return
	}

	p.nextID++
	id := p.nextID
	src, err := p.playback.Schedule(buf, start, func() { p.release(id) })
	if err != nil {
		p.log.Warn("schedule audio chunk failed", map[string]any{"err": err})
		return
	}
	p.sources[id] = src
}

func (p *Pipeline) release(id uint64) {
	p.mu.Lock()
	delete(p.sources, id)
	p.mu.Unlock()
}

// Interrupt corta todo lo que suena o está programado y resetea el cursor.
// Los chunks en decodificación se descartan.
func (p *Pipeline) Interrupt() {
	p.mu.Lock()
	p.gen++
	p.cursor = 0
	srcs := p.takeSources()
	p.mu.Unlock()

	for _, s := range srcs {
		s.Stop()
	}
}

// takeSources vacía el set de sources. Requiere p.mu.
func (p *Pipeline) takeSources() []Source {
	out := make([]Source, 0, len(p.sources))
	for _, s := range p.sources {
		out = append(out, s)
	}
	p.sources = make(map[uint64]Source)
	return out
}

// Active devuelve cuántas sources siguen programadas.
func (p *Pipeline) Active() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sources)
}

// Close es idempotente; sigue liberando aunque algún paso falle.
func (p *Pipeline) Close() error {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		p.gen++
		srcs := p.takeSources()
		p.mu.Unlock()

		for _, s := range srcs {
			s.Stop()
		}
		p.decodes.Wait()

		var errs []error
		if err := p.capture.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close capture: %w", err))
		}
		if err := p.playback.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close playback: %w", err))
		}
		p.closeErr = errors.Join(errs...)
	})
	return p.closeErr
}
