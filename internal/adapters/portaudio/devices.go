// Package portaudio implementa audio.Devices sobre los dispositivos del SO
// (lo usa el cliente de terminal).
package portaudio

import (
	"context"
	"errors"
	"fmt"
	"sync"

	pa "github.com/gordonklaus/portaudio"

	"caregiver-assistant/internal/platform/logger"
	"caregiver-assistant/internal/voice/audio"
	"caregiver-assistant/internal/voice/codec"
)

var _ audio.Devices = (*Devices)(nil)

type Devices struct {
	log logger.Logger
}

// Open inicializa PortAudio. Hay que llamar Close al terminar.
func Open(log logger.Logger) (*Devices, error) {
	if err := pa.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio init: %w", err)
	}
	return &Devices{log: logger.OrNop(log)}, nil
}

func (d *Devices) Close() error {
	return pa.Terminate()
}

func (d *Devices) OpenCapture(ctx context.Context, spec audio.CaptureSpec) (audio.CaptureStream, error) {
	if spec.SampleRate <= 0 {
		spec.SampleRate = codec.CaptureSampleRate
	}
	if spec.FrameSize <= 0 {
		spec.FrameSize = codec.FrameSize
	}
	if _, err := pa.DefaultInputDevice(); err != nil {
		return nil, fmt.Errorf("%w: %v", audio.ErrNoDevice, err)
	}

	buf := make([]float32, spec.FrameSize)
	stream, err := pa.OpenDefaultStream(1, 0, float64(spec.SampleRate), spec.FrameSize, buf)
	if err != nil {
		return nil, mapOpenErr(err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		return nil, mapOpenErr(err)
	}

	c := &captureStream{
		stream: stream,
		buf:    buf,
		frames: make(chan []float32, 8),
		done:   make(chan struct{}),
		log:    d.log,
	}
	go c.pump()
	return c, nil
}

// En Linux/macOS PortAudio no distingue "sin permiso"; un dispositivo que no
// abre se reporta como ausente.
func mapOpenErr(err error) error {
	if errors.Is(err, pa.InvalidDevice) || errors.Is(err, pa.DeviceUnavailable) {
		return fmt.Errorf("%w: %v", audio.ErrNoDevice, err)
	}
	return fmt.Errorf("%w: %v", audio.ErrPermissionDenied, err)
}

type captureStream struct {
	stream *pa.Stream
	buf    []float32
	frames chan []float32
	done   chan struct{}
	once   sync.Once
	log    logger.Logger
}

func (c *captureStream) pump() {
	defer close(c.frames)
	for {
		select {
		case <-c.done:
			return
		default:
		}
		if err := c.stream.Read(); err != nil {
			if errors.Is(err, pa.InputOverflowed) {
				continue
			}
			select {
			case <-c.done:
			default:
				c.log.Warn("capture read failed", map[string]any{"err": err})
			}
			return
		}
		frame := make([]float32, len(c.buf))
		copy(frame, c.buf)

		select {
		case c.frames <- frame:
		case <-c.done:
			return
		}
	}
}

func (c *captureStream) Read(ctx context.Context) ([]float32, error) {
	select {
	case f, ok := <-c.frames:
		if !ok {
			return nil, audio.ErrClosed
		}
		return f, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *captureStream) Close() error {
	var err error
	c.once.Do(func() {
		close(c.done)
		if stopErr := c.stream.Stop(); stopErr != nil {
			err = stopErr
		}
		if closeErr := c.stream.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	})
	return err
}
