package portaudio

import (
	"context"
	"fmt"
	"sync"
	"time"

	pa "github.com/gordonklaus/portaudio"

	"caregiver-assistant/internal/voice/audio"
	"caregiver-assistant/internal/voice/codec"
)

// outputFrames es el tamaño de buffer que se le pide al callback de salida.
const outputFrames = 512

func (d *Devices) OpenPlayback(ctx context.Context, sampleRate int) (audio.PlaybackContext, error) {
	if sampleRate <= 0 {
		sampleRate = codec.PlaybackSampleRate
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m := newMixer(sampleRate)
	stream, err := pa.OpenDefaultStream(0, 1, float64(sampleRate), outputFrames, m.fill)
	if err != nil {
		return nil, fmt.Errorf("open output: %w", err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		return nil, fmt.Errorf("start output: %w", err)
	}
	return &playbackContext{mixer: m, stream: stream}, nil
}

type playbackContext struct {
	*mixer
	stream *pa.Stream
	once   sync.Once
}

func (pc *playbackContext) Close() error {
	var err error
	pc.once.Do(func() {
		pc.mixer.close()
		if stopErr := pc.stream.Stop(); stopErr != nil {
			err = stopErr
		}
		if closeErr := pc.stream.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	})
	return err
}

// mixer suma los buffers programados en el callback de salida. El reloj es
// la cantidad de frames ya entregados al dispositivo.
type mixer struct {
	rate int

	mu      sync.Mutex
	written int64
	voices  []*voice
	closed  bool
}

func newMixer(rate int) *mixer {
	return &mixer{rate: rate}
}

func (m *mixer) SampleRate() int { return m.rate }

func (m *mixer) CurrentTime() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.framesToDuration(m.written)
}

func (m *mixer) framesToDuration(n int64) time.Duration {
	return time.Duration(n) * time.Second / time.Duration(m.rate)
}

func (m *mixer) durationToFrames(d time.Duration) int64 {
	return int64(d) * int64(m.rate) / int64(time.Second)
}

func (m *mixer) Schedule(buf codec.Buffer, at time.Duration, onEnded func()) (audio.Source, error) {
	var samples []float32
	if len(buf.Data) > 0 {
		samples = buf.Data[0]
	}
	if buf.SampleRate > 0 && buf.SampleRate != m.rate {
		samples = resample(samples, buf.SampleRate, m.rate)
	}

	v := &voice{mixer: m, start: m.durationToFrames(at), samples: samples, onEnded: onEnded}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, audio.ErrClosed
	}
	if len(samples) == 0 {
		go v.finish()
		return v, nil
	}
	m.voices = append(m.voices, v)
	return v, nil
}

// fill es el callback de PortAudio.
func (m *mixer) fill(out []float32) {
	for i := range out {
		out[i] = 0
	}

	m.mu.Lock()
	from := m.written
	to := from + int64(len(out))

	var finished []*voice
	alive := m.voices[:0]
	for _, v := range m.voices {
		if v.stopped {
			continue
		}
		end := v.start + int64(len(v.samples))
		lo := max(from, v.start)
		hi := min(to, end)
		for f := lo; f < hi; f++ {
			out[f-from] += v.samples[f-v.start]
		}
		if end <= to {
			finished = append(finished, v)
			continue
		}
		alive = append(alive, v)
	}
	m.voices = alive
	m.written = to
	m.mu.Unlock()

	for _, v := range finished {
		go v.finish()
	}
}

func (m *mixer) close() {
	m.mu.Lock()
	pending := m.voices
	m.voices = nil
	m.closed = true
	m.mu.Unlock()

	for _, v := range pending {
		v.Stop()
	}
}

type voice struct {
	mixer   *mixer
	start   int64
	samples []float32
	onEnded func()
	stopped bool // protegido por mixer.mu
	once    sync.Once
}

func (v *voice) finish() {
	v.once.Do(func() {
		if v.onEnded != nil {
			v.onEnded()
		}
	})
}

func (v *voice) Stop() {
	v.mixer.mu.Lock()
	v.stopped = true
	v.mixer.mu.Unlock()
	v.finish()
}

// resample lineal; alcanza para voz.
func resample(in []float32, from, to int) []float32 {
	if len(in) == 0 || from <= 0 || to <= 0 {
		return in
	}
	n := int(int64(len(in)) * int64(to) / int64(from))
	out := make([]float32, n)
	ratio := float64(from) / float64(to)
	for i := range out {
		pos := float64(i) * ratio
		j := int(pos)
		if j >= len(in)-1 {
			out[i] = in[len(in)-1]
			continue
		}
		frac := float32(pos - float64(j))
		out[i] = in[j]*(1-frac) + in[j+1]*frac
	}
	return out
}
