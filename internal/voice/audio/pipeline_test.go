package audio

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caregiver-assistant/internal/voice/codec"
)

// bytes de PCM16 mono a 24 kHz
func pcmFor(d time.Duration) []byte {
	frames := int(d * codec.PlaybackSampleRate / time.Second)
	return make([]byte, 2*frames)
}

func openPipeline(t *testing.T, devs *fakeDevices) *Pipeline {
	t.Helper()
	p, err := Open(context.Background(), devs, Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func TestOpen_PermissionDeniedSurfaces(t *testing.T) {
	devs := newFakeDevices()
	devs.captureErr = ErrPermissionDenied

	_, err := Open(context.Background(), devs, Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestOpen_ReleasesCaptureWhenPlaybackFails(t *testing.T) {
	devs := newFakeDevices()
	devs.playErr = errors.New("no output")

	_, err := Open(context.Background(), devs, Options{})
	require.Error(t, err)
	assert.True(t, devs.capture.closed)
}

func TestRun_SendsEncodedFramesInCaptureOrder(t *testing.T) {
	devs := newFakeDevices()
	p := openPipeline(t, devs)

	devs.capture.frames <- []float32{0.5}
	devs.capture.frames <- []float32{-0.5}
	devs.capture.frames <- []float32{0.25}

	var mu sync.Mutex
	var got [][]byte
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- p.Run(ctx, func(_ context.Context, pcm []byte) error {
			mu.Lock()
			got = append(got, pcm)
			n := len(got)
			mu.Unlock()
			if n == 3 {
				cancel()
			}
			return nil
		})
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("capture pump did not stop")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 3)
	assert.Equal(t, codec.EncodeFrame([]float32{0.5}), got[0])
	assert.Equal(t, codec.EncodeFrame([]float32{-0.5}), got[1])
	assert.Equal(t, codec.EncodeFrame([]float32{0.25}), got[2])
}

func TestRun_PropagatesSendError(t *testing.T) {
	devs := newFakeDevices()
	p := openPipeline(t, devs)
	devs.capture.frames <- []float32{0.1}

	boom := errors.New("socket closed")
	err := p.Run(context.Background(), func(context.Context, []byte) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestPlay_OutOfOrderDecodeKeepsArrivalOrder(t *testing.T) {
	devs := newFakeDevices()
	p := openPipeline(t, devs)

	first := pcmFor(time.Second)
	second := pcmFor(500 * time.Millisecond)
	gates := map[int]chan struct{}{
		len(first):  make(chan struct{}),
		len(second): make(chan struct{}),
	}
	p.decode = func(pcm []byte, rate, ch int) (codec.Buffer, error) {
		<-gates[len(pcm)]
		return codec.DecodeFrame(pcm, rate, ch)
	}

	p.Play(first)
	p.Play(second)

	// el segundo termina de decodificar antes
	close(gates[len(second)])
	require.Eventually(t, func() bool { return len(devs.playback.snapshot()) == 1 }, time.Second, time.Millisecond)
	close(gates[len(first)])
	p.decodes.Wait()

	items := devs.playback.snapshot()
	require.Len(t, items, 2)

	// items[0] es el segundo chunk (se programó primero)
	assert.Equal(t, time.Second, items[0].at)
	assert.Equal(t, time.Duration(0), items[1].at)
	assert.LessOrEqual(t, items[1].at+items[1].dur, items[0].at)
}

func TestPlay_ShuffledDecodesStayContiguousInArrivalOrder(t *testing.T) {
	devs := newFakeDevices()
	p := openPipeline(t, devs)

	// cada chunk dura distinto para poder reconocerlo en lo programado
	const n = 16
	unit := 10 * time.Millisecond
	gates := make(map[int]chan struct{}, n)
	chunks := make([][]byte, n)
	for i := range chunks {
		chunks[i] = pcmFor(time.Duration(i+1) * unit)
		gates[len(chunks[i])] = make(chan struct{})
	}
	p.decode = func(pcm []byte, rate, ch int) (codec.Buffer, error) {
		<-gates[len(pcm)]
		return codec.DecodeFrame(pcm, rate, ch)
	}

	for _, c := range chunks {
		p.Play(c)
	}

	order := rand.New(rand.NewSource(42)).Perm(n)
	for released, idx := range order {
		close(gates[len(chunks[idx])])
		want := released + 1
		require.Eventually(t, func() bool { return len(devs.playback.snapshot()) == want }, time.Second, time.Millisecond)
	}
	p.decodes.Wait()

	got := devs.playback.snapshot()
	require.Len(t, got, n)

	items := make([]scheduled, n)
	for _, it := range got {
		i := int(it.dur/unit) - 1
		require.True(t, i >= 0 && i < n, "unexpected duration %v", it.dur)
		items[i] = it
	}

	assert.Equal(t, time.Duration(0), items[0].at)
	for i := 0; i+1 < n; i++ {
		assert.LessOrEqual(t, items[i].at+items[i].dur, items[i+1].at, "chunk %d overlaps chunk %d", i, i+1)
	}
}

func TestPlay_StartsAtClockWhenCursorBehind(t *testing.T) {
	devs := newFakeDevices()
	p := openPipeline(t, devs)

	p.Play(pcmFor(100 * time.Millisecond))
	devs.playback.advance(5 * time.Second)
	p.Play(pcmFor(100 * time.Millisecond))
	p.decodes.Wait()

	items := devs.playback.snapshot()
	require.Len(t, items, 2)
	ats := []time.Duration{items[0].at, items[1].at}
	assert.ElementsMatch(t, []time.Duration{0, 5 * time.Second}, ats)
}

func TestInterrupt_StopsSourcesAndResetsCursor(t *testing.T) {
	devs := newFakeDevices()
	p := openPipeline(t, devs)

	p.Play(pcmFor(time.Second))
	p.Play(pcmFor(time.Second))
	p.decodes.Wait()
	require.Equal(t, 2, p.Active())

	devs.playback.advance(300 * time.Millisecond)
	p.Interrupt()

	assert.Equal(t, 0, p.Active())
	for _, it := range devs.playback.snapshot() {
		assert.True(t, it.stopped)
	}

	p.Play(pcmFor(time.Second))
	p.decodes.Wait()
	items := devs.playback.snapshot()
	require.Len(t, items, 3)
	assert.GreaterOrEqual(t, items[2].at, 300*time.Millisecond)
	assert.Less(t, items[2].at, 2*time.Second)
}

func TestInterrupt_DropsInFlightDecodes(t *testing.T) {
	devs := newFakeDevices()
	p := openPipeline(t, devs)

	gate := make(chan struct{})
	p.decode = func(pcm []byte, rate, ch int) (codec.Buffer, error) {
		<-gate
		return codec.DecodeFrame(pcm, rate, ch)
	}

	p.Play(pcmFor(time.Second))
	p.Interrupt()
	close(gate)
	p.decodes.Wait()

	assert.Empty(t, devs.playback.snapshot())
}

func TestClose_IdempotentAndJoinsErrors(t *testing.T) {
	devs := newFakeDevices()
	devs.playback.closeErr = errors.New("device busy")

	p, err := Open(context.Background(), devs, Options{})
	require.NoError(t, err)

	p.Play(pcmFor(time.Second))
	p.decodes.Wait()

	err = p.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "device busy")
	assert.True(t, devs.capture.closed)
	assert.True(t, devs.playback.closed)
	assert.Equal(t, 0, p.Active())

	assert.Equal(t, err, p.Close())

	// después de Close, Play no programa nada
	p.Play(pcmFor(time.Second))
	assert.Len(t, devs.playback.snapshot(), 1)
}
