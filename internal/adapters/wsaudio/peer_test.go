package wsaudio

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caregiver-assistant/internal/voice/audio"
	"caregiver-assistant/internal/voice/codec"
)

type harness struct {
	peer    *Peer
	client  *websocket.Conn
	control chan ClientMessage
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	peers := make(chan *Peer, 1)
	control := make(chan ClientMessage, 8)
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		p := NewPeer(ws, Options{PingInterval: time.Second})
		peers <- p
		_ = p.Serve(r.Context(), func(m ClientMessage) { control <- m })
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	select {
	case p := <-peers:
		return &harness{peer: p, client: client, control: control}
	case <-time.After(2 * time.Second):
		t.Fatal("peer not created")
		return nil
	}
}

func (h *harness) next(t *testing.T) map[string]any {
	t.Helper()
	require.NoError(t, h.client.SetReadDeadline(time.Now().Add(2*time.Second)))
	mt, data, err := h.client.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, websocket.TextMessage, mt)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

func floatFrame(n int, v float32) []byte {
	b := make([]byte, 4*n)
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint32(b[4*i:], math.Float32bits(v))
	}
	return b
}

func TestOpenCapture_ReadyAndRechunk(t *testing.T) {
	h := newHarness(t)

	type result struct {
		s   audio.CaptureStream
		err error
	}
	done := make(chan result, 1)
	go func() {
		s, err := h.peer.OpenCapture(context.Background(), audio.CaptureSpec{SampleRate: 16000, FrameSize: 4})
		done <- result{s, err}
	}()

	open := h.next(t)
	assert.Equal(t, TypeMicOpen, open["type"])
	assert.EqualValues(t, 16000, open["sample_rate"])
	assert.EqualValues(t, 4, open["frame_size"])

	require.NoError(t, h.client.WriteJSON(ClientMessage{Type: TypeMicReady}))
	res := <-done
	require.NoError(t, res.err)

	// 6 + 2 muestras -> dos frames de 4
	require.NoError(t, h.client.WriteMessage(websocket.BinaryMessage, floatFrame(6, 0.5)))
	require.NoError(t, h.client.WriteMessage(websocket.BinaryMessage, floatFrame(2, 0.25)))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	f1, err := res.s.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.5, 0.5, 0.5}, f1)

	f2, err := res.s.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.5, 0.25, 0.25}, f2)

	require.NoError(t, res.s.Close())
	assert.Equal(t, TypeMicClose, h.next(t)["type"])

	_, err = res.s.Read(ctx)
	assert.ErrorIs(t, err, audio.ErrClosed)
}

func TestOpenCapture_Denied(t *testing.T) {
	cases := map[string]error{
		ReasonNotAllowed: audio.ErrPermissionDenied,
		ReasonNotFound:   audio.ErrNoDevice,
	}
	for reason, want := range cases {
		t.Run(reason, func(t *testing.T) {
			h := newHarness(t)

			done := make(chan error, 1)
			go func() {
				_, err := h.peer.OpenCapture(context.Background(), audio.CaptureSpec{})
				done <- err
			}()

			open := h.next(t)
			assert.EqualValues(t, codec.CaptureSampleRate, open["sample_rate"])
			assert.EqualValues(t, codec.FrameSize, open["frame_size"])

			require.NoError(t, h.client.WriteJSON(ClientMessage{Type: TypeMicDenied, Reason: reason}))
			assert.ErrorIs(t, <-done, want)

			// se puede volver a intentar
			go func() {
				_, err := h.peer.OpenCapture(context.Background(), audio.CaptureSpec{})
				done <- err
			}()
			assert.Equal(t, TypeMicOpen, h.next(t)["type"])
		})
	}
}

func TestControlMessagesForwarded(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.client.WriteJSON(ClientMessage{Type: TypeSessionStart, Language: "es"}))

	select {
	case m := <-h.control:
		assert.Equal(t, TypeSessionStart, m.Type)
		assert.Equal(t, "es", m.Language)
	case <-time.After(2 * time.Second):
		t.Fatal("control message not forwarded")
	}
}

func TestPlayback_ScheduleAndStop(t *testing.T) {
	h := newHarness(t)

	base := time.Unix(1000, 0)
	var offset atomic.Int64
	h.peer.now = func() time.Time { return base.Add(time.Duration(offset.Load())) }

	pc, err := h.peer.OpenPlayback(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, codec.PlaybackSampleRate, pc.SampleRate())

	open := h.next(t)
	assert.Equal(t, TypeSpeakerOpen, open["type"])
	assert.EqualValues(t, codec.PlaybackSampleRate, open["sample_rate"])

	offset.Store(int64(150 * time.Millisecond))
	assert.Equal(t, 150*time.Millisecond, pc.CurrentTime())

	// un segundo de audio: no termina solo durante el test
	buf := codec.Buffer{SampleRate: 24000, Channels: 1, Data: [][]float32{make([]float32, 24000)}}
	buf.Data[0][0] = 1

	var ended atomic.Int32
	src, err := pc.Schedule(buf, 200*time.Millisecond, func() { ended.Add(1) })
	require.NoError(t, err)

	play := h.next(t)
	assert.Equal(t, TypeAudioPlay, play["type"])
	assert.EqualValues(t, 1, play["id"])
	assert.EqualValues(t, 200, play["start_ms"])
	assert.EqualValues(t, 24000, play["sample_rate"])

	raw, err := base64.StdEncoding.DecodeString(play["samples"].(string))
	require.NoError(t, err)
	require.Len(t, raw, 4*24000)
	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(raw)))

	src.Stop()
	src.Stop()

	stop := h.next(t)
	assert.Equal(t, TypeAudioStop, stop["type"])
	assert.Equal(t, []any{float64(1)}, stop["ids"])
	assert.EqualValues(t, 1, ended.Load())
}

func TestPlayback_EndedFiresAfterDuration(t *testing.T) {
	h := newHarness(t)

	pc, err := h.peer.OpenPlayback(context.Background(), 24000)
	require.NoError(t, err)
	_ = h.next(t)

	ended := make(chan struct{})
	buf := codec.Buffer{SampleRate: 24000, Channels: 1, Data: [][]float32{make([]float32, 240)}}
	_, err = pc.Schedule(buf, 0, func() { close(ended) })
	require.NoError(t, err)

	select {
	case <-ended:
	case <-time.After(2 * time.Second):
		t.Fatal("onEnded not called")
	}
}

func TestPlayback_ScheduleAfterClose(t *testing.T) {
	h := newHarness(t)

	pc, err := h.peer.OpenPlayback(context.Background(), 24000)
	require.NoError(t, err)
	require.NoError(t, pc.Close())

	_, err = pc.Schedule(codec.Buffer{SampleRate: 24000, Channels: 1, Data: [][]float32{{0}}}, 0, nil)
	assert.ErrorIs(t, err, audio.ErrClosed)
}

func TestDecodeSamples_Invalid(t *testing.T) {
	_, err := decodeSamples([]byte{1, 2, 3})
	assert.ErrorIs(t, err, errBadSamples)
}
