// Package wsaudio expone micrófono y parlante del navegador como
// audio.Devices sobre un websocket. Los frames de texto son JSON {type,...};
// los binarios traen muestras float32LE mono del micrófono.
package wsaudio

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"math"
)

// cliente -> servidor
const (
	TypeSessionStart = "session.start"
	TypeSessionStop  = "session.stop"
	TypeMicReady     = "mic.ready"
	TypeMicDenied    = "mic.denied"
)

// servidor -> cliente
const (
	TypeMicOpen     = "mic.open"
	TypeMicClose    = "mic.close"
	TypeSpeakerOpen = "speaker.open"
	TypeAudioPlay   = "audio.play"
	TypeAudioStop   = "audio.stop"
	TypeState       = "state"
	TypeTranscript  = "transcript"
	TypeTool        = "tool"
	TypeError       = "error"
)

// Razones de mic.denied (nombres de DOMException del navegador).
const (
	ReasonNotAllowed = "NotAllowedError"
	ReasonNotFound   = "NotFoundError"
)

// ClientMessage es cualquier frame de texto del cliente.
type ClientMessage struct {
	Type       string `json:"type"`
	Language   string `json:"language,omitempty"`
	SampleRate int    `json:"sample_rate,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

type micOpen struct {
	Type       string `json:"type"`
	SampleRate int    `json:"sample_rate"`
	FrameSize  int    `json:"frame_size"`
}

type speakerOpen struct {
	Type       string `json:"type"`
	SampleRate int    `json:"sample_rate"`
}

type audioPlay struct {
	Type       string `json:"type"`
	ID         uint64 `json:"id"`
	StartMS    int64  `json:"start_ms"`
	SampleRate int    `json:"sample_rate"`
	Samples    string `json:"samples"` // base64 float32LE
}

type audioStop struct {
	Type string   `json:"type"`
	IDs  []uint64 `json:"ids"`
}

type simple struct {
	Type string `json:"type"`
}

var errBadSamples = errors.New("wsaudio: binary frame is not float32LE")

func encodeSamples(samples []float32) string {
	b := make([]byte, 4*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint32(b[4*i:], math.Float32bits(s))
	}
	return base64.StdEncoding.EncodeToString(b)
}

func decodeSamples(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, errBadSamples
	}
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return out, nil
}
