// Package codec convierte muestras float del dispositivo de audio al formato
// PCM16 little-endian mono que acepta el servicio remoto, y viceversa.
package codec

import (
	"encoding/binary"
	"errors"
	"math"
	"time"
)

const (
	CaptureSampleRate  = 16000
	PlaybackSampleRate = 24000
	FrameSize          = 2048

	// CaptureMIME es el MIME con el que se etiquetan los frames capturados.
	CaptureMIME = "audio/pcm;rate=16000"
)

var ErrInvalidPCM = errors.New("codec: pcm length is not a whole number of frames")

// Buffer es audio decodificado, un slice de muestras por canal.
type Buffer struct {
	SampleRate int
	Channels   int
	Data       [][]float32
}

func (b Buffer) Frames() int {
	if len(b.Data) == 0 {
		return 0
	}
	return len(b.Data[0])
}

func (b Buffer) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(b.Frames()) * time.Second / time.Duration(b.SampleRate)
}

// EncodeFrame escala cada muestra por 32768 y la trunca a int16.
// Los valores fuera de [-1, 1] se saturan al rango de int16.
func EncodeFrame(samples []float32) []byte {
	out := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(toInt16(s)))
	}
	return out
}

func toInt16(s float32) int16 {
	v := float64(s) * 32768
	switch {
	case math.IsNaN(v):
		return 0
	case v >= math.MaxInt16:
		return math.MaxInt16
	case v <= math.MinInt16:
		return math.MinInt16
	}
	return int16(v)
}

// DecodeFrame interpreta pcm como int16 LE intercalado y devuelve floats
// en [-1, 1) separados por canal.
func DecodeFrame(pcm []byte, sampleRate, channels int) (Buffer, error) {
	if channels <= 0 {
		channels = 1
	}
	if len(pcm)%(2*channels) != 0 {
		return Buffer{}, ErrInvalidPCM
	}

	frames := len(pcm) / (2 * channels)
	data := make([][]float32, channels)
	for ch := range data {
		data[ch] = make([]float32, frames)
	}

	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			off := 2 * (i*channels + ch)
			v := int16(binary.LittleEndian.Uint16(pcm[off:]))
			data[ch][i] = float32(v) / 32768
		}
	}

	return Buffer{SampleRate: sampleRate, Channels: channels, Data: data}, nil
}

// DurationOf calcula la duración de un chunk PCM16 sin decodificarlo.
func DurationOf(byteLen, sampleRate, channels int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	if channels <= 0 {
		channels = 1
	}
	frames := byteLen / (2 * channels)
	return time.Duration(frames) * time.Second / time.Duration(sampleRate)
}
