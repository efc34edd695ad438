// Package audio maneja la captura del micrófono y la reproducción sin cortes
// de los chunks de voz que llegan del servicio remoto.
package audio

import (
	"context"
	"errors"
	"time"

	"caregiver-assistant/internal/voice/codec"
)

var (
	// ErrPermissionDenied: el usuario (o el SO) negó el acceso al micrófono.
	ErrPermissionDenied = errors.New("audio: microphone permission denied")
	// ErrNoDevice: no hay dispositivo de captura disponible.
	ErrNoDevice = errors.New("audio: no capture device available")
	// ErrClosed lo devuelven los streams ya cerrados.
	ErrClosed = errors.New("audio: stream closed")
)

type CaptureSpec struct {
	SampleRate int
	FrameSize  int
}

// CaptureStream entrega frames de FrameSize muestras mono en orden de captura.
type CaptureStream interface {
	Read(ctx context.Context) ([]float32, error)
	Close() error
}

// Source es un buffer ya programado en el contexto de reproducción.
type Source interface {
	Stop()
}

// PlaybackContext es el reloj + mezclador de salida.
// CurrentTime es monotónico desde que se abrió el contexto.
type PlaybackContext interface {
	SampleRate() int
	CurrentTime() time.Duration
	// Schedule programa buf para empezar en at. onEnded se llama (una vez)
	// cuando el buffer termina de sonar o se detiene; nunca desde dentro
	// de Schedule.
	Schedule(buf codec.Buffer, at time.Duration, onEnded func()) (Source, error)
	Close() error
}

// Devices abre los recursos de audio del host (navegador vía websocket,
// o dispositivos del SO).
type Devices interface {
	OpenCapture(ctx context.Context, spec CaptureSpec) (CaptureStream, error)
	OpenPlayback(ctx context.Context, sampleRate int) (PlaybackContext, error)
}
