// Package live orquesta una sesión de voz bidireccional: micrófono hacia el
// servicio remoto, y transcripciones, audio y function calls de vuelta.
package live

import (
	"context"
	"errors"

	"caregiver-assistant/internal/voice/tools"
)

var (
	ErrMissingCredential = errors.New("live: missing API credential")
	ErrAlreadyActive     = errors.New("live: session already active")

	// ErrMicrophoneClosed: la captura terminó sola (p.ej. el navegador cortó
	// el track) y la sesión se cierra.
	ErrMicrophoneClosed = errors.New("live: microphone closed")
)

type Kind int

const (
	KindInputTranscript Kind = iota + 1
	KindOutputTranscript
	KindTurnComplete
	KindAudio
	KindToolCall
	KindInterrupted
)

func (k Kind) String() string {
	switch k {
	case KindInputTranscript:
		return "input_transcript"
	case KindOutputTranscript:
		return "output_transcript"
	case KindTurnComplete:
		return "turn_complete"
	case KindAudio:
		return "audio"
	case KindToolCall:
		return "tool_call"
	case KindInterrupted:
		return "interrupted"
	default:
		return "unknown"
	}
}

// Message es un evento entrante ya normalizado. Sólo el campo que
// corresponde a Kind viene poblado.
type Message struct {
	Kind  Kind
	Text  string
	Audio []byte
	Calls []tools.Call
}

type FunctionResponse struct {
	ID       string
	Name     string
	Response map[string]any
}

// Setup es la configuración con la que se abre la conexión remota.
type Setup struct {
	SystemPrompt string
	Tools        []tools.Declaration
	Voice        string
	Language     tools.Language
}

// Conn es una conexión abierta con el servicio remoto.
// Receive devuelve los mensajes de un evento del proveedor en el orden en que
// vienen; io.EOF cuando el remoto cierra.
type Conn interface {
	SendAudio(ctx context.Context, pcm []byte) error
	SendToolResponses(ctx context.Context, responses []FunctionResponse) error
	Receive(ctx context.Context) ([]Message, error)
	Close() error
}

type Dialer interface {
	// Ready devuelve ErrMissingCredential si no hay API key configurada.
	Ready() error
	Dial(ctx context.Context, setup Setup) (Conn, error)
}

// ToolHandler ejecuta una function call. *tools.Dispatcher lo implementa.
type ToolHandler interface {
	Dispatch(ctx context.Context, call tools.Call) tools.Result
}
