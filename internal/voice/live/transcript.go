package live

import (
	"strings"
	"sync"
)

const MaxTurns = 10

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Transcript acumula fragmentos del turno en curso y guarda los últimos
// MaxTurns turnos completos.
type Transcript struct {
	mu     sync.Mutex
	input  strings.Builder
	output strings.Builder
	turns  []Turn
}

func (t *Transcript) AppendInput(s string) {
	t.mu.Lock()
	t.input.WriteString(s)
	t.mu.Unlock()
}

func (t *Transcript) AppendOutput(s string) {
	t.mu.Lock()
	t.output.WriteString(s)
	t.mu.Unlock()
}

// Complete cierra el turno: agrega user y/o assistant si no están vacíos y
// limpia los acumuladores. Devuelve true si agregó algo.
func (t *Transcript) Complete() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	in := strings.TrimSpace(t.input.String())
	out := strings.TrimSpace(t.output.String())
	t.input.Reset()
	t.output.Reset()

	added := false
	if in != "" {
		t.turns = append(t.turns, Turn{Role: RoleUser, Text: in})
		added = true
	}
	if out != "" {
		t.turns = append(t.turns, Turn{Role: RoleAssistant, Text: out})
		added = true
	}
	if n := len(t.turns); n > MaxTurns {
		t.turns = append([]Turn(nil), t.turns[n-MaxTurns:]...)
	}
	return added
}

func (t *Transcript) Turns() []Turn {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Turn(nil), t.turns...)
}

func (t *Transcript) Reset() {
	t.mu.Lock()
	t.input.Reset()
	t.output.Reset()
	t.turns = nil
	t.mu.Unlock()
}
