package gemini

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/gorilla/websocket"
	"google.golang.org/genai"

	"caregiver-assistant/internal/voice/codec"
	"caregiver-assistant/internal/voice/live"
	"caregiver-assistant/internal/voice/tools"
)

// Dial implementa live.Dialer.
func (c *Client) Dial(ctx context.Context, setup live.Setup) (live.Conn, error) {
	gc, err := c.sdk(ctx)
	if err != nil {
		return nil, err
	}

	sess, err := gc.Live.Connect(ctx, c.cfg.LiveModel, connectConfig(setup))
	if err != nil {
		return nil, fmt.Errorf("gemini: live connect: %w", err)
	}
	c.log.Debug("gemini live connected", map[string]any{"model": c.cfg.LiveModel, "voice": setup.Voice})
	return &conn{sess: sess}, nil
}

func connectConfig(setup live.Setup) *genai.LiveConnectConfig {
	cfg := &genai.LiveConnectConfig{
		ResponseModalities:       []genai.Modality{genai.ModalityAudio},
		InputAudioTranscription:  &genai.AudioTranscriptionConfig{},
		OutputAudioTranscription: &genai.AudioTranscriptionConfig{},
	}
	if setup.SystemPrompt != "" {
		cfg.SystemInstruction = genai.NewContentFromText(setup.SystemPrompt, genai.RoleUser)
	}
	if len(setup.Tools) > 0 {
		cfg.Tools = []*genai.Tool{toTool(setup.Tools)}
	}
	if setup.Voice != "" {
		cfg.SpeechConfig = &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: setup.Voice},
			},
		}
	}
	return cfg
}

// conn serializa los envíos: el pump de micrófono y el loop de tool calls
// comparten el mismo socket.
type conn struct {
	sess *genai.Session

	writeMu sync.Mutex
}

func (c *conn) SendAudio(ctx context.Context, pcm []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	return c.sess.SendRealtimeInput(genai.LiveRealtimeInput{
		Audio: &genai.Blob{Data: pcm, MIMEType: codec.CaptureMIME},
	})
}

func (c *conn) SendToolResponses(ctx context.Context, responses []live.FunctionResponse) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	out := make([]*genai.FunctionResponse, 0, len(responses))
	for _, r := range responses {
		out = append(out, &genai.FunctionResponse{ID: r.ID, Name: r.Name, Response: r.Response})
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.sess.SendToolResponse(genai.LiveToolResponseInput{FunctionResponses: out})
}

// Receive bloquea hasta el próximo mensaje del servidor. El SDK no recibe
// ctx: Close es lo que lo desbloquea.
func (c *conn) Receive(ctx context.Context) ([]live.Message, error) {
	for {
		msg, err := c.sess.Receive()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil, io.EOF
			}
			return nil, err
		}
		if out := toMessages(msg); len(out) > 0 {
			return out, nil
		}
		// setupComplete, usage, etc.: no le interesan al controller
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
}

func (c *conn) Close() error {
	return c.sess.Close()
}

// toMessages normaliza un LiveServerMessage en el orden en que lo procesa
// la app: tool calls, audio, transcripciones, fin de turno, interrupción.
func toMessages(msg *genai.LiveServerMessage) []live.Message {
	if msg == nil {
		return nil
	}
	var out []live.Message

	if msg.ToolCall != nil && len(msg.ToolCall.FunctionCalls) > 0 {
		calls := make([]tools.Call, 0, len(msg.ToolCall.FunctionCalls))
		for _, fc := range msg.ToolCall.FunctionCalls {
			if fc == nil {
				continue
			}
			calls = append(calls, tools.Call{ID: fc.ID, Name: fc.Name, Args: fc.Args})
		}
		out = append(out, live.Message{Kind: live.KindToolCall, Calls: calls})
	}

	sc := msg.ServerContent
	if sc == nil {
		return out
	}

	if sc.ModelTurn != nil {
		for _, p := range sc.ModelTurn.Parts {
			if p != nil && p.InlineData != nil && len(p.InlineData.Data) > 0 {
				out = append(out, live.Message{Kind: live.KindAudio, Audio: p.InlineData.Data})
			}
		}
	}
	if sc.InputTranscription != nil && sc.InputTranscription.Text != "" {
		out = append(out, live.Message{Kind: live.KindInputTranscript, Text: sc.InputTranscription.Text})
	}
	if sc.OutputTranscription != nil && sc.OutputTranscription.Text != "" {
		out = append(out, live.Message{Kind: live.KindOutputTranscript, Text: sc.OutputTranscription.Text})
	}
	if sc.TurnComplete {
		out = append(out, live.Message{Kind: live.KindTurnComplete})
	}
	if sc.Interrupted {
		out = append(out, live.Message{Kind: live.KindInterrupted})
	}
	return out
}
