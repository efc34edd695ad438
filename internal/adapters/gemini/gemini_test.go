package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"caregiver-assistant/internal/voice/live"
	"caregiver-assistant/internal/voice/tools"
)

func TestReady_MissingKey(t *testing.T) {
	c := New(Config{APIKey: "  "})
	require.ErrorIs(t, c.Ready(), live.ErrMissingCredential)

	_, err := c.Dial(context.Background(), live.Setup{})
	require.True(t, errors.Is(err, live.ErrMissingCredential))

	_, err = c.Speak(context.Background(), "hello", "")
	require.ErrorIs(t, err, live.ErrMissingCredential)
}

func TestToMessages_Order(t *testing.T) {
	msg := &genai.LiveServerMessage{
		ToolCall: &genai.LiveServerToolCall{
			FunctionCalls: []*genai.FunctionCall{
				{ID: "c1", Name: tools.NameAddPatient, Args: map[string]any{"name": "Mary"}},
			},
		},
		ServerContent: &genai.LiveServerContent{
			ModelTurn: &genai.Content{Parts: []*genai.Part{
				{InlineData: &genai.Blob{Data: []byte{1, 0}, MIMEType: "audio/pcm;rate=24000"}},
			}},
			InputTranscription:  &genai.Transcription{Text: "add Mary"},
			OutputTranscription: &genai.Transcription{Text: "Done."},
			TurnComplete:        true,
			Interrupted:         true,
		},
	}

	out := toMessages(msg)
	kinds := make([]live.Kind, 0, len(out))
	for _, m := range out {
		kinds = append(kinds, m.Kind)
	}
	assert.Equal(t, []live.Kind{
		live.KindToolCall,
		live.KindAudio,
		live.KindInputTranscript,
		live.KindOutputTranscript,
		live.KindTurnComplete,
		live.KindInterrupted,
	}, kinds)

	require.Len(t, out[0].Calls, 1)
	assert.Equal(t, "c1", out[0].Calls[0].ID)
	assert.Equal(t, "Mary", out[0].Calls[0].Args["name"])
	assert.Equal(t, []byte{1, 0}, out[1].Audio)
}

func TestToMessages_IgnoresEmpty(t *testing.T) {
	assert.Empty(t, toMessages(nil))
	assert.Empty(t, toMessages(&genai.LiveServerMessage{SetupComplete: &genai.LiveServerSetupComplete{}}))
	assert.Empty(t, toMessages(&genai.LiveServerMessage{ServerContent: &genai.LiveServerContent{
		InputTranscription: &genai.Transcription{},
	}}))
}

func TestConnectConfig(t *testing.T) {
	cfg := connectConfig(live.Setup{
		SystemPrompt: "be kind",
		Tools:        tools.Declarations(),
		Voice:        "Puck",
	})

	assert.Equal(t, []genai.Modality{genai.ModalityAudio}, cfg.ResponseModalities)
	require.NotNil(t, cfg.InputAudioTranscription)
	require.NotNil(t, cfg.OutputAudioTranscription)
	assert.Equal(t, "Puck", cfg.SpeechConfig.VoiceConfig.PrebuiltVoiceConfig.VoiceName)

	require.Len(t, cfg.Tools, 1)
	decls := cfg.Tools[0].FunctionDeclarations
	require.Len(t, decls, 4)

	var addMedicine *genai.FunctionDeclaration
	for _, d := range decls {
		if d.Name == tools.NameAddMedicine {
			addMedicine = d
		}
	}
	require.NotNil(t, addMedicine)
	assert.Equal(t, genai.TypeObject, addMedicine.Parameters.Type)
	assert.Equal(t, genai.TypeNumber, addMedicine.Parameters.Properties["stock"].Type)
	assert.Equal(t, genai.TypeString, addMedicine.Parameters.Properties["schedule"].Type)
	assert.Contains(t, addMedicine.Parameters.Required, "patientName")
}

func TestFirstAudio(t *testing.T) {
	resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
		{Content: &genai.Content{Parts: []*genai.Part{{Text: "hi"}, {InlineData: &genai.Blob{Data: []byte{9}}}}}},
	}}
	assert.Equal(t, []byte{9}, firstAudio(resp))
	assert.Nil(t, firstAudio(&genai.GenerateContentResponse{}))
}
