package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const (
	DefaultTTSVoice = "Kore"

	ttsPrompt = `Convert this text to speech using a warm, professional caregiver tone.
Read the text exactly as written. If it contains Hindi, Tamil, Kannada, or Malayalam, use flawless native pronunciation.
Do NOT translate. Just read the following text:

"%s"`

	askInstruction = "You are Zaathi, a highly professional caregiver companion. You provide medical advice with extreme caution. " +
		"Always advise consulting a doctor for critical issues. Be empathetic and clear. Context: %s"

	askFallback = "I'm sorry, I couldn't process that."
)

// Speak devuelve PCM16LE mono a 24 kHz.
func (c *Client) Speak(ctx context.Context, text, voice string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("gemini: empty text")
	}
	if voice == "" {
		voice = DefaultTTSVoice
	}
	gc, err := c.sdk(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := gc.Models.GenerateContent(ctx, c.cfg.TTSModel,
		[]*genai.Content{genai.NewContentFromText(fmt.Sprintf(ttsPrompt, text), genai.RoleUser)},
		&genai.GenerateContentConfig{
			ResponseModalities: []string{string(genai.ModalityAudio)},
			SpeechConfig: &genai.SpeechConfig{
				VoiceConfig: &genai.VoiceConfig{
					PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: voice},
				},
			},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("gemini: tts: %w", err)
	}

	pcm := firstAudio(resp)
	if len(pcm) == 0 {
		return nil, errEmptyResponse
	}
	return pcm, nil
}

// Ask responde una pregunta libre con el contexto del roster.
func (c *Client) Ask(ctx context.Context, prompt, roster string) (string, error) {
	gc, err := c.sdk(ctx)
	if err != nil {
		return "", err
	}

	resp, err := gc.Models.GenerateContent(ctx, c.cfg.TextModel, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(fmt.Sprintf(askInstruction, roster), genai.RoleUser),
		ThinkingConfig:    &genai.ThinkingConfig{ThinkingBudget: genai.Ptr[int32](0)},
	})
	if err != nil {
		return "", fmt.Errorf("gemini: ask: %w", err)
	}

	if text := strings.TrimSpace(resp.Text()); text != "" {
		return text, nil
	}
	return askFallback, nil
}

func firstAudio(resp *genai.GenerateContentResponse) []byte {
	if resp == nil {
		return nil
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, p := range cand.Content.Parts {
			if p != nil && p.InlineData != nil && len(p.InlineData.Data) > 0 {
				return p.InlineData.Data
			}
		}
	}
	return nil
}
