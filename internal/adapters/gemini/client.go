// Package gemini implementa la sesión en vivo, TTS y preguntas de texto
// sobre google.golang.org/genai.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"

	"caregiver-assistant/internal/platform/logger"
	"caregiver-assistant/internal/voice/live"
)

type Config struct {
	APIKey    string
	LiveModel string
	TTSModel  string
	TextModel string
	Logger    logger.Logger
}

// Client comparte un único *genai.Client entre live, TTS y ask.
// Se crea perezosamente para que la falta de API key no rompa el arranque.
type Client struct {
	cfg Config
	log logger.Logger

	once   sync.Once
	client *genai.Client
	err    error
}

func New(cfg Config) *Client {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	return &Client{cfg: cfg, log: logger.OrNop(cfg.Logger)}
}

// Ready implementa live.Dialer.
func (c *Client) Ready() error {
	if c == nil || c.cfg.APIKey == "" {
		return live.ErrMissingCredential
	}
	return nil
}

func (c *Client) sdk(ctx context.Context) (*genai.Client, error) {
	if err := c.Ready(); err != nil {
		return nil, err
	}
	c.once.Do(func() {
		c.client, c.err = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  c.cfg.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if c.err != nil {
			c.err = fmt.Errorf("gemini: new client: %w", c.err)
		}
	})
	return c.client, c.err
}

var errEmptyResponse = errors.New("gemini: empty response")
