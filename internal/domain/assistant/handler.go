package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"caregiver-assistant/internal/adapters/wsaudio"
	"caregiver-assistant/internal/middleware"
	"caregiver-assistant/internal/platform/logger"
	"caregiver-assistant/internal/ports/capabilities"
	"caregiver-assistant/internal/voice/codec"
	"caregiver-assistant/internal/voice/live"
)

type Speaker interface {
	Speak(ctx context.Context, text, voice string) ([]byte, error)
}

type Asker interface {
	Ask(ctx context.Context, prompt, roster string) (string, error)
}

type Deps struct {
	Records Records
	Dialer  live.Dialer
	Speaker Speaker
	Asker   Asker

	// Capabilities nil => todos tienen el asistente de voz.
	Capabilities   capabilities.CapabilitiesResolver
	Recorder       Recorder
	Logger         logger.Logger
	AllowedOrigins []string
}

func RegisterRoutes(r chi.Router, deps Deps) {
	deps.Logger = logger.OrNop(deps.Logger)
	if deps.Recorder == nil {
		deps.Recorder = nopRecorder{}
	}

	r.Route("/assistant", func(ar chi.Router) {
		ar.Get("/live", liveHandler(deps))
		ar.Post("/speak", speakHandler(deps))
		ar.Post("/ask", askHandler(deps))
	})
}

type speakRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
}

type askRequest struct {
	Prompt string `json:"prompt"`
}

type askResponse struct {
	Answer string `json:"answer"`
}

// liveHandler godoc
// @Summary Sesión de voz en vivo (websocket)
// @Tags assistant
// @Param access_token query string false "Token (el navegador no manda headers en websockets)"
// @Success 101
// @Failure 401 {string} string
// @Failure 403 {string} string "feature not enabled"
// @Router /api/assistant/live [get]
func liveHandler(deps Deps) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  32 << 10,
		WriteBufferSize: 64 << 10,
		CheckOrigin:     originChecker(deps.AllowedOrigins),
	}

	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		if deps.Capabilities != nil {
			allowed, err := deps.Capabilities.HasFeature(r.Context(), capabilities.CapabilityCheck{
				UserID:  claims.UserID,
				Feature: capabilities.FeatureAssistantVoice,
			})
			if err != nil {
				deps.Logger.Warn("capability check failed", map[string]any{"user_id": claims.UserID, "err": err})
				http.Error(w, "capabilities unavailable", http.StatusBadGateway)
				return
			}
			if !allowed {
				http.Error(w, "feature not enabled", http.StatusForbidden)
				return
			}
		}

		state, err := deps.Records.LoadState(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade ya respondió.
			return
		}

		log := deps.Logger.With(map[string]any{"caregiver_id": claims.UserID})
		sess := &liveSession{
			peer:      wsaudio.NewPeer(ws, wsaudio.Options{Logger: log}),
			dialer:    deps.Dialer,
			state:     state,
			persister: deps.Records.Persister(claims.UserID),
			recorder:  deps.Recorder,
			log:       log,
		}
		if err := sess.serve(r.Context()); err != nil {
			log.Warn("live websocket closed", map[string]any{"err": err})
		}
	}
}

// speakHandler godoc
// @Summary Leer un texto en voz alta
// @Tags assistant
// @Accept json
// @Produce audio/wav
// @Param body body speakRequest true "Texto y voz"
// @Success 200 {file} binary
// @Failure 503 {string} string "assistant not configured"
// @Router /api/assistant/speak [post]
func speakHandler(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req speakRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.Text) == "" {
			http.Error(w, "text is required", http.StatusBadRequest)
			return
		}
		if deps.Speaker == nil {
			http.Error(w, "assistant not configured", http.StatusServiceUnavailable)
			return
		}

		pcm, err := deps.Speaker.Speak(r.Context(), req.Text, req.Voice)
		if err != nil {
			writeError(w, deps.Logger, err)
			return
		}

		w.Header().Set("Content-Type", "audio/wav")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(codec.WAV(pcm, codec.PlaybackSampleRate, 1))
	}
}

// askHandler godoc
// @Summary Pregunta libre sobre los pacientes
// @Tags assistant
// @Accept json
// @Produce json
// @Param body body askRequest true "Pregunta"
// @Success 200 {object} askResponse
// @Router /api/assistant/ask [post]
func askHandler(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req askRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.Prompt) == "" {
			http.Error(w, "prompt is required", http.StatusBadRequest)
			return
		}
		if deps.Asker == nil {
			http.Error(w, "assistant not configured", http.StatusServiceUnavailable)
			return
		}

		roster, err := deps.Records.Roster(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		answer, err := deps.Asker.Ask(r.Context(), req.Prompt, roster)
		if err != nil {
			writeError(w, deps.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, askResponse{Answer: answer})
	}
}

func writeError(w http.ResponseWriter, log logger.Logger, err error) {
	if errors.Is(err, live.ErrMissingCredential) {
		http.Error(w, "assistant not configured", http.StatusServiceUnavailable)
		return
	}
	log.Error("assistant upstream failed", map[string]any{"err": err})
	http.Error(w, "assistant unavailable", http.StatusBadGateway)
}

// originChecker: sin lista permite todo (dev); "*" también.
func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o != "" {
			set[o] = struct{}{}
		}
	}
	return func(r *http.Request) bool {
		if len(set) == 0 {
			return true
		}
		if _, ok := set["*"]; ok {
			return true
		}
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[strings.TrimRight(origin, "/")]
		return ok
	}
}

// writeJSON está duplicado a propósito en cada módulo (patients/medicines/...)
// para no crear un paquete de helpers compartidos todavía.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
