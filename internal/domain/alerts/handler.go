package alerts

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"caregiver-assistant/internal/domain/medicines"
	"caregiver-assistant/internal/domain/reminders"
	"caregiver-assistant/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/alerts", func(ar chi.Router) {
		ar.Get("/", listAlertsHandler(svc))
		ar.Delete("/{alertID}", dismissAlertHandler(svc))

		// Acciones: todas sacan la alerta del feed
		ar.Post("/{alertID}/taken", takenHandler(svc))
		ar.Post("/{alertID}/snooze", snoozeHandler(svc))
		ar.Post("/{alertID}/reschedule", rescheduleAlertHandler(svc))
	})
}

type alertResponse struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Message    string     `json:"message"`
	Type       Severity   `json:"type"`
	SourceID   string     `json:"sourceId,omitempty"`
	SourceType SourceKind `json:"sourceType,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
}

type rescheduleAlertRequest struct {
	Time string `json:"time"`
}

type snoozeResponse struct {
	ReminderID string `json:"reminderId"`
	Task       string `json:"task"`
	Time       string `json:"time"`
}

// listAlertsHandler godoc
// @Summary Alertas activas (más nuevas primero)
// @Tags alerts
// @Produce json
// @Success 200 {array} alertResponse
// @Router /api/alerts [get]
func listAlertsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.List(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]alertResponse, 0, len(items))
		for _, a := range items {
			out = append(out, toAlertResponse(a))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func dismissAlertHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		if err := svc.Dismiss(r.Context(), claims.UserID, chi.URLParam(r, "alertID")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// takenHandler godoc
// @Summary Marcar como tomada / hecha
// @Tags alerts
// @Param alertID path string true "Alert ID"
// @Success 204
// @Router /api/alerts/{alertID}/taken [post]
func takenHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		if err := svc.Taken(r.Context(), claims.UserID, chi.URLParam(r, "alertID")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// snoozeHandler godoc
// @Summary Posponer 5 minutos (crea un recordatorio nuevo)
// @Tags alerts
// @Produce json
// @Param alertID path string true "Alert ID"
// @Success 201 {object} snoozeResponse
// @Router /api/alerts/{alertID}/snooze [post]
func snoozeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		rem, err := svc.Snooze(r.Context(), claims.UserID, chi.URLParam(r, "alertID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, snoozeResponse{ReminderID: rem.ID, Task: rem.Task, Time: rem.Time})
	}
}

// rescheduleAlertHandler godoc
// @Summary Reprogramar la fuente de la alerta
// @Tags alerts
// @Accept json
// @Param alertID path string true "Alert ID"
// @Param body body rescheduleAlertRequest true "Nueva hora HH:MM"
// @Success 204
// @Router /api/alerts/{alertID}/reschedule [post]
func rescheduleAlertHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req rescheduleAlertRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		if err := svc.Reschedule(r.Context(), claims.UserID, chi.URLParam(r, "alertID"), req.Time); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, "alert not found", http.StatusNotFound)
	case errors.Is(err, ErrNoSource):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, medicines.ErrInvalidInput), errors.Is(err, reminders.ErrInvalidInput):
		http.Error(w, "time must be HH:MM", http.StatusBadRequest)
	case errors.Is(err, medicines.ErrNotFound), errors.Is(err, reminders.ErrNotFound),
		errors.Is(err, reminders.ErrPatientNotFound):
		// la fuente se borró después de disparar la alerta
		http.Error(w, "source not found", http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toAlertResponse(a Alert) alertResponse {
	return alertResponse{
		ID:         a.ID,
		Title:      a.Title,
		Message:    a.Message,
		Type:       a.Severity,
		SourceID:   a.SourceID,
		SourceType: a.SourceKind,
		Timestamp:  a.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
