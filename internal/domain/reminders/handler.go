package reminders

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"caregiver-assistant/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/reminders", func(rr chi.Router) {
		rr.Post("/", createReminderHandler(svc))
		rr.Get("/", listRemindersHandler(svc))
		rr.Put("/{reminderID}", updateReminderHandler(svc))
		rr.Delete("/{reminderID}", deleteReminderHandler(svc))

		rr.Post("/{reminderID}/complete", completeReminderHandler(svc))
	})
}

type createReminderRequest struct {
	ID        string `json:"id"`
	PatientID string `json:"patientId"`
	Task      string `json:"task"`
	Time      string `json:"time"` // HH:MM
}

// El front manda el recordatorio entero; solo miramos completed y time.
type updateReminderRequest struct {
	Completed *bool   `json:"completed"`
	Time      *string `json:"time"`
}

type reminderResponse struct {
	ID        string    `json:"id"`
	PatientID string    `json:"patientId"`
	Task      string    `json:"task"`
	Time      string    `json:"time"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// createReminderHandler godoc
// @Summary Crear recordatorio
// @Tags reminders
// @Accept json
// @Produce json
// @Param body body createReminderRequest true "Recordatorio"
// @Success 201 {object} reminderResponse
// @Failure 400 {string} string
// @Failure 404 {string} string "patient not found"
// @Router /api/reminders [post]
func createReminderHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createReminderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		rem, err := svc.Create(r.Context(), claims.UserID, CreateInput{
			ID:        req.ID,
			PatientID: req.PatientID,
			Task:      req.Task,
			Time:      req.Time,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toReminderResponse(rem))
	}
}

// listRemindersHandler godoc
// @Summary Listar recordatorios
// @Tags reminders
// @Produce json
// @Param patientId query string false "Filtrar por paciente"
// @Success 200 {array} reminderResponse
// @Router /api/reminders [get]
func listRemindersHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.List(r.Context(), claims.UserID, r.URL.Query().Get("patientId"))
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]reminderResponse, 0, len(items))
		for _, rem := range items {
			out = append(out, toReminderResponse(rem))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// updateReminderHandler godoc
// @Summary Actualizar recordatorio (completed / time)
// @Tags reminders
// @Accept json
// @Produce json
// @Param reminderID path string true "Reminder ID"
// @Param body body updateReminderRequest true "Campos"
// @Success 200 {object} reminderResponse
// @Router /api/reminders/{reminderID} [put]
func updateReminderHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req updateReminderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		rem, err := svc.Update(r.Context(), claims.UserID, chi.URLParam(r, "reminderID"), UpdateInput{
			Completed: req.Completed,
			Time:      req.Time,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toReminderResponse(rem))
	}
}

// completeReminderHandler godoc
// @Summary Marcar recordatorio como hecho
// @Tags reminders
// @Param reminderID path string true "Reminder ID"
// @Success 200 {object} reminderResponse
// @Router /api/reminders/{reminderID}/complete [post]
func completeReminderHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		rem, err := svc.Complete(r.Context(), claims.UserID, chi.URLParam(r, "reminderID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toReminderResponse(rem))
	}
}

// deleteReminderHandler godoc
// @Summary Borrar recordatorio
// @Tags reminders
// @Param reminderID path string true "Reminder ID"
// @Success 204
// @Router /api/reminders/{reminderID} [delete]
func deleteReminderHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		if err := svc.Delete(r.Context(), claims.UserID, chi.URLParam(r, "reminderID")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "reminder not found", http.StatusNotFound)
	case errors.Is(err, ErrPatientNotFound):
		http.Error(w, "patient not found", http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toReminderResponse(rem Reminder) reminderResponse {
	return reminderResponse{
		ID:        rem.ID,
		PatientID: rem.PatientID,
		Task:      rem.Task,
		Time:      rem.Time,
		Completed: rem.Completed,
		CreatedAt: rem.CreatedAt,
		UpdatedAt: rem.UpdatedAt,
	}
}

// writeJSON duplicado (ver medicines).
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
