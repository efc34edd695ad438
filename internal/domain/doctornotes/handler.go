package doctornotes

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
	r.Route("/doctornotes", func(nr chi.Router) {
		nr.Post("/", createNoteHandler(svc))
		nr.Get("/", listNotesHandler(svc))
	})
}

type createNoteRequest struct {
	PatientID string `json:"patientId"`
	Note      string `json:"note"`
}

// NoteResponse lo reutiliza el resumen de paciente.
type NoteResponse struct {
	ID        string    `json:"id"`
	PatientID string    `json:"patientId"`
	Note      string    `json:"note"`
	Timestamp time.Time `json:"timestamp"`
}

func ToNoteResponse(n Note) NoteResponse {
	return NoteResponse{
		ID:        n.ID,
		PatientID: n.PatientID,
		Note:      n.Text,
		Timestamp: n.CreatedAt,
	}
}

// createNoteHandler godoc
// @Summary Crear nota médica
// @Tags doctornotes
// @Accept json
// @Produce json
// @Param body body createNoteRequest true "Nota"
// @Success 201 {object} NoteResponse
// @Failure 400 {string} string
// @Failure 404 {string} string "patient not found"
// @Router /api/doctornotes [post]
func createNoteHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createNoteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		n, err := svc.Create(r.Context(), claims.UserID, req.PatientID, req.Note)
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, ErrPatientNotFound):
				http.Error(w, "patient not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}
		writeJSON(w, http.StatusCreated, ToNoteResponse(n))
	}
}

// listNotesHandler godoc
// @Summary Listar notas (más nuevas primero)
// @Tags doctornotes
// @Produce json
// @Param patientId query string false "Filtrar por paciente"
// @Success 200 {array} NoteResponse
// @Router /api/doctornotes [get]
func listNotesHandler(svc *Service) http.HandlerFunc {
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

		out := make([]NoteResponse, 0, len(items))
		for _, n := range items {
			out = append(out, ToNoteResponse(n))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
