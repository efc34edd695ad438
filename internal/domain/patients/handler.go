package patients

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"caregiver-assistant/internal/domain/doctornotes"
	"caregiver-assistant/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, notesSvc *doctornotes.Service) {
	r.Route("/patients", func(pr chi.Router) {
		pr.Post("/", createPatientHandler(svc))
		pr.Get("/", listPatientsHandler(svc))
		pr.Get("/{patientID}", getPatientHandler(svc))
		pr.Delete("/{patientID}", deletePatientHandler(svc))

		// Resumen para imprimir / compartir con el médico
		pr.Get("/{patientID}/summary", patientSummaryHandler(svc, notesSvc))
	})
}

type createPatientRequest struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Age       int    `json:"age"`
	Condition string `json:"condition"`
}

type patientResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Age       int       `json:"age"`
	Condition string    `json:"condition"`
	CreatedAt time.Time `json:"createdAt"`
}

type summaryResponse struct {
	Patient     patientResponse            `json:"patient"`
	Notes       []doctornotes.NoteResponse `json:"notes"`
	GeneratedAt time.Time                  `json:"generatedAt"`
}

func createPatientHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createPatientRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := svc.Create(r.Context(), claims.UserID, CreateInput{
			ID:        req.ID,
			Name:      req.Name,
			Age:       req.Age,
			Condition: req.Condition,
		})
		if err != nil {
			if errors.Is(err, ErrConflict) {
				http.Error(w, err.Error(), http.StatusConflict)
				return
			}
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusCreated, toPatientResponse(p))
	}
}

func listPatientsHandler(svc *Service) http.HandlerFunc {
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

		out := make([]patientResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toPatientResponse(p))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getPatientHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		p, err := svc.Get(r.Context(), claims.UserID, chi.URLParam(r, "patientID"))
		if err != nil {
			http.Error(w, "patient not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toPatientResponse(p))
	}
}

// deletePatientHandler borra en cascada medicinas, recordatorios y notas.
func deletePatientHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		if err := svc.Delete(r.Context(), claims.UserID, chi.URLParam(r, "patientID")); err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, "patient not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func patientSummaryHandler(svc *Service, notesSvc *doctornotes.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		p, err := svc.Get(r.Context(), claims.UserID, chi.URLParam(r, "patientID"))
		if err != nil {
			http.Error(w, "patient not found", http.StatusNotFound)
			return
		}

		notes, err := notesSvc.List(r.Context(), claims.UserID, p.ID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := summaryResponse{
			Patient:     toPatientResponse(p),
			Notes:       make([]doctornotes.NoteResponse, 0, len(notes)),
			GeneratedAt: svc.now(),
		}
		for _, n := range notes {
			out.Notes = append(out.Notes, doctornotes.ToNoteResponse(n))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func toPatientResponse(p Patient) patientResponse {
	return patientResponse{
		ID:        p.ID,
		Name:      p.Name,
		Age:       p.Age,
		Condition: p.Condition,
		CreatedAt: p.CreatedAt,
	}
}

// writeJSON está duplicado a propósito en cada módulo para no acoplar paquetes.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
