package medicines

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
	r.Route("/medicines", func(mr chi.Router) {
		mr.Post("/", createMedicineHandler(svc))
		mr.Get("/", listMedicinesHandler(svc))
		mr.Delete("/{medicineID}", deleteMedicineHandler(svc))

		mr.Post("/{medicineID}/taken", markTakenHandler(svc))
		mr.Patch("/{medicineID}/schedule", rescheduleHandler(svc))
	})
}

type createMedicineRequest struct {
	ID        string `json:"id"`
	PatientID string `json:"patientId"`
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Schedule  string `json:"schedule"` // HH:MM
	Stock     int    `json:"stock"`
}

type rescheduleRequest struct {
	Schedule string `json:"schedule"`
}

type medicineResponse struct {
	ID        string    `json:"id"`
	PatientID string    `json:"patientId"`
	Name      string    `json:"name"`
	Dosage    string    `json:"dosage"`
	Schedule  string    `json:"schedule"`
	Stock     int       `json:"stock"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// createMedicineHandler godoc
// @Summary Crear medicina
// @Tags medicines
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Caregiver (modo dev)"
// @Param body body createMedicineRequest true "Medicina"
// @Success 201 {object} medicineResponse
// @Failure 400 {string} string
// @Failure 404 {string} string "patient not found"
// @Router /api/medicines [post]
func createMedicineHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createMedicineRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		m, err := svc.Create(r.Context(), claims.UserID, CreateInput{
			ID:        req.ID,
			PatientID: req.PatientID,
			Name:      req.Name,
			Dosage:    req.Dosage,
			Schedule:  req.Schedule,
			Stock:     req.Stock,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toMedicineResponse(m))
	}
}

// listMedicinesHandler godoc
// @Summary Listar medicinas
// @Tags medicines
// @Produce json
// @Param patientId query string false "Filtrar por paciente"
// @Success 200 {array} medicineResponse
// @Router /api/medicines [get]
func listMedicinesHandler(svc *Service) http.HandlerFunc {
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

		out := make([]medicineResponse, 0, len(items))
		for _, m := range items {
			out = append(out, toMedicineResponse(m))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// deleteMedicineHandler godoc
// @Summary Borrar medicina
// @Tags medicines
// @Param medicineID path string true "Medicine ID"
// @Success 204
// @Router /api/medicines/{medicineID} [delete]
func deleteMedicineHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		if err := svc.Delete(r.Context(), claims.UserID, chi.URLParam(r, "medicineID")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// markTakenHandler godoc
// @Summary Marcar dosis tomada (stock - 1, mínimo 0)
// @Tags medicines
// @Param medicineID path string true "Medicine ID"
// @Success 200 {object} medicineResponse
// @Router /api/medicines/{medicineID}/taken [post]
func markTakenHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		m, err := svc.MarkTaken(r.Context(), claims.UserID, chi.URLParam(r, "medicineID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toMedicineResponse(m))
	}
}

// rescheduleHandler godoc
// @Summary Cambiar horario
// @Tags medicines
// @Param medicineID path string true "Medicine ID"
// @Param body body rescheduleRequest true "Nuevo horario HH:MM"
// @Success 200 {object} medicineResponse
// @Router /api/medicines/{medicineID}/schedule [patch]
func rescheduleHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req rescheduleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		m, err := svc.Reschedule(r.Context(), claims.UserID, chi.URLParam(r, "medicineID"), req.Schedule)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toMedicineResponse(m))
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "medicine not found", http.StatusNotFound)
	case errors.Is(err, ErrPatientNotFound):
		http.Error(w, "patient not found", http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toMedicineResponse(m Medicine) medicineResponse {
	return medicineResponse{
		ID:        m.ID,
		PatientID: m.PatientID,
		Name:      m.Name,
		Dosage:    m.Dosage,
		Schedule:  m.Schedule,
		Stock:     m.Stock,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// writeJSON está duplicado a propósito en cada módulo (patients/medicines/...)
// para no crear un paquete de helpers compartidos todavía.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
