// Package restapi habla con la API de registros (patients/medicines/reminders)
// desde el cliente de terminal: carga el roster al iniciar y persiste los
// comandos del asistente.
package restapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"caregiver-assistant/internal/platform/httpclient"
	"caregiver-assistant/internal/voice/tools"
)

var ErrUnknownCommand = errors.New("restapi: unknown command")

type Config struct {
	BaseURL string
	// CaregiverID va en X-Debug-User-ID cuando no hay token.
	CaregiverID string
	BearerToken string
	Timeout     time.Duration
}

type Store struct {
	http *httpclient.Client
}

var _ tools.Persister = (*Store)(nil)

func New(cfg Config) (*Store, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("restapi: base url required")
	}
	hc, err := httpclient.NewWithBaseURL(strings.TrimSpace(cfg.BaseURL), cfg.Timeout)
	if err != nil {
		return nil, err
	}
	hc.Retries = 2

	if tok := strings.TrimSpace(cfg.BearerToken); tok != "" {
		hc.SetHeader("Authorization", "Bearer "+tok)
	} else {
		hc.SetHeader("X-Debug-User-ID", strings.TrimSpace(cfg.CaregiverID))
	}

	return &Store{http: hc}, nil
}

// LoadState arma el roster inicial de la sesión.
func (s *Store) LoadState(ctx context.Context) (*tools.State, error) {
	var (
		patients  []tools.Patient
		medicines []tools.Medicine
		reminders []tools.Reminder
	)
	if err := s.get(ctx, "/api/patients", &patients); err != nil {
		return nil, fmt.Errorf("load patients: %w", err)
	}
	if err := s.get(ctx, "/api/medicines", &medicines); err != nil {
		return nil, fmt.Errorf("load medicines: %w", err)
	}
	if err := s.get(ctx, "/api/reminders", &reminders); err != nil {
		return nil, fmt.Errorf("load reminders: %w", err)
	}
	return tools.NewState(patients, medicines, reminders), nil
}

func (s *Store) Persist(ctx context.Context, cmd tools.Command) error {
	switch {
	case cmd.Kind == tools.CommandCreatePatient && cmd.Patient != nil:
		return s.post(ctx, "/api/patients", cmd.Patient)
	case cmd.Kind == tools.CommandCreateMedicine && cmd.Medicine != nil:
		return s.post(ctx, "/api/medicines", cmd.Medicine)
	case cmd.Kind == tools.CommandCreateReminder && cmd.Reminder != nil:
		return s.post(ctx, "/api/reminders", reminderBody{
			ID:        cmd.Reminder.ID,
			PatientID: cmd.Reminder.PatientID,
			Task:      cmd.Reminder.Task,
			Time:      cmd.Reminder.Time,
		})
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCommand, cmd.Kind)
	}
}

type reminderBody struct {
	ID        string `json:"id"`
	PatientID string `json:"patientId"`
	Task      string `json:"task"`
	Time      string `json:"time"`
}

func (s *Store) get(ctx context.Context, path string, out any) error {
	return s.http.DoJSON(ctx, http.MethodGet, path, nil, nil, out)
}

func (s *Store) post(ctx context.Context, path string, body any) error {
	return s.http.DoJSON(ctx, http.MethodPost, path, nil, body, nil)
}
