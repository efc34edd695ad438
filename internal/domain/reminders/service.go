package reminders

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"caregiver-assistant/internal/platform/timeofday"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotFound        = errors.New("reminder not found")
	ErrPatientNotFound = errors.New("patient not found")
)

type Service struct {
	repo     Repository
	patients PatientLookup
	now      func() time.Time
}

func NewService(repo Repository, patients PatientLookup) *Service {
	return &Service{
		repo:     repo,
		patients: patients,
		now:      time.Now,
	}
}

type CreateInput struct {
	ID        string
	PatientID string
	Task      string
	Time      string
}

func (s *Service) Create(ctx context.Context, caregiverID string, in CreateInput) (Reminder, error) {
	if strings.TrimSpace(caregiverID) == "" || strings.TrimSpace(in.Task) == "" {
		return Reminder{}, ErrInvalidInput
	}
	hhmm, err := timeofday.Parse(in.Time)
	if err != nil {
		return Reminder{}, ErrInvalidInput
	}
	patientID := strings.TrimSpace(in.PatientID)
	if patientID == "" {
		return Reminder{}, ErrInvalidInput
	}
	owner, err := s.patients.CaregiverOf(ctx, patientID)
	if err != nil || owner != caregiverID {
		return Reminder{}, ErrPatientNotFound
	}

	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = uuid.NewString()
	}

	now := s.now()
	rem := Reminder{
		ID:          id,
		CaregiverID: caregiverID,
		PatientID:   patientID,
		Task:        strings.TrimSpace(in.Task),
		Time:        hhmm,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, rem); err != nil {
		return Reminder{}, err
	}
	return rem, nil
}

func (s *Service) Get(ctx context.Context, caregiverID, id string) (Reminder, error) {
	rem, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return Reminder{}, err
	}
	if rem.CaregiverID != caregiverID {
		return Reminder{}, ErrNotFound
	}
	return rem, nil
}

func (s *Service) List(ctx context.Context, caregiverID, patientID string) ([]Reminder, error) {
	return s.repo.List(ctx, ListFilter{CaregiverID: caregiverID, PatientID: strings.TrimSpace(patientID)})
}

// ListAll lo usa el monitor de alertas.
func (s *Service) ListAll(ctx context.Context) ([]Reminder, error) {
	return s.repo.List(ctx, ListFilter{})
}

// UpdateInput: nil = no tocar.
type UpdateInput struct {
	Completed *bool
	Time      *string
}

func (s *Service) Update(ctx context.Context, caregiverID, id string, in UpdateInput) (Reminder, error) {
	rem, err := s.Get(ctx, caregiverID, id)
	if err != nil {
		return Reminder{}, err
	}

	if in.Time != nil {
		hhmm, err := timeofday.Parse(*in.Time)
		if err != nil {
			return Reminder{}, ErrInvalidInput
		}
		rem.Time = hhmm
	}
	if in.Completed != nil {
		rem.Completed = *in.Completed
	}

	rem.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, rem); err != nil {
		return Reminder{}, err
	}
	return rem, nil
}

func (s *Service) Complete(ctx context.Context, caregiverID, id string) (Reminder, error) {
	done := true
	return s.Update(ctx, caregiverID, id, UpdateInput{Completed: &done})
}

// Reschedule mueve la hora y vuelve a dejar el recordatorio pendiente.
func (s *Service) Reschedule(ctx context.Context, caregiverID, id, at string) (Reminder, error) {
	pending := false
	return s.Update(ctx, caregiverID, id, UpdateInput{Completed: &pending, Time: &at})
}

func (s *Service) Delete(ctx context.Context, caregiverID, id string) error {
	rem, err := s.Get(ctx, caregiverID, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, rem.ID)
}

// DeleteByPatient implementa patients.Dependent.
func (s *Service) DeleteByPatient(ctx context.Context, patientID string) error {
	return s.repo.DeleteByPatient(ctx, patientID)
}
