package medicines

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
	ErrNotFound        = errors.New("medicine not found")
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
	Name      string
	Dosage    string
	Schedule  string
	Stock     int
}

func (s *Service) Create(ctx context.Context, caregiverID string, in CreateInput) (Medicine, error) {
	if strings.TrimSpace(caregiverID) == "" || strings.TrimSpace(in.Name) == "" {
		return Medicine{}, ErrInvalidInput
	}
	if in.Stock < 0 {
		return Medicine{}, ErrInvalidInput
	}
	schedule, err := timeofday.Parse(in.Schedule)
	if err != nil {
		return Medicine{}, ErrInvalidInput
	}
	if err := s.checkPatient(ctx, caregiverID, in.PatientID); err != nil {
		return Medicine{}, err
	}

	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = uuid.NewString()
	}

	now := s.now()
	m := Medicine{
		ID:          id,
		CaregiverID: caregiverID,
		PatientID:   strings.TrimSpace(in.PatientID),
		Name:        strings.TrimSpace(in.Name),
		Dosage:      strings.TrimSpace(in.Dosage),
		Schedule:    schedule,
		Stock:       in.Stock,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, m); err != nil {
		return Medicine{}, err
	}
	return m, nil
}

func (s *Service) Get(ctx context.Context, caregiverID, id string) (Medicine, error) {
	m, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return Medicine{}, err
	}
	if m.CaregiverID != caregiverID {
		return Medicine{}, ErrNotFound
	}
	return m, nil
}

// List devuelve las medicinas del caregiver; patientID opcional.
func (s *Service) List(ctx context.Context, caregiverID, patientID string) ([]Medicine, error) {
	return s.repo.List(ctx, ListFilter{CaregiverID: caregiverID, PatientID: strings.TrimSpace(patientID)})
}

// ListAll lo usa el monitor de alertas (todos los caregivers).
func (s *Service) ListAll(ctx context.Context) ([]Medicine, error) {
	return s.repo.List(ctx, ListFilter{})
}

func (s *Service) Delete(ctx context.Context, caregiverID, id string) error {
	m, err := s.Get(ctx, caregiverID, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, m.ID)
}

// MarkTaken descuenta una dosis; el stock nunca baja de cero.
func (s *Service) MarkTaken(ctx context.Context, caregiverID, id string) (Medicine, error) {
	m, err := s.Get(ctx, caregiverID, id)
	if err != nil {
		return Medicine{}, err
	}
	m.Stock = max(0, m.Stock-1)
	m.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, m); err != nil {
		return Medicine{}, err
	}
	return m, nil
}

func (s *Service) Reschedule(ctx context.Context, caregiverID, id, schedule string) (Medicine, error) {
	hhmm, err := timeofday.Parse(schedule)
	if err != nil {
		return Medicine{}, ErrInvalidInput
	}
	m, err := s.Get(ctx, caregiverID, id)
	if err != nil {
		return Medicine{}, err
	}
	m.Schedule = hhmm
	m.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, m); err != nil {
		return Medicine{}, err
	}
	return m, nil
}

// DeleteByPatient implementa patients.Dependent.
func (s *Service) DeleteByPatient(ctx context.Context, patientID string) error {
	return s.repo.DeleteByPatient(ctx, patientID)
}

func (s *Service) checkPatient(ctx context.Context, caregiverID, patientID string) error {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return ErrInvalidInput
	}
	owner, err := s.patients.CaregiverOf(ctx, patientID)
	if err != nil || owner != caregiverID {
		return ErrPatientNotFound
	}
	return nil
}
