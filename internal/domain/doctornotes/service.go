package doctornotes

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
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

// Create guarda la nota con timestamp del servidor.
func (s *Service) Create(ctx context.Context, caregiverID, patientID, text string) (Note, error) {
	text = strings.TrimSpace(text)
	patientID = strings.TrimSpace(patientID)
	if strings.TrimSpace(caregiverID) == "" || text == "" || patientID == "" {
		return Note{}, ErrInvalidInput
	}
	owner, err := s.patients.CaregiverOf(ctx, patientID)
	if err != nil || owner != caregiverID {
		return Note{}, ErrPatientNotFound
	}

	n := Note{
		ID:          uuid.NewString(),
		CaregiverID: caregiverID,
		PatientID:   patientID,
		Text:        text,
		CreatedAt:   s.now(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return Note{}, err
	}
	return n, nil
}

func (s *Service) List(ctx context.Context, caregiverID, patientID string) ([]Note, error) {
	return s.repo.List(ctx, ListFilter{CaregiverID: caregiverID, PatientID: strings.TrimSpace(patientID)})
}

// DeleteByPatient implementa patients.Dependent.
func (s *Service) DeleteByPatient(ctx context.Context, patientID string) error {
	return s.repo.DeleteByPatient(ctx, patientID)
}
