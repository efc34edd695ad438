package patients

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("patient not found")
	ErrConflict     = errors.New("patient already exists")
)

type Service struct {
	repo       Repository
	dependents []Dependent
	now        func() time.Time
}

func NewService(repo Repository, dependents ...Dependent) *Service {
	return &Service{
		repo:       repo,
		dependents: dependents,
		now:        time.Now,
	}
}

type CreateInput struct {
	// ID opcional: el asistente de voz genera ids propios y los manda acá.
	ID        string
	Name      string
	Age       int
	Condition string
}

func (s *Service) Create(ctx context.Context, caregiverID string, in CreateInput) (Patient, error) {
	if strings.TrimSpace(caregiverID) == "" {
		return Patient{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Name) == "" {
		return Patient{}, ErrInvalidInput
	}
	if in.Age < 0 || in.Age > 150 {
		return Patient{}, ErrInvalidInput
	}

	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = uuid.NewString()
	}

	p := Patient{
		ID:          id,
		CaregiverID: caregiverID,
		Name:        strings.TrimSpace(in.Name),
		Age:         in.Age,
		Condition:   strings.TrimSpace(in.Condition),
		CreatedAt:   s.now(),
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Patient{}, err
	}
	return p, nil
}

// Get devuelve ErrNotFound también si el paciente es de otro caregiver.
func (s *Service) Get(ctx context.Context, caregiverID, id string) (Patient, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Patient{}, ErrNotFound
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Patient{}, err
	}
	if p.CaregiverID != caregiverID {
		return Patient{}, ErrNotFound
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, caregiverID string) ([]Patient, error) {
	return s.repo.ListByCaregiver(ctx, caregiverID)
}

// Delete borra el paciente y todo lo que lo referencia.
func (s *Service) Delete(ctx context.Context, caregiverID, id string) error {
	p, err := s.Get(ctx, caregiverID, id)
	if err != nil {
		return err
	}

	for _, d := range s.dependents {
		if err := d.DeleteByPatient(ctx, p.ID); err != nil {
			return fmt.Errorf("cascade delete: %w", err)
		}
	}
	return s.repo.Delete(ctx, p.ID)
}
