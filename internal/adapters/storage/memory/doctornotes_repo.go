package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"caregiver-assistant/internal/domain/doctornotes"
)

type noteRepo struct {
	mu   sync.RWMutex
	byID map[string]doctornotes.Note
}

func NewDoctorNoteRepo() doctornotes.Repository {
	return &noteRepo{
		byID: make(map[string]doctornotes.Note),
	}
}

func (r *noteRepo) Create(ctx context.Context, n doctornotes.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n.ID == "" {
		return errors.New("note id required")
	}
	if _, exists := r.byID[n.ID]; exists {
		return errors.New("note already exists")
	}
	r.byID[n.ID] = n
	return nil
}

func (r *noteRepo) List(ctx context.Context, filter doctornotes.ListFilter) ([]doctornotes.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]doctornotes.Note, 0)
	for _, n := range r.byID {
		if filter.CaregiverID != "" && n.CaregiverID != filter.CaregiverID {
			continue
		}
		if filter.PatientID != "" && n.PatientID != filter.PatientID {
			continue
		}
		out = append(out, n)
	}

	// Más nuevas primero
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *noteRepo) DeleteByPatient(ctx context.Context, patientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, n := range r.byID {
		if n.PatientID == patientID {
			delete(r.byID, id)
		}
	}
	return nil
}
