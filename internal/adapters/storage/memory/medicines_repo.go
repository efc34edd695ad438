package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"caregiver-assistant/internal/domain/medicines"
)

type medicineRepo struct {
	mu   sync.RWMutex
	byID map[string]medicines.Medicine
}

func NewMedicineRepo() medicines.Repository {
	return &medicineRepo{
		byID: make(map[string]medicines.Medicine),
	}
}

func (r *medicineRepo) Create(ctx context.Context, m medicines.Medicine) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(m.ID) == "" {
		return errors.New("medicine id required")
	}
	if _, exists := r.byID[m.ID]; exists {
		return errors.New("medicine already exists")
	}
	r.byID[m.ID] = m
	return nil
}

func (r *medicineRepo) Update(ctx context.Context, m medicines.Medicine) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[m.ID]; !exists {
		return medicines.ErrNotFound
	}
	r.byID[m.ID] = m
	return nil
}

func (r *medicineRepo) GetByID(ctx context.Context, id string) (medicines.Medicine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.byID[id]
	if !ok {
		return medicines.Medicine{}, medicines.ErrNotFound
	}
	return m, nil
}

func (r *medicineRepo) List(ctx context.Context, filter medicines.ListFilter) ([]medicines.Medicine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]medicines.Medicine, 0)
	for _, m := range r.byID {
		if filter.CaregiverID != "" && m.CaregiverID != filter.CaregiverID {
			continue
		}
		if filter.PatientID != "" && m.PatientID != filter.PatientID {
			continue
		}
		out = append(out, m)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *medicineRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return medicines.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *medicineRepo) DeleteByPatient(ctx context.Context, patientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, m := range r.byID {
		if m.PatientID == patientID {
			delete(r.byID, id)
		}
	}
	return nil
}
