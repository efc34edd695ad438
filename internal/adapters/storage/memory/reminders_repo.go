package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"caregiver-assistant/internal/domain/reminders"
)

type reminderRepo struct {
	mu   sync.RWMutex
	byID map[string]reminders.Reminder
}

func NewReminderRepo() reminders.Repository {
	return &reminderRepo{
		byID: make(map[string]reminders.Reminder),
	}
}

func (r *reminderRepo) Create(ctx context.Context, rem reminders.Reminder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(rem.ID) == "" {
		return errors.New("reminder id required")
	}
	if _, exists := r.byID[rem.ID]; exists {
		return errors.New("reminder already exists")
	}
	r.byID[rem.ID] = rem
	return nil
}

func (r *reminderRepo) Update(ctx context.Context, rem reminders.Reminder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[rem.ID]; !exists {
		return reminders.ErrNotFound
	}
	r.byID[rem.ID] = rem
	return nil
}

func (r *reminderRepo) GetByID(ctx context.Context, id string) (reminders.Reminder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rem, ok := r.byID[id]
	if !ok {
		return reminders.Reminder{}, reminders.ErrNotFound
	}
	return rem, nil
}

func (r *reminderRepo) List(ctx context.Context, filter reminders.ListFilter) ([]reminders.Reminder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]reminders.Reminder, 0)
	for _, rem := range r.byID {
		if filter.CaregiverID != "" && rem.CaregiverID != filter.CaregiverID {
			continue
		}
		if filter.PatientID != "" && rem.PatientID != filter.PatientID {
			continue
		}
		out = append(out, rem)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *reminderRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return reminders.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *reminderRepo) DeleteByPatient(ctx context.Context, patientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, rem := range r.byID {
		if rem.PatientID == patientID {
			delete(r.byID, id)
		}
	}
	return nil
}
