package memory

import (
	"context"
	"errors"
	"sync"

	"caregiver-assistant/internal/domain/alerts"
)

// alertFeed guarda las alertas en orden de llegada. No se persisten:
// no hay adapter Postgres para este repo.
type alertFeed struct {
	mu    sync.RWMutex
	items []alerts.Alert
}

func NewAlertFeed() alerts.Repository {
	return &alertFeed{}
}

func (f *alertFeed) Add(ctx context.Context, a alerts.Alert) error {
	if a.ID == "" {
		return errors.New("alert id required")
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	f.items = append(f.items, a)
	return nil
}

func (f *alertFeed) GetByID(ctx context.Context, id string) (alerts.Alert, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for _, a := range f.items {
		if a.ID == id {
			return a, nil
		}
	}
	return alerts.Alert{}, alerts.ErrNotFound
}

func (f *alertFeed) ListByCaregiver(ctx context.Context, caregiverID string) ([]alerts.Alert, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]alerts.Alert, 0)
	for i := len(f.items) - 1; i >= 0; i-- {
		if f.items[i].CaregiverID == caregiverID {
			out = append(out, f.items[i])
		}
	}
	return out, nil
}

func (f *alertFeed) Remove(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, a := range f.items {
		if a.ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return alerts.ErrNotFound
}
