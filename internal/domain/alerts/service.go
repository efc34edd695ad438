package alerts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"caregiver-assistant/internal/domain/medicines"
	"caregiver-assistant/internal/domain/reminders"
	"caregiver-assistant/internal/platform/timeofday"
)

var (
	ErrNotFound     = errors.New("alert not found")
	ErrInvalidInput = errors.New("invalid input")
	// ErrNoSource: la alerta no apunta a una medicina ni a un recordatorio.
	ErrNoSource = errors.New("alert has no source")
)

const (
	SnoozeDelay = 5 * time.Minute

	lowStockMarker = "stock is low"
)

type Service struct {
	repo      Repository
	medicines *medicines.Service
	reminders *reminders.Service
	recorder  Recorder
	now       func() time.Time
}

// NewService: recorder puede ser nil.
func NewService(repo Repository, meds *medicines.Service, rems *reminders.Service, recorder Recorder) *Service {
	return &Service{
		repo:      repo,
		medicines: meds,
		reminders: rems,
		recorder:  recorder,
		now:       time.Now,
	}
}

// RaiseInput: SourceID/SourceKind opcionales.
type RaiseInput struct {
	CaregiverID string
	SourceID    string
	SourceKind  SourceKind
	Title       string
	Message     string
	Severity    Severity
}

func (s *Service) Raise(ctx context.Context, in RaiseInput) (Alert, error) {
	if strings.TrimSpace(in.CaregiverID) == "" || strings.TrimSpace(in.Message) == "" {
		return Alert{}, ErrInvalidInput
	}
	sev := in.Severity
	if sev == "" {
		sev = SeverityInfo
	}

	a := Alert{
		ID:          uuid.NewString(),
		CaregiverID: in.CaregiverID,
		SourceID:    in.SourceID,
		SourceKind:  in.SourceKind,
		Title:       in.Title,
		Message:     in.Message,
		Severity:    sev,
		CreatedAt:   s.now(),
	}
	if err := s.repo.Add(ctx, a); err != nil {
		return Alert{}, err
	}
	if s.recorder != nil {
		s.recorder.RecordAlert(string(sev))
	}
	return a, nil
}

// RaiseLowStock levanta la alerta crítica de stock bajo solo si no hay otra
// igual para esa medicina en el feed. raised=false si se suprimió.
func (s *Service) RaiseLowStock(ctx context.Context, m medicines.Medicine) (a Alert, raised bool, err error) {
	active, err := s.repo.ListByCaregiver(ctx, m.CaregiverID)
	if err != nil {
		return Alert{}, false, err
	}
	for _, existing := range active {
		if existing.SourceID == m.ID &&
			existing.Severity == SeverityCritical &&
			strings.Contains(existing.Message, lowStockMarker) {
			return existing, false, nil
		}
	}

	a, err = s.Raise(ctx, RaiseInput{
		CaregiverID: m.CaregiverID,
		SourceID:    m.ID,
		SourceKind:  SourceMedicine,
		Title:       TitleCritical,
		Message:     fmt.Sprintf("%s %s (%d).", m.Name, lowStockMarker, m.Stock),
		Severity:    SeverityCritical,
	})
	if err != nil {
		return Alert{}, false, err
	}
	return a, true, nil
}

func (s *Service) List(ctx context.Context, caregiverID string) ([]Alert, error) {
	return s.repo.ListByCaregiver(ctx, caregiverID)
}

func (s *Service) Get(ctx context.Context, caregiverID, id string) (Alert, error) {
	a, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return Alert{}, err
	}
	if a.CaregiverID != caregiverID {
		return Alert{}, ErrNotFound
	}
	return a, nil
}

func (s *Service) Dismiss(ctx context.Context, caregiverID, id string) error {
	a, err := s.Get(ctx, caregiverID, id)
	if err != nil {
		return err
	}
	return s.repo.Remove(ctx, a.ID)
}

// Taken: medicina -> stock-1 (piso 0); recordatorio -> completed.
func (s *Service) Taken(ctx context.Context, caregiverID, id string) error {
	a, err := s.Get(ctx, caregiverID, id)
	if err != nil {
		return err
	}

	switch a.SourceKind {
	case SourceMedicine:
		_, err = s.medicines.MarkTaken(ctx, caregiverID, a.SourceID)
	case SourceReminder:
		_, err = s.reminders.Complete(ctx, caregiverID, a.SourceID)
	default:
		return ErrNoSource
	}
	if err != nil {
		return err
	}
	return s.repo.Remove(ctx, a.ID)
}

// Snooze crea un recordatorio nuevo a now+5m para el mismo paciente.
func (s *Service) Snooze(ctx context.Context, caregiverID, id string) (reminders.Reminder, error) {
	a, err := s.Get(ctx, caregiverID, id)
	if err != nil {
		return reminders.Reminder{}, err
	}

	at := timeofday.Of(s.now().Add(SnoozeDelay))

	var in reminders.CreateInput
	switch a.SourceKind {
	case SourceMedicine:
		m, err := s.medicines.Get(ctx, caregiverID, a.SourceID)
		if err != nil {
			return reminders.Reminder{}, err
		}
		in = reminders.CreateInput{PatientID: m.PatientID, Task: "SNOOZE: " + m.Name + " dose", Time: at}
	case SourceReminder:
		rem, err := s.reminders.Get(ctx, caregiverID, a.SourceID)
		if err != nil {
			return reminders.Reminder{}, err
		}
		in = reminders.CreateInput{PatientID: rem.PatientID, Task: "SNOOZE: " + rem.Task, Time: at}
	default:
		return reminders.Reminder{}, ErrNoSource
	}

	rem, err := s.reminders.Create(ctx, caregiverID, in)
	if err != nil {
		return reminders.Reminder{}, err
	}
	if err := s.repo.Remove(ctx, a.ID); err != nil {
		return reminders.Reminder{}, err
	}
	return rem, nil
}

// Reschedule cambia el horario de la medicina o la hora del recordatorio.
func (s *Service) Reschedule(ctx context.Context, caregiverID, id, at string) error {
	a, err := s.Get(ctx, caregiverID, id)
	if err != nil {
		return err
	}

	switch a.SourceKind {
	case SourceMedicine:
		_, err = s.medicines.Reschedule(ctx, caregiverID, a.SourceID, at)
	case SourceReminder:
		_, err = s.reminders.Reschedule(ctx, caregiverID, a.SourceID, at)
	default:
		return ErrNoSource
	}
	if err != nil {
		return err
	}
	return s.repo.Remove(ctx, a.ID)
}
