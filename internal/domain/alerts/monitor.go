package alerts

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"caregiver-assistant/internal/platform/logger"
	"caregiver-assistant/internal/platform/timeofday"
)

const (
	DefaultPollInterval      = time.Minute
	DefaultLowStockThreshold = 5
)

type MonitorOptions struct {
	Interval          time.Duration
	LowStockThreshold int
	Logger            logger.Logger
	// Now por defecto es time.Now.
	Now func() time.Time
}

// Monitor revisa cada Interval qué dosis y recordatorios vencen en el minuto
// actual y el stock bajo. Cada minuto dispara a lo sumo una vez.
type Monitor struct {
	svc      *Service
	names    PatientNamer
	interval time.Duration
	lowStock int
	log      logger.Logger
	now      func() time.Time

	mu         sync.Mutex
	lastMinute string
}

func NewMonitor(svc *Service, names PatientNamer, opts MonitorOptions) *Monitor {
	if opts.Interval <= 0 {
		opts.Interval = DefaultPollInterval
	}
	if opts.LowStockThreshold <= 0 {
		opts.LowStockThreshold = DefaultLowStockThreshold
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Monitor{
		svc:      svc,
		names:    names,
		interval: opts.Interval,
		lowStock: opts.LowStockThreshold,
		log:      logger.OrNop(opts.Logger),
		now:      opts.Now,
	}
}

// Run bloquea hasta que ctx se cancela.
func (m *Monitor) Run(ctx context.Context) {
	t := time.NewTicker(m.interval)
	defer t.Stop()

	m.log.Info("alert monitor started", map[string]any{"interval": m.interval.String()})
	for {
		select {
		case <-ctx.Done():
			m.log.Info("alert monitor stopped", nil)
			return
		case <-t.C:
			if err := m.Check(ctx); err != nil {
				m.log.Warn("alert check failed", map[string]any{"err": err})
			}
		}
	}
}

// Check hace una pasada. Errores por ítem no cortan la pasada.
func (m *Monitor) Check(ctx context.Context) error {
	now := m.now()
	hhmm := timeofday.Of(now)

	m.mu.Lock()
	minute := now.Format("2006-01-02 15:04")
	fire := minute != m.lastMinute
	m.lastMinute = minute
	m.mu.Unlock()

	var errs []error

	meds, err := m.svc.medicines.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list medicines: %w", err)
	}
	for _, med := range meds {
		if fire && med.Schedule == hhmm {
			_, err := m.svc.Raise(ctx, RaiseInput{
				CaregiverID: med.CaregiverID,
				SourceID:    med.ID,
				SourceKind:  SourceMedicine,
				Title:       TitleUpcomingDose,
				Message:     fmt.Sprintf("%s dose for %s is due now.", med.Name, m.patientName(ctx, med.PatientID)),
				Severity:    SeverityInfo,
			})
			if err != nil {
				errs = append(errs, err)
			}
		}
		if med.Stock < m.lowStock {
			if _, _, err := m.svc.RaiseLowStock(ctx, med); err != nil {
				errs = append(errs, err)
			}
		}
	}

	if !fire {
		return errors.Join(errs...)
	}

	rems, err := m.svc.reminders.ListAll(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("list reminders: %w", err))
		return errors.Join(errs...)
	}
	for _, rem := range rems {
		if rem.Completed || rem.Time != hhmm {
			continue
		}
		_, err := m.svc.Raise(ctx, RaiseInput{
			CaregiverID: rem.CaregiverID,
			SourceID:    rem.ID,
			SourceKind:  SourceReminder,
			Title:       TitleReminder,
			Message:     fmt.Sprintf("%s for %s", rem.Task, m.patientName(ctx, rem.PatientID)),
			Severity:    SeverityInfo,
		})
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if _, err := m.svc.reminders.Complete(ctx, rem.CaregiverID, rem.ID); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (m *Monitor) patientName(ctx context.Context, patientID string) string {
	name, err := m.names.NameOf(ctx, patientID)
	if err != nil || name == "" {
		return "patient"
	}
	return name
}
