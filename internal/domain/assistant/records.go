// Package assistant expone el asistente de voz (websocket), la lectura en
// voz alta y las preguntas libres sobre el roster del caregiver.
package assistant

import (
	"context"
	"fmt"
	"strings"

	"caregiver-assistant/internal/domain/medicines"
	"caregiver-assistant/internal/domain/patients"
	"caregiver-assistant/internal/domain/reminders"
	"caregiver-assistant/internal/voice/tools"
)

// Records junta los services del store en proceso. Reemplaza al REST
// store cuando el asistente corre dentro de la API.
type Records struct {
	Patients  *patients.Service
	Medicines *medicines.Service
	Reminders *reminders.Service
}

// LoadState arma el roster de una sesión nueva.
func (r Records) LoadState(ctx context.Context, caregiverID string) (*tools.State, error) {
	ps, err := r.Patients.List(ctx, caregiverID)
	if err != nil {
		return nil, fmt.Errorf("load patients: %w", err)
	}
	ms, err := r.Medicines.List(ctx, caregiverID, "")
	if err != nil {
		return nil, fmt.Errorf("load medicines: %w", err)
	}
	rs, err := r.Reminders.List(ctx, caregiverID, "")
	if err != nil {
		return nil, fmt.Errorf("load reminders: %w", err)
	}

	tp := make([]tools.Patient, 0, len(ps))
	for _, p := range ps {
		tp = append(tp, tools.Patient{ID: p.ID, Name: p.Name, Age: p.Age, Condition: p.Condition})
	}
	tm := make([]tools.Medicine, 0, len(ms))
	for _, m := range ms {
		tm = append(tm, tools.Medicine{
			ID:        m.ID,
			PatientID: m.PatientID,
			Name:      m.Name,
			Dosage:    m.Dosage,
			Schedule:  m.Schedule,
			Stock:     m.Stock,
		})
	}
	tr := make([]tools.Reminder, 0, len(rs))
	for _, rem := range rs {
		tr = append(tr, tools.Reminder{
			ID:        rem.ID,
			PatientID: rem.PatientID,
			Task:      rem.Task,
			Time:      rem.Time,
			Completed: rem.Completed,
		})
	}
	return tools.NewState(tp, tm, tr), nil
}

// Persister guarda los comandos del dispatcher a nombre de caregiverID,
// conservando los ids que generó la sesión.
func (r Records) Persister(caregiverID string) tools.Persister {
	return tools.PersisterFunc(func(ctx context.Context, cmd tools.Command) error {
		switch {
		case cmd.Kind == tools.CommandCreatePatient && cmd.Patient != nil:
			_, err := r.Patients.Create(ctx, caregiverID, patients.CreateInput{
				ID:        cmd.Patient.ID,
				Name:      cmd.Patient.Name,
				Age:       cmd.Patient.Age,
				Condition: cmd.Patient.Condition,
			})
			return err
		case cmd.Kind == tools.CommandCreateMedicine && cmd.Medicine != nil:
			_, err := r.Medicines.Create(ctx, caregiverID, medicines.CreateInput{
				ID:        cmd.Medicine.ID,
				PatientID: cmd.Medicine.PatientID,
				Name:      cmd.Medicine.Name,
				Dosage:    cmd.Medicine.Dosage,
				Schedule:  cmd.Medicine.Schedule,
				Stock:     cmd.Medicine.Stock,
			})
			return err
		case cmd.Kind == tools.CommandCreateReminder && cmd.Reminder != nil:
			_, err := r.Reminders.Create(ctx, caregiverID, reminders.CreateInput{
				ID:        cmd.Reminder.ID,
				PatientID: cmd.Reminder.PatientID,
				Task:      cmd.Reminder.Task,
				Time:      cmd.Reminder.Time,
			})
			return err
		default:
			return fmt.Errorf("unknown command %q", cmd.Kind)
		}
	})
}

// Roster es el contexto en texto que acompaña a /assistant/ask.
func (r Records) Roster(ctx context.Context, caregiverID string) (string, error) {
	st, err := r.LoadState(ctx, caregiverID)
	if err != nil {
		return "", err
	}
	return FormatRoster(st), nil
}

func FormatRoster(st *tools.State) string {
	patients := st.Patients()
	if len(patients) == 0 {
		return "No patients registered."
	}

	meds := st.Medicines()
	rems := st.Reminders()

	var b strings.Builder
	for _, p := range patients {
		fmt.Fprintf(&b, "- %s (age %d", p.Name, p.Age)
		if p.Condition != "" {
			fmt.Fprintf(&b, ", %s", p.Condition)
		}
		b.WriteString(")\n")
		for _, m := range meds {
			if m.PatientID == p.ID {
				fmt.Fprintf(&b, "  medicine: %s %s at %s, stock %d\n", m.Name, m.Dosage, m.Schedule, m.Stock)
			}
		}
		for _, rem := range rems {
			if rem.PatientID == p.ID {
				status := "pending"
				if rem.Completed {
					status = "done"
				}
				fmt.Fprintf(&b, "  reminder: %s at %s (%s)\n", rem.Task, rem.Time, status)
			}
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
