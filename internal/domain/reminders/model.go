package reminders

import "time"

// Reminder es una tarea puntual para un paciente a una hora "HH:MM".
// Completed pasa a true cuando el monitor la dispara o el caregiver la marca.
type Reminder struct {
	ID          string
	CaregiverID string
	PatientID   string

	Task      string
	Time      string
	Completed bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
