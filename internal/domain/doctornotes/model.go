package doctornotes

import "time"

// Note es una nota clínica libre. Inmutable: no hay update.
type Note struct {
	ID          string
	CaregiverID string
	PatientID   string

	Text      string
	CreatedAt time.Time
}
