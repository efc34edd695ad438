package medicines

import "time"

// Medicine es una toma diaria de un paciente. Schedule es "HH:MM".
// CaregiverID se copia del paciente al crear, para listar sin joins.
type Medicine struct {
	ID          string
	CaregiverID string
	PatientID   string

	Name     string
	Dosage   string
	Schedule string
	Stock    int

	CreatedAt time.Time
	UpdatedAt time.Time
}
