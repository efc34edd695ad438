package alerts

import "context"

// Repository es el feed de alertas activas.
type Repository interface {
	Add(ctx context.Context, a Alert) error
	GetByID(ctx context.Context, id string) (Alert, error)
	// ListByCaregiver devuelve las más nuevas primero.
	ListByCaregiver(ctx context.Context, caregiverID string) ([]Alert, error)
	Remove(ctx context.Context, id string) error
}

// PatientNamer lo implementa patients.Owners.
type PatientNamer interface {
	NameOf(ctx context.Context, patientID string) (string, error)
}

// Recorder cuenta alertas disparadas (metrics.Metrics).
type Recorder interface {
	RecordAlert(severity string)
}
