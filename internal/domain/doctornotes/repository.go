package doctornotes

import "context"

type Repository interface {
	Create(ctx context.Context, n Note) error
	// List devuelve las notas más nuevas primero.
	List(ctx context.Context, filter ListFilter) ([]Note, error)
	DeleteByPatient(ctx context.Context, patientID string) error
}

type ListFilter struct {
	CaregiverID string
	PatientID   string
}

type PatientLookup interface {
	CaregiverOf(ctx context.Context, patientID string) (string, error)
}
