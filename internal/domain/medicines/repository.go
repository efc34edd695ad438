package medicines

import "context"

type Repository interface {
	Create(ctx context.Context, m Medicine) error
	Update(ctx context.Context, m Medicine) error
	GetByID(ctx context.Context, id string) (Medicine, error)
	List(ctx context.Context, filter ListFilter) ([]Medicine, error)
	Delete(ctx context.Context, id string) error
	DeleteByPatient(ctx context.Context, patientID string) error
}

// ListFilter: campos vacíos no filtran.
type ListFilter struct {
	CaregiverID string
	PatientID   string
}

// PatientLookup resuelve el dueño de un paciente (lo implementa patients.Owners).
type PatientLookup interface {
	CaregiverOf(ctx context.Context, patientID string) (string, error)
}
