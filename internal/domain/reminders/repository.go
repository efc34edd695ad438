package reminders

import "context"

type Repository interface {
	Create(ctx context.Context, r Reminder) error
	Update(ctx context.Context, r Reminder) error
	GetByID(ctx context.Context, id string) (Reminder, error)
	List(ctx context.Context, filter ListFilter) ([]Reminder, error)
	Delete(ctx context.Context, id string) error
	DeleteByPatient(ctx context.Context, patientID string) error
}

// ListFilter: campos vacíos no filtran.
type ListFilter struct {
	CaregiverID string
	PatientID   string
}

type PatientLookup interface {
	CaregiverOf(ctx context.Context, patientID string) (string, error)
}
