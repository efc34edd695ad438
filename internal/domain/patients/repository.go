package patients

import "context"

type Repository interface {
	Create(ctx context.Context, p Patient) error
	GetByID(ctx context.Context, id string) (Patient, error)
	ListByCaregiver(ctx context.Context, caregiverID string) ([]Patient, error)
	Delete(ctx context.Context, id string) error
}

// Dependent es un módulo con registros que referencian a un paciente
// (medicinas, recordatorios, notas). Se usa para el borrado en cascada sin
// importar esos paquetes desde acá.
type Dependent interface {
	DeleteByPatient(ctx context.Context, patientID string) error
}
