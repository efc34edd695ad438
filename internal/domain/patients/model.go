package patients

import "time"

// Patient es una persona al cuidado del caregiver dueño del roster.
// No se edita: se crea y se borra.
type Patient struct {
	ID          string
	CaregiverID string

	Name      string
	Age       int
	Condition string

	CreatedAt time.Time
}
