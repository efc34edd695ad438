package patients

import "context"

// Owners responde quién es el dueño de un paciente leyendo directo del
// repositorio. medicines, reminders y doctornotes validan contra esto; el
// Service de patients los necesita a ellos para el borrado en cascada, así
// que no pueden depender del Service.
type Owners struct {
	repo Repository
}

func NewOwners(repo Repository) *Owners {
	return &Owners{repo: repo}
}

func (o *Owners) CaregiverOf(ctx context.Context, patientID string) (string, error) {
	p, err := o.repo.GetByID(ctx, patientID)
	if err != nil {
		return "", err
	}
	return p.CaregiverID, nil
}

// NameOf lo usa el monitor de alertas para armar los mensajes.
func (o *Owners) NameOf(ctx context.Context, patientID string) (string, error) {
	p, err := o.repo.GetByID(ctx, patientID)
	if err != nil {
		return "", err
	}
	return p.Name, nil
}
