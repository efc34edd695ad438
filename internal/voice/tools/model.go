// Package tools ejecuta las function calls que pide el asistente de voz
// sobre el roster local de pacientes, medicinas y recordatorios.
package tools

const (
	NameAddPatient  = "addPatient"
	NameAddMedicine = "addMedicine"
	NameSetReminder = "setReminder"
	NameListStatus  = "listStatus"

	// DefaultStock se usa cuando addMedicine no trae stock (o trae 0).
	DefaultStock = 30
)

type Patient struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Age       int    `json:"age"`
	Condition string `json:"condition"`
}

type Medicine struct {
	ID        string `json:"id"`
	PatientID string `json:"patientId"`
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Schedule  string `json:"schedule"`
	Stock     int    `json:"stock"`
}

type Reminder struct {
	ID        string `json:"id"`
	PatientID string `json:"patientId"`
	Task      string `json:"task"`
	Time      string `json:"time"`
	Completed bool   `json:"completed"`
}

// Call es una function call del modelo. ID es el id de correlación que
// hay que devolver en la respuesta.
type Call struct {
	ID   string
	Name string
	Args map[string]any
}

// Phase distingue "aceptado localmente" de "persistido".
type Phase string

const (
	PhaseAccepted  Phase = "accepted"
	PhasePersisted Phase = "persisted"
	PhaseFailed    Phase = "failed"
)

type Result struct {
	Success bool
	Message string
	Data    map[string]any
	Phase   Phase
}

// Payload es lo que viaja de vuelta al modelo.
func (r Result) Payload() map[string]any {
	out := map[string]any{
		"success": r.Success,
		"message": r.Message,
	}
	for k, v := range r.Data {
		out[k] = v
	}
	return out
}

func failure(msg string) Result {
	return Result{Success: false, Message: msg, Phase: PhaseFailed}
}
