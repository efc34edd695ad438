package tools

import (
	"strings"
	"sync"
)

// State es el roster que ve una sesión de voz. Lo arma el host al iniciar la
// sesión y el dispatcher lo actualiza localmente, así las llamadas siguientes
// ven lo que agregaron las anteriores.
type State struct {
	mu        sync.RWMutex
	patients  []Patient
	medicines []Medicine
	reminders []Reminder
}

func NewState(patients []Patient, medicines []Medicine, reminders []Reminder) *State {
	return &State{
		patients:  append([]Patient(nil), patients...),
		medicines: append([]Medicine(nil), medicines...),
		reminders: append([]Reminder(nil), reminders...),
	}
}

func (s *State) Patients() []Patient {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Patient(nil), s.patients...)
}

func (s *State) Medicines() []Medicine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Medicine(nil), s.medicines...)
}

func (s *State) Reminders() []Reminder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Reminder(nil), s.reminders...)
}

func (s *State) addPatient(p Patient) {
	s.mu.Lock()
	s.patients = append(s.patients, p)
	s.mu.Unlock()
}

func (s *State) addMedicine(m Medicine) {
	s.mu.Lock()
	s.medicines = append(s.medicines, m)
	s.mu.Unlock()
}

func (s *State) addReminder(r Reminder) {
	s.mu.Lock()
	s.reminders = append(s.reminders, r)
	s.mu.Unlock()
}

// FindPatient resuelve un nombre hablado contra el roster.
// Primero match exacto (case-insensitive); si no hay, el primero (en orden
// del roster) cuyo nombre contiene al buscado o está contenido en él.
// Con varios candidatos por substring gana el primero.
func (s *State) FindPatient(name string) (Patient, bool) {
	q := strings.ToLower(strings.TrimSpace(name))
	if q == "" {
		return Patient{}, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.patients {
		if strings.ToLower(strings.TrimSpace(p.Name)) == q {
			return p, true
		}
	}
	for _, p := range s.patients {
		n := strings.ToLower(strings.TrimSpace(p.Name))
		if n == "" {
			continue
		}
		if strings.Contains(n, q) || strings.Contains(q, n) {
			return p, true
		}
	}
	return Patient{}, false
}
