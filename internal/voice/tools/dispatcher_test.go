package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu   sync.Mutex
	cmds []Command
}

func (s *recordingSink) Submit(_ context.Context, cmd Command) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cmds = append(s.cmds, cmd)
}

func (s *recordingSink) all() []Command {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Command(nil), s.cmds...)
}

func newTestDispatcher(patients ...Patient) (*Dispatcher, *recordingSink) {
	sink := &recordingSink{}
	d := NewDispatcher(NewState(patients, nil, nil), sink, nil)
	n := 0
	d.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return d, sink
}

func TestAddPatient_AlwaysSucceedsWithFreshID(t *testing.T) {
	d, sink := newTestDispatcher()

	res := d.Dispatch(context.Background(), Call{ID: "c1", Name: NameAddPatient, Args: map[string]any{
		"name": "Mary", "age": float64(70), "condition": "arthritis",
	}})

	require.True(t, res.Success)
	assert.Equal(t, PhaseAccepted, res.Phase)
	assert.Equal(t, "Patient Mary added successfully", res.Message)

	patients := d.State().Patients()
	require.Len(t, patients, 1)
	assert.Equal(t, Patient{ID: "id-1", Name: "Mary", Age: 70, Condition: "arthritis"}, patients[0])

	cmds := sink.all()
	require.Len(t, cmds, 1)
	assert.Equal(t, CommandCreatePatient, cmds[0].Kind)
	assert.Equal(t, "id-1", cmds[0].Patient.ID)
}

func TestAddPatient_MissingNameStillAccepted(t *testing.T) {
	d, sink := newTestDispatcher()

	res := d.Dispatch(context.Background(), Call{ID: "c1", Name: NameAddPatient, Args: map[string]any{
		"age": float64(70), "condition": "x",
	}})

	require.True(t, res.Success)
	assert.Equal(t, PhaseAccepted, res.Phase)

	patients := d.State().Patients()
	require.Len(t, patients, 1)
	assert.Equal(t, "id-1", patients[0].ID)
	assert.Empty(t, patients[0].Name)
	require.Len(t, sink.all(), 1)
}

func TestAddMedicine_UnknownPatientFailsWithoutMutation(t *testing.T) {
	d, sink := newTestDispatcher(Patient{ID: "p1", Name: "John Doe"})

	res := d.Dispatch(context.Background(), Call{Name: NameAddMedicine, Args: map[string]any{
		"patientName": "Zzyx", "medicineName": "Aspirin", "dosage": "1 pill", "schedule": "09:00", "stock": 10,
	}})

	assert.False(t, res.Success)
	assert.Equal(t, "Patient Zzyx not found. Please add the patient first.", res.Message)
	assert.Empty(t, d.State().Medicines())
	assert.Empty(t, sink.all())
}

func TestAddMedicine_SubstringMatchReferencesPatient(t *testing.T) {
	d, sink := newTestDispatcher(Patient{ID: "p1", Name: "John Doe"})

	res := d.Dispatch(context.Background(), Call{Name: NameAddMedicine, Args: map[string]any{
		"patientName": "john", "medicineName": "Aspirin", "dosage": "2 tablets", "schedule": "09:00", "stock": float64(12),
	}})

	require.True(t, res.Success)
	meds := d.State().Medicines()
	require.Len(t, meds, 1)
	assert.Equal(t, "p1", meds[0].PatientID)
	assert.Equal(t, 12, meds[0].Stock)
	assert.Equal(t, "Medicine Aspirin scheduled for John Doe at 09:00", res.Message)
	require.Len(t, sink.all(), 1)
}

func TestAddMedicine_StockDefaultsWhenMissingOrZero(t *testing.T) {
	d, _ := newTestDispatcher(Patient{ID: "p1", Name: "Mary"})

	d.Dispatch(context.Background(), Call{Name: NameAddMedicine, Args: map[string]any{
		"patientName": "mary", "medicineName": "Metformin", "dosage": "1", "schedule": "08:00", "stock": 0,
	}})
	d.Dispatch(context.Background(), Call{Name: NameAddMedicine, Args: map[string]any{
		"patientName": "Mary", "medicineName": "Insulin", "dosage": "5ml", "schedule": "20:00",
	}})

	meds := d.State().Medicines()
	require.Len(t, meds, 2)
	assert.Equal(t, DefaultStock, meds[0].Stock)
	assert.Equal(t, DefaultStock, meds[1].Stock)
}

func TestSetReminder_CreatesIncompleteReminder(t *testing.T) {
	d, _ := newTestDispatcher(Patient{ID: "p1", Name: "John"})

	res := d.Dispatch(context.Background(), Call{Name: NameSetReminder, Args: map[string]any{
		"patientName": "John", "task": "check blood pressure", "time": "15:00",
	}})

	require.True(t, res.Success)
	rems := d.State().Reminders()
	require.Len(t, rems, 1)
	assert.Equal(t, Reminder{ID: "id-1", PatientID: "p1", Task: "check blood pressure", Time: "15:00"}, rems[0])
}

func TestSetReminder_UnknownPatient(t *testing.T) {
	d, _ := newTestDispatcher()
	res := d.Dispatch(context.Background(), Call{Name: NameSetReminder, Args: map[string]any{"patientName": "Ann"}})
	assert.False(t, res.Success)
	assert.Empty(t, d.State().Reminders())
}

func TestListStatus(t *testing.T) {
	d, _ := newTestDispatcher()
	res := d.Dispatch(context.Background(), Call{Name: NameListStatus})
	assert.True(t, res.Success)
	assert.Equal(t, "No patients registered yet.", res.Message)

	d.Dispatch(context.Background(), Call{Name: NameAddPatient, Args: map[string]any{"name": "Ann"}})
	d.Dispatch(context.Background(), Call{Name: NameAddPatient, Args: map[string]any{"name": "Bob"}})

	res = d.Dispatch(context.Background(), Call{Name: NameListStatus})
	assert.Equal(t, "Current patients: Ann, Bob", res.Message)
	assert.Len(t, res.Data["patients"], 2)
	assert.Contains(t, res.Payload(), "patients")
}

func TestDispatch_UnknownTool(t *testing.T) {
	d, _ := newTestDispatcher()
	res := d.Dispatch(context.Background(), Call{Name: "deleteEverything"})
	assert.False(t, res.Success)
	assert.Equal(t, PhaseFailed, res.Phase)
}

func TestFindPatient_PrefersExactMatch(t *testing.T) {
	s := NewState([]Patient{{ID: "1", Name: "Annabel"}, {ID: "2", Name: "Ann"}}, nil, nil)

	p, ok := s.FindPatient("ann")
	require.True(t, ok)
	assert.Equal(t, "2", p.ID)

	p, ok = s.FindPatient("anna")
	require.True(t, ok)
	assert.Equal(t, "1", p.ID)

	// el nombre buscado contiene al del roster
	p, ok = s.FindPatient("Mrs Annabel Smith")
	require.True(t, ok)
	assert.Equal(t, "1", p.ID)

	_, ok = s.FindPatient("   ")
	assert.False(t, ok)
}

func TestArgInt_Coercion(t *testing.T) {
	args := map[string]any{
		"f": 65.0, "i": 3, "n": json.Number("42"), "s": " 7 ", "bad": "seven",
	}
	assert.Equal(t, 65, argInt(args, "f"))
	assert.Equal(t, 3, argInt(args, "i"))
	assert.Equal(t, 42, argInt(args, "n"))
	assert.Equal(t, 7, argInt(args, "s"))
	assert.Equal(t, 0, argInt(args, "bad"))
	assert.Equal(t, 0, argInt(args, "missing"))
}

func TestWorker_PersistsInOrderAndReportsOutcomes(t *testing.T) {
	var mu sync.Mutex
	var order []CommandKind
	var outcomes []Outcome

	boom := errors.New("store down")
	w := NewWorker(PersisterFunc(func(_ context.Context, cmd Command) error {
		mu.Lock()
		order = append(order, cmd.Kind)
		mu.Unlock()
		if cmd.Kind == CommandCreateReminder {
			return boom
		}
		return nil
	}), WorkerOptions{OnOutcome: func(o Outcome) {
		mu.Lock()
		outcomes = append(outcomes, o)
		mu.Unlock()
	}})

	ctx := context.Background()
	w.Submit(ctx, Command{Kind: CommandCreatePatient})
	w.Submit(ctx, Command{Kind: CommandCreateMedicine})
	w.Submit(ctx, Command{Kind: CommandCreateReminder})
	w.Close()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []CommandKind{CommandCreatePatient, CommandCreateMedicine, CommandCreateReminder}, order)
	require.Len(t, outcomes, 3)
	assert.Equal(t, PhasePersisted, outcomes[0].Phase)
	assert.Equal(t, PhasePersisted, outcomes[1].Phase)
	assert.Equal(t, PhaseFailed, outcomes[2].Phase)
	assert.ErrorIs(t, outcomes[2].Err, boom)
}

func TestWorker_SubmitAfterCloseFails(t *testing.T) {
	got := make(chan Outcome, 1)
	w := NewWorker(PersisterFunc(func(context.Context, Command) error { return nil }), WorkerOptions{
		Timeout:   time.Second,
		OnOutcome: func(o Outcome) { got <- o },
	})
	w.Close()
	w.Close()

	w.Submit(context.Background(), Command{Kind: CommandCreatePatient})
	o := <-got
	assert.Equal(t, PhaseFailed, o.Phase)
	assert.ErrorIs(t, o.Err, ErrWorkerClosed)
}

func TestWorker_SubmitWithCancelledContextAlwaysFails(t *testing.T) {
	var mu sync.Mutex
	persisted := 0
	var outcomes []Outcome
	w := NewWorker(PersisterFunc(func(context.Context, Command) error {
		mu.Lock()
		persisted++
		mu.Unlock()
		return nil
	}), WorkerOptions{
		QueueSize: 64,
		OnOutcome: func(o Outcome) {
			mu.Lock()
			outcomes = append(outcomes, o)
			mu.Unlock()
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// la cola tiene lugar: igual nunca se encola
	for i := 0; i < 50; i++ {
		w.Submit(ctx, Command{Kind: CommandCreatePatient})
	}
	w.Close()

	mu.Lock()
	defer mu.Unlock()
	assert.Zero(t, persisted)
	require.Len(t, outcomes, 50)
	for _, o := range outcomes {
		assert.Equal(t, PhaseFailed, o.Phase)
		assert.ErrorIs(t, o.Err, context.Canceled)
	}
}

func TestSystemPrompt_IncludesRosterAndLanguage(t *testing.T) {
	p := SystemPrompt(LangHindi, []Patient{{Name: "Ravi", Age: 80}})
	assert.Contains(t, p, "You speak Hindi")
	assert.Contains(t, p, "Ravi (age 80)")

	p = SystemPrompt(ParseLanguage("xx"), nil)
	assert.Contains(t, p, "You speak English")
	assert.Contains(t, p, "None yet")

	assert.Equal(t, "Zephyr", VoiceFor(LangEnglish))
	assert.Equal(t, "Puck", VoiceFor(LangTamil))
	assert.Len(t, Declarations(), 4)
}
