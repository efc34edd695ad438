package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"caregiver-assistant/internal/platform/logger"
)

// Dispatcher traduce cada Call a una mutación del State y emite el Command
// correspondiente al sink. El resultado vuelve al modelo en PhaseAccepted;
// la persistencia se reporta aparte.
type Dispatcher struct {
	state *State
	sink  CommandSink
	log   logger.Logger
	newID func() string
}

func NewDispatcher(state *State, sink CommandSink, log logger.Logger) *Dispatcher {
	if state == nil {
		state = NewState(nil, nil, nil)
	}
	return &Dispatcher{
		state: state,
		sink:  sink,
		log:   logger.OrNop(log),
		newID: uuid.NewString,
	}
}

func (d *Dispatcher) State() *State { return d.state }

func (d *Dispatcher) Dispatch(ctx context.Context, call Call) Result {
	var res Result
	switch call.Name {
	case NameAddPatient:
		res = d.addPatient(ctx, call.Args)
	case NameAddMedicine:
		res = d.addMedicine(ctx, call.Args)
	case NameSetReminder:
		res = d.setReminder(ctx, call.Args)
	case NameListStatus:
		res = d.listStatus()
	default:
		res = failure(fmt.Sprintf("Unknown function %s", call.Name))
	}

	d.log.Info("tool call", map[string]any{
		"call_id": call.ID,
		"tool":    call.Name,
		"success": res.Success,
		"phase":   string(res.Phase),
	})
	return res
}

func (d *Dispatcher) addPatient(ctx context.Context, args map[string]any) Result {
	// Siempre acepta; un nombre vacío lo rechaza el store y llega como PhaseFailed.
	p := Patient{
		ID:        d.newID(),
		Name:      argString(args, "name"),
		Age:       argInt(args, "age"),
		Condition: argString(args, "condition"),
	}
	d.state.addPatient(p)
	d.submit(ctx, Command{Kind: CommandCreatePatient, Patient: &p})

	return Result{
		Success: true,
		Message: fmt.Sprintf("Patient %s added successfully", p.Name),
		Phase:   PhaseAccepted,
	}
}

func (d *Dispatcher) addMedicine(ctx context.Context, args map[string]any) Result {
	patientName := argString(args, "patientName")
	p, ok := d.state.FindPatient(patientName)
	if !ok {
		return failure(notFound(patientName))
	}

	stock := argInt(args, "stock")
	if stock <= 0 {
		stock = DefaultStock
	}

	m := Medicine{
		ID:        d.newID(),
		PatientID: p.ID,
		Name:      argString(args, "medicineName"),
		Dosage:    argString(args, "dosage"),
		Schedule:  argString(args, "schedule"),
		Stock:     stock,
	}
	d.state.addMedicine(m)
	d.submit(ctx, Command{Kind: CommandCreateMedicine, Medicine: &m})

	return Result{
		Success: true,
		Message: fmt.Sprintf("Medicine %s scheduled for %s at %s", m.Name, p.Name, m.Schedule),
		Phase:   PhaseAccepted,
	}
}

func (d *Dispatcher) setReminder(ctx context.Context, args map[string]any) Result {
	patientName := argString(args, "patientName")
	p, ok := d.state.FindPatient(patientName)
	if !ok {
		return failure(notFound(patientName))
	}

	r := Reminder{
		ID:        d.newID(),
		PatientID: p.ID,
		Task:      argString(args, "task"),
		Time:      argString(args, "time"),
	}
	d.state.addReminder(r)
	d.submit(ctx, Command{Kind: CommandCreateReminder, Reminder: &r})

	return Result{
		Success: true,
		Message: fmt.Sprintf("Reminder %q set for %s at %s", r.Task, p.Name, r.Time),
		Phase:   PhaseAccepted,
	}
}

func (d *Dispatcher) listStatus() Result {
	patients := d.state.Patients()
	if len(patients) == 0 {
		return Result{Success: true, Message: "No patients registered yet.", Phase: PhaseAccepted}
	}

	names := make([]string, 0, len(patients))
	for _, p := range patients {
		names = append(names, p.Name)
	}
	return Result{
		Success: true,
		Message: "Current patients: " + strings.Join(names, ", "),
		Data:    map[string]any{"patients": patients},
		Phase:   PhaseAccepted,
	}
}

func (d *Dispatcher) submit(ctx context.Context, cmd Command) {
	if d.sink == nil {
		return
	}
	d.sink.Submit(ctx, cmd)
}

func notFound(name string) string {
	return fmt.Sprintf("Patient %s not found. Please add the patient first.", name)
}

func argString(args map[string]any, key string) string {
	switch v := args[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case nil:
		return ""
	case fmt.Stringer:
		return strings.TrimSpace(v.String())
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// argInt tolera los tipos que producen los decoders JSON (float64,
// json.Number) y números dictados como texto.
func argInt(args map[string]any, key string) int {
	switch v := args[key].(type) {
	case float64:
		return int(math.Round(v))
	case float32:
		return int(math.Round(float64(v)))
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return int(math.Round(f))
		}
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return int(math.Round(f))
		}
	}
	return 0
}
