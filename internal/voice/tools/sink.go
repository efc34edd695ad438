package tools

import (
	"context"
	"errors"
	"sync"
	"time"

	"caregiver-assistant/internal/platform/logger"
)

type CommandKind string

const (
	CommandCreatePatient  CommandKind = "patient.create"
	CommandCreateMedicine CommandKind = "medicine.create"
	CommandCreateReminder CommandKind = "reminder.create"
)

// Command es una mutación que el dispatcher ya aplicó localmente y que hay
// que persistir en el store.
type Command struct {
	Kind     CommandKind
	Patient  *Patient
	Medicine *Medicine
	Reminder *Reminder
}

// CommandSink recibe comandos; no bloquea la conversación.
type CommandSink interface {
	Submit(ctx context.Context, cmd Command)
}

// Persister guarda un comando (REST, services en proceso, etc.).
type Persister interface {
	Persist(ctx context.Context, cmd Command) error
}

type PersisterFunc func(ctx context.Context, cmd Command) error

func (f PersisterFunc) Persist(ctx context.Context, cmd Command) error { return f(ctx, cmd) }

// Outcome es el resultado final (persisted/failed) de un comando.
type Outcome struct {
	Command Command
	Phase   Phase
	Err     error
}

var ErrWorkerClosed = errors.New("tools: command worker closed")

// Worker persiste comandos en orden de llegada con una sola goroutine:
// un paciente siempre se guarda antes que las medicinas que lo referencian.
type Worker struct {
	persister Persister
	log       logger.Logger
	timeout   time.Duration
	onOutcome func(Outcome)

	mu     sync.Mutex
	queue  chan Command
	closed bool
	done   chan struct{}
}

type WorkerOptions struct {
	Logger    logger.Logger
	QueueSize int
	Timeout   time.Duration
	OnOutcome func(Outcome)
}

func NewWorker(p Persister, opts WorkerOptions) *Worker {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 64
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	w := &Worker{
		persister: p,
		log:       logger.OrNop(opts.Logger),
		timeout:   opts.Timeout,
		onOutcome: opts.OnOutcome,
		queue:     make(chan Command, opts.QueueSize),
		done:      make(chan struct{}),
	}
	go w.loop()
	return w
}

// Submit encola cmd. Si el worker ya cerró, el comando se reporta como failed.
func (w *Worker) Submit(ctx context.Context, cmd Command) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		w.report(Outcome{Command: cmd, Phase: PhaseFailed, Err: ErrWorkerClosed})
		return
	}
	if err := ctx.Err(); err != nil {
		w.mu.Unlock()
		w.report(Outcome{Command: cmd, Phase: PhaseFailed, Err: err})
		return
	}
	// Se encola bajo lock para que Close no cierre el canal a mitad de un envío.
	select {
	case w.queue <- cmd:
		w.mu.Unlock()
	case <-ctx.Done():
		w.mu.Unlock()
		w.report(Outcome{Command: cmd, Phase: PhaseFailed, Err: ctx.Err()})
	}
}

// Close deja de aceptar comandos y espera a que se vacíe la cola.
func (w *Worker) Close() {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
	w.mu.Unlock()
	<-w.done
}

func (w *Worker) loop() {
	defer close(w.done)
	for cmd := range w.queue {
		ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
		err := w.persister.Persist(ctx, cmd)
		cancel()

		if err != nil {
			w.report(Outcome{Command: cmd, Phase: PhaseFailed, Err: err})
			continue
		}
		w.report(Outcome{Command: cmd, Phase: PhasePersisted})
	}
}

func (w *Worker) report(o Outcome) {
	if o.Err != nil {
		w.log.Error("persist command failed", map[string]any{"kind": string(o.Command.Kind), "err": o.Err})
	} else {
		w.log.Debug("command persisted", map[string]any{"kind": string(o.Command.Kind)})
	}
	if w.onOutcome != nil {
		w.onOutcome(o)
	}
}
