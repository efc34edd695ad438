package live

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"golang.org/x/sync/errgroup"

	"caregiver-assistant/internal/platform/logger"
	"caregiver-assistant/internal/voice/audio"
	"caregiver-assistant/internal/voice/tools"
)

type State int

const (
	StateIdle State = iota
	StateConnecting
	StateActive
	StateClosing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateActive:
		return "active"
	case StateClosing:
		return "closing"
	default:
		return "unknown"
	}
}

var (
	// ErrStopped lo devuelve Start si Stop llegó mientras conectaba.
	ErrStopped = errors.New("live: session stopped while connecting")

	errRemoteClosed = errors.New("live: remote closed the session")
)

// Hooks se invocan fuera de los locks internos, desde la goroutine que
// produce el evento. Todos son opcionales.
type Hooks struct {
	OnState func(State)
	OnTurns func([]Turn)
	OnTool  func(tools.Call, tools.Result)
	OnError func(error)
}

type Config struct {
	Dialer  Dialer
	Devices audio.Devices
	Tools   ToolHandler
	Audio   audio.Options
	Hooks   Hooks
	Logger  logger.Logger
}

// Controller maneja una sesión a la vez:
// Idle -> Connecting -> Active -> Closing -> Idle. Cualquier error vuelve a Idle.
type Controller struct {
	cfg        Config
	log        logger.Logger
	transcript Transcript

	mu      sync.Mutex
	state   State
	sess    *session
	lastErr error

	// cancelConnect corta audio.Open/Dial; connecting se cierra cuando Start
	// termina.
	cancelConnect context.CancelFunc
	connecting    chan struct{}
}

type session struct {
	conn   Conn
	pipe   *audio.Pipeline
	cancel context.CancelFunc
	done   chan struct{}

	teardownOnce sync.Once
	teardownErr  error
}

// teardown corta la captura, detiene la reproducción y cierra la conexión.
// Si un paso falla igual se ejecutan los demás.
func (s *session) teardown() error {
	s.teardownOnce.Do(func() {
		s.cancel()
		s.teardownErr = errors.Join(s.pipe.Close(), s.conn.Close())
	})
	return s.teardownErr
}

func NewController(cfg Config) *Controller {
	cfg.Audio.Logger = logger.OrNop(cfg.Audio.Logger)
	return &Controller{
		cfg: cfg,
		log: logger.OrNop(cfg.Logger),
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err es el último error que terminó una sesión (nil si terminó bien).
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

func (c *Controller) Transcript() []Turn {
	return c.transcript.Turns()
}

// Start abre micrófono, reproducción y conexión remota. Falla rápido (y deja
// el controller en Idle) si falta la credencial o el micrófono no está
// disponible. La sesión vive hasta Stop, hasta que se cancele ctx o hasta
// un error de conexión.
func (c *Controller) Start(ctx context.Context, setup Setup) error {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return ErrAlreadyActive
	}
	sessCtx, cancel := context.WithCancel(ctx)
	connecting := make(chan struct{})
	c.state = StateConnecting
	c.lastErr = nil
	c.cancelConnect = cancel
	c.connecting = connecting
	c.mu.Unlock()
	defer close(connecting)
	c.emitState(StateConnecting)

	if c.cfg.Dialer == nil {
		cancel()
		return c.abort(ErrMissingCredential)
	}
	if err := c.cfg.Dialer.Ready(); err != nil {
		cancel()
		return c.abort(err)
	}

	pipe, err := audio.Open(sessCtx, c.cfg.Devices, c.cfg.Audio)
	if err != nil {
		cancel()
		return c.abort(fmt.Errorf("live: %w", err))
	}

	conn, err := c.cfg.Dialer.Dial(sessCtx, setup)
	if err != nil {
		cancel()
		_ = pipe.Close()
		return c.abort(fmt.Errorf("live: connect: %w", err))
	}

	sess := &session{conn: conn, pipe: pipe, cancel: cancel, done: make(chan struct{})}

	c.mu.Lock()
	if c.state != StateConnecting {
		c.mu.Unlock()
		_ = sess.teardown()
		c.toIdle(nil)
		return ErrStopped
	}
	c.sess = sess
	c.state = StateActive
	c.cancelConnect = nil
	c.mu.Unlock()

	c.transcript.Reset()
	c.emitState(StateActive)
	c.log.Info("live session started", map[string]any{"voice": setup.Voice, "language": string(setup.Language)})

	go c.run(sessCtx, sess)
	return nil
}

// Stop cierra la sesión activa y espera a que termine el teardown.
func (c *Controller) Stop() error {
	c.mu.Lock()
	switch c.state {
	case StateIdle:
		c.mu.Unlock()
		return nil
	case StateConnecting:
		// Start ve la cancelación, libera lo adquirido y vuelve a Idle.
		c.state = StateClosing
		cancel, connecting := c.cancelConnect, c.connecting
		c.mu.Unlock()
		c.emitState(StateClosing)
		cancel()
		<-connecting
		return nil
	case StateClosing:
		sess, connecting := c.sess, c.connecting
		c.mu.Unlock()
		if sess != nil {
			<-sess.done
		} else if connecting != nil {
			<-connecting
		}
		return nil
	}

	sess := c.sess
	c.state = StateClosing
	c.mu.Unlock()
	c.emitState(StateClosing)

	err := sess.teardown()
	<-sess.done
	return err
}

func (c *Controller) run(ctx context.Context, sess *session) {
	defer close(sess.done)

	g, gctx := errgroup.WithContext(ctx)
	inbound := make(chan Message, 64)

	// Receive del proveedor puede no respetar ctx: cerrar la conexión es lo
	// que lo desbloquea.
	g.Go(func() error {
		<-gctx.Done()
		_ = sess.teardown()
		return nil
	})

	// micrófono -> remoto
	g.Go(func() error {
		if err := sess.pipe.Run(gctx, sess.conn.SendAudio); err != nil {
			return err
		}
		if gctx.Err() != nil {
			return nil
		}
		return ErrMicrophoneClosed
	})

	// remoto -> cola
	g.Go(func() error {
		defer close(inbound)
		for {
			msgs, err := sess.conn.Receive(gctx)
			if err != nil {
				if errors.Is(err, io.EOF) {
					return errRemoteClosed
				}
				if gctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("live: receive: %w", err)
			}
			for _, m := range msgs {
				select {
				case inbound <- m:
				case <-gctx.Done():
					return nil
				}
			}
		}
	})

	// único consumidor: procesa en orden de llegada
	g.Go(func() error {
		for m := range inbound {
			if err := c.handle(gctx, sess, m); err != nil {
				return err
			}
		}
		return nil
	})

	err := g.Wait()
	if errors.Is(err, errRemoteClosed) {
		err = nil
	}

	c.mu.Lock()
	wasActive := c.state == StateActive
	if wasActive {
		c.state = StateClosing
	}
	c.mu.Unlock()
	if wasActive {
		c.emitState(StateClosing)
	}

	if tdErr := sess.teardown(); tdErr != nil {
		c.log.Warn("live teardown incomplete", map[string]any{"err": tdErr})
	}

	// Si cerró el usuario (Stop) no hay error que reportar.
	if !wasActive {
		err = nil
	}
	c.toIdle(err)
}

func (c *Controller) handle(ctx context.Context, sess *session, m Message) error {
	switch m.Kind {
	case KindInputTranscript:
		c.transcript.AppendInput(m.Text)
	case KindOutputTranscript:
		c.transcript.AppendOutput(m.Text)
	case KindTurnComplete:
		if c.transcript.Complete() && c.cfg.Hooks.OnTurns != nil {
			c.cfg.Hooks.OnTurns(c.transcript.Turns())
		}
	case KindAudio:
		sess.pipe.Play(m.Audio)
	case KindInterrupted:
		sess.pipe.Interrupt()
	case KindToolCall:
		return c.answer(ctx, sess, m.Calls)
	}
	return nil
}

// answer ejecuta todas las calls y responde cada una por su id antes de
// volver al loop.
func (c *Controller) answer(ctx context.Context, sess *session, calls []tools.Call) error {
	if len(calls) == 0 {
		return nil
	}

	responses := make([]FunctionResponse, 0, len(calls))
	for _, call := range calls {
		var res tools.Result
		if c.cfg.Tools != nil {
			res = c.cfg.Tools.Dispatch(ctx, call)
		} else {
			res = tools.Result{Success: false, Message: "Tools are not available.", Phase: tools.PhaseFailed}
		}
		if c.cfg.Hooks.OnTool != nil {
			c.cfg.Hooks.OnTool(call, res)
		}
		responses = append(responses, FunctionResponse{ID: call.ID, Name: call.Name, Response: res.Payload()})
	}

	if err := sess.conn.SendToolResponses(ctx, responses); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("live: send tool responses: %w", err)
	}
	return nil
}

// abort vuelve a Idle desde Connecting con err. Si el corte vino de Stop no
// hay error que reportar.
func (c *Controller) abort(err error) error {
	c.mu.Lock()
	stopped := c.state == StateClosing
	c.mu.Unlock()
	if stopped {
		c.toIdle(nil)
		return ErrStopped
	}
	c.toIdle(err)
	return err
}

func (c *Controller) toIdle(err error) {
	c.mu.Lock()
	c.state = StateIdle
	c.sess = nil
	c.cancelConnect = nil
	c.lastErr = err
	c.mu.Unlock()

	if err != nil {
		c.log.Error("live session ended with error", map[string]any{"err": err})
		if c.cfg.Hooks.OnError != nil {
			c.cfg.Hooks.OnError(err)
		}
	} else {
		c.log.Info("live session closed", nil)
	}
	c.emitState(StateIdle)
}

func (c *Controller) emitState(s State) {
	if c.cfg.Hooks.OnState != nil {
		c.cfg.Hooks.OnState(s)
	}
}

// UserMessage traduce un error de sesión a un texto corto para mostrar.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingCredential):
		return "The assistant is not configured: API key is missing."
	case errors.Is(err, audio.ErrPermissionDenied):
		return "Microphone access was denied."
	case errors.Is(err, audio.ErrNoDevice):
		return "No microphone was found."
	case errors.Is(err, ErrMicrophoneClosed):
		return "The microphone stopped. Start the assistant again."
	case errors.Is(err, ErrAlreadyActive):
		return "A voice session is already running."
	default:
		return "Connection to the assistant failed. Please try again."
	}
}
