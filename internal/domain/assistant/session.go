package assistant

import (
	"context"
	"sync"
	"time"

	"caregiver-assistant/internal/adapters/wsaudio"
	"caregiver-assistant/internal/platform/logger"
	"caregiver-assistant/internal/voice/live"
	"caregiver-assistant/internal/voice/tools"
)

// Recorder es lo que la sesión reporta a metrics.
type Recorder interface {
	RecordLiveSessionStart()
	RecordLiveSessionEnd(status string, d time.Duration)
	RecordToolCall(tool string, success bool)
	RecordPersist(kind, phase string)
}

type nopRecorder struct{}

func (nopRecorder) RecordLiveSessionStart()                    {}
func (nopRecorder) RecordLiveSessionEnd(string, time.Duration) {}
func (nopRecorder) RecordToolCall(string, bool)                {}
func (nopRecorder) RecordPersist(string, string)               {}

type stateMessage struct {
	Type  string `json:"type"`
	State string `json:"state"`
}

type transcriptMessage struct {
	Type  string      `json:"type"`
	Turns []live.Turn `json:"turns"`
}

type toolMessage struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	Success bool   `json:"success"`
	Message string `json:"message"`
	Phase   string `json:"phase"`
}

// liveSession conecta un navegador (peer) con un live.Controller.
type liveSession struct {
	peer      *wsaudio.Peer
	dialer    live.Dialer
	state     *tools.State
	persister tools.Persister
	recorder  Recorder
	log       logger.Logger

	mu      sync.Mutex
	started time.Time
	failed  bool
}

func (s *liveSession) serve(ctx context.Context) error {
	worker := tools.NewWorker(s.persister, tools.WorkerOptions{
		Logger:    s.log,
		OnOutcome: s.onOutcome,
	})
	defer worker.Close()

	ctrl := live.NewController(live.Config{
		Dialer:  s.dialer,
		Devices: s.peer,
		Tools:   tools.NewDispatcher(s.state, worker, s.log),
		Hooks: live.Hooks{
			OnState: s.onState,
			OnTurns: func(turns []live.Turn) {
				_ = s.peer.Send(transcriptMessage{Type: wsaudio.TypeTranscript, Turns: turns})
			},
			OnTool: func(call tools.Call, res tools.Result) {
				s.recorder.RecordToolCall(call.Name, res.Success)
				_ = s.peer.Send(toolMessage{
					Type:    wsaudio.TypeTool,
					Name:    call.Name,
					Success: res.Success,
					Message: res.Message,
					Phase:   string(res.Phase),
				})
			},
			OnError: func(err error) {
				s.mu.Lock()
				s.failed = true
				s.mu.Unlock()
				_ = s.peer.SendError(live.UserMessage(err))
			},
		},
		Logger: s.log,
	})
	defer func() { _ = ctrl.Stop() }()

	return s.peer.Serve(ctx, func(msg wsaudio.ClientMessage) {
		switch msg.Type {
		case wsaudio.TypeSessionStart:
			lang := tools.ParseLanguage(msg.Language)
			setup := live.Setup{
				SystemPrompt: tools.SystemPrompt(lang, s.state.Patients()),
				Tools:        tools.Declarations(),
				Voice:        tools.VoiceFor(lang),
				Language:     lang,
			}
			// Start espera mic.ready, que llega por este mismo lector.
			go func() {
				if err := ctrl.Start(ctx, setup); err != nil {
					s.log.Warn("live session not started", map[string]any{"err": err})
				}
			}()
		case wsaudio.TypeSessionStop:
			go func() { _ = ctrl.Stop() }()
		default:
			s.log.Debug("ignored client message", map[string]any{"type": msg.Type})
		}
	})
}

func (s *liveSession) onState(st live.State) {
	switch st {
	case live.StateActive:
		s.mu.Lock()
		s.started = time.Now()
		s.failed = false
		s.mu.Unlock()
		s.recorder.RecordLiveSessionStart()
	case live.StateIdle:
		s.mu.Lock()
		started, failed := s.started, s.failed
		s.started = time.Time{}
		s.mu.Unlock()
		if !started.IsZero() {
			status := "ok"
			if failed {
				status = "error"
			}
			s.recorder.RecordLiveSessionEnd(status, time.Since(started))
		}
	}
	_ = s.peer.Send(stateMessage{Type: wsaudio.TypeState, State: st.String()})
}

func (s *liveSession) onOutcome(o tools.Outcome) {
	s.recorder.RecordPersist(string(o.Command.Kind), string(o.Phase))
	if o.Err == nil {
		return
	}
	_ = s.peer.Send(toolMessage{
		Type:    wsaudio.TypeTool,
		Name:    string(o.Command.Kind),
		Success: false,
		Message: "Could not save the change. Please try again.",
		Phase:   string(o.Phase),
	})
}
