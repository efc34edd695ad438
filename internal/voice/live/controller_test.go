package live

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caregiver-assistant/internal/voice/audio"
	"caregiver-assistant/internal/voice/tools"
)

type stateLog struct {
	mu     sync.Mutex
	states []State
}

func (l *stateLog) record(s State) {
	l.mu.Lock()
	l.states = append(l.states, s)
	l.mu.Unlock()
}

func (l *stateLog) all() []State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]State(nil), l.states...)
}

func newTestController(dialer *fakeDialer, devs *stubDevices, handler ToolHandler, hooks Hooks) *Controller {
	return NewController(Config{Dialer: dialer, Devices: devs, Tools: handler, Hooks: hooks})
}

func waitIdle(t *testing.T, c *Controller) {
	t.Helper()
	require.Eventually(t, func() bool { return c.State() == StateIdle }, 2*time.Second, time.Millisecond)
}

func TestStart_MissingCredentialFailsFast(t *testing.T) {
	dialer := &fakeDialer{conn: newFakeConn(), readyErr: ErrMissingCredential}
	devs := newStubDevices()
	c := newTestController(dialer, devs, nil, Hooks{})

	err := c.Start(context.Background(), Setup{})
	require.ErrorIs(t, err, ErrMissingCredential)
	assert.Equal(t, StateIdle, c.State())
	assert.Zero(t, devs.opened)
	assert.Zero(t, dialer.dials())
	assert.Contains(t, UserMessage(err), "API key")
}

func TestStart_MicrophoneDeniedFailsFast(t *testing.T) {
	dialer := &fakeDialer{conn: newFakeConn()}
	devs := newStubDevices()
	devs.captureErr = audio.ErrPermissionDenied

	var gotErr error
	c := newTestController(dialer, devs, nil, Hooks{OnError: func(err error) { gotErr = err }})

	err := c.Start(context.Background(), Setup{})
	require.ErrorIs(t, err, audio.ErrPermissionDenied)
	assert.Equal(t, StateIdle, c.State())
	assert.Zero(t, dialer.dials())
	assert.ErrorIs(t, gotErr, audio.ErrPermissionDenied)
	assert.Equal(t, "Microphone access was denied.", UserMessage(err))
}

func TestStart_DialFailureReleasesDevices(t *testing.T) {
	dialer := &fakeDialer{conn: newFakeConn(), dialErr: errors.New("handshake failed")}
	devs := newStubDevices()
	c := newTestController(dialer, devs, nil, Hooks{})

	err := c.Start(context.Background(), Setup{})
	require.Error(t, err)
	assert.Equal(t, StateIdle, c.State())
	_, _, closed := devs.playback.counts()
	assert.True(t, closed)
}

func TestStart_Twice(t *testing.T) {
	conn := newFakeConn()
	c := newTestController(&fakeDialer{conn: conn}, newStubDevices(), nil, Hooks{})

	require.NoError(t, c.Start(context.Background(), Setup{}))
	defer c.Stop()

	assert.ErrorIs(t, c.Start(context.Background(), Setup{}), ErrAlreadyActive)
}

func TestSession_ToolCallsMutateStateAndAreAnswered(t *testing.T) {
	conn := newFakeConn()
	state := tools.NewState(nil, nil, nil)
	dispatcher := tools.NewDispatcher(state, nil, nil)
	c := newTestController(&fakeDialer{conn: conn}, newStubDevices(), dispatcher, Hooks{})

	require.NoError(t, c.Start(context.Background(), Setup{Voice: "Zephyr"}))
	defer c.Stop()

	conn.in <- []Message{{Kind: KindToolCall, Calls: []tools.Call{
		{ID: "call-1", Name: tools.NameAddPatient, Args: map[string]any{"name": "Mary", "age": 72.0, "condition": "diabetes"}},
	}}}
	conn.in <- []Message{{Kind: KindToolCall, Calls: []tools.Call{
		{ID: "call-2", Name: tools.NameAddMedicine, Args: map[string]any{
			"patientName": "mary", "medicineName": "Metformin", "dosage": "1 tablet", "schedule": "08:00", "stock": 0.0,
		}},
		{ID: "call-3", Name: tools.NameAddMedicine, Args: map[string]any{"patientName": "Zzyx"}},
	}}}

	require.Eventually(t, func() bool { return len(conn.allResponses()) == 3 }, 2*time.Second, time.Millisecond)

	responses := conn.allResponses()
	assert.Equal(t, "call-1", responses[0].ID)
	assert.Equal(t, tools.NameAddPatient, responses[0].Name)
	assert.Equal(t, true, responses[0].Response["success"])
	assert.Equal(t, "call-2", responses[1].ID)
	assert.Equal(t, true, responses[1].Response["success"])
	assert.Equal(t, "call-3", responses[2].ID)
	assert.Equal(t, false, responses[2].Response["success"])

	patients := state.Patients()
	meds := state.Medicines()
	require.Len(t, patients, 1)
	require.Len(t, meds, 1)
	assert.Equal(t, patients[0].ID, meds[0].PatientID)
	assert.Equal(t, tools.DefaultStock, meds[0].Stock)
}

func TestSession_TranscriptTurnsAndBound(t *testing.T) {
	conn := newFakeConn()
	var mu sync.Mutex
	var last []Turn
	c := newTestController(&fakeDialer{conn: conn}, newStubDevices(), nil, Hooks{
		OnTurns: func(turns []Turn) {
			mu.Lock()
			last = turns
			mu.Unlock()
		},
	})

	require.NoError(t, c.Start(context.Background(), Setup{}))
	defer c.Stop()

	conn.in <- []Message{
		{Kind: KindInputTranscript, Text: "Add a patient "},
		{Kind: KindInputTranscript, Text: "named John"},
		{Kind: KindOutputTranscript, Text: "Okay, John is registered"},
		{Kind: KindTurnComplete},
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(last) == 2
	}, 2*time.Second, time.Millisecond)

	mu.Lock()
	assert.Equal(t, Turn{Role: RoleUser, Text: "Add a patient named John"}, last[0])
	assert.Equal(t, Turn{Role: RoleAssistant, Text: "Okay, John is registered"}, last[1])
	mu.Unlock()

	for i := 0; i < 8; i++ {
		conn.in <- []Message{
			{Kind: KindInputTranscript, Text: "hi"},
			{Kind: KindOutputTranscript, Text: "hello"},
			{Kind: KindTurnComplete},
		}
	}
	require.Eventually(t, func() bool {
		turns := c.Transcript()
		return len(turns) == MaxTurns && turns[0].Role == RoleUser && turns[0].Text == "hi"
	}, 2*time.Second, time.Millisecond)
}

func TestSession_AudioAndInterrupt(t *testing.T) {
	conn := newFakeConn()
	devs := newStubDevices()
	c := newTestController(&fakeDialer{conn: conn}, devs, nil, Hooks{})

	require.NoError(t, c.Start(context.Background(), Setup{}))
	defer c.Stop()

	chunk := make([]byte, 4800)
	conn.in <- []Message{{Kind: KindAudio, Audio: chunk}, {Kind: KindAudio, Audio: chunk}}
	require.Eventually(t, func() bool {
		scheduled, _, _ := devs.playback.counts()
		return scheduled == 2
	}, 2*time.Second, time.Millisecond)

	conn.in <- []Message{{Kind: KindInterrupted}}
	require.Eventually(t, func() bool {
		_, stopped, _ := devs.playback.counts()
		return stopped == 2
	}, 2*time.Second, time.Millisecond)
}

func TestStop_ReleasesEverythingAndWalksStates(t *testing.T) {
	conn := newFakeConn()
	devs := newStubDevices()
	log := &stateLog{}
	c := newTestController(&fakeDialer{conn: conn}, devs, nil, Hooks{OnState: log.record})

	require.NoError(t, c.Start(context.Background(), Setup{}))
	require.NoError(t, c.Stop())

	assert.Equal(t, StateIdle, c.State())
	assert.NoError(t, c.Err())
	assert.True(t, conn.isClosed())
	_, _, closed := devs.playback.counts()
	assert.True(t, closed)
	assert.Equal(t, []State{StateConnecting, StateActive, StateClosing, StateIdle}, log.all())

	// Stop en Idle no hace nada
	assert.NoError(t, c.Stop())
}

func TestSession_RemoteCloseEndsWithoutError(t *testing.T) {
	conn := newFakeConn()
	c := newTestController(&fakeDialer{conn: conn}, newStubDevices(), nil, Hooks{})

	require.NoError(t, c.Start(context.Background(), Setup{}))
	close(conn.in)

	waitIdle(t, c)
	assert.NoError(t, c.Err())
	assert.True(t, conn.isClosed())
}

func TestSession_ToolResponseFailureEndsSession(t *testing.T) {
	conn := newFakeConn()
	conn.sendToolErr = errors.New("broken pipe")
	errCh := make(chan error, 1)
	c := newTestController(&fakeDialer{conn: conn}, newStubDevices(), tools.NewDispatcher(nil, nil, nil), Hooks{
		OnError: func(err error) { errCh <- err },
	})

	require.NoError(t, c.Start(context.Background(), Setup{}))
	conn.in <- []Message{{Kind: KindToolCall, Calls: []tools.Call{{ID: "x", Name: tools.NameListStatus}}}}

	waitIdle(t, c)
	require.Error(t, c.Err())
	assert.Contains(t, c.Err().Error(), "broken pipe")
	select {
	case err := <-errCh:
		assert.Contains(t, err.Error(), "broken pipe")
	case <-time.After(time.Second):
		t.Fatal("OnError was not called")
	}
}

func TestSession_HostContextCancelTearsDown(t *testing.T) {
	conn := newFakeConn()
	c := newTestController(&fakeDialer{conn: conn}, newStubDevices(), nil, Hooks{})

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, c.Start(ctx, Setup{}))
	cancel()

	waitIdle(t, c)
	assert.True(t, conn.isClosed())
	assert.NoError(t, c.Err())
}

func TestStop_DuringConnectCancelsPendingOpen(t *testing.T) {
	conn := newFakeConn()
	devs := newStubDevices()
	holding := devs.holdCapture()
	log := &stateLog{}
	var onErr sync.Mutex
	var reported []error
	c := newTestController(&fakeDialer{conn: conn}, devs, nil, Hooks{
		OnState: log.record,
		OnError: func(err error) {
			onErr.Lock()
			reported = append(reported, err)
			onErr.Unlock()
		},
	})

	startErr := make(chan error, 1)
	go func() { startErr <- c.Start(context.Background(), Setup{}) }()

	select {
	case <-holding:
	case <-time.After(2 * time.Second):
		t.Fatal("capture was never opened")
	}

	stopped := make(chan error, 1)
	go func() { stopped <- c.Stop() }()
	select {
	case err := <-stopped:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return while connecting")
	}
	assert.Equal(t, StateIdle, c.State())

	select {
	case err := <-startErr:
		assert.ErrorIs(t, err, ErrStopped)
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return")
	}
	assert.NoError(t, c.Err())
	assert.False(t, conn.isClosed())
	onErr.Lock()
	assert.Empty(t, reported)
	onErr.Unlock()
	assert.Equal(t, []State{StateConnecting, StateClosing, StateIdle}, log.all())

	// el controller queda usable
	devs.release()
	require.NoError(t, c.Start(context.Background(), Setup{}))
	assert.Equal(t, StateActive, c.State())
	require.NoError(t, c.Stop())
}

func TestSession_MicrophoneClosedEndsWithError(t *testing.T) {
	conn := newFakeConn()
	devs := newStubDevices()
	errCh := make(chan error, 1)
	c := newTestController(&fakeDialer{conn: conn}, devs, nil, Hooks{
		OnError: func(err error) { errCh <- err },
	})

	require.NoError(t, c.Start(context.Background(), Setup{}))
	require.NoError(t, devs.capture.Close())

	waitIdle(t, c)
	assert.ErrorIs(t, c.Err(), ErrMicrophoneClosed)
	assert.True(t, conn.isClosed())
	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrMicrophoneClosed)
		assert.Equal(t, "The microphone stopped. Start the assistant again.", UserMessage(err))
	case <-time.After(time.Second):
		t.Fatal("OnError was not called")
	}
}
