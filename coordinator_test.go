package astigesture

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockedFrame struct{}

func (mockedFrame) Close() error            { return nil }
func (mockedFrame) Encode() ([]byte, error) { return []byte("jpeg"), nil }

type mockedFrameSource struct {
	reads int32
}

func (s *mockedFrameSource) ReadFrame(ctx context.Context) (Frame, error) {
	atomic.AddInt32(&s.reads, 1)
	select {
	case <-time.After(time.Millisecond):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return mockedFrame{}, nil
}

type mockedExtractor struct {
	hs []Hand
}

func (e mockedExtractor) Extract(ctx context.Context, f Frame) ([]Hand, error) { return e.hs, nil }

type mockedRecognizer struct {
	m  sync.Mutex
	ts []string
}

func (r *mockedRecognizer) Recognize(ctx context.Context, timeout, phraseLimit time.Duration) (string, error) {
	// Pop
	r.m.Lock()
	if len(r.ts) > 0 {
		t := r.ts[0]
		r.ts = r.ts[1:]
		r.m.Unlock()
		return t, nil
	}
	r.m.Unlock()

	// Timeout
	select {
	case <-time.After(time.Millisecond):
	case <-ctx.Done():
		return "", ctx.Err()
	}
	return "", ErrListenTimeout
}

func newMockedHand(n int) (h Hand) {
	for idx := 0; idx < n; idx++ {
		h = append(h, Landmark{X: float64(idx)})
	}
	return
}

type coordinatorRun struct {
	cancel context.CancelFunc
	done   chan error
}

func runCoordinator(c *Coordinator) (r coordinatorRun) {
	var ctx context.Context
	ctx, r.cancel = context.WithCancel(context.Background())
	r.done = make(chan error, 1)
	go func() { r.done <- c.Run(ctx) }()
	return
}

func (r coordinatorRun) wait(t *testing.T) error {
	select {
	case err := <-r.done:
		return err
	case <-time.After(time.Second):
		t.Fatal("coordinator didn't stop")
	}
	return nil
}

func TestCoordinatorGesture(t *testing.T) {
	e := &mockedExecutor{}
	d, err := NewDispatcher(DispatcherOptions{Executor: e.actions(ActionCloseApplication, ActionConfirm, ActionMouseClick, ActionScreenshot, ActionStop, ActionVolumeUp)})
	require.NoError(t, err)
	var gs int32
	c := NewCoordinator(CoordinatorOptions{
		Classifier:     NewClassifier(mockedModel{confidence: 0.9, label: "thumbs_up"}, ClassifierOptions{Threshold: DefaultGestureThreshold}),
		Dispatcher:     d,
		Extractor:      mockedExtractor{hs: []Hand{newMockedHand(NumLandmarks)}},
		Frames:         &mockedFrameSource{},
		GestureEnabled: true,
		OnGesture:      func(GestureEvent) { atomic.AddInt32(&gs, 1) },
	})
	r := runCoordinator(c)
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&gs) >= 5 }, time.Second, time.Millisecond)
	r.cancel()
	assert.NoError(t, r.wait(t))
	assert.Equal(t, []ActionToken{ActionVolumeUp}, e.executed())
	assert.True(t, c.Stats().Snapshot().GestureCounts["thumbs_up"] >= 5)
	assert.False(t, c.Status().Running)
}

func TestCoordinatorInvalidFeatures(t *testing.T) {
	d, err := NewDispatcher(DispatcherOptions{Executor: Actions{}, Gestures: map[string]ActionToken{}})
	require.NoError(t, err)
	c := NewCoordinator(CoordinatorOptions{
		Dispatcher:     d,
		Extractor:      mockedExtractor{hs: []Hand{newMockedHand(5)}},
		Frames:         &mockedFrameSource{},
		GestureEnabled: true,
	})
	r := runCoordinator(c)
	defer r.cancel()
	assert.Equal(t, ErrInvalidFeatureLength, errors.Cause(r.wait(t)))
}

func TestCoordinatorVoice(t *testing.T) {
	e := &mockedExecutor{}
	d, err := NewDispatcher(DispatcherOptions{Executor: e.actions(ActionVolumeUp), Gestures: map[string]ActionToken{}})
	require.NoError(t, err)
	var outs []Outcome
	var m sync.Mutex
	d.On(DispatchConditions{}, func(o Outcome) {
		m.Lock()
		defer m.Unlock()
		outs = append(outs, o)
	})
	c := NewCoordinator(CoordinatorOptions{
		Dispatcher:   d,
		ListenPause:  -1,
		Recognizer:   &mockedRecognizer{ts: []string{"please volume up", "", "volume up", "make me a sandwich"}},
		VoiceEnabled: true,
	})
	r := runCoordinator(c)
	assert.Eventually(t, func() bool {
		m.Lock()
		defer m.Unlock()
		return len(outs) == 3
	}, time.Second, time.Millisecond)
	r.cancel()
	assert.NoError(t, r.wait(t))
	assert.Equal(t, []ActionToken{ActionVolumeUp}, e.executed())
	m.Lock()
	defer m.Unlock()
	assert.Equal(t, StatusExecuted, outs[0].Status)
	assert.Equal(t, StatusRejected, outs[1].Status)
	assert.Equal(t, StatusUnmapped, outs[2].Status)
	assert.Equal(t, 2, c.Stats().Snapshot().VoiceCounts[string(ActionVolumeUp)])
}

func TestCoordinatorLoops(t *testing.T) {
	d, err := NewDispatcher(DispatcherOptions{Executor: Actions{}, Gestures: map[string]ActionToken{}})
	require.NoError(t, err)
	fs := &mockedFrameSource{}
	c := NewCoordinator(CoordinatorOptions{
		Dispatcher: d,
		Extractor:  mockedExtractor{},
		Frames:     fs,
	})

	// Unknown loop
	assert.Equal(t, ErrUnknownLoop, errors.Cause(c.SetLoopEnabled("invalid", true)))

	// Disabled loop is parked
	r := runCoordinator(c)
	assert.Eventually(t, func() bool { return c.Status().Running }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&fs.reads))
	assert.Equal(t, CoordinatorStatus{Loops: map[string]bool{LoopGesture: false, LoopVoice: false}, Running: true}, c.Status())

	// Already running
	assert.Equal(t, ErrAlreadyRunning, c.Run(context.Background()))

	// Enable loop
	require.NoError(t, c.SetLoopEnabled(LoopGesture, true))
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&fs.reads) > 0 }, time.Second, time.Millisecond)
	assert.True(t, c.Status().Loops[LoopGesture])

	// Unavailable loop
	assert.Equal(t, ErrLoopUnavailable, errors.Cause(c.SetLoopEnabled(LoopVoice, true)))
	assert.NoError(t, c.SetLoopEnabled(LoopVoice, false))
	assert.False(t, c.Status().Loops[LoopVoice])

	// Stop
	c.Stop()
	assert.NoError(t, r.wait(t))
	r.cancel()
	assert.False(t, c.Status().Running)

	// Stopped coordinator doesn't run again
	reads := atomic.LoadInt32(&fs.reads)
	assert.NoError(t, c.Run(context.Background()))
	assert.Equal(t, reads, atomic.LoadInt32(&fs.reads))
}

func TestCoordinatorUnavailableLoops(t *testing.T) {
	d, err := NewDispatcher(DispatcherOptions{Executor: Actions{}, Gestures: map[string]ActionToken{}})
	require.NoError(t, err)
	c := NewCoordinator(CoordinatorOptions{
		Dispatcher:     d,
		GestureEnabled: true,
		VoiceEnabled:   true,
	})
	assert.Equal(t, CoordinatorStatus{Loops: map[string]bool{LoopGesture: false, LoopVoice: false}}, c.Status())
}

func TestCoordinatorStopBeforeRun(t *testing.T) {
	d, err := NewDispatcher(DispatcherOptions{Executor: Actions{}, Gestures: map[string]ActionToken{}})
	require.NoError(t, err)
	fs := &mockedFrameSource{}
	c := NewCoordinator(CoordinatorOptions{
		Dispatcher:     d,
		Extractor:      mockedExtractor{},
		Frames:         fs,
		GestureEnabled: true,
	})
	c.Stop()
	r := runCoordinator(c)
	defer r.cancel()
	assert.NoError(t, r.wait(t))
	assert.Equal(t, int32(0), atomic.LoadInt32(&fs.reads))
	assert.False(t, c.Status().Running)
}

func TestCoordinatorNoDispatcher(t *testing.T) {
	assert.Error(t, NewCoordinator(CoordinatorOptions{}).Run(context.Background()))
}
