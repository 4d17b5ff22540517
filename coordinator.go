package astigesture

import (
	"context"
	"sync"
	"time"

	"github.com/asticode/go-astilog"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Loop names
const (
	LoopGesture = "gesture"
	LoopVoice   = "voice"
)

// Coordinator defaults
const (
	DefaultFramePeriod   = time.Second / 30
	DefaultListenPause   = 100 * time.Millisecond
	DefaultListenTimeout = 3 * time.Second
	DefaultPhraseLimit   = 5 * time.Second
)

// Coordinator errors
var (
	ErrAlreadyRunning  = errors.New("astigesture: coordinator is already running")
	ErrLoopUnavailable = errors.New("astigesture: loop is unavailable")
	ErrUnknownLoop     = errors.New("astigesture: unknown loop")
)

// CoordinatorOptions represents coordinator options
type CoordinatorOptions struct {
	Classifier      *Classifier
	Dispatcher      *Dispatcher
	Extractor       LandmarkExtractor
	FramePeriod     time.Duration
	Frames          FrameSource
	GestureEnabled  bool
	ListenPause     time.Duration
	ListenTimeout   time.Duration
	Mapper          *PhraseMapper
	OnGesture       func(e GestureEvent)
	PhraseLimit     time.Duration
	Recognizer      Recognizer
	ResetOnHandLost bool
	SmoothingSize   int
	Stats           *Stats
	VoiceEnabled    bool
}

// Coordinator owns the gesture and voice loops feeding the dispatcher
type Coordinator struct {
	cancel  context.CancelFunc
	gesture *toggle
	m       sync.Mutex // Locks cancel and stopped
	o       CoordinatorOptions
	stopped bool
	voice   *toggle
}

// CoordinatorStatus represents the coordinator status. A loop is only reported as on when it is
// both switched on and available.
type CoordinatorStatus struct {
	Loops   map[string]bool `json:"loops"`
	Running bool            `json:"running"`
}

// NewCoordinator creates a new coordinator
func NewCoordinator(o CoordinatorOptions) *Coordinator {
	// Defaults
	if o.Classifier == nil {
		o.Classifier = NewClassifier(nil, ClassifierOptions{Threshold: DefaultGestureThreshold})
	}
	if o.FramePeriod <= 0 {
		o.FramePeriod = DefaultFramePeriod
	}
	if o.ListenPause < 0 {
		o.ListenPause = 0
	} else if o.ListenPause == 0 {
		o.ListenPause = DefaultListenPause
	}
	if o.ListenTimeout <= 0 {
		o.ListenTimeout = DefaultListenTimeout
	}
	if o.Mapper == nil {
		o.Mapper = NewPhraseMapper(DefaultPhrases...)
	}
	if o.PhraseLimit <= 0 {
		o.PhraseLimit = DefaultPhraseLimit
	}
	if o.Stats == nil {
		o.Stats = NewStats()
	}
	return &Coordinator{
		gesture: newToggle(o.GestureEnabled),
		o:       o,
		voice:   newToggle(o.VoiceEnabled),
	}
}

// Mapper returns the phrase mapper
func (c *Coordinator) Mapper() *PhraseMapper { return c.o.Mapper }

// Stats returns the stats
func (c *Coordinator) Stats() *Stats { return c.o.Stats }

// Run runs both loops until the context is done, Stop is called or a loop fails fatally
func (c *Coordinator) Run(ctx context.Context) (err error) {
	// No dispatcher
	if c.o.Dispatcher == nil {
		err = errors.New("astigesture: no dispatcher provided")
		return
	}

	// Lock
	c.m.Lock()

	// Already running
	if c.cancel != nil {
		c.m.Unlock()
		err = ErrAlreadyRunning
		return
	}

	// Stop has already been requested
	if c.stopped {
		c.m.Unlock()
		astilog.Info("astigesture: coordinator has been stopped, not running loops")
		return
	}

	// Create context
	ctx, c.cancel = context.WithCancel(ctx)
	c.m.Unlock()

	// Make sure to reset the context
	defer func() {
		c.m.Lock()
		c.cancel()
		c.cancel = nil
		c.m.Unlock()
	}()

	// Create group
	g, gctx := errgroup.WithContext(ctx)

	// Gesture loop
	if c.available(LoopGesture) {
		astilog.Info("astigesture: starting gesture loop")
		g.Go(func() error { return c.gestureLoop(gctx) })
	}

	// Voice loop
	if c.available(LoopVoice) {
		astilog.Info("astigesture: starting voice loop")
		g.Go(func() error { return c.voiceLoop(gctx) })
	}

	// Wait
	if err = g.Wait(); err != nil {
		err = errors.Wrap(err, "astigesture: running loops failed")
		return
	}
	astilog.Info("astigesture: loops have stopped")
	return
}

// Stop stops both loops. A stopped coordinator can't be run again.
func (c *Coordinator) Stop() {
	c.m.Lock()
	defer c.m.Unlock()
	c.stopped = true
	if c.cancel != nil {
		c.cancel()
	}
}

// SetLoopEnabled switches a loop on or off
func (c *Coordinator) SetLoopEnabled(name string, on bool) (err error) {
	// Get toggle
	var t *toggle
	switch name {
	case LoopGesture:
		t = c.gesture
	case LoopVoice:
		t = c.voice
	default:
		err = errors.Wrapf(ErrUnknownLoop, "astigesture: loop %s doesn't exist", name)
		return
	}

	// Loop is unavailable
	if on && !c.available(name) {
		err = errors.Wrapf(ErrLoopUnavailable, "astigesture: no input for loop %s", name)
		return
	}

	// Set
	astilog.Infof("astigesture: switching %s loop on: %v", name, on)
	t.set(on)
	return
}

// Status returns the coordinator status
func (c *Coordinator) Status() CoordinatorStatus {
	c.m.Lock()
	running := c.cancel != nil
	c.m.Unlock()
	return CoordinatorStatus{
		Loops: map[string]bool{
			LoopGesture: c.gesture.isOn() && c.available(LoopGesture),
			LoopVoice:   c.voice.isOn() && c.available(LoopVoice),
		},
		Running: running,
	}
}

// available checks whether the loop has its inputs
func (c *Coordinator) available(name string) bool {
	switch name {
	case LoopGesture:
		return c.o.Frames != nil && c.o.Extractor != nil
	case LoopVoice:
		return c.o.Recognizer != nil
	}
	return false
}

func (c *Coordinator) gestureLoop(ctx context.Context) (err error) {
	// Create smoothing buffer
	b := NewSmoothingBuffer(c.o.SmoothingSize)

	for {
		// Check context
		if ctx.Err() != nil {
			return
		}

		// Loop is switched off
		if !c.gesture.isOn() {
			b.Reset()
			if c.gesture.wait(ctx) != nil {
				return
			}
			continue
		}

		// Process frame
		if err = c.processFrame(ctx, b); err != nil {
			err = errors.Wrap(err, "astigesture: processing frame failed")
			return
		}
	}
}

func (c *Coordinator) processFrame(ctx context.Context, b *SmoothingBuffer) (err error) {
	// Read frame
	start := time.Now()
	f, rerr := c.o.Frames.ReadFrame(ctx)
	if rerr != nil {
		// Stop has been requested
		if ctx.Err() != nil {
			return
		}

		// Log
		if !isPerceptionError(rerr) {
			astilog.Debug(errors.Wrap(rerr, "astigesture: reading frame failed"))
		}

		// Wait for the next frame
		sleep(ctx, c.o.FramePeriod)
		return
	}
	defer f.Close()

	// Make sure to record the frame time
	defer func() { c.o.Stats.AddFrameTime(time.Since(start)) }()

	// Extract landmarks
	hs, eerr := c.o.Extractor.Extract(ctx, f)
	if eerr != nil {
		if ctx.Err() == nil {
			astilog.Debug(errors.Wrap(eerr, "astigesture: extracting landmarks failed"))
		}
		return
	}

	// No hand
	if len(hs) == 0 {
		if c.o.ResetOnHandLost {
			b.Reset()
		}
		return
	}

	// Classify first hand only
	var cl Classification
	if cl, err = c.o.Classifier.Classify(hs[0].Features()); err != nil {
		err = errors.Wrap(err, "astigesture: classifying failed")
		return
	}

	// Smooth
	e := GestureEvent{
		Confidence: cl.Confidence,
		Label:      b.Push(cl.Label),
		Time:       time.Now(),
	}

	// Custom
	if c.o.OnGesture != nil {
		c.o.OnGesture(e)
	}

	// No gesture
	if e.Label == LabelNone {
		return
	}

	// Dispatch
	c.o.Stats.AddGesture(e.Label)
	c.o.Dispatcher.DispatchGesture(ctx, e)
	return
}

func (c *Coordinator) voiceLoop(ctx context.Context) (err error) {
	for {
		// Check context
		if ctx.Err() != nil {
			return
		}

		// Loop is switched off
		if !c.voice.isOn() {
			if c.voice.wait(ctx) != nil {
				return
			}
			continue
		}

		// Listen
		c.listen(ctx)

		// Pause
		sleep(ctx, c.o.ListenPause)
	}
}

func (c *Coordinator) listen(ctx context.Context) {
	// Recognize
	text, err := c.o.Recognizer.Recognize(ctx, c.o.ListenTimeout, c.o.PhraseLimit)
	if err != nil {
		if ctx.Err() == nil && !isPerceptionError(err) {
			astilog.Error(errors.Wrap(err, "astigesture: recognizing speech failed"))
		}
		return
	}

	// Nothing was said
	if text == "" {
		return
	}

	// Create event
	e := VoiceEvent{
		Phrase: text,
		Time:   time.Now(),
	}

	// Resolve
	if a, ok := c.o.Mapper.Resolve(text); ok {
		e.Action = ActionTokenPtr(a)
		c.o.Stats.AddVoiceCommand(a)
	}

	// Dispatch
	c.o.Dispatcher.DispatchVoice(ctx, e)
}

// sleep waits for d or for the context to be done
func sleep(ctx context.Context, d time.Duration) {
	// Nothing to wait
	if d <= 0 {
		return
	}

	// Wait
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
