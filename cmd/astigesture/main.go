package main

import (
	"flag"
	"time"

	"github.com/asticode/go-astigesture"
	"github.com/asticode/go-astigesture/pkg/deepspeech"
	"github.com/asticode/go-astigesture/pkg/gocv"
	"github.com/asticode/go-astigesture/pkg/handtracker"
	"github.com/asticode/go-astigesture/pkg/knn"
	"github.com/asticode/go-astigesture/pkg/listen"
	"github.com/asticode/go-astigesture/pkg/portaudio"
	"github.com/asticode/go-astigesture/pkg/robotgo"
	"github.com/asticode/go-astigesture/pkg/speak"
	"github.com/asticode/go-astilog"
	"github.com/asticode/go-astitools/config"
	"github.com/asticode/go-astitools/worker"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Flags
var (
	configPath = flag.String("c", "", "the config path")
)

func main() {
	// Parse flags
	flag.Parse()
	astilog.FlagInit()

	// Create configuration
	c := newConfiguration()

	// Create worker
	w := astiworker.NewWorker()

	// Handle signals
	w.HandleSignals()

	// Create speaker
	var s astigesture.Speaker
	if c.Voice.Feedback {
		sp := astispeak.New(c.Speaker)
		if err := sp.Init(); err != nil {
			astilog.Fatal(errors.Wrap(err, "main: initializing speaker failed"))
		}
		defer sp.Close()
		s = sp
	}

	// Create actions
	as := astirobotgo.New(c.Executor).Actions().Merge(astigesture.FeedbackActions(s))

	// Create dispatcher
	d, err := astigesture.NewDispatcher(astigesture.DispatcherOptions{
		Cooldown:  c.Dispatcher.Cooldown,
		Cooldowns: c.Dispatcher.cooldowns(),
		Executor:  as,
		Gestures:  c.Gesture.mappings(),
	})
	if err != nil {
		astilog.Fatal(errors.Wrap(err, "main: creating dispatcher failed"))
	}

	// Create mapper
	m, err := newMapper(c, d)
	if err != nil {
		astilog.Fatal(errors.Wrap(err, "main: creating mapper failed"))
	}

	// Create stats
	st := astigesture.NewStats()

	// Create metrics
	r := prometheus.NewRegistry()
	mt, err := astigesture.NewMetrics(r, st)
	if err != nil {
		astilog.Fatal(errors.Wrap(err, "main: creating metrics failed"))
	}

	// Create feed
	f := astigesture.NewFeed()
	defer f.Close()

	// Add dispatcher handlers
	d.On(astigesture.DispatchConditions{}, mt.HandleOutcome)
	d.On(astigesture.DispatchConditions{}, f.HandleOutcome)

	// Create coordinator options
	o := astigesture.CoordinatorOptions{
		Classifier:      astigesture.NewClassifier(newModel(c), c.Gesture.Classifier),
		Dispatcher:      d,
		GestureEnabled:  !c.Gesture.Disabled,
		ListenPause:     c.Voice.ListenPause,
		ListenTimeout:   c.Voice.ListenTimeout,
		Mapper:          m,
		OnGesture:       f.HandleGesture,
		PhraseLimit:     c.Voice.PhraseLimit,
		ResetOnHandLost: c.Gesture.ResetOnHandLost,
		SmoothingSize:   c.Gesture.SmoothingSize,
		Stats:           st,
		VoiceEnabled:    !c.Voice.Disabled,
	}

	// Create camera
	if !c.Gesture.Disabled {
		if cam, err := astigocv.New(c.Camera); err != nil {
			astilog.Error(errors.Wrap(err, "main: creating camera failed, gesture control is unavailable"))
		} else {
			defer cam.Close()
			ht := astihandtracker.New(c.HandTracker)
			defer ht.Close()
			o.Extractor = ht
			o.Frames = cam
		}
	}

	// Create microphone
	if !c.Voice.Disabled {
		// Initialize portaudio
		pa := astiportaudio.New()
		if err = pa.Initialize(); err != nil {
			astilog.Fatal(errors.Wrap(err, "main: initializing portaudio failed"))
		}
		defer pa.Close()
		astilog.Debug(pa.Info())

		// Create stream
		if ps, err := pa.NewDefaultStream(c.Microphone); err != nil {
			astilog.Error(errors.Wrap(err, "main: creating stream failed, voice control is unavailable"))
		} else {
			defer ps.Close()
			ds := deepspeech.New(c.DeepSpeech)
			defer ds.Close()
			l := astilisten.New(ps, ds, c.Listener)

			// Calibrate for ambient noise
			if c.Voice.CalibrationDuration > 0 {
				astilog.Infof("main: calibrating microphone for %s, please stay quiet", c.Voice.CalibrationDuration)
				if _, err = l.Calibrate(w.Context(), c.Voice.CalibrationDuration); err != nil {
					astilog.Error(errors.Wrap(err, "main: calibrating microphone failed"))
				}
			}
			o.Recognizer = l
		}
	}

	// Create coordinator
	co := astigesture.NewCoordinator(o)

	// Run coordinator
	t := w.NewTask()
	go func() {
		// Make sure to let the worker know when the task is done
		defer t.Done()

		// Run
		if err := co.Run(w.Context()); err != nil {
			astilog.Error(errors.Wrap(err, "main: running coordinator failed"))
			w.Stop()
		}
	}()

	// Greet
	if err = as.Execute(w.Context(), astigesture.ActionGreeting); err != nil {
		astilog.Error(errors.Wrap(err, "main: greeting failed"))
	}

	// Serve
	w.Serve(c.Server.Addr, astigesture.NewAPI(astigesture.APIOptions{
		CommandsPath: c.CommandsPath,
		Coordinator:  co,
		Dispatcher:   d,
		Feed:         f,
		Gatherer:     r,
		Server:       c.Server,
	}).Handler())

	// Blocking pattern
	w.Wait()
}

func newModel(c *Configuration) astigesture.Model {
	// No model
	if c.Gesture.ModelDirPath == "" {
		astilog.Info("main: no gesture model dir path provided, gestures won't be recognized")
		return nil
	}

	// Load samples
	m := astiknn.New(c.Gesture.K)
	if err := m.LoadCSVDir(c.Gesture.ModelDirPath); err != nil {
		astilog.Error(errors.Wrap(err, "main: loading gesture model failed"))
		return nil
	}

	// No samples
	if m.Len() == 0 {
		astilog.Infof("main: no gesture samples in %s, gestures won't be recognized", c.Gesture.ModelDirPath)
		return nil
	}
	astilog.Infof("main: gesture model loaded with %d samples and labels %v", m.Len(), m.Labels())
	return m
}

func newMapper(c *Configuration, d *astigesture.Dispatcher) (m *astigesture.PhraseMapper, err error) {
	// Get phrases
	ps := c.Voice.Phrases
	if len(ps) == 0 {
		ps = astigesture.DefaultPhrases
	}

	// Load custom commands
	var cs []astigesture.Phrase
	if c.CommandsPath != "" {
		if cs, err = astigesture.LoadCommands(c.CommandsPath); err != nil {
			err = errors.Wrap(err, "main: loading commands failed")
			return
		}
	}
	ps = append(append([]astigesture.Phrase{}, ps...), cs...)

	// Check actions
	for _, p := range ps {
		if err = d.CheckActions(p.Action); err != nil {
			err = errors.Wrapf(err, "main: checking action of phrase %s failed", p.Phrase)
			return
		}
	}

	// Create mapper
	m = astigesture.NewPhraseMapper(ps...)
	return
}

// Configuration represents a configuration
type Configuration struct {
	Camera       astigocv.Options            `toml:"camera"`
	CommandsPath string                      `toml:"commands_path"`
	DeepSpeech   deepspeech.Options          `toml:"deepspeech"`
	Dispatcher   DispatcherConfiguration     `toml:"dispatcher"`
	Executor     astirobotgo.Options         `toml:"executor"`
	Gesture      GestureConfiguration        `toml:"gesture"`
	HandTracker  astihandtracker.Options     `toml:"hand_tracker"`
	Listener     astilisten.Options          `toml:"listener"`
	Microphone   astiportaudio.StreamOptions `toml:"microphone"`
	Server       astigesture.ServerOptions   `toml:"server"`
	Speaker      astispeak.Options           `toml:"speaker"`
	Voice        VoiceConfiguration          `toml:"voice"`
}

// DispatcherConfiguration represents the dispatcher configuration
type DispatcherConfiguration struct {
	Cooldown  time.Duration            `toml:"cooldown"` // Negative disables the cooldown
	Cooldowns map[string]time.Duration `toml:"cooldowns"`
}

func (c DispatcherConfiguration) cooldowns() (cs map[astigesture.ActionToken]time.Duration) {
	cs = make(map[astigesture.ActionToken]time.Duration)
	for k, v := range c.Cooldowns {
		cs[astigesture.ActionToken(k)] = v
	}
	return
}

// GestureConfiguration represents the gesture configuration
type GestureConfiguration struct {
	Classifier      astigesture.ClassifierOptions `toml:"classifier"`
	Disabled        bool                          `toml:"disabled"`
	K               int                           `toml:"k"`
	Mappings        map[string]string             `toml:"mappings"`
	ModelDirPath    string                        `toml:"model_dir_path"`
	ResetOnHandLost bool                          `toml:"reset_on_hand_lost"`
	SmoothingSize   int                           `toml:"smoothing_size"`
}

func (c GestureConfiguration) mappings() (ms map[string]astigesture.ActionToken) {
	// Default
	if len(c.Mappings) == 0 {
		return astigesture.DefaultGestures
	}

	// Convert
	ms = make(map[string]astigesture.ActionToken)
	for k, v := range c.Mappings {
		ms[k] = astigesture.ActionToken(v)
	}
	return
}

// VoiceConfiguration represents the voice configuration
type VoiceConfiguration struct {
	CalibrationDuration time.Duration        `toml:"calibration_duration"` // Negative disables calibration
	Disabled            bool                 `toml:"disabled"`
	Feedback            bool                 `toml:"feedback"`
	ListenPause         time.Duration        `toml:"listen_pause"`
	ListenTimeout       time.Duration        `toml:"listen_timeout"`
	PhraseLimit         time.Duration        `toml:"phrase_limit"`
	Phrases             []astigesture.Phrase `toml:"phrases"`
}

// newConfiguration creates a new configuration
func newConfiguration() *Configuration {
	// Global config
	gc := &Configuration{
		Camera: astigocv.Options{
			FPS:    astigocv.DefaultFPS,
			Height: astigocv.DefaultHeight,
			Mirror: true,
			Width:  astigocv.DefaultWidth,
		},
		CommandsPath: "config/commands.json",
		Dispatcher: DispatcherConfiguration{
			Cooldown: astigesture.DefaultCooldown,
		},
		Gesture: GestureConfiguration{
			Classifier: astigesture.ClassifierOptions{
				Threshold:  astigesture.DefaultGestureThreshold,
				Vocabulary: astigesture.DefaultGestureVocabulary,
			},
			K:             astiknn.DefaultK,
			ModelDirPath:  "models/training_data",
			SmoothingSize: astigesture.DefaultSmoothingSize,
		},
		HandTracker: astihandtracker.Options{
			MaxHands: astihandtracker.DefaultMaxHands,
			Timeout:  astihandtracker.DefaultTimeout,
			URL:      astihandtracker.DefaultURL,
		},
		Listener: astilisten.Options{
			ArchiveDirPath:     "",
			MaxSilenceLevel:    astilisten.DefaultMaxSilenceLevel,
			SilenceMinDuration: astilisten.DefaultSilenceMinDuration,
		},
		Microphone: astiportaudio.StreamOptions{
			BitDepth:         astiportaudio.DefaultBitDepth,
			BufferLength:     astiportaudio.DefaultBufferLength,
			NumInputChannels: 1,
			SampleRate:       astiportaudio.DefaultSampleRate,
		},
		Server: astigesture.ServerOptions{
			Addr: "127.0.0.1:4000",
		},
		Voice: VoiceConfiguration{
			CalibrationDuration: astilisten.DefaultCalibrationDuration,
			Feedback:            true,
			ListenPause:         astigesture.DefaultListenPause,
			ListenTimeout:       astigesture.DefaultListenTimeout,
			PhraseLimit:         astigesture.DefaultPhraseLimit,
		},
	}

	// Flag config
	fc := &Configuration{}

	// Build configuration
	c, err := asticonfig.New(gc, *configPath, fc)
	if err != nil {
		astilog.Fatal(errors.Wrap(err, "main: building configuration failed"))
	}
	return c.(*Configuration)
}
