package astilisten

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/asticode/go-astigesture"
	"github.com/asticode/go-astikit"
	"github.com/asticode/go-astilog"
	"github.com/pkg/errors"
)

// Listener defaults
const (
	DefaultCalibrationDuration = time.Second
	DefaultMaxSilenceLevel     = 0.02
	DefaultSilenceMinDuration  = 800 * time.Millisecond
)

// Ambient noise is multiplied by this ratio to get the max silence level
const calibrationRatio = 1.5

// Stream represents an audio input stream
type Stream interface {
	BitDepth() int
	NumChannels() int
	Read() ([]int, error)
	SampleRate() int
	Start() error
	Stop() error
}

// Parser represents an object capable of turning speech samples into text
type Parser interface {
	Parse(samples []int, bitDepth, numChannels, sampleRate int) (string, error)
}

// Options represents listener options
type Options struct {
	ArchiveDirPath     string        `toml:"archive_dir_path"`
	MaxSilenceLevel    float64       `toml:"max_silence_level"` // Fraction of full scale
	SilenceMinDuration time.Duration `toml:"silence_min_duration"`
}

// Listener captures one utterance at a time and turns it into text
type Listener struct {
	m sync.Mutex // Locks o.MaxSilenceLevel
	o Options
	p Parser
	s Stream
}

// New creates a new listener
func New(s Stream, p Parser, o Options) *Listener {
	// Defaults
	if o.MaxSilenceLevel <= 0 {
		o.MaxSilenceLevel = DefaultMaxSilenceLevel
	}
	if o.SilenceMinDuration <= 0 {
		o.SilenceMinDuration = DefaultSilenceMinDuration
	}
	return &Listener{
		o: o,
		p: p,
		s: s,
	}
}

// Recognize implements the astigesture.Recognizer interface
func (l *Listener) Recognize(ctx context.Context, timeout, phraseLimit time.Duration) (text string, err error) {
	// Capture
	var ss []int
	if ss, err = l.capture(ctx, timeout, phraseLimit); err != nil {
		return
	}

	// Archive
	if l.o.ArchiveDirPath != "" {
		var path string
		if path, err = archive(l.o.ArchiveDirPath, time.Now(), ss, l.s.BitDepth(), l.s.NumChannels(), l.s.SampleRate()); err != nil {
			astilog.Error(errors.Wrap(err, "astilisten: archiving utterance failed"))
			err = nil
		} else {
			astilog.Debugf("astilisten: utterance archived to %s", path)
		}
	}

	// Parse
	start := time.Now()
	if text, err = l.p.Parse(ss, l.s.BitDepth(), l.s.NumChannels(), l.s.SampleRate()); err != nil {
		err = errors.Wrap(err, "astilisten: parsing speech failed")
		return
	}
	astilog.Debugf("astilisten: parsed %d samples in %s", len(ss), time.Since(start))

	// Nothing was understood
	if text = strings.TrimSpace(text); text == "" {
		err = astigesture.ErrUnrecognized
		return
	}
	return
}

// capture returns the samples of one utterance. It fails with astigesture.ErrListenTimeout if
// speech didn't start within timeout and stops capturing once phraseLimit is reached.
func (l *Listener) capture(ctx context.Context, timeout, phraseLimit time.Duration) (ss []int, err error) {
	// Start stream
	if err = l.s.Start(); err != nil {
		err = errors.Wrap(err, "astilisten: starting stream failed")
		return
	}

	// Make sure to stop the stream
	defer func() {
		if err := l.s.Stop(); err != nil {
			astilog.Error(errors.Wrap(err, "astilisten: stopping stream failed"))
		}
	}()

	// Get max silence level
	maxSilenceLevel := l.MaxSilenceLevel()

	// Loop
	var previous []int
	var silence, spoken, waited time.Duration
	for {
		// Check context
		if err = ctx.Err(); err != nil {
			return
		}

		// Read
		var b []int
		if b, err = l.s.Read(); err != nil {
			err = errors.Wrap(err, "astilisten: reading stream failed")
			return
		}
		d := l.duration(len(b))
		silent := l.level(b) <= maxSilenceLevel

		// Speech has not started yet
		if ss == nil {
			if silent {
				waited += d
				if waited >= timeout {
					err = astigesture.ErrListenTimeout
					return
				}
				previous = b
				continue
			}

			// Keep the previous buffer so that the first syllable is not truncated
			ss = append(ss, previous...)
		}

		// Append
		ss = append(ss, b...)
		spoken += d
		if silent {
			silence += d
		} else {
			silence = 0
		}

		// End of utterance
		if silence >= l.o.SilenceMinDuration || spoken >= phraseLimit {
			return
		}
	}
}

// MaxSilenceLevel returns the level under which audio is considered silent
func (l *Listener) MaxSilenceLevel() float64 {
	l.m.Lock()
	defer l.m.Unlock()
	return l.o.MaxSilenceLevel
}

// Calibration represents a calibration result
type Calibration struct {
	MaxAmbientLevel         float64 `json:"max_ambient_level"`
	MaxSilenceLevel         float64 `json:"max_silence_level"`
	PreviousMaxSilenceLevel float64 `json:"previous_max_silence_level"`
}

// Calibrate listens to ambient noise for d and derives the max silence level from the loudest
// chunk. The max silence level is left untouched when nothing was heard.
func (l *Listener) Calibrate(ctx context.Context, d time.Duration) (c Calibration, err error) {
	// Default duration
	if d <= 0 {
		d = DefaultCalibrationDuration
	}

	// Start stream
	if err = l.s.Start(); err != nil {
		err = errors.Wrap(err, "astilisten: starting stream failed")
		return
	}

	// Make sure to stop the stream
	defer func() {
		if err := l.s.Stop(); err != nil {
			astilog.Error(errors.Wrap(err, "astilisten: stopping stream failed"))
		}
	}()

	// Loop
	var listened time.Duration
	for listened < d {
		// Check context
		if err = ctx.Err(); err != nil {
			return
		}

		// Read
		var b []int
		if b, err = l.s.Read(); err != nil {
			err = errors.Wrap(err, "astilisten: reading stream failed")
			return
		}

		// Nothing to process
		bd := l.duration(len(b))
		if bd <= 0 {
			err = errors.New("astilisten: stream returned no samples")
			return
		}
		listened += bd

		// Get max ambient level
		c.MaxAmbientLevel = math.Max(c.MaxAmbientLevel, l.level(b))
	}

	// Lock
	l.m.Lock()
	defer l.m.Unlock()

	// Update max silence level
	c.PreviousMaxSilenceLevel = l.o.MaxSilenceLevel
	c.MaxSilenceLevel = l.o.MaxSilenceLevel
	if c.MaxAmbientLevel > 0 {
		c.MaxSilenceLevel = calibrationRatio * c.MaxAmbientLevel
		l.o.MaxSilenceLevel = c.MaxSilenceLevel
	}
	astilog.Infof("astilisten: max silence level calibrated to %.4f with a max ambient level of %.4f", c.MaxSilenceLevel, c.MaxAmbientLevel)
	return
}

func (l *Listener) duration(n int) time.Duration {
	if l.s.SampleRate() <= 0 || l.s.NumChannels() <= 0 {
		return 0
	}
	return time.Duration(float64(n) / float64(l.s.NumChannels()) / float64(l.s.SampleRate()) * float64(time.Second))
}

// level returns the audio level of samples as a fraction of full scale
func (l *Listener) level(ss []int) float64 {
	if len(ss) == 0 || l.s.BitDepth() <= 0 {
		return 0
	}
	return astikit.PCMLevel(ss) / float64(int64(1)<<uint(l.s.BitDepth()-1))
}
