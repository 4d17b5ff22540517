package astigesture

import (
	"fmt"

	"github.com/asticode/go-astilog"
	"github.com/pkg/errors"
)

// Landmark constants
const (
	NumLandmarks            = 21
	NumLandmarkDims         = 3
	FeatureLength           = NumLandmarks * NumLandmarkDims
	DefaultGestureThreshold = 0.8
)

// DefaultGestureVocabulary is the vocabulary of the default gesture model
var DefaultGestureVocabulary = []string{"fist", "palm", "thumbs_up", "peace", "ok", "point"}

// ErrInvalidFeatureLength is returned when a feature vector doesn't match the classifier
var ErrInvalidFeatureLength = errors.New("astigesture: invalid feature length")

// Landmark represents a 3D hand landmark
type Landmark struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Hand represents the landmarks of one detected hand
type Hand []Landmark

// Features flattens the hand into a feature vector
func (h Hand) Features() (fs []float64) {
	fs = make([]float64, 0, len(h)*NumLandmarkDims)
	for _, l := range h {
		fs = append(fs, l.X, l.Y, l.Z)
	}
	return
}

// Model represents an opaque pre-trained gesture model
type Model interface {
	Predict(features []float64) (label string, confidence float64, err error)
}

// Classification represents a classifier result
type Classification struct {
	Confidence float64 `json:"confidence"`
	Label      string  `json:"label"`
}

// ClassifierOptions represents classifier options
type ClassifierOptions struct {
	Threshold  float64  `toml:"threshold"`
	Vocabulary []string `toml:"vocabulary"`
}

// Classifier wraps an opaque model and degrades every model failure to "no gesture"
type Classifier struct {
	m Model
	o ClassifierOptions
	v map[string]bool
}

// NewClassifier creates a new classifier. m may be nil in which case every frame classifies as none.
func NewClassifier(m Model, o ClassifierOptions) (c *Classifier) {
	// Default vocabulary
	if len(o.Vocabulary) == 0 {
		o.Vocabulary = DefaultGestureVocabulary
	}

	// Create classifier
	c = &Classifier{
		m: m,
		o: o,
		v: make(map[string]bool),
	}

	// Index vocabulary
	for _, l := range o.Vocabulary {
		c.v[l] = true
	}
	return
}

// Classify converts a feature vector into a classification
func (c *Classifier) Classify(features []float64) (o Classification, err error) {
	// Check length
	if len(features) != FeatureLength {
		err = errors.Wrapf(ErrInvalidFeatureLength, "astigesture: %d features provided, %d expected", len(features), FeatureLength)
		return
	}

	// Default
	o.Label = LabelNone

	// No model
	if c.m == nil {
		return
	}

	// Predict
	l, cf, perr := c.predict(features)
	if perr != nil {
		astilog.Debug(errors.Wrap(perr, "astigesture: predicting failed"))
		return
	}

	// Clamp confidence
	if cf < 0 {
		cf = 0
	} else if cf > 1 {
		cf = 1
	}
	o.Confidence = cf

	// Label is only trusted above threshold
	if cf <= c.o.Threshold {
		return
	}

	// Unknown label
	if !c.v[l] {
		o.Label = LabelUnknown
		return
	}
	o.Label = l
	return
}

func (c *Classifier) predict(features []float64) (label string, confidence float64, err error) {
	// Make sure a panicking model doesn't take the loop down
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("astigesture: model panicked: %v", r)
		}
	}()
	return c.m.Predict(features)
}
