package deepspeech

import (
	"os"
	"time"

	"github.com/asticode/go-astideepspeech"
	"github.com/asticode/go-astilog"
	"github.com/pkg/errors"
)

// Options represents deepspeech options
type Options struct {
	BeamWidth            int     `toml:"beam_width"`
	LMPath               string  `toml:"lm_path"`
	LMWeight             float64 `toml:"lm_weight"`
	ModelPath            string  `toml:"model_path"`
	TriePath             string  `toml:"trie_path"`
	ValidWordCountWeight float64 `toml:"valid_word_count_weight"`
}

// DeepSpeech parses speech samples with a deepspeech model
type DeepSpeech struct {
	m *astideepspeech.Model
	o Options
}

// New creates a new deepspeech parser. A missing model yields a parser returning no text.
func New(o Options) (d *DeepSpeech) {
	// Create deepspeech
	d = &DeepSpeech{o: o}

	// Only do the following if the model path exists
	if _, err := os.Stat(o.ModelPath); err != nil {
		astilog.Debugf("deepspeech: %s doesn't exist, skipping model creation", o.ModelPath)
		return
	}

	// Create model
	astilog.Debugf("deepspeech: loading model %s", o.ModelPath)
	d.m = astideepspeech.New(o.ModelPath, o.BeamWidth)

	// Enable LM
	if o.LMPath != "" {
		d.m.EnableDecoderWithLM(o.LMPath, o.TriePath, o.LMWeight, o.ValidWordCountWeight)
	}
	return
}

// HasModel checks whether a model has been loaded
func (d *DeepSpeech) HasModel() bool { return d.m != nil }

// Close implements the io.Closer interface
func (d *DeepSpeech) Close() error {
	if d.m != nil {
		astilog.Debug("deepspeech: closing model")
		d.m.Close()
	}
	return nil
}

// Parse implements the astilisten.Parser interface
func (d *DeepSpeech) Parse(samples []int, bitDepth, numChannels, sampleRate int) (t string, err error) {
	// No model
	if d.m == nil {
		return
	}

	// Convert
	var ss []int16
	if ss, err = convert(samples, bitDepth, numChannels, sampleRate); err != nil {
		err = errors.Wrap(err, "deepspeech: converting samples failed")
		return
	}

	// Parse
	start := time.Now()
	t = d.m.SpeechToText(ss, uint(len(ss)))
	astilog.Debugf("deepspeech: parsed %d samples in %s", len(ss), time.Since(start))
	return
}
