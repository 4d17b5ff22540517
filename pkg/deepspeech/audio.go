package deepspeech

import (
	"github.com/asticode/go-astikit"
	"github.com/pkg/errors"
)

// Deepspeech constants
const (
	deepSpeechBitDepth    = 16
	deepSpeechNumChannels = 1
	deepSpeechSampleRate  = 16000
)

type audioConverter struct {
	cc *astikit.PCMChannelsConverter
	sc *astikit.PCMSampleRateConverter
}

func newAudioConverter(bitDepth, numChannels, sampleRate int, fn astikit.PCMSampleFunc) (c *audioConverter) {
	// Create converter
	c = &audioConverter{}

	// Create channels converter
	c.cc = astikit.NewPCMChannelsConverter(numChannels, deepSpeechNumChannels, func(s int) (err error) {
		// Convert bit depth
		if s, err = astikit.ConvertPCMBitDepth(s, bitDepth, deepSpeechBitDepth); err != nil {
			err = errors.Wrap(err, "deepspeech: converting bit depth failed")
			return
		}

		// Custom
		if err = fn(s); err != nil {
			err = errors.Wrap(err, "deepspeech: custom sample func failed")
			return
		}
		return
	})

	// Create sample rate converter
	c.sc = astikit.NewPCMSampleRateConverter(sampleRate, deepSpeechSampleRate, numChannels, func(s int) (err error) {
		if err = c.cc.Add(s); err != nil {
			err = errors.Wrap(err, "deepspeech: adding to channels converter failed")
			return
		}
		return
	})
	return
}

func (c *audioConverter) add(s int) (err error) {
	if err = c.sc.Add(s); err != nil {
		err = errors.Wrap(err, "deepspeech: adding to sample rate converter failed")
		return
	}
	return
}

// convert converts samples to the format expected by deepspeech
func convert(samples []int, bitDepth, numChannels, sampleRate int) (ss []int16, err error) {
	// Create converter
	c := newAudioConverter(bitDepth, numChannels, sampleRate, func(s int) error {
		ss = append(ss, int16(s))
		return nil
	})

	// Loop through samples
	for _, s := range samples {
		if err = c.add(s); err != nil {
			err = errors.Wrap(err, "deepspeech: adding sample to converter failed")
			return
		}
	}
	return
}
