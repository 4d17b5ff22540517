package astiportaudio

import (
	"github.com/asticode/go-astilog"
	"github.com/gordonklaus/portaudio"
	"github.com/pkg/errors"
)

// Stream defaults
const (
	DefaultBitDepth     = 32
	DefaultBufferLength = 1600
	DefaultSampleRate   = 16000
)

// StreamOptions represents stream options
type StreamOptions struct {
	BitDepth         int `toml:"bit_depth"`
	BufferLength     int `toml:"buffer_length"`
	NumInputChannels int `toml:"num_input_channels"`
	SampleRate       int `toml:"sample_rate"`
}

// Stream represents a portaudio input stream
type Stream struct {
	b []int32
	o StreamOptions
	s *portaudio.Stream
}

// NewDefaultStream opens a stream on the default input device
func (p *PortAudio) NewDefaultStream(o StreamOptions) (s *Stream, err error) {
	// Defaults
	if o.BitDepth <= 0 {
		o.BitDepth = DefaultBitDepth
	}
	if o.BufferLength <= 0 {
		o.BufferLength = DefaultBufferLength
	}
	if o.NumInputChannels <= 0 {
		o.NumInputChannels = 1
	}
	if o.SampleRate <= 0 {
		o.SampleRate = DefaultSampleRate
	}

	// Create stream
	s = &Stream{
		b: make([]int32, o.BufferLength*o.NumInputChannels),
		o: o,
	}

	// Open default stream
	astilog.Debugf("astiportaudio: opening default stream %p", s)
	if s.s, err = portaudio.OpenDefaultStream(s.o.NumInputChannels, 0, float64(s.o.SampleRate), s.o.BufferLength, s.b); err != nil {
		err = errors.Wrapf(err, "astiportaudio: opening default stream %p failed", s)
		return
	}
	return
}

// BitDepth returns the bit depth of samples
func (s *Stream) BitDepth() int { return s.o.BitDepth }

// NumChannels returns the number of interleaved channels
func (s *Stream) NumChannels() int { return s.o.NumInputChannels }

// SampleRate returns the sample rate
func (s *Stream) SampleRate() int { return s.o.SampleRate }

// Close implements the io.Closer interface
func (s *Stream) Close() (err error) {
	astilog.Debugf("astiportaudio: closing stream %p", s)
	if err = s.s.Close(); err != nil {
		err = errors.Wrapf(err, "astiportaudio: closing stream %p failed", s)
		return
	}
	return
}

// Start starts the stream
func (s *Stream) Start() (err error) {
	astilog.Debugf("astiportaudio: starting stream %p", s)
	if err = s.s.Start(); err != nil {
		err = errors.Wrapf(err, "astiportaudio: starting stream %p failed", s)
		return
	}
	return
}

// Stop stops the stream
func (s *Stream) Stop() (err error) {
	astilog.Debugf("astiportaudio: stopping stream %p", s)
	if err = s.s.Stop(); err != nil {
		err = errors.Wrapf(err, "astiportaudio: stopping stream %p failed", s)
		return
	}
	return
}

// Read blocks until one buffer of samples is available
func (s *Stream) Read() (ss []int, err error) {
	// Read
	if err = s.s.Read(); err != nil {
		err = errors.Wrapf(err, "astiportaudio: reading from stream %p failed", s)
		return
	}

	// Clone buffer
	ss = make([]int, len(s.b))
	for idx, v := range s.b {
		ss[idx] = int(v)
	}
	return
}
