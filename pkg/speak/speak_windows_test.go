package astispeak

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpeakerNotInitialized(t *testing.T) {
	assert.Error(t, New(Options{}).Say("hello"))
}

func TestSpeakerUnknownVoice(t *testing.T) {
	s := New(Options{Voice: "astispeak-unknown-voice"})
	defer s.Close()
	assert.Error(t, s.Init())
}
