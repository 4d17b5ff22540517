package astilisten

import (
	"os"
	"path/filepath"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/pkg/errors"
)

const audioFormatPCM = 1

// archive stores samples as a wav file under a per day directory
func archive(dirPath string, t time.Time, ss []int, bitDepth, numChannels, sampleRate int) (path string, err error) {
	// Make sure the dir exists
	dirPath = filepath.Join(dirPath, t.Format("2006-01-02"))
	if err = os.MkdirAll(dirPath, 0755); err != nil {
		err = errors.Wrapf(err, "astilisten: mkdirall %s failed", dirPath)
		return
	}

	// Create file
	path = filepath.Join(dirPath, t.Format("15-04-05.000")+".wav")
	var f *os.File
	if f, err = os.Create(path); err != nil {
		err = errors.Wrapf(err, "astilisten: creating %s failed", path)
		return
	}
	defer f.Close()

	// Create encoder
	e := wav.NewEncoder(f, sampleRate, bitDepth, numChannels, audioFormatPCM)

	// Write
	if err = e.Write(&audio.IntBuffer{
		Data: ss,
		Format: &audio.Format{
			NumChannels: numChannels,
			SampleRate:  sampleRate,
		},
		SourceBitDepth: bitDepth,
	}); err != nil {
		err = errors.Wrap(err, "astilisten: writing wav samples failed")
		return
	}

	// Close encoder
	if err = e.Close(); err != nil {
		err = errors.Wrap(err, "astilisten: closing wav encoder failed")
		return
	}
	return
}
