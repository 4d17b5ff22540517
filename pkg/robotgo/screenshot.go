package astirobotgo

import (
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/kbinani/screenshot"
	"github.com/pkg/errors"
)

// Screenshoter represents an object capable of taking screenshots
type Screenshoter interface {
	Screenshot() (path string, err error)
}

type screenshoter struct {
	dirPath string
	now     func() time.Time
}

// NewScreenshoter creates a screenshoter capturing the primary display into dirPath
func NewScreenshoter(dirPath string) Screenshoter {
	return &screenshoter{
		dirPath: dirPath,
		now:     time.Now,
	}
}

func screenshotPath(dirPath string, t time.Time) string {
	return filepath.Join(dirPath, "screenshot_"+t.Format("20060102_150405")+".png")
}

// Screenshot implements the Screenshoter interface
func (s *screenshoter) Screenshot() (path string, err error) {
	// No display
	if screenshot.NumActiveDisplays() <= 0 {
		err = errors.New("astirobotgo: no active display")
		return
	}

	// Capture
	img, err := screenshot.CaptureDisplay(0)
	if err != nil {
		err = errors.Wrap(err, "astirobotgo: capturing display failed")
		return
	}

	// Make sure the dir exists
	if s.dirPath != "" {
		if err = os.MkdirAll(s.dirPath, 0755); err != nil {
			err = errors.Wrapf(err, "astirobotgo: mkdirall %s failed", s.dirPath)
			return
		}
	}

	// Create file
	path = screenshotPath(s.dirPath, s.now())
	var f *os.File
	if f, err = os.Create(path); err != nil {
		err = errors.Wrapf(err, "astirobotgo: creating %s failed", path)
		return
	}
	defer f.Close()

	// Encode
	if err = png.Encode(f, img); err != nil {
		err = errors.Wrapf(err, "astirobotgo: encoding png to %s failed", path)
		return
	}
	return
}
