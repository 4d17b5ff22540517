package astigocv

import (
	"context"
	"sync"

	"github.com/asticode/go-astigesture"
	"github.com/asticode/go-astilog"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// Camera defaults
const (
	DefaultFPS    = 30
	DefaultHeight = 720
	DefaultWidth  = 1280
)

// Options represents camera options
type Options struct {
	DeviceID int     `toml:"device_id"`
	FPS      float64 `toml:"fps"`
	Height   int     `toml:"height"`
	Mirror   bool    `toml:"mirror"`
	Width    int     `toml:"width"`
}

// Camera reads frames from a video capture device
type Camera struct {
	m  sync.Mutex // Locks vc
	o  Options
	vc *gocv.VideoCapture
}

// New opens the video capture device
func New(o Options) (c *Camera, err error) {
	// Defaults
	if o.FPS <= 0 {
		o.FPS = DefaultFPS
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}

	// Open
	c = &Camera{o: o}
	astilog.Debugf("astigocv: opening video capture device %d", o.DeviceID)
	if c.vc, err = gocv.OpenVideoCapture(o.DeviceID); err != nil {
		err = errors.Wrapf(err, "astigocv: opening video capture device %d failed", o.DeviceID)
		return
	}

	// Set properties
	c.vc.Set(gocv.VideoCaptureFrameWidth, float64(o.Width))
	c.vc.Set(gocv.VideoCaptureFrameHeight, float64(o.Height))
	c.vc.Set(gocv.VideoCaptureFPS, o.FPS)
	return
}

// Close implements the io.Closer interface
func (c *Camera) Close() (err error) {
	// Lock
	c.m.Lock()
	defer c.m.Unlock()

	// Close
	astilog.Debugf("astigocv: closing video capture device %d", c.o.DeviceID)
	if err = c.vc.Close(); err != nil {
		err = errors.Wrapf(err, "astigocv: closing video capture device %d failed", c.o.DeviceID)
		return
	}
	return
}

// ReadFrame implements the astigesture.FrameSource interface
func (c *Camera) ReadFrame(ctx context.Context) (f astigesture.Frame, err error) {
	// Check context
	if err = ctx.Err(); err != nil {
		return
	}

	// Lock
	c.m.Lock()
	defer c.m.Unlock()

	// Read
	m := gocv.NewMat()
	if ok := c.vc.Read(&m); !ok || m.Empty() {
		m.Close()
		err = astigesture.ErrNoFrame
		return
	}

	// Mirror
	if c.o.Mirror {
		d := gocv.NewMat()
		gocv.Flip(m, &d, 1)
		m.Close()
		m = d
	}
	f = &Frame{m: m}
	return
}

// Frame is a camera frame backed by a gocv matrix
type Frame struct {
	m gocv.Mat
}

// Close implements the astigesture.Frame interface
func (f *Frame) Close() error {
	return f.m.Close()
}

// Encode implements the astigesture.Frame interface
func (f *Frame) Encode() (b []byte, err error) {
	// Encode
	var buf *gocv.NativeByteBuffer
	if buf, err = gocv.IMEncode(gocv.JPEGFileExt, f.m); err != nil {
		err = errors.Wrap(err, "astigocv: encoding jpeg failed")
		return
	}
	defer buf.Close()

	// Copy since the buffer is released on close
	b = make([]byte, buf.Len())
	copy(b, buf.GetBytes())
	return
}
