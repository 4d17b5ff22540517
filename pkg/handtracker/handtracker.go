package astihandtracker

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/asticode/go-astigesture"
	"github.com/asticode/go-astilog"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

// Client defaults
const (
	DefaultMaxHands = 1
	DefaultTimeout  = time.Second
	DefaultURL      = "ws://127.0.0.1:8765/landmarks"
)

// Options represents client options
type Options struct {
	MaxHands int           `toml:"max_hands"`
	Timeout  time.Duration `toml:"timeout"`
	URL      string        `toml:"url"`
}

// Response represents a landmarks response sent by the tracker
type Response struct {
	Error string             `json:"error,omitempty"`
	Hands []astigesture.Hand `json:"hands"`
}

// Client extracts hand landmarks by sending JPEG frames to a hand tracking sidecar over a
// websocket and reading back one JSON response per frame
type Client struct {
	c *websocket.Conn
	d *websocket.Dialer
	m sync.Mutex // Locks c
	o Options
}

// New creates a new client
func New(o Options) *Client {
	// Defaults
	if o.MaxHands <= 0 {
		o.MaxHands = DefaultMaxHands
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.URL == "" {
		o.URL = DefaultURL
	}
	return &Client{
		d: &websocket.Dialer{HandshakeTimeout: o.Timeout},
		o: o,
	}
}

// Close implements the io.Closer interface
func (c *Client) Close() error {
	c.m.Lock()
	defer c.m.Unlock()
	c.reset()
	return nil
}

func (c *Client) reset() {
	if c.c != nil {
		c.c.Close()
		c.c = nil
	}
}

func (c *Client) connect(ctx context.Context) (err error) {
	// Already connected
	if c.c != nil {
		return
	}

	// Dial
	astilog.Debugf("astihandtracker: dialing %s", c.o.URL)
	var resp *http.Response
	if c.c, resp, err = c.d.DialContext(ctx, c.o.URL, nil); err != nil {
		err = errors.Wrapf(err, "astihandtracker: dialing %s failed", c.o.URL)
		return
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	astilog.Infof("astihandtracker: connected to %s", c.o.URL)
	return
}

// Extract implements the astigesture.LandmarkExtractor interface
func (c *Client) Extract(ctx context.Context, f astigesture.Frame) (hs []astigesture.Hand, err error) {
	// Encode
	var b []byte
	if b, err = f.Encode(); err != nil {
		err = errors.Wrap(err, "astihandtracker: encoding frame failed")
		return
	}

	// Lock
	c.m.Lock()
	defer c.m.Unlock()

	// Connect
	if err = c.connect(ctx); err != nil {
		err = errors.Wrap(err, "astihandtracker: connecting failed")
		return
	}

	// Round trip
	var r Response
	if r, err = c.roundTrip(ctx, b); err != nil {
		c.reset()
		err = errors.Wrap(err, "astihandtracker: round trip failed")
		return
	}

	// Tracker error
	if r.Error != "" {
		err = errors.Errorf("astihandtracker: tracker failed with %s", r.Error)
		return
	}

	// Limit hands
	hs = r.Hands
	if len(hs) > c.o.MaxHands {
		hs = hs[:c.o.MaxHands]
	}
	return
}

func (c *Client) roundTrip(ctx context.Context, b []byte) (r Response, err error) {
	// Deadline
	d := time.Now().Add(c.o.Timeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(d) {
		d = dl
	}

	// Write
	if err = c.c.SetWriteDeadline(d); err != nil {
		err = errors.Wrap(err, "astihandtracker: setting write deadline failed")
		return
	}
	if err = c.c.WriteMessage(websocket.BinaryMessage, b); err != nil {
		err = errors.Wrap(err, "astihandtracker: writing frame failed")
		return
	}

	// Read
	if err = c.c.SetReadDeadline(d); err != nil {
		err = errors.Wrap(err, "astihandtracker: setting read deadline failed")
		return
	}
	if err = c.c.ReadJSON(&r); err != nil {
		err = errors.Wrap(err, "astihandtracker: reading response failed")
		return
	}
	return
}
