package astigesture

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/asticode/go-astilog"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

// Feed message names
const (
	FeedMessageGesture = "gesture"
	FeedMessageOutcome = "outcome"
)

// Size of each client's outgoing buffer. Messages are dropped for clients lagging behind.
const feedClientBufferSize = 64

// FeedMessage represents a message sent to feed clients
type FeedMessage struct {
	Name    string      `json:"name"`
	Payload interface{} `json:"payload"`
}

// Feed broadcasts gestures and dispatch outcomes to websocket clients, typically an overlay
type Feed struct {
	cs map[*feedClient]bool
	m  sync.Mutex // Locks cs
	u  websocket.Upgrader
}

type feedClient struct {
	c  *websocket.Conn
	ch chan []byte
}

// NewFeed creates a new feed
func NewFeed() *Feed {
	return &Feed{
		cs: make(map[*feedClient]bool),
		u:  websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
	}
}

// ServeHTTP implements the http.Handler interface
func (f *Feed) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	// Upgrade
	c, err := f.u.Upgrade(rw, r, nil)
	if err != nil {
		astilog.Error(errors.Wrap(err, "astigesture: upgrading websocket failed"))
		return
	}

	// Register client
	fc := &feedClient{
		c:  c,
		ch: make(chan []byte, feedClientBufferSize),
	}
	f.m.Lock()
	f.cs[fc] = true
	f.m.Unlock()
	astilog.Debugf("astigesture: feed client %s has connected", r.RemoteAddr)

	// Write
	go func() {
		for b := range fc.ch {
			if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
				astilog.Debug(errors.Wrap(err, "astigesture: writing websocket message failed"))
			}
		}
	}()

	// Read until the client goes away
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}

	// Unregister client
	f.unregister(fc)
	astilog.Debugf("astigesture: feed client %s has disconnected", r.RemoteAddr)
}

func (f *Feed) unregister(fc *feedClient) {
	// Lock
	f.m.Lock()
	defer f.m.Unlock()

	// Client is not registered anymore
	if !f.cs[fc] {
		return
	}

	// Delete
	delete(f.cs, fc)
	close(fc.ch)
	fc.c.Close()
}

// Clients returns the number of connected clients
func (f *Feed) Clients() int {
	f.m.Lock()
	defer f.m.Unlock()
	return len(f.cs)
}

// Publish sends a message to every client without blocking
func (f *Feed) Publish(name string, payload interface{}) {
	// Marshal
	b, err := json.Marshal(FeedMessage{
		Name:    name,
		Payload: payload,
	})
	if err != nil {
		astilog.Error(errors.Wrap(err, "astigesture: marshaling feed message failed"))
		return
	}

	// Lock
	f.m.Lock()
	defer f.m.Unlock()

	// Loop through clients
	for fc := range f.cs {
		select {
		case fc.ch <- b:
		default:
		}
	}
}

// HandleOutcome implements the OutcomeHandler signature
func (f *Feed) HandleOutcome(o Outcome) {
	f.Publish(FeedMessageOutcome, o)
}

// HandleGesture publishes a gesture event
func (f *Feed) HandleGesture(e GestureEvent) {
	f.Publish(FeedMessageGesture, e)
}

// Close disconnects every client
func (f *Feed) Close() error {
	// Lock
	f.m.Lock()
	cs := make([]*feedClient, 0, len(f.cs))
	for fc := range f.cs {
		cs = append(cs, fc)
	}
	f.m.Unlock()

	// Unregister
	for _, fc := range cs {
		f.unregister(fc)
	}
	return nil
}
