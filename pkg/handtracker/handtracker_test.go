package astihandtracker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/asticode/go-astigesture"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockedFrame struct{ b []byte }

func (f mockedFrame) Close() error            { return nil }
func (f mockedFrame) Encode() ([]byte, error) { return f.b, nil }

func newTracker(t *testing.T, fn func(b []byte) Response) *httptest.Server {
	u := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		c, err := u.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer c.Close()
		for {
			_, b, err := c.ReadMessage()
			if err != nil {
				return
			}
			if err = c.WriteJSON(fn(b)); err != nil {
				return
			}
		}
	}))
}

func hand(v float64) (h astigesture.Hand) {
	for idx := 0; idx < astigesture.NumLandmarks; idx++ {
		h = append(h, astigesture.Landmark{X: v, Y: v, Z: v})
	}
	return
}

func TestClient(t *testing.T) {
	// Create tracker
	var m sync.Mutex
	var received []string
	s := newTracker(t, func(b []byte) Response {
		m.Lock()
		received = append(received, string(b))
		m.Unlock()
		switch string(b) {
		case "error":
			return Response{Error: "test"}
		case "none":
			return Response{}
		}
		return Response{Hands: []astigesture.Hand{hand(1), hand(2)}}
	})
	defer s.Close()

	// Create client
	c := New(Options{URL: "ws" + strings.TrimPrefix(s.URL, "http")})
	defer c.Close()

	// Hands are limited
	hs, err := c.Extract(context.Background(), mockedFrame{b: []byte("frame")})
	require.NoError(t, err)
	require.Len(t, hs, 1)
	assert.Equal(t, hand(1), hs[0])
	assert.Len(t, hs[0].Features(), astigesture.FeatureLength)

	// No hands
	hs, err = c.Extract(context.Background(), mockedFrame{b: []byte("none")})
	require.NoError(t, err)
	assert.Empty(t, hs)

	// Tracker error
	_, err = c.Extract(context.Background(), mockedFrame{b: []byte("error")})
	assert.Error(t, err)
	m.Lock()
	assert.Equal(t, []string{"frame", "none", "error"}, received)
	m.Unlock()
}

func TestClientDialError(t *testing.T) {
	c := New(Options{URL: "ws://127.0.0.1:1/invalid"})
	_, err := c.Extract(context.Background(), mockedFrame{b: []byte("frame")})
	assert.Error(t, err)
}
