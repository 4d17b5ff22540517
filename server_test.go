package astigesture

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockedAPI(t *testing.T, o ServerOptions, commandsPath string) (a *API, co *Coordinator) {
	d, err := NewDispatcher(DispatcherOptions{
		Executor: Actions{
			ActionScreenshot: func(context.Context) error { return nil },
			ActionVolumeUp:   func(context.Context) error { return nil },
		},
		Gestures: map[string]ActionToken{"thumbs_up": ActionVolumeUp},
	})
	require.NoError(t, err)
	co = NewCoordinator(CoordinatorOptions{
		Dispatcher:     d,
		Extractor:      mockedExtractor{},
		Frames:         &mockedFrameSource{},
		GestureEnabled: true,
		Mapper:         NewPhraseMapper(Phrase{Action: ActionVolumeUp, Phrase: "volume up"}),
		Recognizer:     &mockedRecognizer{},
	})
	r := prometheus.NewRegistry()
	_, err = NewMetrics(r, co.Stats())
	require.NoError(t, err)
	a = NewAPI(APIOptions{
		CommandsPath: commandsPath,
		Coordinator:  co,
		Dispatcher:   d,
		Feed:         NewFeed(),
		Gatherer:     r,
		Server:       o,
	})
	return
}

func serve(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rec
}

func TestAPI(t *testing.T) {
	p := filepath.Join(t.TempDir(), "commands.json")
	a, _ := newMockedAPI(t, ServerOptions{}, p)
	h := a.Handler()

	// Ok
	rec := serve(h, http.MethodGet, "/api/ok", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	// Status
	rec = serve(h, http.MethodGet, "/api/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var s Status
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&s))
	assert.Equal(t, CoordinatorStatus{Loops: map[string]bool{LoopGesture: true, LoopVoice: false}}, s.Coordinator)

	// Stats
	rec = serve(h, http.MethodGet, "/api/stats", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = serve(h, http.MethodGet, "/api/stats/chart", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	// Metrics
	rec = serve(h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "astigesture_gesture_frames_per_second")
}

func TestAPIPhrases(t *testing.T) {
	p := filepath.Join(t.TempDir(), "commands.json")
	a, co := newMockedAPI(t, ServerOptions{}, p)
	h := a.Handler()

	// Invalid payloads
	rec := serve(h, http.MethodPost, "/api/phrases", "invalid")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = serve(h, http.MethodPost, "/api/phrases", `{"phrase":"  ","action":"screenshot"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = serve(h, http.MethodPost, "/api/phrases", `{"phrase":"take a break","action":"zoom_in"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Add
	rec = serve(h, http.MethodPost, "/api/phrases", `{"phrase":" Take A Break ","action":"screenshot"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	e := []Phrase{
		{Action: ActionVolumeUp, Phrase: "volume up"},
		{Action: ActionScreenshot, Phrase: "take a break"},
	}
	var ps []Phrase
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&ps))
	assert.Equal(t, e, ps)
	a2, ok := co.Mapper().Resolve("please take a break now")
	assert.True(t, ok)
	assert.Equal(t, ActionScreenshot, a2)

	// Not saved
	ps, err := LoadCommands(p)
	require.NoError(t, err)
	assert.Empty(t, ps)

	// Saved
	rec = serve(h, http.MethodPost, "/api/phrases?save=true", `{"phrase":"take a break","action":"screenshot"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	ps, err = LoadCommands(p)
	require.NoError(t, err)
	assert.Equal(t, e, ps)

	// List
	rec = serve(h, http.MethodGet, "/api/phrases", "")
	require.Equal(t, http.StatusOK, rec.Code)
	ps = []Phrase{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&ps))
	assert.Equal(t, e, ps)
}

func TestAPILoops(t *testing.T) {
	a, co := newMockedAPI(t, ServerOptions{}, "")
	h := a.Handler()

	// Unknown loop
	rec := serve(h, http.MethodPatch, "/api/loops/invalid", `{"enabled":true}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Invalid payload
	rec = serve(h, http.MethodPatch, "/api/loops/voice", "invalid")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Update
	rec = serve(h, http.MethodPatch, "/api/loops/voice", `{"enabled":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = serve(h, http.MethodPatch, "/api/loops/gesture", `{"enabled":false}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]bool{LoopGesture: false, LoopVoice: true}, co.Status().Loops)
}

func TestAPIUnavailableLoop(t *testing.T) {
	d, err := NewDispatcher(DispatcherOptions{Executor: Actions{}, Gestures: map[string]ActionToken{}})
	require.NoError(t, err)
	co := NewCoordinator(CoordinatorOptions{Dispatcher: d})
	h := NewAPI(APIOptions{Coordinator: co, Dispatcher: d}).Handler()

	// Switching on fails
	rec := serve(h, http.MethodPatch, "/api/loops/voice", `{"enabled":true}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Switching off succeeds
	rec = serve(h, http.MethodPatch, "/api/loops/voice", `{"enabled":false}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIBasicAuth(t *testing.T) {
	a, _ := newMockedAPI(t, ServerOptions{Password: "password", Username: "username"}, "")
	h := a.Handler()

	// No credentials
	rec := serve(h, http.MethodGet, "/api/ok", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Credentials
	r := httptest.NewRequest(http.MethodGet, "/api/ok", nil)
	r.SetBasicAuth("username", "password")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusOK, rec.Code)
}
