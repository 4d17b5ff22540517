package astigesture

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/asticode/go-astilog"
	astihttp "github.com/asticode/go-astitools/http"
	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server prefixes
const apiPrefix = "/api"

// ServerOptions represents server options
type ServerOptions struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	Username string `toml:"username"`
}

// APIOptions represents API options
type APIOptions struct {
	CommandsPath string
	Coordinator  *Coordinator
	Dispatcher   *Dispatcher
	Feed         *Feed
	Gatherer     prometheus.Gatherer
	Server       ServerOptions
}

// API exposes the engine over HTTP
type API struct {
	o APIOptions
}

// NewAPI creates a new API
func NewAPI(o APIOptions) *API {
	return &API{o: o}
}

// Handler returns the API handler
func (a *API) Handler() (h http.Handler) {
	// Create router
	r := httprouter.New()

	// API
	r.GET(apiPrefix+"/ok", a.ok)
	r.GET(apiPrefix+"/phrases", a.phrases)
	r.POST(apiPrefix+"/phrases", a.addPhrase)
	r.PATCH(apiPrefix+"/loops/:name", a.updateLoop)
	r.GET(apiPrefix+"/stats", a.stats)
	r.GET(apiPrefix+"/stats/chart", a.statsChart)
	r.GET(apiPrefix+"/status", a.status)

	// Websocket
	if a.o.Feed != nil {
		r.Handler(http.MethodGet, "/websocket", a.o.Feed)
	}

	// Metrics
	if a.o.Gatherer != nil {
		r.Handler(http.MethodGet, "/metrics", promhttp.HandlerFor(a.o.Gatherer, promhttp.HandlerOpts{}))
	}

	// Chain middlewares
	h = r
	if a.o.Server.Username != "" && a.o.Server.Password != "" {
		h = astihttp.ChainMiddlewares(h, astihttp.MiddlewareBasicAuth(a.o.Server.Username, a.o.Server.Password))
	}
	h = astihttp.ChainMiddlewaresWithPrefix(h, []string{apiPrefix + "/"}, astihttp.MiddlewareContentType("application/json"))
	return
}

func (a *API) ok(rw http.ResponseWriter, r *http.Request, p httprouter.Params) {}

// Status represents the engine status
type Status struct {
	Coordinator  CoordinatorStatus         `json:"coordinator"`
	LastExecuted map[ActionToken]time.Time `json:"last_executed"`
}

func (a *API) status(rw http.ResponseWriter, r *http.Request, p httprouter.Params) {
	WriteHTTPData(rw, Status{
		Coordinator:  a.o.Coordinator.Status(),
		LastExecuted: a.o.Dispatcher.Gate().LastExecuted(),
	})
}

func (a *API) stats(rw http.ResponseWriter, r *http.Request, p httprouter.Params) {
	WriteHTTPData(rw, a.o.Coordinator.Stats().Snapshot())
}

func (a *API) statsChart(rw http.ResponseWriter, r *http.Request, p httprouter.Params) {
	WriteHTTPData(rw, a.o.Coordinator.Stats().Chart())
}

func (a *API) phrases(rw http.ResponseWriter, r *http.Request, p httprouter.Params) {
	WriteHTTPData(rw, a.o.Coordinator.Mapper().Phrases())
}

func (a *API) addPhrase(rw http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	// Parse body
	var p Phrase
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		WriteHTTPError(rw, http.StatusBadRequest, errors.Wrap(err, "astigesture: parsing phrase payload failed"))
		return
	}

	// Validate
	p.Phrase = strings.TrimSpace(p.Phrase)
	if p.Phrase == "" || p.Action == "" {
		WriteHTTPError(rw, http.StatusBadRequest, errors.New("astigesture: phrase and action are mandatory"))
		return
	}
	if err := a.o.Dispatcher.CheckActions(p.Action); err != nil {
		WriteHTTPError(rw, http.StatusBadRequest, errors.Wrap(err, "astigesture: checking action failed"))
		return
	}

	// Add
	m := a.o.Coordinator.Mapper()
	m.Add(p.Phrase, p.Action)
	astilog.Infof("astigesture: phrase \"%s\" mapped to %s", p.Phrase, p.Action)

	// Save
	if a.o.CommandsPath != "" && r.URL.Query().Get("save") == "true" {
		if err := SaveCommands(a.o.CommandsPath, m.Phrases()); err != nil {
			WriteHTTPError(rw, http.StatusInternalServerError, errors.Wrap(err, "astigesture: saving commands failed"))
			return
		}
	}

	// Write
	WriteHTTPData(rw, m.Phrases())
}

// LoopUpdate represents a loop update payload
type LoopUpdate struct {
	Enabled bool `json:"enabled"`
}

func (a *API) updateLoop(rw http.ResponseWriter, r *http.Request, p httprouter.Params) {
	// Parse body
	var u LoopUpdate
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		WriteHTTPError(rw, http.StatusBadRequest, errors.Wrap(err, "astigesture: parsing loop payload failed"))
		return
	}

	// Update loop
	if err := a.o.Coordinator.SetLoopEnabled(p.ByName("name"), u.Enabled); err != nil {
		code := http.StatusInternalServerError
		switch errors.Cause(err) {
		case ErrLoopUnavailable:
			code = http.StatusConflict
		case ErrUnknownLoop:
			code = http.StatusNotFound
		}
		WriteHTTPError(rw, code, errors.Wrap(err, "astigesture: updating loop failed"))
		return
	}

	// Write
	WriteHTTPData(rw, a.o.Coordinator.Status())
}
