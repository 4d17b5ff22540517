package astigesture

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "astigesture"

// Metrics exposes dispatch outcomes and frame rate as prometheus metrics
type Metrics struct {
	dispatches *prometheus.CounterVec
	fps        prometheus.GaugeFunc
}

// NewMetrics creates new metrics and registers them
func NewMetrics(r prometheus.Registerer, s *Stats) (m *Metrics, err error) {
	// Create metrics
	m = &Metrics{
		dispatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "dispatches_total",
				Help:      "Total number of dispatched events by outcome",
			},
			[]string{"source", "action", "status"},
		),
		fps: prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "gesture_frames_per_second",
				Help:      "Average frame rate of the gesture loop over the last frames",
			},
			s.FPS,
		),
	}

	// Register
	for _, c := range []prometheus.Collector{m.dispatches, m.fps} {
		if err = r.Register(c); err != nil {
			err = errors.Wrap(err, "astigesture: registering collector failed")
			return
		}
	}
	return
}

// HandleOutcome implements the OutcomeHandler signature
func (m *Metrics) HandleOutcome(o Outcome) {
	m.dispatches.WithLabelValues(o.Source, string(o.Action), o.Status).Inc()
}
