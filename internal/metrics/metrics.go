// Package metrics records gesture outcomes on a Prometheus registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for flowline_gestures_total.
const (
	OutcomeApplied  = "applied"
	OutcomeRejected = "rejected"
	OutcomeIgnored  = "ignored"
)

// Gesture labels for flowline_gestures_total.
const (
	GestureInsert = "insert"
	GestureEdit   = "edit"
	GestureSubmit = "submit"
	GestureCancel = "cancel"
	GestureDelete = "delete"
)

// Recorder owns one set of flowline collectors.
//
// Each controller gets its own Recorder and registry so that several
// workflows (and tests) never share counters.
type Recorder struct {
	registry *prometheus.Registry

	gestures       *prometheus.CounterVec
	sequenceLength prometheus.Gauge
	projections    prometheus.Counter
	projectionErrs prometheus.Counter
}

// New creates a Recorder registered on a fresh registry.
func New() *Recorder {
	return NewWithRegistry(prometheus.NewRegistry())
}

// NewWithRegistry creates a Recorder registered on reg.
// Panics if the collectors are already registered there.
func NewWithRegistry(reg *prometheus.Registry) *Recorder {
	r := &Recorder{
		registry: reg,
		gestures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flowline_gestures_total",
				Help: "Total number of handled gestures by gesture and outcome.",
			},
			[]string{"gesture", "outcome"},
		),
		sequenceLength: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "flowline_sequence_length",
				Help: "Current number of steps in the sequence, boundaries included.",
			},
		),
		projections: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "flowline_projections_total",
				Help: "Total number of diagram projections computed.",
			},
		),
		projectionErrs: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "flowline_projection_errors_total",
				Help: "Total number of projections that failed an invariant check.",
			},
		),
	}

	reg.MustRegister(r.gestures, r.sequenceLength, r.projections, r.projectionErrs)

	// Ensure every series is visible before first increment.
	for _, g := range []string{GestureInsert, GestureEdit, GestureSubmit, GestureCancel, GestureDelete} {
		for _, o := range []string{OutcomeApplied, OutcomeRejected, OutcomeIgnored} {
			r.gestures.WithLabelValues(g, o)
		}
	}

	return r
}

// Registry returns the registry the collectors live on.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Gesture counts one handled gesture.
func (r *Recorder) Gesture(gesture, outcome string) {
	r.gestures.WithLabelValues(gesture, outcome).Inc()
}

// GestureCounter exposes one series, mainly for tests.
func (r *Recorder) GestureCounter(gesture, outcome string) prometheus.Counter {
	return r.gestures.WithLabelValues(gesture, outcome)
}

// Projection counts one projection and tracks the resulting length.
func (r *Recorder) Projection(length int, err error) {
	r.projections.Inc()
	if err != nil {
		r.projectionErrs.Inc()
		return
	}
	r.sequenceLength.Set(float64(length))
}

// SequenceLength exposes the length gauge, mainly for tests.
func (r *Recorder) SequenceLength() prometheus.Gauge {
	return r.sequenceLength
}

// Projections exposes the projection counter, mainly for tests.
func (r *Recorder) Projections() prometheus.Counter {
	return r.projections
}
