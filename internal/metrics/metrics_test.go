package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_SeriesVisibleBeforeIncrement(t *testing.T) {
	r := New()

	families, err := r.Registry().Gather()
	require.NoError(t, err)

	names := map[string]int{}
	for _, f := range families {
		names[f.GetName()] = len(f.GetMetric())
	}
	assert.Equal(t, 15, names["flowline_gestures_total"])
	assert.Contains(t, names, "flowline_sequence_length")
	assert.Contains(t, names, "flowline_projections_total")
}

func TestRecorder_Gesture(t *testing.T) {
	r := New()
	r.Gesture(GestureInsert, OutcomeApplied)
	r.Gesture(GestureInsert, OutcomeApplied)
	r.Gesture(GestureInsert, OutcomeIgnored)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.GestureCounter(GestureInsert, OutcomeApplied)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.GestureCounter(GestureInsert, OutcomeIgnored)))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.GestureCounter(GestureDelete, OutcomeApplied)))
}

func TestRecorder_Projection(t *testing.T) {
	r := New()
	r.Projection(3, nil)
	r.Projection(9, errors.New("broken"))

	assert.Equal(t, 2.0, testutil.ToFloat64(r.Projections()))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.SequenceLength()), "failed projection keeps the last length")
}

func TestRecorder_SeparateRegistries(t *testing.T) {
	a := New()
	b := New()
	a.Gesture(GestureEdit, OutcomeApplied)
	assert.Equal(t, 0.0, testutil.ToFloat64(b.GestureCounter(GestureEdit, OutcomeApplied)))
}

func TestNewWithRegistry_DoubleRegisterPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewWithRegistry(reg)
	assert.Panics(t, func() { NewWithRegistry(reg) })
}
