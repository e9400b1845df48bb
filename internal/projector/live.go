package projector

import (
	"github.com/roach88/flowline/internal/ir"
	"github.com/roach88/flowline/internal/registry"
	"github.com/roach88/flowline/internal/sequence"
)

// Live keeps a projection in step with a sequence store and a registry.
//
// It subscribes to both and re-derives the whole projection synchronously
// after every mutation, so Current never returns a stale diagram.
type Live struct {
	seq    *sequence.Store
	steps  *registry.Registry
	layout Layout

	current Projection
	err     error
	count   int64

	onProject func(Projection, error)
}

// LiveOption configures a Live projector.
type LiveOption func(*Live)

// WithProjectHook registers fn to run after every re-projection.
// Used for metrics.
func WithProjectHook(fn func(Projection, error)) LiveOption {
	return func(l *Live) {
		l.onProject = fn
	}
}

// NewLive binds a projector to seq and steps and computes the initial
// projection.
func NewLive(seq *sequence.Store, steps *registry.Registry, layout Layout, opts ...LiveOption) *Live {
	l := &Live{
		seq:    seq,
		steps:  steps,
		layout: layout,
	}
	for _, opt := range opts {
		opt(l)
	}

	seq.Subscribe(func(sequence.Change) { l.refresh() })
	steps.Subscribe(func(registry.Change) { l.refresh() })
	l.refresh()
	return l
}

// Current returns a copy of the latest projection and the error, if any,
// from computing it.
func (l *Live) Current() (Projection, error) {
	return l.current.Clone(), l.err
}

// Layout returns the layout the projector was built with.
func (l *Live) Layout() Layout {
	return l.layout
}

// Count returns how many projections have been computed.
func (l *Live) Count() int64 {
	return l.count
}

// Edge resolves an edge id against the latest projection.
func (l *Live) Edge(id string) (ir.ProjectedEdge, bool) {
	return l.current.Edge(id)
}

func (l *Live) refresh() {
	p, err := Project(l.seq.Snapshot(), l.steps, l.layout)
	l.count++
	if err != nil {
		// Keep the last good projection; surface the error to the caller.
		l.err = err
	} else {
		l.current, l.err = p, nil
	}
	if l.onProject != nil {
		l.onProject(p, err)
	}
}
