package engine

import (
	"github.com/roach88/flowline/internal/ir"
	"github.com/roach88/flowline/internal/metrics"
)

// Outcome describes one handled gesture.
type Outcome struct {
	Gesture Gesture

	// Result is one of the metrics outcome labels: applied, rejected or
	// ignored.
	Result string
	Code   ir.ErrorCode
	Err    string

	// Frame is the frame emitted for an applied gesture. For any other
	// outcome it is the unchanged current frame, stamped with the sequence
	// number of the last emitted one.
	Frame ir.Frame
}

// Applied reports whether the gesture changed the workflow or its state.
func (o Outcome) Applied() bool {
	return o.Result == metrics.OutcomeApplied
}

// Observer is told about every gesture the controller handles, whatever
// its outcome. Observers run after the controller lock is released and
// after the gesture's frame has been rendered.
type Observer interface {
	Observe(o Outcome)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(o Outcome)

// Observe implements Observer.
func (f ObserverFunc) Observe(o Outcome) {
	f(o)
}

// WithObserver adds an observer.
func WithObserver(o Observer) Option {
	return func(c *Controller) {
		c.observers = append(c.observers, o)
	}
}
