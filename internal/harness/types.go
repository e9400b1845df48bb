package harness

import (
	"github.com/roach88/flowline/internal/ir"
)

// TraceEvent records one applied flow step.
type TraceEvent struct {
	// Step is the 1-based index of the flow step.
	Step    int    `json:"step"`
	Gesture string `json:"gesture"`
	// Error is the error code returned by the gesture, empty on success.
	Error string `json:"error,omitempty"`
	// Seq is the sequence number of the latest frame after the gesture.
	Seq int64 `json:"seq"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every flow step matched its expectation and every
	// assertion held.
	Pass bool `json:"pass"`

	// Trace contains one event per flow step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Frame is the final frame.
	Frame ir.Frame `json:"frame"`

	// Frames is the number of frames emitted while the flow ran.
	Frames int `json:"frames"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a trace event.
func (r *Result) AddTrace(step int, gesture string, code ir.ErrorCode, seq int64) {
	r.Trace = append(r.Trace, TraceEvent{
		Step:    step,
		Gesture: gesture,
		Error:   string(code),
		Seq:     seq,
	})
}
