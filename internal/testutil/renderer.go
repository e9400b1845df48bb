// Package testutil provides test doubles for the presentation layer.
package testutil

import (
	"sync"

	"github.com/roach88/flowline/internal/ir"
)

// RecordingRenderer keeps every frame it is given.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type RecordingRenderer struct {
	mu     sync.Mutex
	frames []ir.Frame
}

// NewRecordingRenderer creates an empty recorder.
func NewRecordingRenderer() *RecordingRenderer {
	return &RecordingRenderer{}
}

// Render implements engine.Renderer.
func (r *RecordingRenderer) Render(frame ir.Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, frame)
}

// Frames returns a copy of the recorded frames in arrival order.
func (r *RecordingRenderer) Frames() []ir.Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ir.Frame, len(r.frames))
	copy(out, r.frames)
	return out
}

// Len returns the number of recorded frames.
func (r *RecordingRenderer) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

// Last returns the most recent frame. ok is false if none was recorded.
func (r *RecordingRenderer) Last() (frame ir.Frame, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.frames) == 0 {
		return ir.Frame{}, false
	}
	return r.frames[len(r.frames)-1], true
}

// Reset drops all recorded frames.
func (r *RecordingRenderer) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = nil
}
