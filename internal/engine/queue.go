package engine

import (
	"fmt"
	"sync"

	"github.com/roach88/flowline/internal/ir"
	"github.com/roach88/flowline/internal/metrics"
)

// GestureKind distinguishes between gesture kinds.
// The values double as the gesture label of flowline_gestures_total.
type GestureKind string

const (
	GestureInsert GestureKind = metrics.GestureInsert
	GestureEdit   GestureKind = metrics.GestureEdit
	GestureSubmit GestureKind = metrics.GestureSubmit
	GestureCancel GestureKind = metrics.GestureCancel
	GestureDelete GestureKind = metrics.GestureDelete
)

// Gesture is one user intent from the presentation layer.
//
// Only the field matching Kind is read: EdgeID for insert, StepID for
// edit, Label for submit. A delete gesture is an already confirmed delete;
// a non-empty StepID pins it to that step.
type Gesture struct {
	Kind   GestureKind
	EdgeID string
	StepID ir.StepID
	Label  string

	// Done, if set, receives the gesture's result once it has been applied.
	// It should be buffered; the loop does not wait for a reader.
	Done chan<- error
}

// String renders the gesture for logs.
func (g Gesture) String() string {
	switch g.Kind {
	case GestureInsert:
		return fmt.Sprintf("insert(%s)", g.EdgeID)
	case GestureEdit:
		return fmt.Sprintf("edit(%s)", g.StepID)
	case GestureSubmit:
		return fmt.Sprintf("submit(%q)", g.Label)
	default:
		return string(g.Kind)
	}
}

// gestureQueue is a thread-safe FIFO queue for gestures.
//
// Producers (a terminal reader, an HTTP handler) enqueue from their own
// goroutines while the Loop's Run method is the only consumer.
//
// The queue uses a channel for signaling to enable context-aware waiting
// in the Run loop.
type gestureQueue struct {
	mu       sync.Mutex
	gestures []Gesture
	closed   bool
	signal   chan struct{} // buffered, size 1
}

func newGestureQueue() *gestureQueue {
	return &gestureQueue{
		gestures: make([]Gesture, 0, 16),
		signal:   make(chan struct{}, 1),
	}
}

// Enqueue adds a gesture to the back of the queue.
// Returns false if the queue is closed.
func (q *gestureQueue) Enqueue(g Gesture) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.gestures = append(q.gestures, g)

	// Non-blocking; the buffer of 1 coalesces multiple signals.
	select {
	case q.signal <- struct{}{}:
	default:
	}

	return true
}

// TryDequeue attempts to dequeue without blocking.
// Returns (Gesture{}, false) if the queue is empty.
func (q *gestureQueue) TryDequeue() (Gesture, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.gestures) == 0 {
		return Gesture{}, false
	}

	g := q.gestures[0]
	// Release the Done channel reference held by the backing array.
	q.gestures[0] = Gesture{}
	if len(q.gestures) == 1 {
		q.gestures = q.gestures[:0]
	} else {
		q.gestures = q.gestures[1:]
	}

	return g, true
}

// Wait returns a channel that signals when gestures may be available.
func (q *gestureQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the current queue length.
func (q *gestureQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.gestures)
}

// Closed reports whether Close has been called.
func (q *gestureQueue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Close signals that no more gestures will be enqueued.
// Wakes any blocked waiters by closing the signal channel.
func (q *gestureQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	close(q.signal)
}
