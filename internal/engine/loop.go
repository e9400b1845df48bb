package engine

import (
	"context"
	"errors"
	"log/slog"
)

// ErrLoopStopped is returned by Submit after Stop.
var ErrLoopStopped = errors.New("gesture loop stopped")

// Loop feeds gestures from any number of producers into one controller.
//
// Producers call Enqueue from their own goroutines; Run is the only
// consumer, so gestures are applied strictly in arrival order.
type Loop struct {
	ctrl   *Controller
	queue  *gestureQueue
	logger *slog.Logger
}

// NewLoop creates a loop for ctrl. A nil logger discards output.
func NewLoop(ctrl *Controller, logger *slog.Logger) *Loop {
	if logger == nil {
		logger = ctrl.logger
	}
	return &Loop{
		ctrl:   ctrl,
		queue:  newGestureQueue(),
		logger: logger,
	}
}

// Enqueue schedules g. Returns false once the loop has been stopped.
func (l *Loop) Enqueue(g Gesture) bool {
	return l.queue.Enqueue(g)
}

// Pending returns the number of gestures waiting to be applied.
func (l *Loop) Pending() int {
	return l.queue.Len()
}

// Run applies queued gestures until ctx is cancelled or Stop is called
// and the queue has drained.
//
// A rejected gesture is logged and reported on its Done channel; it never
// stops the loop.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Info("gesture loop starting")

	for {
		g, ok := l.queue.TryDequeue()
		if ok {
			err := l.ctrl.Apply(g)
			if err != nil {
				l.logger.Debug("gesture failed", "gesture", g.String(), "error", err)
			}
			if g.Done != nil {
				g.Done <- err
			}
			continue
		}

		select {
		case <-ctx.Done():
			l.logger.Info("gesture loop stopping: context cancelled")
			l.queue.Close()
			return ctx.Err()

		case <-l.queue.Wait():
			// The signal channel is closed by Stop, so this case fires
			// immediately once the queue is closed.
			if l.queue.Closed() && l.queue.Len() == 0 {
				l.logger.Info("gesture loop stopping: queue closed")
				return nil
			}
		}
	}
}

// Stop closes the queue. Run returns after the remaining gestures are
// applied.
func (l *Loop) Stop() {
	l.queue.Close()
}

// Submit enqueues g and waits for its result.
func (l *Loop) Submit(ctx context.Context, g Gesture) error {
	done := make(chan error, 1)
	g.Done = done
	if !l.queue.Enqueue(g) {
		return ErrLoopStopped
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
