package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/flowline/internal/config"
	"github.com/roach88/flowline/internal/engine"
	"github.com/roach88/flowline/internal/logging"
)

// ErrNotReplayable is returned for sessions whose step ids cannot be
// reproduced, i.e. sessions recorded with UUID ids.
var ErrNotReplayable = errors.New("session cannot be replayed")

// Mismatch is a difference between a journaled entry and its replay.
type Mismatch struct {
	Position int64  `json:"position"`
	Field    string `json:"field"`
	Want     string `json:"want"`
	Got      string `json:"got"`
}

// ReplayResult is the outcome of ReplaySession.
type ReplayResult struct {
	Session    Session    `json:"session"`
	Entries    int        `json:"entries"`
	Mismatches []Mismatch `json:"mismatches,omitempty"`
}

// OK reports whether the replay reproduced every entry.
func (r *ReplayResult) OK() bool {
	return len(r.Mismatches) == 0
}

// ReplaySession re-applies the gestures of a session to a fresh controller
// built from the session's config and compares every outcome and frame
// with the journal.
//
// Declined delete confirmations never reach the controller and so are not
// journaled; replay does not need them.
func (s *Store) ReplaySession(ctx context.Context, sessionID string, logger *slog.Logger) (*ReplayResult, error) {
	sess, err := s.ReadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Config.IDs.Strategy == config.StrategyUUID {
		return nil, fmt.Errorf("replay session %s: %w: step ids are random", sessionID, ErrNotReplayable)
	}

	entries, err := s.ReadEntries(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Discard()
	}

	var got []engine.Outcome
	opts := append(engine.ConfigOptions(sess.Config),
		engine.WithLogger(logger),
		engine.WithObserver(engine.ObserverFunc(func(o engine.Outcome) {
			got = append(got, o)
		})),
	)
	ctrl := engine.New(opts...)

	result := &ReplayResult{Session: sess, Entries: len(entries)}
	for _, want := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n := len(got)
		// The returned error is the journaled one; it is compared below.
		_ = ctrl.Apply(want.ToGesture())
		if len(got) != n+1 {
			result.add(want.Position, "outcome", want.Outcome, "none")
			continue
		}

		replayed, err := NewEntry(want.Position, got[n])
		if err != nil {
			return nil, fmt.Errorf("replay session %s: %w", sessionID, err)
		}
		result.compare(want, replayed)
	}

	logger.Debug("session replayed",
		"session", sessionID,
		"entries", result.Entries,
		"mismatches", len(result.Mismatches))
	return result, nil
}

func (r *ReplayResult) compare(want, got Entry) {
	if want.Outcome != got.Outcome {
		r.add(want.Position, "outcome", want.Outcome, got.Outcome)
	}
	if want.Code != got.Code {
		r.add(want.Position, "code", string(want.Code), string(got.Code))
	}
	if want.FrameSeq != got.FrameSeq {
		r.add(want.Position, "frame_seq", fmt.Sprint(want.FrameSeq), fmt.Sprint(got.FrameSeq))
	}
	if want.Frame != got.Frame {
		r.add(want.Position, "frame", want.Frame, got.Frame)
	}
}

func (r *ReplayResult) add(position int64, field, want, got string) {
	r.Mismatches = append(r.Mismatches, Mismatch{
		Position: position,
		Field:    field,
		Want:     want,
		Got:      got,
	})
}
