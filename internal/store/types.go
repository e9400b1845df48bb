package store

import (
	"errors"

	"github.com/roach88/flowline/internal/config"
	"github.com/roach88/flowline/internal/engine"
	"github.com/roach88/flowline/internal/ir"
)

// ErrSessionNotFound is returned when a session id is not in the store.
var ErrSessionNotFound = errors.New("session not found")

// Session is one journaled controller lifetime.
type Session struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Config *config.Config `json:"config"`

	// Entries is the number of journaled gestures. Only ListSessions
	// fills it in.
	Entries int `json:"entries"`
}

// Entry is one journaled gesture.
type Entry struct {
	Position int64              `json:"position"`
	Gesture  engine.GestureKind `json:"gesture"`
	EdgeID   string             `json:"edge_id,omitempty"`
	StepID   ir.StepID          `json:"step_id,omitempty"`
	Label    string             `json:"label,omitempty"`
	Outcome  string             `json:"outcome"`
	Code     ir.ErrorCode       `json:"code,omitempty"`
	Error    string             `json:"error,omitempty"`
	FrameSeq int64              `json:"frame_seq"`

	// Frame is the canonical JSON of the frame after the gesture.
	Frame string `json:"frame"`
}

// ToGesture rebuilds the gesture the entry was recorded from.
func (e Entry) ToGesture() engine.Gesture {
	return engine.Gesture{
		Kind:   e.Gesture,
		EdgeID: e.EdgeID,
		StepID: e.StepID,
		Label:  e.Label,
	}
}

// NewEntry converts a controller outcome into the entry at position.
func NewEntry(position int64, o engine.Outcome) (Entry, error) {
	frame, err := marshalFrame(o.Frame)
	if err != nil {
		return Entry{}, err
	}
	return Entry{
		Position: position,
		Gesture:  o.Gesture.Kind,
		EdgeID:   o.Gesture.EdgeID,
		StepID:   o.Gesture.StepID,
		Label:    o.Gesture.Label,
		Outcome:  o.Result,
		Code:     o.Code,
		Error:    o.Err,
		FrameSeq: o.Frame.Seq,
		Frame:    frame,
	}, nil
}
