package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/flowline/internal/config"
)

// BeginSession creates a new journal session for a controller built from
// cfg. Session ids are UUIDv7, so they sort by creation time.
func (s *Store) BeginSession(ctx context.Context, name string, cfg *config.Config) (Session, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return Session{}, fmt.Errorf("begin session: %w", err)
	}

	cfgJSON, err := marshalConfig(cfg)
	if err != nil {
		return Session{}, fmt.Errorf("begin session: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, name, config)
		VALUES (?, ?, ?)
	`, id.String(), name, cfgJSON)
	if err != nil {
		return Session{}, fmt.Errorf("begin session: %w", err)
	}

	return Session{ID: id.String(), Name: name, Config: cfg}, nil
}

// WriteEntry appends an entry to a session.
// Uses ON CONFLICT DO NOTHING for idempotency - rewriting a position is
// silently ignored. The session must exist (foreign key constraint).
func (s *Store) WriteEntry(ctx context.Context, sessionID string, e Entry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO entries
		(session_id, position, gesture, edge_id, step_id, label, outcome, code, error, frame_seq, frame)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id, position) DO NOTHING
	`,
		sessionID,
		e.Position,
		string(e.Gesture),
		e.EdgeID,
		string(e.StepID),
		e.Label,
		e.Outcome,
		string(e.Code),
		e.Error,
		e.FrameSeq,
		e.Frame,
	)
	if err != nil {
		return fmt.Errorf("write entry: %w", err)
	}
	return nil
}
