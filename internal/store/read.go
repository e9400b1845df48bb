package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/flowline/internal/engine"
	"github.com/roach88/flowline/internal/ir"
)

// ReadSession returns the session with the given id.
// Returns ErrSessionNotFound if there is none.
func (s *Store) ReadSession(ctx context.Context, id string) (Session, error) {
	var sess Session
	var cfgJSON string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, config FROM sessions WHERE id = ?
	`, id).Scan(&sess.ID, &sess.Name, &cfgJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("read session %s: %w", id, ErrSessionNotFound)
	}
	if err != nil {
		return Session{}, fmt.Errorf("read session %s: %w", id, err)
	}

	sess.Config, err = unmarshalConfig(cfgJSON)
	if err != nil {
		return Session{}, fmt.Errorf("read session %s: %w", id, err)
	}
	return sess, nil
}

// ListSessions returns every session, oldest first, with its entry count.
// Returns an empty slice (not nil) if there are none.
func (s *Store) ListSessions(ctx context.Context) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.name, s.config, COUNT(e.position)
		FROM sessions s
		LEFT JOIN entries e ON e.session_id = s.id
		GROUP BY s.id
		ORDER BY s.id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		var sess Session
		var cfgJSON string
		if err := rows.Scan(&sess.ID, &sess.Name, &cfgJSON, &sess.Entries); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if sess.Config, err = unmarshalConfig(cfgJSON); err != nil {
			return nil, fmt.Errorf("session %s: %w", sess.ID, err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// ReadEntries returns the entries of a session in journal order.
// Returns an empty slice (not nil) if the session has none.
func (s *Store) ReadEntries(ctx context.Context, sessionID string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT position, gesture, edge_id, step_id, label, outcome, code, error, frame_seq, frame
		FROM entries
		WHERE session_id = ?
		ORDER BY position ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}

func scanEntry(rows *sql.Rows) (Entry, error) {
	var e Entry
	var gesture, stepID, code string
	err := rows.Scan(
		&e.Position,
		&gesture,
		&e.EdgeID,
		&stepID,
		&e.Label,
		&e.Outcome,
		&code,
		&e.Error,
		&e.FrameSeq,
		&e.Frame,
	)
	if err != nil {
		return Entry{}, fmt.Errorf("scan entry: %w", err)
	}
	e.Gesture = engine.GestureKind(gesture)
	e.StepID = ir.StepID(stepID)
	e.Code = ir.ErrorCode(code)
	return e, nil
}
