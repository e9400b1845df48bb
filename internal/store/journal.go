package store

import (
	"context"
	"log/slog"
	"sync"

	"github.com/roach88/flowline/internal/config"
	"github.com/roach88/flowline/internal/engine"
	"github.com/roach88/flowline/internal/logging"
)

// Journal writes every outcome of one controller to a session.
// It implements engine.Observer.
type Journal struct {
	store   *Store
	session Session
	logger  *slog.Logger

	mu       sync.Mutex
	position int64
	err      error
}

var _ engine.Observer = (*Journal)(nil)

// NewJournal begins a session and returns a journal writing to it.
// A nil logger discards output.
func NewJournal(ctx context.Context, s *Store, name string, cfg *config.Config, logger *slog.Logger) (*Journal, error) {
	sess, err := s.BeginSession(ctx, name, cfg)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Discard()
	}
	logger.Debug("journal session started", "session", sess.ID, "name", name)
	return &Journal{store: s, session: sess, logger: logger}, nil
}

// Session returns the session being written.
func (j *Journal) Session() Session {
	return j.session
}

// Observe appends o to the session.
//
// Observe has no way to report failure to the controller; the first write
// error is kept and returned by Err, and later outcomes are dropped so the
// journal never has gaps.
func (j *Journal) Observe(o engine.Outcome) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.err != nil {
		return
	}

	position := j.position + 1
	entry, err := NewEntry(position, o)
	if err == nil {
		err = j.store.WriteEntry(context.Background(), j.session.ID, entry)
	}
	if err != nil {
		j.err = err
		j.logger.Error("journal write failed",
			"session", j.session.ID,
			"position", position,
			"error", err)
		return
	}
	j.position = position
}

// Len returns the number of entries written so far.
func (j *Journal) Len() int64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.position
}

// Err returns the first write error, if any.
func (j *Journal) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}
