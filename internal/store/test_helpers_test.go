package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/flowline/internal/config"
	"github.com/roach88/flowline/internal/engine"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journal.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestJournal begins a session and returns a controller that
// journals into it.
func createTestJournal(t *testing.T, s *Store, cfg *config.Config) (*Journal, *engine.Controller) {
	t.Helper()
	if cfg == nil {
		cfg = config.Default()
	}
	j, err := NewJournal(t.Context(), s, t.Name(), cfg, nil)
	if err != nil {
		t.Fatalf("NewJournal() failed: %v", err)
	}
	opts := append(engine.ConfigOptions(cfg), engine.WithObserver(j))
	return j, engine.New(opts...)
}
