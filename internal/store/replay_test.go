package store

import (
	"context"
	"errors"
	"testing"

	"github.com/roach88/flowline/internal/config"
)

func recordSession(t *testing.T, s *Store, cfg *config.Config) Session {
	t.Helper()
	j, ctrl := createTestJournal(t, s, cfg)

	_ = ctrl.OnInsertGesture("edge-start-end")
	_ = ctrl.OnInsertGesture(string("edge-" + ctrl.Sequence()[1] + "-end"))
	_ = ctrl.OnEditGesture(ctrl.Sequence()[1])
	_ = ctrl.OnEditSubmit("   ")
	_ = ctrl.OnEditSubmit("Review")
	_ = ctrl.OnEditGesture("start")
	_ = ctrl.OnDeleteConfirmed()
	_ = ctrl.OnEditCancel()
	_ = ctrl.OnEditGesture(ctrl.Sequence()[2])
	_ = ctrl.OnDeleteConfirmed()

	if err := j.Err(); err != nil {
		t.Fatalf("journal error: %v", err)
	}
	return j.Session()
}

func TestReplaySession_Reproduces(t *testing.T) {
	s := createTestStore(t)
	sess := recordSession(t, s, nil)

	result, err := s.ReplaySession(context.Background(), sess.ID, nil)
	if err != nil {
		t.Fatalf("ReplaySession() failed: %v", err)
	}
	if result.Entries != 10 {
		t.Errorf("Entries = %d, want 10", result.Entries)
	}
	if !result.OK() {
		t.Errorf("unexpected mismatches: %+v", result.Mismatches)
	}
}

func TestReplaySession_CustomConfig(t *testing.T) {
	s := createTestStore(t)
	cfg := config.Default()
	cfg.IDs.Prefix = "task-"
	cfg.DefaultLabel = "Task"
	cfg.Layout.VerticalSpacing = 60
	sess := recordSession(t, s, cfg)

	result, err := s.ReplaySession(context.Background(), sess.ID, nil)
	if err != nil {
		t.Fatalf("ReplaySession() failed: %v", err)
	}
	if !result.OK() {
		t.Errorf("unexpected mismatches: %+v", result.Mismatches)
	}
}

func TestReplaySession_DetectsTampering(t *testing.T) {
	s := createTestStore(t)
	sess := recordSession(t, s, nil)

	_, err := s.DB().Exec(`UPDATE entries SET outcome = 'ignored', frame = '{}' WHERE session_id = ? AND position = 1`, sess.ID)
	if err != nil {
		t.Fatalf("tamper: %v", err)
	}

	result, err := s.ReplaySession(context.Background(), sess.ID, nil)
	if err != nil {
		t.Fatalf("ReplaySession() failed: %v", err)
	}
	if result.OK() {
		t.Fatal("tampered session replayed cleanly")
	}

	fields := map[string]bool{}
	for _, m := range result.Mismatches {
		if m.Position != 1 {
			t.Errorf("mismatch at position %d, want only 1", m.Position)
		}
		fields[m.Field] = true
	}
	if !fields["outcome"] || !fields["frame"] {
		t.Errorf("mismatched fields = %v, want outcome and frame", fields)
	}
}

func TestReplaySession_UUIDNotReplayable(t *testing.T) {
	s := createTestStore(t)
	cfg := config.Default()
	cfg.IDs.Strategy = config.StrategyUUID
	j, ctrl := createTestJournal(t, s, cfg)
	_ = ctrl.OnInsertGesture("edge-start-end")

	_, err := s.ReplaySession(context.Background(), j.Session().ID, nil)
	if !errors.Is(err, ErrNotReplayable) {
		t.Errorf("ReplaySession() error = %v, want ErrNotReplayable", err)
	}
}

func TestReplaySession_Unknown(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReplaySession(context.Background(), "missing", nil)
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("ReplaySession() error = %v, want ErrSessionNotFound", err)
	}
}

func TestReplaySession_Cancelled(t *testing.T) {
	s := createTestStore(t)
	sess := recordSession(t, s, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.ReplaySession(ctx, sess.ID, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("ReplaySession() error = %v, want context.Canceled", err)
	}
}
