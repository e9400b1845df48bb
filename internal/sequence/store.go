// Package sequence owns the canonical linear order of steps.
//
// The Store is the single source of truth for step order. It always holds
// StartID first and EndID last, never contains duplicates, and notifies its
// subscribers synchronously after every successful mutation so that a
// derived projection is never observed stale.
//
// The Store is not safe for concurrent use. It is owned by exactly one
// controller, which serializes gestures.
package sequence

import (
	"slices"

	"github.com/roach88/flowline/internal/ir"
)

// Op identifies the kind of mutation carried by a Change.
type Op int

const (
	// OpInserted reports that Change.ID was inserted at Change.Index.
	OpInserted Op = iota + 1
	// OpRemoved reports that Change.ID was removed from Change.Index.
	OpRemoved
)

// String returns the op name used in logs.
func (o Op) String() string {
	switch o {
	case OpInserted:
		return "inserted"
	case OpRemoved:
		return "removed"
	}
	return "unknown"
}

// Change describes one applied mutation.
type Change struct {
	Op       Op
	ID       ir.StepID
	Index    int
	Revision int64
}

// Subscriber is called synchronously after each successful mutation.
type Subscriber func(Change)

// Store holds the ordered list of step identifiers.
//
// INVARIANTS:
//   - order[0] == ir.StartID and order[len-1] == ir.EndID
//   - len(order) >= 2
//   - no id appears twice
type Store struct {
	order       []ir.StepID
	revision    int64
	subscribers []Subscriber
}

// New creates a store holding [start, end].
func New() *Store {
	return &Store{
		order: []ir.StepID{ir.StartID, ir.EndID},
	}
}

// Subscribe registers fn to be called after every successful mutation.
// Subscribers are called in registration order.
func (s *Store) Subscribe(fn Subscriber) {
	s.subscribers = append(s.subscribers, fn)
}

// InsertAfter inserts newID immediately after anchor.
//
// Fails with NOT_FOUND if anchor is absent, DUPLICATE if newID is already
// present and PROTECTED_ELEMENT if anchor is the end step (nothing may
// follow it).
func (s *Store) InsertAfter(anchor, newID ir.StepID) error {
	idx := s.IndexOf(anchor)
	if idx < 0 {
		return ir.NewNotFoundError(anchor)
	}
	if anchor == ir.EndID {
		return ir.NewProtectedElementError(anchor, "insert after")
	}
	if newID == "" {
		return ir.NewValidationError(newID, "id", "step id is empty")
	}
	if s.Contains(newID) {
		return ir.NewDuplicateError(newID)
	}

	at := idx + 1
	s.order = slices.Insert(s.order, at, newID)
	s.notify(Change{Op: OpInserted, ID: newID, Index: at})
	return nil
}

// Remove deletes id from the order.
//
// Fails with PROTECTED_ELEMENT for start or end and NOT_FOUND if absent.
func (s *Store) Remove(id ir.StepID) error {
	if id.IsBoundary() {
		return ir.NewProtectedElementError(id, "remove")
	}
	idx := s.IndexOf(id)
	if idx < 0 {
		return ir.NewNotFoundError(id)
	}

	s.order = slices.Delete(s.order, idx, idx+1)
	s.notify(Change{Op: OpRemoved, ID: id, Index: idx})
	return nil
}

// IndexOf returns the position of id, or -1 if it is absent.
func (s *Store) IndexOf(id ir.StepID) int {
	return slices.Index(s.order, id)
}

// Contains reports whether id is part of the order.
func (s *Store) Contains(id ir.StepID) bool {
	return s.IndexOf(id) >= 0
}

// Predecessor returns the id immediately before id.
// ok is false if id is absent or is the start step.
func (s *Store) Predecessor(id ir.StepID) (prev ir.StepID, ok bool) {
	idx := s.IndexOf(id)
	if idx <= 0 {
		return "", false
	}
	return s.order[idx-1], true
}

// Snapshot returns a copy of the current order.
// Mutating the returned slice does not affect the store.
func (s *Store) Snapshot() []ir.StepID {
	return slices.Clone(s.order)
}

// Len returns the number of steps, boundaries included.
func (s *Store) Len() int {
	return len(s.order)
}

// Revision returns the number of successful mutations so far.
func (s *Store) Revision() int64 {
	return s.revision
}

func (s *Store) notify(c Change) {
	s.revision++
	c.Revision = s.revision
	for _, fn := range s.subscribers {
		fn(c)
	}
}
