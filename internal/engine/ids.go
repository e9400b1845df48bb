package engine

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/roach88/flowline/internal/ir"
)

// IDGenerator allocates identifiers for new action steps.
// Implemented by SequentialGenerator (default), UUIDv7Generator and
// FixedGenerator (tests).
type IDGenerator interface {
	Next() ir.StepID
}

// DefaultIDPrefix is the prefix of sequentially allocated ids.
const DefaultIDPrefix = "node-"

// SequentialGenerator allocates prefix0, prefix1, ... in order.
//
// The counter lives on the generator, which is owned by one controller;
// there is no package-level state.
type SequentialGenerator struct {
	mu     sync.Mutex
	prefix string
	next   int
}

// NewSequentialGenerator creates a generator starting at prefix+"0".
// An empty prefix falls back to DefaultIDPrefix.
func NewSequentialGenerator(prefix string) *SequentialGenerator {
	if prefix == "" {
		prefix = DefaultIDPrefix
	}
	return &SequentialGenerator{prefix: prefix}
}

// Next returns the next id and advances the counter.
func (g *SequentialGenerator) Next() ir.StepID {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := ir.StepID(fmt.Sprintf("%s%d", g.prefix, g.next))
	g.next++
	return id
}

// UUIDv7Generator allocates time-sortable UUIDv7 step ids.
//
// UUIDv7 embeds a timestamp in the most significant bits, so ids sort by
// creation time. Thread-safety: stateless and safe for concurrent use.
type UUIDv7Generator struct {
	// Prefix is prepended to every id.
	Prefix string
}

// Next creates a new UUIDv7.
//
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Next() ir.StepID {
	return ir.StepID(g.Prefix + uuid.Must(uuid.NewV7()).String())
}

// FixedGenerator returns predetermined ids for testing.
//
// Thread-safety: FixedGenerator is safe for concurrent use via internal mutex.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []ir.StepID
	idx int
}

// NewFixedGenerator creates a generator that returns ids in order.
//
// Example:
//
//	gen := NewFixedGenerator("a", "b")
//	gen.Next() // "a"
//	gen.Next() // "b"
//	gen.Next() // panic: all ids exhausted
func NewFixedGenerator(ids ...ir.StepID) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// Next returns the next predetermined id.
//
// Panics if all ids have been consumed. This is a fail-fast approach to
// catch test misconfiguration.
func (g *FixedGenerator) Next() ir.StepID {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("FixedGenerator: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}
