package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/flowline/internal/ir"
	"github.com/roach88/flowline/internal/projector"
	"github.com/roach88/flowline/internal/registry"
	"github.com/roach88/flowline/internal/sequence"
)

func countingController(t *testing.T) (*Controller, *int) {
	t.Helper()
	frames := 0
	c := New(WithRenderer(RendererFunc(func(ir.Frame) { frames++ })))
	return c, &frames
}

func TestInsert_RollsBackCreateWhenAnchorIsGone(t *testing.T) {
	c, frames := countingController(t)

	// Resolve edges against a diagram that still shows "ghost" even though
	// the sequence never held it.
	seq := sequence.New()
	steps := registry.New()
	require.NoError(t, steps.Create("ghost", "Ghost", ir.KindAction))
	require.NoError(t, seq.InsertAfter(ir.StartID, "ghost"))
	c.live = projector.NewLive(seq, steps, c.layout)

	err := c.OnInsertGesture(projector.EdgeID("ghost", ir.EndID))
	require.Error(t, err)
	assert.True(t, ir.IsNotFound(err))

	assert.Equal(t, []ir.StepID{ir.StartID, ir.EndID}, c.Sequence())
	assert.Len(t, c.Steps(), 2)
	_, ok := c.Step("node-0")
	assert.False(t, ok, "created step must be rolled back")
	assert.Equal(t, 0, *frames)
	assert.Equal(t, StateIdle, c.State())
}

func TestDelete_ReinsertsWhenRegistryDeleteFails(t *testing.T) {
	c, frames := countingController(t)
	require.NoError(t, c.OnInsertGesture("edge-start-end"))
	require.NoError(t, c.OnInsertGesture("edge-node-0-end"))
	require.NoError(t, c.OnEditGesture("node-1"))

	// Drop the payload behind the controller's back so the second half of
	// the delete fails.
	require.NoError(t, c.steps.Delete("node-1"))
	beforeSeq := c.Sequence()
	beforeSteps := c.Steps()
	*frames = 0

	err := c.OnDeleteConfirmed()
	require.Error(t, err)
	assert.True(t, ir.IsNotFound(err))

	assert.Equal(t, []ir.StepID{ir.StartID, "node-0", "node-1", ir.EndID}, c.Sequence())
	assert.Equal(t, beforeSeq, c.Sequence())
	assert.Equal(t, beforeSteps, c.Steps())
	assert.Equal(t, 0, *frames)
	assert.Equal(t, StateEditing, c.State())
	assert.Equal(t, ir.StepID("node-1"), c.EditingTarget())
}

func TestDispatch_PanicReleasesLock(t *testing.T) {
	c := New(WithIDGenerator(NewFixedGenerator("only")))
	require.NoError(t, c.OnInsertGesture("edge-start-end"))

	assert.Panics(t, func() { _ = c.OnInsertGesture("edge-only-end") })

	// The controller must still accept gestures.
	require.NoError(t, c.OnEditGesture("only"))
	assert.Equal(t, StateEditing, c.State())
	assert.Empty(t, c.effects)
}
