package projector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/flowline/internal/ir"
	"github.com/roach88/flowline/internal/registry"
	"github.com/roach88/flowline/internal/sequence"
)

func TestLive_RecomputesOnEveryMutation(t *testing.T) {
	seq := sequence.New()
	reg := registry.New()

	var hooks int
	live := NewLive(seq, reg, DefaultLayout(), WithProjectHook(func(Projection, error) { hooks++ }))
	assert.Equal(t, int64(1), live.Count())

	p, err := live.Current()
	require.NoError(t, err)
	assert.Equal(t, []ir.StepID{ir.StartID, ir.EndID}, p.Order())

	require.NoError(t, reg.Create("node-0", "Action Node", ir.KindAction))
	require.NoError(t, seq.InsertAfter(ir.StartID, "node-0"))

	p, err = live.Current()
	require.NoError(t, err)
	assert.Equal(t, []ir.StepID{ir.StartID, "node-0", ir.EndID}, p.Order())
	assert.Equal(t, int64(3), live.Count())

	require.NoError(t, reg.Update("node-0", "Renamed"))
	p, err = live.Current()
	require.NoError(t, err)
	n, _ := p.Node("node-0")
	assert.Equal(t, "Renamed", n.Label)

	_, found := live.Edge("edge-node-0-end")
	assert.True(t, found)
	assert.Equal(t, int(live.Count()), hooks)
}

func TestLive_FailedMutationDoesNotReproject(t *testing.T) {
	seq := sequence.New()
	reg := registry.New()
	live := NewLive(seq, reg, DefaultLayout())

	_ = seq.Remove(ir.StartID)
	_ = reg.Delete(ir.EndID)
	assert.Equal(t, int64(1), live.Count())
}

func TestLive_KeepsLastGoodProjectionOnError(t *testing.T) {
	seq := sequence.New()
	reg := registry.New()
	live := NewLive(seq, reg, DefaultLayout())

	// Bypass the controller: order references a step the registry lacks
	require.NoError(t, seq.InsertAfter(ir.StartID, "orphan"))

	p, err := live.Current()
	require.Error(t, err)
	assert.True(t, ir.IsNotFound(err))
	assert.Equal(t, []ir.StepID{ir.StartID, ir.EndID}, p.Order())

	require.NoError(t, reg.Create("orphan", "Now present", ir.KindAction))
	p, err = live.Current()
	require.NoError(t, err)
	assert.Len(t, p.Nodes, 3)
}

func TestLive_CurrentIsACopy(t *testing.T) {
	live := NewLive(sequence.New(), registry.New(), DefaultLayout())
	p, _ := live.Current()
	p.Nodes[0].Label = "mutated"

	again, _ := live.Current()
	assert.Equal(t, "Start", again.Nodes[0].Label)
	assert.Equal(t, DefaultLayout(), live.Layout())
}
