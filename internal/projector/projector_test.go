package projector

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/flowline/internal/ir"
	"github.com/roach88/flowline/internal/registry"
	"github.com/roach88/flowline/internal/sequence"
)

// buildStores creates a sequence and registry holding n action steps.
func buildStores(t *testing.T, n int) (*sequence.Store, *registry.Registry) {
	t.Helper()
	seq := sequence.New()
	reg := registry.New()
	anchor := ir.StartID
	for i := 0; i < n; i++ {
		id := ir.StepID(fmt.Sprintf("node-%d", i))
		require.NoError(t, reg.Create(id, "Action Node", ir.KindAction))
		require.NoError(t, seq.InsertAfter(anchor, id))
		anchor = id
	}
	return seq, reg
}

func TestProject_CountsAndMonotonicY(t *testing.T) {
	for n := 0; n <= 6; n++ {
		t.Run(fmt.Sprintf("%d_actions", n), func(t *testing.T) {
			seq, reg := buildStores(t, n)
			order := seq.Snapshot()

			p, err := Project(order, reg, DefaultLayout())
			require.NoError(t, err)

			assert.Len(t, p.Nodes, len(order))
			assert.Len(t, p.Edges, len(order)-1)
			for i := 1; i < len(p.Nodes); i++ {
				assert.Greater(t, p.Nodes[i].Y, p.Nodes[i-1].Y)
			}
			for _, node := range p.Nodes {
				assert.Equal(t, int64(250), node.X)
			}
			assert.Equal(t, order, p.Order())
		})
	}
}

func TestProject_Positions(t *testing.T) {
	seq, reg := buildStores(t, 2)

	p, err := Project(seq.Snapshot(), reg, Layout{X: 10, TopMargin: 5, VerticalSpacing: 20})
	require.NoError(t, err)

	var ys []int64
	for _, n := range p.Nodes {
		ys = append(ys, n.Y)
	}
	assert.Equal(t, []int64{5, 25, 45, 65}, ys)
}

func TestProject_Edges(t *testing.T) {
	seq, reg := buildStores(t, 1)

	p, err := Project(seq.Snapshot(), reg, DefaultLayout())
	require.NoError(t, err)

	assert.Equal(t, []ir.ProjectedEdge{
		{ID: "edge-start-node-0", Source: ir.StartID, Target: "node-0", Label: "+"},
		{ID: "edge-node-0-end", Source: "node-0", Target: ir.EndID, Label: "+"},
	}, p.Edges)
}

func TestProject_Deletable(t *testing.T) {
	seq, reg := buildStores(t, 1)
	p, err := Project(seq.Snapshot(), reg, DefaultLayout())
	require.NoError(t, err)

	start, _ := p.Node(ir.StartID)
	action, _ := p.Node("node-0")
	end, _ := p.Node(ir.EndID)
	assert.False(t, start.Deletable)
	assert.True(t, action.Deletable)
	assert.False(t, end.Deletable)
	assert.Equal(t, "Start", start.Label)
	assert.Equal(t, ir.KindBoundary, end.Kind)
}

func TestProject_MissingStep(t *testing.T) {
	reg := registry.New()
	_, err := Project([]ir.StepID{ir.StartID, "ghost", ir.EndID}, reg, DefaultLayout())
	require.Error(t, err)
	assert.True(t, ir.IsNotFound(err))
}

func TestProject_Idempotent(t *testing.T) {
	seq, reg := buildStores(t, 3)

	a, err := Project(seq.Snapshot(), reg, DefaultLayout())
	require.NoError(t, err)
	b, err := Project(seq.Snapshot(), reg, DefaultLayout())
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.Equal(t, a, b)
}

func TestProject_StableEdgeIDsForUnchangedPairs(t *testing.T) {
	seq, reg := buildStores(t, 3)
	before, err := Project(seq.Snapshot(), reg, DefaultLayout())
	require.NoError(t, err)

	// Insert between node-1 and node-2; every other pair is untouched
	require.NoError(t, reg.Create("x", "X", ir.KindAction))
	require.NoError(t, seq.InsertAfter("node-1", "x"))
	after, err := Project(seq.Snapshot(), reg, DefaultLayout())
	require.NoError(t, err)

	afterIDs := map[string]bool{}
	for _, e := range after.Edges {
		afterIDs[e.ID] = true
	}
	for _, e := range before.Edges {
		if e.Source == "node-1" {
			assert.False(t, afterIDs[e.ID], "split edge %s must disappear", e.ID)
			continue
		}
		assert.True(t, afterIDs[e.ID], "unchanged edge %s must keep its id", e.ID)
	}
	assert.True(t, afterIDs["edge-node-1-x"])
	assert.True(t, afterIDs["edge-x-node-2"])
}

func TestProjection_EdgeLookup(t *testing.T) {
	seq, reg := buildStores(t, 0)
	p, err := Project(seq.Snapshot(), reg, DefaultLayout())
	require.NoError(t, err)

	e, ok := p.Edge("edge-start-end")
	require.True(t, ok)
	assert.Equal(t, ir.StartID, e.Source)
	assert.Equal(t, ir.EndID, e.Target)

	_, ok = p.Edge("edge-start-node-0")
	assert.False(t, ok)
}

func TestProjection_EqualDetectsDifferences(t *testing.T) {
	seq, reg := buildStores(t, 1)
	a, err := Project(seq.Snapshot(), reg, DefaultLayout())
	require.NoError(t, err)

	b := a.Clone()
	assert.True(t, a.Equal(b))

	b.Nodes[1].Label = "changed"
	assert.False(t, a.Equal(b), "Clone must not share backing arrays")

	c := a.Clone()
	c.Edges = c.Edges[:1]
	assert.False(t, a.Equal(c))
}

func TestMarshalFrame_Canonical(t *testing.T) {
	seq, reg := buildStores(t, 0)
	p, err := Project(seq.Snapshot(), reg, DefaultLayout())
	require.NoError(t, err)

	data, err := MarshalFrame(ir.Frame{Seq: 1, Nodes: p.Nodes, Edges: p.Edges})
	require.NoError(t, err)

	expected := `{"edges":[{"id":"edge-start-end","label":"+","source":"start","target":"end"}],` +
		`"nodes":[{"deletable":false,"id":"start","kind":"boundary","label":"Start","x":250,"y":50},` +
		`{"deletable":false,"id":"end","kind":"boundary","label":"End","x":250,"y":150}],"seq":1}` + "\n"
	assert.Equal(t, expected, string(data))

	data, err = MarshalFrame(ir.Frame{Seq: 2, Nodes: p.Nodes, Edges: p.Edges, EditingTarget: ir.StartID})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"editing_target":"start"`)
}
