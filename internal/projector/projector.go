// Package projector derives the node/edge diagram from the step order.
//
// Project is a pure function: the same order, steps and layout always yield
// structurally equal projections. The diagram is recomputed from scratch on
// every change and never patched incrementally, so it cannot drift from the
// order it was derived from.
package projector

import (
	"github.com/roach88/flowline/internal/ir"
)

// Layout holds the constants of the single-column diagram.
type Layout struct {
	X               int64 `json:"x"`
	TopMargin       int64 `json:"top_margin"`
	VerticalSpacing int64 `json:"vertical_spacing"`
}

// DefaultLayout returns the layout of the original builder: one column at
// x=250, first node at y=50, 100 units between nodes.
func DefaultLayout() Layout {
	return Layout{X: 250, TopMargin: 50, VerticalSpacing: 100}
}

// Y returns the vertical position of the node at index.
func (l Layout) Y(index int) int64 {
	return l.TopMargin + int64(index)*l.VerticalSpacing
}

// StepSource looks up step payloads. *registry.Registry satisfies it.
type StepSource interface {
	Get(id ir.StepID) (ir.Step, bool)
}

// EdgeID derives the stable identifier of the edge between two steps.
// An unchanged adjacent pair keeps its id across re-projections.
func EdgeID(source, target ir.StepID) string {
	return "edge-" + string(source) + "-" + string(target)
}

// Projection is one derived diagram.
type Projection struct {
	Nodes []ir.ProjectedNode
	Edges []ir.ProjectedEdge
}

// Project derives nodes and edges from order.
//
// Nodes are laid out top to bottom in order; there is one edge per adjacent
// pair. Fails with NOT_FOUND if a step in order has no payload in steps.
func Project(order []ir.StepID, steps StepSource, layout Layout) (Projection, error) {
	p := Projection{
		Nodes: make([]ir.ProjectedNode, 0, len(order)),
		Edges: make([]ir.ProjectedEdge, 0, max(len(order)-1, 0)),
	}

	for i, id := range order {
		step, ok := steps.Get(id)
		if !ok {
			return Projection{}, ir.NewNotFoundError(id)
		}
		p.Nodes = append(p.Nodes, ir.ProjectedNode{
			ID:        id,
			X:         layout.X,
			Y:         layout.Y(i),
			Label:     step.Label,
			Kind:      step.Kind,
			Deletable: !id.IsBoundary(),
		})
	}

	for i := 0; i+1 < len(order); i++ {
		source, target := order[i], order[i+1]
		p.Edges = append(p.Edges, ir.ProjectedEdge{
			ID:     EdgeID(source, target),
			Source: source,
			Target: target,
			Label:  ir.InsertAffordance,
		})
	}

	return p, nil
}

// Edge resolves an edge id against this projection.
func (p Projection) Edge(id string) (ir.ProjectedEdge, bool) {
	for _, e := range p.Edges {
		if e.ID == id {
			return e, true
		}
	}
	return ir.ProjectedEdge{}, false
}

// Node returns the projected node for id.
func (p Projection) Node(id ir.StepID) (ir.ProjectedNode, bool) {
	for _, n := range p.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return ir.ProjectedNode{}, false
}

// Order returns the step ids in diagram order.
func (p Projection) Order() []ir.StepID {
	ids := make([]ir.StepID, len(p.Nodes))
	for i, n := range p.Nodes {
		ids[i] = n.ID
	}
	return ids
}

// Equal reports whether two projections are structurally equal.
func (p Projection) Equal(other Projection) bool {
	if len(p.Nodes) != len(other.Nodes) || len(p.Edges) != len(other.Edges) {
		return false
	}
	for i := range p.Nodes {
		if p.Nodes[i] != other.Nodes[i] {
			return false
		}
	}
	for i := range p.Edges {
		if p.Edges[i] != other.Edges[i] {
			return false
		}
	}
	return true
}

// Clone returns a deep copy so callers can hand it out read-only.
func (p Projection) Clone() Projection {
	return Projection{
		Nodes: append([]ir.ProjectedNode(nil), p.Nodes...),
		Edges: append([]ir.ProjectedEdge(nil), p.Edges...),
	}
}
