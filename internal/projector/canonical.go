package projector

import (
	"github.com/roach88/flowline/internal/ir"
)

// CanonicalMap converts a frame to a map[string]any for canonical JSON
// serialization. ir.MarshalCanonical only handles primitives, slices and maps.
func CanonicalMap(f ir.Frame) map[string]any {
	nodes := make([]any, len(f.Nodes))
	for i, n := range f.Nodes {
		nodes[i] = map[string]any{
			"id":        n.ID,
			"x":         n.X,
			"y":         n.Y,
			"label":     n.Label,
			"kind":      n.Kind,
			"deletable": n.Deletable,
		}
	}

	edges := make([]any, len(f.Edges))
	for i, e := range f.Edges {
		edges[i] = map[string]any{
			"id":     e.ID,
			"source": e.Source,
			"target": e.Target,
			"label":  e.Label,
		}
	}

	m := map[string]any{
		"seq":   f.Seq,
		"nodes": nodes,
		"edges": edges,
	}
	if f.EditingTarget != "" {
		m["editing_target"] = f.EditingTarget
	}
	return m
}

// MarshalFrame renders a frame as canonical JSON followed by a newline.
// The output is byte-stable and suitable for golden files.
func MarshalFrame(f ir.Frame) ([]byte, error) {
	data, err := ir.MarshalCanonical(CanonicalMap(f))
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
