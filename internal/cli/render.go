package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/roach88/flowline/internal/ir"
)

// FormatFrame draws a frame as a vertical text diagram:
//
//	#3 editing node-0
//	(Start)            start   y=50
//	   |  + edge-start-node-0
//	[Action Node] *    node-0  y=150
//	   |  + edge-node-0-end
//	(End)              end     y=250
//
// Boundary steps are drawn in parentheses, actions in brackets, and the
// step being edited is marked with an asterisk.
func FormatFrame(frame ir.Frame) string {
	var b strings.Builder

	fmt.Fprintf(&b, "#%d", frame.Seq)
	if frame.Editing() {
		fmt.Fprintf(&b, " editing %s", frame.EditingTarget)
	}
	b.WriteByte('\n')

	for i, n := range frame.Nodes {
		box := "[" + n.Label + "]"
		if n.Kind == ir.KindBoundary {
			box = "(" + n.Label + ")"
		}
		if n.ID == frame.EditingTarget {
			box += " *"
		}
		fmt.Fprintf(&b, "%-18s %-7s y=%d\n", box, n.ID, n.Y)

		if i < len(frame.Edges) {
			e := frame.Edges[i]
			fmt.Fprintf(&b, "   |  %s %s\n", e.Label, e.ID)
		}
	}
	return b.String()
}

// textRenderer prints every frame to w.
type textRenderer struct {
	w io.Writer
}

func (r textRenderer) Render(frame ir.Frame) {
	fmt.Fprint(r.w, FormatFrame(frame))
}
