package ir

// StepID identifies a step for its whole lifetime.
type StepID string

// Reserved step identifiers. Both always exist and can never be deleted.
const (
	StartID StepID = "start"
	EndID   StepID = "end"
)

// Default labels for the reserved steps.
const (
	StartLabel = "Start"
	EndLabel   = "End"
)

// IsBoundary reports whether id is one of the reserved boundary steps.
func (id StepID) IsBoundary() bool {
	return id == StartID || id == EndID
}

// Kind distinguishes boundary steps from user-created action steps.
type Kind string

const (
	// KindBoundary is used only by StartID and EndID.
	KindBoundary Kind = "boundary"
	// KindAction is every step inserted by the user.
	KindAction Kind = "action"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindBoundary || k == KindAction
}

// Step is the payload stored in the registry for one step.
type Step struct {
	ID    StepID `json:"id"`
	Label string `json:"label"`
	Kind  Kind   `json:"kind"`
}

// InsertAffordance is the label rendered on every edge.
const InsertAffordance = "+"

// ProjectedNode is a derived node with its computed position.
// Never edited by hand; always produced by the projector.
type ProjectedNode struct {
	ID        StepID `json:"id"`
	X         int64  `json:"x"`
	Y         int64  `json:"y"`
	Label     string `json:"label"`
	Kind      Kind   `json:"kind"`
	Deletable bool   `json:"deletable"`
}

// ProjectedEdge connects two adjacent steps and carries the insert affordance.
type ProjectedEdge struct {
	ID     string `json:"id"`
	Source StepID `json:"source"`
	Target StepID `json:"target"`
	Label  string `json:"label"`
}

// Frame is the read-only triple handed to the presentation layer after
// every change.
//
// EditingTarget is empty while the controller is idle.
type Frame struct {
	Seq           int64           `json:"seq"`
	Nodes         []ProjectedNode `json:"nodes"`
	Edges         []ProjectedEdge `json:"edges"`
	EditingTarget StepID          `json:"editing_target,omitempty"`
}

// Editing reports whether the frame was emitted with an open edit panel.
func (f Frame) Editing() bool {
	return f.EditingTarget != ""
}
