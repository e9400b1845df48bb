package engine

// State is the interaction state of a controller.
type State int

const (
	// StateIdle means no edit panel is open.
	StateIdle State = iota
	// StateEditing means the edit panel is open for exactly one step.
	StateEditing
)

// String returns the state name used in logs and error messages.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateEditing:
		return "editing"
	default:
		return "unknown"
	}
}
