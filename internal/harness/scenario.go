package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/flowline/internal/engine"
	"github.com/roach88/flowline/internal/ir"
)

// Scenario is a scripted interaction with one workflow.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Config is an optional CUE configuration file. Relative paths are
	// resolved against the scenario file's directory.
	Config string `yaml:"config,omitempty"`

	// Flow is the gesture script, applied in order.
	Flow []FlowStep `yaml:"flow"`

	// Assertions validate the final state.
	Assertions []Assertion `yaml:"assertions"`
}

// FlowStep is one gesture. Exactly one gesture field must be set.
type FlowStep struct {
	Insert *string `yaml:"insert,omitempty"`
	Edit   *string `yaml:"edit,omitempty"`
	Submit *string `yaml:"submit,omitempty"`
	Cancel bool    `yaml:"cancel,omitempty"`

	// Delete requests deletion of the step being edited. The value is the
	// answer given to the confirmation prompt.
	Delete *bool `yaml:"delete,omitempty"`

	// Expect specifies the expected failure. If nil, the gesture must succeed.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies expected gesture failure.
type ExpectClause struct {
	// Error is the expected error code (e.g. "VALIDATION", "INVALID_STATE").
	Error string `yaml:"error"`
}

// Assertion validates the final state of a scenario.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Steps is the expected order (sequence).
	Steps []string `yaml:"steps,omitempty"`

	// Edges is the expected edge id order (edges).
	Edges []string `yaml:"edges,omitempty"`

	// State is "idle" or "editing" (state); Target optionally pins the
	// step being edited.
	State  string `yaml:"state,omitempty"`
	Target string `yaml:"target,omitempty"`

	// Step and Label (label).
	Step  string `yaml:"step,omitempty"`
	Label string `yaml:"label,omitempty"`

	// Nodes, EdgeCount and Frames (counts). Nil fields are not checked.
	Nodes     *int `yaml:"nodes,omitempty"`
	EdgeCount *int `yaml:"edge_count,omitempty"`
	Frames    *int `yaml:"frames,omitempty"`

	// Gesture, Outcome and Count (gesture_count).
	Gesture string `yaml:"gesture,omitempty"`
	Outcome string `yaml:"outcome,omitempty"`
	Count   int    `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertSequence     = "sequence"
	AssertEdges        = "edges"
	AssertState        = "state"
	AssertLabel        = "label"
	AssertCounts       = "counts"
	AssertGestureCount = "gesture_count"
)

var errorCodes = map[string]bool{
	string(ir.ErrCodeNotFound):         true,
	string(ir.ErrCodeDuplicate):        true,
	string(ir.ErrCodeProtectedElement): true,
	string(ir.ErrCodeProtectedField):   true,
	string(ir.ErrCodeValidation):       true,
	string(ir.ErrCodeInvalidState):     true,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data, filepath.Dir(path))
}

// ParseScenario parses scenario YAML, resolving the config path relative
// to baseDir.
func ParseScenario(data []byte, baseDir string) (*Scenario, error) {
	// Strict decoding catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Config != "" && !filepath.IsAbs(scenario.Config) && baseDir != "" {
		scenario.Config = filepath.Join(baseDir, scenario.Config)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// Gesture converts the step into an engine gesture. Delete steps map to a
// confirmed delete; declined deletes are handled by the runner.
func (s FlowStep) Gesture() engine.Gesture {
	switch {
	case s.Insert != nil:
		return engine.Gesture{Kind: engine.GestureInsert, EdgeID: *s.Insert}
	case s.Edit != nil:
		return engine.Gesture{Kind: engine.GestureEdit, StepID: ir.StepID(*s.Edit)}
	case s.Submit != nil:
		return engine.Gesture{Kind: engine.GestureSubmit, Label: *s.Submit}
	case s.Cancel:
		return engine.Gesture{Kind: engine.GestureCancel}
	default:
		return engine.Gesture{Kind: engine.GestureDelete}
	}
}

func (s FlowStep) gestureCount() int {
	n := 0
	if s.Insert != nil {
		n++
	}
	if s.Edit != nil {
		n++
	}
	if s.Submit != nil {
		n++
	}
	if s.Cancel {
		n++
	}
	if s.Delete != nil {
		n++
	}
	return n
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	if s.Config != "" {
		if _, err := os.Stat(s.Config); os.IsNotExist(err) {
			return fmt.Errorf("config file not found: %s", s.Config)
		}
	}

	for i, step := range s.Flow {
		if n := step.gestureCount(); n != 1 {
			return fmt.Errorf("flow[%d]: exactly one gesture is required, got %d", i, n)
		}
		if step.Expect != nil && !errorCodes[step.Expect.Error] {
			return fmt.Errorf("flow[%d].expect: unknown error code %q", i, step.Expect.Error)
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertSequence:
		if len(a.Steps) < 2 {
			return fmt.Errorf("assertions[%d]: steps must list at least start and end", index)
		}
	case AssertEdges:
		if len(a.Edges) == 0 {
			return fmt.Errorf("assertions[%d]: edges list is required for edges", index)
		}
	case AssertState:
		if a.State != engine.StateIdle.String() && a.State != engine.StateEditing.String() {
			return fmt.Errorf("assertions[%d]: state must be idle or editing, got %q", index, a.State)
		}
		if a.Target != "" && a.State != engine.StateEditing.String() {
			return fmt.Errorf("assertions[%d]: target requires state editing", index)
		}
	case AssertLabel:
		if a.Step == "" {
			return fmt.Errorf("assertions[%d]: step is required for label", index)
		}
	case AssertCounts:
		if a.Nodes == nil && a.EdgeCount == nil && a.Frames == nil {
			return fmt.Errorf("assertions[%d]: counts needs at least one of nodes, edge_count, frames", index)
		}
	case AssertGestureCount:
		if a.Gesture == "" || a.Outcome == "" {
			return fmt.Errorf("assertions[%d]: gesture and outcome are required for gesture_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for gesture_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
