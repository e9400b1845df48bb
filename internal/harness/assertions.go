package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/roach88/flowline/internal/engine"
	"github.com/roach88/flowline/internal/ir"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			if event.Error != "" {
				fmt.Fprintf(&buf, "  [%d] %s -> %s\n", event.Step, event.Gesture, event.Error)
			} else {
				fmt.Fprintf(&buf, "  [%d] %s\n", event.Step, event.Gesture)
			}
		}
	}

	return buf.String()
}

// AssertionContext gives assertions access to the controller under test.
type AssertionContext struct {
	Controller *engine.Controller
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertSequence:
			err = assertSequence(result, assertion)
		case AssertEdges:
			err = assertEdges(result, assertion)
		case AssertState:
			err = assertState(result, assertion)
		case AssertLabel:
			err = assertLabel(result, assertion)
		case AssertCounts:
			err = assertCounts(result, assertion)
		case AssertGestureCount:
			if actx == nil || actx.Controller == nil {
				err = fmt.Errorf("assertion[%d]: gesture_count requires a controller", i)
			} else {
				err = assertGestureCount(result, actx.Controller, assertion)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}

func nodeIDs(frame ir.Frame) []string {
	ids := make([]string, len(frame.Nodes))
	for i, n := range frame.Nodes {
		ids[i] = string(n.ID)
	}
	return ids
}

func edgeIDs(frame ir.Frame) []string {
	ids := make([]string, len(frame.Edges))
	for i, e := range frame.Edges {
		ids[i] = e.ID
	}
	return ids
}

// assertSequence compares the node order of the final frame, which always
// mirrors the sequence.
func assertSequence(result *Result, a Assertion) error {
	got := nodeIDs(result.Frame)
	if !slices.Equal(got, a.Steps) {
		return &AssertionError{
			Type:     AssertSequence,
			Expected: fmt.Sprintf("%v", a.Steps),
			Actual:   fmt.Sprintf("%v", got),
			Trace:    result.Trace,
		}
	}
	return nil
}

func assertEdges(result *Result, a Assertion) error {
	got := edgeIDs(result.Frame)
	if !slices.Equal(got, a.Edges) {
		return &AssertionError{
			Type:     AssertEdges,
			Expected: fmt.Sprintf("%v", a.Edges),
			Actual:   fmt.Sprintf("%v", got),
			Trace:    result.Trace,
		}
	}
	return nil
}

func assertState(result *Result, a Assertion) error {
	state := engine.StateIdle.String()
	if result.Frame.Editing() {
		state = engine.StateEditing.String()
	}

	if state != a.State {
		return &AssertionError{
			Type:     AssertState,
			Expected: a.State,
			Actual:   state,
			Trace:    result.Trace,
		}
	}
	if a.Target != "" && string(result.Frame.EditingTarget) != a.Target {
		return &AssertionError{
			Type:     AssertState,
			Expected: fmt.Sprintf("editing %s", a.Target),
			Actual:   fmt.Sprintf("editing %s", result.Frame.EditingTarget),
			Trace:    result.Trace,
		}
	}
	return nil
}

func assertLabel(result *Result, a Assertion) error {
	for _, n := range result.Frame.Nodes {
		if string(n.ID) != a.Step {
			continue
		}
		if n.Label != a.Label {
			return &AssertionError{
				Type:     AssertLabel,
				Expected: fmt.Sprintf("%s labelled %q", a.Step, a.Label),
				Actual:   fmt.Sprintf("%s labelled %q", a.Step, n.Label),
				Trace:    result.Trace,
			}
		}
		return nil
	}

	return &AssertionError{
		Type:     AssertLabel,
		Expected: fmt.Sprintf("%s labelled %q", a.Step, a.Label),
		Actual:   fmt.Sprintf("step %s not in the final frame", a.Step),
		Trace:    result.Trace,
	}
}

func assertCounts(result *Result, a Assertion) error {
	var mismatches []string
	check := func(name string, want *int, got int) {
		if want != nil && *want != got {
			mismatches = append(mismatches, fmt.Sprintf("%s=%d (want %d)", name, got, *want))
		}
	}
	check("nodes", a.Nodes, len(result.Frame.Nodes))
	check("edge_count", a.EdgeCount, len(result.Frame.Edges))
	check("frames", a.Frames, result.Frames)

	if len(mismatches) > 0 {
		return &AssertionError{
			Type:     AssertCounts,
			Expected: "counts to match",
			Actual:   strings.Join(mismatches, ", "),
			Trace:    result.Trace,
		}
	}
	return nil
}

func assertGestureCount(result *Result, ctrl *engine.Controller, a Assertion) error {
	got := int(testutil.ToFloat64(ctrl.Metrics().GestureCounter(a.Gesture, a.Outcome)))
	if got != a.Count {
		return &AssertionError{
			Type:     AssertGestureCount,
			Expected: fmt.Sprintf("%d %s gestures %s", a.Count, a.Gesture, a.Outcome),
			Actual:   fmt.Sprintf("%d", got),
			Trace:    result.Trace,
		}
	}
	return nil
}
