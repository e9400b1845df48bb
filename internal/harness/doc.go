// Package harness replays gesture scenarios against a flowline controller.
//
// A scenario is a YAML script of presentation-layer gestures plus the
// assertions that must hold once the script has run. Every scenario runs on
// a fresh controller with sequential ids, so the same script always yields
// the same final frame.
//
// # Scenario Format
//
//	name: delete_middle_step
//	description: "Deleting a middle step reconnects its neighbours"
//	config: flowline.cue            # optional, relative to the scenario file
//	flow:
//	  - insert: edge-start-end
//	  - insert: edge-node-0-end
//	  - edit: node-0
//	  - delete: true                # confirmed; false declines the prompt
//	  - submit: ""
//	    expect:
//	      error: INVALID_STATE
//	assertions:
//	  - type: sequence
//	    steps: [start, node-1, end]
//	  - type: edges
//	    edges: [edge-start-node-1, edge-node-1-end]
//
// A flow step without an expect clause must succeed. Ignored gestures
// (an insert on an edge that no longer exists) succeed as well.
//
// # Assertion Types
//
//   - sequence: the order of step ids, boundaries included
//   - edges: the edge ids of the final projection, in order
//   - state: idle or editing, optionally with the editing target
//   - label: the label of one step
//   - counts: number of nodes, edges and emitted frames
//   - gesture_count: a flowline_gestures_total series
//
// # Golden Files
//
// RunWithGolden compares the canonical JSON of the final frame with
// testdata/golden/<name>.golden. To regenerate golden files, run:
//
//	go test ./internal/harness -update
package harness
