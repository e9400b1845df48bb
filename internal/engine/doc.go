// Package engine implements the flowline interaction controller.
//
// The controller is the heart of flowline - it receives gestures from the
// presentation layer (insert on an edge, open the editor, submit, cancel,
// delete), applies them to the sequence store and the step registry as one
// all-or-nothing step, and emits the re-derived frame to every renderer.
//
// ARCHITECTURE:
//
// Single Writer, Run to Completion:
// The controller is the only writer of the (sequence, registry) pair. Each
// gesture runs to completion under the controller's lock before the next
// is accepted, so no gesture observes another one half applied.
//
// Gesture Processing Flow:
//  1. Gesture method called (directly, or via Loop.Enqueue)
//  2. State machine checked (Idle or Editing)
//  3. Registry and sequence mutated; the live projector re-derives the
//     diagram synchronously on each mutation
//  4. On failure, the applied half is rolled back
//  5. A new frame is stamped by the logical clock and handed to renderers
//     after the lock is released
//  6. Observers (e.g. the gesture journal) are told the outcome, applied
//     or not
//  7. Panel calls (open, re-prompt, close) run last, so a gesture a panel
//     fires from inside one of them is rendered and observed after this one
//
// STATES:
//
//	Idle    --OnEditGesture-->                  Editing
//	Editing --OnEditSubmit/OnEditCancel/OnDeleteConfirmed--> Idle
//
// Insert gestures are only accepted while Idle.
package engine
