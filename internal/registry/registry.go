// Package registry maps step identifiers to step payloads.
//
// The registry is independent of order: it knows what each step is, the
// sequence store knows where it is. A new registry always contains the
// boundary steps start and end.
package registry

import (
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/flowline/internal/ir"
)

// Op identifies the kind of mutation carried by a Change.
type Op int

const (
	OpCreated Op = iota + 1
	OpUpdated
	OpDeleted
)

// Change describes one applied mutation.
type Change struct {
	Op   Op
	Step ir.Step
}

// Subscriber is called synchronously after each successful mutation.
type Subscriber func(Change)

// StepPatch is a partial update. Nil fields are left unchanged.
type StepPatch struct {
	Label *string
	Kind  *ir.Kind
}

// Registry stores steps by id and remembers creation order.
//
// Not safe for concurrent use; owned by a single controller.
type Registry struct {
	steps       map[ir.StepID]ir.Step
	created     []ir.StepID
	subscribers []Subscriber
}

// New creates a registry holding the start and end steps.
func New() *Registry {
	r := &Registry{
		steps: make(map[ir.StepID]ir.Step),
	}
	r.put(ir.Step{ID: ir.StartID, Label: ir.StartLabel, Kind: ir.KindBoundary})
	r.put(ir.Step{ID: ir.EndID, Label: ir.EndLabel, Kind: ir.KindBoundary})
	return r
}

// Subscribe registers fn to be called after every successful mutation.
func (r *Registry) Subscribe(fn Subscriber) {
	r.subscribers = append(r.subscribers, fn)
}

// Create adds a step.
//
// Fails with DUPLICATE if id exists and VALIDATION for an empty id, an
// unknown kind, or a boundary kind on a non-boundary id.
func (r *Registry) Create(id ir.StepID, label string, kind ir.Kind) error {
	if id == "" {
		return ir.NewValidationError(id, "id", "step id is empty")
	}
	if _, exists := r.steps[id]; exists {
		return ir.NewDuplicateError(id)
	}
	if !kind.Valid() {
		return ir.NewValidationError(id, "kind", "unknown step kind "+string(kind))
	}
	if kind == ir.KindBoundary {
		return ir.NewValidationError(id, "kind", "only start and end are boundary steps")
	}

	step := ir.Step{ID: id, Label: norm.NFC.String(label), Kind: kind}
	r.put(step)
	r.notify(Change{Op: OpCreated, Step: step})
	return nil
}

// Update replaces the label of an existing step.
// Fails with NOT_FOUND if id is absent.
func (r *Registry) Update(id ir.StepID, label string) error {
	return r.Patch(id, StepPatch{Label: &label})
}

// Patch applies a partial update.
//
// Fails with NOT_FOUND if id is absent and PROTECTED_FIELD if the patch
// would change the step's kind. Re-stating the current kind is allowed.
func (r *Registry) Patch(id ir.StepID, p StepPatch) error {
	step, ok := r.steps[id]
	if !ok {
		return ir.NewNotFoundError(id)
	}
	if p.Kind != nil && *p.Kind != step.Kind {
		return ir.NewProtectedFieldError(id, "kind")
	}
	if p.Label != nil {
		step.Label = norm.NFC.String(*p.Label)
	}

	r.steps[id] = step
	r.notify(Change{Op: OpUpdated, Step: step})
	return nil
}

// Delete removes a step.
// Fails with PROTECTED_ELEMENT for start or end and NOT_FOUND if absent.
func (r *Registry) Delete(id ir.StepID) error {
	if id.IsBoundary() {
		return ir.NewProtectedElementError(id, "delete")
	}
	step, ok := r.steps[id]
	if !ok {
		return ir.NewNotFoundError(id)
	}

	delete(r.steps, id)
	for i, c := range r.created {
		if c == id {
			r.created = append(r.created[:i], r.created[i+1:]...)
			break
		}
	}
	r.notify(Change{Op: OpDeleted, Step: step})
	return nil
}

// Get returns the step for id.
func (r *Registry) Get(id ir.StepID) (ir.Step, bool) {
	step, ok := r.steps[id]
	return step, ok
}

// All returns every step in creation order.
func (r *Registry) All() []ir.Step {
	out := make([]ir.Step, 0, len(r.created))
	for _, id := range r.created {
		out = append(out, r.steps[id])
	}
	return out
}

// Len returns the number of steps, boundaries included.
func (r *Registry) Len() int {
	return len(r.steps)
}

func (r *Registry) put(step ir.Step) {
	r.steps[step.ID] = step
	r.created = append(r.created, step.ID)
}

func (r *Registry) notify(c Change) {
	for _, fn := range r.subscribers {
		fn(c)
	}
}
