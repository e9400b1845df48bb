package engine

import "github.com/roach88/flowline/internal/ir"

// EditForm is what the edit panel shows when it opens.
type EditForm struct {
	StepID       ir.StepID
	CurrentLabel string
	Kind         ir.Kind

	// Deletable is false for start and end; the panel should not offer
	// deletion for them.
	Deletable bool
}

// EditPanel is the side-panel capability. Any rendering technology can
// implement it; the controller drives it and the panel answers through
// OnEditSubmit, OnEditCancel and RequestDelete/OnDeleteConfirmed.
//
// Panel methods are called after the controller lock is released, so an
// implementation may call back into the controller.
type EditPanel interface {
	// Open shows the form for a step.
	Open(form EditForm)
	// Reprompt keeps the panel open after a rejected submission.
	Reprompt(err error)
	// Close hides the panel.
	Close()
}

// Confirmer asks the user to confirm a destructive action.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

// Confirm implements Confirmer.
func (f ConfirmFunc) Confirm(prompt string) bool {
	return f(prompt)
}

// Renderer receives every frame the controller emits.
// Frames are shared between renderers and must be treated as read-only.
type Renderer interface {
	Render(frame ir.Frame)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(frame ir.Frame)

// Render implements Renderer.
func (f RendererFunc) Render(frame ir.Frame) {
	f(frame)
}

// nopPanel is used when no panel is configured.
type nopPanel struct{}

func (nopPanel) Open(EditForm)  {}
func (nopPanel) Reprompt(error) {}
func (nopPanel) Close()         {}
