package testutil

import (
	"sync"

	"github.com/roach88/flowline/internal/engine"
)

// PanelEvent is one call made on a ScriptedPanel.
type PanelEvent struct {
	// Op is "open", "reprompt" or "close".
	Op   string
	Form engine.EditForm
	Err  error
}

// ScriptedPanel records the calls the controller makes on its edit panel.
type ScriptedPanel struct {
	mu     sync.Mutex
	events []PanelEvent
	open   bool
}

// NewScriptedPanel creates a closed panel.
func NewScriptedPanel() *ScriptedPanel {
	return &ScriptedPanel{}
}

// Open implements engine.EditPanel.
func (p *ScriptedPanel) Open(form engine.EditForm) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.open = true
	p.events = append(p.events, PanelEvent{Op: "open", Form: form})
}

// Reprompt implements engine.EditPanel.
func (p *ScriptedPanel) Reprompt(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, PanelEvent{Op: "reprompt", Err: err})
}

// Close implements engine.EditPanel.
func (p *ScriptedPanel) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.open = false
	p.events = append(p.events, PanelEvent{Op: "close"})
}

// IsOpen reports whether the last Open has not been followed by a Close.
func (p *ScriptedPanel) IsOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.open
}

// Events returns a copy of the recorded calls.
func (p *ScriptedPanel) Events() []PanelEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]PanelEvent, len(p.events))
	copy(out, p.events)
	return out
}

// Ops returns just the operation names of the recorded calls.
func (p *ScriptedPanel) Ops() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	ops := make([]string, len(p.events))
	for i, e := range p.events {
		ops[i] = e.Op
	}
	return ops
}

// ScriptedConfirmer answers confirmation prompts from a fixed script.
// Once the script is exhausted it answers false.
type ScriptedConfirmer struct {
	mu      sync.Mutex
	answers []bool
	prompts []string
}

// NewScriptedConfirmer creates a confirmer giving answers in order.
func NewScriptedConfirmer(answers ...bool) *ScriptedConfirmer {
	return &ScriptedConfirmer{answers: answers}
}

// Confirm implements engine.Confirmer.
func (c *ScriptedConfirmer) Confirm(prompt string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompts = append(c.prompts, prompt)
	if len(c.answers) == 0 {
		return false
	}
	answer := c.answers[0]
	c.answers = c.answers[1:]
	return answer
}

// Prompts returns the prompts seen so far.
func (c *ScriptedConfirmer) Prompts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.prompts))
	copy(out, c.prompts)
	return out
}
