package engine

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/roach88/flowline/internal/config"
	"github.com/roach88/flowline/internal/ir"
	"github.com/roach88/flowline/internal/logging"
	"github.com/roach88/flowline/internal/metrics"
	"github.com/roach88/flowline/internal/projector"
	"github.com/roach88/flowline/internal/registry"
	"github.com/roach88/flowline/internal/sequence"
)

// DefaultLabel is the label given to newly inserted action steps.
const DefaultLabel = "Action Node"

// Controller translates gestures into mutations of one workflow.
//
// It owns the sequence store, the step registry and the live projector, and
// is their only writer. All gesture methods are safe for concurrent use;
// gestures are serialized and each runs to completion.
type Controller struct {
	mu sync.Mutex

	seq   *sequence.Store
	steps *registry.Registry
	live  *projector.Live
	clock *Clock

	ids          IDGenerator
	layout       projector.Layout
	defaultLabel string
	logger       *slog.Logger
	metrics      *metrics.Recorder
	panel        EditPanel
	renderers    []Renderer
	observers    []Observer

	editing ir.StepID

	// effects are the panel calls queued by the current gesture. They run
	// after mu is released, so a panel can call back into the controller.
	effects []func()
}

// Option configures a Controller.
type Option func(*Controller)

// WithLayout sets the projection layout.
func WithLayout(layout projector.Layout) Option {
	return func(c *Controller) {
		c.layout = layout
	}
}

// WithIDGenerator sets the id allocator for inserted steps.
func WithIDGenerator(ids IDGenerator) Option {
	return func(c *Controller) {
		c.ids = ids
	}
}

// WithDefaultLabel sets the label of inserted steps.
func WithDefaultLabel(label string) Option {
	return func(c *Controller) {
		c.defaultLabel = label
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(rec *metrics.Recorder) Option {
	return func(c *Controller) {
		c.metrics = rec
	}
}

// WithPanel sets the edit panel driven by edit gestures.
func WithPanel(panel EditPanel) Option {
	return func(c *Controller) {
		c.panel = panel
	}
}

// WithRenderer subscribes r before the first frame exists.
// Unlike Subscribe, it does not render the initial frame.
func WithRenderer(r Renderer) Option {
	return func(c *Controller) {
		c.renderers = append(c.renderers, r)
	}
}

// ConfigOptions translates a loaded configuration into controller options.
func ConfigOptions(cfg *config.Config) []Option {
	opts := []Option{
		WithLayout(cfg.Layout),
		WithDefaultLabel(cfg.DefaultLabel),
	}
	switch cfg.IDs.Strategy {
	case config.StrategyUUID:
		opts = append(opts, WithIDGenerator(UUIDv7Generator{Prefix: cfg.IDs.Prefix}))
	default:
		opts = append(opts, WithIDGenerator(NewSequentialGenerator(cfg.IDs.Prefix)))
	}
	return opts
}

// New creates a controller holding the minimal workflow [start, end],
// in the Idle state.
func New(opts ...Option) *Controller {
	c := &Controller{
		seq:          sequence.New(),
		steps:        registry.New(),
		clock:        NewClock(),
		layout:       projector.DefaultLayout(),
		defaultLabel: DefaultLabel,
		logger:       logging.Discard(),
		panel:        nopPanel{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.ids == nil {
		c.ids = NewSequentialGenerator(DefaultIDPrefix)
	}
	if c.metrics == nil {
		c.metrics = metrics.New()
	}

	c.live = projector.NewLive(c.seq, c.steps, c.layout,
		projector.WithProjectHook(func(p projector.Projection, err error) {
			c.metrics.Projection(len(p.Nodes), err)
		}))
	return c
}

// OnInsertGesture inserts a new action step on the edge edgeID.
//
// The edge is resolved against the current projection. An edge that no
// longer resolves (a double click on a split edge) is ignored and nil is
// returned. Fails with INVALID_STATE while editing.
func (c *Controller) OnInsertGesture(edgeID string) error {
	return c.dispatch(Gesture{Kind: GestureInsert, EdgeID: edgeID}, func() (string, error) {
		return c.insert(edgeID)
	})
}

// OnEditGesture opens the edit panel for stepID.
//
// An empty or unknown id is ignored. Fails with INVALID_STATE while
// already editing.
func (c *Controller) OnEditGesture(stepID ir.StepID) error {
	return c.dispatch(Gesture{Kind: GestureEdit, StepID: stepID}, func() (string, error) {
		return c.edit(stepID)
	})
}

// OnEditSubmit stores label on the step being edited and closes the panel.
//
// A blank label fails with VALIDATION; the panel is asked to re-prompt and
// the controller stays in Editing. Fails with INVALID_STATE while idle.
func (c *Controller) OnEditSubmit(label string) error {
	return c.dispatch(Gesture{Kind: GestureSubmit, Label: label}, func() (string, error) {
		return c.submit(label)
	})
}

// OnEditCancel closes the edit panel without changes.
// Cancelling while idle is a no-op.
func (c *Controller) OnEditCancel() error {
	return c.dispatch(Gesture{Kind: GestureCancel}, c.cancel)
}

// OnDeleteConfirmed deletes the step being edited.
//
// Start and end fail with PROTECTED_ELEMENT and nothing changes. Fails with
// INVALID_STATE while idle.
func (c *Controller) OnDeleteConfirmed() error {
	return c.deleteConfirmed("")
}

// deleteConfirmed deletes target, or whatever step is being edited when
// target is empty.
func (c *Controller) deleteConfirmed(target ir.StepID) error {
	return c.dispatch(Gesture{Kind: GestureDelete, StepID: target}, func() (string, error) {
		return c.delete(target)
	})
}

// RequestDelete asks confirmer before deleting the step being edited.
// deleted is false if the user declined or the delete failed.
//
// The delete is pinned to the step the user was asked about: if the editor
// moved to another step while the confirmer was open, it fails with
// INVALID_STATE and nothing is deleted.
func (c *Controller) RequestDelete(confirmer Confirmer) (deleted bool, err error) {
	c.mu.Lock()
	target := c.editing
	step, _ := c.steps.Get(target)
	c.mu.Unlock()

	if target == "" {
		return false, c.OnDeleteConfirmed()
	}
	if target.IsBoundary() {
		// Nothing to confirm; let the delete report the protection.
		return false, c.deleteConfirmed(target)
	}

	if !confirmer.Confirm(fmt.Sprintf("Delete step %q (%s)?", step.Label, target)) {
		c.logger.Debug("delete declined", "step", target)
		return false, nil
	}
	if err := c.deleteConfirmed(target); err != nil {
		return false, err
	}
	return true, nil
}

// Apply routes a queued gesture to its handler.
func (c *Controller) Apply(g Gesture) error {
	switch g.Kind {
	case GestureInsert:
		return c.OnInsertGesture(g.EdgeID)
	case GestureEdit:
		return c.OnEditGesture(g.StepID)
	case GestureSubmit:
		return c.OnEditSubmit(g.Label)
	case GestureCancel:
		return c.OnEditCancel()
	case GestureDelete:
		return c.deleteConfirmed(g.StepID)
	default:
		return fmt.Errorf("unknown gesture kind: %q", g.Kind)
	}
}

// Subscribe adds a renderer and immediately renders the current frame
// to it.
func (c *Controller) Subscribe(r Renderer) {
	c.mu.Lock()
	c.renderers = append(c.renderers, r)
	frame := c.frameLocked(c.clock.Current())
	c.mu.Unlock()

	r.Render(frame)
}

// Frame returns the current triple, stamped with the sequence number of
// the last emitted frame.
func (c *Controller) Frame() ir.Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frameLocked(c.clock.Current())
}

// State returns the interaction state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

// EditingTarget returns the step being edited, or "" while idle.
func (c *Controller) EditingTarget() ir.StepID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.editing
}

// Sequence returns a copy of the current order.
func (c *Controller) Sequence() []ir.StepID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq.Snapshot()
}

// Step returns the payload of id.
func (c *Controller) Step(id ir.StepID) (ir.Step, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.steps.Get(id)
}

// Steps returns every step in creation order.
func (c *Controller) Steps() []ir.Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.steps.All()
}

// Projection returns a copy of the current projection.
func (c *Controller) Projection() projector.Projection {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, _ := c.live.Current()
	return p
}

// Metrics returns the controller's metrics recorder.
func (c *Controller) Metrics() *metrics.Recorder {
	return c.metrics
}

// dispatch runs fn under the lock, records its outcome and emits a frame
// if the gesture was applied.
//
// Renderers and observers are notified before the panel effects queued by
// fn run. A panel may call back into the controller, and the nested
// gesture's frame and outcome must follow this one's, never precede it.
func (c *Controller) dispatch(g Gesture, fn func() (string, error)) error {
	notify, effects, err := c.handle(g, fn)

	for _, fx := range notify {
		fx()
	}
	for _, fx := range effects {
		fx()
	}
	return err
}

// handle is the locked half of dispatch. The deferred unlock keeps the
// controller usable if fn panics.
func (c *Controller) handle(g Gesture, fn func() (string, error)) (notify, effects []func(), err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer func() {
		effects = c.effects
		c.effects = nil
	}()

	outcome, err := fn()
	c.record(g.Kind, outcome, err)

	var frame ir.Frame
	if outcome == metrics.OutcomeApplied {
		frame = c.frameLocked(c.clock.Next())
		renderers := slices.Clone(c.renderers)
		notify = append(notify, func() {
			for _, r := range renderers {
				r.Render(frame)
			}
		})
	}
	if len(c.observers) > 0 {
		if outcome != metrics.OutcomeApplied {
			frame = c.frameLocked(c.clock.Current())
		}
		g.Done = nil
		res := Outcome{
			Gesture: g,
			Result:  outcome,
			Code:    ir.CodeOf(err),
			Frame:   frame,
		}
		if err != nil {
			res.Err = err.Error()
		}
		observers := slices.Clone(c.observers)
		notify = append(notify, func() {
			for _, o := range observers {
				o.Observe(res)
			}
		})
	}
	return notify, nil, err
}

func (c *Controller) record(kind GestureKind, outcome string, err error) {
	c.metrics.Gesture(string(kind), outcome)
	switch outcome {
	case metrics.OutcomeRejected:
		c.logger.Info("gesture rejected",
			"gesture", string(kind),
			"code", string(ir.CodeOf(err)),
			"error", err)
	default:
		c.logger.Debug("gesture handled",
			"gesture", string(kind),
			"outcome", outcome,
			"state", c.stateLocked().String(),
			"length", c.seq.Len())
	}
}

func (c *Controller) insert(edgeID string) (string, error) {
	if c.editing != "" {
		return metrics.OutcomeRejected, ir.NewInvalidStateError("insert", c.stateLocked().String())
	}

	edge, ok := c.live.Edge(edgeID)
	if !ok {
		c.logger.Debug("insert on unresolved edge ignored", "edge", edgeID)
		return metrics.OutcomeIgnored, nil
	}

	id := c.ids.Next()
	if err := c.steps.Create(id, c.defaultLabel, ir.KindAction); err != nil {
		return metrics.OutcomeRejected, err
	}
	if err := c.seq.InsertAfter(edge.Source, id); err != nil {
		if rbErr := c.steps.Delete(id); rbErr != nil {
			c.logger.Error("rollback of step create failed", "step", id, "error", rbErr)
		}
		return metrics.OutcomeRejected, err
	}

	c.logger.Debug("step inserted", "step", id, "after", edge.Source)
	return metrics.OutcomeApplied, nil
}

func (c *Controller) edit(stepID ir.StepID) (string, error) {
	if c.editing != "" {
		return metrics.OutcomeRejected, ir.NewInvalidStateError("edit", c.stateLocked().String())
	}
	if stepID == "" {
		return metrics.OutcomeIgnored, nil
	}
	step, ok := c.steps.Get(stepID)
	if !ok || !c.seq.Contains(stepID) {
		c.logger.Debug("edit on unknown step ignored", "step", stepID)
		return metrics.OutcomeIgnored, nil
	}

	c.editing = stepID
	form := EditForm{
		StepID:       step.ID,
		CurrentLabel: step.Label,
		Kind:         step.Kind,
		Deletable:    !step.ID.IsBoundary(),
	}
	panel := c.panel
	c.effects = append(c.effects, func() { panel.Open(form) })
	return metrics.OutcomeApplied, nil
}

func (c *Controller) submit(label string) (string, error) {
	if c.editing == "" {
		return metrics.OutcomeRejected, ir.NewInvalidStateError("submit", c.stateLocked().String())
	}

	trimmed := strings.TrimSpace(label)
	if trimmed == "" {
		err := ir.NewValidationError(c.editing, "label", "label must not be empty")
		panel := c.panel
		c.effects = append(c.effects, func() { panel.Reprompt(err) })
		return metrics.OutcomeRejected, err
	}
	if err := c.steps.Update(c.editing, trimmed); err != nil {
		return metrics.OutcomeRejected, err
	}

	c.closeEditor()
	return metrics.OutcomeApplied, nil
}

func (c *Controller) cancel() (string, error) {
	if c.editing == "" {
		return metrics.OutcomeIgnored, nil
	}
	c.closeEditor()
	return metrics.OutcomeApplied, nil
}

func (c *Controller) delete(target ir.StepID) (string, error) {
	if c.editing == "" {
		return metrics.OutcomeRejected, ir.NewInvalidStateError("delete", c.stateLocked().String())
	}
	if target == "" {
		target = c.editing
	}
	if target != c.editing {
		return metrics.OutcomeRejected, ir.NewInvalidStateError(
			fmt.Sprintf("delete %s", target),
			fmt.Sprintf("editing %s", c.editing))
	}

	if target.IsBoundary() {
		return metrics.OutcomeRejected, ir.NewProtectedElementError(target, "delete")
	}

	prev, ok := c.seq.Predecessor(target)
	if !ok {
		return metrics.OutcomeRejected, ir.NewNotFoundError(target)
	}
	if err := c.seq.Remove(target); err != nil {
		return metrics.OutcomeRejected, err
	}
	if err := c.steps.Delete(target); err != nil {
		if rbErr := c.seq.InsertAfter(prev, target); rbErr != nil {
			c.logger.Error("rollback of step removal failed", "step", target, "error", rbErr)
		}
		return metrics.OutcomeRejected, err
	}

	c.logger.Debug("step deleted", "step", target)
	c.closeEditor()
	return metrics.OutcomeApplied, nil
}

func (c *Controller) closeEditor() {
	c.editing = ""
	panel := c.panel
	c.effects = append(c.effects, panel.Close)
}

func (c *Controller) stateLocked() State {
	if c.editing != "" {
		return StateEditing
	}
	return StateIdle
}

func (c *Controller) frameLocked(seq int64) ir.Frame {
	p, _ := c.live.Current()
	return ir.Frame{
		Seq:           seq,
		Nodes:         p.Nodes,
		Edges:         p.Edges,
		EditingTarget: c.editing,
	}
}
