package harness

import (
	"fmt"
	"log/slog"

	"github.com/roach88/flowline/internal/config"
	"github.com/roach88/flowline/internal/engine"
	"github.com/roach88/flowline/internal/ir"
	"github.com/roach88/flowline/internal/logging"
	"github.com/roach88/flowline/internal/testutil"
)

// Harness runs one scenario against one controller.
type Harness struct {
	ctrl     *engine.Controller
	renderer *testutil.RecordingRenderer
	logger   *slog.Logger
}

// Option configures Run.
type Option func(*options)

type options struct {
	logger    *slog.Logger
	renderer  engine.Renderer
	observers []engine.Observer
}

// WithLogger sets the logger passed to the controller. The default
// discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRenderer subscribes an extra renderer to the controller, e.g. to
// print frames while the scenario runs.
func WithRenderer(r engine.Renderer) Option {
	return func(o *options) {
		o.renderer = r
	}
}

// WithObserver adds a controller observer, e.g. a gesture journal.
func WithObserver(obs engine.Observer) Option {
	return func(o *options) {
		o.observers = append(o.observers, obs)
	}
}

// ScenarioConfig returns the configuration a scenario runs with: its
// config file, or the defaults, always with sequential ids.
func ScenarioConfig(scenario *Scenario) (*config.Config, error) {
	cfg := config.Default()
	if scenario.Config != "" {
		loaded, err := config.Load(scenario.Config)
		if err != nil {
			return nil, fmt.Errorf("failed to load scenario config: %w", err)
		}
		cfg = loaded
	}
	cfg.IDs.Strategy = config.StrategySequential
	return cfg, nil
}

// Run executes a scenario and returns the result.
//
// Each scenario runs on a fresh controller. The id strategy is always
// sequential so that golden files are reproducible; a scenario config can
// still change the prefix, layout and default label.
//
// Execution flow:
//  1. Load the scenario config, if any
//  2. Build a controller with a recording renderer
//  3. Apply flow steps, checking each against its expect clause
//  4. Evaluate assertions against the final state
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	o := options{logger: logging.Discard()}
	for _, opt := range opts {
		opt(&o)
	}

	cfg, err := ScenarioConfig(scenario)
	if err != nil {
		return nil, err
	}

	h := &Harness{
		renderer: testutil.NewRecordingRenderer(),
		logger:   o.logger,
	}
	ctrlOpts := append(engine.ConfigOptions(cfg),
		engine.WithLogger(o.logger),
		engine.WithRenderer(h.renderer),
	)
	if o.renderer != nil {
		ctrlOpts = append(ctrlOpts, engine.WithRenderer(o.renderer))
	}
	for _, obs := range o.observers {
		ctrlOpts = append(ctrlOpts, engine.WithObserver(obs))
	}
	h.ctrl = engine.New(ctrlOpts...)

	result := NewResult()
	h.executeFlow(scenario.Flow, result)

	result.Frame = h.ctrl.Frame()
	result.Frames = h.renderer.Len()

	for _, msg := range EvaluateAssertions(result, scenario.Assertions, &AssertionContext{Controller: h.ctrl}) {
		result.AddError(msg)
	}
	return result, nil
}

func (h *Harness) executeFlow(flow []FlowStep, result *Result) {
	for i, step := range flow {
		g := step.Gesture()

		var err error
		if step.Delete != nil {
			answer := *step.Delete
			_, err = h.ctrl.RequestDelete(engine.ConfirmFunc(func(string) bool { return answer }))
		} else {
			err = h.ctrl.Apply(g)
		}

		code := ir.CodeOf(err)
		if err != nil && code == "" {
			// Not a StepError; surface it verbatim.
			result.AddError(fmt.Sprintf("flow[%d] %s: unexpected error: %v", i, g, err))
		}
		result.AddTrace(i+1, g.String(), code, h.ctrl.Frame().Seq)

		want := ir.ErrorCode("")
		if step.Expect != nil {
			want = ir.ErrorCode(step.Expect.Error)
		}
		if code != want {
			result.AddError(fmt.Sprintf("flow[%d] %s: expected error %q, got %q", i, g, want, code))
		}

		h.logger.Debug("flow step completed",
			"step", i,
			"gesture", g.String(),
			"error", string(code),
		)
	}
}
