package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/flowline/internal/harness"
	"github.com/roach88/flowline/internal/ir"
	"github.com/roach88/flowline/internal/projector"
)

// RunResult is the JSON payload of the run command.
type RunResult struct {
	Scenario string               `json:"scenario"`
	Pass     bool                 `json:"pass"`
	Errors   []string             `json:"errors,omitempty"`
	Trace    []harness.TraceEvent `json:"trace"`
	Frame    map[string]any       `json:"frame"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Replay a gesture scenario and print the final frame",
		Long: `Replay the gestures of a scenario file against a fresh workflow and
print the resulting diagram.

With --verbose every intermediate frame is printed as well.

Exit codes:
  0 - Scenario ran and its assertions held
  1 - A gesture or assertion did not match
  2 - Command error (missing or invalid scenario, broken config)

Examples:
  flowline run testdata/scenarios/delete_middle_step.yaml
  flowline run scenario.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarioFile(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runScenarioFile(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	logger := opts.newLogger(cfg, cmd.ErrOrStderr())

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		_ = formatter.Error(ErrCodeInvalid, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}
	logger.Debug("scenario loaded", "name", scenario.Name, "gestures", len(scenario.Flow))

	runOpts := []harness.Option{harness.WithLogger(logger)}
	if opts.Verbose && opts.Format != "json" {
		runOpts = append(runOpts, harness.WithRenderer(textRenderer{w: cmd.ErrOrStderr()}))
	}

	scenarioCfg, err := harness.ScenarioConfig(scenario)
	if err != nil {
		_ = formatter.Error(ErrCodeConfigInvalid, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load scenario config", err)
	}
	journal, closeJournal, err := opts.openJournal(commandContext(cmd), scenario.Name, scenarioCfg, logger)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return err
	}
	if journal != nil {
		runOpts = append(runOpts, harness.WithObserver(journal))
	}

	result, err := harness.Run(scenario, runOpts...)
	if cerr := closeJournal(); err == nil && cerr != nil {
		_ = formatter.Error(ErrCodeGeneric, cerr.Error(), nil)
		return cerr
	}
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to run scenario", err)
	}

	if opts.Format == "json" {
		resp := CLIResponse{
			Status: "ok",
			Data: RunResult{
				Scenario: scenario.Name,
				Pass:     result.Pass,
				Errors:   result.Errors,
				Trace:    result.Trace,
				Frame:    projector.CanonicalMap(result.Frame),
			},
		}
		if !result.Pass {
			resp.Status = "error"
			resp.Error = &CLIError{Code: ErrCodeScenarioFail, Message: fmt.Sprintf("%d check(s) failed", len(result.Errors))}
		}
		if err := formatter.Response(resp); err != nil {
			return err
		}
	} else {
		writeRunText(cmd, scenario.Name, result)
	}

	if !result.Pass {
		return NewExitError(ExitFailure, fmt.Sprintf("scenario %s failed", scenario.Name))
	}
	return nil
}

func writeRunText(cmd *cobra.Command, name string, result *harness.Result) {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Scenario: %s\n", name)
	for _, ev := range result.Trace {
		outcome := "ok"
		if ev.Error != "" {
			outcome = ev.Error
		}
		fmt.Fprintf(w, "  %2d. %-32s %s\n", ev.Step, ev.Gesture, outcome)
	}
	fmt.Fprintln(w)
	fmt.Fprint(w, FormatFrame(result.Frame))

	if !result.Pass {
		fmt.Fprintln(w)
		for _, e := range result.Errors {
			fmt.Fprintf(w, "✗ %s\n", e)
		}
	}
}

// frameSummary is a one-line description used by test and shell output.
func frameSummary(frame ir.Frame) string {
	ids := make([]string, len(frame.Nodes))
	for i, n := range frame.Nodes {
		ids[i] = string(n.ID)
	}
	return fmt.Sprintf("%v", ids)
}
