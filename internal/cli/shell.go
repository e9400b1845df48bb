package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/flowline/internal/engine"
	"github.com/roach88/flowline/internal/ir"
)

const shellHelp = `commands:
  insert <edge-id|n>   insert a step on an edge (n counts edges from 1)
  edit <step-id>       open the editor for a step
  submit <label>       save the label of the step being edited
  cancel               close the editor without changes
  delete               delete the step being edited (asks for confirmation)
  show                 print the diagram
  stats                print gesture counters
  help                 print this help
  quit                 leave the shell`

// NewShellCommand creates the interactive shell command.
func NewShellCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Edit a workflow interactively",
		Long: `Start a line-oriented editor for a new workflow.

Each line is one gesture. The diagram is printed after every change.

` + shellHelp,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(rootOpts, cmd)
		},
	}
	return cmd
}

// shellPanel is the edit panel of the shell: it only prints.
type shellPanel struct {
	w io.Writer
}

func (p shellPanel) Open(form engine.EditForm) {
	fmt.Fprintf(p.w, "editing %s (%q): submit <label>, cancel", form.StepID, form.CurrentLabel)
	if form.Deletable {
		fmt.Fprint(p.w, " or delete")
	}
	fmt.Fprintln(p.w)
}

func (p shellPanel) Reprompt(err error) {
	fmt.Fprintf(p.w, "rejected: %v; enter another label\n", err)
}

func (p shellPanel) Close() {
	fmt.Fprintln(p.w, "editor closed")
}

type shell struct {
	in   *bufio.Scanner
	out  io.Writer
	ctrl *engine.Controller
	loop *engine.Loop
}

func runShell(opts *RootOptions, cmd *cobra.Command) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	logger := opts.newLogger(cfg, cmd.ErrOrStderr())
	out := cmd.OutOrStdout()

	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	journal, closeJournal, err := opts.openJournal(ctx, "shell", cfg, logger)
	if err != nil {
		return err
	}

	ctrlOpts := append(engine.ConfigOptions(cfg),
		engine.WithLogger(logger),
		engine.WithPanel(shellPanel{w: out}),
		engine.WithRenderer(textRenderer{w: out}),
	)
	if journal != nil {
		ctrlOpts = append(ctrlOpts, engine.WithObserver(journal))
	}
	ctrl := engine.New(ctrlOpts...)
	loop := engine.NewLoop(ctrl, logger)

	runErr := make(chan error, 1)
	go func() { runErr <- loop.Run(ctx) }()

	sh := &shell{
		in:   bufio.NewScanner(cmd.InOrStdin()),
		out:  out,
		ctrl: ctrl,
		loop: loop,
	}
	fmt.Fprint(out, FormatFrame(ctrl.Frame()))
	err = sh.repl(ctx)
	if errors.Is(err, context.Canceled) {
		// Interrupted; leave quietly like quit.
		err = nil
	}

	loop.Stop()
	if lerr := <-runErr; lerr != nil && !errors.Is(lerr, context.Canceled) && err == nil {
		err = lerr
	}
	if cerr := closeJournal(); err == nil {
		err = cerr
	}
	return err
}

// commandContext returns the command's context, which is nil when the
// command is executed without ExecuteContext.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func (s *shell) repl(ctx context.Context) error {
	for {
		fmt.Fprint(s.out, "> ")
		if !s.in.Scan() {
			fmt.Fprintln(s.out)
			return s.in.Err()
		}

		line := strings.TrimSpace(s.in.Text())
		if line == "" {
			continue
		}
		verb, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)

		var err error
		switch verb {
		case "quit", "exit":
			return nil
		case "help":
			fmt.Fprintln(s.out, shellHelp)
		case "show":
			fmt.Fprint(s.out, FormatFrame(s.ctrl.Frame()))
		case "stats":
			s.printStats()
		case "insert":
			err = s.submit(ctx, engine.Gesture{Kind: engine.GestureInsert, EdgeID: s.resolveEdge(rest)})
		case "edit":
			err = s.submit(ctx, engine.Gesture{Kind: engine.GestureEdit, StepID: ir.StepID(rest)})
		case "submit":
			err = s.submit(ctx, engine.Gesture{Kind: engine.GestureSubmit, Label: rest})
		case "cancel":
			err = s.submit(ctx, engine.Gesture{Kind: engine.GestureCancel})
		case "delete":
			var deleted bool
			deleted, err = s.ctrl.RequestDelete(engine.ConfirmFunc(s.confirm))
			if err == nil && !deleted {
				fmt.Fprintln(s.out, "not deleted")
			}
		default:
			fmt.Fprintf(s.out, "unknown command %q (try help)\n", verb)
		}

		if err != nil {
			if ir.CodeOf(err) == "" {
				return err
			}
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
	}
}

// submit sends g through the gesture loop and waits for it to be applied.
func (s *shell) submit(ctx context.Context, g engine.Gesture) error {
	return s.loop.Submit(ctx, g)
}

// resolveEdge accepts an edge id or a 1-based edge number.
func (s *shell) resolveEdge(arg string) string {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return arg
	}
	edges := s.ctrl.Frame().Edges
	if n < 1 || n > len(edges) {
		return arg
	}
	return edges[n-1].ID
}

func (s *shell) confirm(prompt string) bool {
	fmt.Fprintf(s.out, "%s [y/N] ", prompt)
	if !s.in.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(s.in.Text()))
	return answer == "y" || answer == "yes"
}

func (s *shell) printStats() {
	families, err := s.ctrl.Metrics().Registry().Gather()
	if err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
		return
	}

	var lines []string
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var value float64
			switch {
			case m.GetCounter() != nil:
				value = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				value = m.GetGauge().GetValue()
			}
			if value == 0 {
				continue
			}
			labels := make([]string, 0, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			name := mf.GetName()
			if len(labels) > 0 {
				name += "{" + strings.Join(labels, ",") + "}"
			}
			lines = append(lines, fmt.Sprintf("%-50s %g", name, value))
		}
	}
	sort.Strings(lines)
	for _, l := range lines {
		fmt.Fprintln(s.out, l)
	}
}
