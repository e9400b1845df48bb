package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/flowline/internal/store"
)

// latestSession selects the most recent session in journal subcommands.
const latestSession = "latest"

// NewJournalCommand creates the journal command and its subcommands.
func NewJournalCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Inspect and replay gesture journals",
		Long: `Inspect gesture journals written by run and shell with --journal.

A session is named by its id or by "latest".

Examples:
  flowline --journal j.db run testdata/scenarios/delete_middle_step.yaml
  flowline journal list j.db
  flowline journal show j.db latest
  flowline journal replay j.db latest`,
	}

	cmd.AddCommand(newJournalListCommand(rootOpts))
	cmd.AddCommand(newJournalShowCommand(rootOpts))
	cmd.AddCommand(newJournalReplayCommand(rootOpts))
	return cmd
}

func newJournalListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list <journal.db>",
		Short:         "List journal sessions",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withJournalStore(rootOpts, cmd, args[0], func(ctx context.Context, st *store.Store) error {
				sessions, err := st.ListSessions(ctx)
				if err != nil {
					return WrapExitError(ExitCommandError, "failed to list sessions", err)
				}

				if rootOpts.Format == "json" {
					return rootOpts.formatter(cmd).Success(sessions)
				}
				w := cmd.OutOrStdout()
				if len(sessions) == 0 {
					fmt.Fprintln(w, "No sessions.")
					return nil
				}
				for _, s := range sessions {
					fmt.Fprintf(w, "%s  %-28s %3d gesture(s)  ids=%s\n", s.ID, s.Name, s.Entries, s.Config.IDs.Strategy)
				}
				return nil
			})
		},
	}
}

func newJournalShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show <journal.db> <session|latest>",
		Short:         "Print the gestures of a session",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withJournalStore(rootOpts, cmd, args[0], func(ctx context.Context, st *store.Store) error {
				sess, err := resolveSession(ctx, st, args[1])
				if err != nil {
					return err
				}
				entries, err := st.ReadEntries(ctx, sess.ID)
				if err != nil {
					return WrapExitError(ExitCommandError, "failed to read entries", err)
				}

				if rootOpts.Format == "json" {
					return rootOpts.formatter(cmd).Success(map[string]any{
						"session": sess,
						"entries": entries,
					})
				}
				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "Session: %s (%s)\n", sess.ID, sess.Name)
				for _, e := range entries {
					outcome := e.Outcome
					if e.Code != "" {
						outcome += " " + string(e.Code)
					}
					fmt.Fprintf(w, "  %3d. %-32s %-28s #%d\n", e.Position, e.ToGesture(), outcome, e.FrameSeq)
				}
				return nil
			})
		},
	}
}

func newJournalReplayCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "replay <journal.db> <session|latest>",
		Short: "Replay a session and compare every frame",
		Long: `Re-apply the gestures of a session to a fresh workflow built from the
session's config, and check that every outcome and frame matches.

Exit codes:
  0 - The replay reproduced the journal
  1 - At least one entry differs
  2 - Command error (missing journal or session, UUID session)`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withJournalStore(rootOpts, cmd, args[0], func(ctx context.Context, st *store.Store) error {
				sess, err := resolveSession(ctx, st, args[1])
				if err != nil {
					return err
				}

				cfg, err := rootOpts.loadConfig()
				if err != nil {
					return err
				}
				result, err := st.ReplaySession(ctx, sess.ID, rootOpts.newLogger(cfg, cmd.ErrOrStderr()))
				if err != nil {
					return WrapExitError(ExitCommandError, "failed to replay session", err)
				}

				failErr := NewExitError(ExitFailure, fmt.Sprintf("replay of %s differs in %d place(s)", sess.ID, len(result.Mismatches)))
				if rootOpts.Format == "json" {
					resp := CLIResponse{Status: "ok", Data: result}
					if !result.OK() {
						resp.Status = "error"
						resp.Error = &CLIError{Code: ErrCodeReplayMismatch, Message: failErr.Message}
					}
					if err := rootOpts.formatter(cmd).Response(resp); err != nil {
						return err
					}
				} else {
					w := cmd.OutOrStdout()
					if result.OK() {
						fmt.Fprintf(w, "✓ %s: %d gesture(s) replayed identically\n", sess.ID, result.Entries)
					} else {
						fmt.Fprintf(w, "✗ %s\n", failErr.Message)
						for _, m := range result.Mismatches {
							fmt.Fprintf(w, "  %3d. %s: want %s, got %s\n", m.Position, m.Field, m.Want, m.Got)
						}
					}
				}

				if !result.OK() {
					return failErr
				}
				return nil
			})
		},
	}
}

// withJournalStore opens an existing journal, runs fn and closes it.
func withJournalStore(opts *RootOptions, cmd *cobra.Command, path string, fn func(context.Context, *store.Store) error) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		_ = opts.formatter(cmd).Error(ErrCodeNotFound, fmt.Sprintf("journal not found: %s", path), nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("journal not found: %s", path))
	}

	st, err := store.Open(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer st.Close()

	return fn(commandContext(cmd), st)
}

func resolveSession(ctx context.Context, st *store.Store, arg string) (store.Session, error) {
	if arg != latestSession {
		sess, err := st.ReadSession(ctx, arg)
		if errors.Is(err, store.ErrSessionNotFound) {
			return store.Session{}, WrapExitError(ExitCommandError, "unknown session", err)
		}
		if err != nil {
			return store.Session{}, WrapExitError(ExitCommandError, "failed to read session", err)
		}
		return sess, nil
	}

	sessions, err := st.ListSessions(ctx)
	if err != nil {
		return store.Session{}, WrapExitError(ExitCommandError, "failed to list sessions", err)
	}
	if len(sessions) == 0 {
		return store.Session{}, NewExitError(ExitCommandError, "journal has no sessions")
	}
	return sessions[len(sessions)-1], nil
}
