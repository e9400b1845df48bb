package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/flowline/internal/config"
	"github.com/roach88/flowline/internal/engine"
	"github.com/roach88/flowline/internal/logging"
	"github.com/roach88/flowline/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Config  string // CUE config file; falls back to $FLOWLINE_CONFIG
	Journal string // SQLite gesture journal written by run and shell
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the flowline CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "flowline",
		Short: "flowline - linear workflow builder",
		Long: `A builder for linear workflows: an ordered chain of steps between a
fixed Start and End, edited by inserting on edges, relabelling and deleting.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.Config, "config", "c", "", "config file (default $"+config.EnvConfigPath+")")
	cmd.PersistentFlags().StringVar(&opts.Journal, "journal", "", "record gestures to this SQLite journal (run, shell)")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewConfigCommand(opts))
	cmd.AddCommand(NewShellCommand(opts))
	cmd.AddCommand(NewJournalCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// loadConfig resolves the effective configuration.
// A broken config file is a command error (exit code 2).
func (o *RootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Resolve(o.Config)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	return cfg, nil
}

// newLogger builds the command logger. --verbose forces debug level.
func (o *RootOptions) newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	level := cfg.Log.Level
	if o.Verbose {
		level = "debug"
	}
	return logging.NewLogger(w, cfg.Log.Format, level)
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// openJournal starts a journal session when --journal is set.
// It returns the journal as a controller observer and a close function
// that reports the first journal write error. Without --journal the
// observer is nil and close does nothing.
func (o *RootOptions) openJournal(ctx context.Context, name string, cfg *config.Config, logger *slog.Logger) (engine.Observer, func() error, error) {
	if o.Journal == "" {
		return nil, func() error { return nil }, nil
	}

	st, err := store.Open(o.Journal)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	j, err := store.NewJournal(ctx, st, name, cfg, logger)
	if err != nil {
		st.Close()
		return nil, nil, WrapExitError(ExitCommandError, "failed to start journal session", err)
	}
	logger.Info("journaling gestures", "journal", o.Journal, "session", j.Session().ID)

	closeFn := func() error {
		werr := j.Err()
		if cerr := st.Close(); werr == nil {
			werr = cerr
		}
		if werr != nil {
			return WrapExitError(ExitCommandError, "journal incomplete", werr)
		}
		return nil
	}
	return j, closeFn, nil
}
