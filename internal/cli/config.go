package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewConfigCommand creates the config command.
func NewConfigCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the configuration after defaults, --config and $FLOWLINE_CONFIG
have been applied.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfig(rootOpts, cmd)
		},
	}
	return cmd
}

func runConfig(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	cfg, err := opts.loadConfig()
	if err != nil {
		_ = formatter.Error(ErrCodeConfigInvalid, err.Error(), nil)
		return err
	}

	if opts.Format == "json" {
		return formatter.Success(cfg)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "layout.x                %d\n", cfg.Layout.X)
	fmt.Fprintf(w, "layout.top_margin       %d\n", cfg.Layout.TopMargin)
	fmt.Fprintf(w, "layout.vertical_spacing %d\n", cfg.Layout.VerticalSpacing)
	fmt.Fprintf(w, "default_label           %q\n", cfg.DefaultLabel)
	fmt.Fprintf(w, "ids.strategy            %s\n", cfg.IDs.Strategy)
	fmt.Fprintf(w, "ids.prefix              %q\n", cfg.IDs.Prefix)
	fmt.Fprintf(w, "log.level               %s\n", cfg.Log.Level)
	fmt.Fprintf(w, "log.format              %s\n", cfg.Log.Format)
	return nil
}
