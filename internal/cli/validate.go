package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/flowline/internal/config"
	"github.com/roach88/flowline/internal/harness"
)

// ValidationError describes one invalid file.
type ValidationError struct {
	File    string `json:"file"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid   bool              `json:"valid"`
	Checked int               `json:"checked"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <path>",
		Short: "Validate scenario and config files without running them",
		Long: `Validate scenario YAML files and CUE config files.

A directory is searched recursively for *.yaml, *.yml and *.cue files.
Scenarios are checked for unknown fields, missing sections and malformed
gestures; config files are unified with the configuration schema.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return outputValidateError(formatter, ErrCodeNotFound, fmt.Sprintf("path not found: %s", path))
	}

	files, err := findValidatableFiles(path)
	if err != nil {
		return outputValidateError(formatter, ErrCodeGeneric, err.Error())
	}
	if len(files) == 0 {
		return outputValidateError(formatter, ErrCodeNotFound, fmt.Sprintf("no scenario or config files in %s", path))
	}

	result := ValidationResult{Checked: len(files)}
	for _, f := range files {
		formatter.VerboseLog("validating %s", f)
		if verr := validateFile(f); verr != nil {
			result.Errors = append(result.Errors, *verr)
		}
	}
	result.Valid = len(result.Errors) == 0

	if result.Valid {
		return outputValidateSuccess(formatter, result)
	}
	return outputValidationErrors(formatter, result)
}

func findValidatableFiles(path string) ([]string, error) {
	var files []string
	err := filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		switch filepath.Ext(p) {
		case ".yaml", ".yml", ".cue":
			files = append(files, p)
		}
		return nil
	})
	return files, err
}

func validateFile(path string) *ValidationError {
	if filepath.Ext(path) == ".cue" {
		_, err := config.Load(path)
		if err == nil {
			return nil
		}
		verr := &ValidationError{File: path, Code: ErrCodeConfigInvalid, Message: err.Error()}
		var le *config.LoadError
		if errors.As(err, &le) && le.Pos.IsValid() {
			verr.Line = le.Pos.Line()
			verr.Message = le.Message
		}
		return verr
	}

	if _, err := harness.LoadScenario(path); err != nil {
		return &ValidationError{File: path, Code: ErrCodeInvalid, Message: err.Error()}
	}
	return nil
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ %d file(s) valid\n", result.Checked)
	return nil
}

// outputValidateError outputs a single command-level error.
func outputValidateError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationErrors outputs per-file validation errors.
func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	failErr := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))

	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    result.Errors[0].Code,
				Message: result.Errors[0].Message,
			},
		}
		if err := formatter.Response(response); err != nil {
			return err
		}
		return failErr
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, e := range result.Errors {
		if e.Line > 0 {
			fmt.Fprintf(formatter.Writer, "%s:%d\n", e.File, e.Line)
		} else {
			fmt.Fprintln(formatter.Writer, e.File)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", e.Code, e.Message)
	}
	return failErr
}
