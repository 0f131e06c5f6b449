package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"cuelang.org/go/cue/token"
	"github.com/spf13/cobra"

	"github.com/roach88/orim/internal/compiler"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
}

// ValidationSummary is the JSON payload for a clean validation run.
type ValidationSummary struct {
	Valid        bool `json:"valid"`
	AbilityCount int  `json:"ability_count"`
	AspectCount  int  `json:"aspect_count"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <defs-dir>",
		Short: "Validate CUE card definitions",
		Long: `Validate CUE ability and aspect definitions against schema rules.

Every definition is compiled and checked; all errors are collected and
reported together, including duplicate ids and names across the set.

Exit codes:
  0 - All definitions valid
  1 - Validation failed
  2 - Command error (bad paths, unreadable defs)

Examples:
  orim validate ./defs
  orim validate ./defs --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *ValidateOptions, defsDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	// Collect every error so authors see the full picture in one run.
	loadResult, loadErrors := LoadDefs(defsDir, LoadModeCollectAll)

	// Fatal load errors (directory missing, no CUE files) are command
	// errors, not validation results.
	if loadResult == nil && len(loadErrors) > 0 {
		var loadErr *LoadError
		if errors.As(loadErrors[0], &loadErr) {
			_ = formatter.Error(loadErr.Code, loadErr.Message, nil)
			return WrapExitError(ExitCommandError, fmt.Sprintf("%s: %s", loadErr.Code, loadErr.Message), nil)
		}
		_ = formatter.Error(ErrCodeGeneric, loadErrors[0].Error(), nil)
		return WrapExitError(ExitCommandError, loadErrors[0].Error(), nil)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, defsDir)
	formatter.VerboseLog("Validating %d ability(s), %d aspect(s)",
		len(loadResult.Abilities), len(loadResult.Aspects))

	// Compile errors surface as validation rows so a broken file and a
	// broken definition read the same way.
	var validationErrors []compiler.ValidationError
	for _, err := range loadErrors {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			validationErrors = append(validationErrors, compiler.ValidationError{
				Field:   "load",
				Message: loadErr.Message,
				Code:    loadErr.Code,
				Line:    lineFromPos(loadErr.Pos),
			})
			continue
		}
		validationErrors = append(validationErrors, compiler.ValidationError{
			Field:   "load",
			Message: err.Error(),
			Code:    ErrCodeGeneric,
		})
	}

	validationErrors = append(validationErrors,
		compiler.ValidateDefs(loadResult.Abilities, loadResult.Aspects)...)

	if len(validationErrors) == 0 {
		return outputValidateSuccess(formatter, loadResult)
	}

	return outputValidateErrors(formatter, validationErrors)
}

func outputValidateSuccess(formatter *OutputFormatter, loadResult *LoadResult) error {
	summary := ValidationSummary{
		Valid:        true,
		AbilityCount: len(loadResult.Abilities),
		AspectCount:  len(loadResult.Aspects),
	}

	if formatter.Format == "json" {
		return formatter.Success(summary)
	}

	fmt.Fprintf(formatter.Writer, "✓ All definitions valid (%d ability(s), %d aspect(s))\n",
		summary.AbilityCount, summary.AspectCount)
	return nil
}

func outputValidateErrors(formatter *OutputFormatter, validationErrors []compiler.ValidationError) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    validationErrors[0].Code,
				Message: validationErrors[0].Message,
				Details: validationErrors[0].Field,
			},
			Data: validationErrors, // Include all errors in data
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Validation failures are domain failures (exit code 1)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(validationErrors)))
	}

	// Text format
	fmt.Fprintf(formatter.Writer, "✗ Validation failed with %d error(s)\n\n", len(validationErrors))
	for _, verr := range validationErrors {
		fmt.Fprintf(formatter.Writer, "  %s\n", verr.Error())
	}
	fmt.Fprintln(formatter.Writer)

	// Validation failures are domain failures (exit code 1)
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(validationErrors)))
}

// lineFromPos extracts a 1-based line number, or 0 when the position is
// unknown.
func lineFromPos(pos token.Pos) int {
	if !pos.IsValid() {
		return 0
	}
	return pos.Line()
}
