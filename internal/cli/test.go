package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/orim/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenario-path>",
		Short: "Run conformance scenarios",
		Long: `Run YAML conformance scenarios against the engine.

A scenario declares a map, a settings snapshot, a script of deal and
play steps, and assertions over the outcomes and the final journal
state. A directory runs every .yaml and .yml file in it, in sorted
order; one broken scenario doesn't stop the rest.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (missing scenario path)

Examples:
  orim test scenarios/
  orim test scenarios/first_deal.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTest(opts, args[0], cmd)
		},
	}

	return cmd
}

func runTest(opts *TestOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	paths, err := harness.DiscoverScenarios(path)
	if err != nil {
		msg := fmt.Sprintf("discover scenarios: %v", err)
		_ = formatter.Error(ErrCodeNotFound, msg, nil)
		return WrapExitError(ExitCommandError, fmt.Sprintf("%s: %s", ErrCodeNotFound, msg), nil)
	}

	formatter.VerboseLog("Running %d scenario file(s)", len(paths))

	suite := harness.RunSuite(paths)

	if formatter.Format == "json" {
		if suite.Pass() {
			return formatter.Success(suite)
		}

		response := CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    ErrCodeTestFailed,
				Message: fmt.Sprintf("%d of %d scenario(s) failed", suite.Failed, suite.Scenarios),
			},
			Data: suite,
		}
		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Failed scenarios are domain failures (exit code 1)
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d scenario(s) failed", suite.Failed, suite.Scenarios))
	}

	// Human-readable text output: failures only, then the summary line.
	for _, failure := range suite.Failures {
		fmt.Fprintf(formatter.Writer, "✗ %s (%s)\n", failure.Name, failure.Path)
		for _, msg := range failure.Errors {
			fmt.Fprintf(formatter.Writer, "    %s\n", msg)
		}
	}
	if len(suite.Failures) > 0 {
		fmt.Fprintln(formatter.Writer)
	}

	fmt.Fprintf(formatter.Writer, "Scenarios: %d passed, %d failed, %d total\n",
		suite.Passed, suite.Failed, suite.Scenarios)

	if suite.Pass() {
		fmt.Fprintln(formatter.Writer, "✓ All scenarios passed")
		return nil
	}

	// Failed scenarios are domain failures (exit code 1)
	return NewExitError(ExitFailure, fmt.Sprintf("%d of %d scenario(s) failed", suite.Failed, suite.Scenarios))
}
