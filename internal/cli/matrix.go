package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/orim/internal/rules"
)

// MatrixOptions holds flags for the matrix command.
type MatrixOptions struct {
	*RootOptions
}

// MatrixView is the JSON projection of the elemental multiplier table.
// Rows are attacker-indexed; columns follow the same element order.
type MatrixView struct {
	Elements []string    `json:"elements"`
	Rows     [][]float64 `json:"rows"`
}

// NewMatrixCommand creates the matrix command.
func NewMatrixCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MatrixOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "matrix",
		Short: "Show the elemental multiplier matrix",
		Long: `Show the attacker-by-target elemental multiplier matrix.

The wheel fire > nature > water > storm > fire multiplies 2.0 with the
grain and 0.5 against it; light and dark multiply 2.0 into each other;
neutral is multiplier-invariant.

Examples:
  orim matrix
  orim matrix --format json`,
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatrix(opts, cmd)
		},
	}

	return cmd
}

func runMatrix(opts *MatrixOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	elements := rules.Elements()

	if formatter.Format == "json" {
		view := MatrixView{
			Elements: make([]string, len(elements)),
			Rows:     make([][]float64, len(elements)),
		}
		for i, attacker := range elements {
			view.Elements[i] = attacker.String()
			row := rules.MatrixRow(attacker)
			view.Rows[i] = row[:]
		}
		return formatter.Success(view)
	}

	// Pad before colorizing; ANSI escape codes break printf widths.
	fmt.Fprintf(formatter.Writer, "%-8s", "")
	for _, target := range elements {
		label := fmt.Sprintf("%8s", target.String())
		fmt.Fprint(formatter.Writer, colorizeElement(target, label))
	}
	fmt.Fprintln(formatter.Writer)

	for _, attacker := range elements {
		label := fmt.Sprintf("%-8s", attacker.String())
		fmt.Fprint(formatter.Writer, colorizeElement(attacker, label))
		for _, target := range elements {
			mult := rules.Multiplier(attacker, target)
			cell := fmt.Sprintf("%8.1f", mult)
			fmt.Fprint(formatter.Writer, colorizeMultiplier(mult, cell))
		}
		fmt.Fprintln(formatter.Writer)
	}

	return nil
}
