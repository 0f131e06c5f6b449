package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/orim/internal/config"
	"github.com/roach88/orim/internal/session"
	"github.com/roach88/orim/internal/store"
)

// PlayOptions holds flags for the play command.
type PlayOptions struct {
	*RootOptions
	DBPath     string // journal path
	DealID     string // recorded deal to play against
	Tableau    int    // source tableau index
	Foundation int    // target foundation index
}

// PlayView is the JSON projection of a recorded play attempt.
type PlayView struct {
	PlayID     string   `json:"play_id"`
	DealID     string   `json:"deal_id"`
	Tableau    int      `json:"tableau"`
	Foundation int      `json:"foundation"`
	Card       CardView `json:"card"`
	Legal      bool     `json:"legal"`
	Seq        int64    `json:"seq"`
}

// NewPlayCommand creates the play command.
func NewPlayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a tableau card onto a foundation",
		Long: `Evaluate one tableau-to-foundation play against a recorded deal.

The attempt is journaled whether or not it is legal; an illegal play is
a recorded outcome, not an error. Legality follows the matching rules:
wild cards and actor-bound foundations always accept, otherwise ranks
must be sequential with wraparound.

Exit codes:
  0 - Legal play
  1 - Illegal play (recorded)
  2 - Command error (unknown deal, bad indexes, unreadable journal)

Examples:
  orim play --db journal.db --deal <deal-id> --tableau 1 --foundation 0
  orim play --db journal.db --deal <deal-id> --tableau 0 --foundation 2 --format json`,
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DBPath, "db", "", "journal database path (required)")
	cmd.Flags().StringVar(&opts.DealID, "deal", "", "deal id to play against (required)")
	cmd.Flags().IntVar(&opts.Tableau, "tableau", 0, "source tableau index (required)")
	cmd.Flags().IntVar(&opts.Foundation, "foundation", 0, "target foundation index (required)")
	_ = cmd.MarkFlagRequired("db")
	_ = cmd.MarkFlagRequired("deal")
	_ = cmd.MarkFlagRequired("tableau")
	_ = cmd.MarkFlagRequired("foundation")

	return cmd
}

func runPlay(opts *PlayOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	settings, err := config.Load(opts.Config)
	if err != nil {
		_ = formatter.Error(ErrCodeSettings, err.Error(), nil)
		return WrapExitError(ExitCommandError, fmt.Sprintf("%s: %v", ErrCodeSettings, err), nil)
	}

	st, err := store.Open(opts.DBPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer st.Close()

	ctx := cmd.Context()

	// Play never consults the world; the deal row carries its layout.
	sess := session.New(st, settings, nil,
		session.WithLogger(sessionLogger(opts.RootOptions, cmd.ErrOrStderr())))

	if err := sess.Resume(ctx); err != nil {
		return WrapExitError(ExitCommandError, "failed to resume journal", err)
	}

	result, err := sess.Play(ctx, opts.DealID, opts.Tableau, opts.Foundation)
	if err != nil {
		return WrapExitError(ExitCommandError, "play failed", err)
	}

	view := PlayView{
		PlayID:     result.ID,
		DealID:     opts.DealID,
		Tableau:    opts.Tableau,
		Foundation: opts.Foundation,
		Card:       cardView(result.Card),
		Legal:      result.Legal,
		Seq:        result.Seq,
	}

	if formatter.Format == "json" {
		if result.Legal {
			return formatter.Success(view)
		}

		response := CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    ErrCodeIllegalPlay,
				Message: fmt.Sprintf("illegal play from tableau %d onto foundation %d", opts.Tableau, opts.Foundation),
			},
			Data: view,
		}
		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Illegal plays are domain failures (exit code 1)
		return NewExitError(ExitFailure, fmt.Sprintf("illegal play from tableau %d onto foundation %d", opts.Tableau, opts.Foundation))
	}

	// Human-readable text output
	if result.Legal {
		fmt.Fprintf(formatter.Writer, "✓ Legal play: %s from tableau %d onto foundation %d\n",
			cardLabel(result.Card), opts.Tableau, opts.Foundation)
		fmt.Fprintf(formatter.Writer, "Play id: %s\n", result.ID)
		return nil
	}

	fmt.Fprintf(formatter.Writer, "✗ Illegal play: %s from tableau %d onto foundation %d (recorded)\n",
		cardLabel(result.Card), opts.Tableau, opts.Foundation)
	fmt.Fprintf(formatter.Writer, "Play id: %s\n", result.ID)

	// Illegal plays are domain failures (exit code 1)
	return NewExitError(ExitFailure, fmt.Sprintf("illegal play from tableau %d onto foundation %d", opts.Tableau, opts.Foundation))
}
