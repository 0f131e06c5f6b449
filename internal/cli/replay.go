package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/orim/internal/config"
	"github.com/roach88/orim/internal/session"
	"github.com/roach88/orim/internal/store"
	"github.com/roach88/orim/internal/worldmap"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	DBPath  string // journal path
	MapPath string // world map override, empty means the configured path
}

// DivergenceView is one deal whose recorded layout no longer reproduces.
type DivergenceView struct {
	DealID    string `json:"deal_id"`
	Node      string `json:"node"`
	Direction string `json:"direction"`
	Reason    string `json:"reason"`
}

// ReplayView is the JSON projection of a replay verification pass.
type ReplayView struct {
	Checked   int              `json:"checked"`
	Matched   int              `json:"matched"`
	Divergent []DivergenceView `json:"divergent,omitempty"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Verify a deal journal replays deterministically",
		Long: `Re-derive every journaled deal and verify it against the recorded
fingerprint.

Two checks run per deal: the stored layout must hash to the recorded
fingerprint (journal integrity), and the layout regenerated from the
node, direction, and the owning session's settings snapshot must hash
to it too (generation stability). A divergence means the journal, the
map, or the generation code changed since the deal was recorded.

Exit codes:
  0 - Journal reproduces deterministically
  1 - One or more deals diverged
  2 - Command error (unreadable journal, map, or settings)

Examples:
  orim replay --db journal.db
  orim replay --db journal.db --map maps/verdant.yaml --format json`,
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DBPath, "db", "", "journal database path (required)")
	cmd.Flags().StringVar(&opts.MapPath, "map", "", "world map file (default from settings)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
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

	mapPath := opts.MapPath
	if mapPath == "" {
		mapPath = settings.Paths.MapFile
	}
	world, err := worldmap.LoadFile(mapPath)
	if err != nil {
		msg := fmt.Sprintf("loading world map: %v", err)
		_ = formatter.Error(ErrCodeMap, msg, nil)
		return WrapExitError(ExitCommandError, fmt.Sprintf("%s: %s", ErrCodeMap, msg), nil)
	}

	st, err := store.Open(opts.DBPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	sess := session.New(st, settings, world,
		session.WithLogger(sessionLogger(opts.RootOptions, cmd.ErrOrStderr())))

	report, err := sess.Replay(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "replay failed", err)
	}

	view := ReplayView{
		Checked: report.Checked,
		Matched: report.Matched,
	}
	for _, div := range report.Divergent {
		view.Divergent = append(view.Divergent, DivergenceView{
			DealID:    div.DealID,
			Node:      div.NodeKey,
			Direction: div.Direction,
			Reason:    div.Reason,
		})
	}

	if formatter.Format == "json" {
		if report.Clean() {
			return formatter.Success(view)
		}

		response := CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    ErrCodeReplayDiverged,
				Message: fmt.Sprintf("%d deal(s) diverged", len(report.Divergent)),
			},
			Data: view,
		}
		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Divergence is a domain failure (exit code 1)
		return NewExitError(ExitFailure, fmt.Sprintf("%d deal(s) diverged", len(report.Divergent)))
	}

	// Human-readable text output
	if report.Checked == 0 {
		fmt.Fprintln(formatter.Writer, "No deals found in journal.")
		return nil
	}

	fmt.Fprintf(formatter.Writer, "Replay: %d deal(s) checked, %d matched\n", report.Checked, report.Matched)

	if report.Clean() {
		fmt.Fprintln(formatter.Writer, "✓ Journal reproduces deterministically")
		return nil
	}

	fmt.Fprintln(formatter.Writer)
	for _, div := range report.Divergent {
		fmt.Fprintf(formatter.Writer, "✗ deal %s at %s %s\n", div.DealID, div.NodeKey, div.Direction)
		fmt.Fprintf(formatter.Writer, "    %s\n", div.Reason)
	}

	// Divergence is a domain failure (exit code 1)
	return NewExitError(ExitFailure, fmt.Sprintf("%d deal(s) diverged", len(report.Divergent)))
}
