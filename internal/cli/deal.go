package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/orim/internal/config"
	"github.com/roach88/orim/internal/rules"
	"github.com/roach88/orim/internal/session"
	"github.com/roach88/orim/internal/store"
	"github.com/roach88/orim/internal/worldgen"
	"github.com/roach88/orim/internal/worldmap"
)

// DealOptions holds flags for the deal command.
type DealOptions struct {
	*RootOptions
	Node      string // map node key, "col,row"
	Direction string // direction label folded into the layout seed
	MapPath   string // world map override, empty means the configured path
	DBPath    string // journal path, empty means a one-shot unjournaled deal
}

// DealView is the JSON projection of a dealt layout.
type DealView struct {
	SessionToken string           `json:"session_token,omitempty"`
	DealID       string           `json:"deal_id,omitempty"`
	Node         string           `json:"node"`
	Direction    string           `json:"direction"`
	Biome        string           `json:"biome"`
	Tableaus     [][]CardView     `json:"tableaus"`
	Foundations  []FoundationView `json:"foundations"`
	Check        rules.DealCheck  `json:"check"`
	Fingerprint  string           `json:"fingerprint"`
	Seq          int64            `json:"seq,omitempty"`
}

// NewDealCommand creates the deal command.
func NewDealCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DealOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "deal",
		Short: "Deal cards at a map node",
		Long: `Deal a card layout at a world map node.

The layout derives deterministically from the node key, the direction,
and the cell's biome palette; dealing the same node twice produces the
same cards. The karma check counts tableau tops with a legal foundation
and rejects deals below the configured minimum.

Without --db the deal is a dry run. With --db the deal is journaled:
a session row is written first, then the deal row, rejected or not.

Exit codes:
  0 - Deal accepted
  1 - Deal rejected by the karma check
  2 - Command error (bad node, unreadable map or settings)

Examples:
  orim deal --node 0,0 --direction north
  orim deal --node 1,0 --direction south --db journal.db
  orim deal --node 0,1 --direction east --map maps/verdant.yaml --format json`,
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeal(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Node, "node", "", "map node key, e.g. 0,0 (required)")
	cmd.Flags().StringVar(&opts.Direction, "direction", "", "travel direction, e.g. north (required)")
	cmd.Flags().StringVar(&opts.MapPath, "map", "", "world map file (default from settings)")
	cmd.Flags().StringVar(&opts.DBPath, "db", "", "journal database path (omit for a dry run)")
	_ = cmd.MarkFlagRequired("node")
	_ = cmd.MarkFlagRequired("direction")

	return cmd
}

func runDeal(opts *DealOptions, cmd *cobra.Command) error {
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

	cell, ok := world.CellByKey(opts.Node)
	if !ok {
		msg := fmt.Sprintf("node %q is not on map %q", opts.Node, world.Name)
		_ = formatter.Error(ErrCodeMap, msg, nil)
		return WrapExitError(ExitCommandError, fmt.Sprintf("%s: %s", ErrCodeMap, msg), nil)
	}

	formatter.VerboseLog("Dealing at %s heading %s on map %s", opts.Node, opts.Direction, world.Name)

	if opts.DBPath == "" {
		return runDealDry(opts, formatter, settings, cell)
	}
	return runDealJournaled(opts, formatter, settings, world, cell, cmd)
}

// runDealDry generates a layout without touching a journal.
func runDealDry(opts *DealOptions, formatter *OutputFormatter, settings config.Settings, cell worldmap.Cell) error {
	shape := worldgen.DealShape{
		Tableaus:        settings.Deal.Tableaus,
		CardsPerTableau: settings.Deal.CardsPerTableau,
		Foundations:     settings.Deal.Foundations,
	}
	palette := cell.Biome.ElementPalette()

	tableaus := worldgen.DealTableaus(opts.Node, opts.Direction, shape, palette)
	foundations := worldgen.DealFoundations(opts.Node, opts.Direction, shape.Foundations, palette)
	check := rules.EvaluateDeal(tableaus, foundations, nil, settings.Rules.KarmaMinimum)
	fingerprint := worldgen.LayoutFingerprint(tableaus, foundations)

	view := DealView{
		Node:        opts.Node,
		Direction:   opts.Direction,
		Biome:       cell.Biome.String(),
		Tableaus:    tableauViews(tableaus),
		Foundations: foundationViews(foundations),
		Check:       check,
		Fingerprint: fingerprint,
	}
	return outputDeal(formatter, view, tableaus, foundations)
}

// runDealJournaled records the deal through a session over the journal.
func runDealJournaled(opts *DealOptions, formatter *OutputFormatter, settings config.Settings, world *worldmap.Map, cell worldmap.Cell, cmd *cobra.Command) error {
	st, err := store.Open(opts.DBPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	sess := session.New(st, settings, world,
		session.WithLogger(sessionLogger(opts.RootOptions, cmd.ErrOrStderr())))

	if err := sess.Resume(ctx); err != nil {
		return WrapExitError(ExitCommandError, "failed to resume journal", err)
	}
	token, err := sess.Begin(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to begin session", err)
	}
	result, err := sess.Deal(ctx, opts.Node, opts.Direction)
	if err != nil {
		return WrapExitError(ExitCommandError, "deal failed", err)
	}

	view := DealView{
		SessionToken: token,
		DealID:       result.ID,
		Node:         opts.Node,
		Direction:    opts.Direction,
		Biome:        cell.Biome.String(),
		Tableaus:     tableauViews(result.Tableaus),
		Foundations:  foundationViews(result.Foundations),
		Check:        result.Check,
		Fingerprint:  result.Fingerprint,
		Seq:          result.Seq,
	}
	return outputDeal(formatter, view, result.Tableaus, result.Foundations)
}

func outputDeal(formatter *OutputFormatter, view DealView, tableaus []rules.Tableau, foundations []rules.Foundation) error {
	if formatter.Format == "json" {
		if view.Check.Accepted {
			return formatter.Success(view)
		}

		response := CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    ErrCodeDealRejected,
				Message: fmt.Sprintf("deal rejected: %d playable of %d required", view.Check.Playable, view.Check.Required),
			},
			Data: view,
		}
		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Rejected deals are domain failures (exit code 1)
		return NewExitError(ExitFailure, fmt.Sprintf("deal rejected: %d playable of %d required", view.Check.Playable, view.Check.Required))
	}

	// Human-readable text output
	fmt.Fprintf(formatter.Writer, "Deal at %s heading %s (%s)\n\n", view.Node, view.Direction, view.Biome)
	renderTableaus(formatter.Writer, tableaus)
	fmt.Fprintln(formatter.Writer)
	renderFoundations(formatter.Writer, foundations)
	fmt.Fprintln(formatter.Writer)
	renderCheck(formatter.Writer, view.Check)
	fmt.Fprintln(formatter.Writer)
	fmt.Fprintf(formatter.Writer, "Fingerprint: %s\n", view.Fingerprint)
	if view.SessionToken != "" {
		fmt.Fprintf(formatter.Writer, "Session: %s\n", view.SessionToken)
		fmt.Fprintf(formatter.Writer, "Deal id: %s\n", view.DealID)
	}

	if !view.Check.Accepted {
		// Rejected deals are domain failures (exit code 1)
		return NewExitError(ExitFailure, fmt.Sprintf("deal rejected: %d playable of %d required", view.Check.Playable, view.Check.Required))
	}
	return nil
}
