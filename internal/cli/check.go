package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/orim/internal/config"
	"github.com/roach88/orim/internal/rules"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
}

// snapshotFile is the YAML shape of a layout snapshot fed to check.
type snapshotFile struct {
	KarmaMinimum *int                 `yaml:"karma_minimum"`
	Tableaus     [][]snapshotCard     `yaml:"tableaus"`
	Foundations  []snapshotFoundation `yaml:"foundations"`
}

type snapshotCard struct {
	Rank    int    `yaml:"rank"`
	Element string `yaml:"element"`
}

type snapshotFoundation struct {
	Top        *snapshotCard `yaml:"top"`
	ActorBound bool          `yaml:"actor_bound"`
}

// CheckView is the JSON projection of a karma check over a snapshot.
type CheckView struct {
	Source      string           `json:"source"`
	Tableaus    [][]CardView     `json:"tableaus"`
	Foundations []FoundationView `json:"foundations"`
	Playable    [][]int          `json:"playable_foundations"`
	Check       rules.DealCheck  `json:"check"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <snapshot.yaml>",
		Short: "Run the karma check on a layout snapshot",
		Long: `Run the karma dealing check on a hand-written layout snapshot.

The snapshot lists tableaus and foundations in YAML. Each tableau top
is tested against every foundation; the deal is accepted when enough
tops have at least one legal foundation. The karma_minimum key
overrides the configured threshold.

Exit codes:
  0 - Deal accepted
  1 - Deal rejected
  2 - Command error (missing or malformed snapshot)

Examples:
  orim check snapshot.yaml
  orim check snapshot.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, args[0], cmd)
		},
	}

	return cmd
}

func runCheck(opts *CheckOptions, path string, cmd *cobra.Command) error {
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

	data, err := os.ReadFile(path)
	if err != nil {
		msg := fmt.Sprintf("snapshot file not found: %s", path)
		if !os.IsNotExist(err) {
			msg = fmt.Sprintf("reading snapshot file: %v", err)
		}
		_ = formatter.Error(ErrCodeNotFound, msg, nil)
		return WrapExitError(ExitCommandError, fmt.Sprintf("%s: %s", ErrCodeNotFound, msg), nil)
	}

	// Unknown keys are rejected so typos in snapshots fail loudly.
	var snap snapshotFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&snap); err != nil {
		msg := fmt.Sprintf("parse snapshot yaml: %v", err)
		_ = formatter.Error(ErrCodeGeneric, msg, nil)
		return WrapExitError(ExitCommandError, fmt.Sprintf("%s: %s", ErrCodeGeneric, msg), nil)
	}

	tableaus, foundations, required, err := buildSnapshot(&snap, settings.Rules.KarmaMinimum)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, fmt.Sprintf("%s: %v", ErrCodeGeneric, err), nil)
	}

	formatter.VerboseLog("Checking %d tableau(s) against %d foundation(s), required %d",
		len(tableaus), len(foundations), required)

	// No effects are active in snapshot checks; the snapshot describes a
	// fresh deal.
	check := rules.EvaluateDeal(tableaus, foundations, nil, required)

	playable := make([][]int, len(tableaus))
	for i, t := range tableaus {
		top, ok := t.Top()
		if !ok {
			continue
		}
		playable[i] = rules.PlayableFoundations(top, foundations, nil)
	}

	view := CheckView{
		Source:      path,
		Tableaus:    tableauViews(tableaus),
		Foundations: foundationViews(foundations),
		Playable:    playable,
		Check:       check,
	}
	return outputCheck(formatter, view, tableaus, foundations, playable)
}

// buildSnapshot validates and converts the YAML snapshot into rules
// values. The default karma threshold applies unless the snapshot
// overrides it.
func buildSnapshot(snap *snapshotFile, defaultRequired int) ([]rules.Tableau, []rules.Foundation, int, error) {
	if len(snap.Tableaus) == 0 {
		return nil, nil, 0, fmt.Errorf("tableaus list must not be empty")
	}
	if len(snap.Foundations) == 0 {
		return nil, nil, 0, fmt.Errorf("foundations list must not be empty")
	}

	required := defaultRequired
	if snap.KarmaMinimum != nil {
		if *snap.KarmaMinimum < 0 {
			return nil, nil, 0, fmt.Errorf("karma_minimum must be non-negative, got %d", *snap.KarmaMinimum)
		}
		required = *snap.KarmaMinimum
	}

	tableaus := make([]rules.Tableau, len(snap.Tableaus))
	for i, cards := range snap.Tableaus {
		tableaus[i].Cards = make([]rules.Card, len(cards))
		for j, sc := range cards {
			card, err := snapshotToCard(sc)
			if err != nil {
				return nil, nil, 0, fmt.Errorf("tableau %d card %d: %w", i, j, err)
			}
			tableaus[i].Cards[j] = card
		}
	}

	foundations := make([]rules.Foundation, len(snap.Foundations))
	for i, sf := range snap.Foundations {
		foundations[i].ActorBound = sf.ActorBound
		if sf.Top == nil {
			continue
		}
		card, err := snapshotToCard(*sf.Top)
		if err != nil {
			return nil, nil, 0, fmt.Errorf("foundation %d top: %w", i, err)
		}
		foundations[i].Top = &card
	}

	return tableaus, foundations, required, nil
}

// snapshotToCard converts one snapshot card. An omitted element means
// neutral; an unknown one is an authoring error.
func snapshotToCard(sc snapshotCard) (rules.Card, error) {
	rank := rules.Rank(sc.Rank)
	if !rank.Valid() {
		return rules.Card{}, fmt.Errorf("invalid rank %d", sc.Rank)
	}
	if sc.Element != "" && !rules.KnownElement(sc.Element) {
		return rules.Card{}, fmt.Errorf("unknown element %q", sc.Element)
	}
	return rules.Card{Rank: rank, Element: rules.ParseElement(sc.Element)}, nil
}

func outputCheck(formatter *OutputFormatter, view CheckView, tableaus []rules.Tableau, foundations []rules.Foundation, playable [][]int) error {
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
	fmt.Fprintf(formatter.Writer, "Karma check for %s\n\n", view.Source)

	fmt.Fprintln(formatter.Writer, "Tableaus:")
	for i, t := range tableaus {
		if len(t.Cards) == 0 {
			fmt.Fprintf(formatter.Writer, "  [%d] (empty)\n", i)
			continue
		}
		labels := make([]string, len(t.Cards))
		for j, c := range t.Cards {
			labels[j] = cardLabel(c)
		}
		fmt.Fprintf(formatter.Writer, "  [%d] %s ← top %s\n",
			i, strings.Join(labels, ", "), playableSuffix(playable[i]))
	}
	fmt.Fprintln(formatter.Writer)

	renderFoundations(formatter.Writer, foundations)
	fmt.Fprintln(formatter.Writer)
	renderCheck(formatter.Writer, view.Check)

	if !view.Check.Accepted {
		// Rejected deals are domain failures (exit code 1)
		return NewExitError(ExitFailure, fmt.Sprintf("deal rejected: %d playable of %d required", view.Check.Playable, view.Check.Required))
	}
	return nil
}

// playableSuffix renders the per-tableau legal foundation annotation.
func playableSuffix(indices []int) string {
	if len(indices) == 0 {
		return "→ no legal foundation"
	}
	parts := make([]string, len(indices))
	for i, idx := range indices {
		parts[i] = fmt.Sprintf("%d", idx)
	}
	return "→ foundations " + strings.Join(parts, ", ")
}
