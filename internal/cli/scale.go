package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/orim/internal/rarity"
)

// ScaleOptions holds flags for the scale command.
type ScaleOptions struct {
	*RootOptions
	Kind  string // effect kind, decides the scaling profile
	Value int    // common-tier base value
}

// TierValue is one rung of a scaling ladder.
type TierValue struct {
	Tier  string `json:"tier"`
	Value int    `json:"value"`
}

// ScaleView is the JSON projection of a full scaling ladder.
type ScaleView struct {
	Kind  string      `json:"kind"`
	Base  int         `json:"base"`
	Tiers []TierValue `json:"tiers"`
}

// NewScaleCommand creates the scale command.
func NewScaleCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ScaleOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "scale",
		Short: "Show a rarity scaling ladder",
		Long: `Show how a common-tier effect value scales across the six rarity
tiers.

Each effect kind has its own scaling profile; unknown kinds scale with
the standard profile. Ladders never decrease from tier to tier.

Examples:
  orim scale --kind damage --value 4
  orim scale --kind draw --value 2 --format json`,
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScale(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Kind, "kind", rarity.KindDamage, "effect kind")
	cmd.Flags().IntVar(&opts.Value, "value", 0, "common-tier base value (required)")
	_ = cmd.MarkFlagRequired("value")

	return cmd
}

func runScale(opts *ScaleOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	view := ScaleView{
		Kind: opts.Kind,
		Base: opts.Value,
	}
	for _, tier := range rarity.Tiers() {
		view.Tiers = append(view.Tiers, TierValue{
			Tier:  tier.String(),
			Value: rarity.ResolveEffectValue(opts.Kind, opts.Value, tier),
		})
	}

	if formatter.Format == "json" {
		return formatter.Success(view)
	}

	// Human-readable text output
	fmt.Fprintf(formatter.Writer, "Scaling for %s, base %d\n\n", view.Kind, view.Base)
	for _, tier := range rarity.Tiers() {
		// Pad before colorizing; ANSI escape codes break printf widths.
		label := fmt.Sprintf("%-10s", tier.String())
		fmt.Fprintf(formatter.Writer, "  %s %4d\n",
			colorizeTier(tier, label),
			rarity.ResolveEffectValue(opts.Kind, opts.Value, tier))
	}

	return nil
}
