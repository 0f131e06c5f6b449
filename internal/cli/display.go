package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/roach88/orim/internal/rarity"
	"github.com/roach88/orim/internal/rules"
)

// CardView is one card in CLI output.
type CardView struct {
	Rank    int    `json:"rank"`
	Element string `json:"element"`
}

// FoundationView is one foundation in CLI output.
type FoundationView struct {
	Top        *CardView `json:"top,omitempty"`
	ActorBound bool      `json:"actor_bound,omitempty"`
}

func cardView(c rules.Card) CardView {
	return CardView{Rank: int(c.Rank), Element: c.Element.String()}
}

func tableauViews(tableaus []rules.Tableau) [][]CardView {
	out := make([][]CardView, len(tableaus))
	for i, t := range tableaus {
		cards := make([]CardView, len(t.Cards))
		for j, c := range t.Cards {
			cards[j] = cardView(c)
		}
		out[i] = cards
	}
	return out
}

func foundationViews(foundations []rules.Foundation) []FoundationView {
	out := make([]FoundationView, len(foundations))
	for i, f := range foundations {
		view := FoundationView{ActorBound: f.ActorBound}
		if f.Top != nil {
			top := cardView(*f.Top)
			view.Top = &top
		}
		out[i] = view
	}
	return out
}

// Element display colors, one per element in Elements() order.
var elementColors = map[rules.Element]*color.Color{
	rules.ElementNeutral: color.New(color.FgWhite),
	rules.ElementFire:    color.New(color.FgRed),
	rules.ElementWater:   color.New(color.FgBlue),
	rules.ElementNature:  color.New(color.FgGreen),
	rules.ElementStorm:   color.New(color.FgYellow),
	rules.ElementLight:   color.New(color.FgHiWhite),
	rules.ElementDark:    color.New(color.FgMagenta),
}

// Rarity display colors, one per tier in Tiers() order.
var tierColors = map[rarity.Tier]*color.Color{
	rarity.TierCommon:    color.New(color.FgWhite),
	rarity.TierUncommon:  color.New(color.FgGreen),
	rarity.TierRare:      color.New(color.FgBlue),
	rarity.TierEpic:      color.New(color.FgMagenta),
	rarity.TierLegendary: color.New(color.FgYellow),
	rarity.TierMythic:    color.New(color.FgRed),
}

// colorizeElement wraps s in the element's display color. Pad s before
// calling: escape codes break printf column widths.
func colorizeElement(e rules.Element, s string) string {
	if c, ok := elementColors[e]; ok {
		return c.Sprint(s)
	}
	return s
}

// colorizeTier wraps s in the tier's display color.
func colorizeTier(t rarity.Tier, s string) string {
	if c, ok := tierColors[t]; ok {
		return c.Sprint(s)
	}
	return s
}

// colorizeMultiplier greens advantage and reds disadvantage.
func colorizeMultiplier(mult float64, s string) string {
	switch {
	case mult > 1:
		return color.GreenString("%s", s)
	case mult < 1:
		return color.RedString("%s", s)
	default:
		return s
	}
}

// cardLabel renders one card as "rank element", colored by element.
// The wild sentinel prints as "wild" rather than rank zero.
func cardLabel(c rules.Card) string {
	if c.Rank.Wild() {
		return colorizeElement(c.Element, "wild "+c.Element.String())
	}
	return colorizeElement(c.Element, fmt.Sprintf("%d %s", c.Rank, c.Element))
}

// renderTableaus prints the tableau stacks bottom-first with the top
// card marked.
func renderTableaus(w io.Writer, tableaus []rules.Tableau) {
	fmt.Fprintln(w, "Tableaus:")
	for i, t := range tableaus {
		if len(t.Cards) == 0 {
			fmt.Fprintf(w, "  [%d] (empty)\n", i)
			continue
		}
		labels := make([]string, len(t.Cards))
		for j, c := range t.Cards {
			labels[j] = cardLabel(c)
		}
		fmt.Fprintf(w, "  [%d] %s ← top\n", i, strings.Join(labels, ", "))
	}
}

// renderFoundations prints the foundation row.
func renderFoundations(w io.Writer, foundations []rules.Foundation) {
	fmt.Fprintln(w, "Foundations:")
	for i, f := range foundations {
		switch {
		case f.ActorBound:
			fmt.Fprintf(w, "  [%d] (actor)\n", i)
		case f.Top == nil:
			fmt.Fprintf(w, "  [%d] (empty)\n", i)
		default:
			fmt.Fprintf(w, "  [%d] %s\n", i, cardLabel(*f.Top))
		}
	}
}

// renderCheck prints the karma check outcome with the accept verdict.
func renderCheck(w io.Writer, check rules.DealCheck) {
	fmt.Fprintf(w, "Karma check: %d playable / %d required\n", check.Playable, check.Required)
	if check.Accepted {
		fmt.Fprintln(w, "✓ Deal accepted")
	} else {
		fmt.Fprintln(w, "✗ Deal rejected")
	}
}
