package worldgen

import (
	"github.com/roach88/orim/internal/rules"
)

// DealShape sizes a deal. Values come from settings, not hardcoded
// here, so maps and scenarios can vary the layout.
type DealShape struct {
	Tableaus        int
	CardsPerTableau int
	Foundations     int
}

// ElementPalette weights the elements available to a deal, indexed in
// rules element order. A zero weight excludes the element entirely.
type ElementPalette = [rules.NumElements]int

// drawCard deals one card from the stream. Draw order is rank then
// element; reordering the draws changes every recorded layout.
func drawCard(s *Stream, palette ElementPalette) rules.Card {
	rank := rules.Rank(1 + s.Intn(int(rules.MaxRank)))
	element := rules.Element(s.Pick(palette[:]))
	return rules.Card{Rank: rank, Element: element}
}

// DealTableaus generates the tableau stacks for a node. Cards are drawn
// card-by-card within a tableau, tableau-by-tableau; the last card of
// each slice is the top of its stack.
func DealTableaus(nodeKey, direction string, shape DealShape, palette ElementPalette) []rules.Tableau {
	s := NewStream(Seed(DomainTableau, nodeKey, direction))

	tableaus := make([]rules.Tableau, 0, shape.Tableaus)
	for i := 0; i < shape.Tableaus; i++ {
		cards := make([]rules.Card, 0, shape.CardsPerTableau)
		for j := 0; j < shape.CardsPerTableau; j++ {
			cards = append(cards, drawCard(s, palette))
		}
		tableaus = append(tableaus, rules.Tableau{Cards: cards})
	}
	return tableaus
}

// DealFoundations generates one starter top card per foundation from a
// stream independent of the tableau stream. Starters are never wild and
// never actor-bound; those paths belong to authored content.
func DealFoundations(nodeKey, direction string, count int, palette ElementPalette) []rules.Foundation {
	s := NewStream(Seed(DomainFoundation, nodeKey, direction))

	foundations := make([]rules.Foundation, 0, count)
	for i := 0; i < count; i++ {
		top := drawCard(s, palette)
		foundations = append(foundations, rules.Foundation{Top: &top})
	}
	return foundations
}
