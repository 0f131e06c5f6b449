package rules

// Rank is a card rank on the 13-step wheel, with 0 reserved as the wild
// sentinel.
type Rank int

const (
	// RankWild is the reserved rank meaning "matches anything". It sits
	// outside the 1-13 wheel; CanPlay resolves it before any adjacency
	// math runs.
	RankWild Rank = 0

	// MinRank and MaxRank bound the standard wheel.
	MinRank Rank = 1
	MaxRank Rank = 13
)

// numRanks is the size of the rank wheel (wild excluded).
const numRanks = 13

// Wild reports whether the rank is the wild sentinel.
func (r Rank) Wild() bool {
	return r == RankWild
}

// Valid reports whether the rank is the wild sentinel or on the wheel.
func (r Rank) Valid() bool {
	return r == RankWild || (r >= MinRank && r <= MaxRank)
}

// Orim is an elemental modifier slot attached to a card. A charged orim
// overrides the card's printed element for multiplier purposes.
type Orim struct {
	Element Element `json:"element"`
	Charged bool    `json:"charged,omitempty"`
}

// Card is a dealt card. Cards are immutable once dealt: state changes
// replace the card value, they never mutate it in place.
type Card struct {
	Rank    Rank    `json:"rank"`
	Element Element `json:"element"`

	// Optional metadata carried from the card's definition.
	Cooldown int      `json:"cooldown,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	Orims    []Orim   `json:"orims,omitempty"`
}

// Suit returns the card's suit, derived 1:1 from its element.
func (c Card) Suit() Suit {
	return c.Element.Suit()
}

// EffectiveElement returns the element the card attacks with: the last
// charged orim wins, otherwise the printed element.
func (c Card) EffectiveElement() Element {
	eff := c.Element
	for _, o := range c.Orims {
		if o.Charged {
			eff = o.Element
		}
	}
	return eff
}

// WithCooldown returns a copy of the card with the cooldown replaced.
func (c Card) WithCooldown(cooldown int) Card {
	if cooldown < 0 {
		cooldown = 0
	}
	c.Cooldown = cooldown
	return c
}

// WithOrim returns a copy of the card with an orim slot appended. The
// original card's slot slice is not shared with the copy.
func (c Card) WithOrim(o Orim) Card {
	orims := make([]Orim, 0, len(c.Orims)+1)
	orims = append(orims, c.Orims...)
	orims = append(orims, o)
	c.Orims = orims
	return c
}

// Foundation is a play pile that accepts sequentially-ranked cards.
// Top is nil while the foundation is empty. ActorBound marks a
// foundation bound to a foundation actor; it accepts any card.
type Foundation struct {
	Top        *Card `json:"top,omitempty"`
	ActorBound bool  `json:"actor_bound,omitempty"`
}

// Tableau is a dealt stack the player draws from. The top of the stack
// is the last element of Cards.
type Tableau struct {
	Cards []Card `json:"cards"`
}

// Top returns the top-of-stack card, if any.
func (t Tableau) Top() (Card, bool) {
	if len(t.Cards) == 0 {
		return Card{}, false
	}
	return t.Cards[len(t.Cards)-1], true
}
