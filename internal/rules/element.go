package rules

import "strings"

// Element is one of the seven symbolic element tags. The zero value is
// ElementNeutral, so an absent element behaves as neutral everywhere.
type Element int

const (
	ElementNeutral Element = iota
	ElementFire
	ElementWater
	ElementNature
	ElementStorm
	ElementLight
	ElementDark
)

// NumElements is the size of the element set and of each axis of the
// elemental matrix.
const NumElements = 7

// Suit is a card suit. Suits map 1:1 onto elements and are always
// derived, never stored.
type Suit int

const (
	SuitStones Suit = iota // neutral
	SuitSuns               // fire
	SuitDrops              // water
	SuitLeaves             // nature
	SuitClouds             // storm
	SuitStars              // light
	SuitMoons              // dark
)

var elementNames = [NumElements]string{
	ElementNeutral: "neutral",
	ElementFire:    "fire",
	ElementWater:   "water",
	ElementNature:  "nature",
	ElementStorm:   "storm",
	ElementLight:   "light",
	ElementDark:    "dark",
}

var suitNames = [NumElements]string{
	SuitStones: "stones",
	SuitSuns:   "suns",
	SuitDrops:  "drops",
	SuitLeaves: "leaves",
	SuitClouds: "clouds",
	SuitStars:  "stars",
	SuitMoons:  "moons",
}

var elementsByName = map[string]Element{
	"neutral": ElementNeutral,
	"fire":    ElementFire,
	"water":   ElementWater,
	"nature":  ElementNature,
	"storm":   ElementStorm,
	"light":   ElementLight,
	"dark":    ElementDark,
}

// ParseElement maps an element name to its Element, case-insensitively.
// Unknown or empty names normalize to ElementNeutral.
func ParseElement(name string) Element {
	if e, ok := elementsByName[strings.ToLower(strings.TrimSpace(name))]; ok {
		return e
	}
	return ElementNeutral
}

// KnownElement reports whether the name maps to a defined element.
// ParseElement stays total; boundary code that wants strictness (the
// definition compiler) checks this first.
func KnownElement(name string) bool {
	_, ok := elementsByName[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// Elements returns all elements in matrix order.
func Elements() [NumElements]Element {
	return [NumElements]Element{
		ElementNeutral, ElementFire, ElementWater, ElementNature,
		ElementStorm, ElementLight, ElementDark,
	}
}

func (e Element) String() string {
	if e < 0 || int(e) >= NumElements {
		return "neutral"
	}
	return elementNames[e]
}

// Suit returns the suit derived from the element.
func (e Element) Suit() Suit {
	if e < 0 || int(e) >= NumElements {
		return SuitStones
	}
	return Suit(e)
}

func (s Suit) String() string {
	if s < 0 || int(s) >= NumElements {
		return "stones"
	}
	return suitNames[s]
}

// Element returns the element the suit derives from.
func (s Suit) Element() Element {
	if s < 0 || int(s) >= NumElements {
		return ElementNeutral
	}
	return Element(s)
}
