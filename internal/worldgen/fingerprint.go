package worldgen

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/roach88/orim/internal/canon"
	"github.com/roach88/orim/internal/rules"
)

// EncodeLayout serializes a dealt layout to canonical JSON. The journal
// stores these exact bytes as layout_json, and the fingerprint hashes
// them, so the stored layout and its digest can never disagree.
func EncodeLayout(tableaus []rules.Tableau, foundations []rules.Foundation) []byte {
	ts := make([]any, 0, len(tableaus))
	for _, t := range tableaus {
		cards := make([]any, 0, len(t.Cards))
		for _, c := range t.Cards {
			cards = append(cards, encodeCard(c))
		}
		ts = append(ts, cards)
	}

	fs := make([]any, 0, len(foundations))
	for _, f := range foundations {
		enc := map[string]any{
			"actor_bound": f.ActorBound,
		}
		if f.Top != nil {
			enc["top"] = encodeCard(*f.Top)
		}
		fs = append(fs, enc)
	}

	layout := map[string]any{
		"tableaus":    ts,
		"foundations": fs,
	}
	return canon.MustMarshalCanonical(layout)
}

// LayoutFingerprint digests a dealt layout for replay verification.
// The encoding goes through canonical JSON, so key order and string
// normalization cannot perturb the digest.
func LayoutFingerprint(tableaus []rules.Tableau, foundations []rules.Foundation) string {
	return canon.HashWithDomain(DomainLayout, EncodeLayout(tableaus, foundations))
}

// DecodeLayout parses layout JSON produced by EncodeLayout back into
// rules values. Unknown fields, invalid ranks, and unknown element
// names are rejected: journal rows are written by EncodeLayout, so
// anything else means the row was corrupted or hand-edited.
func DecodeLayout(data []byte) ([]rules.Tableau, []rules.Foundation, error) {
	var doc layoutDoc
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, nil, fmt.Errorf("parse layout: %w", err)
	}

	tableaus := make([]rules.Tableau, 0, len(doc.Tableaus))
	for i, cards := range doc.Tableaus {
		t := rules.Tableau{Cards: make([]rules.Card, 0, len(cards))}
		for j, c := range cards {
			card, err := decodeCard(c)
			if err != nil {
				return nil, nil, fmt.Errorf("tableau %d card %d: %w", i, j, err)
			}
			t.Cards = append(t.Cards, card)
		}
		tableaus = append(tableaus, t)
	}

	foundations := make([]rules.Foundation, 0, len(doc.Foundations))
	for i, f := range doc.Foundations {
		out := rules.Foundation{ActorBound: f.ActorBound}
		if f.Top != nil {
			card, err := decodeCard(*f.Top)
			if err != nil {
				return nil, nil, fmt.Errorf("foundation %d top: %w", i, err)
			}
			out.Top = &card
		}
		foundations = append(foundations, out)
	}

	return tableaus, foundations, nil
}

// layoutDoc mirrors the canonical layout shape for decoding.
type layoutDoc struct {
	Tableaus    [][]layoutCard     `json:"tableaus"`
	Foundations []layoutFoundation `json:"foundations"`
}

type layoutFoundation struct {
	ActorBound bool        `json:"actor_bound"`
	Top        *layoutCard `json:"top"`
}

type layoutCard struct {
	Rank     int          `json:"rank"`
	Element  string       `json:"element"`
	Cooldown int          `json:"cooldown"`
	Tags     []string     `json:"tags"`
	Orims    []layoutOrim `json:"orims"`
}

type layoutOrim struct {
	Element string `json:"element"`
	Charged bool   `json:"charged"`
}

func decodeCard(c layoutCard) (rules.Card, error) {
	if !rules.Rank(c.Rank).Valid() {
		return rules.Card{}, fmt.Errorf("invalid rank %d", c.Rank)
	}
	if !rules.KnownElement(c.Element) {
		return rules.Card{}, fmt.Errorf("unknown element %q", c.Element)
	}
	card := rules.Card{
		Rank:     rules.Rank(c.Rank),
		Element:  rules.ParseElement(c.Element),
		Cooldown: c.Cooldown,
		Tags:     c.Tags,
	}
	for _, o := range c.Orims {
		if !rules.KnownElement(o.Element) {
			return rules.Card{}, fmt.Errorf("unknown orim element %q", o.Element)
		}
		card.Orims = append(card.Orims, rules.Orim{
			Element: rules.ParseElement(o.Element),
			Charged: o.Charged,
		})
	}
	return card, nil
}

// encodeCard maps a card onto canonical value types. Zero-valued fields
// are omitted rather than encoded as empty, and both fingerprinting and
// replay share this function, so the two sides cannot drift.
func encodeCard(c rules.Card) map[string]any {
	enc := map[string]any{
		"rank":    int(c.Rank),
		"element": c.Element.String(),
	}
	if c.Cooldown != 0 {
		enc["cooldown"] = c.Cooldown
	}
	if len(c.Tags) > 0 {
		tags := make([]any, 0, len(c.Tags))
		for _, tag := range c.Tags {
			tags = append(tags, tag)
		}
		enc["tags"] = tags
	}
	if len(c.Orims) > 0 {
		orims := make([]any, 0, len(c.Orims))
		for _, o := range c.Orims {
			orims = append(orims, map[string]any{
				"element": o.Element.String(),
				"charged": o.Charged,
			})
		}
		enc["orims"] = orims
	}
	return enc
}
