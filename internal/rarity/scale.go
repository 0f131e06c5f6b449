package rarity

import "math"

// profile is the scaling recipe for one effect kind: a growth factor and
// a cap ratio per tier, and whether the kind is high-impact. High-impact
// kinds are guaranteed visible growth: if rounding stalls them, the tier
// is bumped one point over the previous tier (the cap still wins).
type profile struct {
	growth     [NumTiers]float64
	capRatio   [NumTiers]float64
	highImpact bool
}

// Balance tables. Tuned numbers, not derived from a formula; tests pin
// the resulting ladders.
var (
	standardProfile = profile{
		growth:   [NumTiers]float64{1, 1.25, 1.6, 2, 2.5, 3},
		capRatio: [NumTiers]float64{1, 1.4, 1.8, 2.2, 2.75, 3.25},
	}

	profiles = map[string]profile{
		KindDamage: {
			growth:     [NumTiers]float64{1, 1.5, 2, 3, 3.75, 4.75},
			capRatio:   [NumTiers]float64{1, 1.6, 2.2, 3.1, 4, 5},
			highImpact: true,
		},
		KindHeal: {
			growth:     [NumTiers]float64{1, 1.4, 1.9, 2.6, 3.3, 4.2},
			capRatio:   [NumTiers]float64{1, 1.5, 2, 2.8, 3.6, 4.5},
			highImpact: true,
		},
		KindShield: {
			growth:     [NumTiers]float64{1, 1.35, 1.8, 2.4, 3, 3.8},
			capRatio:   [NumTiers]float64{1, 1.5, 2, 2.6, 3.2, 4},
			highImpact: true,
		},
		KindDraw: {
			growth:   [NumTiers]float64{1, 1, 1.15, 1.3, 1.5, 1.8},
			capRatio: [NumTiers]float64{1, 1, 1.5, 1.5, 2, 2},
		},
		KindEnergy: {
			growth:   [NumTiers]float64{1, 1.1, 1.25, 1.5, 1.75, 2},
			capRatio: [NumTiers]float64{1, 1.25, 1.5, 1.75, 2, 2.25},
		},
	}
)

func profileFor(kind string) profile {
	if p, ok := profiles[kind]; ok {
		return p
	}
	return standardProfile
}

// roundHalfUp rounds to the nearest int, halves away from zero on the
// positive axis (inputs here are never negative).
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

// SanitizeValue clamps a raw authored value into the non-negative
// integer domain: NaN, infinities, and negatives become zero, everything
// else rounds half-up. Malformed input is clamped, never rejected.
func SanitizeValue(x float64) int {
	if math.IsNaN(x) || math.IsInf(x, 0) || x < 0 {
		return 0
	}
	return roundHalfUp(x)
}

// ladder computes the full six-tier value sequence for one effect.
//
// Per tier, in order: scale the base by the growth factor (round
// half-up), bump stalled high-impact kinds one over the previous tier,
// apply the cap ceiling, then floor at the previous tier so the ladder
// never decreases.
func ladder(kind string, base int) [NumTiers]int {
	if base < 0 {
		base = 0
	}
	p := profileFor(kind)

	var out [NumTiers]int
	prev := 0
	for i := 0; i < NumTiers; i++ {
		v := roundHalfUp(float64(base) * p.growth[i])
		if p.highImpact && i > 0 && v <= prev {
			v = prev + 1
		}
		if ceiling := int(math.Ceil(float64(base) * p.capRatio[i])); v > ceiling {
			v = ceiling
		}
		if v < prev {
			v = prev
		}
		out[i] = v
		prev = v
	}
	return out
}

// ResolveEffectValue returns the value of one effect at one tier.
// Monotonically non-decreasing in tier for any fixed kind and base.
func ResolveEffectValue(kind string, base int, tier Tier) int {
	return ladder(kind, base)[tier.clamp()]
}

// ExpandFromCommon scales a common-tier effect list across all six
// tiers. Entry order is preserved within every tier.
func ExpandFromCommon(base []EffectValue) Loadout {
	var out Loadout
	for i := range out {
		out[i] = make([]EffectValue, 0, len(base))
	}
	for _, ev := range base {
		steps := ladder(ev.Kind, ev.Value)
		for i := 0; i < NumTiers; i++ {
			out[i] = append(out[i], EffectValue{Kind: ev.Kind, Value: steps[i]})
		}
	}
	return out
}
