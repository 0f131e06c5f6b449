// Package rarity implements six-tier effect scaling and loadout
// backfill for card definitions. Scaling constants are hand-tuned
// balance numbers kept as opaque tables; the routines around them are
// total, monotonic, and pure.
package rarity

import "strings"

// Tier is one of the six ordered rarity tiers.
type Tier int

const (
	TierCommon Tier = iota
	TierUncommon
	TierRare
	TierEpic
	TierLegendary
	TierMythic
)

// NumTiers is the number of rarity tiers.
const NumTiers = 6

var tierNames = [NumTiers]string{
	TierCommon:    "common",
	TierUncommon:  "uncommon",
	TierRare:      "rare",
	TierEpic:      "epic",
	TierLegendary: "legendary",
	TierMythic:    "mythic",
}

var tiersByName = map[string]Tier{
	"common":    TierCommon,
	"uncommon":  TierUncommon,
	"rare":      TierRare,
	"epic":      TierEpic,
	"legendary": TierLegendary,
	"mythic":    TierMythic,
}

// ParseTier maps a tier name to its Tier, case-insensitively.
func ParseTier(name string) (Tier, bool) {
	t, ok := tiersByName[strings.ToLower(strings.TrimSpace(name))]
	return t, ok
}

// Tiers returns all tiers in ascending order.
func Tiers() [NumTiers]Tier {
	return [NumTiers]Tier{
		TierCommon, TierUncommon, TierRare, TierEpic, TierLegendary, TierMythic,
	}
}

func (t Tier) String() string {
	if t < 0 || int(t) >= NumTiers {
		return "common"
	}
	return tierNames[t]
}

// clamp forces a tier into range so lookups stay total.
func (t Tier) clamp() Tier {
	if t < 0 {
		return TierCommon
	}
	if int(t) >= NumTiers {
		return TierMythic
	}
	return t
}

// Effect kinds with dedicated scaling profiles. The kind set is open:
// unknown kinds scale with the standard profile.
const (
	KindDamage = "damage"
	KindHeal   = "heal"
	KindShield = "shield"
	KindDraw   = "draw"
	KindEnergy = "energy"
)

// EffectValue is one numeric effect entry in a loadout.
type EffectValue struct {
	Kind  string `json:"kind"`
	Value int    `json:"value"`
}

// Loadout is a complete per-tier effect table, indexed by Tier.
type Loadout [NumTiers][]EffectValue

// At returns the effect list for a tier, clamped into range.
func (l Loadout) At(t Tier) []EffectValue {
	return l[t.clamp()]
}
