package rarity

// BuildLoadouts completes a sparse manually-authored per-tier table.
// Every undefined tier inherits the nearest lower defined tier; with
// nothing defined below it (no common tier), the tier is an empty list.
// Defined tiers are copied, so the result shares no slices with the
// input.
func BuildLoadouts(sparse map[Tier][]EffectValue) Loadout {
	var out Loadout
	for i := 0; i < NumTiers; i++ {
		tier := Tier(i)
		if effects, ok := sparse[tier]; ok {
			out[i] = copyEffects(effects)
			continue
		}

		filled := false
		for lower := tier - 1; lower >= TierCommon; lower-- {
			if effects, ok := sparse[lower]; ok {
				out[i] = copyEffects(effects)
				filled = true
				break
			}
		}
		if !filled {
			out[i] = []EffectValue{}
		}
	}
	return out
}

func copyEffects(effects []EffectValue) []EffectValue {
	out := make([]EffectValue, len(effects))
	copy(out, effects)
	return out
}
