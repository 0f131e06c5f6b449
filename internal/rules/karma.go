package rules

// DealCheck is the outcome of the karma dealing fairness check.
type DealCheck struct {
	// Playable counts tableau top-of-stack cards with at least one
	// legally playable foundation.
	Playable int `json:"playable"`

	// Required is the minimum playable count for an acceptable deal.
	Required int `json:"required"`

	// Accepted is true when Playable meets Required.
	Accepted bool `json:"accepted"`
}

// EvaluateDeal runs the karma dealing check: count how many tableau tops
// have at least one legally playable foundation under the active
// effects, and accept the deal when the count meets the required
// minimum. Pure over the snapshot, O(tableaus x foundations). Empty
// tableaus contribute nothing. A non-positive requirement accepts every
// deal.
func EvaluateDeal(tableaus []Tableau, foundations []Foundation, active []Effect, required int) DealCheck {
	if required < 0 {
		required = 0
	}

	playable := 0
	for _, t := range tableaus {
		top, ok := t.Top()
		if !ok {
			continue
		}
		for _, f := range foundations {
			if CanPlay(top, f, active) {
				playable++
				break
			}
		}
	}

	return DealCheck{
		Playable: playable,
		Required: required,
		Accepted: playable >= required,
	}
}
