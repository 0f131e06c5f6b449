package rules

// EffectElementMatching is the buff that makes same-element cards
// playable regardless of rank adjacency while it is active.
const EffectElementMatching = "element_matching"

// Effect is a named buff or debuff with a duration counter. An effect
// expires when its duration reaches zero unless it is marked infinite.
type Effect struct {
	Name     string `json:"name"`
	Duration int    `json:"duration,omitempty"`
	Infinite bool   `json:"infinite,omitempty"`
}

// Active reports whether the effect currently applies.
func (e Effect) Active() bool {
	return e.Infinite || e.Duration > 0
}

// Tick returns the effect advanced by one turn. Finite durations count
// down and stop at zero; infinite effects are unchanged.
func (e Effect) Tick() Effect {
	if e.Infinite {
		return e
	}
	if e.Duration > 0 {
		e.Duration--
	}
	return e
}

// TickAll advances every effect by one turn and drops the ones that
// expired. The input slice is not modified.
func TickAll(effects []Effect) []Effect {
	ticked := make([]Effect, 0, len(effects))
	for _, e := range effects {
		next := e.Tick()
		if next.Active() {
			ticked = append(ticked, next)
		}
	}
	return ticked
}

// HasActive reports whether an active effect with the given name is in
// the list.
func HasActive(effects []Effect, name string) bool {
	for _, e := range effects {
		if e.Name == name && e.Active() {
			return true
		}
	}
	return false
}
