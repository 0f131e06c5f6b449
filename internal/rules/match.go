package rules

// IsSequential reports whether two ranks are adjacent on the 13-step
// wheel. Adjacency wraps: 1 and 13 are neighbors (ace-low/king-high), so
// the cyclic distance is 1 exactly when |a-b| is 1 or 12. Defined for
// ranks on the wheel; CanPlay resolves the wild sentinel before calling.
func IsSequential(a, b Rank) bool {
	d := int(a) - int(b)
	if d < 0 {
		d = -d
	}
	return d == 1 || d == numRanks-1
}

// CanPlay decides whether a card is playable onto a foundation under the
// active effects.
//
// Resolution order:
//  1. An empty foundation is never playable by this rule. Callers use a
//     separate empty-foundation placement path.
//  2. A foundation whose top is the wild sentinel, or that is bound to a
//     foundation actor, accepts any card.
//  3. A wild card plays onto any non-empty foundation.
//  4. While the element_matching buff is active, same-element cards play
//     regardless of rank adjacency.
//  5. Otherwise sequential rank adjacency decides.
func CanPlay(card Card, f Foundation, active []Effect) bool {
	if f.Top == nil {
		return false
	}
	if f.Top.Rank.Wild() || f.ActorBound {
		return true
	}
	if card.Rank.Wild() {
		return true
	}
	if HasActive(active, EffectElementMatching) && card.Element == f.Top.Element {
		return true
	}
	return IsSequential(card.Rank, f.Top.Rank)
}

// PlayableFoundations returns the indices of the foundations that accept
// the card under the active effects, in foundation order.
func PlayableFoundations(card Card, foundations []Foundation, active []Effect) []int {
	var playable []int
	for i, f := range foundations {
		if CanPlay(card, f, active) {
			playable = append(playable, i)
		}
	}
	return playable
}
