// Package rules implements the orim matching core.
//
// The package holds the card model (ranks, elements, suits, orim slots),
// the elemental multiplier matrix, active effects, the card matching rule,
// and the karma dealing check. Everything here is pure: functions read
// only their explicit inputs, mutate nothing, and return values instead
// of errors.
//
// INVARIANTS:
//
// Totality:
// Every function is defined for every input. Lookups that miss fall back
// to neutral defaults (unknown element parses to ElementNeutral, missing
// matrix entries multiply by 1.0) rather than signaling errors.
//
// Immutability:
// Cards are value types. Dealing or playing never mutates an existing
// card; state changes produce replacement values. The elemental matrix
// is constant data, validated by tests and never written at runtime.
//
// Determinism:
// Playability depends only on the card, the foundation, and the active
// effect list passed in. There is no package-level state and no clock.
package rules
