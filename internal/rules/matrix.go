package rules

// elementalMatrix is the fixed attacker-element x target-element
// multiplier table. Constant data: tuned by hand, validated by tests,
// never written at runtime.
//
// Structure:
//   - the neutral row and column are 1.0 (neutral is multiplier-invariant)
//   - the wheel fire>nature>water>storm>fire multiplies 2.0 with the
//     grain and 0.5 against it
//   - light and dark multiply 2.0 into each other, 1.0 into themselves
//
// Axis order matches Elements(): neutral, fire, water, nature, storm,
// light, dark.
var elementalMatrix = [NumElements][NumElements]float64{
	ElementNeutral: {1, 1, 1, 1, 1, 1, 1},
	ElementFire:    {1, 1, 1, 2, 0.5, 1, 1},
	ElementWater:   {1, 1, 1, 0.5, 2, 1, 1},
	ElementNature:  {1, 0.5, 2, 1, 1, 1, 1},
	ElementStorm:   {1, 2, 0.5, 1, 1, 1, 1},
	ElementLight:   {1, 1, 1, 1, 1, 1, 2},
	ElementDark:    {1, 1, 1, 1, 1, 2, 1},
}

// Multiplier returns the elemental multiplier for an attacking element
// against a target element. Callers with no target element pass
// ElementNeutral. Values outside the element set fall back to 1.0.
func Multiplier(attacker, target Element) float64 {
	if attacker < 0 || int(attacker) >= NumElements {
		return 1.0
	}
	if target < 0 || int(target) >= NumElements {
		return 1.0
	}
	return elementalMatrix[attacker][target]
}

// MatrixRow returns one attacker's full multiplier row in Elements()
// order. Out-of-range attackers return the all-1.0 neutral row.
func MatrixRow(attacker Element) [NumElements]float64 {
	if attacker < 0 || int(attacker) >= NumElements {
		return elementalMatrix[ElementNeutral]
	}
	return elementalMatrix[attacker]
}
