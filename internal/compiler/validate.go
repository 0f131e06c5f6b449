package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/orim/internal/rarity"
)

// Validation error codes (E100-E199)
const (
	// General validation errors (E100)
	ErrUnsupportedDefType = "E100" // unsupported definition type for validation

	// Per-definition errors (E101-E109)
	ErrIDEmpty          = "E101" // definition id is required
	ErrNameEmpty        = "E102" // definition name is required
	ErrNegativeCooldown = "E103" // cooldown must be non-negative
	ErrEmptyEffectKind  = "E104" // effect kind must be non-empty

	// Cross-definition errors (E110-E119)
	ErrDuplicateID   = "E110" // duplicate definition id
	ErrDuplicateName = "E111" // duplicate definition name
)

// ValidationError represents a definition validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a single compiled definition against schema rules.
// Returns all errors found (does not fail-fast). Supports AbilityDef
// and AspectDef values or pointers.
func Validate(v any) []ValidationError {
	switch def := v.(type) {
	case *AbilityDef:
		return validateAbilityDef(def)
	case AbilityDef:
		return validateAbilityDef(&def)
	case *AspectDef:
		return validateAspectDef(def)
	case AspectDef:
		return validateAspectDef(&def)
	default:
		return []ValidationError{{
			Field:   "type",
			Message: fmt.Sprintf("unsupported definition type: %T", v),
			Code:    ErrUnsupportedDefType,
		}}
	}
}

func validateAbilityDef(def *AbilityDef) []ValidationError {
	var errs []ValidationError

	if strings.TrimSpace(def.ID) == "" {
		errs = append(errs, ValidationError{
			Field:   "id",
			Message: "ability id is required and must be non-empty",
			Code:    ErrIDEmpty,
		})
	}
	if strings.TrimSpace(def.Name) == "" {
		errs = append(errs, ValidationError{
			Field:   "name",
			Message: "ability name is required and must be non-empty",
			Code:    ErrNameEmpty,
		})
	}
	if def.Cooldown < 0 {
		errs = append(errs, ValidationError{
			Field:   "cooldown",
			Message: fmt.Sprintf("cooldown must be non-negative, got %d", def.Cooldown),
			Code:    ErrNegativeCooldown,
		})
	}

	for tier := rarity.TierCommon; int(tier) < rarity.NumTiers; tier++ {
		for i, effect := range def.Effects.At(tier) {
			if strings.TrimSpace(effect.Kind) == "" {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("effects.%s[%d].kind", tier, i),
					Message: "effect kind must be non-empty",
					Code:    ErrEmptyEffectKind,
				})
			}
		}
	}

	return errs
}

func validateAspectDef(def *AspectDef) []ValidationError {
	var errs []ValidationError

	if strings.TrimSpace(def.ID) == "" {
		errs = append(errs, ValidationError{
			Field:   "id",
			Message: "aspect id is required and must be non-empty",
			Code:    ErrIDEmpty,
		})
	}
	if strings.TrimSpace(def.Name) == "" {
		errs = append(errs, ValidationError{
			Field:   "name",
			Message: "aspect name is required and must be non-empty",
			Code:    ErrNameEmpty,
		})
	}

	for i, effect := range def.Bonus {
		if strings.TrimSpace(effect.Kind) == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("bonus[%d].kind", i),
				Message: "effect kind must be non-empty",
				Code:    ErrEmptyEffectKind,
			})
		}
	}

	return errs
}

// ValidateDefs runs per-definition validation across a full compiled
// set and adds the cross-definition checks: ids and names must be
// unique within abilities and within aspects.
func ValidateDefs(abilities []*AbilityDef, aspects []*AspectDef) []ValidationError {
	var errs []ValidationError

	abilityIDs := make(map[string]bool)
	abilityNames := make(map[string]bool)
	for i, def := range abilities {
		errs = append(errs, Validate(def)...)

		if abilityIDs[def.ID] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("abilities[%d].id", i),
				Message: fmt.Sprintf("duplicate ability id: %q", def.ID),
				Code:    ErrDuplicateID,
			})
		}
		abilityIDs[def.ID] = true

		if abilityNames[def.Name] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("abilities[%d].name", i),
				Message: fmt.Sprintf("duplicate ability name: %q", def.Name),
				Code:    ErrDuplicateName,
			})
		}
		abilityNames[def.Name] = true
	}

	aspectIDs := make(map[string]bool)
	aspectNames := make(map[string]bool)
	for i, def := range aspects {
		errs = append(errs, Validate(def)...)

		if aspectIDs[def.ID] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("aspects[%d].id", i),
				Message: fmt.Sprintf("duplicate aspect id: %q", def.ID),
				Code:    ErrDuplicateID,
			})
		}
		aspectIDs[def.ID] = true

		if aspectNames[def.Name] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("aspects[%d].name", i),
				Message: fmt.Sprintf("duplicate aspect name: %q", def.Name),
				Code:    ErrDuplicateName,
			})
		}
		aspectNames[def.Name] = true
	}

	return errs
}
