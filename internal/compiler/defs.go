package compiler

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/orim/internal/rarity"
	"github.com/roach88/orim/internal/rules"
)

// AbilityDef is a compiled ability definition: a static lookup-table
// entry consumed by the rules layer, never mutated after compilation.
type AbilityDef struct {
	ID       string
	Name     string
	Element  rules.Element
	Cooldown int
	Tags     []string
	Effects  rarity.Loadout
}

// AspectDef is a compiled aspect definition. Aspect bonuses are flat,
// not tiered.
type AspectDef struct {
	ID      string
	Name    string
	Element rules.Element
	Bonus   []rarity.EffectValue
}

// CompileAbility parses a CUE value into an AbilityDef.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the ability struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`ability: firebolt: { ... }`)
//	def, err := CompileAbility(v.LookupPath(cue.ParsePath("ability.firebolt")))
func CompileAbility(v cue.Value) (*AbilityDef, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	def := &AbilityDef{}

	// The definition id is the struct label (the path selector).
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		def.ID = strings.Trim(labels[len(labels)-1].String(), `"`)
	}

	name, err := requiredString(v, "name")
	if err != nil {
		return nil, err
	}
	def.Name = name

	def.Element, err = parseDefElement(v)
	if err != nil {
		return nil, err
	}

	def.Cooldown, err = parseCooldown(v)
	if err != nil {
		return nil, err
	}

	def.Tags, err = parseTags(v)
	if err != nil {
		return nil, err
	}

	byTier, err := parseEffects(v)
	if err != nil {
		return nil, err
	}
	def.Effects = buildLoadout(byTier)

	return def, nil
}

// CompileAspect parses a CUE value into an AspectDef.
func CompileAspect(v cue.Value) (*AspectDef, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	def := &AspectDef{}

	labels := v.Path().Selectors()
	if len(labels) > 0 {
		def.ID = strings.Trim(labels[len(labels)-1].String(), `"`)
	}

	name, err := requiredString(v, "name")
	if err != nil {
		return nil, err
	}
	def.Name = name

	def.Element, err = parseDefElement(v)
	if err != nil {
		return nil, err
	}

	bonusVal := v.LookupPath(cue.ParsePath("bonus"))
	if bonusVal.Exists() {
		def.Bonus, err = parseEffectList(bonusVal, "bonus")
		if err != nil {
			return nil, err
		}
	}

	return def, nil
}

// requiredString reads a mandatory top-level string field.
func requiredString(v cue.Value, field string) (string, error) {
	fieldVal := v.LookupPath(cue.ParsePath(field))
	if !fieldVal.Exists() {
		return "", &CompileError{
			Field:   field,
			Message: fmt.Sprintf("%s is required", field),
			Pos:     v.Pos(),
		}
	}
	s, err := fieldVal.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	if strings.TrimSpace(s) == "" {
		return "", &CompileError{
			Field:   field,
			Message: fmt.Sprintf("%s must be non-empty", field),
			Pos:     fieldVal.Pos(),
		}
	}
	return s, nil
}

// parseDefElement reads the optional element field. Definitions are
// authored content, so an unknown element is a compile error here even
// though the runtime rules normalize unknowns to neutral.
func parseDefElement(v cue.Value) (rules.Element, error) {
	elemVal := v.LookupPath(cue.ParsePath("element"))
	if !elemVal.Exists() {
		return rules.ElementNeutral, nil
	}
	name, err := elemVal.String()
	if err != nil {
		return rules.ElementNeutral, formatCUEError(err)
	}
	if !rules.KnownElement(name) {
		return rules.ElementNeutral, &CompileError{
			Field:   "element",
			Message: fmt.Sprintf("unknown element %q", name),
			Pos:     elemVal.Pos(),
		}
	}
	return rules.ParseElement(name), nil
}

func parseCooldown(v cue.Value) (int, error) {
	cdVal := v.LookupPath(cue.ParsePath("cooldown"))
	if !cdVal.Exists() {
		return 0, nil
	}
	cd, err := cdVal.Int64()
	if err != nil {
		return 0, formatCUEError(err)
	}
	if cd < 0 {
		return 0, &CompileError{
			Field:   "cooldown",
			Message: fmt.Sprintf("cooldown must be non-negative, got %d", cd),
			Pos:     cdVal.Pos(),
		}
	}
	return int(cd), nil
}

func parseTags(v cue.Value) ([]string, error) {
	tagsVal := v.LookupPath(cue.ParsePath("tags"))
	if !tagsVal.Exists() {
		return nil, nil
	}
	iter, err := tagsVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var tags []string
	for iter.Next() {
		tag, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

// parseEffects reads the per-tier effects struct. Tier labels must
// parse; unknown labels are compile errors, not silent fallbacks.
func parseEffects(v cue.Value) (map[rarity.Tier][]rarity.EffectValue, error) {
	effectsVal := v.LookupPath(cue.ParsePath("effects"))
	if !effectsVal.Exists() {
		return nil, nil
	}

	byTier := make(map[rarity.Tier][]rarity.EffectValue)
	iter, err := effectsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		tierName := iter.Label()
		tier, ok := rarity.ParseTier(tierName)
		if !ok {
			return nil, &CompileError{
				Field:   "effects",
				Message: fmt.Sprintf("unknown tier %q", tierName),
				Pos:     iter.Value().Pos(),
			}
		}
		effects, err := parseEffectList(iter.Value(), "effects."+tierName)
		if err != nil {
			return nil, err
		}
		byTier[tier] = effects
	}
	return byTier, nil
}

// parseEffectList reads a list of {kind, value} effect entries. Values
// pass through rarity.SanitizeValue, so authored garbage (negatives,
// non-finite numbers) clamps to zero instead of failing compilation.
func parseEffectList(v cue.Value, field string) ([]rarity.EffectValue, error) {
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var out []rarity.EffectValue
	for iter.Next() {
		entry := iter.Value()

		kindVal := entry.LookupPath(cue.ParsePath("kind"))
		if !kindVal.Exists() {
			return nil, &CompileError{
				Field:   field,
				Message: "effect kind is required",
				Pos:     entry.Pos(),
			}
		}
		kind, err := kindVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		if strings.TrimSpace(kind) == "" {
			return nil, &CompileError{
				Field:   field,
				Message: "effect kind must be non-empty",
				Pos:     kindVal.Pos(),
			}
		}

		valueVal := entry.LookupPath(cue.ParsePath("value"))
		if !valueVal.Exists() {
			return nil, &CompileError{
				Field:   field,
				Message: fmt.Sprintf("effect %q value is required", kind),
				Pos:     entry.Pos(),
			}
		}
		raw, err := valueVal.Float64()
		if err != nil {
			return nil, formatCUEError(err)
		}

		out = append(out, rarity.EffectValue{Kind: kind, Value: rarity.SanitizeValue(raw)})
	}
	return out, nil
}

// buildLoadout turns authored tiers into a full loadout. A lone common
// tier auto-scales through the rarity ladders; anything else backfills
// sparse tiers from the nearest lower authored tier.
func buildLoadout(byTier map[rarity.Tier][]rarity.EffectValue) rarity.Loadout {
	if len(byTier) == 1 {
		if common, ok := byTier[rarity.TierCommon]; ok {
			return rarity.ExpandFromCommon(common)
		}
	}
	return rarity.BuildLoadouts(byTier)
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
