package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultSessionToken seeds the fixed token generator when a scenario
// does not name its own session_token.
const DefaultSessionToken = "harness-session"

// Scenario defines a conformance test scenario.
// Scenarios validate session behavior by executing deal and play steps
// against a real session and asserting on the resulting trace and
// journal state.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden trace fixtures are
	// stored under this name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// SessionToken is an optional fixed session token. If empty,
	// DefaultSessionToken is used. Scenarios with golden fixtures
	// should specify an explicit token for traceability.
	SessionToken string `yaml:"session_token,omitempty"`

	// Map is the path to the map YAML file the session runs on.
	// Relative paths resolve against the scenario file location.
	Map string `yaml:"map"`

	// Settings overrides individual balance defaults for this scenario.
	Settings *SettingsClause `yaml:"settings,omitempty"`

	// Steps contains the deal and play steps, executed in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final trace and journal state.
	// Supported types: trace_contains, trace_order, trace_count, final_state
	Assertions []Assertion `yaml:"assertions"`
}

// SettingsClause overrides balance settings for one scenario. Nil
// fields keep the default value.
type SettingsClause struct {
	KarmaMinimum    *int `yaml:"karma_minimum,omitempty"`
	Tableaus        *int `yaml:"tableaus,omitempty"`
	CardsPerTableau *int `yaml:"cards_per_tableau,omitempty"`
	Foundations     *int `yaml:"foundations,omitempty"`
}

// Step is one scenario step: exactly one of Deal or Play.
type Step struct {
	// Deal generates and journals a deal at a map node.
	Deal *DealStep `yaml:"deal,omitempty"`

	// Play applies a tableau-to-foundation play to the most recent deal.
	Play *PlayStep `yaml:"play,omitempty"`

	// Expect specifies the expected step outcome.
	// If nil, the step only has to execute without error.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// DealStep names the node and approach direction of a deal.
type DealStep struct {
	Node      string `yaml:"node"`
	Direction string `yaml:"direction"`
}

// PlayStep names the tableau and foundation indices of a play.
type PlayStep struct {
	Tableau    int `yaml:"tableau"`
	Foundation int `yaml:"foundation"`
}

// ExpectClause specifies the expected outcome of a step. All fields are
// optional; only set fields are checked.
type ExpectClause struct {
	// Accepted is the expected karma check outcome of a deal step.
	Accepted *bool `yaml:"accepted,omitempty"`

	// MinPlayable is the minimum playable-top count of a deal step.
	MinPlayable *int `yaml:"min_playable,omitempty"`

	// Legal is the expected legality of a play step.
	Legal *bool `yaml:"legal,omitempty"`
}

// Assertion validates trace or final journal state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "trace_contains": Check an event appears in the trace
	// - "trace_order": Check event types appear as a subsequence
	// - "trace_count": Check matching events appear exactly N times
	// - "final_state": Query a journal table and verify expected values
	Type string `yaml:"type"`

	// Event is the trace event type (used by trace_contains, trace_count).
	Event string `yaml:"event,omitempty"`

	// Node and Direction filter matching events (optional, used by
	// trace_contains and trace_count).
	Node      string `yaml:"node,omitempty"`
	Direction string `yaml:"direction,omitempty"`

	// Events is the expected event type order (used by trace_order).
	Events []string `yaml:"events,omitempty"`

	// Count is the expected number of occurrences (used by trace_count).
	Count int `yaml:"count,omitempty"`

	// Table is the journal table name (used by final_state).
	Table string `yaml:"table,omitempty"`

	// Where specifies query filters (used by final_state).
	// All fields must match exactly.
	Where map[string]any `yaml:"where,omitempty"`

	// Expect contains expected column values (used by final_state).
	// Subset match - only specified columns are validated.
	Expect map[string]any `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalState    = "final_state"
)

// LoadScenario reads and parses a scenario YAML file, resolving the map
// path relative to the scenario file location. Returns an error if the
// file doesn't exist, is malformed, contains unknown fields (typos), or
// is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parse scenario yaml: %w", err)
	}

	if scenario.Map != "" && !filepath.IsAbs(scenario.Map) {
		scenario.Map = filepath.Join(filepath.Dir(path), scenario.Map)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Map == "" {
		return fmt.Errorf("map is required")
	}
	if _, err := os.Stat(s.Map); err != nil {
		return fmt.Errorf("map file not found: %s", s.Map)
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	if err := validateSettings(s.Settings); err != nil {
		return err
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateSettings rejects override values the session would choke on.
func validateSettings(c *SettingsClause) error {
	if c == nil {
		return nil
	}
	if c.KarmaMinimum != nil && *c.KarmaMinimum < 0 {
		return fmt.Errorf("settings: karma_minimum must be non-negative")
	}
	if c.Tableaus != nil && *c.Tableaus < 1 {
		return fmt.Errorf("settings: tableaus must be positive")
	}
	if c.CardsPerTableau != nil && *c.CardsPerTableau < 1 {
		return fmt.Errorf("settings: cards_per_tableau must be positive")
	}
	if c.Foundations != nil && *c.Foundations < 1 {
		return fmt.Errorf("settings: foundations must be positive")
	}
	return nil
}

// validateStep checks that a step is exactly one of deal or play and
// that its expect clause fits the step type.
func validateStep(index int, s *Step) error {
	switch {
	case s.Deal != nil && s.Play != nil:
		return fmt.Errorf("steps[%d]: deal and play are mutually exclusive", index)
	case s.Deal == nil && s.Play == nil:
		return fmt.Errorf("steps[%d]: one of deal or play is required", index)
	}

	if s.Deal != nil {
		if s.Deal.Node == "" {
			return fmt.Errorf("steps[%d].deal: node is required", index)
		}
		if s.Deal.Direction == "" {
			return fmt.Errorf("steps[%d].deal: direction is required", index)
		}
		if s.Expect != nil {
			if s.Expect.Legal != nil {
				return fmt.Errorf("steps[%d].expect: legal applies to play steps only", index)
			}
			if s.Expect.MinPlayable != nil && *s.Expect.MinPlayable < 0 {
				return fmt.Errorf("steps[%d].expect: min_playable must be non-negative", index)
			}
		}
	}

	if s.Play != nil {
		if s.Play.Tableau < 0 {
			return fmt.Errorf("steps[%d].play: tableau must be non-negative", index)
		}
		if s.Play.Foundation < 0 {
			return fmt.Errorf("steps[%d].play: foundation must be non-negative", index)
		}
		if s.Expect != nil {
			if s.Expect.Accepted != nil {
				return fmt.Errorf("steps[%d].expect: accepted applies to deal steps only", index)
			}
			if s.Expect.MinPlayable != nil {
				return fmt.Errorf("steps[%d].expect: min_playable applies to deal steps only", index)
			}
		}
	}

	return nil
}

// validEvent reports whether name is a known trace event type.
func validEvent(name string) bool {
	switch name {
	case EventSession, EventDeal, EventPlay:
		return true
	}
	return false
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Event == "" {
			return fmt.Errorf("assertions[%d]: event is required for trace_contains", index)
		}
		if !validEvent(a.Event) {
			return fmt.Errorf("assertions[%d]: unknown event type %q", index, a.Event)
		}
	case AssertTraceOrder:
		if len(a.Events) == 0 {
			return fmt.Errorf("assertions[%d]: events list is required for trace_order", index)
		}
		for _, ev := range a.Events {
			if !validEvent(ev) {
				return fmt.Errorf("assertions[%d]: unknown event type %q", index, ev)
			}
		}
	case AssertTraceCount:
		if a.Event == "" {
			return fmt.Errorf("assertions[%d]: event is required for trace_count", index)
		}
		if !validEvent(a.Event) {
			return fmt.Errorf("assertions[%d]: unknown event type %q", index, a.Event)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertFinalState:
		if a.Table == "" {
			return fmt.Errorf("assertions[%d]: table is required for final_state", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
