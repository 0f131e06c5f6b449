package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTestMap creates a minimal valid map file for scenario validation.
func writeTestMap(t *testing.T, dir string) string {
	t.Helper()
	mapPath := filepath.Join(dir, "map.yaml")
	content := `name: proving_grounds
cells:
  - {col: 0, row: 0, difficulty: 1, biome: meadow}
  - {col: 1, row: 0, difficulty: 2, biome: grove}
`
	require.NoError(t, os.WriteFile(mapPath, []byte(content), 0644))
	return mapPath
}

// writeScenario writes scenario YAML into dir and returns its path.
func writeScenario(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	dir := t.TempDir()
	writeTestMap(t, dir)

	content := `
name: first_light
description: "one deal and one play at the origin"
map: map.yaml
steps:
  - deal: {node: "0,0", direction: north}
    expect: {accepted: true, min_playable: 1}
  - play: {tableau: 0, foundation: 0}
    expect: {legal: false}
assertions:
  - type: trace_count
    event: deal
    count: 1
`
	scenario, err := LoadScenario(writeScenario(t, dir, content))
	require.NoError(t, err)

	assert.Equal(t, "first_light", scenario.Name)
	assert.Equal(t, "one deal and one play at the origin", scenario.Description)
	assert.Equal(t, filepath.Join(dir, "map.yaml"), scenario.Map)
	require.Len(t, scenario.Steps, 2)
	require.NotNil(t, scenario.Steps[0].Deal)
	assert.Equal(t, "0,0", scenario.Steps[0].Deal.Node)
	assert.Equal(t, "north", scenario.Steps[0].Deal.Direction)
	require.NotNil(t, scenario.Steps[0].Expect)
	require.NotNil(t, scenario.Steps[0].Expect.Accepted)
	assert.True(t, *scenario.Steps[0].Expect.Accepted)
	require.NotNil(t, scenario.Steps[0].Expect.MinPlayable)
	assert.Equal(t, 1, *scenario.Steps[0].Expect.MinPlayable)
	require.NotNil(t, scenario.Steps[1].Play)
	assert.Equal(t, 0, scenario.Steps[1].Play.Tableau)
	require.NotNil(t, scenario.Steps[1].Expect.Legal)
	assert.False(t, *scenario.Steps[1].Expect.Legal)
	assert.Len(t, scenario.Assertions, 1)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read scenario file")
}

func TestLoadScenario_MissingName(t *testing.T) {
	dir := t.TempDir()
	writeTestMap(t, dir)

	content := `
description: "no name"
map: map.yaml
steps:
  - deal: {node: "0,0", direction: north}
assertions:
  - type: trace_count
    event: deal
    count: 1
`
	_, err := LoadScenario(writeScenario(t, dir, content))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")
}

func TestLoadScenario_MissingDescription(t *testing.T) {
	dir := t.TempDir()
	writeTestMap(t, dir)

	content := `
name: no_description
map: map.yaml
steps:
  - deal: {node: "0,0", direction: north}
assertions:
  - type: trace_count
    event: deal
    count: 1
`
	_, err := LoadScenario(writeScenario(t, dir, content))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "description is required")
}

func TestLoadScenario_MissingMap(t *testing.T) {
	dir := t.TempDir()

	content := `
name: no_map
description: "missing map"
steps:
  - deal: {node: "0,0", direction: north}
assertions:
  - type: trace_count
    event: deal
    count: 1
`
	_, err := LoadScenario(writeScenario(t, dir, content))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "map is required")
}

func TestLoadScenario_MapFileNotFound(t *testing.T) {
	dir := t.TempDir()

	content := `
name: ghost_map
description: "map file does not exist"
map: no_such_map.yaml
steps:
  - deal: {node: "0,0", direction: north}
assertions:
  - type: trace_count
    event: deal
    count: 1
`
	_, err := LoadScenario(writeScenario(t, dir, content))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "map file not found")
}

func TestLoadScenario_MissingSteps(t *testing.T) {
	dir := t.TempDir()
	writeTestMap(t, dir)

	content := `
name: no_steps
description: "missing steps"
map: map.yaml
assertions:
  - type: trace_count
    event: deal
    count: 1
`
	_, err := LoadScenario(writeScenario(t, dir, content))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "steps list is required")
}

func TestLoadScenario_MissingAssertions(t *testing.T) {
	dir := t.TempDir()
	writeTestMap(t, dir)

	content := `
name: no_assertions
description: "missing assertions"
map: map.yaml
steps:
  - deal: {node: "0,0", direction: north}
`
	_, err := LoadScenario(writeScenario(t, dir, content))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "assertions list is required")
}

func TestLoadScenario_MalformedYAML(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadScenario(writeScenario(t, dir, "name: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse scenario yaml")
}

func TestLoadScenario_UnknownFieldsRejected(t *testing.T) {
	dir := t.TempDir()
	writeTestMap(t, dir)

	// "assertion" instead of "assertions" is the classic typo.
	content := `
name: typo
description: "unknown field"
map: map.yaml
steps:
  - deal: {node: "0,0", direction: north}
assertion:
  - type: trace_count
    event: deal
    count: 1
`
	_, err := LoadScenario(writeScenario(t, dir, content))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse scenario yaml")
}

func TestLoadScenario_StepWithDealAndPlay(t *testing.T) {
	dir := t.TempDir()
	writeTestMap(t, dir)

	content := `
name: both
description: "deal and play in one step"
map: map.yaml
steps:
  - deal: {node: "0,0", direction: north}
    play: {tableau: 0, foundation: 0}
assertions:
  - type: trace_count
    event: deal
    count: 1
`
	_, err := LoadScenario(writeScenario(t, dir, content))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deal and play are mutually exclusive")
}

func TestLoadScenario_StepWithNeitherDealNorPlay(t *testing.T) {
	dir := t.TempDir()
	writeTestMap(t, dir)

	content := `
name: neither
description: "expect with no action"
map: map.yaml
steps:
  - expect: {accepted: true}
assertions:
  - type: trace_count
    event: deal
    count: 1
`
	_, err := LoadScenario(writeScenario(t, dir, content))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "one of deal or play is required")
}

func TestLoadScenario_DealMissingNode(t *testing.T) {
	dir := t.TempDir()
	writeTestMap(t, dir)

	content := `
name: no_node
description: "deal without node"
map: map.yaml
steps:
  - deal: {direction: north}
assertions:
  - type: trace_count
    event: deal
    count: 1
`
	_, err := LoadScenario(writeScenario(t, dir, content))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "node is required")
}

func TestLoadScenario_DealMissingDirection(t *testing.T) {
	dir := t.TempDir()
	writeTestMap(t, dir)

	content := `
name: no_direction
description: "deal without direction"
map: map.yaml
steps:
  - deal: {node: "0,0"}
assertions:
  - type: trace_count
    event: deal
    count: 1
`
	_, err := LoadScenario(writeScenario(t, dir, content))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "direction is required")
}

func TestLoadScenario_PlayNegativeIndexRejected(t *testing.T) {
	dir := t.TempDir()
	writeTestMap(t, dir)

	content := `
name: negative_index
description: "play with negative tableau"
map: map.yaml
steps:
  - deal: {node: "0,0", direction: north}
  - play: {tableau: -1, foundation: 0}
assertions:
  - type: trace_count
    event: play
    count: 1
`
	_, err := LoadScenario(writeScenario(t, dir, content))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tableau must be non-negative")
}

func TestLoadScenario_LegalExpectOnDealStep(t *testing.T) {
	dir := t.TempDir()
	writeTestMap(t, dir)

	content := `
name: misplaced_legal
description: "legal expectation on a deal step"
map: map.yaml
steps:
  - deal: {node: "0,0", direction: north}
    expect: {legal: true}
assertions:
  - type: trace_count
    event: deal
    count: 1
`
	_, err := LoadScenario(writeScenario(t, dir, content))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "legal applies to play steps only")
}

func TestLoadScenario_AcceptedExpectOnPlayStep(t *testing.T) {
	dir := t.TempDir()
	writeTestMap(t, dir)

	content := `
name: misplaced_accepted
description: "accepted expectation on a play step"
map: map.yaml
steps:
  - deal: {node: "0,0", direction: north}
  - play: {tableau: 0, foundation: 0}
    expect: {accepted: true}
assertions:
  - type: trace_count
    event: play
    count: 1
`
	_, err := LoadScenario(writeScenario(t, dir, content))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepted applies to deal steps only")
}

func TestLoadScenario_NegativeKarmaMinimumRejected(t *testing.T) {
	dir := t.TempDir()
	writeTestMap(t, dir)

	content := `
name: negative_karma
description: "negative karma minimum"
map: map.yaml
settings:
  karma_minimum: -1
steps:
  - deal: {node: "0,0", direction: north}
assertions:
  - type: trace_count
    event: deal
    count: 1
`
	_, err := LoadScenario(writeScenario(t, dir, content))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "karma_minimum must be non-negative")
}

func TestLoadScenario_ZeroTableausRejected(t *testing.T) {
	dir := t.TempDir()
	writeTestMap(t, dir)

	content := `
name: zero_tableaus
description: "zero tableaus"
map: map.yaml
settings:
  tableaus: 0
steps:
  - deal: {node: "0,0", direction: north}
assertions:
  - type: trace_count
    event: deal
    count: 1
`
	_, err := LoadScenario(writeScenario(t, dir, content))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tableaus must be positive")
}

func TestLoadScenario_SettingsOverridesParsed(t *testing.T) {
	dir := t.TempDir()
	writeTestMap(t, dir)

	content := `
name: tuned
description: "settings overrides"
map: map.yaml
settings:
  karma_minimum: 0
  tableaus: 3
steps:
  - deal: {node: "0,0", direction: north}
assertions:
  - type: trace_count
    event: deal
    count: 1
`
	scenario, err := LoadScenario(writeScenario(t, dir, content))
	require.NoError(t, err)
	require.NotNil(t, scenario.Settings)
	require.NotNil(t, scenario.Settings.KarmaMinimum)
	assert.Equal(t, 0, *scenario.Settings.KarmaMinimum)
	require.NotNil(t, scenario.Settings.Tableaus)
	assert.Equal(t, 3, *scenario.Settings.Tableaus)
	assert.Nil(t, scenario.Settings.CardsPerTableau)
	assert.Nil(t, scenario.Settings.Foundations)
}

func TestLoadScenario_AssertionTypes(t *testing.T) {
	dir := t.TempDir()
	writeTestMap(t, dir)

	content := `
name: all_assertions
description: "every assertion type parses"
map: map.yaml
steps:
  - deal: {node: "0,0", direction: north}
assertions:
  - type: trace_contains
    event: deal
    node: "0,0"
    direction: north
  - type: trace_order
    events: [session, deal]
  - type: trace_count
    event: deal
    count: 1
  - type: final_state
    table: deals
    where: {node_key: "0,0"}
    expect: {accepted: 1}
`
	scenario, err := LoadScenario(writeScenario(t, dir, content))
	require.NoError(t, err)
	require.Len(t, scenario.Assertions, 4)
	assert.Equal(t, AssertTraceContains, scenario.Assertions[0].Type)
	assert.Equal(t, "0,0", scenario.Assertions[0].Node)
	assert.Equal(t, AssertTraceOrder, scenario.Assertions[1].Type)
	assert.Equal(t, []string{"session", "deal"}, scenario.Assertions[1].Events)
	assert.Equal(t, AssertTraceCount, scenario.Assertions[2].Type)
	assert.Equal(t, 1, scenario.Assertions[2].Count)
	assert.Equal(t, AssertFinalState, scenario.Assertions[3].Type)
	assert.Equal(t, "deals", scenario.Assertions[3].Table)
}

func TestLoadScenario_TraceCountZeroAllowed(t *testing.T) {
	dir := t.TempDir()
	writeTestMap(t, dir)

	content := `
name: zero_count
description: "zero is a valid expected count"
map: map.yaml
steps:
  - deal: {node: "0,0", direction: north}
assertions:
  - type: trace_count
    event: play
    count: 0
`
	scenario, err := LoadScenario(writeScenario(t, dir, content))
	require.NoError(t, err)
	assert.Equal(t, 0, scenario.Assertions[0].Count)
}

func TestLoadScenario_TraceCountNegativeRejected(t *testing.T) {
	dir := t.TempDir()
	writeTestMap(t, dir)

	content := `
name: negative_count
description: "negative count"
map: map.yaml
steps:
  - deal: {node: "0,0", direction: north}
assertions:
  - type: trace_count
    event: deal
    count: -1
`
	_, err := LoadScenario(writeScenario(t, dir, content))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "count must be non-negative")
}

func TestLoadScenario_UnknownAssertionType(t *testing.T) {
	dir := t.TempDir()
	writeTestMap(t, dir)

	content := `
name: bogus_assertion
description: "unknown assertion type"
map: map.yaml
steps:
  - deal: {node: "0,0", direction: north}
assertions:
  - type: trace_matches
    event: deal
`
	_, err := LoadScenario(writeScenario(t, dir, content))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown assertion type "trace_matches"`)
}

func TestLoadScenario_UnknownEventRejected(t *testing.T) {
	dir := t.TempDir()
	writeTestMap(t, dir)

	content := `
name: bogus_event
description: "unknown event type"
map: map.yaml
steps:
  - deal: {node: "0,0", direction: north}
assertions:
  - type: trace_order
    events: [session, shuffle]
`
	_, err := LoadScenario(writeScenario(t, dir, content))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown event type "shuffle"`)
}

func TestLoadScenario_TraceContainsMissingEvent(t *testing.T) {
	dir := t.TempDir()
	writeTestMap(t, dir)

	content := `
name: no_event
description: "trace_contains without event"
map: map.yaml
steps:
  - deal: {node: "0,0", direction: north}
assertions:
  - type: trace_contains
    node: "0,0"
`
	_, err := LoadScenario(writeScenario(t, dir, content))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "event is required for trace_contains")
}

func TestLoadScenario_FinalStateMissingExpect(t *testing.T) {
	dir := t.TempDir()
	writeTestMap(t, dir)

	content := `
name: no_expect
description: "final_state without expect"
map: map.yaml
steps:
  - deal: {node: "0,0", direction: north}
assertions:
  - type: final_state
    table: deals
    where: {node_key: "0,0"}
`
	_, err := LoadScenario(writeScenario(t, dir, content))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expect is required for final_state")
}

func TestLoadScenario_RelativeMapResolved(t *testing.T) {
	dir := t.TempDir()
	writeTestMap(t, dir)
	subdir := filepath.Join(dir, "scenarios")
	require.NoError(t, os.MkdirAll(subdir, 0755))

	content := `
name: nested
description: "map path relative to the scenario file"
map: ../map.yaml
steps:
  - deal: {node: "0,0", direction: north}
assertions:
  - type: trace_count
    event: deal
    count: 1
`
	scenario, err := LoadScenario(writeScenario(t, subdir, content))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "map.yaml"), scenario.Map)
}

func TestLoadScenario_AbsoluteMapKept(t *testing.T) {
	dir := t.TempDir()
	mapPath := writeTestMap(t, dir)
	otherDir := t.TempDir()

	content := `
name: absolute
description: "absolute map path is used as-is"
map: ` + mapPath + `
steps:
  - deal: {node: "0,0", direction: north}
assertions:
  - type: trace_count
    event: deal
    count: 1
`
	scenario, err := LoadScenario(writeScenario(t, otherDir, content))
	require.NoError(t, err)
	assert.Equal(t, mapPath, scenario.Map)
}

func TestAssertionConstants(t *testing.T) {
	assert.Equal(t, "trace_contains", AssertTraceContains)
	assert.Equal(t, "trace_order", AssertTraceOrder)
	assert.Equal(t, "trace_count", AssertTraceCount)
	assert.Equal(t, "final_state", AssertFinalState)
}

func TestLoadExampleScenarios(t *testing.T) {
	entries, err := os.ReadDir("testdata/scenarios")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	for _, entry := range entries {
		path := filepath.Join("testdata/scenarios", entry.Name())
		scenario, err := LoadScenario(path)
		require.NoError(t, err, "scenario %s should load", entry.Name())
		assert.NotEmpty(t, scenario.Name)
		assert.NotEmpty(t, scenario.Steps)
	}
}
