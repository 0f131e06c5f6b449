// Package harness provides conformance testing for orim game sessions.
//
// The harness loads YAML scenario files, executes them against a real
// session over an in-memory journal, and validates the resulting trace
// and final journal state.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: opening_deal
//	description: "first deal at the map origin is accepted"
//	session_token: "00000000-0000-7000-8000-000000000001"
//	map: ../verdant.yaml
//	settings:
//	  karma_minimum: 2
//	steps:
//	  - deal: {node: "0,0", direction: north}
//	    expect: {accepted: true, min_playable: 2}
//	  - play: {tableau: 1, foundation: 0}
//	    expect: {legal: true}
//	assertions:
//	  - type: trace_count
//	    event: deal
//	    count: 1
//	  - type: final_state
//	    table: deals
//	    where: {node_key: "0,0"}
//	    expect: {accepted: 1}
//
// The map path resolves relative to the scenario file. The settings
// block overrides individual balance defaults; omitted keys keep their
// default values. Play steps apply to the most recent deal step.
//
// # Assertion Types
//
// The following assertion types are supported:
//
//   - trace_contains: an event appears in the trace, optionally
//     filtered by node and direction
//   - trace_order: event types appear as a subsequence of the trace
//   - trace_count: matching events appear exactly N times
//   - final_state: a journal table row holds the expected values
//
// # Deterministic Execution
//
// Every scenario runs on a fresh in-memory journal with a fresh logical
// clock and a fixed session token, so reruns produce byte-identical
// traces. Steps go through the real session applier: deals generate
// cards, karma-check them, and journal the outcome; plays evaluate the
// matching rules against the recorded layout. Nothing is stubbed.
//
// Traces serialize to canonical JSON for golden file comparison, so key
// order and string normalization cannot perturb stored fixtures.
//
// # Usage
//
// Load and run a scenario:
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/opening_deal.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
