package harness

import (
	"context"
	"fmt"

	"github.com/roach88/orim/internal/config"
	"github.com/roach88/orim/internal/session"
	"github.com/roach88/orim/internal/store"
	"github.com/roach88/orim/internal/worldmap"
)

// runner executes one scenario's steps against a session, tracking the
// most recent deal so play steps know their target.
type runner struct {
	sess     *session.Session
	lastDeal *dealRef
}

// dealRef remembers the deal a later play step applies to.
type dealRef struct {
	id        string
	node      string
	direction string
}

// Run executes a scenario and returns the result.
//
// Each scenario runs on a fresh in-memory journal with a fresh logical
// clock and a fixed session token, so reruns are byte-identical. Steps
// go through the real session applier: deals generate cards, karma-check
// them, and journal the outcome; plays evaluate the matching rules
// against the recorded layout.
//
// Step expectation mismatches and assertion failures fail the result;
// execution errors (unknown node, out-of-range indices, a play before
// any deal) abort the run with an error.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	defer st.Close()

	world, err := worldmap.LoadFile(scenario.Map)
	if err != nil {
		return nil, err
	}

	settings := config.Default()
	applySettings(&settings, scenario.Settings)

	token := scenario.SessionToken
	if token == "" {
		token = DefaultSessionToken
	}

	sess := session.New(st, settings, world,
		session.WithTokenGenerator(session.NewFixedGenerator(token)),
	)

	ctx := context.Background()
	result := NewResult()

	if _, err := sess.Begin(ctx); err != nil {
		return nil, err
	}
	result.AddSessionTrace(token, world.Name, sess.Clock().Current())

	r := &runner{sess: sess}
	for i, step := range scenario.Steps {
		if err := r.executeStep(ctx, i, step, result); err != nil {
			return nil, err
		}
	}

	actx := &AssertionContext{Store: st, Ctx: ctx}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}

	return result, nil
}

// applySettings copies non-nil overrides over the defaults.
func applySettings(settings *config.Settings, clause *SettingsClause) {
	if clause == nil {
		return
	}
	if clause.KarmaMinimum != nil {
		settings.Rules.KarmaMinimum = *clause.KarmaMinimum
	}
	if clause.Tableaus != nil {
		settings.Deal.Tableaus = *clause.Tableaus
	}
	if clause.CardsPerTableau != nil {
		settings.Deal.CardsPerTableau = *clause.CardsPerTableau
	}
	if clause.Foundations != nil {
		settings.Deal.Foundations = *clause.Foundations
	}
}

// executeStep runs one scenario step and checks its expect clause.
// Scenario validation guarantees exactly one of Deal or Play is set.
func (r *runner) executeStep(ctx context.Context, index int, step Step, result *Result) error {
	if step.Deal != nil {
		return r.executeDeal(ctx, index, step, result)
	}
	return r.executePlay(ctx, index, step, result)
}

func (r *runner) executeDeal(ctx context.Context, index int, step Step, result *Result) error {
	res, err := r.sess.Deal(ctx, step.Deal.Node, step.Deal.Direction)
	if err != nil {
		return fmt.Errorf("steps[%d]: %w", index, err)
	}

	result.AddDealTrace(step.Deal.Node, step.Deal.Direction, map[string]any{
		"deal_id":     res.ID,
		"accepted":    res.Check.Accepted,
		"playable":    res.Check.Playable,
		"required":    res.Check.Required,
		"fingerprint": res.Fingerprint,
	}, res.Seq)
	r.lastDeal = &dealRef{id: res.ID, node: step.Deal.Node, direction: step.Deal.Direction}

	if e := step.Expect; e != nil {
		if e.Accepted != nil && res.Check.Accepted != *e.Accepted {
			result.AddError(fmt.Sprintf(
				"steps[%d]: expected accepted=%v, got %v (playable %d, required %d)",
				index, *e.Accepted, res.Check.Accepted, res.Check.Playable, res.Check.Required))
		}
		if e.MinPlayable != nil && res.Check.Playable < *e.MinPlayable {
			result.AddError(fmt.Sprintf(
				"steps[%d]: expected at least %d playable tops, got %d",
				index, *e.MinPlayable, res.Check.Playable))
		}
	}
	return nil
}

func (r *runner) executePlay(ctx context.Context, index int, step Step, result *Result) error {
	if r.lastDeal == nil {
		return fmt.Errorf("steps[%d]: play step before any deal step", index)
	}

	res, err := r.sess.Play(ctx, r.lastDeal.id, step.Play.Tableau, step.Play.Foundation)
	if err != nil {
		return fmt.Errorf("steps[%d]: %w", index, err)
	}

	result.AddPlayTrace(r.lastDeal.node, r.lastDeal.direction, map[string]any{
		"play_id":      res.ID,
		"tableau":      step.Play.Tableau,
		"foundation":   step.Play.Foundation,
		"legal":        res.Legal,
		"card_rank":    int(res.Card.Rank),
		"card_element": res.Card.Element.String(),
	}, res.Seq)

	if e := step.Expect; e != nil && e.Legal != nil && res.Legal != *e.Legal {
		result.AddError(fmt.Sprintf(
			"steps[%d]: expected legal=%v, got %v (rank %d %s onto foundation %d)",
			index, *e.Legal, res.Legal, res.Card.Rank, res.Card.Element, step.Play.Foundation))
	}
	return nil
}
