// Package session applies deal and play operations to the journal.
//
// The rules layer is synchronous and single-threaded: each operation
// runs to completion on the caller's goroutine, stamps its rows from a
// monotonic logical clock, and writes through the append-only store.
// There is no event loop. Determinism comes from the clock (never wall
// time), content-addressed row ids, and canonical layout encoding.
package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/orim/internal/config"
	"github.com/roach88/orim/internal/rules"
	"github.com/roach88/orim/internal/store"
	"github.com/roach88/orim/internal/worldgen"
	"github.com/roach88/orim/internal/worldmap"
)

// TokenGenerator generates unique session tokens.
// Implemented by UUIDv7Generator (production) and FixedGenerator (tests).
type TokenGenerator interface {
	Generate() string
}

// Session drives a game run over one journal.
//
// A Session holds no locks and performs all work on the caller's
// goroutine; do not share one across goroutines.
type Session struct {
	store    *store.Store
	settings config.Settings
	world    *worldmap.Map
	clock    *Clock
	tokens   TokenGenerator
	logger   *slog.Logger

	// token is set by Begin and stamps every deal row.
	token string
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger. The default discards everything;
// the CLI installs a text handler.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithTokenGenerator replaces the UUIDv7 token generator. Tests and the
// conformance harness pass a FixedGenerator for reproducible tokens.
func WithTokenGenerator(gen TokenGenerator) Option {
	return func(s *Session) {
		s.tokens = gen
	}
}

// WithClock replaces the logical clock. Pass a resumed clock when
// reopening an existing journal so new rows sort after recorded ones,
// or call Resume after construction.
func WithClock(clock *Clock) Option {
	return func(s *Session) {
		s.clock = clock
	}
}

// New creates a Session over an open store.
//
// The settings are captured by value: mutating the caller's copy after
// construction does not affect the session. Begin snapshots them into
// the session row.
func New(st *store.Store, settings config.Settings, world *worldmap.Map, opts ...Option) *Session {
	s := &Session{
		store:    st,
		settings: settings,
		world:    world,
		clock:    NewClock(),
		tokens:   UUIDv7Generator{},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Resume positions the clock after the last recorded seq so rows
// written by this session sort after everything already journaled.
// Call it before Begin when reopening an existing journal.
func (s *Session) Resume(ctx context.Context) error {
	seq, err := s.store.LastSeq(ctx)
	if err != nil {
		return fmt.Errorf("resume session: %w", err)
	}
	s.clock.ResumeFrom(seq)
	return nil
}

// Token returns the active session token, or "" before Begin.
func (s *Session) Token() string {
	return s.token
}

// Clock returns the session's logical clock.
// Used by the conformance harness to verify seq assignment.
func (s *Session) Clock() *Clock {
	return s.clock
}

// Begin starts a session: generates the token and journals the session
// row with the map name and a canonical settings snapshot. Deal
// requires an active session; Play and Replay do not.
func (s *Session) Begin(ctx context.Context) (string, error) {
	token := s.tokens.Generate()

	rec := store.Session{
		Token:        token,
		MapName:      s.world.Name,
		SettingsJSON: string(encodeSettings(s.settings)),
		CreatedSeq:   s.clock.Next(),
	}
	if err := s.store.WriteSession(ctx, rec); err != nil {
		return "", fmt.Errorf("begin session: %w", err)
	}
	s.token = token

	s.logger.Info("session started",
		"session_token", token,
		"map", rec.MapName,
		"seq", rec.CreatedSeq,
	)

	return token, nil
}

// DealResult is the outcome of a single deal.
type DealResult struct {
	ID          string
	Tableaus    []rules.Tableau
	Foundations []rules.Foundation
	Check       rules.DealCheck
	Fingerprint string
	Seq         int64
}

// Deal generates and journals a deal at a map node.
//
// The layout derives entirely from the node key, the direction label,
// the cell's biome palette, and the deal shape, so revisiting a node
// reproduces the same cards. The deal is journaled whether or not the
// karma check accepts it; rejected deals are part of the record.
func (s *Session) Deal(ctx context.Context, nodeKey, direction string) (DealResult, error) {
	if s.token == "" {
		return DealResult{}, fmt.Errorf("deal: no active session, call Begin first")
	}
	if direction == "" {
		return DealResult{}, fmt.Errorf("deal: direction must be non-empty")
	}
	cell, ok := s.world.CellByKey(nodeKey)
	if !ok {
		return DealResult{}, fmt.Errorf("deal: node %q is not on map %q", nodeKey, s.world.Name)
	}

	shape := dealShape(s.settings)
	palette := cell.Biome.ElementPalette()
	tableaus := worldgen.DealTableaus(nodeKey, direction, shape, palette)
	foundations := worldgen.DealFoundations(nodeKey, direction, shape.Foundations, palette)

	// No effects are active at deal time; effect state belongs to
	// gameplay above the journal.
	check := rules.EvaluateDeal(tableaus, foundations, nil, s.settings.Rules.KarmaMinimum)

	layout := worldgen.EncodeLayout(tableaus, foundations)
	fingerprint := worldgen.LayoutFingerprint(tableaus, foundations)

	seq := s.clock.Next()
	rec := store.Deal{
		ID:           store.DealID(s.token, nodeKey, direction, seq),
		SessionToken: s.token,
		NodeKey:      nodeKey,
		Direction:    direction,
		LayoutJSON:   string(layout),
		Fingerprint:  fingerprint,
		Playable:     check.Playable,
		Required:     check.Required,
		Accepted:     check.Accepted,
		Seq:          seq,
	}
	if err := s.store.WriteDeal(ctx, rec); err != nil {
		return DealResult{}, fmt.Errorf("record deal %s: %w", rec.ID, err)
	}

	s.logger.Info("deal recorded",
		"deal_id", rec.ID,
		"node", nodeKey,
		"direction", direction,
		"playable", check.Playable,
		"required", check.Required,
		"accepted", check.Accepted,
		"seq", seq,
	)

	return DealResult{
		ID:          rec.ID,
		Tableaus:    tableaus,
		Foundations: foundations,
		Check:       check,
		Fingerprint: fingerprint,
		Seq:         seq,
	}, nil
}

// PlayResult is the outcome of a single play attempt.
type PlayResult struct {
	ID    string
	Card  rules.Card
	Legal bool
	Seq   int64
}

// Play evaluates one tableau-to-foundation play against a recorded deal
// and journals the attempt. Illegal plays are recorded and reported,
// not errors: the journal is an audit log of what was tried.
//
// Play does not require Begin; the deal row carries its own session.
func (s *Session) Play(ctx context.Context, dealID string, tableau, foundation int) (PlayResult, error) {
	deal, err := s.store.ReadDeal(ctx, dealID)
	if err != nil {
		return PlayResult{}, fmt.Errorf("load deal %s: %w", dealID, err)
	}

	tableaus, foundations, err := worldgen.DecodeLayout([]byte(deal.LayoutJSON))
	if err != nil {
		return PlayResult{}, fmt.Errorf("deal %s: %w", dealID, err)
	}

	if tableau < 0 || tableau >= len(tableaus) {
		return PlayResult{}, fmt.Errorf("play: tableau index %d out of range [0,%d)", tableau, len(tableaus))
	}
	if foundation < 0 || foundation >= len(foundations) {
		return PlayResult{}, fmt.Errorf("play: foundation index %d out of range [0,%d)", foundation, len(foundations))
	}

	card, ok := tableaus[tableau].Top()
	if !ok {
		return PlayResult{}, fmt.Errorf("play: tableau %d is empty", tableau)
	}

	legal := rules.CanPlay(card, foundations[foundation], nil)

	seq := s.clock.Next()
	rec := store.Play{
		ID:            store.PlayID(dealID, tableau, foundation, seq),
		DealID:        dealID,
		TableauIdx:    tableau,
		FoundationIdx: foundation,
		CardRank:      int(card.Rank),
		CardElement:   card.Element.String(),
		Legal:         legal,
		Seq:           seq,
	}
	if err := s.store.WritePlay(ctx, rec); err != nil {
		return PlayResult{}, fmt.Errorf("record play %s: %w", rec.ID, err)
	}

	s.logger.Info("play recorded",
		"play_id", rec.ID,
		"deal_id", dealID,
		"tableau", tableau,
		"foundation", foundation,
		"card_rank", int(card.Rank),
		"card_element", card.Element.String(),
		"legal", legal,
		"seq", seq,
	)

	return PlayResult{
		ID:    rec.ID,
		Card:  card,
		Legal: legal,
		Seq:   seq,
	}, nil
}

// dealShape maps the configured deal settings onto a worldgen shape.
func dealShape(settings config.Settings) worldgen.DealShape {
	return worldgen.DealShape{
		Tableaus:        settings.Deal.Tableaus,
		CardsPerTableau: settings.Deal.CardsPerTableau,
		Foundations:     settings.Deal.Foundations,
	}
}
