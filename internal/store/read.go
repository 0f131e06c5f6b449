package store

import (
	"context"
	"database/sql"
	"fmt"
)

// ReadSession retrieves a single session by token.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadSession(ctx context.Context, token string) (Session, error) {
	var session Session
	err := s.db.QueryRowContext(ctx, `
		SELECT token, map_name, settings_json, created_seq
		FROM sessions
		WHERE token = ?
	`, token).Scan(
		&session.Token,
		&session.MapName,
		&session.SettingsJSON,
		&session.CreatedSeq,
	)
	if err != nil {
		return Session{}, fmt.Errorf("read session: %w", err)
	}
	return session, nil
}

// ReadDeal retrieves a single deal by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadDeal(ctx context.Context, id string) (Deal, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, session_token, node_key, direction, layout_json, fingerprint, playable, required, accepted, seq
		FROM deals
		WHERE id = ?
	`, id)

	deal, err := scanDeal(row)
	if err != nil {
		return Deal{}, fmt.Errorf("read deal: %w", err)
	}
	return deal, nil
}

// ReadDeals returns all deals for a session token.
// Results are ordered deterministically: ORDER BY seq ASC, id ASC
// COLLATE BINARY. Returns an empty slice (not nil) if no deals exist.
func (s *Store) ReadDeals(ctx context.Context, sessionToken string) ([]Deal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_token, node_key, direction, layout_json, fingerprint, playable, required, accepted, seq
		FROM deals
		WHERE session_token = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, sessionToken)
	if err != nil {
		return nil, fmt.Errorf("query deals: %w", err)
	}
	defer rows.Close()

	return collectDeals(rows)
}

// ReadAllDeals returns every deal in the journal with deterministic
// ordering. Used by replay verification.
func (s *Store) ReadAllDeals(ctx context.Context) ([]Deal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_token, node_key, direction, layout_json, fingerprint, playable, required, accepted, seq
		FROM deals
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query all deals: %w", err)
	}
	defer rows.Close()

	return collectDeals(rows)
}

// ReadPlays returns all plays for a deal.
// Results are ordered deterministically: ORDER BY seq ASC, id ASC
// COLLATE BINARY. Returns an empty slice (not nil) if no plays exist.
func (s *Store) ReadPlays(ctx context.Context, dealID string) ([]Play, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, deal_id, tableau_idx, foundation_idx, card_rank, card_element, legal, seq
		FROM plays
		WHERE deal_id = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, dealID)
	if err != nil {
		return nil, fmt.Errorf("query plays: %w", err)
	}
	defer rows.Close()

	var plays []Play
	for rows.Next() {
		var p Play
		err := rows.Scan(
			&p.ID,
			&p.DealID,
			&p.TableauIdx,
			&p.FoundationIdx,
			&p.CardRank,
			&p.CardElement,
			&p.Legal,
			&p.Seq,
		)
		if err != nil {
			return nil, fmt.Errorf("scan play: %w", err)
		}
		plays = append(plays, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plays: %w", err)
	}

	// Return empty slice instead of nil
	if plays == nil {
		plays = []Play{}
	}

	return plays, nil
}

// LastSeq returns the highest seq number used in the journal.
// Used for recovery to resume the logical clock from the correct position.
func (s *Store) LastSeq(ctx context.Context) (int64, error) {
	var maxSeq int64

	queries := []string{
		"SELECT COALESCE(MAX(created_seq), 0) FROM sessions",
		"SELECT COALESCE(MAX(seq), 0) FROM deals",
		"SELECT COALESCE(MAX(seq), 0) FROM plays",
	}
	for _, q := range queries {
		var seq int64
		if err := s.db.QueryRowContext(ctx, q).Scan(&seq); err != nil {
			return 0, fmt.Errorf("get last seq: %w", err)
		}
		if seq > maxSeq {
			maxSeq = seq
		}
	}

	return maxSeq, nil
}

// SessionTokens returns all distinct session tokens in the journal.
// Used by the replay command to enumerate sessions. Results ordered
// alphabetically.
func (s *Store) SessionTokens(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT token FROM sessions
		ORDER BY token
	`)
	if err != nil {
		return nil, fmt.Errorf("list session tokens: %w", err)
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, fmt.Errorf("scan session token: %w", err)
		}
		tokens = append(tokens, token)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session tokens: %w", err)
	}

	if tokens == nil {
		tokens = []string{}
	}

	return tokens, nil
}

// scanner abstracts sql.Row and sql.Rows for the shared deal scan.
type scanner interface {
	Scan(dest ...any) error
}

func scanDeal(row scanner) (Deal, error) {
	var d Deal
	err := row.Scan(
		&d.ID,
		&d.SessionToken,
		&d.NodeKey,
		&d.Direction,
		&d.LayoutJSON,
		&d.Fingerprint,
		&d.Playable,
		&d.Required,
		&d.Accepted,
		&d.Seq,
	)
	return d, err
}

func collectDeals(rows *sql.Rows) ([]Deal, error) {
	var deals []Deal
	for rows.Next() {
		deal, err := scanDeal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan deal: %w", err)
		}
		deals = append(deals, deal)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deals: %w", err)
	}

	// Return empty slice instead of nil
	if deals == nil {
		deals = []Deal{}
	}

	return deals, nil
}
