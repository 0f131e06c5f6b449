package store

import (
	"context"
	"fmt"
)

// WriteSession inserts a session record into the journal.
// Uses ON CONFLICT(token) DO NOTHING for idempotency - rewriting an
// existing session is silently ignored.
func (s *Store) WriteSession(ctx context.Context, session Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions
		(token, map_name, settings_json, created_seq)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(token) DO NOTHING
	`,
		session.Token,
		session.MapName,
		session.SettingsJSON,
		session.CreatedSeq,
	)
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}

	return nil
}

// WriteDeal inserts a deal record into the journal.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - duplicate IDs are
// silently ignored. Other constraint violations (e.g., NOT NULL, the
// session foreign key) will still return errors.
//
// LayoutJSON must already be canonical JSON; the store does not
// re-serialize it.
func (s *Store) WriteDeal(ctx context.Context, deal Deal) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO deals
		(id, session_token, node_key, direction, layout_json, fingerprint, playable, required, accepted, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		deal.ID,
		deal.SessionToken,
		deal.NodeKey,
		deal.Direction,
		deal.LayoutJSON,
		deal.Fingerprint,
		deal.Playable,
		deal.Required,
		deal.Accepted,
		deal.Seq,
	)
	if err != nil {
		return fmt.Errorf("write deal: %w", err)
	}

	return nil
}

// WritePlay inserts a play record into the journal.
// Uses ON CONFLICT(id) DO NOTHING for idempotency. The deal referenced
// by DealID must exist (foreign key constraint).
func (s *Store) WritePlay(ctx context.Context, play Play) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO plays
		(id, deal_id, tableau_idx, foundation_idx, card_rank, card_element, legal, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		play.ID,
		play.DealID,
		play.TableauIdx,
		play.FoundationIdx,
		play.CardRank,
		play.CardElement,
		play.Legal,
		play.Seq,
	)
	if err != nil {
		return fmt.Errorf("write play: %w", err)
	}

	return nil
}
