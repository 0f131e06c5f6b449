package store

import (
	"context"
	"path/filepath"
	"testing"
)

// createTestStore creates a file-backed store in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journal.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestSession creates a session with minimal required fields.
func createTestSession(token string, seq int64) Session {
	return Session{
		Token:        token,
		MapName:      "verdant_reach",
		SettingsJSON: "{}",
		CreatedSeq:   seq,
	}
}

// createTestDeal creates a deal row for a session. The id is derived
// the same way the session layer derives it.
func createTestDeal(sessionToken, nodeKey, direction string, seq int64) Deal {
	return Deal{
		ID:           DealID(sessionToken, nodeKey, direction, seq),
		SessionToken: sessionToken,
		NodeKey:      nodeKey,
		Direction:    direction,
		LayoutJSON:   `{"foundations":[],"tableaus":[]}`,
		Fingerprint:  "0000000000000000000000000000000000000000000000000000000000000000",
		Playable:     3,
		Required:     2,
		Accepted:     true,
		Seq:          seq,
	}
}

// createTestPlay creates a play row for a deal.
func createTestPlay(dealID string, tableau, foundation int, seq int64) Play {
	return Play{
		ID:            PlayID(dealID, tableau, foundation, seq),
		DealID:        dealID,
		TableauIdx:    tableau,
		FoundationIdx: foundation,
		CardRank:      7,
		CardElement:   "fire",
		Legal:         true,
		Seq:           seq,
	}
}

// mustWriteSession writes a session or fails the test.
func mustWriteSession(t *testing.T, s *Store, session Session) {
	t.Helper()
	if err := s.WriteSession(context.Background(), session); err != nil {
		t.Fatalf("WriteSession() failed: %v", err)
	}
}

// mustWriteDeal writes a deal or fails the test.
func mustWriteDeal(t *testing.T, s *Store, deal Deal) {
	t.Helper()
	if err := s.WriteDeal(context.Background(), deal); err != nil {
		t.Fatalf("WriteDeal() failed: %v", err)
	}
}
