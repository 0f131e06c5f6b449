package store

import (
	"github.com/roach88/orim/internal/canon"
)

// Hash domains for content-addressed record ids.
const (
	dealIDDomain = "orim/deal/v1"
	playIDDomain = "orim/play/v1"
)

// DealID computes the content-addressed id for a deal record. The same
// deal written twice carries the same id, which is what makes journal
// writes idempotent.
func DealID(sessionToken, nodeKey, direction string, seq int64) string {
	payload := canon.MustMarshalCanonical(map[string]any{
		"session":   sessionToken,
		"node":      nodeKey,
		"direction": direction,
		"seq":       seq,
	})
	return canon.HashWithDomain(dealIDDomain, payload)
}

// PlayID computes the content-addressed id for a play record.
func PlayID(dealID string, tableauIdx, foundationIdx int, seq int64) string {
	payload := canon.MustMarshalCanonical(map[string]any{
		"deal":       dealID,
		"tableau":    tableauIdx,
		"foundation": foundationIdx,
		"seq":        seq,
	})
	return canon.HashWithDomain(playIDDomain, payload)
}
