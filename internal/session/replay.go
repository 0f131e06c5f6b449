package session

import (
	"context"
	"fmt"

	"github.com/roach88/orim/internal/canon"
	"github.com/roach88/orim/internal/config"
	"github.com/roach88/orim/internal/store"
	"github.com/roach88/orim/internal/worldgen"
)

// Divergence is one deal whose recorded layout can no longer be
// reproduced.
type Divergence struct {
	DealID    string
	NodeKey   string
	Direction string
	Reason    string
}

// ReplayReport summarizes a journal replay verification pass.
type ReplayReport struct {
	Checked   int
	Matched   int
	Divergent []Divergence
}

// Clean reports whether every checked deal matched.
func (r ReplayReport) Clean() bool {
	return len(r.Divergent) == 0
}

// Replay re-derives every journaled deal and verifies it against the
// recorded fingerprint.
//
// Two checks run per deal. First the stored layout bytes must hash to
// the recorded fingerprint, which catches journal corruption. Then the
// layout is regenerated from the node, the direction, and the settings
// snapshot of the owning session; a differing fingerprint means the
// generation code, the map, or the definitions changed since the deal
// was recorded.
//
// Deal shapes come from each session's recorded snapshot, not this
// session's current settings, so changing orim.toml does not fail
// replay of older journals.
func (s *Session) Replay(ctx context.Context) (ReplayReport, error) {
	deals, err := s.store.ReadAllDeals(ctx)
	if err != nil {
		return ReplayReport{}, fmt.Errorf("replay: %w", err)
	}

	report := ReplayReport{Divergent: []Divergence{}}
	snapshots := make(map[string]config.Settings)

	for _, deal := range deals {
		report.Checked++

		reason, err := s.verifyDeal(ctx, deal, snapshots)
		if err != nil {
			return ReplayReport{}, fmt.Errorf("replay deal %s: %w", deal.ID, err)
		}
		if reason != "" {
			s.logger.Warn("replay divergence",
				"deal_id", deal.ID,
				"node", deal.NodeKey,
				"direction", deal.Direction,
				"reason", reason,
			)
			report.Divergent = append(report.Divergent, Divergence{
				DealID:    deal.ID,
				NodeKey:   deal.NodeKey,
				Direction: deal.Direction,
				Reason:    reason,
			})
			continue
		}
		report.Matched++
	}

	s.logger.Info("replay verified",
		"deals", report.Checked,
		"matched", report.Matched,
		"divergent", len(report.Divergent),
	)

	return report, nil
}

// verifyDeal returns the divergence reason for a deal, or "" when the
// deal reproduces. The error return is for store failures only.
func (s *Session) verifyDeal(ctx context.Context, deal store.Deal, snapshots map[string]config.Settings) (string, error) {
	// Journal integrity: the stored bytes must hash to the recorded
	// fingerprint.
	if got := canon.HashWithDomain(worldgen.DomainLayout, []byte(deal.LayoutJSON)); got != deal.Fingerprint {
		return fmt.Sprintf("stored layout hashes to %s, recorded fingerprint is %s", got, deal.Fingerprint), nil
	}

	settings, ok := snapshots[deal.SessionToken]
	if !ok {
		sess, err := s.store.ReadSession(ctx, deal.SessionToken)
		if err != nil {
			return "", fmt.Errorf("read session %s: %w", deal.SessionToken, err)
		}
		settings, err = decodeSettings([]byte(sess.SettingsJSON))
		if err != nil {
			return fmt.Sprintf("settings snapshot unreadable: %v", err), nil
		}
		snapshots[deal.SessionToken] = settings
	}

	cell, ok := s.world.CellByKey(deal.NodeKey)
	if !ok {
		return fmt.Sprintf("node %q is not on map %q", deal.NodeKey, s.world.Name), nil
	}

	shape := dealShape(settings)
	palette := cell.Biome.ElementPalette()
	tableaus := worldgen.DealTableaus(deal.NodeKey, deal.Direction, shape, palette)
	foundations := worldgen.DealFoundations(deal.NodeKey, deal.Direction, shape.Foundations, palette)
	if got := worldgen.LayoutFingerprint(tableaus, foundations); got != deal.Fingerprint {
		return fmt.Sprintf("regenerated layout hashes to %s, recorded fingerprint is %s", got, deal.Fingerprint), nil
	}

	return "", nil
}
