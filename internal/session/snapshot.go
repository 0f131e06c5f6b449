package session

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/orim/internal/canon"
	"github.com/roach88/orim/internal/config"
)

// encodeSettings serializes the rules-relevant settings to canonical
// JSON for the session row. Paths are environment, not rules, and are
// not part of the snapshot.
func encodeSettings(settings config.Settings) []byte {
	return canon.MustMarshalCanonical(map[string]any{
		"rules": map[string]any{
			"karma_minimum": settings.Rules.KarmaMinimum,
		},
		"deal": map[string]any{
			"tableaus":          settings.Deal.Tableaus,
			"cards_per_tableau": settings.Deal.CardsPerTableau,
			"foundations":       settings.Deal.Foundations,
		},
	})
}

// settingsDoc mirrors the snapshot shape for decoding.
type settingsDoc struct {
	Rules struct {
		KarmaMinimum int `json:"karma_minimum"`
	} `json:"rules"`
	Deal struct {
		Tableaus        int `json:"tableaus"`
		CardsPerTableau int `json:"cards_per_tableau"`
		Foundations     int `json:"foundations"`
	} `json:"deal"`
}

// decodeSettings parses a session row's settings snapshot. The returned
// settings carry zero-valued paths.
func decodeSettings(data []byte) (config.Settings, error) {
	var doc settingsDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return config.Settings{}, fmt.Errorf("parse settings snapshot: %w", err)
	}

	var settings config.Settings
	settings.Rules.KarmaMinimum = doc.Rules.KarmaMinimum
	settings.Deal.Tableaus = doc.Deal.Tableaus
	settings.Deal.CardsPerTableau = doc.Deal.CardsPerTableau
	settings.Deal.Foundations = doc.Deal.Foundations
	return settings, nil
}
