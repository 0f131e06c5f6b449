// Package config loads the balance and path settings from orim.toml.
// Settings are read once at startup; the rules layer receives values,
// never the file.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// DefaultPath is the settings file looked up when the CLI is not given
// an explicit --config.
const DefaultPath = "orim.toml"

// Settings holds every tunable the engine reads.
type Settings struct {
	Rules RulesSettings `toml:"rules"`
	Deal  DealSettings  `toml:"deal"`
	Paths PathSettings  `toml:"paths"`
}

// RulesSettings tunes the matching and karma rules.
type RulesSettings struct {
	// KarmaMinimum is the playable-top threshold a deal must meet to be
	// accepted. Zero disables the check.
	KarmaMinimum int `toml:"karma_minimum"`
}

// DealSettings sizes generated deals.
type DealSettings struct {
	Tableaus        int `toml:"tableaus"`
	CardsPerTableau int `toml:"cards_per_tableau"`
	Foundations     int `toml:"foundations"`
}

// PathSettings points at the authored content.
type PathSettings struct {
	DefsDir string `toml:"defs_dir"`
	MapFile string `toml:"map_file"`
}

// Default returns the settings used when no file is present.
func Default() Settings {
	return Settings{
		Rules: RulesSettings{
			KarmaMinimum: 2,
		},
		Deal: DealSettings{
			Tableaus:        5,
			CardsPerTableau: 4,
			Foundations:     3,
		},
		Paths: PathSettings{
			DefsDir: "defs",
			MapFile: "map.yaml",
		},
	}
}

// Load reads settings from a TOML file. A missing file is not an
// error: defaults apply, so a bare checkout runs without ceremony.
// Unknown keys are rejected so typos fail loudly.
func Load(path string) (Settings, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}

	settings := Default()
	md, err := toml.DecodeFile(path, &settings)
	if err != nil {
		return Settings{}, fmt.Errorf("decode settings file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Settings{}, fmt.Errorf("settings file %s: unknown key %q", path, undecoded[0].String())
	}

	if err := settings.validate(); err != nil {
		return Settings{}, fmt.Errorf("settings file %s: %w", path, err)
	}
	return settings, nil
}

// validate normalizes and checks loaded values. The deal shape must be
// positive; a negative karma threshold clamps to zero instead of
// failing, since zero is the meaningful "check disabled" value.
func (s *Settings) validate() error {
	if s.Rules.KarmaMinimum < 0 {
		s.Rules.KarmaMinimum = 0
	}
	if s.Deal.Tableaus <= 0 {
		return fmt.Errorf("deal.tableaus must be positive, got %d", s.Deal.Tableaus)
	}
	if s.Deal.CardsPerTableau <= 0 {
		return fmt.Errorf("deal.cards_per_tableau must be positive, got %d", s.Deal.CardsPerTableau)
	}
	if s.Deal.Foundations <= 0 {
		return fmt.Errorf("deal.foundations must be positive, got %d", s.Deal.Foundations)
	}
	return nil
}
