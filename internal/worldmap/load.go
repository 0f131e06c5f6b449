package worldmap

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// mapFile is the YAML shape of a map definition.
type mapFile struct {
	Name             string    `yaml:"name"`
	Cells            []cellDef `yaml:"cells"`
	PointsOfInterest []poiDef  `yaml:"points_of_interest"`
}

type cellDef struct {
	Col        int    `yaml:"col"`
	Row        int    `yaml:"row"`
	Difficulty int    `yaml:"difficulty"`
	Biome      string `yaml:"biome"`
	POI        string `yaml:"poi"`
}

type poiDef struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	Kind   string `yaml:"kind"`
	Reward string `yaml:"reward"`
}

// LoadFile reads and validates a map definition from a YAML file.
func LoadFile(path string) (*Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open map file: %w", err)
	}
	defer f.Close()

	m, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("load map file %s: %w", path, err)
	}
	return m, nil
}

// Load parses a map definition from YAML. Unknown fields are rejected
// so typos in map files fail loudly instead of silently dropping data.
func Load(r io.Reader) (*Map, error) {
	var file mapFile
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("parse map yaml: %w", err)
	}

	if err := validateMapFile(&file); err != nil {
		return nil, fmt.Errorf("invalid map: %w", err)
	}

	m := &Map{
		Name:  file.Name,
		cells: make(map[string]Cell, len(file.Cells)),
		pois:  make(map[string]PointOfInterest, len(file.PointsOfInterest)),
	}
	for _, def := range file.PointsOfInterest {
		m.pois[def.ID] = PointOfInterest{
			ID:     def.ID,
			Name:   def.Name,
			Kind:   def.Kind,
			Reward: def.Reward,
		}
	}
	for _, def := range file.Cells {
		difficulty := def.Difficulty
		if difficulty < 0 {
			difficulty = 0
		}
		cell := Cell{
			Col:        def.Col,
			Row:        def.Row,
			Difficulty: difficulty,
			Biome:      ParseBiome(def.Biome),
			POI:        def.POI,
		}
		m.cells[cell.NodeKey()] = cell
	}
	return m, nil
}

// validateMapFile checks required fields and structural consistency.
func validateMapFile(file *mapFile) error {
	if file.Name == "" {
		return fmt.Errorf("name field is required")
	}
	if len(file.Cells) == 0 {
		return fmt.Errorf("cells list must not be empty")
	}

	seenCells := make(map[string]bool, len(file.Cells))
	for i, def := range file.Cells {
		if def.Biome == "" {
			return fmt.Errorf("cell %d: biome field is required", i)
		}
		if !KnownBiome(def.Biome) {
			return fmt.Errorf("cell %d: unknown biome %q", i, def.Biome)
		}
		key := NodeKey(def.Col, def.Row)
		if seenCells[key] {
			return fmt.Errorf("cell %d: duplicate coordinates %s", i, key)
		}
		seenCells[key] = true
	}

	seenPOIs := make(map[string]bool, len(file.PointsOfInterest))
	for i, def := range file.PointsOfInterest {
		if def.ID == "" {
			return fmt.Errorf("point of interest %d: id field is required", i)
		}
		if def.Name == "" {
			return fmt.Errorf("point of interest %d: name field is required", i)
		}
		if seenPOIs[def.ID] {
			return fmt.Errorf("point of interest %d: duplicate id %q", i, def.ID)
		}
		seenPOIs[def.ID] = true
	}
	return nil
}
