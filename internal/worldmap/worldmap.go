// Package worldmap holds the static overworld configuration: map cells
// with biomes and traversal difficulty, and the points of interest
// referenced by cells. Maps are loaded once at startup; the only
// runtime mutation is the deferred point-of-interest assignment step.
package worldmap

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/orim/internal/rules"
)

// Biome classifies a map cell. The biome decides the element palette
// for dealt cards and the terrain kinds generated on the cell.
type Biome int

const (
	BiomeMeadow Biome = iota
	BiomeGrove
	BiomeShore
	BiomeCrag
	BiomeHollow
)

// NumBiomes is the size of the biome set.
const NumBiomes = 5

var biomeNames = [NumBiomes]string{
	BiomeMeadow: "meadow",
	BiomeGrove:  "grove",
	BiomeShore:  "shore",
	BiomeCrag:   "crag",
	BiomeHollow: "hollow",
}

var biomesByName = map[string]Biome{
	"meadow": BiomeMeadow,
	"grove":  BiomeGrove,
	"shore":  BiomeShore,
	"crag":   BiomeCrag,
	"hollow": BiomeHollow,
}

// ParseBiome maps a biome name to its Biome, case-insensitively.
// Unknown names normalize to BiomeMeadow; loaders that want strictness
// check KnownBiome first.
func ParseBiome(name string) Biome {
	if b, ok := biomesByName[strings.ToLower(strings.TrimSpace(name))]; ok {
		return b
	}
	return BiomeMeadow
}

// KnownBiome reports whether the name maps to a defined biome.
func KnownBiome(name string) bool {
	_, ok := biomesByName[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

func (b Biome) String() string {
	if b < 0 || int(b) >= NumBiomes {
		return "meadow"
	}
	return biomeNames[b]
}

// elementPalettes weights the elements dealt on each biome, indexed by
// rules element order. Hand-tuned flavor data.
var elementPalettes = [NumBiomes][rules.NumElements]int{
	BiomeMeadow: {3, 1, 2, 4, 1, 2, 0},
	BiomeGrove:  {2, 1, 2, 5, 1, 2, 1},
	BiomeShore:  {2, 0, 5, 1, 3, 1, 1},
	BiomeCrag:   {3, 4, 1, 0, 3, 0, 2},
	BiomeHollow: {3, 1, 1, 2, 1, 1, 4},
}

// ElementPalette returns the biome's element weights in rules element
// order. Weights are relative; a zero weight excludes the element.
func (b Biome) ElementPalette() [rules.NumElements]int {
	if b < 0 || int(b) >= NumBiomes {
		return elementPalettes[BiomeMeadow]
	}
	return elementPalettes[b]
}

// TerrainKind is one weighted terrain object kind for a biome.
type TerrainKind struct {
	Kind   string
	Weight int
}

var terrainKinds = [NumBiomes][]TerrainKind{
	BiomeMeadow: {
		{"grass_tuft", 4}, {"wildflower", 3}, {"boulder", 1}, {"stump", 1},
	},
	BiomeGrove: {
		{"elder_tree", 3}, {"sapling", 3}, {"mushroom_ring", 2}, {"brook_stone", 1},
	},
	BiomeShore: {
		{"tide_pool", 3}, {"driftwood", 3}, {"dune_grass", 2}, {"shell_bed", 2},
	},
	BiomeCrag: {
		{"scree", 4}, {"basalt_column", 2}, {"ember_vent", 2}, {"cairn", 1},
	},
	BiomeHollow: {
		{"gloom_moss", 3}, {"hollow_log", 3}, {"wisp_lantern", 2}, {"root_arch", 2},
	},
}

// TerrainKinds returns the biome's weighted terrain kinds in a fixed
// order. Callers must not modify the returned slice.
func (b Biome) TerrainKinds() []TerrainKind {
	if b < 0 || int(b) >= NumBiomes {
		return terrainKinds[BiomeMeadow]
	}
	return terrainKinds[b]
}

// Cell is one static map cell. POI holds the unresolved point-of-interest
// id from the map file; resolution happens in AssignPointsOfInterest.
type Cell struct {
	Col        int
	Row        int
	Difficulty int
	Biome      Biome
	POI        string
}

// NodeKey returns the cell's canonical node id, the string fed into
// deterministic generation.
func (c Cell) NodeKey() string {
	return NodeKey(c.Col, c.Row)
}

// NodeKey builds the canonical "col,row" node id for a coordinate pair.
func NodeKey(col, row int) string {
	return fmt.Sprintf("%d,%d", col, row)
}

// ParseNodeKey parses a "col,row" node id.
func ParseNodeKey(key string) (col, row int, err error) {
	lhs, rhs, ok := strings.Cut(strings.TrimSpace(key), ",")
	if !ok {
		return 0, 0, fmt.Errorf("parse node key %q: want \"col,row\"", key)
	}
	col, err = strconv.Atoi(strings.TrimSpace(lhs))
	if err != nil {
		return 0, 0, fmt.Errorf("parse node key %q: %w", key, err)
	}
	row, err = strconv.Atoi(strings.TrimSpace(rhs))
	if err != nil {
		return 0, 0, fmt.Errorf("parse node key %q: %w", key, err)
	}
	return col, row, nil
}

// PointOfInterest is a named landmark a cell can reference.
type PointOfInterest struct {
	ID     string
	Name   string
	Kind   string
	Reward string
}

// Point-of-interest kinds.
const (
	POIGarden = "garden"
	POIShrine = "shrine"
	POICache  = "cache"
	POIGate   = "gate"
)

// Map is the loaded overworld. Cell lookups are by node key. Points of
// interest are invisible to cell queries until AssignPointsOfInterest
// has run.
type Map struct {
	Name  string
	cells map[string]Cell
	pois  map[string]PointOfInterest

	assigned bool
}

// CellAt returns the cell at the coordinates, if present.
func (m *Map) CellAt(col, row int) (Cell, bool) {
	c, ok := m.cells[NodeKey(col, row)]
	return c, ok
}

// CellByKey returns the cell for a node key, if present.
func (m *Map) CellByKey(key string) (Cell, bool) {
	c, ok := m.cells[strings.TrimSpace(key)]
	return c, ok
}

// Len returns the number of cells.
func (m *Map) Len() int {
	return len(m.cells)
}

// AssignPointsOfInterest resolves every cell's point-of-interest
// reference against the map's POI table. This is the deferred runtime
// initialization step: before it runs, PointOfInterestAt reports
// nothing. An unresolvable reference is an error naming cell and id.
func (m *Map) AssignPointsOfInterest() error {
	for key, cell := range m.cells {
		if cell.POI == "" {
			continue
		}
		if _, ok := m.pois[cell.POI]; !ok {
			return fmt.Errorf("assign points of interest: cell %s references unknown poi %q", key, cell.POI)
		}
	}
	m.assigned = true
	return nil
}

// PointOfInterestAt returns the point of interest assigned to the
// coordinates. Before AssignPointsOfInterest has run, or when the cell
// has none, ok is false.
func (m *Map) PointOfInterestAt(col, row int) (PointOfInterest, bool) {
	if !m.assigned {
		return PointOfInterest{}, false
	}
	cell, ok := m.cells[NodeKey(col, row)]
	if !ok || cell.POI == "" {
		return PointOfInterest{}, false
	}
	poi, ok := m.pois[cell.POI]
	return poi, ok
}
