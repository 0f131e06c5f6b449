package worldgen

import (
	"github.com/roach88/orim/internal/worldmap"
)

// TerrainObject is one generated terrain placement on a cell grid.
type TerrainObject struct {
	Kind string `json:"kind"`
	Col  int    `json:"col"`
	Row  int    `json:"row"`
}

// placementAttempts bounds the rejection loop per object. Dense grids
// can exhaust free spots; objects that cannot place are skipped.
const placementAttempts = 32

// PlaceTerrain generates deterministic terrain objects for a node. Kinds
// are drawn from the biome's weighted table, positions deduplicated by
// rejection. The result may be shorter than count when the grid runs out
// of free spots.
func PlaceTerrain(nodeKey string, biome worldmap.Biome, cols, rows, count int) []TerrainObject {
	if cols <= 0 || rows <= 0 || count <= 0 {
		return nil
	}
	if max := cols * rows; count > max {
		count = max
	}

	kinds := biome.TerrainKinds()
	weights := make([]int, len(kinds))
	for i, k := range kinds {
		weights[i] = k.Weight
	}

	s := NewStream(Seed(DomainTerrain, nodeKey, biome.String()))

	occupied := make(map[int]bool, count)
	objects := make([]TerrainObject, 0, count)
	for i := 0; i < count; i++ {
		kind := kinds[s.Pick(weights)].Kind

		placed := false
		var col, row int
		for attempt := 0; attempt < placementAttempts; attempt++ {
			col = s.Intn(cols)
			row = s.Intn(rows)
			if spot := row*cols + col; !occupied[spot] {
				occupied[spot] = true
				placed = true
				break
			}
		}
		if !placed {
			continue
		}
		objects = append(objects, TerrainObject{Kind: kind, Col: col, Row: row})
	}
	return objects
}
