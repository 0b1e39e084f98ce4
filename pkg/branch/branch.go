// Package branch splits a skeleton into crack branches, reconnects the pixels
// removed around junctions and orders every branch into a polyline.
package branch

import (
	"crackvector/internal/models"
	"crackvector/pkg/morphology"
)

// Branch is an unordered pixel set representing one crack segment. Pixels keep
// their insertion order so that every pass over a branch is deterministic.
type Branch struct {
	pixels []models.Coordinate
	set    *models.CoordSet
}

// New creates a branch for a raster of the given width.
func New(width int, coords ...models.Coordinate) *Branch {
	b := &Branch{set: models.NewCoordSet(width)}
	for _, c := range coords {
		b.Add(c)
	}
	return b
}

// Add appends a pixel and reports whether it was not already a member.
func (b *Branch) Add(c models.Coordinate) bool {
	if !b.set.Add(c) {
		return false
	}
	b.pixels = append(b.pixels, c)
	return true
}

// Contains reports membership.
func (b *Branch) Contains(c models.Coordinate) bool {
	return b.set.Contains(c)
}

// Len returns the number of pixels.
func (b *Branch) Len() int { return len(b.pixels) }

// Pixels returns a copy of the pixels in insertion order.
func (b *Branch) Pixels() []models.Coordinate {
	out := make([]models.Coordinate, len(b.pixels))
	copy(out, b.pixels)
	return out
}

// Endpoints returns the pixels with exactly one 8-neighbor inside the branch,
// in raster order.
func (b *Branch) Endpoints() []models.Coordinate {
	return morphology.SetEndpoints(b.set)
}

// candidates returns the members of pool that are 8-adjacent to c, in scan order.
func candidates(c models.Coordinate, pool *models.CoordSet) []models.Coordinate {
	var out []models.Coordinate
	for _, nb := range morphology.Neighborhood(c) {
		if pool.Contains(nb) {
			out = append(out, nb)
		}
	}
	return out
}
