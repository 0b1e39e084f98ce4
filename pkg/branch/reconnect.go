package branch

import (
	"fmt"

	"crackvector/internal/models"
	"crackvector/pkg/diagnostics"
)

// Reconnect runs the three reconnection passes in their fixed order: neighbor
// reattachment, promotion of unclaimed neighbors, junction reattachment. The
// order decides which branch wins an ambiguous pixel, so it must not change.
func Reconnect(split *SplitResult, junctions *models.CoordSet, diag *diagnostics.Collector) []*Branch {
	branches := make([]*Branch, len(split.Branches))
	copy(branches, split.Branches)

	pool := split.Neighbors.Clone()
	ReattachNeighbors(branches, pool, diag)
	branches = PromoteNeighbors(branches, pool)
	ReattachJunctions(branches, junctions, diag)
	return branches
}

// ReattachNeighbors gives the pixels removed around junctions back to the
// branches they extend. Attached pixels are removed from pool.
//
// A branch of two or more pixels looks around each of its endpoints and takes
// the first unclaimed neighbor in scan order; when more than one is available
// the extra ones stay in the pool and a soft anomaly is recorded. A branch with
// more than two endpoints is left alone (hard anomaly). A single-pixel branch
// has no endpoints of its own and takes every unclaimed pixel around it.
func ReattachNeighbors(branches []*Branch, pool *models.CoordSet, diag *diagnostics.Collector) {
	for i, b := range branches {
		switch {
		case b.Len() >= 2:
			ends := b.Endpoints()
			if len(ends) > 2 {
				diag.Hard(diagnostics.StageNeighborReattach, diagnostics.ReasonTooManyEndpoints, i,
					fmt.Sprintf("branch skipped: %d endpoints found", len(ends)), b.Pixels())
				continue
			}
			for _, end := range ends {
				found := candidates(end, pool)
				if len(found) == 0 {
					continue
				}
				if len(found) > 1 {
					diag.Soft(diagnostics.StageNeighborReattach, diagnostics.ReasonMultipleNeighbors, i,
						fmt.Sprintf("endpoint %s touches %d neighbor pixels, attaching the first", end, len(found)), found)
				}
				b.Add(found[0])
				pool.Remove(found[0])
			}

		case b.Len() == 1:
			center := b.pixels[0]
			found := candidates(center, pool)
			if len(found) > 2 {
				diag.Soft(diagnostics.StageNeighborReattach, diagnostics.ReasonSinglePixelAmbiguity, i,
					fmt.Sprintf("single-pixel branch %s touches %d neighbor pixels, attaching all", center, len(found)), found)
			}
			for _, c := range found {
				b.Add(c)
				pool.Remove(c)
			}
		}
	}
}

// PromoteNeighbors turns every pixel left in pool into its own single-pixel
// branch, appended in raster order.
func PromoteNeighbors(branches []*Branch, pool *models.CoordSet) []*Branch {
	for _, c := range pool.Sorted() {
		branches = append(branches, New(pool.Width(), c))
	}
	return branches
}

// ReattachJunctions extends each branch endpoint with the junction it touches.
// Only the first junction in scan order is attached per endpoint; extra ones
// are recorded as a soft anomaly. Single-pixel branches take every junction
// around them, which lets a lone pixel between two junctions become a
// measurable three-pixel branch.
func ReattachJunctions(branches []*Branch, junctions *models.CoordSet, diag *diagnostics.Collector) {
	for i, b := range branches {
		switch {
		case b.Len() >= 2:
			ends := b.Endpoints()
			if len(ends) > 2 {
				diag.Hard(diagnostics.StageJunctionReattach, diagnostics.ReasonTooManyEndpoints, i,
					fmt.Sprintf("branch skipped: %d endpoints found", len(ends)), b.Pixels())
				continue
			}
			for _, end := range ends {
				found := candidates(end, junctions)
				if len(found) == 0 {
					continue
				}
				if len(found) > 1 {
					diag.Soft(diagnostics.StageJunctionReattach, diagnostics.ReasonMultipleJunctions, i,
						fmt.Sprintf("endpoint %s touches %d junctions, connecting only the first", end, len(found)), found)
				}
				b.Add(found[0])
			}

		case b.Len() == 1:
			center := b.pixels[0]
			found := candidates(center, junctions)
			if len(found) > 2 {
				diag.Soft(diagnostics.StageJunctionReattach, diagnostics.ReasonSinglePixelAmbiguity, i,
					fmt.Sprintf("single-pixel branch %s touches %d junctions, attaching all", center, len(found)), found)
			}
			for _, c := range found {
				b.Add(c)
			}
		}
	}
}
