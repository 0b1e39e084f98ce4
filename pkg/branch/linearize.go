package branch

import (
	"fmt"

	"crackvector/internal/models"
	"crackvector/pkg/diagnostics"
)

// Linearize orders every branch into a polyline running from one endpoint to
// the other. Branches that cannot be ordered are dropped and recorded as hard
// anomalies carrying all of their pixels:
//
//   - single-pixel branches (no length to measure);
//   - branches with fewer or more than two endpoints;
//   - branches whose walk reaches a pixel with zero or more than two unvisited
//     neighbors before covering the whole branch;
//   - branches that would pass through a junction anywhere but at their ends.
//
// Returned polylines keep the relative order of the input branches.
func Linearize(branches []*Branch, junctions *models.CoordSet, diag *diagnostics.Collector) []models.Polyline {
	var out []models.Polyline
	for i, b := range branches {
		if b.Len() < 2 {
			diag.Hard(diagnostics.StageLinearize, diagnostics.ReasonSinglePixel, i,
				"branch skipped: single pixel", b.Pixels())
			continue
		}

		ends := b.Endpoints()
		if len(ends) < 2 {
			diag.Hard(diagnostics.StageLinearize, diagnostics.ReasonTooFewEndpoints, i,
				fmt.Sprintf("branch skipped: %d endpoints found", len(ends)), b.Pixels())
			continue
		}
		if len(ends) > 2 {
			diag.Hard(diagnostics.StageLinearize, diagnostics.ReasonTooManyEndpoints, i,
				fmt.Sprintf("branch skipped: %d endpoints found", len(ends)), b.Pixels())
			continue
		}

		path, ok := walk(b, ends[0])
		if !ok {
			diag.Hard(diagnostics.StageLinearize, diagnostics.ReasonNonLinear, i,
				"branch skipped: a pixel does not have exactly one or two unvisited neighbors", b.Pixels())
			continue
		}

		if hit, ok := interiorJunction(path, junctions); ok {
			diag.Hard(diagnostics.StageLinearize, diagnostics.ReasonInteriorJunction, i,
				fmt.Sprintf("branch skipped: junction %s inside the path", hit), b.Pixels())
			continue
		}

		out = append(out, path)
	}
	return out
}

// walk greedily follows unvisited 8-neighbors from start, taking the first one
// in scan order, until every pixel of the branch is visited.
func walk(b *Branch, start models.Coordinate) (models.Polyline, bool) {
	remaining := b.set.Clone()
	remaining.Remove(start)

	path := make(models.Polyline, 0, b.Len())
	path = append(path, start)
	cur := start
	for remaining.Len() > 0 {
		next := candidates(cur, remaining)
		if len(next) == 0 || len(next) > 2 {
			return nil, false
		}
		cur = next[0]
		remaining.Remove(cur)
		path = append(path, cur)
	}
	return path, true
}

func interiorJunction(path models.Polyline, junctions *models.CoordSet) (models.Coordinate, bool) {
	for _, c := range path[1 : len(path)-1] {
		if junctions.Contains(c) {
			return c, true
		}
	}
	return models.Coordinate{}, false
}
