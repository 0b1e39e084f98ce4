// Package junction classifies skeleton pixels as junctions (branch points).
package junction

import (
	"crackvector/internal/models"
	"crackvector/pkg/morphology"
)

// upLeftKernel sums the pixel itself with its upper and left neighbors. A
// response of two marks the lower-right member of a pair of adjacent branch
// points, which is where such a pair gets consolidated into one junction.
var upLeftKernel = morphology.Kernel{{0, 1, 0}, {1, 1, 0}, {0, 0, 0}}

// Result holds the junctions of one skeleton.
type Result struct {
	// Mask marks every junction pixel.
	Mask *models.Mask

	// Set is the O(1) membership view of Mask.
	Set *models.CoordSet

	// Coordinates lists the junctions in raster order.
	Coordinates []models.Coordinate
}

// Contains reports whether c is a junction.
func (r *Result) Contains(c models.Coordinate) bool {
	return r.Set.Contains(c)
}

// Detect classifies the junctions of a skeleton.
//
// Branch-point candidates are skeleton pixels with more than two set
// 8-neighbors. The junction set is the union, restricted to the skeleton, of:
//
//   - isolated pixels: skeleton pixels without any set 8-neighbor, plus
//     candidates that have no candidate among their 8-neighbors;
//   - multi-neighbor cells: skeleton pixels with two or more candidates among
//     their 4-neighbors;
//   - leftover candidates: candidates with no candidate among their 4-neighbors;
//   - one-neighbor consolidation: skeleton pixels where exactly two of
//     {self, up, left} are candidates, unless one of the 4-neighbors is already
//     a multi-neighbor cell. Pixels on the image border skip the look-around.
func Detect(skel *models.Mask) *Result {
	w, h := skel.Width, skel.Height
	counts := morphology.NeighborCount(skel)

	candidates := models.NewMask(w, h)
	for i, n := range counts {
		if n > 2 {
			candidates.Pix[i] = 1
		}
	}

	isolated := isolatedCells(skel, candidates, counts)

	cross := morphology.Correlate(candidates, morphology.CrossKernel)
	multi := models.NewMask(w, h)
	leftover := models.NewMask(w, h)
	for i := range skel.Pix {
		if skel.Pix[i] != 0 && cross[i] >= 2 {
			multi.Pix[i] = 1
		}
		if candidates.Pix[i] != 0 && !(skel.Pix[i] != 0 && cross[i] >= 1) {
			leftover.Pix[i] = 1
		}
	}

	oneNeighbor := consolidatedCells(skel, candidates, multi)

	final := models.NewMask(w, h)
	for i := range skel.Pix {
		if skel.Pix[i] == 0 {
			continue
		}
		if multi.Pix[i]|leftover.Pix[i]|isolated.Pix[i]|oneNeighbor.Pix[i] != 0 {
			final.Pix[i] = 1
		}
	}

	return &Result{
		Mask:        final,
		Set:         final.CoordSet(),
		Coordinates: final.Coordinates(),
	}
}

// isolatedCells marks skeleton pixels with no set neighbor at all, and
// candidates that are not touching any other candidate. The second rule is a
// hit-or-miss with a zero border, so it never fires on the outermost ring.
func isolatedCells(skel, candidates *models.Mask, counts []int) *models.Mask {
	w, h := skel.Width, skel.Height
	out := models.NewMask(w, h)
	candidateNeighbors := morphology.Correlate(candidates, morphology.EightNeighborKernel)
	for r := 0; r < h; r++ {
		for c := 0; c < w; c++ {
			i := r*w + c
			if skel.Pix[i] != 0 && counts[i] == 0 {
				out.Pix[i] = 1
				continue
			}
			interior := r > 0 && r < h-1 && c > 0 && c < w-1
			if candidates.Pix[i] != 0 && interior && candidateNeighbors[i] == 0 {
				out.Pix[i] = 1
			}
		}
	}
	return out
}

// consolidatedCells applies the one-neighbor consolidation rule. It has to run
// after the multi-neighbor pass because it looks up multi-neighbor cells around
// each candidate.
func consolidatedCells(skel, candidates, multi *models.Mask) *models.Mask {
	w, h := skel.Width, skel.Height
	response := morphology.Correlate(candidates, upLeftKernel)
	out := models.NewMask(w, h)
	for r := 0; r < h; r++ {
		for c := 0; c < w; c++ {
			i := r*w + c
			if skel.Pix[i] == 0 || response[i] != 2 {
				continue
			}
			out.Pix[i] = 1

			if r == 0 || r == h-1 || c == 0 || c == w-1 {
				continue
			}
			for _, o := range morphology.CrossOffsets {
				if multi.IsSet(r+o.Row, c+o.Col) {
					out.Pix[i] = 0
					break
				}
			}
		}
	}
	return out
}
