// Package morphology implements the binary-image operations the crack vector
// pipeline is built on: neighbor counting, branch-point and endpoint masks, 3x3
// kernel correlation and topology-preserving thinning.
package morphology

import (
	"fmt"
	"image"
	"math"

	"gocv.io/x/gocv"

	"crackvector/internal/models"
)

// Kernel is a 3x3 correlation kernel indexed [row][col], centered on [1][1].
type Kernel [3][3]int

var (
	// EightNeighborKernel counts the 8-neighbors of a pixel.
	EightNeighborKernel = Kernel{{1, 1, 1}, {1, 0, 1}, {1, 1, 1}}

	// CrossKernel counts the 4-neighbors of a pixel.
	CrossKernel = Kernel{{0, 1, 0}, {1, 0, 1}, {0, 1, 0}}
)

// Offsets lists the 8-neighborhood in scan order: the four edge neighbors
// (up, down, left, right) first, then the diagonals. Every neighborhood lookup
// that has to pick "the first" candidate uses this order, so results stay
// deterministic and prefer 4-adjacent pixels.
var Offsets = [8]models.Coordinate{
	{Row: -1, Col: 0},
	{Row: 1, Col: 0},
	{Row: 0, Col: -1},
	{Row: 0, Col: 1},
	{Row: -1, Col: -1},
	{Row: 1, Col: 1},
	{Row: -1, Col: 1},
	{Row: 1, Col: -1},
}

// CrossOffsets lists the 4-neighborhood.
var CrossOffsets = [4]models.Coordinate{
	{Row: 1, Col: 0},
	{Row: 0, Col: 1},
	{Row: -1, Col: 0},
	{Row: 0, Col: -1},
}

// Neighborhood returns the 8-neighbors of c in scan order, without bounds checks.
func Neighborhood(c models.Coordinate) [8]models.Coordinate {
	var out [8]models.Coordinate
	for i, o := range Offsets {
		out[i] = models.Coordinate{Row: c.Row + o.Row, Col: c.Col + o.Col}
	}
	return out
}

// Correlate slides k over the mask with a zero border and returns the
// per-pixel response in row-major order.
func Correlate(m *models.Mask, k Kernel) []int {
	out := make([]int, m.Width*m.Height)
	if len(out) == 0 {
		return out
	}

	src := toMat(m, 1)
	defer src.Close()

	kernel := gocv.NewMatWithSize(3, 3, gocv.MatTypeCV32F)
	defer kernel.Close()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			kernel.SetFloatAt(i, j, float32(k[i][j]))
		}
	}

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.Filter2D(src, &dst, gocv.MatTypeCV32F, kernel, image.Pt(-1, -1), 0, gocv.BorderConstant)

	response, err := dst.DataPtrFloat32()
	if err != nil {
		panic(fmt.Sprintf("morphology: reading filter response: %v", err))
	}
	for i, v := range response {
		out[i] = int(math.Round(float64(v)))
	}
	return out
}

// NeighborCount returns the number of set 8-neighbors of every set pixel. Unset
// pixels report zero.
func NeighborCount(m *models.Mask) []int {
	counts := Correlate(m, EightNeighborKernel)
	for i, v := range m.Pix {
		if v == 0 {
			counts[i] = 0
		}
	}
	return counts
}

// BranchPoints marks set pixels with more than two set 8-neighbors.
func BranchPoints(m *models.Mask) *models.Mask {
	out := models.NewMask(m.Width, m.Height)
	for i, n := range NeighborCount(m) {
		if n > 2 {
			out.Pix[i] = 1
		}
	}
	return out
}

// Endpoints marks set pixels with exactly one set 8-neighbor.
func Endpoints(m *models.Mask) *models.Mask {
	out := models.NewMask(m.Width, m.Height)
	for i, n := range NeighborCount(m) {
		if n == 1 {
			out.Pix[i] = 1
		}
	}
	return out
}

// SetNeighborCount counts the members of set that are 8-adjacent to c.
func SetNeighborCount(set *models.CoordSet, c models.Coordinate) int {
	n := 0
	for _, nb := range Neighborhood(c) {
		if set.Contains(nb) {
			n++
		}
	}
	return n
}

// SetEndpoints returns the members of set with exactly one 8-neighbor inside
// the set, in raster order. It is the sparse equivalent of running Endpoints on
// an image holding only the set.
func SetEndpoints(set *models.CoordSet) []models.Coordinate {
	var ends []models.Coordinate
	for _, c := range set.Sorted() {
		if SetNeighborCount(set, c) == 1 {
			ends = append(ends, c)
		}
	}
	return ends
}
