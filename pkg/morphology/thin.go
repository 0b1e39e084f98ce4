package morphology

import (
	"image/color"

	"gocv.io/x/gocv"
	"gocv.io/x/gocv/contrib"

	"crackvector/internal/models"
)

// Thin reduces a binary mask to a one-pixel-wide skeleton with the two
// sub-iteration Guo-Hall thinning. The mask is padded with a one-pixel zero
// border first because the thinning never visits the outermost ring.
//
// Guo-Hall can leave fully set 2x2 blocks where strokes cross. After every
// thinning pass one pixel of each such block is removed if that keeps the
// skeleton 8-connected, and the result is thinned again until nothing changes.
// A block survives only when each of its pixels is a cut point, as in the
// crossing of two diagonal lines.
func Thin(m *models.Mask) *models.Mask {
	if len(m.Pix) == 0 {
		return m.Clone()
	}
	skel := thinPass(m)
	for breakBlocks(skel) > 0 {
		skel = thinPass(skel)
	}
	return skel
}

func thinPass(m *models.Mask) *models.Mask {
	src := toMat(m, 255)
	defer src.Close()

	padded := gocv.NewMat()
	defer padded.Close()
	gocv.CopyMakeBorder(src, &padded, 1, 1, 1, 1, gocv.BorderConstant, color.RGBA{})

	thinned := gocv.NewMat()
	defer thinned.Close()
	contrib.Thinning(padded, &thinned, contrib.ThinningGuoHall)

	return fromMat(thinned, 1, 1, m.Width, m.Height)
}

// breakBlocks scans the mask for fully set 2x2 blocks and clears the first
// pixel of each block, in the order top-left, top-right, bottom-left,
// bottom-right, whose removal keeps its neighborhood connected. It returns the
// number of pixels cleared.
func breakBlocks(m *models.Mask) int {
	removed := 0
	for r := 0; r < m.Height-1; r++ {
		for c := 0; c < m.Width-1; c++ {
			block := [4]models.Coordinate{
				{Row: r, Col: c},
				{Row: r, Col: c + 1},
				{Row: r + 1, Col: c},
				{Row: r + 1, Col: c + 1},
			}
			full := true
			for _, p := range block {
				if !m.IsSet(p.Row, p.Col) {
					full = false
					break
				}
			}
			if !full {
				continue
			}
			for _, p := range block {
				if isSimple(m, p) {
					m.Clear(p.Row, p.Col)
					removed++
					break
				}
			}
		}
	}
	return removed
}

// isSimple reports whether the set 8-neighbors of c form a single 8-connected
// group inside its 3x3 window, so that clearing c cannot split the skeleton.
func isSimple(m *models.Mask, c models.Coordinate) bool {
	var set []models.Coordinate
	for _, nb := range Neighborhood(c) {
		if m.IsSet(nb.Row, nb.Col) {
			set = append(set, nb)
		}
	}
	if len(set) < 2 {
		return false
	}

	seen := make([]bool, len(set))
	seen[0] = true
	stack := []int{0}
	reached := 1
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for j := range set {
			if !seen[j] && set[i].IsAdjacent(set[j]) {
				seen[j] = true
				reached++
				stack = append(stack, j)
			}
		}
	}
	return reached == len(set)
}
