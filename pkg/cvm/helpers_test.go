package cvm

import (
	"crackvector/internal/models"
)

func coord(row, col int) models.Coordinate {
	return models.Coordinate{Row: row, Col: col}
}

func setRun(r *models.Raster, from, to models.Coordinate) {
	dr, dc := step(to.Row-from.Row), step(to.Col-from.Col)
	for p := from; ; p = coord(p.Row+dr, p.Col+dc) {
		r.Set(p.Row, p.Col, 255)
		if p == to {
			return
		}
	}
}

func setBlock(r *models.Raster, top, left, bottom, right int, v float64) {
	for row := top; row <= bottom; row++ {
		for col := left; col <= right; col++ {
			r.Set(row, col, v)
		}
	}
}

func step(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// createTShape returns a one-pixel T: an 11-pixel run on row 2 (cols 2..12)
// crossed at col 7 by a 7-pixel run going down (rows 2..8).
func createTShape() *models.Raster {
	r := models.NewRaster(15, 11)
	setRun(r, coord(2, 2), coord(2, 12))
	setRun(r, coord(2, 7), coord(8, 7))
	return r
}

// createComposite returns a raster holding a T, a plus, a closed ring, a
// diagonal line, an isolated pixel and a thick T-shaped band.
func createComposite() *models.Raster {
	r := models.NewRaster(70, 32)

	setRun(r, coord(2, 2), coord(2, 12))
	setRun(r, coord(2, 7), coord(8, 7))

	setRun(r, coord(6, 18), coord(6, 28))
	setRun(r, coord(2, 23), coord(10, 23))

	setRun(r, coord(15, 3), coord(15, 12))
	setRun(r, coord(22, 3), coord(22, 12))
	setRun(r, coord(15, 3), coord(22, 3))
	setRun(r, coord(15, 12), coord(22, 12))

	setRun(r, coord(15, 18), coord(25, 28))

	r.Set(28, 5, 255)

	setBlock(r, 3, 35, 7, 65, 255)
	setBlock(r, 8, 48, 26, 51, 255)
	return r
}

// createBandScene returns a one-pixel segmentation line on row 12 (cols 2..37)
// and a range image in which rows 10..14 are deep (dark) and everything else
// is the flat surface.
func createBandScene() (seg, rng *models.Raster) {
	seg = models.NewRaster(40, 25)
	setRun(seg, coord(12, 2), coord(12, 37))

	rng = models.NewRaster(40, 25)
	setBlock(rng, 0, 0, 24, 39, 255)
	setBlock(rng, 10, 0, 14, 39, 0)
	return seg, rng
}
