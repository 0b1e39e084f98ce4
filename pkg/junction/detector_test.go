package junction

import (
	"testing"

	"crackvector/internal/models"
	"crackvector/pkg/morphology"
)

// createTShape returns a one-pixel T: an 11-pixel run on row 2 (cols 2..12)
// crossed at col 7 by a 7-pixel run going down (rows 2..8).
func createTShape() *models.Mask {
	m := models.NewMask(15, 11)
	for col := 2; col <= 12; col++ {
		m.Set(2, col)
	}
	for row := 2; row <= 8; row++ {
		m.Set(row, 7)
	}
	return m
}

// createPlus returns two 9-pixel runs crossing at (5,5).
func createPlus() *models.Mask {
	m := models.NewMask(11, 11)
	for i := 1; i <= 9; i++ {
		m.Set(5, i)
		m.Set(i, 5)
	}
	return m
}

func assertJunctions(t *testing.T, got *Result, want []models.Coordinate) {
	t.Helper()
	if len(got.Coordinates) != len(want) {
		t.Fatalf("Expected junctions %v, got %v", want, got.Coordinates)
	}
	for i := range want {
		if got.Coordinates[i] != want[i] {
			t.Errorf("Expected junction %s, got %s", want[i], got.Coordinates[i])
		}
		if !got.Contains(want[i]) {
			t.Errorf("Expected set to contain %s", want[i])
		}
	}
	if got.Set.Len() != len(want) || got.Mask.Count() != len(want) {
		t.Errorf("Expected set and mask to hold %d junctions, got %d and %d",
			len(want), got.Set.Len(), got.Mask.Count())
	}
}

func TestDetectStraightLine(t *testing.T) {
	m := models.NewMask(12, 5)
	for col := 1; col <= 10; col++ {
		m.Set(2, col)
	}
	assertJunctions(t, Detect(m), nil)
}

func TestDetectTShape(t *testing.T) {
	assertJunctions(t, Detect(createTShape()), []models.Coordinate{{Row: 2, Col: 7}})
}

func TestDetectPlus(t *testing.T) {
	assertJunctions(t, Detect(createPlus()), []models.Coordinate{{Row: 5, Col: 5}})
}

func TestDetectIsolatedPixel(t *testing.T) {
	m := models.NewMask(7, 7)
	m.Set(3, 3)
	assertJunctions(t, Detect(m), []models.Coordinate{{Row: 3, Col: 3}})
}

func TestDetectIsolatedPixelOnBorder(t *testing.T) {
	m := models.NewMask(5, 5)
	m.Set(0, 4)
	assertJunctions(t, Detect(m), []models.Coordinate{{Row: 0, Col: 4}})
}

func TestDetectEmpty(t *testing.T) {
	r := Detect(models.NewMask(6, 6))
	if len(r.Coordinates) != 0 || r.Set.Len() != 0 {
		t.Errorf("Expected no junctions, got %v", r.Coordinates)
	}
}

func TestDetectSubsetOfSkeleton(t *testing.T) {
	masks := []*models.Mask{createTShape(), createPlus()}
	for _, m := range masks {
		r := Detect(m)
		for _, c := range r.Coordinates {
			if !m.IsSet(c.Row, c.Col) {
				t.Errorf("Junction %s is not a skeleton pixel", c)
			}
		}
	}
}

func TestDetectDoesNotModifyInput(t *testing.T) {
	m := createTShape()
	before := m.Count()
	Detect(m)
	if m.Count() != before {
		t.Errorf("Expected %d skeleton pixels, got %d", before, m.Count())
	}
}

func createMask(width, height int, pixels ...models.Coordinate) *models.Mask {
	m := models.NewMask(width, height)
	for _, c := range pixels {
		m.Set(c.Row, c.Col)
	}
	return m
}

// createDiagonalPair returns two branch points touching only diagonally:
// (5,5) with arms going up and down-left, (6,6) with arms going up-right and
// down.
func createDiagonalPair() *models.Mask {
	return createMask(13, 12,
		models.Coordinate{Row: 1, Col: 5}, models.Coordinate{Row: 2, Col: 5},
		models.Coordinate{Row: 3, Col: 5}, models.Coordinate{Row: 4, Col: 5},
		models.Coordinate{Row: 5, Col: 5},
		models.Coordinate{Row: 6, Col: 4}, models.Coordinate{Row: 7, Col: 3},
		models.Coordinate{Row: 8, Col: 2}, models.Coordinate{Row: 9, Col: 1},
		models.Coordinate{Row: 6, Col: 6},
		models.Coordinate{Row: 5, Col: 7}, models.Coordinate{Row: 4, Col: 8},
		models.Coordinate{Row: 3, Col: 9}, models.Coordinate{Row: 2, Col: 10},
		models.Coordinate{Row: 7, Col: 6}, models.Coordinate{Row: 8, Col: 6},
		models.Coordinate{Row: 9, Col: 6}, models.Coordinate{Row: 10, Col: 6},
	)
}

// createTriangleFork returns a branch point at (row,5) whose neighbors are
// the two tips of a small triangle and a diagonal arm going down-right.
func createTriangleFork(row int) *models.Mask {
	return createMask(12, 10,
		models.Coordinate{Row: row, Col: 4}, models.Coordinate{Row: row, Col: 5},
		models.Coordinate{Row: row + 1, Col: 4},
		models.Coordinate{Row: row + 1, Col: 6}, models.Coordinate{Row: row + 2, Col: 7},
		models.Coordinate{Row: row + 3, Col: 8},
	)
}

// createHorizontalPair returns two 4-adjacent branch points (5,5) and (5,6),
// each with two diagonal arms pointing away from the other.
func createHorizontalPair() *models.Mask {
	return createMask(12, 11,
		models.Coordinate{Row: 5, Col: 5}, models.Coordinate{Row: 5, Col: 6},
		models.Coordinate{Row: 4, Col: 4}, models.Coordinate{Row: 3, Col: 3}, models.Coordinate{Row: 2, Col: 2},
		models.Coordinate{Row: 6, Col: 4}, models.Coordinate{Row: 7, Col: 3}, models.Coordinate{Row: 8, Col: 2},
		models.Coordinate{Row: 4, Col: 7}, models.Coordinate{Row: 3, Col: 8}, models.Coordinate{Row: 2, Col: 9},
		models.Coordinate{Row: 6, Col: 7}, models.Coordinate{Row: 7, Col: 8}, models.Coordinate{Row: 8, Col: 9},
	)
}

func TestDetectLeftoverCandidates(t *testing.T) {
	m := createDiagonalPair()
	candidates := morphology.BranchPoints(m).Coordinates()
	want := []models.Coordinate{{Row: 5, Col: 5}, {Row: 6, Col: 6}}
	if len(candidates) != 2 || candidates[0] != want[0] || candidates[1] != want[1] {
		t.Fatalf("Expected branch points %v, got %v", want, candidates)
	}

	// Each candidate touches the other diagonally, so neither is isolated and
	// neither has a candidate among its 4-neighbors.
	if isolated := isolatedCells(m, morphology.BranchPoints(m), morphology.NeighborCount(m)); isolated.Count() != 0 {
		t.Errorf("Expected no isolated cells, got %v", isolated.Coordinates())
	}
	assertJunctions(t, Detect(m), want)
}

func TestIsolatedCandidate(t *testing.T) {
	m := createTriangleFork(3)
	isolated := isolatedCells(m, morphology.BranchPoints(m), morphology.NeighborCount(m))
	got := isolated.Coordinates()
	if len(got) != 1 || got[0] != (models.Coordinate{Row: 3, Col: 5}) {
		t.Errorf("Expected isolated candidate (3,5), got %v", got)
	}
	assertJunctions(t, Detect(m), []models.Coordinate{{Row: 3, Col: 5}})
}

func TestIsolatedCandidateOnBorder(t *testing.T) {
	m := createTriangleFork(0)
	candidates := morphology.BranchPoints(m).Coordinates()
	if len(candidates) != 1 || candidates[0] != (models.Coordinate{Row: 0, Col: 5}) {
		t.Fatalf("Expected branch point (0,5), got %v", candidates)
	}

	isolated := isolatedCells(m, morphology.BranchPoints(m), morphology.NeighborCount(m))
	if isolated.Count() != 0 {
		t.Errorf("Expected the hit-or-miss not to fire on the border, got %v", isolated.Coordinates())
	}
	// The leftover rule still keeps it.
	assertJunctions(t, Detect(m), []models.Coordinate{{Row: 0, Col: 5}})
}

func TestDetectOneNeighborConsolidation(t *testing.T) {
	m := createHorizontalPair()
	candidates := morphology.BranchPoints(m).Coordinates()
	if len(candidates) != 2 {
		t.Fatalf("Expected 2 branch points, got %v", candidates)
	}

	// The pair collapses onto its right member.
	assertJunctions(t, Detect(m), []models.Coordinate{{Row: 5, Col: 6}})
}
