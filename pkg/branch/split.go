package branch

import (
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"crackvector/internal/models"
	"crackvector/pkg/morphology"
)

// forwardOffsets covers each undirected 8-neighbor pair exactly once when
// every pixel only links to these four neighbors.
var forwardOffsets = [4]models.Coordinate{
	{Row: 0, Col: 1},
	{Row: 1, Col: -1},
	{Row: 1, Col: 0},
	{Row: 1, Col: 1},
}

// SplitResult holds the raw branches of a skeleton together with the pixels
// that were taken out around the junctions.
type SplitResult struct {
	// Branches are the 8-connected components left after junction and
	// neighbor removal, ordered by their first pixel in raster order.
	Branches []*Branch

	// Neighbors are the skeleton pixels 8-adjacent to a junction.
	Neighbors *models.CoordSet
}

// Split removes the junction pixels and their skeleton neighbors from the
// skeleton and labels what remains into 8-connected raw branches.
func Split(skel *models.Mask, junctions *models.CoordSet) *SplitResult {
	work := skel.Clone()
	for _, j := range junctions.Sorted() {
		work.Clear(j.Row, j.Col)
	}

	neighbors := models.NewCoordSet(skel.Width)
	for _, j := range junctions.Sorted() {
		for _, nb := range morphology.Neighborhood(j) {
			if work.IsSet(nb.Row, nb.Col) {
				neighbors.Add(nb)
			}
		}
	}
	for _, n := range neighbors.Sorted() {
		work.Clear(n.Row, n.Col)
	}

	return &SplitResult{
		Branches:  Label(work),
		Neighbors: neighbors,
	}
}

// Label returns the 8-connected components of a mask. Each pixel becomes a node
// of an undirected graph keyed on its packed coordinate, adjacent pixels are
// joined by an edge, and the graph's connected components are the branches.
func Label(m *models.Mask) []*Branch {
	g := simple.NewUndirectedGraph()
	coords := m.Coordinates()
	for _, c := range coords {
		g.AddNode(simple.Node(c.Key(m.Width)))
	}
	for _, c := range coords {
		for _, o := range forwardOffsets {
			nb := models.Coordinate{Row: c.Row + o.Row, Col: c.Col + o.Col}
			if m.IsSet(nb.Row, nb.Col) {
				g.SetEdge(simple.Edge{
					F: simple.Node(c.Key(m.Width)),
					T: simple.Node(nb.Key(m.Width)),
				})
			}
		}
	}

	components := topo.ConnectedComponents(g)
	keyed := make([][]int, 0, len(components))
	for _, comp := range components {
		keys := make([]int, len(comp))
		for i, n := range comp {
			keys[i] = int(n.ID())
		}
		sort.Ints(keys)
		keyed = append(keyed, keys)
	}
	sort.Slice(keyed, func(i, j int) bool { return keyed[i][0] < keyed[j][0] })

	branches := make([]*Branch, len(keyed))
	for i, keys := range keyed {
		b := New(m.Width)
		for _, k := range keys {
			b.Add(models.CoordinateFromKey(k, m.Width))
		}
		branches[i] = b
	}
	return branches
}
