package geom

// Colors is the number of parity classes a Grid's cells are split into.
const Colors = 8

// Grid provides an interface for reasoning over a 1D slice as if it were a
// cubic 3D grid of cells.
type Grid struct {
	Length, Area, Volume int
}

// NewGrid returns a new Grid instance with n cells on each side.
func NewGrid(n int) *Grid {
	g := &Grid{}
	g.Init(n)
	return g
}

// Init initializes a Grid instance.
func (g *Grid) Init(n int) {
	g.Length = n
	g.Area = n * n
	g.Volume = n * n * n
}

// Idx returns the grid index corresponding to a set of coordinates.
func (g *Grid) Idx(x, y, z int) int {
	return x + y*g.Length + z*g.Area
}

// IdxCheck returns an index and true if the given coordinate are valid and
// false otherwise.
func (g *Grid) IdxCheck(x, y, z int) (idx int, ok bool) {
	if !g.BoundsCheck(x, y, z) {
		return -1, false
	}

	return g.Idx(x, y, z), true
}

// BoundsCheck returns true if the given coordinates are within the Grid and
// false otherwise.
func (g *Grid) BoundsCheck(x, y, z int) bool {
	return (0 <= x && 0 <= y && 0 <= z) &&
		(x < g.Length && y < g.Length && z < g.Length)
}

// Coords returns the x, y, z coordinates of a point from its grid index.
func (g *Grid) Coords(idx int) (x, y, z int) {
	x = idx % g.Length
	y = (idx % g.Area) / g.Length
	z = idx / g.Area
	return x, y, z
}

// Adjacent returns true if the two cells share a face, edge, or corner.
// A cell is not adjacent to itself.
func (g *Grid) Adjacent(i, j int) bool {
	if i == j {
		return false
	}
	x1, y1, z1 := g.Coords(i)
	x2, y2, z2 := g.Coords(j)
	return abs(x1-x2) <= 1 && abs(y1-y2) <= 1 && abs(z1-z2) <= 1
}

// Color returns the parity class of a cell, x%2 + 2*(y%2) + 4*(z%2). Two
// cells of the same color are never adjacent.
func (g *Grid) Color(idx int) int {
	x, y, z := g.Coords(idx)
	return x&1 | (y&1)<<1 | (z&1)<<2
}

// ColorClasses partitions the grid's cells by Color. Cells within each class
// are in increasing index order.
func (g *Grid) ColorClasses() [Colors][]int {
	var classes [Colors][]int
	for z := 0; z < g.Length; z++ {
		for y := 0; y < g.Length; y++ {
			for x := 0; x < g.Length; x++ {
				idx := g.Idx(x, y, z)
				c := g.Color(idx)
				classes[c] = append(classes[c], idx)
			}
		}
	}
	return classes
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
