package linkedcell

import (
	"math"
	"math/rand"
)

// Populate fills every cell to capacity with molecules at uniformly random
// positions within the domain. Molecules are generally not in the cell their
// position maps to until MigrateAll is called. Cells are filled in order so
// that a given seed always gives the same container.
func (c *Container) Populate(gen *rand.Rand) {
	L := c.idx.DomainSize
	for cell := range c.counts {
		for j := 0; j < c.capacity; j++ {
			m := c.slot(cell, j)
			*m = Molecule{Id: c.nextId}
			c.nextId++
			for k := 0; k < 3; k++ {
				m.Xs[k] = math.Min(gen.Float64()*L, math.Nextafter(L, 0))
				m.Vs[k] = 2*gen.Float64() - 1
			}
		}
		c.setCount(cell, c.capacity)
	}
}

// MakeHoles tombstones a random fraction of the container's live, non-Dirty
// molecules and returns the number of new holes.
func (c *Container) MakeHoles(gen *rand.Rand, frac float64) int {
	type coord struct{ cell, i int }
	coords := []coord{}
	for cell := range c.counts {
		for i, m := range c.live(cell) {
			if !m.Dirty {
				coords = append(coords, coord{cell, i})
			}
		}
	}

	gen.Shuffle(len(coords), func(i, j int) {
		coords[i], coords[j] = coords[j], coords[i]
	})

	holes := int(frac * float64(len(coords)))
	if holes < 0 {
		holes = 0
	} else if holes > len(coords) {
		holes = len(coords)
	}
	for _, co := range coords[:holes] {
		c.slot(co.cell, co.i).Dirty = true
	}
	return holes
}

// Displace moves every live molecule by a random offset of at most maxStep
// along each axis. Molecules are reflected off of the domain walls. This
// stands in for an integrator when exercising MigrateAll.
func (c *Container) Displace(gen *rand.Rand, maxStep float64) {
	L := c.idx.DomainSize
	for cell := range c.counts {
		ms := c.live(cell)
		for i := range ms {
			if ms[i].Dirty {
				continue
			}
			for k := 0; k < 3; k++ {
				ms[i].Xs[k] = reflect(ms[i].Xs[k]+maxStep*(2*gen.Float64()-1), L)
			}
		}
	}
}

// reflect folds x back into [0, L).
func reflect(x, L float64) float64 {
	x = math.Mod(x, 2*L)
	if x < 0 {
		x += 2 * L
	}
	if x >= L {
		x = 2*L - x
	}
	if x >= L {
		x = math.Nextafter(L, 0)
	}
	return x
}
