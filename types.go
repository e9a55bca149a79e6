package linkedcell

import (
	"fmt"
)

// Molecule is a single point entity stored in a Container. Dirty marks a
// slot which has been logically removed but not yet compacted away.
type Molecule struct {
	Xs, Vs, Fs [3]float64
	Id         int64
	Dirty      bool
}

// NewMolecule returns a live molecule at the given position with zero
// velocity and force.
func NewMolecule(id int64, x, y, z float64) Molecule {
	return Molecule{Xs: [3]float64{x, y, z}, Id: id}
}

func (m *Molecule) String() string {
	return fmt.Sprintf(
		"id: %d dirty: %t pos: %g, %g, %g vel: %g, %g, %g f: %g, %g, %g",
		m.Id, m.Dirty,
		m.Xs[0], m.Xs[1], m.Xs[2],
		m.Vs[0], m.Vs[1], m.Vs[2],
		m.Fs[0], m.Fs[1], m.Fs[2],
	)
}
