package io

import (
	"errors"
	"fmt"

	"github.com/phil-mansfield/table"

	"github.com/phil-mansfield/linkedcell"
)

// ReadMolecules reads a whitespace-separated table with the columns
// "id x y z" into a slice of molecules.
func ReadMolecules(fname string) ([]linkedcell.Molecule, error) {
	cols, err := table.ReadTable(fname, []int{0, 1, 2, 3}, nil)
	if err != nil {
		return nil, err
	}

	ids, xs, ys, zs := cols[0], cols[1], cols[2], cols[3]
	ms := make([]linkedcell.Molecule, len(ids))
	for i := range ms {
		ms[i] = linkedcell.NewMolecule(int64(ids[i]), xs[i], ys[i], zs[i])
	}
	return ms, nil
}

// Load adds molecules to the cells their positions map to. Whenever a cell
// is full, the container grows to linkedcell.GrownCapacity and the insertion
// is retried. A growthFactor of zero makes Load fail instead.
func Load(
	c *linkedcell.Container, ms []linkedcell.Molecule, growthFactor float64,
) error {
	for i := range ms {
		for {
			err := c.Add(ms[i])
			if err == nil {
				break
			} else if !isCapacityErr(err) || growthFactor <= 0 {
				return fmt.Errorf("loading molecule %d of %d: %w", i, len(ms), err)
			}

			grown := linkedcell.GrownCapacity(c.Capacity(), growthFactor)
			if err := c.Grow(grown); err != nil {
				return err
			}
		}
	}
	return nil
}

func isCapacityErr(err error) bool {
	return errors.Is(err, linkedcell.ErrCapacityExceeded)
}
