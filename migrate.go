package linkedcell

import (
	"errors"
	"fmt"
	"log"

	"github.com/phil-mansfield/linkedcell/geom"
)

// passStats counts what happened during one migration pass.
type passStats struct {
	moved, deferred, grows int
}

func (st *passStats) add(other passStats) {
	st.moved += other.moved
	st.deferred += other.deferred
	st.grows += other.grows
}

// Migrate moves every live molecule of a cell which no longer belongs there
// into the cell its position maps to. It is meant for sequential use: it
// may write into any cell of the container.
func (c *Container) Migrate(cell int) error {
	if err := c.checkCell(cell); err != nil {
		return err
	}
	_, err := c.migrateCell(cell, true)
	return err
}

// migrateCell scans the live slots of a cell and moves molecules which have
// left it. Unless far is set, molecules whose target is not adjacent to the
// cell are left in place and counted as deferred. A molecule which cannot
// be moved because its target is full stays where it is.
func (c *Container) migrateCell(cell int, far bool) (passStats, error) {
	st := passStats{}
	for i := 0; i < c.count(cell); {
		m := c.slot(cell, i)
		if m.Dirty {
			i++
			continue
		}

		target, err := c.idx.Index(&m.Xs)
		if err != nil {
			return st, fmt.Errorf("molecule %d in cell %d: %w", m.Id, cell, err)
		}
		if target == cell {
			i++
			continue
		} else if !far && !c.idx.Adjacent(cell, target) {
			st.deferred++
			i++
			continue
		}

		j, err := c.reserve(target)
		if err != nil {
			return st, fmt.Errorf(
				"moving molecule %d out of cell %d: %w", m.Id, cell, err,
			)
		}
		*c.slot(target, j) = *m
		// The molecule swapped into slot i hasn't been looked at yet.
		c.removeAt(cell, i)
		st.moved++
	}
	return st, nil
}

// MigrateAll restores the invariant that every live molecule is stored in
// the cell its position maps to.
//
// Cells are processed in eight rounds, one per geom.Grid color. Cells of one
// color are never adjacent, so each round migrates all of its cells in
// parallel, and every round finishes before the next one starts. Molecules
// which moved further than one cell are left for a final sequential pass.
//
// If a target cell is full, the round is finished, the container is grown
// by its growth factor, and the round is repeated. With a growth factor of
// zero, ErrCapacityExceeded is returned instead. Errors stop MigrateAll
// before the next round; molecules which were not moved stay in their old
// cells, so the container remains usable.
func (c *Container) MigrateAll() error {
	total := passStats{}
	wss := c.workspaces()

	for color := 0; color < geom.Colors; color++ {
		for {
			for i := range wss {
				wss[i].stats = passStats{}
			}
			err := c.forEachCell(
				c.classes[color], wss,
				func(w *workspace, cell int) error {
					st, err := c.migrateCell(cell, false)
					w.stats.add(st)
					return err
				},
			)

			round := passStats{}
			for i := range wss {
				round.add(wss[i].stats)
			}
			total.moved += round.moved

			if err == nil {
				total.deferred += round.deferred
				break
			}
			if err = c.growOrFail(err); err != nil {
				return err
			}
			total.grows++
		}
	}

	if total.deferred > 0 {
		for _, cell := range c.cells {
			for {
				st, err := c.migrateCell(cell, true)
				total.moved += st.moved
				if err == nil {
					break
				}
				if err = c.growOrFail(err); err != nil {
					return err
				}
				total.grows++
			}
		}
	}

	if c.log {
		log.Printf(
			"Migrated %d molecules, %d of them over long distances, "+
				"with %d capacity increases",
			total.moved, total.deferred, total.grows,
		)
	}
	return nil
}

// growOrFail grows the container if err is a capacity error and growth is
// enabled. Otherwise it returns err.
func (c *Container) growOrFail(err error) error {
	if !errors.Is(err, ErrCapacityExceeded) || c.growthFactor <= 0 {
		return err
	}
	return c.Grow(GrownCapacity(c.capacity, c.growthFactor))
}
