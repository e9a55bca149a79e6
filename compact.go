package linkedcell

import (
	"fmt"
	"log"
)

// Compactor repacks the non-Dirty molecules of a slice into its front. The
// Compact function returns the number of live molecules; every slot after
// them is left Dirty. scratch may be used as temporary storage and is
// replaced if it is shorter than ms.
type Compactor struct {
	Name string
	// Ordered is true if the compactor keeps live molecules in their
	// original order.
	Ordered bool
	Compact func(ms []Molecule, scratch []int) int
}

var (
	// OneSweep moves each live molecule down to the earliest known hole in
	// a single pass.
	OneSweep = Compactor{"OneSweep", true, oneSweep}
	// TwoSweep counts the holes before every slot, then shifts each live
	// molecule left by that amount.
	TwoSweep = Compactor{"TwoSweep", true, twoSweep}
	// PullBack collects the indices of live molecules, then pulls the j-th
	// of them into slot j.
	PullBack = Compactor{"PullBack", true, pullBack}
	// TwoPointer fills holes on the left with molecules from the right. It
	// does not keep the original order.
	TwoPointer = Compactor{"TwoPointer", false, twoPointer}

	// Compactors lists every available compactor.
	Compactors = []Compactor{OneSweep, TwoSweep, PullBack, TwoPointer}
)

// CompactorByName returns the compactor with the given name.
func CompactorByName(name string) (Compactor, error) {
	for _, comp := range Compactors {
		if comp.Name == name {
			return comp, nil
		}
	}
	return Compactor{}, fmt.Errorf(
		"Compactor must be one of [OneSweep | TwoSweep | PullBack | "+
			"TwoPointer]. '%s' is not recognized.", name,
	)
}

func scratchFor(scratch []int, n int) []int {
	if len(scratch) < n {
		return make([]int, n)
	}
	return scratch[:n]
}

func oneSweep(ms []Molecule, _ []int) int {
	hole := 0
	for hole < len(ms) && !ms[hole].Dirty {
		hole++
	}

	for j := hole; j < len(ms); j++ {
		if ms[j].Dirty {
			continue
		}
		ms[hole] = ms[j]
		ms[j].Dirty = true
		for hole < j && !ms[hole].Dirty {
			hole++
		}
	}
	return hole
}

func twoSweep(ms []Molecule, shift []int) int {
	shift = scratchFor(shift, len(ms))
	holes := 0
	for j := range ms {
		shift[j] = holes
		if ms[j].Dirty {
			holes++
		}
	}

	for j := range ms {
		if !ms[j].Dirty && shift[j] != 0 {
			ms[j-shift[j]] = ms[j]
			ms[j].Dirty = true
		}
	}
	return len(ms) - holes
}

func pullBack(ms []Molecule, src []int) int {
	src = scratchFor(src, len(ms))
	n := 0
	for j := range ms {
		if !ms[j].Dirty {
			src[n] = j
			n++
		}
	}

	for j := range ms {
		if j < n {
			ms[j] = ms[src[j]]
		} else {
			ms[j].Dirty = true
		}
	}
	return n
}

func twoPointer(ms []Molecule, _ []int) int {
	j, k := 0, len(ms)-1
	for {
		for j < len(ms) && !ms[j].Dirty {
			j++
		}
		for k >= 0 && ms[k].Dirty {
			k--
		}
		if k <= j {
			break
		}
		ms[j] = ms[k]
		ms[k].Dirty = true
	}
	return j
}

// Compact repacks the live region of every cell with comp and shrinks each
// cell's count to the number of non-Dirty molecules. Cells are compacted in
// parallel.
func (c *Container) Compact(comp Compactor) error {
	before := c.Len()
	wss := c.workspaces()
	err := c.forEachCell(c.cells, wss, func(w *workspace, cell int) error {
		if len(w.scratch) < c.capacity {
			w.scratch = make([]int, c.capacity)
		}
		n := comp.Compact(c.live(cell), w.scratch)
		c.setCount(cell, n)
		return nil
	})
	if err != nil {
		return err
	}

	if c.log {
		log.Printf(
			"Compacted with %s: %d slots, %d live molecules",
			comp.Name, before, c.Len(),
		)
	}
	return nil
}

// CheckCompaction returns an error if after, with n live molecules, is not
// a valid compaction of before. The live molecules of both must be the same
// multiset, the first n slots of after must be live, and the rest must be
// Dirty. If ordered is set, the live molecules must also keep their order.
func CheckCompaction(before, after []Molecule, n int, ordered bool) error {
	if len(before) != len(after) {
		return fmt.Errorf(
			"Compaction changed the slice length from %d to %d.",
			len(before), len(after),
		)
	}

	live := []Molecule{}
	for i := range before {
		if !before[i].Dirty {
			live = append(live, before[i])
		}
	}
	if n != len(live) {
		return fmt.Errorf(
			"Compaction reported %d live molecules, but there are %d.",
			n, len(live),
		)
	}

	for i := range after {
		if (i < n) == after[i].Dirty {
			return fmt.Errorf(
				"Slot %d has dirty = %t after compacting to %d molecules.",
				i, after[i].Dirty, n,
			)
		}
	}

	if ordered {
		for i := range live {
			if live[i] != after[i] {
				return fmt.Errorf(
					"Slot %d holds molecule %d, expected molecule %d.",
					i, after[i].Id, live[i].Id,
				)
			}
		}
		return nil
	}

	counts := map[Molecule]int{}
	for i := range live {
		counts[live[i]]++
	}
	for i := 0; i < n; i++ {
		counts[after[i]]--
		if counts[after[i]] < 0 {
			return fmt.Errorf(
				"Molecule %d appears more often after compaction.", after[i].Id,
			)
		}
	}
	return nil
}
