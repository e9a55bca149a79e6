// Package linkedcell buckets molecules into a uniform 3D grid of cells so
// that only nearby molecules need to be considered when computing
// interactions.
//
// Every cell owns a fixed-size slice of one dense molecule table. The first
// CellCount(id) slots of a cell are live and the rest are garbage. Within a
// parallel region each cell has at most one writer, with the exception of
// the appends performed by MigrateAll, which reserve their slots atomically.
package linkedcell

import (
	"fmt"
	"log"
	"math"
	"runtime"
	"sync/atomic"

	"github.com/phil-mansfield/linkedcell/geom"
)

// Container owns the molecule table and the live counts of every cell.
type Container struct {
	idx *geom.Indexer

	// table holds NumCells() * capacity molecules, cell-major.
	table    []Molecule
	counts   []int32
	capacity int

	growthFactor float64
	workers      int
	log          bool
	nextId       int64

	cells   []int
	classes [geom.Colors][]int
}

// NewContainer creates a container over a cubic domain of width domainSize
// split into cellsPerAxis^3 cells, each of which can initially hold capacity
// molecules.
func NewContainer(
	cellsPerAxis, capacity int, domainSize float64,
) (*Container, error) {
	if capacity < 0 {
		return nil, fmt.Errorf(
			"Need a non-negative cell capacity, got %d.", capacity,
		)
	}
	idx, err := geom.NewIndexer(domainSize, cellsPerAxis, geom.Strict)
	if err != nil {
		return nil, err
	}

	c := &Container{
		idx:      idx,
		capacity: capacity,
		workers:  runtime.NumCPU(),
	}

	n := c.idx.Volume
	c.table = make([]Molecule, n*capacity)
	c.counts = make([]int32, n)
	c.cells = make([]int, n)
	for i := range c.cells {
		c.cells[i] = i
	}
	c.classes = c.idx.ColorClasses()

	return c, nil
}

// Log turns logging on or off.
func (c *Container) Log(flag bool) { c.log = flag }

// SetWorkers sets the number of goroutines used by parallel operations.
func (c *Container) SetWorkers(n int) {
	if n < 1 {
		n = 1
	}
	c.workers = n
}

// SetGrowthFactor sets the factor MigrateAll grows capacity by when a target
// cell is full. A factor of zero makes MigrateAll return ErrCapacityExceeded
// instead.
func (c *Container) SetGrowthFactor(f float64) { c.growthFactor = f }

// SetPolicy sets how out-of-domain positions are treated.
func (c *Container) SetPolicy(p geom.Policy) { c.idx.Policy = p }

// Indexer returns a copy of the indexer used to assign molecules to cells.
// Changing the copy does not affect c; use Reset to change the domain.
func (c *Container) Indexer() *geom.Indexer {
	idx := *c.idx
	return &idx
}

// NumCells returns the total number of cells.
func (c *Container) NumCells() int { return len(c.counts) }

// Capacity returns the number of slots owned by each cell.
func (c *Container) Capacity() int { return c.capacity }

// Len returns the number of live slots across all cells, tombstones
// included.
func (c *Container) Len() int {
	sum := 0
	for i := range c.counts {
		sum += int(atomic.LoadInt32(&c.counts[i]))
	}
	return sum
}

func (c *Container) checkCell(cell int) error {
	if cell < 0 || cell >= len(c.counts) {
		return fmt.Errorf(
			"%w: cell %d of %d", ErrIndexOutOfRange, cell, len(c.counts),
		)
	}
	return nil
}

func (c *Container) count(cell int) int {
	return int(atomic.LoadInt32(&c.counts[cell]))
}

func (c *Container) setCount(cell, n int) {
	atomic.StoreInt32(&c.counts[cell], int32(n))
}

func (c *Container) slot(cell, i int) *Molecule {
	return &c.table[cell*c.capacity+i]
}

// live returns the live region of a cell. It aliases the table.
func (c *Container) live(cell int) []Molecule {
	base := cell * c.capacity
	return c.table[base : base+c.count(cell)]
}

// CellCount returns the number of live slots in a cell, or 0 if the cell
// does not exist. CellView reports invalid ids as ErrIndexOutOfRange.
func (c *Container) CellCount(cell int) int {
	if c.checkCell(cell) != nil {
		return 0
	}
	return c.count(cell)
}

// CellView returns a view onto the given cell.
func (c *Container) CellView(cell int) (CellView, error) {
	if err := c.checkCell(cell); err != nil {
		return CellView{}, err
	}
	return CellView{c, cell}, nil
}

// MoleculeAt returns the molecule in a live slot. The pointer is invalidated
// by Grow.
func (c *Container) MoleculeAt(cell, i int) (*Molecule, error) {
	if err := c.checkCell(cell); err != nil {
		return nil, err
	}
	if n := c.count(cell); i < 0 || i >= n {
		return nil, fmt.Errorf(
			"%w: slot %d of cell %d, which has %d live molecules",
			ErrIndexOutOfRange, i, cell, n,
		)
	}
	return c.slot(cell, i), nil
}

// reserve claims the next free slot of a cell. Concurrent callers targeting
// the same cell receive distinct slots.
func (c *Container) reserve(cell int) (int, error) {
	for {
		n := atomic.LoadInt32(&c.counts[cell])
		if int(n) >= c.capacity {
			return -1, fmt.Errorf(
				"%w: cell %d already holds %d molecules",
				ErrCapacityExceeded, cell, n,
			)
		}
		if atomic.CompareAndSwapInt32(&c.counts[cell], n, n+1) {
			return int(n), nil
		}
	}
}

// Insert appends a molecule to a cell. The cell is not required to be the
// one the molecule's position maps to.
func (c *Container) Insert(cell int, m Molecule) error {
	if err := c.checkCell(cell); err != nil {
		return err
	}
	i, err := c.reserve(cell)
	if err != nil {
		return err
	}
	*c.slot(cell, i) = m
	return nil
}

// Remove deletes a live slot by moving the cell's last live molecule into
// it. The order of the cell's molecules is not preserved.
func (c *Container) Remove(cell, i int) error {
	if err := c.checkCell(cell); err != nil {
		return err
	}
	n := c.count(cell)
	if i < 0 || i >= n {
		return fmt.Errorf(
			"%w: slot %d of cell %d, which has %d live molecules",
			ErrIndexOutOfRange, i, cell, n,
		)
	}
	c.removeAt(cell, i)
	return nil
}

func (c *Container) removeAt(cell, i int) {
	last := c.count(cell) - 1
	*c.slot(cell, i) = *c.slot(cell, last)
	c.setCount(cell, last)
}

// Tombstone marks a live slot as a hole without moving anything. Holes are
// skipped by migration and removed by Compact.
func (c *Container) Tombstone(cell, i int) error {
	m, err := c.MoleculeAt(cell, i)
	if err != nil {
		return err
	}
	m.Dirty = true
	return nil
}

// Clear empties a cell. Slot contents are left as they are.
func (c *Container) Clear(cell int) error {
	if err := c.checkCell(cell); err != nil {
		return err
	}
	c.setCount(cell, 0)
	return nil
}

// Grow raises the capacity of every cell. Live slots keep their indices and
// contents. Grow must not run concurrently with any other operation.
func (c *Container) Grow(capacity int) error {
	if capacity < c.capacity {
		return fmt.Errorf(
			"%w: requested %d, but cells already hold %d",
			ErrGrowthViolation, capacity, c.capacity,
		)
	} else if capacity == c.capacity {
		return nil
	}

	table := make([]Molecule, len(c.counts)*capacity)
	for cell := range c.counts {
		old := c.table[cell*c.capacity : (cell+1)*c.capacity]
		copy(table[cell*capacity:], old)
	}

	if c.log {
		log.Printf("Growing cell capacity from %d to %d", c.capacity, capacity)
	}

	c.table = table
	c.capacity = capacity
	return nil
}

// GrownCapacity returns the capacity a container with the given capacity
// grows to under a positive growth factor. It is always larger than
// capacity, even for factors at or below 1.
func GrownCapacity(capacity int, factor float64) int {
	grown := int(math.Ceil(float64(capacity) * factor))
	if grown <= capacity {
		grown = capacity + 1
	}
	return grown
}

// Add inserts a molecule into the cell its position maps to.
func (c *Container) Add(m Molecule) error {
	cell, err := c.idx.Index(&m.Xs)
	if err != nil {
		return fmt.Errorf("molecule %d: %w", m.Id, err)
	}
	return c.Insert(cell, m)
}

// Clone returns a deep copy of c.
func (c *Container) Clone() *Container {
	out := *c
	idx := *c.idx
	out.idx = &idx
	out.table = append([]Molecule{}, c.table...)
	out.counts = make([]int32, len(c.counts))
	for i := range c.counts {
		out.counts[i] = atomic.LoadInt32(&c.counts[i])
	}
	return &out
}

// Reset replaces the domain wholesale and rebins every non-Dirty molecule
// into the new grid. Full cells are grown by the growth factor. If any
// molecule cannot be placed, c is left unchanged and the error is returned.
func (c *Container) Reset(cellsPerAxis int, domainSize float64) error {
	next, err := NewContainer(cellsPerAxis, c.capacity, domainSize)
	if err != nil {
		return err
	}
	next.idx.Policy = c.idx.Policy
	next.growthFactor = c.growthFactor
	next.workers = c.workers
	next.log = c.log
	next.nextId = c.nextId

	for cell := range c.counts {
		ms := c.live(cell)
		for i := range ms {
			if ms[i].Dirty {
				continue
			}
			for {
				err := next.Add(ms[i])
				if err == nil {
					break
				}
				if err = next.growOrFail(err); err != nil {
					return err
				}
			}
		}
	}

	if c.log {
		log.Printf(
			"Reset domain to %d cells per axis over width %g",
			cellsPerAxis, domainSize,
		)
	}
	*c = *next
	return nil
}
