package linkedcell

import (
	"iter"
)

// CellView is a lightweight handle onto one cell of a Container. It holds
// no storage of its own and stays valid across Grow.
//
// A cell must not be modified while it is being traversed, through this view
// or any other.
type CellView struct {
	c  *Container
	id int
}

// ID returns the id of the viewed cell.
func (v CellView) ID() int { return v.id }

// Count returns the number of live slots in the cell.
func (v CellView) Count() int { return v.c.count(v.id) }

// Capacity returns the number of slots owned by the cell.
func (v CellView) Capacity() int { return v.c.capacity }

// Insert appends a molecule to the cell.
func (v CellView) Insert(m Molecule) error { return v.c.Insert(v.id, m) }

// Remove swap-removes the molecule in slot i.
func (v CellView) Remove(i int) error { return v.c.Remove(v.id, i) }

// Clear empties the cell.
func (v CellView) Clear() { v.c.setCount(v.id, 0) }

// At returns the molecule in slot i.
func (v CellView) At(i int) (*Molecule, error) { return v.c.MoleculeAt(v.id, i) }

// Molecules returns the live slots of the cell. The slice aliases the
// container and is invalidated by Grow.
func (v CellView) Molecules() []Molecule { return v.c.live(v.id) }

// Begin returns a cursor at the cell's first live slot.
func (v CellView) Begin() Cursor { return Cursor{v, 0} }

// Last returns a cursor at the cell's last live slot.
func (v CellView) Last() Cursor { return Cursor{v, v.Count() - 1} }

// All iterates over the live slots in increasing order.
func (v CellView) All() iter.Seq2[int, *Molecule] {
	return func(yield func(int, *Molecule) bool) {
		for cur := v.Begin(); cur.Valid(); cur.Next() {
			if !yield(cur.Index(), cur.Molecule()) {
				return
			}
		}
	}
}

// Backward iterates over the live slots in decreasing order.
func (v CellView) Backward() iter.Seq2[int, *Molecule] {
	return func(yield func(int, *Molecule) bool) {
		for cur := v.Last(); cur.Valid(); cur.Prev() {
			if !yield(cur.Index(), cur.Molecule()) {
				return
			}
		}
	}
}

// Cursor is a bidirectional position within a cell's live slots. It stores
// an index rather than a pointer, so it survives Grow.
type Cursor struct {
	v CellView
	i int
}

// Valid returns true if the cursor points at a live slot.
func (cur *Cursor) Valid() bool { return cur.i >= 0 && cur.i < cur.v.Count() }

// Next advances the cursor.
func (cur *Cursor) Next() { cur.i++ }

// Prev moves the cursor back one slot.
func (cur *Cursor) Prev() { cur.i-- }

// Index returns the slot the cursor points at.
func (cur *Cursor) Index() int { return cur.i }

// Molecule returns the molecule under the cursor. The cursor must be Valid.
func (cur *Cursor) Molecule() *Molecule { return cur.v.c.slot(cur.v.id, cur.i) }
