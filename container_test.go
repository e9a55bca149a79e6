package linkedcell

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phil-mansfield/linkedcell/geom"
)

func TestNewContainerValidation(t *testing.T) {
	tests := []struct {
		name     string
		n, cap   int
		L        float64
		wantFail bool
	}{
		{"valid", 2, 2, 2, false},
		{"zero capacity", 3, 0, 1, false},
		{"no cells", 0, 2, 2, true},
		{"negative capacity", 2, -1, 2, true},
		{"zero domain", 2, 2, 0, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, err := NewContainer(tc.n, tc.cap, tc.L)
			if tc.wantFail {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.n*tc.n*tc.n, c.NumCells())
			assert.Equal(t, tc.cap, c.Capacity())
			assert.Equal(t, 0, c.Len())
		})
	}
}

func TestInsertCapacityExceeded(t *testing.T) {
	c, err := NewContainer(2, 2, 2)
	require.NoError(t, err)

	require.NoError(t, c.Insert(3, NewMolecule(0, 0.5, 0.5, 0.5)))
	require.NoError(t, c.Insert(3, NewMolecule(1, 0.5, 0.5, 0.5)))
	err = c.Insert(3, NewMolecule(2, 0.5, 0.5, 0.5))
	assert.True(t, errors.Is(err, ErrCapacityExceeded))
	assert.Equal(t, 2, c.CellCount(3))

	require.NoError(t, c.Grow(3))
	assert.NoError(t, c.Insert(3, NewMolecule(2, 0.5, 0.5, 0.5)))
	assert.Equal(t, 3, c.CellCount(3))
}

func TestIndexOutOfRange(t *testing.T) {
	c, err := NewContainer(2, 2, 2)
	require.NoError(t, err)
	require.NoError(t, c.Insert(0, NewMolecule(0, 0.5, 0.5, 0.5)))

	assert.True(t, errors.Is(c.Remove(0, 1), ErrIndexOutOfRange))
	assert.True(t, errors.Is(c.Remove(0, -1), ErrIndexOutOfRange))
	assert.True(t, errors.Is(c.Remove(8, 0), ErrIndexOutOfRange))
	assert.True(t, errors.Is(c.Insert(-1, Molecule{}), ErrIndexOutOfRange))
	_, err = c.MoleculeAt(0, 1)
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
	_, err = c.CellView(9)
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
	assert.Equal(t, 0, c.CellCount(100))
	assert.Equal(t, 0, c.CellCount(-1))
}

// TestInsertRemoveRoundTrip checks a random sequence of inserts and removes
// against a plain slice with the same swap-remove semantics.
func TestInsertRemoveRoundTrip(t *testing.T) {
	gen := rand.New(rand.NewSource(1984))
	c, err := NewContainer(1, 16, 1)
	require.NoError(t, err)

	model := []int64{}
	nextId := int64(0)
	for step := 0; step < 2000; step++ {
		if len(model) < 16 && (len(model) == 0 || gen.Intn(2) == 0) {
			require.NoError(t, c.Insert(0, NewMolecule(nextId, 0.1, 0.1, 0.1)))
			model = append(model, nextId)
			nextId++
		} else {
			i := gen.Intn(len(model))
			require.NoError(t, c.Remove(0, i))
			model[i] = model[len(model)-1]
			model = model[:len(model)-1]
		}

		require.Equal(t, len(model), c.CellCount(0))
		for i, id := range model {
			m, err := c.MoleculeAt(0, i)
			require.NoError(t, err)
			require.Equal(t, id, m.Id)
		}
	}

	for c.CellCount(0) > 0 {
		require.NoError(t, c.Remove(0, gen.Intn(c.CellCount(0))))
	}
	assert.Equal(t, 0, c.Len())
}

func TestGrowSafety(t *testing.T) {
	gen := rand.New(rand.NewSource(7))
	c, err := NewContainer(3, 4, 3)
	require.NoError(t, err)
	c.Populate(gen)

	before := make([][]Molecule, c.NumCells())
	for cell := range before {
		before[cell] = append([]Molecule{}, c.live(cell)...)
	}

	require.NoError(t, c.Grow(10))
	assert.Equal(t, 10, c.Capacity())

	for cell := range before {
		require.Equal(t, len(before[cell]), c.CellCount(cell))
		for i := range before[cell] {
			m, err := c.MoleculeAt(cell, i)
			require.NoError(t, err)
			assert.Equal(t, before[cell][i], *m)
		}
		for c.CellCount(cell) < 10 {
			require.NoError(t, c.Insert(cell, NewMolecule(-1, 0, 0, 0)))
		}
		assert.True(t, errors.Is(
			c.Insert(cell, NewMolecule(-1, 0, 0, 0)), ErrCapacityExceeded,
		))
		assert.Equal(t, before[cell], c.live(cell)[:4])
	}
}

func TestGrowViolation(t *testing.T) {
	c, err := NewContainer(2, 4, 2)
	require.NoError(t, err)
	assert.True(t, errors.Is(c.Grow(3), ErrGrowthViolation))
	assert.NoError(t, c.Grow(4))
	assert.Equal(t, 4, c.Capacity())
}

func TestTombstoneAndClear(t *testing.T) {
	c, err := NewContainer(2, 2, 2)
	require.NoError(t, err)
	require.NoError(t, c.Insert(5, NewMolecule(0, 1.5, 0.5, 1.5)))
	require.NoError(t, c.Insert(5, NewMolecule(1, 1.5, 0.5, 1.5)))

	require.NoError(t, c.Tombstone(5, 0))
	m, err := c.MoleculeAt(5, 0)
	require.NoError(t, err)
	assert.True(t, m.Dirty)
	assert.Equal(t, 2, c.CellCount(5), "tombstones stay live until compaction")
	assert.Error(t, c.Tombstone(5, 2))

	require.NoError(t, c.Clear(5))
	assert.Equal(t, 0, c.CellCount(5))
	assert.Error(t, c.Clear(8))
}

func TestFprint(t *testing.T) {
	c, err := NewContainer(2, 1, 2)
	require.NoError(t, err)
	require.NoError(t, c.Insert(1, NewMolecule(42, 1.5, 0.5, 0.5)))

	out := c.String()
	assert.True(t, strings.HasPrefix(out, "Container contents:\n"))
	assert.Contains(t, out, "Cell #0: 0/1\n")
	assert.Contains(t, out, "Cell #1: 1/1\n    id: 42 dirty: false pos: 1.5, 0.5, 0.5")
	assert.Contains(t, out, "Cell #7: 0/1\n")
	assert.Equal(t, out, c.String())
}

func TestPopulateDeterministic(t *testing.T) {
	c1, err := NewContainer(2, 3, 2)
	require.NoError(t, err)
	c2, err := NewContainer(2, 3, 2)
	require.NoError(t, err)

	c1.Populate(rand.New(rand.NewSource(1984)))
	c2.Populate(rand.New(rand.NewSource(1984)))

	assert.Equal(t, 24, c1.Len())
	assert.Equal(t, c1.String(), c2.String())
	for cell := 0; cell < c1.NumCells(); cell++ {
		for _, m := range c1.live(cell) {
			for k := 0; k < 3; k++ {
				assert.True(t, m.Xs[k] >= 0 && m.Xs[k] < 2)
			}
		}
	}
}

func TestMakeHoles(t *testing.T) {
	gen := rand.New(rand.NewSource(3))
	c, err := NewContainer(2, 10, 2)
	require.NoError(t, err)
	c.Populate(gen)

	holes := c.MakeHoles(gen, 0.25)
	assert.Equal(t, 20, holes)

	dirty := 0
	for cell := 0; cell < c.NumCells(); cell++ {
		for _, m := range c.live(cell) {
			if m.Dirty {
				dirty++
			}
		}
	}
	assert.Equal(t, holes, dirty)

	assert.Equal(t, 0, c.MakeHoles(gen, -0.5))
	assert.Equal(t, 0, c.MakeHoles(gen, 0))
	assert.Equal(t, 60, c.MakeHoles(gen, 7))
}

func TestReflect(t *testing.T) {
	assert.InDelta(t, 0.5, reflect(-0.5, 2), 1e-12)
	assert.InDelta(t, 1.5, reflect(2.5, 2), 1e-12)
	assert.InDelta(t, 1.0, reflect(1.0, 2), 1e-12)
	assert.True(t, reflect(2, 2) < 2)
}

func TestAdd(t *testing.T) {
	c, err := NewContainer(2, 1, 2)
	require.NoError(t, err)

	require.NoError(t, c.Add(NewMolecule(0, 1.5, 0.5, 1.5)))
	assert.Equal(t, 1, c.CellCount(5))
	assert.True(t, errors.Is(c.Add(NewMolecule(1, 1.5, 0.5, 1.5)), ErrCapacityExceeded))
	assert.True(t, errors.Is(c.Add(NewMolecule(2, 2.5, 0.5, 1.5)), ErrInvalidCoordinate))
}

func TestClone(t *testing.T) {
	c, err := NewContainer(2, 2, 2)
	require.NoError(t, err)
	c.Populate(rand.New(rand.NewSource(5)))

	clone := c.Clone()
	assert.Equal(t, c.String(), clone.String())

	require.NoError(t, clone.Remove(0, 0))
	require.NoError(t, clone.Tombstone(1, 0))
	assert.Equal(t, 2, c.CellCount(0))
	m, err := c.MoleculeAt(1, 0)
	require.NoError(t, err)
	assert.False(t, m.Dirty)
}

func TestIndexerCopyCannotRegrid(t *testing.T) {
	c, err := NewContainer(2, 2, 2)
	require.NoError(t, err)

	require.NoError(t, c.Indexer().Reset(4, 4))
	assert.Equal(t, 8, c.NumCells())
	assert.Equal(t, 8, c.Indexer().Volume)
	assert.Equal(t, 2.0, c.Indexer().DomainSize)

	require.NoError(t, c.Insert(0, NewMolecule(0, 1.5, 1.5, 1.5)))
	require.NoError(t, c.MigrateAll())
	assert.Equal(t, 1, c.CellCount(7))
}

func TestReset(t *testing.T) {
	c, err := NewContainer(2, 2, 2)
	require.NoError(t, err)
	c.SetPolicy(geom.Strict)
	require.NoError(t, c.Add(NewMolecule(0, 0.5, 0.5, 0.5)))
	require.NoError(t, c.Add(NewMolecule(1, 1.5, 1.5, 1.5)))
	require.NoError(t, c.Add(NewMolecule(2, 0.25, 0.5, 0.5)))
	require.NoError(t, c.Tombstone(0, 1))

	require.NoError(t, c.Reset(4, 4))
	assert.Equal(t, 64, c.NumCells())
	assert.Equal(t, 4.0, c.Indexer().DomainSize)
	assert.Equal(t, 2, c.Len(), "tombstones are dropped")
	assert.Equal(t, 1, c.CellCount(0))
	assert.Equal(t, 1, c.CellCount(c.Indexer().Idx(1, 1, 1)))

	// Molecule 1 lies outside of the smaller domain.
	err = c.Reset(1, 1)
	assert.True(t, errors.Is(err, ErrInvalidCoordinate))
	assert.Equal(t, 64, c.NumCells())
	assert.Equal(t, 2, c.Len())

	assert.Error(t, c.Reset(0, 4))
	assert.Error(t, c.Reset(4, -1))
	assert.Equal(t, 64, c.NumCells())
}

func TestResetGrows(t *testing.T) {
	c, err := NewContainer(2, 1, 2)
	require.NoError(t, err)
	require.NoError(t, c.Add(NewMolecule(0, 0.5, 0.5, 0.5)))
	require.NoError(t, c.Add(NewMolecule(1, 1.5, 0.5, 0.5)))
	require.NoError(t, c.Add(NewMolecule(2, 0.5, 1.5, 0.5)))

	c.SetGrowthFactor(0)
	err = c.Reset(1, 2)
	assert.True(t, errors.Is(err, ErrCapacityExceeded))
	assert.Equal(t, 8, c.NumCells())

	c.SetGrowthFactor(2)
	require.NoError(t, c.Reset(1, 2))
	assert.Equal(t, 1, c.NumCells())
	assert.Equal(t, 3, c.CellCount(0))
	assert.Equal(t, 4, c.Capacity())
}

func TestGrownCapacity(t *testing.T) {
	assert.Equal(t, 4, GrownCapacity(2, 2))
	assert.Equal(t, 4, GrownCapacity(3, 1.1))
	assert.Equal(t, 3, GrownCapacity(2, 1))
	assert.Equal(t, 3, GrownCapacity(2, 0.5))
	assert.Equal(t, 1, GrownCapacity(0, 2))
}
