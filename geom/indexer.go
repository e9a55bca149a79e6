package geom

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrInvalidCoordinate is returned by Strict indexers for positions which
// lie outside of [0, DomainSize) on some axis.
var ErrInvalidCoordinate = errors.New("coordinate outside of domain")

// Policy determines how an Indexer treats out-of-domain positions.
type Policy int

const (
	// Strict rejects out-of-domain positions with ErrInvalidCoordinate.
	Strict Policy = iota
	// Clamp assigns out-of-domain positions to the nearest edge cell.
	Clamp
)

func (p Policy) String() string {
	switch p {
	case Strict:
		return "Strict"
	case Clamp:
		return "Clamp"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// ParsePolicy converts a configuration string into a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "Strict", "strict":
		return Strict, nil
	case "Clamp", "clamp":
		return Clamp, nil
	}
	return Strict, fmt.Errorf("Unrecognized out-of-domain policy '%s'.", s)
}

// Indexer maps positions within a cubic domain of width DomainSize onto the
// cells of a Grid with CellsPerAxis cells on each side.
type Indexer struct {
	Grid
	DomainSize float64
	Policy     Policy

	// spans[i] is the upper (exclusive) bound of bucket i along any axis.
	spans []float64
}

// NewIndexer returns a new Indexer instance.
func NewIndexer(
	domainSize float64, cellsPerAxis int, policy Policy,
) (*Indexer, error) {
	idx := &Indexer{Policy: policy}
	if err := idx.Reset(domainSize, cellsPerAxis); err != nil {
		return nil, err
	}
	return idx, nil
}

// Reset replaces the domain wholesale. idx is left unchanged if the new
// domain is invalid.
func (idx *Indexer) Reset(domainSize float64, cellsPerAxis int) error {
	if cellsPerAxis <= 0 {
		return fmt.Errorf(
			"Need a positive number of cells per axis, got %d.", cellsPerAxis,
		)
	} else if !(domainSize > 0) || math.IsInf(domainSize, 0) {
		return fmt.Errorf(
			"Need a positive, finite domain size, got %g.", domainSize,
		)
	}

	spans := make([]float64, cellsPerAxis)
	width := domainSize / float64(cellsPerAxis)
	for i := range spans {
		spans[i] = float64(i+1) * width
	}
	// Rounding must not leave a sliver of the domain without a bucket.
	spans[cellsPerAxis-1] = domainSize

	idx.DomainSize = domainSize
	idx.Grid.Init(cellsPerAxis)
	idx.spans = spans
	return nil
}

// CellWidth returns the width of a single cell.
func (idx *Indexer) CellWidth() float64 {
	return idx.DomainSize / float64(idx.Length)
}

// Bucket returns the bucket of a single coordinate along one axis.
func (idx *Indexer) Bucket(x float64) (int, error) {
	if math.IsNaN(x) {
		return -1, fmt.Errorf("%w: %g", ErrInvalidCoordinate, x)
	}
	if x < 0 || x >= idx.DomainSize {
		if idx.Policy == Strict {
			return -1, fmt.Errorf(
				"%w: %g is not in range [0, %g)",
				ErrInvalidCoordinate, x, idx.DomainSize,
			)
		}
		if x < 0 {
			return 0, nil
		}
		return idx.Length - 1, nil
	}

	// First threshold strictly greater than x.
	return sort.Search(len(idx.spans), func(i int) bool {
		return x < idx.spans[i]
	}), nil
}

// Index returns the id of the cell containing pos.
func (idx *Indexer) Index(pos *[3]float64) (int, error) {
	var b [3]int
	for k := 0; k < 3; k++ {
		var err error
		b[k], err = idx.Bucket(pos[k])
		if err != nil {
			return -1, err
		}
	}
	return idx.Idx(b[0], b[1], b[2]), nil
}

// BelongsTo returns true if pos maps onto the given cell. Positions which
// cannot be indexed belong to no cell.
func (idx *Indexer) BelongsTo(pos *[3]float64, cell int) bool {
	i, err := idx.Index(pos)
	return err == nil && i == cell
}
