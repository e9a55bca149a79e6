package linkedcell

import (
	"errors"

	"github.com/phil-mansfield/linkedcell/geom"
)

var (
	// ErrCapacityExceeded is returned when a molecule is added to a full
	// cell. Callers can Grow the container and retry.
	ErrCapacityExceeded = errors.New("cell capacity exceeded")
	// ErrIndexOutOfRange is returned for cell ids or slots which do not
	// refer to live storage.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrGrowthViolation is returned when Grow is asked to shrink the
	// container.
	ErrGrowthViolation = errors.New("capacity can only grow")
	// ErrInvalidCoordinate is returned when a position lies outside of the
	// domain and the container's indexer is Strict.
	ErrInvalidCoordinate = geom.ErrInvalidCoordinate
)
