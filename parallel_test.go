package linkedcell

import (
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForEachCellLowestError(t *testing.T) {
	c, err := NewContainer(4, 1, 4)
	require.NoError(t, err)
	errBad := errors.New("bad cell")

	tests := []struct {
		name    string
		workers int
		failing []int
		want    int
	}{
		{"different workers", 4, []int{11, 5}, 5},
		{"same worker", 4, []int{13, 9}, 9},
		{"many failures", 8, []int{60, 3, 17, 40}, 3},
		{"one worker", 1, []int{30, 20}, 20},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			bad := map[int]bool{}
			for _, cell := range tc.failing {
				bad[cell] = true
			}

			for trial := 0; trial < 20; trial++ {
				visited := int32(0)
				err := c.forEachCell(
					c.cells, make([]workspace, tc.workers),
					func(w *workspace, cell int) error {
						atomic.AddInt32(&visited, 1)
						if bad[cell] {
							return fmt.Errorf("cell %d: %w", cell, errBad)
						}
						return nil
					},
				)
				require.True(t, errors.Is(err, errBad))
				assert.EqualError(t, err, fmt.Sprintf("cell %d: bad cell", tc.want))
				assert.True(t, int(visited) <= c.NumCells())
			}
		})
	}
}

func TestForEachCellVisitsAll(t *testing.T) {
	c, err := NewContainer(3, 1, 3)
	require.NoError(t, err)

	for _, workers := range []int{1, 2, 5, 64} {
		seen := make([]int32, c.NumCells())
		err := c.forEachCell(
			c.cells, make([]workspace, workers),
			func(w *workspace, cell int) error {
				atomic.AddInt32(&seen[cell], 1)
				return nil
			},
		)
		require.NoError(t, err)
		for cell := range seen {
			assert.Equal(t, int32(1), seen[cell], "cell %d", cell)
		}
	}
}
