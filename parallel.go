package linkedcell

import (
	"sort"
)

// workspace holds the per-worker state of a parallel region.
type workspace struct {
	stats   passStats
	err     error
	errCell int
	scratch []int
}

type cellFunc func(w *workspace, cell int) error

// forEachCell runs work on every cell in cells, spread over the container's
// workers, and returns after all of them have finished. Worker id handles
// cells[id], cells[id + workers], and so on. A worker stops at its first
// error; the error of the lowest failing cell is returned.
func (c *Container) forEachCell(
	cells []int, wss []workspace, work cellFunc,
) error {
	workers := len(wss)
	if workers > len(cells) {
		workers = len(cells)
	}
	if workers == 0 {
		return nil
	}

	out := make(chan int, workers)
	for id := 0; id < workers-1; id++ {
		go c.chanWork(id, workers, cells, &wss[id], work, out)
	}
	c.chanWork(workers-1, workers, cells, &wss[workers-1], work, out)

	for i := 0; i < workers; i++ {
		<-out
	}

	failed := []*workspace{}
	for id := 0; id < workers; id++ {
		if wss[id].err != nil {
			failed = append(failed, &wss[id])
		}
	}
	if len(failed) == 0 {
		return nil
	}
	sort.Slice(failed, func(i, j int) bool {
		return failed[i].errCell < failed[j].errCell
	})
	return failed[0].err
}

func (c *Container) chanWork(
	id, workers int, cells []int, w *workspace, work cellFunc, out chan<- int,
) {
	w.err, w.errCell = nil, -1
	for i := id; i < len(cells); i += workers {
		if err := work(w, cells[i]); err != nil {
			w.err, w.errCell = err, cells[i]
			break
		}
	}
	out <- id
}

// workspaces allocates one workspace per worker.
func (c *Container) workspaces() []workspace {
	return make([]workspace, c.workers)
}
