// Package bench times the compactors of package linkedcell against each
// other on randomly generated containers.
package bench

import (
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/gocarina/gocsv"
	plt "github.com/phil-mansfield/pyplot"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/phil-mansfield/linkedcell"
)

// Record is the timing of one compactor on one container.
type Record struct {
	Trial     int     `csv:"trial"`
	Compactor string  `csv:"compactor"`
	Cells     int     `csv:"cells"`
	Capacity  int     `csv:"capacity"`
	Holes     int     `csv:"holes"`
	Micros    float64 `csv:"micros"`
}

// Summary aggregates the records of a single compactor.
type Summary struct {
	Compactor    string
	Trials       int
	Total        float64
	Mean, StdDev float64
}

// Trial builds a random container, punches a random fraction of holes into
// it, and times every compactor on its own copy of the result. Each result
// is checked against the shared pre-image.
func Trial(
	gen *rand.Rand, trial, maxCellsPerAxis, maxCapacity, workers int,
) ([]*Record, error) {
	n := gen.Intn(maxCellsPerAxis) + 1
	capacity := gen.Intn(maxCapacity-1) + 2

	pre, err := linkedcell.NewContainer(n, capacity, 1)
	if err != nil {
		return nil, err
	}
	pre.SetWorkers(workers)
	pre.Populate(gen)
	holes := pre.MakeHoles(gen, gen.Float64())

	recs := make([]*Record, 0, len(linkedcell.Compactors))
	for _, comp := range linkedcell.Compactors {
		c := pre.Clone()

		t0 := time.Now()
		if err := c.Compact(comp); err != nil {
			return nil, err
		}
		dt := time.Since(t0)

		if err := check(pre, c, comp); err != nil {
			return nil, fmt.Errorf("trial %d: %w", trial, err)
		}

		recs = append(recs, &Record{
			Trial:     trial,
			Compactor: comp.Name,
			Cells:     pre.NumCells(),
			Capacity:  capacity,
			Holes:     holes,
			Micros:    float64(dt.Nanoseconds()) / 1e3,
		})
	}
	return recs, nil
}

func check(pre, c *linkedcell.Container, comp linkedcell.Compactor) error {
	for cell := 0; cell < pre.NumCells(); cell++ {
		before, _ := pre.CellView(cell)
		after, _ := c.CellView(cell)
		// Reslice past the new count to see the holes left behind.
		region := after.Molecules()[:before.Count()]
		err := linkedcell.CheckCompaction(
			before.Molecules(), region, after.Count(), comp.Ordered,
		)
		if err != nil {
			return fmt.Errorf("%s, cell %d: %w", comp.Name, cell, err)
		}
	}
	return nil
}

// Run performs the given number of trials.
func Run(
	gen *rand.Rand, trials, maxCellsPerAxis, maxCapacity, workers int,
	logFlag bool,
) ([]*Record, error) {
	recs := []*Record{}
	for i := 0; i < trials; i++ {
		if logFlag && i%100 == 0 {
			log.Printf("Finished %d/%d trials", i, trials)
		}
		trialRecs, err := Trial(gen, i, maxCellsPerAxis, maxCapacity, workers)
		if err != nil {
			return nil, err
		}
		recs = append(recs, trialRecs...)
	}
	return recs, nil
}

// Summarize computes timing statistics for each compactor, in the order of
// linkedcell.Compactors.
func Summarize(recs []*Record) []Summary {
	out := []Summary{}
	for _, comp := range linkedcell.Compactors {
		ts := timings(recs, comp.Name)
		if len(ts) == 0 {
			continue
		}
		sum := Summary{
			Compactor: comp.Name,
			Trials:    len(ts),
			Total:     floats.Sum(ts),
			Mean:      stat.Mean(ts, nil),
		}
		if len(ts) > 1 {
			sum.StdDev = stat.StdDev(ts, nil)
		}
		out = append(out, sum)
	}
	return out
}

func timings(recs []*Record, name string) []float64 {
	ts := []float64{}
	for _, r := range recs {
		if r.Compactor == name {
			ts = append(ts, r.Micros)
		}
	}
	return ts
}

func (s Summary) String() string {
	return fmt.Sprintf(
		"%-10s trials: %5d total: %12.1f us mean: %10.2f us std: %10.2f us",
		s.Compactor, s.Trials, s.Total, s.Mean, s.StdDev,
	)
}

// WriteRecords writes records to a CSV file.
func WriteRecords(fname string, recs []*Record) error {
	f, err := os.Create(fname)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := gocsv.Marshal(recs, f); err != nil {
		return err
	}
	return f.Close()
}

// ReadRecords reads records written by WriteRecords.
func ReadRecords(fname string) ([]*Record, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	recs := []*Record{}
	if err := gocsv.UnmarshalFile(f, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

var plotStyles = map[string]string{
	linkedcell.OneSweep.Name:   "ob",
	linkedcell.TwoSweep.Name:   "og",
	linkedcell.PullBack.Name:   "or",
	linkedcell.TwoPointer.Name: "ok",
}

// Plot draws compaction time against container size for every compactor and
// saves the figure to fname. This runs python.
func Plot(fname string, recs []*Record) {
	plt.Reset()
	plt.Figure(plt.FigSize(8, 8))

	for _, comp := range linkedcell.Compactors {
		xs, ys := []float64{}, []float64{}
		for _, r := range recs {
			if r.Compactor == comp.Name {
				xs = append(xs, float64(r.Cells*r.Capacity))
				ys = append(ys, r.Micros)
			}
		}
		if len(xs) > 0 {
			plt.Plot(xs, ys, plotStyles[comp.Name])
		}
	}

	plt.Title("Compaction time (blue: OneSweep, green: TwoSweep, " +
		"red: PullBack, black: TwoPointer)")
	plt.XLabel("Slots", plt.FontSize(16))
	plt.YLabel(`Time [$\mu$s]`, plt.FontSize(16))
	plt.XScale("log")
	plt.YScale("log")
	plt.SaveFig(fname)
	plt.Execute()
}
