package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"runtime"
	"runtime/pprof"
	"sort"
	"strings"

	"github.com/phil-mansfield/linkedcell"
	"github.com/phil-mansfield/linkedcell/bench"
	"github.com/phil-mansfield/linkedcell/io"
)

// FileGroup holds the files a run logs and profiles into.
type FileGroup struct {
	log, prof *os.File
}

// Close stops profiling and closes every open file.
func (fg *FileGroup) Close() {
	if fg.prof != nil {
		pprof.StopCPUProfile()
	}
	for _, f := range []*os.File{fg.log, fg.prof} {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil {
			log.Fatal(err.Error())
		}
	}
}

// simulateSetupIO creates the log and profile files requested by a
// [Simulate] config and starts the CPU profile.
func simulateSetupIO(con *io.SimulateConfig) *FileGroup {
	fg := new(FileGroup)
	if con.ValidLogFile() {
		fg.log = createLog(con.LogFile)
	}
	if con.ValidProfileFile() {
		f, err := os.Create(con.ProfileFile)
		if err != nil {
			log.Fatal(err.Error())
		}
		if err = pprof.StartCPUProfile(f); err != nil {
			log.Fatal(err.Error())
		}
		fg.prof = f
	}
	return fg
}

// benchmarkSetupIO creates the log file requested by a [Benchmark] config.
func benchmarkSetupIO(con *io.BenchmarkConfig) *FileGroup {
	fg := new(FileGroup)
	if con.ValidLogFile() {
		fg.log = createLog(con.LogFile)
	}
	return fg
}

// createLog redirects the standard logger into a new file.
func createLog(fname string) *os.File {
	f, err := os.Create(fname)
	if err != nil {
		log.Fatal(err.Error())
	}
	log.SetOutput(f)
	return f
}

func main() {
	var (
		simulate, benchmark, exampleConfig string
		threads                            int
	)
	vars := map[string]*string{
		"Simulate":      &simulate,
		"Benchmark":     &benchmark,
		"ExampleConfig": &exampleConfig,
	}

	flag.IntVar(
		&threads, "Threads", runtime.NumCPU(),
		"Number of threads used. Default is the number of logical cores.",
	)
	flag.StringVar(
		&simulate, "Simulate", "",
		"Configuration file for [Simulate] mode.",
	)
	flag.StringVar(
		&benchmark, "Benchmark", "",
		"Configuration file for [Benchmark] mode.",
	)
	flag.StringVar(
		&exampleConfig,
		"ExampleConfig", "", "Prints an example configuration file of the "+
			"specified type to stdout. Accepted arguments are 'Simulate' "+
			"and 'Benchmark'.",
	)

	flag.Parse()

	modeName, err := getModeName(vars)
	if err != nil {
		log.Fatal(err.Error())
	}

	switch modeName {
	case "Simulate":
		con, err := io.ReadSimulateConfig(simulate)
		if err != nil {
			log.Fatal(err.Error())
		}
		fg := simulateSetupIO(con)
		defer fg.Close()

		if err := simulateMain(con, threads); err != nil {
			log.Fatal(err.Error())
		}

	case "Benchmark":
		con, err := io.ReadBenchmarkConfig(benchmark)
		if err != nil {
			log.Fatal(err.Error())
		}
		fg := benchmarkSetupIO(con)
		defer fg.Close()

		if err := benchmarkMain(con, threads); err != nil {
			log.Fatal(err.Error())
		}

	case "ExampleConfig":
		switch exampleConfig {
		case "Simulate":
			fmt.Println(io.ExampleSimulateFile)
		case "Benchmark":
			fmt.Println(io.ExampleBenchmarkFile)
		default:
			log.Fatal(
				"Unrecognized 'ExampleConfig' argument. Only recognized " +
					"arguments are 'Simulate' and 'Benchmark'.",
			)
		}
	default:
		panic("Impossible")
	}
}

// getModeName returns the single mode flag which was set on the command
// line. Setting zero or several modes is an error.
func getModeName(vars map[string]*string) (string, error) {
	set := []string{}
	for name, val := range vars {
		if *val != "" {
			set = append(set, name)
		}
	}
	sort.Strings(set)

	switch len(set) {
	case 0:
		return "", fmt.Errorf(
			"No mode was given. Use one of -Simulate, -Benchmark, or " +
				"-ExampleConfig.",
		)
	case 1:
		return set[0], nil
	}
	return "", fmt.Errorf(
		"Modes %s were all given, but only one can be run at a time.",
		strings.Join(set, ", "),
	)
}

// simulateMain fills a container, then repeatedly displaces its molecules,
// migrates them back into place, and optionally deletes and compacts.
func simulateMain(con *io.SimulateConfig, threads int) error {
	gen := rand.New(rand.NewSource(con.Seed))

	c, err := linkedcell.NewContainer(
		con.CellsPerAxis, con.Capacity, con.DomainSize,
	)
	if err != nil {
		return err
	}
	c.Log(true)
	c.SetWorkers(threads)
	c.SetGrowthFactor(con.GrowthFactor)
	c.SetPolicy(con.Policy)

	if con.Input != "" {
		ms, err := io.ReadMolecules(con.Input)
		if err != nil {
			return err
		}
		if err = io.Load(c, ms, con.GrowthFactor); err != nil {
			return err
		}
		log.Printf("Read %d molecules from %s", len(ms), con.Input)
	} else {
		c.Populate(gen)
		log.Printf("Populated %d cells with %d molecules", c.NumCells(), c.Len())
		if err = c.MigrateAll(); err != nil {
			return err
		}
	}

	step := con.MaxDisplacement * c.Indexer().CellWidth()
	for i := 0; i < con.Steps; i++ {
		c.Displace(gen, step)
		if err = c.MigrateAll(); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}

		if con.HoleFraction > 0 {
			holes := c.MakeHoles(gen, con.HoleFraction)
			if err = c.Compact(con.Comp); err != nil {
				return err
			}
			log.Printf("Step %d: deleted %d molecules", i, holes)
		}
	}

	if con.Dump {
		if err = c.Fprint(os.Stdout); err != nil {
			return err
		}
	}
	if con.Snapshot != "" {
		log.Printf("Writing snapshot to %s", con.Snapshot)
		return io.WriteSnapshot(con.Snapshot, c)
	}
	return nil
}

// benchmarkMain times every compactor on random containers.
func benchmarkMain(con *io.BenchmarkConfig, threads int) error {
	gen := rand.New(rand.NewSource(con.Seed))
	recs, err := bench.Run(
		gen, con.Trials, con.MaxCellsPerAxis, con.MaxCapacity, threads, true,
	)
	if err != nil {
		return err
	}

	for _, sum := range bench.Summarize(recs) {
		fmt.Println(sum)
	}

	if con.Output != "" {
		log.Printf("Writing timings to %s", con.Output)
		if err = bench.WriteRecords(con.Output, recs); err != nil {
			return err
		}
	}
	if con.PlotFile != "" {
		bench.Plot(con.PlotFile, recs)
	}
	return nil
}
