package io

import (
	"fmt"
	"strings"

	"gopkg.in/gcfg.v1"

	"github.com/phil-mansfield/linkedcell"
	"github.com/phil-mansfield/linkedcell/geom"
)

const (
	ExampleSimulateFile = `[Simulate]

#######################
# Required Parameters #
#######################

# Width of the cubic simulation domain. Molecules must have positions in
# [0, DomainSize) along every axis.
DomainSize = 10

# Number of cells along each axis. The domain is split into CellsPerAxis^3
# cells.
CellsPerAxis = 5

# Number of molecules each cell can hold before the container needs to grow.
Capacity = 8

#######################
# Optional Parameters #
#######################

# Factor the cell capacity is multiplied by when migration finds a full
# cell. Set to 0 to fail instead. Default is 2.
# GrowthFactor = 2

# What to do with molecules outside of the domain: Strict fails, Clamp moves
# them into the nearest edge cell. Default is Strict.
# OutOfDomain = Strict

# Seed for random population and displacement. Default is 1984.
# Seed = 1984

# Number of displace/migrate steps to run. Default is 10.
# Steps = 10

# Largest displacement per step and axis, in units of the cell width. Values
# above 1 are allowed, but force a slower sequential pass. Default is 0.5.
# MaxDisplacement = 0.5

# Fraction of molecules deleted after every step and Compactor used to
# repack cells afterwards. One of [OneSweep | TwoSweep | PullBack |
# TwoPointer]. Default is no deletions and OneSweep.
# HoleFraction = 0.01
# Compactor = OneSweep

# Whitespace-separated table with columns "id x y z" to read molecules from
# instead of populating the container randomly.
# Input = path/to/molecules.txt

# YAML file the final state of the container is written to.
# Snapshot = path/to/snapshot.yaml

# Print every cell and its contents after the last step.
# Dump = false

# Output files which are useful for profiling and debugging.
# ProfileFile = prof.out
# LogFile = log.out`

	ExampleBenchmarkFile = `[Benchmark]

#######################
# Optional Parameters #
#######################

# Number of random containers every compactor is timed on. Default is 1000.
# Trials = 1000

# Container sizes are drawn uniformly from [1, MaxCellsPerAxis] cells per
# axis and [2, MaxCapacity] slots per cell. Defaults are 36 and 32.
# MaxCellsPerAxis = 36
# MaxCapacity = 32

# Seed for the random containers. Default is 1984.
# Seed = 1984

# CSV file which per-trial timings are written to.
# Output = path/to/timings.csv

# Image showing timings as a function of container size. Requires python and
# matplotlib.
# PlotFile = path/to/timings.png

# LogFile = log.out`
)

// SimulateConfig configures the [Simulate] mode of the driver.
type SimulateConfig struct {
	// Required
	DomainSize   float64
	CellsPerAxis int
	Capacity     int

	// Optional
	GrowthFactor    float64
	OutOfDomain     string
	Seed            int64
	Steps           int
	MaxDisplacement float64
	HoleFraction    float64
	Compactor       string
	Input           string
	Snapshot        string
	Dump            bool
	ProfileFile     string
	LogFile         string

	// Set by CheckInit
	Policy geom.Policy          `gcfg:"-"`
	Comp   linkedcell.Compactor `gcfg:"-"`
}

type SimulateWrapper struct {
	Simulate SimulateConfig
}

func DefaultSimulateWrapper() *SimulateWrapper {
	wrap := &SimulateWrapper{}
	wrap.Simulate.GrowthFactor = 2
	wrap.Simulate.Seed = 1984
	wrap.Simulate.Steps = 10
	wrap.Simulate.MaxDisplacement = 0.5
	wrap.Simulate.Compactor = "OneSweep"
	return wrap
}

// CheckInit validates the configuration and fills in derived fields.
func (con *SimulateConfig) CheckInit() error {
	if !(con.DomainSize > 0) {
		return fmt.Errorf(
			"Need to specify a positive DomainSize, but it is %g.",
			con.DomainSize,
		)
	} else if con.CellsPerAxis <= 0 {
		return fmt.Errorf(
			"Need to specify a positive CellsPerAxis, but it is %d.",
			con.CellsPerAxis,
		)
	} else if con.Capacity <= 0 {
		return fmt.Errorf(
			"Need to specify a positive Capacity, but it is %d.", con.Capacity,
		)
	}

	if con.GrowthFactor < 0 {
		return fmt.Errorf(
			"GrowthFactor must be non-negative, but is %g.", con.GrowthFactor,
		)
	} else if con.Steps < 0 {
		return fmt.Errorf("Steps must be non-negative, but is %d.", con.Steps)
	} else if con.MaxDisplacement < 0 {
		return fmt.Errorf(
			"MaxDisplacement must be non-negative, but is %g.",
			con.MaxDisplacement,
		)
	} else if con.HoleFraction < 0 || con.HoleFraction > 1 {
		return fmt.Errorf(
			"HoleFraction must be in range [0, 1], but is %g.",
			con.HoleFraction,
		)
	}

	var err error
	con.Policy, err = geom.ParsePolicy(strings.TrimSpace(con.OutOfDomain))
	if err != nil {
		return err
	}
	con.Comp, err = linkedcell.CompactorByName(strings.TrimSpace(con.Compactor))
	return err
}

// ValidLogFile returns true if a log file was requested.
func (con *SimulateConfig) ValidLogFile() bool { return con.LogFile != "" }

// ValidProfileFile returns true if a CPU profile was requested.
func (con *SimulateConfig) ValidProfileFile() bool {
	return con.ProfileFile != ""
}

// ReadSimulateConfig reads and validates a [Simulate] configuration file.
func ReadSimulateConfig(fname string) (*SimulateConfig, error) {
	wrap := DefaultSimulateWrapper()
	if err := gcfg.ReadFileInto(wrap, fname); err != nil {
		return nil, err
	}
	if err := wrap.Simulate.CheckInit(); err != nil {
		return nil, err
	}
	return &wrap.Simulate, nil
}

// BenchmarkConfig configures the [Benchmark] mode of the driver.
type BenchmarkConfig struct {
	Trials          int
	MaxCellsPerAxis int
	MaxCapacity     int
	Seed            int64
	Output          string
	PlotFile        string
	LogFile         string
}

type BenchmarkWrapper struct {
	Benchmark BenchmarkConfig
}

func DefaultBenchmarkWrapper() *BenchmarkWrapper {
	wrap := &BenchmarkWrapper{}
	wrap.Benchmark.Trials = 1000
	wrap.Benchmark.MaxCellsPerAxis = 36
	wrap.Benchmark.MaxCapacity = 32
	wrap.Benchmark.Seed = 1984
	return wrap
}

func (con *BenchmarkConfig) CheckInit() error {
	if con.Trials <= 0 {
		return fmt.Errorf("Trials must be positive, but is %d.", con.Trials)
	} else if con.MaxCellsPerAxis < 1 {
		return fmt.Errorf(
			"MaxCellsPerAxis must be positive, but is %d.", con.MaxCellsPerAxis,
		)
	} else if con.MaxCapacity < 2 {
		return fmt.Errorf(
			"MaxCapacity must be at least 2, but is %d.", con.MaxCapacity,
		)
	}
	return nil
}

// ValidLogFile returns true if a log file was requested.
func (con *BenchmarkConfig) ValidLogFile() bool { return con.LogFile != "" }

// ReadBenchmarkConfig reads and validates a [Benchmark] configuration file.
func ReadBenchmarkConfig(fname string) (*BenchmarkConfig, error) {
	wrap := DefaultBenchmarkWrapper()
	if err := gcfg.ReadFileInto(wrap, fname); err != nil {
		return nil, err
	}
	if err := wrap.Benchmark.CheckInit(); err != nil {
		return nil, err
	}
	return &wrap.Benchmark, nil
}
