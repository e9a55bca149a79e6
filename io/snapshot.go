package io

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/phil-mansfield/linkedcell"
)

// Snapshot is a structured copy of a container's live contents.
type Snapshot struct {
	DomainSize   float64        `yaml:"domain_size"`
	CellsPerAxis int            `yaml:"cells_per_axis"`
	Capacity     int            `yaml:"capacity"`
	Molecules    int            `yaml:"molecules"`
	Cells        []CellSnapshot `yaml:"cells"`
}

type CellSnapshot struct {
	Id        int                `yaml:"id"`
	Molecules []MoleculeSnapshot `yaml:"molecules,omitempty"`
}

type MoleculeSnapshot struct {
	Id    int64      `yaml:"id"`
	Pos   [3]float64 `yaml:"pos,flow"`
	Vel   [3]float64 `yaml:"vel,flow"`
	Force [3]float64 `yaml:"force,flow"`
	Dirty bool       `yaml:"dirty,omitempty"`
}

// NewSnapshot copies the live contents of c. Empty cells are left out.
func NewSnapshot(c *linkedcell.Container) *Snapshot {
	idx := c.Indexer()
	snap := &Snapshot{
		DomainSize:   idx.DomainSize,
		CellsPerAxis: idx.Length,
		Capacity:     c.Capacity(),
		Molecules:    c.Len(),
	}

	for cell := 0; cell < c.NumCells(); cell++ {
		v, _ := c.CellView(cell)
		if v.Count() == 0 {
			continue
		}
		cs := CellSnapshot{Id: cell}
		for _, m := range v.All() {
			cs.Molecules = append(cs.Molecules, MoleculeSnapshot{
				Id: m.Id, Pos: m.Xs, Vel: m.Vs, Force: m.Fs, Dirty: m.Dirty,
			})
		}
		snap.Cells = append(snap.Cells, cs)
	}
	return snap
}

// WriteSnapshot writes a YAML snapshot of c to fname.
func WriteSnapshot(fname string, c *linkedcell.Container) error {
	f, err := os.Create(fname)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(NewSnapshot(c)); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return f.Close()
}

// ReadSnapshot reads a snapshot written by WriteSnapshot.
func ReadSnapshot(fname string) (*Snapshot, error) {
	data, err := os.ReadFile(fname)
	if err != nil {
		return nil, err
	}
	snap := &Snapshot{}
	if err := yaml.Unmarshal(data, snap); err != nil {
		return nil, err
	}
	return snap, nil
}
