package linkedcell

import (
	"fmt"
	"io"
	"strings"
)

// Fprint writes every cell and its live molecules to w. The format is meant
// for people and may change.
func (c *Container) Fprint(w io.Writer) error {
	_, err := fmt.Fprintln(w, "Container contents:")
	if err != nil {
		return err
	}

	for cell := range c.counts {
		ms := c.live(cell)
		_, err = fmt.Fprintf(
			w, "Cell #%d: %d/%d\n", cell, len(ms), c.capacity,
		)
		if err != nil {
			return err
		}
		for i := range ms {
			if _, err = fmt.Fprintf(w, "    %s\n", ms[i].String()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Container) String() string {
	sb := &strings.Builder{}
	c.Fprint(sb)
	return sb.String()
}
