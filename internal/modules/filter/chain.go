package filter

import (
	"github.com/patrickschulz/filter-data/internal/dataset"
)

// Chain applies row filters in registration order.
//
// Transform and stateful filters run on every row, even after an earlier
// filter rejected it, so scaling, shifting and counters behave the same
// whether or not the row survives. Predicates are pure and are skipped once the
// row is rejected. A row is accepted only if every filter that ran accepted it.
type Chain struct {
	modules  []Module
	accepted []int
	rejected []int
}

// Stat reports how many rows a chain entry accepted and rejected.
type Stat struct {
	Index    int
	Name     string
	Accepted int
	Rejected int
	Skipped  int
}

// NewChain returns a chain running modules in the given order.
func NewChain(modules ...Module) *Chain {
	c := &Chain{}
	for _, m := range modules {
		c.Append(m)
	}
	return c
}

// Append adds m at the end of the chain. Nil modules are ignored.
func (c *Chain) Append(m Module) {
	if m == nil {
		return
	}
	c.modules = append(c.modules, m)
	c.accepted = append(c.accepted, 0)
	c.rejected = append(c.rejected, 0)
}

// Len returns the number of filters in the chain.
func (c *Chain) Len() int {
	return len(c.modules)
}

// Modules returns the filters in application order.
func (c *Chain) Modules() []Module {
	out := make([]Module, len(c.modules))
	copy(out, c.modules)
	return out
}

// Apply runs the chain over row and reports whether the row is accepted.
func (c *Chain) Apply(row *dataset.Row) bool {
	accept := true
	for i, m := range c.modules {
		if !accept && m.Kind() == KindPredicate {
			continue
		}
		if m.Apply(row) {
			c.accepted[i]++
		} else {
			c.rejected[i]++
			accept = false
		}
	}
	return accept
}

// Stats returns per-filter counters. rows is the number of rows the chain saw,
// used to derive how many rows skipped each predicate.
func (c *Chain) Stats(rows int) []Stat {
	out := make([]Stat, len(c.modules))
	for i, m := range c.modules {
		out[i] = Stat{
			Index:    i,
			Name:     m.Name(),
			Accepted: c.accepted[i],
			Rejected: c.rejected[i],
			Skipped:  rows - c.accepted[i] - c.rejected[i],
		}
	}
	return out
}
