// Package filter provides the row-level filters, the filter chain that applies
// them, and the dataset-level post-pass filters.
//
// A row filter is a named function over a *dataset.Row that may mutate the row
// and reports whether the row is accepted. Arguments and private state (such
// as the counter of EveryNth) are captured when the filter is constructed, so
// every filter has the same Apply signature regardless of how many parameters
// it was built from.
package filter

import (
	"github.com/patrickschulz/filter-data/internal/dataset"
)

// Kind classifies a row filter for the chain's evaluation rules.
type Kind int

const (
	// KindTransform filters mutate the row and always accept it.
	KindTransform Kind = iota
	// KindPredicate filters are pure: they never mutate and only accept or reject.
	KindPredicate
	// KindStateful filters keep private state that advances on every row.
	KindStateful
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindTransform:
		return "transform"
	case KindPredicate:
		return "predicate"
	case KindStateful:
		return "stateful"
	default:
		return "unknown"
	}
}

// Module represents a row-level filter.
type Module interface {
	// Name returns the filter type name (e.g. "scaleX").
	Name() string
	// Kind returns the evaluation class of the filter.
	Kind() Kind
	// Apply runs the filter on row, possibly mutating it, and reports acceptance.
	Apply(row *dataset.Row) bool
}

// Func is the signature shared by all row filters once their arguments are bound.
type Func func(row *dataset.Row) bool

// funcModule adapts a bound Func to Module.
type funcModule struct {
	name string
	kind Kind
	fn   Func
}

// New returns a Module named name that runs fn.
func New(name string, kind Kind, fn Func) Module {
	return &funcModule{name: name, kind: kind, fn: fn}
}

func (m *funcModule) Name() string { return m.name }

func (m *funcModule) Kind() Kind { return m.kind }

func (m *funcModule) Apply(row *dataset.Row) bool { return m.fn(row) }

// Verify interface compliance at compile time
var _ Module = (*funcModule)(nil)
