package dataset

import "iter"

// Row is one parsed (x, y) observation.
// Deleted rows stay in the Dataset; output skips them.
type Row struct {
	X       float64
	Y       Value
	Deleted bool
}

// Dataset is the ordered sequence of rows accepted by the filter chain.
// Rows are appended one at a time and never removed.
type Dataset struct {
	rows []Row
}

// New returns an empty Dataset with room for capacity rows.
func New(capacity int) *Dataset {
	if capacity < 0 {
		capacity = 0
	}
	return &Dataset{rows: make([]Row, 0, capacity)}
}

// FromRows returns a Dataset backed by a copy of rows.
func FromRows(rows ...Row) *Dataset {
	d := New(len(rows))
	d.rows = append(d.rows, rows...)
	return d
}

// Append adds a row at the end of the sequence.
func (d *Dataset) Append(r Row) {
	d.rows = append(d.rows, r)
}

// Len returns the number of rows, deleted ones included.
func (d *Dataset) Len() int {
	return len(d.rows)
}

// At returns a pointer to row i. The pointer is invalidated by the next Append.
func (d *Dataset) At(i int) *Row {
	return &d.rows[i]
}

// LiveLen returns the number of rows not marked deleted.
func (d *Dataset) LiveLen() int {
	n := 0
	for i := range d.rows {
		if !d.rows[i].Deleted {
			n++
		}
	}
	return n
}

// All yields every row with its index, deleted ones included.
func (d *Dataset) All() iter.Seq2[int, *Row] {
	return func(yield func(int, *Row) bool) {
		for i := range d.rows {
			if !yield(i, &d.rows[i]) {
				return
			}
		}
	}
}

// Live yields the rows not marked deleted, in order.
func (d *Dataset) Live() iter.Seq[*Row] {
	return func(yield func(*Row) bool) {
		for i := range d.rows {
			if d.rows[i].Deleted {
				continue
			}
			if !yield(&d.rows[i]) {
				return
			}
		}
	}
}
