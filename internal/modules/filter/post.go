package filter

import (
	"errors"
	"math"

	"github.com/patrickschulz/filter-data/internal/dataset"
)

// Post-pass filter type names.
const (
	TypeRemoveRedundant = "removeRedundant"
	TypeSample          = "sample"
	TypeXRelative       = "xRelative"
)

// DefaultDecimals is the decimal precision used when none is configured.
const DefaultDecimals = 16

// PostModule is a filter that needs the whole dataset, such as deduplication
// against the previous kept row. Post-pass filters look at every row, deleted
// or not, and only ever add deletion marks.
type PostModule interface {
	// Name returns the filter type name.
	Name() string
	// Process marks rows of ds deleted and returns how many rows it newly marked.
	Process(ds *dataset.Dataset) int
}

// ErrInvalidInterval is returned when a sampling interval is not positive.
var ErrInvalidInterval = errors.New("sample interval must be greater than zero")

// markDeleted sets the deletion flag and reports whether it was newly set.
func markDeleted(r *dataset.Row) bool {
	if r.Deleted {
		return false
	}
	r.Deleted = true
	return true
}

// RemoveRedundantModule drops points that repeat the previous kept x or y.
//
// The x pass and the y pass run independently over the same rows, each with
// its own "last kept" row starting at the first row; a row dropped by either
// pass is dropped.
type RemoveRedundantModule struct {
	xDecimals int
	yDecimals int
}

// NewRemoveRedundant returns a post-pass filter comparing x within
// 10^-xDecimals and real y within 10^-yDecimals.
func NewRemoveRedundant(xDecimals, yDecimals int) *RemoveRedundantModule {
	return &RemoveRedundantModule{xDecimals: xDecimals, yDecimals: yDecimals}
}

// Name implements PostModule.
func (m *RemoveRedundantModule) Name() string { return TypeRemoveRedundant }

// Process implements PostModule.
func (m *RemoveRedundantModule) Process(ds *dataset.Dataset) int {
	if ds.Len() == 0 {
		return 0
	}
	marked := 0

	xtol := dataset.Tolerance(m.xDecimals)
	last := ds.At(0)
	for i := 1; i < ds.Len(); i++ {
		r := ds.At(i)
		if math.Abs(r.X-last.X) < xtol {
			if markDeleted(r) {
				marked++
			}
		} else {
			last = r
		}
	}

	ytol := dataset.Tolerance(m.yDecimals)
	last = ds.At(0)
	for i := 1; i < ds.Len(); i++ {
		r := ds.At(i)
		if r.Y.Equal(last.Y, ytol) {
			if markDeleted(r) {
				marked++
			}
		} else {
			last = r
		}
	}
	return marked
}

// SampleModule keeps the first row of every x interval.
//
// Each row with x >= start falls into bucket floor((x-start)/interval). A row
// is kept only if its bucket is above every bucket kept so far; rows before
// start are dropped. Rows are not re-sorted, so x is expected to be
// non-decreasing.
type SampleModule struct {
	start    float64
	interval float64
}

// NewSample returns a sampling post-pass filter.
func NewSample(start, interval float64) (*SampleModule, error) {
	if !(interval > 0) {
		return nil, ErrInvalidInterval
	}
	return &SampleModule{start: start, interval: interval}, nil
}

// Name implements PostModule.
func (m *SampleModule) Name() string { return TypeSample }

// Process implements PostModule.
func (m *SampleModule) Process(ds *dataset.Dataset) int {
	marked := 0
	var highWater int64
	seen := false
	for _, r := range ds.All() {
		if !(r.X >= m.start) {
			if markDeleted(r) {
				marked++
			}
			continue
		}
		bucket := int64(math.Floor((r.X - m.start) / m.interval))
		if !seen || bucket > highWater {
			highWater = bucket
			seen = true
			continue
		}
		if markDeleted(r) {
			marked++
		}
	}
	return marked
}

// XRelativeModule rewrites x relative to the first row still present.
type XRelativeModule struct{}

// NewXRelative returns a post-pass filter that subtracts the first live x.
func NewXRelative() *XRelativeModule {
	return &XRelativeModule{}
}

// Name implements PostModule.
func (m *XRelativeModule) Name() string { return TypeXRelative }

// Process implements PostModule. It never deletes rows.
func (m *XRelativeModule) Process(ds *dataset.Dataset) int {
	var origin float64
	found := false
	for r := range ds.Live() {
		origin = r.X
		found = true
		break
	}
	if !found {
		return 0
	}
	for _, r := range ds.All() {
		r.X -= origin
	}
	return 0
}

// Verify interface compliance at compile time
var (
	_ PostModule = (*RemoveRedundantModule)(nil)
	_ PostModule = (*SampleModule)(nil)
	_ PostModule = (*XRelativeModule)(nil)
)
