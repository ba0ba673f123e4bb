package runtime

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/patrickschulz/filter-data/internal/dataset"
	"github.com/patrickschulz/filter-data/pkg/connector"
)

// Summarize describes the live rows of ds: the x range and the mean of the
// numeric y values. Text values do not count toward the mean. It returns nil
// when no row is live.
func Summarize(ds *dataset.Dataset) *connector.Summary {
	if ds == nil {
		return nil
	}

	xs := make([]float64, 0, ds.Len())
	ys := make([]float64, 0, ds.Len())
	for row := range ds.Live() {
		xs = append(xs, row.X)
		if y, ok := row.Y.Float(); ok {
			ys = append(ys, y)
		}
	}
	if len(xs) == 0 {
		return nil
	}

	summary := &connector.Summary{
		XMin:     floats.Min(xs),
		XMax:     floats.Max(xs),
		NumericY: len(ys),
	}
	if len(ys) > 0 {
		summary.YMean = stat.Mean(ys, nil)
	}
	return summary
}
