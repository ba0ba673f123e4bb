package filter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrickschulz/filter-data/internal/dataset"
)

func liveX(ds *dataset.Dataset) []float64 {
	var xs []float64
	for r := range ds.Live() {
		xs = append(xs, r.X)
	}
	return xs
}

func deletedFlags(ds *dataset.Dataset) []bool {
	var out []bool
	for _, r := range ds.All() {
		out = append(out, r.Deleted)
	}
	return out
}

func TestRemoveRedundant_XAndYPassesAreIndependent(t *testing.T) {
	ds := dataset.FromRows(
		dataset.Row{X: 1.0, Y: dataset.Text("a")},
		dataset.Row{X: 1.0, Y: dataset.Text("b")},
		dataset.Row{X: 2.0, Y: dataset.Text("b")},
	)
	marked := NewRemoveRedundant(0, 16).Process(ds)

	assert.Equal(t, 2, marked)
	assert.Equal(t, []bool{false, true, true}, deletedFlags(ds))
	assert.Equal(t, []float64{1.0}, liveX(ds))
}

func TestRemoveRedundant_XTolerance(t *testing.T) {
	ds := dataset.FromRows(
		dataset.Row{X: 1.000, Y: dataset.Real(1)},
		dataset.Row{X: 1.0004, Y: dataset.Real(2)},
		dataset.Row{X: 1.0008, Y: dataset.Real(3)},
		dataset.Row{X: 1.0012, Y: dataset.Real(4)},
	)
	NewRemoveRedundant(3, 16).Process(ds)
	// last kept x only moves when a row is kept
	assert.Equal(t, []bool{false, true, true, false}, deletedFlags(ds))
}

func TestRemoveRedundant_YByVariant(t *testing.T) {
	t.Run("real within tolerance", func(t *testing.T) {
		ds := dataset.FromRows(
			dataset.Row{X: 0, Y: dataset.Real(5.0)},
			dataset.Row{X: 1, Y: dataset.Real(5.01)},
			dataset.Row{X: 2, Y: dataset.Real(5.2)},
		)
		NewRemoveRedundant(16, 1).Process(ds)
		assert.Equal(t, []bool{false, true, false}, deletedFlags(ds))
	})

	t.Run("integer exact", func(t *testing.T) {
		ds := dataset.FromRows(
			dataset.Row{X: 0, Y: dataset.Integer(1)},
			dataset.Row{X: 1, Y: dataset.Integer(1)},
			dataset.Row{X: 2, Y: dataset.Integer(2)},
			dataset.Row{X: 3, Y: dataset.Integer(1)},
		)
		NewRemoveRedundant(16, 0).Process(ds)
		assert.Equal(t, []bool{false, true, false, false}, deletedFlags(ds))
	})
}

func TestRemoveRedundant_Empty(t *testing.T) {
	assert.Equal(t, 0, NewRemoveRedundant(0, 0).Process(dataset.New(0)))
}

func TestSample_Monotonic(t *testing.T) {
	ds := dataset.New(6)
	for _, x := range []float64{0, 5, 9, 10, 15, 21} {
		ds.Append(dataset.Row{X: x, Y: dataset.Real(x)})
	}
	s, err := NewSample(0, 10)
	require.NoError(t, err)

	marked := s.Process(ds)
	assert.Equal(t, 3, marked)
	assert.Equal(t, []float64{0, 10, 21}, liveX(ds))
}

func TestSample_BeforeStartIsDropped(t *testing.T) {
	ds := dataset.FromRows(
		dataset.Row{X: -5}, dataset.Row{X: 2}, dataset.Row{X: 4}, dataset.Row{X: 7}, dataset.Row{X: math.NaN()},
	)
	s, err := NewSample(2, 2.5)
	require.NoError(t, err)
	s.Process(ds)
	assert.Equal(t, []float64{2, 7}, liveX(ds))
}

func TestSample_OutOfOrderUsesHighWaterMark(t *testing.T) {
	ds := dataset.FromRows(dataset.Row{X: 0}, dataset.Row{X: 30}, dataset.Row{X: 10}, dataset.Row{X: 40})
	s, err := NewSample(0, 10)
	require.NoError(t, err)
	s.Process(ds)
	assert.Equal(t, []float64{0, 30, 40}, liveX(ds))
}

func TestNewSample_InvalidInterval(t *testing.T) {
	for _, interval := range []float64{0, -1, math.NaN()} {
		_, err := NewSample(0, interval)
		assert.ErrorIs(t, err, ErrInvalidInterval)
	}
}

func TestPostPasses_AccumulateMarks(t *testing.T) {
	ds := dataset.FromRows(
		dataset.Row{X: 0, Y: dataset.Real(1)},
		dataset.Row{X: 5, Y: dataset.Real(2)},
		dataset.Row{X: 10, Y: dataset.Real(2)},
		dataset.Row{X: 20, Y: dataset.Real(3)},
	)
	s, err := NewSample(0, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Process(ds))
	// y pass compares row 2 against row 1, which sampling already dropped
	assert.Equal(t, 1, NewRemoveRedundant(16, 16).Process(ds))
	assert.Equal(t, []float64{0, 20}, liveX(ds))
}

func TestXRelative(t *testing.T) {
	ds := dataset.FromRows(
		dataset.Row{X: 100, Deleted: true},
		dataset.Row{X: 110},
		dataset.Row{X: 125},
	)
	assert.Equal(t, 0, NewXRelative().Process(ds))
	assert.Equal(t, []float64{0, 15}, liveX(ds))
	assert.Equal(t, -10.0, ds.At(0).X)

	empty := dataset.FromRows(dataset.Row{X: 3, Deleted: true})
	NewXRelative().Process(empty)
	assert.Equal(t, 3.0, empty.At(0).X)
}
