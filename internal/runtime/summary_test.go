package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrickschulz/filter-data/internal/dataset"
)

func TestSummarize(t *testing.T) {
	ds := dataset.FromRows(
		dataset.Row{X: 3, Y: dataset.Real(1)},
		dataset.Row{X: -2, Y: dataset.Integer(4)},
		dataset.Row{X: 10, Y: dataset.Real(100), Deleted: true},
		dataset.Row{X: 1, Y: dataset.Text("n/a")},
	)

	s := Summarize(ds)
	require.NotNil(t, s)
	assert.Equal(t, -2.0, s.XMin)
	assert.Equal(t, 3.0, s.XMax)
	assert.Equal(t, 2, s.NumericY)
	assert.Equal(t, 2.5, s.YMean)
}

func TestSummarize_TextOnly(t *testing.T) {
	s := Summarize(dataset.FromRows(dataset.Row{X: 1, Y: dataset.Text("a")}))
	require.NotNil(t, s)
	assert.Zero(t, s.NumericY)
	assert.Zero(t, s.YMean)
}

func TestSummarize_NoLiveRows(t *testing.T) {
	assert.Nil(t, Summarize(nil), "nil dataset")
	assert.Nil(t, Summarize(dataset.New(0)), "empty dataset")
	assert.Nil(t, Summarize(dataset.FromRows(dataset.Row{X: 1, Y: dataset.Real(1), Deleted: true})), "every row deleted")
}
