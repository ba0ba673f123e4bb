package dataset

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_ZeroIsReal(t *testing.T) {
	var v Value
	f, ok := v.Real()
	assert.True(t, ok)
	assert.Equal(t, 0.0, f)
	assert.Equal(t, KindReal, v.Kind())
}

func TestValue_Accessors(t *testing.T) {
	i, ok := Integer(7).Integer()
	assert.True(t, ok)
	assert.Equal(t, int64(7), i)

	_, ok = Integer(7).Real()
	assert.False(t, ok)

	s, ok := Text("abc").Text()
	assert.True(t, ok)
	assert.Equal(t, "abc", s)

	f, ok := Integer(3).Float()
	assert.True(t, ok)
	assert.Equal(t, 3.0, f)

	_, ok = Text("3").Float()
	assert.False(t, ok)
}

func TestValue_Equal(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		tol  float64
		want bool
	}{
		{"reals within tolerance", Real(1.0), Real(1.05), 0.1, true},
		{"reals at tolerance boundary", Real(1.0), Real(2.0), 1, false},
		{"reals outside tolerance", Real(1.0), Real(1.2), 0.1, false},
		{"integers equal", Integer(4), Integer(4), 0, true},
		{"integers differ", Integer(4), Integer(5), 10, false},
		{"text equal", Text("a"), Text("a"), 0, true},
		{"text differ", Text("a"), Text("b"), 0, false},
		{"mixed kinds", Real(1), Integer(1), 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Equal(tt.b, tt.tol))
		})
	}
}

func TestValue_Format(t *testing.T) {
	assert.Equal(t, "3.142", Real(3.14159).Format(3))
	assert.Equal(t, "-12", Integer(-12).Format(3))
	assert.Equal(t, "raw text", Text("raw text").Format(3))
	assert.Equal(t, "2", Real(2.4).Format(-1))
}

func TestValue_FormatIsLossy(t *testing.T) {
	s := Real(3.14159).Format(3)
	f, err := strconv.ParseFloat(s, 64)
	require.NoError(t, err)
	assert.Equal(t, 3.142, f)
	assert.NotEqual(t, 3.14159, f)
}

func TestTolerance(t *testing.T) {
	assert.Equal(t, 1.0, Tolerance(0))
	assert.InDelta(t, 0.001, Tolerance(3), 1e-18)
	assert.False(t, math.IsNaN(Tolerance(16)))
}

func TestDataset_AppendAndLive(t *testing.T) {
	d := New(1)
	for i := 0; i < 5; i++ {
		d.Append(Row{X: float64(i), Y: Real(float64(i * i))})
	}
	require.Equal(t, 5, d.Len())

	d.At(1).Deleted = true
	d.At(3).Deleted = true

	var xs []float64
	for r := range d.Live() {
		xs = append(xs, r.X)
	}
	assert.Equal(t, []float64{0, 2, 4}, xs)
	assert.Equal(t, 3, d.LiveLen())

	n := 0
	for i, r := range d.All() {
		assert.Equal(t, float64(i), r.X)
		n++
	}
	assert.Equal(t, 5, n)
}

func TestDataset_LiveEarlyStop(t *testing.T) {
	d := FromRows(Row{X: 1}, Row{X: 2}, Row{X: 3})
	var got []float64
	for r := range d.Live() {
		got = append(got, r.X)
		if len(got) == 2 {
			break
		}
	}
	assert.Equal(t, []float64{1, 2}, got)
}

func TestNew_NegativeCapacity(t *testing.T) {
	d := New(-3)
	assert.Equal(t, 0, d.Len())
}
