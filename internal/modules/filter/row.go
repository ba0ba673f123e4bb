package filter

import (
	"math"
	"strconv"
	"strings"

	"github.com/patrickschulz/filter-data/internal/dataset"
	"github.com/patrickschulz/filter-data/internal/fields"
)

// Row filter type names, as used in pipeline files and the registry.
const (
	TypeScaleX     = "scaleX"
	TypeScaleY     = "scaleY"
	TypeShiftX     = "shiftX"
	TypeShiftY     = "shiftY"
	TypeXMin       = "xMin"
	TypeXMax       = "xMax"
	TypeYIsInteger = "yIsInteger"
	TypeEveryNth   = "everyNth"
	TypeDigital    = "digital"
	TypeYMultibit  = "yMultibit"
)

// ScaleX multiplies x by factor.
func ScaleX(factor float64) Module {
	return New(TypeScaleX, KindTransform, func(row *dataset.Row) bool {
		row.X *= factor
		return true
	})
}

// ScaleY multiplies a numeric y by factor. Integer results are truncated
// toward zero; text is left untouched.
func ScaleY(factor float64) Module {
	return New(TypeScaleY, KindTransform, func(row *dataset.Row) bool {
		row.Y = mapNumeric(row.Y, func(f float64) float64 { return f * factor })
		return true
	})
}

// ShiftX adds delta to x.
func ShiftX(delta float64) Module {
	return New(TypeShiftX, KindTransform, func(row *dataset.Row) bool {
		row.X += delta
		return true
	})
}

// ShiftY adds delta to a numeric y. Integer results are truncated toward
// zero; text is left untouched.
func ShiftY(delta float64) Module {
	return New(TypeShiftY, KindTransform, func(row *dataset.Row) bool {
		row.Y = mapNumeric(row.Y, func(f float64) float64 { return f + delta })
		return true
	})
}

// XMin rejects rows whose x is below bound.
func XMin(bound float64) Module {
	return New(TypeXMin, KindPredicate, func(row *dataset.Row) bool {
		return !(row.X < bound)
	})
}

// XMax rejects rows whose x is above bound.
func XMax(bound float64) Module {
	return New(TypeXMax, KindPredicate, func(row *dataset.Row) bool {
		return !(row.X > bound)
	})
}

// YIsInteger turns a real y into an integer, truncating toward zero.
// Integer and text values are left as they are, so applying it twice is the
// same as applying it once.
func YIsInteger() Module {
	return New(TypeYIsInteger, KindTransform, func(row *dataset.Row) bool {
		if f, ok := row.Y.Real(); ok {
			row.Y = dataset.Integer(int64(math.Trunc(f)))
		}
		return true
	})
}

// EveryNth accepts one row out of every n, the n-th, 2n-th, ... row seen by
// this filter. n == 0 accepts every row. Each call returns a filter with its
// own counter.
func EveryNth(n uint) Module {
	var count uint
	return New(TypeEveryNth, KindStateful, func(*dataset.Row) bool {
		if n == 0 {
			return true
		}
		count++
		if count == n {
			count = 0
			return true
		}
		return false
	})
}

// Digital maps y to the integer 1 when it is above threshold and 0 otherwise.
// Text values are parsed permissively first.
func Digital(threshold float64) Module {
	return New(TypeDigital, KindTransform, func(row *dataset.Row) bool {
		f, ok := row.Y.Float()
		if !ok {
			s, _ := row.Y.Text()
			f = fields.ParseNumber(s)
		}
		if f > threshold {
			row.Y = dataset.Integer(1)
		} else {
			row.Y = dataset.Integer(0)
		}
		return true
	})
}

// YMultibit reads y as a string of binary digits ("101") and replaces it with
// the integer it denotes (5). Reading stops at the first character that is
// not 0 or 1; no digits at all gives 0.
func YMultibit() Module {
	return New(TypeYMultibit, KindTransform, func(row *dataset.Row) bool {
		var digits string
		switch row.Y.Kind() {
		case dataset.KindText:
			digits, _ = row.Y.Text()
		case dataset.KindInteger:
			i, _ := row.Y.Integer()
			digits = strconv.FormatInt(i, 10)
		case dataset.KindReal:
			f, _ := row.Y.Real()
			digits = strconv.FormatFloat(math.Trunc(f), 'f', 0, 64)
		}
		row.Y = dataset.Integer(parseBinaryPrefix(digits))
		return true
	})
}

func parseBinaryPrefix(s string) int64 {
	s = strings.TrimSpace(s)
	var v int64
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '0':
			v <<= 1
		case '1':
			v = v<<1 | 1
		default:
			return v
		}
	}
	return v
}

// mapNumeric applies fn to a numeric value, keeping its variant.
func mapNumeric(v dataset.Value, fn func(float64) float64) dataset.Value {
	switch v.Kind() {
	case dataset.KindReal:
		f, _ := v.Real()
		return dataset.Real(fn(f))
	case dataset.KindInteger:
		i, _ := v.Integer()
		return dataset.Integer(int64(fn(float64(i))))
	case dataset.KindText:
		return v
	default:
		return v
	}
}
