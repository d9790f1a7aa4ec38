package canon

import (
	"math"
	"strconv"

	"github.com/gowebpki/jcs"
)

// scalarText is the string a scalar takes when an all-scalar array is
// sorted: null, numbers and booleans stringified, strings as-is. Sort texts
// compare in UTF-8 byte order, which is code-point order.
func scalarText(v Value) string {
	switch v.kind {
	case Null:
		return "null"
	case Bool:
		if v.boolean {
			return "true"
		}
		return "false"
	case Number:
		return numberText(v.number)
	case String:
		return v.str
	default:
		return v.String()
	}
}

// numberText formats f the way ECMAScript Number::toString does.
func numberText(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	s, err := jcs.NumberToJSON(f)
	if err != nil {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return s
}
