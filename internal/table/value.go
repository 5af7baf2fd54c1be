package table

import (
	"math"
	"strconv"
)

type valueKind uint8

const (
	nullValue valueKind = iota
	numberValue
	stringValue
)

// Value is a single cell: null, a number, or a string. The zero Value is null.
type Value struct {
	kind valueKind
	num  float64
	str  string
}

// Null returns the null value.
func Null() Value { return Value{} }

// Num returns a numeric value. NaN is stored as null.
func Num(f float64) Value {
	if math.IsNaN(f) {
		return Value{}
	}
	return Value{kind: numberValue, num: f}
}

// Str returns a string value.
func Str(s string) Value { return Value{kind: stringValue, str: s} }

func (v Value) IsNull() bool   { return v.kind == nullValue }
func (v Value) IsNumber() bool { return v.kind == numberValue }
func (v Value) IsString() bool { return v.kind == stringValue }

// Number returns the numeric payload and whether the value is a number.
func (v Value) Number() (float64, bool) {
	if v.kind != numberValue {
		return 0, false
	}
	return v.num, true
}

// String renders the value as text: numbers in shortest round-trip form, null
// as the empty string.
func (v Value) String() string {
	switch v.kind {
	case numberValue:
		return FormatNumber(v.num)
	case stringValue:
		return v.str
	default:
		return ""
	}
}

// Equal reports whether two values are identical (null equals null).
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case numberValue:
		return v.num == o.num
	case stringValue:
		return v.str == o.str
	}
	return true
}

// FormatNumber formats f the way values are written to CSV.
func FormatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatFloat(f, 'f', 0, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// compare orders two values: nulls last, numbers before strings, numbers
// numerically and strings lexically.
func compare(a, b Value) int {
	if a.kind != b.kind {
		rank := func(k valueKind) int {
			switch k {
			case numberValue:
				return 0
			case stringValue:
				return 1
			}
			return 2
		}
		return rank(a.kind) - rank(b.kind)
	}
	switch a.kind {
	case numberValue:
		switch {
		case a.num < b.num:
			return -1
		case a.num > b.num:
			return 1
		}
	case stringValue:
		switch {
		case a.str < b.str:
			return -1
		case a.str > b.str:
			return 1
		}
	}
	return 0
}
