// Package value holds the dynamic values bindings evaluate to.
package value

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Kind int

const (
	KindNone Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindList
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindObject:
		return "object"
	}

	return "<unknown>"
}

// Value is one of None, Bool, Int, Float, String, List or Object.
type Value interface {
	Kind() Kind
	value()
}

type None struct{}

type Bool bool

type Int int64

type Float float64

type String string

type List []Value

type Object map[string]Value

func (None) Kind() Kind   { return KindNone }
func (Bool) Kind() Kind   { return KindBool }
func (Int) Kind() Kind    { return KindInt }
func (Float) Kind() Kind  { return KindFloat }
func (String) Kind() Kind { return KindString }
func (List) Kind() Kind   { return KindList }
func (Object) Kind() Kind { return KindObject }

func (None) value()   {}
func (Bool) value()   {}
func (Int) value()    {}
func (Float) value()  {}
func (String) value() {}
func (List) value()   {}
func (Object) value() {}

// KindOf is like v.Kind but treats a nil Value as None.
func KindOf(v Value) Kind {
	if v == nil {
		return KindNone
	}
	return v.Kind()
}

// Keys returns the keys of o in sorted order.
func (o Object) Keys() []string {
	keys := maps.Keys(o)
	slices.Sort(keys)
	return keys
}

// Display converts v into the text shown when it is interpolated into an
// attribute. None displays as the empty string.
func Display(v Value) string {
	var b strings.Builder
	writeDisplay(&b, v, true)
	return b.String()
}

func writeDisplay(b *strings.Builder, v Value, top bool) {
	switch v := v.(type) {
	case nil, None:
		if !top {
			b.WriteString("null")
		}

	case Bool:
		b.WriteString(strconv.FormatBool(bool(v)))

	case Int:
		b.WriteString(strconv.FormatInt(int64(v), 10))

	case Float:
		b.WriteString(FormatFloat(float64(v)))

	case String:
		if top {
			b.WriteString(string(v))
		} else {
			b.WriteString(strconv.Quote(string(v)))
		}

	case List:
		b.WriteByte('[')
		for i, e := range v {
			if i > 0 {
				b.WriteString(", ")
			}
			writeDisplay(b, e, false)
		}
		b.WriteByte(']')

	case Object:
		b.WriteByte('{')
		for i, k := range v.Keys() {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(k)
			b.WriteString(": ")
			writeDisplay(b, v[k], false)
		}
		b.WriteByte('}')
	}
}

// FormatFloat formats f in its shortest decimal form without an exponent for
// reasonably sized numbers.
func FormatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}

	if abs := math.Abs(f); abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Equal reports whether a and b hold the same kind and contents. Int and
// Float are compared numerically.
func Equal(a, b Value) bool {
	ka, kb := KindOf(a), KindOf(b)

	if IsNumber(a) && IsNumber(b) {
		if ka == KindInt && kb == KindInt {
			return a.(Int) == b.(Int)
		}
		return ToFloat(a) == ToFloat(b)
	}

	if ka != kb {
		return false
	}

	switch a := a.(type) {
	case List:
		b := b.(List)
		return slices.EqualFunc(a, b, Equal)

	case Object:
		b := b.(Object)
		if len(a) != len(b) {
			return false
		}
		for k, va := range a {
			vb, ok := b[k]
			if !ok || !Equal(va, vb) {
				return false
			}
		}
		return true

	case nil, None:
		return true
	}

	return a == b
}

func IsNumber(v Value) bool {
	k := KindOf(v)
	return k == KindInt || k == KindFloat
}

// ToFloat converts an Int or Float to float64. Other kinds yield 0.
func ToFloat(v Value) float64 {
	switch v := v.(type) {
	case Int:
		return float64(v)
	case Float:
		return float64(v)
	}
	return 0
}
