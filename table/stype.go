package table

import "math"

// SType is the storage type of a column. The set is closed.
type SType int

const (
	Void SType = iota
	Bool
	Int8
	Int16
	Int32
	Int64
	Float32
	Float64
	Str
	Obj
)

var stypeNames = [...]string{
	Void:    "void",
	Bool:    "bool",
	Int8:    "int8",
	Int16:   "int16",
	Int32:   "int32",
	Int64:   "int64",
	Float32: "float32",
	Float64: "float64",
	Str:     "str",
	Obj:     "obj",
}

func (t SType) String() string {
	if t >= 0 && int(t) < len(stypeNames) {
		return stypeNames[t]
	}
	return "stype?"
}

// ParseSType returns the SType with the given name.
func ParseSType(name string) (SType, bool) {
	for i, n := range stypeNames {
		if n == name {
			return SType(i), true
		}
	}
	return Void, false
}

// STypes returns every storage type in declaration order.
func STypes() []SType {
	out := make([]SType, len(stypeNames))
	for i := range stypeNames {
		out[i] = SType(i)
	}
	return out
}

func (t SType) Valid() bool { return t >= Void && t <= Obj }

func (t SType) IsInteger() bool { return t >= Int8 && t <= Int64 }

func (t SType) IsFloat() bool { return t == Float32 || t == Float64 }

// IsNumeric reports whether t is an integer or float type. Bool is not
// numeric, although it promotes to every numeric type.
func (t SType) IsNumeric() bool { return t.IsInteger() || t.IsFloat() }

// IntBounds returns the representable range of an integer type.
func (t SType) IntBounds() (lo, hi int64) {
	switch t {
	case Int8:
		return math.MinInt8, math.MaxInt8
	case Int16:
		return math.MinInt16, math.MaxInt16
	case Int32:
		return math.MinInt32, math.MaxInt32
	case Bool:
		return 0, 1
	default:
		return math.MinInt64, math.MaxInt64
	}
}

// ValueType is the physical Value kind used for non-missing cells.
func (t SType) ValueType() ValueType {
	switch {
	case t == Bool:
		return TypeBool
	case t.IsInteger():
		return TypeInt
	case t.IsFloat():
		return TypeFloat
	case t == Str:
		return TypeString
	case t == Obj:
		return TypeObject
	default:
		return TypeNull
	}
}

// Promote returns the smallest type both bool/numeric types convert to
// without loss of range, following bool < int8 < ... < float64. The second
// result is false when either input is not bool or numeric.
func Promote(a, b SType) (SType, bool) {
	if !promotable(a) || !promotable(b) {
		return Void, false
	}
	if a > b {
		return a, true
	}
	return b, true
}

func promotable(t SType) bool { return t == Bool || t.IsNumeric() }
