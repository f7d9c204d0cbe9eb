// Package op defines the closed opcode space of the expression engine.
//
// Opcodes are grouped into contiguous, non-overlapping ranges. The numeric
// values are stable: they may be stored or exchanged with a host binding
// layer, so new opcodes are only ever appended to the end of a range.
package op

import "fmt"

// Op identifies one kind of operation node.
type Op int

// Range boundaries. Each range starts at a round number so that a value
// can be classified by looking at it.
const (
	UnopFirst    Op = 101
	BinopFirst   Op = 201
	SpecialFirst Op = 301
	ReducerFirst Op = 401
	MathFirst    Op = 501
	Math2First   Op = 601
)

// Unary operators (101-1xx)
const (
	Uplus Op = UnopFirst + iota
	Uminus
	Uinvert

	UnopLast = Uinvert
)

// Binary operators (201-2xx)
const (
	Plus Op = BinopFirst + iota
	Minus
	Multiply
	Divide
	IntDiv
	Modulo
	Power
	And
	Xor
	Or
	LShift
	RShift
	Eq
	Ne
	Lt
	Gt
	Le
	Ge

	BinopLast = Ge
)

// Special singleton operations (301-3xx)
const (
	SetPlus Op = SpecialFirst + iota
	SetMinus
	Col
	Cast
	Count0
	ReMatch

	SpecialLast = ReMatch
)

// Reducers (401-4xx)
const (
	Mean Op = ReducerFirst + iota
	Min
	Max
	Stdev
	First
	Last
	Sum
	Count
	Median

	ReducerLast = Median
)

// Single-argument math functions (501-5xx)
const (
	// trigonometric
	Sin Op = MathFirst + iota
	Cos
	Tan
	Arcsin
	Arccos
	Arctan
	Deg2Rad
	Rad2Deg

	// hyperbolic
	Sinh
	Cosh
	Tanh
	Arsinh
	Arcosh
	Artanh

	// exponential and power
	Cbrt
	Exp
	Exp2
	Expm1
	Log
	Log10
	Log1p
	Log2
	Sqrt
	Square

	// special
	Erf
	Erfc
	Gamma
	Lgamma

	// floating-point
	Abs
	Ceil
	Fabs
	Floor
	IsFinite
	IsInf
	IsNA
	Rint
	Sign
	SignBit
	Trunc

	MathLast = Trunc
)

// Two-argument math functions (601-6xx). These opcodes are reserved: they
// belong to the closed set, but no evaluator exists for them yet.
const (
	Arctan2 Op = Math2First + iota
	Hypot
	Pow
	CopySign
	LogAddExp
	LogAddExp2
	Fmod
	Ldexp

	Math2Last = Ldexp
)

var names = map[Op]string{
	Uplus:   "uplus",
	Uminus:  "uminus",
	Uinvert: "uinvert",

	Plus:     "plus",
	Minus:    "minus",
	Multiply: "multiply",
	Divide:   "divide",
	IntDiv:   "intdiv",
	Modulo:   "modulo",
	Power:    "power",
	And:      "and",
	Xor:      "xor",
	Or:       "or",
	LShift:   "lshift",
	RShift:   "rshift",
	Eq:       "eq",
	Ne:       "ne",
	Lt:       "lt",
	Gt:       "gt",
	Le:       "le",
	Ge:       "ge",

	SetPlus:  "setplus",
	SetMinus: "setminus",
	Col:      "col",
	Cast:     "cast",
	Count0:   "count0",
	ReMatch:  "re_match",

	Mean:   "mean",
	Min:    "min",
	Max:    "max",
	Stdev:  "stdev",
	First:  "first",
	Last:   "last",
	Sum:    "sum",
	Count:  "count",
	Median: "median",

	Sin:      "sin",
	Cos:      "cos",
	Tan:      "tan",
	Arcsin:   "arcsin",
	Arccos:   "arccos",
	Arctan:   "arctan",
	Deg2Rad:  "deg2rad",
	Rad2Deg:  "rad2deg",
	Sinh:     "sinh",
	Cosh:     "cosh",
	Tanh:     "tanh",
	Arsinh:   "arsinh",
	Arcosh:   "arcosh",
	Artanh:   "artanh",
	Cbrt:     "cbrt",
	Exp:      "exp",
	Exp2:     "exp2",
	Expm1:    "expm1",
	Log:      "log",
	Log10:    "log10",
	Log1p:    "log1p",
	Log2:     "log2",
	Sqrt:     "sqrt",
	Square:   "square",
	Erf:      "erf",
	Erfc:     "erfc",
	Gamma:    "gamma",
	Lgamma:   "lgamma",
	Abs:      "abs",
	Ceil:     "ceil",
	Fabs:     "fabs",
	Floor:    "floor",
	IsFinite: "isfinite",
	IsInf:    "isinf",
	IsNA:     "isna",
	Rint:     "rint",
	Sign:     "sign",
	SignBit:  "signbit",
	Trunc:    "trunc",

	Arctan2:    "arctan2",
	Hypot:      "hypot",
	Pow:        "pow",
	CopySign:   "copysign",
	LogAddExp:  "logaddexp",
	LogAddExp2: "logaddexp2",
	Fmod:       "fmod",
	Ldexp:      "ldexp",
}

var byName = func() map[string]Op {
	m := make(map[string]Op, len(names))
	for o, n := range names {
		m[n] = o
	}
	return m
}()

// String returns the lowercase name of the opcode.
func (o Op) String() string {
	if n, ok := names[o]; ok {
		return n
	}
	return fmt.Sprintf("op(%d)", int(o))
}

// Parse returns the opcode with the given name.
func Parse(name string) (Op, bool) {
	o, ok := byName[name]
	return o, ok
}

// IsUnary reports whether o is in the unary-operator range.
func (o Op) IsUnary() bool { return o >= UnopFirst && o <= UnopLast }

// IsBinary reports whether o is in the binary-operator range.
func (o Op) IsBinary() bool { return o >= BinopFirst && o <= BinopLast }

// IsSpecial reports whether o is one of the singleton operations.
func (o Op) IsSpecial() bool { return o >= SpecialFirst && o <= SpecialLast }

// IsReducer reports whether o is in the reducer range.
func (o Op) IsReducer() bool { return o >= ReducerFirst && o <= ReducerLast }

// IsMath reports whether o is a single-argument math function.
func (o Op) IsMath() bool { return o >= MathFirst && o <= MathLast }

// IsReserved reports whether o is a two-argument math function, which has
// an opcode but no evaluator.
func (o Op) IsReserved() bool { return o >= Math2First && o <= Math2Last }

// Valid reports whether o belongs to the closed opcode set.
func (o Op) Valid() bool {
	return o.IsUnary() || o.IsBinary() || o.IsSpecial() ||
		o.IsReducer() || o.IsMath() || o.IsReserved()
}

// IsComparison reports whether o is one of eq, ne, lt, gt, le, ge.
func (o Op) IsComparison() bool { return o >= Eq && o <= Ge }

// Range is an inclusive span of opcodes.
type Range struct {
	First, Last Op
}

// Ranges lists every contiguous range of the opcode space, in order.
func Ranges() []Range {
	return []Range{
		{UnopFirst, UnopLast},
		{BinopFirst, BinopLast},
		{SpecialFirst, SpecialLast},
		{ReducerFirst, ReducerLast},
		{MathFirst, MathLast},
		{Math2First, Math2Last},
	}
}

// All returns every opcode of the closed set in ascending order.
func All() []Op {
	var ops []Op
	for _, r := range Ranges() {
		for o := r.First; o <= r.Last; o++ {
			ops = append(ops, o)
		}
	}
	return ops
}
