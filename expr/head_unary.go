package expr

import (
	"math"

	"github.com/razeghi71/dqexpr/errs"
	"github.com/razeghi71/dqexpr/op"
	"github.com/razeghi71/dqexpr/table"
)

type kernel1 func(table.Value) table.Value

// unaryOp applies a unary operator or math function to every column of its
// operand. Names and modes carry over.
type unaryOp struct{ op op.Op }

func (u unaryOp) apply(_ *EvalContext, inputs []*Workframe) (*Workframe, error) {
	in := inputs[0]
	out := NewWorkframe()
	for i := 0; i < in.NCols(); i++ {
		col := in.Column(i)
		t, fn, err := unaryKernel(u.op, col.Type)
		if err != nil {
			return nil, err
		}
		data := make([]table.Value, col.Len())
		for r, v := range col.Data {
			data[r] = fn(v)
		}
		out.AddColumn(table.NewColumn(t, data), in.Name(i), in.Mode(i))
	}
	return out, nil
}

var mathFuncs = map[op.Op]func(float64) float64{
	op.Sin:     math.Sin,
	op.Cos:     math.Cos,
	op.Tan:     math.Tan,
	op.Arcsin:  math.Asin,
	op.Arccos:  math.Acos,
	op.Arctan:  math.Atan,
	op.Deg2Rad: func(x float64) float64 { return x * math.Pi / 180 },
	op.Rad2Deg: func(x float64) float64 { return x * 180 / math.Pi },
	op.Sinh:    math.Sinh,
	op.Cosh:    math.Cosh,
	op.Tanh:    math.Tanh,
	op.Arsinh:  math.Asinh,
	op.Arcosh:  math.Acosh,
	op.Artanh:  math.Atanh,
	op.Cbrt:    math.Cbrt,
	op.Exp:     math.Exp,
	op.Exp2:    math.Exp2,
	op.Expm1:   math.Expm1,
	op.Log:     math.Log,
	op.Log10:   math.Log10,
	op.Log1p:   math.Log1p,
	op.Log2:    math.Log2,
	op.Sqrt:    math.Sqrt,
	op.Square:  func(x float64) float64 { return x * x },
	op.Erf:     math.Erf,
	op.Erfc:    math.Erfc,
	op.Gamma:   math.Gamma,
	op.Lgamma: func(x float64) float64 {
		v, _ := math.Lgamma(x)
		return v
	},
	op.Ceil:  math.Ceil,
	op.Fabs:  math.Abs,
	op.Floor: math.Floor,
	op.Rint:  math.RoundToEven,
	op.Trunc: math.Trunc,
	op.Sign: func(x float64) float64 {
		switch {
		case x > 0:
			return 1
		case x < 0:
			return -1
		}
		return x
	},
}

// floatPredicates never produce a missing value.
var floatPredicates = map[op.Op]func(float64) bool{
	op.IsFinite: func(x float64) bool { return !math.IsInf(x, 0) && !math.IsNaN(x) },
	op.IsInf:    func(x float64) bool { return math.IsInf(x, 0) },
	op.SignBit:  math.Signbit,
}

// unaryKernel returns the result type and per-cell function of unary
// operation o over a column of type t.
func unaryKernel(o op.Op, t table.SType) (table.SType, kernel1, error) {
	if o == op.IsNA {
		return table.Bool, func(v table.Value) table.Value { return table.BoolVal(v.IsNull()) }, nil
	}
	if pred, ok := floatPredicates[o]; ok && (t == table.Void || t == table.Bool || t.IsNumeric()) {
		return table.Bool, func(v table.Value) table.Value {
			x, ok := v.AsFloat()
			return table.BoolVal(ok && pred(x))
		}, nil
	}
	if t == table.Void {
		return table.Void, func(table.Value) table.Value { return table.Null() }, nil
	}
	if t != table.Bool && !t.IsNumeric() {
		return table.Void, nil, errs.Type(o.String(), "cannot be applied to a column of type `%s`", t)
	}

	// bool behaves as int8 under arithmetic
	rt := t
	if rt == table.Bool {
		rt = table.Int8
	}
	switch o {
	case op.Uplus:
		return rt, func(v table.Value) table.Value { return v }, nil
	case op.Uminus:
		if rt.IsFloat() {
			return rt, floatKernel(func(x float64) float64 { return -x }), nil
		}
		return rt, intKernel(rt, func(x int64) int64 { return -x }), nil
	case op.Abs:
		if rt.IsFloat() {
			return rt, floatKernel(math.Abs), nil
		}
		return rt, intKernel(rt, func(x int64) int64 {
			if x < 0 {
				return -x
			}
			return x
		}), nil
	case op.Uinvert:
		switch {
		case t == table.Bool:
			return table.Bool, func(v table.Value) table.Value {
				if v.IsNull() {
					return v
				}
				return table.BoolVal(!v.Bool)
			}, nil
		case t.IsInteger():
			return t, intKernel(t, func(x int64) int64 { return ^x }), nil
		}
		return table.Void, nil, errs.Type(o.String(), "cannot be applied to a column of type `%s`", t)
	}
	if f, ok := mathFuncs[o]; ok {
		return table.Float64, floatKernel(f), nil
	}
	return table.Void, nil, errs.Internal(o.String(), "not a unary operation")
}

func floatKernel(f func(float64) float64) kernel1 {
	return func(v table.Value) table.Value {
		x, ok := v.AsFloat()
		if !ok {
			return table.Null()
		}
		return table.FloatVal(f(x))
	}
}

func intKernel(t table.SType, f func(int64) int64) kernel1 {
	return func(v table.Value) table.Value {
		x, ok := v.AsInt()
		if !ok {
			return table.Null()
		}
		return table.IntVal(wrapInt(t, f(x)))
	}
}

// wrapInt truncates x to the width of integer type t, as fixed-width
// machine arithmetic does.
func wrapInt(t table.SType, x int64) int64 {
	switch t {
	case table.Int8:
		return int64(int8(x))
	case table.Int16:
		return int64(int16(x))
	case table.Int32:
		return int64(int32(x))
	}
	return x
}
