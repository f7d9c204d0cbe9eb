package expr

import (
	"math"
	"strings"

	"github.com/razeghi71/dqexpr/errs"
	"github.com/razeghi71/dqexpr/op"
	"github.com/razeghi71/dqexpr/table"
)

type kernel2 func(a, b table.Value) table.Value

// binaryOp applies a binary operator column by column. Operands must have
// the same number of columns, or one of them a single column that is
// paired with every column of the other.
type binaryOp struct{ op op.Op }

func (b binaryOp) apply(ctx *EvalContext, inputs []*Workframe) (*Workframe, error) {
	lhs, rhs := inputs[0], inputs[1]
	n, m := lhs.NCols(), rhs.NCols()
	if n != m && n != 1 && m != 1 {
		return nil, errs.Value(b.op.String(), "cannot pair %d columns with %d columns", n, m)
	}
	ncols := max(n, m)
	if n == 0 || m == 0 {
		ncols = 0
	}
	out := NewWorkframe()
	for i := 0; i < ncols; i++ {
		li, ri := i, i
		if n == 1 {
			li = 0
		}
		if m == 1 {
			ri = 0
		}
		pair := &Workframe{items: []record{lhs.items[li], rhs.items[ri]}}
		mode := max(pair.Mode(0), pair.Mode(1))
		if err := pair.RaiseAll(ctx, mode); err != nil {
			return nil, err
		}
		x, y := pair.Column(0), pair.Column(1)
		t, fn, err := binaryKernel(b.op, x.Type, y.Type)
		if err != nil {
			return nil, err
		}
		data := make([]table.Value, x.Len())
		for r := range data {
			data[r] = fn(x.Data[r], y.Data[r])
		}
		name := pair.Name(0)
		if name == "" {
			name = pair.Name(1)
		}
		out.AddColumn(table.NewColumn(t, data), name, mode)
	}
	return out, nil
}

func binaryTypeError(o op.Op, lt, rt table.SType) error {
	return errs.Type(o.String(), "cannot be applied to columns of types `%s` and `%s`", lt, rt)
}

// binaryKernel returns the result type and per-cell function of binary
// operation o over columns of types lt and rt.
func binaryKernel(o op.Op, lt, rt table.SType) (table.SType, kernel2, error) {
	origL, origR := lt, rt
	// a column of missing values takes the type of the other side
	if lt == table.Void {
		lt = rt
	}
	if rt == table.Void {
		rt = lt
	}
	if lt == table.Void {
		if o.IsComparison() {
			return table.Bool, compareKernel(o, func(a, b table.Value) (int, bool) { return 0, true }), nil
		}
		return table.Void, func(a, b table.Value) table.Value { return table.Null() }, nil
	}

	if o.IsComparison() {
		cmp, ok := comparator(lt, rt)
		if !ok {
			return table.Void, nil, binaryTypeError(o, origL, origR)
		}
		return table.Bool, compareKernel(o, cmp), nil
	}
	if o == op.Plus && lt == table.Str && rt == table.Str {
		return table.Str, nullSafe(func(a, b table.Value) table.Value {
			return table.StrVal(a.Str + b.Str)
		}), nil
	}

	p, ok := table.Promote(lt, rt)
	if !ok {
		return table.Void, nil, binaryTypeError(o, origL, origR)
	}
	switch o {
	case op.Plus, op.Minus, op.Multiply, op.IntDiv, op.Modulo:
		if p.IsFloat() {
			return p, floatArith(o), nil
		}
		t := max(p, table.Int32)
		return t, intArith(o, t), nil
	case op.Divide:
		return table.Float64, floatArith(o), nil
	case op.Power:
		return table.Float64, floatArith(o), nil
	case op.And, op.Or, op.Xor:
		if p == table.Bool {
			return table.Bool, boolLogic(o), nil
		}
		if p.IsInteger() {
			return p, intArith(o, p), nil
		}
	case op.LShift, op.RShift:
		if lt.IsInteger() && rt.IsInteger() {
			t := max(lt, table.Int32)
			return t, intArith(o, t), nil
		}
	}
	return table.Void, nil, binaryTypeError(o, origL, origR)
}

// nullSafe makes f return missing when either operand is missing.
func nullSafe(f kernel2) kernel2 {
	return func(a, b table.Value) table.Value {
		if a.IsNull() || b.IsNull() {
			return table.Null()
		}
		return f(a, b)
	}
}

func floatArith(o op.Op) kernel2 {
	return func(a, b table.Value) table.Value {
		x, okx := a.AsFloat()
		y, oky := b.AsFloat()
		if !okx || !oky {
			return table.Null()
		}
		switch o {
		case op.Plus:
			return table.FloatVal(x + y)
		case op.Minus:
			return table.FloatVal(x - y)
		case op.Multiply:
			return table.FloatVal(x * y)
		case op.Divide:
			if y == 0 {
				return table.Null()
			}
			return table.FloatVal(x / y)
		case op.IntDiv:
			if y == 0 {
				return table.Null()
			}
			return table.FloatVal(math.Floor(x / y))
		case op.Modulo:
			if y == 0 {
				return table.Null()
			}
			r := math.Mod(x, y)
			if r != 0 && (r < 0) != (y < 0) {
				r += y
			}
			return table.FloatVal(r)
		case op.Power:
			return table.FloatVal(math.Pow(x, y))
		}
		return table.Null()
	}
}

func intArith(o op.Op, t table.SType) kernel2 {
	return func(a, b table.Value) table.Value {
		x, okx := a.AsInt()
		y, oky := b.AsInt()
		if !okx || !oky {
			return table.Null()
		}
		var r int64
		switch o {
		case op.Plus:
			r = x + y
		case op.Minus:
			r = x - y
		case op.Multiply:
			r = x * y
		case op.IntDiv:
			if y == 0 {
				return table.Null()
			}
			r = x / y
			if x%y != 0 && (x < 0) != (y < 0) {
				r--
			}
		case op.Modulo:
			if y == 0 {
				return table.Null()
			}
			r = x % y
			if r != 0 && (r < 0) != (y < 0) {
				r += y
			}
		case op.And:
			r = x & y
		case op.Or:
			r = x | y
		case op.Xor:
			r = x ^ y
		case op.LShift:
			switch {
			case y < 0:
				return table.Null()
			case y >= 64:
				r = 0
			default:
				r = x << uint(y)
			}
		case op.RShift:
			switch {
			case y < 0:
				return table.Null()
			case y >= 64:
				if x < 0 {
					r = -1
				}
			default:
				r = x >> uint(y)
			}
		}
		return table.IntVal(wrapInt(t, r))
	}
}

func boolLogic(o op.Op) kernel2 {
	return nullSafe(func(a, b table.Value) table.Value {
		x, _ := a.AsInt()
		y, _ := b.AsInt()
		switch o {
		case op.And:
			return table.BoolVal(x&y != 0)
		case op.Or:
			return table.BoolVal(x|y != 0)
		default:
			return table.BoolVal(x^y != 0)
		}
	})
}

// ordering compares two non-missing cells. ok is false when they are
// unordered (NaN).
type ordering func(a, b table.Value) (c int, ok bool)

func comparator(lt, rt table.SType) (ordering, bool) {
	if lt == table.Str && rt == table.Str {
		return func(a, b table.Value) (int, bool) { return strings.Compare(a.Str, b.Str), true }, true
	}
	p, ok := table.Promote(lt, rt)
	if !ok {
		return nil, false
	}
	if !p.IsFloat() {
		return func(a, b table.Value) (int, bool) {
			x, _ := a.AsInt()
			y, _ := b.AsInt()
			switch {
			case x < y:
				return -1, true
			case x > y:
				return 1, true
			}
			return 0, true
		}, true
	}
	return func(a, b table.Value) (int, bool) {
		x, _ := a.AsFloat()
		y, _ := b.AsFloat()
		switch {
		case x < y:
			return -1, true
		case x > y:
			return 1, true
		case x == y:
			return 0, true
		}
		return 0, false
	}, true
}

// compareKernel treats two missing values as equal under eq and ne; an
// ordering comparison with a missing operand is missing.
func compareKernel(o op.Op, cmp ordering) kernel2 {
	return func(a, b table.Value) table.Value {
		an, bn := a.IsNull(), b.IsNull()
		if an || bn {
			switch o {
			case op.Eq:
				return table.BoolVal(an && bn)
			case op.Ne:
				return table.BoolVal(an != bn)
			}
			return table.Null()
		}
		c, ok := cmp(a, b)
		if !ok {
			return table.BoolVal(o == op.Ne)
		}
		switch o {
		case op.Eq:
			return table.BoolVal(c == 0)
		case op.Ne:
			return table.BoolVal(c != 0)
		case op.Lt:
			return table.BoolVal(c < 0)
		case op.Gt:
			return table.BoolVal(c > 0)
		case op.Le:
			return table.BoolVal(c <= 0)
		default:
			return table.BoolVal(c >= 0)
		}
	}
}
