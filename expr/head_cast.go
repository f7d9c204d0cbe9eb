package expr

import (
	"math"
	"strconv"
	"strings"

	"github.com/razeghi71/dqexpr/errs"
	"github.com/razeghi71/dqexpr/op"
	"github.com/razeghi71/dqexpr/table"
)

// castOp converts every column of its operand to a target type.
type castOp struct{ target table.SType }

func (c castOp) apply(_ *EvalContext, inputs []*Workframe) (*Workframe, error) {
	in := inputs[0]
	out := NewWorkframe()
	for i := 0; i < in.NCols(); i++ {
		col, err := CastColumn(in.Column(i), c.target)
		if err != nil {
			return nil, err
		}
		out.AddColumn(col, in.Name(i), in.Mode(i))
	}
	return out, nil
}

// CastColumn converts col to type to. Integer targets saturate at their
// bounds; values with no representation in the target become missing.
func CastColumn(col *table.Column, to table.SType) (*table.Column, error) {
	from := col.Type
	if to == table.Void {
		return nil, errs.Type(op.Cast.String(), "cannot cast a column of type `%s` into `void`", from)
	}
	if from == to {
		return col, nil
	}
	if from == table.Void {
		return &table.Column{Type: to, Data: make([]table.Value, col.Len())}, nil
	}
	if (from == table.Obj && to != table.Str) || (to == table.Obj && from != table.Str) {
		return nil, errs.Type(op.Cast.String(), "cannot cast a column of type `%s` into `%s`", from, to)
	}
	conv := castKernel(from, to)
	data := make([]table.Value, col.Len())
	for r, v := range col.Data {
		if v.IsNull() {
			continue
		}
		data[r] = conv(v)
	}
	return table.NewColumn(to, data), nil
}

func castKernel(from, to table.SType) kernel1 {
	switch {
	case to == table.Str:
		return func(v table.Value) table.Value { return table.StrVal(v.AsString()) }
	case to == table.Obj:
		return func(v table.Value) table.Value { return table.ObjVal(v.Str) }
	case to == table.Bool:
		if from == table.Str {
			return func(v table.Value) table.Value { return parseBool(v.Str) }
		}
		return func(v table.Value) table.Value {
			x, _ := v.AsFloat()
			if math.IsNaN(x) {
				return table.Null()
			}
			return table.BoolVal(x != 0)
		}
	case to.IsInteger():
		if from == table.Str {
			return func(v table.Value) table.Value { return parseInt(v.Str, to) }
		}
		if from.IsFloat() {
			return func(v table.Value) table.Value { return saturateFloat(v.Float, to) }
		}
		return func(v table.Value) table.Value {
			x, _ := v.AsInt()
			return table.IntVal(saturate(x, to))
		}
	default:
		if from == table.Str {
			return func(v table.Value) table.Value {
				f, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
				if err != nil && !isRangeErr(err) {
					return table.Null()
				}
				return table.FloatVal(f)
			}
		}
		return func(v table.Value) table.Value {
			x, _ := v.AsFloat()
			return table.FloatVal(x)
		}
	}
}

func saturate(x int64, t table.SType) int64 {
	lo, hi := t.IntBounds()
	return max(lo, min(x, hi))
}

// saturateFloat truncates x toward zero and clamps it to the range of t.
func saturateFloat(x float64, t table.SType) table.Value {
	if math.IsNaN(x) {
		return table.Null()
	}
	x = math.Trunc(x)
	var i int64
	switch {
	case x >= math.MaxInt64:
		i = math.MaxInt64
	case x <= math.MinInt64:
		i = math.MinInt64
	default:
		i = int64(x)
	}
	return table.IntVal(saturate(i, t))
}

func parseInt(s string, t table.SType) table.Value {
	s = strings.TrimSpace(s)
	i, err := strconv.ParseInt(s, 10, 64)
	if err == nil || isRangeErr(err) {
		return table.IntVal(saturate(i, t))
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !isRangeErr(err) {
		return table.Null()
	}
	return saturateFloat(f, t)
}

func parseBool(s string) table.Value {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1":
		return table.BoolVal(true)
	case "false", "0":
		return table.BoolVal(false)
	}
	return table.Null()
}

func isRangeErr(err error) bool {
	ne, ok := err.(*strconv.NumError)
	return ok && ne.Err == strconv.ErrRange
}
