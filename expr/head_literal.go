package expr

import (
	"math"

	"github.com/razeghi71/dqexpr/ast"
	"github.com/razeghi71/dqexpr/errs"
	"github.com/razeghi71/dqexpr/table"
)

func literalHead(n *ast.LiteralExpr) (Head, error) {
	switch n.Kind {
	case "null":
		return noneHead{}, nil
	case "bool":
		return boolHead{v: n.Bool}, nil
	case "int":
		return intHead{v: n.Int}, nil
	case "float":
		return floatHead{v: n.Float}, nil
	case "string":
		return strHead{v: n.Str}, nil
	}
	return nil, errs.Internal("compile", "unknown literal kind %q", n.Kind)
}

func scalar(t table.SType, v table.Value) *Workframe {
	w := NewWorkframe()
	w.AddColumn(table.NewColumn(t, []table.Value{v}), "", ModeScalar)
	return w
}

func selectByIndex(ctx *EvalContext, frame int, indices []int) *Workframe {
	f := ctx.Frame(frame)
	w := NewWorkframe()
	for _, i := range indices {
		w.AddRef(frame, i, ctx.column(frame, i), f.Names[i])
	}
	return w
}

func selectFromProxy(proxy *Workframe, indices []int) *Workframe {
	w := NewWorkframe()
	for _, i := range indices {
		it := proxy.items[i]
		if it.mode == ModeGroup {
			it.mode = ModeRow
		}
		w.items = append(w.items, it)
	}
	return w
}

func checkFrame(ctx *EvalContext, frame int) error {
	if frame < 0 || frame >= ctx.NFrames() {
		return errs.Value("col", "frame %d does not exist, the statement has %d", frame, ctx.NFrames())
	}
	return nil
}

func positionIn(i int64, ncols int) (int, error) {
	j := i
	if j < 0 {
		j += int64(ncols)
	}
	if j < 0 || j >= int64(ncols) {
		return 0, errs.Value("col", "column index %d is out of range for a frame with %d columns", i, ncols)
	}
	return int(j), nil
}

func nameIn(names func(int) string, ncols int, name string) (int, error) {
	for i := 0; i < ncols; i++ {
		if names(i) == name {
			return i, nil
		}
	}
	return 0, errs.Value("col", "column `%s` does not exist in the frame", name)
}

// noneHead selects nothing and computes a missing value.
type noneHead struct{}

func (noneHead) Kind() Kind { return KindNone }

func (noneHead) EvalSelector([]*Expr, *EvalContext, int) (*Workframe, error) {
	return NewWorkframe(), nil
}

func (noneHead) EvalProjection([]*Expr, *EvalContext) (*Workframe, error) {
	return NewWorkframe(), nil
}

func (noneHead) EvalProxy([]*Expr, *EvalContext, *Workframe) (*Workframe, error) {
	return NewWorkframe(), nil
}

func (noneHead) EvalNormal([]*Expr, *EvalContext) (*Workframe, error) {
	return scalar(table.Void, table.Null()), nil
}

type boolHead struct{ v bool }

func (boolHead) Kind() Kind { return KindBool }

func (boolHead) EvalSelector([]*Expr, *EvalContext, int) (*Workframe, error) {
	return nil, errs.Type("col", "a boolean value cannot be used as a column selector")
}

func (h boolHead) EvalProjection(args []*Expr, ctx *EvalContext) (*Workframe, error) {
	return h.EvalNormal(args, ctx)
}

func (h boolHead) EvalProxy(args []*Expr, ctx *EvalContext, _ *Workframe) (*Workframe, error) {
	return h.EvalNormal(args, ctx)
}

func (h boolHead) EvalNormal([]*Expr, *EvalContext) (*Workframe, error) {
	return scalar(table.Bool, table.BoolVal(h.v)), nil
}

// intHead selects a column by position, counting from the end when
// negative, and computes an integer constant.
type intHead struct{ v int64 }

func (intHead) Kind() Kind { return KindInt }

func (h intHead) EvalSelector(_ []*Expr, ctx *EvalContext, frame int) (*Workframe, error) {
	i, err := positionIn(h.v, ctx.Frame(frame).NCols())
	if err != nil {
		return nil, err
	}
	return selectByIndex(ctx, frame, []int{i}), nil
}

func (h intHead) EvalProjection(args []*Expr, ctx *EvalContext) (*Workframe, error) {
	return h.EvalSelector(args, ctx, 0)
}

func (h intHead) EvalProxy(_ []*Expr, _ *EvalContext, proxy *Workframe) (*Workframe, error) {
	i, err := positionIn(h.v, proxy.NCols())
	if err != nil {
		return nil, err
	}
	return selectFromProxy(proxy, []int{i}), nil
}

func (h intHead) EvalNormal([]*Expr, *EvalContext) (*Workframe, error) {
	t := table.Int32
	if h.v < math.MinInt32 || h.v > math.MaxInt32 {
		t = table.Int64
	}
	return scalar(t, table.IntVal(h.v)), nil
}

type floatHead struct{ v float64 }

func (floatHead) Kind() Kind { return KindFloat }

func (floatHead) EvalSelector([]*Expr, *EvalContext, int) (*Workframe, error) {
	return nil, errs.Type("col", "a float value cannot be used as a column selector")
}

func (h floatHead) EvalProjection(args []*Expr, ctx *EvalContext) (*Workframe, error) {
	return h.EvalNormal(args, ctx)
}

func (h floatHead) EvalProxy(args []*Expr, ctx *EvalContext, _ *Workframe) (*Workframe, error) {
	return h.EvalNormal(args, ctx)
}

func (h floatHead) EvalNormal([]*Expr, *EvalContext) (*Workframe, error) {
	return scalar(table.Float64, table.FloatVal(h.v)), nil
}

// strHead selects a column by name and computes a string constant.
type strHead struct{ v string }

func (strHead) Kind() Kind { return KindStr }

func (h strHead) EvalSelector(_ []*Expr, ctx *EvalContext, frame int) (*Workframe, error) {
	f := ctx.Frame(frame)
	i, err := nameIn(func(i int) string { return f.Names[i] }, f.NCols(), h.v)
	if err != nil {
		return nil, err
	}
	return selectByIndex(ctx, frame, []int{i}), nil
}

func (h strHead) EvalProjection(args []*Expr, ctx *EvalContext) (*Workframe, error) {
	return h.EvalSelector(args, ctx, 0)
}

func (h strHead) EvalProxy(_ []*Expr, _ *EvalContext, proxy *Workframe) (*Workframe, error) {
	i, err := nameIn(proxy.Name, proxy.NCols(), h.v)
	if err != nil {
		return nil, err
	}
	return selectFromProxy(proxy, []int{i}), nil
}

func (h strHead) EvalNormal([]*Expr, *EvalContext) (*Workframe, error) {
	return scalar(table.Str, table.StrVal(h.v)), nil
}

// sliceAllHead selects every column.
type sliceAllHead struct{}

func (sliceAllHead) Kind() Kind { return KindSliceAll }

func (sliceAllHead) EvalSelector(_ []*Expr, ctx *EvalContext, frame int) (*Workframe, error) {
	return selectByIndex(ctx, frame, identity(ctx.Frame(frame).NCols())), nil
}

func (h sliceAllHead) EvalProjection(args []*Expr, ctx *EvalContext) (*Workframe, error) {
	return h.EvalSelector(args, ctx, 0)
}

func (sliceAllHead) EvalProxy(_ []*Expr, _ *EvalContext, proxy *Workframe) (*Workframe, error) {
	return selectFromProxy(proxy, identity(proxy.NCols())), nil
}

func (sliceAllHead) EvalNormal([]*Expr, *EvalContext) (*Workframe, error) {
	return nil, errs.Type("slice", "a slice can only be used as a column selector")
}

// sliceIntHead selects columns by position range.
type sliceIntHead struct {
	start, stop, step *int64
}

func (sliceIntHead) Kind() Kind { return KindSliceInt }

func (h *sliceIntHead) EvalSelector(_ []*Expr, ctx *EvalContext, frame int) (*Workframe, error) {
	return selectByIndex(ctx, frame, h.indices(ctx.Frame(frame).NCols())), nil
}

func (h *sliceIntHead) EvalProjection(args []*Expr, ctx *EvalContext) (*Workframe, error) {
	return h.EvalSelector(args, ctx, 0)
}

func (h *sliceIntHead) EvalProxy(_ []*Expr, _ *EvalContext, proxy *Workframe) (*Workframe, error) {
	return selectFromProxy(proxy, h.indices(proxy.NCols())), nil
}

func (h *sliceIntHead) EvalNormal([]*Expr, *EvalContext) (*Workframe, error) {
	return nil, errs.Type("slice", "a slice can only be used as a column selector")
}

// indices resolves the slice against n columns the way sequence slicing
// does: negative bounds count from the end and out-of-range bounds clamp.
func (h *sliceIntHead) indices(n int) []int {
	step := int64(1)
	if h.step != nil {
		step = *h.step
	}
	clamp := func(p *int64, def, lo, hi int64) int64 {
		if p == nil {
			return def
		}
		v := *p
		if v < 0 {
			v += int64(n)
		}
		return max(lo, min(v, hi))
	}
	var out []int
	if step > 0 {
		start := clamp(h.start, 0, 0, int64(n))
		stop := clamp(h.stop, int64(n), 0, int64(n))
		for i := start; i < stop; i += step {
			out = append(out, int(i))
		}
	} else {
		start := clamp(h.start, int64(n)-1, -1, int64(n)-1)
		stop := clamp(h.stop, -1, -1, int64(n)-1)
		for i := start; i > stop; i += step {
			out = append(out, int(i))
		}
	}
	return out
}

// sliceStrHead selects the columns between two names, both included.
type sliceStrHead struct {
	from, to string
}

func (sliceStrHead) Kind() Kind { return KindSliceStr }

func (h *sliceStrHead) EvalSelector(_ []*Expr, ctx *EvalContext, frame int) (*Workframe, error) {
	f := ctx.Frame(frame)
	idx, err := h.indices(func(i int) string { return f.Names[i] }, f.NCols())
	if err != nil {
		return nil, err
	}
	return selectByIndex(ctx, frame, idx), nil
}

func (h *sliceStrHead) EvalProjection(args []*Expr, ctx *EvalContext) (*Workframe, error) {
	return h.EvalSelector(args, ctx, 0)
}

func (h *sliceStrHead) EvalProxy(_ []*Expr, _ *EvalContext, proxy *Workframe) (*Workframe, error) {
	idx, err := h.indices(proxy.Name, proxy.NCols())
	if err != nil {
		return nil, err
	}
	return selectFromProxy(proxy, idx), nil
}

func (h *sliceStrHead) EvalNormal([]*Expr, *EvalContext) (*Workframe, error) {
	return nil, errs.Type("slice", "a slice can only be used as a column selector")
}

func (h *sliceStrHead) indices(names func(int) string, n int) ([]int, error) {
	a, err := nameIn(names, n, h.from)
	if err != nil {
		return nil, err
	}
	b, err := nameIn(names, n, h.to)
	if err != nil {
		return nil, err
	}
	step := 1
	if b < a {
		step = -1
	}
	var out []int
	for i := a; ; i += step {
		out = append(out, i)
		if i == b {
			break
		}
	}
	return out, nil
}

// listHead concatenates the results of its items in every context.
type listHead struct{}

func (listHead) Kind() Kind { return KindList }

func (listHead) EvalSelector(args []*Expr, ctx *EvalContext, frame int) (*Workframe, error) {
	return concat(args, func(e *Expr) (*Workframe, error) { return e.EvalSelector(ctx, frame) })
}

func (listHead) EvalProjection(args []*Expr, ctx *EvalContext) (*Workframe, error) {
	return concat(args, func(e *Expr) (*Workframe, error) { return e.EvalProjection(ctx) })
}

func (listHead) EvalProxy(args []*Expr, ctx *EvalContext, proxy *Workframe) (*Workframe, error) {
	return concat(args, func(e *Expr) (*Workframe, error) { return e.EvalProxy(ctx, proxy) })
}

func (listHead) EvalNormal(args []*Expr, ctx *EvalContext) (*Workframe, error) {
	return concat(args, func(e *Expr) (*Workframe, error) { return e.EvalNormal(ctx) })
}

func concat(args []*Expr, eval func(*Expr) (*Workframe, error)) (*Workframe, error) {
	out := NewWorkframe()
	for _, a := range args {
		w, err := eval(a)
		if err != nil {
			return nil, err
		}
		out.Cbind(w)
	}
	return out, nil
}

func identity(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
