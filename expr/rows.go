package expr

import (
	"github.com/razeghi71/dqexpr/errs"
	"github.com/razeghi71/dqexpr/table"
)

// SelectRows evaluates a row filter and returns the rows it keeps, in
// order. A filter is a row position, a positional slice, a list of row
// positions, or an expression producing a single boolean column; rows
// where that column is missing are dropped.
func SelectRows(e *Expr, ctx *EvalContext) ([]int, error) {
	n := ctx.NRows()
	switch h := e.head.(type) {
	case noneHead, sliceAllHead:
		return identity(n), nil
	case intHead:
		i, err := rowIn(h.v, n)
		if err != nil {
			return nil, err
		}
		return []int{i}, nil
	case *sliceIntHead:
		return h.indices(n), nil
	case listHead:
		rows := make([]int, 0, len(e.inputs))
		for _, item := range e.inputs {
			ih, ok := item.head.(intHead)
			if !ok {
				return nil, errs.Type("where", "a row list may only hold integers, got %s", item.Kind())
			}
			i, err := rowIn(ih.v, n)
			if err != nil {
				return nil, err
			}
			rows = append(rows, i)
		}
		return rows, nil
	}
	if e.Kind() != KindFunc {
		return nil, errs.Type("where", "a %s value cannot be used as a row filter", e.Kind())
	}

	w, err := e.EvalNormal(ctx)
	if err != nil {
		return nil, err
	}
	return TrueRows(w, ctx)
}

// TrueRows returns the rows where the single boolean column of w is true.
func TrueRows(w *Workframe, ctx *EvalContext) ([]int, error) {
	if w.NCols() != 1 {
		return nil, errs.Value("where", "a row filter must produce a single column, got %d", w.NCols())
	}
	if t := w.Column(0).Type; t != table.Bool && t != table.Void {
		return nil, errs.Type("where", "a row filter must produce a boolean column, got `%s`", t)
	}
	if err := w.Raise(ctx, 0, ModeRow); err != nil {
		return nil, err
	}
	var rows []int
	for r, v := range w.Column(0).Data {
		if b, _ := v.AsBool(); b {
			rows = append(rows, r)
		}
	}
	return rows, nil
}

func rowIn(i int64, nrows int) (int, error) {
	j := i
	if j < 0 {
		j += int64(nrows)
	}
	if j < 0 || j >= int64(nrows) {
		return 0, errs.Value("where", "row %d is out of range for a frame with %d rows", i, nrows)
	}
	return int(j), nil
}
