package expr

import (
	"github.com/razeghi71/dqexpr/agg"
	"github.com/razeghi71/dqexpr/errs"
	"github.com/razeghi71/dqexpr/op"
	"github.com/razeghi71/dqexpr/table"
)

// reduceOp folds every column of its operand into one value per group.
type reduceOp struct{ op op.Op }

func (r reduceOp) apply(ctx *EvalContext, inputs []*Workframe) (*Workframe, error) {
	in := inputs[0]
	gb := ctx.Groupby()
	out := NewWorkframe()
	for i := 0; i < in.NCols(); i++ {
		col := in.Column(i)
		rowGroup := gb.RowGroups()
		switch in.Mode(i) {
		case ModeScalar:
			col = col.Repeat(ctx.NRows())
		case ModeGroup:
			// already one value per group
			rowGroup = identity(gb.NGroups())
		}
		p, t, ok := agg.NewPattern(r.op, col.Type)
		if !ok {
			return nil, errs.Type(r.op.String(), "cannot reduce a column of type `%s`", col.Type)
		}
		vals := fold(ctx, r.op, p, col, rowGroup)
		out.AddColumn(table.NewColumn(t, vals), in.Name(i), ModeGroup)
	}
	return out, nil
}

// count0Op counts the rows of every group.
type count0Op struct{}

func (count0Op) apply(ctx *EvalContext, _ []*Workframe) (*Workframe, error) {
	p, t, _ := agg.NewPattern(op.Count0, table.Void)
	vals := fold(ctx, op.Count0, p, nil, ctx.Groupby().RowGroups())
	out := NewWorkframe()
	out.AddColumn(table.NewColumn(t, vals), "count", ModeGroup)
	return out, nil
}

func fold(ctx *EvalContext, o op.Op, p agg.Pattern, col *table.Column, rowGroup []int) []table.Value {
	ngroups := ctx.Groupby().NGroups()
	ctx.Logger().Debug("fold", "op", o.String(), "rows", len(rowGroup), "groups", ngroups)
	return agg.Fold(p, col, rowGroup, ngroups, ctx.AggConfig())
}
