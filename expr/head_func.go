package expr

import (
	"github.com/razeghi71/dqexpr/errs"
	"github.com/razeghi71/dqexpr/op"
)

// operator computes the result of an opcode from its evaluated operands.
type operator interface {
	apply(ctx *EvalContext, inputs []*Workframe) (*Workframe, error)
}

// funcHead is the head of every opcode whose operands are evaluated as
// values before the operation runs.
type funcHead struct {
	op     op.Op
	lo, hi int
	impl   operator
}

func (h *funcHead) Kind() Kind { return KindFunc }

func (h *funcHead) arity() (int, int) { return h.lo, h.hi }

func (h *funcHead) EvalSelector([]*Expr, *EvalContext, int) (*Workframe, error) {
	return nil, notSelector(h.op)
}

func (h *funcHead) EvalProjection(args []*Expr, ctx *EvalContext) (*Workframe, error) {
	return h.EvalNormal(args, ctx)
}

func (h *funcHead) EvalProxy(args []*Expr, ctx *EvalContext, proxy *Workframe) (*Workframe, error) {
	inputs, err := evalInputs(args, ctx, proxy)
	if err != nil {
		return nil, err
	}
	return h.impl.apply(ctx, inputs)
}

func (h *funcHead) EvalNormal(args []*Expr, ctx *EvalContext) (*Workframe, error) {
	inputs, err := evalInputs(args, ctx, nil)
	if err != nil {
		return nil, err
	}
	return h.impl.apply(ctx, inputs)
}

// evalInputs evaluates operands as values. With a proxy, operations pass
// it down and lists apply the same rule to their items; literal operands
// stay constants.
func evalInputs(args []*Expr, ctx *EvalContext, proxy *Workframe) ([]*Workframe, error) {
	out := make([]*Workframe, len(args))
	for i, a := range args {
		var err error
		switch {
		case proxy == nil:
			out[i], err = a.EvalNormal(ctx)
		case a.Kind() == KindFunc:
			out[i], err = a.EvalProxy(ctx, proxy)
		case a.Kind() == KindList:
			out[i], err = a.named(evalListInProxy(a.inputs, ctx, proxy))
		default:
			out[i], err = a.EvalNormal(ctx)
		}
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func evalListInProxy(items []*Expr, ctx *EvalContext, proxy *Workframe) (*Workframe, error) {
	ws, err := evalInputs(items, ctx, proxy)
	if err != nil {
		return nil, err
	}
	out := NewWorkframe()
	for _, w := range ws {
		out.Cbind(w)
	}
	return out, nil
}

func notSelector(o op.Op) error {
	return errs.Type(o.String(), "An expression cannot be used as a column selector")
}

// columnHead resolves its operand as a selector over one frame: f[...]
// for frame 0, g[...] for frame 1 and so on.
type columnHead struct {
	frame int
}

func (h *columnHead) Kind() Kind { return KindFunc }

func (h *columnHead) arity() (int, int) { return 1, 1 }

func (h *columnHead) EvalSelector([]*Expr, *EvalContext, int) (*Workframe, error) {
	return nil, notSelector(op.Col)
}

func (h *columnHead) EvalProjection(args []*Expr, ctx *EvalContext) (*Workframe, error) {
	return h.EvalNormal(args, ctx)
}

func (h *columnHead) EvalProxy(args []*Expr, ctx *EvalContext, proxy *Workframe) (*Workframe, error) {
	return args[0].EvalProxy(ctx, proxy)
}

func (h *columnHead) EvalNormal(args []*Expr, ctx *EvalContext) (*Workframe, error) {
	if err := checkFrame(ctx, h.frame); err != nil {
		return nil, err
	}
	return args[0].EvalSelector(ctx, h.frame)
}
