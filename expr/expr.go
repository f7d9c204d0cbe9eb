package expr

import (
	"fmt"

	"github.com/razeghi71/dqexpr/ast"
	"github.com/razeghi71/dqexpr/errs"
)

// Expr is a compiled node: a Head plus the operand sub-trees it owns.
type Expr struct {
	head   Head
	inputs []*Expr
	alias  string
}

// New compiles an expression tree. Opcodes are resolved through the node
// factory; operand counts are checked here, so a compiled tree never fails
// for structural reasons during evaluation.
func New(e ast.Expr) (*Expr, error) {
	switch n := e.(type) {
	case *ast.LiteralExpr:
		h, err := literalHead(n)
		if err != nil {
			return nil, err
		}
		return &Expr{head: h}, nil
	case *ast.SliceExpr:
		if n.Start == nil && n.Stop == nil && n.Step == nil {
			return &Expr{head: sliceAllHead{}}, nil
		}
		if n.Step != nil && *n.Step == 0 {
			return nil, errs.Value("slice", "slice step cannot be zero")
		}
		return &Expr{head: &sliceIntHead{start: n.Start, stop: n.Stop, step: n.Step}}, nil
	case *ast.NameRangeExpr:
		return &Expr{head: &sliceStrHead{from: n.From, to: n.To}}, nil
	case *ast.ListExpr:
		inputs, err := newAll(n.Items)
		if err != nil {
			return nil, err
		}
		return &Expr{head: listHead{}, inputs: inputs}, nil
	case *ast.NamedExpr:
		inner, err := New(n.Expr)
		if err != nil {
			return nil, err
		}
		inner.alias = n.Name
		return inner, nil
	case *ast.OpExpr:
		return newOp(n)
	case nil:
		return nil, errs.Internal("compile", "nil expression")
	default:
		return nil, errs.Internal("compile", "unknown expression type %T", e)
	}
}

func newAll(items []ast.Expr) ([]*Expr, error) {
	out := make([]*Expr, len(items))
	for i, it := range items {
		e, err := New(it)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func newOp(n *ast.OpExpr) (*Expr, error) {
	head, err := Construct(n.Op, n.Params)
	if err != nil {
		return nil, err
	}
	if a, ok := head.(arityChecker); ok {
		lo, hi := a.arity()
		if len(n.Args) < lo || (hi >= 0 && len(n.Args) > hi) {
			return nil, errs.Internal(n.Op.String(), "expected %s operands, got %d",
				arityString(lo, hi), len(n.Args))
		}
	}
	inputs, err := newAll(n.Args)
	if err != nil {
		return nil, err
	}
	return &Expr{head: head, inputs: inputs}, nil
}

func arityString(lo, hi int) string {
	switch {
	case lo == hi:
		return fmt.Sprintf("%d", lo)
	case hi < 0:
		return fmt.Sprintf("at least %d", lo)
	default:
		return fmt.Sprintf("%d to %d", lo, hi)
	}
}

// Kind returns the kind of the node's head.
func (e *Expr) Kind() Kind { return e.head.Kind() }

// EvalSelector evaluates the node as a column selector over frame.
func (e *Expr) EvalSelector(ctx *EvalContext, frame int) (*Workframe, error) {
	return e.named(e.head.EvalSelector(e.inputs, ctx, frame))
}

// EvalProjection evaluates the node as a list of output columns.
func (e *Expr) EvalProjection(ctx *EvalContext) (*Workframe, error) {
	return e.named(e.head.EvalProjection(e.inputs, ctx))
}

// EvalProxy evaluates the node with column references bound to proxy.
func (e *Expr) EvalProxy(ctx *EvalContext, proxy *Workframe) (*Workframe, error) {
	return e.named(e.head.EvalProxy(e.inputs, ctx, proxy))
}

// EvalNormal computes the node's value.
func (e *Expr) EvalNormal(ctx *EvalContext) (*Workframe, error) {
	return e.named(e.head.EvalNormal(e.inputs, ctx))
}

func (e *Expr) named(w *Workframe, err error) (*Workframe, error) {
	if err != nil || e.alias == "" {
		return w, err
	}
	if w.NCols() != 1 {
		return nil, errs.Value("as", "cannot name %d columns %q", w.NCols(), e.alias)
	}
	w.Rename(0, e.alias)
	return w, nil
}
