package expr

import (
	"github.com/razeghi71/dqexpr/errs"
	"github.com/razeghi71/dqexpr/op"
)

// colsetOp adds or removes column sets: f[:].extend(...) and
// f[:].remove(...).
type colsetOp struct{ minus bool }

func (c colsetOp) apply(_ *EvalContext, inputs []*Workframe) (*Workframe, error) {
	lhs, rhs := inputs[0], inputs[1]
	if !c.minus {
		out := NewWorkframe()
		out.Cbind(lhs)
		out.Cbind(rhs)
		return out, nil
	}
	remove := make(map[colKey]bool)
	for i := 0; i < rhs.NCols(); i++ {
		frame, index, ok := rhs.Source(i)
		if !ok {
			return nil, errs.Type(op.SetMinus.String(), "computed column %q cannot be removed from a column set", rhs.Name(i))
		}
		remove[colKey{frame, index}] = true
	}
	return lhs.Without(func(i int) bool {
		frame, index, ok := lhs.Source(i)
		return ok && remove[colKey{frame, index}]
	}), nil
}
