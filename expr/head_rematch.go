package expr

import (
	"regexp"

	"github.com/razeghi71/dqexpr/errs"
	"github.com/razeghi71/dqexpr/op"
	"github.com/razeghi71/dqexpr/table"
)

// reMatchOp tests whether whole strings match a regular expression.
type reMatchOp struct{ re *regexp.Regexp }

func newReMatch(pattern string) (reMatchOp, error) {
	re, err := regexp.Compile(`^(?:` + pattern + `)$`)
	if err != nil {
		return reMatchOp{}, errs.Value(op.ReMatch.String(), "invalid regular expression %q: %v", pattern, err)
	}
	return reMatchOp{re: re}, nil
}

func (m reMatchOp) apply(_ *EvalContext, inputs []*Workframe) (*Workframe, error) {
	in := inputs[0]
	out := NewWorkframe()
	for i := 0; i < in.NCols(); i++ {
		col := in.Column(i)
		if col.Type != table.Str && col.Type != table.Void {
			return nil, errs.Type(op.ReMatch.String(), "cannot be applied to a column of type `%s`", col.Type)
		}
		data := make([]table.Value, col.Len())
		for r := range data {
			if !col.IsNA(r) {
				data[r] = table.BoolVal(m.re.MatchString(col.Data[r].Str))
			}
		}
		out.AddColumn(&table.Column{Type: table.Bool, Data: data}, in.Name(i), in.Mode(i))
	}
	return out, nil
}
