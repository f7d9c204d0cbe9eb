// Package expr compiles operation trees into evaluator nodes and runs them
// against the frames of a statement.
//
// Every node is an Expr: a Head, which knows how to evaluate one kind of
// operation, plus the operand sub-trees the Head consumes. A Head can be
// evaluated in four contexts, each with its own method, so that a node that
// is illegal in some context is rejected at the call rather than after
// inspecting its result:
//
//   - selector: the node chooses columns of a frame, as in f[...];
//   - projection: the node defines output columns of a statement;
//   - proxy: column references resolve against a workframe produced by
//     another part of the statement instead of a source frame;
//   - normal: the node computes a value from its operands.
package expr

// Kind classifies nodes for callers that need special handling.
type Kind int

const (
	KindUnknown Kind = iota
	KindNone
	KindBool
	KindInt
	KindFloat
	KindStr
	KindFunc
	KindList
	KindSliceAll
	KindSliceInt
	KindSliceStr
)

var kindNames = [...]string{
	KindUnknown:  "unknown",
	KindNone:     "none",
	KindBool:     "bool",
	KindInt:      "int",
	KindFloat:    "float",
	KindStr:      "str",
	KindFunc:     "func",
	KindList:     "list",
	KindSliceAll: "slice-all",
	KindSliceInt: "slice-int",
	KindSliceStr: "slice-str",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind?"
}

// Head is the evaluator of one node. args are the node's operands.
type Head interface {
	Kind() Kind
	EvalSelector(args []*Expr, ctx *EvalContext, frame int) (*Workframe, error)
	EvalProjection(args []*Expr, ctx *EvalContext) (*Workframe, error)
	EvalProxy(args []*Expr, ctx *EvalContext, proxy *Workframe) (*Workframe, error)
	EvalNormal(args []*Expr, ctx *EvalContext) (*Workframe, error)
}

// arityChecker is implemented by heads with a fixed operand count.
type arityChecker interface {
	arity() (lo, hi int)
}
