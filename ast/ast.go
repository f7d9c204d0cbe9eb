// Package ast describes the typed expression tree the engine consumes.
//
// The tree is produced by a host binding layer; this package never parses
// query text. Operation nodes carry an opcode, the literal parameters bound
// when the node was built, and their operand sub-trees.
package ast

import (
	"github.com/razeghi71/dqexpr/op"
	"github.com/razeghi71/dqexpr/table"
)

// Expr is one node of an expression tree.
type Expr interface {
	exprNode()
}

// LiteralExpr represents a literal value: number, string, bool, null.
type LiteralExpr struct {
	// Kind: "int", "float", "string", "bool", "null"
	Kind  string
	Int   int64
	Float float64
	Str   string
	Bool  bool
}

func (e *LiteralExpr) exprNode() {}

// SliceExpr selects a positional range start:stop:step. Nil bounds take
// their defaults; a slice with no bounds at all selects everything.
type SliceExpr struct {
	Start, Stop, Step *int64
}

func (e *SliceExpr) exprNode() {}

// NameRangeExpr selects every column from From to To inclusive, by name.
type NameRangeExpr struct {
	From, To string
}

func (e *NameRangeExpr) exprNode() {}

// ListExpr is an ordered list of expressions.
type ListExpr struct {
	Items []Expr
}

func (e *ListExpr) exprNode() {}

// OpExpr is an operation node: opcode, bound parameters and operands.
type OpExpr struct {
	Op     op.Op
	Params []any
	Args   []Expr
}

func (e *OpExpr) exprNode() {}

// NamedExpr gives the columns produced by Expr an explicit output name.
type NamedExpr struct {
	Name string
	Expr Expr
}

func (e *NamedExpr) exprNode() {}

// Statement is select(where, select, by) against one or more frames,
// optionally filtered afterwards by having.
type Statement struct {
	Where  Expr   // row selector, nil = all rows
	Select []Expr // projection, nil = every column of frame 0
	By     []Expr // grouping keys
	Having Expr   // filter over the assembled result
}

// --- Builders ---

// Int returns an integer literal.
func Int(v int64) *LiteralExpr { return &LiteralExpr{Kind: "int", Int: v} }

// Float returns a float literal.
func Float(v float64) *LiteralExpr { return &LiteralExpr{Kind: "float", Float: v} }

// Str returns a string literal.
func Str(v string) *LiteralExpr { return &LiteralExpr{Kind: "string", Str: v} }

// Bool returns a boolean literal.
func Bool(v bool) *LiteralExpr { return &LiteralExpr{Kind: "bool", Bool: v} }

// None returns the null literal.
func None() *LiteralExpr { return &LiteralExpr{Kind: "null"} }

// All selects every column.
func All() *SliceExpr { return &SliceExpr{} }

// Slice selects positions start:stop.
func Slice(start, stop int64) *SliceExpr {
	return &SliceExpr{Start: &start, Stop: &stop}
}

// List returns a list of expressions.
func List(items ...Expr) *ListExpr { return &ListExpr{Items: items} }

// Col references columns of frame number frame chosen by sel.
func Col(frame int, sel Expr) *OpExpr {
	return &OpExpr{Op: op.Col, Params: []any{frame}, Args: []Expr{sel}}
}

// F references a column of the primary frame by name.
func F(name string) *OpExpr { return Col(0, Str(name)) }

// Call builds an operation node that takes no parameters.
func Call(o op.Op, args ...Expr) *OpExpr {
	return &OpExpr{Op: o, Args: args}
}

// Cast converts its operand to storage type t.
func Cast(t table.SType, arg Expr) *OpExpr {
	return &OpExpr{Op: op.Cast, Params: []any{t}, Args: []Expr{arg}}
}

// ReMatch tests its operand against a regular expression.
func ReMatch(arg Expr, pattern string) *OpExpr {
	return &OpExpr{Op: op.ReMatch, Params: []any{pattern}, Args: []Expr{arg}}
}

// Count0 counts the rows of every group.
func Count0() *OpExpr { return &OpExpr{Op: op.Count0} }

// As names the output of e.
func As(name string, e Expr) *NamedExpr { return &NamedExpr{Name: name, Expr: e} }
