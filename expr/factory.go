package expr

import (
	"errors"
	"fmt"
	"sync"

	"github.com/razeghi71/dqexpr/errs"
	"github.com/razeghi71/dqexpr/op"
	"github.com/razeghi71/dqexpr/table"
)

// ErrUnknownOpcode is wrapped by the internal error Construct returns for
// an opcode outside the closed set.
var ErrUnknownOpcode = errors.New("unknown opcode")

type maker func(o op.Op, params []any) (Head, error)

var registry = sync.OnceValue(func() []maker {
	r := make([]maker, op.Math2Last+1)
	bind := func(o op.Op, m maker) {
		if r[o] != nil {
			panic(fmt.Sprintf("expr: opcode %s registered twice", o))
		}
		r[o] = m
	}
	for o := op.UnopFirst; o <= op.UnopLast; o++ {
		bind(o, makeUnary)
	}
	for o := op.BinopFirst; o <= op.BinopLast; o++ {
		bind(o, makeBinary)
	}
	for o := op.ReducerFirst; o <= op.ReducerLast; o++ {
		bind(o, makeReduce)
	}
	for o := op.MathFirst; o <= op.MathLast; o++ {
		bind(o, makeUnary)
	}
	bind(op.SetPlus, makeColset)
	bind(op.SetMinus, makeColset)
	bind(op.Col, makeColumn)
	bind(op.Cast, makeCast)
	bind(op.Count0, makeCount0)
	bind(op.ReMatch, makeReMatch)
	for o := op.Math2First; o <= op.Math2Last; o++ {
		bind(o, makeReserved)
	}
	return r
})

// Construct creates the head for opcode o with its bound parameters.
func Construct(o op.Op, params []any) (Head, error) {
	r := registry()
	if o < 0 || int(o) >= len(r) || r[o] == nil {
		return nil, errs.Internalw("construct", ErrUnknownOpcode, "opcode %d", int(o))
	}
	return r[o](o, params)
}

func noParams(o op.Op, params []any) error {
	if len(params) != 0 {
		return errs.Internal(o.String(), "takes no parameters, got %d", len(params))
	}
	return nil
}

func oneParam(o op.Op, params []any) (any, error) {
	if len(params) != 1 {
		return nil, errs.Internal(o.String(), "takes 1 parameter, got %d", len(params))
	}
	return params[0], nil
}

func makeUnary(o op.Op, params []any) (Head, error) {
	if err := noParams(o, params); err != nil {
		return nil, err
	}
	return &funcHead{op: o, lo: 1, hi: 1, impl: unaryOp{op: o}}, nil
}

func makeBinary(o op.Op, params []any) (Head, error) {
	if err := noParams(o, params); err != nil {
		return nil, err
	}
	return &funcHead{op: o, lo: 2, hi: 2, impl: binaryOp{op: o}}, nil
}

func makeReduce(o op.Op, params []any) (Head, error) {
	if err := noParams(o, params); err != nil {
		return nil, err
	}
	return &funcHead{op: o, lo: 1, hi: 1, impl: reduceOp{op: o}}, nil
}

func makeCount0(o op.Op, params []any) (Head, error) {
	if err := noParams(o, params); err != nil {
		return nil, err
	}
	return &funcHead{op: o, lo: 0, hi: 0, impl: count0Op{}}, nil
}

func makeColset(o op.Op, params []any) (Head, error) {
	if err := noParams(o, params); err != nil {
		return nil, err
	}
	return &funcHead{op: o, lo: 2, hi: 2, impl: colsetOp{minus: o == op.SetMinus}}, nil
}

func makeColumn(o op.Op, params []any) (Head, error) {
	p, err := oneParam(o, params)
	if err != nil {
		return nil, err
	}
	var frame int
	switch v := p.(type) {
	case int:
		frame = v
	case int64:
		frame = int(v)
	default:
		return nil, errs.Internal(o.String(), "frame parameter must be an integer, got %T", p)
	}
	if frame < 0 {
		return nil, errs.Internal(o.String(), "negative frame %d", frame)
	}
	return &columnHead{frame: frame}, nil
}

func makeCast(o op.Op, params []any) (Head, error) {
	p, err := oneParam(o, params)
	if err != nil {
		return nil, err
	}
	var target table.SType
	switch v := p.(type) {
	case table.SType:
		target = v
	case string:
		t, ok := table.ParseSType(v)
		if !ok {
			return nil, errs.Internal(o.String(), "unknown stype %q", v)
		}
		target = t
	default:
		return nil, errs.Internal(o.String(), "target parameter must be an stype, got %T", p)
	}
	if !target.Valid() {
		return nil, errs.Internal(o.String(), "invalid stype %d", int(target))
	}
	return &funcHead{op: o, lo: 1, hi: 1, impl: castOp{target: target}}, nil
}

func makeReMatch(o op.Op, params []any) (Head, error) {
	p, err := oneParam(o, params)
	if err != nil {
		return nil, err
	}
	pattern, ok := p.(string)
	if !ok {
		return nil, errs.Internal(o.String(), "pattern parameter must be a string, got %T", p)
	}
	m, err := newReMatch(pattern)
	if err != nil {
		return nil, err
	}
	return &funcHead{op: o, lo: 1, hi: 1, impl: m}, nil
}

func makeReserved(o op.Op, _ []any) (Head, error) {
	return nil, errs.NotImplemented(o.String(), "operation is not implemented")
}
