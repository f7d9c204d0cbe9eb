package ast

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/razeghi71/dqexpr/op"
	"github.com/razeghi71/dqexpr/table"
)

// The JSON statement format mirrors the tree one node per object:
//
//	{"op": "sum", "args": [{"f": "A"}]}      sum(f.A)
//	{"op": "col", "params": [1], "args": [{"str": "x"}]}
//	{"op": "cast", "params": ["int8"], "args": [{"f": "A"}]}
//	{"int": 3}  {"float": 0.5}  {"str": "x"}  {"bool": true}  {"none": true}
//	{"slice": {"start": 0, "stop": 2}}  {"range": ["A", "C"]}  {"list": [...]}
//
// "f" is shorthand for a column of frame 0 by name ("frame" picks another
// frame), and "as" names the node's output.

type wireStatement struct {
	Where  *wireNode   `json:"where"`
	Select []*wireNode `json:"select"`
	By     []*wireNode `json:"by"`
	Having *wireNode   `json:"having"`
}

type wireSlice struct {
	Start *int64 `json:"start"`
	Stop  *int64 `json:"stop"`
	Step  *int64 `json:"step"`
}

type wireNode struct {
	Op     string            `json:"op"`
	Params []json.RawMessage `json:"params"`
	Args   []*wireNode       `json:"args"`

	F     *string `json:"f"`
	Frame int     `json:"frame"`

	Int   *int64      `json:"int"`
	Float *float64    `json:"float"`
	Str   *string     `json:"str"`
	Bool  *bool       `json:"bool"`
	None  bool        `json:"none"`
	Slice *wireSlice  `json:"slice"`
	Range []string    `json:"range"`
	List  []*wireNode `json:"list"`

	As string `json:"as"`
}

// DecodeStatement parses a JSON statement.
func DecodeStatement(data []byte) (*Statement, error) {
	var w wireStatement
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&w); err != nil {
		return nil, fmt.Errorf("cannot parse statement: %w", err)
	}

	st := &Statement{}
	var err error
	if st.Where, err = decodeOptional(w.Where, "where"); err != nil {
		return nil, err
	}
	if st.Having, err = decodeOptional(w.Having, "having"); err != nil {
		return nil, err
	}
	if w.Select != nil {
		if st.Select, err = decodeList(w.Select, "select"); err != nil {
			return nil, err
		}
	}
	if st.By, err = decodeList(w.By, "by"); err != nil {
		return nil, err
	}
	return st, nil
}

// DecodeExpr parses a single JSON expression node.
func DecodeExpr(data []byte) (Expr, error) {
	var w wireNode
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("cannot parse expression: %w", err)
	}
	return decodeNode(&w, "expr")
}

func decodeOptional(w *wireNode, path string) (Expr, error) {
	if w == nil {
		return nil, nil
	}
	return decodeNode(w, path)
}

func decodeList(ws []*wireNode, path string) ([]Expr, error) {
	out := make([]Expr, len(ws))
	for i, w := range ws {
		e, err := decodeNode(w, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func decodeNode(w *wireNode, path string) (Expr, error) {
	if w == nil {
		return nil, fmt.Errorf("%s: empty node", path)
	}
	e, err := decodeBare(w, path)
	if err != nil {
		return nil, err
	}
	if w.As != "" {
		return As(w.As, e), nil
	}
	return e, nil
}

func decodeBare(w *wireNode, path string) (Expr, error) {
	switch {
	case w.Op != "":
		return decodeOp(w, path)
	case w.F != nil:
		return Col(w.Frame, Str(*w.F)), nil
	case w.Int != nil:
		return Int(*w.Int), nil
	case w.Float != nil:
		return Float(*w.Float), nil
	case w.Str != nil:
		return Str(*w.Str), nil
	case w.Bool != nil:
		return Bool(*w.Bool), nil
	case w.None:
		return None(), nil
	case w.Slice != nil:
		return &SliceExpr{Start: w.Slice.Start, Stop: w.Slice.Stop, Step: w.Slice.Step}, nil
	case w.Range != nil:
		if len(w.Range) != 2 {
			return nil, fmt.Errorf("%s: range needs exactly 2 names, got %d", path, len(w.Range))
		}
		return &NameRangeExpr{From: w.Range[0], To: w.Range[1]}, nil
	case w.List != nil:
		items, err := decodeList(w.List, path+".list")
		if err != nil {
			return nil, err
		}
		return List(items...), nil
	default:
		return nil, fmt.Errorf("%s: node has no content", path)
	}
}

func decodeOp(w *wireNode, path string) (Expr, error) {
	o, ok := op.Parse(w.Op)
	if !ok {
		return nil, fmt.Errorf("%s: unknown operation %q", path, w.Op)
	}
	params := make([]any, len(w.Params))
	for i, raw := range w.Params {
		p, err := decodeParam(o, raw)
		if err != nil {
			return nil, fmt.Errorf("%s: param %d of %s: %w", path, i, o, err)
		}
		params[i] = p
	}
	args, err := decodeList(w.Args, path+"."+w.Op)
	if err != nil {
		return nil, err
	}
	return &OpExpr{Op: o, Params: params, Args: args}, nil
}

// decodeParam converts a raw JSON parameter into the Go type the
// operation's constructor expects: int for numbers, table.SType for the
// cast target, string otherwise.
func decodeParam(o op.Op, raw json.RawMessage) (any, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	switch x := v.(type) {
	case float64:
		if x != math.Trunc(x) {
			return x, nil
		}
		return int(x), nil
	case string:
		if o == op.Cast {
			st, ok := table.ParseSType(x)
			if !ok {
				return nil, fmt.Errorf("unknown stype %q", x)
			}
			return st, nil
		}
		return x, nil
	default:
		return v, nil
	}
}
