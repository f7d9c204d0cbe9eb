package ast

import (
	"testing"

	"github.com/razeghi71/dqexpr/op"
	"github.com/razeghi71/dqexpr/table"
)

func TestDecodeGroupedStatement(t *testing.T) {
	st, err := DecodeStatement([]byte(`{
		"select": [{"op": "sum", "args": [{"f": "A"}], "as": "total"}],
		"by": [{"f": "B"}]
	}`))
	if err != nil {
		t.Fatal(err)
	}
	if len(st.Select) != 1 || len(st.By) != 1 {
		t.Fatalf("unexpected shape: %+v", st)
	}
	named, ok := st.Select[0].(*NamedExpr)
	if !ok || named.Name != "total" {
		t.Fatalf("expected named select item, got %#v", st.Select[0])
	}
	sum, ok := named.Expr.(*OpExpr)
	if !ok || sum.Op != op.Sum || len(sum.Args) != 1 {
		t.Fatalf("expected sum(...), got %#v", named.Expr)
	}
	col, ok := sum.Args[0].(*OpExpr)
	if !ok || col.Op != op.Col || col.Params[0] != 0 {
		t.Fatalf("expected col with frame 0, got %#v", sum.Args[0])
	}
	if lit, ok := col.Args[0].(*LiteralExpr); !ok || lit.Str != "A" {
		t.Fatalf("expected selector \"A\", got %#v", col.Args[0])
	}
	if st.Where != nil || st.Having != nil {
		t.Errorf("where/having should be nil")
	}
}

func TestDecodeParams(t *testing.T) {
	e, err := DecodeExpr([]byte(`{"op": "cast", "params": ["int8"], "args": [{"f": "A"}]}`))
	if err != nil {
		t.Fatal(err)
	}
	cast := e.(*OpExpr)
	if cast.Params[0] != table.Int8 {
		t.Errorf("expected stype param, got %#v", cast.Params[0])
	}

	e, err = DecodeExpr([]byte(`{"op": "col", "params": [2], "args": [{"int": -1}]}`))
	if err != nil {
		t.Fatal(err)
	}
	if p := e.(*OpExpr).Params[0]; p != 2 {
		t.Errorf("expected int param 2, got %#v", p)
	}

	if _, err := DecodeExpr([]byte(`{"op": "cast", "params": ["int7"]}`)); err == nil {
		t.Error("expected error for unknown stype")
	}
	if _, err := DecodeExpr([]byte(`{"op": "frobnicate"}`)); err == nil {
		t.Error("expected error for unknown op")
	}
}

func TestDecodeSelectors(t *testing.T) {
	tests := []struct {
		json string
		want func(Expr) bool
	}{
		{`{"slice": {"start": 1}}`, func(e Expr) bool {
			s, ok := e.(*SliceExpr)
			return ok && *s.Start == 1 && s.Stop == nil
		}},
		{`{"range": ["A", "C"]}`, func(e Expr) bool {
			r, ok := e.(*NameRangeExpr)
			return ok && r.From == "A" && r.To == "C"
		}},
		{`{"list": [{"int": 0}, {"str": "x"}]}`, func(e Expr) bool {
			l, ok := e.(*ListExpr)
			return ok && len(l.Items) == 2
		}},
		{`{"none": true}`, func(e Expr) bool {
			l, ok := e.(*LiteralExpr)
			return ok && l.Kind == "null"
		}},
		{`{"f": "x", "frame": 1}`, func(e Expr) bool {
			c, ok := e.(*OpExpr)
			return ok && c.Op == op.Col && c.Params[0] == 1
		}},
	}
	for _, tt := range tests {
		e, err := DecodeExpr([]byte(tt.json))
		if err != nil {
			t.Errorf("%s: %v", tt.json, err)
			continue
		}
		if !tt.want(e) {
			t.Errorf("%s: unexpected node %#v", tt.json, e)
		}
	}
}

func TestDecodeRejectsBadInput(t *testing.T) {
	bad := []string{
		`{"select": [{}]}`,
		`{"select": [{"range": ["A"]}]}`,
		`{"selec": []}`,
		`not json`,
	}
	for _, b := range bad {
		if _, err := DecodeStatement([]byte(b)); err == nil {
			t.Errorf("expected error for %s", b)
		}
	}
}

func TestBuilders(t *testing.T) {
	e := Call(op.Plus, F("a"), Int(1))
	if e.Op != op.Plus || len(e.Args) != 2 {
		t.Fatalf("unexpected node %#v", e)
	}
	if c := Cast(table.Float64, F("a")); c.Params[0] != table.Float64 {
		t.Errorf("cast param lost")
	}
	if r := ReMatch(F("a"), "^x"); r.Params[0] != "^x" {
		t.Errorf("pattern param lost")
	}
	if s := All(); s.Start != nil || s.Stop != nil || s.Step != nil {
		t.Errorf("All() should have no bounds")
	}
}
