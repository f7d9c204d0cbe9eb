package table

import (
	"math"
	"testing"
)

func usersFrame() *Frame {
	return MustFrame([]string{"name", "age", "city"},
		StrColumn("Alice", "Bob", "Charlie"),
		IntColumn(Int32, 30, 25, 35),
		StrColumn("NY", "LA", "NY"),
	)
}

func TestFrameShape(t *testing.T) {
	f := usersFrame()
	if f.NCols() != 3 || f.NRows() != 3 {
		t.Fatalf("expected 3x3, got %dx%d", f.NRows(), f.NCols())
	}
	if f.ColIndex("city") != 2 || f.ColIndex("nope") != -1 {
		t.Errorf("unexpected ColIndex results")
	}
	if got := f.Get(1, "name").Str; got != "Bob" {
		t.Errorf("expected Bob, got %q", got)
	}
	if !f.Get(7, "name").IsNull() {
		t.Errorf("out of range Get should be null")
	}
	types := f.Types()
	if types[0] != Str || types[1] != Int32 {
		t.Errorf("unexpected types %v", types)
	}
}

func TestNewFrameRejectsRaggedColumns(t *testing.T) {
	_, err := NewFrame([]string{"a", "b"}, []*Column{IntColumn(Int64, 1, 2), IntColumn(Int64, 1)})
	if err == nil {
		t.Fatal("expected error for ragged columns")
	}
	_, err = NewFrame([]string{"a"}, nil)
	if err == nil {
		t.Fatal("expected error for name/column mismatch")
	}
}

func TestFromRows(t *testing.T) {
	f, err := FromRows([]string{"x", "y"}, []SType{Int64, Str}, [][]Value{
		{IntVal(1), StrVal("a")},
		{Null()},
	})
	if err != nil {
		t.Fatal(err)
	}
	if f.NRows() != 2 {
		t.Fatalf("expected 2 rows, got %d", f.NRows())
	}
	if !f.Get(1, "x").IsNull() || !f.Get(1, "y").IsNull() {
		t.Errorf("short row should be padded with nulls")
	}
}

func TestConform(t *testing.T) {
	if v := Conform(FloatVal(1.1), Float32); v.Float != float64(float32(1.1)) {
		t.Errorf("float32 not rounded: %v", v.Float)
	}
	if v := Conform(IntVal(2), Bool); v.Type != TypeBool || !v.Bool {
		t.Errorf("int to bool: %+v", v)
	}
	if v := Conform(StrVal("x"), Int64); !v.IsNull() {
		t.Errorf("string in int column should be null, got %+v", v)
	}
	if v := Conform(IntVal(3), Obj); v.Type != TypeObject {
		t.Errorf("obj column should wrap, got %+v", v)
	}
	if v := Conform(StrVal("x"), Str); v.Str != "x" {
		t.Errorf("str cell should pass through, got %+v", v)
	}
	if v := Conform(IntVal(1), Void); !v.IsNull() {
		t.Errorf("void column should only hold missing values, got %+v", v)
	}
	if v := Conform(BoolVal(true), Bool); !v.Bool {
		t.Errorf("bool cell should pass through, got %+v", v)
	}
}

func TestTakeAndRepeat(t *testing.T) {
	c := IntColumn(Int64, 10, 20, 30)
	got := c.Take([]int{2, 0})
	if got.Len() != 2 || got.Get(0).Int != 30 || got.Get(1).Int != 10 {
		t.Errorf("unexpected Take result %+v", got.Data)
	}
	if got.IsNA(0) || !NewColumn(Int64, []Value{Null()}).IsNA(0) {
		t.Errorf("unexpected IsNA result")
	}
	r := IntColumn(Int64, 7).Repeat(3)
	if r.Len() != 3 || r.Get(2).Int != 7 {
		t.Errorf("unexpected Repeat result %+v", r.Data)
	}
}

func TestSTypes(t *testing.T) {
	for _, st := range STypes() {
		got, ok := ParseSType(st.String())
		if !ok || got != st {
			t.Errorf("ParseSType(%q) = %v", st.String(), got)
		}
	}
	lo, hi := Int8.IntBounds()
	if lo != math.MinInt8 || hi != math.MaxInt8 {
		t.Errorf("int8 bounds %d..%d", lo, hi)
	}
	if p, ok := Promote(Int16, Float32); !ok || p != Float32 {
		t.Errorf("Promote(int16, float32) = %v", p)
	}
	if p, ok := Promote(Bool, Int8); !ok || p != Int8 {
		t.Errorf("Promote(bool, int8) = %v", p)
	}
	if Int16.ValueType() != TypeInt || Float32.ValueType() != TypeFloat || Void.ValueType() != TypeNull {
		t.Error("unexpected physical value types")
	}
	if _, ok := Promote(Str, Int8); ok {
		t.Error("str should not promote")
	}
}

func TestValueAsString(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{Null(), "null"},
		{IntVal(-3), "-3"},
		{FloatVal(0.1), "0.1"},
		{BoolVal(true), "true"},
		{StrVal("x"), "x"},
		{ObjVal([]int{1}), "[1]"},
	}
	for _, tt := range tests {
		if got := tt.v.AsString(); got != tt.want {
			t.Errorf("AsString(%+v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestFrameString(t *testing.T) {
	f := MustFrame([]string{"a"}, IntColumn(Int64, 1, 2))
	if got := f.String(); got != "[ {a:1}, {a:2} ]" {
		t.Errorf("unexpected String: %q", got)
	}
	empty := MustFrame([]string{"a"}, IntColumn(Int64))
	if got := empty.String(); got != "[a] (0 rows)" {
		t.Errorf("unexpected String: %q", got)
	}
}
