package table

import "fmt"

// Column is a typed sequence of cells.
type Column struct {
	Type SType
	Data []Value
}

// NewColumn creates a column of the given storage type. Cells are conformed
// to the type: integers are kept as TypeInt, float32 cells are rounded to
// single precision.
func NewColumn(t SType, data []Value) *Column {
	c := &Column{Type: t, Data: make([]Value, len(data))}
	for i, v := range data {
		c.Data[i] = Conform(v, t)
	}
	return c
}

// Conform coerces v into the physical representation of t. Values that
// have no representation in t become missing.
func Conform(v Value, t SType) Value {
	if v.IsNull() {
		return v
	}
	if v.Type == t.ValueType() && t != Float32 {
		return v
	}
	switch {
	case t == Bool:
		if i, ok := v.AsInt(); ok {
			return BoolVal(i != 0)
		}
	case t.IsInteger():
		if i, ok := v.AsInt(); ok {
			return IntVal(i)
		}
	case t == Float32:
		if f, ok := v.AsFloat(); ok {
			return FloatVal(float64(float32(f)))
		}
	case t == Float64:
		if f, ok := v.AsFloat(); ok {
			return FloatVal(f)
		}
	case t == Obj:
		return ObjVal(v.Any())
	}
	return Null()
}

// IntColumn builds an integer (or bool) column from plain values.
func IntColumn(t SType, vals ...int64) *Column {
	data := make([]Value, len(vals))
	for i, v := range vals {
		data[i] = IntVal(v)
	}
	return NewColumn(t, data)
}

// FloatColumn builds a float64 column from plain values.
func FloatColumn(vals ...float64) *Column {
	data := make([]Value, len(vals))
	for i, v := range vals {
		data[i] = FloatVal(v)
	}
	return &Column{Type: Float64, Data: data}
}

// StrColumn builds a string column from plain values.
func StrColumn(vals ...string) *Column {
	data := make([]Value, len(vals))
	for i, v := range vals {
		data[i] = StrVal(v)
	}
	return &Column{Type: Str, Data: data}
}

// BoolColumn builds a boolean column from plain values.
func BoolColumn(vals ...bool) *Column {
	data := make([]Value, len(vals))
	for i, v := range vals {
		data[i] = BoolVal(v)
	}
	return &Column{Type: Bool, Data: data}
}

// Len returns the number of rows.
func (c *Column) Len() int { return len(c.Data) }

// Get returns the cell at row i.
func (c *Column) Get(i int) Value { return c.Data[i] }

// IsNA reports whether the cell at row i is missing.
func (c *Column) IsNA(i int) bool { return c.Data[i].IsNull() }

// Take returns a new column holding the rows at the given positions.
func (c *Column) Take(rows []int) *Column {
	data := make([]Value, len(rows))
	for i, r := range rows {
		data[i] = c.Data[r]
	}
	return &Column{Type: c.Type, Data: data}
}

// Repeat returns a column of n copies of a single-row column.
func (c *Column) Repeat(n int) *Column {
	if c.Len() != 1 {
		panic(fmt.Sprintf("table: Repeat on a column of %d rows", c.Len()))
	}
	data := make([]Value, n)
	for i := range data {
		data[i] = c.Data[0]
	}
	return &Column{Type: c.Type, Data: data}
}
