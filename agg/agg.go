// Package agg implements the reduction kernels used by grouped
// aggregation.
//
// A Function accumulates the values of one group. Functions are
// associative: the partial state built over one run of rows can be merged
// into the state of an earlier run, so rows can be folded in independent
// chunks and combined afterwards.
package agg

import (
	"math"
	"sort"

	"github.com/razeghi71/dqexpr/op"
	"github.com/razeghi71/dqexpr/table"
)

// Function is the accumulator of a single group.
type Function interface {
	// Consume folds the value of one row into the state.
	Consume(v table.Value)
	// Merge folds the state of a later run of rows into this one. other
	// is always created by the same Pattern.
	Merge(other Function)
	// Result returns the aggregate, or a missing value when it is
	// undefined for the rows seen.
	Result() table.Value
}

// Pattern creates fresh accumulators for one reducer.
type Pattern func() Function

// NewPattern returns the accumulator pattern for reducer o applied to a
// column of type input, together with the storage type of the result. ok
// is false when the reducer does not accept that input type.
func NewPattern(o op.Op, input table.SType) (p Pattern, out table.SType, ok bool) {
	numeric := input == table.Bool || input.IsNumeric()
	void := input == table.Void
	switch o {
	case op.Count0:
		return func() Function { return new(countRows) }, table.Int64, true
	case op.Count:
		return func() Function { return new(countValid) }, table.Int64, true
	case op.Sum:
		switch {
		case input.IsFloat():
			return func() Function { return new(sumFloat) }, table.Float64, true
		case numeric || void:
			return func() Function { return new(sumInt) }, table.Int64, true
		}
	case op.Mean:
		if numeric || void {
			return func() Function { return new(mean) }, table.Float64, true
		}
	case op.Stdev:
		if numeric || void {
			return func() Function { return new(stdev) }, table.Float64, true
		}
	case op.Median:
		if numeric || void {
			return func() Function { return new(median) }, table.Float64, true
		}
	case op.Min, op.Max:
		less := o == op.Min
		switch {
		case input.IsFloat():
			return func() Function { return &extremeFloat{min: less} }, input, true
		case numeric || void:
			return func() Function { return &extremeInt{min: less} }, input, true
		}
	case op.First:
		return func() Function { return new(first) }, input, true
	case op.Last:
		return func() Function { return new(last) }, input, true
	}
	return nil, table.Void, false
}

type countRows struct{ n int64 }

func (c *countRows) Consume(table.Value) { c.n++ }
func (c *countRows) Merge(o Function) { c.n += o.(*countRows).n }
func (c *countRows) Result() table.Value { return table.IntVal(c.n) }

type countValid struct{ n int64 }

func (c *countValid) Consume(v table.Value) {
	if !v.IsNull() {
		c.n++
	}
}
func (c *countValid) Merge(o Function) { c.n += o.(*countValid).n }
func (c *countValid) Result() table.Value { return table.IntVal(c.n) }

// sumInt wraps on int64 overflow. Wrapping addition is associative, so the
// total does not depend on where chunks are cut.
type sumInt struct {
	n   int64
	sum int64
}

func (s *sumInt) Consume(v table.Value) {
	if i, ok := v.AsInt(); ok {
		s.sum += i
		s.n++
	}
}

func (s *sumInt) Merge(o Function) {
	other := o.(*sumInt)
	s.sum += other.sum
	s.n += other.n
}

func (s *sumInt) Result() table.Value {
	if s.n == 0 {
		return table.Null()
	}
	return table.IntVal(s.sum)
}

type sumFloat struct {
	n   int64
	sum float64
}

func (s *sumFloat) Consume(v table.Value) {
	if f, ok := v.AsFloat(); ok {
		s.sum += f
		s.n++
	}
}

func (s *sumFloat) Merge(o Function) {
	other := o.(*sumFloat)
	s.sum += other.sum
	s.n += other.n
}

func (s *sumFloat) Result() table.Value {
	if s.n == 0 {
		return table.Null()
	}
	return table.FloatVal(s.sum)
}

type mean struct {
	n   int64
	sum float64
}

func (m *mean) Consume(v table.Value) {
	if f, ok := v.AsFloat(); ok {
		m.sum += f
		m.n++
	}
}

func (m *mean) Merge(o Function) {
	other := o.(*mean)
	m.sum += other.sum
	m.n += other.n
}

func (m *mean) Result() table.Value {
	if m.n == 0 {
		return table.Null()
	}
	return table.FloatVal(m.sum / float64(m.n))
}

// stdev keeps count, running mean and the sum of squared deviations
// (Welford). Partial states combine with the pairwise update of Chan et al.
type stdev struct {
	n    int64
	mean float64
	m2   float64
}

func (s *stdev) Consume(v table.Value) {
	x, ok := v.AsFloat()
	if !ok {
		return
	}
	s.n++
	delta := x - s.mean
	s.mean += delta / float64(s.n)
	s.m2 += delta * (x - s.mean)
}

func (s *stdev) Merge(o Function) {
	other := o.(*stdev)
	if other.n == 0 {
		return
	}
	if s.n == 0 {
		*s = *other
		return
	}
	n := s.n + other.n
	delta := other.mean - s.mean
	s.mean += delta * float64(other.n) / float64(n)
	s.m2 += other.m2 + delta*delta*float64(s.n)*float64(other.n)/float64(n)
	s.n = n
}

func (s *stdev) Result() table.Value {
	if s.n < 2 {
		return table.Null()
	}
	return table.FloatVal(math.Sqrt(s.m2 / float64(s.n-1)))
}

type median struct{ vals []float64 }

func (m *median) Consume(v table.Value) {
	if f, ok := v.AsFloat(); ok {
		m.vals = append(m.vals, f)
	}
}

func (m *median) Merge(o Function) { m.vals = append(m.vals, o.(*median).vals...) }

func (m *median) Result() table.Value {
	n := len(m.vals)
	if n == 0 {
		return table.Null()
	}
	sorted := append([]float64(nil), m.vals...)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return table.FloatVal(sorted[n/2])
	}
	return table.FloatVal((sorted[n/2-1] + sorted[n/2]) / 2)
}

type extremeInt struct {
	min bool
	has bool
	v   int64
}

func (e *extremeInt) take(x int64) {
	if !e.has || (e.min && x < e.v) || (!e.min && x > e.v) {
		e.v = x
		e.has = true
	}
}

func (e *extremeInt) Consume(v table.Value) {
	if i, ok := v.AsInt(); ok {
		e.take(i)
	}
}

func (e *extremeInt) Merge(o Function) {
	if other := o.(*extremeInt); other.has {
		e.take(other.v)
	}
}

func (e *extremeInt) Result() table.Value {
	if !e.has {
		return table.Null()
	}
	return table.IntVal(e.v)
}

type extremeFloat struct {
	min bool
	has bool
	v   float64
}

func (e *extremeFloat) take(x float64) {
	if math.IsNaN(x) {
		return
	}
	if !e.has || (e.min && x < e.v) || (!e.min && x > e.v) {
		e.v = x
		e.has = true
	}
}

func (e *extremeFloat) Consume(v table.Value) {
	if f, ok := v.AsFloat(); ok {
		e.take(f)
	}
}

func (e *extremeFloat) Merge(o Function) {
	if other := o.(*extremeFloat); other.has {
		e.take(other.v)
	}
}

func (e *extremeFloat) Result() table.Value {
	if !e.has {
		return table.Null()
	}
	return table.FloatVal(e.v)
}

// first and last see missing values too: they return the cell of the
// first (last) row of the group, whatever it holds.
type first struct {
	has bool
	v   table.Value
}

func (f *first) Consume(v table.Value) {
	if !f.has {
		f.v = v
		f.has = true
	}
}

func (f *first) Merge(o Function) {
	if other := o.(*first); !f.has && other.has {
		*f = *other
	}
}

func (f *first) Result() table.Value { return f.v }

type last struct {
	has bool
	v   table.Value
}

func (l *last) Consume(v table.Value) {
	l.v = v
	l.has = true
}

func (l *last) Merge(o Function) {
	if other := o.(*last); other.has {
		*l = *other
	}
}

func (l *last) Result() table.Value { return l.v }
