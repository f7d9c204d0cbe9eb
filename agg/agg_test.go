package agg

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/razeghi71/dqexpr/op"
	"github.com/razeghi71/dqexpr/table"
	"github.com/stretchr/testify/require"
)

func fold(t *testing.T, o op.Op, col *table.Column, rowGroup []int, ngroups int) []table.Value {
	t.Helper()
	typ := table.Void
	if col != nil {
		typ = col.Type
	}
	p, _, ok := NewPattern(o, typ)
	require.True(t, ok, "%s should accept %s", o, typ)
	return Fold(p, col, rowGroup, ngroups, Config{Workers: 1, ChunkSize: 3})
}

func oneGroup(n int) []int { return make([]int, n) }

func TestStdevSample(t *testing.T) {
	col := table.FloatColumn(2, 4, 4, 4, 5, 5, 7, 9)
	got := fold(t, op.Stdev, col, oneGroup(8), 1)
	require.InDelta(t, 2.138089935299395, got[0].Float, 1e-12)
}

func TestStdevSingleRowIsMissing(t *testing.T) {
	got := fold(t, op.Stdev, table.FloatColumn(42), oneGroup(1), 1)
	require.True(t, got[0].IsNull())
}

func TestStdevLargeMagnitude(t *testing.T) {
	// Values around 1e9 with unit spread: the naive sum-of-squares formula
	// loses every significant digit here.
	vals := []float64{1e9 + 4, 1e9 + 7, 1e9 + 13, 1e9 + 16}
	got := fold(t, op.Stdev, table.FloatColumn(vals...), oneGroup(4), 1)
	require.InDelta(t, math.Sqrt(30), got[0].Float, 1e-9)
}

func TestMissingValuesAreSkipped(t *testing.T) {
	col := table.NewColumn(table.Int32, []table.Value{
		table.IntVal(1), table.Null(), table.IntVal(5), // group 0
		table.Null(), table.Null(), // group 1
	})
	groups := []int{0, 0, 0, 1, 1}

	sum := fold(t, op.Sum, col, groups, 2)
	require.Equal(t, int64(6), sum[0].Int)
	require.True(t, sum[1].IsNull(), "all-missing sum must be missing, not zero")

	mean := fold(t, op.Mean, col, groups, 2)
	require.Equal(t, 3.0, mean[0].Float)
	require.True(t, mean[1].IsNull())

	lo := fold(t, op.Min, col, groups, 2)
	hi := fold(t, op.Max, col, groups, 2)
	require.Equal(t, int64(1), lo[0].Int)
	require.Equal(t, int64(5), hi[0].Int)
	require.True(t, lo[1].IsNull())
	require.True(t, hi[1].IsNull())

	cnt := fold(t, op.Count, col, groups, 2)
	require.Equal(t, int64(2), cnt[0].Int)
	require.Equal(t, int64(0), cnt[1].Int)

	rows := fold(t, op.Count0, nil, groups, 2)
	require.Equal(t, int64(3), rows[0].Int)
	require.Equal(t, int64(2), rows[1].Int)
}

func TestIntSumWrapsIndependentOfChunks(t *testing.T) {
	col := table.IntColumn(table.Int64, math.MaxInt64, 1, math.MaxInt64, -1, 5)
	p, _, ok := NewPattern(op.Sum, table.Int64)
	require.True(t, ok)
	want := int64(math.MaxInt64)
	want += 1
	want += math.MaxInt64
	want += 4
	for _, chunk := range []int{1, 2, 3, 5} {
		got := Fold(p, col, oneGroup(5), 1, Config{Workers: 2, ChunkSize: chunk})
		require.Equal(t, want, got[0].Int, "chunk size %d", chunk)
	}
}

func TestFirstLastKeepMissing(t *testing.T) {
	col := table.NewColumn(table.Str, []table.Value{
		table.Null(), table.StrVal("a"), table.StrVal("b"), table.Null(),
	})
	require.True(t, fold(t, op.First, col, oneGroup(4), 1)[0].IsNull())
	require.True(t, fold(t, op.Last, col, oneGroup(4), 1)[0].IsNull())

	groups := []int{0, 1, 1, 0}
	f := fold(t, op.First, col, groups, 2)
	l := fold(t, op.Last, col, groups, 2)
	require.Equal(t, "a", f[1].Str)
	require.Equal(t, "b", l[1].Str)
}

func TestMedian(t *testing.T) {
	got := fold(t, op.Median, table.FloatColumn(5, 1, 3, 2), oneGroup(4), 1)
	require.Equal(t, 2.5, got[0].Float)
	got = fold(t, op.Median, table.IntColumn(table.Int64, 9, 1, 3), oneGroup(3), 1)
	require.Equal(t, 3.0, got[0].Float)
}

func TestPatternTypes(t *testing.T) {
	tests := []struct {
		op   op.Op
		in   table.SType
		out  table.SType
		fail bool
	}{
		{op.Sum, table.Bool, table.Int64, false},
		{op.Sum, table.Int8, table.Int64, false},
		{op.Sum, table.Float32, table.Float64, false},
		{op.Mean, table.Int16, table.Float64, false},
		{op.Min, table.Int8, table.Int8, false},
		{op.Max, table.Float32, table.Float32, false},
		{op.First, table.Str, table.Str, false},
		{op.Count, table.Obj, table.Int64, false},
		{op.Sum, table.Str, table.Void, true},
		{op.Stdev, table.Obj, table.Void, true},
		{op.Min, table.Str, table.Void, true},
		{op.Plus, table.Int64, table.Void, true},
	}
	for _, tt := range tests {
		_, out, ok := NewPattern(tt.op, tt.in)
		require.Equal(t, !tt.fail, ok, "%s(%s)", tt.op, tt.in)
		if ok {
			require.Equal(t, tt.out, out, "%s(%s)", tt.op, tt.in)
		}
	}
}

func TestFoldDeterministicAcrossWorkers(t *testing.T) {
	const nrows = 20000
	const ngroups = 37
	rng := rand.New(rand.NewPCG(1, 2))
	data := make([]table.Value, nrows)
	groups := make([]int, nrows)
	for i := range data {
		if rng.IntN(10) == 0 {
			data[i] = table.Null()
		} else {
			data[i] = table.FloatVal(rng.NormFloat64()*1e6 + 1e8)
		}
		groups[i] = rng.IntN(ngroups)
	}
	col := table.NewColumn(table.Float64, data)

	for _, o := range []op.Op{op.Sum, op.Mean, op.Stdev, op.Min, op.Max, op.Median, op.First, op.Last, op.Count} {
		p, _, ok := NewPattern(o, table.Float64)
		require.True(t, ok)
		base := Fold(p, col, groups, ngroups, Config{Workers: 1, ChunkSize: 512})
		for _, workers := range []int{2, 8} {
			got := Fold(p, col, groups, ngroups, Config{Workers: workers, ChunkSize: 512})
			require.Len(t, got, ngroups)
			for g := range got {
				require.Equal(t, base[g].Type, got[g].Type, "%s group %d", o, g)
				require.Equal(t, math.Float64bits(base[g].Float), math.Float64bits(got[g].Float),
					"%s group %d workers %d", o, g, workers)
				require.Equal(t, base[g].Int, got[g].Int)
			}
		}
	}
}

func TestFoldEmpty(t *testing.T) {
	p, _, _ := NewPattern(op.Count0, table.Void)
	require.Empty(t, Fold(p, nil, nil, 0, DefaultConfig()))
}
