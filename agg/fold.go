package agg

import (
	"runtime"

	"github.com/razeghi71/dqexpr/table"
	"golang.org/x/sync/errgroup"
)

// Config controls how a fold is spread over goroutines.
type Config struct {
	// Workers bounds the number of goroutines folding chunks at once.
	Workers int
	// ChunkSize is the number of rows per chunk. Chunk boundaries depend
	// only on ChunkSize and the row count, never on Workers, which is what
	// keeps floating-point results identical for any worker count.
	ChunkSize int
	// ParallelThreshold is the row count below which the fold runs on the
	// calling goroutine.
	ParallelThreshold int
}

// DefaultConfig returns a Config sized for the current machine.
func DefaultConfig() Config {
	return Config{
		Workers:           runtime.GOMAXPROCS(0),
		ChunkSize:         16384,
		ParallelThreshold: 65536,
	}
}

func (c Config) normalize() Config {
	if c.Workers < 1 {
		c.Workers = 1
	}
	if c.ChunkSize < 1 {
		c.ChunkSize = DefaultConfig().ChunkSize
	}
	return c
}

// partial holds the accumulators one chunk touched, in first-touch order.
type partial struct {
	groups []int
	funcs  []Function
}

// Fold reduces col per group. rowGroup maps every row to its group in
// [0, ngroups); col may be nil for reducers that do not read values. The
// result holds one value per group, in group order.
//
// Rows are cut into fixed chunks, chunks are folded concurrently, and the
// chunk partials are merged strictly in chunk order.
func Fold(p Pattern, col *table.Column, rowGroup []int, ngroups int, cfg Config) []table.Value {
	cfg = cfg.normalize()
	nrows := len(rowGroup)
	nchunks := (nrows + cfg.ChunkSize - 1) / cfg.ChunkSize
	parts := make([]partial, nchunks)

	workers := cfg.Workers
	if nrows < cfg.ParallelThreshold {
		workers = 1
	}

	foldChunk := func(c int) {
		lo := c * cfg.ChunkSize
		hi := min(lo+cfg.ChunkSize, nrows)
		index := make(map[int]int)
		var part partial
		for r := lo; r < hi; r++ {
			g := rowGroup[r]
			i, ok := index[g]
			if !ok {
				i = len(part.funcs)
				index[g] = i
				part.groups = append(part.groups, g)
				part.funcs = append(part.funcs, p())
			}
			v := table.Null()
			if col != nil {
				v = col.Data[r]
			}
			part.funcs[i].Consume(v)
		}
		parts[c] = part
	}

	if workers == 1 {
		for c := range parts {
			foldChunk(c)
		}
	} else {
		var eg errgroup.Group
		eg.SetLimit(workers)
		for c := range parts {
			eg.Go(func() error {
				foldChunk(c)
				return nil
			})
		}
		// chunk folds cannot fail; Wait only joins them
		_ = eg.Wait()
	}

	acc := make([]Function, ngroups)
	for _, part := range parts {
		for i, g := range part.groups {
			if acc[g] == nil {
				acc[g] = part.funcs[i]
			} else {
				acc[g].Merge(part.funcs[i])
			}
		}
	}

	out := make([]table.Value, ngroups)
	for g, f := range acc {
		if f == nil {
			f = p()
		}
		out[g] = f.Result()
	}
	return out
}
