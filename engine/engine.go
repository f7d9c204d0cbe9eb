// Package engine evaluates select statements over in-memory frames.
package engine

import (
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/razeghi71/dqexpr/agg"
	"github.com/razeghi71/dqexpr/ast"
	"github.com/razeghi71/dqexpr/expr"
	"github.com/razeghi71/dqexpr/table"
)

// Config tunes statement evaluation.
type Config struct {
	// Workers bounds the goroutines used by grouped reductions.
	Workers int
	// ChunkSize is the number of rows folded as one unit. Results depend on
	// it only through floating-point rounding, never on Workers.
	ChunkSize int
	// ParallelThreshold is the row count below which reductions run on the
	// calling goroutine.
	ParallelThreshold int
	// Logger receives debug records for each evaluation stage. Nil
	// discards them.
	Logger *slog.Logger
}

// DefaultConfig returns the configuration used by Execute.
func DefaultConfig() Config {
	d := agg.DefaultConfig()
	return Config{
		Workers:           runtime.GOMAXPROCS(0),
		ChunkSize:         d.ChunkSize,
		ParallelThreshold: d.ParallelThreshold,
	}
}

func (c Config) aggConfig() agg.Config {
	return agg.Config{
		Workers:           c.Workers,
		ChunkSize:         c.ChunkSize,
		ParallelThreshold: c.ParallelThreshold,
	}
}

// Engine executes statements with a fixed configuration. It holds no
// per-statement state and may be shared between goroutines.
type Engine struct {
	cfg Config
}

// New creates an engine.
func New(cfg Config) *Engine {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{cfg: cfg}
}

// Execute runs stmt with the default configuration.
func Execute(stmt *ast.Statement, frames ...*table.Frame) (*table.Frame, error) {
	return New(DefaultConfig()).Execute(stmt, frames...)
}

// Execute runs stmt against frames. Frame 0 is the primary frame; the
// others are joined row by row and must have as many rows.
//
// The stages run in order: where restricts the rows, by groups them,
// select computes the output columns (grouping keys first), and having
// filters the assembled result.
func (e *Engine) Execute(stmt *ast.Statement, frames ...*table.Frame) (*table.Frame, error) {
	start := time.Now()
	ctx, err := expr.NewEvalContext(frames, e.cfg.aggConfig(), e.cfg.Logger)
	if err != nil {
		return nil, err
	}
	log := e.cfg.Logger

	if stmt.Where != nil {
		if err := execWhere(stmt.Where, ctx); err != nil {
			return nil, fmt.Errorf("where: %w", err)
		}
		log.Debug("where", "rows", ctx.NRows())
	}

	var keys *expr.Workframe
	if len(stmt.By) > 0 {
		keys, err = execBy(stmt.By, ctx)
		if err != nil {
			return nil, fmt.Errorf("by: %w", err)
		}
		log.Debug("by", "keys", keys.NCols(), "groups", ctx.Groupby().NGroups())
	}

	proj, err := execSelect(stmt.Select, ctx)
	if err != nil {
		return nil, fmt.Errorf("select: %w", err)
	}

	result := proj
	if keys != nil {
		result = withKeys(keys, proj)
	}
	mode, err := result.Sync(ctx)
	if err != nil {
		return nil, err
	}
	if ctx.IsGrouped() && mode == expr.ModeRow {
		result.Take(ctx.Groupby().Order())
	}

	if stmt.Having != nil {
		if err := execHaving(stmt.Having, ctx, result); err != nil {
			return nil, fmt.Errorf("having: %w", err)
		}
	}

	out, err := result.ToFrame()
	if err != nil {
		return nil, err
	}
	log.Debug("statement done", "rows", out.NRows(), "cols", out.NCols(),
		"workers", e.cfg.Workers, "elapsed", time.Since(start))
	return out, nil
}

func execWhere(node ast.Expr, ctx *expr.EvalContext) error {
	e, err := expr.New(node)
	if err != nil {
		return err
	}
	rows, err := expr.SelectRows(e, ctx)
	if err != nil {
		return err
	}
	ctx.SelectRows(rows)
	return nil
}

// execBy evaluates the grouping keys, one value per row, and installs the
// grouping on ctx.
func execBy(nodes []ast.Expr, ctx *expr.EvalContext) (*expr.Workframe, error) {
	keys := expr.NewWorkframe()
	for i, n := range nodes {
		e, err := expr.New(n)
		if err != nil {
			return nil, fmt.Errorf("key %d: %w", i, err)
		}
		w, err := e.EvalNormal(ctx)
		if err != nil {
			return nil, fmt.Errorf("key %d: %w", i, err)
		}
		keys.Cbind(w)
	}
	if err := keys.RaiseAll(ctx, expr.ModeRow); err != nil {
		return nil, err
	}
	cols := make([]*table.Column, keys.NCols())
	for i := range cols {
		cols[i] = keys.Column(i)
	}
	ctx.SetGroupby(expr.NewGroupby(cols, ctx.NRows()))
	return keys, nil
}

func execSelect(nodes []ast.Expr, ctx *expr.EvalContext) (*expr.Workframe, error) {
	if nodes == nil {
		nodes = []ast.Expr{ast.All()}
	}
	out := expr.NewWorkframe()
	for i, n := range nodes {
		e, err := expr.New(n)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		w, err := e.EvalProjection(ctx)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out.Cbind(w)
	}
	return out, nil
}

// withKeys puts the grouping keys in front of the projection. Projected
// columns that are the same source column as a key are dropped.
func withKeys(keys, proj *expr.Workframe) *expr.Workframe {
	type source struct{ frame, index int }
	isKey := make(map[source]bool)
	for i := 0; i < keys.NCols(); i++ {
		if frame, index, ok := keys.Source(i); ok {
			isKey[source{frame, index}] = true
		}
	}
	out := expr.NewWorkframe()
	out.Cbind(keys)
	out.Cbind(proj.Without(func(i int) bool {
		frame, index, ok := proj.Source(i)
		return ok && isKey[source{frame, index}]
	}))
	return out
}

// execHaving keeps the rows of result for which node, evaluated against
// result itself, is true.
func execHaving(node ast.Expr, ctx *expr.EvalContext, result *expr.Workframe) error {
	e, err := expr.New(node)
	if err != nil {
		return err
	}
	pctx := ctx.ForProxy(result)
	w, err := e.EvalProxy(pctx, result)
	if err != nil {
		return err
	}
	rows, err := expr.TrueRows(w, pctx)
	if err != nil {
		return err
	}
	result.Take(rows)
	return nil
}
