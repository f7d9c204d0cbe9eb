package expr

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/razeghi71/dqexpr/agg"
	"github.com/razeghi71/dqexpr/errs"
	"github.com/razeghi71/dqexpr/table"
)

// EvalContext carries everything a node needs while a statement is
// evaluated: the source frames, the rows kept by the row filter, the
// grouping and the aggregation settings.
type EvalContext struct {
	frames  []*table.Frame
	rows    []int // nil keeps every row
	nrows   int
	groupby *Groupby
	single  *Groupby
	agg     agg.Config
	logger  *slog.Logger
	cache   map[colKey]*table.Column
}

type colKey struct{ frame, index int }

// NewEvalContext creates a context over frames. Every frame must have the
// same number of rows; frame 0 is the primary frame.
func NewEvalContext(frames []*table.Frame, cfg agg.Config, logger *slog.Logger) (*EvalContext, error) {
	if len(frames) == 0 {
		return nil, errs.Value("select", "at least one frame is required")
	}
	n := frames[0].NRows()
	for i, f := range frames[1:] {
		if f.NRows() != n {
			return nil, errs.Value("select", "frame %d has %d rows, frame 0 has %d", i+1, f.NRows(), n)
		}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &EvalContext{
		frames: frames,
		nrows:  n,
		agg:    cfg,
		logger: logger,
		cache:  make(map[colKey]*table.Column),
	}, nil
}

// ForProxy returns a context for evaluating against proxy: the frames are
// shared, the rows are the proxy's rows and there is no grouping.
func (c *EvalContext) ForProxy(proxy *Workframe) *EvalContext {
	return &EvalContext{
		frames: c.frames,
		nrows:  proxy.NRows(),
		agg:    c.agg,
		logger: c.logger,
		cache:  make(map[colKey]*table.Column),
	}
}

// NFrames returns the number of source frames.
func (c *EvalContext) NFrames() int { return len(c.frames) }

// Frame returns source frame i.
func (c *EvalContext) Frame(i int) *table.Frame { return c.frames[i] }

// NRows returns the number of rows that survive the row filter.
func (c *EvalContext) NRows() int { return c.nrows }

// AggConfig returns the settings used by reducers.
func (c *EvalContext) AggConfig() agg.Config { return c.agg }

// Logger returns the statement logger.
func (c *EvalContext) Logger() *slog.Logger { return c.logger }

// SelectRows restricts evaluation to the given rows of the source frames.
// It must be called before grouping is applied and before any column is
// read.
func (c *EvalContext) SelectRows(rows []int) {
	c.rows = rows
	c.nrows = len(rows)
	c.groupby = nil
	c.single = nil
	clear(c.cache)
}

// Rows returns the source row of every evaluation row, or nil when no row
// filter is active.
func (c *EvalContext) Rows() []int { return c.rows }

// SetGroupby installs the grouping of the statement.
func (c *EvalContext) SetGroupby(g *Groupby) { c.groupby = g }

// IsGrouped reports whether an explicit grouping was installed.
func (c *EvalContext) IsGrouped() bool { return c.groupby != nil }

// Groupby returns the grouping in effect. Without explicit keys every row
// belongs to a single group.
func (c *EvalContext) Groupby() *Groupby {
	if c.groupby != nil {
		return c.groupby
	}
	if c.single == nil {
		c.single = SingleGroup(c.nrows)
	}
	return c.single
}

// column returns column index of frame with the row filter applied.
func (c *EvalContext) column(frame, index int) *table.Column {
	col := c.frames[frame].Column(index)
	if c.rows == nil {
		return col
	}
	key := colKey{frame, index}
	if cached, ok := c.cache[key]; ok {
		return cached
	}
	taken := col.Take(c.rows)
	c.cache[key] = taken
	return taken
}

// Groupby assigns every evaluation row to a group. Groups are numbered in
// order of their first row.
type Groupby struct {
	ngroups  int
	rowGroup []int
	offsets  []int // ngroups+1 entries into order
	order    []int // rows ordered by group, ascending within a group
}

// SingleGroup returns the grouping that puts all nrows rows into one group.
// The group exists even when nrows is zero, so a reduction without keys
// always yields one row.
func SingleGroup(nrows int) *Groupby {
	g := &Groupby{
		ngroups:  1,
		rowGroup: make([]int, nrows),
		offsets:  []int{0, nrows},
		order:    make([]int, nrows),
	}
	for i := range g.order {
		g.order[i] = i
	}
	return g
}

// NewGroupby groups nrows rows by the values of keys. Two rows share a
// group when every key holds equal values, missing values included.
func NewGroupby(keys []*table.Column, nrows int) *Groupby {
	index := make(map[string]int)
	rowGroup := make([]int, nrows)
	var sizes []int
	var sb strings.Builder
	for r := 0; r < nrows; r++ {
		sb.Reset()
		for _, k := range keys {
			writeKey(&sb, k.Data[r])
		}
		g, ok := index[sb.String()]
		if !ok {
			g = len(sizes)
			index[sb.String()] = g
			sizes = append(sizes, 0)
		}
		rowGroup[r] = g
		sizes[g]++
	}
	return fromRowGroups(rowGroup, len(sizes), sizes)
}

// writeKey appends an unambiguous encoding of v: a type tag, the length of
// the text and the text itself. Keys that compare equal encode equally, so
// -0 joins 0; every NaN encodes as "NaN" and NaNs form one group.
func writeKey(sb *strings.Builder, v table.Value) {
	if v.Type == table.TypeFloat && v.Float == 0 {
		v.Float = 0
	}
	s := v.AsString()
	sb.WriteByte(byte('0' + v.Type))
	sb.WriteString(strconv.Itoa(len(s)))
	sb.WriteByte(':')
	sb.WriteString(s)
}

func fromRowGroups(rowGroup []int, ngroups int, sizes []int) *Groupby {
	offsets := make([]int, ngroups+1)
	for g, s := range sizes {
		offsets[g+1] = offsets[g] + s
	}
	next := append([]int(nil), offsets[:ngroups]...)
	order := make([]int, len(rowGroup))
	for r, g := range rowGroup {
		order[next[g]] = r
		next[g]++
	}
	return &Groupby{ngroups: ngroups, rowGroup: rowGroup, offsets: offsets, order: order}
}

// NGroups returns the number of groups.
func (g *Groupby) NGroups() int { return g.ngroups }

// RowGroups maps every row to its group.
func (g *Groupby) RowGroups() []int { return g.rowGroup }

// Rows returns the rows of group i in ascending order.
func (g *Groupby) Rows(i int) []int { return g.order[g.offsets[i]:g.offsets[i+1]] }

// Order returns all rows ordered by group.
func (g *Groupby) Order() []int { return g.order }

// FirstRow returns the first row of group i, or -1 for an empty group.
func (g *Groupby) FirstRow(i int) int {
	if g.offsets[i] == g.offsets[i+1] {
		return -1
	}
	return g.order[g.offsets[i]]
}
