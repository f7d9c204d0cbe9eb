package expr

import (
	"fmt"

	"github.com/razeghi71/dqexpr/errs"
	"github.com/razeghi71/dqexpr/table"
)

// Mode says how many values a workframe column holds.
type Mode int

const (
	// ModeScalar columns hold one value that applies to every row.
	ModeScalar Mode = iota
	// ModeGroup columns hold one value per group.
	ModeGroup
	// ModeRow columns hold one value per row.
	ModeRow
)

func (m Mode) String() string {
	switch m {
	case ModeScalar:
		return "scalar"
	case ModeGroup:
		return "group"
	case ModeRow:
		return "row"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

type record struct {
	name  string
	col   *table.Column
	mode  Mode
	frame int // -1 for computed columns
	index int
}

// Workframe is the intermediate result of evaluating a node: an ordered
// list of columns, each with a name, a mode and, when it was selected
// straight from a source frame, the position it came from.
type Workframe struct {
	items []record
}

// NewWorkframe returns an empty workframe.
func NewWorkframe() *Workframe { return &Workframe{} }

// NCols returns the number of columns.
func (w *Workframe) NCols() int { return len(w.items) }

// Column returns column i.
func (w *Workframe) Column(i int) *table.Column { return w.items[i].col }

// Name returns the name of column i; computed columns may be unnamed.
func (w *Workframe) Name(i int) string { return w.items[i].name }

// Mode returns the mode of column i.
func (w *Workframe) Mode(i int) Mode { return w.items[i].mode }

// Source reports the frame and column position column i was selected
// from. ok is false for computed columns.
func (w *Workframe) Source(i int) (frame, index int, ok bool) {
	it := w.items[i]
	return it.frame, it.index, it.frame >= 0
}

// Rename sets the name of column i.
func (w *Workframe) Rename(i int, name string) { w.items[i].name = name }

// AddColumn appends a computed column.
func (w *Workframe) AddColumn(col *table.Column, name string, mode Mode) {
	w.items = append(w.items, record{name: name, col: col, mode: mode, frame: -1})
}

// AddRef appends column index of frame, already restricted to the
// evaluation rows.
func (w *Workframe) AddRef(frame, index int, col *table.Column, name string) {
	w.items = append(w.items, record{name: name, col: col, mode: ModeRow, frame: frame, index: index})
}

// Cbind appends the columns of other.
func (w *Workframe) Cbind(other *Workframe) {
	w.items = append(w.items, other.items...)
}

// Without returns the columns of w that drop does not reject.
func (w *Workframe) Without(drop func(i int) bool) *Workframe {
	out := NewWorkframe()
	for i, it := range w.items {
		if !drop(i) {
			out.items = append(out.items, it)
		}
	}
	return out
}

// NRows returns the length of the longest column. A workframe of scalars
// has one row; an empty workframe has none.
func (w *Workframe) NRows() int {
	if len(w.items) == 0 {
		return 0
	}
	n := 1
	for _, it := range w.items {
		if it.mode != ModeScalar {
			n = max(n, it.col.Len())
		}
	}
	if n == 1 {
		for _, it := range w.items {
			if it.mode != ModeScalar && it.col.Len() == 0 {
				return 0
			}
		}
	}
	return n
}

// Raise broadcasts column i to mode m. Scalars repeat; group values expand
// to the rows of their group. Lowering a row column to ModeGroup keeps the
// first value of each group.
func (w *Workframe) Raise(ctx *EvalContext, i int, m Mode) error {
	it := &w.items[i]
	if it.mode == m {
		return nil
	}
	gb := ctx.Groupby()
	switch {
	case it.mode == ModeScalar && m == ModeGroup:
		it.col = it.col.Repeat(gb.NGroups())
	case it.mode == ModeScalar && m == ModeRow:
		it.col = it.col.Repeat(ctx.NRows())
	case it.mode == ModeGroup && m == ModeRow:
		it.col = it.col.Take(gb.RowGroups())
	case it.mode == ModeRow && m == ModeGroup:
		data := make([]table.Value, gb.NGroups())
		for g := range data {
			if r := gb.FirstRow(g); r >= 0 {
				data[g] = it.col.Data[r]
			}
		}
		it.col = &table.Column{Type: it.col.Type, Data: data}
	default:
		return errs.Internal("workframe", "cannot change mode %s to %s", it.mode, m)
	}
	it.mode = m
	return nil
}

// RaiseAll brings every column to mode m.
func (w *Workframe) RaiseAll(ctx *EvalContext, m Mode) error {
	for i := range w.items {
		if err := w.Raise(ctx, i, m); err != nil {
			return err
		}
	}
	return nil
}

// Sync aligns the columns of a projection and returns their common mode.
// When any column holds one value per group, row columns are reduced to the
// first row of each group. Otherwise scalars are broadcast to the rows; a
// projection of scalars only yields one row per group.
func (w *Workframe) Sync(ctx *EvalContext) (Mode, error) {
	m := w.syncMode()
	return m, w.RaiseAll(ctx, m)
}

func (w *Workframe) syncMode() Mode {
	m := ModeScalar
	for _, it := range w.items {
		if it.mode == ModeGroup {
			return ModeGroup
		}
		m = max(m, it.mode)
	}
	if m == ModeScalar {
		return ModeGroup
	}
	return m
}

// Take keeps the given rows of every non-scalar column.
func (w *Workframe) Take(rows []int) {
	for i := range w.items {
		if w.items[i].mode != ModeScalar {
			w.items[i].col = w.items[i].col.Take(rows)
		}
	}
}

// ToFrame materializes the workframe. Unnamed columns are called C0, C1 and
// so on after their position; repeated names get a numeric suffix.
func (w *Workframe) ToFrame() (*table.Frame, error) {
	names := make([]string, len(w.items))
	cols := make([]*table.Column, len(w.items))
	seen := make(map[string]bool)
	for i, it := range w.items {
		name := it.name
		if name == "" {
			name = fmt.Sprintf("C%d", i)
		}
		if seen[name] {
			base := name
			for k := 1; seen[name]; k++ {
				name = fmt.Sprintf("%s.%d", base, k)
			}
		}
		seen[name] = true
		names[i] = name
		cols[i] = it.col
	}
	f, err := table.NewFrame(names, cols)
	if err != nil {
		return nil, errs.Internalw("materialize", err, "columns are not aligned")
	}
	return f, nil
}
