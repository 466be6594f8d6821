package report

// Row is one per-partition record: an ordered set of named columns.
// Column order carries meaning downstream (summary reduction slices
// columns positionally), so it is kept explicitly next to the values.
type Row struct {
	Columns []string
	Values  map[string]any
}

func NewRow() Row {
	return Row{Values: make(map[string]any)}
}

// Set appends the column on first write and overwrites on re-write,
// keeping the original position.
func (r *Row) Set(column string, value any) {
	if _, ok := r.Values[column]; !ok {
		r.Columns = append(r.Columns, column)
	}
	r.Values[column] = value
}

func (r Row) Get(column string) (any, bool) {
	v, ok := r.Values[column]
	return v, ok
}

// SameLayout reports whether both rows have identical column names in
// identical order.
func (r Row) SameLayout(other Row) bool {
	if len(r.Columns) != len(other.Columns) {
		return false
	}
	for i, c := range r.Columns {
		if other.Columns[i] != c {
			return false
		}
	}
	return true
}
