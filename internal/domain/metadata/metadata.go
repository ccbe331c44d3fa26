// Package metadata holds the flat tabular form of records.
//
// A Row maps metadata keys to scalars, lists of scalars, or nested lists of
// Rows (the parent-list shape used by nested record fields).
package metadata

// Row is one record's flattened metadata.
type Row map[string]any

// Entries returns the nested rows stored under parent, accepting both []Row
// and []any holding Row / map[string]any values. Anything else yields nil.
func (r Row) Entries(parent string) []Row {
	switch x := r[parent].(type) {
	case []Row:
		return x
	case []map[string]any:
		out := make([]Row, len(x))
		for i, m := range x {
			out[i] = Row(m)
		}
		return out
	case []any:
		out := make([]Row, 0, len(x))
		for _, e := range x {
			switch m := e.(type) {
			case Row:
				out = append(out, m)
			case map[string]any:
				out = append(out, Row(m))
			}
		}
		return out
	case Row:
		return []Row{x}
	case map[string]any:
		return []Row{Row(x)}
	default:
		return nil
	}
}

// AnyEntry reports whether pred holds for at least one entry.
func AnyEntry(entries []Row, pred func(Row) bool) bool {
	for _, e := range entries {
		if pred(e) {
			return true
		}
	}
	return false
}

// Table is an ordered set of rows.
type Table struct {
	rows []Row
}

// NewTable builds a table from rows.
func NewTable(rows ...Row) Table {
	return Table{rows: rows}
}

// Len returns the row count.
func (t Table) Len() int { return len(t.rows) }

// Rows returns the rows.
func (t Table) Rows() []Row { return t.rows }

// Row returns row i.
func (t Table) Row(i int) Row { return t.rows[i] }

// Append adds rows to the table.
func (t *Table) Append(rows ...Row) { t.rows = append(t.rows, rows...) }

// Select returns the rows where mask is true. mask must have Len() entries.
func (t Table) Select(mask []bool) Table {
	out := make([]Row, 0, len(t.rows))
	for i, keep := range mask {
		if keep && i < len(t.rows) {
			out = append(out, t.rows[i])
		}
	}
	return Table{rows: out}
}

// Column returns the values stored under key, nil where missing.
func (t Table) Column(key string) []any {
	out := make([]any, len(t.rows))
	for i, r := range t.rows {
		out[i] = r[key]
	}
	return out
}

// All returns a mask selecting every row.
func (t Table) All() []bool {
	mask := make([]bool, len(t.rows))
	for i := range mask {
		mask[i] = true
	}
	return mask
}

// And combines masks element-wise.
func And(masks ...[]bool) []bool {
	if len(masks) == 0 {
		return nil
	}
	out := make([]bool, len(masks[0]))
	copy(out, masks[0])
	for _, m := range masks[1:] {
		for i := range out {
			out[i] = out[i] && i < len(m) && m[i]
		}
	}
	return out
}
