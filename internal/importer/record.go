// Package importer implements the bulk tabular import engine shared by the
// chart-of-accounts, ledger-posting, Parte B and reference-account loaders.
package importer

import "strings"

// Layout describes one import format: its positional column names and the
// minimum number of columns a data line must carry.
type Layout struct {
	Columns    []string
	MinColumns int
}

// Record is one parsed data line. Line is 1-based and counts data lines only;
// the header row and blank lines are excluded.
type Record struct {
	Line   int
	fields []string
	cols   map[string]int
}

// Len returns the number of fields on the line.
func (r Record) Len() int {
	return len(r.fields)
}

// Field returns the trimmed field at position i, or "" when absent.
func (r Record) Field(i int) string {
	if i < 0 || i >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[i])
}

// Named returns the trimmed field for a column name, using the header row
// mapping when one was present and the layout's positional names otherwise.
func (r Record) Named(name string) string {
	idx, ok := r.cols[strings.ToLower(name)]
	if !ok {
		return ""
	}
	return r.Field(idx)
}

// Values returns the trimmed fields in input order. Dry-run previews are built
// from these so the caller sees the codes it submitted, not resolved ids.
func (r Record) Values() []string {
	out := make([]string, len(r.fields))
	for i := range r.fields {
		out[i] = r.Field(i)
	}
	return out
}

func (r Record) blank() bool {
	for i := range r.fields {
		if r.Field(i) != "" {
			return false
		}
	}
	return true
}
