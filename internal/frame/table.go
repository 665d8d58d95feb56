package frame

import (
	"fmt"
	"math"
	"strings"
)

// ColumnType identifies how a Table column stores its cells.
type ColumnType string

const (
	ColumnFloat  ColumnType = "float64"
	ColumnString ColumnType = "string"
)

// Column is one named, typed column of a Table. Exactly one of Floats or
// Strings is populated, matching Type.
type Column struct {
	Name    string     `cbor:"name"`
	Type    ColumnType `cbor:"type"`
	Floats  []float64  `cbor:"floats,omitempty"`
	Strings []string   `cbor:"strings,omitempty"`
}

// Len returns the number of cells in the column.
func (c *Column) Len() int {
	if c.Type == ColumnString {
		return len(c.Strings)
	}
	return len(c.Floats)
}

// Table is an ordered, row-oriented metadata table. Rows are identified by
// position; Files carries the provenance ordinal per row after a merge and
// is nil for a single-session table.
type Table struct {
	Columns []Column `cbor:"columns"`
	Files   []int    `cbor:"files,omitempty"`
}

// NRows returns the number of rows in the table.
func (t *Table) NRows() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return t.Columns[0].Len()
}

// Column returns the column with the given name, or nil if absent.
func (t *Table) Column(name string) *Column {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// HasColumn reports whether a column with the given name exists.
func (t *Table) HasColumn(name string) bool {
	return t.Column(name) != nil
}

// Float returns the float64 cell at (row, name).
func (t *Table) Float(row int, name string) (float64, error) {
	col := t.Column(name)
	if col == nil {
		return 0, fmt.Errorf("table has no column %q", name)
	}
	if col.Type != ColumnFloat {
		return 0, fmt.Errorf("column %q is not numeric", name)
	}
	if row < 0 || row >= len(col.Floats) {
		return 0, fmt.Errorf("row %d out of range for column %q", row, name)
	}
	return col.Floats[row], nil
}

// String returns the string cell at (row, name).
func (t *Table) String(row int, name string) (string, error) {
	col := t.Column(name)
	if col == nil {
		return "", fmt.Errorf("table has no column %q", name)
	}
	if col.Type != ColumnString {
		return "", fmt.Errorf("column %q is not a string column", name)
	}
	if row < 0 || row >= len(col.Strings) {
		return "", fmt.Errorf("row %d out of range for column %q", row, name)
	}
	return col.Strings[row], nil
}

// StripPrefix returns a copy of the table with the given prefix removed from
// every column name that carries it. Column order and data are shared, not
// copied.
func (t *Table) StripPrefix(prefix string) *Table {
	out := &Table{Columns: make([]Column, len(t.Columns)), Files: t.Files}
	for i, col := range t.Columns {
		col.Name = strings.TrimPrefix(col.Name, prefix)
		out.Columns[i] = col
	}
	return out
}

// ConcatTables concatenates tables row-wise and records each source table's
// ordinal position in the Files index level. The column set of the first
// table defines the result; a column missing from a later table is padded
// with NaN or empty strings.
func ConcatTables(parts []*Table) *Table {
	if len(parts) == 0 {
		return &Table{}
	}
	out := &Table{Columns: make([]Column, len(parts[0].Columns))}
	for i, col := range parts[0].Columns {
		out.Columns[i] = Column{Name: col.Name, Type: col.Type}
	}
	for ordinal, part := range parts {
		n := part.NRows()
		for i := range out.Columns {
			dst := &out.Columns[i]
			src := part.Column(dst.Name)
			switch dst.Type {
			case ColumnString:
				if src != nil && src.Type == ColumnString {
					dst.Strings = append(dst.Strings, src.Strings...)
				} else {
					dst.Strings = append(dst.Strings, make([]string, n)...)
				}
			default:
				if src != nil && src.Type == ColumnFloat {
					dst.Floats = append(dst.Floats, src.Floats...)
				} else {
					pad := make([]float64, n)
					for j := range pad {
						pad[j] = math.NaN()
					}
					dst.Floats = append(dst.Floats, pad...)
				}
			}
		}
		for j := 0; j < n; j++ {
			out.Files = append(out.Files, ordinal)
		}
	}
	return out
}
