package catalog

import "strings"

// Column names of the shared spreadsheet.
const (
	ColCategory   = "Категорія"
	ColName       = "Назва товару"
	ColWeight     = "Вага (кг)"
	ColPalletCoef = "Коефіцієнт паллети"
	ColWarehouses = "Склади"
)

// CatalogColumns are owned by the catalog view, in file order.
var CatalogColumns = []string{ColCategory, ColName, ColWeight, ColPalletCoef}

func isCatalogColumn(name string) bool {
	for _, c := range CatalogColumns {
		if c == name {
			return true
		}
	}
	return false
}

// Column is one named spreadsheet column. Values are cell texts from the
// first data row down.
type Column struct {
	Name   string
	Values []string
}

// Table is the spreadsheet as an ordered list of columns. Columns unknown
// to the catalog and warehouse views are carried through untouched.
type Table struct {
	Columns []Column
}

// Rows returns the length of the longest column.
func (t *Table) Rows() int {
	n := 0
	for _, c := range t.Columns {
		n = max(n, len(c.Values))
	}
	return n
}

// Column returns the first column called name, or nil.
func (t *Table) Column(name string) *Column {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// Has reports whether every name is a column of t. missing lists the
// absent ones.
func (t *Table) Has(names ...string) (missing []string) {
	for _, n := range names {
		if t.Column(n) == nil {
			missing = append(missing, n)
		}
	}
	return missing
}

// Set replaces the values of column name, appending the column when absent.
func (t *Table) Set(name string, values []string) {
	if c := t.Column(name); c != nil {
		c.Values = values
		return
	}
	t.Columns = append(t.Columns, Column{Name: name, Values: values})
}

// Value returns the cell of column c at row i, blank when out of range.
func (c *Column) Value(i int) string {
	if c == nil || i >= len(c.Values) {
		return ""
	}
	return c.Values[i]
}

// Used is one past the last non-blank row of c.
func (c *Column) Used() int {
	for i := len(c.Values) - 1; i >= 0; i-- {
		if strings.TrimSpace(c.Values[i]) != "" {
			return i + 1
		}
	}
	return 0
}

// fit pads or truncates values to n rows.
func fit(values []string, n int) []string {
	out := make([]string, n)
	copy(out, values)
	return out
}
