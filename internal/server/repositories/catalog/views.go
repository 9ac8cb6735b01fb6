package catalog

import (
	"strconv"
	"strings"

	"github.com/dmitrijs2005/planboard/internal/common"
	"github.com/dmitrijs2005/planboard/internal/server/models"
)

const defaultFactor = 1.0

// catalogOf projects the catalog view. Without both the category and name
// columns the catalog is empty. Every row with a name is kept, including
// same-named rows within a category.
func catalogOf(t *Table) models.Catalog {
	var c models.Catalog
	cat, name := t.Column(ColCategory), t.Column(ColName)
	if cat == nil || name == nil {
		return c
	}
	weight, pallet := t.Column(ColWeight), t.Column(ColPalletCoef)

	for i := 0; i < t.Rows(); i++ {
		n := strings.TrimSpace(name.Value(i))
		if n == "" {
			continue
		}
		category := strings.TrimSpace(cat.Value(i))
		if category == "" {
			category = common.DefaultCategory
		}
		c.Append(category, models.Item{
			Name:       n,
			Weight:     number(weight.Value(i)),
			PalletCoef: number(pallet.Value(i)),
		})
	}
	return c
}

func number(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return defaultFactor
	}
	return v
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// withCatalog rebuilds the catalog columns from c and carries every other
// column across. The row count never drops below the last used row of a
// carried column.
func withCatalog(t *Table, c models.Catalog) *Table {
	rows := c.Len()
	var carried []Column
	for _, col := range t.Columns {
		if isCatalogColumn(col.Name) {
			continue
		}
		carried = append(carried, col)
		rows = max(rows, col.Used())
	}

	cols := make([][]string, len(CatalogColumns))
	for i := range cols {
		cols[i] = make([]string, rows)
	}
	r := 0
	for _, cat := range c.Categories {
		for _, it := range cat.Items {
			cols[0][r] = cat.Name
			cols[1][r] = it.Name
			cols[2][r] = formatNumber(it.Weight)
			cols[3][r] = formatNumber(it.PalletCoef)
			r++
		}
	}

	out := &Table{}
	for i, name := range CatalogColumns {
		out.Columns = append(out.Columns, Column{Name: name, Values: cols[i]})
	}
	for _, col := range carried {
		out.Columns = append(out.Columns, Column{Name: col.Name, Values: fit(col.Values, rows)})
	}
	return out
}

// warehousesOf projects the warehouse column, skipping blanks.
func warehousesOf(t *Table) []string {
	col := t.Column(ColWarehouses)
	if col == nil {
		return []string{}
	}
	out := make([]string, 0, len(col.Values))
	for _, v := range col.Values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// withWarehouses rewrites the warehouse column. Every other column keeps
// its values and is padded to max(used rows, len(ws)).
func withWarehouses(t *Table, ws []string) *Table {
	rows := len(ws)
	for _, col := range t.Columns {
		if col.Name != ColWarehouses {
			rows = max(rows, col.Used())
		}
	}

	out := &Table{}
	for _, col := range t.Columns {
		if col.Name == ColWarehouses {
			continue
		}
		out.Columns = append(out.Columns, Column{Name: col.Name, Values: fit(col.Values, rows)})
	}
	if missing := out.Has(CatalogColumns...); len(missing) == len(CatalogColumns) {
		for _, name := range CatalogColumns {
			out.Columns = append(out.Columns, Column{Name: name, Values: make([]string, rows)})
		}
	}

	vals := fit(ws, rows)
	if idx := columnIndex(t, ColWarehouses); idx >= 0 && idx <= len(out.Columns) {
		out.Columns = append(out.Columns[:idx], append([]Column{{Name: ColWarehouses, Values: vals}}, out.Columns[idx:]...)...)
	} else {
		out.Columns = append(out.Columns, Column{Name: ColWarehouses, Values: vals})
	}
	return out
}

func columnIndex(t *Table, name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}
