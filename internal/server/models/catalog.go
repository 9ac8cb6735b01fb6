package models

import (
	"encoding/json"

	"golang.org/x/text/cases"
)

// Item is a catalog entry.
type Item struct {
	Name       string  `json:"name"`
	Weight     float64 `json:"weight"`
	PalletCoef float64 `json:"pallet_coef"`
}

// Category is a named, ordered group of items.
type Category struct {
	Name  string
	Items []Item
}

// Catalog is the category→items view of the spreadsheet. Categories keep
// the order in which they first appear; the JSON form is an object.
type Catalog struct {
	Categories []Category
}

var fold = cases.Fold()

// SameName compares item names case-insensitively (Unicode case folding).
func SameName(a, b string) bool {
	return fold.String(a) == fold.String(b)
}

// Len returns the number of items across all categories.
func (c *Catalog) Len() int {
	n := 0
	for _, cat := range c.Categories {
		n += len(cat.Items)
	}
	return n
}

func (c *Catalog) category(name string) int {
	for i, cat := range c.Categories {
		if cat.Name == name {
			return i
		}
	}
	return -1
}

// Find returns the item named name in category.
func (c *Catalog) Find(category, name string) (Item, bool) {
	ci := c.category(category)
	if ci < 0 {
		return Item{}, false
	}
	for _, it := range c.Categories[ci].Items {
		if SameName(it.Name, name) {
			return it, true
		}
	}
	return Item{}, false
}

// Add appends item to category, creating the category when needed.
// It returns false if a same-named item is already there.
func (c *Catalog) Add(category string, item Item) bool {
	if _, dup := c.Find(category, item.Name); dup {
		return false
	}
	c.Append(category, item)
	return true
}

// Append adds item to category without the uniqueness check. Rows read
// from a workbook go through it so none of them is lost.
func (c *Catalog) Append(category string, item Item) {
	ci := c.category(category)
	if ci < 0 {
		c.Categories = append(c.Categories, Category{Name: category})
		ci = len(c.Categories) - 1
	}
	c.Categories[ci].Items = append(c.Categories[ci].Items, item)
}

// Duplicate returns the first item whose name repeats, case-insensitively,
// within its category.
func (c *Catalog) Duplicate() (category, name string, ok bool) {
	for _, cat := range c.Categories {
		for i, it := range cat.Items {
			for _, prev := range cat.Items[:i] {
				if SameName(prev.Name, it.Name) {
					return cat.Name, it.Name, true
				}
			}
		}
	}
	return "", "", false
}

// Set overwrites the item named name in category in place. It returns
// false if no such item exists.
func (c *Catalog) Set(category, name string, item Item) bool {
	ci := c.category(category)
	if ci < 0 {
		return false
	}
	for i, it := range c.Categories[ci].Items {
		if SameName(it.Name, name) {
			c.Categories[ci].Items[i] = item
			return true
		}
	}
	return false
}

// Remove deletes the item named name from category and drops the category
// once it is empty. It returns false if no such item exists.
func (c *Catalog) Remove(category, name string) bool {
	ci := c.category(category)
	if ci < 0 {
		return false
	}
	items := c.Categories[ci].Items
	for i, it := range items {
		if !SameName(it.Name, name) {
			continue
		}
		c.Categories[ci].Items = append(items[:i:i], items[i+1:]...)
		if len(c.Categories[ci].Items) == 0 {
			c.Categories = append(c.Categories[:ci:ci], c.Categories[ci+1:]...)
		}
		return true
	}
	return false
}

// Map returns the catalog as a plain category→items mapping.
func (c *Catalog) Map() map[string][]Item {
	out := make(map[string][]Item, len(c.Categories))
	for _, cat := range c.Categories {
		out[cat.Name] = append([]Item(nil), cat.Items...)
	}
	return out
}

func (c Catalog) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Map())
}
