package catalog

import (
	"math"
	"strings"

	"github.com/dmitrijs2005/planboard/internal/common"
	"github.com/dmitrijs2005/planboard/internal/server/models"
)

// NormalizeItem trims names and checks the numeric fields. A zero pallet
// coefficient means "not set" and becomes 1.0.
func NormalizeItem(category string, it models.Item) (string, models.Item, error) {
	category = strings.TrimSpace(category)
	it.Name = strings.TrimSpace(it.Name)
	switch {
	case category == "":
		return "", it, common.NewValidationError("category", "required", "category is required")
	case it.Name == "":
		return "", it, common.NewValidationError("name", "required", "item name is required")
	case math.IsNaN(it.Weight) || math.IsInf(it.Weight, 0) || it.Weight < 0:
		return "", it, common.NewValidationError("weight", "non_negative", "weight must be a non-negative number")
	case math.IsNaN(it.PalletCoef) || math.IsInf(it.PalletCoef, 0) || it.PalletCoef < 0:
		return "", it, common.NewValidationError("pallet_coef", "positive", "pallet coefficient must be positive")
	}
	if it.PalletCoef == 0 {
		it.PalletCoef = defaultFactor
	}
	return category, it, nil
}

// NormalizeCatalog validates every item of c and rejects duplicate names
// inside a category.
func NormalizeCatalog(c models.Catalog) (models.Catalog, error) {
	var out models.Catalog
	for _, cat := range c.Categories {
		for _, it := range cat.Items {
			name, item, err := NormalizeItem(cat.Name, it)
			if err != nil {
				return models.Catalog{}, err
			}
			if !out.Add(name, item) {
				return models.Catalog{}, common.NewValidationError("name", "duplicate",
					"duplicate item "+item.Name+" in category "+name)
			}
		}
	}
	return out, nil
}

func normalizeWarehouse(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", common.NewValidationError("name", "required", "warehouse name is required")
	}
	return name, nil
}
