package catalog

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Uncategorized groups items whose records carry no category.
const Uncategorized = "Uncategorized"

// CategoryStats aggregates the items of one category.
type CategoryStats struct {
	Category      string          `json:"category"`
	UniqueItems   int             `json:"unique_items"`
	TotalQuantity int             `json:"total_quantity"`
	TotalValue    decimal.Decimal `json:"total_value"`
}

// Stats summarizes the whole inventory for the dashboard.
type Stats struct {
	UniqueItems   int             `json:"unique_items"`
	TotalQuantity int             `json:"total_quantity"`
	TotalValue    decimal.Decimal `json:"total_value"`
	ByCategory    []CategoryStats `json:"by_category"`
}

// Stats computes inventory totals and a per-category breakdown, sorted by
// category name. Value is quantity times price, summed exactly.
func (s *Service) Stats() (*Stats, error) {
	items, err := s.items.Load()
	if err != nil {
		return nil, err
	}

	stats := &Stats{TotalValue: decimal.Zero}
	byCategory := make(map[string]*CategoryStats)
	for _, item := range items {
		value := item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		stats.UniqueItems++
		stats.TotalQuantity += item.Quantity
		stats.TotalValue = stats.TotalValue.Add(value)

		category := item.Category
		if category == "" {
			category = Uncategorized
		}
		cs := byCategory[category]
		if cs == nil {
			cs = &CategoryStats{Category: category, TotalValue: decimal.Zero}
			byCategory[category] = cs
		}
		cs.UniqueItems++
		cs.TotalQuantity += item.Quantity
		cs.TotalValue = cs.TotalValue.Add(value)
	}

	for _, cs := range byCategory {
		stats.ByCategory = append(stats.ByCategory, *cs)
	}
	sort.Slice(stats.ByCategory, func(i, j int) bool {
		return stats.ByCategory[i].Category < stats.ByCategory[j].Category
	})
	return stats, nil
}
