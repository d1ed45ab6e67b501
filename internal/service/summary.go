package service

import (
	"sort"

	"github.com/shopspring/decimal"

	"finance-tracker/internal/domain"
)

// Rollup is the second aggregation stage. It re-partitions the
// (category, subcategory) totals by category and sums them. Categories and
// their subcategories come out sorted by key; no empty rows are added.
func Rollup(groups []domain.GroupTotal) []domain.CategorySummary {
	byCat := make(map[string]*domain.CategorySummary)
	for _, g := range groups {
		cs, ok := byCat[g.Category]
		if !ok {
			cs = &domain.CategorySummary{Category: g.Category, TotalAmount: decimal.Zero}
			byCat[g.Category] = cs
		}
		cs.TotalAmount = cs.TotalAmount.Add(g.TotalAmount)
		cs.Subcategories = append(cs.Subcategories, domain.SubcategorySummary{
			Name:        g.Subcategory,
			TotalAmount: g.TotalAmount,
			Count:       g.Count,
		})
	}

	out := make([]domain.CategorySummary, 0, len(byCat))
	for _, cs := range byCat {
		sort.Slice(cs.Subcategories, func(i, j int) bool {
			return cs.Subcategories[i].Name < cs.Subcategories[j].Name
		})
		out = append(out, *cs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}
