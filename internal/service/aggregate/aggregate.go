// Package aggregate derives the per-date product summary from a date's orders.
package aggregate

import (
	"github.com/mamadbah2/preorder/internal/domain/models"
)

// Recompute folds the orders, in list order, into a fresh aggregate.
//
// Contributor names keep the order of the input slice. A selection without
// an extras map is rejected rather than treated as empty.
func Recompute(orders []models.Order) (models.Aggregate, error) {
	agg := make(models.Aggregate)
	for _, order := range orders {
		for product, sel := range order.SelectedProducts {
			if sel.Extras == nil {
				return nil, models.NewError(models.KindValidation,
					"order %s: product %q has no extras", order.ID, product)
			}

			summary, ok := agg[product]
			if !ok {
				summary = &models.ProductSummary{Extras: map[string]*models.ExtraSummary{}}
				agg[product] = summary
			}

			for extra, amount := range sel.Extras {
				entry, ok := summary.Extras[extra]
				if !ok {
					entry = &models.ExtraSummary{Names: []string{}}
					summary.Extras[extra] = entry
				}
				entry.Amount += amount
				entry.Names = append(entry.Names, order.Name)
				summary.TotalAmount += amount
			}
		}
	}
	return agg, nil
}

// Refresh recomputes the aggregate of a collection in place.
func Refresh(col *models.DateOrders) error {
	agg, err := Recompute(col.Orders)
	if err != nil {
		return err
	}
	col.Products = agg
	return nil
}

// Committed sums the ordered extra units per product across the orders.
func Committed(orders []models.Order) map[string]int {
	out := make(map[string]int)
	for _, order := range orders {
		for product, amount := range order.SelectedProducts.Requested() {
			out[product] += amount
		}
	}
	return out
}
