// Package inventory gates order commitments against per-date product capacity.
package inventory

import (
	"fmt"
	"sort"

	"github.com/mamadbah2/preorder/internal/domain/models"
	"github.com/mamadbah2/preorder/internal/service/aggregate"
)

// ShortageError reports a product whose remaining capacity cannot cover a request.
type ShortageError struct {
	Product   string
	Requested int
	Remaining int
}

func (e *ShortageError) Error() string {
	return fmt.Sprintf("insufficient inventory for %s: requested %d, remaining %d", e.Product, e.Requested, e.Remaining)
}

// Unwrap exposes the kind so callers can match models.ErrInsufficientInventory.
func (e *ShortageError) Unwrap() error {
	return &models.Error{Kind: models.KindInsufficientInventory, Message: e.Error()}
}

// CheckCapacity admits the candidate when, for every product it references,
// the requested units fit in capacity minus what existing orders already hold.
//
// The candidate must not be part of existing. Products are checked in name
// order and the first shortage is returned. A product missing from the
// catalog is reported as models.KindInvalidProduct.
func CheckCapacity(catalog []models.Product, existing []models.Order, candidate models.Order) error {
	capacity := make(map[string]int, len(catalog))
	for _, p := range catalog {
		capacity[p.Name] = p.Capacity()
	}

	committed := aggregate.Committed(existing)
	requested := candidate.SelectedProducts.Requested()

	products := make([]string, 0, len(requested))
	for name := range requested {
		products = append(products, name)
	}
	sort.Strings(products)

	for _, name := range products {
		limit, ok := capacity[name]
		if !ok {
			return models.NewError(models.KindInvalidProduct, "product %s is not offered on this date", name)
		}
		remaining := limit - committed[name]
		if requested[name] > remaining {
			return &ShortageError{Product: name, Requested: requested[name], Remaining: remaining}
		}
	}
	return nil
}
