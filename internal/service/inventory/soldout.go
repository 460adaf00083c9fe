package inventory

import (
	"fmt"
	"strings"

	"github.com/mamadbah2/preorder/internal/domain/models"
)

// SoldOutPolicy decides whether a product is shown as sold out.
type SoldOutPolicy interface {
	Name() string
	SoldOut(product models.Product, committed int) bool
}

// SoldOutWhenZeroInventory marks a product sold out once its inventory is set to zero.
type SoldOutWhenZeroInventory struct{}

func (SoldOutWhenZeroInventory) Name() string { return "zero-inventory" }

func (SoldOutWhenZeroInventory) SoldOut(product models.Product, _ int) bool {
	return product.Capacity() == 0
}

// SoldOutWhenCommitted marks a product sold out once orders reach its inventory.
type SoldOutWhenCommitted struct{}

func (SoldOutWhenCommitted) Name() string { return "committed" }

func (SoldOutWhenCommitted) SoldOut(product models.Product, committed int) bool {
	return committed >= product.Capacity()
}

// ParsePolicy maps a configuration value to a policy. Empty selects zero-inventory.
func ParsePolicy(name string) (SoldOutPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "zero-inventory":
		return SoldOutWhenZeroInventory{}, nil
	case "committed":
		return SoldOutWhenCommitted{}, nil
	default:
		return nil, fmt.Errorf("unknown sold-out policy %q", name)
	}
}
