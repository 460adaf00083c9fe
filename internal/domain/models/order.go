package models

import (
	"github.com/shopspring/decimal"
)

func init() {
	// Totals and prices travel as plain JSON numbers, like the stored files.
	decimal.MarshalJSONWithoutQuotes = true
}

// ExtraAmounts maps an extra name to the quantity ordered.
type ExtraAmounts map[string]int

// ProductSelection holds the extras chosen for one product of an order.
type ProductSelection struct {
	Extras ExtraAmounts `json:"extras" bson:"extras"`
}

// Selections maps a product name to the extras chosen for it.
type Selections map[string]ProductSelection

// Clone returns a deep copy of the selections.
func (s Selections) Clone() Selections {
	if s == nil {
		return nil
	}
	out := make(Selections, len(s))
	for product, sel := range s {
		var extras ExtraAmounts
		if sel.Extras != nil {
			extras = make(ExtraAmounts, len(sel.Extras))
			for name, amount := range sel.Extras {
				extras[name] = amount
			}
		}
		out[product] = ProductSelection{Extras: extras}
	}
	return out
}

// Requested sums the extras of every selected product.
func (s Selections) Requested() map[string]int {
	out := make(map[string]int, len(s))
	for product, sel := range s {
		for _, amount := range sel.Extras {
			out[product] += amount
		}
	}
	return out
}

// Order is one customer's submission for a date.
type Order struct {
	ID               string          `json:"id" bson:"id"`
	Name             string          `json:"name" bson:"name"`
	Phone            string          `json:"phone" bson:"phone"`
	Date             string          `json:"date" bson:"date"`
	Comment          string          `json:"comment" bson:"comment"`
	SelectedProducts Selections      `json:"selectedProducts" bson:"selected_products"`
	TotalAmount      decimal.Decimal `json:"totalAmount" bson:"total_amount"`
	Timestamp        Timestamp       `json:"timestamp" bson:"timestamp"`
}

// Clone returns a deep copy of the order.
func (o Order) Clone() Order {
	o.SelectedProducts = o.SelectedProducts.Clone()
	return o
}

// ExtraSummary is the aggregated amount of one extra and who ordered it.
type ExtraSummary struct {
	Amount int      `json:"amount" bson:"amount"`
	Names  []string `json:"names" bson:"names"`
}

// ProductSummary is the aggregated amount of one product across a date's orders.
type ProductSummary struct {
	TotalAmount int                      `json:"total_amount" bson:"total_amount"`
	Extras      map[string]*ExtraSummary `json:"extras" bson:"extras"`
}

// Aggregate is the per-date summary derived from the date's orders.
type Aggregate map[string]*ProductSummary

// DateOrders is the order collection of a single date.
type DateOrders struct {
	Orders   []Order   `json:"orders" bson:"orders"`
	Products Aggregate `json:"products" bson:"products"`
}

// NewDateOrders returns an empty collection.
func NewDateOrders() *DateOrders {
	return &DateOrders{Orders: []Order{}, Products: Aggregate{}}
}

// OrderBook maps a date to its order collection.
type OrderBook map[string]*DateOrders

// Locate scans every date for the order with the given id.
func (b OrderBook) Locate(id string) (date string, index int, ok bool) {
	for d, col := range b {
		if col == nil {
			continue
		}
		for i := range col.Orders {
			if col.Orders[i].ID == id {
				return d, i, true
			}
		}
	}
	return "", -1, false
}
