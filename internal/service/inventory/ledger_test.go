package inventory

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/preorder/internal/domain/models"
)

func capacity(n int) *int { return &n }

func bread(extras models.ExtraAmounts) models.Order {
	return models.Order{Name: "x", SelectedProducts: models.Selections{"Bread": {Extras: extras}}}
}

func TestCheckCapacity(t *testing.T) {
	catalog := []models.Product{
		{Name: "Bread", Inventory: capacity(10)},
		{Name: "Rye"},
	}
	existing := []models.Order{bread(models.ExtraAmounts{"slice": 5, "whole": 3})}

	tests := []struct {
		name      string
		candidate models.Order
		wantKind  models.Kind
		remaining int
	}{
		{name: "fits exactly", candidate: bread(models.ExtraAmounts{"slice": 2})},
		{name: "one over", candidate: bread(models.ExtraAmounts{"slice": 3}), wantKind: models.KindInsufficientInventory, remaining: 2},
		{name: "split across extras", candidate: bread(models.ExtraAmounts{"slice": 1, "whole": 2}), wantKind: models.KindInsufficientInventory, remaining: 2},
		{
			name:      "default capacity",
			candidate: models.Order{SelectedProducts: models.Selections{"Rye": {Extras: models.ExtraAmounts{"loaf": 12}}}},
		},
		{
			name:      "unknown product",
			candidate: models.Order{SelectedProducts: models.Selections{"Bagel": {Extras: models.ExtraAmounts{"plain": 1}}}},
			wantKind:  models.KindInvalidProduct,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckCapacity(catalog, existing, tt.candidate)
			if tt.wantKind == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, models.KindOf(err))

			var shortage *ShortageError
			if errors.As(err, &shortage) {
				assert.Equal(t, "Bread", shortage.Product)
				assert.Equal(t, tt.remaining, shortage.Remaining)
			}
		})
	}
}

func TestCheckCapacity_ReportsFirstProductByName(t *testing.T) {
	catalog := []models.Product{
		{Name: "Bread", Inventory: capacity(1)},
		{Name: "Apple Pie", Inventory: capacity(1)},
	}
	candidate := models.Order{SelectedProducts: models.Selections{
		"Bread":     {Extras: models.ExtraAmounts{"slice": 5}},
		"Apple Pie": {Extras: models.ExtraAmounts{"slice": 5}},
	}}

	err := CheckCapacity(catalog, nil, candidate)

	var shortage *ShortageError
	require.ErrorAs(t, err, &shortage)
	assert.Equal(t, "Apple Pie", shortage.Product)
	assert.ErrorIs(t, err, models.ErrInsufficientInventory)
}

func TestSoldOutPolicies(t *testing.T) {
	zero := models.Product{Name: "Bread", Inventory: capacity(0)}
	five := models.Product{Name: "Bread", Inventory: capacity(5)}

	assert.True(t, SoldOutWhenZeroInventory{}.SoldOut(zero, 0))
	assert.False(t, SoldOutWhenZeroInventory{}.SoldOut(five, 5))

	assert.True(t, SoldOutWhenCommitted{}.SoldOut(five, 5))
	assert.False(t, SoldOutWhenCommitted{}.SoldOut(five, 4))
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, "zero-inventory", p.Name())

	p, err = ParsePolicy("Committed")
	require.NoError(t, err)
	assert.Equal(t, "committed", p.Name())

	_, err = ParsePolicy("never")
	assert.Error(t, err)
}
