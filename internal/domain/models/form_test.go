package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormBook_DecodesBothShapes(t *testing.T) {
	raw := `{
		"generic_products": [{"name": "Bread"}],
		"2025-05-01": {"products": [{"name": "Bread", "inventory": 4}], "metadata": {"visible": false}, "comment": "hi"},
		"2025-05-08": [{"name": "Rye"}],
		"2025-05-15": {"products": []}
	}`

	var book FormBook
	require.NoError(t, json.Unmarshal([]byte(raw), &book))

	assert.Equal(t, []string{"2025-05-01", "2025-05-08", "2025-05-15"}, book.Dates())
	require.Len(t, book.Generic.Products, 1)
	assert.True(t, book.Generic.Legacy)

	structured := book.Forms["2025-05-01"]
	assert.False(t, structured.Legacy)
	assert.False(t, structured.Metadata.Visible)
	assert.Equal(t, 4, structured.Products[0].Capacity())
	assert.Equal(t, "hi", structured.CommentOrDefault())

	legacy := book.Forms["2025-05-08"]
	assert.True(t, legacy.Legacy)
	assert.True(t, legacy.Metadata.Visible)
	assert.Equal(t, DefaultInventory, legacy.Products[0].Capacity())

	assert.True(t, book.Forms["2025-05-15"].Metadata.Visible, "missing metadata defaults to visible")
	assert.Equal(t, DefaultFormComment, book.Forms["2025-05-15"].CommentOrDefault())
}

func TestForm_LegacyShapeSurvivesRoundTrip(t *testing.T) {
	form := Form{Products: []Product{{Name: "Rye"}}, Legacy: true}

	data, err := json.Marshal(form)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"Rye","soldOut":false}]`, string(data))
}

func TestProduct_CloneIsIndependent(t *testing.T) {
	inv := 3
	p := Product{Name: "Bread", Inventory: &inv, Extras: []ExtraOption{{Name: "slice"}}}

	c := p.Clone()
	*c.Inventory = 9
	c.Extras[0].Name = "whole"

	assert.Equal(t, 3, p.Capacity())
	assert.Equal(t, "slice", p.Extras[0].Name)
}

func TestForm_ProductLookup(t *testing.T) {
	form := Form{Products: []Product{{Name: "Bread"}, {Name: "Rye"}}}

	assert.Equal(t, 1, form.ProductIndex("Rye"))
	assert.Equal(t, -1, form.ProductIndex("Scone"))

	rye, ok := form.FindProduct("Rye")
	assert.True(t, ok)
	assert.Equal(t, "Rye", rye.Name)

	_, ok = form.FindProduct("Scone")
	assert.False(t, ok)
}
