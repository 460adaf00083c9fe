package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/preorder/internal/domain/models"
)

func newStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := New(filepath.Join(dir, "orders.json"), filepath.Join(dir, "forms.json"), nil)
	require.NoError(t, err)
	return s, dir
}

func TestNew_InitializesEmptyDocuments(t *testing.T) {
	s, dir := newStore(t)
	ctx := context.Background()

	orders, err := s.LoadOrders(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)

	forms, err := s.LoadForms(ctx)
	require.NoError(t, err)
	assert.Empty(t, forms.Forms)

	raw, err := os.ReadFile(filepath.Join(dir, "forms.json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), models.GenericProductsKey)
}

func TestOrders_RoundTrip(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	book := models.OrderBook{
		"2025-05-01": &models.DateOrders{
			Orders: []models.Order{{
				ID:               "1",
				Name:             "Ann",
				Date:             "2025-05-01",
				SelectedProducts: models.Selections{"Bread": {Extras: models.ExtraAmounts{"slice": 2}}},
				TotalAmount:      decimal.RequireFromString("12.5"),
				Timestamp:        models.NewTimestamp(time.Date(2025, 4, 28, 10, 0, 0, 0, time.UTC)),
			}},
			Products: models.Aggregate{"Bread": {TotalAmount: 2, Extras: map[string]*models.ExtraSummary{
				"slice": {Amount: 2, Names: []string{"Ann"}},
			}}},
		},
	}
	require.NoError(t, s.SaveOrders(ctx, book))

	loaded, err := s.LoadOrders(ctx)
	require.NoError(t, err)
	require.Contains(t, loaded, "2025-05-01")
	got := loaded["2025-05-01"]
	require.Len(t, got.Orders, 1)
	assert.True(t, decimal.RequireFromString("12.5").Equal(got.Orders[0].TotalAmount))
	assert.Equal(t, []string{"Ann"}, got.Products["Bread"].Extras["slice"].Names)
}

func TestLoadOrders_NormalizesNullCollections(t *testing.T) {
	s, dir := newStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "orders.json"), []byte(`{"d1": null, "d2": {"orders": null}}`), 0o644))

	loaded, err := s.LoadOrders(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, loaded["d1"].Orders)
	assert.NotNil(t, loaded["d2"].Products)
}

func TestLoadForms_CorruptFileIsAnError(t *testing.T) {
	s, dir := newStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "forms.json"), []byte(`{not json`), 0o644))

	_, err := s.LoadForms(context.Background())
	assert.Error(t, err)
}

func TestSaveForms_LeavesNoTempFiles(t *testing.T) {
	s, dir := newStore(t)
	book := models.NewFormBook()
	book.Forms["2025-05-01"] = &models.Form{Products: []models.Product{{Name: "Bread"}}, Metadata: models.FormMetadata{Visible: true}}

	require.NoError(t, s.SaveForms(context.Background(), book))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestLoad_HonorsCancelledContext(t *testing.T) {
	s, _ := newStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.LoadOrders(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadOrders_AcceptsOffsetlessTimestamps(t *testing.T) {
	s, dir := newStore(t)
	raw := `{
  "2024-04-26": {
    "orders": [
      {
        "id": "1714039872.123456",
        "name": "Ann",
        "phone": "555-0100",
        "date": "2024-04-26",
        "comment": "",
        "selectedProducts": {"Bread": {"extras": {"slice": 2}}},
        "totalAmount": 7.5,
        "timestamp": "2024-04-25T10:11:12.123456"
      }
    ],
    "products": {"Bread": {"total_amount": 2, "extras": {"slice": {"amount": 2, "names": ["Ann"]}}}}
  }
}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "orders.json"), []byte(raw), 0o644))

	loaded, err := s.LoadOrders(context.Background())
	require.NoError(t, err)

	require.Len(t, loaded["2024-04-26"].Orders, 1)
	order := loaded["2024-04-26"].Orders[0]
	assert.Equal(t, "1714039872.123456", order.ID)
	assert.True(t, time.Date(2024, 4, 25, 10, 11, 12, 123456000, time.UTC).Equal(order.Timestamp.Time))
	assert.True(t, decimal.RequireFromString("7.5").Equal(order.TotalAmount))

	require.NoError(t, s.SaveOrders(context.Background(), loaded))
	again, err := s.LoadOrders(context.Background())
	require.NoError(t, err)
	assert.True(t, order.Timestamp.Equal(again["2024-04-26"].Orders[0].Timestamp.Time))
}
