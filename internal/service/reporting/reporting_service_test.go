package reporting

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/preorder/internal/domain/models"
	"github.com/mamadbah2/preorder/internal/service/aggregate"
)

type fakeOrders map[string]*models.DateOrders

func (f fakeOrders) ListDate(_ context.Context, date string) (*models.DateOrders, error) {
	if col, ok := f[date]; ok {
		return col, nil
	}
	return models.NewDateOrders(), nil
}

type fakeDates []string

func (f fakeDates) VisibleDates(context.Context) ([]string, error) { return f, nil }

type fakeSheet struct {
	cleared  []string
	written  [][]interface{}
	stored   [][]interface{}
	writeErr error
}

func (f *fakeSheet) ClearRange(_ context.Context, r string) error {
	f.cleared = append(f.cleared, r)
	return nil
}

func (f *fakeSheet) WriteRows(_ context.Context, _ string, rows [][]interface{}) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.written = rows
	return nil
}

func (f *fakeSheet) ReadRange(context.Context, string) ([][]interface{}, error) {
	return f.stored, nil
}

func collection(t *testing.T, orders ...models.Order) *models.DateOrders {
	t.Helper()
	col := &models.DateOrders{Orders: orders}
	require.NoError(t, aggregate.Refresh(col))
	return col
}

func fixtureOrders(t *testing.T) fakeOrders {
	return fakeOrders{
		"D1": collection(t,
			models.Order{Name: "Ann", SelectedProducts: models.Selections{
				"Rye":   {Extras: models.ExtraAmounts{"loaf": 1}},
				"Bread": {Extras: models.ExtraAmounts{"whole": 1, "slice": 2}},
			}},
			models.Order{Name: "Bob", SelectedProducts: models.Selections{
				"Bread": {Extras: models.ExtraAmounts{"slice": 3}},
			}},
		),
		"D2": collection(t, models.Order{Name: "Cid", SelectedProducts: models.Selections{
			"Bread": {Extras: models.ExtraAmounts{"slice": 1}},
		}}),
	}
}

func TestRows_SortedByProductThenExtra(t *testing.T) {
	svc := NewService(fixtureOrders(t), fakeDates{"D1"}, nil, "Production!A:F", nil)

	rows, err := svc.Rows(context.Background(), "D1")
	require.NoError(t, err)
	assert.Equal(t, [][]interface{}{
		{"D1", "Bread", "slice", 5, "Ann, Bob"},
		{"D1", "Bread", "whole", 1, "Ann"},
		{"D1", "Rye", "loaf", 1, "Ann"},
	}, rows)

	empty, err := svc.Rows(context.Background(), "D9")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestExport(t *testing.T) {
	sheet := &fakeSheet{}
	svc := NewService(fixtureOrders(t), fakeDates{"D1", "D2"}, sheet, "Production!A:F", nil)

	n, err := svc.Export(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, []string{"Production!A:F"}, sheet.cleared)
	require.Len(t, sheet.written, 5)
	assert.Equal(t, header, sheet.written[0])
	assert.Equal(t, "D2", sheet.written[4][0])

	n, err = svc.Export(context.Background(), []string{"D2"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestExport_Failures(t *testing.T) {
	svc := NewService(fixtureOrders(t), fakeDates{"D1"}, nil, "Production!A:F", nil)
	_, err := svc.Export(context.Background(), nil)
	assert.ErrorIs(t, err, models.ErrUnavailable)
	_, err = svc.Exported(context.Background())
	assert.ErrorIs(t, err, models.ErrUnavailable)

	sheet := &fakeSheet{writeErr: errors.New("quota exceeded")}
	svc = NewService(fixtureOrders(t), fakeDates{"D1"}, sheet, "Production!A:F", nil)
	_, err = svc.Export(context.Background(), nil)
	assert.ErrorContains(t, err, "quota exceeded")
}

func TestExported(t *testing.T) {
	sheet := &fakeSheet{stored: [][]interface{}{{"Date"}, {"D1"}}}
	svc := NewService(fixtureOrders(t), fakeDates{}, sheet, "Production!A:F", nil)

	rows, err := svc.Exported(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestSummary(t *testing.T) {
	svc := NewService(fixtureOrders(t), fakeDates{"D1", "D3"}, nil, "", nil)

	summary, err := svc.Summary(context.Background(), "D1")
	require.NoError(t, err)
	assert.Equal(t, "Production for D1 (2 orders)\nBread: 6\n  slice 5\n  whole 1\nRye: 1\n  loaf 1", summary)

	daily, err := svc.DailySummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, summary+"\n\nProduction for D3: no orders yet.", daily)

	none, err := NewService(fixtureOrders(t), fakeDates{}, nil, "", nil).DailySummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "No open order dates.", none)
}
