package reporting

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/preorder/internal/domain/models"
	repo "github.com/mamadbah2/preorder/internal/repository/sheets"
)

var header = []interface{}{"Date", "Product", "Extra", "Amount", "Names"}

// OrderSource reads the order collection of a date.
type OrderSource interface {
	ListDate(ctx context.Context, date string) (*models.DateOrders, error)
}

// DateSource lists the dates currently open to customers.
type DateSource interface {
	VisibleDates(ctx context.Context) ([]string, error)
}

// Service turns per-date aggregates into production sheets and WhatsApp summaries.
type Service struct {
	orders     OrderSource
	dates      DateSource
	repo       repo.Repository
	sheetRange string
	logger     *zap.Logger
}

// NewService wires a new reporting service instance. A nil repository
// disables sheet export.
func NewService(orders OrderSource, dates DateSource, repository repo.Repository, sheetRange string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{orders: orders, dates: dates, repo: repository, sheetRange: sheetRange, logger: logger}
}

// Rows renders a date's aggregate as [date, product, extra, amount, names],
// sorted by product then extra.
func (s *Service) Rows(ctx context.Context, date string) ([][]interface{}, error) {
	col, err := s.orders.ListDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("load orders for %s: %w", date, err)
	}

	var rows [][]interface{}
	for _, product := range sortedKeys(col.Products) {
		summary := col.Products[product]
		for _, extra := range sortedKeys(summary.Extras) {
			entry := summary.Extras[extra]
			rows = append(rows, []interface{}{date, product, extra, entry.Amount, strings.Join(entry.Names, ", ")})
		}
	}
	return rows, nil
}

// Export replaces the configured sheet range with the rows of the given
// dates, or of every visible date when none are given. It returns the number
// of data rows written.
func (s *Service) Export(ctx context.Context, dates []string) (int, error) {
	if s.repo == nil {
		return 0, models.NewError(models.KindUnavailable, "sheet export is not configured")
	}
	if len(dates) == 0 {
		visible, err := s.dates.VisibleDates(ctx)
		if err != nil {
			return 0, fmt.Errorf("list visible dates: %w", err)
		}
		dates = visible
	}

	values := [][]interface{}{header}
	for _, date := range dates {
		rows, err := s.Rows(ctx, date)
		if err != nil {
			return 0, err
		}
		values = append(values, rows...)
	}

	if err := s.repo.ClearRange(ctx, s.sheetRange); err != nil {
		return 0, fmt.Errorf("clear production sheet: %w", err)
	}
	if err := s.repo.WriteRows(ctx, s.sheetRange, values); err != nil {
		return 0, fmt.Errorf("write production sheet: %w", err)
	}

	s.logger.Info("production sheet exported", zap.Strings("dates", dates), zap.Int("rows", len(values)-1))
	return len(values) - 1, nil
}

// Exported reads back the current content of the production sheet.
func (s *Service) Exported(ctx context.Context) ([][]interface{}, error) {
	if s.repo == nil {
		return nil, models.NewError(models.KindUnavailable, "sheet export is not configured")
	}
	rows, err := s.repo.ReadRange(ctx, s.sheetRange)
	if err != nil {
		return nil, fmt.Errorf("read production sheet: %w", err)
	}
	return rows, nil
}

// Summary formats a date's production needs as a short text message.
func (s *Service) Summary(ctx context.Context, date string) (string, error) {
	col, err := s.orders.ListDate(ctx, date)
	if err != nil {
		return "", fmt.Errorf("load orders for %s: %w", date, err)
	}
	if len(col.Orders) == 0 {
		return fmt.Sprintf("Production for %s: no orders yet.", date), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Production for %s (%d orders)", date, len(col.Orders))
	for _, product := range sortedKeys(col.Products) {
		summary := col.Products[product]
		fmt.Fprintf(&b, "\n%s: %d", product, summary.TotalAmount)
		for _, extra := range sortedKeys(summary.Extras) {
			fmt.Fprintf(&b, "\n  %s %d", extra, summary.Extras[extra].Amount)
		}
	}
	return b.String(), nil
}

// DailySummary joins the summaries of every visible date.
func (s *Service) DailySummary(ctx context.Context) (string, error) {
	dates, err := s.dates.VisibleDates(ctx)
	if err != nil {
		return "", fmt.Errorf("list visible dates: %w", err)
	}
	if len(dates) == 0 {
		return "No open order dates.", nil
	}

	parts := make([]string, 0, len(dates))
	for _, date := range dates {
		summary, err := s.Summary(ctx, date)
		if err != nil {
			return "", err
		}
		parts = append(parts, summary)
	}
	return strings.Join(parts, "\n\n"), nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
