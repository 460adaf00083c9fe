package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/preorder/internal/domain/models"
	"github.com/mamadbah2/preorder/internal/repository"
	"github.com/mamadbah2/preorder/internal/service/aggregate"
	"github.com/mamadbah2/preorder/internal/service/inventory"
)

// Catalog resolves the product list offered on a date.
type Catalog interface {
	Products(ctx context.Context, date string) ([]models.Product, error)
}

// Manager describes the order lifecycle operations used by the HTTP layer.
type Manager interface {
	Create(ctx context.Context, in CreateInput) (models.Order, error)
	Get(ctx context.Context, id string) (Located, error)
	List(ctx context.Context) (models.OrderBook, error)
	ListDate(ctx context.Context, date string) (*models.DateOrders, error)
	Update(ctx context.Context, id string, in UpdateInput) (models.Order, error)
	Delete(ctx context.Context, id string) error
	Move(ctx context.Context, id, targetDate string) (models.Order, error)
}

// RawProductSelection is a product as submitted by the order form.
type RawProductSelection struct {
	Selected bool                `json:"selected"`
	Extras   models.ExtraAmounts `json:"extras"`
}

// CreateInput carries a new order as submitted by a customer.
type CreateInput struct {
	Name             string                         `json:"name"`
	Phone            string                         `json:"phone"`
	Date             string                         `json:"date"`
	Comment          string                         `json:"comment"`
	SelectedProducts map[string]RawProductSelection `json:"selectedProducts"`
	TotalAmount      decimal.Decimal                `json:"totalAmount"`
}

// UpdateInput lists the mutable fields of an order; nil fields are left untouched.
//
// Selections are stored as given. Unlike Create, no filtering of unselected
// products or non-positive extras happens here: edits come from the admin
// screen, which is trusted to submit well-formed selections.
type UpdateInput struct {
	Phone            *string           `json:"phone"`
	Comment          *string           `json:"comment"`
	SelectedProducts models.Selections `json:"selectedProducts"`
	TotalAmount      *decimal.Decimal  `json:"totalAmount"`
}

// Located is an order together with where it currently lives.
type Located struct {
	Date     string       `json:"date"`
	Position int          `json:"position"`
	Order    models.Order `json:"order"`
}

// Service implements Manager on top of an OrderStore.
type Service struct {
	store   repository.OrderStore
	catalog Catalog
	gate    *repository.Gate
	logger  *zap.Logger
	now     func() time.Time
	newID   func() string
}

// NewService wires the lifecycle manager. The gate must be shared with every
// other service writing to the same store.
func NewService(store repository.OrderStore, catalog Catalog, gate *repository.Gate, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if gate == nil {
		gate = &repository.Gate{}
	}
	return &Service{
		store:   store,
		catalog: catalog,
		gate:    gate,
		logger:  logger,
		now:     time.Now,
		newID:   newOrderID,
	}
}

// newOrderID returns a time-ordered UUIDv7.
func newOrderID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Create filters the submitted selections, stores the order on its date and
// refreshes that date's aggregate.
func (s *Service) Create(ctx context.Context, in CreateInput) (models.Order, error) {
	if err := validateCreate(in); err != nil {
		return models.Order{}, err
	}

	s.gate.Lock()
	defer s.gate.Unlock()

	book, err := s.store.LoadOrders(ctx)
	if err != nil {
		return models.Order{}, fmt.Errorf("load orders: %w", err)
	}
	col, ok := book[in.Date]
	if !ok || col == nil {
		return models.Order{}, models.NewError(models.KindNotFound, "date %s not found", in.Date)
	}

	order := models.Order{
		ID:               s.newID(),
		Name:             in.Name,
		Phone:            in.Phone,
		Date:             in.Date,
		Comment:          in.Comment,
		SelectedProducts: filterSelections(in.SelectedProducts),
		TotalAmount:      in.TotalAmount,
		Timestamp:        models.NewTimestamp(s.now().UTC()),
	}

	col.Orders = append(col.Orders, order)
	if err := aggregate.Refresh(col); err != nil {
		return models.Order{}, err
	}
	if err := s.store.SaveOrders(ctx, book); err != nil {
		return models.Order{}, fmt.Errorf("save orders: %w", err)
	}

	s.logger.Info("order created",
		zap.String("order_id", order.ID),
		zap.String("date", order.Date),
		zap.Int("products", len(order.SelectedProducts)))
	return order, nil
}

// Get finds an order by scanning every date.
func (s *Service) Get(ctx context.Context, id string) (Located, error) {
	s.gate.Lock()
	defer s.gate.Unlock()

	book, err := s.store.LoadOrders(ctx)
	if err != nil {
		return Located{}, fmt.Errorf("load orders: %w", err)
	}
	return locate(book, id)
}

// List returns every date's order collection.
func (s *Service) List(ctx context.Context) (models.OrderBook, error) {
	s.gate.Lock()
	defer s.gate.Unlock()

	book, err := s.store.LoadOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}
	return book, nil
}

// ListDate returns one date's collection, or an empty one for an unknown date.
func (s *Service) ListDate(ctx context.Context, date string) (*models.DateOrders, error) {
	book, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if col, ok := book[date]; ok && col != nil {
		return col, nil
	}
	return models.NewDateOrders(), nil
}

// Update replaces the provided fields of an order in place and refreshes its date.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (models.Order, error) {
	s.gate.Lock()
	defer s.gate.Unlock()

	book, err := s.store.LoadOrders(ctx)
	if err != nil {
		return models.Order{}, fmt.Errorf("load orders: %w", err)
	}
	loc, err := locate(book, id)
	if err != nil {
		return models.Order{}, err
	}

	updated := loc.Order
	if in.Phone != nil {
		updated.Phone = *in.Phone
	}
	if in.Comment != nil {
		updated.Comment = *in.Comment
	}
	if in.SelectedProducts != nil {
		updated.SelectedProducts = in.SelectedProducts.Clone()
	}
	if in.TotalAmount != nil {
		updated.TotalAmount = *in.TotalAmount
	}

	col := book[loc.Date]
	col.Orders[loc.Position] = updated
	if err := aggregate.Refresh(col); err != nil {
		return models.Order{}, err
	}
	if err := s.store.SaveOrders(ctx, book); err != nil {
		return models.Order{}, fmt.Errorf("save orders: %w", err)
	}

	s.logger.Info("order updated", zap.String("order_id", id), zap.String("date", loc.Date))
	return updated, nil
}

// Delete removes an order and refreshes its date.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.gate.Lock()
	defer s.gate.Unlock()

	book, err := s.store.LoadOrders(ctx)
	if err != nil {
		return fmt.Errorf("load orders: %w", err)
	}
	loc, err := locate(book, id)
	if err != nil {
		return err
	}

	col := book[loc.Date]
	col.Orders = removeAt(col.Orders, loc.Position)
	if err := aggregate.Refresh(col); err != nil {
		return err
	}
	if err := s.store.SaveOrders(ctx, book); err != nil {
		return fmt.Errorf("save orders: %w", err)
	}

	s.logger.Info("order deleted", zap.String("order_id", id), zap.String("date", loc.Date))
	return nil
}

// Move transfers an order to another date after checking the target's
// catalog and remaining inventory. Nothing is written unless every check passes.
func (s *Service) Move(ctx context.Context, id, targetDate string) (models.Order, error) {
	s.gate.Lock()
	defer s.gate.Unlock()

	book, err := s.store.LoadOrders(ctx)
	if err != nil {
		return models.Order{}, fmt.Errorf("load orders: %w", err)
	}
	loc, err := locate(book, id)
	if err != nil {
		return models.Order{}, err
	}
	if loc.Date == targetDate {
		return models.Order{}, models.NewError(models.KindValidation, "order %s already belongs to %s", id, targetDate)
	}
	target, ok := book[targetDate]
	if !ok || target == nil {
		return models.Order{}, models.NewError(models.KindNotFound, "date %s not found", targetDate)
	}

	catalog, err := s.catalog.Products(ctx, targetDate)
	if err != nil {
		return models.Order{}, err
	}
	if err := checkOffered(catalog, loc.Order); err != nil {
		return models.Order{}, err
	}
	if err := inventory.CheckCapacity(catalog, target.Orders, loc.Order); err != nil {
		s.logger.Info("order move denied",
			zap.String("order_id", id),
			zap.String("target_date", targetDate),
			zap.Error(err))
		return models.Order{}, err
	}

	moved := loc.Order.Clone()
	moved.Date = targetDate
	moved.Timestamp = models.NewTimestamp(s.now().UTC())

	target.Orders = append(target.Orders, moved)
	if err := aggregate.Refresh(target); err != nil {
		return models.Order{}, err
	}
	source := book[loc.Date]
	source.Orders = removeAt(source.Orders, loc.Position)
	if err := aggregate.Refresh(source); err != nil {
		return models.Order{}, err
	}
	if err := s.store.SaveOrders(ctx, book); err != nil {
		return models.Order{}, fmt.Errorf("save orders: %w", err)
	}

	s.logger.Info("order moved",
		zap.String("order_id", id),
		zap.String("from", loc.Date),
		zap.String("to", targetDate))
	return moved, nil
}

func locate(book models.OrderBook, id string) (Located, error) {
	date, idx, ok := book.Locate(id)
	if !ok {
		return Located{}, models.NewError(models.KindNotFound, "order %s not found", id)
	}
	return Located{Date: date, Position: idx, Order: book[date].Orders[idx]}, nil
}

func checkOffered(catalog []models.Product, order models.Order) error {
	offered := make(map[string]struct{}, len(catalog))
	for _, p := range catalog {
		offered[p.Name] = struct{}{}
	}
	for product := range order.SelectedProducts {
		if _, ok := offered[product]; !ok {
			return models.NewError(models.KindInvalidProduct, "product %s is not offered on the target date", product)
		}
	}
	return nil
}

// filterSelections keeps selected products and, within them, positive extras.
// Products left without extras are dropped.
func filterSelections(raw map[string]RawProductSelection) models.Selections {
	out := make(models.Selections, len(raw))
	for product, sel := range raw {
		if !sel.Selected {
			continue
		}
		extras := make(models.ExtraAmounts, len(sel.Extras))
		for name, amount := range sel.Extras {
			if amount > 0 {
				extras[name] = amount
			}
		}
		if len(extras) == 0 {
			continue
		}
		out[product] = models.ProductSelection{Extras: extras}
	}
	return out
}

func validateCreate(in CreateInput) error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return models.NewError(models.KindValidation, "Missing required field: name")
	case strings.TrimSpace(in.Phone) == "":
		return models.NewError(models.KindValidation, "Missing required field: phone")
	case strings.TrimSpace(in.Date) == "":
		return models.NewError(models.KindValidation, "Missing required field: date")
	case in.SelectedProducts == nil:
		return models.NewError(models.KindValidation, "Missing required field: selectedProducts")
	}
	for product, sel := range in.SelectedProducts {
		if sel.Selected && sel.Extras == nil {
			return models.NewError(models.KindValidation, "product %s has no extras", product)
		}
	}
	return nil
}

func removeAt(orders []models.Order, i int) []models.Order {
	out := make([]models.Order, 0, len(orders)-1)
	out = append(out, orders[:i]...)
	return append(out, orders[i+1:]...)
}
