// Package forms manages the per-date product catalogs customers order from.
package forms

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/preorder/internal/domain/models"
	"github.com/mamadbah2/preorder/internal/repository"
	"github.com/mamadbah2/preorder/internal/service/aggregate"
	"github.com/mamadbah2/preorder/internal/service/inventory"
)

// InventoryUpdate sets the inventory of one product on a form.
type InventoryUpdate struct {
	Name      string `json:"name"`
	Inventory int    `json:"inventory"`
}

// View is a form as presented to the order page.
type View struct {
	Products []models.Product    `json:"products"`
	Metadata models.FormMetadata `json:"metadata"`
	Comment  string              `json:"comment"`
}

// Service implements catalog management on top of a Store.
type Service struct {
	store  repository.Store
	gate   *repository.Gate
	policy inventory.SoldOutPolicy
	logger *zap.Logger
}

// NewService wires the catalog service. The gate must be the one shared with
// the order lifecycle manager.
func NewService(store repository.Store, gate *repository.Gate, policy inventory.SoldOutPolicy, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if gate == nil {
		gate = &repository.Gate{}
	}
	if policy == nil {
		policy = inventory.SoldOutWhenZeroInventory{}
	}
	return &Service{store: store, gate: gate, policy: policy, logger: logger}
}

// Dates lists every form name except the generic template.
func (s *Service) Dates(ctx context.Context) ([]string, error) {
	s.gate.Lock()
	defer s.gate.Unlock()

	book, err := s.store.LoadForms(ctx)
	if err != nil {
		return nil, fmt.Errorf("load forms: %w", err)
	}
	return book.Dates(), nil
}

// CreateForm copies the generic template into a new visible form and opens
// an empty order collection for it.
func (s *Service) CreateForm(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.NewError(models.KindValidation, "Form name is required")
	}

	s.gate.Lock()
	defer s.gate.Unlock()

	forms, err := s.store.LoadForms(ctx)
	if err != nil {
		return fmt.Errorf("load forms: %w", err)
	}
	if _, ok := forms.Forms[name]; ok || name == models.GenericProductsKey {
		return models.NewError(models.KindConflict, "Form with this name already exists")
	}
	orders, err := s.store.LoadOrders(ctx)
	if err != nil {
		return fmt.Errorf("load orders: %w", err)
	}
	if col, ok := orders[name]; ok && col != nil && len(col.Orders) > 0 {
		return models.NewError(models.KindConflict, "orders already exist for %s", name)
	}

	prev := forms.Clone()
	forms.Forms[name] = &models.Form{
		Products: models.CloneProducts(forms.Generic.Products),
		Metadata: models.FormMetadata{Visible: true},
		Comment:  models.DefaultFormComment,
	}
	orders[name] = models.NewDateOrders()

	if err := s.saveBoth(ctx, prev, forms, orders); err != nil {
		return err
	}
	s.logger.Info("form created", zap.String("form", name), zap.Int("products", len(forms.Forms[name].Products)))
	return nil
}

// DeleteForm removes a form together with its order collection.
func (s *Service) DeleteForm(ctx context.Context, name string) error {
	if name == models.GenericProductsKey {
		return models.NewError(models.KindForbidden, "Cannot delete generic products template")
	}

	s.gate.Lock()
	defer s.gate.Unlock()

	forms, err := s.store.LoadForms(ctx)
	if err != nil {
		return fmt.Errorf("load forms: %w", err)
	}
	if _, ok := forms.Forms[name]; !ok {
		return models.NewError(models.KindNotFound, "Form not found")
	}
	orders, err := s.store.LoadOrders(ctx)
	if err != nil {
		return fmt.Errorf("load orders: %w", err)
	}

	prev := forms.Clone()
	delete(forms.Forms, name)
	dropped := 0
	if col, ok := orders[name]; ok && col != nil {
		dropped = len(col.Orders)
	}
	delete(orders, name)

	if err := s.saveBoth(ctx, prev, forms, orders); err != nil {
		return err
	}
	s.logger.Info("form deleted", zap.String("form", name), zap.Int("orders_dropped", dropped))
	return nil
}

// AddProduct appends a product to a form. Products without an explicit
// existent flag are marked existent. Names are unique within a form.
func (s *Service) AddProduct(ctx context.Context, name string, product models.Product) error {
	if strings.TrimSpace(product.Name) == "" {
		return models.NewError(models.KindValidation, "Product data is required")
	}

	return s.mutateForm(ctx, name, func(form *models.Form) error {
		if _, exists := form.FindProduct(product.Name); exists {
			return models.NewError(models.KindConflict, "Product %s already exists", product.Name)
		}
		if product.Existent == nil {
			existent := true
			product.Existent = &existent
		}
		form.Products = append(form.Products, product.Clone())
		form.Legacy = false
		return nil
	})
}

// UpdateProducts replaces the products of a form, keeping the submitted order.
// An empty comment keeps the current one.
func (s *Service) UpdateProducts(ctx context.Context, name string, products []models.Product, comment string) (int, error) {
	if products == nil {
		return 0, models.NewError(models.KindValidation, "Products data is required")
	}

	s.gate.Lock()
	defer s.gate.Unlock()

	committed, err := s.committed(ctx, name)
	if err != nil {
		return 0, err
	}
	err = s.mutateFormLocked(ctx, name, func(form *models.Form) error {
		processed := make([]models.Product, 0, len(products))
		for _, p := range products {
			p = p.Clone()
			if p.Inventory == nil {
				inv := models.DefaultInventory
				p.Inventory = &inv
			}
			p.SoldOut = s.policy.SoldOut(p, committed[p.Name])
			processed = append(processed, p)
		}
		form.Products = processed
		if comment != "" {
			form.Comment = comment
		}
		form.Legacy = false
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(products), nil
}

// GetForm returns a form with inventory defaults applied and sold-out flags
// derived from the configured policy.
func (s *Service) GetForm(ctx context.Context, name string) (View, error) {
	s.gate.Lock()
	defer s.gate.Unlock()

	book, err := s.store.LoadForms(ctx)
	if err != nil {
		return View{}, fmt.Errorf("load forms: %w", err)
	}
	form, ok := lookup(&book, name)
	if !ok {
		return View{}, models.NewError(models.KindNotFound, "Date not found")
	}
	committed, err := s.committed(ctx, name)
	if err != nil {
		return View{}, err
	}

	products := withDefaults(form.Products)
	for i := range products {
		products[i].SoldOut = s.policy.SoldOut(products[i], committed[products[i].Name])
	}
	return View{Products: products, Metadata: form.Metadata, Comment: form.CommentOrDefault()}, nil
}

// UpdateInventory sets inventories by product name. Unknown names are skipped.
func (s *Service) UpdateInventory(ctx context.Context, name string, updates []InventoryUpdate) error {
	if name == "" || updates == nil {
		return models.NewError(models.KindValidation, "Date and inventory updates are required")
	}
	for _, u := range updates {
		if u.Inventory < 0 {
			return models.NewError(models.KindValidation, "inventory of %s must not be negative", u.Name)
		}
	}

	s.gate.Lock()
	defer s.gate.Unlock()

	committed, err := s.committed(ctx, name)
	if err != nil {
		return err
	}
	return s.mutateFormLocked(ctx, name, func(form *models.Form) error {
		if form.Legacy {
			return models.NewError(models.KindValidation, "Invalid form structure")
		}
		for _, u := range updates {
			i := form.ProductIndex(u.Name)
			if i < 0 {
				continue
			}
			p := &form.Products[i]
			inv := u.Inventory
			p.Inventory = &inv
			p.SoldOut = s.policy.SoldOut(*p, committed[p.Name])
		}
		return nil
	})
}

// SetVisibility toggles form visibility. The template and unknown forms are skipped.
func (s *Service) SetVisibility(ctx context.Context, visibility map[string]bool) error {
	if visibility == nil {
		return models.NewError(models.KindValidation, "Visibility data is required")
	}

	s.gate.Lock()
	defer s.gate.Unlock()

	book, err := s.store.LoadForms(ctx)
	if err != nil {
		return fmt.Errorf("load forms: %w", err)
	}
	changed := 0
	for name, visible := range visibility {
		form, ok := book.Forms[name]
		if !ok || form == nil {
			continue
		}
		form.Metadata.Visible = visible
		form.Legacy = false
		changed++
	}
	if err := s.store.SaveForms(ctx, book); err != nil {
		return fmt.Errorf("save forms: %w", err)
	}
	s.logger.Info("form visibility updated", zap.Int("forms", changed))
	return nil
}

// Products returns the catalog of a date for the order lifecycle manager.
//
// It does not take the gate: the lifecycle manager calls it while holding it.
func (s *Service) Products(ctx context.Context, date string) ([]models.Product, error) {
	book, err := s.store.LoadForms(ctx)
	if err != nil {
		return nil, fmt.Errorf("load forms: %w", err)
	}
	form, ok := book.Forms[date]
	if !ok || form == nil {
		return nil, models.NewError(models.KindNotFound, "form %s not found", date)
	}
	return withDefaults(form.Products), nil
}

// VisibleDates lists the forms currently shown to customers.
func (s *Service) VisibleDates(ctx context.Context) ([]string, error) {
	s.gate.Lock()
	defer s.gate.Unlock()

	book, err := s.store.LoadForms(ctx)
	if err != nil {
		return nil, fmt.Errorf("load forms: %w", err)
	}
	var out []string
	for _, name := range book.Dates() {
		if form := book.Forms[name]; form != nil && form.Metadata.Visible {
			out = append(out, name)
		}
	}
	return out, nil
}

func (s *Service) mutateForm(ctx context.Context, name string, fn func(*models.Form) error) error {
	s.gate.Lock()
	defer s.gate.Unlock()
	return s.mutateFormLocked(ctx, name, fn)
}

func (s *Service) mutateFormLocked(ctx context.Context, name string, fn func(*models.Form) error) error {
	book, err := s.store.LoadForms(ctx)
	if err != nil {
		return fmt.Errorf("load forms: %w", err)
	}
	form, ok := lookup(&book, name)
	if !ok {
		return models.NewError(models.KindNotFound, "Form not found")
	}
	if err := fn(form); err != nil {
		return err
	}
	if err := s.store.SaveForms(ctx, book); err != nil {
		return fmt.Errorf("save forms: %w", err)
	}
	s.logger.Info("form updated", zap.String("form", name), zap.Int("products", len(form.Products)))
	return nil
}

// committed sums ordered units per product for a date; unknown dates have none.
func (s *Service) committed(ctx context.Context, date string) (map[string]int, error) {
	book, err := s.store.LoadOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}
	col, ok := book[date]
	if !ok || col == nil {
		return map[string]int{}, nil
	}
	return aggregate.Committed(col.Orders), nil
}

// saveBoth writes the catalog then the order book, restoring the previous
// catalog if the second write fails.
func (s *Service) saveBoth(ctx context.Context, prev, forms models.FormBook, orders models.OrderBook) error {
	if err := s.store.SaveForms(ctx, forms); err != nil {
		return fmt.Errorf("save forms: %w", err)
	}
	if err := s.store.SaveOrders(ctx, orders); err != nil {
		if rbErr := s.store.SaveForms(ctx, prev); rbErr != nil {
			s.logger.Error("failed to restore forms after order write failure", zap.Error(rbErr))
		}
		return fmt.Errorf("save orders: %w", err)
	}
	return nil
}

func lookup(book *models.FormBook, name string) (*models.Form, bool) {
	if name == models.GenericProductsKey {
		return &book.Generic, true
	}
	form, ok := book.Forms[name]
	return form, ok && form != nil
}

func withDefaults(products []models.Product) []models.Product {
	out := models.CloneProducts(products)
	for i := range out {
		if out[i].Inventory == nil {
			inv := models.DefaultInventory
			out[i].Inventory = &inv
		}
	}
	return out
}
