package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/preorder/internal/domain/models"
	"github.com/mamadbah2/preorder/internal/service/forms"
)

// Catalog is the form management surface used by FormHandler.
type Catalog interface {
	Dates(ctx context.Context) ([]string, error)
	CreateForm(ctx context.Context, name string) error
	DeleteForm(ctx context.Context, name string) error
	AddProduct(ctx context.Context, name string, product models.Product) error
	UpdateProducts(ctx context.Context, name string, products []models.Product, comment string) (int, error)
	GetForm(ctx context.Context, name string) (forms.View, error)
	UpdateInventory(ctx context.Context, name string, updates []forms.InventoryUpdate) error
	SetVisibility(ctx context.Context, visibility map[string]bool) error
}

// FormHandler exposes catalog management over HTTP.
type FormHandler struct {
	svc    Catalog
	logger *zap.Logger
}

// NewFormHandler constructs the HTTP handler adapter.
func NewFormHandler(svc Catalog, logger *zap.Logger) *FormHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FormHandler{svc: svc, logger: logger}
}

type createFormRequest struct {
	FormName string `json:"formName"`
}

type updateFormRequest struct {
	Products []models.Product `json:"products"`
	Comment  string           `json:"comment"`
}

type addProductRequest struct {
	Product *models.Product `json:"product"`
}

type visibilityRequest struct {
	Visibility map[string]bool `json:"visibility"`
}

type inventoryRequest struct {
	Date             string                  `json:"date"`
	InventoryUpdates []forms.InventoryUpdate `json:"inventoryUpdates"`
}

// Dates lists the available order dates.
func (h *FormHandler) Dates(c *gin.Context) {
	dates, err := h.svc.Dates(c.Request.Context())
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"dates": dates})
}

// Create opens a new form from the generic template.
func (h *FormHandler) Create(c *gin.Context) {
	var req createFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Form name is required")
		return
	}
	if err := h.svc.CreateForm(c.Request.Context(), req.FormName); err != nil {
		fail(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"formName": req.FormName})
}

// Update replaces a form's products.
func (h *FormHandler) Update(c *gin.Context) {
	var req updateFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Products data is required")
		return
	}
	name := c.Param("name")
	n, err := h.svc.UpdateProducts(c.Request.Context(), name, req.Products, req.Comment)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"formName": name, "productCount": n})
}

// Delete removes a form and its orders.
func (h *FormHandler) Delete(c *gin.Context) {
	name := c.Param("name")
	if err := h.svc.DeleteForm(c.Request.Context(), name); err != nil {
		fail(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"message": fmt.Sprintf("Form %s deleted successfully", name)})
}

// AddProduct appends one product to a form.
func (h *FormHandler) AddProduct(c *gin.Context) {
	var req addProductRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Product == nil {
		badRequest(c, "Product data is required")
		return
	}
	name := c.Param("name")
	if err := h.svc.AddProduct(c.Request.Context(), name, *req.Product); err != nil {
		fail(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"formName": name, "productName": req.Product.Name})
}

// Visibility toggles which forms customers can see.
func (h *FormHandler) Visibility(c *gin.Context) {
	var req visibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Visibility == nil {
		badRequest(c, "Visibility data is required")
		return
	}
	if err := h.svc.SetVisibility(c.Request.Context(), req.Visibility); err != nil {
		fail(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"message": "Form visibility updated successfully"})
}

// Products returns a date's form.
func (h *FormHandler) Products(c *gin.Context) {
	view, err := h.svc.GetForm(c.Request.Context(), c.Param("date"))
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"products": view.Products, "metadata": view.Metadata, "comment": view.Comment})
}

// Inventory sets product inventories on a date.
func (h *FormHandler) Inventory(c *gin.Context) {
	var req inventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Date and inventory updates are required")
		return
	}
	if err := h.svc.UpdateInventory(c.Request.Context(), req.Date, req.InventoryUpdates); err != nil {
		fail(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"message": "Inventory updated successfully"})
}
