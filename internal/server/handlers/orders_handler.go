package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/preorder/internal/domain/models"
	"github.com/mamadbah2/preorder/internal/service/orders"
)

const notifyTimeout = 20 * time.Second

// OrderNotifier is told about every created order.
type OrderNotifier interface {
	OrderCreated(ctx context.Context, order models.Order) error
}

// OrderHandler exposes the order lifecycle over HTTP.
type OrderHandler struct {
	svc      orders.Manager
	notifier OrderNotifier
	logger   *zap.Logger
}

// NewOrderHandler constructs the HTTP handler adapter. notifier may be nil.
func NewOrderHandler(svc orders.Manager, notifier OrderNotifier, logger *zap.Logger) *OrderHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderHandler{svc: svc, notifier: notifier, logger: logger}
}

type moveRequest struct {
	Date string `json:"date"`
}

// Create stores a new order and notifies the owner in the background.
func (h *OrderHandler) Create(c *gin.Context) {
	var in orders.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.logger.Warn("invalid order payload", zap.Error(err))
		badRequest(c, "invalid request body")
		return
	}

	order, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		fail(c, h.logger, err)
		return
	}

	if h.notifier != nil {
		go h.notify(order)
	}
	respond(c, http.StatusOK, gin.H{"order": order})
}

func (h *OrderHandler) notify(order models.Order) {
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()
	if err := h.notifier.OrderCreated(ctx, order); err != nil {
		h.logger.Warn("order notification failed", zap.String("order_id", order.ID), zap.Error(err))
	}
}

// List returns every date's orders, or one date's collection with ?date=.
func (h *OrderHandler) List(c *gin.Context) {
	if date := c.Query("date"); date != "" {
		col, err := h.svc.ListDate(c.Request.Context(), date)
		if err != nil {
			fail(c, h.logger, err)
			return
		}
		respond(c, http.StatusOK, gin.H{"orders": col})
		return
	}

	book, err := h.svc.List(c.Request.Context())
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"orders": book})
}

// Get returns one order with its date and position.
func (h *OrderHandler) Get(c *gin.Context) {
	loc, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"order": loc.Order, "date": loc.Date, "position": loc.Position})
}

// Update edits the provided fields of an order.
func (h *OrderHandler) Update(c *gin.Context) {
	var in orders.UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.logger.Warn("invalid order update payload", zap.Error(err))
		badRequest(c, "invalid request body")
		return
	}

	order, err := h.svc.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"order": order})
}

// Delete removes an order.
func (h *OrderHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, nil)
}

// Move transfers an order to the date given in the body.
func (h *OrderHandler) Move(c *gin.Context) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Date == "" {
		badRequest(c, "Missing required field: date")
		return
	}

	order, err := h.svc.Move(c.Request.Context(), c.Param("id"), req.Date)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"order": order})
}
