// Package notify sends owner notifications over WhatsApp.
package notify

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/preorder/internal/domain/models"
	"github.com/mamadbah2/preorder/pkg/clients/whatsapp"
)

// Notifier delivers short text messages to the shop owner.
type Notifier interface {
	Send(ctx context.Context, text string) error
	OrderCreated(ctx context.Context, order models.Order) error
}

// Service implements Notifier. A Service without a client drops every message.
type Service struct {
	client whatsapp.Client
	owner  string
	logger *zap.Logger
}

// NewService wires a notifier for the given owner number. A nil client
// disables delivery.
func NewService(client whatsapp.Client, owner string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{client: client, owner: owner, logger: logger}
}

// Enabled reports whether messages are actually delivered.
func (s *Service) Enabled() bool {
	return s != nil && s.client != nil && s.owner != ""
}

// Send delivers a message to the owner.
func (s *Service) Send(ctx context.Context, text string) error {
	if !s.Enabled() {
		s.logger.Debug("notification dropped, whatsapp disabled")
		return nil
	}
	id, err := s.client.SendText(ctx, s.owner, text)
	if err != nil {
		return fmt.Errorf("notify owner: %w", err)
	}
	s.logger.Debug("notification sent", zap.String("message_id", id))
	return nil
}

// OrderCreated tells the owner about a new order.
func (s *Service) OrderCreated(ctx context.Context, order models.Order) error {
	return s.Send(ctx, FormatOrder(order))
}

// FormatOrder renders an order as a short multi-line message.
func FormatOrder(order models.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "New order for %s\n%s (%s)\n", order.Date, order.Name, order.Phone)

	products := make([]string, 0, len(order.SelectedProducts))
	for name := range order.SelectedProducts {
		products = append(products, name)
	}
	sort.Strings(products)

	for _, product := range products {
		extras := order.SelectedProducts[product].Extras
		names := make([]string, 0, len(extras))
		for extra := range extras {
			names = append(names, extra)
		}
		sort.Strings(names)

		parts := make([]string, 0, len(names))
		for _, extra := range names {
			parts = append(parts, fmt.Sprintf("%s x%d", extra, extras[extra]))
		}
		fmt.Fprintf(&b, "- %s: %s\n", product, strings.Join(parts, ", "))
	}

	fmt.Fprintf(&b, "Total: %s", order.TotalAmount.StringFixed(2))
	if order.Comment != "" {
		fmt.Fprintf(&b, "\nNote: %s", order.Comment)
	}
	return b.String()
}
