package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mamadbah2/preorder/internal/domain/models"
)

// Store keeps both documents in process memory. Every load and save copies
// through the JSON encoding, so callers never share state with the store.
type Store struct {
	mu     sync.Mutex
	orders []byte
	forms  []byte

	// FailSaves makes every save fail; tests use it to simulate a broken backend.
	FailSaves error
}

// New returns an empty store.
func New() *Store {
	s := &Store{}
	s.orders, _ = json.Marshal(models.OrderBook{})
	s.forms, _ = json.Marshal(models.NewFormBook())
	return s
}

// LoadOrders returns a copy of the stored order book.
func (s *Store) LoadOrders(ctx context.Context) (models.OrderBook, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	book := models.OrderBook{}
	if err := json.Unmarshal(s.orders, &book); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	return book, nil
}

// SaveOrders stores a copy of the order book.
func (s *Store) SaveOrders(ctx context.Context, book models.OrderBook) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailSaves != nil {
		return s.FailSaves
	}
	data, err := json.Marshal(book)
	if err != nil {
		return fmt.Errorf("encode orders: %w", err)
	}
	s.orders = data
	return nil
}

// LoadForms returns a copy of the stored catalog.
func (s *Store) LoadForms(ctx context.Context) (models.FormBook, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	book := models.NewFormBook()
	if err := json.Unmarshal(s.forms, &book); err != nil {
		return models.FormBook{}, fmt.Errorf("decode forms: %w", err)
	}
	return book, nil
}

// SaveForms stores a copy of the catalog.
func (s *Store) SaveForms(ctx context.Context, book models.FormBook) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailSaves != nil {
		return s.FailSaves
	}
	data, err := json.Marshal(book)
	if err != nil {
		return fmt.Errorf("encode forms: %w", err)
	}
	s.forms = data
	return nil
}
