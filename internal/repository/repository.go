// Package repository defines the persistence contracts of the order book and the catalog.
//
// Both documents are loaded in full before a mutation and written back in full
// after it; no backend offers partial access.
package repository

import (
	"context"
	"sync"

	"github.com/mamadbah2/preorder/internal/domain/models"
)

// OrderStore loads and persists the mapping of date to order collection.
type OrderStore interface {
	LoadOrders(ctx context.Context) (models.OrderBook, error)
	SaveOrders(ctx context.Context, book models.OrderBook) error
}

// FormStore loads and persists the catalog document.
type FormStore interface {
	LoadForms(ctx context.Context) (models.FormBook, error)
	SaveForms(ctx context.Context, book models.FormBook) error
}

// Store is a backend holding both documents.
type Store interface {
	OrderStore
	FormStore
}

// Gate serializes load-mutate-persist cycles of every service sharing a Store.
type Gate struct {
	sync.Mutex
}
