package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/mamadbah2/preorder/internal/domain/models"
)

// Store keeps the order book and the catalog in two JSON files.
type Store struct {
	ordersPath string
	formsPath  string
	logger     *zap.Logger
}

// New builds a file store and creates missing files with empty documents.
func New(ordersPath, formsPath string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{ordersPath: ordersPath, formsPath: formsPath, logger: logger}

	if err := s.initialize(ordersPath, models.OrderBook{}); err != nil {
		return nil, err
	}
	if err := s.initialize(formsPath, models.NewFormBook()); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) initialize(path string, empty any) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create data dir for %s: %w", path, err)
	}
	s.logger.Info("initializing data file", zap.String("path", path))
	return writeJSON(path, empty)
}

// LoadOrders reads the order book file.
func (s *Store) LoadOrders(ctx context.Context) (models.OrderBook, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	book := models.OrderBook{}
	if err := readJSON(s.ordersPath, &book); err != nil {
		return nil, err
	}
	for date, col := range book {
		if col == nil {
			book[date] = models.NewDateOrders()
			continue
		}
		if col.Orders == nil {
			col.Orders = []models.Order{}
		}
		if col.Products == nil {
			col.Products = models.Aggregate{}
		}
	}
	return book, nil
}

// SaveOrders replaces the order book file.
func (s *Store) SaveOrders(ctx context.Context, book models.OrderBook) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return writeJSON(s.ordersPath, book)
}

// LoadForms reads the catalog file.
func (s *Store) LoadForms(ctx context.Context) (models.FormBook, error) {
	if err := ctx.Err(); err != nil {
		return models.FormBook{}, err
	}
	book := models.NewFormBook()
	if err := readJSON(s.formsPath, &book); err != nil {
		return models.FormBook{}, err
	}
	return book, nil
}

// SaveForms replaces the catalog file.
func (s *Store) SaveForms(ctx context.Context, book models.FormBook) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return writeJSON(s.formsPath, book)
}

func readJSON(path string, dst any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// writeJSON writes to a temporary sibling and renames it over path, so a
// failed write never leaves a truncated document behind.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", path, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
