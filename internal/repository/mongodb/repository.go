package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mamadbah2/preorder/internal/domain/models"
)

const (
	collName    = "documents"
	ordersDocID = "orders"
	formsDocID  = "forms"
)

// Each document is replaced in a single write, so a failed save leaves the
// previous version intact. Dates live in arrays because form names may
// contain characters that are awkward as field names.
type ordersDocument struct {
	ID        string           `bson:"_id"`
	Dates     []dateOrdersItem `bson:"dates"`
	UpdatedAt time.Time        `bson:"updated_at"`
}

type dateOrdersItem struct {
	Date       string            `bson:"date"`
	Collection models.DateOrders `bson:"collection"`
}

type formsDocument struct {
	ID        string      `bson:"_id"`
	Generic   models.Form `bson:"generic"`
	Forms     []namedForm `bson:"forms"`
	UpdatedAt time.Time   `bson:"updated_at"`
}

type namedForm struct {
	Name string      `bson:"name"`
	Form models.Form `bson:"form"`
}

// MongoDBRepository stores the order book and the catalog as two MongoDB documents.
type MongoDBRepository struct {
	client *mongo.Client
	dbName string
	logger *zap.Logger
}

// NewMongoDBRepository creates a new MongoDB repository.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string, logger *zap.Logger) (*MongoDBRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	clientOptions := options.Client().ApplyURI(uri).SetRegistry(newRegistry())
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{
		client: client,
		dbName: dbName,
		logger: logger,
	}, nil
}

func (r *MongoDBRepository) collection() *mongo.Collection {
	return r.client.Database(r.dbName).Collection(collName)
}

// LoadOrders fetches the order book; a missing document is an empty book.
func (r *MongoDBRepository) LoadOrders(ctx context.Context) (models.OrderBook, error) {
	var doc ordersDocument
	err := r.collection().FindOne(ctx, bson.M{"_id": ordersDocID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.OrderBook{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}
	return orderBookFromDocument(doc), nil
}

// SaveOrders replaces the order book document.
func (r *MongoDBRepository) SaveOrders(ctx context.Context, book models.OrderBook) error {
	doc := orderBookToDocument(book)
	doc.UpdatedAt = time.Now().UTC()

	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection().ReplaceOne(ctx, bson.M{"_id": ordersDocID}, doc, opts); err != nil {
		return fmt.Errorf("failed to save orders: %w", err)
	}
	r.logger.Debug("order book saved", zap.Int("dates", len(book)))
	return nil
}

// LoadForms fetches the catalog; a missing document is an empty catalog.
func (r *MongoDBRepository) LoadForms(ctx context.Context) (models.FormBook, error) {
	var doc formsDocument
	err := r.collection().FindOne(ctx, bson.M{"_id": formsDocID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.NewFormBook(), nil
	}
	if err != nil {
		return models.FormBook{}, fmt.Errorf("failed to load forms: %w", err)
	}
	return formBookFromDocument(doc), nil
}

// SaveForms replaces the catalog document.
func (r *MongoDBRepository) SaveForms(ctx context.Context, book models.FormBook) error {
	doc := formBookToDocument(book)
	doc.UpdatedAt = time.Now().UTC()

	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection().ReplaceOne(ctx, bson.M{"_id": formsDocID}, doc, opts); err != nil {
		return fmt.Errorf("failed to save forms: %w", err)
	}
	r.logger.Debug("catalog saved", zap.Int("forms", len(book.Forms)))
	return nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func orderBookToDocument(book models.OrderBook) ordersDocument {
	doc := ordersDocument{ID: ordersDocID, Dates: make([]dateOrdersItem, 0, len(book))}
	for date, col := range book {
		if col == nil {
			col = models.NewDateOrders()
		}
		doc.Dates = append(doc.Dates, dateOrdersItem{Date: date, Collection: *col})
	}
	return doc
}

func orderBookFromDocument(doc ordersDocument) models.OrderBook {
	book := make(models.OrderBook, len(doc.Dates))
	for _, item := range doc.Dates {
		col := item.Collection
		if col.Orders == nil {
			col.Orders = []models.Order{}
		}
		if col.Products == nil {
			col.Products = models.Aggregate{}
		}
		book[item.Date] = &col
	}
	return book
}

func formBookToDocument(book models.FormBook) formsDocument {
	doc := formsDocument{ID: formsDocID, Generic: book.Generic, Forms: make([]namedForm, 0, len(book.Forms))}
	for _, name := range book.Dates() {
		if book.Forms[name] == nil {
			continue
		}
		form := *book.Forms[name]
		// Mongo always holds the structured shape.
		form.Legacy = false
		doc.Forms = append(doc.Forms, namedForm{Name: name, Form: form})
	}
	doc.Generic.Legacy = false
	return doc
}

func formBookFromDocument(doc formsDocument) models.FormBook {
	book := models.NewFormBook()
	book.Generic = doc.Generic
	for _, item := range doc.Forms {
		form := item.Form
		book.Forms[item.Name] = &form
	}
	return book
}
