package testutil

import (
	"context"
	"time"

	"github.com/shopmetrics/insights/internal/domain/commerce"
	"github.com/shopmetrics/insights/internal/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const timestampLayout = "2006-01-02 15:04:05"

// NewTestLogger returns a no-op logger for tests
func NewTestLogger() *logger.Logger {
	return &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// MustTime parses "2006-01-02 15:04:05" in UTC, panicking on bad fixtures.
func MustTime(value string) time.Time {
	t, err := time.Parse(timestampLayout, value)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

// DatasetBuilder assembles in-memory fact and orders relations for tests
// without CSV fixtures.
type DatasetBuilder struct {
	facts  commerce.FactRelation
	orders commerce.OrdersRelation
}

func NewDatasetBuilder() *DatasetBuilder {
	return &DatasetBuilder{}
}

// WithLine appends a fact line. An empty purchasedAt models an unparseable
// source timestamp (null after load).
func (b *DatasetBuilder) WithLine(orderID, customerID, state, category, purchasedAt string, price float64) *DatasetBuilder {
	line := &commerce.OrderLine{
		OrderID:         orderID,
		CustomerID:      customerID,
		CustomerState:   state,
		ProductCategory: category,
		Price:           decimal.NewFromFloat(price),
	}
	if purchasedAt != "" {
		t := MustTime(purchasedAt)
		line.PurchasedAt = &t
	}
	b.facts = append(b.facts, line)
	return b
}

// WithOrder appends an orders-table row. An empty purchasedAt models an
// unparseable source timestamp.
func (b *DatasetBuilder) WithOrder(orderID, purchasedAt string) *DatasetBuilder {
	order := &commerce.Order{OrderID: orderID}
	if purchasedAt != "" {
		t := MustTime(purchasedAt)
		order.PurchasedAt = &t
	}
	b.orders = append(b.orders, order)
	return b
}

func (b *DatasetBuilder) Build() *commerce.Dataset {
	return &commerce.Dataset{
		Facts:  b.facts,
		Orders: b.orders,
	}
}

// InMemoryCommerceStore serves a pre-built dataset through the Repository
// interface so services can be wired without touching the filesystem.
type InMemoryCommerceStore struct {
	dataset *commerce.Dataset
	loadErr error
}

func NewInMemoryCommerceStore(dataset *commerce.Dataset) *InMemoryCommerceStore {
	return &InMemoryCommerceStore{dataset: dataset}
}

// SetLoadError makes the next Load fail, for exercising startup error paths.
func (s *InMemoryCommerceStore) SetLoadError(err error) {
	s.loadErr = err
}

func (s *InMemoryCommerceStore) Load(ctx context.Context) (*commerce.Dataset, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.dataset, nil
}
