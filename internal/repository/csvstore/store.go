package csvstore

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"os"
	"sort"
	"time"

	"github.com/shopmetrics/insights/internal/config"
	"github.com/shopmetrics/insights/internal/domain/commerce"
	ierr "github.com/shopmetrics/insights/internal/errors"
	"github.com/shopmetrics/insights/internal/logger"
	"github.com/shopspring/decimal"
)

// timestampLayouts are tried in order when parsing timestamp cells. A cell that
// matches none of them becomes a null timestamp on the row; the row itself is
// kept.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

var factColumns = []string{
	"order_id",
	"customer_id",
	"customer_state",
	"product_category_name_english",
	"order_purchase_timestamp",
	"price",
}

var ordersColumns = []string{
	"order_id",
	"order_purchase_timestamp",
	"order_delivered_carrier_date",
	"order_delivered_customer_date",
	"order_estimated_delivery_date",
}

// Store loads the fact and orders CSV files into in-memory relations.
type Store struct {
	cfg    *config.Configuration
	logger *logger.Logger
}

func NewStore(cfg *config.Configuration, logger *logger.Logger) commerce.Repository {
	return &Store{cfg: cfg, logger: logger}
}

// Load reads both datasets. The fact relation is returned sorted ascending by
// purchase timestamp with null timestamps last; the sort is stable so repeated
// loads of the same files produce identical relations.
func (s *Store) Load(ctx context.Context) (*commerce.Dataset, error) {
	facts, err := s.loadFacts(s.cfg.Datasets.FactPath)
	if err != nil {
		return nil, err
	}

	orders, err := s.loadOrders(s.cfg.Datasets.OrdersPath)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(facts, func(i, j int) bool {
		a, b := facts[i].PurchasedAt, facts[j].PurchasedAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})

	s.logger.Infow("datasets loaded",
		"fact_lines", len(facts),
		"orders", len(orders),
		"fact_path", s.cfg.Datasets.FactPath,
		"orders_path", s.cfg.Datasets.OrdersPath,
	)

	return &commerce.Dataset{Facts: facts, Orders: orders}, nil
}

func (s *Store) loadFacts(path string) (commerce.FactRelation, error) {
	rows, cols, err := s.readCSV(path, factColumns)
	if err != nil {
		return nil, err
	}

	facts := make(commerce.FactRelation, 0, len(rows))
	for i, row := range rows {
		line := &commerce.OrderLine{
			OrderID:         row[cols["order_id"]],
			CustomerID:      row[cols["customer_id"]],
			CustomerState:   row[cols["customer_state"]],
			ProductCategory: row[cols["product_category_name_english"]],
			PurchasedAt:     s.parseTimestamp(row[cols["order_purchase_timestamp"]]),
			Price:           s.parsePrice(row[cols["price"]], path, i),
		}
		facts = append(facts, line)
	}
	return facts, nil
}

func (s *Store) loadOrders(path string) (commerce.OrdersRelation, error) {
	rows, cols, err := s.readCSV(path, ordersColumns)
	if err != nil {
		return nil, err
	}

	orders := make(commerce.OrdersRelation, 0, len(rows))
	for _, row := range rows {
		orders = append(orders, &commerce.Order{
			OrderID:             row[cols["order_id"]],
			PurchasedAt:         s.parseTimestamp(row[cols["order_purchase_timestamp"]]),
			DeliveredCarrierAt:  s.parseTimestamp(row[cols["order_delivered_carrier_date"]]),
			DeliveredCustomerAt: s.parseTimestamp(row[cols["order_delivered_customer_date"]]),
			EstimatedDeliveryAt: s.parseTimestamp(row[cols["order_estimated_delivery_date"]]),
		})
	}
	return orders, nil
}

// readCSV reads the whole file and resolves the required column indexes from the
// header. A missing required column is a configuration error, not a row defect.
func (s *Store) readCSV(path string, required []string) ([][]string, map[string]int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, ierr.WithError(err).
			WithHintf("Failed to read dataset file %s", path).
			Mark(ierr.ErrSystem)
	}

	reader := prepareReader(content)

	header, err := reader.Read()
	if err != nil {
		return nil, nil, ierr.WithError(err).
			WithHintf("Failed to read CSV header of %s", path).
			Mark(ierr.ErrSchema)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}

	missing := make([]string, 0)
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, nil, ierr.NewError("dataset is missing required columns").
			WithHintf("Dataset %s does not match the expected schema", path).
			WithReportableDetails(map[string]any{
				"path":            path,
				"missing_columns": missing,
			}).
			Mark(ierr.ErrSchema)
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, ierr.WithError(err).
				WithHintf("Failed to read CSV row of %s", path).
				Mark(ierr.ErrSchema)
		}
		// ReuseRecord is set on the reader; copy before keeping
		row := make([]string, len(record))
		copy(row, record)
		rows = append(rows, row)
	}

	return rows, cols, nil
}

// prepareReader creates a configured CSV reader from the file content
func prepareReader(content []byte) *csv.Reader {
	// Check for and remove BOM if present
	if len(content) >= 3 && content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		content = content[3:]
	}

	reader := csv.NewReader(bytes.NewReader(content))
	reader.LazyQuotes = true       // Allow lazy quotes
	reader.FieldsPerRecord = -1    // Allow variable number of fields
	reader.ReuseRecord = true      // Reuse record memory
	reader.TrimLeadingSpace = true // Trim leading space
	return reader
}

// parseTimestamp coerces a timestamp cell, returning nil on failure. Mirrors the
// row-level tolerance of the error model: the defect is recorded as a null
// value, never raised.
func (s *Store) parseTimestamp(value string) *time.Time {
	if value == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

func (s *Store) parsePrice(value string, path string, row int) decimal.Decimal {
	if value == "" {
		return decimal.Zero
	}
	price, err := decimal.NewFromString(value)
	if err != nil {
		s.logger.Warnw("unparseable price cell, defaulting to zero",
			"path", path, "row", row, "value", value)
		return decimal.Zero
	}
	return price
}
