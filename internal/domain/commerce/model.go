package commerce

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderLine represents a single line of the order-line fact table. An order with
// multiple products appears as multiple lines sharing the same OrderID.
type OrderLine struct {
	// OrderID is the identifier of the order this line belongs to (not unique per line)
	OrderID string `json:"order_id"`

	// CustomerID is the identifier of the purchasing customer
	CustomerID string `json:"customer_id"`

	// CustomerState is the customer's two-letter region code
	CustomerState string `json:"customer_state"`

	// ProductCategory is the english product category name; empty when the source
	// value is missing
	ProductCategory string `json:"product_category_name_english"`

	// PurchasedAt is the order purchase timestamp; nil when the source value did
	// not parse
	PurchasedAt *time.Time `json:"order_purchase_timestamp"`

	// Price is the line price
	Price decimal.Decimal `json:"price"`
}

// Order represents a row of the orders table. Only PurchasedAt feeds the core
// aggregations; the delivery timestamps are loaded alongside.
type Order struct {
	// OrderID is the unique identifier of the order
	OrderID string `json:"order_id"`

	// PurchasedAt is the order purchase timestamp; nil when the source value did
	// not parse
	PurchasedAt *time.Time `json:"order_purchase_timestamp"`

	// DeliveredCarrierAt is when the order was handed to the carrier
	DeliveredCarrierAt *time.Time `json:"order_delivered_carrier_date"`

	// DeliveredCustomerAt is when the order reached the customer
	DeliveredCustomerAt *time.Time `json:"order_delivered_customer_date"`

	// EstimatedDeliveryAt is the delivery estimate given at purchase time
	EstimatedDeliveryAt *time.Time `json:"order_estimated_delivery_date"`
}

// FactRelation is the order-line fact table, the primary input to all
// aggregations. Relations are immutable snapshots; transforms return new slices
// and never mutate their input.
type FactRelation []*OrderLine

// OrdersRelation is the order-level table, used to anchor the recency reference.
type OrdersRelation []*Order

// Dataset bundles the two loaded relations.
type Dataset struct {
	Facts  FactRelation
	Orders OrdersRelation
}

// DailyMetric is one calendar day of order volume and revenue. Days with no
// activity are absent, not zero-filled.
type DailyMetric struct {
	// Date is the calendar day in UTC (midnight-truncated)
	Date time.Time `json:"date"`

	// OrderCount is the number of distinct order identifiers purchased that day
	OrderCount int `json:"order_count"`

	// Revenue is the sum of line prices for that day
	Revenue decimal.Decimal `json:"revenue"`
}

// CategoryMetric is the line volume of one product category.
type CategoryMetric struct {
	// Category is the product category; empty for the missing-category bucket
	Category string `json:"category"`

	// OrderLineCount is the number of fact lines in the category
	OrderLineCount int `json:"order_line_count"`
}

// StateMetric is the distinct-customer count of one region.
type StateMetric struct {
	// State is the two-letter region code
	State string `json:"state"`

	// CustomerCount is the number of distinct customers with at least one line
	// from the state
	CustomerCount int `json:"customer_count"`
}

// RfmRecord is the Recency/Frequency/Monetary rollup of one customer.
type RfmRecord struct {
	// CustomerID is the unique customer identifier
	CustomerID string `json:"customer_id"`

	// LastPurchaseAt is the customer's most recent non-null purchase timestamp
	// within the window; nil when every line of the customer has a null timestamp
	LastPurchaseAt *time.Time `json:"last_purchase_timestamp"`

	// Frequency is the number of distinct orders of the customer in the window
	Frequency int `json:"frequency"`

	// Monetary is the sum of line prices of the customer in the window
	Monetary decimal.Decimal `json:"monetary"`

	// RecencyDays is the floored whole-day distance from LastPurchaseAt to the
	// global most-recent purchase of the unfiltered orders table. Nil when
	// LastPurchaseAt is nil. Negative values indicate a line newer than the
	// orders-table maximum and are surfaced as-is.
	RecencyDays *int `json:"recency_days"`
}

// MaxPurchaseAt returns the most recent non-null purchase timestamp in the
// relation. ok is false when the relation holds no parseable timestamp.
func (r OrdersRelation) MaxPurchaseAt() (max time.Time, ok bool) {
	for _, o := range r {
		if o.PurchasedAt == nil {
			continue
		}
		if !ok || o.PurchasedAt.After(max) {
			max = *o.PurchasedAt
			ok = true
		}
	}
	return max, ok
}

// Span returns the earliest and latest non-null purchase timestamps of the fact
// relation. ok is false when no line has a parseable timestamp.
func (r FactRelation) Span() (min, max time.Time, ok bool) {
	for _, l := range r {
		if l.PurchasedAt == nil {
			continue
		}
		if !ok {
			min, max, ok = *l.PurchasedAt, *l.PurchasedAt, true
			continue
		}
		if l.PurchasedAt.Before(min) {
			min = *l.PurchasedAt
		}
		if l.PurchasedAt.After(max) {
			max = *l.PurchasedAt
		}
	}
	return min, max, ok
}
