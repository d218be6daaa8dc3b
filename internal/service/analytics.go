package service

import (
	"sort"
	"time"

	"github.com/shopmetrics/insights/internal/domain/commerce"
	ierr "github.com/shopmetrics/insights/internal/errors"
	"github.com/shopmetrics/insights/internal/types"
	"github.com/shopspring/decimal"
)

// AnalyticsService computes the four derived relations over the fact table.
// Every method is a pure function of its arguments: relations are never mutated
// and no state is carried between calls, so a filter change simply recomputes
// everything from scratch.
type AnalyticsService interface {
	// DailyOrders buckets lines by calendar day and emits one metric per day
	// present, ascending by date. OrderCount counts distinct order IDs, not lines.
	DailyOrders(facts commerce.FactRelation) []*commerce.DailyMetric

	// CategoryRanking counts lines per product category, descending by count.
	// The missing-category bucket participates. Ties keep first-observed order.
	// "Best N" and "worst N" are head and tail slices of this one ranking.
	CategoryRanking(facts commerce.FactRelation) []*commerce.CategoryMetric

	// StateDistribution counts distinct customers per region, emitted in
	// first-observed state order. Display ordering is the caller's concern.
	StateDistribution(facts commerce.FactRelation) []*commerce.StateMetric

	// RFM computes the per-customer Recency/Frequency/Monetary rollup of the
	// filtered facts. Recency is anchored on the most recent purchase of the
	// UNFILTERED orders relation; an empty orders relation is a fatal
	// precondition failure since no recency reference exists.
	RFM(facts commerce.FactRelation, orders commerce.OrdersRelation) ([]*commerce.RfmRecord, error)
}

type analyticsService struct {
	ServiceParams
}

func NewAnalyticsService(params ServiceParams) AnalyticsService {
	return &analyticsService{ServiceParams: params}
}

func (s *analyticsService) DailyOrders(facts commerce.FactRelation) []*commerce.DailyMetric {
	type bucket struct {
		orders  map[string]struct{}
		revenue decimal.Decimal
	}
	buckets := make(map[time.Time]*bucket)

	for _, line := range facts {
		if line.PurchasedAt == nil {
			continue
		}
		day := types.TruncateToDay(*line.PurchasedAt)
		b, ok := buckets[day]
		if !ok {
			b = &bucket{orders: make(map[string]struct{})}
			buckets[day] = b
		}
		b.orders[line.OrderID] = struct{}{}
		b.revenue = b.revenue.Add(line.Price)
	}

	metrics := make([]*commerce.DailyMetric, 0, len(buckets))
	for day, b := range buckets {
		metrics = append(metrics, &commerce.DailyMetric{
			Date:       day,
			OrderCount: len(b.orders),
			Revenue:    b.revenue,
		})
	}
	sort.Slice(metrics, func(i, j int) bool {
		return metrics[i].Date.Before(metrics[j].Date)
	})
	return metrics
}

func (s *analyticsService) CategoryRanking(facts commerce.FactRelation) []*commerce.CategoryMetric {
	counts := make(map[string]int)
	// first-observed order of distinct categories, the tie-break for the sort
	order := make([]string, 0)

	for _, line := range facts {
		if _, seen := counts[line.ProductCategory]; !seen {
			order = append(order, line.ProductCategory)
		}
		counts[line.ProductCategory]++
	}

	ranking := make([]*commerce.CategoryMetric, 0, len(order))
	for _, category := range order {
		ranking = append(ranking, &commerce.CategoryMetric{
			Category:       category,
			OrderLineCount: counts[category],
		})
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].OrderLineCount > ranking[j].OrderLineCount
	})
	return ranking
}

func (s *analyticsService) StateDistribution(facts commerce.FactRelation) []*commerce.StateMetric {
	customers := make(map[string]map[string]struct{})
	order := make([]string, 0)

	for _, line := range facts {
		set, ok := customers[line.CustomerState]
		if !ok {
			set = make(map[string]struct{})
			customers[line.CustomerState] = set
			order = append(order, line.CustomerState)
		}
		set[line.CustomerID] = struct{}{}
	}

	metrics := make([]*commerce.StateMetric, 0, len(order))
	for _, state := range order {
		metrics = append(metrics, &commerce.StateMetric{
			State:         state,
			CustomerCount: len(customers[state]),
		})
	}
	return metrics
}

func (s *analyticsService) RFM(facts commerce.FactRelation, orders commerce.OrdersRelation) ([]*commerce.RfmRecord, error) {
	if len(orders) == 0 {
		return nil, ierr.NewError("orders relation is empty").
			WithHint("RFM recency requires at least one order to anchor the reference date").
			Mark(ierr.ErrInvalidOperation)
	}

	// Phase 1: the recency reference is the newest purchase of the whole orders
	// table, deliberately independent of the active filter window.
	reference, ok := orders.MaxPurchaseAt()
	if !ok {
		return nil, ierr.NewError("orders relation has no parseable purchase timestamp").
			WithHint("RFM recency requires at least one order to anchor the reference date").
			Mark(ierr.ErrInvalidOperation)
	}

	// Phase 2: per-customer rollup over the filtered facts.
	type rollup struct {
		last     *time.Time
		orders   map[string]struct{}
		monetary decimal.Decimal
	}
	rollups := make(map[string]*rollup)
	order := make([]string, 0)

	for _, line := range facts {
		r, seen := rollups[line.CustomerID]
		if !seen {
			r = &rollup{orders: make(map[string]struct{})}
			rollups[line.CustomerID] = r
			order = append(order, line.CustomerID)
		}
		r.orders[line.OrderID] = struct{}{}
		r.monetary = r.monetary.Add(line.Price)
		if line.PurchasedAt != nil && (r.last == nil || line.PurchasedAt.After(*r.last)) {
			t := *line.PurchasedAt
			r.last = &t
		}
	}

	records := make([]*commerce.RfmRecord, 0, len(order))
	for _, customerID := range order {
		r := rollups[customerID]
		record := &commerce.RfmRecord{
			CustomerID:     customerID,
			LastPurchaseAt: r.last,
			Frequency:      len(r.orders),
			Monetary:       r.monetary,
		}
		if r.last != nil {
			days := types.DaysBetween(*r.last, reference)
			record.RecencyDays = &days
		}
		records = append(records, record)
	}
	return records, nil
}
