package dto

import (
	"sort"
	"time"

	"github.com/samber/lo"
	"github.com/shopmetrics/insights/internal/domain/commerce"
	ierr "github.com/shopmetrics/insights/internal/errors"
	"github.com/shopmetrics/insights/internal/types"
	"github.com/shopmetrics/insights/internal/validator"
	"github.com/shopspring/decimal"
)

// UnknownCategoryLabel is how the missing-category bucket is surfaced. The
// domain keeps the empty string so grouping stays exact; only the wire format
// gets a readable label.
const UnknownCategoryLabel = "unknown"

// DefaultTopN is the ranking slice size when the caller does not ask for one,
// matching the five-bar best/worst panels of the reference dashboard.
const DefaultTopN = 5

// GetDashboardRequest carries the day-granular filter window. Both dates are
// inclusive. When both are omitted the window defaults to the full dataset span.
type GetDashboardRequest struct {
	StartDate string `form:"start_date" json:"start_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `form:"end_date" json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`

	// TopN bounds the best/worst category slices
	TopN int `form:"top_n" json:"top_n,omitempty" validate:"omitempty,gte=1"`
}

// Validate checks date formats and sets defaults. An inverted window is NOT an
// error here; the filter contract resolves it to an empty relation.
func (r *GetDashboardRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}

	if (r.StartDate == "") != (r.EndDate == "") {
		return ierr.NewError("both start_date and end_date must be provided if one is specified").
			WithHint("Provide both start_date and end_date, or omit both for the full dataset span").
			Mark(ierr.ErrValidation)
	}

	if r.TopN == 0 {
		r.TopN = DefaultTopN
	}
	return nil
}

// Window returns the parsed filter bounds. ok is false when the request left the
// window unset and the caller should fall back to the dataset span.
func (r *GetDashboardRequest) Window() (start, end time.Time, ok bool) {
	if r.StartDate == "" || r.EndDate == "" {
		return start, end, false
	}
	start, _ = time.Parse(types.DateLayout, r.StartDate)
	end, _ = time.Parse(types.DateLayout, r.EndDate)
	return start, end, true
}

// DailyOrderResponse is one calendar day of the time series.
type DailyOrderResponse struct {
	Date       string          `json:"date"`
	OrderCount int             `json:"order_count"`
	Revenue    decimal.Decimal `json:"revenue"`
}

// DailyOrdersResponse is the daily series plus its scalar totals.
type DailyOrdersResponse struct {
	Items        []DailyOrderResponse `json:"items"`
	TotalOrders  int                  `json:"total_orders"`
	TotalRevenue decimal.Decimal      `json:"total_revenue"`
}

func NewDailyOrdersResponse(metrics []*commerce.DailyMetric) DailyOrdersResponse {
	resp := DailyOrdersResponse{
		Items: lo.Map(metrics, func(m *commerce.DailyMetric, _ int) DailyOrderResponse {
			return DailyOrderResponse{
				Date:       m.Date.Format(types.DateLayout),
				OrderCount: m.OrderCount,
				Revenue:    m.Revenue,
			}
		}),
		TotalRevenue: decimal.Zero,
	}
	for _, m := range metrics {
		resp.TotalOrders += m.OrderCount
		resp.TotalRevenue = resp.TotalRevenue.Add(m.Revenue)
	}
	return resp
}

// CategoryResponse is one bucket of the category ranking.
type CategoryResponse struct {
	Category       string `json:"category"`
	OrderLineCount int    `json:"order_line_count"`
}

// CategoryRankingResponse carries the full descending ranking plus the
// best/worst head and tail slices. Both slices come from the one ranking, so
// with fewer than 2×TopN distinct categories they overlap.
type CategoryRankingResponse struct {
	Items []CategoryResponse `json:"items"`
	Best  []CategoryResponse `json:"best"`
	Worst []CategoryResponse `json:"worst"`
}

func NewCategoryRankingResponse(ranking []*commerce.CategoryMetric, topN int) CategoryRankingResponse {
	items := lo.Map(ranking, func(m *commerce.CategoryMetric, _ int) CategoryResponse {
		category := m.Category
		if category == "" {
			category = UnknownCategoryLabel
		}
		return CategoryResponse{Category: category, OrderLineCount: m.OrderLineCount}
	})

	n := topN
	if n > len(items) {
		n = len(items)
	}
	return CategoryRankingResponse{
		Items: items,
		Best:  items[:n],
		Worst: items[len(items)-n:],
	}
}

// StateResponse is one region of the customer distribution.
type StateResponse struct {
	State         string `json:"state"`
	CustomerCount int    `json:"customer_count"`
}

// StateDistributionResponse lists regions descending by customer count. The
// ordering is applied here for presentation; the engine itself guarantees none.
type StateDistributionResponse struct {
	Items []StateResponse `json:"items"`
}

func NewStateDistributionResponse(metrics []*commerce.StateMetric) StateDistributionResponse {
	items := lo.Map(metrics, func(m *commerce.StateMetric, _ int) StateResponse {
		return StateResponse{State: m.State, CustomerCount: m.CustomerCount}
	})
	// stable so equal counts keep the engine's deterministic first-seen order
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CustomerCount > items[j].CustomerCount
	})
	return StateDistributionResponse{Items: items}
}

// RfmRecordResponse is one customer's Recency/Frequency/Monetary rollup.
type RfmRecordResponse struct {
	CustomerID     string          `json:"customer_id"`
	LastPurchaseAt *time.Time      `json:"last_purchase_timestamp,omitempty"`
	Frequency      int             `json:"frequency"`
	Monetary       decimal.Decimal `json:"monetary"`
	RecencyDays    *int            `json:"recency_days,omitempty"`
}

// RfmResponse carries the per-customer records plus the three column means.
// Means are arithmetic; the recency mean skips customers with no recency value.
type RfmResponse struct {
	Items            []RfmRecordResponse `json:"items"`
	AverageRecency   decimal.Decimal     `json:"average_recency_days"`
	AverageFrequency decimal.Decimal     `json:"average_frequency"`
	AverageMonetary  decimal.Decimal     `json:"average_monetary"`
}

func NewRfmResponse(records []*commerce.RfmRecord) RfmResponse {
	resp := RfmResponse{
		Items: lo.Map(records, func(r *commerce.RfmRecord, _ int) RfmRecordResponse {
			return RfmRecordResponse{
				CustomerID:     r.CustomerID,
				LastPurchaseAt: r.LastPurchaseAt,
				Frequency:      r.Frequency,
				Monetary:       r.Monetary,
				RecencyDays:    r.RecencyDays,
			}
		}),
		AverageRecency:   decimal.Zero,
		AverageFrequency: decimal.Zero,
		AverageMonetary:  decimal.Zero,
	}
	if len(records) == 0 {
		return resp
	}

	recencySum, recencyCount := decimal.Zero, 0
	frequencySum := decimal.Zero
	monetarySum := decimal.Zero
	for _, r := range records {
		if r.RecencyDays != nil {
			recencySum = recencySum.Add(decimal.NewFromInt(int64(*r.RecencyDays)))
			recencyCount++
		}
		frequencySum = frequencySum.Add(decimal.NewFromInt(int64(r.Frequency)))
		monetarySum = monetarySum.Add(r.Monetary)
	}

	total := decimal.NewFromInt(int64(len(records)))
	if recencyCount > 0 {
		resp.AverageRecency = recencySum.Div(decimal.NewFromInt(int64(recencyCount)))
	}
	resp.AverageFrequency = frequencySum.Div(total)
	resp.AverageMonetary = monetarySum.Div(total)
	return resp
}

// DatasetSpanResponse bounds a date picker on the caller's side.
type DatasetSpanResponse struct {
	MinDate string `json:"min_date"`
	MaxDate string `json:"max_date"`
}

// DashboardResponse is the full Presentation Adapter feed: the four derived
// relations plus the scalar totals and means, for one filter window.
type DashboardResponse struct {
	StartDate   string                    `json:"start_date"`
	EndDate     string                    `json:"end_date"`
	DatasetSpan DatasetSpanResponse       `json:"dataset_span"`
	DailyOrders DailyOrdersResponse       `json:"daily_orders"`
	Categories  CategoryRankingResponse   `json:"categories"`
	States      StateDistributionResponse `json:"states"`
	Rfm         RfmResponse               `json:"rfm"`
}
