package commerce

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func ts(value string) *time.Time {
	t, err := time.Parse("2006-01-02 15:04:05", value)
	if err != nil {
		panic(err)
	}
	t = t.UTC()
	return &t
}

func line(orderID string, purchasedAt *time.Time) *OrderLine {
	return &OrderLine{
		OrderID:     orderID,
		CustomerID:  "c-" + orderID,
		Price:       decimal.NewFromInt(10),
		PurchasedAt: purchasedAt,
	}
}

func day(value string) time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return t
}

func TestFilterByDay(t *testing.T) {
	facts := FactRelation{
		line("a", ts("2018-01-01 00:00:00")),
		line("b", ts("2018-01-02 10:30:00")),
		line("c", ts("2018-01-03 23:59:59")),
		line("d", nil),
		line("e", ts("2018-01-04 00:00:01")),
	}

	testCases := []struct {
		name     string
		start    string
		end      string
		expected []string
	}{
		{
			name:     "inclusive_on_both_ends",
			start:    "2018-01-01",
			end:      "2018-01-03",
			expected: []string{"a", "b", "c"},
		},
		{
			name:     "end_boundary_includes_late_timestamp",
			start:    "2018-01-03",
			end:      "2018-01-03",
			expected: []string{"c"},
		},
		{
			name:     "single_day_window",
			start:    "2018-01-02",
			end:      "2018-01-02",
			expected: []string{"b"},
		},
		{
			name:     "inverted_range_yields_empty",
			start:    "2018-01-03",
			end:      "2018-01-01",
			expected: []string{},
		},
		{
			name:     "window_outside_data",
			start:    "2019-01-01",
			end:      "2019-12-31",
			expected: []string{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := facts.FilterByDay(day(tc.start), day(tc.end))
			ids := make([]string, 0, len(got))
			for _, l := range got {
				ids = append(ids, l.OrderID)
			}
			assert.Equal(t, tc.expected, ids)
		})
	}
}

func TestFilterByDayPreservesOrderAndExcludesNulls(t *testing.T) {
	facts := FactRelation{
		line("b", ts("2018-01-02 08:00:00")),
		line("a", ts("2018-01-01 08:00:00")),
		line("x", nil),
		line("c", ts("2018-01-01 09:00:00")),
	}

	got := facts.FilterByDay(day("2018-01-01"), day("2018-01-02"))

	ids := make([]string, 0, len(got))
	for _, l := range got {
		ids = append(ids, l.OrderID)
	}
	// input order preserved, null timestamp excluded
	assert.Equal(t, []string{"b", "a", "c"}, ids)
}

func TestOrdersRelationMaxPurchaseAt(t *testing.T) {
	orders := OrdersRelation{
		{OrderID: "a", PurchasedAt: ts("2018-01-01 00:00:00")},
		{OrderID: "b", PurchasedAt: ts("2018-05-01 12:00:00")},
		{OrderID: "c", PurchasedAt: nil},
	}

	max, ok := orders.MaxPurchaseAt()
	assert.True(t, ok)
	assert.Equal(t, *ts("2018-05-01 12:00:00"), max)

	_, ok = OrdersRelation{{OrderID: "n", PurchasedAt: nil}}.MaxPurchaseAt()
	assert.False(t, ok)

	_, ok = OrdersRelation{}.MaxPurchaseAt()
	assert.False(t, ok)
}

func TestFactRelationSpan(t *testing.T) {
	facts := FactRelation{
		line("b", ts("2018-03-01 08:00:00")),
		line("a", ts("2018-01-01 08:00:00")),
		line("x", nil),
		line("c", ts("2018-06-01 09:00:00")),
	}

	min, max, ok := facts.Span()
	assert.True(t, ok)
	assert.Equal(t, *ts("2018-01-01 08:00:00"), min)
	assert.Equal(t, *ts("2018-06-01 09:00:00"), max)

	_, _, ok = FactRelation{line("x", nil)}.Span()
	assert.False(t, ok)
}
