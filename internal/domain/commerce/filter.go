package commerce

import (
	"time"

	"github.com/shopmetrics/insights/internal/types"
)

// FilterByDay restricts the relation to lines purchased between start and end,
// inclusive on both ends at day granularity. Input order is preserved. Lines
// with a null purchase timestamp never satisfy a day-range predicate and are
// excluded. An inverted range yields an empty relation rather than an error; the
// UI feeding these bounds may transiently present an inverted pair mid-edit.
func (r FactRelation) FilterByDay(start, end time.Time) FactRelation {
	startDay := types.TruncateToDay(start)
	endDay := types.TruncateToDay(end)

	filtered := make(FactRelation, 0, len(r))
	if startDay.After(endDay) {
		return filtered
	}

	for _, line := range r {
		if line.PurchasedAt == nil {
			continue
		}
		day := types.TruncateToDay(*line.PurchasedAt)
		if day.Before(startDay) || day.After(endDay) {
			continue
		}
		filtered = append(filtered, line)
	}
	return filtered
}
