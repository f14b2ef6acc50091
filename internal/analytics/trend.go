package analytics

import (
	"sort"

	"spendlens/internal/core"
)

// DailyTrend sums records per calendar date. Only dates with at least one
// record appear; the result is in ascending date order.
func DailyTrend(records []core.ExpenseRecord) []DailyAggregate {
	buckets := bucketize(records, func(r core.ExpenseRecord) string {
		return r.Date.String()
	})

	out := make([]DailyAggregate, 0, len(buckets))
	for date, t := range buckets {
		out = append(out, DailyAggregate{Date: date, Amount: t.amount, Count: t.count})
	}
	// ISO dates sort lexicographically in chronological order.
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}
