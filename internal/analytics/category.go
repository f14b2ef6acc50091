package analytics

import (
	"fmt"
	"sort"

	"spendlens/internal/core"
)

// CategoryBreakdown groups records by category display name. Two distinct
// categories sharing a name collapse into one bucket; the color and icon
// of the bucket come from the category with the lowest id so the result
// does not depend on input order.
//
// A record whose category is not in categories fails the whole breakdown
// with ErrUnresolvedReference. Output is sorted by amount descending, then
// by name.
func CategoryBreakdown(records []core.ExpenseRecord, categories []core.Category) ([]CategoryAggregate, error) {
	byID := make(map[string]core.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	type bucket struct {
		agg     CategoryAggregate
		ownerID string
	}
	buckets := make(map[string]*bucket)
	for _, r := range records {
		cat, ok := byID[r.CategoryID]
		if !ok {
			return nil, fmt.Errorf("%w: record %q references category %q", ErrUnresolvedReference, r.ID, r.CategoryID)
		}
		b, ok := buckets[cat.Name]
		if !ok {
			b = &bucket{agg: CategoryAggregate{Name: cat.Name, Color: cat.Color, Icon: cat.Icon}, ownerID: cat.ID}
			buckets[cat.Name] = b
		} else if cat.ID < b.ownerID {
			b.agg.Color, b.agg.Icon, b.ownerID = cat.Color, cat.Icon, cat.ID
		}
		b.agg.Amount = b.agg.Amount.Add(r.Amount)
		b.agg.Count++
	}

	out := make([]CategoryAggregate, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, b.agg)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount.Cents != out[j].Amount.Cents {
			return out[i].Amount.Cents > out[j].Amount.Cents
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}
