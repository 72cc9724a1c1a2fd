package analytics

import (
	"sort"
	"time"

	"agency-report-service/internal/domain/entity"
)

// KeyExtractor maps a record to a categorical key
type KeyExtractor func(r entity.Record) string

// Dimension is a named categorical breakdown. Domain lists keys reported even
// when no record maps to them.
type Dimension struct {
	Key    KeyExtractor
	Domain []string
}

// Common dimensions
var (
	ByEntityType = Dimension{
		Key: func(r entity.Record) string { return string(r.EntityType) },
		Domain: []string{
			string(entity.EntityFlight), string(entity.EntityHotel),
			string(entity.EntityVisa), string(entity.EntityTour),
		},
	}
	ByStatus = Dimension{
		Key: func(r entity.Record) string {
			if r.Status == "" {
				return "unknown"
			}
			return r.Status
		},
	}
)

// Totals are the money sums of a record set. Profit is always Revenue-Cost.
type Totals struct {
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
	Cost    float64 `json:"cost"`
	Profit  float64 `json:"profit"`
}

// AggregateResult is the fold of a record set
type AggregateResult struct {
	Totals        Totals             `json:"totals"`
	Distributions map[string][]Share `json:"distributions"`
	ByHour        map[int]int        `json:"byHour"`
	ByWeekday     map[int]int        `json:"byWeekday"`
	ByMonth       map[int]int        `json:"byMonth"`
	Monthly       []MonthlyPoint     `json:"monthly"`
	Undated       int                `json:"undated"`
}

// Aggregate folds records into totals, one distribution per dimension, time
// buckets and a monthly series. Records without createdAt are counted in
// totals and distributions only. The result does not depend on input order.
func Aggregate(records []entity.Record, dims map[string]Dimension, loc *time.Location) AggregateResult {
	sorted := canonicalOrder(records)

	dists := make(map[string]*Distribution, len(dims))
	for name, dim := range dims {
		dists[name] = NewDistribution(dim.Domain...)
	}
	buckets := NewTimeBuckets(loc)
	series := NewMonthlySeries(loc)

	var res AggregateResult
	for _, r := range sorted {
		price := r.Payment.Price.Float()
		cost := r.Payment.Cost.Float()

		res.Totals.Count++
		res.Totals.Revenue += price
		res.Totals.Cost += cost

		for name, dim := range dims {
			dists[name].Add(dim.Key(r), price)
		}

		if r.CreatedAt == nil {
			res.Undated++
			continue
		}
		buckets.Add(*r.CreatedAt)
		series.Add(*r.CreatedAt, price, cost)
	}
	res.Totals.Profit = res.Totals.Revenue - res.Totals.Cost

	res.Distributions = make(map[string][]Share, len(dists))
	for name, d := range dists {
		res.Distributions[name] = d.Shares()
	}
	res.ByHour = buckets.ByHour
	res.ByWeekday = buckets.ByWeekday
	res.ByMonth = buckets.ByMonth
	res.Monthly = series.Points()
	return res
}

// SumTotals returns only the money totals of records
func SumTotals(records []entity.Record) Totals {
	var t Totals
	for _, r := range canonicalOrder(records) {
		t.Count++
		t.Revenue += r.Payment.Price.Float()
		t.Cost += r.Payment.Cost.Float()
	}
	t.Profit = t.Revenue - t.Cost
	return t
}

// canonicalOrder returns a sorted copy so floating point sums come out the
// same for any permutation of the input.
func canonicalOrder(records []entity.Record) []entity.Record {
	out := make([]entity.Record, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.EntityType != b.EntityType {
			return a.EntityType < b.EntityType
		}
		if a.ID != b.ID {
			return a.ID < b.ID
		}
		if a.CustomerID != b.CustomerID {
			return a.CustomerID < b.CustomerID
		}
		if at, bt := unixNano(a.CreatedAt), unixNano(b.CreatedAt); at != bt {
			return at < bt
		}
		if a.Payment.Price != b.Payment.Price {
			return a.Payment.Price < b.Payment.Price
		}
		if a.Payment.Cost != b.Payment.Cost {
			return a.Payment.Cost < b.Payment.Cost
		}
		return a.Status < b.Status
	})
	return out
}

func unixNano(t *time.Time) int64 {
	if t == nil {
		return -1 << 63
	}
	return t.UnixNano()
}
