// Package analytics holds the pure aggregation functions behind every report:
// totals, distributions, time buckets, monthly series, customer segments and
// period growth. Nothing here performs I/O or returns errors.
package analytics

import (
	"fmt"
	"sort"
	"time"
)

// Percent returns part/whole*100, or 0 when whole is zero. Rounding is left
// to presentation.
func Percent(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part / whole * 100
}

// Share is one key of a distribution
type Share struct {
	Key        string  `json:"key"`
	Count      int     `json:"count"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
}

// Distribution counts items per categorical key, optionally summing an amount.
type Distribution struct {
	counts  map[string]int
	amounts map[string]float64
	total   int
}

// NewDistribution creates a distribution with keys pre-registered at zero
func NewDistribution(keys ...string) *Distribution {
	d := &Distribution{
		counts:  make(map[string]int, len(keys)),
		amounts: make(map[string]float64, len(keys)),
	}
	for _, k := range keys {
		d.counts[k] = 0
		d.amounts[k] = 0
	}
	return d
}

// Add counts one item under key with the given amount
func (d *Distribution) Add(key string, amount float64) {
	d.counts[key]++
	d.amounts[key] += amount
	d.total++
}

// Total is the number of items added
func (d *Distribution) Total() int {
	return d.total
}

// Counts returns a copy of the per-key counts, registered keys included
func (d *Distribution) Counts() map[string]int {
	out := make(map[string]int, len(d.counts))
	for k, v := range d.counts {
		out[k] = v
	}
	return out
}

// Shares lists every key ordered by count desc, then key asc. Percentages are
// of the item count and are all zero for an empty distribution.
func (d *Distribution) Shares() []Share {
	out := make([]Share, 0, len(d.counts))
	for k, c := range d.counts {
		out = append(out, Share{
			Key:        k,
			Count:      c,
			Amount:     d.amounts[k],
			Percentage: Percent(float64(c), float64(d.total)),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// TimeBuckets counts instants by hour of day, weekday and month of year.
// Every bucket of each domain exists from construction on.
type TimeBuckets struct {
	ByHour    map[int]int `json:"byHour"`
	ByWeekday map[int]int `json:"byWeekday"`
	ByMonth   map[int]int `json:"byMonth"`
	loc       *time.Location
}

// NewTimeBuckets creates zeroed buckets: hours 0-23, weekdays 0 (Sunday)-6,
// months 0 (January)-11. Instants are bucketed in loc.
func NewTimeBuckets(loc *time.Location) *TimeBuckets {
	if loc == nil {
		loc = time.Local
	}
	b := &TimeBuckets{
		ByHour:    make(map[int]int, 24),
		ByWeekday: make(map[int]int, 7),
		ByMonth:   make(map[int]int, 12),
		loc:       loc,
	}
	for h := 0; h < 24; h++ {
		b.ByHour[h] = 0
	}
	for d := 0; d < 7; d++ {
		b.ByWeekday[d] = 0
	}
	for m := 0; m < 12; m++ {
		b.ByMonth[m] = 0
	}
	return b
}

// Add buckets one instant
func (b *TimeBuckets) Add(t time.Time) {
	local := t.In(b.loc)
	b.ByHour[local.Hour()]++
	b.ByWeekday[int(local.Weekday())]++
	b.ByMonth[int(local.Month())-1]++
}

// MonthlyPoint is one YYYY-M entry of a monthly series
type MonthlyPoint struct {
	Key     string  `json:"key"`
	Year    int     `json:"year"`
	Month   int     `json:"month"`
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
	Cost    float64 `json:"cost"`
	Profit  float64 `json:"profit"`
}

// MonthlySeries accumulates per calendar month totals
type MonthlySeries struct {
	points map[[2]int]*MonthlyPoint
	loc    *time.Location
}

// NewMonthlySeries creates an empty series bucketed in loc
func NewMonthlySeries(loc *time.Location) *MonthlySeries {
	if loc == nil {
		loc = time.Local
	}
	return &MonthlySeries{points: make(map[[2]int]*MonthlyPoint), loc: loc}
}

// Add accounts one item at t
func (s *MonthlySeries) Add(t time.Time, revenue, cost float64) {
	local := t.In(s.loc)
	k := [2]int{local.Year(), int(local.Month())}
	p, ok := s.points[k]
	if !ok {
		p = &MonthlyPoint{Key: fmt.Sprintf("%d-%d", k[0], k[1]), Year: k[0], Month: k[1]}
		s.points[k] = p
	}
	p.Count++
	p.Revenue += revenue
	p.Cost += cost
	p.Profit = p.Revenue - p.Cost
}

// Points returns the series ordered by (year, month) numerically, so 2024-12
// precedes 2025-1 and 2025-2 precedes 2025-10.
func (s *MonthlySeries) Points() []MonthlyPoint {
	out := make([]MonthlyPoint, 0, len(s.points))
	for _, p := range s.points {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out
}
