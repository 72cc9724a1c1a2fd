package analytics

import (
	"sort"
	"time"

	"agency-report-service/internal/domain/entity"
)

// SegmentName is a mutually exclusive customer class
type SegmentName string

const (
	SegmentVIP            SegmentName = "vip"
	SegmentRepeatActive   SegmentName = "repeat_active"
	SegmentRepeatInactive SegmentName = "repeat_inactive"
	SegmentNew            SegmentName = "new"
	SegmentOneTime        SegmentName = "one_time"
	SegmentProspect       SegmentName = "prospect"
)

// BookingSegments are the classes for customers with at least one booking, in
// priority order.
var BookingSegments = []SegmentName{
	SegmentVIP, SegmentRepeatActive, SegmentRepeatInactive, SegmentNew, SegmentOneTime,
}

// SegmentConfig holds the tunable classification thresholds
type SegmentConfig struct {
	VIPMinBookings      int
	VIPMinSpend         float64
	ActiveRecencyMonths int
}

// DefaultSegmentConfig returns the agency's standard thresholds
func DefaultSegmentConfig() SegmentConfig {
	return SegmentConfig{VIPMinBookings: 5, VIPMinSpend: 10000, ActiveRecencyMonths: 3}
}

// SegmentSummary aggregates one segment
type SegmentSummary struct {
	Name                  SegmentName `json:"name"`
	Count                 int         `json:"count"`
	TotalSpending         float64     `json:"totalSpending"`
	PercentageOfCustomers float64     `json:"percentageOfCustomers"`
}

// CustomerProfile is the booking history summary a customer was classified on
type CustomerProfile struct {
	CustomerID    string      `json:"customerId"`
	Name          string      `json:"name"`
	Segment       SegmentName `json:"segment"`
	BookingCount  int         `json:"bookingCount"`
	TotalSpend    float64     `json:"totalSpend"`
	LastBookingAt *time.Time  `json:"lastBookingAt,omitempty"`
}

// SegmentationResult is the classification of every customer
type SegmentationResult struct {
	TotalCustomers int               `json:"totalCustomers"`
	Segments       []SegmentSummary  `json:"segments"`
	Prospects      SegmentSummary    `json:"prospects"`
	Profiles       []CustomerProfile `json:"profiles,omitempty"`
	// UnmatchedRecords counts bookings whose customerId matches no customer.
	UnmatchedRecords int `json:"unmatchedRecords"`
}

type history struct {
	count int
	spend float64
	last  *time.Time
}

// Segment classifies each customer by booking count, spend and recency. The
// first matching rule wins: VIP, repeat-active, repeat-inactive, new, one-time.
// Customers without bookings are summarised as prospects, outside Segments.
// Percentages use every customer as the denominator.
func Segment(customers []entity.Customer, records []entity.Record, cfg SegmentConfig, now time.Time) SegmentationResult {
	known := make(map[string]bool, len(customers))
	for _, c := range customers {
		known[c.ID] = true
	}

	histories := make(map[string]*history, len(customers))
	unmatched := 0
	for _, r := range canonicalOrder(records) {
		if r.CustomerID == "" || !known[r.CustomerID] {
			unmatched++
			continue
		}
		h, ok := histories[r.CustomerID]
		if !ok {
			h = &history{}
			histories[r.CustomerID] = h
		}
		h.count++
		h.spend += r.TotalAmount()
		if r.CreatedAt != nil && (h.last == nil || r.CreatedAt.After(*h.last)) {
			t := *r.CreatedAt
			h.last = &t
		}
	}

	cutoff := now.AddDate(0, -cfg.ActiveRecencyMonths, 0)
	summaries := make(map[SegmentName]*SegmentSummary, len(BookingSegments)+1)
	for _, name := range BookingSegments {
		summaries[name] = &SegmentSummary{Name: name}
	}
	summaries[SegmentProspect] = &SegmentSummary{Name: SegmentProspect}

	res := SegmentationResult{
		TotalCustomers:   len(customers),
		Profiles:         make([]CustomerProfile, 0, len(customers)),
		UnmatchedRecords: unmatched,
	}
	seen := make(map[string]bool, len(customers))
	for _, c := range customers {
		if seen[c.ID] {
			res.TotalCustomers--
			continue
		}
		seen[c.ID] = true

		h := histories[c.ID]
		if h == nil {
			h = &history{}
		}
		name := classify(h, cfg, cutoff)
		s := summaries[name]
		s.Count++
		s.TotalSpending += h.spend

		res.Profiles = append(res.Profiles, CustomerProfile{
			CustomerID:    c.ID,
			Name:          c.Name,
			Segment:       name,
			BookingCount:  h.count,
			TotalSpend:    h.spend,
			LastBookingAt: h.last,
		})
	}

	for _, name := range BookingSegments {
		s := summaries[name]
		s.PercentageOfCustomers = Percent(float64(s.Count), float64(res.TotalCustomers))
		res.Segments = append(res.Segments, *s)
	}
	p := summaries[SegmentProspect]
	p.PercentageOfCustomers = Percent(float64(p.Count), float64(res.TotalCustomers))
	res.Prospects = *p

	sort.Slice(res.Profiles, func(i, j int) bool {
		return res.Profiles[i].CustomerID < res.Profiles[j].CustomerID
	})
	return res
}

func classify(h *history, cfg SegmentConfig, cutoff time.Time) SegmentName {
	recent := h.last != nil && !h.last.Before(cutoff)
	switch {
	case h.count == 0:
		return SegmentProspect
	case h.count >= cfg.VIPMinBookings && h.spend >= cfg.VIPMinSpend:
		return SegmentVIP
	case h.count > 1 && recent:
		return SegmentRepeatActive
	case h.count > 1:
		return SegmentRepeatInactive
	case recent:
		return SegmentNew
	default:
		return SegmentOneTime
	}
}

// TopBySpend returns up to n profiles with the highest spend; ties by id.
func TopBySpend(profiles []CustomerProfile, n int) []CustomerProfile {
	out := make([]CustomerProfile, 0, len(profiles))
	for _, p := range profiles {
		if p.BookingCount > 0 {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TotalSpend != out[j].TotalSpend {
			return out[i].TotalSpend > out[j].TotalSpend
		}
		return out[i].CustomerID < out[j].CustomerID
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
