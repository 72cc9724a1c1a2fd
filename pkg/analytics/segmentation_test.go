package analytics

import (
	"testing"
	"time"

	"agency-report-service/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var segNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func bookingsFor(customerID string, n int, each float64, last time.Time) []entity.Record {
	out := make([]entity.Record, 0, n)
	for i := 0; i < n; i++ {
		created := last.AddDate(0, 0, -i)
		out = append(out, entity.Record{
			ID:         customerID + "-" + string(rune('a'+i)),
			EntityType: entity.EntityFlight,
			CustomerID: customerID,
			CreatedAt:  &created,
			Payment:    entity.Payment{Price: entity.Amount(each)},
		})
	}
	return out
}

func summary(res SegmentationResult, name SegmentName) SegmentSummary {
	for _, s := range res.Segments {
		if s.Name == name {
			return s
		}
	}
	return SegmentSummary{}
}

func profile(res SegmentationResult, id string) CustomerProfile {
	for _, p := range res.Profiles {
		if p.CustomerID == id {
			return p
		}
	}
	return CustomerProfile{}
}

func TestSegment_Rules(t *testing.T) {
	customers := []entity.Customer{
		{ID: "vip"}, {ID: "active"}, {ID: "inactive"}, {ID: "new"}, {ID: "once"}, {ID: "none"},
	}
	var records []entity.Record
	// VIP regardless of recency
	records = append(records, bookingsFor("vip", 6, 2000, segNow.AddDate(0, -10, 0))...)
	records = append(records, bookingsFor("active", 2, 100, segNow.AddDate(0, 0, -10))...)
	records = append(records, bookingsFor("inactive", 3, 100, segNow.AddDate(0, -5, 0))...)
	records = append(records, bookingsFor("new", 1, 100, segNow.AddDate(0, -1, 0))...)
	records = append(records, bookingsFor("once", 1, 100, segNow.AddDate(-1, 0, 0))...)

	res := Segment(customers, records, DefaultSegmentConfig(), segNow)

	assert.Equal(t, SegmentVIP, profile(res, "vip").Segment)
	assert.InDelta(t, 12000, profile(res, "vip").TotalSpend, 1e-9)
	assert.Equal(t, SegmentRepeatActive, profile(res, "active").Segment)
	assert.Equal(t, SegmentRepeatInactive, profile(res, "inactive").Segment)
	assert.Equal(t, SegmentNew, profile(res, "new").Segment)
	assert.Equal(t, SegmentOneTime, profile(res, "once").Segment)
	assert.Equal(t, SegmentProspect, profile(res, "none").Segment)

	require.Len(t, res.Segments, 5)
	total := 0
	for _, s := range res.Segments {
		assert.Equal(t, 1, s.Count, s.Name)
		assert.InDelta(t, 100.0/6, s.PercentageOfCustomers, 1e-9)
		total += s.Count
	}
	assert.Equal(t, 5, total)
	assert.Equal(t, 1, res.Prospects.Count)
	assert.Equal(t, 6, res.TotalCustomers)
	assert.InDelta(t, 12000, summary(res, SegmentVIP).TotalSpending, 1e-9)
}

func TestSegment_VIPNeedsBothThresholds(t *testing.T) {
	customers := []entity.Customer{{ID: "many-cheap"}, {ID: "few-rich"}}
	records := append(
		bookingsFor("many-cheap", 8, 10, segNow),
		bookingsFor("few-rich", 2, 50000, segNow)...,
	)
	res := Segment(customers, records, DefaultSegmentConfig(), segNow)
	assert.Equal(t, SegmentRepeatActive, profile(res, "many-cheap").Segment)
	assert.Equal(t, SegmentRepeatActive, profile(res, "few-rich").Segment)
}

func TestSegment_ConfigurableThresholds(t *testing.T) {
	customers := []entity.Customer{{ID: "c1"}}
	records := bookingsFor("c1", 2, 600, segNow.AddDate(0, -2, 0))

	cfg := SegmentConfig{VIPMinBookings: 2, VIPMinSpend: 1000, ActiveRecencyMonths: 1}
	res := Segment(customers, records, cfg, segNow)
	assert.Equal(t, SegmentVIP, profile(res, "c1").Segment)

	cfg.VIPMinSpend = 5000
	res = Segment(customers, records, cfg, segNow)
	assert.Equal(t, SegmentRepeatInactive, profile(res, "c1").Segment)
}

func TestSegment_UndatedBookingsAreNotRecent(t *testing.T) {
	customers := []entity.Customer{{ID: "c1"}}
	records := []entity.Record{{ID: "r1", CustomerID: "c1", Payment: entity.Payment{Price: 10}}}

	res := Segment(customers, records, DefaultSegmentConfig(), segNow)
	assert.Equal(t, SegmentOneTime, profile(res, "c1").Segment)
}

func TestSegment_UnknownCustomersAndDuplicates(t *testing.T) {
	customers := []entity.Customer{{ID: "c1"}, {ID: "c1"}}
	records := append(bookingsFor("c1", 1, 10, segNow), bookingsFor("ghost", 2, 10, segNow)...)

	res := Segment(customers, records, DefaultSegmentConfig(), segNow)
	assert.Equal(t, 1, res.TotalCustomers)
	assert.Equal(t, 2, res.UnmatchedRecords)
	assert.Len(t, res.Profiles, 1)
}

func TestSegment_Empty(t *testing.T) {
	res := Segment(nil, nil, DefaultSegmentConfig(), segNow)
	assert.Equal(t, 0, res.TotalCustomers)
	require.Len(t, res.Segments, 5)
	for _, s := range res.Segments {
		assert.Zero(t, s.Count)
		assert.Zero(t, s.PercentageOfCustomers)
	}
}

func TestTopBySpend(t *testing.T) {
	profiles := []CustomerProfile{
		{CustomerID: "b", BookingCount: 1, TotalSpend: 300},
		{CustomerID: "a", BookingCount: 2, TotalSpend: 300},
		{CustomerID: "c", BookingCount: 1, TotalSpend: 900},
		{CustomerID: "p", BookingCount: 0},
	}
	top := TopBySpend(profiles, 2)
	require.Len(t, top, 2)
	assert.Equal(t, "c", top[0].CustomerID)
	assert.Equal(t, "a", top[1].CustomerID)
	assert.Len(t, TopBySpend(profiles, 10), 3)
}
