package analytics

import (
	"time"

	"agency-report-service/pkg/timewindow"
)

// GrowthRate is (current-previous)/previous*100, and exactly 0 when previous
// is not positive.
func GrowthRate(current, previous int) float64 {
	if previous <= 0 {
		return 0
	}
	return float64(current-previous) / float64(previous) * 100
}

// PeriodComparison counts items in the current, previous and two-months-prior
// calendar months.
type PeriodComparison struct {
	CurrentMonth       int     `json:"currentMonth"`
	PreviousMonth      int     `json:"previousMonth"`
	TwoMonthsAgo       int     `json:"twoMonthsAgo"`
	GrowthRateCurrent  float64 `json:"growthRateCurrent"`
	GrowthRatePrevious float64 `json:"growthRatePrevious"`
}

// ComparisonWindows returns the three calendar month windows around now,
// current month first.
func ComparisonWindows(now time.Time) [3]timewindow.Window {
	return [3]timewindow.Window{
		timewindow.CalendarMonth(now, 0),
		timewindow.CalendarMonth(now, 1),
		timewindow.CalendarMonth(now, 2),
	}
}

// ComparePeriods buckets instants into the comparison windows of now, which
// must already be in the reporting location.
func ComparePeriods(times []time.Time, now time.Time) PeriodComparison {
	windows := ComparisonWindows(now)
	var counts [3]int
	for _, t := range times {
		for i, w := range windows {
			if w.Contains(t) {
				counts[i]++
				break
			}
		}
	}
	return NewPeriodComparison(counts[0], counts[1], counts[2])
}

// NewPeriodComparison derives both growth rates from raw counts
func NewPeriodComparison(current, previous, twoAgo int) PeriodComparison {
	return PeriodComparison{
		CurrentMonth:       current,
		PreviousMonth:      previous,
		TwoMonthsAgo:       twoAgo,
		GrowthRateCurrent:  GrowthRate(current, previous),
		GrowthRatePrevious: GrowthRate(previous, twoAgo),
	}
}
