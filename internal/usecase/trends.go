package usecase

import (
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/mtanaka-dev/pr-analytics/internal/domain"
)

// ExtractTrends derives the month-over-month trend summary from a
// repository's monthly stats. The classification is deterministic, not a
// statistical fit: zero-count months after the first activity are part of
// the trend, not missing data.
func ExtractTrends(monthly map[string]domain.MonthlyStats) domain.TrendSummary {
	months := sortedMonths(monthly)
	if len(months) == 0 {
		return domain.TrendSummary{Direction: domain.TrendStable}
	}

	counts := make([]float64, len(months))
	for i, m := range months {
		counts[i] = float64(monthly[m].Count)
	}

	summary := domain.TrendSummary{
		Direction:      classifyDirection(counts),
		MonthlyChanges: monthlyChanges(months, counts),
	}
	summary.PeakMonth, summary.PeakCount = peakMonth(months, monthly)
	if mean, err := stats.Mean(counts); err == nil {
		summary.AvgPRsPerMonth = mean
	}

	return summary
}

// sortedMonths orders bucket keys ascending; YYYY-MM keys sort
// chronologically as strings.
func sortedMonths(monthly map[string]domain.MonthlyStats) []string {
	months := make([]string, 0, len(monthly))
	for m := range monthly {
		months = append(months, m)
	}
	sort.Strings(months)
	return months
}

// monthlyChanges computes the percentage change of each month against its
// predecessor. Growth out of a zero month counts as a 100% change per new
// PR so the series stays finite.
func monthlyChanges(months []string, counts []float64) []domain.MonthlyChange {
	if len(months) < 2 {
		return nil
	}

	changes := make([]domain.MonthlyChange, 0, len(months)-1)
	for i := 1; i < len(months); i++ {
		prev, cur := counts[i-1], counts[i]
		var pct float64
		switch {
		case prev > 0:
			pct = (cur - prev) / prev * 100
		case cur > 0:
			pct = cur * 100
		}
		changes = append(changes, domain.MonthlyChange{Month: months[i], ChangePct: pct})
	}
	return changes
}

// classifyDirection labels the series increasing when the last two months
// are both at or above the two before them, decreasing when both are
// lower, and stable otherwise. Shorter series fall back to comparing the
// last month against its predecessor.
func classifyDirection(counts []float64) string {
	n := len(counts)
	switch {
	case n < 2:
		return domain.TrendStable
	case n < 4:
		switch {
		case counts[n-1] > counts[n-2]:
			return domain.TrendIncreasing
		case counts[n-1] < counts[n-2]:
			return domain.TrendDecreasing
		default:
			return domain.TrendStable
		}
	}

	lastUp := counts[n-1] >= counts[n-3]
	prevUp := counts[n-2] >= counts[n-4]
	lastDown := counts[n-1] < counts[n-3]
	prevDown := counts[n-2] < counts[n-4]

	switch {
	case lastUp && prevUp:
		return domain.TrendIncreasing
	case lastDown && prevDown:
		return domain.TrendDecreasing
	default:
		return domain.TrendStable
	}
}

// peakMonth returns the single highest-count month, ties broken by the
// earliest month.
func peakMonth(months []string, monthly map[string]domain.MonthlyStats) (string, int) {
	var peak string
	var peakCount int
	for _, m := range months {
		if c := monthly[m].Count; c > peakCount || peak == "" {
			peak = m
			peakCount = c
		}
	}
	return peak, peakCount
}
