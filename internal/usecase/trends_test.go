package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mtanaka-dev/pr-analytics/internal/domain"
)

func monthlyCounts(counts map[string]int) map[string]domain.MonthlyStats {
	monthly := make(map[string]domain.MonthlyStats, len(counts))
	for m, c := range counts {
		monthly[m] = domain.MonthlyStats{Count: c}
	}
	return monthly
}

func TestExtractTrends_Direction(t *testing.T) {
	testCases := []struct {
		name     string
		counts   map[string]int
		expected string
	}{
		{
			name:     "empty input is stable",
			counts:   map[string]int{},
			expected: domain.TrendStable,
		},
		{
			name:     "single month is stable",
			counts:   map[string]int{"2025-01": 5},
			expected: domain.TrendStable,
		},
		{
			name:     "two months rising",
			counts:   map[string]int{"2025-01": 2, "2025-02": 5},
			expected: domain.TrendIncreasing,
		},
		{
			name:     "two months falling",
			counts:   map[string]int{"2025-01": 5, "2025-02": 2},
			expected: domain.TrendDecreasing,
		},
		{
			name:     "two months flat",
			counts:   map[string]int{"2025-01": 3, "2025-02": 3},
			expected: domain.TrendStable,
		},
		{
			name:     "last two at or above the two before",
			counts:   map[string]int{"2025-01": 2, "2025-02": 3, "2025-03": 4, "2025-04": 3},
			expected: domain.TrendIncreasing,
		},
		{
			name:     "last two below the two before",
			counts:   map[string]int{"2025-01": 6, "2025-02": 5, "2025-03": 2, "2025-04": 1},
			expected: domain.TrendDecreasing,
		},
		{
			name:     "mixed movement is stable",
			counts:   map[string]int{"2025-01": 2, "2025-02": 6, "2025-03": 4, "2025-04": 1},
			expected: domain.TrendStable,
		},
		{
			name:     "trailing zero months count as a trend",
			counts:   map[string]int{"2025-01": 4, "2025-02": 3, "2025-03": 0, "2025-04": 0},
			expected: domain.TrendDecreasing,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			summary := ExtractTrends(monthlyCounts(tc.counts))
			assert.Equal(t, tc.expected, summary.Direction)
		})
	}
}

func TestExtractTrends_PeakMonth(t *testing.T) {
	summary := ExtractTrends(monthlyCounts(map[string]int{
		"2025-01": 3, "2025-02": 7, "2025-03": 7, "2025-04": 1,
	}))

	// Ties break toward the earliest month.
	assert.Equal(t, "2025-02", summary.PeakMonth)
	assert.Equal(t, 7, summary.PeakCount)
}

func TestExtractTrends_MonthlyChanges(t *testing.T) {
	summary := ExtractTrends(monthlyCounts(map[string]int{
		"2025-01": 4, "2025-02": 6, "2025-03": 3,
	}))

	assert.Len(t, summary.MonthlyChanges, 2)
	assert.Equal(t, "2025-02", summary.MonthlyChanges[0].Month)
	assert.InDelta(t, 50.0, summary.MonthlyChanges[0].ChangePct, 1e-9)
	assert.Equal(t, "2025-03", summary.MonthlyChanges[1].Month)
	assert.InDelta(t, -50.0, summary.MonthlyChanges[1].ChangePct, 1e-9)

	assert.InDelta(t, 13.0/3.0, summary.AvgPRsPerMonth, 1e-9)
}

func TestExtractTrends_ZeroMonthBaseline(t *testing.T) {
	summary := ExtractTrends(monthlyCounts(map[string]int{
		"2025-01": 0, "2025-02": 3,
	}))

	assert.Len(t, summary.MonthlyChanges, 1)
	assert.InDelta(t, 300.0, summary.MonthlyChanges[0].ChangePct, 1e-9)
}
