package usecase

import (
	"context"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtanaka-dev/pr-analytics/internal/domain"
)

func testEngine() *Engine {
	return NewEngine(log.New(io.Discard, "", 0), DefaultWorkers, DefaultTopContributors)
}

// rawFixture is the sampleRecords scenario at the raw-record boundary.
func rawFixture() []domain.RawRecord {
	return []domain.RawRecord{
		{
			"created_at": "2025-01-05T00:00:00Z",
			"merged_at":  "2025-01-07T00:00:00Z",
			"closed_at":  "2025-01-07T00:00:00Z",
			"author":     "alice",
			"comments":   2,
		},
		{
			"created_at": "2025-01-20T00:00:00Z",
			"author":     "bob",
		},
		{
			"created_at": "2025-02-01T00:00:00Z",
			"closed_at":  "2025-02-03T00:00:00Z",
			"author":     "alice",
			"comments":   1,
		},
	}
}

func TestEngineRun_SingleRepository(t *testing.T) {
	result, err := testEngine().Run(context.Background(), map[string][]domain.RawRecord{
		"org/repo": rawFixture(),
	}, "2025")
	require.NoError(t, err)

	single, ok := result.Single()
	require.True(t, ok)
	_, isMulti := result.Multi()
	assert.False(t, isMulti)

	assert.Equal(t, 3, single.Summary.TotalPRs)
	assert.Equal(t, 2, single.Summary.MonthsAnalyzed)
	assert.Equal(t, "2025", single.Summary.AnalysisPeriod)
	assert.False(t, single.Summary.GeneratedAt.IsZero())
	assert.InDelta(t, 33.33, single.OverallStats.MergeRate, 0.01)
	assert.InDelta(t, 48.0, single.LifecycleStats.AvgTimeToMerge, 1e-9)
	assert.Equal(t, 3, result.TotalPRs())
}

func TestEngineRun_MultiRepository(t *testing.T) {
	result, err := testEngine().Run(context.Background(), map[string][]domain.RawRecord{
		"org/a": rawFixture(),
		"org/b": rawFixture(),
	}, "2025")
	require.NoError(t, err)

	multi, ok := result.Multi()
	require.True(t, ok)

	assert.Equal(t, 2, multi.Summary.TotalRepositories)
	assert.Equal(t, 6, multi.Summary.TotalPRsAcrossRepos)
	assert.Equal(t, 2, multi.Summary.MonthsAnalyzed)
	require.Contains(t, multi.IndividualAnalyses, "org/a")
	require.Contains(t, multi.IndividualAnalyses, "org/b")

	// Two repositories each with the January bucket combine to 4.
	assert.Equal(t, 4, multi.ComparativeAnalysis.CombinedMonthly["2025-01"].Count)
	assert.Equal(t, 6, result.TotalPRs())
}

func TestEngineRun_SkippedRecord(t *testing.T) {
	raws := append(rawFixture(), domain.RawRecord{"created_at": "definitely-not-a-date"})

	result, err := testEngine().Run(context.Background(), map[string][]domain.RawRecord{
		"org/repo": raws,
	}, "2025")
	require.NoError(t, err)

	single, ok := result.Single()
	require.True(t, ok)
	assert.Equal(t, 1, single.Diagnostics.SkippedRecords)
	// The skipped record never reaches the totals.
	assert.Equal(t, 3, single.OverallStats.TotalPRs)
}

// A declared repository with no record list is a repository with zero
// records, not an error.
func TestEngineRun_MissingRecordList(t *testing.T) {
	result, err := testEngine().Run(context.Background(), map[string][]domain.RawRecord{
		"org/a": rawFixture(),
		"org/b": nil,
	}, "2025")
	require.NoError(t, err)

	multi, ok := result.Multi()
	require.True(t, ok)
	assert.Equal(t, 0, multi.IndividualAnalyses["org/b"].OverallStats.TotalPRs)
	assert.Equal(t, 3, multi.Summary.TotalPRsAcrossRepos)
}

func TestEngineRun_EmptyBatch(t *testing.T) {
	_, err := testEngine().Run(context.Background(), nil, "2025")
	assert.Error(t, err)
}

func TestEngineRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testEngine().Run(ctx, map[string][]domain.RawRecord{
		"org/a": rawFixture(),
		"org/b": rawFixture(),
	}, "2025")
	assert.ErrorIs(t, err, context.Canceled)
}

// Two runs over identical input agree on everything except the capture
// timestamp.
func TestEngineRun_Deterministic(t *testing.T) {
	input := map[string][]domain.RawRecord{
		"org/a": rawFixture(),
		"org/b": rawFixture(),
	}

	first, err := testEngine().Run(context.Background(), input, "2025")
	require.NoError(t, err)
	second, err := testEngine().Run(context.Background(), input, "2025")
	require.NoError(t, err)

	m1, ok := first.Multi()
	require.True(t, ok)
	m2, ok := second.Multi()
	require.True(t, ok)

	assert.Equal(t, m1.ComparativeAnalysis, m2.ComparativeAnalysis)
	for repo, analysis := range m1.IndividualAnalyses {
		other := m2.IndividualAnalyses[repo]
		assert.Equal(t, analysis.OverallStats, other.OverallStats)
		assert.Equal(t, analysis.MonthlyStats, other.MonthlyStats)
		assert.Equal(t, analysis.ContributorStats, other.ContributorStats)
		assert.Equal(t, analysis.Trends, other.Trends)
	}
}
