package usecase

import (
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/mtanaka-dev/pr-analytics/internal/domain"
)

// CombineRepositories merges per-repository analyses into the
// cross-repository comparative view. It only reads the individual
// analyses; comparative data is additive and never mutated back into
// them.
func CombineRepositories(analyses map[string]*domain.SingleRepoResult) (domain.ComparativeAnalysis, error) {
	combined := domain.ComparativeAnalysis{
		ActivityComparison: make(map[string]domain.ActivityComparison, len(analyses)),
		QualityMetrics:     make(map[string]domain.QualityMetrics, len(analyses)),
		Insights: domain.CrossRepoInsights{
			Consistency: make(map[string]domain.ConsistencyStats, len(analyses)),
		},
	}

	repos := sortedRepos(analyses)
	for _, repo := range repos {
		analysis := analyses[repo]
		combined.ActivityComparison[repo] = activityComparison(analysis)
		combined.QualityMetrics[repo] = qualityMetrics(analysis)
		if c, ok := consistencyStats(analysis); ok {
			combined.Insights.Consistency[repo] = c
		}
	}

	combined.CombinedMonthly = combineMonthly(analyses)
	combined.CombinedOverall = combineOverall(analyses)
	combined.Rankings = rankRepositories(repos, analyses)
	fillInsights(&combined.Insights, repos, analyses)

	if err := checkCombinedInvariants(combined, analyses); err != nil {
		return domain.ComparativeAnalysis{}, err
	}

	return combined, nil
}

func sortedRepos(analyses map[string]*domain.SingleRepoResult) []string {
	repos := make([]string, 0, len(analyses))
	for repo := range analyses {
		repos = append(repos, repo)
	}
	sort.Strings(repos)
	return repos
}

func activityComparison(analysis *domain.SingleRepoResult) domain.ActivityComparison {
	a := domain.ActivityComparison{
		TotalPRs: analysis.OverallStats.TotalPRs,
	}
	if len(analysis.MonthlyStats) > 0 {
		a.AvgPRsPerMonth = float64(a.TotalPRs) / float64(len(analysis.MonthlyStats))
	}
	a.PeakMonth, a.PeakCount = peakMonth(sortedMonths(analysis.MonthlyStats), analysis.MonthlyStats)
	return a
}

func qualityMetrics(analysis *domain.SingleRepoResult) domain.QualityMetrics {
	return domain.QualityMetrics{
		MergeRate:         analysis.OverallStats.MergeRate,
		AvgComments:       analysis.OverallStats.AvgComments,
		AvgReviewComments: analysis.OverallStats.AvgReviewComments,
		AvgTimeToMerge:    analysis.LifecycleStats.AvgTimeToMerge,
		TotalChanges:      analysis.OverallStats.TotalChanges,
	}
}

func consistencyStats(analysis *domain.SingleRepoResult) (domain.ConsistencyStats, bool) {
	if len(analysis.MonthlyStats) == 0 {
		return domain.ConsistencyStats{}, false
	}

	counts := make([]float64, 0, len(analysis.MonthlyStats))
	minCount, maxCount := math.MaxInt, 0
	for _, m := range analysis.MonthlyStats {
		counts = append(counts, float64(m.Count))
		if m.Count < minCount {
			minCount = m.Count
		}
		if m.Count > maxCount {
			maxCount = m.Count
		}
	}

	c := domain.ConsistencyStats{MinMonthlyPRs: minCount, MaxMonthlyPRs: maxCount}
	if sd, err := stats.StandardDeviation(counts); err == nil {
		c.StdDev = sd
	}
	if mean, err := stats.Mean(counts); err == nil && mean > 0 {
		c.CoefficientOfVariation = c.StdDev / mean
	}

	return c, true
}

// combineMonthly sums every month key appearing in any repository; a
// repository missing a month contributes 0, not an omission. The combined
// avg_time_to_merge is weighted by each repository's merged count for the
// month.
func combineMonthly(analyses map[string]*domain.SingleRepoResult) map[string]domain.MonthlyStats {
	type monthTotals struct {
		count, open, closed, merged int
		comments, reviews           float64
		mergeWeightedHours          float64
	}

	totals := make(map[string]*monthTotals)
	for _, analysis := range analyses {
		for key, m := range analysis.MonthlyStats {
			t := totals[key]
			if t == nil {
				t = &monthTotals{}
				totals[key] = t
			}
			t.count += m.Count
			t.open += m.OpenCount
			t.closed += m.ClosedCount
			t.merged += m.MergedCount
			t.comments += m.AvgComments * float64(m.Count)
			t.reviews += m.AvgReviews * float64(m.Count)
			t.mergeWeightedHours += m.AvgTimeToMerge * float64(m.MergedCount)
		}
	}

	combined := make(map[string]domain.MonthlyStats, len(totals))
	for key, t := range totals {
		s := domain.MonthlyStats{
			Count:       t.count,
			OpenCount:   t.open,
			ClosedCount: t.closed,
			MergedCount: t.merged,
		}
		if t.count > 0 {
			s.AvgComments = t.comments / float64(t.count)
			s.AvgReviews = t.reviews / float64(t.count)
		}
		if t.merged > 0 {
			s.AvgTimeToMerge = t.mergeWeightedHours / float64(t.merged)
		}
		combined[key] = s
	}
	return combined
}

func combineOverall(analyses map[string]*domain.SingleRepoResult) domain.OverallStats {
	o := domain.OverallStats{StateDistribution: make(map[domain.PRState]int)}
	var comments, reviewComments, commits, additions, deletions float64

	for _, analysis := range analyses {
		repo := analysis.OverallStats
		o.TotalPRs += repo.TotalPRs
		o.MergedCount += repo.MergedCount
		o.ClosedNotMergedCount += repo.ClosedNotMergedCount
		o.TotalChanges += repo.TotalChanges
		for state, n := range repo.StateDistribution {
			o.StateDistribution[state] += n
		}

		weight := float64(repo.TotalPRs)
		comments += repo.AvgComments * weight
		reviewComments += repo.AvgReviewComments * weight
		commits += repo.AvgCommits * weight
		additions += repo.AvgAdditions * weight
		deletions += repo.AvgDeletions * weight
	}

	if o.TotalPRs > 0 {
		total := float64(o.TotalPRs)
		o.MergeRate = float64(o.MergedCount) / total * 100
		o.AvgComments = comments / total
		o.AvgReviewComments = reviewComments / total
		o.AvgCommits = commits / total
		o.AvgAdditions = additions / total
		o.AvgDeletions = deletions / total
	}

	return o
}

// rankRepositories orders repositories by descending metric value; ties
// fall back to repository name ascending.
func rankRepositories(repos []string, analyses map[string]*domain.SingleRepoResult) domain.RepositoryRankings {
	rank := func(metric func(*domain.SingleRepoResult) float64) []domain.RankingEntry {
		entries := make([]domain.RankingEntry, 0, len(repos))
		for _, repo := range repos {
			entries = append(entries, domain.RankingEntry{
				Repository: repo,
				Value:      metric(analyses[repo]),
			})
		}
		sort.SliceStable(entries, func(i, j int) bool {
			if entries[i].Value != entries[j].Value {
				return entries[i].Value > entries[j].Value
			}
			return entries[i].Repository < entries[j].Repository
		})
		return entries
	}

	return domain.RepositoryRankings{
		ByPRCount: rank(func(a *domain.SingleRepoResult) float64 {
			return float64(a.OverallStats.TotalPRs)
		}),
		ByMergeRate: rank(func(a *domain.SingleRepoResult) float64 {
			return a.OverallStats.MergeRate
		}),
		ByAvgComments: rank(func(a *domain.SingleRepoResult) float64 {
			return a.OverallStats.AvgComments
		}),
	}
}

// fillInsights derives the cross-repo superlatives. The quality score is
// merge rate plus engagement (comments per PR) scaled by 10, matching the
// comparative report's weighting.
func fillInsights(insights *domain.CrossRepoInsights, repos []string, analyses map[string]*domain.SingleRepoResult) {
	best := func(metric func(*domain.SingleRepoResult) (float64, bool), better func(a, b float64) bool) *domain.InsightEntry {
		var entry *domain.InsightEntry
		for _, repo := range repos {
			value, ok := metric(analyses[repo])
			if !ok {
				continue
			}
			if entry == nil || better(value, entry.Value) {
				entry = &domain.InsightEntry{Repository: repo, Value: value}
			}
		}
		return entry
	}
	higher := func(a, b float64) bool { return a > b }
	lower := func(a, b float64) bool { return a < b }

	insights.MostActiveRepo = best(func(a *domain.SingleRepoResult) (float64, bool) {
		return float64(a.OverallStats.TotalPRs), true
	}, higher)

	insights.HighestQualityRepo = best(func(a *domain.SingleRepoResult) (float64, bool) {
		engagement := a.OverallStats.AvgComments + a.OverallStats.AvgReviewComments
		return a.OverallStats.MergeRate + engagement*10, true
	}, higher)

	insights.FastestProcessingRepo = best(func(a *domain.SingleRepoResult) (float64, bool) {
		return a.LifecycleStats.AvgTimeToMerge, a.LifecycleStats.MergedPRs > 0
	}, lower)

	insights.MostEngagedCommunity = best(func(a *domain.SingleRepoResult) (float64, bool) {
		return a.OverallStats.AvgComments + a.OverallStats.AvgReviewComments, true
	}, higher)
}

func checkCombinedInvariants(combined domain.ComparativeAnalysis, analyses map[string]*domain.SingleRepoResult) error {
	var total int
	for _, analysis := range analyses {
		total += analysis.OverallStats.TotalPRs
	}
	if combined.CombinedOverall.TotalPRs != total {
		return fmt.Errorf("%w: combined total_prs %d, want %d",
			domain.ErrInvariant, combined.CombinedOverall.TotalPRs, total)
	}
	if combined.CombinedOverall.MergedCount > combined.CombinedOverall.TotalPRs {
		return fmt.Errorf("%w: combined merged_count %d exceeds total_prs %d",
			domain.ErrInvariant, combined.CombinedOverall.MergedCount, combined.CombinedOverall.TotalPRs)
	}
	return nil
}
