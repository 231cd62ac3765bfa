package domain

// MonthlyStats summarizes the pull requests created in one calendar month.
// ClosedCount covers non-merged closures only, so MergedCount and
// ClosedCount are disjoint.
type MonthlyStats struct {
	Count          int     `json:"count"`
	OpenCount      int     `json:"open_count"`
	ClosedCount    int     `json:"closed_count"`
	MergedCount    int     `json:"merged_count"`
	AvgComments    float64 `json:"avg_comments"`
	AvgReviews     float64 `json:"avg_reviews"`
	AvgTimeToMerge float64 `json:"avg_time_to_merge"`
}

// OverallStats aggregates a whole repository's pull requests.
type OverallStats struct {
	TotalPRs             int             `json:"total_prs"`
	StateDistribution    map[PRState]int `json:"state_distribution"`
	MergedCount          int             `json:"merged_count"`
	ClosedNotMergedCount int             `json:"closed_not_merged_count"`
	MergeRate            float64         `json:"merge_rate"`
	AvgComments          float64         `json:"avg_comments"`
	AvgReviewComments    float64         `json:"avg_review_comments"`
	AvgCommits           float64         `json:"avg_commits"`
	AvgAdditions         float64         `json:"avg_additions"`
	AvgDeletions         float64         `json:"avg_deletions"`
	TotalChanges         int             `json:"total_changes"`
}

// LifecycleStats describes time-to-resolution. Durations are in hours and
// averaged over the relevant subset only (merged PRs for merge times,
// terminal PRs for close times); an empty subset yields 0.
type LifecycleStats struct {
	TotalPRs          int     `json:"total_prs"`
	ClosedPRs         int     `json:"closed_prs"`
	MergedPRs         int     `json:"merged_prs"`
	AvgTimeToClose    float64 `json:"avg_time_to_close"`
	AvgTimeToMerge    float64 `json:"avg_time_to_merge"`
	MedianTimeToMerge float64 `json:"median_time_to_merge"`
}

// ContributorDetail holds one author's running totals.
type ContributorDetail struct {
	PRCount             int `json:"pr_count"`
	MergedCount         int `json:"merged_count"`
	TotalComments       int `json:"total_comments"`
	TotalReviewComments int `json:"total_review_comments"`
	TotalAdditions      int `json:"total_additions"`
	TotalDeletions      int `json:"total_deletions"`
}

// RankedContributor pairs an author with their totals in ranking order.
type RankedContributor struct {
	Author string            `json:"author"`
	Stats  ContributorDetail `json:"stats"`
}

// ContributorStats ranks the authors of a repository. TopContributors is
// sorted by pr_count descending, ties broken by merged_count descending,
// then author name ascending.
type ContributorStats struct {
	TotalContributors int                          `json:"total_contributors"`
	TopContributors   []RankedContributor          `json:"top_contributors"`
	Details           map[string]ContributorDetail `json:"contributor_details"`
}

// MonthlyChange is the month-over-month change in PR count, in percent.
// The first month of a series has no predecessor and never appears here.
type MonthlyChange struct {
	Month     string  `json:"month"`
	ChangePct float64 `json:"change_pct"`
}

// Trend direction labels.
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
)

// TrendSummary is the deterministic month-over-month trend classification
// derived from a repository's monthly stats.
type TrendSummary struct {
	Direction      string          `json:"direction"`
	MonthlyChanges []MonthlyChange `json:"monthly_changes"`
	PeakMonth      string          `json:"peak_month"`
	PeakCount      int             `json:"peak_count"`
	AvgPRsPerMonth float64         `json:"avg_prs_per_month"`
}

// Diagnostics counts recoverable per-record defects absorbed during
// normalization and aggregation.
type Diagnostics struct {
	SkippedRecords int `json:"skipped_records"`
}

// ActivityComparison describes one repository's activity profile for
// cross-repository comparison.
type ActivityComparison struct {
	TotalPRs       int     `json:"total_prs"`
	AvgPRsPerMonth float64 `json:"avg_prs_per_month"`
	PeakMonth      string  `json:"peak_month"`
	PeakCount      int     `json:"peak_count"`
}

// QualityMetrics describes one repository's review-quality profile.
type QualityMetrics struct {
	MergeRate         float64 `json:"merge_rate"`
	AvgComments       float64 `json:"avg_comments"`
	AvgReviewComments float64 `json:"avg_review_comments"`
	AvgTimeToMerge    float64 `json:"avg_time_to_merge"`
	TotalChanges      int     `json:"total_changes"`
}

// RankingEntry is one repository's position in a metric ranking.
type RankingEntry struct {
	Repository string  `json:"repository"`
	Value      float64 `json:"value"`
}

// RepositoryRankings orders repositories by descending metric value, ties
// broken by repository name ascending.
type RepositoryRankings struct {
	ByPRCount     []RankingEntry `json:"by_pr_count"`
	ByMergeRate   []RankingEntry `json:"by_merge_rate"`
	ByAvgComments []RankingEntry `json:"by_avg_comments"`
}

// ConsistencyStats measures how evenly a repository's activity is spread
// across months.
type ConsistencyStats struct {
	StdDev                 float64 `json:"std_dev"`
	CoefficientOfVariation float64 `json:"coefficient_of_variation"`
	MinMonthlyPRs          int     `json:"min_monthly_prs"`
	MaxMonthlyPRs          int     `json:"max_monthly_prs"`
}

// InsightEntry names the repository that wins a cross-repo superlative and
// the value that won it.
type InsightEntry struct {
	Repository string  `json:"repository"`
	Value      float64 `json:"value"`
}

// CrossRepoInsights holds derived superlatives across repositories.
// Pointer fields are nil when no repository qualifies.
type CrossRepoInsights struct {
	MostActiveRepo        *InsightEntry               `json:"most_active_repo,omitempty"`
	HighestQualityRepo    *InsightEntry               `json:"highest_quality_repo,omitempty"`
	FastestProcessingRepo *InsightEntry               `json:"fastest_processing_repo,omitempty"`
	MostEngagedCommunity  *InsightEntry               `json:"most_engaged_community,omitempty"`
	Consistency           map[string]ConsistencyStats `json:"consistency_analysis"`
}

// ComparativeAnalysis is the cross-repository view computed by the
// combiner. It is additive over the individual analyses and never feeds
// back into them.
type ComparativeAnalysis struct {
	Rankings           RepositoryRankings            `json:"repository_rankings"`
	ActivityComparison map[string]ActivityComparison `json:"activity_comparison"`
	QualityMetrics     map[string]QualityMetrics     `json:"quality_metrics"`
	Insights           CrossRepoInsights             `json:"cross_repo_insights"`
	CombinedMonthly    map[string]MonthlyStats       `json:"combined_monthly_stats"`
	CombinedOverall    OverallStats                  `json:"combined_overall_stats"`
}
