package report

import (
	"fmt"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/mtanaka-dev/pr-analytics/internal/domain"
)

// SummaryTable renders the cross-repository comparison table, one row per
// repository in name order.
func SummaryTable(result *domain.MultiRepoResult) string {
	repos := make([]string, 0, len(result.IndividualAnalyses))
	for repo := range result.IndividualAnalyses {
		repos = append(repos, repo)
	}
	sort.Strings(repos)

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{
		"Repository", "Total PRs", "Merge Rate (%)", "Avg Comments",
		"Avg Review Comments", "Avg Time to Merge (h)", "Contributors", "Total Changes",
	})

	for _, repo := range repos {
		analysis := result.IndividualAnalyses[repo]
		tbl.AppendRow(table.Row{
			repo,
			analysis.OverallStats.TotalPRs,
			fmt.Sprintf("%.2f", analysis.OverallStats.MergeRate),
			fmt.Sprintf("%.2f", analysis.OverallStats.AvgComments),
			fmt.Sprintf("%.2f", analysis.OverallStats.AvgReviewComments),
			fmt.Sprintf("%.2f", analysis.LifecycleStats.AvgTimeToMerge),
			analysis.ContributorStats.TotalContributors,
			analysis.OverallStats.TotalChanges,
		})
	}
	tbl.AppendFooter(table.Row{
		"Total", result.Summary.TotalPRsAcrossRepos,
		fmt.Sprintf("%.2f", result.ComparativeAnalysis.CombinedOverall.MergeRate),
	})

	return tbl.Render()
}

// OverviewTable renders one repository's headline statistics.
func OverviewTable(result *domain.SingleRepoResult) string {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Metric", "Value"})
	tbl.AppendRows([]table.Row{
		{"Total PRs", result.OverallStats.TotalPRs},
		{"Merge rate", fmt.Sprintf("%.2f%%", result.OverallStats.MergeRate)},
		{"Avg comments per PR", fmt.Sprintf("%.2f", result.OverallStats.AvgComments)},
		{"Avg review comments per PR", fmt.Sprintf("%.2f", result.OverallStats.AvgReviewComments)},
		{"Avg time to merge", fmt.Sprintf("%.2f h", result.LifecycleStats.AvgTimeToMerge)},
		{"Median time to merge", fmt.Sprintf("%.2f h", result.LifecycleStats.MedianTimeToMerge)},
		{"Contributors", result.ContributorStats.TotalContributors},
		{"Months analyzed", result.Summary.MonthsAnalyzed},
		{"Peak month", fmt.Sprintf("%s (%d PRs)", result.Trends.PeakMonth, result.Trends.PeakCount)},
		{"Trend", result.Trends.Direction},
		{"Skipped records", result.Diagnostics.SkippedRecords},
	})
	return tbl.Render()
}
