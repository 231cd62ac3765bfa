package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/mtanaka-dev/pr-analytics/internal/domain"
)

// WriteCharts renders the chart set for a result into dir as standalone
// HTML files and returns the paths written. Single-repository results get
// the monthly, state, contributor and trend charts; multi-repository
// results additionally get the cross-repo comparison charts per
// repository set.
func WriteCharts(result domain.AnalysisResult, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create charts directory: %w", err)
	}

	if single, ok := result.Single(); ok {
		return singleCharts(single, dir, "")
	}
	multi, ok := result.Multi()
	if !ok {
		return nil, fmt.Errorf("empty analysis result")
	}

	var paths []string
	repos := make([]string, 0, len(multi.IndividualAnalyses))
	for repo := range multi.IndividualAnalyses {
		repos = append(repos, repo)
	}
	sort.Strings(repos)

	for _, repo := range repos {
		repoPaths, err := singleCharts(multi.IndividualAnalyses[repo], dir, sanitize(repo)+"_")
		if err != nil {
			return nil, err
		}
		paths = append(paths, repoPaths...)
	}

	comparison, err := renderChart(comparisonChart(multi), dir, "repo_comparison.html")
	if err != nil {
		return nil, err
	}
	mergeRates, err := renderChart(mergeRateChart(multi), dir, "merge_rate_comparison.html")
	if err != nil {
		return nil, err
	}
	return append(paths, comparison, mergeRates), nil
}

type renderable interface {
	Render(w io.Writer) error
}

func renderChart(chart renderable, dir, name string) (string, error) {
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create chart file %s: %w", name, err)
	}
	defer f.Close()

	if err := chart.Render(f); err != nil {
		return "", fmt.Errorf("failed to render chart %s: %w", name, err)
	}
	return path, nil
}

func singleCharts(analysis *domain.SingleRepoResult, dir, prefix string) ([]string, error) {
	renders := []struct {
		chart renderable
		name  string
	}{
		{monthlyChart(analysis), prefix + "monthly_prs.html"},
		{stateChart(analysis), prefix + "state_distribution.html"},
		{contributorChart(analysis), prefix + "top_contributors.html"},
		{trendChart(analysis), prefix + "pr_trends.html"},
	}

	paths := make([]string, 0, len(renders))
	for _, r := range renders {
		path, err := renderChart(r.chart, dir, r.name)
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func monthlyChart(analysis *domain.SingleRepoResult) *charts.Bar {
	months := sortedMonthKeys(analysis.MonthlyStats)

	counts := make([]opts.BarData, len(months))
	merged := make([]opts.BarData, len(months))
	for i, m := range months {
		counts[i] = opts.BarData{Value: analysis.MonthlyStats[m].Count}
		merged[i] = opts.BarData{Value: analysis.MonthlyStats[m].MergedCount}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Pull Requests Created by Month"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)
	bar.SetXAxis(months)
	bar.AddSeries("Created", counts)
	bar.AddSeries("Merged", merged)
	return bar
}

func stateChart(analysis *domain.SingleRepoResult) *charts.Pie {
	items := make([]opts.PieData, 0, len(analysis.OverallStats.StateDistribution))
	for _, state := range []domain.PRState{domain.StateOpen, domain.StateClosed, domain.StateMerged} {
		if n := analysis.OverallStats.StateDistribution[state]; n > 0 {
			items = append(items, opts.PieData{Name: string(state), Value: n})
		}
	}

	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Pull Request State Distribution"}),
	)
	pie.AddSeries("states", items)
	return pie
}

func contributorChart(analysis *domain.SingleRepoResult) *charts.Bar {
	top := analysis.ContributorStats.TopContributors

	authors := make([]string, len(top))
	counts := make([]opts.BarData, len(top))
	for i, c := range top {
		authors[i] = c.Author
		counts[i] = opts.BarData{Value: c.Stats.PRCount}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Top Contributors by PR Count"}),
	)
	bar.SetXAxis(authors)
	bar.AddSeries("PRs", counts)
	return bar
}

func trendChart(analysis *domain.SingleRepoResult) *charts.Line {
	months := sortedMonthKeys(analysis.MonthlyStats)

	counts := make([]opts.LineData, len(months))
	for i, m := range months {
		counts[i] = opts.LineData{Value: analysis.MonthlyStats[m].Count}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "PR Creation Trend",
			Subtitle: fmt.Sprintf("Direction: %s", analysis.Trends.Direction),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)
	line.SetXAxis(months)
	line.AddSeries("PRs created", counts,
		charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
	)
	return line
}

func comparisonChart(result *domain.MultiRepoResult) *charts.Bar {
	repos := sortedRepoKeys(result.ComparativeAnalysis.ActivityComparison)

	totals := make([]opts.BarData, len(repos))
	peaks := make([]opts.BarData, len(repos))
	for i, repo := range repos {
		activity := result.ComparativeAnalysis.ActivityComparison[repo]
		totals[i] = opts.BarData{Value: activity.TotalPRs}
		peaks[i] = opts.BarData{Value: activity.PeakCount}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Repository Activity Comparison"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)
	bar.SetXAxis(repos)
	bar.AddSeries("Total PRs", totals)
	bar.AddSeries("Peak month PRs", peaks)
	return bar
}

func mergeRateChart(result *domain.MultiRepoResult) *charts.Bar {
	repos := sortedRepoKeys(result.ComparativeAnalysis.ActivityComparison)

	rates := make([]opts.BarData, len(repos))
	for i, repo := range repos {
		rates[i] = opts.BarData{Value: result.ComparativeAnalysis.QualityMetrics[repo].MergeRate}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Merge Rate by Repository (%)"}),
	)
	bar.SetXAxis(repos)
	bar.AddSeries("Merge rate", rates)
	return bar
}

func sortedMonthKeys(monthly map[string]domain.MonthlyStats) []string {
	months := make([]string, 0, len(monthly))
	for m := range monthly {
		months = append(months, m)
	}
	sort.Strings(months)
	return months
}

func sortedRepoKeys(m map[string]domain.ActivityComparison) []string {
	repos := make([]string, 0, len(m))
	for repo := range m {
		repos = append(repos, repo)
	}
	sort.Strings(repos)
	return repos
}

// sanitize makes a repository identifier safe for use in a file name.
func sanitize(repo string) string {
	out := []rune(repo)
	for i, r := range out {
		switch r {
		case '/', '\\', ':', ' ':
			out[i] = '_'
		}
	}
	return string(out)
}
