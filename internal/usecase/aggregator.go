// Package usecase contains the business logic of the application: the
// single-repository aggregator, the trend extractor, the multi-repository
// combiner, and the engine that orchestrates them.
package usecase

import (
	"fmt"
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/mtanaka-dev/pr-analytics/internal/domain"
)

// DefaultTopContributors is the slice size of the contributor ranking.
// Zero keeps the whole ranking.
const DefaultTopContributors = 10

// RepoAggregation bundles everything the aggregator derives from one
// repository's normalized records.
type RepoAggregation struct {
	Overall      domain.OverallStats
	Monthly      map[string]domain.MonthlyStats
	Lifecycle    domain.LifecycleStats
	Contributors domain.ContributorStats
	Diagnostics  domain.Diagnostics
}

// accumulator carries the running totals of one aggregation pass. It is
// fully private to that pass, which keeps per-repository aggregations
// parallelizable without locks.
type accumulator struct {
	total          int
	states         map[domain.PRState]int
	comments       int
	reviewComments int
	commits        int
	additions      int
	deletions      int

	months  map[string]*monthAccumulator
	authors map[string]*domain.ContributorDetail

	mergeHours []float64
	closeHours []float64

	skipped int
}

type monthAccumulator struct {
	count      int
	open       int
	closed     int
	merged     int
	comments   int
	reviews    int
	mergeHours float64
}

// AggregateRepository runs the single-pass aggregation over one
// repository's normalized records. Averages are computed from sums at the
// end of the pass, never incrementally, and an empty input yields all-zero
// statistics rather than an error.
func AggregateRepository(records []domain.PullRequestRecord, topContributors int) (*RepoAggregation, error) {
	acc := newAccumulator()
	for i := range records {
		acc.add(&records[i])
	}

	if err := acc.checkInvariants(); err != nil {
		return nil, err
	}

	return &RepoAggregation{
		Overall:      acc.overallStats(),
		Monthly:      acc.monthlyStats(),
		Lifecycle:    acc.lifecycleStats(),
		Contributors: acc.contributorStats(topContributors),
		Diagnostics:  domain.Diagnostics{SkippedRecords: acc.skipped},
	}, nil
}

func newAccumulator() *accumulator {
	return &accumulator{
		states:  make(map[domain.PRState]int),
		months:  make(map[string]*monthAccumulator),
		authors: make(map[string]*domain.ContributorDetail),
	}
}

func (a *accumulator) add(rec *domain.PullRequestRecord) {
	a.total++
	a.states[rec.State]++
	a.comments += rec.Comments
	a.reviewComments += rec.ReviewComments
	a.commits += rec.Commits
	a.additions += rec.Additions
	a.deletions += rec.Deletions

	a.addMonth(rec)
	a.addAuthor(rec)
	a.addLifecycle(rec)
}

func (a *accumulator) addMonth(rec *domain.PullRequestRecord) {
	key := rec.Month()
	m := a.months[key]
	if m == nil {
		m = &monthAccumulator{}
		a.months[key] = m
	}

	m.count++
	m.comments += rec.Comments
	m.reviews += rec.ReviewComments
	switch rec.State {
	case domain.StateMerged:
		m.merged++
		if hours, ok := rec.TimeToMerge(); ok {
			m.mergeHours += hours
		}
	case domain.StateClosed:
		m.closed++
	default:
		m.open++
	}
}

func (a *accumulator) addAuthor(rec *domain.PullRequestRecord) {
	c := a.authors[rec.Author]
	if c == nil {
		c = &domain.ContributorDetail{}
		a.authors[rec.Author] = c
	}

	c.PRCount++
	if rec.State == domain.StateMerged {
		c.MergedCount++
	}
	c.TotalComments += rec.Comments
	c.TotalReviewComments += rec.ReviewComments
	c.TotalAdditions += rec.Additions
	c.TotalDeletions += rec.Deletions
}

func (a *accumulator) addLifecycle(rec *domain.PullRequestRecord) {
	if rec.State == domain.StateMerged {
		hours, ok := rec.TimeToMerge()
		if !ok {
			// Merged state without a merge timestamp is a per-record
			// defect; it stays out of the lifecycle averages.
			a.skipped++
			return
		}
		a.mergeHours = append(a.mergeHours, hours)
	}
	if hours, ok := rec.TimeToClose(); ok {
		a.closeHours = append(a.closeHours, hours)
	}
}

// checkInvariants verifies conditions the accumulation algorithm makes
// structurally impossible to break. A violation is an implementation
// defect and aborts the run.
func (a *accumulator) checkInvariants() error {
	merged := a.states[domain.StateMerged]
	if merged > a.total {
		return fmt.Errorf("%w: merged_count %d exceeds total_prs %d", domain.ErrInvariant, merged, a.total)
	}

	var monthTotal int
	for _, m := range a.months {
		monthTotal += m.count
	}
	if monthTotal != a.total {
		return fmt.Errorf("%w: monthly bucket counts sum to %d, want %d", domain.ErrInvariant, monthTotal, a.total)
	}

	return nil
}

func (a *accumulator) overallStats() domain.OverallStats {
	o := domain.OverallStats{
		TotalPRs:             a.total,
		StateDistribution:    a.states,
		MergedCount:          a.states[domain.StateMerged],
		ClosedNotMergedCount: a.states[domain.StateClosed],
		TotalChanges:         a.additions + a.deletions,
	}
	if a.total == 0 {
		return o
	}

	total := float64(a.total)
	o.MergeRate = float64(o.MergedCount) / total * 100
	o.AvgComments = float64(a.comments) / total
	o.AvgReviewComments = float64(a.reviewComments) / total
	o.AvgCommits = float64(a.commits) / total
	o.AvgAdditions = float64(a.additions) / total
	o.AvgDeletions = float64(a.deletions) / total

	return o
}

func (a *accumulator) monthlyStats() map[string]domain.MonthlyStats {
	monthly := make(map[string]domain.MonthlyStats, len(a.months))
	for key, m := range a.months {
		s := domain.MonthlyStats{
			Count:       m.count,
			OpenCount:   m.open,
			ClosedCount: m.closed,
			MergedCount: m.merged,
		}
		if m.count > 0 {
			s.AvgComments = float64(m.comments) / float64(m.count)
			s.AvgReviews = float64(m.reviews) / float64(m.count)
		}
		if m.merged > 0 {
			s.AvgTimeToMerge = m.mergeHours / float64(m.merged)
		}
		monthly[key] = s
	}
	return monthly
}

func (a *accumulator) lifecycleStats() domain.LifecycleStats {
	l := domain.LifecycleStats{
		TotalPRs:  a.total,
		ClosedPRs: len(a.closeHours),
		MergedPRs: len(a.mergeHours),
	}

	if len(a.closeHours) > 0 {
		var sum float64
		for _, h := range a.closeHours {
			sum += h
		}
		l.AvgTimeToClose = sum / float64(len(a.closeHours))
	}
	if len(a.mergeHours) > 0 {
		var sum float64
		for _, h := range a.mergeHours {
			sum += h
		}
		l.AvgTimeToMerge = sum / float64(len(a.mergeHours))
		if median, err := stats.Median(a.mergeHours); err == nil {
			l.MedianTimeToMerge = median
		}
	}

	return l
}

// contributorStats ranks authors by pr_count descending, ties broken by
// merged_count descending, then author name ascending, and slices the
// ranking to the configured size.
func (a *accumulator) contributorStats(topContributors int) domain.ContributorStats {
	details := make(map[string]domain.ContributorDetail, len(a.authors))
	ranked := make([]domain.RankedContributor, 0, len(a.authors))
	for author, c := range a.authors {
		details[author] = *c
		ranked = append(ranked, domain.RankedContributor{Author: author, Stats: *c})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Stats.PRCount != ranked[j].Stats.PRCount {
			return ranked[i].Stats.PRCount > ranked[j].Stats.PRCount
		}
		if ranked[i].Stats.MergedCount != ranked[j].Stats.MergedCount {
			return ranked[i].Stats.MergedCount > ranked[j].Stats.MergedCount
		}
		return ranked[i].Author < ranked[j].Author
	})

	if topContributors > 0 && len(ranked) > topContributors {
		ranked = ranked[:topContributors]
	}

	return domain.ContributorStats{
		TotalContributors: len(a.authors),
		TopContributors:   ranked,
		Details:           details,
	}
}
