package usecase

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mtanaka-dev/pr-analytics/internal/domain"
	"github.com/mtanaka-dev/pr-analytics/internal/normalize"
)

// DefaultWorkers bounds concurrent per-repository aggregations.
const DefaultWorkers = 4

// Engine runs the whole analytics batch: it normalizes and aggregates each
// repository (concurrently, with fully private accumulators), extracts
// trends, combines multi-repository input, and assembles the final result.
type Engine struct {
	logger          *log.Logger
	workers         int
	topContributors int
}

// NewEngine creates an Engine. A workers value below 1 falls back to
// DefaultWorkers; topContributors 0 keeps full contributor rankings.
func NewEngine(logger *log.Logger, workers, topContributors int) *Engine {
	if workers < 1 {
		workers = DefaultWorkers
	}
	return &Engine{
		logger:          logger,
		workers:         workers,
		topContributors: topContributors,
	}
}

// Run executes one batch over already-fetched raw records, keyed by
// repository identifier, and returns a complete AnalysisResult snapshot.
// A single-entry input yields the single-repository shape; more entries
// yield the multi-repository shape with comparative analysis. Cancellation
// or an invariant violation discards all partial work and returns the
// error; Run never returns a partial result.
func (e *Engine) Run(ctx context.Context, repoRecords map[string][]domain.RawRecord, period string) (domain.AnalysisResult, error) {
	if len(repoRecords) == 0 {
		return domain.AnalysisResult{}, fmt.Errorf("no repositories to analyze")
	}

	e.logger.Printf("Engine: analyzing %d repositories", len(repoRecords))

	repos := make([]string, 0, len(repoRecords))
	for repo := range repoRecords {
		repos = append(repos, repo)
	}
	sort.Strings(repos)

	// Each repository gets a private result slot; the only shared state
	// is the read-only input, so no locking is needed before the join.
	results := make([]*domain.SingleRepoResult, len(repos))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(e.workers)
	for i, repo := range repos {
		i, repo := i, repo
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			analysis, err := e.analyzeRepository(repoRecords[repo], period)
			if err != nil {
				return fmt.Errorf("repository %s: %w", repo, err)
			}
			results[i] = analysis
			e.logger.Printf("Engine: %s done (%d PRs, %d skipped)",
				repo, analysis.Summary.TotalPRs, analysis.Diagnostics.SkippedRecords)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return domain.AnalysisResult{}, err
	}

	generatedAt := time.Now().UTC()

	if len(repos) == 1 {
		results[0].Summary.GeneratedAt = generatedAt
		return domain.NewSingleResult(results[0]), nil
	}

	analyses := make(map[string]*domain.SingleRepoResult, len(repos))
	for i, repo := range repos {
		results[i].Summary.GeneratedAt = generatedAt
		analyses[repo] = results[i]
	}
	return e.assembleMulti(analyses, period, generatedAt)
}

// analyzeRepository is one repository's full pass: normalize, aggregate,
// extract trends, assemble the single-repo shape. An absent or empty
// record list yields all-zero statistics.
func (e *Engine) analyzeRepository(raws []domain.RawRecord, period string) (*domain.SingleRepoResult, error) {
	records, diags := normalize.Records(raws)

	agg, err := AggregateRepository(records, e.topContributors)
	if err != nil {
		return nil, err
	}
	agg.Diagnostics.SkippedRecords += diags.SkippedRecords

	return &domain.SingleRepoResult{
		Summary: domain.RepoSummary{
			TotalPRs:       agg.Overall.TotalPRs,
			MonthsAnalyzed: len(agg.Monthly),
			AnalysisPeriod: period,
		},
		OverallStats:     agg.Overall,
		MonthlyStats:     agg.Monthly,
		LifecycleStats:   agg.Lifecycle,
		ContributorStats: agg.Contributors,
		Trends:           ExtractTrends(agg.Monthly),
		Diagnostics:      agg.Diagnostics,
	}, nil
}

// assembleMulti packages the individual analyses and the combiner output
// into the multi-repository result shape.
func (e *Engine) assembleMulti(analyses map[string]*domain.SingleRepoResult, period string, generatedAt time.Time) (domain.AnalysisResult, error) {
	comparative, err := CombineRepositories(analyses)
	if err != nil {
		return domain.AnalysisResult{}, err
	}

	summary := domain.BatchSummary{
		TotalRepositories: len(analyses),
		AnalysisPeriod:    period,
		GeneratedAt:       generatedAt,
	}
	for _, analysis := range analyses {
		summary.TotalPRsAcrossRepos += analysis.Summary.TotalPRs
		if analysis.Summary.MonthsAnalyzed > summary.MonthsAnalyzed {
			summary.MonthsAnalyzed = analysis.Summary.MonthsAnalyzed
		}
	}

	return domain.NewMultiResult(&domain.MultiRepoResult{
		Summary:             summary,
		IndividualAnalyses:  analyses,
		ComparativeAnalysis: comparative,
	}), nil
}
