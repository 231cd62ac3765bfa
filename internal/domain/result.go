package domain

import (
	"encoding/json"
	"errors"
	"time"
)

// ErrInvariant signals an aggregation-invariant violation, which can only
// be caused by an implementation defect. Runs that hit it abort instead of
// emitting a corrupted result.
var ErrInvariant = errors.New("aggregation invariant violated")

// RepoSummary is the header of a single-repository result.
type RepoSummary struct {
	TotalPRs       int       `json:"total_prs"`
	MonthsAnalyzed int       `json:"months_analyzed"`
	AnalysisPeriod string    `json:"analysis_period"`
	GeneratedAt    time.Time `json:"generated_at"`
}

// BatchSummary is the header of a multi-repository result.
type BatchSummary struct {
	TotalRepositories   int       `json:"total_repositories"`
	TotalPRsAcrossRepos int       `json:"total_prs_across_repos"`
	MonthsAnalyzed      int       `json:"months_analyzed"`
	AnalysisPeriod      string    `json:"analysis_period"`
	GeneratedAt         time.Time `json:"generated_at"`
}

// SingleRepoResult is the complete analysis of one repository.
type SingleRepoResult struct {
	Summary          RepoSummary             `json:"summary"`
	OverallStats     OverallStats            `json:"overall_stats"`
	MonthlyStats     map[string]MonthlyStats `json:"monthly_stats"`
	LifecycleStats   LifecycleStats          `json:"lifecycle_stats"`
	ContributorStats ContributorStats        `json:"contributor_stats"`
	Trends           TrendSummary            `json:"trends"`
	Diagnostics      Diagnostics             `json:"diagnostics"`
}

// MultiRepoResult is the combined analysis of several repositories.
type MultiRepoResult struct {
	Summary             BatchSummary                 `json:"summary"`
	IndividualAnalyses  map[string]*SingleRepoResult `json:"individual_analyses"`
	ComparativeAnalysis ComparativeAnalysis          `json:"comparative_analysis"`
}

// AnalysisResult is the top-level result container. It is a variant over
// the single- and multi-repository shapes so consumers can branch
// explicitly instead of probing for key presence. It is immutable after
// assembly.
type AnalysisResult struct {
	single *SingleRepoResult
	multi  *MultiRepoResult
}

// NewSingleResult wraps a single-repository analysis.
func NewSingleResult(r *SingleRepoResult) AnalysisResult {
	return AnalysisResult{single: r}
}

// NewMultiResult wraps a multi-repository analysis.
func NewMultiResult(r *MultiRepoResult) AnalysisResult {
	return AnalysisResult{multi: r}
}

// Single returns the single-repository shape, if this result holds one.
func (r AnalysisResult) Single() (*SingleRepoResult, bool) {
	return r.single, r.single != nil
}

// Multi returns the multi-repository shape, if this result holds one.
func (r AnalysisResult) Multi() (*MultiRepoResult, bool) {
	return r.multi, r.multi != nil
}

// TotalPRs returns the batch-wide pull request count regardless of shape.
func (r AnalysisResult) TotalPRs() int {
	switch {
	case r.single != nil:
		return r.single.Summary.TotalPRs
	case r.multi != nil:
		return r.multi.Summary.TotalPRsAcrossRepos
	default:
		return 0
	}
}

// MarshalJSON serializes whichever shape the result holds, so external
// consumers see the plain hierarchical structure without the variant
// wrapper.
func (r AnalysisResult) MarshalJSON() ([]byte, error) {
	switch {
	case r.single != nil:
		return json.Marshal(r.single)
	case r.multi != nil:
		return json.Marshal(r.multi)
	default:
		return nil, errors.New("empty analysis result")
	}
}
