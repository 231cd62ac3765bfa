// Package domain contains the core data structures and domain logic for the application.
package domain

import "time"

// PRState classifies the terminal state of a pull request.
// A merged pull request is never also counted as closed.
type PRState string

const (
	StateOpen   PRState = "open"
	StateClosed PRState = "closed"
	StateMerged PRState = "merged"
)

// UnknownAuthor is the sentinel used when a raw record carries no author.
const UnknownAuthor = "unknown"

// MonthLayout is the bucket key format for monthly aggregation.
const MonthLayout = "2006-01"

// RawRecord is a loosely-typed pull request record as delivered by the
// fetch layer. Fields may be absent or carry API-dependent types; the
// normalizer is the only component that reads it.
type RawRecord map[string]any

// PullRequestRecord is the canonical, validated form of a pull request.
// All components downstream of the normalizer operate exclusively on it.
type PullRequestRecord struct {
	ID             string     `json:"id"`
	State          PRState    `json:"state"`
	CreatedAt      time.Time  `json:"created_at"`
	ClosedAt       *time.Time `json:"closed_at,omitempty"`
	MergedAt       *time.Time `json:"merged_at,omitempty"`
	Author         string     `json:"author"`
	Comments       int        `json:"comments"`
	ReviewComments int        `json:"review_comments"`
	Commits        int        `json:"commits"`
	Additions      int        `json:"additions"`
	Deletions      int        `json:"deletions"`
}

// Changes is the total number of changed lines.
func (r *PullRequestRecord) Changes() int {
	return r.Additions + r.Deletions
}

// Month returns the aggregation bucket key (YYYY-MM) of the record.
// A record always belongs to the month it was created in, regardless of
// when it was closed or merged.
func (r *PullRequestRecord) Month() string {
	return r.CreatedAt.UTC().Format(MonthLayout)
}

// TimeToMerge returns the hours from creation to merge and whether the
// record was merged at all.
func (r *PullRequestRecord) TimeToMerge() (float64, bool) {
	if r.State != StateMerged || r.MergedAt == nil {
		return 0, false
	}
	return r.MergedAt.Sub(r.CreatedAt).Hours(), true
}

// TimeToClose returns the hours from creation to closure (merged or not)
// and whether the record reached a terminal state.
func (r *PullRequestRecord) TimeToClose() (float64, bool) {
	switch {
	case r.MergedAt != nil:
		return r.MergedAt.Sub(r.CreatedAt).Hours(), true
	case r.ClosedAt != nil:
		return r.ClosedAt.Sub(r.CreatedAt).Hours(), true
	default:
		return 0, false
	}
}
