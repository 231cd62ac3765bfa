// Package normalize validates loosely-typed raw pull request records and
// coerces them into the strict domain form. It is the only component that
// touches raw records; everything downstream operates on
// domain.PullRequestRecord.
package normalize

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/mtanaka-dev/pr-analytics/internal/domain"
)

// Timestamp layouts accepted from the fetch layer, tried in order.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z",
	"2006-01-02",
}

// Records normalizes a repository's raw records. Records with a missing or
// unparsable created_at, an unparsable closed_at/merged_at, or a terminal
// timestamp earlier than created_at are excluded and counted in the
// returned diagnostics; the batch itself never fails.
func Records(raws []domain.RawRecord) ([]domain.PullRequestRecord, domain.Diagnostics) {
	records := make([]domain.PullRequestRecord, 0, len(raws))
	var diags domain.Diagnostics

	for _, raw := range raws {
		rec, ok := one(raw)
		if !ok {
			diags.SkippedRecords++
			continue
		}
		records = append(records, rec)
	}

	return records, diags
}

func one(raw domain.RawRecord) (domain.PullRequestRecord, bool) {
	createdAt, ok := timestampField(raw, "created_at")
	if !ok || createdAt == nil {
		return domain.PullRequestRecord{}, false
	}

	closedAt, ok := timestampField(raw, "closed_at")
	if !ok {
		return domain.PullRequestRecord{}, false
	}
	mergedAt, ok := timestampField(raw, "merged_at")
	if !ok {
		return domain.PullRequestRecord{}, false
	}

	// A terminal timestamp before creation marks a defective record.
	if closedAt != nil && closedAt.Before(*createdAt) {
		return domain.PullRequestRecord{}, false
	}
	if mergedAt != nil && mergedAt.Before(*createdAt) {
		return domain.PullRequestRecord{}, false
	}

	rec := domain.PullRequestRecord{
		ID:             idField(raw),
		State:          deriveState(mergedAt, closedAt),
		CreatedAt:      createdAt.UTC(),
		Author:         authorField(raw),
		Comments:       intField(raw, "comments"),
		ReviewComments: intField(raw, "review_comments"),
		Commits:        intField(raw, "commits"),
		Additions:      intField(raw, "additions"),
		Deletions:      intField(raw, "deletions"),
	}
	if closedAt != nil {
		t := closedAt.UTC()
		rec.ClosedAt = &t
	}
	if mergedAt != nil {
		t := mergedAt.UTC()
		rec.MergedAt = &t
	}

	return rec, true
}

// deriveState classifies a record from its terminal timestamps: a merge
// timestamp wins over a close timestamp, and neither means the PR is open.
func deriveState(mergedAt, closedAt *time.Time) domain.PRState {
	switch {
	case mergedAt != nil:
		return domain.StateMerged
	case closedAt != nil:
		return domain.StateClosed
	default:
		return domain.StateOpen
	}
}

// timestampField reads an optional timestamp. The second return is false
// only when the field is present but unparsable.
func timestampField(raw domain.RawRecord, key string) (*time.Time, bool) {
	v, present := raw[key]
	if !present || v == nil {
		return nil, true
	}

	switch t := v.(type) {
	case time.Time:
		return &t, true
	case string:
		if t == "" {
			return nil, true
		}
		for _, layout := range timestampLayouts {
			if parsed, err := time.Parse(layout, t); err == nil {
				return &parsed, true
			}
		}
		return nil, false
	default:
		return nil, false
	}
}

func authorField(raw domain.RawRecord) string {
	if author, ok := raw["author"].(string); ok && author != "" {
		return author
	}
	// The GitHub API nests the author under user.login.
	if user, ok := raw["user"].(map[string]any); ok {
		if login, ok := user["login"].(string); ok && login != "" {
			return login
		}
	}
	return domain.UnknownAuthor
}

func idField(raw domain.RawRecord) string {
	for _, key := range []string{"id", "number"} {
		v, present := raw[key]
		if !present {
			continue
		}
		switch id := v.(type) {
		case string:
			if id != "" {
				return id
			}
		case int:
			return strconv.Itoa(id)
		case int64:
			return strconv.FormatInt(id, 10)
		case float64:
			return strconv.FormatInt(int64(id), 10)
		case json.Number:
			return id.String()
		}
	}
	return ""
}

// intField coerces an optional numeric field, defaulting absent or
// non-numeric values to 0 and clamping negatives to 0.
func intField(raw domain.RawRecord, key string) int {
	v, present := raw[key]
	if !present || v == nil {
		return 0
	}

	var n int
	switch num := v.(type) {
	case int:
		n = num
	case int64:
		n = int(num)
	case float64:
		n = int(num)
	case json.Number:
		parsed, err := num.Int64()
		if err != nil {
			return 0
		}
		n = int(parsed)
	default:
		return 0
	}

	if n < 0 {
		return 0
	}
	return n
}
