// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"

	"github.com/mtanaka-dev/pr-analytics/internal/domain"
)

// Fetcher defines the behavior of a gateway for fetching pull request
// records. The engine core never talks to it; fetching happens strictly
// before the engine runs.
type Fetcher interface {
	FetchPullRequests(ctx context.Context, owner, repo string, from, to time.Time) ([]domain.RawRecord, error)
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
// The REST client pages through the repository's pull requests and the
// GraphQL client enriches them with counters the list endpoint omits.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	logger        *log.Logger
}

// prCounters holds the per-PR counters fetched via GraphQL.
type prCounters struct {
	comments       int
	reviewComments int
	commits        int
	additions      int
	deletions      int
}

// prCountersQuery pages through a search of the repository's pull requests
// and pulls the counters that the REST list endpoint does not return.
type prCountersQuery struct {
	Search struct {
		PageInfo struct {
			HasNextPage bool
			EndCursor   githubv4.String
		}
		Edges []struct {
			Node struct {
				Typename    string `graphql:"__typename"`
				PullRequest struct {
					Number    int
					Additions int
					Deletions int
					Comments  struct {
						TotalCount int
					}
					Reviews struct {
						TotalCount int
					} `graphql:"reviews(first: 0)"`
					Commits struct {
						TotalCount int
					} `graphql:"commits(first: 0)"`
				} `graphql:"... on PullRequest"`
			}
		}
	} `graphql:"search(query: $query, type: ISSUE, first: 50, after: $cursor)"`
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
func NewGitHubGateway(token string, logger *log.Logger) (Fetcher, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}
	return &GitHubGateway{
		restClient:    github.NewClient(httpClient),
		graphqlClient: githubv4.NewClient(httpClient),
		logger:        logger,
	}, nil
}

// FetchPullRequests returns the raw records of every pull request created
// in [from, to) for one repository. Records are loosely typed; validation
// is the normalizer's job.
func (g *GitHubGateway) FetchPullRequests(ctx context.Context, owner, repo string, from, to time.Time) ([]domain.RawRecord, error) {
	g.logger.Printf("[1/2] Fetching pull requests for %s/%s using REST API...", owner, repo)

	records, err := g.fetchPRList(ctx, owner, repo, from, to)
	if err != nil {
		return nil, err
	}

	g.logger.Printf("[2/2] Fetching pull request counters for %s/%s using GraphQL...", owner, repo)
	counters, err := g.fetchPRCounters(ctx, owner, repo, from, to)
	if err != nil {
		return nil, err
	}
	mergeCounters(records, counters)

	g.logger.Printf("Completed fetching %d pull requests for %s/%s.", len(records), owner, repo)
	return records, nil
}

func (g *GitHubGateway) fetchPRList(ctx context.Context, owner, repo string, from, to time.Time) ([]domain.RawRecord, error) {
	opts := &github.PullRequestListOptions{
		State:       "all",
		Sort:        "created",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var records []domain.RawRecord
	for {
		prs, resp, err := g.restClient.PullRequests.List(ctx, owner, repo, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list pull requests with REST API: %w", err)
		}

		done := false
		for _, pr := range prs {
			createdAt := pr.GetCreatedAt().Time
			if !createdAt.Before(to) {
				continue
			}
			if createdAt.Before(from) {
				// Sorted by created descending, so everything after this
				// is outside the window too.
				done = true
				break
			}
			records = append(records, rawRecord(pr))
		}

		if done || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
		g.logger.Println("  Fetching next page of pull requests...")
	}

	return records, nil
}

func rawRecord(pr *github.PullRequest) domain.RawRecord {
	raw := domain.RawRecord{
		"number":     pr.GetNumber(),
		"state":      pr.GetState(),
		"created_at": pr.GetCreatedAt().Time,
		"user": map[string]any{
			"login": pr.GetUser().GetLogin(),
		},
	}
	if pr.ClosedAt != nil {
		raw["closed_at"] = pr.GetClosedAt().Time
	}
	if pr.MergedAt != nil {
		raw["merged_at"] = pr.GetMergedAt().Time
	}
	return raw
}

func (g *GitHubGateway) fetchPRCounters(ctx context.Context, owner, repo string, from, to time.Time) (map[int]prCounters, error) {
	const dateLayout = "2006-01-02"
	query := fmt.Sprintf("repo:%s/%s is:pr created:%s..%s",
		owner, repo, from.Format(dateLayout), to.Format(dateLayout))

	variables := map[string]interface{}{
		"query":  githubv4.String(query),
		"cursor": (*githubv4.String)(nil),
	}

	counters := make(map[int]prCounters)
	for {
		var q prCountersQuery
		if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
			return nil, fmt.Errorf("failed to execute GraphQL query for counters: %w", err)
		}

		for _, edge := range q.Search.Edges {
			if edge.Node.Typename != "PullRequest" {
				continue
			}
			pr := edge.Node.PullRequest
			counters[pr.Number] = prCounters{
				comments:       pr.Comments.TotalCount,
				reviewComments: pr.Reviews.TotalCount,
				commits:        pr.Commits.TotalCount,
				additions:      pr.Additions,
				deletions:      pr.Deletions,
			}
		}

		if !q.Search.PageInfo.HasNextPage {
			break
		}
		variables["cursor"] = githubv4.NewString(q.Search.PageInfo.EndCursor)
		g.logger.Println("  Fetching next page of pull request counters...")
	}

	return counters, nil
}

// mergeCounters folds the GraphQL counters into the REST records. A PR
// missing from the counter map keeps zero counters, which the normalizer
// treats as absent fields.
func mergeCounters(records []domain.RawRecord, counters map[int]prCounters) {
	for _, raw := range records {
		number, ok := raw["number"].(int)
		if !ok {
			continue
		}
		c, ok := counters[number]
		if !ok {
			continue
		}
		raw["comments"] = c.comments
		raw["review_comments"] = c.reviewComments
		raw["commits"] = c.commits
		raw["additions"] = c.additions
		raw["deletions"] = c.deletions
	}
}
