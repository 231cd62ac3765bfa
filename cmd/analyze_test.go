package cmd

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mtanaka-dev/pr-analytics/internal/config"
	"github.com/mtanaka-dev/pr-analytics/internal/domain"
)

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) FetchPullRequests(ctx context.Context, owner, repo string, from, to time.Time) ([]domain.RawRecord, error) {
	args := m.Called(ctx, owner, repo, from, to)
	records, _ := args.Get(0).([]domain.RawRecord)
	return records, args.Error(1)
}

func TestAddRepoFlags(t *testing.T) {
	cfg := &config.Config{}

	require.NoError(t, addRepoFlags(cfg, []string{"acme/widgets", "acme/gadgets"}))
	require.Len(t, cfg.Repositories, 2)
	assert.Equal(t, "acme/widgets", cfg.Repositories[0].Slug())
	assert.Equal(t, "acme/gadgets", cfg.Repositories[1].Slug())
}

func TestAddRepoFlags_Invalid(t *testing.T) {
	for _, flag := range []string{"acme", "acme/", "/widgets"} {
		err := addRepoFlags(&config.Config{}, []string{flag})
		assert.Error(t, err, flag)
	}
}

func TestFetchAll(t *testing.T) {
	cfg := &config.Config{
		Repositories: []config.Repository{
			{Owner: "acme", Name: "widgets"},
			{Owner: "acme", Name: "gadgets"},
		},
		AnalysisYear: 2025,
		Workers:      2,
	}
	from, to := cfg.AnalysisWindow()

	fetcher := new(mockFetcher)
	fetcher.On("FetchPullRequests", mock.Anything, "acme", "widgets", from, to).
		Return([]domain.RawRecord{{"number": 1}}, nil)
	fetcher.On("FetchPullRequests", mock.Anything, "acme", "gadgets", from, to).
		Return([]domain.RawRecord{{"number": 2}, {"number": 3}}, nil)

	records, err := fetchAll(context.Background(), fetcher, cfg)
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Len(t, records["acme/widgets"], 1)
	assert.Len(t, records["acme/gadgets"], 2)
	fetcher.AssertExpectations(t)
}

func TestFetchAll_Error(t *testing.T) {
	cfg := &config.Config{
		Repositories: []config.Repository{{Owner: "acme", Name: "widgets"}},
		AnalysisYear: 2025,
		Workers:      1,
	}

	fetcher := new(mockFetcher)
	fetcher.On("FetchPullRequests", mock.Anything, "acme", "widgets", mock.Anything, mock.Anything).
		Return(nil, errors.New("boom"))

	_, err := fetchAll(context.Background(), fetcher, cfg)
	assert.Error(t, err)
}
