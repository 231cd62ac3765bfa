package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalysisResult_Shape(t *testing.T) {
	single := NewSingleResult(&SingleRepoResult{
		Summary: RepoSummary{TotalPRs: 3},
	})
	got, ok := single.Single()
	require.True(t, ok)
	assert.Equal(t, 3, got.Summary.TotalPRs)
	_, ok = single.Multi()
	assert.False(t, ok)
	assert.Equal(t, 3, single.TotalPRs())

	multi := NewMultiResult(&MultiRepoResult{
		Summary: BatchSummary{TotalPRsAcrossRepos: 8},
	})
	_, ok = multi.Single()
	assert.False(t, ok)
	assert.Equal(t, 8, multi.TotalPRs())
}

func TestAnalysisResult_MarshalJSON(t *testing.T) {
	single := NewSingleResult(&SingleRepoResult{})
	data, err := json.Marshal(single)
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "overall_stats")
	assert.NotContains(t, decoded, "individual_analyses")

	multi := NewMultiResult(&MultiRepoResult{})
	data, err = json.Marshal(multi)
	require.NoError(t, err)

	decoded = nil
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "individual_analyses")
	assert.NotContains(t, decoded, "overall_stats")
}

func TestAnalysisResult_MarshalJSON_Empty(t *testing.T) {
	var empty AnalysisResult
	_, err := json.Marshal(empty)
	assert.Error(t, err)
	assert.Equal(t, 0, empty.TotalPRs())
}
