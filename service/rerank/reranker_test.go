package rerank

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Quockhanh0712/vielegalrag-demo/service/retrieval"
	"github.com/Quockhanh0712/vielegalrag-demo/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEncoder(endpoint string) *CrossEncoder {
	return &CrossEncoder{
		endpoint:   endpoint,
		httpClient: utils.NewHTTPClient(utils.WithTimeout(2 * time.Second)),
	}
}

func passages() []retrieval.Passage {
	return []retrieval.Passage{
		{ID: "a", Text: "Điều 8 quy định điều kiện kết hôn", DieuNumber: "8", Score: 0.9, Rank: 1},
		{ID: "b", Text: "Điều 5 quy định bảo vệ hôn nhân", DieuNumber: "5", Score: 0.8, Rank: 2},
		{ID: "c", Text: "Điều 3 giải thích từ ngữ", DieuNumber: "3", Score: 0.7, Rank: 3},
	}
}

func TestRerankReordersByServerScores(t *testing.T) {
	var gotReq rerankRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode([]rerankResult{
			{Index: 2, Score: 0.99},
			{Index: 0, Score: 0.40},
			{Index: 1, Score: 0.70},
		})
	}))
	defer srv.Close()

	got, err := newTestEncoder(srv.URL).Rerank(context.Background(), "điều kiện kết hôn", passages())

	require.NoError(t, err)
	assert.Equal(t, "điều kiện kết hôn", gotReq.Query)
	assert.Len(t, gotReq.Texts, 3)

	require.Len(t, got, 3)
	assert.Equal(t, "c", got[0].ID)
	assert.Equal(t, "b", got[1].ID)
	assert.Equal(t, "a", got[2].ID)

	// 重排只改分数和顺序，不改内容字段
	assert.Equal(t, "3", got[0].DieuNumber)
	require.NotNil(t, got[0].RerankScore)
	assert.Equal(t, 0.99, *got[0].RerankScore)
	assert.Equal(t, []int{1, 2, 3}, []int{got[0].Rank, got[1].Rank, got[2].Rank})
}

func TestRerankServerErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestEncoder(srv.URL).Rerank(context.Background(), "q", passages())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestRerankEmptyPassages(t *testing.T) {
	got, err := newTestEncoder("http://127.0.0.1:0").Rerank(context.Background(), "q", nil)

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestApplyIgnoresUnknownIndices(t *testing.T) {
	got := apply(passages(), []rerankResult{
		{Index: -1, Score: 0.5},
		{Index: 99, Score: 0.5},
		{Index: 1, Score: 0.95},
	})

	require.Len(t, got, 3)
	assert.Equal(t, "b", got[0].ID)
	assert.Nil(t, got[1].RerankScore)
	assert.Nil(t, got[2].RerankScore)
}

func TestApplyStableForEqualScores(t *testing.T) {
	got := apply(passages(), []rerankResult{
		{Index: 0, Score: 0.5},
		{Index: 1, Score: 0.5},
		{Index: 2, Score: 0.5},
	})

	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "b", got[1].ID)
	assert.Equal(t, "c", got[2].ID)
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	original := passages()

	apply(original, []rerankResult{{Index: 0, Score: 0.1}})

	assert.Equal(t, 0.9, original[0].Score)
	assert.Nil(t, original[0].RerankScore)
}
