package rerank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/Quockhanh0712/vielegalrag-demo/config"
	"github.com/Quockhanh0712/vielegalrag-demo/service/retrieval"
	"github.com/Quockhanh0712/vielegalrag-demo/utils"
)

// Reranker re-scores retrieved passages against the query. Implementations
// must be pure: passage identity fields are never touched, only score/order.
type Reranker interface {
	Rerank(ctx context.Context, query string, passages []retrieval.Passage) ([]retrieval.Passage, error)
}

// CrossEncoder calls an external cross-encoder model server speaking the
// text-embeddings-inference rerank protocol.
type CrossEncoder struct {
	endpoint   string
	httpClient *http.Client
}

func NewCrossEncoder() *CrossEncoder {
	cfg := config.Cfg.Reranker
	return &CrossEncoder{
		endpoint: cfg.Endpoint,
		httpClient: utils.NewHTTPClient(
			utils.WithTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second),
		),
	}
}

type rerankRequest struct {
	Query string   `json:"query"`
	Texts []string `json:"texts"`
}

type rerankResult struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

// Rerank scores every (query, passage) pair and returns the passages sorted by
// the new score descending. Equal scores keep their original relative order.
func (r *CrossEncoder) Rerank(ctx context.Context, query string, passages []retrieval.Passage) ([]retrieval.Passage, error) {
	if len(passages) == 0 {
		return passages, nil
	}

	texts := make([]string, 0, len(passages))
	for _, p := range passages {
		texts = append(texts, p.Text)
	}

	payload, err := json.Marshal(rerankRequest{Query: query, Texts: texts})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal rerank request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create rerank request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rerank request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("rerank server returned %d: %s", resp.StatusCode, string(body))
	}

	var results []rerankResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("failed to decode rerank response: %w", err)
	}

	return apply(passages, results), nil
}

// apply copies the new scores onto the passages and sorts descending. Results
// referencing unknown indices are ignored; unscored passages keep a zero
// rerank score and sink to the bottom.
func apply(passages []retrieval.Passage, results []rerankResult) []retrieval.Passage {
	reranked := make([]retrieval.Passage, len(passages))
	copy(reranked, passages)

	for _, res := range results {
		if res.Index < 0 || res.Index >= len(reranked) {
			continue
		}
		score := res.Score
		reranked[res.Index].RerankScore = &score
		reranked[res.Index].Score = score
	}

	sort.SliceStable(reranked, func(i, j int) bool {
		return reranked[i].Score > reranked[j].Score
	})

	for i := range reranked {
		reranked[i].Rank = i + 1
	}
	return reranked
}
