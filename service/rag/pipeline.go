package rag

import (
	"context"
	"log/slog"
	"time"

	"github.com/Quockhanh0712/vielegalrag-demo/config"
	"github.com/Quockhanh0712/vielegalrag-demo/errs"
	"github.com/Quockhanh0712/vielegalrag-demo/service/grading"
	"github.com/Quockhanh0712/vielegalrag-demo/service/llm"
	"github.com/Quockhanh0712/vielegalrag-demo/service/rerank"
	"github.com/Quockhanh0712/vielegalrag-demo/service/retrieval"

	"github.com/tmc/langchaingo/embeddings"
)

// Pipeline 负责完整的检索增强生成流程
// embed → search → optional rerank → build context → generate → grade.
type Pipeline struct {
	Embedder embeddings.Embedder
	Searcher *retrieval.Searcher
	Reranker rerank.Reranker
	Router   *llm.Router
}

func NewPipeline(embedder embeddings.Embedder, searcher *retrieval.Searcher, reranker rerank.Reranker, router *llm.Router) *Pipeline {
	return &Pipeline{
		Embedder: embedder,
		Searcher: searcher,
		Reranker: reranker,
		Router:   router,
	}
}

type Result struct {
	Answer         string
	Sources        []retrieval.Passage
	Metrics        *grading.Metrics
	RerankerUsed   bool
	SearchTimeMs   float64
	GenerateTimeMs float64
}

// Query runs the full RAG flow for one chat turn. An empty retrieval result
// short-circuits with the fixed no-information answer; rerank and grading
// failures degrade instead of failing the turn.
func (p *Pipeline) Query(ctx context.Context, question, userID, searchMode string, topK int, rerankerEnabled bool) (*Result, error) {
	passages, searchTime, rerankerUsed, err := p.retrieve(ctx, question, userID, searchMode, topK, rerankerEnabled)
	if err != nil {
		return nil, err
	}

	if len(passages) == 0 {
		return &Result{
			Answer:       NoResultAnswer,
			Sources:      []retrieval.Passage{},
			SearchTimeMs: searchTime,
		}, nil
	}

	contextText := buildContext(passages)
	prompt := buildPrompt(question, contextText)

	generateStart := time.Now()
	generated, err := p.Router.Generate(ctx, legalSystemPrompt, prompt,
		config.Cfg.RAG.Temperature, config.Cfg.RAG.MaxTokens)
	if err != nil {
		return nil, err
	}
	generateTime := float64(time.Since(generateStart).Microseconds()) / 1000

	contexts := make([]string, 0, len(passages))
	for _, passage := range passages {
		contexts = append(contexts, passage.Text)
	}
	metrics := grading.Grade(question, generated.Content, contexts)

	slog.Info("RAG query completed",
		"mode", searchMode,
		"sources", len(passages),
		"grade", metrics.Grade,
		"search_ms", searchTime,
		"generate_ms", generateTime)

	return &Result{
		Answer:         generated.Content,
		Sources:        truncateSources(passages),
		Metrics:        &metrics,
		RerankerUsed:   rerankerUsed,
		SearchTimeMs:   searchTime,
		GenerateTimeMs: generateTime,
	}, nil
}

// SearchOnly runs retrieval (and optional rerank) without generation, for the
// raw search endpoint.
func (p *Pipeline) SearchOnly(ctx context.Context, query, userID, searchMode string, topK int, rerankerEnabled bool) ([]retrieval.Passage, error) {
	passages, _, _, err := p.retrieve(ctx, query, userID, searchMode, topK, rerankerEnabled)
	if err != nil {
		return nil, err
	}
	return truncateSources(passages), nil
}

func (p *Pipeline) retrieve(ctx context.Context, query, userID, searchMode string, topK int, rerankerEnabled bool) ([]retrieval.Passage, float64, bool, error) {
	searchStart := time.Now()

	vector, err := p.Embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, 0, false, errs.Upstream("embedding_failed", "query embedding failed", err)
	}

	passages, err := p.Searcher.Search(ctx, vector, userID, searchMode, topK)
	if err != nil {
		return nil, 0, false, err
	}

	rerankerUsed := false
	if rerankerEnabled && config.Cfg.Reranker.Enabled && len(passages) > 0 {
		reranked, err := p.Reranker.Rerank(ctx, query, passages)
		if err != nil {
			// 重排失败时保留原始顺序
			slog.Warn("Reranking failed, using original order", "err", err)
		} else {
			passages = reranked
			rerankerUsed = true
		}
	}

	searchTime := float64(time.Since(searchStart).Microseconds()) / 1000
	return passages, searchTime, rerankerUsed, nil
}

const sourceTextMaxLen = 500

func truncateSources(passages []retrieval.Passage) []retrieval.Passage {
	out := make([]retrieval.Passage, len(passages))
	copy(out, passages)
	for i := range out {
		runes := []rune(out[i].Text)
		if len(runes) > sourceTextMaxLen {
			out[i].Text = string(runes[:sourceTextMaxLen])
		}
	}
	return out
}
