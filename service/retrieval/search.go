package retrieval

import (
	"context"
	"sort"

	"github.com/Quockhanh0712/vielegalrag-demo/errs"

	"golang.org/x/sync/errgroup"
)

// VectorStore is the slice of QdrantStore the searcher needs.
type VectorStore interface {
	SearchLegal(ctx context.Context, vector []float32, topK int) ([]Passage, error)
	SearchUser(ctx context.Context, vector []float32, userID string, topK int) ([]Passage, error)
}

// Searcher routes a query vector to the right collection(s) per search mode.
type Searcher struct {
	store VectorStore
}

func NewSearcher(store VectorStore) *Searcher {
	return &Searcher{store: store}
}

// Search returns ranked passages for the given mode. Hybrid mode fans out to
// both collections concurrently and merges by score descending, ties broken
// legal-before-user then insertion order. Fewer than topK results is success.
func (s *Searcher) Search(ctx context.Context, vector []float32, userID, mode string, topK int) ([]Passage, error) {
	switch mode {
	case ModeLegal:
		passages, err := s.store.SearchLegal(ctx, vector, topK)
		if err != nil {
			return nil, errs.Upstream("search_failed", "legal corpus search failed", err)
		}
		return assignRanks(passages), nil

	case ModeUser:
		if userID == "" {
			return nil, errs.Validation("missing_user_id", "user_id is required for user search mode")
		}
		passages, err := s.store.SearchUser(ctx, vector, userID, topK)
		if err != nil {
			return nil, errs.Upstream("search_failed", "user document search failed", err)
		}
		return assignRanks(passages), nil

	case ModeHybrid:
		var legal, user []Passage

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			legal, err = s.store.SearchLegal(gctx, vector, topK)
			return err
		})
		if userID != "" {
			// qdrant rejects limit=0, so the user leg never rounds below 1
			userTopK := topK / 2
			if userTopK < 1 {
				userTopK = 1
			}
			g.Go(func() error {
				var err error
				user, err = s.store.SearchUser(gctx, vector, userID, userTopK)
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return nil, errs.Upstream("search_failed", "hybrid search failed", err)
		}

		return assignRanks(MergeHybrid(legal, user, topK)), nil

	default:
		return nil, errs.Ef(errs.KindValidation, "invalid_search_mode", "unknown search mode: %s", mode)
	}
}

// MergeHybrid merges statutory and user-document passages by score descending.
// Ties keep statutory citations first, then preserve insertion order.
func MergeHybrid(legal, user []Passage, topK int) []Passage {
	merged := make([]Passage, 0, len(legal)+len(user))
	merged = append(merged, legal...)
	merged = append(merged, user...)

	priority := func(p Passage) int {
		if p.SourceType == SourceTypeUserDocument {
			return 1
		}
		return 0
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Score != merged[j].Score {
			return merged[i].Score > merged[j].Score
		}
		return priority(merged[i]) < priority(merged[j])
	})

	if topK > 0 && len(merged) > topK {
		merged = merged[:topK]
	}
	return merged
}

func assignRanks(passages []Passage) []Passage {
	for i := range passages {
		passages[i].Rank = i + 1
	}
	return passages
}
