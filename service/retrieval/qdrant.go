package retrieval

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Quockhanh0712/vielegalrag-demo/config"

	"github.com/avast/retry-go/v4"
	"github.com/qdrant/go-client/qdrant"
)

const searchAttempts = 3

// QdrantStore wraps the qdrant gRPC client for the two collections: the fixed
// statutory corpus and the per-user private document collection.
type QdrantStore struct {
	client          *qdrant.Client
	legalCollection string
	userCollection  string
	scoreThreshold  float32
}

func NewQdrantStore() (*QdrantStore, error) {
	cfg := config.Cfg.Qdrant

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &QdrantStore{
		client:          client,
		legalCollection: cfg.LegalCollection,
		userCollection:  cfg.UserCollection,
		scoreThreshold:  cfg.ScoreThreshold,
	}, nil
}

// SearchLegal queries the statutory corpus.
func (s *QdrantStore) SearchLegal(ctx context.Context, vector []float32, topK int) ([]Passage, error) {
	return s.search(ctx, s.legalCollection, vector, nil, topK)
}

// SearchUser queries the private collection, restricted to the caller's
// documents via the user_id payload filter.
func (s *QdrantStore) SearchUser(ctx context.Context, vector []float32, userID string, topK int) ([]Passage, error) {
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("user_id", userID),
		},
	}
	return s.search(ctx, s.userCollection, vector, filter, topK)
}

func (s *QdrantStore) search(ctx context.Context, collection string, vector []float32, filter *qdrant.Filter, topK int) ([]Passage, error) {
	points, err := retry.DoWithData(
		func() ([]*qdrant.ScoredPoint, error) {
			return s.client.Query(ctx, &qdrant.QueryPoints{
				CollectionName: collection,
				Query:          qdrant.NewQueryDense(vector),
				Limit:          qdrant.PtrOf(uint64(topK)),
				Filter:         filter,
				ScoreThreshold: qdrant.PtrOf(s.scoreThreshold),
				WithPayload:    qdrant.NewWithPayload(true),
			})
		},
		retry.Context(ctx),
		retry.Attempts(searchAttempts),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			slog.Warn("Retrying qdrant query",
				"attempt", n+1,
				"collection", collection,
				"err", err)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("qdrant query failed for %s: %w", collection, err)
	}

	passages := make([]Passage, 0, len(points))
	for _, p := range points {
		passages = append(passages, passageFromPoint(p))
	}
	return passages, nil
}

func passageFromPoint(p *qdrant.ScoredPoint) Passage {
	payload := p.GetPayload()

	get := func(keys ...string) string {
		for _, key := range keys {
			if v, ok := payload[key]; ok {
				if s := v.GetStringValue(); s != "" {
					return s
				}
			}
		}
		return ""
	}

	sourceType := get("source_type")
	if sourceType == "" {
		sourceType = SourceTypeLegal
	}

	return Passage{
		ID:          pointIDString(p.GetId()),
		Text:        get("text", "content"),
		DieuNumber:  get("dieu_number", "dieu"),
		KhoanNumber: get("khoan_number", "khoan"),
		FileName:    get("file_name"),
		SourceType:  sourceType,
		Score:       float64(p.GetScore()),
	}
}

func pointIDString(id *qdrant.PointId) string {
	if id == nil {
		return ""
	}
	if uuid := id.GetUuid(); uuid != "" {
		return uuid
	}
	return fmt.Sprintf("%d", id.GetNum())
}

type Point struct {
	ID      string
	Vector  []float32
	Payload map[string]any
}

// UpsertUserPoints writes indexed chunks into the user collection. Wait is set
// so the points are searchable once the call returns; ingestion completion
// implies index visibility.
func (s *QdrantStore) UpsertUserPoints(ctx context.Context, points []Point) error {
	qdrantPoints := make([]*qdrant.PointStruct, 0, len(points))
	for _, p := range points {
		qdrantPoints = append(qdrantPoints, &qdrant.PointStruct{
			Id:      qdrant.NewID(p.ID),
			Vectors: qdrant.NewVectorsDense(p.Vector),
			Payload: qdrant.NewValueMap(p.Payload),
		})
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.userCollection,
		Points:         qdrantPoints,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}
	return nil
}

// DeleteUserDocument removes every point of a document from the user
// collection.
func (s *QdrantStore) DeleteUserDocument(ctx context.Context, docID string) error {
	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.userCollection,
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("doc_id", docID),
			},
		}),
		Wait: qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant delete failed for doc %s: %w", docID, err)
	}
	return nil
}

// HealthCheck reports reachability plus the visible collection names.
func (s *QdrantStore) HealthCheck(ctx context.Context) ([]string, error) {
	if _, err := s.client.HealthCheck(ctx); err != nil {
		return nil, err
	}
	return s.client.ListCollections(ctx)
}
