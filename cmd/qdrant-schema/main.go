package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/Quockhanh0712/vielegalrag-demo/config"

	"github.com/joho/godotenv"
	"github.com/qdrant/go-client/qdrant"
)

// Creates the statutory and user-document collections plus the payload indexes
// the search filters rely on. Safe to re-run: existing collections are skipped.
func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using process environment")
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	config.MustLoad(configPath)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg := config.Cfg.Qdrant
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		slog.Error("Failed to create qdrant client", "err", err)
		os.Exit(1)
	}

	if err := ensureCollection(ctx, client, cfg.LegalCollection, cfg.VectorDim); err != nil {
		slog.Error("Failed to create collection", "collection", cfg.LegalCollection, "err", err)
		os.Exit(1)
	}

	if err := ensureCollection(ctx, client, cfg.UserCollection, cfg.VectorDim); err != nil {
		slog.Error("Failed to create collection", "collection", cfg.UserCollection, "err", err)
		os.Exit(1)
	}

	// user/hybrid 检索和删除依赖这两个 payload 过滤字段
	for _, field := range []string{"user_id", "doc_id"} {
		if err := ensureKeywordIndex(ctx, client, cfg.UserCollection, field); err != nil {
			slog.Error("Failed to create payload index",
				"collection", cfg.UserCollection,
				"field", field,
				"err", err)
			os.Exit(1)
		}
	}

	slog.Info("Qdrant schema ready",
		"legal_collection", cfg.LegalCollection,
		"user_collection", cfg.UserCollection,
		"dim", cfg.VectorDim)
}

func ensureCollection(ctx context.Context, client *qdrant.Client, name string, dim uint64) error {
	exists, err := client.CollectionExists(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		slog.Info("Collection already exists", "collection", name)
		return nil
	}

	return client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dim,
			Distance: qdrant.Distance_Cosine,
		}),
	})
}

func ensureKeywordIndex(ctx context.Context, client *qdrant.Client, collection, field string) error {
	_, err := client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: collection,
		FieldName:      field,
		FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
	})
	return err
}
