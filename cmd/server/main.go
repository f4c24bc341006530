package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Quockhanh0712/vielegalrag-demo/config"
	"github.com/Quockhanh0712/vielegalrag-demo/controller"
	"github.com/Quockhanh0712/vielegalrag-demo/dao"
	"github.com/Quockhanh0712/vielegalrag-demo/router"
	"github.com/Quockhanh0712/vielegalrag-demo/service/ingest"
	"github.com/Quockhanh0712/vielegalrag-demo/service/llm"
	"github.com/Quockhanh0712/vielegalrag-demo/service/rag"
	"github.com/Quockhanh0712/vielegalrag-demo/service/rerank"
	"github.com/Quockhanh0712/vielegalrag-demo/service/retrieval"
	"github.com/Quockhanh0712/vielegalrag-demo/service/status"
	"github.com/Quockhanh0712/vielegalrag-demo/service/titles"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using process environment")
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	config.MustLoad(configPath)

	gin.SetMode(config.Cfg.Server.Mode)

	if err := dao.Init(); err != nil {
		slog.Error("Failed to initialize database", "err", err)
		os.Exit(1)
	}

	embedder, err := newEmbedder()
	if err != nil {
		slog.Error("Failed to create embedder", "err", err)
		os.Exit(1)
	}

	store, err := retrieval.NewQdrantStore()
	if err != nil {
		slog.Error("Failed to create qdrant store", "err", err)
		os.Exit(1)
	}

	llmRouter := llm.NewRouter()
	pipeline := rag.NewPipeline(embedder, retrieval.NewSearcher(store), rerank.NewCrossEncoder(), llmRouter)
	ingestSvc := ingest.NewService(embedder, store, ingest.NewProgressTracker())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	refiner := titles.NewRefiner(llmRouter)
	refiner.Run(ctx)

	engine := router.Register(router.Controllers{
		Chat:    controller.NewChatController(pipeline, refiner),
		Session: controller.NewSessionController(),
		Search:  controller.NewSearchController(pipeline),
		Upload:  controller.NewUploadController(ingestSvc),
		LLM:     controller.NewLLMController(llmRouter),
		Status:  controller.NewStatusController(status.NewChecker(store, llmRouter)),
	})

	srv := &http.Server{
		Addr:    net.JoinHostPort(config.Cfg.Server.Host, config.Cfg.Server.Port),
		Handler: engine,
	}

	go func() {
		slog.Info("Server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Forced shutdown", "err", err)
	}
}

func newEmbedder() (embeddings.Embedder, error) {
	client, err := ollama.New(
		ollama.WithModel(config.Cfg.Ollama.EmbeddingModel),
		ollama.WithServerURL(config.Cfg.Ollama.Host),
	)
	if err != nil {
		return nil, err
	}

	return embeddings.NewEmbedder(client,
		embeddings.WithBatchSize(config.Cfg.Ollama.EmbeddingBatchSize),
	)
}
