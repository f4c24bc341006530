package status

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Quockhanh0712/vielegalrag-demo/config"
	"github.com/Quockhanh0712/vielegalrag-demo/dao"
	"github.com/Quockhanh0712/vielegalrag-demo/service/llm"
	"github.com/Quockhanh0712/vielegalrag-demo/service/retrieval"
	"github.com/Quockhanh0712/vielegalrag-demo/utils"

	"golang.org/x/sync/errgroup"
)

const probeTimeout = 5 * time.Second

const (
	StateHealthy     = "healthy"
	StateDegraded    = "degraded"
	StateUnavailable = "unavailable"
)

type ComponentStatus struct {
	Status    string  `json:"status"`
	Message   string  `json:"message,omitempty"`
	LatencyMs float64 `json:"latency_ms,omitempty"`
}

type QdrantStatus struct {
	ComponentStatus
	Collections []string `json:"collections,omitempty"`
}

type OllamaStatus struct {
	ComponentStatus
	Models []string `json:"models,omitempty"`
}

type EmbeddingStatus struct {
	ComponentStatus
	Model string `json:"model"`
}

// Report is the aggregate health snapshot served by the status endpoint.
type Report struct {
	Status    string          `json:"status"`
	Qdrant    QdrantStatus    `json:"qdrant"`
	Ollama    OllamaStatus    `json:"ollama"`
	Embedding EmbeddingStatus `json:"embedding"`
	Database  ComponentStatus `json:"database"`
	LLM       llm.ActiveInfo  `json:"llm"`
	Timestamp time.Time       `json:"timestamp"`
}

// Checker probes the backing components in parallel.
type Checker struct {
	Store  *retrieval.QdrantStore
	Router *llm.Router
	client *http.Client
}

func NewChecker(store *retrieval.QdrantStore, router *llm.Router) *Checker {
	return &Checker{
		Store:  store,
		Router: router,
		client: utils.NewHTTPClient(utils.WithTimeout(probeTimeout)),
	}
}

// Check never returns an error: a failed probe degrades the report instead of
// failing the endpoint.
func (c *Checker) Check(ctx context.Context) Report {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	report := Report{LLM: c.Router.Active()}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		report.Qdrant = c.probeQdrant(gctx)
		return nil
	})
	g.Go(func() error {
		report.Ollama = c.probeOllama(gctx)
		return nil
	})
	g.Go(func() error {
		report.Database = c.probeDatabase(gctx)
		return nil
	})

	_ = g.Wait()

	// Embedding runs on the ollama server, so it shares ollama's reachability.
	report.Embedding = EmbeddingStatus{
		ComponentStatus: report.Ollama.ComponentStatus,
		Model:           config.Cfg.Ollama.EmbeddingModel,
	}

	report.Timestamp = time.Now().UTC()
	report.Status = overallState(
		report.Qdrant.Status,
		report.Ollama.Status,
		report.Database.Status,
	)
	return report
}

func (c *Checker) probeQdrant(ctx context.Context) QdrantStatus {
	start := time.Now()
	collections, err := c.Store.HealthCheck(ctx)
	latency := elapsedMs(start)
	if err != nil {
		return QdrantStatus{ComponentStatus: ComponentStatus{
			Status:    StateUnavailable,
			Message:   err.Error(),
			LatencyMs: latency,
		}}
	}
	return QdrantStatus{
		ComponentStatus: ComponentStatus{Status: StateHealthy, LatencyMs: latency},
		Collections:     collections,
	}
}

func (c *Checker) probeOllama(ctx context.Context) OllamaStatus {
	url := strings.TrimSuffix(config.Cfg.Ollama.Host, "/") + "/api/tags"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return OllamaStatus{ComponentStatus: ComponentStatus{
			Status:  StateUnavailable,
			Message: err.Error(),
		}}
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	latency := elapsedMs(start)
	if err != nil {
		return OllamaStatus{ComponentStatus: ComponentStatus{
			Status:    StateUnavailable,
			Message:   err.Error(),
			LatencyMs: latency,
		}}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return OllamaStatus{ComponentStatus: ComponentStatus{
			Status:    StateUnavailable,
			Message:   fmt.Sprintf("unexpected status: %d", resp.StatusCode),
			LatencyMs: latency,
		}}
	}

	var body struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return OllamaStatus{ComponentStatus: ComponentStatus{
			Status:    StateDegraded,
			Message:   "unreadable model list",
			LatencyMs: latency,
		}}
	}

	models := make([]string, 0, len(body.Models))
	for _, m := range body.Models {
		models = append(models, m.Name)
	}

	return OllamaStatus{
		ComponentStatus: ComponentStatus{Status: StateHealthy, LatencyMs: latency},
		Models:          models,
	}
}

func (c *Checker) probeDatabase(ctx context.Context) ComponentStatus {
	start := time.Now()
	if err := dao.Ping(ctx); err != nil {
		return ComponentStatus{Status: StateUnavailable, Message: err.Error(), LatencyMs: elapsedMs(start)}
	}
	return ComponentStatus{Status: StateHealthy, LatencyMs: elapsedMs(start)}
}

func elapsedMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}

func overallState(states ...string) string {
	healthy := 0
	for _, s := range states {
		if s == StateHealthy {
			healthy++
		}
	}
	switch healthy {
	case len(states):
		return StateHealthy
	case 0:
		return StateUnavailable
	default:
		return StateDegraded
	}
}
