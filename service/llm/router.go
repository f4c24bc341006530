package llm

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/Quockhanh0712/vielegalrag-demo/config"
	"github.com/Quockhanh0712/vielegalrag-demo/errs"
	"github.com/Quockhanh0712/vielegalrag-demo/utils"

	"github.com/avast/retry-go/v4"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

const (
	generateAttempts = 3

	// 配置 300s 超时时间处理 LLM 生成
	generateTimeout = 300 * time.Second
)

var keyEnvVars = map[Provider]string{
	ProviderFPTCloud:  "FPT_CLOUD_API_KEY",
	ProviderOpenAI:    "OPENAI_API_KEY",
	ProviderAnthropic: "ANTHROPIC_API_KEY",
	ProviderGroq:      "GROQ_API_KEY",
}

// Router holds the process-wide active provider+model pair. The pair is read
// and swapped atomically under the mutex, so concurrent switches can never
// interleave into a mixed pair.
type Router struct {
	mu     sync.RWMutex
	active Provider
	model  string
	keys   map[Provider]string
}

func NewRouter() *Router {
	r := &Router{
		active: ProviderLocalOllama,
		model:  providerConfigs[ProviderLocalOllama].DefaultModel,
		keys:   make(map[Provider]string),
	}

	for provider, envVar := range keyEnvVars {
		if key := os.Getenv(envVar); key != "" {
			r.keys[provider] = key
		}
	}

	// FPT Cloud is the production default when its key is present at boot.
	if _, ok := r.keys[ProviderFPTCloud]; ok {
		r.active = ProviderFPTCloud
		r.model = providerConfigs[ProviderFPTCloud].DefaultModel
	}

	slog.Info("LLM router initialized",
		"provider", r.active,
		"model", r.model,
		"keys_loaded", len(r.keys))

	return r
}

func (r *Router) List() []ProviderInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	providers := make([]ProviderInfo, 0, len(providerOrder))
	for _, p := range providerOrder {
		cfg := providerConfigs[p]
		providers = append(providers, ProviderInfo{
			ID:              string(p),
			Name:            cfg.Name,
			Models:          cfg.Models,
			DefaultModel:    cfg.DefaultModel,
			HasAPIKey:       r.hasKeyLocked(p),
			CostPer1MInput:  cfg.CostPer1MInput,
			CostPer1MOutput: cfg.CostPer1MOutput,
		})
	}
	return providers
}

func (r *Router) Active() ActiveInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg := providerConfigs[r.active]
	return ActiveInfo{
		Provider:     string(r.active),
		ProviderName: cfg.Name,
		Model:        r.model,
		HasAPIKey:    r.hasKeyLocked(r.active),
	}
}

// SetActive switches the routed provider+model, optionally storing an API key
// first. Switching to a keyless non-local provider fails with a conflict the
// caller can branch on; the previously active pair stays untouched.
func (r *Router) SetActive(provider Provider, model, apiKey string) (ActiveInfo, error) {
	if !provider.valid() {
		return ActiveInfo{}, errs.Ef(errs.KindValidation, "unknown_provider", "unknown provider: %s", provider)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if apiKey != "" {
		r.keys[provider] = apiKey
	}

	if !r.hasKeyLocked(provider) {
		return ActiveInfo{}, errs.Ef(errs.KindConflict, "missing_api_key",
			"provider %s has no API key configured", provider)
	}

	if model == "" {
		model = providerConfigs[provider].DefaultModel
	}

	r.active = provider
	r.model = model

	slog.Info("LLM provider switched", "provider", provider, "model", model)

	cfg := providerConfigs[provider]
	return ActiveInfo{
		Provider:     string(provider),
		ProviderName: cfg.Name,
		Model:        r.model,
		HasAPIKey:    true,
	}, nil
}

func (r *Router) hasKeyLocked(p Provider) bool {
	if p == ProviderLocalOllama {
		return true
	}
	return r.keys[p] != ""
}

// snapshot reads the active pair and its key in one locked step.
func (r *Router) snapshot() (Provider, string, string) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active, r.model, r.keys[r.active]
}

func (r *Router) client() (llms.Model, Provider, string, error) {
	provider, model, key := r.snapshot()
	cfg := providerConfigs[provider]

	httpClient := utils.NewHTTPClient(utils.WithTimeout(generateTimeout))

	switch provider {
	case ProviderLocalOllama:
		client, err := ollama.New(
			ollama.WithModel(model),
			ollama.WithServerURL(config.Cfg.Ollama.Host),
			ollama.WithHTTPClient(httpClient),
		)
		if err != nil {
			return nil, provider, model, fmt.Errorf("failed to create ollama client: %w", err)
		}
		return client, provider, model, nil

	case ProviderAnthropic:
		client, err := anthropic.New(
			anthropic.WithModel(model),
			anthropic.WithToken(key),
			anthropic.WithHTTPClient(httpClient),
		)
		if err != nil {
			return nil, provider, model, fmt.Errorf("failed to create anthropic client: %w", err)
		}
		return client, provider, model, nil

	default:
		// FPT Cloud, OpenAI and Groq all speak the OpenAI wire protocol.
		client, err := openai.New(
			openai.WithModel(model),
			openai.WithToken(key),
			openai.WithBaseURL(cfg.BaseURL),
			openai.WithHTTPClient(httpClient),
		)
		if err != nil {
			return nil, provider, model, fmt.Errorf("failed to create llm client: %w", err)
		}
		return client, provider, model, nil
	}
}

// GenerationResult is one completed LLM call with token accounting.
type GenerationResult struct {
	Content      string
	Provider     string
	Model        string
	InputTokens  int
	OutputTokens int
	CostUSD      float64
}

// Generate runs one grounded completion against the active provider.
func (r *Router) Generate(ctx context.Context, systemPrompt, prompt string, temperature float64, maxTokens int) (*GenerationResult, error) {
	return r.GenerateWithModel(ctx, "", systemPrompt, prompt, temperature, maxTokens)
}

// GenerateWithModel is Generate with a per-call model override on the active
// provider. An empty override uses the routed model.
func (r *Router) GenerateWithModel(ctx context.Context, modelOverride, systemPrompt, prompt string, temperature float64, maxTokens int) (*GenerationResult, error) {
	client, provider, model, err := r.client()
	if err != nil {
		return nil, errs.Upstream("llm_unavailable", "failed to initialize LLM client", err)
	}

	callOpts := []llms.CallOption{
		llms.WithTemperature(temperature),
		llms.WithMaxTokens(maxTokens),
	}
	if modelOverride != "" {
		model = modelOverride
		callOpts = append(callOpts, llms.WithModel(model))
	}

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}

	resp, err := retry.DoWithData(
		func() (*llms.ContentResponse, error) {
			return client.GenerateContent(ctx, messages, callOpts...)
		},
		retry.Context(ctx),
		retry.Attempts(generateAttempts),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			slog.Warn("Retrying LLM generation",
				"attempt", n+1,
				"provider", provider,
				"err", err)
		}),
	)
	if err != nil {
		return nil, errs.Upstream("llm_failed", "LLM generation failed", err)
	}

	if len(resp.Choices) == 0 {
		return nil, errs.Upstream("llm_failed", "LLM returned no choices", nil)
	}

	choice := resp.Choices[0]
	inputTokens := intFromGenerationInfo(choice.GenerationInfo, "PromptTokens", "prompt_tokens")
	outputTokens := intFromGenerationInfo(choice.GenerationInfo, "CompletionTokens", "completion_tokens")

	cfg := providerConfigs[provider]
	cost := float64(inputTokens)/1_000_000*cfg.CostPer1MInput +
		float64(outputTokens)/1_000_000*cfg.CostPer1MOutput

	return &GenerationResult{
		Content:      choice.Content,
		Provider:     string(provider),
		Model:        model,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		CostUSD:      cost,
	}, nil
}

func intFromGenerationInfo(info map[string]any, keys ...string) int {
	for _, key := range keys {
		switch v := info[key].(type) {
		case int:
			return v
		case int64:
			return int(v)
		case float64:
			return int(v)
		}
	}
	return 0
}

// TestResult is the outcome of a provider smoke test. Provider errors are
// reported in-band, not as transport failures.
type TestResult struct {
	Success      bool    `json:"success"`
	Content      *string `json:"content,omitempty"`
	Provider     string  `json:"provider,omitempty"`
	Model        string  `json:"model,omitempty"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	CostUSD      float64 `json:"cost_usd"`
	Error        *string `json:"error,omitempty"`
}

const testSystemPrompt = "You are a helpful assistant. Respond briefly."

// Test exercises the active provider end-to-end without touching any session
// state.
func (r *Router) Test(ctx context.Context, message string) TestResult {
	result, err := r.Generate(ctx, testSystemPrompt, message, 0.7, 256)
	if err != nil {
		slog.Error("LLM test failed", "err", err)
		msg := errs.MessageOf(err)
		return TestResult{Success: false, Error: &msg}
	}

	return TestResult{
		Success:      true,
		Content:      &result.Content,
		Provider:     result.Provider,
		Model:        result.Model,
		InputTokens:  result.InputTokens,
		OutputTokens: result.OutputTokens,
		CostUSD:      result.CostUSD,
	}
}
