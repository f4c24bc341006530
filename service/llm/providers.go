package llm

// Provider identifies an LLM backend.
type Provider string

const (
	ProviderLocalOllama Provider = "local_ollama"
	ProviderFPTCloud    Provider = "fpt_cloud"
	ProviderOpenAI      Provider = "openai"
	ProviderAnthropic   Provider = "anthropic"
	ProviderGroq        Provider = "groq"
)

// ProviderConfig describes one backend: endpoint, model catalog and USD cost
// per 1M tokens.
type ProviderConfig struct {
	Name            string
	BaseURL         string
	DefaultModel    string
	Models          []string
	CostPer1MInput  float64
	CostPer1MOutput float64
}

var providerConfigs = map[Provider]ProviderConfig{
	ProviderLocalOllama: {
		Name:            "Local Ollama",
		BaseURL:         "http://localhost:11434",
		DefaultModel:    "qwen2.5:3b",
		Models:          []string{"qwen2.5:3b", "qwen2.5:7b", "llama3.1:8b"},
		CostPer1MInput:  0.0,
		CostPer1MOutput: 0.0,
	},
	ProviderFPTCloud: {
		Name:            "FPT Cloud",
		BaseURL:         "https://mkp-api.fptcloud.com/v1",
		DefaultModel:    "Qwen3-32B",
		Models:          []string{"Qwen3-32B", "Qwen3-14B", "Qwen3-8B"},
		CostPer1MInput:  0.06,
		CostPer1MOutput: 0.08,
	},
	ProviderOpenAI: {
		Name:            "OpenAI",
		BaseURL:         "https://api.openai.com/v1",
		DefaultModel:    "gpt-4o-mini",
		Models:          []string{"gpt-4o-mini", "gpt-4o", "gpt-3.5-turbo"},
		CostPer1MInput:  0.15,
		CostPer1MOutput: 0.60,
	},
	ProviderAnthropic: {
		Name:            "Anthropic",
		BaseURL:         "https://api.anthropic.com",
		DefaultModel:    "claude-3.5-sonnet",
		Models:          []string{"claude-3.5-sonnet", "claude-3-haiku"},
		CostPer1MInput:  3.0,
		CostPer1MOutput: 15.0,
	},
	ProviderGroq: {
		Name:            "Groq",
		BaseURL:         "https://api.groq.com/openai/v1",
		DefaultModel:    "llama-3.1-70b-versatile",
		Models:          []string{"llama-3.1-70b-versatile", "llama-3.1-8b-instant"},
		CostPer1MInput:  0.59,
		CostPer1MOutput: 0.79,
	},
}

// providerOrder keeps listing output stable.
var providerOrder = []Provider{
	ProviderLocalOllama,
	ProviderFPTCloud,
	ProviderOpenAI,
	ProviderAnthropic,
	ProviderGroq,
}

func (p Provider) valid() bool {
	_, ok := providerConfigs[p]
	return ok
}

// ProviderInfo is the client-visible description of a provider. The API key
// itself never appears here, only its presence.
type ProviderInfo struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Models          []string `json:"models"`
	DefaultModel    string   `json:"default_model"`
	HasAPIKey       bool     `json:"has_api_key"`
	CostPer1MInput  float64  `json:"cost_per_1m_input"`
	CostPer1MOutput float64  `json:"cost_per_1m_output"`
}

// ActiveInfo describes the currently routed provider+model pair.
type ActiveInfo struct {
	Provider     string `json:"provider"`
	ProviderName string `json:"provider_name"`
	Model        string `json:"model"`
	HasAPIKey    bool   `json:"has_api_key"`
}
