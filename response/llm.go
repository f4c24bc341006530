package response

import "github.com/Quockhanh0712/vielegalrag-demo/service/llm"

type GetProvidersResponse struct {
	Providers []llm.ProviderInfo `json:"providers"`
}

type SetProviderResponse struct {
	Status   string `json:"status"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Message  string `json:"message"`
}
