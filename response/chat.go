package response

type SourceResponse struct {
	Text        string   `json:"text"`
	SourceType  string   `json:"source_type"`
	DieuNumber  string   `json:"dieu_number,omitempty"`
	KhoanNumber string   `json:"khoan_number,omitempty"`
	FileName    string   `json:"file_name,omitempty"`
	Score       float64  `json:"score"`
	RerankScore *float64 `json:"rerank_score,omitempty"`
	Rank        int      `json:"rank"`
}

type MetricsResponse struct {
	Grade              string   `json:"grade"`
	BERTScoreF1        float64  `json:"bertscore_f1"`
	HallucinationScore *float64 `json:"hallucination_score,omitempty"`
	FactualityScore    *float64 `json:"factuality_score,omitempty"`
	ContextRelevance   *float64 `json:"context_relevance,omitempty"`
	Feedback           *string  `json:"feedback,omitempty"`
}

type ChatResponse struct {
	Answer         string           `json:"answer"`
	Sources        []SourceResponse `json:"sources"`
	Metrics        *MetricsResponse `json:"metrics,omitempty"`
	MessageID      uint             `json:"message_id"`
	SessionID      string           `json:"session_id"`
	SearchMode     string           `json:"search_mode"`
	RerankerUsed   bool             `json:"reranker_used"`
	SearchTimeMs   float64          `json:"search_time_ms"`
	GenerateTimeMs float64          `json:"generate_time_ms"`
}
