package request

type Chat struct {
	Message         string `json:"message" binding:"required,max=4096"`
	UserID          string `json:"user_id" binding:"required,max=64"`
	SessionID       string `json:"session_id" binding:"omitempty,max=64"`
	SearchMode      string `json:"search_mode" binding:"omitempty,oneof=legal user hybrid"`
	RerankerEnabled *bool  `json:"reranker_enabled"`
}

type Search struct {
	Query           string `json:"query" binding:"required,max=1024"`
	UserID          string `json:"user_id" binding:"omitempty,max=64"`
	SearchMode      string `json:"search_mode" binding:"omitempty,oneof=legal user hybrid"`
	TopK            int    `json:"top_k" binding:"omitempty,min=1,max=50"`
	RerankerEnabled *bool  `json:"reranker_enabled"`
}

type SetProvider struct {
	Provider string `json:"provider" binding:"required"`
	Model    string `json:"model"`
	APIKey   string `json:"api_key"`
}

type TestChat struct {
	Message string `json:"message" binding:"required,max=4096"`
}
