package response

import "time"

type SessionResponse struct {
	SessionID    string    `json:"session_id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int64     `json:"message_count"`
}

type GetSessionsResponse struct {
	Sessions []SessionResponse `json:"sessions"`
	Total    int               `json:"total"`
}

type HistoryMessageResponse struct {
	ID         uint             `json:"id"`
	Role       string           `json:"role"`
	Content    string           `json:"content"`
	CreatedAt  time.Time        `json:"created_at"`
	SearchMode string           `json:"search_mode,omitempty"`
	Sources    []SourceResponse `json:"sources,omitempty"`
	Metrics    *MetricsResponse `json:"metrics,omitempty"`
}

type GetHistoryResponse struct {
	SessionID string                   `json:"session_id"`
	Title     string                   `json:"title"`
	Messages  []HistoryMessageResponse `json:"messages"`
}
