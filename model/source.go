package model

import "time"

// MessageSource pins the citation snapshot of an assistant message, so a
// history replay shows exactly what the answer was grounded on even after the
// index moves.
type MessageSource struct {
	ID          uint    `gorm:"primarykey" json:"id"`
	MessageID   uint    `gorm:"not null;index" json:"message_id"`
	SourceText  string  `gorm:"type:text" json:"source_text"`
	SourceType  string  `gorm:"not null;default:legal" json:"source_type"`
	DieuNumber  string  `json:"dieu_number"`
	KhoanNumber string  `json:"khoan_number"`
	FileName    string  `json:"file_name"`
	Score       float64 `json:"score"`
	Rank        int     `json:"rank"`
}

func (MessageSource) TableName() string {
	return "message_source"
}

// AnswerMetrics holds the automated quality scores attached to an assistant
// message at creation time. Optional sub-scores stay NULL when the grader
// degraded, never a sentinel.
type AnswerMetrics struct {
	ID                 uint      `gorm:"primarykey" json:"id"`
	CreatedAt          time.Time `json:"created_at"`
	MessageID          uint      `gorm:"not null;uniqueIndex" json:"message_id"`
	Grade              string    `gorm:"not null" json:"grade"`
	BERTScoreF1        float64   `json:"bertscore_f1"`
	HallucinationScore *float64  `json:"hallucination_score"`
	FactualityScore    *float64  `json:"factuality_score"`
	ContextRelevance   *float64  `json:"context_relevance"`
	Feedback           *string   `gorm:"type:text" json:"feedback"`
	NumSources         int       `json:"num_sources"`
}

func (AnswerMetrics) TableName() string {
	return "answer_metrics"
}
