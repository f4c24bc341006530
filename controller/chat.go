package controller

import (
	"net/http"
	"strings"

	"github.com/Quockhanh0712/vielegalrag-demo/config"
	"github.com/Quockhanh0712/vielegalrag-demo/dao"
	"github.com/Quockhanh0712/vielegalrag-demo/errs"
	"github.com/Quockhanh0712/vielegalrag-demo/model"
	"github.com/Quockhanh0712/vielegalrag-demo/request"
	"github.com/Quockhanh0712/vielegalrag-demo/response"
	"github.com/Quockhanh0712/vielegalrag-demo/service/grading"
	"github.com/Quockhanh0712/vielegalrag-demo/service/rag"
	"github.com/Quockhanh0712/vielegalrag-demo/service/retrieval"
	"github.com/Quockhanh0712/vielegalrag-demo/service/titles"
	"github.com/Quockhanh0712/vielegalrag-demo/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ChatController struct {
	pipeline *rag.Pipeline
	titles   *titles.Refiner

	// 每个会话同一时间只处理一轮对话
	sessions *utils.KeyedMutex
}

func NewChatController(pipeline *rag.Pipeline, refiner *titles.Refiner) *ChatController {
	return &ChatController{
		pipeline: pipeline,
		titles:   refiner,
		sessions: utils.NewKeyedMutex(),
	}
}

func (ctl *ChatController) Chat(c *gin.Context) {
	var req request.Chat
	if err := c.ShouldBindJSON(&req); err != nil {
		failParse(c, err)
		return
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		fail(c, errs.Validation("empty_message", "message must not be empty"))
		return
	}

	searchMode := req.SearchMode
	if searchMode == "" {
		searchMode = retrieval.ModeHybrid
	}
	rerankerEnabled := true
	if req.RerankerEnabled != nil {
		rerankerEnabled = *req.RerankerEnabled
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	ctl.sessions.Lock(sessionID)
	defer ctl.sessions.Unlock(sessionID)

	result, err := ctl.pipeline.Query(c.Request.Context(), message, req.UserID,
		searchMode, config.Cfg.RAG.TopK, rerankerEnabled)
	if err != nil {
		fail(c, err)
		return
	}

	record, err := dao.AppendTurn(dao.AppendTurnInput{
		UserID:          req.UserID,
		SessionID:       sessionID,
		UserMessage:     message,
		AssistantAnswer: result.Answer,
		SearchMode:      searchMode,
		RerankerEnabled: result.RerankerUsed,
		Sources:         sourceRows(result.Sources),
		Metrics:         metricsRow(result.Metrics, len(result.Sources)),
	})
	if err != nil {
		fail(c, errs.Wrap(errs.KindInternal, "persist_failed", "failed to save chat turn", err))
		return
	}

	if record.SessionCreated {
		ctl.titles.Register(titles.TitleTask{
			SessionID: sessionID,
			Question:  message,
		})
	}

	c.JSON(http.StatusOK, response.ChatResponse{
		Answer:         result.Answer,
		Sources:        sourceResponses(result.Sources),
		Metrics:        metricsResponse(result.Metrics),
		MessageID:      record.AssistantMessageID,
		SessionID:      sessionID,
		SearchMode:     searchMode,
		RerankerUsed:   result.RerankerUsed,
		SearchTimeMs:   result.SearchTimeMs,
		GenerateTimeMs: result.GenerateTimeMs,
	})
}

func sourceRows(passages []retrieval.Passage) []model.MessageSource {
	if !config.Cfg.Chat.PersistSources {
		return nil
	}

	rows := make([]model.MessageSource, 0, len(passages))
	for _, p := range passages {
		rows = append(rows, model.MessageSource{
			SourceText:  p.Text,
			SourceType:  p.SourceType,
			DieuNumber:  p.DieuNumber,
			KhoanNumber: p.KhoanNumber,
			FileName:    p.FileName,
			Score:       p.Score,
			Rank:        p.Rank,
		})
	}
	return rows
}

func metricsRow(m *grading.Metrics, numSources int) *model.AnswerMetrics {
	if m == nil {
		return nil
	}
	return &model.AnswerMetrics{
		Grade:              m.Grade,
		BERTScoreF1:        m.BERTScoreF1,
		HallucinationScore: m.HallucinationScore,
		FactualityScore:    m.FactualityScore,
		ContextRelevance:   m.ContextRelevance,
		Feedback:           m.Feedback,
		NumSources:         numSources,
	}
}

func sourceResponses(passages []retrieval.Passage) []response.SourceResponse {
	out := make([]response.SourceResponse, 0, len(passages))
	for _, p := range passages {
		out = append(out, response.SourceResponse{
			Text:        p.Text,
			SourceType:  p.SourceType,
			DieuNumber:  p.DieuNumber,
			KhoanNumber: p.KhoanNumber,
			FileName:    p.FileName,
			Score:       p.Score,
			RerankScore: p.RerankScore,
			Rank:        p.Rank,
		})
	}
	return out
}

func metricsResponse(m *grading.Metrics) *response.MetricsResponse {
	if m == nil {
		return nil
	}
	return &response.MetricsResponse{
		Grade:              m.Grade,
		BERTScoreF1:        m.BERTScoreF1,
		HallucinationScore: m.HallucinationScore,
		FactualityScore:    m.FactualityScore,
		ContextRelevance:   m.ContextRelevance,
		Feedback:           m.Feedback,
	}
}
