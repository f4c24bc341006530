package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Quockhanh0712/vielegalrag-demo/dao"
	"github.com/Quockhanh0712/vielegalrag-demo/errs"
	"github.com/Quockhanh0712/vielegalrag-demo/model"
	"github.com/Quockhanh0712/vielegalrag-demo/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const defaultSessionLimit = 20

type SessionController struct{}

func NewSessionController() *SessionController {
	return &SessionController{}
}

func (ctl *SessionController) GetSessions(c *gin.Context) {
	userID := c.Param("user_id")
	if userID == "" {
		fail(c, errs.Validation("missing_user_id", "user_id is required"))
		return
	}

	limit := defaultSessionLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			fail(c, errs.Validation("invalid_limit", "limit must be an integer in [1,100]"))
			return
		}
		limit = parsed
	}

	sessions, err := dao.ListSessionsByUserID(userID, limit)
	if err != nil {
		fail(c, errs.Wrap(errs.KindInternal, "list_sessions_failed", "failed to list sessions", err))
		return
	}

	resp := response.GetSessionsResponse{
		Sessions: make([]response.SessionResponse, 0, len(sessions)),
		Total:    len(sessions),
	}
	for _, s := range sessions {
		count, err := dao.CountMessagesBySessionID(s.SessionID)
		if err != nil {
			fail(c, errs.Wrap(errs.KindInternal, "list_sessions_failed", "failed to list sessions", err))
			return
		}
		resp.Sessions = append(resp.Sessions, response.SessionResponse{
			SessionID:    s.SessionID,
			Title:        s.Title,
			CreatedAt:    s.CreatedAt,
			UpdatedAt:    s.UpdatedAt,
			MessageCount: count,
		})
	}

	c.JSON(http.StatusOK, resp)
}

func (ctl *SessionController) GetHistory(c *gin.Context) {
	sessionID := c.Param("session_id")

	session, err := dao.GetSessionBySessionID(sessionID)
	if err != nil {
		fail(c, errs.Wrap(errs.KindInternal, "get_history_failed", "failed to load session", err))
		return
	}
	if session == nil {
		fail(c, errs.NotFound("session_not_found", "session not found"))
		return
	}

	messages, err := dao.GetMessagesBySessionID(sessionID)
	if err != nil {
		fail(c, errs.Wrap(errs.KindInternal, "get_history_failed", "failed to load messages", err))
		return
	}

	assistantIDs := make([]uint, 0, len(messages))
	for _, m := range messages {
		if m.Role == model.RoleAssistant {
			assistantIDs = append(assistantIDs, m.ID)
		}
	}

	sources, err := dao.GetSourcesByMessageIDs(assistantIDs)
	if err != nil {
		fail(c, errs.Wrap(errs.KindInternal, "get_history_failed", "failed to load sources", err))
		return
	}
	metrics, err := dao.GetMetricsByMessageIDs(assistantIDs)
	if err != nil {
		fail(c, errs.Wrap(errs.KindInternal, "get_history_failed", "failed to load metrics", err))
		return
	}

	resp := response.GetHistoryResponse{
		SessionID: sessionID,
		Title:     session.Title,
		Messages:  make([]response.HistoryMessageResponse, 0, len(messages)),
	}
	for _, m := range messages {
		msg := response.HistoryMessageResponse{
			ID:         m.ID,
			Role:       m.Role,
			Content:    m.Content,
			CreatedAt:  m.CreatedAt,
			SearchMode: m.SearchMode,
		}
		if m.Role == model.RoleAssistant {
			msg.Sources = historySources(sources[m.ID])
			if met, ok := metrics[m.ID]; ok {
				msg.Metrics = &response.MetricsResponse{
					Grade:              met.Grade,
					BERTScoreF1:        met.BERTScoreF1,
					HallucinationScore: met.HallucinationScore,
					FactualityScore:    met.FactualityScore,
					ContextRelevance:   met.ContextRelevance,
					Feedback:           met.Feedback,
				}
			}
		}
		resp.Messages = append(resp.Messages, msg)
	}

	c.JSON(http.StatusOK, resp)
}

func (ctl *SessionController) DeleteSession(c *gin.Context) {
	sessionID := c.Param("session_id")

	if err := dao.DeleteSession(sessionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, errs.NotFound("session_not_found", "session not found"))
			return
		}
		fail(c, errs.Wrap(errs.KindInternal, "delete_session_failed", "failed to delete session", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "deleted",
		"session_id": sessionID,
	})
}

func historySources(rows []model.MessageSource) []response.SourceResponse {
	out := make([]response.SourceResponse, 0, len(rows))
	for _, s := range rows {
		out = append(out, response.SourceResponse{
			Text:        s.SourceText,
			SourceType:  s.SourceType,
			DieuNumber:  s.DieuNumber,
			KhoanNumber: s.KhoanNumber,
			FileName:    s.FileName,
			Score:       s.Score,
			Rank:        s.Rank,
		})
	}
	return out
}
