package dao

import (
	"errors"
	"time"

	"github.com/Quockhanh0712/vielegalrag-demo/model"

	"gorm.io/gorm"
)

func GetSessionBySessionID(sessionID string) (*model.Session, error) {
	var session model.Session
	if err := DB.Where("session_id = ?", sessionID).
		First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

func ListSessionsByUserID(userID string, limit int) ([]model.Session, error) {
	var sessions []model.Session
	if err := DB.Where("user_id = ?", userID).
		Order("updated_at DESC").
		Limit(limit).
		Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// DeleteSession 删除会话及其全部对话记录
// Returns gorm.ErrRecordNotFound when the session does not exist; a second
// delete of the same id observes the same absent end state.
func DeleteSession(sessionID string) error {
	return DB.Transaction(func(tx *gorm.DB) error {
		var session model.Session
		if err := tx.Where("session_id = ?", sessionID).
			First(&session).Error; err != nil {
			return err
		}

		var messageIDs []uint
		if err := tx.Model(&model.Message{}).
			Where("session_id = ?", sessionID).
			Pluck("id", &messageIDs).Error; err != nil {
			return err
		}

		if len(messageIDs) > 0 {
			if err := tx.Where("message_id IN ?", messageIDs).
				Delete(&model.MessageSource{}).Error; err != nil {
				return err
			}
			if err := tx.Where("message_id IN ?", messageIDs).
				Delete(&model.AnswerMetrics{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("session_id = ?", sessionID).
			Delete(&model.Message{}).Error; err != nil {
			return err
		}

		return tx.Delete(&session).Error
	})
}

func GetMessagesBySessionID(sessionID string) ([]model.Message, error) {
	var messages []model.Message
	if err := DB.Where("session_id = ?", sessionID).
		Order("id ASC").
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

func GetSourcesByMessageIDs(messageIDs []uint) (map[uint][]model.MessageSource, error) {
	result := make(map[uint][]model.MessageSource)
	if len(messageIDs) == 0 {
		return result, nil
	}

	var sources []model.MessageSource
	if err := DB.Where("message_id IN ?", messageIDs).
		Order("message_id ASC, `rank` ASC").
		Find(&sources).Error; err != nil {
		return nil, err
	}

	for _, s := range sources {
		result[s.MessageID] = append(result[s.MessageID], s)
	}
	return result, nil
}

func GetMetricsByMessageIDs(messageIDs []uint) (map[uint]model.AnswerMetrics, error) {
	result := make(map[uint]model.AnswerMetrics)
	if len(messageIDs) == 0 {
		return result, nil
	}

	var metrics []model.AnswerMetrics
	if err := DB.Where("message_id IN ?", messageIDs).
		Find(&metrics).Error; err != nil {
		return nil, err
	}

	for _, m := range metrics {
		result[m.MessageID] = m
	}
	return result, nil
}

func CountMessagesBySessionID(sessionID string) (int64, error) {
	var count int64
	err := DB.Model(&model.Message{}).
		Where("session_id = ?", sessionID).
		Count(&count).Error
	return count, err
}

const titleMaxLen = 50

// SessionTitleFromMessage derives the initial session title from the first
// user message.
func SessionTitleFromMessage(message string) string {
	runes := []rune(message)
	if len(runes) <= titleMaxLen {
		return message
	}
	return string(runes[:titleMaxLen]) + "..."
}

func UpdateSessionTitle(sessionID, title string) error {
	return DB.Model(&model.Session{}).
		Where("session_id = ?", sessionID).
		Update("title", title).Error
}

type AppendTurnInput struct {
	UserID          string
	SessionID       string
	UserMessage     string
	AssistantAnswer string
	SearchMode      string
	RerankerEnabled bool
	Sources         []model.MessageSource
	Metrics         *model.AnswerMetrics
}

type TurnRecord struct {
	Session            model.Session
	UserMessageID      uint
	AssistantMessageID uint
	SessionCreated     bool
}

// AppendTurn 在单个事务内落库一轮对话
// The turn is written only after generation succeeded, so a failed turn leaves
// the session's message log untouched.
func AppendTurn(in AppendTurnInput) (*TurnRecord, error) {
	record := &TurnRecord{}

	err := DB.Transaction(func(tx *gorm.DB) error {
		var session model.Session
		err := tx.Where("session_id = ?", in.SessionID).
			First(&session).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			session = model.Session{
				UserID:    in.UserID,
				SessionID: in.SessionID,
				Title:     SessionTitleFromMessage(in.UserMessage),
			}
			if err := tx.Create(&session).Error; err != nil {
				return err
			}
			record.SessionCreated = true
		case err != nil:
			return err
		}

		if session.Title == "" {
			session.Title = SessionTitleFromMessage(in.UserMessage)
			if err := tx.Model(&session).Update("title", session.Title).Error; err != nil {
				return err
			}
		}

		userMsg := model.Message{
			SessionID:       in.SessionID,
			Role:            model.RoleUser,
			Content:         in.UserMessage,
			SearchMode:      in.SearchMode,
			RerankerEnabled: in.RerankerEnabled,
		}
		if err := tx.Create(&userMsg).Error; err != nil {
			return err
		}

		assistantMsg := model.Message{
			SessionID:       in.SessionID,
			Role:            model.RoleAssistant,
			Content:         in.AssistantAnswer,
			SearchMode:      in.SearchMode,
			RerankerEnabled: in.RerankerEnabled,
		}
		if err := tx.Create(&assistantMsg).Error; err != nil {
			return err
		}

		for i := range in.Sources {
			in.Sources[i].MessageID = assistantMsg.ID
		}
		if len(in.Sources) > 0 {
			if err := tx.Create(&in.Sources).Error; err != nil {
				return err
			}
		}

		if in.Metrics != nil {
			in.Metrics.MessageID = assistantMsg.ID
			if err := tx.Create(in.Metrics).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&session).
			Update("updated_at", time.Now()).Error; err != nil {
			return err
		}

		record.Session = session
		record.UserMessageID = userMsg.ID
		record.AssistantMessageID = assistantMsg.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	return record, nil
}
