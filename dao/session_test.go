package dao

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Quockhanh0712/vielegalrag-demo/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.Session{},
		&model.Message{},
		&model.MessageSource{},
		&model.AnswerMetrics{},
		&model.UserDocument{},
	))

	DB = db
}

func grade(g string) *model.AnswerMetrics {
	return &model.AnswerMetrics{Grade: g, BERTScoreF1: 0.8, NumSources: 1}
}

func TestAppendTurnCreatesSession(t *testing.T) {
	setupTestDB(t)

	record, err := AppendTurn(AppendTurnInput{
		UserID:          "u1",
		SessionID:       "s1",
		UserMessage:     "điều kiện kết hôn là gì",
		AssistantAnswer: "nam từ đủ 20 tuổi",
		SearchMode:      "hybrid",
		Sources: []model.MessageSource{
			{SourceText: "Điều 8...", SourceType: "legal", DieuNumber: "8", Score: 0.9, Rank: 1},
		},
		Metrics: grade("A"),
	})

	require.NoError(t, err)
	assert.True(t, record.SessionCreated)
	assert.Equal(t, "điều kiện kết hôn là gì", record.Session.Title)
	assert.Greater(t, record.AssistantMessageID, record.UserMessageID)

	messages, err := GetMessagesBySessionID("s1")
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, model.RoleUser, messages[0].Role)
	assert.Equal(t, model.RoleAssistant, messages[1].Role)

	sources, err := GetSourcesByMessageIDs([]uint{record.AssistantMessageID})
	require.NoError(t, err)
	require.Len(t, sources[record.AssistantMessageID], 1)
	assert.Equal(t, "8", sources[record.AssistantMessageID][0].DieuNumber)

	metrics, err := GetMetricsByMessageIDs([]uint{record.AssistantMessageID})
	require.NoError(t, err)
	assert.Equal(t, "A", metrics[record.AssistantMessageID].Grade)
}

func TestAppendTurnMessageIDsMonotonic(t *testing.T) {
	setupTestDB(t)

	var lastID uint
	for i := 0; i < 3; i++ {
		record, err := AppendTurn(AppendTurnInput{
			UserID:          "u1",
			SessionID:       "s1",
			UserMessage:     "câu hỏi tiếp theo",
			AssistantAnswer: "câu trả lời",
			SearchMode:      "legal",
		})
		require.NoError(t, err)
		assert.Greater(t, record.UserMessageID, lastID)
		assert.Greater(t, record.AssistantMessageID, record.UserMessageID)
		lastID = record.AssistantMessageID

		if i > 0 {
			assert.False(t, record.SessionCreated)
		}
	}

	count, err := CountMessagesBySessionID("s1")
	require.NoError(t, err)
	assert.Equal(t, int64(6), count)
}

func TestAppendTurnFailureRollsBackWholeTurn(t *testing.T) {
	setupTestDB(t)

	// 预置与下一条助手消息id冲突的指标行，让事务内最后一步写入失败
	require.NoError(t, DB.Create(&model.AnswerMetrics{MessageID: 2, Grade: "A"}).Error)

	before, err := CountMessagesBySessionID("s1")
	require.NoError(t, err)

	_, err = AppendTurn(AppendTurnInput{
		UserID:          "u1",
		SessionID:       "s1",
		UserMessage:     "điều kiện kết hôn là gì",
		AssistantAnswer: "nam từ đủ 20 tuổi",
		SearchMode:      "hybrid",
		Sources: []model.MessageSource{
			{SourceText: "Điều 8...", SourceType: "legal", Rank: 1},
		},
		Metrics: grade("B"),
	})
	require.Error(t, err)

	// 一轮落库失败时消息、会话、来源全部不留痕
	after, err := CountMessagesBySessionID("s1")
	require.NoError(t, err)
	assert.Equal(t, before, after)

	session, err := GetSessionBySessionID("s1")
	require.NoError(t, err)
	assert.Nil(t, session)

	sources, err := GetSourcesByMessageIDs([]uint{1, 2})
	require.NoError(t, err)
	assert.Empty(t, sources)
}

func TestSessionTitleFromMessage(t *testing.T) {
	short := "câu hỏi ngắn"
	assert.Equal(t, short, SessionTitleFromMessage(short))

	long := strings.Repeat("đ", 80)
	title := SessionTitleFromMessage(long)
	assert.Equal(t, strings.Repeat("đ", 50)+"...", title)
}

func TestDeleteSessionCascades(t *testing.T) {
	setupTestDB(t)

	record, err := AppendTurn(AppendTurnInput{
		UserID:          "u1",
		SessionID:       "s1",
		UserMessage:     "hỏi",
		AssistantAnswer: "đáp",
		SearchMode:      "hybrid",
		Sources:         []model.MessageSource{{SourceText: "x", SourceType: "legal", Rank: 1}},
		Metrics:         grade("B"),
	})
	require.NoError(t, err)

	require.NoError(t, DeleteSession("s1"))

	session, err := GetSessionBySessionID("s1")
	require.NoError(t, err)
	assert.Nil(t, session)

	messages, err := GetMessagesBySessionID("s1")
	require.NoError(t, err)
	assert.Empty(t, messages)

	sources, err := GetSourcesByMessageIDs([]uint{record.AssistantMessageID})
	require.NoError(t, err)
	assert.Empty(t, sources)

	// 重复删除观察到相同的缺失终态
	err = DeleteSession("s1")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestListSessionsOrderedByUpdatedAt(t *testing.T) {
	setupTestDB(t)

	for _, sid := range []string{"s1", "s2"} {
		_, err := AppendTurn(AppendTurnInput{
			UserID:          "u1",
			SessionID:       sid,
			UserMessage:     "hỏi " + sid,
			AssistantAnswer: "đáp",
			SearchMode:      "legal",
		})
		require.NoError(t, err)
		time.Sleep(10 * time.Millisecond)
	}

	// 旧会话出现新消息后排到最前
	_, err := AppendTurn(AppendTurnInput{
		UserID:          "u1",
		SessionID:       "s1",
		UserMessage:     "hỏi lại",
		AssistantAnswer: "đáp",
		SearchMode:      "legal",
	})
	require.NoError(t, err)

	sessions, err := ListSessionsByUserID("u1", 20)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "s1", sessions[0].SessionID)
	assert.Equal(t, "s2", sessions[1].SessionID)
}

func TestListSessionsLimit(t *testing.T) {
	setupTestDB(t)

	for _, sid := range []string{"s1", "s2", "s3"} {
		_, err := AppendTurn(AppendTurnInput{
			UserID:          "u1",
			SessionID:       sid,
			UserMessage:     "hỏi",
			AssistantAnswer: "đáp",
			SearchMode:      "legal",
		})
		require.NoError(t, err)
	}

	sessions, err := ListSessionsByUserID("u1", 2)
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
}

func TestUpdateSessionTitle(t *testing.T) {
	setupTestDB(t)

	_, err := AppendTurn(AppendTurnInput{
		UserID:          "u1",
		SessionID:       "s1",
		UserMessage:     "một câu hỏi rất dài về điều kiện kết hôn theo luật hiện hành",
		AssistantAnswer: "đáp",
		SearchMode:      "legal",
	})
	require.NoError(t, err)

	require.NoError(t, UpdateSessionTitle("s1", "Điều kiện kết hôn"))

	session, err := GetSessionBySessionID("s1")
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "Điều kiện kết hôn", session.Title)
}
