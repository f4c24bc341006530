package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGradeDeterministic(t *testing.T) {
	query := "Điều kiện kết hôn là gì"
	answer := "Điều kiện kết hôn gồm nam từ đủ 20 tuổi và nữ từ đủ 18 tuổi."
	contexts := []string{
		"Điều 8. Điều kiện kết hôn: nam từ đủ 20 tuổi trở lên, nữ từ đủ 18 tuổi trở lên.",
	}

	first := Grade(query, answer, contexts)
	second := Grade(query, answer, contexts)

	assert.Equal(t, first, second)
}

func TestGradeFullySupportedAnswer(t *testing.T) {
	query := "nam bao nhiêu tuổi được kết hôn"
	answer := "nam từ đủ 20 tuổi được kết hôn"
	contexts := []string{"nam từ đủ 20 tuổi được kết hôn theo quy định"}

	m := Grade(query, answer, contexts)

	assert.Greater(t, m.BERTScoreF1, 0.5)
	require.NotNil(t, m.HallucinationScore)
	assert.InDelta(t, 0, *m.HallucinationScore, 0.01)
	require.NotNil(t, m.FactualityScore)
	assert.Greater(t, *m.FactualityScore, 0.9)
	assert.Contains(t, []string{"A", "B"}, m.Grade)
	require.NotNil(t, m.Feedback)
	assert.Equal(t, feedbackByGrade[m.Grade], *m.Feedback)
}

func TestGradeUnsupportedAnswer(t *testing.T) {
	query := "thuế thu nhập cá nhân"
	answer := "trái đất quay quanh mặt trời mỗi năm một vòng"
	contexts := []string{"thuế thu nhập cá nhân áp dụng với thu nhập từ tiền lương"}

	m := Grade(query, answer, contexts)

	require.NotNil(t, m.HallucinationScore)
	assert.Equal(t, 1.0, *m.HallucinationScore)
	assert.Contains(t, []string{"D", "F"}, m.Grade)
}

func TestGradeEmptyInputs(t *testing.T) {
	t.Run("empty answer", func(t *testing.T) {
		m := Grade("câu hỏi", "", []string{"ngữ cảnh"})
		assert.Equal(t, "F", m.Grade)
		assert.Equal(t, 0.0, m.BERTScoreF1)
	})

	t.Run("empty context", func(t *testing.T) {
		m := Grade("câu hỏi", "câu trả lời", nil)
		assert.Equal(t, "F", m.Grade)
		require.NotNil(t, m.HallucinationScore)
		assert.Equal(t, 1.0, *m.HallucinationScore)
	})
}

func TestLetterGradeThresholds(t *testing.T) {
	cases := []struct {
		score float64
		grade string
	}{
		{0.95, "A"},
		{0.85, "A"},
		{0.84, "B"},
		{0.70, "B"},
		{0.69, "C"},
		{0.55, "C"},
		{0.54, "D"},
		{0.40, "D"},
		{0.39, "F"},
		{0, "F"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.grade, letterGrade(tc.score), "score %v", tc.score)
	}
}

func TestAggregateMonotonic(t *testing.T) {
	base := aggregate(0.5, 0.5, 0.5)

	assert.Greater(t, aggregate(0.6, 0.5, 0.5), base)
	assert.Greater(t, aggregate(0.5, 0.6, 0.5), base)
	// 幻觉率上升时综合得分下降
	assert.Less(t, aggregate(0.5, 0.5, 0.6), base)
}

func TestTokenize(t *testing.T) {
	tokens := tokenize("Điều 8, Khoản 1: nam TỪ đủ 20 tuổi!")
	assert.Equal(t, []string{"điều", "8", "khoản", "1", "nam", "từ", "đủ", "20", "tuổi"}, tokens)
}

func TestOverlapRatio(t *testing.T) {
	assert.Equal(t, 1.0, overlapRatio([]string{"a", "b"}, map[string]struct{}{"a": {}, "b": {}}))
	assert.Equal(t, 0.5, overlapRatio([]string{"a", "b"}, map[string]struct{}{"a": {}}))
	assert.Equal(t, 0.0, overlapRatio(nil, map[string]struct{}{"a": {}}))
}
