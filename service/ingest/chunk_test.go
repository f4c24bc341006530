package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const legalSample = `LUẬT HÔN NHÂN VÀ GIA ĐÌNH

Điều 1. Phạm vi điều chỉnh
Luật này quy định chế độ hôn nhân và gia đình.

Điều 8. Điều kiện kết hôn
Khoản 1. Nam từ đủ 20 tuổi trở lên, nữ từ đủ 18 tuổi trở lên.
Khoản 2. Việc kết hôn do nam và nữ tự nguyện quyết định.`

func TestChunkLegalTextSplitsByDieu(t *testing.T) {
	chunks, err := ChunkText(legalSample)

	require.NoError(t, err)
	require.Len(t, chunks, 2)

	assert.Equal(t, "1", chunks[0].Dieu)
	assert.True(t, strings.HasPrefix(chunks[0].Text, "Điều 1."))
	assert.Contains(t, chunks[0].Text, "Phạm vi điều chỉnh")

	assert.Equal(t, "8", chunks[1].Dieu)
	assert.Equal(t, "1", chunks[1].Khoan)
	assert.Contains(t, chunks[1].Text, "tự nguyện")
}

func TestChunkLegalTextLetterSuffix(t *testing.T) {
	chunks, err := ChunkText("Điều 53a. Quy định bổ sung\nNội dung bổ sung của điều luật.")

	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "53a", chunks[0].Dieu)
}

func TestChunkTextFallbackWindow(t *testing.T) {
	// 无条文结构的长文本走滑动窗口
	var b strings.Builder
	for i := 0; i < 300; i++ {
		b.WriteString("đây là một câu văn bản pháp lý thông thường. ")
	}

	chunks, err := ChunkText(b.String())

	require.NoError(t, err)
	assert.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.Empty(t, c.Dieu)
		assert.LessOrEqual(t, len([]rune(c.Text)), chunkSize+chunkOverlap)
		assert.NotEmpty(t, strings.TrimSpace(c.Text))
	}
}

func TestChunkTextEmpty(t *testing.T) {
	chunks, err := ChunkText("   \n  ")

	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestChunkTextShortPlainText(t *testing.T) {
	chunks, err := ChunkText("một đoạn văn ngắn không có cấu trúc điều luật rõ ràng")

	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Empty(t, chunks[0].Dieu)
}
