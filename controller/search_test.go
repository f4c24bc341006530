package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Quockhanh0712/vielegalrag-demo/request"
	"github.com/Quockhanh0712/vielegalrag-demo/response"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postSearch(t *testing.T, body any) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/search", bytes.NewReader(payload))
	c.Request.Header.Set("Content-Type", "application/json")

	// 校验失败在进入pipeline前返回，无需真实依赖
	NewSearchController(nil).Search(c)
	return w
}

func TestSearchRejectsMissingQuery(t *testing.T) {
	w := postSearch(t, gin.H{"user_id": "u1"})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body response.Error
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "invalid_request", body.Code)
}

func TestSearchRejectsWhitespaceQuery(t *testing.T) {
	w := postSearch(t, request.Search{Query: "  \n "})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body response.Error
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "empty_query", body.Code)
}

func TestSearchRejectsInvalidMode(t *testing.T) {
	w := postSearch(t, request.Search{Query: "thuế thu nhập", SearchMode: "fuzzy"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchRejectsTopKOutOfRange(t *testing.T) {
	w := postSearch(t, request.Search{Query: "thuế thu nhập", TopK: 51})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
