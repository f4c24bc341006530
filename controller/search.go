package controller

import (
	"net/http"
	"strings"

	"github.com/Quockhanh0712/vielegalrag-demo/config"
	"github.com/Quockhanh0712/vielegalrag-demo/errs"
	"github.com/Quockhanh0712/vielegalrag-demo/request"
	"github.com/Quockhanh0712/vielegalrag-demo/response"
	"github.com/Quockhanh0712/vielegalrag-demo/service/rag"
	"github.com/Quockhanh0712/vielegalrag-demo/service/retrieval"

	"github.com/gin-gonic/gin"
)

type SearchController struct {
	pipeline *rag.Pipeline
}

func NewSearchController(pipeline *rag.Pipeline) *SearchController {
	return &SearchController{pipeline: pipeline}
}

// Search runs retrieval only: no generation, no persistence.
func (ctl *SearchController) Search(c *gin.Context) {
	var req request.Search
	if err := c.ShouldBindJSON(&req); err != nil {
		failParse(c, err)
		return
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		fail(c, errs.Validation("empty_query", "query must not be empty"))
		return
	}

	searchMode := req.SearchMode
	if searchMode == "" {
		searchMode = retrieval.ModeLegal
	}
	topK := req.TopK
	if topK == 0 {
		topK = config.Cfg.RAG.TopK
	}
	rerankerEnabled := false
	if req.RerankerEnabled != nil {
		rerankerEnabled = *req.RerankerEnabled
	}

	results, err := ctl.pipeline.SearchOnly(c.Request.Context(), query, req.UserID,
		searchMode, topK, rerankerEnabled)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SearchResponse{
		Results:    sourceResponses(results),
		Total:      len(results),
		Query:      query,
		SearchMode: searchMode,
	})
}
