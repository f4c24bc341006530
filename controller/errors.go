package controller

import (
	"log/slog"
	"net/http"

	"github.com/Quockhanh0712/vielegalrag-demo/errs"
	"github.com/Quockhanh0712/vielegalrag-demo/response"

	"github.com/gin-gonic/gin"
)

func statusFromKind(kind errs.Kind) int {
	switch kind {
	case errs.KindValidation:
		return http.StatusBadRequest
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindConflict:
		return http.StatusConflict
	case errs.KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// fail renders the uniform error body and logs the full cause server-side.
func fail(c *gin.Context, err error) {
	status := statusFromKind(errs.KindOf(err))
	if status >= http.StatusInternalServerError {
		slog.Error("Request failed", "path", c.FullPath(), "err", err)
	} else {
		slog.Warn("Request rejected", "path", c.FullPath(), "err", err)
	}

	c.AbortWithStatusJSON(status, response.Error{
		Detail: errs.MessageOf(err),
		Code:   errs.CodeOf(err),
	})
}

func failParse(c *gin.Context, err error) {
	slog.Warn("Failed to parse request", "path", c.FullPath(), "err", err)
	c.AbortWithStatusJSON(http.StatusBadRequest, response.Error{
		Detail: err.Error(),
		Code:   "invalid_request",
	})
}
