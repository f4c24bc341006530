package controller

import (
	"net/http"

	"github.com/Quockhanh0712/vielegalrag-demo/service/status"

	"github.com/gin-gonic/gin"
)

type StatusController struct {
	checker *status.Checker
}

func NewStatusController(checker *status.Checker) *StatusController {
	return &StatusController{checker: checker}
}

// Status reports per-component health. A failed probe degrades its component,
// never the endpoint itself.
func (ctl *StatusController) Status(c *gin.Context) {
	c.JSON(http.StatusOK, ctl.checker.Check(c.Request.Context()))
}
