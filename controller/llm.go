package controller

import (
	"net/http"

	"github.com/Quockhanh0712/vielegalrag-demo/request"
	"github.com/Quockhanh0712/vielegalrag-demo/response"
	"github.com/Quockhanh0712/vielegalrag-demo/service/llm"

	"github.com/gin-gonic/gin"
)

type LLMController struct {
	router *llm.Router
}

func NewLLMController(router *llm.Router) *LLMController {
	return &LLMController{router: router}
}

func (ctl *LLMController) GetProviders(c *gin.Context) {
	c.JSON(http.StatusOK, response.GetProvidersResponse{
		Providers: ctl.router.List(),
	})
}

func (ctl *LLMController) GetActive(c *gin.Context) {
	c.JSON(http.StatusOK, ctl.router.Active())
}

func (ctl *LLMController) SetProvider(c *gin.Context) {
	var req request.SetProvider
	if err := c.ShouldBindJSON(&req); err != nil {
		failParse(c, err)
		return
	}

	active, err := ctl.router.SetActive(llm.Provider(req.Provider), req.Model, req.APIKey)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SetProviderResponse{
		Status:   "success",
		Provider: active.Provider,
		Model:    active.Model,
		Message:  "switched to " + active.ProviderName,
	})
}

// TestChat exercises the active provider end-to-end. Provider failures are
// reported in-band with success=false and HTTP 200.
func (ctl *LLMController) TestChat(c *gin.Context) {
	var req request.TestChat
	if err := c.ShouldBindJSON(&req); err != nil {
		failParse(c, err)
		return
	}

	c.JSON(http.StatusOK, ctl.router.Test(c.Request.Context(), req.Message))
}
