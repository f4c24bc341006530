package router

import (
	"github.com/Quockhanh0712/vielegalrag-demo/controller"
	"github.com/Quockhanh0712/vielegalrag-demo/middleware"

	"github.com/gin-gonic/gin"
)

type Controllers struct {
	Chat    *controller.ChatController
	Session *controller.SessionController
	Search  *controller.SearchController
	Upload  *controller.UploadController
	LLM     *controller.LLMController
	Status  *controller.StatusController
}

func Register(ctl Controllers) *gin.Engine {
	r := gin.Default()
	r.Use(middleware.CORSMiddleware())

	api := r.Group("/api")
	{
		api.POST("/chat", ctl.Chat.Chat)
		api.GET("/chat/sessions/:user_id", ctl.Session.GetSessions)
		api.GET("/chat/history/:session_id", ctl.Session.GetHistory)
		api.DELETE("/chat/sessions/:session_id", ctl.Session.DeleteSession)

		api.POST("/search", ctl.Search.Search)

		api.POST("/upload", ctl.Upload.Upload)
		api.GET("/upload/:upload_id/progress", ctl.Upload.Progress)
		api.GET("/documents", ctl.Upload.GetDocuments)
		api.GET("/documents/:user_id", ctl.Upload.GetDocuments)
		api.DELETE("/documents/:doc_id", ctl.Upload.DeleteDocument)

		api.GET("/llm/providers", ctl.LLM.GetProviders)
		api.GET("/llm/active", ctl.LLM.GetActive)
		api.POST("/llm/set-provider", ctl.LLM.SetProvider)
		api.POST("/llm/test", ctl.LLM.TestChat)

		api.GET("/status", ctl.Status.Status)
	}

	return r
}
