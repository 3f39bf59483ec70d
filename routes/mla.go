package routes

import (
	"github.com/gin-gonic/gin"

	"civictrack-be/controllers"
)

func SuggestionRoutes(api *gin.RouterGroup, h *controllers.SuggestionController, g guards) {
	suggestions := api.Group("/ai-suggestions", g.auth)
	{
		suggestions.GET("", g.mla, h.Get)
		suggestions.GET("/history", g.mla, h.History)
		suggestions.POST("/generate", g.mla, h.Generate)
		suggestions.POST("/cleanup", g.admin, h.Cleanup)
	}
}

func DashboardRoutes(api *gin.RouterGroup, h *controllers.DashboardController, g guards) {
	api.GET("/mla-dashboard", g.auth, g.mla, h.Get)
}
