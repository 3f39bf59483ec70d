package routes

import (
	"github.com/gin-gonic/gin"

	"civictrack-be/controllers"
)

// IssueRoutes sets up the issue routes. Only creation counts against the
// daily quota.
func IssueRoutes(api *gin.RouterGroup, h *controllers.IssueController, g guards) {
	issues := api.Group("/issues", g.auth)
	{
		issues.POST("", g.issueLimit, h.Create)
		issues.POST("/attachments", h.UploadAttachment)
		issues.GET("", h.List)
		issues.GET("/mine", h.Mine)
		issues.GET("/statistics", h.Statistics)
		issues.GET("/:id", h.Get)
		issues.PUT("/:id/status", h.UpdateStatus)
		issues.PUT("/:id/handled-by", g.privileged, h.UpdateHandledBy)
		issues.PUT("/:id/department", g.privileged, h.SetDepartment)
		issues.PUT("/:id/feedback", h.AddFeedback)
		issues.DELETE("/:id", h.Delete)
	}
}

func UpvoteRoutes(api *gin.RouterGroup, h *controllers.UpvoteController, g guards) {
	upvotes := api.Group("/upvotes", g.auth)
	{
		upvotes.POST("/:issueId", h.Add)
		upvotes.DELETE("/:issueId", h.Remove)
		upvotes.GET("/:issueId", h.Check)
	}
}
