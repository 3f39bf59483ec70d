package routes

import (
	"github.com/gin-gonic/gin"

	"civictrack-be/controllers"
)

// AuthRoutes sets up the authentication routes
func AuthRoutes(api *gin.RouterGroup, h *controllers.AuthController, g guards) {
	auth := api.Group("/auth")
	{
		auth.POST("/signup", h.Signup)
		auth.POST("/login", h.Login)
		auth.POST("/google", h.GoogleLogin)
		auth.POST("/logout", h.Logout)
		auth.GET("/me", g.auth, h.Me)
		auth.PUT("/change-password", g.auth, h.ChangePassword)
		auth.PUT("/details", g.auth, h.UpdateDetails)
		auth.PUT("/users/:id/role", g.auth, g.admin, h.AssignRole)
	}
}
