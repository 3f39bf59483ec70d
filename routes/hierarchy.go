package routes

import (
	"github.com/gin-gonic/gin"

	"civictrack-be/controllers"
)

func ConstituencyRoutes(api *gin.RouterGroup, h *controllers.ConstituencyController, g guards) {
	constituencies := api.Group("/constituencies", g.auth)
	{
		constituencies.GET("", h.List)
		constituencies.GET("/:id", h.Get)
		constituencies.GET("/:id/info", h.Info)
		constituencies.POST("", g.admin, h.Create)
		constituencies.POST("/bulk", g.admin, h.BulkCreate)
		constituencies.PUT("/:id", g.admin, h.Update)
		constituencies.DELETE("/:id", g.admin, h.Delete)
	}
}

func PanchayatRoutes(api *gin.RouterGroup, h *controllers.PanchayatController, g guards) {
	panchayats := api.Group("/panchayats", g.auth)
	{
		panchayats.GET("", h.List)
		panchayats.GET("/:id", h.Get)
		panchayats.POST("", g.admin, h.Create)
		panchayats.POST("/bulk", g.admin, h.BulkCreate)
		panchayats.PUT("/:id", g.admin, h.Update)
		panchayats.POST("/:id/wards", g.admin, h.AddWards)
		panchayats.DELETE("/:id", g.admin, h.Delete)
	}
}
