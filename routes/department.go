package routes

import (
	"github.com/gin-gonic/gin"

	"civictrack-be/controllers"
)

func DepartmentRoutes(api *gin.RouterGroup, h *controllers.DepartmentController, g guards) {
	departments := api.Group("/departments", g.auth)
	{
		departments.GET("", h.List)
		departments.GET("/:id", h.Get)
		departments.POST("", g.admin, h.Create)
		departments.PUT("/:id", g.admin, h.Update)
		departments.DELETE("/:id", g.admin, h.Delete)
		departments.GET("/:id/employees", g.privileged, h.ListEmployees)
		departments.POST("/:id/employees", g.privileged, h.AddEmployee)
		departments.DELETE("/employees/:employeeId", g.privileged, h.RemoveEmployee)
	}
}
