package routes

import (
	"civicdesk-be/controllers"
	"civicdesk-be/middlewares"

	"github.com/gin-gonic/gin"
)

// WorkOrderRoutes sets up the work order routes
func WorkOrderRoutes(r *gin.Engine) {
	wo := r.Group("/api/workorder")
	wo.Use(middlewares.AuthMiddleware())
	{
		wo.POST("/create", middlewares.RequireOfficer(), controllers.CreateWorkOrder)
		wo.GET("/mine", controllers.GetMyWorkOrders)
		wo.GET("", middlewares.RequireOfficer(), controllers.ListWorkOrders)
		wo.GET("/:id", controllers.GetWorkOrder)
		wo.POST("/:id/assign", middlewares.RequireOfficer(), controllers.AssignWorkOrder)
		wo.POST("/:id/status", controllers.UpdateWorkOrderStatus)
		wo.POST("/:id/verify", middlewares.RequireOfficer(), controllers.VerifyWorkOrder)
	}
}
