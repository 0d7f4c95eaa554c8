package routes

import (
	"civicdesk-be/controllers"
	"civicdesk-be/middlewares"

	"github.com/gin-gonic/gin"
)

// UserRoutes sets up the officer-facing user management routes
func UserRoutes(r *gin.Engine) {
	users := r.Group("/api/users")
	users.Use(middlewares.AuthMiddleware(), middlewares.RequireOfficer())
	{
		users.GET("", controllers.ListUsers)
		users.POST("", controllers.CreateUser)
		users.PATCH("/:id", controllers.UpdateUser)
		users.POST("/:id/deactivate", controllers.DeactivateUser)
		users.DELETE("/:id", controllers.DeleteUser)
		users.POST("/:id/approve", controllers.ApproveContractor)
		users.POST("/:id/suspend", controllers.SuspendContractor)
	}
}
