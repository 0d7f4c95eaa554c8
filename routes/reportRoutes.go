package routes

import (
	"civicdesk-be/controllers"
	"civicdesk-be/middlewares"

	"github.com/gin-gonic/gin"
)

const dailyReportLimit = 10

// ReportRoutes sets up the citizen report routes
func ReportRoutes(r *gin.Engine) {
	report := r.Group("/api/report")
	report.Use(middlewares.AuthMiddleware())
	{
		report.POST("/create", middlewares.ReportRateLimiter(dailyReportLimit), controllers.CreateReport)
		report.GET("/mine", controllers.GetMyReports)
		report.GET("/stats", middlewares.RequireOfficer(), controllers.GetReportStats)
		report.GET("", middlewares.RequireOfficer(), controllers.ListReports)
		report.GET("/:id", controllers.GetReport)
		report.POST("/:id/validate", middlewares.RequireOfficer(), controllers.ValidateReport)
		report.POST("/:id/feedback", controllers.SubmitFeedback)
	}
}
