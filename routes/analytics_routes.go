package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/growyourneed/crm_backend/controllers"
	"github.com/growyourneed/crm_backend/middleware"
)

// RegisterAnalyticsRoutes 注册分析统计路由
func RegisterAnalyticsRoutes(router *gin.Engine) {
	analyticsRoutes := router.Group("/api/analytics")
	analyticsRoutes.Use(middleware.AuthMiddleware())

	analyticsRoutes.GET("/conversion-rates", controllers.GetConversionRates)
	analyticsRoutes.GET("/pipeline-health", controllers.GetPipelineHealth)
	analyticsRoutes.GET("/cycle-time", controllers.GetAverageCycleTime)
	analyticsRoutes.GET("/win-loss", controllers.GetWinLossAnalysis)
	analyticsRoutes.GET("/revenue", controllers.GetRevenueByPeriod)
	analyticsRoutes.GET("/email", controllers.GetEmailAnalytics)
	analyticsRoutes.GET("/team-performance", controllers.GetTeamPerformance)

	auditRoutes := router.Group("/api/audit-logs")
	auditRoutes.Use(middleware.AuthMiddleware())
	auditRoutes.GET("/", controllers.GetAuditLogs)
}
