package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/growyourneed/crm_backend/controllers"
	"github.com/growyourneed/crm_backend/middleware"
)

// RegisterDealRoutes 注册商机相关路由
func RegisterDealRoutes(router *gin.Engine) {
	dealRoutes := router.Group("/api/deals")
	dealRoutes.Use(middleware.AuthMiddleware())

	dealRoutes.GET("/", controllers.GetAllDeals)
	dealRoutes.GET("/forecast", controllers.GetForecast)
	dealRoutes.GET("/forecasted-revenue", controllers.GetForecastedRevenue)
	dealRoutes.GET("/stage/:stage", controllers.GetDealsByStage)
	dealRoutes.POST("/", controllers.CreateDeal)

	dealRoutes.GET("/:id", controllers.GetDeal)
	dealRoutes.PUT("/:id/stage", controllers.UpdateDealStage)
	dealRoutes.PUT("/:id/value", controllers.UpdateDealValue)
	dealRoutes.PUT("/:id/probability", controllers.UpdateDealProbability)
	dealRoutes.PUT("/:id/close-date", controllers.UpdateDealCloseDate)
	dealRoutes.POST("/:id/won", controllers.MarkDealWon)
	dealRoutes.POST("/:id/lost", controllers.MarkDealLost)
	dealRoutes.POST("/:id/assign", controllers.AssignDeal)
	dealRoutes.DELETE("/:id", controllers.DeleteDeal)
}
