package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/growyourneed/crm_backend/controllers"
	"github.com/growyourneed/crm_backend/middleware"
)

// RegisterCampaignRoutes 注册营销活动路由
func RegisterCampaignRoutes(router *gin.Engine) {
	campaignRoutes := router.Group("/api/campaigns")
	campaignRoutes.Use(middleware.AuthMiddleware())

	campaignRoutes.GET("/", controllers.GetCampaigns)
	campaignRoutes.GET("/summary", controllers.GetCampaignSummary)
	campaignRoutes.GET("/:id", controllers.GetCampaignByID)
	campaignRoutes.POST("/", controllers.CreateCampaign)
}
