package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/growyourneed/crm_backend/controllers"
)

// RegisterRoutes 注册所有路由
func RegisterRoutes(router *gin.Engine) {
	RegisterAuthRoutes(router)
	RegisterContactRoutes(router)
	RegisterDealRoutes(router)
	RegisterAnalyticsRoutes(router)
	RegisterEmailRoutes(router)
	RegisterCampaignRoutes(router)

	// 健康检查
	router.GET("/api/health", controllers.Health)

	// Prometheus指标
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
