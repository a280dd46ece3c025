package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/growyourneed/crm_backend/controllers"
	"github.com/growyourneed/crm_backend/middleware"
)

// RegisterAuthRoutes 注册认证路由
func RegisterAuthRoutes(router *gin.Engine) {
	authRoutes := router.Group("/api/auth")

	authRoutes.POST("/login", controllers.Login)
	authRoutes.GET("/validate", middleware.AuthMiddleware(), controllers.ValidateToken)
}
