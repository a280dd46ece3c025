package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/growyourneed/crm_backend/controllers"
	"github.com/growyourneed/crm_backend/middleware"
)

// RegisterEmailRoutes 注册邮件相关路由
func RegisterEmailRoutes(router *gin.Engine) {
	templateRoutes := router.Group("/api/email-templates")
	templateRoutes.Use(middleware.AuthMiddleware())

	templateRoutes.GET("/", controllers.GetEmailTemplates)
	templateRoutes.POST("/", controllers.CreateEmailTemplate)
	templateRoutes.DELETE("/:id", controllers.DeleteEmailTemplate)
	templateRoutes.POST("/:id/render", controllers.RenderEmailTemplate)

	emailRoutes := router.Group("/api/emails")
	emailRoutes.Use(middleware.AuthMiddleware())

	emailRoutes.POST("/:id/opened", controllers.MarkEmailOpened)
	emailRoutes.POST("/:id/clicked", controllers.MarkEmailClicked)

	// 联系人维度的邮件操作
	contactEmailRoutes := router.Group("/api/contacts/:id")
	contactEmailRoutes.Use(middleware.AuthMiddleware())

	contactEmailRoutes.GET("/emails", controllers.GetContactEmails)
	contactEmailRoutes.POST("/emails", controllers.SendEmail)
	contactEmailRoutes.GET("/draft", controllers.GetEmailDraft)
	contactEmailRoutes.PUT("/draft", controllers.SaveEmailDraft)
}
