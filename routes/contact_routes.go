package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/growyourneed/crm_backend/controllers"
	"github.com/growyourneed/crm_backend/middleware"
)

// RegisterContactRoutes 注册联系人相关路由
func RegisterContactRoutes(router *gin.Engine) {
	contactRoutes := router.Group("/api/contacts")
	contactRoutes.Use(middleware.AuthMiddleware())

	contactRoutes.GET("/", controllers.GetContacts)
	contactRoutes.GET("/all", controllers.GetAllContacts)
	contactRoutes.GET("/stats", controllers.GetContactStats)
	contactRoutes.GET("/follow-ups", controllers.GetFollowUpContacts)
	contactRoutes.POST("/", controllers.CreateContact)
	contactRoutes.POST("/import", controllers.ImportContacts)
	contactRoutes.GET("/export", controllers.ExportContacts)
	contactRoutes.POST("/bulk-tag", controllers.BulkAddContactTag)

	contactRoutes.GET("/:id", controllers.GetContact)
	contactRoutes.PUT("/:id", controllers.UpdateContact)
	contactRoutes.DELETE("/:id", controllers.DeleteContact)
	contactRoutes.POST("/:id/tags", controllers.AddContactTag)
	contactRoutes.DELETE("/:id/tags/:tag", controllers.RemoveContactTag)
	contactRoutes.PUT("/:id/lead-score", controllers.UpdateLeadScore)
	contactRoutes.POST("/:id/merge", controllers.MergeContacts)
	contactRoutes.GET("/:id/activities", controllers.GetContactActivities)
	contactRoutes.POST("/:id/activities", controllers.LogContactActivity)
}
