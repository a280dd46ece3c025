package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/growyourneed/crm_backend/utils"
)

// ErrorHandler 全局错误处理中间件，把handler挂在c.Errors上的错误统一转成响应
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// 已经写过错误响应的不再处理
		if c.Writer.Status() >= 400 {
			return
		}

		if len(c.Errors) > 0 {
			utils.HandleError(c, c.Errors.Last().Err)
		}
	}
}
