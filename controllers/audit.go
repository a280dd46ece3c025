package controllers

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/growyourneed/crm_backend/utils"
)

// GetAuditLogs 分页查询审计日志
func GetAuditLogs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("perPage", "50"))
	action := c.Query("action")

	logs, total, err := auditService.List(context.Background(), page, perPage, action)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.PaginatedResponse(c, logs, total, int64(page), int64(perPage))
}
