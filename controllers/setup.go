package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/growyourneed/crm_backend/config"
	"github.com/growyourneed/crm_backend/service"
)

// 各controller共享的服务实例，启动时由Setup注入
var (
	cfg              *config.Config
	contactService   *service.ContactService
	csvService       *service.CsvService
	dealService      *service.DealService
	analyticsService *service.AnalyticsService
	emailService     *service.EmailService
	campaignService  *service.CampaignService
	auditService     *service.AuditService
)

// Setup 注入controller层依赖
func Setup(
	c *config.Config,
	contacts *service.ContactService,
	csv *service.CsvService,
	deals *service.DealService,
	analytics *service.AnalyticsService,
	emails *service.EmailService,
	campaigns *service.CampaignService,
	audit *service.AuditService,
) {
	cfg = c
	contactService = contacts
	csvService = csv
	dealService = deals
	analyticsService = analytics
	emailService = emails
	campaignService = campaigns
	auditService = audit
}

// Health 健康检查
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"dataMode": cfg.DataMode,
	})
}
