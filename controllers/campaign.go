package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/growyourneed/crm_backend/models"
	"github.com/growyourneed/crm_backend/utils"
)

// GetCampaigns 获取营销活动列表，支持status过滤
func GetCampaigns(c *gin.Context) {
	campaigns, err := campaignService.GetCampaigns(context.Background(), c.Query("status"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, campaigns, "")
}

// GetCampaignByID 获取单个营销活动
func GetCampaignByID(c *gin.Context) {
	campaign, err := campaignService.GetCampaignByID(context.Background(), c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, campaign, "")
}

// CreateCampaign 创建营销活动
func CreateCampaign(c *gin.Context) {
	var campaign models.Campaign
	if err := c.ShouldBindJSON(&campaign); err != nil {
		utils.ErrorResponse(c, "请求参数格式错误", http.StatusBadRequest)
		return
	}

	created, err := campaignService.CreateCampaign(context.Background(), campaign)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, created, "活动创建成功", http.StatusCreated)
}

// GetCampaignSummary 活动汇总指标
func GetCampaignSummary(c *gin.Context) {
	summary, err := campaignService.GetCampaignSummary(context.Background())
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, summary, "")
}
