package controllers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/growyourneed/crm_backend/utils"
)

// GetConversionRates 联系人转化率
func GetConversionRates(c *gin.Context) {
	rates, err := analyticsService.GetConversionRates(context.Background())
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, rates, "")
}

// GetPipelineHealth 管道健康度
func GetPipelineHealth(c *gin.Context) {
	health, err := analyticsService.GetPipelineHealth(context.Background())
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, health, "")
}

// GetAverageCycleTime 平均成交周期
func GetAverageCycleTime(c *gin.Context) {
	days, err := analyticsService.GetAverageCycleTime(context.Background())
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"avg_cycle_time": days}, "")
}

// GetWinLossAnalysis 赢单输单分析
func GetWinLossAnalysis(c *gin.Context) {
	analysis, err := analyticsService.GetWinLossAnalysis(context.Background())
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, analysis, "")
}

// GetRevenueByPeriod 按期间统计已成交收入
func GetRevenueByPeriod(c *gin.Context) {
	period := c.DefaultQuery("period", "month")
	items, err := analyticsService.GetRevenueByPeriod(context.Background(), period)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, items, "")
}

// GetEmailAnalytics 邮件互动指标
func GetEmailAnalytics(c *gin.Context) {
	analytics, err := analyticsService.GetEmailAnalytics(context.Background())
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, analytics, "")
}

// GetTeamPerformance 团队业绩
func GetTeamPerformance(c *gin.Context) {
	perf, err := analyticsService.GetTeamPerformance(context.Background())
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, perf, "")
}
