package controllers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/growyourneed/crm_backend/models"
	"github.com/growyourneed/crm_backend/utils"
)

// GetAllDeals 获取全部商机
func GetAllDeals(c *gin.Context) {
	deals, err := dealService.GetAllDeals(context.Background())
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, deals, "")
}

// GetDeal 获取单个商机
func GetDeal(c *gin.Context) {
	deal, err := dealService.GetDealByID(context.Background(), c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, deal, "")
}

// GetDealsByStage 按阶段获取商机
func GetDealsByStage(c *gin.Context) {
	stage := models.DealStage(c.Param("stage"))
	deals, err := dealService.GetDealsByStage(context.Background(), stage)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, deals, "")
}

// CreateDeal 创建商机
func CreateDeal(c *gin.Context) {
	var req models.DealCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, "请求参数格式错误", http.StatusBadRequest)
		return
	}

	user, err := utils.GetUser(c)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	deal, err := dealService.CreateDeal(context.Background(), &req, user.ID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, deal, "商机创建成功", http.StatusCreated)
}

type stageRequest struct {
	Stage models.DealStage `json:"stage" binding:"required"`
}

// UpdateDealStage 更新商机阶段（看板拖拽）
func UpdateDealStage(c *gin.Context) {
	var req stageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, "阶段不能为空", http.StatusBadRequest)
		return
	}

	user, err := utils.GetUser(c)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	deal, err := dealService.UpdateDealStage(context.Background(), c.Param("id"), req.Stage, user.ID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, deal, "")
}

type dealValueRequest struct {
	Value *float64 `json:"value"`
}

// UpdateDealValue 更新商机金额
func UpdateDealValue(c *gin.Context) {
	var req dealValueRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Value == nil {
		utils.ErrorResponse(c, "金额不能为空", http.StatusBadRequest)
		return
	}

	deal, err := dealService.UpdateDealValue(context.Background(), c.Param("id"), *req.Value)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, deal, "")
}

type probabilityRequest struct {
	Probability *int `json:"probability"`
}

// UpdateDealProbability 更新成交概率
func UpdateDealProbability(c *gin.Context) {
	var req probabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Probability == nil {
		utils.ErrorResponse(c, "概率不能为空", http.StatusBadRequest)
		return
	}

	deal, err := dealService.UpdateDealProbability(context.Background(), c.Param("id"), *req.Probability)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, deal, "")
}

type closeDateRequest struct {
	ExpectedCloseDate time.Time `json:"expected_close_date" binding:"required"`
}

// UpdateDealCloseDate 更新预计成交日期
func UpdateDealCloseDate(c *gin.Context) {
	var req closeDateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, "日期格式错误", http.StatusBadRequest)
		return
	}

	deal, err := dealService.UpdateDealCloseDate(context.Background(), c.Param("id"), req.ExpectedCloseDate)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, deal, "")
}

// MarkDealWon 标记赢单
func MarkDealWon(c *gin.Context) {
	user, err := utils.GetUser(c)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	deal, err := dealService.MarkDealWon(context.Background(), c.Param("id"), user.ID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, deal, "商机已标记为赢单")
}

// MarkDealLost 标记输单
func MarkDealLost(c *gin.Context) {
	user, err := utils.GetUser(c)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	deal, err := dealService.MarkDealLost(context.Background(), c.Param("id"), user.ID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, deal, "商机已标记为输单")
}

// DeleteDeal 删除商机
func DeleteDeal(c *gin.Context) {
	user, err := utils.GetUser(c)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	if err := dealService.DeleteDeal(context.Background(), c.Param("id"), user.ID); err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, nil, "商机删除成功")
}

type assignRequest struct {
	AssigneeID   string `json:"assignee_id" binding:"required"`
	AssigneeName string `json:"assignee_name"`
}

// AssignDeal 分配商机
func AssignDeal(c *gin.Context) {
	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, "请求参数格式错误", http.StatusBadRequest)
		return
	}

	user, err := utils.GetUser(c)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	assignment, err := dealService.AssignDeal(context.Background(), c.Param("id"), req.AssigneeID, req.AssigneeName, user.ID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, assignment, "商机分配成功", http.StatusCreated)
}

// GetForecast 月度收入预测。默认窗口为当年1月到6月
func GetForecast(c *gin.Context) {
	now := time.Now()
	startMonth, _ := strconv.Atoi(c.DefaultQuery("startMonth", "1"))
	endMonth, _ := strconv.Atoi(c.DefaultQuery("endMonth", "6"))
	year, _ := strconv.Atoi(c.DefaultQuery("year", strconv.Itoa(now.Year())))

	if startMonth < 1 || startMonth > 12 || endMonth < 1 || endMonth > 12 {
		utils.ErrorResponse(c, "月份必须在1到12之间", http.StatusBadRequest)
		return
	}

	buckets, err := dealService.Forecast(context.Background(), time.Month(startMonth), time.Month(endMonth), year)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, buckets, "")
}

// GetForecastedRevenue 指定月份在途商机的加权收入合计，默认当前月份
func GetForecastedRevenue(c *gin.Context) {
	now := time.Now()
	month, _ := strconv.Atoi(c.DefaultQuery("month", strconv.Itoa(int(now.Month()))))
	year, _ := strconv.Atoi(c.DefaultQuery("year", strconv.Itoa(now.Year())))

	if month < 1 || month > 12 {
		utils.ErrorResponse(c, "月份必须在1到12之间", http.StatusBadRequest)
		return
	}

	total, err := dealService.GetForecastedRevenue(context.Background(), time.Month(month), year)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"forecasted_revenue": total, "month": month, "year": year}, "")
}
