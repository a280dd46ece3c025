package controllers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/growyourneed/crm_backend/middleware"
	"github.com/growyourneed/crm_backend/models"
	"github.com/growyourneed/crm_backend/utils"
)

// bindFilters 从查询参数解析筛选条件
func bindFilters(c *gin.Context) *models.ContactFilters {
	var filters models.ContactFilters
	_ = c.ShouldBindQuery(&filters)
	if filters.IsEmpty() {
		return nil
	}
	return &filters
}

// GetAllContacts 获取联系人列表（不分页）
func GetAllContacts(c *gin.Context) {
	contacts, err := contactService.GetAllContacts(context.Background(), bindFilters(c))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, contacts, "")
}

// GetContacts 分页获取联系人列表
func GetContacts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("perPage", "20"))

	list, err := contactService.GetContacts(context.Background(), page, perPage, bindFilters(c))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, list, "")
}

// GetContact 获取单个联系人
func GetContact(c *gin.Context) {
	contact, err := contactService.GetContactByID(context.Background(), c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, contact, "")
}

// CreateContact 创建联系人
func CreateContact(c *gin.Context) {
	var req models.ContactCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, "请求参数格式错误", http.StatusBadRequest)
		return
	}

	user, err := utils.GetUser(c)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	contact, err := contactService.CreateContact(context.Background(), &req, user.ID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, contact, "联系人创建成功", http.StatusCreated)
}

// UpdateContact 更新联系人
func UpdateContact(c *gin.Context) {
	var data map[string]interface{}
	if err := c.ShouldBindJSON(&data); err != nil {
		utils.ErrorResponse(c, "请求参数格式错误", http.StatusBadRequest)
		return
	}

	user, err := utils.GetUser(c)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	contact, err := contactService.UpdateContact(context.Background(), c.Param("id"), data, user.ID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, contact, "联系人更新成功")
}

// DeleteContact 删除联系人
func DeleteContact(c *gin.Context) {
	user, err := utils.GetUser(c)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	if err := contactService.DeleteContact(context.Background(), c.Param("id"), user.ID); err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, nil, "联系人删除成功")
}

type tagRequest struct {
	Tag string `json:"tag" binding:"required"`
}

// AddContactTag 给联系人添加标签
func AddContactTag(c *gin.Context) {
	var req tagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, "标签不能为空", http.StatusBadRequest)
		return
	}

	contact, err := contactService.AddTag(context.Background(), c.Param("id"), req.Tag)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, contact, "")
}

// RemoveContactTag 移除联系人标签
func RemoveContactTag(c *gin.Context) {
	contact, err := contactService.RemoveTag(context.Background(), c.Param("id"), c.Param("tag"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, contact, "")
}

type bulkTagRequest struct {
	IDs []string `json:"ids" binding:"required"`
	Tag string   `json:"tag" binding:"required"`
}

// BulkAddContactTag 批量打标签
func BulkAddContactTag(c *gin.Context) {
	var req bulkTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, "请求参数格式错误", http.StatusBadRequest)
		return
	}

	count := contactService.BulkAddTag(context.Background(), req.IDs, req.Tag)
	utils.SuccessResponse(c, gin.H{"count": count}, "")
}

type leadScoreRequest struct {
	Score *int `json:"score"`
	Delta *int `json:"delta"`
}

// UpdateLeadScore 设置或增减线索评分
func UpdateLeadScore(c *gin.Context) {
	var req leadScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, "请求参数格式错误", http.StatusBadRequest)
		return
	}

	var contact *models.Contact
	var err error
	switch {
	case req.Score != nil:
		contact, err = contactService.UpdateLeadScore(context.Background(), c.Param("id"), *req.Score)
	case req.Delta != nil:
		contact, err = contactService.IncrementLeadScore(context.Background(), c.Param("id"), *req.Delta)
	default:
		utils.HandleError(c, utils.CreateBadRequestError("score和delta至少提供一个"))
		return
	}
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, contact, "")
}

type mergeRequest struct {
	DuplicateIDs []string `json:"duplicate_ids" binding:"required"`
}

// MergeContacts 合并重复联系人
func MergeContacts(c *gin.Context) {
	var req mergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, "请求参数格式错误", http.StatusBadRequest)
		return
	}

	user, err := utils.GetUser(c)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	contact, err := contactService.MergeContacts(context.Background(), c.Param("id"), req.DuplicateIDs, user.ID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, contact, "联系人合并成功")
}

// GetContactStats 联系人统计
func GetContactStats(c *gin.Context) {
	stats, err := contactService.GetContactStats(context.Background())
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, stats, "")
}

// GetFollowUpContacts 待跟进联系人
func GetFollowUpContacts(c *gin.Context) {
	contacts, err := contactService.GetContactsDueForFollowUp(context.Background())
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, contacts, "")
}

// GetContactActivities 联系人活动记录
func GetContactActivities(c *gin.Context) {
	activities, err := contactService.GetContactActivities(context.Background(), c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, activities, "")
}

type activityRequest struct {
	Type        models.ActivityType `json:"type" binding:"required"`
	Description string              `json:"description" binding:"required"`
}

// LogContactActivity 追加联系人活动记录
func LogContactActivity(c *gin.Context) {
	var req activityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, "请求参数格式错误", http.StatusBadRequest)
		return
	}

	user, err := utils.GetUser(c)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	activity, err := contactService.LogActivity(context.Background(), models.ContactActivity{
		ContactID:   c.Param("id"),
		Type:        req.Type,
		Description: req.Description,
		PerformedBy: user.ID,
	})
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, activity, "", http.StatusCreated)
}

type importRequest struct {
	CsvData string `json:"csv_data" binding:"required"`
}

// ImportContacts CSV批量导入联系人
func ImportContacts(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, "csv_data不能为空", http.StatusBadRequest)
		return
	}

	user, err := utils.GetUser(c)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	result := csvService.ImportContacts(context.Background(), req.CsvData, user.ID)
	middleware.CountImportedContacts(result.Success, result.Failed)
	utils.SuccessResponse(c, result, "")
}

// ExportContacts 导出联系人为CSV文件
func ExportContacts(c *gin.Context) {
	csvText, err := csvService.ExportContacts(context.Background(), bindFilters(c))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	filename := fmt.Sprintf("contacts_%s.csv", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(csvText))
}
