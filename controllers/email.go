package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/growyourneed/crm_backend/models"
	"github.com/growyourneed/crm_backend/utils"
)

// GetEmailTemplates 获取邮件模板列表
func GetEmailTemplates(c *gin.Context) {
	templates, err := emailService.GetTemplates(context.Background())
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, templates, "")
}

// CreateEmailTemplate 创建邮件模板
func CreateEmailTemplate(c *gin.Context) {
	var tpl models.EmailTemplate
	if err := c.ShouldBindJSON(&tpl); err != nil {
		utils.ErrorResponse(c, "请求参数格式错误", http.StatusBadRequest)
		return
	}

	created, err := emailService.CreateTemplate(context.Background(), tpl)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, created, "模板创建成功", http.StatusCreated)
}

// DeleteEmailTemplate 删除邮件模板
func DeleteEmailTemplate(c *gin.Context) {
	if err := emailService.DeleteTemplate(context.Background(), c.Param("id")); err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, nil, "模板删除成功")
}

type renderRequest struct {
	Variables map[string]string `json:"variables"`
}

// RenderEmailTemplate 渲染模板占位符
func RenderEmailTemplate(c *gin.Context) {
	var req renderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, "请求参数格式错误", http.StatusBadRequest)
		return
	}

	subject, body, err := emailService.RenderTemplate(context.Background(), c.Param("id"), req.Variables)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"subject": subject, "body": body}, "")
}

type draftRequest struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// SaveEmailDraft 保存邮件草稿（每个联系人只保留一条）
func SaveEmailDraft(c *gin.Context) {
	var req draftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, "请求参数格式错误", http.StatusBadRequest)
		return
	}

	draft, err := emailService.SaveDraft(context.Background(), c.Param("id"), req.Subject, req.Body)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, draft, "草稿保存成功")
}

// GetEmailDraft 获取联系人草稿
func GetEmailDraft(c *gin.Context) {
	draft, err := emailService.GetDraft(context.Background(), c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, draft, "")
}

type sendEmailRequest struct {
	Subject string `json:"subject" binding:"required"`
	Body    string `json:"body" binding:"required"`
}

// SendEmail 给联系人发送邮件
func SendEmail(c *gin.Context) {
	var req sendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, "主题和正文不能为空", http.StatusBadRequest)
		return
	}

	user, err := utils.GetUser(c)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	email, err := emailService.SendEmail(context.Background(), c.Param("id"), req.Subject, req.Body, user.ID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, email, "邮件发送成功", http.StatusCreated)
}

// GetContactEmails 联系人的邮件记录
func GetContactEmails(c *gin.Context) {
	emails, err := emailService.GetEmailsForContact(context.Background(), c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, emails, "")
}

// MarkEmailOpened 标记邮件已打开
func MarkEmailOpened(c *gin.Context) {
	if err := emailService.MarkOpened(context.Background(), c.Param("id")); err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, nil, "")
}

// MarkEmailClicked 标记邮件已点击
func MarkEmailClicked(c *gin.Context) {
	if err := emailService.MarkClicked(context.Background(), c.Param("id")); err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, nil, "")
}
