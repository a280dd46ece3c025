package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/growyourneed/crm_backend/utils"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email"`
}

// Login 演示登录，签发JWT令牌。
// 正式环境的账号体系由平台侧处理，这里只提供内部运营人员的直接登录。
func Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, "用户名不能为空", http.StatusBadRequest)
		return
	}
	if req.Email != "" && !utils.IsValidEmail(req.Email) {
		utils.ErrorResponse(c, "邮箱格式不正确", http.StatusBadRequest)
		return
	}

	user := utils.LoginUser{
		ID:       uuid.NewString(),
		Username: req.Username,
		Email:    req.Email,
	}
	token, err := utils.GenerateToken(user)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"token": token, "user": user}, "登录成功")
}

// ValidateToken 校验当前令牌有效性
func ValidateToken(c *gin.Context) {
	user, err := utils.GetUser(c)
	if err != nil {
		utils.ErrorResponse(c, "未授权访问", http.StatusUnauthorized)
		return
	}
	utils.SuccessResponse(c, user, "")
}
