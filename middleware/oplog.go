package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"

	"github.com/growyourneed/crm_backend/models"
	"github.com/growyourneed/crm_backend/repository"
	"github.com/growyourneed/crm_backend/utils"
)

// 需要记录操作日志的HTTP方法
var loggedMethods = map[string]bool{
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodDelete: true,
	http.MethodPatch:  true,
}

// 不记录操作日志的路径
var excludedPaths = map[string]bool{
	"/api/health":     true,
	"/api/auth/login": true,
	"/metrics":        true,
}

// OperationLogger API写操作日志中间件，日志写入api_operation_logs集合。
// 写入失败只打日志，不影响请求本身。
func OperationLogger(store repository.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !shouldLogOperation(c) {
			c.Next()
			return
		}

		startTime := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		var requestBody interface{}
		if c.Request.Body != nil {
			raw, err := io.ReadAll(c.Request.Body)
			if err == nil {
				c.Request.Body = io.NopCloser(bytes.NewBuffer(raw))
				if strings.Contains(c.Request.Header.Get("Content-Type"), "application/json") {
					if json.Unmarshal(raw, &requestBody) != nil {
						requestBody = string(raw)
					}
				} else {
					requestBody = string(raw)
				}
			}
		}

		operatorID, operatorName := extractOperator(c)

		c.Next()

		var errorMessage string
		if len(c.Errors) > 0 {
			errorMessage = c.Errors.String()
		}

		entry := models.ApiOperationLog{
			Method:        method,
			Path:          path,
			OperatorID:    operatorID,
			OperatorName:  operatorName,
			RequestBody:   sanitizeBody(requestBody),
			StatusCode:    c.Writer.Status(),
			Success:       c.Writer.Status() < http.StatusBadRequest,
			ErrorMessage:  errorMessage,
			OperationTime: startTime,
			ResponseTime:  time.Since(startTime).Milliseconds(),
			IPAddress:     c.ClientIP(),
			UserAgent:     c.Request.UserAgent(),
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := store.Create(ctx, repository.ApiOperationLogsCollection, entry); err != nil {
			utils.LogError(err, map[string]interface{}{
				"method": method,
				"path":   path,
			}, "保存操作日志失败")
		}
	}
}

func shouldLogOperation(c *gin.Context) bool {
	if excludedPaths[c.Request.URL.Path] {
		return false
	}
	return loggedMethods[c.Request.Method]
}

// extractOperator 从上下文取操作人信息，未认证请求记为匿名
func extractOperator(c *gin.Context) (string, string) {
	operatorID := "anonymous"
	operatorName := "匿名用户"

	userClaims, exists := c.Get("user")
	if !exists {
		return operatorID, operatorName
	}

	switch v := userClaims.(type) {
	case jwt.MapClaims:
		if id, ok := v["id"].(string); ok {
			operatorID = id
		}
		if username, ok := v["username"].(string); ok {
			operatorName = username
		}
	case map[string]interface{}:
		if id, ok := v["id"].(string); ok {
			operatorID = id
		}
		if username, ok := v["username"].(string); ok {
			operatorName = username
		}
	}
	return operatorID, operatorName
}

// sensitiveFields 不写入操作日志的字段
var sensitiveFields = map[string]bool{
	"password": true,
	"token":    true,
	"secret":   true,
}

// sanitizeBody 把请求体中的敏感字段替换为掩码
func sanitizeBody(body interface{}) interface{} {
	m, ok := body.(map[string]interface{})
	if !ok {
		return body
	}
	cleaned := make(map[string]interface{}, len(m))
	for k, v := range m {
		if sensitiveFields[strings.ToLower(k)] {
			cleaned[k] = "***"
			continue
		}
		cleaned[k] = v
	}
	return cleaned
}
