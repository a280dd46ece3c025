package models

import (
	"time"
)

// AuditSeverity 审计日志级别
type AuditSeverity string

const (
	AuditSeverityInfo     AuditSeverity = "info"
	AuditSeverityWarning  AuditSeverity = "warning"
	AuditSeverityCritical AuditSeverity = "critical"
)

// AuditLog 审计日志记录。写入失败只打日志，绝不阻塞主操作。
type AuditLog struct {
	ID           string                 `json:"id,omitempty" bson:"_id,omitempty"`
	Action       string                 `json:"action" bson:"action"`
	UserID       string                 `json:"user_id" bson:"user_id"`
	ResourceType string                 `json:"resource_type" bson:"resource_type"`
	ResourceID   string                 `json:"resource_id,omitempty" bson:"resource_id,omitempty"`
	Severity     AuditSeverity          `json:"severity" bson:"severity"`
	Metadata     map[string]interface{} `json:"metadata,omitempty" bson:"metadata,omitempty"`
	Timestamp    time.Time              `json:"timestamp" bson:"timestamp"`
}

// ApiOperationLog API写操作日志，由中间件自动记录
type ApiOperationLog struct {
	ID            string      `json:"id,omitempty" bson:"_id,omitempty"`
	Method        string      `json:"method" bson:"method"`
	Path          string      `json:"path" bson:"path"`
	OperatorID    string      `json:"operatorId" bson:"operatorId"`
	OperatorName  string      `json:"operatorName" bson:"operatorName"`
	RequestBody   interface{} `json:"requestBody,omitempty" bson:"requestBody,omitempty"`
	StatusCode    int         `json:"statusCode" bson:"statusCode"`
	Success       bool        `json:"success" bson:"success"`
	ErrorMessage  string      `json:"errorMessage,omitempty" bson:"errorMessage,omitempty"`
	OperationTime time.Time   `json:"operationTime" bson:"operationTime"`
	ResponseTime  int64       `json:"responseTime" bson:"responseTime"` // 毫秒
	IPAddress     string      `json:"ipAddress" bson:"ipAddress"`
	UserAgent     string      `json:"userAgent" bson:"userAgent"`
}
