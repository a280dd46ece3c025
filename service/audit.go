package service

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/growyourneed/crm_backend/models"
	"github.com/growyourneed/crm_backend/repository"
	"github.com/growyourneed/crm_backend/utils"
)

// AuditService 审计日志服务。
// 写入是尽力而为的：失败只打日志，绝不影响主操作结果。
type AuditService struct {
	store repository.Store
}

func NewAuditService(store repository.Store) *AuditService {
	return &AuditService{store: store}
}

// Log 记录一条审计日志，吞掉所有错误
func (s *AuditService) Log(ctx context.Context, entry models.AuditLog) {
	if entry.Severity == "" {
		entry.Severity = models.AuditSeverityInfo
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	if _, err := s.store.Create(ctx, repository.AuditLogsCollection, entry); err != nil {
		utils.LogError(err, map[string]interface{}{
			"action":        entry.Action,
			"resource_type": entry.ResourceType,
			"resource_id":   entry.ResourceID,
		}, "写入审计日志失败")
	}
}

// List 分页查询审计日志，按时间倒序
func (s *AuditService) List(ctx context.Context, page, perPage int, action string) ([]models.AuditLog, int64, error) {
	filter := bson.M{}
	if action != "" {
		filter["action"] = action
	}

	var logs []models.AuditLog
	total, err := s.store.GetList(ctx, repository.AuditLogsCollection, filter, "-timestamp", page, perPage, &logs)
	if err != nil {
		return nil, 0, err
	}
	if logs == nil {
		logs = []models.AuditLog{}
	}
	return logs, total, nil
}
