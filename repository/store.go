package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/growyourneed/crm_backend/models"
)

const (
	// 集合名
	ContactsCollection        = "crm_contacts"
	ContactActivityCollection = "crm_contact_activities"
	EmailsCollection          = "crm_emails"
	EmailTemplatesCollection  = "email_templates"
	EmailDraftsCollection     = "crm_email_drafts"
	DealsCollection           = "deals"
	DealAssignmentsCollection = "deal_assignments"
	CampaignsCollection       = "campaigns"
	AuditLogsCollection       = "audit_logs"
	ApiOperationLogsCollection = "api_operation_logs"
)

// AllCollections 初始化时需要确保存在的集合
var AllCollections = []string{
	ContactsCollection,
	ContactActivityCollection,
	EmailsCollection,
	EmailTemplatesCollection,
	EmailDraftsCollection,
	DealsCollection,
	DealAssignmentsCollection,
	CampaignsCollection,
	AuditLogsCollection,
	ApiOperationLogsCollection,
}

// ErrNotFound 记录不存在，models.ErrNotFound的别名。
// 哨兵本体放在models里，HTTP错误映射不需要反向依赖存储层。
var ErrNotFound = models.ErrNotFound

// Store 记录存储客户端，按集合操作。
// 过滤条件使用bson.M子集：等值、$regex(配合$options:"i")、
// $or、$in、$gte、$lte、$ne、$exists。
// 排序串与记录存储的习惯一致："-created"表示按created降序。
type Store interface {
	// Create 插入一条记录，返回存储分配的ID
	Create(ctx context.Context, collection string, doc interface{}) (string, error)
	// Update 对指定记录做部分字段合并
	Update(ctx context.Context, collection, id string, set bson.M) error
	// Delete 删除指定记录
	Delete(ctx context.Context, collection, id string) error
	// GetOne 按ID取单条记录，不存在时返回ErrNotFound
	GetOne(ctx context.Context, collection, id string, out interface{}) error
	// GetFullList 取满足过滤条件的全部记录
	GetFullList(ctx context.Context, collection string, filter bson.M, sort string, out interface{}) error
	// GetList 分页查询，返回总记录数
	GetList(ctx context.Context, collection string, filter bson.M, sort string, page, perPage int, out interface{}) (int64, error)
	// Count 统计满足条件的记录数
	Count(ctx context.Context, collection string, filter bson.M) (int64, error)
}
