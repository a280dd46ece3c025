package service

import (
	"context"
	"math"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/growyourneed/crm_backend/models"
	"github.com/growyourneed/crm_backend/repository"
	"github.com/growyourneed/crm_backend/utils"
)

// ContactService 联系人生命周期管理：增删改查、筛选、标签、评分、合并去重
type ContactService struct {
	store repository.Store
	audit *AuditService
}

func NewContactService(store repository.Store, audit *AuditService) *ContactService {
	return &ContactService{store: store, audit: audit}
}

// clampScore 线索评分钳制到[0,100]
func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// buildContactFilter 组合筛选条件，各条件之间为AND，search内部为OR
func buildContactFilter(filters *models.ContactFilters) bson.M {
	filter := bson.M{}
	if filters == nil {
		return filter
	}

	if filters.Status != "" {
		filter["status"] = filters.Status
	}
	if filters.Source != "" {
		filter["source"] = filters.Source
	}
	if filters.AssignedTo != "" {
		filter["assigned_to"] = filters.AssignedTo
	}
	if filters.LifecycleStage != "" {
		filter["lifecycle_stage"] = filters.LifecycleStage
	}
	if filters.Company != "" {
		filter["company"] = bson.M{"$regex": regexp.QuoteMeta(filters.Company), "$options": "i"}
	}
	if filters.Search != "" {
		pattern := bson.M{"$regex": regexp.QuoteMeta(filters.Search), "$options": "i"}
		filter["$or"] = []bson.M{
			{"first_name": pattern},
			{"last_name": pattern},
			{"email": pattern},
			{"company": pattern},
		}
	}
	return filter
}

// GetAllContacts 按筛选条件取全部联系人，按创建时间倒序
func (s *ContactService) GetAllContacts(ctx context.Context, filters *models.ContactFilters) ([]models.Contact, error) {
	var contacts []models.Contact
	err := s.store.GetFullList(ctx, repository.ContactsCollection, buildContactFilter(filters), "-created", &contacts)
	if err != nil {
		utils.LogError(err, map[string]interface{}{"filters": filters}, "查询联系人列表失败")
		return nil, err
	}
	if contacts == nil {
		contacts = []models.Contact{}
	}
	return contacts, nil
}

// GetContacts 分页查询联系人
func (s *ContactService) GetContacts(ctx context.Context, page, perPage int, filters *models.ContactFilters) (*models.ContactList, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}

	var contacts []models.Contact
	total, err := s.store.GetList(ctx, repository.ContactsCollection, buildContactFilter(filters), "-created", page, perPage, &contacts)
	if err != nil {
		utils.LogError(err, map[string]interface{}{"page": page, "perPage": perPage}, "分页查询联系人失败")
		return nil, err
	}
	if contacts == nil {
		contacts = []models.Contact{}
	}

	return &models.ContactList{
		Items:      contacts,
		TotalItems: total,
		TotalPages: int(math.Ceil(float64(total) / float64(perPage))),
	}, nil
}

// GetContactByID 按ID取联系人，不存在时返回repository.ErrNotFound
func (s *ContactService) GetContactByID(ctx context.Context, id string) (*models.Contact, error) {
	var contact models.Contact
	if err := s.store.GetOne(ctx, repository.ContactsCollection, id, &contact); err != nil {
		return nil, err
	}
	return &contact, nil
}

// CreateContact 创建联系人。email必填；status/lifecycle_stage默认lead，评分默认0
func (s *ContactService) CreateContact(ctx context.Context, req *models.ContactCreateRequest, createdBy string) (*models.Contact, error) {
	if req.Email == "" {
		return nil, utils.NewApiError("邮箱不能为空", 400, "VALIDATION_ERROR")
	}
	if !utils.IsValidEmail(req.Email) {
		return nil, utils.NewApiError("邮箱格式不正确", 400, "VALIDATION_ERROR")
	}

	now := time.Now()
	contact := models.Contact{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Phone:          req.Phone,
		Company:        req.Company,
		Title:          req.Title,
		Status:         req.Status,
		Source:         req.Source,
		LifecycleStage: req.LifecycleStage,
		LeadScore:      clampScore(req.LeadScore),
		Tags:           dedupTags(req.Tags),
		CustomFields:   req.CustomFields,
		Notes:          req.Notes,
		NextFollowUp:   req.NextFollowUp,
		AssignedTo:     req.AssignedTo,
		CreatedBy:      createdBy,
		Created:        now,
		Updated:        now,
	}
	if contact.Status == "" {
		contact.Status = models.ContactStatusLead
	}
	if contact.LifecycleStage == "" {
		contact.LifecycleStage = models.LifecycleLead
	}
	if contact.Tags == nil {
		contact.Tags = []string{}
	}

	id, err := s.store.Create(ctx, repository.ContactsCollection, contact)
	if err != nil {
		utils.LogError(err, map[string]interface{}{"email": req.Email}, "创建联系人失败")
		return nil, err
	}
	contact.ID = id

	s.audit.Log(ctx, models.AuditLog{
		Action:       "contactCreate",
		UserID:       createdBy,
		ResourceType: "contact",
		ResourceID:   id,
		Severity:     models.AuditSeverityInfo,
		Metadata:     map[string]interface{}{"contact_id": id, "email": contact.Email},
	})
	return &contact, nil
}

// contactUpdatableFields 允许通过UpdateContact修改的字段
var contactUpdatableFields = map[string]bool{
	"first_name": true, "last_name": true, "email": true, "phone": true,
	"company": true, "title": true, "status": true, "source": true,
	"lifecycle_stage": true, "lead_score": true, "tags": true,
	"custom_fields": true, "notes": true, "last_contact": true,
	"next_follow_up": true, "assigned_to": true,
}

// UpdateContact 部分字段更新。审计日志只记录改动的字段名，不记录字段值
func (s *ContactService) UpdateContact(ctx context.Context, id string, data map[string]interface{}, userID string) (*models.Contact, error) {
	set := bson.M{}
	changed := make([]string, 0, len(data))
	for k, v := range data {
		if !contactUpdatableFields[k] {
			continue
		}
		if k == "lead_score" {
			if n, ok := toInt(v); ok {
				v = clampScore(n)
			}
		}
		set[k] = v
		changed = append(changed, k)
	}
	if len(set) == 0 {
		return nil, utils.NewApiError("没有可更新的字段", 400, "VALIDATION_ERROR")
	}
	set["updated"] = time.Now()

	if err := s.store.Update(ctx, repository.ContactsCollection, id, set); err != nil {
		utils.LogError(err, map[string]interface{}{"id": id}, "更新联系人失败")
		return nil, err
	}

	s.audit.Log(ctx, models.AuditLog{
		Action:       "contactUpdate",
		UserID:       userID,
		ResourceType: "contact",
		ResourceID:   id,
		Severity:     models.AuditSeverityInfo,
		Metadata:     map[string]interface{}{"fields": changed},
	})
	return s.GetContactByID(ctx, id)
}

// DeleteContact 删除联系人，审计级别为warning
func (s *ContactService) DeleteContact(ctx context.Context, id, userID string) error {
	if err := s.store.Delete(ctx, repository.ContactsCollection, id); err != nil {
		utils.LogError(err, map[string]interface{}{"id": id}, "删除联系人失败")
		return err
	}

	s.audit.Log(ctx, models.AuditLog{
		Action:       "contactDelete",
		UserID:       userID,
		ResourceType: "contact",
		ResourceID:   id,
		Severity:     models.AuditSeverityWarning,
		Metadata:     map[string]interface{}{"contact_id": id},
	})
	return nil
}

// AddTag 添加标签，幂等：已存在时原样返回
func (s *ContactService) AddTag(ctx context.Context, id, tag string) (*models.Contact, error) {
	contact, err := s.GetContactByID(ctx, id)
	if err != nil {
		return nil, err
	}

	for _, t := range contact.Tags {
		if t == tag {
			return contact, nil
		}
	}

	tags := append(append([]string{}, contact.Tags...), tag)
	set := bson.M{"tags": tags, "updated": time.Now()}
	if err := s.store.Update(ctx, repository.ContactsCollection, id, set); err != nil {
		return nil, err
	}
	contact.Tags = tags
	return contact, nil
}

// RemoveTag 移除标签，不存在时为空操作
func (s *ContactService) RemoveTag(ctx context.Context, id, tag string) (*models.Contact, error) {
	contact, err := s.GetContactByID(ctx, id)
	if err != nil {
		return nil, err
	}

	tags := make([]string, 0, len(contact.Tags))
	for _, t := range contact.Tags {
		if t != tag {
			tags = append(tags, t)
		}
	}
	if len(tags) == len(contact.Tags) {
		return contact, nil
	}

	set := bson.M{"tags": tags, "updated": time.Now()}
	if err := s.store.Update(ctx, repository.ContactsCollection, id, set); err != nil {
		return nil, err
	}
	contact.Tags = tags
	return contact, nil
}

// BulkAddTag 批量打标签，逐条执行，单条失败不影响其余。返回成功数量
func (s *ContactService) BulkAddTag(ctx context.Context, ids []string, tag string) int {
	count := 0
	for _, id := range ids {
		if _, err := s.AddTag(ctx, id, tag); err != nil {
			utils.LogError(err, map[string]interface{}{"id": id, "tag": tag}, "批量打标签单条失败")
			continue
		}
		count++
	}
	return count
}

// UpdateLeadScore 设置线索评分，钳制到[0,100]
func (s *ContactService) UpdateLeadScore(ctx context.Context, id string, score int) (*models.Contact, error) {
	set := bson.M{"lead_score": clampScore(score), "updated": time.Now()}
	if err := s.store.Update(ctx, repository.ContactsCollection, id, set); err != nil {
		return nil, err
	}
	return s.GetContactByID(ctx, id)
}

// IncrementLeadScore 增减线索评分，结果钳制到[0,100]
func (s *ContactService) IncrementLeadScore(ctx context.Context, id string, delta int) (*models.Contact, error) {
	contact, err := s.GetContactByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.UpdateLeadScore(ctx, id, contact.LeadScore+delta)
}

// MergeContacts 合并重复联系人：标签并入主联系人，重复记录删除。
// 只合并标签，其余字段以主联系人为准。
func (s *ContactService) MergeContacts(ctx context.Context, primaryID string, duplicateIDs []string, userID string) (*models.Contact, error) {
	primary, err := s.GetContactByID(ctx, primaryID)
	if err != nil {
		return nil, err
	}

	tagSet := make(map[string]bool)
	merged := append([]string{}, primary.Tags...)
	for _, t := range primary.Tags {
		tagSet[t] = true
	}

	for _, dupID := range duplicateIDs {
		dup, err := s.GetContactByID(ctx, dupID)
		if err != nil {
			utils.LogError(err, map[string]interface{}{"id": dupID}, "读取待合并联系人失败")
			continue
		}
		for _, t := range dup.Tags {
			if !tagSet[t] {
				tagSet[t] = true
				merged = append(merged, t)
			}
		}
		if err := s.store.Delete(ctx, repository.ContactsCollection, dupID); err != nil {
			utils.LogError(err, map[string]interface{}{"id": dupID}, "删除重复联系人失败")
		}
	}

	set := bson.M{"tags": merged, "updated": time.Now()}
	if err := s.store.Update(ctx, repository.ContactsCollection, primaryID, set); err != nil {
		return nil, err
	}
	primary.Tags = merged

	s.audit.Log(ctx, models.AuditLog{
		Action:       "contactMerge",
		UserID:       userID,
		ResourceType: "contact",
		ResourceID:   primaryID,
		Severity:     models.AuditSeverityWarning,
		Metadata:     map[string]interface{}{"merged": duplicateIDs},
	})
	return primary, nil
}

// GetContactStats 联系人统计：各维度分布、近30天新增、平均评分
func (s *ContactService) GetContactStats(ctx context.Context) (*models.ContactStats, error) {
	contacts, err := s.GetAllContacts(ctx, nil)
	if err != nil {
		return nil, err
	}

	stats := &models.ContactStats{
		Total:       len(contacts),
		ByStatus:    make(map[string]int),
		BySource:    make(map[string]int),
		ByLifecycle: make(map[string]int),
	}

	cutoff := time.Now().AddDate(0, 0, -30)
	scoreSum := 0
	for _, c := range contacts {
		stats.ByStatus[string(c.Status)]++
		if c.Source != "" {
			stats.BySource[string(c.Source)]++
		}
		if c.LifecycleStage != "" {
			stats.ByLifecycle[string(c.LifecycleStage)]++
		}
		if c.Created.After(cutoff) {
			stats.Recent++
		}
		scoreSum += c.LeadScore
	}
	if len(contacts) > 0 {
		stats.AvgLeadScore = int(math.Round(float64(scoreSum) / float64(len(contacts))))
	}
	return stats, nil
}

// GetContactsDueForFollowUp 取next_follow_up已到期的联系人
func (s *ContactService) GetContactsDueForFollowUp(ctx context.Context) ([]models.Contact, error) {
	filter := bson.M{
		"next_follow_up": bson.M{"$exists": true, "$lte": time.Now()},
	}
	var contacts []models.Contact
	if err := s.store.GetFullList(ctx, repository.ContactsCollection, filter, "next_follow_up", &contacts); err != nil {
		return nil, err
	}
	if contacts == nil {
		contacts = []models.Contact{}
	}
	return contacts, nil
}

// SearchContacts 跨姓名/邮箱/公司的OR子串搜索
func (s *ContactService) SearchContacts(ctx context.Context, query string) ([]models.Contact, error) {
	return s.GetAllContacts(ctx, &models.ContactFilters{Search: query})
}

// GetContactsByStatus 按状态取联系人
func (s *ContactService) GetContactsByStatus(ctx context.Context, status models.ContactStatus) ([]models.Contact, error) {
	return s.GetAllContacts(ctx, &models.ContactFilters{Status: string(status)})
}

// LogActivity 追加联系人活动记录，并刷新last_contact
func (s *ContactService) LogActivity(ctx context.Context, activity models.ContactActivity) (*models.ContactActivity, error) {
	if activity.ContactID == "" {
		return nil, utils.NewApiError("联系人ID不能为空", 400, "VALIDATION_ERROR")
	}
	if activity.PerformedAt.IsZero() {
		activity.PerformedAt = time.Now()
	}

	id, err := s.store.Create(ctx, repository.ContactActivityCollection, activity)
	if err != nil {
		utils.LogError(err, map[string]interface{}{"contact_id": activity.ContactID}, "写入活动记录失败")
		return nil, err
	}
	activity.ID = id

	if err := s.UpdateLastContact(ctx, activity.ContactID, activity.PerformedAt); err != nil {
		utils.LogError(err, map[string]interface{}{"contact_id": activity.ContactID}, "刷新最近联系时间失败")
	}
	return &activity, nil
}

// GetContactActivities 取联系人活动记录，按时间倒序
func (s *ContactService) GetContactActivities(ctx context.Context, contactID string) ([]models.ContactActivity, error) {
	var activities []models.ContactActivity
	filter := bson.M{"contact_id": contactID}
	if err := s.store.GetFullList(ctx, repository.ContactActivityCollection, filter, "-performed_at", &activities); err != nil {
		return nil, err
	}
	if activities == nil {
		activities = []models.ContactActivity{}
	}
	return activities, nil
}

// UpdateLastContact 刷新联系人的最近联系时间
func (s *ContactService) UpdateLastContact(ctx context.Context, id string, at time.Time) error {
	set := bson.M{"last_contact": at, "updated": time.Now()}
	return s.store.Update(ctx, repository.ContactsCollection, id, set)
}

// dedupTags 标签去重，保持首次出现顺序
func dedupTags(tags []string) []string {
	if tags == nil {
		return nil
	}
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// toInt 宽松整数转换，JSON解出来的数字是float64
func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}
