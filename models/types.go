package models

import (
	"time"
)

// ContactStatus 联系人状态枚举
type ContactStatus string

const (
	ContactStatusLead     ContactStatus = "lead"     // 线索
	ContactStatusProspect ContactStatus = "prospect" // 潜在客户
	ContactStatusCustomer ContactStatus = "customer" // 成交客户
	ContactStatusInactive ContactStatus = "inactive" // 不活跃
)

// ContactSource 联系人来源枚举
type ContactSource string

const (
	ContactSourceWebsite  ContactSource = "website"
	ContactSourceReferral ContactSource = "referral"
	ContactSourceColdCall ContactSource = "cold_call"
	ContactSourceEvent    ContactSource = "event"
	ContactSourceSocial   ContactSource = "social"
	ContactSourceOther    ContactSource = "other"
)

// LifecycleStage 营销漏斗阶段，与status相互独立，不做联动校验
type LifecycleStage string

const (
	LifecycleSubscriber  LifecycleStage = "subscriber"
	LifecycleLead        LifecycleStage = "lead"
	LifecycleMQL         LifecycleStage = "mql"
	LifecycleSQL         LifecycleStage = "sql"
	LifecycleOpportunity LifecycleStage = "opportunity"
	LifecycleCustomer    LifecycleStage = "customer"
)

// Contact 销售联系人模型
type Contact struct {
	ID        string `json:"id,omitempty" bson:"_id,omitempty"`
	FirstName string `json:"first_name" bson:"first_name"`
	LastName  string `json:"last_name" bson:"last_name"`
	Email     string `json:"email" bson:"email"`
	Phone     string `json:"phone,omitempty" bson:"phone,omitempty"`
	Company   string `json:"company,omitempty" bson:"company,omitempty"`
	Title     string `json:"title,omitempty" bson:"title,omitempty"`

	Status         ContactStatus  `json:"status" bson:"status"`
	Source         ContactSource  `json:"source,omitempty" bson:"source,omitempty"`
	LifecycleStage LifecycleStage `json:"lifecycle_stage,omitempty" bson:"lifecycle_stage,omitempty"`

	// 线索评分，写入时始终钳制在[0,100]
	LeadScore int `json:"lead_score" bson:"lead_score"`

	Tags         []string               `json:"tags" bson:"tags"`
	CustomFields map[string]interface{} `json:"custom_fields,omitempty" bson:"custom_fields,omitempty"`
	Notes        string                 `json:"notes,omitempty" bson:"notes,omitempty"`
	LastContact  *time.Time             `json:"last_contact,omitempty" bson:"last_contact,omitempty"`
	NextFollowUp *time.Time             `json:"next_follow_up,omitempty" bson:"next_follow_up,omitempty"`
	AssignedTo   string                 `json:"assigned_to,omitempty" bson:"assigned_to,omitempty"`

	CreatedBy string    `json:"created_by" bson:"created_by"`
	Created   time.Time `json:"created" bson:"created"`
	Updated   time.Time `json:"updated" bson:"updated"`
}

// FullName 拼接展示用姓名
func (c *Contact) FullName() string {
	if c.FirstName == "" {
		return c.LastName
	}
	if c.LastName == "" {
		return c.FirstName
	}
	return c.LastName + c.FirstName
}

// ContactFilters 联系人筛选条件，各条件之间为AND关系
type ContactFilters struct {
	Status         string `json:"status" form:"status"`
	Source         string `json:"source" form:"source"`
	AssignedTo     string `json:"assigned_to" form:"assigned_to"`
	LifecycleStage string `json:"lifecycle_stage" form:"lifecycle_stage"`
	Company        string `json:"company" form:"company"`
	// Search 在first_name/last_name/email/company之间做OR子串匹配
	Search string `json:"search" form:"search"`
}

// IsEmpty 判断是否没有任何筛选条件
func (f *ContactFilters) IsEmpty() bool {
	return f == nil || (f.Status == "" && f.Source == "" && f.AssignedTo == "" &&
		f.LifecycleStage == "" && f.Company == "" && f.Search == "")
}

// ContactCreateRequest 创建联系人请求
type ContactCreateRequest struct {
	FirstName      string                 `json:"first_name"`
	LastName       string                 `json:"last_name"`
	Email          string                 `json:"email"`
	Phone          string                 `json:"phone"`
	Company        string                 `json:"company"`
	Title          string                 `json:"title"`
	Status         ContactStatus          `json:"status"`
	Source         ContactSource          `json:"source"`
	LifecycleStage LifecycleStage         `json:"lifecycle_stage"`
	LeadScore      int                    `json:"lead_score"`
	Tags           []string               `json:"tags"`
	CustomFields   map[string]interface{} `json:"custom_fields"`
	Notes          string                 `json:"notes"`
	NextFollowUp   *time.Time             `json:"next_follow_up"`
	AssignedTo     string                 `json:"assigned_to"`
}

// ContactList 分页联系人列表
type ContactList struct {
	Items      []Contact `json:"items"`
	TotalItems int64     `json:"totalItems"`
	TotalPages int       `json:"totalPages"`
}

// ContactStats 联系人统计信息
type ContactStats struct {
	Total        int            `json:"total"`
	ByStatus     map[string]int `json:"by_status"`
	BySource     map[string]int `json:"by_source"`
	ByLifecycle  map[string]int `json:"by_lifecycle"`
	Recent       int            `json:"recent"`
	AvgLeadScore int            `json:"avg_lead_score"`
}

// ImportResult CSV导入结果，逐行累计，失败不回滚已成功的行
type ImportResult struct {
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors"`
}
