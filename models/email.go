package models

import (
	"time"
)

// EmailStatus 邮件状态枚举
type EmailStatus string

const (
	EmailStatusDraft     EmailStatus = "draft"
	EmailStatusSent      EmailStatus = "sent"
	EmailStatusDelivered EmailStatus = "delivered"
	EmailStatusOpened    EmailStatus = "opened"
	EmailStatusClicked   EmailStatus = "clicked"
)

// EmailTemplate 邮件模板，正文和主题使用{{variable}}占位符
type EmailTemplate struct {
	ID              string    `json:"id,omitempty" bson:"_id,omitempty"`
	Name            string    `json:"name" bson:"name"`
	SubjectTemplate string    `json:"subject_template" bson:"subject_template"`
	BodyTemplate    string    `json:"body_template" bson:"body_template"`
	Variables       []string  `json:"variables" bson:"variables"`
	Created         time.Time `json:"created" bson:"created"`
	Updated         time.Time `json:"updated" bson:"updated"`
}

// Email 邮件发送记录
type Email struct {
	ID        string      `json:"id,omitempty" bson:"_id,omitempty"`
	ContactID string      `json:"contact_id" bson:"contact_id"`
	Subject   string      `json:"subject" bson:"subject"`
	Body      string      `json:"body" bson:"body"`
	Status    EmailStatus `json:"status" bson:"status"`
	SentAt    *time.Time  `json:"sent_at,omitempty" bson:"sent_at,omitempty"`
	OpenedAt  *time.Time  `json:"opened_at,omitempty" bson:"opened_at,omitempty"`
	Created   time.Time   `json:"created" bson:"created"`
	Updated   time.Time   `json:"updated" bson:"updated"`
}

// EmailDraft 每个联系人唯一的一条草稿记录，保存时覆盖而非追加
type EmailDraft struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty"`
	ContactID string    `json:"contact_id" bson:"contact_id"`
	Subject   string    `json:"subject" bson:"subject"`
	Body      string    `json:"body" bson:"body"`
	Created   time.Time `json:"created" bson:"created"`
	Updated   time.Time `json:"updated" bson:"updated"`
}

// EmailAnalytics 邮件互动指标
type EmailAnalytics struct {
	TotalSent    int                   `json:"totalSent"`
	TotalOpened  int                   `json:"totalOpened"`
	TotalClicked int                   `json:"totalClicked"`
	OpenRate     float64               `json:"openRate"`
	ClickRate    float64               `json:"clickRate"`
	ByMonth      []EmailMonthBreakdown `json:"byMonth"`
}

// EmailMonthBreakdown 按月邮件统计
type EmailMonthBreakdown struct {
	Month  string `json:"month"`
	Sent   int    `json:"sent"`
	Opened int    `json:"opened"`
}
