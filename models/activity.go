package models

import (
	"time"
)

// ActivityType 联系人活动类型枚举
type ActivityType string

const (
	ActivityTypeEmail   ActivityType = "email"
	ActivityTypeCall    ActivityType = "call"
	ActivityTypeMeeting ActivityType = "meeting"
	ActivityTypeNote    ActivityType = "note"
	ActivityTypeTask    ActivityType = "task"
	ActivityTypeDeal    ActivityType = "deal"
)

// ContactActivity 联系人活动日志，只追加不修改
type ContactActivity struct {
	ID          string       `json:"id,omitempty" bson:"_id,omitempty"`
	ContactID   string       `json:"contact_id" bson:"contact_id"`
	Type        ActivityType `json:"type" bson:"type"`
	Description string       `json:"description" bson:"description"`
	PerformedBy string       `json:"performed_by" bson:"performed_by"`
	PerformedAt time.Time    `json:"performed_at" bson:"performed_at"`
}
