package models

import (
	"time"
)

// DealStage 商机管道阶段，看板按此固定顺序渲染各列。
// 阶段集合无序列约束，卡片可以在任意两个阶段之间拖动。
type DealStage string

const (
	DealStageLead          DealStage = "Lead"
	DealStageContacted     DealStage = "Contacted"
	DealStageDemoScheduled DealStage = "Demo Scheduled"
	DealStageTrial         DealStage = "Trial"
	DealStageSubscribed    DealStage = "Subscribed"
	// DealStageClosedWon Subscribed的终态别名，含义为已转化收入
	DealStageClosedWon DealStage = "Closed Won"
)

// PipelineStages 看板列的固定顺序
var PipelineStages = []DealStage{
	DealStageLead,
	DealStageContacted,
	DealStageDemoScheduled,
	DealStageTrial,
	DealStageSubscribed,
}

// IsValidDealStage 校验阶段名称是否属于固定集合
func IsValidDealStage(stage DealStage) bool {
	for _, s := range PipelineStages {
		if s == stage {
			return true
		}
	}
	return stage == DealStageClosedWon
}

// IsWonStage 判断阶段是否表示已转化收入
func IsWonStage(stage DealStage) bool {
	return stage == DealStageClosedWon || stage == DealStageSubscribed
}

// DealStatus 商机状态枚举
type DealStatus string

const (
	DealStatusOpen DealStatus = "open"
	DealStatusWon  DealStatus = "won"
	DealStatusLost DealStatus = "lost"
)

// Deal 商机模型
type Deal struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty"`
	Title     string    `json:"title" bson:"title"`
	ContactID string    `json:"contact_id,omitempty" bson:"contact_id,omitempty"`
	Stage     DealStage `json:"stage" bson:"stage"`

	// Value 金额，非负
	Value    float64 `json:"value" bson:"value"`
	Currency string  `json:"currency" bson:"currency"`

	// Probability 成交概率0-100；缺省时预测计算按50处理
	Probability *int `json:"probability,omitempty" bson:"probability,omitempty"`

	// WeightedValue = Value * Probability / 100，创建和更新时预先算好
	WeightedValue float64 `json:"weighted_value" bson:"weighted_value"`

	ExpectedCloseDate *time.Time `json:"expected_close_date,omitempty" bson:"expected_close_date,omitempty"`
	ActualCloseDate   *time.Time `json:"actual_close_date,omitempty" bson:"actual_close_date,omitempty"`

	Status      DealStatus `json:"status" bson:"status"`
	AssignedTo  string     `json:"assigned_to" bson:"assigned_to"`
	Description string     `json:"description,omitempty" bson:"description,omitempty"`
	ContactName string     `json:"contact_name,omitempty" bson:"contact_name,omitempty"`

	Created time.Time `json:"created" bson:"created"`
	Updated time.Time `json:"updated" bson:"updated"`
}

// EffectiveProbability 取成交概率，缺省按50
func (d *Deal) EffectiveProbability() int {
	if d.Probability == nil {
		return 50
	}
	return *d.Probability
}

// DealCreateRequest 创建商机请求
type DealCreateRequest struct {
	Title             string     `json:"title" binding:"required"`
	ContactID         string     `json:"contact_id"`
	Stage             DealStage  `json:"stage"`
	Value             float64    `json:"value"`
	Currency          string     `json:"currency"`
	Probability       *int       `json:"probability"`
	ExpectedCloseDate *time.Time `json:"expected_close_date"`
	AssignedTo        string     `json:"assigned_to"`
	Description       string     `json:"description"`
	ContactName       string     `json:"contact_name"`
}

// DealAssignment 商机分配记录，团队业绩统计的连接表
type DealAssignment struct {
	ID           string    `json:"id,omitempty" bson:"_id,omitempty"`
	DealID       string    `json:"deal_id" bson:"deal_id"`
	AssigneeID   string    `json:"assignee_id" bson:"assignee_id"`
	AssigneeName string    `json:"assignee_name" bson:"assignee_name"`
	Created      time.Time `json:"created" bson:"created"`
}

// ForecastBucket 收入预测的月度桶
type ForecastBucket struct {
	Month     string  `json:"month"`
	Projected float64 `json:"projected"`
	Actual    float64 `json:"actual"`
}
