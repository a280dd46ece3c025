package models

import (
	"time"
)

// Campaign 营销活动，看板只读消费
type Campaign struct {
	ID               string    `json:"id,omitempty" bson:"_id,omitempty"`
	Name             string    `json:"name" bson:"name"`
	Status           string    `json:"status" bson:"status"`
	Budget           float64   `json:"budget" bson:"budget"`
	Spent            float64   `json:"spent" bson:"spent"`
	Impressions      int       `json:"impressions" bson:"impressions"`
	Clicks           int       `json:"clicks" bson:"clicks"`
	Conversions      int       `json:"conversions" bson:"conversions"`
	PerformanceScore float64   `json:"performance_score" bson:"performance_score"`
	Created          time.Time `json:"created" bson:"created"`
	Updated          time.Time `json:"updated" bson:"updated"`
}

// CampaignSummary 活动汇总指标
type CampaignSummary struct {
	Total            int     `json:"total"`
	TotalBudget      float64 `json:"totalBudget"`
	TotalSpent       float64 `json:"totalSpent"`
	TotalImpressions int     `json:"totalImpressions"`
	TotalClicks      int     `json:"totalClicks"`
	TotalConversions int     `json:"totalConversions"`
	AvgCTR           float64 `json:"avgCtr"`
	AvgCPC           float64 `json:"avgCpc"`
}
