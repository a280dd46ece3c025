package models

// ConversionRates 联系人转化率，分母为0时各项取0
type ConversionRates struct {
	LeadToProspect     float64 `json:"lead_to_prospect"`
	ProspectToCustomer float64 `json:"prospect_to_customer"`
	Overall            float64 `json:"overall"`
}

// PipelineHealth 在途商机按阶段分布
type PipelineHealth struct {
	ByStage       map[string]int `json:"by_stage"`
	TotalValue    float64        `json:"total_value"`
	WeightedValue float64        `json:"weighted_value"`
}

// WinLossAnalysis 赢单输单分析
type WinLossAnalysis struct {
	Won          int     `json:"won"`
	Lost         int     `json:"lost"`
	WinRate      float64 `json:"win_rate"`
	AvgCycleTime float64 `json:"avg_cycle_time"` // 天
}

// RevenuePeriodItem 某期间的已成交收入
type RevenuePeriodItem struct {
	Period  string  `json:"period"`
	Revenue float64 `json:"revenue"`
	Deals   int     `json:"deals"`
}

// TeamMemberPerformance 单个成员的业绩
type TeamMemberPerformance struct {
	AssigneeID   string  `json:"assignee_id"`
	AssigneeName string  `json:"assignee_name"`
	Deals        int     `json:"deals"`
	Won          int     `json:"won"`
	Revenue      float64 `json:"revenue"`
	WinRate      float64 `json:"winRate"`
}

// TeamPerformance 团队业绩汇总
type TeamPerformance struct {
	Members      []TeamMemberPerformance `json:"members"`
	TopPerformer string                  `json:"topPerformer"`
}
