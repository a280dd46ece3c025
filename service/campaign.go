package service

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/growyourneed/crm_backend/models"
	"github.com/growyourneed/crm_backend/repository"
	"github.com/growyourneed/crm_backend/utils"
)

// CampaignService 营销活动，看板只读为主的轻量层
type CampaignService struct {
	store repository.Store
}

func NewCampaignService(store repository.Store) *CampaignService {
	return &CampaignService{store: store}
}

// GetCampaigns 取营销活动列表，status为空时不过滤
func (s *CampaignService) GetCampaigns(ctx context.Context, status string) ([]models.Campaign, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}

	var campaigns []models.Campaign
	if err := s.store.GetFullList(ctx, repository.CampaignsCollection, filter, "-created", &campaigns); err != nil {
		return nil, err
	}
	if campaigns == nil {
		campaigns = []models.Campaign{}
	}
	return campaigns, nil
}

// GetCampaignByID 按ID取营销活动
func (s *CampaignService) GetCampaignByID(ctx context.Context, id string) (*models.Campaign, error) {
	var campaign models.Campaign
	if err := s.store.GetOne(ctx, repository.CampaignsCollection, id, &campaign); err != nil {
		return nil, err
	}
	return &campaign, nil
}

// CreateCampaign 创建营销活动
func (s *CampaignService) CreateCampaign(ctx context.Context, campaign models.Campaign) (*models.Campaign, error) {
	if campaign.Name == "" {
		return nil, utils.NewApiError("活动名称不能为空", 400, "VALIDATION_ERROR")
	}
	if campaign.Status == "" {
		campaign.Status = "active"
	}

	now := time.Now()
	campaign.Created = now
	campaign.Updated = now
	id, err := s.store.Create(ctx, repository.CampaignsCollection, campaign)
	if err != nil {
		return nil, err
	}
	campaign.ID = id
	return &campaign, nil
}

// GetCampaignSummary 活动汇总指标，点击率和单次点击成本
func (s *CampaignService) GetCampaignSummary(ctx context.Context) (*models.CampaignSummary, error) {
	campaigns, err := s.GetCampaigns(ctx, "")
	if err != nil {
		return nil, err
	}

	summary := &models.CampaignSummary{Total: len(campaigns)}
	for _, c := range campaigns {
		summary.TotalBudget += c.Budget
		summary.TotalSpent += c.Spent
		summary.TotalImpressions += c.Impressions
		summary.TotalClicks += c.Clicks
		summary.TotalConversions += c.Conversions
	}
	if summary.TotalImpressions > 0 {
		summary.AvgCTR = float64(summary.TotalClicks) / float64(summary.TotalImpressions) * 100
	}
	if summary.TotalClicks > 0 {
		summary.AvgCPC = summary.TotalSpent / float64(summary.TotalClicks)
	}
	return summary, nil
}
