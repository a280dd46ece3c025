package service

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/growyourneed/crm_backend/models"
	"github.com/growyourneed/crm_backend/repository"
	"github.com/growyourneed/crm_backend/utils"
)

// DealService 商机管道管理：阶段流转、加权收入预测
type DealService struct {
	store repository.Store
	audit *AuditService
}

func NewDealService(store repository.Store, audit *AuditService) *DealService {
	return &DealService{store: store, audit: audit}
}

// weightedValue 加权金额 = 金额 * 概率 / 100
func weightedValue(value float64, probability int) float64 {
	return value * float64(probability) / 100
}

// GetAllDeals 取全部商机，按创建时间倒序
func (s *DealService) GetAllDeals(ctx context.Context) ([]models.Deal, error) {
	var deals []models.Deal
	if err := s.store.GetFullList(ctx, repository.DealsCollection, bson.M{}, "-created", &deals); err != nil {
		utils.LogError(err, nil, "查询商机列表失败")
		return nil, err
	}
	if deals == nil {
		deals = []models.Deal{}
	}
	return deals, nil
}

// GetDealByID 按ID取商机
func (s *DealService) GetDealByID(ctx context.Context, id string) (*models.Deal, error) {
	var deal models.Deal
	if err := s.store.GetOne(ctx, repository.DealsCollection, id, &deal); err != nil {
		return nil, err
	}
	return &deal, nil
}

// GetDealsByStage 按阶段取商机，看板各列的数据来源
func (s *DealService) GetDealsByStage(ctx context.Context, stage models.DealStage) ([]models.Deal, error) {
	var deals []models.Deal
	filter := bson.M{"stage": string(stage)}
	if err := s.store.GetFullList(ctx, repository.DealsCollection, filter, "-created", &deals); err != nil {
		return nil, err
	}
	if deals == nil {
		deals = []models.Deal{}
	}
	return deals, nil
}

// CreateDeal 创建商机。金额非负，阶段必须在固定集合内
func (s *DealService) CreateDeal(ctx context.Context, req *models.DealCreateRequest, userID string) (*models.Deal, error) {
	if req.Title == "" {
		return nil, utils.NewApiError("商机标题不能为空", 400, "VALIDATION_ERROR")
	}
	if req.Value < 0 {
		return nil, utils.NewApiError("商机金额不能为负数", 400, "VALIDATION_ERROR")
	}
	if req.Stage == "" {
		req.Stage = models.DealStageLead
	}
	if !models.IsValidDealStage(req.Stage) {
		return nil, utils.NewApiError(fmt.Sprintf("无效的商机阶段: %s", req.Stage), 400, "VALIDATION_ERROR")
	}

	now := time.Now()
	deal := models.Deal{
		Title:             req.Title,
		ContactID:         req.ContactID,
		Stage:             req.Stage,
		Value:             req.Value,
		Currency:          req.Currency,
		Probability:       req.Probability,
		ExpectedCloseDate: req.ExpectedCloseDate,
		Status:            models.DealStatusOpen,
		AssignedTo:        req.AssignedTo,
		Description:       req.Description,
		ContactName:       req.ContactName,
		Created:           now,
		Updated:           now,
	}
	if deal.Currency == "" {
		deal.Currency = "USD"
	}
	deal.WeightedValue = weightedValue(deal.Value, deal.EffectiveProbability())

	id, err := s.store.Create(ctx, repository.DealsCollection, deal)
	if err != nil {
		utils.LogError(err, map[string]interface{}{"title": req.Title}, "创建商机失败")
		return nil, err
	}
	deal.ID = id

	s.audit.Log(ctx, models.AuditLog{
		Action:       "dealCreate",
		UserID:       userID,
		ResourceType: "deal",
		ResourceID:   id,
		Severity:     models.AuditSeverityInfo,
		Metadata:     map[string]interface{}{"title": deal.Title, "value": deal.Value},
	})
	return &deal, nil
}

// UpdateDealStage 无条件覆盖商机阶段。
// 管道不强制单向推进，任意阶段之间都允许移动（看板拖拽语义）。
func (s *DealService) UpdateDealStage(ctx context.Context, id string, stage models.DealStage, userID string) (*models.Deal, error) {
	if !models.IsValidDealStage(stage) {
		return nil, utils.NewApiError(fmt.Sprintf("无效的商机阶段: %s", stage), 400, "VALIDATION_ERROR")
	}

	set := bson.M{"stage": string(stage), "updated": time.Now()}
	if err := s.store.Update(ctx, repository.DealsCollection, id, set); err != nil {
		utils.LogError(err, map[string]interface{}{"id": id, "stage": stage}, "更新商机阶段失败")
		return nil, err
	}

	s.audit.Log(ctx, models.AuditLog{
		Action:       "dealStageUpdate",
		UserID:       userID,
		ResourceType: "deal",
		ResourceID:   id,
		Severity:     models.AuditSeverityInfo,
		Metadata:     map[string]interface{}{"stage": string(stage)},
	})
	return s.GetDealByID(ctx, id)
}

// UpdateDealValue 更新金额并重算加权金额
func (s *DealService) UpdateDealValue(ctx context.Context, id string, value float64) (*models.Deal, error) {
	if value < 0 {
		return nil, utils.NewApiError("商机金额不能为负数", 400, "VALIDATION_ERROR")
	}
	deal, err := s.GetDealByID(ctx, id)
	if err != nil {
		return nil, err
	}

	set := bson.M{
		"value":          value,
		"weighted_value": weightedValue(value, deal.EffectiveProbability()),
		"updated":        time.Now(),
	}
	if err := s.store.Update(ctx, repository.DealsCollection, id, set); err != nil {
		return nil, err
	}
	return s.GetDealByID(ctx, id)
}

// UpdateDealProbability 更新成交概率并重算加权金额
func (s *DealService) UpdateDealProbability(ctx context.Context, id string, probability int) (*models.Deal, error) {
	if probability < 0 || probability > 100 {
		return nil, utils.NewApiError("成交概率必须在0到100之间", 400, "VALIDATION_ERROR")
	}
	deal, err := s.GetDealByID(ctx, id)
	if err != nil {
		return nil, err
	}

	set := bson.M{
		"probability":    probability,
		"weighted_value": weightedValue(deal.Value, probability),
		"updated":        time.Now(),
	}
	if err := s.store.Update(ctx, repository.DealsCollection, id, set); err != nil {
		return nil, err
	}
	return s.GetDealByID(ctx, id)
}

// UpdateDealCloseDate 更新预计成交日期
func (s *DealService) UpdateDealCloseDate(ctx context.Context, id string, closeDate time.Time) (*models.Deal, error) {
	set := bson.M{"expected_close_date": closeDate, "updated": time.Now()}
	if err := s.store.Update(ctx, repository.DealsCollection, id, set); err != nil {
		return nil, err
	}
	return s.GetDealByID(ctx, id)
}

// MarkDealWon 标记赢单：概率置100，记录实际成交日期
func (s *DealService) MarkDealWon(ctx context.Context, id, userID string) (*models.Deal, error) {
	deal, err := s.GetDealByID(ctx, id)
	if err != nil {
		return nil, err
	}

	set := bson.M{
		"status":            string(models.DealStatusWon),
		"stage":             string(models.DealStageSubscribed),
		"probability":       100,
		"weighted_value":    deal.Value,
		"actual_close_date": time.Now(),
		"updated":           time.Now(),
	}
	if err := s.store.Update(ctx, repository.DealsCollection, id, set); err != nil {
		return nil, err
	}

	s.audit.Log(ctx, models.AuditLog{
		Action:       "dealWon",
		UserID:       userID,
		ResourceType: "deal",
		ResourceID:   id,
		Severity:     models.AuditSeverityInfo,
		Metadata:     map[string]interface{}{"value": deal.Value},
	})
	return s.GetDealByID(ctx, id)
}

// MarkDealLost 标记输单：概率和加权金额归零，记录实际关闭日期
func (s *DealService) MarkDealLost(ctx context.Context, id, userID string) (*models.Deal, error) {
	set := bson.M{
		"status":            string(models.DealStatusLost),
		"probability":       0,
		"weighted_value":    float64(0),
		"actual_close_date": time.Now(),
		"updated":           time.Now(),
	}
	if err := s.store.Update(ctx, repository.DealsCollection, id, set); err != nil {
		return nil, err
	}

	s.audit.Log(ctx, models.AuditLog{
		Action:       "dealLost",
		UserID:       userID,
		ResourceType: "deal",
		ResourceID:   id,
		Severity:     models.AuditSeverityInfo,
	})
	return s.GetDealByID(ctx, id)
}

// DeleteDeal 删除商机，审计级别为warning
func (s *DealService) DeleteDeal(ctx context.Context, id, userID string) error {
	if err := s.store.Delete(ctx, repository.DealsCollection, id); err != nil {
		utils.LogError(err, map[string]interface{}{"id": id}, "删除商机失败")
		return err
	}

	s.audit.Log(ctx, models.AuditLog{
		Action:       "dealDelete",
		UserID:       userID,
		ResourceType: "deal",
		ResourceID:   id,
		Severity:     models.AuditSeverityWarning,
		Metadata:     map[string]interface{}{"deal_id": id},
	})
	return nil
}

// AssignDeal 分配商机给销售，同时更新商机的assigned_to
func (s *DealService) AssignDeal(ctx context.Context, dealID, assigneeID, assigneeName, userID string) (*models.DealAssignment, error) {
	if _, err := s.GetDealByID(ctx, dealID); err != nil {
		return nil, err
	}

	assignment := models.DealAssignment{
		DealID:       dealID,
		AssigneeID:   assigneeID,
		AssigneeName: assigneeName,
		Created:      time.Now(),
	}
	id, err := s.store.Create(ctx, repository.DealAssignmentsCollection, assignment)
	if err != nil {
		return nil, err
	}
	assignment.ID = id

	set := bson.M{"assigned_to": assigneeID, "updated": time.Now()}
	if err := s.store.Update(ctx, repository.DealsCollection, dealID, set); err != nil {
		utils.LogError(err, map[string]interface{}{"deal_id": dealID}, "更新商机负责人失败")
	}

	s.audit.Log(ctx, models.AuditLog{
		Action:       "dealAssign",
		UserID:       userID,
		ResourceType: "deal",
		ResourceID:   dealID,
		Severity:     models.AuditSeverityInfo,
		Metadata:     map[string]interface{}{"assignee_id": assigneeID},
	})
	return &assignment, nil
}

// Forecast 按月计算收入预测。
// 窗口由起止月份和年份显式指定；预计成交日期缺失的商机按当前时间归桶，
// 落在窗口外的商机直接排除，不并入其他桶。
func (s *DealService) Forecast(ctx context.Context, startMonth, endMonth time.Month, year int) ([]models.ForecastBucket, error) {
	if startMonth > endMonth {
		return nil, utils.NewApiError("预测窗口起始月份不能晚于结束月份", 400, "VALIDATION_ERROR")
	}

	deals, err := s.GetAllDeals(ctx)
	if err != nil {
		return nil, err
	}

	buckets := make([]models.ForecastBucket, 0, int(endMonth-startMonth)+1)
	index := make(map[string]int)
	for m := startMonth; m <= endMonth; m++ {
		key := fmt.Sprintf("%04d-%02d", year, int(m))
		index[key] = len(buckets)
		buckets = append(buckets, models.ForecastBucket{Month: key})
	}

	now := time.Now()
	for _, d := range deals {
		bucketAt := now
		if d.ExpectedCloseDate != nil {
			bucketAt = *d.ExpectedCloseDate
		}
		key := fmt.Sprintf("%04d-%02d", bucketAt.Year(), int(bucketAt.Month()))
		i, ok := index[key]
		if !ok {
			continue
		}

		buckets[i].Projected += weightedValue(d.Value, d.EffectiveProbability())
		if models.IsWonStage(d.Stage) {
			buckets[i].Actual += d.Value
		}
	}
	return buckets, nil
}

// GetForecastedRevenue 指定月份在途商机的加权金额合计。
// 只统计预计成交日期落在该月内的商机，没有预计日期的不计入。
func (s *DealService) GetForecastedRevenue(ctx context.Context, month time.Month, year int) (float64, error) {
	var deals []models.Deal
	filter := bson.M{"status": string(models.DealStatusOpen)}
	if err := s.store.GetFullList(ctx, repository.DealsCollection, filter, "", &deals); err != nil {
		return 0, err
	}

	total := 0.0
	for _, d := range deals {
		if d.ExpectedCloseDate == nil {
			continue
		}
		if d.ExpectedCloseDate.Year() != year || d.ExpectedCloseDate.Month() != month {
			continue
		}
		total += d.WeightedValue
	}
	return total, nil
}
