package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/growyourneed/crm_backend/models"
	"github.com/growyourneed/crm_backend/repository"
)

type analyticsFixture struct {
	store     repository.Store
	analytics *AnalyticsService
	contacts  *ContactService
	deals     *DealService
}

func newAnalyticsFixture() *analyticsFixture {
	store := repository.NewMemoryStore()
	audit := NewAuditService(store)
	return &analyticsFixture{
		store:     store,
		analytics: NewAnalyticsService(store),
		contacts:  NewContactService(store, audit),
		deals:     NewDealService(store, audit),
	}
}

func TestConversionRatesEmpty(t *testing.T) {
	f := newAnalyticsFixture()

	rates, err := f.analytics.GetConversionRates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0.0, rates.LeadToProspect)
	assert.Equal(t, 0.0, rates.ProspectToCustomer)
	assert.Equal(t, 0.0, rates.Overall)
}

func TestConversionRates(t *testing.T) {
	f := newAnalyticsFixture()
	ctx := context.Background()

	add := func(email string, status models.ContactStatus) {
		_, err := f.contacts.CreateContact(ctx, &models.ContactCreateRequest{
			Email: email, Status: status,
		}, "tester")
		require.NoError(t, err)
	}
	add("l1@x.com", models.ContactStatusLead)
	add("l2@x.com", models.ContactStatusLead)
	add("l3@x.com", models.ContactStatusLead)
	add("l4@x.com", models.ContactStatusLead)
	add("p1@x.com", models.ContactStatusProspect)
	add("p2@x.com", models.ContactStatusProspect)
	add("c1@x.com", models.ContactStatusCustomer)

	rates, err := f.analytics.GetConversionRates(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, rates.LeadToProspect, 0.001)
	assert.InDelta(t, 50.0, rates.ProspectToCustomer, 0.001)
	assert.InDelta(t, 25.0, rates.Overall, 0.001)
}

func TestPipelineHealthOpenOnly(t *testing.T) {
	f := newAnalyticsFixture()
	ctx := context.Background()

	_, err := f.deals.CreateDeal(ctx, &models.DealCreateRequest{
		Title: "在途A", Value: 1000, Stage: models.DealStageTrial, Probability: intPtr(50),
	}, "tester")
	require.NoError(t, err)
	_, err = f.deals.CreateDeal(ctx, &models.DealCreateRequest{
		Title: "在途B", Value: 2000, Stage: models.DealStageTrial, Probability: intPtr(25),
	}, "tester")
	require.NoError(t, err)
	lost, err := f.deals.CreateDeal(ctx, &models.DealCreateRequest{
		Title: "已输", Value: 9999, Stage: models.DealStageContacted,
	}, "tester")
	require.NoError(t, err)
	_, err = f.deals.MarkDealLost(ctx, lost.ID, "tester")
	require.NoError(t, err)

	health, err := f.analytics.GetPipelineHealth(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, health.ByStage[string(models.DealStageTrial)])
	// 非在途商机不计入，阶段也预置为0
	assert.Equal(t, 0, health.ByStage[string(models.DealStageContacted)])
	assert.Equal(t, 0, health.ByStage[string(models.DealStageLead)])
	assert.Equal(t, 3000.0, health.TotalValue)
	assert.Equal(t, 1000.0, health.WeightedValue)
}

func TestWinLossAnalysis(t *testing.T) {
	f := newAnalyticsFixture()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		deal, err := f.deals.CreateDeal(ctx, &models.DealCreateRequest{Title: "赢", Value: 100}, "tester")
		require.NoError(t, err)
		_, err = f.deals.MarkDealWon(ctx, deal.ID, "tester")
		require.NoError(t, err)
	}
	deal, err := f.deals.CreateDeal(ctx, &models.DealCreateRequest{Title: "输", Value: 100}, "tester")
	require.NoError(t, err)
	_, err = f.deals.MarkDealLost(ctx, deal.ID, "tester")
	require.NoError(t, err)

	analysis, err := f.analytics.GetWinLossAnalysis(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, analysis.Won)
	assert.Equal(t, 1, analysis.Lost)
	assert.InDelta(t, 75.0, analysis.WinRate, 0.001)
}

func TestWinLossAnalysisEmpty(t *testing.T) {
	f := newAnalyticsFixture()

	analysis, err := f.analytics.GetWinLossAnalysis(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0.0, analysis.WinRate)
	assert.Equal(t, 0.0, analysis.AvgCycleTime)
}

func TestRevenueByPeriodIgnoresGranularity(t *testing.T) {
	f := newAnalyticsFixture()
	ctx := context.Background()

	deal, err := f.deals.CreateDeal(ctx, &models.DealCreateRequest{Title: "成交", Value: 12000}, "tester")
	require.NoError(t, err)
	_, err = f.deals.MarkDealWon(ctx, deal.ID, "tester")
	require.NoError(t, err)

	byMonth, err := f.analytics.GetRevenueByPeriod(ctx, "month")
	require.NoError(t, err)
	byQuarter, err := f.analytics.GetRevenueByPeriod(ctx, "quarter")
	require.NoError(t, err)
	byYear, err := f.analytics.GetRevenueByPeriod(ctx, "year")
	require.NoError(t, err)

	// 粒度参数目前不生效，三种参数返回相同的月度序列
	assert.Equal(t, byMonth, byQuarter)
	assert.Equal(t, byMonth, byYear)

	require.Len(t, byMonth, 1)
	assert.Equal(t, time.Now().Format("2006-01"), byMonth[0].Period)
	assert.Equal(t, 12000.0, byMonth[0].Revenue)
	assert.Equal(t, 1, byMonth[0].Deals)
}

func TestEmailAnalyticsComputed(t *testing.T) {
	f := newAnalyticsFixture()
	ctx := context.Background()

	now := time.Now()
	addEmail := func(status models.EmailStatus) {
		_, err := f.store.Create(ctx, repository.EmailsCollection, models.Email{
			ContactID: "c1", Subject: "hi", Status: status,
			SentAt: &now, Created: now, Updated: now,
		})
		require.NoError(t, err)
	}
	addEmail(models.EmailStatusSent)
	addEmail(models.EmailStatusOpened)
	addEmail(models.EmailStatusClicked)
	addEmail(models.EmailStatusClicked)
	// 草稿不计入
	_, err := f.store.Create(ctx, repository.EmailsCollection, models.Email{
		ContactID: "c1", Status: models.EmailStatusDraft, Created: now, Updated: now,
	})
	require.NoError(t, err)

	analytics, err := f.analytics.GetEmailAnalytics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, analytics.TotalSent)
	assert.Equal(t, 3, analytics.TotalOpened)
	assert.Equal(t, 2, analytics.TotalClicked)
	assert.InDelta(t, 75.0, analytics.OpenRate, 0.001)
	assert.InDelta(t, 50.0, analytics.ClickRate, 0.001)
	require.Len(t, analytics.ByMonth, 1)
	assert.Equal(t, now.Format("2006-01"), analytics.ByMonth[0].Month)
	assert.Equal(t, 4, analytics.ByMonth[0].Sent)
	assert.Equal(t, 3, analytics.ByMonth[0].Opened)
}

// failingStore 模拟存储不可用，GetFullList总是返回错误
type failingStore struct {
	repository.Store
}

func (f *failingStore) GetFullList(ctx context.Context, coll string, filter bson.M, sort string, out interface{}) error {
	return errors.New("storage unavailable")
}

func TestEmailAnalyticsFallback(t *testing.T) {
	svc := NewAnalyticsService(&failingStore{Store: repository.NewMemoryStore()})

	analytics, err := svc.GetEmailAnalytics(context.Background())
	require.NoError(t, err)
	require.NotNil(t, analytics)
	// 降级数据形状完整：六个月序列，比率在合法区间
	assert.Len(t, analytics.ByMonth, 6)
	assert.Greater(t, analytics.TotalSent, 0)
	assert.GreaterOrEqual(t, analytics.OpenRate, 0.0)
	assert.LessOrEqual(t, analytics.OpenRate, 100.0)
	assert.Equal(t, time.Now().Format("2006-01"), analytics.ByMonth[5].Month)
}

func TestTeamPerformance(t *testing.T) {
	f := newAnalyticsFixture()
	ctx := context.Background()

	wonDeal, err := f.deals.CreateDeal(ctx, &models.DealCreateRequest{Title: "大单", Value: 50000}, "tester")
	require.NoError(t, err)
	_, err = f.deals.AssignDeal(ctx, wonDeal.ID, "sales_li", "李销售", "tester")
	require.NoError(t, err)
	_, err = f.deals.MarkDealWon(ctx, wonDeal.ID, "tester")
	require.NoError(t, err)

	openDeal, err := f.deals.CreateDeal(ctx, &models.DealCreateRequest{Title: "小单", Value: 100}, "tester")
	require.NoError(t, err)
	_, err = f.deals.AssignDeal(ctx, openDeal.ID, "sales_zhang", "张销售", "tester")
	require.NoError(t, err)

	perf, err := f.analytics.GetTeamPerformance(ctx)
	require.NoError(t, err)
	require.Len(t, perf.Members, 2)
	assert.Equal(t, "sales_li", perf.TopPerformer)

	byID := map[string]models.TeamMemberPerformance{}
	for _, m := range perf.Members {
		byID[m.AssigneeID] = m
	}
	assert.Equal(t, 1, byID["sales_li"].Won)
	assert.Equal(t, 50000.0, byID["sales_li"].Revenue)
	assert.InDelta(t, 100.0, byID["sales_li"].WinRate, 0.001)
	assert.Equal(t, 0, byID["sales_zhang"].Won)
	assert.InDelta(t, 0.0, byID["sales_zhang"].WinRate, 0.001)
}
