package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/growyourneed/crm_backend/models"
	"github.com/growyourneed/crm_backend/repository"
)

func newTestDealService() *DealService {
	store := repository.NewMemoryStore()
	return NewDealService(store, NewAuditService(store))
}

func intPtr(v int) *int { return &v }

func mustCreateDeal(t *testing.T, svc *DealService, req *models.DealCreateRequest) *models.Deal {
	t.Helper()
	deal, err := svc.CreateDeal(context.Background(), req, "tester")
	require.NoError(t, err)
	require.NotNil(t, deal)
	return deal
}

func TestCreateDealDefaults(t *testing.T) {
	svc := newTestDealService()

	deal := mustCreateDeal(t, svc, &models.DealCreateRequest{
		Title: "试用转付费",
		Value: 10000,
	})

	assert.Equal(t, models.DealStageLead, deal.Stage)
	assert.Equal(t, models.DealStatusOpen, deal.Status)
	assert.Equal(t, "USD", deal.Currency)
	// 概率缺省按50计权
	assert.Nil(t, deal.Probability)
	assert.Equal(t, 50, deal.EffectiveProbability())
	assert.Equal(t, 5000.0, deal.WeightedValue)
}

func TestCreateDealValidation(t *testing.T) {
	svc := newTestDealService()
	ctx := context.Background()

	_, err := svc.CreateDeal(ctx, &models.DealCreateRequest{Value: 1}, "tester")
	assert.Error(t, err)

	_, err = svc.CreateDeal(ctx, &models.DealCreateRequest{Title: "负金额", Value: -1}, "tester")
	assert.Error(t, err)

	_, err = svc.CreateDeal(ctx, &models.DealCreateRequest{Title: "乱阶段", Stage: "Nonsense"}, "tester")
	assert.Error(t, err)
}

func TestCreateDealExplicitProbability(t *testing.T) {
	svc := newTestDealService()

	deal := mustCreateDeal(t, svc, &models.DealCreateRequest{
		Title: "续约", Value: 8000, Probability: intPtr(25),
	})
	assert.Equal(t, 2000.0, deal.WeightedValue)
}

func TestUpdateDealStageUnconditional(t *testing.T) {
	svc := newTestDealService()
	ctx := context.Background()

	deal := mustCreateDeal(t, svc, &models.DealCreateRequest{
		Title: "阶段流转", Value: 100, Stage: models.DealStageTrial,
	})

	// 往前推进
	got, err := svc.UpdateDealStage(ctx, deal.ID, models.DealStageSubscribed, "tester")
	require.NoError(t, err)
	assert.Equal(t, models.DealStageSubscribed, got.Stage)

	// 往回退也允许，覆盖式写入
	got, err = svc.UpdateDealStage(ctx, deal.ID, models.DealStageLead, "tester")
	require.NoError(t, err)
	assert.Equal(t, models.DealStageLead, got.Stage)

	_, err = svc.UpdateDealStage(ctx, deal.ID, "Bogus", "tester")
	assert.Error(t, err)
}

func TestUpdateDealProbabilityRecomputesWeight(t *testing.T) {
	svc := newTestDealService()
	ctx := context.Background()

	deal := mustCreateDeal(t, svc, &models.DealCreateRequest{Title: "权重", Value: 1000})

	got, err := svc.UpdateDealProbability(ctx, deal.ID, 80)
	require.NoError(t, err)
	assert.Equal(t, 800.0, got.WeightedValue)

	got, err = svc.UpdateDealValue(ctx, deal.ID, 2000)
	require.NoError(t, err)
	assert.Equal(t, 1600.0, got.WeightedValue)
}

func TestMarkDealWon(t *testing.T) {
	svc := newTestDealService()
	ctx := context.Background()

	deal := mustCreateDeal(t, svc, &models.DealCreateRequest{
		Title: "赢单", Value: 30000, Probability: intPtr(60),
	})

	won, err := svc.MarkDealWon(ctx, deal.ID, "tester")
	require.NoError(t, err)
	assert.Equal(t, models.DealStatusWon, won.Status)
	assert.Equal(t, models.DealStageSubscribed, won.Stage)
	assert.Equal(t, 100, won.EffectiveProbability())
	assert.Equal(t, 30000.0, won.WeightedValue)
	require.NotNil(t, won.ActualCloseDate)
	assert.WithinDuration(t, time.Now(), *won.ActualCloseDate, time.Minute)
}

func TestMarkDealLost(t *testing.T) {
	svc := newTestDealService()
	ctx := context.Background()

	year := time.Now().Year()
	march := time.Date(year, time.March, 10, 0, 0, 0, 0, time.UTC)
	deal := mustCreateDeal(t, svc, &models.DealCreateRequest{
		Title: "输单", Value: 9000, Probability: intPtr(60), ExpectedCloseDate: &march,
	})

	lost, err := svc.MarkDealLost(ctx, deal.ID, "tester")
	require.NoError(t, err)
	assert.Equal(t, models.DealStatusLost, lost.Status)
	assert.Equal(t, 0.0, lost.WeightedValue)
	// 概率同步归零，预测重算时不会再按原概率计入
	assert.Equal(t, 0, lost.EffectiveProbability())
	require.NotNil(t, lost.ActualCloseDate)

	buckets, err := svc.Forecast(ctx, time.January, time.June, year)
	require.NoError(t, err)
	for _, b := range buckets {
		assert.Equal(t, 0.0, b.Projected)
		assert.Equal(t, 0.0, b.Actual)
	}
}

func TestDeleteDeal(t *testing.T) {
	svc := newTestDealService()
	ctx := context.Background()

	deal := mustCreateDeal(t, svc, &models.DealCreateRequest{Title: "删除", Value: 1})
	require.NoError(t, svc.DeleteDeal(ctx, deal.ID, "tester"))

	_, err := svc.GetDealByID(ctx, deal.ID)
	assert.True(t, errors.Is(err, repository.ErrNotFound))
}

func TestAssignDeal(t *testing.T) {
	svc := newTestDealService()
	ctx := context.Background()

	deal := mustCreateDeal(t, svc, &models.DealCreateRequest{Title: "分配", Value: 1})

	assignment, err := svc.AssignDeal(ctx, deal.ID, "sales_li", "李销售", "tester")
	require.NoError(t, err)
	assert.NotEmpty(t, assignment.ID)
	assert.Equal(t, "sales_li", assignment.AssigneeID)

	got, err := svc.GetDealByID(ctx, deal.ID)
	require.NoError(t, err)
	assert.Equal(t, "sales_li", got.AssignedTo)

	_, err = svc.AssignDeal(ctx, "missing", "sales_li", "李销售", "tester")
	assert.True(t, errors.Is(err, repository.ErrNotFound))
}

func TestForecastWindow(t *testing.T) {
	svc := newTestDealService()
	ctx := context.Background()

	year := time.Now().Year()
	march := time.Date(year, time.March, 15, 0, 0, 0, 0, time.UTC)
	august := time.Date(year, time.August, 15, 0, 0, 0, 0, time.UTC)

	mustCreateDeal(t, svc, &models.DealCreateRequest{
		Title: "三月单", Value: 1000, Probability: intPtr(40), ExpectedCloseDate: &march,
	})
	mustCreateDeal(t, svc, &models.DealCreateRequest{
		Title: "三月赢单", Value: 500, Stage: models.DealStageSubscribed,
		Probability: intPtr(100), ExpectedCloseDate: &march,
	})
	// 八月单落在1-6月窗口之外，既不计入projected也不计入actual
	mustCreateDeal(t, svc, &models.DealCreateRequest{
		Title: "八月单", Value: 99999, Probability: intPtr(90), ExpectedCloseDate: &august,
	})

	buckets, err := svc.Forecast(ctx, time.January, time.June, year)
	require.NoError(t, err)
	require.Len(t, buckets, 6)

	var totalProjected, totalActual float64
	for _, b := range buckets {
		totalProjected += b.Projected
		totalActual += b.Actual
	}
	assert.Equal(t, 900.0, totalProjected) // 1000*40% + 500*100%
	assert.Equal(t, 500.0, totalActual)

	byMonth := map[string]models.ForecastBucket{}
	for _, b := range buckets {
		byMonth[b.Month] = b
	}
	marchKey := march.Format("2006-01")
	assert.Equal(t, 900.0, byMonth[marchKey].Projected)
	assert.Equal(t, 500.0, byMonth[marchKey].Actual)
}

func TestForecastParameterizedWindow(t *testing.T) {
	svc := newTestDealService()
	ctx := context.Background()

	year := time.Now().Year()
	august := time.Date(year, time.August, 1, 0, 0, 0, 0, time.UTC)
	mustCreateDeal(t, svc, &models.DealCreateRequest{
		Title: "下半年", Value: 2000, Probability: intPtr(50), ExpectedCloseDate: &august,
	})

	buckets, err := svc.Forecast(ctx, time.July, time.December, year)
	require.NoError(t, err)
	require.Len(t, buckets, 6)
	assert.Equal(t, august.Format("2006-01"), buckets[1].Month)
	assert.Equal(t, 1000.0, buckets[1].Projected)

	_, err = svc.Forecast(ctx, time.June, time.January, year)
	assert.Error(t, err)
}

func TestForecastBucketsMissingCloseDateToCurrentMonth(t *testing.T) {
	svc := newTestDealService()
	ctx := context.Background()

	mustCreateDeal(t, svc, &models.DealCreateRequest{
		Title: "无日期", Value: 600, Probability: intPtr(50),
	})

	now := time.Now()
	buckets, err := svc.Forecast(ctx, now.Month(), now.Month(), now.Year())
	require.NoError(t, err)
	require.Len(t, buckets, 1)
	assert.Equal(t, 300.0, buckets[0].Projected)
}

func TestGetForecastedRevenueMonthScoped(t *testing.T) {
	svc := newTestDealService()
	ctx := context.Background()

	year := time.Now().Year()
	march := time.Date(year, time.March, 20, 0, 0, 0, 0, time.UTC)
	april := time.Date(year, time.April, 2, 0, 0, 0, 0, time.UTC)

	mustCreateDeal(t, svc, &models.DealCreateRequest{
		Title: "三月在途", Value: 1000, Probability: intPtr(30), ExpectedCloseDate: &march,
	})
	mustCreateDeal(t, svc, &models.DealCreateRequest{
		Title: "四月在途", Value: 2000, Probability: intPtr(50), ExpectedCloseDate: &april,
	})
	// 没有预计成交日期的不计入
	mustCreateDeal(t, svc, &models.DealCreateRequest{Title: "无日期", Value: 7000})
	// 已输的商机不计入
	lost := mustCreateDeal(t, svc, &models.DealCreateRequest{
		Title: "三月已输", Value: 5000, ExpectedCloseDate: &march,
	})
	_, err := svc.MarkDealLost(ctx, lost.ID, "tester")
	require.NoError(t, err)

	total, err := svc.GetForecastedRevenue(ctx, time.March, year)
	require.NoError(t, err)
	assert.Equal(t, 300.0, total)

	total, err = svc.GetForecastedRevenue(ctx, time.April, year)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, total)
}

func TestGetDealsByStage(t *testing.T) {
	svc := newTestDealService()
	ctx := context.Background()

	mustCreateDeal(t, svc, &models.DealCreateRequest{Title: "A", Stage: models.DealStageTrial})
	mustCreateDeal(t, svc, &models.DealCreateRequest{Title: "B", Stage: models.DealStageLead})

	got, err := svc.GetDealsByStage(ctx, models.DealStageTrial)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].Title)
}
