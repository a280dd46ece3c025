package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/growyourneed/crm_backend/models"
	"github.com/growyourneed/crm_backend/utils"
)

// Seed 向存储写入演示数据集，mock模式启动时调用。
// 数据覆盖各个状态、阶段和月份，保证分析接口在无真实数据时也有合理输出。
func Seed(ctx context.Context, store Store) error {
	now := time.Now()
	daysAgo := func(d int) time.Time { return now.AddDate(0, 0, -d) }
	monthsAgo := func(m int) time.Time { return now.AddDate(0, -m, 0) }

	contacts := []models.Contact{
		{FirstName: "志远", LastName: "陈", Email: "chen.zhiyuan@example.com", Phone: "13800000001", Company: "远景科技", Title: "CTO",
			Status: models.ContactStatusLead, Source: models.ContactSourceWebsite, LifecycleStage: models.LifecycleLead,
			LeadScore: 72, Tags: []string{"vip", "saas"}, CreatedBy: "demo", Created: daysAgo(40), Updated: daysAgo(3)},
		{FirstName: "晓梅", LastName: "林", Email: "lin.xiaomei@example.com", Phone: "13800000002", Company: "晨曦传媒", Title: "市场总监",
			Status: models.ContactStatusProspect, Source: models.ContactSourceReferral, LifecycleStage: models.LifecycleMQL,
			LeadScore: 58, Tags: []string{"media"}, CreatedBy: "demo", Created: daysAgo(35), Updated: daysAgo(5)},
		{FirstName: "建国", LastName: "王", Email: "wang.jianguo@example.com", Phone: "13800000003", Company: "建国物流", Title: "总经理",
			Status: models.ContactStatusCustomer, Source: models.ContactSourceColdCall, LifecycleStage: models.LifecycleCustomer,
			LeadScore: 90, Tags: []string{"vip"}, CreatedBy: "demo", Created: daysAgo(120), Updated: daysAgo(10)},
		{FirstName: "天宇", LastName: "赵", Email: "zhao.tianyu@example.com", Phone: "13800000004", Company: "天宇数据", Title: "产品经理",
			Status: models.ContactStatusLead, Source: models.ContactSourceEvent, LifecycleStage: models.LifecycleSubscriber,
			LeadScore: 35, CreatedBy: "demo", Created: daysAgo(20), Updated: daysAgo(2)},
		{FirstName: "雅婷", LastName: "孙", Email: "sun.yating@example.com", Phone: "13800000005", Company: "雅婷设计", Title: "创始人",
			Status: models.ContactStatusProspect, Source: models.ContactSourceSocial, LifecycleStage: models.LifecycleSQL,
			LeadScore: 64, Tags: []string{"design", "startup"}, CreatedBy: "demo", Created: daysAgo(15), Updated: daysAgo(1)},
		{FirstName: "海峰", LastName: "周", Email: "zhou.haifeng@example.com", Phone: "13800000006", Company: "海峰贸易", Title: "采购经理",
			Status: models.ContactStatusInactive, Source: models.ContactSourceOther, LifecycleStage: models.LifecycleLead,
			LeadScore: 12, CreatedBy: "demo", Created: daysAgo(200), Updated: daysAgo(90)},
		{FirstName: "思琪", LastName: "吴", Email: "wu.siqi@example.com", Phone: "13800000007", Company: "思琪教育", Title: "运营主管",
			Status: models.ContactStatusCustomer, Source: models.ContactSourceWebsite, LifecycleStage: models.LifecycleCustomer,
			LeadScore: 81, Tags: []string{"edu"}, CreatedBy: "demo", Created: daysAgo(80), Updated: daysAgo(7)},
		{FirstName: "凯文", LastName: "郑", Email: "zheng.kaiwen@example.com", Phone: "13800000008", Company: "凯文咨询", Title: "合伙人",
			Status: models.ContactStatusLead, Source: models.ContactSourceReferral, LifecycleStage: models.LifecycleOpportunity,
			LeadScore: 47, CreatedBy: "demo", Created: daysAgo(10), Updated: daysAgo(1)},
	}

	followUp := daysAgo(-2)
	contacts[0].NextFollowUp = &followUp
	lastContact := daysAgo(6)
	contacts[2].LastContact = &lastContact

	contactIDs := make([]string, 0, len(contacts))
	for _, c := range contacts {
		id, err := store.Create(ctx, ContactsCollection, c)
		if err != nil {
			return fmt.Errorf("写入演示联系人失败: %w", err)
		}
		contactIDs = append(contactIDs, id)
	}

	p70, p40, p100 := 70, 40, 100
	wonClose := monthsAgo(1)
	lostClose := monthsAgo(2)
	expect := func(m int) *time.Time { t := now.AddDate(0, m, 0); return &t }

	deals := []models.Deal{
		{Title: "远景科技年度订阅", ContactID: contactIDs[0], ContactName: contacts[0].FullName(), Value: 120000, Currency: "CNY",
			Stage: models.DealStageDemoScheduled, Status: models.DealStatusOpen, Probability: &p70,
			WeightedValue: 120000 * 0.7, ExpectedCloseDate: expect(2), AssignedTo: "sales_li",
			Created: daysAgo(30), Updated: daysAgo(2)},
		{Title: "晨曦传媒投放方案", ContactID: contactIDs[1], ContactName: contacts[1].FullName(), Value: 45000, Currency: "CNY",
			Stage: models.DealStageContacted, Status: models.DealStatusOpen, Probability: &p40,
			WeightedValue: 45000 * 0.4, ExpectedCloseDate: expect(4), AssignedTo: "sales_zhang",
			Created: daysAgo(25), Updated: daysAgo(4)},
		{Title: "建国物流系统升级", ContactID: contactIDs[2], ContactName: contacts[2].FullName(), Value: 200000, Currency: "CNY",
			Stage: models.DealStageSubscribed, Status: models.DealStatusWon, Probability: &p100,
			WeightedValue: 200000, ActualCloseDate: &wonClose, AssignedTo: "sales_li",
			Created: daysAgo(100), Updated: daysAgo(30)},
		{Title: "天宇数据试用转化", ContactID: contactIDs[3], ContactName: contacts[3].FullName(), Value: 30000, Currency: "CNY",
			Stage: models.DealStageTrial, Status: models.DealStatusOpen,
			WeightedValue: 30000 * 0.5, ExpectedCloseDate: expect(1), AssignedTo: "sales_zhang",
			Created: daysAgo(18), Updated: daysAgo(3)},
		{Title: "海峰贸易询价", ContactID: contactIDs[5], ContactName: contacts[5].FullName(), Value: 60000, Currency: "CNY",
			Stage: models.DealStageLead, Status: models.DealStatusLost,
			WeightedValue: 0, ActualCloseDate: &lostClose, AssignedTo: "sales_zhang",
			Created: daysAgo(150), Updated: daysAgo(60)},
		{Title: "思琪教育扩容", ContactID: contactIDs[6], ContactName: contacts[6].FullName(), Value: 80000, Currency: "CNY",
			Stage: models.DealStageSubscribed, Status: models.DealStatusWon, Probability: &p100,
			WeightedValue: 80000, ActualCloseDate: &wonClose, AssignedTo: "sales_li",
			Created: daysAgo(70), Updated: daysAgo(28)},
	}

	dealIDs := make([]string, 0, len(deals))
	for _, d := range deals {
		id, err := store.Create(ctx, DealsCollection, d)
		if err != nil {
			return fmt.Errorf("写入演示销售机会失败: %w", err)
		}
		dealIDs = append(dealIDs, id)
	}

	assignments := []models.DealAssignment{
		{DealID: dealIDs[0], AssigneeID: "sales_li", AssigneeName: "李销售", Created: daysAgo(30)},
		{DealID: dealIDs[1], AssigneeID: "sales_zhang", AssigneeName: "张销售", Created: daysAgo(25)},
		{DealID: dealIDs[2], AssigneeID: "sales_li", AssigneeName: "李销售", Created: daysAgo(100)},
	}
	for _, a := range assignments {
		if _, err := store.Create(ctx, DealAssignmentsCollection, a); err != nil {
			return fmt.Errorf("写入演示分配记录失败: %w", err)
		}
	}

	// 按月份分布的邮件记录，支撑邮件分析的时间序列
	for m := 5; m >= 0; m-- {
		sentAt := monthsAgo(m)
		for i := 0; i < 4+m; i++ {
			e := models.Email{
				ContactID: contactIDs[i%len(contactIDs)],
				Subject:   fmt.Sprintf("产品更新速递 %s", sentAt.Format("2006-01")),
				Body:      "您好，这是本月的产品更新内容。",
				Status:    models.EmailStatusSent,
				SentAt:    &sentAt,
				Created:   sentAt,
				Updated:   sentAt,
			}
			if i%2 == 0 {
				e.Status = models.EmailStatusOpened
				openedAt := sentAt.Add(6 * time.Hour)
				e.OpenedAt = &openedAt
			}
			if i%4 == 0 {
				e.Status = models.EmailStatusClicked
			}
			if _, err := store.Create(ctx, EmailsCollection, e); err != nil {
				return fmt.Errorf("写入演示邮件失败: %w", err)
			}
		}
	}

	templates := []models.EmailTemplate{
		{Name: "欢迎邮件", SubjectTemplate: "欢迎加入，{{name}}！",
			BodyTemplate: "{{name}}您好：\n\n感谢关注{{company}}，我们会尽快与您联系。",
			Variables:    []string{"name", "company"}, Created: daysAgo(60), Updated: daysAgo(60)},
		{Name: "跟进提醒", SubjectTemplate: "关于{{company}}的方案跟进",
			BodyTemplate: "{{name}}您好：\n\n想和您确认一下上次沟通的方案进展。",
			Variables:    []string{"name", "company"}, Created: daysAgo(45), Updated: daysAgo(45)},
	}
	for _, t := range templates {
		if _, err := store.Create(ctx, EmailTemplatesCollection, t); err != nil {
			return fmt.Errorf("写入演示邮件模板失败: %w", err)
		}
	}

	campaigns := []models.Campaign{
		{Name: "春季获客活动", Status: "completed", Budget: 20000, Spent: 15200,
			Impressions: 120000, Clicks: 3600, Conversions: 85, PerformanceScore: 78.5,
			Created: monthsAgo(4), Updated: monthsAgo(3)},
		{Name: "新品发布推广", Status: "active", Budget: 50000, Spent: 21000,
			Impressions: 300000, Clicks: 9800, Conversions: 140, PerformanceScore: 83.2,
			Created: monthsAgo(1), Updated: daysAgo(1)},
	}
	for _, cp := range campaigns {
		if _, err := store.Create(ctx, CampaignsCollection, cp); err != nil {
			return fmt.Errorf("写入演示营销活动失败: %w", err)
		}
	}

	utils.LogInfo(map[string]interface{}{
		"contacts":  len(contacts),
		"deals":     len(deals),
		"templates": len(templates),
		"campaigns": len(campaigns),
	}, "演示数据写入完成")
	return nil
}
