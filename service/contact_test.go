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

func newTestContactService() *ContactService {
	store := repository.NewMemoryStore()
	return NewContactService(store, NewAuditService(store))
}

func mustCreateContact(t *testing.T, svc *ContactService, req *models.ContactCreateRequest) *models.Contact {
	t.Helper()
	contact, err := svc.CreateContact(context.Background(), req, "tester")
	require.NoError(t, err)
	require.NotNil(t, contact)
	return contact
}

func TestCreateContactDefaults(t *testing.T) {
	svc := newTestContactService()

	contact := mustCreateContact(t, svc, &models.ContactCreateRequest{
		Email:     "a@b.com",
		FirstName: "A",
		LastName:  "B",
	})

	assert.NotEmpty(t, contact.ID)
	assert.Equal(t, models.ContactStatusLead, contact.Status)
	assert.Equal(t, models.LifecycleLead, contact.LifecycleStage)
	assert.Equal(t, 0, contact.LeadScore)
	assert.Equal(t, []string{}, contact.Tags)
	assert.Equal(t, "tester", contact.CreatedBy)
}

func TestCreateContactRequiresEmail(t *testing.T) {
	svc := newTestContactService()

	_, err := svc.CreateContact(context.Background(), &models.ContactCreateRequest{FirstName: "无"}, "tester")
	assert.Error(t, err)

	_, err = svc.CreateContact(context.Background(), &models.ContactCreateRequest{Email: "不是邮箱"}, "tester")
	assert.Error(t, err)
}

func TestLeadScoreClamp(t *testing.T) {
	svc := newTestContactService()
	ctx := context.Background()

	contact := mustCreateContact(t, svc, &models.ContactCreateRequest{Email: "score@example.com"})

	updated, err := svc.UpdateLeadScore(ctx, contact.ID, 150)
	require.NoError(t, err)
	assert.Equal(t, 100, updated.LeadScore)

	updated, err = svc.UpdateLeadScore(ctx, contact.ID, -30)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.LeadScore)

	updated, err = svc.IncrementLeadScore(ctx, contact.ID, 1000)
	require.NoError(t, err)
	assert.Equal(t, 100, updated.LeadScore)

	updated, err = svc.IncrementLeadScore(ctx, contact.ID, -42)
	require.NoError(t, err)
	assert.Equal(t, 58, updated.LeadScore)
}

func TestAddTagIdempotent(t *testing.T) {
	svc := newTestContactService()
	ctx := context.Background()

	contact := mustCreateContact(t, svc, &models.ContactCreateRequest{Email: "tag@example.com"})

	first, err := svc.AddTag(ctx, contact.ID, "vip")
	require.NoError(t, err)
	assert.Equal(t, []string{"vip"}, first.Tags)

	second, err := svc.AddTag(ctx, contact.ID, "vip")
	require.NoError(t, err)
	assert.Equal(t, []string{"vip"}, second.Tags)

	removed, err := svc.RemoveTag(ctx, contact.ID, "vip")
	require.NoError(t, err)
	assert.Empty(t, removed.Tags)

	// 移除不存在的标签是空操作
	removed, err = svc.RemoveTag(ctx, contact.ID, "nope")
	require.NoError(t, err)
	assert.Empty(t, removed.Tags)
}

func TestBulkAddTagPartialFailure(t *testing.T) {
	svc := newTestContactService()
	ctx := context.Background()

	a := mustCreateContact(t, svc, &models.ContactCreateRequest{Email: "a@example.com"})
	b := mustCreateContact(t, svc, &models.ContactCreateRequest{Email: "b@example.com"})

	count := svc.BulkAddTag(ctx, []string{a.ID, "missing-id", b.ID}, "batch")
	assert.Equal(t, 2, count)

	got, err := svc.GetContactByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Contains(t, got.Tags, "batch")
}

func TestMergeContactsUnionsTags(t *testing.T) {
	svc := newTestContactService()
	ctx := context.Background()

	primary := mustCreateContact(t, svc, &models.ContactCreateRequest{
		Email: "primary@example.com", Tags: []string{"a"},
	})
	dup1 := mustCreateContact(t, svc, &models.ContactCreateRequest{
		Email: "dup1@example.com", Tags: []string{"b", "a"},
	})
	dup2 := mustCreateContact(t, svc, &models.ContactCreateRequest{
		Email: "dup2@example.com", Tags: []string{"c"},
	})

	merged, err := svc.MergeContacts(ctx, primary.ID, []string{dup1.ID, dup2.ID}, "tester")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, merged.Tags)

	_, err = svc.GetContactByID(ctx, dup1.ID)
	assert.True(t, errors.Is(err, repository.ErrNotFound))
	_, err = svc.GetContactByID(ctx, dup2.ID)
	assert.True(t, errors.Is(err, repository.ErrNotFound))

	// 主联系人保留
	kept, err := svc.GetContactByID(ctx, primary.ID)
	require.NoError(t, err)
	assert.Equal(t, "primary@example.com", kept.Email)
}

func TestFilterComposition(t *testing.T) {
	svc := newTestContactService()
	ctx := context.Background()

	mustCreateContact(t, svc, &models.ContactCreateRequest{
		Email: "1@example.com", Company: "Tech Corp", Status: models.ContactStatusLead,
	})
	mustCreateContact(t, svc, &models.ContactCreateRequest{
		Email: "2@example.com", Company: "Tech Corp", Status: models.ContactStatusCustomer,
	})
	mustCreateContact(t, svc, &models.ContactCreateRequest{
		Email: "3@example.com", Company: "Food Inc", Status: models.ContactStatusLead,
	})

	// 两个条件都满足的只有一条
	got, err := svc.GetAllContacts(ctx, &models.ContactFilters{Status: "lead", Company: "Tech"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "1@example.com", got[0].Email)

	// search在姓名/邮箱/公司之间做OR匹配
	got, err = svc.GetAllContacts(ctx, &models.ContactFilters{Search: "food"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "3@example.com", got[0].Email)
}

func TestGetContactsPagination(t *testing.T) {
	svc := newTestContactService()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		mustCreateContact(t, svc, &models.ContactCreateRequest{
			Email: string(rune('a'+i)) + "@page.com",
		})
	}

	list, err := svc.GetContacts(ctx, 1, 2, nil)
	require.NoError(t, err)
	assert.Len(t, list.Items, 2)
	assert.Equal(t, int64(5), list.TotalItems)
	assert.Equal(t, 3, list.TotalPages)

	list, err = svc.GetContacts(ctx, 3, 2, nil)
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)
}

func TestContactStats(t *testing.T) {
	svc := newTestContactService()
	ctx := context.Background()

	mustCreateContact(t, svc, &models.ContactCreateRequest{
		Email: "s1@example.com", Status: models.ContactStatusLead,
		Source: models.ContactSourceWebsite, LeadScore: 40,
	})
	mustCreateContact(t, svc, &models.ContactCreateRequest{
		Email: "s2@example.com", Status: models.ContactStatusCustomer,
		Source: models.ContactSourceReferral, LeadScore: 81,
	})

	stats, err := svc.GetContactStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.ByStatus["lead"])
	assert.Equal(t, 1, stats.ByStatus["customer"])
	assert.Equal(t, 1, stats.BySource["website"])
	assert.Equal(t, 2, stats.Recent)
	// (40+81)/2 = 60.5，四舍五入61
	assert.Equal(t, 61, stats.AvgLeadScore)
}

func TestContactStatsEmpty(t *testing.T) {
	svc := newTestContactService()

	stats, err := svc.GetContactStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Total)
	assert.Equal(t, 0, stats.AvgLeadScore)
}

func TestGetContactsDueForFollowUp(t *testing.T) {
	svc := newTestContactService()
	ctx := context.Background()

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(48 * time.Hour)

	due := mustCreateContact(t, svc, &models.ContactCreateRequest{
		Email: "due@example.com", NextFollowUp: &past,
	})
	mustCreateContact(t, svc, &models.ContactCreateRequest{
		Email: "later@example.com", NextFollowUp: &future,
	})
	mustCreateContact(t, svc, &models.ContactCreateRequest{
		Email: "never@example.com",
	})

	got, err := svc.GetContactsDueForFollowUp(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, due.ID, got[0].ID)
}

func TestUpdateContactRefreshesUpdated(t *testing.T) {
	svc := newTestContactService()
	ctx := context.Background()

	contact := mustCreateContact(t, svc, &models.ContactCreateRequest{Email: "u@example.com"})

	updated, err := svc.UpdateContact(ctx, contact.ID, map[string]interface{}{
		"company": "新公司",
		"ignored": "不在白名单里",
	}, "tester")
	require.NoError(t, err)
	assert.Equal(t, "新公司", updated.Company)
	assert.False(t, updated.Updated.Before(contact.Updated))
}

func TestLogActivityRefreshesLastContact(t *testing.T) {
	svc := newTestContactService()
	ctx := context.Background()

	contact := mustCreateContact(t, svc, &models.ContactCreateRequest{Email: "act@example.com"})
	require.Nil(t, contact.LastContact)

	activity, err := svc.LogActivity(ctx, models.ContactActivity{
		ContactID:   contact.ID,
		Type:        models.ActivityTypeCall,
		Description: "电话沟通",
		PerformedBy: "tester",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, activity.ID)

	got, err := svc.GetContactByID(ctx, contact.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastContact)

	activities, err := svc.GetContactActivities(ctx, contact.ID)
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Equal(t, models.ActivityTypeCall, activities[0].Type)
}

// 端到端场景：创建、评分钳制、标签幂等、删除后不可见
func TestContactLifecycleScenario(t *testing.T) {
	svc := newTestContactService()
	ctx := context.Background()

	contact := mustCreateContact(t, svc, &models.ContactCreateRequest{
		Email: "a@b.com", FirstName: "A", LastName: "B",
	})
	assert.Equal(t, models.ContactStatusLead, contact.Status)
	assert.Equal(t, 0, contact.LeadScore)

	scored, err := svc.IncrementLeadScore(ctx, contact.ID, 150)
	require.NoError(t, err)
	assert.Equal(t, 100, scored.LeadScore)

	_, err = svc.AddTag(ctx, contact.ID, "vip")
	require.NoError(t, err)
	tagged, err := svc.AddTag(ctx, contact.ID, "vip")
	require.NoError(t, err)
	assert.Equal(t, []string{"vip"}, tagged.Tags)

	require.NoError(t, svc.DeleteContact(ctx, contact.ID, "tester"))

	_, err = svc.GetContactByID(ctx, contact.ID)
	assert.True(t, errors.Is(err, repository.ErrNotFound))
}
