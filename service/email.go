package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/growyourneed/crm_backend/models"
	"github.com/growyourneed/crm_backend/repository"
	"github.com/growyourneed/crm_backend/utils"
)

// EmailService 邮件模板、草稿和发送记录管理
type EmailService struct {
	store    repository.Store
	contacts *ContactService
	mailer   *Mailer
}

func NewEmailService(store repository.Store, contacts *ContactService, mailer *Mailer) *EmailService {
	return &EmailService{store: store, contacts: contacts, mailer: mailer}
}

// GetTemplates 取全部邮件模板
func (s *EmailService) GetTemplates(ctx context.Context) ([]models.EmailTemplate, error) {
	var templates []models.EmailTemplate
	if err := s.store.GetFullList(ctx, repository.EmailTemplatesCollection, bson.M{}, "-created", &templates); err != nil {
		return nil, err
	}
	if templates == nil {
		templates = []models.EmailTemplate{}
	}
	return templates, nil
}

// GetTemplateByID 按ID取邮件模板
func (s *EmailService) GetTemplateByID(ctx context.Context, id string) (*models.EmailTemplate, error) {
	var tpl models.EmailTemplate
	if err := s.store.GetOne(ctx, repository.EmailTemplatesCollection, id, &tpl); err != nil {
		return nil, err
	}
	return &tpl, nil
}

// CreateTemplate 创建邮件模板
func (s *EmailService) CreateTemplate(ctx context.Context, tpl models.EmailTemplate) (*models.EmailTemplate, error) {
	if tpl.Name == "" {
		return nil, utils.NewApiError("模板名称不能为空", 400, "VALIDATION_ERROR")
	}

	now := time.Now()
	tpl.Created = now
	tpl.Updated = now
	id, err := s.store.Create(ctx, repository.EmailTemplatesCollection, tpl)
	if err != nil {
		return nil, err
	}
	tpl.ID = id
	return &tpl, nil
}

// DeleteTemplate 删除邮件模板
func (s *EmailService) DeleteTemplate(ctx context.Context, id string) error {
	return s.store.Delete(ctx, repository.EmailTemplatesCollection, id)
}

// RenderTemplate 渲染模板，把{{variable}}占位符替换为给定值。
// 未提供值的占位符原样保留，便于人工检查漏填的变量。
func (s *EmailService) RenderTemplate(ctx context.Context, templateID string, vars map[string]string) (subject, body string, err error) {
	tpl, err := s.GetTemplateByID(ctx, templateID)
	if err != nil {
		return "", "", err
	}
	return renderPlaceholders(tpl.SubjectTemplate, vars), renderPlaceholders(tpl.BodyTemplate, vars), nil
}

func renderPlaceholders(text string, vars map[string]string) string {
	for k, v := range vars {
		text = strings.ReplaceAll(text, fmt.Sprintf("{{%s}}", k), v)
	}
	return text
}

// SaveDraft 保存邮件草稿。每个联系人只保留一条草稿，存在则覆盖
func (s *EmailService) SaveDraft(ctx context.Context, contactID, subject, body string) (*models.EmailDraft, error) {
	if contactID == "" {
		return nil, utils.NewApiError("联系人ID不能为空", 400, "VALIDATION_ERROR")
	}

	now := time.Now()
	var existing []models.EmailDraft
	filter := bson.M{"contact_id": contactID}
	if err := s.store.GetFullList(ctx, repository.EmailDraftsCollection, filter, "", &existing); err != nil {
		return nil, err
	}

	if len(existing) > 0 {
		draft := existing[0]
		set := bson.M{"subject": subject, "body": body, "updated": now}
		if err := s.store.Update(ctx, repository.EmailDraftsCollection, draft.ID, set); err != nil {
			return nil, err
		}
		draft.Subject = subject
		draft.Body = body
		draft.Updated = now
		return &draft, nil
	}

	draft := models.EmailDraft{
		ContactID: contactID,
		Subject:   subject,
		Body:      body,
		Created:   now,
		Updated:   now,
	}
	id, err := s.store.Create(ctx, repository.EmailDraftsCollection, draft)
	if err != nil {
		return nil, err
	}
	draft.ID = id
	return &draft, nil
}

// GetDraft 取联系人的邮件草稿，没有时返回repository.ErrNotFound
func (s *EmailService) GetDraft(ctx context.Context, contactID string) (*models.EmailDraft, error) {
	var drafts []models.EmailDraft
	filter := bson.M{"contact_id": contactID}
	if err := s.store.GetFullList(ctx, repository.EmailDraftsCollection, filter, "", &drafts); err != nil {
		return nil, err
	}
	if len(drafts) == 0 {
		return nil, repository.ErrNotFound
	}
	return &drafts[0], nil
}

// SendEmail 发送邮件：先落发送记录，再尽力投递SMTP，最后补一条email活动。
// SMTP失败不影响发送记录，只打日志。
func (s *EmailService) SendEmail(ctx context.Context, contactID, subject, body, userID string) (*models.Email, error) {
	contact, err := s.contacts.GetContactByID(ctx, contactID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	email := models.Email{
		ContactID: contactID,
		Subject:   subject,
		Body:      body,
		Status:    models.EmailStatusSent,
		SentAt:    &now,
		Created:   now,
		Updated:   now,
	}
	id, err := s.store.Create(ctx, repository.EmailsCollection, email)
	if err != nil {
		utils.LogError(err, map[string]interface{}{"contact_id": contactID}, "写入邮件记录失败")
		return nil, err
	}
	email.ID = id

	if s.mailer.Enabled() {
		if err := s.mailer.Send(contact.Email, subject, body); err != nil {
			utils.LogError(err, map[string]interface{}{"to": contact.Email}, "SMTP投递失败")
		}
	}

	if _, err := s.contacts.LogActivity(ctx, models.ContactActivity{
		ContactID:   contactID,
		Type:        models.ActivityTypeEmail,
		Description: fmt.Sprintf("发送邮件: %s", subject),
		PerformedBy: userID,
		PerformedAt: now,
	}); err != nil {
		utils.LogError(err, map[string]interface{}{"contact_id": contactID}, "记录邮件活动失败")
	}
	return &email, nil
}

// MarkOpened 标记邮件已打开
func (s *EmailService) MarkOpened(ctx context.Context, emailID string) error {
	set := bson.M{
		"status":    string(models.EmailStatusOpened),
		"opened_at": time.Now(),
		"updated":   time.Now(),
	}
	return s.store.Update(ctx, repository.EmailsCollection, emailID, set)
}

// MarkClicked 标记邮件已点击
func (s *EmailService) MarkClicked(ctx context.Context, emailID string) error {
	set := bson.M{
		"status":  string(models.EmailStatusClicked),
		"updated": time.Now(),
	}
	return s.store.Update(ctx, repository.EmailsCollection, emailID, set)
}

// GetEmailsForContact 取联系人的邮件记录，按发送时间倒序
func (s *EmailService) GetEmailsForContact(ctx context.Context, contactID string) ([]models.Email, error) {
	var emails []models.Email
	filter := bson.M{"contact_id": contactID}
	if err := s.store.GetFullList(ctx, repository.EmailsCollection, filter, "-sent_at", &emails); err != nil {
		return nil, err
	}
	if emails == nil {
		emails = []models.Email{}
	}
	return emails, nil
}
