package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/growyourneed/crm_backend/utils"
)

// Scheduler 定时任务管理器，目前只有每日跟进提醒
type Scheduler struct {
	cron     *cron.Cron
	contacts *ContactService
	mailer   *Mailer
	notifyTo string
}

func NewScheduler(contacts *ContactService, mailer *Mailer, notifyTo string) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		contacts: contacts,
		mailer:   mailer,
		notifyTo: notifyTo,
	}
}

// Start 注册任务并启动调度。每天早上9点执行跟进提醒
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("0 9 * * *", s.RunFollowUpReminder); err != nil {
		return fmt.Errorf("注册跟进提醒任务失败: %w", err)
	}
	s.cron.Start()
	utils.LogInfo(nil, "定时任务已启动")
	return nil
}

// Stop 停止调度，等待执行中的任务结束
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// RunFollowUpReminder 检查到期待跟进的联系人并发送提醒摘要
func (s *Scheduler) RunFollowUpReminder() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	due, err := s.contacts.GetContactsDueForFollowUp(ctx)
	if err != nil {
		utils.LogError(err, nil, "查询待跟进联系人失败")
		return
	}
	if len(due) == 0 {
		utils.LogInfo(nil, "今日没有待跟进的联系人")
		return
	}

	var lines []string
	for _, c := range due {
		lines = append(lines, fmt.Sprintf("- %s（%s）%s", c.FullName(), c.Company, c.Email))
	}
	utils.LogInfo(map[string]interface{}{"count": len(due)}, "待跟进联系人提醒")

	if s.mailer.Enabled() && s.notifyTo != "" {
		subject := fmt.Sprintf("今日待跟进联系人（%d位）", len(due))
		body := fmt.Sprintf("以下联系人的跟进时间已到：\n\n%s", strings.Join(lines, "\n"))
		if err := s.mailer.Send(s.notifyTo, subject, body); err != nil {
			utils.LogError(err, nil, "发送跟进提醒邮件失败")
		}
	}
}
