package service

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/growyourneed/crm_backend/config"
)

// Mailer SMTP邮件发送器。未配置SMTP时Send直接报错，由调用方决定降级策略。
type Mailer struct {
	host string
	port int
	user string
	pass string
	from string
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host: cfg.SMTPHost,
		port: cfg.SMTPPort,
		user: cfg.SMTPUser,
		pass: cfg.SMTPPass,
		from: cfg.MailFrom,
	}
}

// Enabled 是否配置了SMTP
func (m *Mailer) Enabled() bool {
	return m != nil && m.host != ""
}

// Send 发送一封纯文本邮件
func (m *Mailer) Send(to, subject, body string) error {
	if !m.Enabled() {
		return fmt.Errorf("未配置SMTP服务器")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	d := gomail.NewDialer(m.host, m.port, m.user, m.pass)
	if err := d.DialAndSend(msg); err != nil {
		return fmt.Errorf("SMTP发送失败: %w", err)
	}
	return nil
}
