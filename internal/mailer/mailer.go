package mailer

import (
	"fmt"
	"net/smtp"

	"github.com/skillroad/backend-go/internal/config"
	"github.com/skillroad/backend-go/internal/logger"
	"go.uber.org/zap"
)

// Mailer 外发邮件边界
type Mailer interface {
	SendPasswordReset(to, token string) error
	Ready() bool
}

// NewMailer 根据配置选择实现，SMTP未配置时退化为Noop
func NewMailer(cfg config.SMTPConfig) Mailer {
	if !cfg.Enabled || cfg.Host == "" {
		logger.Warn("SMTP not configured, password reset mail will be logged only")
		return &NoopMailer{}
	}
	return &SMTPMailer{cfg: cfg}
}

// SMTPMailer 通过SMTP发送邮件
type SMTPMailer struct {
	cfg config.SMTPConfig
}

func (m *SMTPMailer) SendPasswordReset(to, token string) error {
	subject := "Password Reset Request"
	body := fmt.Sprintf(
		"You requested a password reset.\r\n\r\n"+
			"Your reset token is: %s\r\n\r\n"+
			"The token expires in 1 hour. If you did not request this, ignore this message.\r\n", token)

	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"utf-8\"\r\n\r\n%s",
		m.cfg.From, to, subject, body))

	addr := m.cfg.Host + ":" + m.cfg.Port
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, msg); err != nil {
		logger.Error("Failed to send password reset mail", zap.String("to", to), zap.Error(err))
		return err
	}
	logger.Info("Password reset mail sent", zap.String("to", to))
	return nil
}

func (m *SMTPMailer) Ready() bool {
	return true
}

// NoopMailer SMTP未配置时的占位实现，只记录日志
type NoopMailer struct{}

func (n *NoopMailer) SendPasswordReset(to, token string) error {
	logger.Warn("Mail delivery disabled, reset token not sent", zap.String("to", to))
	return nil
}

func (n *NoopMailer) Ready() bool {
	return false
}
