package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"strings"
	"time"

	"threaded_comments/internal/pkg/config"

	"go.uber.org/zap"
)

// Message 一封待发送的邮件
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Sender 邮件发送
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// NewSender 按配置返回 SMTP 发送器，未启用时只记录日志
func NewSender(cfg config.MailConfig, log *zap.Logger) Sender {
	if !cfg.Enabled {
		return &logSender{log: log}
	}
	return &smtpSender{cfg: cfg}
}

type smtpSender struct {
	cfg config.MailConfig
}

func (s *smtpSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := net.JoinHostPort(s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{msg.To}, buildMIME(s.cfg.From, msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	return nil
}

func buildMIME(from string, msg Message) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + msg.To + "\r\n")
	b.WriteString("Subject: " + msg.Subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.HTML)
	return []byte(b.String())
}

// logSender 本地开发用，不真正发信
type logSender struct {
	log *zap.Logger
}

func (s *logSender) Send(ctx context.Context, msg Message) error {
	s.log.Info("mail delivery disabled, message logged only",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
	)
	return nil
}

var invitationTmpl = template.Must(template.New("invitation").Parse(`<!DOCTYPE html>
<html>
<body>
  <h2>You've been invited to join the discussion</h2>
  <p>{{.Inviter}} invited you to join. Click the link below to create your account:</p>
  <p><a href="{{.Link}}">Accept invitation</a></p>
  <p>This invitation expires on {{.ExpiresAt}}.</p>
</body>
</html>`))

// InvitationMessage 渲染邀请邮件，链接为 <frontend>/invitation/<token>
func InvitationMessage(frontendURL, inviter, to, token string, expiresAt time.Time) (Message, error) {
	var buf bytes.Buffer
	err := invitationTmpl.Execute(&buf, map[string]string{
		"Inviter":   inviter,
		"Link":      strings.TrimRight(frontendURL, "/") + "/invitation/" + token,
		"ExpiresAt": expiresAt.UTC().Format(time.RFC1123),
	})
	if err != nil {
		return Message{}, fmt.Errorf("render invitation mail: %w", err)
	}

	return Message{
		To:      to,
		Subject: "You're invited to join the conversation",
		HTML:    buf.String(),
	}, nil
}
