// Package mailer sends transactional email over SMTP.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"
)

// Config holds the SMTP server settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Message is a single email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer sends messages through an SMTP relay with PLAIN auth.
type SMTPMailer struct {
	cfg  Config
	send sendFunc
}

// NewSMTPMailer validates cfg and creates an SMTPMailer.
func NewSMTPMailer(cfg Config) (*SMTPMailer, error) {
	if cfg.Host == "" || cfg.Port == 0 {
		return nil, errors.New("smtp host and port must be provided")
	}
	if cfg.From == "" {
		return nil, errors.New("sender address must be provided")
	}
	return &SMTPMailer{cfg: cfg, send: smtp.SendMail}, nil
}

// Send delivers msg. The content type is text/html when the body looks like HTML.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if msg.To == "" {
		return errors.New("recipient email address cannot be empty")
	}
	if msg.Subject == "" {
		return errors.New("email subject cannot be empty")
	}

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	addr := net.JoinHostPort(m.cfg.Host, fmt.Sprint(m.cfg.Port))
	if err := m.send(addr, auth, m.cfg.From, []string{msg.To}, buildMessage(m.cfg.From, msg)); err != nil {
		return fmt.Errorf("send email to %s: %w", msg.To, err)
	}
	return nil
}

func buildMessage(from string, msg Message) []byte {
	contentType := "text/plain; charset=UTF-8"
	lower := strings.ToLower(msg.Body)
	if strings.Contains(lower, "<html>") || strings.Contains(lower, "<p>") {
		contentType = "text/html; charset=UTF-8"
	}
	return []byte(fmt.Sprintf("To: %s\r\nFrom: %s\r\nSubject: %s\r\nContent-Type: %s\r\n\r\n%s\r\n",
		msg.To, from, msg.Subject, contentType, msg.Body))
}
