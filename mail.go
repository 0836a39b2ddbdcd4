package main

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"xplore/config"
)

// Mailer sends the welcome mail. With no MAIL_USER configured it stays
// disabled and SendWelcome is a no-op.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewMailer(cfg *config.Properties) *Mailer {
	if cfg.Mail.User == "" {
		return &Mailer{}
	}
	return &Mailer{
		dialer: gomail.NewDialer(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.User, cfg.Mail.Password),
		from:   cfg.Mail.User,
	}
}

func (m *Mailer) SendWelcome(email, fullName string) error {
	if m.dialer == nil {
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.from, "Xplore")
	msg.SetHeader("To", email)
	msg.SetHeader("Subject", "Welcome to Xplore")
	msg.SetBody("text/plain", fmt.Sprintf("Hi %s, your Xplore account is ready.", fullName))

	return m.dialer.DialAndSend(msg)
}
