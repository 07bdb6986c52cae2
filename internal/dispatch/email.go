package dispatch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
)

// EmailOptions configures SMTP alert delivery.
type EmailOptions struct {
	// Host is the SMTP server hostname, e.g. "smtp.gmail.com".
	Host string
	// Port is the SMTP submission port; 587 for STARTTLS.
	Port int
	// Sender is the From address and the authentication username.
	Sender string
	// Password is the SMTP password or app password, supplied via environment.
	Password string
	// Recipients are the To addresses.
	Recipients []string
}

// errEmailIncomplete is returned when sender, password, or recipients are missing.
var errEmailIncomplete = errors.New("email configuration incomplete")

// Email delivers alerts over SMTP with STARTTLS and plain authentication.
type Email struct {
	opts EmailOptions
}

// NewEmail creates the SMTP dispatcher after checking its configuration.
func NewEmail(opts EmailOptions) (*Email, error) {
	if opts.Sender == "" || opts.Password == "" || len(opts.Recipients) == 0 {
		return nil, errEmailIncomplete
	}

	if opts.Host == "" {
		opts.Host = "smtp.gmail.com"
	}

	if opts.Port == 0 {
		opts.Port = 587
	}

	return &Email{opts: opts}, nil
}

// Name identifies the transport in logs.
func (e *Email) Name() string {
	return "email"
}

// Deliver sends the alert as a plain-text message.
// smtp.SendMail negotiates STARTTLS when the server advertises it.
func (e *Email) Deliver(_ context.Context, subject, body string) error {
	addr := net.JoinHostPort(e.opts.Host, strconv.Itoa(e.opts.Port))
	auth := smtp.PlainAuth("", e.opts.Sender, e.opts.Password, e.opts.Host)

	msg := buildMessage(e.opts.Sender, e.opts.Recipients, subject, body)

	if err := smtp.SendMail(addr, auth, e.opts.Sender, e.opts.Recipients, msg); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	return nil
}

// buildMessage assembles the RFC 5322 headers and body.
func buildMessage(sender string, recipients []string, subject, body string) []byte {
	var b strings.Builder

	b.WriteString("From: " + sender + "\r\n")
	b.WriteString("To: " + strings.Join(recipients, ", ") + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)

	return []byte(b.String())
}
